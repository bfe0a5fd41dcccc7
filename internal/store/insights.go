package store

import (
	"context"
	"fmt"
	"time"

	"github.com/alecf/careerprep/internal/models"
)

// InsightRefreshInterval is how long stored industry insights stay current
const InsightRefreshInterval = 7 * 24 * time.Hour

type insightRow struct {
	ID          string    `db:"id"`
	Industry    string    `db:"industry"`
	Data        string    `db:"data"`
	Source      string    `db:"source"`
	LastUpdated time.Time `db:"last_updated"`
	NextUpdate  time.Time `db:"next_update"`
}

// GetIndustryInsight loads the stored insights of an industry
func (s *Store) GetIndustryInsight(ctx context.Context, industry string) (*models.IndustryInsight, error) {
	var row insightRow
	if err := s.get(ctx, &row, `SELECT * FROM industry_insights WHERE industry = ?`, industry); err != nil {
		if err == ErrNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get industry insight: %w", err)
	}

	in := &models.IndustryInsight{
		ID:          row.ID,
		Industry:    row.Industry,
		Source:      row.Source,
		LastUpdated: row.LastUpdated,
		NextUpdate:  row.NextUpdate,
	}
	if err := decodeJSON(row.Data, &in.Insights); err != nil {
		return nil, err
	}
	return in, nil
}

// SaveIndustryInsight creates or replaces the insights of an industry,
// stamping LastUpdated and scheduling NextUpdate one refresh interval out
func (s *Store) SaveIndustryInsight(ctx context.Context, in *models.IndustryInsight) error {
	data, err := encodeJSON(in.Insights)
	if err != nil {
		return err
	}

	if in.ID == "" {
		in.ID = newID()
	}
	in.LastUpdated = s.timestamp()
	in.NextUpdate = in.LastUpdated.Add(InsightRefreshInterval)

	_, err = s.exec(ctx, `
		INSERT INTO industry_insights (id, industry, data, source, last_updated, next_update)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (industry) DO UPDATE SET
			data = excluded.data,
			source = excluded.source,
			last_updated = excluded.last_updated,
			next_update = excluded.next_update`,
		in.ID, in.Industry, data, in.Source, in.LastUpdated, in.NextUpdate)
	if err != nil {
		return fmt.Errorf("failed to save industry insight: %w", err)
	}
	return nil
}
