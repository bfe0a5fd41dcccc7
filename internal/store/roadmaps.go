package store

import (
	"context"
	"fmt"
	"time"

	"github.com/alecf/careerprep/internal/models"
)

type roadmapRow struct {
	ID                string    `db:"id"`
	UserID            string    `db:"user_id"`
	CurrentSkills     string    `db:"current_skills"`
	TargetSkills      string    `db:"target_skills"`
	Phases            string    `db:"phases"`
	OverallProgress   int       `db:"overall_progress"`
	EstimatedDuration string    `db:"estimated_duration"`
	Source            string    `db:"source"`
	CreatedAt         time.Time `db:"created_at"`
	UpdatedAt         time.Time `db:"updated_at"`
}

// GetSkillRoadmap loads a user's roadmap
func (s *Store) GetSkillRoadmap(ctx context.Context, userID string) (*models.SkillRoadmap, error) {
	var row roadmapRow
	if err := s.get(ctx, &row, `SELECT * FROM skill_roadmaps WHERE user_id = ?`, userID); err != nil {
		if err == ErrNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get roadmap: %w", err)
	}

	rm := &models.SkillRoadmap{
		ID:                row.ID,
		UserID:            row.UserID,
		OverallProgress:   row.OverallProgress,
		EstimatedDuration: row.EstimatedDuration,
		Source:            row.Source,
		CreatedAt:         row.CreatedAt,
		UpdatedAt:         row.UpdatedAt,
	}
	if err := decodeJSON(row.CurrentSkills, &rm.CurrentSkills); err != nil {
		return nil, err
	}
	if err := decodeJSON(row.TargetSkills, &rm.TargetSkills); err != nil {
		return nil, err
	}
	if err := decodeJSON(row.Phases, &rm.Phases); err != nil {
		return nil, err
	}
	rm.CurrentSkills = stringList(rm.CurrentSkills)
	rm.TargetSkills = stringList(rm.TargetSkills)
	return rm, nil
}

// UpsertSkillRoadmap creates or replaces a user's roadmap
func (s *Store) UpsertSkillRoadmap(ctx context.Context, rm *models.SkillRoadmap) error {
	current, err := encodeJSON(stringList(rm.CurrentSkills))
	if err != nil {
		return err
	}
	target, err := encodeJSON(stringList(rm.TargetSkills))
	if err != nil {
		return err
	}
	phases, err := encodeJSON(rm.Phases)
	if err != nil {
		return err
	}

	if rm.ID == "" {
		rm.ID = newID()
	}
	now := s.timestamp()
	if rm.CreatedAt.IsZero() {
		rm.CreatedAt = now
	}
	rm.UpdatedAt = now

	_, err = s.exec(ctx, `
		INSERT INTO skill_roadmaps (id, user_id, current_skills, target_skills, phases,
			overall_progress, estimated_duration, source, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			current_skills = excluded.current_skills,
			target_skills = excluded.target_skills,
			phases = excluded.phases,
			overall_progress = excluded.overall_progress,
			estimated_duration = excluded.estimated_duration,
			source = excluded.source,
			updated_at = excluded.updated_at`,
		rm.ID, rm.UserID, current, target, phases,
		rm.OverallProgress, rm.EstimatedDuration, rm.Source, rm.CreatedAt, rm.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save roadmap: %w", err)
	}
	return nil
}

// UpdateRoadmapProgress sets the overall progress of a user's roadmap
func (s *Store) UpdateRoadmapProgress(ctx context.Context, userID string, progress int) (*models.SkillRoadmap, error) {
	res, err := s.exec(ctx, `UPDATE skill_roadmaps SET overall_progress = ?, updated_at = ? WHERE user_id = ?`,
		progress, s.timestamp(), userID)
	if err != nil {
		return nil, fmt.Errorf("failed to update roadmap progress: %w", err)
	}
	if err := affected(res); err != nil {
		return nil, err
	}
	return s.GetSkillRoadmap(ctx, userID)
}
