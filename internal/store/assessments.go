package store

import (
	"context"
	"fmt"
	"time"

	"github.com/alecf/careerprep/internal/models"
)

type assessmentRow struct {
	ID             string    `db:"id"`
	UserID         string    `db:"user_id"`
	QuizScore      float64   `db:"quiz_score"`
	Questions      string    `db:"questions"`
	Category       string    `db:"category"`
	ImprovementTip string    `db:"improvement_tip"`
	CreatedAt      time.Time `db:"created_at"`
}

func (r assessmentRow) model() (models.Assessment, error) {
	a := models.Assessment{
		ID:             r.ID,
		UserID:         r.UserID,
		QuizScore:      r.QuizScore,
		Category:       r.Category,
		ImprovementTip: r.ImprovementTip,
		CreatedAt:      r.CreatedAt,
	}
	if err := decodeJSON(r.Questions, &a.Questions); err != nil {
		return a, err
	}
	return a, nil
}

// CreateAssessment inserts a scored quiz attempt, assigning its ID and
// creation time
func (s *Store) CreateAssessment(ctx context.Context, a *models.Assessment) error {
	questions, err := encodeJSON(a.Questions)
	if err != nil {
		return err
	}

	a.ID = newID()
	a.CreatedAt = s.timestamp()

	_, err = s.exec(ctx, `
		INSERT INTO assessments (id, user_id, quiz_score, questions, category, improvement_tip, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.UserID, a.QuizScore, questions, a.Category, a.ImprovementTip, a.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert assessment: %w", err)
	}
	return nil
}

// ListAssessments returns all of a user's assessments, oldest first
func (s *Store) ListAssessments(ctx context.Context, userID string) ([]models.Assessment, error) {
	return s.assessments(ctx, `
		SELECT * FROM assessments WHERE user_id = ?
		ORDER BY created_at ASC`, userID)
}

// RecentAssessments returns up to limit of a user's assessments, newest
// first
func (s *Store) RecentAssessments(ctx context.Context, userID string, limit int) ([]models.Assessment, error) {
	return s.assessments(ctx, `
		SELECT * FROM assessments WHERE user_id = ?
		ORDER BY created_at DESC
		LIMIT ?`, userID, limit)
}

func (s *Store) assessments(ctx context.Context, query string, args ...any) ([]models.Assessment, error) {
	var rows []assessmentRow
	if err := s.selectAll(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list assessments: %w", err)
	}

	out := make([]models.Assessment, 0, len(rows))
	for _, r := range rows {
		a, err := r.model()
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}
