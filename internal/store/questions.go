package store

import (
	"context"
	"fmt"

	"github.com/alecf/careerprep/internal/models"
)

// ToggleFavoriteQuestion flips whether a bank question is one of the
// user's favorites and reports the new state
func (s *Store) ToggleFavoriteQuestion(ctx context.Context, userID, questionID string) (bool, error) {
	res, err := s.exec(ctx, `DELETE FROM favorite_questions WHERE user_id = ? AND question_id = ?`, userID, questionID)
	if err != nil {
		return false, fmt.Errorf("failed to remove favorite: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return false, err
	} else if n > 0 {
		return false, nil
	}

	_, err = s.exec(ctx, `
		INSERT INTO favorite_questions (user_id, question_id, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT (user_id, question_id) DO NOTHING`,
		userID, questionID, s.timestamp())
	if err != nil {
		return false, fmt.Errorf("failed to add favorite: %w", err)
	}
	return true, nil
}

// ListFavoriteQuestions returns the IDs of a user's favorite bank
// questions, most recently added first
func (s *Store) ListFavoriteQuestions(ctx context.Context, userID string) ([]string, error) {
	ids := []string{}
	err := s.selectAll(ctx, &ids, `
		SELECT question_id FROM favorite_questions
		WHERE user_id = ?
		ORDER BY created_at DESC, question_id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}
	return ids, nil
}

// MarkQuestionProgress records an attempt at a bank question: the status
// is replaced and the attempt counter incremented
func (s *Store) MarkQuestionProgress(ctx context.Context, userID, questionID, status string) (*models.QuestionProgress, error) {
	_, err := s.exec(ctx, `
		INSERT INTO question_progress (user_id, question_id, status, attempts, last_attempted)
		VALUES (?, ?, ?, 1, ?)
		ON CONFLICT (user_id, question_id) DO UPDATE SET
			status = excluded.status,
			attempts = question_progress.attempts + 1,
			last_attempted = excluded.last_attempted`,
		userID, questionID, status, s.timestamp())
	if err != nil {
		return nil, fmt.Errorf("failed to save question progress: %w", err)
	}

	var p models.QuestionProgress
	err = s.get(ctx, &p, `
		SELECT * FROM question_progress WHERE user_id = ? AND question_id = ?`, userID, questionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get question progress: %w", err)
	}
	return &p, nil
}

// ListQuestionProgress returns a user's practice state, most recently
// attempted first
func (s *Store) ListQuestionProgress(ctx context.Context, userID string) ([]models.QuestionProgress, error) {
	out := []models.QuestionProgress{}
	err := s.selectAll(ctx, &out, `
		SELECT * FROM question_progress
		WHERE user_id = ?
		ORDER BY last_attempted DESC, question_id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list question progress: %w", err)
	}
	return out, nil
}
