package store

import (
	"context"
	"fmt"

	"github.com/alecf/careerprep/internal/models"
)

const coverLetterColumns = `id, user_id, content, job_description, company_name, job_title, status, source, created_at, updated_at`

// CreateCoverLetter inserts a cover letter, assigning its ID and timestamps
func (s *Store) CreateCoverLetter(ctx context.Context, cl *models.CoverLetter) error {
	cl.ID = newID()
	cl.CreatedAt = s.timestamp()
	cl.UpdatedAt = cl.CreatedAt
	if cl.Status == "" {
		cl.Status = "completed"
	}

	_, err := s.exec(ctx, `
		INSERT INTO cover_letters (`+coverLetterColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		cl.ID, cl.UserID, cl.Content, cl.JobDescription, cl.CompanyName, cl.JobTitle,
		cl.Status, cl.Source, cl.CreatedAt, cl.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert cover letter: %w", err)
	}
	return nil
}

// ListCoverLetters returns a user's cover letters, newest first
func (s *Store) ListCoverLetters(ctx context.Context, userID string) ([]models.CoverLetter, error) {
	letters := []models.CoverLetter{}
	err := s.selectAll(ctx, &letters, `
		SELECT `+coverLetterColumns+` FROM cover_letters
		WHERE user_id = ?
		ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cover letters: %w", err)
	}
	return letters, nil
}

// GetCoverLetter loads one of a user's cover letters
func (s *Store) GetCoverLetter(ctx context.Context, userID, id string) (*models.CoverLetter, error) {
	var cl models.CoverLetter
	err := s.get(ctx, &cl, `SELECT `+coverLetterColumns+` FROM cover_letters WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		if err == ErrNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get cover letter: %w", err)
	}
	return &cl, nil
}

// UpdateCoverLetter replaces the content of a user's cover letter
func (s *Store) UpdateCoverLetter(ctx context.Context, userID, id, content string) (*models.CoverLetter, error) {
	res, err := s.exec(ctx, `UPDATE cover_letters SET content = ?, updated_at = ? WHERE id = ? AND user_id = ?`,
		content, s.timestamp(), id, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to update cover letter: %w", err)
	}
	if err := affected(res); err != nil {
		return nil, err
	}
	return s.GetCoverLetter(ctx, userID, id)
}

// DeleteCoverLetter removes a user's cover letter
func (s *Store) DeleteCoverLetter(ctx context.Context, userID, id string) error {
	res, err := s.exec(ctx, `DELETE FROM cover_letters WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete cover letter: %w", err)
	}
	return affected(res)
}
