package coach

import (
	"context"
	"fmt"
	"strings"

	"github.com/alecf/careerprep/internal/cache"
	"github.com/alecf/careerprep/internal/fallback"
	"github.com/alecf/careerprep/internal/generate"
	"github.com/alecf/careerprep/internal/models"
	"github.com/alecf/careerprep/internal/parser"
	"github.com/alecf/careerprep/internal/prompt"
)

// GenerateCoverLetter writes and saves a cover letter for job
func (s *Service) GenerateCoverLetter(ctx context.Context, userID string, job models.JobTarget) (*models.CoverLetter, error) {
	user, err := s.user(ctx, userID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(job.JobTitle) == "" || strings.TrimSpace(job.CompanyName) == "" {
		return nil, fmt.Errorf("%w: job title and company name are required", ErrInvalidInput)
	}

	res := generate.Resolve(ctx, s.orch, generate.Request[string]{
		Operation:    "coverLetter",
		Key:          cache.DeriveKey("coverLetter", job.JobTitle, job.CompanyName, user.Industry),
		SystemPrompt: prompt.CoachSystemPrompt,
		Prompt:       prompt.CoverLetter(*user, job),
		MaxTokens:    textMaxTokens,
		Temperature:  defaultTemperature,
		Shape:        parser.Text(),
		Fallback:     func() string { return fallback.CoverLetter(*user, job) },
	})

	cl := &models.CoverLetter{
		UserID:         user.ID,
		Content:        res.Value,
		JobDescription: job.JobDescription,
		CompanyName:    job.CompanyName,
		JobTitle:       job.JobTitle,
		Status:         "completed",
		Source:         string(res.Source),
	}
	if err := s.store.CreateCoverLetter(ctx, cl); err != nil {
		return nil, err
	}
	return cl, nil
}

// CoverLetters lists the user's cover letters, newest first
func (s *Service) CoverLetters(ctx context.Context, userID string) ([]models.CoverLetter, error) {
	if _, err := s.user(ctx, userID); err != nil {
		return nil, err
	}
	return s.store.ListCoverLetters(ctx, userID)
}

// CoverLetter loads one of the user's cover letters
func (s *Service) CoverLetter(ctx context.Context, userID, id string) (*models.CoverLetter, error) {
	if _, err := s.user(ctx, userID); err != nil {
		return nil, err
	}
	return s.store.GetCoverLetter(ctx, userID, id)
}

// UpdateCoverLetter replaces the content of one of the user's cover letters
func (s *Service) UpdateCoverLetter(ctx context.Context, userID, id, content string) (*models.CoverLetter, error) {
	if _, err := s.user(ctx, userID); err != nil {
		return nil, err
	}
	return s.store.UpdateCoverLetter(ctx, userID, id, content)
}

// DeleteCoverLetter removes one of the user's cover letters
func (s *Service) DeleteCoverLetter(ctx context.Context, userID, id string) error {
	if _, err := s.user(ctx, userID); err != nil {
		return err
	}
	return s.store.DeleteCoverLetter(ctx, userID, id)
}
