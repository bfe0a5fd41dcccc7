// Package coach implements the career-coaching operations. Every
// generated payload goes through the generation orchestrator, so each
// operation yields a usable result even when the provider is unavailable.
package coach

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/alecf/careerprep/internal/dashboard"
	"github.com/alecf/careerprep/internal/generate"
	"github.com/alecf/careerprep/internal/models"
	"github.com/alecf/careerprep/internal/resume"
	"github.com/alecf/careerprep/internal/store"
)

var (
	// ErrUnauthorized is returned when no user identity is supplied
	ErrUnauthorized = errors.New("unauthorized")

	// ErrUserNotFound is returned when the user has no profile yet
	ErrUserNotFound = errors.New("user not found")

	// ErrNoIndustry is returned when an operation needs an industry the
	// profile does not name
	ErrNoIndustry = errors.New("industry insights not found, set your industry first")

	// ErrNotFound is returned for records that do not exist or belong to
	// another user
	ErrNotFound = store.ErrNotFound

	// ErrInvalidInput is returned for malformed requests
	ErrInvalidInput = errors.New("invalid input")
)

const (
	defaultTemperature = 0.7
	textMaxTokens      = 1024
	jsonMaxTokens      = 4096
)

// Service runs the coaching operations for one provider and database
type Service struct {
	orch   *generate.Orchestrator
	store  *store.Store
	logger *zap.Logger
	now    func() time.Time
}

// New creates a coaching service
func New(orch *generate.Orchestrator, st *store.Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		orch:   orch,
		store:  st,
		logger: logger,
		now:    time.Now,
	}
}

// Orchestrator returns the orchestrator the service generates through
func (s *Service) Orchestrator() *generate.Orchestrator {
	return s.orch
}

// user loads the profile of the calling user
func (s *Service) user(ctx context.Context, userID string) (*models.User, error) {
	if userID == "" {
		return nil, ErrUnauthorized
	}
	u, err := s.store.GetUser(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return u, err
}

// Profile returns the calling user's profile
func (s *Service) Profile(ctx context.Context, userID string) (*models.User, error) {
	return s.user(ctx, userID)
}

// UpdateProfile creates or updates the calling user's profile
func (s *Service) UpdateProfile(ctx context.Context, userID string, u models.User) (*models.User, error) {
	if userID == "" {
		return nil, ErrUnauthorized
	}
	u.ID = userID
	u.Industry = strings.TrimSpace(u.Industry)
	if u.Experience < 0 {
		return nil, fmt.Errorf("%w: experience must not be negative", ErrInvalidInput)
	}
	if err := s.store.UpsertUser(ctx, &u); err != nil {
		return nil, err
	}
	return s.user(ctx, userID)
}

// ImportResume extracts the text of an uploaded resume and stores it on
// the profile, where job-specific question prompts pick it up
func (s *Service) ImportResume(ctx context.Context, userID, mediaType string, data []byte) (*models.User, error) {
	if _, err := s.user(ctx, userID); err != nil {
		return nil, err
	}

	text, err := resume.ExtractText(mediaType, data)
	if err != nil {
		if errors.Is(err, resume.ErrUnsupportedType) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		return nil, err
	}

	if err := s.store.SetResumeText(ctx, userID, text); err != nil {
		return nil, err
	}
	return s.user(ctx, userID)
}

// Dashboard returns analytics over the user's most recent assessments
func (s *Service) Dashboard(ctx context.Context, userID string) (*dashboard.Analytics, error) {
	if _, err := s.user(ctx, userID); err != nil {
		return nil, err
	}

	recent, err := s.store.RecentAssessments(ctx, userID, dashboard.Window)
	if err != nil {
		return nil, err
	}

	a := dashboard.Compute(recent)
	return &a, nil
}

func joinSkills(skills []string) string {
	return strings.Join(skills, ",")
}
