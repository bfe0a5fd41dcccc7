package coach

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/alecf/careerprep/internal/cache"
	"github.com/alecf/careerprep/internal/fallback"
	"github.com/alecf/careerprep/internal/generate"
	"github.com/alecf/careerprep/internal/models"
	"github.com/alecf/careerprep/internal/prompt"
	"github.com/alecf/careerprep/internal/store"
)

// IndustryInsights returns the market insights for the user's industry.
// A stored record is served until its next update is due; after that the
// insights are regenerated and saved again.
func (s *Service) IndustryInsights(ctx context.Context, userID string) (*models.IndustryInsight, error) {
	user, err := s.user(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Industry == "" {
		return nil, ErrNoIndustry
	}
	return s.industryInsight(ctx, user.Industry)
}

func (s *Service) industryInsight(ctx context.Context, industry string) (*models.IndustryInsight, error) {
	stored, err := s.store.GetIndustryInsight(ctx, industry)
	switch {
	case err == nil && s.now().Before(stored.NextUpdate):
		return stored, nil
	case err != nil && !errors.Is(err, store.ErrNotFound):
		return nil, err
	}

	res := generate.Resolve(ctx, s.orch, generate.Request[models.Insights]{
		Operation:    "industryInsights",
		Key:          cache.DeriveKey("industryInsights", industry),
		SystemPrompt: prompt.JSONSystemPrompt,
		Prompt:       prompt.IndustryInsights(industry),
		MaxTokens:    jsonMaxTokens,
		Temperature:  defaultTemperature,
		Shape:        insightsShape,
		Fallback:     func() models.Insights { return fallback.IndustryInsights(industry) },
	})

	in := &models.IndustryInsight{
		Insights: res.Value,
		Industry: industry,
		Source:   string(res.Source),
	}
	if stored != nil {
		in.ID = stored.ID
	}
	if err := s.store.SaveIndustryInsight(ctx, in); err != nil {
		return nil, err
	}

	s.logger.Info("industry insights refreshed",
		zap.String("industry", industry),
		zap.String("source", in.Source),
		zap.Time("next_update", in.NextUpdate))
	return in, nil
}
