package coach

import (
	"context"
	"errors"
	"math"
	"strings"

	"github.com/alecf/careerprep/internal/cache"
	"github.com/alecf/careerprep/internal/fallback"
	"github.com/alecf/careerprep/internal/generate"
	"github.com/alecf/careerprep/internal/models"
	"github.com/alecf/careerprep/internal/prompt"
	"github.com/alecf/careerprep/internal/store"
)

// ErrRoadmapNotFound is returned when progress is reported before a
// roadmap exists
var ErrRoadmapNotFound = errors.New("skill roadmap not found, generate one first")

const defaultRoadmapDuration = "3-6 months"

// SkillRoadmap returns the user's stored roadmap, generating one when
// none exists yet
func (s *Service) SkillRoadmap(ctx context.Context, userID string) (*models.SkillRoadmap, error) {
	if _, err := s.user(ctx, userID); err != nil {
		return nil, err
	}

	rm, err := s.store.GetSkillRoadmap(ctx, userID)
	if err == nil {
		return rm, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	return s.GenerateSkillRoadmap(ctx, userID)
}

// GenerateSkillRoadmap builds a three-phase learning plan from the skills
// the user's industry asks for that the user does not have yet
func (s *Service) GenerateSkillRoadmap(ctx context.Context, userID string) (*models.SkillRoadmap, error) {
	user, err := s.user(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Industry == "" {
		return nil, ErrNoIndustry
	}

	insight, err := s.industryInsight(ctx, user.Industry)
	if err != nil {
		return nil, err
	}

	targets := insight.TopSkills
	if len(targets) == 0 {
		targets = insight.RecommendedSkills
	}
	if len(targets) == 0 {
		return nil, ErrNoIndustry
	}

	toLearn := missingSkills(targets, user.Skills)

	res := generate.Resolve(ctx, s.orch, generate.Request[models.Roadmap]{
		Operation:    "skillRoadmap",
		Key:          cache.DeriveKey("skillRoadmap", user.ID, joinSkills(toLearn)),
		SystemPrompt: prompt.JSONSystemPrompt,
		Prompt:       prompt.SkillRoadmap(user.Skills, user.Industry, toLearn, user.Experience),
		MaxTokens:    jsonMaxTokens,
		Temperature:  defaultTemperature,
		Shape:        roadmapShape,
		Fallback:     func() models.Roadmap { return fallback.Roadmap(toLearn) },
	})

	rm := &models.SkillRoadmap{
		UserID:            user.ID,
		CurrentSkills:     user.Skills,
		TargetSkills:      targets,
		Phases:            res.Value.Phases,
		OverallProgress:   progress(targets, user.Skills),
		EstimatedDuration: defaultRoadmapDuration,
		Source:            string(res.Source),
	}
	if existing, err := s.store.GetSkillRoadmap(ctx, user.ID); err == nil {
		rm.ID = existing.ID
		rm.CreatedAt = existing.CreatedAt
	}
	if err := s.store.UpsertSkillRoadmap(ctx, rm); err != nil {
		return nil, err
	}
	return s.store.GetSkillRoadmap(ctx, user.ID)
}

// UpdateRoadmapProgress adds completed skills to the user's profile and
// recomputes the roadmap's overall progress against its target skills
func (s *Service) UpdateRoadmapProgress(ctx context.Context, userID string, completed []string) (*models.SkillRoadmap, error) {
	user, err := s.user(ctx, userID)
	if err != nil {
		return nil, err
	}

	rm, err := s.store.GetSkillRoadmap(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrRoadmapNotFound
	}
	if err != nil {
		return nil, err
	}

	skills := mergeSkills(user.Skills, completed)
	if err := s.store.UpdateUserSkills(ctx, userID, skills); err != nil {
		return nil, err
	}

	return s.store.UpdateRoadmapProgress(ctx, userID, progress(rm.TargetSkills, skills))
}

// missingSkills returns the targets not present in have, compared
// case-insensitively
func missingSkills(targets, have []string) []string {
	known := skillSet(have)
	out := make([]string, 0, len(targets))
	for _, t := range targets {
		if _, ok := known[strings.ToLower(t)]; !ok {
			out = append(out, t)
		}
	}
	return out
}

func progress(targets, have []string) int {
	if len(targets) == 0 {
		return 0
	}
	known := skillSet(have)
	var done int
	for _, t := range targets {
		if _, ok := known[strings.ToLower(t)]; ok {
			done++
		}
	}
	return int(math.Round(100 * float64(done) / float64(len(targets))))
}

func mergeSkills(have, add []string) []string {
	known := skillSet(have)
	out := append([]string(nil), have...)
	for _, a := range add {
		a = strings.TrimSpace(a)
		if a == "" {
			continue
		}
		if _, ok := known[strings.ToLower(a)]; ok {
			continue
		}
		known[strings.ToLower(a)] = struct{}{}
		out = append(out, a)
	}
	return out
}

func skillSet(skills []string) map[string]struct{} {
	m := make(map[string]struct{}, len(skills))
	for _, s := range skills {
		m[strings.ToLower(strings.TrimSpace(s))] = struct{}{}
	}
	return m
}
