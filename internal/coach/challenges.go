package coach

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/alecf/careerprep/internal/cache"
	"github.com/alecf/careerprep/internal/fallback"
	"github.com/alecf/careerprep/internal/generate"
	"github.com/alecf/careerprep/internal/models"
	"github.com/alecf/careerprep/internal/prompt"
	"github.com/alecf/careerprep/internal/store"
)

// ChallengeList is a set of a user's coding challenges. Source is set
// only when the challenges were generated by this call.
type ChallengeList struct {
	Challenges []models.CodingChallenge `json:"challenges"`
	Source     generate.Source          `json:"source,omitempty"`
	Total      int                      `json:"total"`
	Solved     int                      `json:"solved"`
}

// Submission is the recorded outcome of a code submission
type Submission struct {
	Challenge   *models.CodingChallenge `json:"challenge"`
	TestResults []models.TestResult     `json:"testResults"`
	AllPassed   bool                    `json:"allPassed"`
	PassedTests int                     `json:"passedTests"`
	TotalTests  int                     `json:"totalTests"`
}

// ChallengeStats summarises a user's coding practice
type ChallengeStats struct {
	Total            int            `json:"total"`
	Solved           int            `json:"solved"`
	Attempted        int            `json:"attempted"`
	NotStarted       int            `json:"notStarted"`
	ByDifficulty     map[string]int `json:"byDifficulty"`
	ByLanguage       map[string]int `json:"byLanguage"`
	TotalSubmissions int            `json:"totalSubmissions"`
}

var difficulties = []string{"Easy", "Medium", "Hard"}

// normalizeDifficulty maps any casing of a known difficulty to its
// canonical form
func normalizeDifficulty(d string) (string, error) {
	d = strings.TrimSpace(d)
	if d == "" {
		return "", nil
	}
	for _, known := range difficulties {
		if strings.EqualFold(d, known) {
			return known, nil
		}
	}
	return "", fmt.Errorf("%w: unknown difficulty %q", ErrInvalidInput, d)
}

// Challenges lists the user's stored challenges matching language and
// difficulty, generating a fresh set when there are none
func (s *Service) Challenges(ctx context.Context, userID, language, difficulty string) (*ChallengeList, error) {
	if _, err := s.user(ctx, userID); err != nil {
		return nil, err
	}
	difficulty, err := normalizeDifficulty(difficulty)
	if err != nil {
		return nil, err
	}

	stored, err := s.store.ListChallenges(ctx, store.ChallengeFilter{
		UserID:     userID,
		Language:   language,
		Difficulty: difficulty,
	})
	if err != nil {
		return nil, err
	}
	if len(stored) > 0 {
		return newChallengeList(stored, ""), nil
	}
	return s.GenerateChallenges(ctx, userID, language, difficulty)
}

// GenerateChallenges produces practice problems and saves the ones the
// user does not have yet. The returned list holds the stored records of
// every generated challenge.
func (s *Service) GenerateChallenges(ctx context.Context, userID, language, difficulty string) (*ChallengeList, error) {
	user, err := s.user(ctx, userID)
	if err != nil {
		return nil, err
	}
	if language == "" {
		language = fallback.DefaultLanguage
	}
	difficulty, err = normalizeDifficulty(difficulty)
	if err != nil {
		return nil, err
	}

	res := generate.Resolve(ctx, s.orch, generate.Request[models.ChallengeSet]{
		Operation:    "codingChallenges",
		Key:          cache.DeriveKey("codingChallenges", language, difficulty),
		SystemPrompt: prompt.JSONSystemPrompt,
		Prompt:       prompt.CodingChallenges(language, difficulty),
		MaxTokens:    jsonMaxTokens,
		Temperature:  defaultTemperature,
		Shape:        challengesShape,
		Fallback:     func() models.ChallengeSet { return fallback.CodingChallenges(language, difficulty) },
	})

	out := make([]models.CodingChallenge, 0, len(res.Value.Challenges))
	var created int
	for _, c := range res.Value.Challenges {
		if difficulty != "" && !strings.EqualFold(c.Difficulty, difficulty) {
			continue
		}
		c.UserID = user.ID
		c.Language = language
		c.Status = models.ChallengeNotStarted
		c.UserCode = ""
		c.Submissions, c.Passed = 0, 0

		existing, err := s.store.FindChallenge(ctx, user.ID, c.Title, c.Language)
		switch {
		case err == nil:
			out = append(out, *existing)
			continue
		case !errors.Is(err, store.ErrNotFound):
			return nil, err
		}

		if err := s.store.CreateChallenge(ctx, &c); err != nil {
			return nil, err
		}
		created++
		out = append(out, c)
	}

	s.logger.Debug("coding challenges generated",
		zap.String("language", language),
		zap.String("difficulty", difficulty),
		zap.String("source", string(res.Source)),
		zap.Int("created", created))
	return newChallengeList(out, res.Source), nil
}

// SubmitChallenge records a code submission and its client-side test
// results. The challenge is solved only when at least one test ran and
// every test passed.
func (s *Service) SubmitChallenge(ctx context.Context, userID, id, code string, results []models.TestResult) (*Submission, error) {
	if _, err := s.user(ctx, userID); err != nil {
		return nil, err
	}

	c, err := s.store.GetChallenge(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	var passed int
	for _, r := range results {
		if r.Passed {
			passed++
		}
	}
	allPassed := len(results) > 0 && passed == len(results)

	c.UserCode = code
	c.Submissions++
	c.Status = models.ChallengeAttempted
	if allPassed {
		c.Passed++
		c.Status = models.ChallengeSolved
	}
	if err := s.store.UpdateChallenge(ctx, c); err != nil {
		return nil, err
	}

	if results == nil {
		results = []models.TestResult{}
	}
	return &Submission{
		Challenge:   c,
		TestResults: results,
		AllPassed:   allPassed,
		PassedTests: passed,
		TotalTests:  len(results),
	}, nil
}

// ChallengeProgress summarises all of the user's challenges
func (s *Service) ChallengeProgress(ctx context.Context, userID string) (*ChallengeStats, error) {
	if _, err := s.user(ctx, userID); err != nil {
		return nil, err
	}

	all, err := s.store.ListChallenges(ctx, store.ChallengeFilter{UserID: userID})
	if err != nil {
		return nil, err
	}

	stats := &ChallengeStats{
		Total:        len(all),
		ByDifficulty: map[string]int{"easy": 0, "medium": 0, "hard": 0},
		ByLanguage:   map[string]int{},
	}
	for _, c := range all {
		switch c.Status {
		case models.ChallengeSolved:
			stats.Solved++
		case models.ChallengeAttempted:
			stats.Attempted++
		case models.ChallengeNotStarted:
			stats.NotStarted++
		}
		if d := strings.ToLower(c.Difficulty); d != "" {
			if _, ok := stats.ByDifficulty[d]; ok {
				stats.ByDifficulty[d]++
			}
		}
		stats.ByLanguage[c.Language]++
		stats.TotalSubmissions += c.Submissions
	}
	return stats, nil
}

// Hints returns the hints of one of the user's challenges
func (s *Service) Hints(ctx context.Context, userID, id string) ([]string, error) {
	if _, err := s.user(ctx, userID); err != nil {
		return nil, err
	}
	c, err := s.store.GetChallenge(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if c.Hints == nil {
		return []string{}, nil
	}
	return c.Hints, nil
}

func newChallengeList(challenges []models.CodingChallenge, source generate.Source) *ChallengeList {
	l := &ChallengeList{
		Challenges: challenges,
		Source:     source,
		Total:      len(challenges),
	}
	for _, c := range challenges {
		if c.Status == models.ChallengeSolved {
			l.Solved++
		}
	}
	return l
}
