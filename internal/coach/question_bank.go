package coach

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/alecf/careerprep/internal/fallback"
	"github.com/alecf/careerprep/internal/models"
)

const (
	defaultBankLimit    = 20
	defaultBankAllLimit = 50
)

// BankFilter selects questions from the interview question bank. Empty
// fields match everything.
type BankFilter struct {
	Company    string
	Category   string
	Difficulty string
	Role       string
	Search     string
	Limit      int
}

// QuestionsByCompany returns the most frequently asked questions of a
// company, optionally of one difficulty
func QuestionsByCompany(company, difficulty string, limit int) []models.BankQuestion {
	if limit <= 0 {
		limit = defaultBankLimit
	}
	return queryBank(BankFilter{Company: company, Difficulty: difficulty, Limit: limit})
}

// QuestionsByCategory returns the most frequently asked questions of a
// category, optionally of one difficulty
func QuestionsByCategory(category, difficulty string, limit int) []models.BankQuestion {
	if limit <= 0 {
		limit = defaultBankLimit
	}
	return queryBank(BankFilter{Category: category, Difficulty: difficulty, Limit: limit})
}

// AllQuestions returns the bank questions matching f, most frequent first
func AllQuestions(f BankFilter) []models.BankQuestion {
	if f.Limit <= 0 {
		f.Limit = defaultBankAllLimit
	}
	return queryBank(f)
}

func queryBank(f BankFilter) []models.BankQuestion {
	search := strings.ToLower(strings.TrimSpace(f.Search))

	out := []models.BankQuestion{}
	for _, q := range fallback.QuestionBank() {
		if !matches(q.Company, f.Company) || !matches(q.Category, f.Category) ||
			!matches(q.Difficulty, f.Difficulty) || !matches(q.Role, f.Role) {
			continue
		}
		if search != "" && !bankSearch(q, search) {
			continue
		}
		out = append(out, q)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Frequency > out[j].Frequency
	})
	if len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out
}

func matches(value, want string) bool {
	return want == "" || strings.EqualFold(value, want)
}

func bankSearch(q models.BankQuestion, term string) bool {
	if strings.Contains(strings.ToLower(q.Question), term) {
		return true
	}
	for _, tag := range q.Tags {
		if strings.Contains(strings.ToLower(tag), term) {
			return true
		}
	}
	return false
}

// BankProgressStats summarizes a user's question bank practice
type BankProgressStats struct {
	Total        int            `json:"total"`
	Mastered     int            `json:"mastered"`
	Attempted    int            `json:"attempted"`
	NotAttempted int            `json:"notAttempted"`
	Favorites    int            `json:"favorites"`
	ByCategory   map[string]int `json:"byCategory"`
	ByDifficulty map[string]int `json:"byDifficulty"`
}

// BankProgress is a user's question bank practice state
type BankProgress struct {
	Progress  []models.QuestionProgress `json:"progress"`
	Stats     BankProgressStats         `json:"stats"`
	Favorites []string                  `json:"favorites"`
}

// bankQuestion looks up a bank question by ID
func bankQuestion(id string) (models.BankQuestion, bool) {
	for _, q := range fallback.QuestionBank() {
		if q.ID == id {
			return q, true
		}
	}
	return models.BankQuestion{}, false
}

func validQuestionStatus(status string) bool {
	switch status {
	case models.QuestionNotAttempted, models.QuestionAttempted, models.QuestionMastered:
		return true
	}
	return false
}

// ToggleFavoriteQuestion adds a bank question to the user's favorites or
// removes it, reporting whether it is now a favorite
func (s *Service) ToggleFavoriteQuestion(ctx context.Context, userID, questionID string) (bool, error) {
	if _, err := s.user(ctx, userID); err != nil {
		return false, err
	}
	if _, ok := bankQuestion(questionID); !ok {
		return false, ErrNotFound
	}
	return s.store.ToggleFavoriteQuestion(ctx, userID, questionID)
}

// MarkQuestionProgress records an attempt at a bank question with the
// given status
func (s *Service) MarkQuestionProgress(ctx context.Context, userID, questionID, status string) (*models.QuestionProgress, error) {
	if _, err := s.user(ctx, userID); err != nil {
		return nil, err
	}
	if !validQuestionStatus(status) {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, status)
	}
	if _, ok := bankQuestion(questionID); !ok {
		return nil, ErrNotFound
	}
	return s.store.MarkQuestionProgress(ctx, userID, questionID, status)
}

// QuestionProgress returns the user's practice records with summary
// counts, grouped by the category and difficulty of each question
func (s *Service) QuestionProgress(ctx context.Context, userID string) (*BankProgress, error) {
	if _, err := s.user(ctx, userID); err != nil {
		return nil, err
	}
	progress, err := s.store.ListQuestionProgress(ctx, userID)
	if err != nil {
		return nil, err
	}
	favorites, err := s.store.ListFavoriteQuestions(ctx, userID)
	if err != nil {
		return nil, err
	}

	stats := BankProgressStats{
		Total:        len(progress),
		Favorites:    len(favorites),
		ByCategory:   map[string]int{},
		ByDifficulty: map[string]int{},
	}
	for _, p := range progress {
		switch p.Status {
		case models.QuestionMastered:
			stats.Mastered++
		case models.QuestionAttempted:
			stats.Attempted++
		case models.QuestionNotAttempted:
			stats.NotAttempted++
		}
		// Retired bank entries still count toward the totals
		if q, ok := bankQuestion(p.QuestionID); ok {
			stats.ByCategory[q.Category]++
			stats.ByDifficulty[q.Difficulty]++
		}
	}

	return &BankProgress{Progress: progress, Stats: stats, Favorites: favorites}, nil
}

// FavoriteQuestions returns the user's favorite bank questions, most
// recently added first
func (s *Service) FavoriteQuestions(ctx context.Context, userID string) ([]models.BankQuestion, error) {
	if _, err := s.user(ctx, userID); err != nil {
		return nil, err
	}
	ids, err := s.store.ListFavoriteQuestions(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]models.BankQuestion, 0, len(ids))
	for _, id := range ids {
		if q, ok := bankQuestion(id); ok {
			out = append(out, q)
		}
	}
	return out, nil
}
