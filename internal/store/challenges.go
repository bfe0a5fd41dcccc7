package store

import (
	"context"
	"fmt"
	"time"

	"github.com/alecf/careerprep/internal/models"
)

type challengeRow struct {
	ID          string    `db:"id"`
	UserID      string    `db:"user_id"`
	Title       string    `db:"title"`
	Description string    `db:"description"`
	Difficulty  string    `db:"difficulty"`
	Language    string    `db:"language"`
	Category    string    `db:"category"`
	StarterCode string    `db:"starter_code"`
	Solution    string    `db:"solution"`
	TestCases   string    `db:"test_cases"`
	Hints       string    `db:"hints"`
	Status      string    `db:"status"`
	UserCode    string    `db:"user_code"`
	Submissions int       `db:"submissions"`
	Passed      int       `db:"passed"`
	CreatedAt   time.Time `db:"created_at"`
}

func (r challengeRow) model() (models.CodingChallenge, error) {
	c := models.CodingChallenge{
		ID:          r.ID,
		UserID:      r.UserID,
		Title:       r.Title,
		Description: r.Description,
		Difficulty:  r.Difficulty,
		Language:    r.Language,
		Category:    r.Category,
		StarterCode: r.StarterCode,
		Solution:    r.Solution,
		Status:      r.Status,
		UserCode:    r.UserCode,
		Submissions: r.Submissions,
		Passed:      r.Passed,
		CreatedAt:   r.CreatedAt,
	}
	if err := decodeJSON(r.TestCases, &c.TestCases); err != nil {
		return c, err
	}
	if err := decodeJSON(r.Hints, &c.Hints); err != nil {
		return c, err
	}
	c.Hints = stringList(c.Hints)
	return c, nil
}

// ChallengeFilter narrows ListChallenges; empty fields match everything
type ChallengeFilter struct {
	UserID     string
	Language   string
	Difficulty string
}

// CreateChallenge saves a challenge for its user, assigning its ID and
// creation time
func (s *Store) CreateChallenge(ctx context.Context, c *models.CodingChallenge) error {
	testCases, err := encodeJSON(c.TestCases)
	if err != nil {
		return err
	}
	hints, err := encodeJSON(stringList(c.Hints))
	if err != nil {
		return err
	}

	c.ID = newID()
	c.CreatedAt = s.timestamp()
	if c.Status == "" {
		c.Status = models.ChallengeNotStarted
	}

	_, err = s.exec(ctx, `
		INSERT INTO coding_challenges (id, user_id, title, description, difficulty, language, category,
			starter_code, solution, test_cases, hints, status, user_code, submissions, passed, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.UserID, c.Title, c.Description, c.Difficulty, c.Language, c.Category,
		c.StarterCode, c.Solution, testCases, hints, c.Status, c.UserCode, c.Submissions, c.Passed, c.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert challenge: %w", err)
	}
	return nil
}

// FindChallenge looks up a user's challenge by title and language
func (s *Store) FindChallenge(ctx context.Context, userID, title, language string) (*models.CodingChallenge, error) {
	return s.challenge(ctx, `
		SELECT * FROM coding_challenges
		WHERE user_id = ? AND title = ? AND language = ?`, userID, title, language)
}

// GetChallenge loads one of a user's challenges
func (s *Store) GetChallenge(ctx context.Context, userID, id string) (*models.CodingChallenge, error) {
	return s.challenge(ctx, `SELECT * FROM coding_challenges WHERE id = ? AND user_id = ?`, id, userID)
}

func (s *Store) challenge(ctx context.Context, query string, args ...any) (*models.CodingChallenge, error) {
	var row challengeRow
	if err := s.get(ctx, &row, query, args...); err != nil {
		if err == ErrNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get challenge: %w", err)
	}
	c, err := row.model()
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ListChallenges returns the challenges matching f, oldest first
func (s *Store) ListChallenges(ctx context.Context, f ChallengeFilter) ([]models.CodingChallenge, error) {
	query := `SELECT * FROM coding_challenges WHERE 1 = 1`
	var args []any
	if f.UserID != "" {
		query += ` AND user_id = ?`
		args = append(args, f.UserID)
	}
	if f.Language != "" {
		query += ` AND language = ?`
		args = append(args, f.Language)
	}
	if f.Difficulty != "" {
		query += ` AND difficulty = ?`
		args = append(args, f.Difficulty)
	}
	query += ` ORDER BY created_at ASC`

	var rows []challengeRow
	if err := s.selectAll(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list challenges: %w", err)
	}

	out := make([]models.CodingChallenge, 0, len(rows))
	for _, r := range rows {
		c, err := r.model()
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// UpdateChallenge saves the submission state of a challenge
func (s *Store) UpdateChallenge(ctx context.Context, c *models.CodingChallenge) error {
	res, err := s.exec(ctx, `
		UPDATE coding_challenges
		SET user_code = ?, submissions = ?, passed = ?, status = ?
		WHERE id = ? AND user_id = ?`,
		c.UserCode, c.Submissions, c.Passed, c.Status, c.ID, c.UserID)
	if err != nil {
		return fmt.Errorf("failed to update challenge: %w", err)
	}
	return affected(res)
}
