package store

import (
	"context"
	"fmt"
	"time"

	"github.com/alecf/careerprep/internal/models"
)

type userRow struct {
	ID         string    `db:"id"`
	Name       string    `db:"name"`
	Industry   string    `db:"industry"`
	Experience int       `db:"experience"`
	Bio        string    `db:"bio"`
	Skills     string    `db:"skills"`
	ResumeText string    `db:"resume_text"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

func (r userRow) model() (*models.User, error) {
	u := &models.User{
		ID:         r.ID,
		Name:       r.Name,
		Industry:   r.Industry,
		Experience: r.Experience,
		Bio:        r.Bio,
		ResumeText: r.ResumeText,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
	if err := decodeJSON(r.Skills, &u.Skills); err != nil {
		return nil, err
	}
	u.Skills = stringList(u.Skills)
	return u, nil
}

// UpsertUser creates the user or replaces its profile fields. The resume
// text is left untouched; see SetResumeText.
func (s *Store) UpsertUser(ctx context.Context, u *models.User) error {
	skills, err := encodeJSON(stringList(u.Skills))
	if err != nil {
		return err
	}

	now := s.timestamp()
	_, err = s.exec(ctx, `
		INSERT INTO users (id, name, industry, experience, bio, skills, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			industry = excluded.industry,
			experience = excluded.experience,
			bio = excluded.bio,
			skills = excluded.skills,
			updated_at = excluded.updated_at`,
		u.ID, u.Name, u.Industry, u.Experience, u.Bio, skills, now, now)
	if err != nil {
		return fmt.Errorf("failed to save user: %w", err)
	}
	return nil
}

// GetUser loads a user profile
func (s *Store) GetUser(ctx context.Context, id string) (*models.User, error) {
	var row userRow
	if err := s.get(ctx, &row, `SELECT * FROM users WHERE id = ?`, id); err != nil {
		if err == ErrNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return row.model()
}

// UpdateUserSkills replaces the skill list of a user
func (s *Store) UpdateUserSkills(ctx context.Context, id string, skills []string) error {
	encoded, err := encodeJSON(stringList(skills))
	if err != nil {
		return err
	}
	res, err := s.exec(ctx, `UPDATE users SET skills = ?, updated_at = ? WHERE id = ?`, encoded, s.timestamp(), id)
	if err != nil {
		return fmt.Errorf("failed to update skills: %w", err)
	}
	return affected(res)
}

// SetResumeText stores the extracted resume text of a user
func (s *Store) SetResumeText(ctx context.Context, id, text string) error {
	res, err := s.exec(ctx, `UPDATE users SET resume_text = ?, updated_at = ? WHERE id = ?`, text, s.timestamp(), id)
	if err != nil {
		return fmt.Errorf("failed to update resume: %w", err)
	}
	return affected(res)
}
