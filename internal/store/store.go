// Package store persists coaching results in SQLite or PostgreSQL.
//
// Queries are written with ? placeholders and rebound for the active
// driver. List-valued fields are stored as JSON text.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a record does not exist or belongs to
// another user
var ErrNotFound = errors.New("not found")

func init() {
	// modernc registers itself as "sqlite", which sqlx does not know
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL DEFAULT '',
	industry TEXT NOT NULL DEFAULT '',
	experience INTEGER NOT NULL DEFAULT 0,
	bio TEXT NOT NULL DEFAULT '',
	skills TEXT NOT NULL DEFAULT '[]',
	resume_text TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS cover_letters (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	content TEXT NOT NULL,
	job_description TEXT NOT NULL DEFAULT '',
	company_name TEXT NOT NULL,
	job_title TEXT NOT NULL,
	status TEXT NOT NULL DEFAULT 'completed',
	source TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_cover_letters_user ON cover_letters(user_id, created_at);

CREATE TABLE IF NOT EXISTS assessments (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	quiz_score DOUBLE PRECISION NOT NULL,
	questions TEXT NOT NULL DEFAULT '[]',
	category TEXT NOT NULL,
	improvement_tip TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_assessments_user ON assessments(user_id, created_at);

CREATE TABLE IF NOT EXISTS industry_insights (
	id TEXT PRIMARY KEY,
	industry TEXT NOT NULL UNIQUE,
	data TEXT NOT NULL,
	source TEXT NOT NULL DEFAULT '',
	last_updated TIMESTAMP NOT NULL,
	next_update TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS skill_roadmaps (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL UNIQUE,
	current_skills TEXT NOT NULL DEFAULT '[]',
	target_skills TEXT NOT NULL DEFAULT '[]',
	phases TEXT NOT NULL DEFAULT '[]',
	overall_progress INTEGER NOT NULL DEFAULT 0,
	estimated_duration TEXT NOT NULL DEFAULT '',
	source TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS coding_challenges (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	title TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	difficulty TEXT NOT NULL DEFAULT '',
	language TEXT NOT NULL,
	category TEXT NOT NULL DEFAULT '',
	starter_code TEXT NOT NULL DEFAULT '',
	solution TEXT NOT NULL DEFAULT '',
	test_cases TEXT NOT NULL DEFAULT '[]',
	hints TEXT NOT NULL DEFAULT '[]',
	status TEXT NOT NULL DEFAULT 'not-started',
	user_code TEXT NOT NULL DEFAULT '',
	submissions INTEGER NOT NULL DEFAULT 0,
	passed INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_coding_challenges_user ON coding_challenges(user_id, language, difficulty);

CREATE TABLE IF NOT EXISTS favorite_questions (
	user_id TEXT NOT NULL,
	question_id TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL,
	PRIMARY KEY (user_id, question_id)
);

CREATE TABLE IF NOT EXISTS question_progress (
	user_id TEXT NOT NULL,
	question_id TEXT NOT NULL,
	status TEXT NOT NULL DEFAULT 'not-attempted',
	attempts INTEGER NOT NULL DEFAULT 0,
	last_attempted TIMESTAMP NOT NULL,
	PRIMARY KEY (user_id, question_id)
);
`

// Store is a handle on the coaching database
type Store struct {
	db  *sqlx.DB
	now func() time.Time
}

// Open connects to the database and applies the schema. driver is
// "sqlite" (dsn is a file path or ":memory:") or "postgres".
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	switch driver {
	case "", "sqlite":
		driver = "sqlite"
		if dsn != ":memory:" && !strings.HasPrefix(dsn, "file:") {
			if err := os.MkdirAll(filepath.Dir(dsn), 0755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	case "postgres":
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if driver == "sqlite" {
		// One writer at a time; also keeps a :memory: database alive
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Store{db: db, now: time.Now}, nil
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

// Driver returns the name of the active database driver
func (s *Store) Driver() string {
	return s.db.DriverName()
}

func (s *Store) timestamp() time.Time {
	return s.now().UTC()
}

func (s *Store) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return s.db.ExecContext(ctx, s.db.Rebind(query), args...)
}

func (s *Store) get(ctx context.Context, dest any, query string, args ...any) error {
	err := s.db.GetContext(ctx, dest, s.db.Rebind(query), args...)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func (s *Store) selectAll(ctx context.Context, dest any, query string, args ...any) error {
	return s.db.SelectContext(ctx, dest, s.db.Rebind(query), args...)
}

// affected turns a zero-row update or delete into ErrNotFound
func affected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func newID() string {
	return uuid.NewString()
}

func encodeJSON(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to encode column: %w", err)
	}
	return string(data), nil
}

func decodeJSON(s string, v any) error {
	if s == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(s), v); err != nil {
		return fmt.Errorf("failed to decode column: %w", err)
	}
	return nil
}

// stringList keeps encoded lists as [] rather than null
func stringList(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
