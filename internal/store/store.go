// Package store persists offers, matches, alerts and resume profiles in
// SQLite. Uniqueness constraints in the schema are the only concurrency
// primitive: writers race through atomic insert-or-ignore statements and
// reconcile on conflict, never through application-level locks.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS resumes (
	id                 INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id            INTEGER NOT NULL,
	user_email         TEXT NOT NULL DEFAULT '',
	title              TEXT NOT NULL DEFAULT '',
	extracted_text     TEXT NOT NULL DEFAULT '',
	detected_job_title TEXT,
	detected_skills    TEXT NOT NULL DEFAULT '[]',
	uploaded_at        TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS job_offers (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	remote_id     TEXT NOT NULL UNIQUE,
	title         TEXT NOT NULL DEFAULT '',
	company_name  TEXT NOT NULL DEFAULT '',
	description   TEXT NOT NULL DEFAULT '',
	url           TEXT NOT NULL DEFAULT '',
	location      TEXT NOT NULL DEFAULT '',
	contract_type TEXT NOT NULL DEFAULT '',
	date_posted   TEXT,
	raw_data      TEXT NOT NULL DEFAULT '{}',
	created_at    TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS job_matches (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id      INTEGER NOT NULL,
	offer_id     INTEGER NOT NULL REFERENCES job_offers(id),
	resume_id    INTEGER REFERENCES resumes(id),
	score        INTEGER NOT NULL DEFAULT 0,
	status       TEXT NOT NULL DEFAULT 'new',
	cover_letter TEXT NOT NULL DEFAULT '',
	matched_at   TEXT NOT NULL,
	UNIQUE(user_id, offer_id)
);

CREATE TABLE IF NOT EXISTS job_alerts (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	resume_id    INTEGER NOT NULL UNIQUE REFERENCES resumes(id),
	is_active    INTEGER NOT NULL DEFAULT 1,
	last_checked TEXT,
	created_at   TEXT NOT NULL
);
`

// Store wraps the SQLite connection used by all repositories.
type Store struct {
	db     *sql.DB
	logger *zap.Logger
}

// Open connects to the SQLite database at dsn and ensures the schema exists.
func Open(ctx context.Context, dsn string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// An in-memory database exists per connection, so the pool must stay at
	// one connection or the schema vanishes between queries.
	if strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory") {
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	return &Store{db: db, logger: logger}, nil
}

// Close closes the underlying connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Timestamps are stored as RFC 3339 text, always in UTC. Normalization to a
// single canonical zone happens here, at the storage boundary.

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse stored timestamp %q: %w", s, err)
	}
	return t.UTC(), nil
}

func formatNullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}

func parseNullableTime(s sql.NullString) (*time.Time, error) {
	if !s.Valid || s.String == "" {
		return nil, nil
	}
	t, err := parseTime(s.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
