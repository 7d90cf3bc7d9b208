package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jobpilot/jobpilot/internal/matching"
)

// ErrMatchNotFound is returned when a match lookup yields no row.
var ErrMatchNotFound = errors.New("match not found")

// UpsertMatch records that the offer is relevant for the user. The insert is
// optimistic: it attempts to create the match with status 'new' and lets the
// UNIQUE(user_id, offer_id) constraint detect an existing row — there is no
// existence pre-check, since the insert itself is the check. On conflict the
// existing row is reconciled in place: resume reference and score are
// overwritten, status and cover letter are left untouched so the user's
// progress survives rescoring.
func (s *Store) UpsertMatch(ctx context.Context, userID, offerID, resumeID int64, score int) (*matching.Match, bool, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO job_matches (user_id, offer_id, resume_id, score, status, matched_at)
		VALUES (?, ?, ?, ?, 'new', ?)
		ON CONFLICT(user_id, offer_id) DO NOTHING`,
		userID, offerID, resumeID, score, formatTime(time.Now()),
	)
	if err != nil {
		return nil, false, fmt.Errorf("insert match (user %d, offer %d): %w", userID, offerID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, false, fmt.Errorf("insert match (user %d, offer %d): %w", userID, offerID, err)
	}

	created := affected > 0
	if !created {
		// Conflict branch: a match already exists for this (user, offer),
		// possibly produced by a different resume.
		if _, err := s.db.ExecContext(ctx, `
			UPDATE job_matches SET resume_id = ?, score = ?
			WHERE user_id = ? AND offer_id = ?`,
			resumeID, score, userID, offerID,
		); err != nil {
			return nil, false, fmt.Errorf("reconcile match (user %d, offer %d): %w", userID, offerID, err)
		}
	}

	match, err := s.getMatchByKey(ctx, userID, offerID)
	if err != nil {
		return nil, false, err
	}
	return match, created, nil
}

// SetMatchStatus applies a user-driven status transition, validating it
// against the state machine.
func (s *Store) SetMatchStatus(ctx context.Context, matchID int64, to matching.Status) error {
	current, err := s.GetMatch(ctx, matchID)
	if err != nil {
		return err
	}

	if !matching.IsTransitionAllowed(current.Status, to) {
		return fmt.Errorf("status transition %s -> %s is not allowed", current.Status, to)
	}

	if _, err := s.db.ExecContext(ctx,
		`UPDATE job_matches SET status = ? WHERE id = ?`, string(to), matchID,
	); err != nil {
		return fmt.Errorf("update match %d status: %w", matchID, err)
	}
	return nil
}

// SaveCoverLetter stores the cover-letter draft on the match.
func (s *Store) SaveCoverLetter(ctx context.Context, matchID int64, content string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE job_matches SET cover_letter = ? WHERE id = ?`, content, matchID)
	if err != nil {
		return fmt.Errorf("save cover letter for match %d: %w", matchID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("save cover letter for match %d: %w", matchID, ErrMatchNotFound)
	}
	return nil
}

// GetMatch fetches one match by id.
func (s *Store) GetMatch(ctx context.Context, id int64) (*matching.Match, error) {
	row := s.db.QueryRowContext(ctx, matchColumns+` WHERE id = ?`, id)
	m, err := scanMatch(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("match %d: %w", id, ErrMatchNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get match %d: %w", id, err)
	}
	return m, nil
}

// ListMatchesForResume returns the matches produced by one resume, best score
// first, with rejected matches excluded as in the default listing views.
func (s *Store) ListMatchesForResume(ctx context.Context, resumeID int64) ([]*matching.Match, error) {
	rows, err := s.db.QueryContext(ctx, matchColumns+`
		WHERE resume_id = ? AND status != 'rejected'
		ORDER BY score DESC, matched_at DESC`, resumeID)
	if err != nil {
		return nil, fmt.Errorf("list matches for resume %d: %w", resumeID, err)
	}
	defer rows.Close()

	var matches []*matching.Match
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("list matches for resume %d: %w", resumeID, err)
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

const matchColumns = `
	SELECT id, user_id, offer_id, resume_id, score, status, cover_letter, matched_at
	FROM job_matches`

func (s *Store) getMatchByKey(ctx context.Context, userID, offerID int64) (*matching.Match, error) {
	row := s.db.QueryRowContext(ctx, matchColumns+` WHERE user_id = ? AND offer_id = ?`, userID, offerID)
	m, err := scanMatch(row)
	if err != nil {
		return nil, fmt.Errorf("get match (user %d, offer %d): %w", userID, offerID, err)
	}
	return m, nil
}

func scanMatch(row rowScanner) (*matching.Match, error) {
	var (
		m         matching.Match
		resumeID  sql.NullInt64
		status    string
		matchedAt string
	)

	if err := row.Scan(&m.ID, &m.UserID, &m.OfferID, &resumeID, &m.Score, &status, &m.CoverLetter, &matchedAt); err != nil {
		return nil, err
	}

	if resumeID.Valid {
		m.ResumeID = &resumeID.Int64
	}

	parsed, err := matching.ParseStatus(status)
	if err != nil {
		return nil, err
	}
	m.Status = parsed

	t, err := parseTime(matchedAt)
	if err != nil {
		return nil, err
	}
	m.MatchedAt = t

	return &m, nil
}
