package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jobpilot/jobpilot/internal/matching"
)

// CreateAlert registers a standing alert for the resume. At most one alert
// exists per resume; creating a second one is a constraint error.
func (s *Store) CreateAlert(ctx context.Context, resumeID int64) (*matching.Alert, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO job_alerts (resume_id, is_active, created_at)
		VALUES (?, 1, ?)`,
		resumeID, formatTime(time.Now()),
	)
	if err != nil {
		return nil, fmt.Errorf("create alert for resume %d: %w", resumeID, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("create alert for resume %d: %w", resumeID, err)
	}
	return s.GetAlert(ctx, id)
}

// GetAlert fetches one alert by id.
func (s *Store) GetAlert(ctx context.Context, id int64) (*matching.Alert, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, resume_id, is_active, last_checked, created_at
		FROM job_alerts WHERE id = ?`, id)

	alert, err := scanAlert(row)
	if err != nil {
		return nil, fmt.Errorf("get alert %d: %w", id, err)
	}
	return alert, nil
}

// ActiveAlerts returns every alert with the active flag set, oldest first so
// long-waiting alerts are attempted before fresh ones.
func (s *Store) ActiveAlerts(ctx context.Context) ([]*matching.Alert, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, resume_id, is_active, last_checked, created_at
		FROM job_alerts WHERE is_active = 1
		ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list active alerts: %w", err)
	}
	defer rows.Close()

	var alerts []*matching.Alert
	for rows.Next() {
		alert, err := scanAlert(rows)
		if err != nil {
			return nil, fmt.Errorf("list active alerts: %w", err)
		}
		alerts = append(alerts, alert)
	}
	return alerts, rows.Err()
}

// AdvanceCheckpoint sets the alert's last_checked timestamp. Callers invoke
// it only after a completed run; on any failure the checkpoint stays frozen
// so the same window is retried next run.
func (s *Store) AdvanceCheckpoint(ctx context.Context, alertID int64, t time.Time) error {
	if _, err := s.db.ExecContext(ctx,
		`UPDATE job_alerts SET last_checked = ? WHERE id = ?`, formatTime(t), alertID,
	); err != nil {
		return fmt.Errorf("advance checkpoint for alert %d: %w", alertID, err)
	}
	return nil
}

func scanAlert(row rowScanner) (*matching.Alert, error) {
	var (
		a           matching.Alert
		isActive    int
		lastChecked sql.NullString
		createdAt   string
	)

	if err := row.Scan(&a.ID, &a.ResumeID, &isActive, &lastChecked, &createdAt); err != nil {
		return nil, err
	}
	a.IsActive = isActive != 0

	checked, err := parseNullableTime(lastChecked)
	if err != nil {
		return nil, err
	}
	a.LastChecked = checked

	created, err := parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	a.CreatedAt = created

	return &a, nil
}
