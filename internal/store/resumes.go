package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jobpilot/jobpilot/internal/matching"
)

// ErrResumeNotFound is returned when a resume id does not exist.
var ErrResumeNotFound = errors.New("resume not found")

// CreateResume stores a parsed resume and returns it with its assigned id.
func (s *Store) CreateResume(ctx context.Context, resume *matching.Resume) (*matching.Resume, error) {
	skillsJSON := []byte("[]")
	if resume.DetectedSkills != nil {
		var err error
		skillsJSON, err = json.Marshal(resume.DetectedSkills)
		if err != nil {
			return nil, fmt.Errorf("encode detected skills: %w", err)
		}
	}

	var jobTitle any
	if resume.DetectedJobTitle != "" {
		jobTitle = resume.DetectedJobTitle
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO resumes
			(user_id, user_email, title, extracted_text, detected_job_title, detected_skills, uploaded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		resume.UserID, resume.UserEmail, resume.Title, resume.ExtractedText,
		jobTitle, string(skillsJSON), formatTime(time.Now()),
	)
	if err != nil {
		return nil, fmt.Errorf("create resume: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("create resume: %w", err)
	}
	return s.GetResume(ctx, id)
}

// GetResume fetches one resume by id.
func (s *Store) GetResume(ctx context.Context, id int64) (*matching.Resume, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, user_email, title, extracted_text, detected_job_title, detected_skills, uploaded_at
		FROM resumes WHERE id = ?`, id)

	var (
		r        matching.Resume
		jobTitle sql.NullString
		skills   string
		uploaded string
	)
	err := row.Scan(&r.ID, &r.UserID, &r.UserEmail, &r.Title, &r.ExtractedText, &jobTitle, &skills, &uploaded)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get resume %d: %w", id, ErrResumeNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get resume %d: %w", id, err)
	}

	r.DetectedJobTitle = jobTitle.String
	if skills != "" {
		if err := json.Unmarshal([]byte(skills), &r.DetectedSkills); err != nil {
			return nil, fmt.Errorf("decode detected skills for resume %d: %w", id, err)
		}
	}

	r.UploadedAt, err = parseTime(uploaded)
	if err != nil {
		return nil, fmt.Errorf("get resume %d: %w", id, err)
	}
	return &r, nil
}

// ListResumes returns every stored resume, newest first.
func (s *Store) ListResumes(ctx context.Context) ([]*matching.Resume, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id FROM resumes ORDER BY uploaded_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list resumes: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("list resumes: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list resumes: %w", err)
	}

	resumes := make([]*matching.Resume, 0, len(ids))
	for _, id := range ids {
		r, err := s.GetResume(ctx, id)
		if err != nil {
			return nil, err
		}
		resumes = append(resumes, r)
	}
	return resumes, nil
}
