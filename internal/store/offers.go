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

// ErrNoRemoteID signals that an offer carried no usable source identifier and
// was skipped rather than persisted. Callers treat it as a skip, not a
// failure.
var ErrNoRemoteID = errors.New("offer has no remote id")

// UpsertOffer stores the offer if no row with its remote id exists yet and
// returns the stored row. When a row already exists — including when a
// concurrent writer wins the race — the existing row is returned unchanged
// and created is false: attributes from the first successful insert win.
func (s *Store) UpsertOffer(ctx context.Context, offer *matching.Offer) (*matching.Offer, bool, error) {
	if offer == nil || offer.RemoteID == "" {
		return nil, false, ErrNoRemoteID
	}

	rawJSON := []byte("{}")
	if offer.RawData != nil {
		var err error
		rawJSON, err = json.Marshal(offer.RawData)
		if err != nil {
			return nil, false, fmt.Errorf("marshal raw offer data: %w", err)
		}
	}

	// The UNIQUE constraint on remote_id resolves concurrent inserts: the
	// losing writer affects zero rows and falls through to the read below.
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO job_offers (remote_id, title, company_name, description, url, location, contract_type, date_posted, raw_data, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(remote_id) DO NOTHING`,
		offer.RemoteID, offer.Title, offer.CompanyName, offer.Description,
		offer.URL, offer.Location, offer.ContractType,
		formatNullableTime(offer.DatePosted), string(rawJSON), formatTime(time.Now()),
	)
	if err != nil {
		return nil, false, fmt.Errorf("insert offer %s: %w", offer.RemoteID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, false, fmt.Errorf("insert offer %s: %w", offer.RemoteID, err)
	}

	stored, err := s.GetOfferByRemoteID(ctx, offer.RemoteID)
	if err != nil {
		return nil, false, err
	}

	return stored, affected > 0, nil
}

// GetOffer fetches one offer by its database id.
func (s *Store) GetOffer(ctx context.Context, id int64) (*matching.Offer, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, remote_id, title, company_name, description, url, location, contract_type, date_posted, raw_data, created_at
		FROM job_offers WHERE id = ?`, id)

	offer, err := scanOffer(row)
	if err != nil {
		return nil, fmt.Errorf("get offer %d: %w", id, err)
	}
	return offer, nil
}

// GetOfferByRemoteID fetches one offer by its external source identifier.
func (s *Store) GetOfferByRemoteID(ctx context.Context, remoteID string) (*matching.Offer, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, remote_id, title, company_name, description, url, location, contract_type, date_posted, raw_data, created_at
		FROM job_offers WHERE remote_id = ?`, remoteID)

	offer, err := scanOffer(row)
	if err != nil {
		return nil, fmt.Errorf("get offer %s: %w", remoteID, err)
	}
	return offer, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOffer(row rowScanner) (*matching.Offer, error) {
	var (
		o          matching.Offer
		datePosted sql.NullString
		rawData    string
		createdAt  string
	)

	if err := row.Scan(
		&o.ID, &o.RemoteID, &o.Title, &o.CompanyName, &o.Description,
		&o.URL, &o.Location, &o.ContractType, &datePosted, &rawData, &createdAt,
	); err != nil {
		return nil, err
	}

	posted, err := parseNullableTime(datePosted)
	if err != nil {
		return nil, err
	}
	o.DatePosted = posted

	created, err := parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	o.CreatedAt = created

	if err := json.Unmarshal([]byte(rawData), &o.RawData); err != nil {
		return nil, fmt.Errorf("decode raw offer data: %w", err)
	}

	return &o, nil
}
