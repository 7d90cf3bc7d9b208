// Package matching holds the domain types shared by the scoring, storage and
// alerting layers: resumes, job offers, matches and standing alerts.
package matching

import "time"

// Resume is the profile produced by the ingestion pipeline. The matching core
// only reads ExtractedText and DetectedJobTitle; everything else is carried
// for display and notification purposes.
type Resume struct {
	ID               int64
	UserID           int64
	UserEmail        string
	Title            string
	ExtractedText    string
	DetectedJobTitle string
	DetectedSkills   []string
	UploadedAt       time.Time
}

// Offer is a job offer as persisted locally. RemoteID is the external source
// identifier and the natural deduplication key: there is exactly one Offer
// row per RemoteID, immutable after creation.
type Offer struct {
	ID           int64
	RemoteID     string
	Title        string
	CompanyName  string
	Description  string
	URL          string
	Location     string
	ContractType string
	DatePosted   *time.Time
	RawData      map[string]any
	CreatedAt    time.Time
}

// Match is the relevance edge between one user and one offer. Uniqueness is
// on (UserID, OfferID) regardless of which resume produced the score: a
// rescoring run with another resume updates ResumeID and Score in place.
type Match struct {
	ID          int64
	UserID      int64
	OfferID     int64
	ResumeID    *int64
	Score       int
	Status      Status
	CoverLetter string
	MatchedAt   time.Time
}

// Alert is a standing subscription tying one resume to periodic checking.
// LastChecked is the checkpoint: nil means the alert has never run.
type Alert struct {
	ID          int64
	ResumeID    int64
	IsActive    bool
	LastChecked *time.Time
	CreatedAt   time.Time
}
