// Package alerts runs the standing job alerts: for every active alert it
// searches the offer API, scores the results against the resume, persists
// the matches and advances the alert checkpoint.
package alerts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jobpilot/jobpilot/internal/francetravail"
	"github.com/jobpilot/jobpilot/internal/matching"
	"github.com/jobpilot/jobpilot/internal/notify"
	"github.com/jobpilot/jobpilot/internal/scoring"
	"github.com/jobpilot/jobpilot/internal/store"
)

// ErrSearchUnavailable marks failures of the upstream offer API.
var ErrSearchUnavailable = errors.New("offer search unavailable")

// Searcher is the slice of the offer API client the checker needs.
type Searcher interface {
	Search(ctx context.Context, keywords string, page, limit int) ([]*francetravail.Offer, error)
}

// Notifier is the slice of the notification gate the checker needs.
type Notifier interface {
	Notify(ctx context.Context, summary notify.Summary) bool
}

// Options tune one run of the checker.
type Options struct {
	// DryRun reports what would be stored without writing anything,
	// advancing checkpoints or sending notifications.
	DryRun bool
	// Limit caps how many offers are fetched per alert.
	Limit int
	// MinScore is the lowest score an offer may have and still be kept.
	MinScore int
}

const (
	DefaultLimit    = 30
	DefaultMinScore = 70
)

// ScoredOffer pairs an offer with its relevance score for one resume.
type ScoredOffer struct {
	Offer *francetravail.Offer
	Score int
}

type Checker struct {
	store    *store.Store
	searcher Searcher
	engine   *scoring.Engine
	notifier Notifier
	logger   *zap.Logger

	// now is swappable for tests.
	now func() time.Time
}

func NewChecker(s *store.Store, searcher Searcher, engine *scoring.Engine, notifier Notifier, logger *zap.Logger) *Checker {
	return &Checker{
		store:    s,
		searcher: searcher,
		engine:   engine,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// RunOnce processes every active alert. Alerts are isolated from each other:
// a failing alert is recorded in the report and the run moves on to the next
// one. The returned error covers only failures before any alert was reached.
func (c *Checker) RunOnce(ctx context.Context, opts Options) (*Report, error) {
	if opts.Limit <= 0 {
		opts.Limit = DefaultLimit
	}
	if opts.MinScore <= 0 {
		opts.MinScore = DefaultMinScore
	}

	activeAlerts, err := c.store.ActiveAlerts(ctx)
	if err != nil {
		return nil, fmt.Errorf("load active alerts: %w", err)
	}

	c.logger.Info("starting alert run",
		zap.Int("alerts", len(activeAlerts)),
		zap.Bool("dry_run", opts.DryRun),
		zap.Int("min_score", opts.MinScore),
	)

	report := &Report{}
	for _, alert := range activeAlerts {
		outcome := c.checkOne(ctx, alert, opts)
		report.Outcomes = append(report.Outcomes, outcome)

		switch {
		case outcome.Err != nil:
			c.logger.Error("alert failed",
				zap.Int64("alert", alert.ID),
				zap.String("resume", outcome.ResumeTitle),
				zap.Error(outcome.Err),
			)
		case outcome.Skipped != "":
			c.logger.Warn("alert skipped",
				zap.Int64("alert", alert.ID),
				zap.String("reason", outcome.Skipped),
			)
		default:
			c.logger.Info("alert checked",
				zap.Int64("alert", alert.ID),
				zap.String("resume", outcome.ResumeTitle),
				zap.Int("offers_found", outcome.OffersFound),
				zap.Int("offers_kept", outcome.OffersKept),
				zap.Int("new_matches", outcome.NewMatches),
			)
		}
	}

	return report, nil
}

func (c *Checker) checkOne(ctx context.Context, alert *matching.Alert, opts Options) (outcome Outcome) {
	outcome.AlertID = alert.ID
	outcome.DryRun = opts.DryRun
	outcome.FirstRun = alert.LastChecked == nil

	// One panicking alert must not take down the rest of the run.
	defer func() {
		if r := recover(); r != nil {
			outcome.Err = fmt.Errorf("alert %d panicked: %v", alert.ID, r)
		}
	}()

	resume, err := c.store.GetResume(ctx, alert.ResumeID)
	if err != nil {
		outcome.Err = err
		return outcome
	}
	outcome.ResumeTitle = resume.Title

	keywords := SearchKeywords(resume)
	if keywords == "" {
		outcome.Skipped = "resume has no detected job title"
		return outcome
	}

	// The checkpoint candidate is captured before the search so offers
	// published mid-run fall into the next window.
	runStarted := c.now().UTC()

	offers, err := c.searcher.Search(ctx, keywords, 1, opts.Limit)
	if err != nil {
		outcome.Err = fmt.Errorf("%w: %v", ErrSearchUnavailable, err)
		return outcome
	}
	outcome.OffersFound = len(offers)

	kept := c.selectOffers(resume, offers, alert.LastChecked, opts.MinScore)
	outcome.OffersKept = len(kept)

	if opts.DryRun {
		outcome.NewMatches = len(kept)
		return outcome
	}

	newMatches, err := c.SaveMatches(ctx, resume, kept)
	if err != nil {
		outcome.Err = err
		return outcome
	}
	outcome.NewMatches = newMatches

	if err := c.store.AdvanceCheckpoint(ctx, alert.ID, runStarted); err != nil {
		outcome.Err = err
		return outcome
	}

	outcome.Notified = c.notifier.Notify(ctx, notify.Summary{
		Email:       resume.UserEmail,
		ResumeTitle: resume.Title,
		MatchCount:  newMatches,
		MinScore:    opts.MinScore,
		FirstRun:    outcome.FirstRun,
	})

	return outcome
}

// selectOffers applies the recency window and the score threshold.
func (c *Checker) selectOffers(resume *matching.Resume, offers []*francetravail.Offer, since *time.Time, minScore int) []ScoredOffer {
	var kept []ScoredOffer
	for _, offer := range offers {
		// On the first run every offer is eligible. Afterwards only offers
		// published strictly after the checkpoint count; an offer without a
		// parseable publication date cannot be placed in the window and is
		// dropped.
		if since != nil && (offer.PublishedAt == nil || !offer.PublishedAt.After(since.UTC())) {
			continue
		}

		score := c.engine.Score(resume.ExtractedText, offer.Description)
		if score < minScore {
			continue
		}
		kept = append(kept, ScoredOffer{Offer: offer, Score: score})
	}
	return kept
}

// FindOffers searches and scores offers for a resume without touching any
// state, for interactive use.
func (c *Checker) FindOffers(ctx context.Context, resume *matching.Resume, page, limit int) ([]ScoredOffer, error) {
	keywords := SearchKeywords(resume)
	if keywords == "" {
		return nil, fmt.Errorf("resume %q has no detected job title", resume.Title)
	}

	offers, err := c.searcher.Search(ctx, keywords, page, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSearchUnavailable, err)
	}

	scored := make([]ScoredOffer, 0, len(offers))
	for _, offer := range offers {
		scored = append(scored, ScoredOffer{
			Offer: offer,
			Score: c.engine.Score(resume.ExtractedText, offer.Description),
		})
	}
	return scored, nil
}

// SaveMatches persists the offers and their matches for the resume's user
// and returns how many matches are new. Offers without a remote id are
// skipped rather than failing the batch.
func (c *Checker) SaveMatches(ctx context.Context, resume *matching.Resume, scored []ScoredOffer) (int, error) {
	newMatches := 0
	for _, so := range scored {
		stored, _, err := c.store.UpsertOffer(ctx, so.Offer.ToMatching())
		if errors.Is(err, store.ErrNoRemoteID) {
			c.logger.Warn("offer without remote id skipped", zap.String("title", so.Offer.Title))
			continue
		}
		if err != nil {
			return newMatches, fmt.Errorf("store offer %q: %w", so.Offer.ID, err)
		}

		_, created, err := c.store.UpsertMatch(ctx, resume.UserID, stored.ID, resume.ID, so.Score)
		if err != nil {
			return newMatches, fmt.Errorf("store match for offer %q: %w", so.Offer.ID, err)
		}
		if created {
			newMatches++
		}
	}
	return newMatches, nil
}

// SearchKeywords derives the query string for a resume. Only the detected
// job title is used; a resume without one has nothing to search for and its
// alert is skipped with the checkpoint untouched.
func SearchKeywords(resume *matching.Resume) string {
	return strings.TrimSpace(resume.DetectedJobTitle)
}
