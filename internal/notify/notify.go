// Package notify decides whether a completed alert run warrants an email
// and sends it. Delivery is best effort and never fails the pipeline.
package notify

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Sender delivers a composed message to one recipient.
type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// NopSender discards messages, for setups without a mail server.
type NopSender struct{}

func (NopSender) Send(context.Context, string, string, string) error { return nil }

// Summary describes the outcome of one alert run.
type Summary struct {
	Email       string
	ResumeTitle string
	MatchCount  int
	MinScore    int
	FirstRun    bool
}

type Gate struct {
	sender  Sender
	siteURL string
	logger  *zap.Logger
}

func NewGate(sender Sender, siteURL string, logger *zap.Logger) *Gate {
	return &Gate{
		sender:  sender,
		siteURL: siteURL,
		logger:  logger,
	}
}

// Notify emails the user about new matches when the run warrants it.
// A first run seeds the baseline silently, a run with no matches has
// nothing to say, and a missing address cannot be delivered to. Send
// failures are logged and swallowed so stored matches survive them.
func (g *Gate) Notify(ctx context.Context, summary Summary) bool {
	if summary.FirstRun {
		g.logger.Info("first run for this alert, notification suppressed",
			zap.String("resume", summary.ResumeTitle),
		)
		return false
	}
	if summary.MatchCount == 0 {
		return false
	}
	if summary.Email == "" {
		g.logger.Warn("no recipient address, skipping notification",
			zap.String("resume", summary.ResumeTitle),
		)
		return false
	}

	subject, body := g.compose(summary)

	if err := g.sender.Send(ctx, summary.Email, subject, body); err != nil {
		g.logger.Error("notification delivery failed",
			zap.String("to", summary.Email),
			zap.Error(err),
		)
		return false
	}

	g.logger.Info("notification sent",
		zap.String("to", summary.Email),
		zap.Int("matches", summary.MatchCount),
	)
	return true
}

func (g *Gate) compose(summary Summary) (subject, body string) {
	noun := "offers"
	if summary.MatchCount == 1 {
		noun = "offer"
	}
	subject = fmt.Sprintf("JobPilot: %d new %s for you", summary.MatchCount, noun)

	var b strings.Builder
	fmt.Fprintf(&b, "Hello,\n\n")
	fmt.Fprintf(&b, "Your alert for %q found %d new %s scoring at least %d.\n\n",
		summary.ResumeTitle, summary.MatchCount, noun, summary.MinScore)
	if g.siteURL != "" {
		fmt.Fprintf(&b, "Review them on your dashboard: %s/matches\n\n", strings.TrimRight(g.siteURL, "/"))
	}
	fmt.Fprintf(&b, "JobPilot\n")

	return subject, b.String()
}
