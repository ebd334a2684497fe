package scraper

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/JustJay7/ecourts-fetcher/internal/config"
	"github.com/JustJay7/ecourts-fetcher/internal/session"
)

// NewSession returns a portal session carrying the configured user agent and
// request deadline
func NewSession(cfg *config.Config) *session.Session {
	return session.New(
		session.WithTimeout(cfg.RequestTimeout),
		session.WithUserAgent(cfg.UserAgent),
	)
}

// SearchSession is the state of one search between showing the CAPTCHA and
// submitting it. It is owned by whoever started it and passed explicitly to
// Searcher.Search.
type SearchSession struct {
	ID          string
	Criteria    SearchCriteria
	Session     *session.Session
	Snapshot    *FormSnapshot
	CaptchaPath string
	CreatedAt   time.Time
}

// StartSearch opens a fresh portal session, captures the form snapshot and
// downloads a CAPTCHA for the given criteria. A missing snapshot is not
// fatal; the submission will try to capture one again.
func StartSearch(ctx context.Context, cfg *config.Config, searcher *Searcher, captchas *CaptchaFetcher, criteria SearchCriteria) (*SearchSession, error) {
	sess := NewSession(cfg)

	snap, err := searcher.Forms().Snapshot(ctx, sess)
	if err != nil {
		searcher.logger.Warn("Could not capture search form", "error", err)
		snap = nil
	}

	path, err := captchas.Fetch(ctx, sess)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch captcha: %w", err)
	}

	return &SearchSession{
		ID:          uuid.NewString(),
		Criteria:    criteria,
		Session:     sess,
		Snapshot:    snap,
		CaptchaPath: path,
		CreatedAt:   time.Now(),
	}, nil
}
