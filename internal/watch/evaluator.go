// Package watch re-checks cause-lists for watched case identifiers and
// records a notification when one shows up.
package watch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/JustJay7/ecourts-fetcher/internal/causelist"
	"github.com/JustJay7/ecourts-fetcher/internal/database"
	"github.com/JustJay7/ecourts-fetcher/pkg/logger"
)

// SnippetLimit bounds the stored matched text, in runes
const SnippetLimit = 200

// cadenceSlack absorbs ticker jitter so a watch whose interval equals the
// scheduler's is not pushed to every other tick
const cadenceSlack = 30 * time.Second

// Store is the persistence the evaluator needs
type Store interface {
	ActiveWatches() ([]database.Watch, error)
	RecordNotification(n *database.Notification) error
	MarkWatchChecked(id uint, at time.Time) error
}

// CauseLists fetches and parses a monitored document
type CauseLists interface {
	Fetch(ctx context.Context, rawURL string) (*causelist.Document, error)
	Parse(doc *causelist.Document) ([]causelist.Entry, error)
}

// Result summarises one evaluation pass
type Result struct {
	Evaluated int `json:"evaluated"`
	Notified  int `json:"notified"`
	Failed    int `json:"failed"`
	Skipped   int `json:"skipped"`
}

// Evaluator checks every active watch once per pass, one at a time
type Evaluator struct {
	store  Store
	lists  CauseLists
	logger *logger.Logger
	now    func() time.Time
}

func NewEvaluator(store Store, lists CauseLists, log *logger.Logger) *Evaluator {
	return &Evaluator{store: store, lists: lists, logger: log, now: time.Now}
}

// Run performs one pass with a background context
func (e *Evaluator) Run() {
	e.Pass(context.Background())
}

// Pass performs one pass bound to ctx and logs a pass-level failure. It is
// the scheduler's job, so cancelling ctx stops an in-flight pass.
func (e *Evaluator) Pass(ctx context.Context) {
	if _, err := e.RunContext(ctx); err != nil {
		e.logger.Error("Watch evaluation failed", "error", err)
	}
}

// RunContext performs one pass. A watch checked less than its own interval
// ago is skipped. A failing watch is logged and counted but does not stop
// the others; only failing to list watches is returned.
func (e *Evaluator) RunContext(ctx context.Context) (Result, error) {
	var res Result
	start := e.now()

	watches, err := e.store.ActiveWatches()
	if err != nil {
		return res, fmt.Errorf("failed to list watches: %w", err)
	}

	for i := range watches {
		if ctx.Err() != nil {
			return res, ctx.Err()
		}

		w := &watches[i]
		if !due(w, start) {
			res.Skipped++
			continue
		}
		res.Evaluated++

		notified, err := e.evaluate(ctx, w)
		if err != nil {
			res.Failed++
			e.logger.Error("Watch evaluation failed", "watch_id", w.ID, "url", w.URL, "error", err)
			continue
		}
		if notified {
			res.Notified++
		}
		if err := e.store.MarkWatchChecked(w.ID, start); err != nil {
			e.logger.Warn("Failed to record watch check", "watch_id", w.ID, "error", err)
		}
	}

	e.logger.Info("Watch pass finished",
		"evaluated", res.Evaluated,
		"notified", res.Notified,
		"failed", res.Failed,
		"skipped", res.Skipped,
	)
	return res, nil
}

func (e *Evaluator) evaluate(ctx context.Context, w *database.Watch) (bool, error) {
	doc, err := e.lists.Fetch(ctx, w.URL)
	if err != nil {
		return false, err
	}

	entries, err := e.lists.Parse(doc)
	if err != nil {
		if doc.Kind != causelist.KindPDF {
			return false, err
		}
		e.logger.Error("PDF cause list unreadable, treating as empty", "watch_id", w.ID, "url", w.URL, "error", err)
		entries = nil
	}

	needle := strings.ToLower(strings.TrimSpace(w.Identifier))
	if needle == "" {
		return false, nil
	}

	for _, entry := range entries {
		text := entry.CaseRef + " " + entry.Parties
		if !strings.Contains(strings.ToLower(text), needle) {
			continue
		}

		n := &database.Notification{
			WatchID:    w.ID,
			NotifiedAt: e.now(),
			Snippet:    truncate(strings.TrimSpace(text), SnippetLimit),
			SourceURL:  w.URL,
		}
		if err := e.store.RecordNotification(n); err != nil {
			return false, fmt.Errorf("failed to record notification: %w", err)
		}
		w.LastNotifiedAt = &n.NotifiedAt
		e.logger.Info("Watch matched", "watch_id", w.ID, "identifier", w.Identifier)
		return true, nil
	}

	return false, nil
}

// due reports whether w's own interval has elapsed since its last check
func due(w *database.Watch, now time.Time) bool {
	if w.LastCheckedAt == nil || w.IntervalMinutes <= 0 {
		return true
	}
	interval := time.Duration(w.IntervalMinutes) * time.Minute
	return now.Sub(*w.LastCheckedAt) >= interval-cadenceSlack
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
