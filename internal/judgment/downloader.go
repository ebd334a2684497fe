// Package judgment downloads judgment PDFs linked from case detail pages
package judgment

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/JustJay7/ecourts-fetcher/internal/database"
	"github.com/JustJay7/ecourts-fetcher/internal/session"
	"github.com/JustJay7/ecourts-fetcher/pkg/logger"
)

// Store is the persistence the downloader needs
type Store interface {
	PendingJudgments() ([]database.Judgment, error)
	SaveJudgment(j *database.Judgment) error
	DownloadedBefore(cutoff time.Time) ([]database.Judgment, error)
}

// Downloader fetches pending judgments into a dated directory tree
type Downloader struct {
	store    Store
	newSess  func() *session.Session
	logger   *logger.Logger
	savePath string
	delay    time.Duration
	now      func() time.Time
}

// NewDownloader creates a downloader writing under savePath
func NewDownloader(store Store, newSess func() *session.Session, log *logger.Logger, savePath string) *Downloader {
	return &Downloader{
		store:    store,
		newSess:  newSess,
		logger:   log,
		savePath: savePath,
		delay:    2 * time.Second,
		now:      time.Now,
	}
}

// Summary counts the outcome of one download run
type Summary struct {
	Downloaded int `json:"downloaded"`
	Failed     int `json:"failed"`
}

// DownloadPending downloads every judgment not yet on disk. Failures are
// logged per row and do not stop the run.
func (d *Downloader) DownloadPending(ctx context.Context) (Summary, error) {
	var sum Summary

	pending, err := d.store.PendingJudgments()
	if err != nil {
		return sum, fmt.Errorf("failed to fetch pending judgments: %w", err)
	}

	d.logger.Info("Found judgments to download", "count", len(pending))

	sess := d.newSess()
	for i := range pending {
		j := &pending[i]
		if i > 0 && d.delay > 0 {
			select {
			case <-ctx.Done():
				return sum, ctx.Err()
			case <-time.After(d.delay):
			}
		}

		if err := d.download(ctx, sess, j); err != nil {
			sum.Failed++
			d.logger.Error("Failed to download judgment", "judgment_id", j.ID, "url", j.URL, "error", err)
			continue
		}

		downloadedAt := d.now()
		j.Downloaded = true
		j.DownloadedAt = &downloadedAt
		if err := d.store.SaveJudgment(j); err != nil {
			sum.Failed++
			d.logger.Error("Failed to mark judgment downloaded", "judgment_id", j.ID, "error", err)
			continue
		}
		sum.Downloaded++
	}

	return sum, nil
}

func (d *Downloader) download(ctx context.Context, sess *session.Session, j *database.Judgment) error {
	now := d.now()
	dirPath := filepath.Join(d.savePath, "judgments",
		fmt.Sprintf("%d", now.Year()),
		fmt.Sprintf("%02d", now.Month()))

	if err := os.MkdirAll(dirPath, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	fullPath := filepath.Join(dirPath, fmt.Sprintf("judgment_%d.pdf", j.ID))

	resp, err := sess.Open(ctx, j.URL, nil)
	if err != nil {
		return fmt.Errorf("failed to download: %w", err)
	}
	defer resp.Body.Close()

	file, err := os.Create(fullPath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	size, err := io.Copy(file, resp.Body)
	closeErr := file.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(fullPath)
		return fmt.Errorf("failed to save file: %w", err)
	}

	j.LocalPath = fullPath
	j.Size = size
	d.logger.Info("Judgment downloaded", "judgment_id", j.ID, "size", size, "path", fullPath)
	return nil
}

// CleanupOlderThan removes files downloaded more than daysToKeep days ago.
// Their rows stay downloaded and are stamped purged so DownloadPending does
// not fetch them again.
func (d *Downloader) CleanupOlderThan(daysToKeep int) (int, error) {
	now := d.now()
	cutoff := now.AddDate(0, 0, -daysToKeep)

	stale, err := d.store.DownloadedBefore(cutoff)
	if err != nil {
		return 0, err
	}

	removed := 0
	for i := range stale {
		j := &stale[i]
		if err := os.Remove(j.LocalPath); err != nil && !os.IsNotExist(err) {
			d.logger.Warn("Failed to remove judgment", "path", j.LocalPath, "error", err)
			continue
		}

		j.LocalPath = ""
		j.PurgedAt = &now
		if err := d.store.SaveJudgment(j); err != nil {
			d.logger.Warn("Failed to mark judgment purged", "judgment_id", j.ID, "error", err)
			continue
		}
		removed++
	}

	return removed, nil
}
