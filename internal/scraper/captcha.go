package scraper

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/JustJay7/ecourts-fetcher/internal/session"
)

// CaptchaFetcher downloads the portal's CAPTCHA image for a human to read.
// The page GET binds the session cookie the image is issued against.
type CaptchaFetcher struct {
	PageURL  string
	ImageURL string
	Dir      string
	now      func() time.Time
}

// NewCaptchaFetcher creates a fetcher saving images into dir
func NewCaptchaFetcher(pageURL, imageURL, dir string) *CaptchaFetcher {
	return &CaptchaFetcher{PageURL: pageURL, ImageURL: imageURL, Dir: dir, now: time.Now}
}

// Fetch saves the image as captcha_<unix>.png and returns its path
func (c *CaptchaFetcher) Fetch(ctx context.Context, sess *session.Session) (string, error) {
	if c.PageURL != "" {
		if _, err := sess.Get(ctx, c.PageURL, nil); err != nil {
			return "", fmt.Errorf("failed to open captcha page: %w", err)
		}
	}

	resp, err := sess.Get(ctx, c.ImageURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to download captcha: %w", err)
	}

	if err := os.MkdirAll(c.Dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create captcha directory: %w", err)
	}

	path := filepath.Join(c.Dir, fmt.Sprintf("captcha_%d.png", c.now().Unix()))
	if err := os.WriteFile(path, resp.Body, 0644); err != nil {
		return "", fmt.Errorf("failed to save captcha: %w", err)
	}

	return path, nil
}
