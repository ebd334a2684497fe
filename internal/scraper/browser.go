package scraper

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/JustJay7/ecourts-fetcher/internal/config"
	"github.com/JustJay7/ecourts-fetcher/internal/session"
	"github.com/JustJay7/ecourts-fetcher/pkg/logger"
)

// BrowserFormSource loads the search form in headless Chromium, for portals
// that build their tokens with JavaScript. The browser's cookies are copied
// into the caller's session so the later plain-HTTP submission is accepted.
type BrowserFormSource struct {
	url     string
	timeout time.Duration
	browser *rod.Browser
	mu      sync.Mutex
	logger  *logger.Logger
}

// NewBrowserFormSource launches the browser
func NewBrowserFormSource(cfg *config.Config, log *logger.Logger) (*BrowserFormSource, error) {
	l := launcher.New().
		Headless(cfg.HeadlessMode).
		Set("user-agent", cfg.UserAgent).
		Set("disable-blink-features", "AutomationControlled").
		Delete("enable-automation")

	if cfg.BrowserPath != "" {
		l = l.Bin(cfg.BrowserPath)
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	return &BrowserFormSource{
		url:     cfg.SearchFormURL(),
		timeout: cfg.RequestTimeout,
		browser: browser,
		logger:  log,
	}, nil
}

// Snapshot implements FormSource
func (b *BrowserFormSource) Snapshot(ctx context.Context, sess *session.Session) (*FormSnapshot, error) {
	b.mu.Lock()
	page, err := b.browser.Page(proto.TargetCreateTarget{})
	b.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("failed to open page: %w", err)
	}
	defer page.Close()

	p := page.Context(ctx).Timeout(b.timeout)

	b.logger.Debug("Loading search form in browser", "url", b.url)
	if err := p.Navigate(b.url); err != nil {
		return nil, fmt.Errorf("failed to navigate: %w", err)
	}
	if err := p.WaitLoad(); err != nil {
		// the DOM is usually usable even when some resource stalls
		b.logger.Warn("Page load incomplete", "error", err)
	}

	markup, err := p.HTML()
	if err != nil {
		return nil, fmt.Errorf("failed to read page html: %w", err)
	}

	cookies, err := p.Cookies([]string{b.url})
	if err != nil {
		b.logger.Warn("Could not read browser cookies", "error", err)
	} else if err := sess.SetCookies(b.url, toHTTPCookies(cookies)); err != nil {
		b.logger.Warn("Could not copy browser cookies", "error", err)
	}

	return ParseSearchForm(markup)
}

// Close shuts the browser down
func (b *BrowserFormSource) Close() error {
	return b.browser.Close()
}

func toHTTPCookies(in []*proto.NetworkCookie) []*http.Cookie {
	out := make([]*http.Cookie, 0, len(in))
	for _, c := range in {
		out = append(out, &http.Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Path:     c.Path,
			Secure:   c.Secure,
			HttpOnly: c.HTTPOnly,
		})
	}
	return out
}
