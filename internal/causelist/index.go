package causelist

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"
)

// Discoverer walks a listing page and collects links to cause-list documents
type Discoverer struct {
	UserAgent string
	Timeout   time.Duration
	Transport http.RoundTripper
}

// Discover returns absolute URLs of anchors that point at a PDF or whose
// text mentions a cause list, in document order without duplicates
func (d Discoverer) Discover(listingURL string) ([]string, error) {
	c := colly.NewCollector(colly.AllowURLRevisit())
	if d.UserAgent != "" {
		c.UserAgent = d.UserAgent
	}
	if d.Timeout > 0 {
		c.SetRequestTimeout(d.Timeout)
	}
	if d.Transport != nil {
		c.WithTransport(d.Transport)
	}

	seen := make(map[string]bool)
	links := []string{}
	c.OnHTML("a[href]", func(e *colly.HTMLElement) {
		href := strings.TrimSpace(e.Attr("href"))
		if href == "" || strings.HasPrefix(strings.ToLower(href), "javascript:") {
			return
		}
		abs := e.Request.AbsoluteURL(href)
		if abs == "" || seen[abs] {
			return
		}
		if !IsPDF("", abs) && !mentionsCauseList(e.Text) {
			return
		}
		seen[abs] = true
		links = append(links, abs)
	})

	var visitErr error
	c.OnError(func(r *colly.Response, err error) {
		visitErr = fmt.Errorf("failed to load listing %s (status %d): %w", r.Request.URL, r.StatusCode, err)
	})

	if err := c.Visit(listingURL); err != nil {
		return nil, fmt.Errorf("failed to visit listing: %w", err)
	}
	c.Wait()

	if visitErr != nil {
		return nil, visitErr
	}
	return links, nil
}

func mentionsCauseList(text string) bool {
	t := strings.Join(strings.Fields(strings.ToLower(text)), " ")
	return strings.Contains(t, "cause list") || strings.Contains(t, "causelist") || strings.Contains(t, "cause-list")
}
