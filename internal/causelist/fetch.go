package causelist

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"golang.org/x/net/html/charset"

	"github.com/JustJay7/ecourts-fetcher/internal/session"
)

// Fetch GETs rawURL and classifies the response. Non-2xx responses come back
// as *session.StatusError.
func Fetch(ctx context.Context, sess *session.Session, rawURL string) (*Document, error) {
	resp, err := sess.Open(ctx, rawURL, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	contentType := resp.Header.Get("Content-Type")
	doc := &Document{
		URL:        resp.Request.URL.String(),
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
	}

	if IsPDF(contentType, rawURL) {
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to read pdf: %w", err)
		}
		doc.Kind = KindPDF
		doc.Data = data
		return doc, nil
	}

	reader, err := charset.NewReader(resp.Body, contentType)
	if err != nil {
		// unknown charset label, read the bytes as they are
		reader = resp.Body
	}
	text, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read html: %w", err)
	}
	doc.Kind = KindHTML
	doc.Text = string(text)
	return doc, nil
}

// IsPDF classifies by declared content type first, then by the URL path
func IsPDF(contentType, rawURL string) bool {
	if strings.Contains(strings.ToLower(contentType), "application/pdf") {
		return true
	}
	path := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		path = u.Path
	}
	return strings.HasSuffix(strings.ToLower(path), ".pdf")
}
