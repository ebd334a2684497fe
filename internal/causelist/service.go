package causelist

import (
	"context"
	"net/url"

	"github.com/JustJay7/ecourts-fetcher/internal/config"
	"github.com/JustJay7/ecourts-fetcher/internal/pdftext"
	"github.com/JustJay7/ecourts-fetcher/internal/session"
	"github.com/JustJay7/ecourts-fetcher/pkg/logger"
)

// Cache stores parsed entries per source URL
type Cache interface {
	Get(ctx context.Context, sourceURL string) ([]Entry, bool, error)
	Set(ctx context.Context, sourceURL string, entries []Entry) error
}

// Service fetches and parses cause-lists, consulting the cache first
type Service struct {
	cfg        *config.Config
	extractor  pdftext.Extractor
	cache      Cache
	discoverer Discoverer
	logger     *logger.Logger
}

// NewService creates a Service. cache may be nil.
func NewService(cfg *config.Config, ex pdftext.Extractor, cache Cache, log *logger.Logger) *Service {
	return &Service{
		cfg:       cfg,
		extractor: ex,
		cache:     cache,
		discoverer: Discoverer{
			UserAgent: cfg.UserAgent,
			Timeout:   cfg.RequestTimeout,
		},
		logger: log,
	}
}

func (s *Service) newSession() *session.Session {
	return session.New(
		session.WithTimeout(s.cfg.RequestTimeout),
		session.WithUserAgent(s.cfg.UserAgent),
	)
}

// Parse dispatches a fetched document to the HTML or PDF parser
func (s *Service) Parse(doc *Document) ([]Entry, error) {
	if doc.Kind == KindPDF {
		if s.extractor == nil {
			return nil, ErrNoTextExtractor
		}
		entries, err := parsePDF(doc.Data, s.extractor)
		if err != nil {
			s.logger.Warn("PDF text extraction failed, matching raw bytes", "url", doc.URL, "error", err)
		}
		return entries, nil
	}
	return ParseHTML(doc.Text), nil
}

// Fetch retrieves and classifies rawURL on a fresh session
func (s *Service) Fetch(ctx context.Context, rawURL string) (*Document, error) {
	return Fetch(ctx, s.newSession(), rawURL)
}

// Load fetches rawURL with sess and parses it, bypassing the cache
func (s *Service) Load(ctx context.Context, sess *session.Session, rawURL string) ([]Entry, *Document, error) {
	s.logger.Debug("Fetching cause list", "url", rawURL)
	doc, err := Fetch(ctx, sess, rawURL)
	if err != nil {
		return nil, nil, err
	}
	entries, err := s.Parse(doc)
	if err != nil {
		return nil, doc, err
	}
	return entries, doc, nil
}

// Entries returns the parsed cause-list at rawURL, from cache when fresh
func (s *Service) Entries(ctx context.Context, rawURL string) ([]Entry, error) {
	if s.cache != nil {
		entries, ok, err := s.cache.Get(ctx, rawURL)
		if err != nil {
			s.logger.Warn("Cause list cache read failed", "url", rawURL, "error", err)
		} else if ok {
			s.logger.Debug("Cause list cache hit", "url", rawURL)
			return entries, nil
		}
	}

	entries, doc, err := s.Load(ctx, s.newSession(), rawURL)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Cause list parsed", "url", rawURL, "kind", doc.Kind, "entries", len(entries))

	if s.cache != nil {
		if err := s.cache.Set(ctx, rawURL, entries); err != nil {
			s.logger.Warn("Cause list cache write failed", "url", rawURL, "error", err)
		}
	}
	return entries, nil
}

// HighCourt fetches the configured High Court cause-list page
func (s *Service) HighCourt(ctx context.Context, params url.Values) ([]Entry, error) {
	return s.Entries(ctx, HighCourtURL(s.cfg.HighCourtCauseListURL, params))
}

// District fetches a district cause-list below the configured base
func (s *Service) District(ctx context.Context, endpoint string, params url.Values) ([]Entry, error) {
	target, err := DistrictURL(s.cfg.DistrictCauseListURL, endpoint, params)
	if err != nil {
		return nil, err
	}
	return s.Entries(ctx, target)
}

// Discover lists cause-list document links found on a listing page
func (s *Service) Discover(listingURL string) ([]string, error) {
	return s.discoverer.Discover(listingURL)
}
