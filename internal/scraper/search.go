package scraper

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/JustJay7/ecourts-fetcher/internal/config"
	"github.com/JustJay7/ecourts-fetcher/internal/session"
	"github.com/JustJay7/ecourts-fetcher/pkg/logger"
)

// Searcher submits case searches against the portal and extracts the result
type Searcher struct {
	formURL     string
	endpointURL string
	origin      string
	forms       FormSource
	dumper      *Dumper
	logger      *logger.Logger
}

// NewSearcher wires a searcher to the portal described by cfg
func NewSearcher(cfg *config.Config, forms FormSource, dumper *Dumper, log *logger.Logger) *Searcher {
	if forms == nil {
		forms = HTTPFormSource{URL: cfg.SearchFormURL()}
	}
	return &Searcher{
		formURL:     cfg.SearchFormURL(),
		endpointURL: cfg.SearchEndpointURL(),
		origin:      cfg.PortalBaseURL,
		forms:       forms,
		dumper:      dumper,
		logger:      log,
	}
}

// Forms returns the source used to capture form snapshots
func (s *Searcher) Forms() FormSource {
	return s.forms
}

// Search submits criteria with the solved CAPTCHA. snap may be nil, in which
// case a fresh snapshot is captured on a best-effort basis.
//
// The raw response body is returned whenever the portal answered, including
// alongside ErrNoRecord, ErrTableNotFound and ErrNoUsableRows, so the caller
// can archive it regardless of outcome. Only one case is returned per
// submission: the first usable row of the results table.
func (s *Searcher) Search(ctx context.Context, sess *session.Session, criteria SearchCriteria, captcha string, snap *FormSnapshot) (*ParsedCase, string, error) {
	if snap == nil {
		fetched, err := s.forms.Snapshot(ctx, sess)
		if err != nil {
			s.logger.Warn("Search form unavailable, submitting without tokens", "error", err)
		} else {
			snap = fetched
		}
	}

	payload := BuildPayload(snap, criteria, captcha, s.formURL, s.endpointURL)
	s.logger.Debug("Submitting search",
		"target", payload.Target,
		"mode", criteria.Mode(),
		"fields", len(payload.Values),
	)

	resp, err := sess.PostForm(ctx, payload.Target, payload.Values, s.headers())
	if err != nil {
		s.logger.Warn("Search submission failed, retrying default endpoint",
			"target", payload.Target,
			"fallback", s.endpointURL,
			"error", err,
		)
		resp, err = sess.PostForm(ctx, s.endpointURL, payload.Values, s.headers())
		if err != nil {
			return nil, "", fmt.Errorf("search submission failed: %w", err)
		}
	}

	raw := resp.Text()

	if isNegativeResponse(raw) {
		s.logger.Info("Portal reported no record or rejected captcha")
		return nil, raw, ErrNoRecord
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return nil, raw, fmt.Errorf("failed to parse search response: %w", err)
	}

	table := findResultsTable(doc.Selection)
	if table == nil {
		s.dump(ctx, sess, resp, payload.Values, raw)
		return nil, raw, ErrTableNotFound
	}

	row, ok := firstResultRow(table)
	if !ok {
		return nil, raw, ErrNoUsableRows
	}

	result := &ParsedCase{
		CaseRef: row.caseRef,
		Parties: orNotFound(row.parties),
	}

	var detail detailFields
	if row.detailHref != "" {
		detailURL := resolveURL(resp.URL.String(), row.detailHref)
		detailResp, err := sess.Get(ctx, detailURL, nil)
		if err != nil {
			s.logger.Warn("Detail page unavailable", "url", detailURL, "error", err)
		} else {
			result.DetailPageHTML = detailResp.Text()
			detail = parseDetailPage(result.DetailPageHTML)
			if detail.judgmentHref != "" {
				result.JudgmentLink = resolveURL(detailResp.URL.String(), detail.judgmentHref)
			}
		}
	}

	result.FilingDate = orNotFound(detail.filingDate)
	result.NextHearingDate = orNotFound(detail.nextHearing)
	result.CaseStatus = orNotFound(detail.status)

	s.logger.Info("Case extracted", "case_ref", result.CaseRef, "status", result.CaseStatus)
	return result, raw, nil
}

// headers mimic the portal's own XHR so the submission is not rejected
func (s *Searcher) headers() map[string]string {
	return map[string]string{
		"Accept":           "application/json, text/javascript, */*; q=0.01",
		"X-Requested-With": "XMLHttpRequest",
		"Origin":           s.origin,
		"Referer":          s.origin + "/",
		"Content-Type":     "application/x-www-form-urlencoded; charset=UTF-8",
	}
}

func (s *Searcher) dump(ctx context.Context, sess *session.Session, resp *session.Response, payload url.Values, raw string) {
	if s.dumper == nil {
		return
	}
	path, err := s.dumper.Write(ctx, DumpRecord{
		URL:     resp.URL.String(),
		Status:  resp.Status,
		Header:  resp.Header,
		Payload: payload,
		Cookies: sess.CookieMap(resp.URL.String()),
		Body:    raw,
	})
	if err != nil {
		s.logger.Error("Failed to write diagnostic dump", "error", err)
		return
	}
	s.logger.Warn("Results table not found, response dumped", "path", path)
}
