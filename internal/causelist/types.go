// Package causelist fetches published cause-lists, HTML or PDF, and turns
// them into flat entries.
package causelist

import (
	"errors"
	"net/http"
)

// Entry is one listed case. Fields that could not be extracted are empty.
type Entry struct {
	CaseRef     string `json:"case_ref"`
	Parties     string `json:"parties"`
	HearingDate string `json:"hearing_date"`
	Bench       string `json:"bench"`
	RawRowHTML  string `json:"raw_row_html,omitempty"`
}

// Kind is the classification of a fetched document
type Kind string

const (
	KindHTML Kind = "html"
	KindPDF  Kind = "pdf"
)

// Document is a fetched cause-list. Data is set for PDFs, Text for HTML.
type Document struct {
	URL        string
	Kind       Kind
	Text       string
	Data       []byte
	StatusCode int
	Header     http.Header
}

// ErrNoTextExtractor means a PDF was fetched but no extractor is configured
var ErrNoTextExtractor = errors.New("no pdf text extractor configured")
