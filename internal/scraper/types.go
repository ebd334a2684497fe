package scraper

import "errors"

// NotFound fills any ParsedCase text field that could not be extracted
const NotFound = "Not Found"

// ParsedCase is the normalised result of a successful search. Parties,
// FilingDate, NextHearingDate and CaseStatus are never empty.
type ParsedCase struct {
	CaseRef         string `json:"case_ref"`
	Parties         string `json:"parties"`
	FilingDate      string `json:"filing_date"`
	NextHearingDate string `json:"next_hearing_date"`
	CaseStatus      string `json:"case_status"`
	JudgmentLink    string `json:"judgment_link"`
	DetailPageHTML  string `json:"detail_page_html,omitempty"`
}

var (
	// ErrNoRecord means the portal answered but reported no match or a
	// rejected CAPTCHA
	ErrNoRecord = errors.New("record not found or invalid captcha")
	// ErrTableNotFound means no results table could be located
	ErrTableNotFound = errors.New("results table not found")
	// ErrNoUsableRows means the results table had no row with a case reference
	ErrNoUsableRows = errors.New("no usable rows in results table")
)

// Message returns the user-facing explanation for a search error
func Message(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNoRecord):
		return "Record Not Found or Invalid CAPTCHA."
	case errors.Is(err, ErrTableNotFound):
		return "Could not find the case details table on the page."
	case errors.Is(err, ErrNoUsableRows):
		return "No usable rows found in results table."
	default:
		return err.Error()
	}
}

// IsDomainNegative reports whether err is a successful request whose outcome
// was "no data" rather than a transport failure
func IsDomainNegative(err error) bool {
	return errors.Is(err, ErrNoRecord) || errors.Is(err, ErrTableNotFound) || errors.Is(err, ErrNoUsableRows)
}
