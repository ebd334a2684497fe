package scraper

import "strings"

// SearchMode names the kind of lookup a search performs
type SearchMode string

const (
	ModeNone         SearchMode = ""
	ModeCNR          SearchMode = "cino"
	ModePartyName    SearchMode = "party_name"
	ModeCaseNumber   SearchMode = "case_number"
	ModeFilingNumber SearchMode = "filing_number"
	ModeAdvocateName SearchMode = "advocate_name"
	ModeFIRNumber    SearchMode = "fir_number"
	ModeAct          SearchMode = "act"
	ModeCaseTypeOnly SearchMode = "case_type_only"
)

// SearchCriteria is what the user asked the portal for
type SearchCriteria struct {
	State        string `json:"state" form:"state"`
	Bench        string `json:"bench" form:"bench"`
	CNR          string `json:"cino" form:"cino"`
	PartyName    string `json:"party_name" form:"party_name"`
	CaseType     string `json:"case_type" form:"case_type"`
	CaseNumber   string `json:"case_number" form:"case_number"`
	CaseYear     string `json:"case_year" form:"case_year"`
	FilingNumber string `json:"filing_number" form:"filing_number"`
	AdvocateName string `json:"advocate_name" form:"advocate_name"`
	FIRNumber    string `json:"fir_number" form:"fir_number"`
	Act          string `json:"act" form:"act"`
	CaseTypeOnly string `json:"case_type_only" form:"case_type_only"`
}

// modePriority is the tie-break order: the first non-empty field wins
var modePriority = []struct {
	mode  SearchMode
	value func(c SearchCriteria) string
}{
	{ModeCNR, func(c SearchCriteria) string { return c.CNR }},
	{ModePartyName, func(c SearchCriteria) string { return c.PartyName }},
	{ModeCaseNumber, func(c SearchCriteria) string { return c.CaseNumber }},
	{ModeFilingNumber, func(c SearchCriteria) string { return c.FilingNumber }},
	{ModeAdvocateName, func(c SearchCriteria) string { return c.AdvocateName }},
	{ModeFIRNumber, func(c SearchCriteria) string { return c.FIRNumber }},
	{ModeAct, func(c SearchCriteria) string { return c.Act }},
	{ModeCaseTypeOnly, func(c SearchCriteria) string { return c.CaseTypeOnly }},
}

// Mode returns the active search mode
func (c SearchCriteria) Mode() SearchMode {
	for _, p := range modePriority {
		if strings.TrimSpace(p.value(c)) != "" {
			return p.mode
		}
	}
	return ModeNone
}

// EffectiveCaseType is the case type submitted to the portal. A case-type-only
// search carries its value in CaseTypeOnly.
func (c SearchCriteria) EffectiveCaseType() string {
	if c.CaseType != "" {
		return c.CaseType
	}
	return c.CaseTypeOnly
}
