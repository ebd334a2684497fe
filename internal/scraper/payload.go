package scraper

import (
	"net/url"
	"strings"
)

const (
	// FallbackJurisdiction is submitted as cino when no state option matched
	FallbackJurisdiction = "HCTN01"
	// StatusBoth asks the portal for pending and disposed cases
	StatusBoth = "B"
)

// Select names are matched against these substrings in order
var (
	jurisdictionSelectHints = []string{"cino", "court", "state"}
	benchSelectHints        = []string{"bench", "location"}
)

// optionalField maps one criteria value onto the form keys the portal might
// use for it. Keys already present in the payload are left alone.
type optionalField struct {
	value   func(c SearchCriteria) string
	aliases []string
}

var optionalFields = []optionalField{
	{func(c SearchCriteria) string { return c.PartyName }, []string{"party_name", "party"}},
	{func(c SearchCriteria) string { return c.FilingNumber }, []string{"filing_no"}},
	{func(c SearchCriteria) string { return c.AdvocateName }, []string{"advocate"}},
	{func(c SearchCriteria) string { return c.FIRNumber }, []string{"fir_no"}},
	{func(c SearchCriteria) string { return c.Act }, []string{"act"}},
}

// Payload is a submission body together with where to send it
type Payload struct {
	Values url.Values
	Target string
}

// BuildPayload merges the snapshot's tokens with the user's criteria. snap
// may be nil, in which case the payload starts empty and targets
// defaultTarget. formURL is the base relative form actions resolve against.
func BuildPayload(snap *FormSnapshot, criteria SearchCriteria, captcha, formURL, defaultTarget string) Payload {
	values := url.Values{}
	target := defaultTarget
	seeded := map[string]bool{}

	if snap != nil {
		for name, value := range snap.Hidden {
			values.Set(name, value)
			seeded[name] = true
		}
		if snap.Action != "" {
			target = resolveURL(formURL, snap.Action)
		}
	}

	jurisdictionResolved := false
	if snap != nil {
		if name, value, ok := matchSelect(snap.Selects, jurisdictionSelectHints, criteria.State); ok {
			values.Set(name, value)
			jurisdictionResolved = true
		}
		if name, value, ok := matchSelect(snap.Selects, benchSelectHints, criteria.Bench); ok {
			values.Set(name, value)
		}
	}

	if !jurisdictionResolved && !values.Has("cino") {
		values.Set("cino", FallbackJurisdiction)
	}

	values.Set("case_type", criteria.EffectiveCaseType())
	values.Set("case_no", criteria.CaseNumber)
	values.Set("year", criteria.CaseYear)
	values.Set("captcha_code", captcha)

	// a CNR is the lookup key itself, so it replaces any jurisdiction value
	// unless the portal served its own cino token
	if criteria.CNR != "" && !seeded["cino"] {
		values.Set("cino", criteria.CNR)
	}

	for _, f := range optionalFields {
		v := f.value(criteria)
		if v == "" {
			continue
		}
		for _, alias := range f.aliases {
			if !values.Has(alias) {
				values.Set(alias, v)
			}
		}
	}

	if !hasKeyContaining(values, "status") {
		values.Set("status", StatusBoth)
	}

	return Payload{Values: values, Target: target}
}

// matchSelect finds the first select whose name contains one of hints, then
// picks the option whose label equals want, else the first whose label
// contains want. Both comparisons ignore case and surrounding space.
func matchSelect(selects []SelectMenu, hints []string, want string) (string, string, bool) {
	want = strings.ToLower(strings.TrimSpace(want))
	if want == "" {
		return "", "", false
	}

	menu, ok := findSelect(selects, hints)
	if !ok {
		return "", "", false
	}

	matchers := []func(label string) bool{
		func(label string) bool { return label == want },
		func(label string) bool { return strings.Contains(label, want) },
	}
	for _, match := range matchers {
		for _, opt := range menu.Options {
			if match(strings.ToLower(strings.TrimSpace(opt.Label))) {
				return menu.Name, opt.Value, true
			}
		}
	}
	return "", "", false
}

func findSelect(selects []SelectMenu, hints []string) (SelectMenu, bool) {
	for _, s := range selects {
		name := strings.ToLower(s.Name)
		for _, h := range hints {
			if strings.Contains(name, h) {
				return s, true
			}
		}
	}
	return SelectMenu{}, false
}

func hasKeyContaining(values url.Values, substr string) bool {
	for k := range values {
		if strings.Contains(strings.ToLower(k), substr) {
			return true
		}
	}
	return false
}

// resolveURL resolves ref against base, returning ref unchanged when either
// does not parse
func resolveURL(base, ref string) string {
	b, err := url.Parse(base)
	if err != nil {
		return ref
	}
	r, err := url.Parse(strings.TrimSpace(ref))
	if err != nil {
		return ref
	}
	return b.ResolveReference(r).String()
}
