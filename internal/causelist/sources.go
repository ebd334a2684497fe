package causelist

import (
	"fmt"
	"net/url"
)

// HighCourtURL appends params to the High Court cause-list page
func HighCourtURL(base string, params url.Values) string {
	return withQuery(base, params)
}

// DistrictURL resolves endpoint against the district services base, then
// appends params. An empty endpoint uses the base itself.
func DistrictURL(base, endpoint string, params url.Values) (string, error) {
	target := base
	if endpoint != "" {
		b, err := url.Parse(base)
		if err != nil {
			return "", fmt.Errorf("invalid base url: %w", err)
		}
		ref, err := url.Parse(endpoint)
		if err != nil {
			return "", fmt.Errorf("invalid endpoint: %w", err)
		}
		target = b.ResolveReference(ref).String()
	}
	return withQuery(target, params), nil
}

func withQuery(target string, params url.Values) string {
	if len(params) == 0 {
		return target
	}
	return target + "?" + params.Encode()
}
