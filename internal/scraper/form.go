package scraper

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/JustJay7/ecourts-fetcher/internal/htmltable"
	"github.com/JustJay7/ecourts-fetcher/internal/session"
)

// Option is one <option> of a select menu
type Option struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// SelectMenu is a named select with its options in served order. A label
// that appears twice keeps its first position and its last value.
type SelectMenu struct {
	Name    string   `json:"name"`
	Options []Option `json:"options"`
}

// Lookup returns the value for a label, exact match only
func (m SelectMenu) Lookup(label string) (string, bool) {
	for _, o := range m.Options {
		if o.Label == label {
			return o.Value, true
		}
	}
	return "", false
}

func (m *SelectMenu) add(label, value string) {
	for i := range m.Options {
		if m.Options[i].Label == label {
			m.Options[i].Value = value
			return
		}
	}
	m.Options = append(m.Options, Option{Label: label, Value: value})
}

// FormSnapshot is the portal's dynamic form state captured for one session
type FormSnapshot struct {
	Hidden  map[string]string `json:"hidden"`
	Selects []SelectMenu      `json:"selects"`
	Action  string            `json:"action"`
	Method  string            `json:"method"`
}

// Select returns the select menu with the given name
func (f *FormSnapshot) Select(name string) (SelectMenu, bool) {
	for _, s := range f.Selects {
		if s.Name == name {
			return s, true
		}
	}
	return SelectMenu{}, false
}

// FormSource captures a FormSnapshot using the caller's session
type FormSource interface {
	Snapshot(ctx context.Context, sess *session.Session) (*FormSnapshot, error)
}

// HTTPFormSource fetches the search form with a plain GET
type HTTPFormSource struct {
	URL string
}

// Snapshot implements FormSource
func (h HTTPFormSource) Snapshot(ctx context.Context, sess *session.Session) (*FormSnapshot, error) {
	return FetchSearchForm(ctx, sess, h.URL)
}

// FetchSearchForm GETs the form page once and parses it. No retries.
func FetchSearchForm(ctx context.Context, sess *session.Session, formURL string) (*FormSnapshot, error) {
	resp, err := sess.Get(ctx, formURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch search form: %w", err)
	}
	return ParseSearchForm(resp.Text())
}

// ParseSearchForm extracts hidden inputs, select options and the first
// form's action and method from markup
func ParseSearchForm(markup string) (*FormSnapshot, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("failed to parse search form: %w", err)
	}

	snap := &FormSnapshot{
		Hidden: make(map[string]string),
		Method: "post",
	}

	doc.Find("input").Each(func(_ int, in *goquery.Selection) {
		if !strings.EqualFold(in.AttrOr("type", ""), "hidden") {
			return
		}
		name := in.AttrOr("name", "")
		if name == "" {
			return
		}
		snap.Hidden[name] = in.AttrOr("value", "")
	})

	doc.Find("select").Each(func(_ int, sel *goquery.Selection) {
		name := sel.AttrOr("name", "")
		if name == "" {
			return
		}
		menu := SelectMenu{Name: name}
		sel.Find("option").Each(func(_ int, opt *goquery.Selection) {
			menu.add(htmltable.Text(opt), opt.AttrOr("value", ""))
		})

		// a repeated select name replaces the earlier menu in place
		for i := range snap.Selects {
			if snap.Selects[i].Name == name {
				snap.Selects[i] = menu
				return
			}
		}
		snap.Selects = append(snap.Selects, menu)
	})

	if form := doc.Find("form").First(); form.Length() > 0 {
		snap.Action = strings.TrimSpace(form.AttrOr("action", ""))
		if method := strings.TrimSpace(form.AttrOr("method", "")); method != "" {
			snap.Method = strings.ToLower(method)
		}
	}

	return snap, nil
}
