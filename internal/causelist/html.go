package causelist

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/JustJay7/ecourts-fetcher/internal/htmltable"
)

var headerKeywords = []string{
	"case type", "case number", "case no", "case year", "sr no",
	"petitioner", "respondent", "party", "parties", "view", "hearing",
	"bench", "advocate", "item no",
}

var fallbackMarkers = []string{"view", "case no", "case number"}

var (
	datePattern  = regexp.MustCompile(`\b\d{1,2}[-/]\d{1,2}[-/]\d{2,4}\b`)
	benchPattern = regexp.MustCompile(`([A-Za-z\s]{4,50}bench[\s\w,\-()]*)`)
)

// ParseHTML extracts entries from the best matching table. Malformed or
// table-less input yields an empty slice.
func ParseHTML(markup string) []Entry {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return []Entry{}
	}

	table, score := htmltable.Best(doc.Selection, headerKeywords)
	if table == nil || score == 0 {
		table = htmltable.First(doc.Selection, func(t *goquery.Selection) bool {
			text := strings.ToLower(htmltable.Text(t))
			for _, m := range fallbackMarkers {
				if strings.Contains(text, m) {
					return true
				}
			}
			return false
		})
	}
	if table == nil {
		return []Entry{}
	}

	entries := []Entry{}
	table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		if htmltable.IsHeaderRow(tr) {
			return
		}
		cells := htmltable.CellTexts(tr)
		if len(cells) == 0 {
			return
		}
		entries = append(entries, rowEntry(tr, cells))
	})
	return entries
}

func rowEntry(tr *goquery.Selection, cells []string) Entry {
	e := Entry{CaseRef: cells[0], RawRowHTML: htmltable.OuterHTML(tr)}
	if len(cells) >= 2 {
		e.CaseRef = cells[1]
	}
	if len(cells) >= 3 {
		e.Parties = cells[2]
	}

	combined := strings.ToLower(strings.Join(cells, " "))
	e.HearingDate = datePattern.FindString(combined)
	if strings.Contains(combined, "bench") {
		e.Bench = strings.TrimSpace(benchPattern.FindString(combined))
	}
	return e
}
