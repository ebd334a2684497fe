package scraper

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/JustJay7/ecourts-fetcher/internal/htmltable"
)

var resultHeaderKeywords = []string{
	"case type", "case number", "case no", "case year", "sr no",
	"petitioner", "respondent", "party", "view", "hearing", "bench",
}

var negativeMarkers = []string{"invalid captcha", "record not found", "no record found"}

// isNegativeResponse reports whether the body is the portal's "nothing found"
// or CAPTCHA rejection page
func isNegativeResponse(body string) bool {
	lowered := strings.ToLower(body)
	for _, m := range negativeMarkers {
		if strings.Contains(lowered, m) {
			return true
		}
	}
	return false
}

// findResultsTable picks the best keyword-scoring table, else the first
// table in document order that holds a "view" link or mentions a case number
func findResultsTable(doc *goquery.Selection) *goquery.Selection {
	if best, score := htmltable.Best(doc, resultHeaderKeywords); best != nil && score > 0 {
		return best
	}

	return htmltable.First(doc, func(table *goquery.Selection) bool {
		hasView := table.Find("a").FilterFunction(func(_ int, a *goquery.Selection) bool {
			return strings.Contains(strings.ToLower(htmltable.Text(a)), "view")
		}).Length() > 0
		if hasView {
			return true
		}
		text := strings.ToLower(htmltable.Text(table))
		return strings.Contains(text, "case no") || strings.Contains(text, "case number")
	})
}

// resultRow is the first usable row of a results table
type resultRow struct {
	caseRef    string
	parties    string
	detailHref string
}

// firstResultRow returns the first data row with at least two cells and a
// non-empty case reference in the second cell
func firstResultRow(table *goquery.Selection) (resultRow, bool) {
	var row resultRow
	found := false

	table.Find("tr").EachWithBreak(func(_ int, tr *goquery.Selection) bool {
		if htmltable.IsHeaderRow(tr) {
			return true
		}
		cells := htmltable.CellTexts(tr)
		if len(cells) < 2 || cells[1] == "" {
			return true
		}

		row.caseRef = cells[1]
		if len(cells) >= 3 {
			row.parties = cells[2]
		}
		row.detailHref = detailLink(tr)
		found = true
		return false
	})

	return row, found
}

// detailLink prefers an anchor labelled "view", else any anchor in the row
func detailLink(tr *goquery.Selection) string {
	anchors := tr.Find("a")
	view := anchors.FilterFunction(func(_ int, a *goquery.Selection) bool {
		return strings.Contains(strings.ToLower(htmltable.Text(a)), "view")
	}).First()

	anchor := view
	if anchor.Length() == 0 {
		anchor = anchors.First()
	}
	return strings.TrimSpace(anchor.AttrOr("href", ""))
}

var detailTableClass = regexp.MustCompile(`(?i)table_val`)

var detailTableMarkers = []string{"petitioner", "respondent", "filed", "hearing"}

// detailFields is what a case detail page contributes to a ParsedCase
type detailFields struct {
	filingDate   string
	nextHearing  string
	status       string
	judgmentHref string
}

// parseDetailPage extracts label/value rows and the judgment link from a
// case detail page. Anything it cannot find stays empty.
func parseDetailPage(markup string) detailFields {
	var fields detailFields

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return fields
	}

	table := htmltable.First(doc.Selection, func(t *goquery.Selection) bool {
		for _, class := range strings.Fields(t.AttrOr("class", "")) {
			if detailTableClass.MatchString(class) {
				return true
			}
		}
		return false
	})
	if table == nil {
		table = htmltable.First(doc.Selection, func(t *goquery.Selection) bool {
			text := strings.ToLower(htmltable.Text(t))
			for _, m := range detailTableMarkers {
				if strings.Contains(text, m) {
					return true
				}
			}
			return false
		})
	}

	if table != nil {
		table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
			cells := htmltable.CellTexts(tr)
			if len(cells) < 2 {
				return
			}
			label := strings.ToLower(cells[0])
			value := cells[1]

			if strings.Contains(label, "filed") || strings.Contains(label, "filing") {
				fields.filingDate = value
			}
			if strings.Contains(label, "next") && strings.Contains(label, "hearing") {
				fields.nextHearing = value
			}
			if strings.Contains(label, "status") {
				fields.status = value
			}
		})
	}

	doc.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		if strings.Contains(strings.ToLower(htmltable.Text(a)), "judgment") {
			fields.judgmentHref = strings.TrimSpace(a.AttrOr("href", ""))
			return false
		}
		return true
	})

	return fields
}

func orNotFound(s string) string {
	if strings.TrimSpace(s) == "" {
		return NotFound
	}
	return s
}
