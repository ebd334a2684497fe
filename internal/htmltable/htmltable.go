// Package htmltable holds the table heuristics shared by the search result
// extractor and the cause-list parser: header keyword scoring, best-table
// selection and normalised cell text.
package htmltable

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Text returns the text of every node in the selection, with text nodes
// joined by a single space and runs of whitespace collapsed.
func Text(sel *goquery.Selection) string {
	var parts []string
	for _, n := range sel.Nodes {
		collect(n, &parts)
	}
	return strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
}

func collect(n *html.Node, parts *[]string) {
	if n.Type == html.TextNode {
		*parts = append(*parts, n.Data)
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collect(c, parts)
	}
}

// HeaderText is the lower-cased text of the table's <th> cells, or of its
// first row's cells when the table has no <th> at all.
func HeaderText(table *goquery.Selection) string {
	var headers []string
	table.Find("th").Each(func(_ int, th *goquery.Selection) {
		headers = append(headers, strings.ToLower(Text(th)))
	})

	if len(headers) == 0 {
		table.Find("tr").First().Find("td, th").Each(func(_ int, cell *goquery.Selection) {
			headers = append(headers, strings.ToLower(Text(cell)))
		})
	}

	return strings.Join(headers, " ")
}

// Score counts how many keywords occur in the table's header text
func Score(table *goquery.Selection, keywords []string) int {
	header := HeaderText(table)
	score := 0
	for _, k := range keywords {
		if strings.Contains(header, k) {
			score++
		}
	}
	return score
}

// Best returns the highest scoring table in document order. Ties keep the
// earlier table. A nil selection means no table scored above zero.
func Best(doc *goquery.Selection, keywords []string) (*goquery.Selection, int) {
	var best *goquery.Selection
	bestScore := 0

	doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		if s := Score(table, keywords); s > bestScore {
			bestScore = s
			best = table
		}
	})

	return best, bestScore
}

// First returns the first table in document order for which match is true
func First(doc *goquery.Selection, match func(table *goquery.Selection) bool) *goquery.Selection {
	var found *goquery.Selection
	doc.Find("table").EachWithBreak(func(_ int, table *goquery.Selection) bool {
		if match(table) {
			found = table
			return false
		}
		return true
	})
	return found
}

// IsHeaderRow reports whether the row contains a header cell
func IsHeaderRow(tr *goquery.Selection) bool {
	return tr.Find("th").Length() > 0
}

// CellTexts returns the normalised text of each <td> in the row
func CellTexts(tr *goquery.Selection) []string {
	cells := tr.Find("td")
	texts := make([]string, 0, cells.Length())
	cells.Each(func(_ int, td *goquery.Selection) {
		texts = append(texts, Text(td))
	})
	return texts
}

// OuterHTML renders the selection's first node, or "" when rendering fails
func OuterHTML(sel *goquery.Selection) string {
	out, err := goquery.OuterHtml(sel)
	if err != nil {
		return ""
	}
	return out
}
