package htmltable

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func doc(t *testing.T, markup string) *goquery.Selection {
	t.Helper()
	d, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	require.NoError(t, err)
	return d.Selection
}

func TestTextJoinsAndCollapses(t *testing.T) {
	d := doc(t, `<table><tr><td> A <b>vs</b>
		B </td></tr></table>`)
	assert.Equal(t, "A vs B", Text(d.Find("td")))
}

func TestHeaderTextFallsBackToFirstRow(t *testing.T) {
	d := doc(t, `<table><tr><td>Sr No</td><td>Case No</td></tr><tr><td>1</td><td>X</td></tr></table>`)
	assert.Equal(t, "sr no case no", HeaderText(d.Find("table")))
}

func TestBestPrefersHigherScoreAndEarlierTie(t *testing.T) {
	d := doc(t, `
		<table id="a"><tr><th>Party</th></tr></table>
		<table id="b"><tr><th>Sr No</th><th>Case No</th><th>Party</th></tr></table>
		<table id="c"><tr><th>Sr No</th><th>Case No</th><th>Party</th></tr></table>`)

	best, score := Best(d, []string{"sr no", "case no", "party"})
	require.NotNil(t, best)
	assert.Equal(t, 3, score)
	id, _ := best.Attr("id")
	assert.Equal(t, "b", id)
}

func TestBestNoMatch(t *testing.T) {
	d := doc(t, `<table><tr><th>Weather</th></tr></table>`)
	best, score := Best(d, []string{"case no"})
	assert.Nil(t, best)
	assert.Zero(t, score)
}

func TestFirstAndRows(t *testing.T) {
	d := doc(t, `<table><tr><td>x</td></tr></table><table id="t"><tr><th>h</th></tr><tr><td>1</td><td>2</td></tr></table>`)
	tbl := First(d, func(s *goquery.Selection) bool { return s.Find("th").Length() > 0 })
	require.NotNil(t, tbl)

	rows := tbl.Find("tr")
	assert.True(t, IsHeaderRow(rows.Eq(0)))
	assert.False(t, IsHeaderRow(rows.Eq(1)))
	assert.Equal(t, []string{"1", "2"}, CellTexts(rows.Eq(1)))
	assert.Contains(t, OuterHTML(rows.Eq(1)), "<td>1</td>")
}
