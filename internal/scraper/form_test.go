package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JustJay7/ecourts-fetcher/internal/session"
)

const sampleForm = `
<html><body>
<form action="index_qry.php?action_code=showRecords" method="GET">
  <input type="hidden" name="token" value="t0k3n">
  <input type="HIDDEN" name="appFlag" value="">
  <input type="hidden" value="nameless">
  <input type="text" name="case_no" value="ignored">
  <select name="court_code">
    <option value="">Select</option>
    <option value="AP1">Andhra Pradesh</option>
    <option value="AP2">Andhra Pradesh High Court</option>
    <option value="TS1">Telangana</option>
    <option value="AP3">Andhra Pradesh</option>
  </select>
  <select name="bench_code">
    <option value="1">Principal Bench at Amaravati</option>
  </select>
  <select><option value="x">no name</option></select>
</form>
<form action="other.php"></form>
</body></html>`

func TestParseSearchForm(t *testing.T) {
	snap, err := ParseSearchForm(sampleForm)
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"token": "t0k3n", "appFlag": ""}, snap.Hidden)
	assert.Equal(t, "index_qry.php?action_code=showRecords", snap.Action)
	assert.Equal(t, "get", snap.Method)

	require.Len(t, snap.Selects, 2)
	court, ok := snap.Select("court_code")
	require.True(t, ok)

	// duplicate label keeps its first position and takes the last value
	assert.Equal(t, []Option{
		{Label: "Select", Value: ""},
		{Label: "Andhra Pradesh", Value: "AP3"},
		{Label: "Andhra Pradesh High Court", Value: "AP2"},
		{Label: "Telangana", Value: "TS1"},
	}, court.Options)

	v, ok := court.Lookup("Telangana")
	assert.True(t, ok)
	assert.Equal(t, "TS1", v)
}

func TestParseSearchFormDefaults(t *testing.T) {
	snap, err := ParseSearchForm(`<form><input type="hidden" name="a" value="1"></form>`)
	require.NoError(t, err)
	assert.Equal(t, "post", snap.Method)
	assert.Empty(t, snap.Action)

	snap, err = ParseSearchForm("not html at all")
	require.NoError(t, err)
	assert.Empty(t, snap.Hidden)
	assert.Empty(t, snap.Selects)
	assert.Equal(t, "post", snap.Method)
}

func TestFetchSearchForm(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/broken" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(sampleForm))
	}))
	defer srv.Close()

	sess := session.New()
	snap, err := FetchSearchForm(context.Background(), sess, srv.URL+"/form")
	require.NoError(t, err)
	assert.Equal(t, "t0k3n", snap.Hidden["token"])

	snap, err = HTTPFormSource{URL: srv.URL + "/broken"}.Snapshot(context.Background(), sess)
	assert.Error(t, err)
	assert.Nil(t, snap)
}
