package causelist

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JustJay7/ecourts-fetcher/internal/config"
	"github.com/JustJay7/ecourts-fetcher/internal/pdftext"
	"github.com/JustJay7/ecourts-fetcher/internal/session"
	"github.com/JustJay7/ecourts-fetcher/pkg/logger"
)

const scenarioHTML = `<html><body>
<table><tr><td>Home</td><td>About</td></tr></table>
<table>
  <tr><th>Sr No</th><th>Case No</th><th>Parties</th><th>Hearing Date</th></tr>
  <tr><td>1</td><td>CRL.A 123/2024</td><td>A vs B</td><td>12-03-2025</td></tr>
</table>
</body></html>`

func TestParseHTMLScenario(t *testing.T) {
	entries := ParseHTML(scenarioHTML)
	require.Len(t, entries, 1)

	e := entries[0]
	assert.Equal(t, "CRL.A 123/2024", e.CaseRef)
	assert.Equal(t, "A vs B", e.Parties)
	assert.Equal(t, "12-03-2025", e.HearingDate)
	assert.Empty(t, e.Bench)
	assert.Contains(t, e.RawRowHTML, "<tr>")
}

func TestParseHTMLDeterministic(t *testing.T) {
	assert.Equal(t, ParseHTML(scenarioHTML), ParseHTML(scenarioHTML))
}

func TestParseHTMLTotal(t *testing.T) {
	inputs := []string{"", "garbage \x00\xff <<<", "<html><body><p>no tables</p></body></html>", "<table></table>"}
	for _, in := range inputs {
		entries := ParseHTML(in)
		assert.NotNil(t, entries)
		assert.Empty(t, entries)
	}
}

func TestParseHTMLRowShapes(t *testing.T) {
	markup := `<table>
	  <tr><td>case no</td></tr>
	  <tr><td>Only one cell</td></tr>
	  <tr></tr>
	  <tr><td>2</td><td>WP 5/2023</td></tr>
	  <tr><td>3</td><td>OS 9/2022</td><td>X vs Y</td><td>Before the Principal Bench at Amaravati</td></tr>
	</table>`

	entries := ParseHTML(markup)
	require.Len(t, entries, 4)
	assert.Equal(t, "case no", entries[0].CaseRef)
	assert.Equal(t, "Only one cell", entries[1].CaseRef)
	assert.Equal(t, "WP 5/2023", entries[2].CaseRef)
	assert.Empty(t, entries[2].Parties)
	assert.Equal(t, "X vs Y", entries[3].Parties)
	assert.Contains(t, entries[3].Bench, "principal bench at amaravati")
}

type fakeExtractor struct {
	text string
	err  error
}

func (f fakeExtractor) ExtractText([]byte) (string, error) { return f.text, f.err }

func TestParsePDF(t *testing.T) {
	text := "HIGH COURT OF ANDHRA PRADESH\n\n  Case No. WP 12/2024 listed on 05/06/2025  \nRavi vs State\nCNR APHC010001\n   \nItem No. 4"
	entries, err := ParsePDF([]byte("%PDF"), fakeExtractor{text: text})
	require.NoError(t, err)

	require.Len(t, entries, 3)
	assert.Equal(t, "Case No. WP 12/2024 listed on 05/06/2025", entries[0].CaseRef)
	assert.Equal(t, "05/06/2025", entries[0].HearingDate)
	assert.Empty(t, entries[0].Parties)
	assert.Empty(t, entries[0].Bench)
	assert.Equal(t, "CNR APHC010001", entries[1].CaseRef)
	assert.Equal(t, "Item No. 4", entries[2].CaseRef)
}

func TestParsePDFWithoutExtractor(t *testing.T) {
	_, err := ParsePDF([]byte("%PDF"), nil)
	assert.ErrorIs(t, err, ErrNoTextExtractor)

}

func TestParsePDFFallsBackToRawBytes(t *testing.T) {
	data := []byte("not a pdf\nCase No. WP 5/2024 on 01-02-2025\n\xff\xfe")

	entries, err := ParsePDF(data, fakeExtractor{err: errors.New("broken")})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Case No. WP 5/2024 on 01-02-2025", entries[0].CaseRef)
	assert.Equal(t, "01-02-2025", entries[0].HearingDate)

	entries, err = ParsePDF(data, pdftext.RSCExtractor{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "01-02-2025", entries[0].HearingDate)

	entries, err = ParsePDF(nil, fakeExtractor{err: errors.New("empty")})
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestIsPDF(t *testing.T) {
	assert.True(t, IsPDF("application/pdf", "https://x.example/list"))
	assert.True(t, IsPDF("Application/PDF; charset=binary", "https://x.example/list.html"))
	assert.True(t, IsPDF("", "https://x.example/files/List.PDF?d=1"))
	assert.False(t, IsPDF("text/html", "https://x.example/list.php?f=a.pdf"))
	assert.False(t, IsPDF("", "https://x.example/"))
}

func TestFetchClassifies(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/pdf":
			w.Header().Set("Content-Type", "application/pdf")
			w.Write([]byte("%PDF-1.4"))
		case "/doc.pdf":
			w.Header()["Content-Type"] = nil
			w.Write([]byte("%PDF-1.7"))
		case "/latin1":
			w.Header().Set("Content-Type", "text/html; charset=ISO-8859-1")
			w.Write([]byte("<p>caf\xe9</p>"))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	sess := session.New()
	ctx := context.Background()

	doc, err := Fetch(ctx, sess, srv.URL+"/pdf")
	require.NoError(t, err)
	assert.Equal(t, KindPDF, doc.Kind)
	assert.Equal(t, []byte("%PDF-1.4"), doc.Data)

	doc, err = Fetch(ctx, sess, srv.URL+"/doc.pdf")
	require.NoError(t, err)
	assert.Equal(t, KindPDF, doc.Kind)

	doc, err = Fetch(ctx, sess, srv.URL+"/latin1")
	require.NoError(t, err)
	assert.Equal(t, KindHTML, doc.Kind)
	assert.Equal(t, "<p>café</p>", doc.Text)
	assert.Equal(t, http.StatusOK, doc.StatusCode)

	_, err = Fetch(ctx, sess, srv.URL+"/missing")
	var statusErr *session.StatusError
	assert.ErrorAs(t, err, &statusErr)
}

func TestSourceURLs(t *testing.T) {
	assert.Equal(t, "https://hc.example/main.php", HighCourtURL("https://hc.example/main.php", nil))
	assert.Equal(t, "https://hc.example/main.php?date=01-01-2025&state=AP",
		HighCourtURL("https://hc.example/main.php", url.Values{"state": {"AP"}, "date": {"01-01-2025"}}))

	got, err := DistrictURL("https://dc.example/ecourtindia_v6/", "cause_list/index.php", url.Values{"c": {"1"}})
	require.NoError(t, err)
	assert.Equal(t, "https://dc.example/ecourtindia_v6/cause_list/index.php?c=1", got)

	got, err = DistrictURL("https://dc.example/ecourtindia_v6/", "", nil)
	require.NoError(t, err)
	assert.Equal(t, "https://dc.example/ecourtindia_v6/", got)
}

func TestDiscover(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><body>
			<a href="/lists/today.pdf">Today</a>
			<a href="archive.php?d=1">Cause   List (Archive)</a>
			<a href="/about">About</a>
			<a href="/lists/today.pdf">Today again</a>
			<a href="javascript:void(0)">cause list popup</a>
		</body></html>`))
	}))
	defer srv.Close()

	links, err := Discoverer{Timeout: 5 * time.Second}.Discover(srv.URL + "/index.html")
	require.NoError(t, err)
	assert.Equal(t, []string{srv.URL + "/lists/today.pdf", srv.URL + "/archive.php?d=1"}, links)
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	err := WriteCSV(&buf, []Entry{{CaseRef: "CRL.A 123/2024", Parties: "A, B vs C", HearingDate: "12-03-2025"}})
	require.NoError(t, err)
	assert.Equal(t, "case_ref,parties,hearing_date,bench\nCRL.A 123/2024,\"A, B vs C\",12-03-2025,\n", buf.String())
}

type memoryCache struct {
	mu   sync.Mutex
	data map[string][]Entry
}

func (m *memoryCache) Get(_ context.Context, u string) ([]Entry, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.data[u]
	return e, ok, nil
}

func (m *memoryCache) Set(_ context.Context, u string, entries []Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[u] = entries
	return nil
}

func TestServiceEntriesUsesCache(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Write([]byte(scenarioHTML))
	}))
	defer srv.Close()

	cfg := &config.Config{RequestTimeout: 5 * time.Second, HighCourtCauseListURL: srv.URL + "/main.php"}
	svc := NewService(cfg, nil, &memoryCache{data: map[string][]Entry{}}, logger.NewNop())

	for i := 0; i < 2; i++ {
		entries, err := svc.HighCourt(context.Background(), nil)
		require.NoError(t, err)
		require.Len(t, entries, 1)
	}
	assert.Equal(t, 1, hits)
}

func TestServicePDFWithoutExtractor(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		w.Write([]byte("%PDF"))
	}))
	defer srv.Close()

	svc := NewService(&config.Config{RequestTimeout: 5 * time.Second}, nil, nil, logger.NewNop())
	_, err := svc.Entries(context.Background(), srv.URL+"/list")
	assert.ErrorIs(t, err, ErrNoTextExtractor)
}

func TestServiceUnreadablePDF(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		w.Write([]byte("%PDF-1.4 truncated\nCase No. CRL.A 9/2023 on 03-04-2025\n"))
	}))
	defer srv.Close()

	svc := NewService(&config.Config{RequestTimeout: 5 * time.Second}, pdftext.RSCExtractor{}, nil, logger.NewNop())
	entries, err := svc.Entries(context.Background(), srv.URL+"/list")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Case No. CRL.A 9/2023 on 03-04-2025", entries[0].CaseRef)
}
