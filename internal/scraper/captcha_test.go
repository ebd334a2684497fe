package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JustJay7/ecourts-fetcher/internal/session"
)

func TestCaptchaFetcher(t *testing.T) {
	png := []byte{0x89, 'P', 'N', 'G', 1, 2, 3}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/page":
			http.SetCookie(w, &http.Cookie{Name: "sid", Value: "bound", Path: "/"})
		case "/image":
			c, err := r.Cookie("sid")
			if err != nil || c.Value != "bound" {
				w.WriteHeader(http.StatusForbidden)
				return
			}
			w.Header().Set("Content-Type", "image/png")
			w.Write(png)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	dir := filepath.Join(t.TempDir(), "captchas")
	f := NewCaptchaFetcher(srv.URL+"/page", srv.URL+"/image", dir)
	f.now = func() time.Time { return time.Unix(1712345678, 0) }

	path, err := f.Fetch(context.Background(), session.New())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "captcha_1712345678.png"), path)

	saved, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, png, saved)
}

func TestCaptchaFetcherImageFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	f := NewCaptchaFetcher("", srv.URL+"/image", t.TempDir())
	_, err := f.Fetch(context.Background(), session.New())
	assert.Error(t, err)
}

func TestRawResponseFromDump(t *testing.T) {
	rec := DumpRecord{
		URL:     "https://portal.example/search",
		Status:  "200 OK",
		Header:  http.Header{"Content-Type": {"text/html"}, "Server": {"Apache"}},
		Payload: map[string][]string{"case_no": {"12"}},
		Cookies: map[string]string{"b": "2", "a": "1"},
		Body:    "<html>body</html>",
	}
	text := formatDump(rec)

	assert.Contains(t, text, "HEADERS:\nContent-Type: text/html\nServer: Apache\n")
	assert.Contains(t, text, "---COOKIES_IN_SESSION---\n{\"a\": \"1\", \"b\": \"2\"}")
	assert.Equal(t, "<html>body</html>", RawResponseFromDump(text))
	assert.Equal(t, "plain", RawResponseFromDump("plain"))
}
