package judgment

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

	"github.com/JustJay7/ecourts-fetcher/internal/config"
	"github.com/JustJay7/ecourts-fetcher/internal/database"
	"github.com/JustJay7/ecourts-fetcher/internal/session"
	"github.com/JustJay7/ecourts-fetcher/pkg/logger"
)

func TestDownloadPending(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.pdf" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Write([]byte("%PDF-1.4 judgment"))
	}))
	defer srv.Close()

	db, err := database.Initialize(&config.Config{DatabaseDriver: "sqlite", DatabasePath: ":memory:"})
	require.NoError(t, err)
	store := database.NewStore(db)

	require.NoError(t, store.CreateJudgment(&database.Judgment{CaseRef: "WP/1/2024", URL: srv.URL + "/j1.pdf"}))
	require.NoError(t, store.CreateJudgment(&database.Judgment{CaseRef: "WP/2/2024", URL: srv.URL + "/missing.pdf"}))

	dir := t.TempDir()
	d := NewDownloader(store, func() *session.Session { return session.New() }, logger.NewNop(), dir)
	d.delay = 0
	d.now = func() time.Time { return time.Date(2025, 4, 9, 0, 0, 0, 0, time.UTC) }

	sum, err := d.DownloadPending(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Summary{Downloaded: 1, Failed: 1}, sum)

	path := filepath.Join(dir, "judgments", "2025", "04", "judgment_1.pdf")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 judgment", string(data))

	pending, err := store.PendingJudgments()
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "WP/2/2024", pending[0].CaseRef)

	// a day later nothing is old enough yet
	d.now = func() time.Time { return time.Date(2025, 4, 10, 0, 0, 0, 0, time.UTC) }
	removed, err := d.CleanupOlderThan(7)
	require.NoError(t, err)
	assert.Equal(t, 0, removed)

	d.now = func() time.Time { return time.Date(2025, 4, 20, 0, 0, 0, 0, time.UTC) }
	removed, err = d.CleanupOlderThan(7)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	// a purged judgment is neither queued again nor cleaned twice
	pending, err = store.PendingJudgments()
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "WP/2/2024", pending[0].CaseRef)

	removed, err = d.CleanupOlderThan(7)
	require.NoError(t, err)
	assert.Equal(t, 0, removed)

	all, err := store.ListJudgments(10)
	require.NoError(t, err)
	for _, j := range all {
		if j.CaseRef != "WP/1/2024" {
			continue
		}
		assert.True(t, j.Downloaded)
		assert.Empty(t, j.LocalPath)
		require.NotNil(t, j.PurgedAt)
		require.NotNil(t, j.DownloadedAt)
	}
}
