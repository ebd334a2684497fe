package session

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionKeepsCookies(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/set":
			http.SetCookie(w, &http.Cookie{Name: "PHPSESSID", Value: "abc", Path: "/"})
			w.Write([]byte("ok"))
		case "/check":
			c, err := r.Cookie("PHPSESSID")
			if err != nil {
				w.WriteHeader(http.StatusForbidden)
				return
			}
			w.Write([]byte(c.Value))
		}
	}))
	defer srv.Close()

	s := New(WithTimeout(time.Second), WithUserAgent("test-agent"))
	ctx := context.Background()

	_, err := s.Get(ctx, srv.URL+"/set", nil)
	require.NoError(t, err)

	resp, err := s.Get(ctx, srv.URL+"/check", nil)
	require.NoError(t, err)
	assert.Equal(t, "abc", resp.Text())
	assert.Equal(t, map[string]string{"PHPSESSID": "abc"}, s.CookieMap(srv.URL))
}

func TestSessionNon2xxIsStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := New().Get(context.Background(), srv.URL, nil)
	require.Error(t, err)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusServiceUnavailable, statusErr.StatusCode)
}

func TestPostFormSendsHeadersAndBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "XMLHttpRequest", r.Header.Get("X-Requested-With"))
		assert.Equal(t, "default-agent", r.Header.Get("User-Agent"))
		w.Write([]byte(r.PostForm.Get("case_no")))
	}))
	defer srv.Close()

	s := New(WithUserAgent("default-agent"))
	resp, err := s.PostForm(context.Background(), srv.URL, url.Values{"case_no": {"123"}},
		map[string]string{"X-Requested-With": "XMLHttpRequest"})
	require.NoError(t, err)
	assert.Equal(t, "123", resp.Text())
}

func TestFormatCookiesIsSorted(t *testing.T) {
	got := FormatCookies(map[string]string{"b": "2", "a": "1"})
	assert.Equal(t, `{"a": "1", "b": "2"}`, got)
}
