// Package session provides the cookie-retaining HTTP client every portal
// interaction runs through. A Session is owned by one search or fetch at a
// time; it is not safe to share between in-flight requests.
package session

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sort"
	"strings"
	"time"
)

const defaultTimeout = 15 * time.Second

// StatusError is returned for any response outside the 2xx range
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %s", e.Method, e.URL, e.Status)
}

// Response is a fully read HTTP response
type Response struct {
	StatusCode int
	Status     string
	Header     http.Header
	URL        *url.URL
	Body       []byte
}

// Text returns the body as a string
func (r *Response) Text() string {
	return string(r.Body)
}

// Session persists cookies across calls and applies a per-call deadline
type Session struct {
	client    *http.Client
	userAgent string
}

// Option customises a Session
type Option func(*Session)

// WithTimeout sets the per-request deadline
func WithTimeout(d time.Duration) Option {
	return func(s *Session) {
		if d > 0 {
			s.client.Timeout = d
		}
	}
}

// WithUserAgent sets the User-Agent sent when a request carries none
func WithUserAgent(ua string) Option {
	return func(s *Session) {
		s.userAgent = ua
	}
}

// WithTransport replaces the underlying round tripper
func WithTransport(rt http.RoundTripper) Option {
	return func(s *Session) {
		s.client.Transport = rt
	}
}

// New creates a session with an empty cookie jar
func New(opts ...Option) *Session {
	// cookiejar.New only fails when given a PublicSuffixList that errors
	jar, _ := cookiejar.New(nil)

	s := &Session{
		client: &http.Client{
			Jar:     jar,
			Timeout: defaultTimeout,
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get performs a GET and reads the whole body
func (s *Session) Get(ctx context.Context, rawURL string, headers map[string]string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return s.do(req, headers)
}

// PostForm submits url-encoded form values and reads the whole body
func (s *Session) PostForm(ctx context.Context, rawURL string, form url.Values, headers map[string]string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded; charset=UTF-8")
	return s.do(req, headers)
}

// Open performs a GET and hands back the live response so callers can
// inspect headers before consuming the body. The caller must close the body.
func (s *Session) Open(ctx context.Context, rawURL string, headers map[string]string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	s.applyHeaders(req, headers)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, statusError(req, resp)
	}
	return resp, nil
}

// SetCookies stores cookies for the given URL in the jar
func (s *Session) SetCookies(rawURL string, cookies []*http.Cookie) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid cookie url: %w", err)
	}
	s.client.Jar.SetCookies(u, cookies)
	return nil
}

// Cookies returns the cookies the jar would send to rawURL
func (s *Session) Cookies(rawURL string) []*http.Cookie {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil
	}
	return s.client.Jar.Cookies(u)
}

// CookieMap renders the cookies for rawURL as name=value pairs, sorted by name
func (s *Session) CookieMap(rawURL string) map[string]string {
	out := make(map[string]string)
	for _, c := range s.Cookies(rawURL) {
		out[c.Name] = c.Value
	}
	return out
}

// FormatCookies renders a cookie map deterministically for diagnostics
func FormatCookies(cookies map[string]string) string {
	names := make([]string, 0, len(cookies))
	for name := range cookies {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString("{")
	for i, name := range names {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%q: %q", name, cookies[name])
	}
	b.WriteString("}")
	return b.String()
}

func (s *Session) do(req *http.Request, headers map[string]string) (*Response, error) {
	s.applyHeaders(req, headers)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, statusError(req, resp)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Header:     resp.Header,
		URL:        resp.Request.URL,
		Body:       body,
	}, nil
}

func (s *Session) applyHeaders(req *http.Request, headers map[string]string) {
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	if req.Header.Get("User-Agent") == "" && s.userAgent != "" {
		req.Header.Set("User-Agent", s.userAgent)
	}
}

func statusError(req *http.Request, resp *http.Response) error {
	return &StatusError{
		Method:     req.Method,
		URL:        req.URL.String(),
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
	}
}
