package api

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/JustJay7/ecourts-fetcher/internal/archive"
	"github.com/JustJay7/ecourts-fetcher/internal/cache"
	"github.com/JustJay7/ecourts-fetcher/internal/causelist"
	"github.com/JustJay7/ecourts-fetcher/internal/config"
	"github.com/JustJay7/ecourts-fetcher/internal/database"
	"github.com/JustJay7/ecourts-fetcher/internal/judgment"
	"github.com/JustJay7/ecourts-fetcher/internal/scraper"
	"github.com/JustJay7/ecourts-fetcher/internal/session"
	"github.com/JustJay7/ecourts-fetcher/internal/watch"
	"github.com/JustJay7/ecourts-fetcher/pkg/logger"
)

// Deps is everything the handlers call into
type Deps struct {
	Config     *config.Config
	Logger     *logger.Logger
	Store      *database.Store
	Cache      cache.Cache
	Sessions   *cache.SessionStore
	Searcher   *scraper.Searcher
	Captchas   *scraper.CaptchaFetcher
	CauseLists *causelist.Service
	Evaluator  *watch.Evaluator
	Judgments  *judgment.Downloader
	Archive    archive.Archiver
}

// Handlers holds all HTTP handlers
type Handlers struct {
	Deps
}

// NewHandlers creates a new handlers instance
func NewHandlers(deps Deps) *Handlers {
	if deps.Archive == nil {
		deps.Archive = archive.Nop{}
	}
	return &Handlers{Deps: deps}
}

// HealthCheck returns the health status
func (h *Handlers) HealthCheck(c *gin.Context) {
	dbHealthy := false
	if sqlDB, err := h.Store.DB().DB(); err == nil {
		dbHealthy = sqlDB.PingContext(c.Request.Context()) == nil
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"database": dbHealthy,
		"cache":    h.Cache.Stats(),
		"sessions": h.Sessions.Len(),
		"time":     time.Now().Unix(),
	})
}

// StartSearch opens a portal session for the criteria and returns the
// CAPTCHA the user has to read. A cached result short-circuits the portal.
func (h *Handlers) StartSearch(c *gin.Context) {
	var criteria scraper.SearchCriteria
	if err := c.ShouldBindJSON(&criteria); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid request: " + err.Error(),
		})
		return
	}

	if criteria.Mode() == scraper.ModeNone {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "At least one search field is required",
		})
		return
	}

	if cached, found := h.Cache.Get(cache.KeyFor(criteria)); found {
		h.Logger.Info("Cache hit", "mode", criteria.Mode())
		c.JSON(http.StatusOK, gin.H{
			"success":   true,
			"data":      cached,
			"fromCache": true,
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*h.Config.RequestTimeout)
	defer cancel()

	ss, err := scraper.StartSearch(ctx, h.Config, h.Searcher, h.Captchas, criteria)
	if err != nil {
		h.Logger.Error("Failed to start search", "error", err)
		c.JSON(statusFor(err), gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}
	h.Sessions.Put(ss)

	c.JSON(http.StatusCreated, gin.H{
		"success":     true,
		"session_id":  ss.ID,
		"mode":        criteria.Mode(),
		"captcha_url": "/api/captcha/" + filepath.Base(ss.CaptchaPath),
		"expires_in":  int(h.Config.SessionTTL.Seconds()),
	})
}

// GetCaptcha serves a downloaded CAPTCHA image
func (h *Handlers) GetCaptcha(c *gin.Context) {
	name := filepath.Base(c.Param("file"))
	if !strings.HasPrefix(name, "captcha_") || !strings.HasSuffix(name, ".png") {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   "CAPTCHA not found",
		})
		return
	}

	data, err := os.ReadFile(filepath.Join(h.Config.CaptchaDir, name))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   "CAPTCHA not found",
		})
		return
	}

	c.Data(http.StatusOK, "image/png", data)
}

// SubmitSearch sends the user's CAPTCHA answer with the parked session
func (h *Handlers) SubmitSearch(c *gin.Context) {
	var req struct {
		Captcha string `json:"captcha"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid request: " + err.Error(),
		})
		return
	}

	ss, ok := h.Sessions.Take(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   "Search session not found or expired",
		})
		return
	}
	defer os.Remove(ss.CaptchaPath)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*h.Config.RequestTimeout)
	defer cancel()

	result, raw, err := h.Searcher.Search(ctx, ss.Session, ss.Criteria, strings.TrimSpace(req.Captcha), ss.Snapshot)

	queryLog := &database.QueryLog{
		Mode:        string(ss.Criteria.Mode()),
		State:       ss.Criteria.State,
		Bench:       ss.Criteria.Bench,
		CaseType:    ss.Criteria.EffectiveCaseType(),
		CaseNumber:  ss.Criteria.CaseNumber,
		CaseYear:    ss.Criteria.CaseYear,
		RawResponse: raw,
		Success:     err == nil,
		QueryTime:   time.Now(),
		IPAddress:   c.ClientIP(),
	}
	if err != nil {
		queryLog.ErrorMessage = scraper.Message(err)
	} else {
		queryLog.CaseRef = result.CaseRef
	}
	h.saveQuery(ctx, queryLog)

	if err != nil {
		h.Logger.Info("Search finished without a case", "query_id", queryLog.ID, "error", err)
		c.JSON(statusFor(err), gin.H{
			"success":  false,
			"error":    scraper.Message(err),
			"query_id": queryLog.ID,
		})
		return
	}

	h.Cache.Set(cache.KeyFor(ss.Criteria), result)

	if result.JudgmentLink != "" {
		if err := h.Store.CreateJudgment(&database.Judgment{
			QueryLogID: queryLog.ID,
			CaseRef:    result.CaseRef,
			URL:        result.JudgmentLink,
		}); err != nil {
			h.Logger.Error("Failed to record judgment link", "error", err)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"data":      result,
		"query_id":  queryLog.ID,
		"fromCache": false,
	})
}

func (h *Handlers) saveQuery(ctx context.Context, q *database.QueryLog) {
	if err := h.Store.CreateQueryLog(q); err != nil {
		h.Logger.Error("Failed to save query log", "error", err)
		return
	}
	if q.RawResponse == "" {
		return
	}
	if err := h.Archive.Put(ctx, archive.QueryKey(q.ID), "text/html; charset=utf-8", []byte(q.RawResponse)); err != nil {
		h.Logger.Warn("Failed to archive raw response", "query_id", q.ID, "error", err)
	}
}

// ListQueries returns the search history, newest first
func (h *Handlers) ListQueries(c *gin.Context) {
	limit := getLimit(c, 20)
	logs, err := h.Store.RecentQueries(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    logs,
	})
}

// CacheStats returns cache statistics
func (h *Handlers) CacheStats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"stats":   h.Cache.Stats(),
	})
}

type causeListRequest struct {
	URL      string            `json:"url"`
	Source   string            `json:"source"`
	Endpoint string            `json:"endpoint"`
	Params   map[string]string `json:"params"`
}

// CauseList fetches and parses a cause-list by URL or by configured source
func (h *Handlers) CauseList(c *gin.Context) {
	var req causeListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid request: " + err.Error(),
		})
		return
	}

	params := make(map[string][]string, len(req.Params))
	for k, v := range req.Params {
		params[k] = []string{v}
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*h.Config.RequestTimeout)
	defer cancel()

	var entries []causelist.Entry
	var err error
	switch {
	case req.URL != "":
		if !validURL(req.URL) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "url must be an absolute http(s) URL"})
			return
		}
		entries, err = h.CauseLists.Entries(ctx, req.URL)
	case req.Source == "high_court":
		entries, err = h.CauseLists.HighCourt(ctx, params)
	case req.Source == "district":
		entries, err = h.CauseLists.District(ctx, req.Endpoint, params)
	default:
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Provide a url or a source of high_court or district",
		})
		return
	}

	if err != nil {
		h.Logger.Error("Cause list fetch failed", "url", req.URL, "source", req.Source, "error", err)
		c.JSON(statusFor(err), gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    entries,
		"count":   len(entries),
	})
}

// ExportCauseList renders a parsed cause-list as CSV
func (h *Handlers) ExportCauseList(c *gin.Context) {
	target := c.Query("url")
	if !validURL(target) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "url must be an absolute http(s) URL"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*h.Config.RequestTimeout)
	defer cancel()

	entries, err := h.CauseLists.Entries(ctx, target)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"success": false, "error": err.Error()})
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="causelist.csv"`)
	c.Status(http.StatusOK)
	if err := causelist.WriteCSV(c.Writer, entries); err != nil {
		h.Logger.Error("Failed to write csv", "error", err)
	}
}

// DiscoverCauseLists lists document links found on a listing page
func (h *Handlers) DiscoverCauseLists(c *gin.Context) {
	target := c.Query("url")
	if !validURL(target) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "url must be an absolute http(s) URL"})
		return
	}

	links, err := h.CauseLists.Discover(target)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"success": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    links,
	})
}

// CreateWatch registers a cause-list URL to monitor for an identifier
func (h *Handlers) CreateWatch(c *gin.Context) {
	var req struct {
		URL             string `json:"url" binding:"required"`
		Identifier      string `json:"identifier" binding:"required"`
		Email           string `json:"email"`
		IntervalMinutes int    `json:"interval_minutes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid request: " + err.Error(),
		})
		return
	}
	if !validURL(req.URL) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "url must be an absolute http(s) URL"})
		return
	}
	if strings.TrimSpace(req.Identifier) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "identifier must not be blank"})
		return
	}

	w := &database.Watch{
		URL:             req.URL,
		Identifier:      strings.TrimSpace(req.Identifier),
		Email:           req.Email,
		IntervalMinutes: req.IntervalMinutes,
	}
	if w.IntervalMinutes <= 0 {
		w.IntervalMinutes = int(h.Config.WatchInterval.Minutes())
	}

	if err := h.Store.CreateWatch(w); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    w,
	})
}

// ListWatches returns all watches, newest first
func (h *Handlers) ListWatches(c *gin.Context) {
	watches, err := h.Store.ListWatches()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    watches,
	})
}

// DeactivateWatch stops evaluating a watch
func (h *Handlers) DeactivateWatch(c *gin.Context) {
	id, ok := getID(c)
	if !ok {
		return
	}

	if err := h.Store.DeactivateWatch(id); err != nil {
		c.JSON(statusFor(err), gin.H{"success": false, "error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// WatchNotifications lists the notifications recorded for one watch
func (h *Handlers) WatchNotifications(c *gin.Context) {
	id, ok := getID(c)
	if !ok {
		return
	}

	if _, err := h.Store.GetWatch(id); err != nil {
		c.JSON(statusFor(err), gin.H{"success": false, "error": err.Error()})
		return
	}

	notes, err := h.Store.Notifications(id, getLimit(c, 50))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    notes,
	})
}

// EvaluateWatches runs one evaluation pass synchronously
func (h *Handlers) EvaluateWatches(c *gin.Context) {
	res, err := h.Evaluator.RunContext(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    res,
	})
}

// ListJudgments returns recorded judgment links and their download state
func (h *Handlers) ListJudgments(c *gin.Context) {
	judgments, err := h.Store.ListJudgments(getLimit(c, 50))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    judgments,
	})
}

// DownloadJudgments fetches every pending judgment
func (h *Handlers) DownloadJudgments(c *gin.Context) {
	sum, err := h.Judgments.DownloadPending(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    sum,
	})
}

// Helper functions

// statusFor maps the error taxonomy onto HTTP statuses
func statusFor(err error) int {
	var statusErr *session.StatusError
	var netErr net.Error
	switch {
	case errors.Is(err, scraper.ErrNoRecord), errors.Is(err, database.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, scraper.ErrTableNotFound), errors.Is(err, scraper.ErrNoUsableRows):
		return http.StatusUnprocessableEntity
	case errors.Is(err, causelist.ErrNoTextExtractor):
		return http.StatusNotImplemented
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.As(err, &statusErr), errors.As(err, &netErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func getLimit(c *gin.Context, def int) int {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(def)))
	if err != nil || limit <= 0 {
		return def
	}
	if limit > 200 {
		return 200
	}
	return limit
}

func getID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid ID",
		})
		return 0, false
	}
	return uint(id), true
}

func validURL(raw string) bool {
	return strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://")
}
