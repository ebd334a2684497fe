package api

import (
	"github.com/gin-gonic/gin"
)

// SetupRoutes configures all application routes
func SetupRoutes(router *gin.Engine, deps Deps) {
	h := NewHandlers(deps)

	api := router.Group("/api")
	{
		api.GET("/health", h.HealthCheck)

		// Case search
		api.POST("/search", h.StartSearch)
		api.POST("/search/:id/submit", h.SubmitSearch)
		api.GET("/captcha/:file", h.GetCaptcha)
		api.GET("/queries", h.ListQueries)
		api.GET("/cache/stats", h.CacheStats)

		// Cause lists
		api.POST("/causelist", h.CauseList)
		api.GET("/causelist/export", h.ExportCauseList)
		api.GET("/causelist/discover", h.DiscoverCauseLists)

		// Watches
		api.POST("/watches", h.CreateWatch)
		api.GET("/watches", h.ListWatches)
		api.DELETE("/watches/:id", h.DeactivateWatch)
		api.GET("/watches/:id/notifications", h.WatchNotifications)
		api.POST("/watches/evaluate", h.EvaluateWatches)

		// Judgments
		api.GET("/judgments", h.ListJudgments)
		api.POST("/judgments/download", h.DownloadJudgments)
	}
}
