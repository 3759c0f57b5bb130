package handlers

import (
	"github.com/Ayash-Bera/apifusion/internal/middleware"
	"github.com/gin-gonic/gin"
)

type Handlers struct {
	Search  *SearchHandler
	Sources *SourcesHandler
	Logs    *LogsHandler
	System  *SystemHandler
}

// SetupRoutes registers /health, /metrics and the /v1 API. Rate limiting
// applies to /v1 only.
func SetupRoutes(router *gin.Engine, h Handlers, limiter *middleware.RateLimiter) {
	router.GET("/health", h.System.HandleHealth)
	router.GET("/metrics", h.System.HandleMetrics)

	v1 := router.Group("/v1")
	if limiter != nil {
		v1.Use(limiter.RateLimit())
	}
	v1.GET("/search", h.Search.HandleSearch)
	v1.GET("/sources", h.Sources.HandleSources)
	v1.GET("/logs", h.Logs.HandleLogs)
}
