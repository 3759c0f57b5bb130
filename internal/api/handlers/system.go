package handlers

import (
	"net/http"

	"github.com/Ayash-Bera/apifusion/internal/health"
	"github.com/Ayash-Bera/apifusion/internal/models"
	"github.com/gin-gonic/gin"
)

type SystemHandler struct {
	checker *health.HealthChecker
	metrics http.Handler
}

func NewSystemHandler(checker *health.HealthChecker, metrics http.Handler) *SystemHandler {
	return &SystemHandler{checker: checker, metrics: metrics}
}

// HandleHealth always answers 200 so the process is considered live; a
// degraded store shows up in the body.
func (h *SystemHandler) HandleHealth(c *gin.Context) {
	var resp models.HealthResponse
	if h.checker != nil {
		resp = h.checker.CheckAll(c.Request.Context())
	} else {
		resp = models.HealthResponse{Status: health.StatusOK}
	}
	c.JSON(http.StatusOK, resp)
}

func (h *SystemHandler) HandleMetrics(c *gin.Context) {
	if h.metrics == nil {
		c.Status(http.StatusNotFound)
		return
	}
	h.metrics.ServeHTTP(c.Writer, c.Request)
}
