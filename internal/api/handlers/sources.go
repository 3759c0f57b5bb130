package handlers

import (
	"net/http"
	"strconv"

	"github.com/Ayash-Bera/apifusion/internal/services"
	"github.com/Ayash-Bera/apifusion/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type SourcesHandler struct {
	provider services.StatusProvider
	logger   *logrus.Logger
}

func NewSourcesHandler(provider services.StatusProvider, logger *logrus.Logger) *SourcesHandler {
	return &SourcesHandler{provider: provider, logger: logger}
}

// HandleSources serves GET /v1/sources. ?force=true bypasses the cache.
func (h *SourcesHandler) HandleSources(c *gin.Context) {
	force := false
	if raw := c.Query("force"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			utils.ErrorResponse(c, http.StatusBadRequest, "force must be a boolean", err)
			return
		}
		force = v
	}

	statuses, err := h.provider.Get(c.Request.Context(), force)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load source statuses")
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to load source statuses", err)
		return
	}
	c.JSON(http.StatusOK, statuses)
}
