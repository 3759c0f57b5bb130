package handlers

import (
	"net/http"

	"github.com/Ayash-Bera/apifusion/internal/models"
	"github.com/Ayash-Bera/apifusion/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	DefaultLogLimit = 50
	MaxLogLimit     = 500
)

type LogsHandler struct {
	repo   models.RequestLogRepository
	logger *logrus.Logger
}

func NewLogsHandler(repo models.RequestLogRepository, logger *logrus.Logger) *LogsHandler {
	return &LogsHandler{repo: repo, logger: logger}
}

// HandleLogs serves GET /v1/logs, newest first.
func (h *LogsHandler) HandleLogs(c *gin.Context) {
	limit, err := intParam(c, "limit", DefaultLogLimit, 1, MaxLogLimit)
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid limit", err)
		return
	}

	logs, err := h.repo.GetRecent(c.Request.Context(), limit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load request logs")
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to load request logs", err)
		return
	}

	rows := make([]models.LogRow, 0, len(logs))
	for _, l := range logs {
		rows = append(rows, l.ToLogRow())
	}
	c.JSON(http.StatusOK, rows)
}
