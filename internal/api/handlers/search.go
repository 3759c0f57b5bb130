package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/Ayash-Bera/apifusion/internal/middleware"
	"github.com/Ayash-Bera/apifusion/internal/models"
	"github.com/Ayash-Bera/apifusion/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	MaxQueryLength     = 200
	DefaultSearchLimit = 20
	MaxSearchLimit     = 50
)

type SearchService interface {
	Search(ctx context.Context, query string, sources []models.SourceName, limit int) (*models.SearchResponse, error)
}

type SearchHandler struct {
	searchService SearchService
	logger        *logrus.Logger
}

func NewSearchHandler(searchService SearchService, logger *logrus.Logger) *SearchHandler {
	return &SearchHandler{
		searchService: searchService,
		logger:        logger,
	}
}

// HandleSearch serves GET /v1/search?q=&limit=&sources=.
func (h *SearchHandler) HandleSearch(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if n := utf8.RuneCountInString(query); n == 0 || n > MaxQueryLength {
		utils.ErrorResponse(c, http.StatusBadRequest,
			fmt.Sprintf("Query must be between 1 and %d characters", MaxQueryLength), nil)
		return
	}

	limit, err := intParam(c, "limit", DefaultSearchLimit, 1, MaxSearchLimit)
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid limit", err)
		return
	}

	sources := models.ParseSources(c.QueryArray("sources"))
	if len(sources) == 0 {
		sources = append(sources, models.DefaultSources...)
	}

	log := h.logger.WithFields(logrus.Fields{
		"request_id": middleware.RequestID(c),
		"query":      query,
		"sources":    sources,
		"limit":      limit,
	})
	log.Debug("Processing search request")

	resp, err := h.searchService.Search(c.Request.Context(), query, sources, limit)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			log.Debug("Search canceled by client")
			return
		}
		log.WithError(err).Error("Search failed")
		utils.ErrorResponse(c, http.StatusBadGateway, "Search failed", err)
		return
	}

	middleware.RecordSearch(c, middleware.SearchRecord{
		Query:    query,
		Sources:  sources,
		Limit:    limit,
		Response: resp,
	})
	c.JSON(http.StatusOK, resp)
}

// intParam reads an optional integer query parameter bounded to [lo, hi].
func intParam(c *gin.Context, name string, def, lo, hi int) (int, error) {
	raw, ok := c.GetQuery(name)
	if !ok || strings.TrimSpace(raw) == "" {
		return def, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", name)
	}
	if n < lo || n > hi {
		return 0, fmt.Errorf("%s must be between %d and %d", name, lo, hi)
	}
	return n, nil
}
