package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Ayash-Bera/apifusion/internal/health"
	"github.com/Ayash-Bera/apifusion/internal/metrics"
	"github.com/Ayash-Bera/apifusion/internal/middleware"
	"github.com/Ayash-Bera/apifusion/internal/mock"
	"github.com/Ayash-Bera/apifusion/internal/models"
	"github.com/Ayash-Bera/apifusion/internal/repository"
	"github.com/Ayash-Bera/apifusion/internal/services"
	"github.com/Ayash-Bera/apifusion/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	gen := mock.NewGenerator(0)
	m := metrics.New()
	repo := repository.NewMemoryRequestLogRepository(100)

	router := gin.New()
	router.Use(middleware.RequestMeta(repo, m, logger))
	SetupRoutes(router, Handlers{
		Search:  NewSearchHandler(services.NewSearchService(gen, nil, 0, m, logger), logger),
		Sources: NewSourcesHandler(services.FetcherStatus{Fetcher: gen}, logger),
		Logs:    NewLogsHandler(repo, logger),
		System:  NewSystemHandler(health.NewHealthChecker("API Fusion", "test", logger), m.Handler()),
	}, nil)
	return router
}

func get(router *gin.Engine, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestHandleSearch_DefaultSources(t *testing.T) {
	router := setupRouter(t)
	w := get(router, "/v1/search?q=fastapi")

	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(middleware.TookHeader))
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))

	resp := decode[models.SearchResponse](t, w)
	assert.Equal(t, "fastapi", resp.Query)
	assert.Equal(t, []models.SourceName{models.SourceGitHub, models.SourceHackerNews}, resp.Sources)
	require.Len(t, resp.Items, 2)
	for _, it := range resp.Items {
		assert.Contains(t, []models.SourceName{models.SourceGitHub, models.SourceHackerNews}, it.Source)
	}
	assert.Empty(t, resp.Errors)
	assert.Contains(t, w.Body.String(), `"errors":[]`)
}

func TestHandleSearch_SourcesAndLimit(t *testing.T) {
	router := setupRouter(t)

	w := get(router, "/v1/search?q=go&sources=rss")
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[models.SearchResponse](t, w)
	assert.Empty(t, resp.Items)
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, models.SourceRSS, resp.Errors[0].Source)
	assert.Equal(t, models.ErrorTypeSource, resp.Errors[0].Type)

	w = get(router, "/v1/search?q=go&sources=hackernews&sources=github&limit=1")
	require.Equal(t, http.StatusOK, w.Code)
	resp = decode[models.SearchResponse](t, w)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, models.SourceHackerNews, resp.Items[0].Source)

	w = get(router, "/v1/search?q=go&sources=github,reddit")
	require.Equal(t, http.StatusOK, w.Code)
	resp = decode[models.SearchResponse](t, w)
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, models.ErrorTypeUnsupported, resp.Errors[0].Type)
	assert.Equal(t, "Unsupported source: reddit", resp.Errors[0].Message)
}

func TestHandleSearch_Validation(t *testing.T) {
	router := setupRouter(t)

	cases := map[string]string{
		"missing query": "/v1/search",
		"blank query":   "/v1/search?q=%20%20",
		"long query":    "/v1/search?q=" + strings.Repeat("a", MaxQueryLength+1),
		"zero limit":    "/v1/search?q=go&limit=0",
		"large limit":   "/v1/search?q=go&limit=51",
		"non-int limit": "/v1/search?q=go&limit=ten",
	}
	for name, target := range cases {
		t.Run(name, func(t *testing.T) {
			w := get(router, target)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			body := decode[utils.APIResponse](t, w)
			assert.False(t, body.Success)
			assert.NotEmpty(t, body.Message)
		})
	}

	w := get(router, "/v1/search?q="+strings.Repeat("a", MaxQueryLength))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHandleLogs_RecordsSearches(t *testing.T) {
	router := setupRouter(t)

	require.Equal(t, http.StatusOK, get(router, "/v1/search?q=first").Code)
	require.Equal(t, http.StatusOK, get(router, "/v1/search?q=second&sources=rss").Code)
	require.Equal(t, http.StatusBadRequest, get(router, "/v1/search?q=").Code)

	w := get(router, "/v1/logs")
	require.Equal(t, http.StatusOK, w.Code)
	rows := decode[[]models.LogRow](t, w)
	require.Len(t, rows, 2)
	require.NotNil(t, rows[0].Q)
	assert.Equal(t, "second", *rows[0].Q)
	assert.Equal(t, []string{"rss"}, rows[0].Sources)
	assert.Equal(t, 1, rows[0].ErrorsCount)
	assert.Equal(t, 0, rows[0].ItemsCount)
	assert.NotNil(t, rows[0].TookMs)
	assert.Equal(t, "first", *rows[1].Q)
	assert.Equal(t, 2, rows[1].ItemsCount)

	w = get(router, "/v1/logs?limit=1")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.LogRow](t, w), 1)

	assert.Equal(t, http.StatusBadRequest, get(router, "/v1/logs?limit=501").Code)
	assert.Equal(t, http.StatusBadRequest, get(router, "/v1/logs?limit=0").Code)
}

func TestHandleLogs_EmptyIsArray(t *testing.T) {
	router := setupRouter(t)
	w := get(router, "/v1/logs")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestHandleSources(t *testing.T) {
	router := setupRouter(t)

	w := get(router, "/v1/sources?force=true")
	require.Equal(t, http.StatusOK, w.Code)
	statuses := decode[[]models.SourceStatus](t, w)
	require.Len(t, statuses, 3)
	assert.Equal(t, models.SourceGitHub, statuses[0].Source)
	assert.True(t, statuses[0].OK)

	assert.Equal(t, http.StatusBadRequest, get(router, "/v1/sources?force=maybe").Code)
}

func TestSystemRoutes(t *testing.T) {
	router := setupRouter(t)

	w := get(router, "/health")
	require.Equal(t, http.StatusOK, w.Code)
	h := decode[models.HealthResponse](t, w)
	assert.Equal(t, health.StatusOK, h.Status)
	assert.Equal(t, "API Fusion", h.App)
	assert.Equal(t, "test", h.Env)

	get(router, "/v1/search?q=go")
	w = get(router, "/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http_requests_total")
}
