package middleware

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/Ayash-Bera/apifusion/internal/metrics"
	"github.com/Ayash-Bera/apifusion/internal/models"
	"github.com/Ayash-Bera/apifusion/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	RequestIDHeader = "X-Request-Id"
	TookHeader      = "X-Took-Ms"

	RequestIDKey = "request_id"
	searchKey    = "search_record"

	SearchRoute = "/v1/search"

	logWriteTimeout = 2 * time.Second
)

// SearchRecord is what a search handler leaves behind for the request log.
type SearchRecord struct {
	Query    string
	Sources  []models.SourceName
	Limit    int
	Response *models.SearchResponse
}

// RecordSearch attaches the outcome of a search to the request.
func RecordSearch(c *gin.Context, rec SearchRecord) {
	c.Set(searchKey, rec)
}

// RequestID returns the id assigned by RequestMeta.
func RequestID(c *gin.Context) string {
	return c.GetString(RequestIDKey)
}

// TookMs returns the elapsed time written to X-Took-Ms, if any.
func TookMs(c *gin.Context) (int64, bool) {
	if w, ok := c.Writer.(*tookWriter); ok {
		return w.took()
	}
	return 0, false
}

// tookWriter stamps X-Took-Ms just before the first byte of the response.
type tookWriter struct {
	gin.ResponseWriter
	start   time.Time
	once    sync.Once
	tookMs  int64
	stamped bool
}

func (w *tookWriter) stamp() {
	w.once.Do(func() {
		w.tookMs = time.Since(w.start).Milliseconds()
		w.stamped = true
		w.Header().Set(TookHeader, strconv.FormatInt(w.tookMs, 10))
	})
}

func (w *tookWriter) took() (int64, bool) {
	w.stamp()
	return w.tookMs, w.stamped
}

func (w *tookWriter) WriteHeaderNow() {
	w.stamp()
	w.ResponseWriter.WriteHeaderNow()
}

func (w *tookWriter) Write(data []byte) (int, error) {
	w.stamp()
	return w.ResponseWriter.Write(data)
}

func (w *tookWriter) WriteString(s string) (int, error) {
	w.stamp()
	return w.ResponseWriter.WriteString(s)
}

// RequestMeta assigns a request id, stamps X-Took-Ms and, after a
// successful search, appends a row to the request log. A failed log write
// is reported but never changes the response.
func RequestMeta(repo models.RequestLogRepository, m *metrics.Metrics, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(RequestIDHeader)
		if !utils.ValidateRequestID(requestID) {
			requestID = utils.GenerateRandomID(16)
		}
		c.Header(RequestIDHeader, requestID)
		c.Set(RequestIDKey, requestID)

		c.Writer = &tookWriter{ResponseWriter: c.Writer, start: start}
		c.Next()

		status := c.Writer.Status()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.ObserveHTTP(c.Request.Method, route, strconv.Itoa(status), time.Since(start))

		logger.WithFields(logrus.Fields{
			"request_id": requestID,
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     status,
			"duration":   time.Since(start).String(),
		}).Debug("Request completed")

		if status != http.StatusOK || route != SearchRoute || repo == nil {
			return
		}
		value, ok := c.Get(searchKey)
		if !ok {
			return
		}
		rec := value.(SearchRecord)
		took, _ := TookMs(c)

		entry := buildRequestLog(requestID, c.Request.URL.Path, rec, took)
		ctx, cancel := context.WithTimeout(context.WithoutCancel(c.Request.Context()), logWriteTimeout)
		defer cancel()

		if err := repo.Create(ctx, entry); err != nil {
			m.LogWrite(false)
			logger.WithError(err).WithField("request_id", requestID).Warn("Failed to write request log")
			return
		}
		m.LogWrite(true)
	}
}

func buildRequestLog(requestID, path string, rec SearchRecord, took int64) *models.RequestLog {
	sources := make(models.StringArray, len(rec.Sources))
	for i, s := range rec.Sources {
		sources[i] = string(s)
	}
	entry := &models.RequestLog{
		TS:        time.Now().UTC(),
		RequestID: requestID,
		Path:      path,
		Q:         rec.Query,
		Sources:   sources,
		Limit:     rec.Limit,
		TookMs:    took,
		Errors:    models.SourceErrorList{},
	}
	if rec.Response != nil {
		entry.ItemsCount = len(rec.Response.Items)
		entry.Errors = append(entry.Errors, rec.Response.Errors...)
	}
	entry.ErrorsCount = len(entry.Errors)
	return entry
}
