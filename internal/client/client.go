// Package client is the aggregation client: one Search call over either the
// in-process mock generator or the HTTP backend, selected by injected config.
package client

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/Ayash-Bera/apifusion/internal/mock"
	"github.com/Ayash-Bera/apifusion/internal/models"
	"github.com/sirupsen/logrus"
)

const (
	ModeMock = "mock"
	ModeAPI  = "api"
)

// Searcher runs one aggregated search.
type Searcher interface {
	Search(ctx context.Context, query string, sources []models.SourceName, limit int) (*models.SearchResponse, error)
}

// Fetcher serves the read-only panels.
type Fetcher interface {
	GetSources(ctx context.Context) ([]models.SourceStatus, error)
	GetLogs(ctx context.Context, limit int) ([]models.LogRow, error)
}

type Config struct {
	Mode    string
	BaseURL string
	// Timeout bounds a single call. Zero means no client-side timeout.
	Timeout     time.Duration
	MockLatency time.Duration
	HTTPClient  *http.Client
}

type backend interface {
	search(ctx context.Context, query string, sources []models.SourceName, limit int) (*models.SearchResponse, error)
	sources(ctx context.Context) ([]models.SourceStatus, error)
	logs(ctx context.Context, limit int) ([]models.LogRow, error)
}

type Client struct {
	backend backend
	timeout time.Duration
	logger  *logrus.Logger
}

func New(cfg Config, logger *logrus.Logger) (*Client, error) {
	var b backend
	switch cfg.Mode {
	case ModeMock, "":
		b = &mockBackend{gen: mock.NewGenerator(cfg.MockLatency)}
	case ModeAPI:
		if cfg.BaseURL == "" {
			return nil, fmt.Errorf("base URL is required in %s mode", ModeAPI)
		}
		httpClient := cfg.HTTPClient
		if httpClient == nil {
			httpClient = &http.Client{}
		}
		b = &httpBackend{baseURL: cfg.BaseURL, httpClient: httpClient, logger: logger}
	default:
		return nil, fmt.Errorf("unknown client mode %q", cfg.Mode)
	}

	return &Client{
		backend: b,
		timeout: cfg.Timeout,
		logger:  logger,
	}, nil
}

// Search returns the aggregated response or a fatal error. Per-source failures
// are carried in the response; a canceled ctx yields an error matching
// IsCanceled.
func (c *Client) Search(ctx context.Context, query string, sources []models.SourceName, limit int) (*models.SearchResponse, error) {
	if len(sources) == 0 {
		return nil, ErrNoSources
	}

	callCtx, cancel := c.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	resp, err := c.backend.search(callCtx, query, sources, limit)
	if err = c.classify(ctx, callCtx, err); err != nil {
		return nil, err
	}

	resp.Items = models.MergeItems(limit, resp.Items)
	if resp.Errors == nil {
		resp.Errors = []models.SourceError{}
	}

	c.logger.WithFields(logrus.Fields{
		"query":   query,
		"sources": sources,
		"items":   len(resp.Items),
		"errors":  len(resp.Errors),
		"elapsed": time.Since(start).Milliseconds(),
	}).Debug("Search completed")

	return resp, nil
}

func (c *Client) GetSources(ctx context.Context) ([]models.SourceStatus, error) {
	callCtx, cancel := c.withTimeout(ctx)
	defer cancel()

	out, err := c.backend.sources(callCtx)
	if err = c.classify(ctx, callCtx, err); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetLogs(ctx context.Context, limit int) ([]models.LogRow, error) {
	callCtx, cancel := c.withTimeout(ctx)
	defer cancel()

	out, err := c.backend.logs(callCtx, limit)
	if err = c.classify(ctx, callCtx, err); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout > 0 {
		return context.WithTimeout(ctx, c.timeout)
	}
	return context.WithCancel(ctx)
}

// classify maps the raw outcome onto cancellation, timeout or the original error.
// A success that raced with caller cancellation is reported as canceled.
func (c *Client) classify(parent, callCtx context.Context, err error) error {
	if parent.Err() != nil {
		return fmt.Errorf("%w: %w", ErrCanceled, parent.Err())
	}
	if err == nil {
		return nil
	}
	if callCtx.Err() == context.DeadlineExceeded {
		return fmt.Errorf("%w after %s", ErrTimeout, c.timeout)
	}
	return err
}

type mockBackend struct {
	gen *mock.Generator
}

func (m *mockBackend) search(ctx context.Context, query string, sources []models.SourceName, limit int) (*models.SearchResponse, error) {
	return m.gen.Search(ctx, query, sources, limit)
}

func (m *mockBackend) sources(ctx context.Context) ([]models.SourceStatus, error) {
	return m.gen.Sources(ctx)
}

func (m *mockBackend) logs(ctx context.Context, limit int) ([]models.LogRow, error) {
	return m.gen.Logs(ctx, limit)
}
