// Package connectors queries the live upstreams (GitHub repository search,
// the HackerNews Algolia API and configured RSS/Atom feeds) and normalizes
// their payloads into models.SearchItem.
package connectors

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/Ayash-Bera/apifusion/internal/models"
	"github.com/sirupsen/logrus"
)

const userAgent = "api-fusion/0.1"

// Connector searches one upstream.
type Connector interface {
	Name() models.SourceName
	Search(ctx context.Context, query string, limit int) ([]models.SearchItem, error)
}

// StatusError is a non-2xx upstream response.
type StatusError struct {
	Source     models.SourceName
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned status %d", e.Source, e.StatusCode)
}

// Temporary reports whether retrying the request may succeed.
func (e *StatusError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

type Config struct {
	GitHubBaseURL     string
	GitHubToken       string
	HackerNewsBaseURL string
	RSSFeeds          []string
	Retry             RetryConfig
	HTTPClient        *http.Client
}

// Registry holds one connector per source name.
type Registry struct {
	byName map[models.SourceName]Connector
}

func NewRegistry(conns ...Connector) *Registry {
	r := &Registry{byName: make(map[models.SourceName]Connector, len(conns))}
	for _, c := range conns {
		r.byName[c.Name()] = c
	}
	return r
}

// NewLiveRegistry builds the GitHub, HackerNews and RSS connectors.
func NewLiveRegistry(cfg Config, logger *logrus.Logger) *Registry {
	f := newFetcher(cfg.HTTPClient, cfg.Retry, logger)
	cleaner := NewCleaner(DefaultSnippetLength)

	return NewRegistry(
		NewGitHub(f, cfg.GitHubBaseURL, cfg.GitHubToken, cleaner),
		NewHackerNews(f, cfg.HackerNewsBaseURL, cleaner),
		NewRSS(f, cfg.RSSFeeds, cleaner),
	)
}

func (r *Registry) Get(name models.SourceName) (Connector, bool) {
	c, ok := r.byName[name]
	return c, ok
}

// parseTime accepts RFC 3339 timestamps and falls back to now.
func parseTime(raw string) *time.Time {
	if raw != "" {
		if ts, err := time.Parse(time.RFC3339, raw); err == nil {
			ts = ts.UTC()
			return &ts
		}
	}
	now := time.Now().UTC()
	return &now
}
