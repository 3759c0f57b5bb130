package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/Ayash-Bera/apifusion/internal/database"
	"github.com/Ayash-Bera/apifusion/internal/metrics"
	"github.com/Ayash-Bera/apifusion/internal/models"
	"github.com/sirupsen/logrus"
)

// Searcher is the fan-out backend: the live aggregator or the mock generator.
type Searcher interface {
	Search(ctx context.Context, query string, sources []models.SourceName, limit int) (*models.SearchResponse, error)
}

type SearchService struct {
	backend  Searcher
	cache    *database.Cache
	cacheTTL time.Duration
	metrics  *metrics.Metrics
	logger   *logrus.Logger
}

// NewSearchService wraps backend with an optional response cache. A nil
// cache or a zero TTL disables caching.
func NewSearchService(
	backend Searcher,
	cache *database.Cache,
	cacheTTL time.Duration,
	m *metrics.Metrics,
	logger *logrus.Logger,
) *SearchService {
	return &SearchService{
		backend:  backend,
		cache:    cache,
		cacheTTL: cacheTTL,
		metrics:  m,
		logger:   logger,
	}
}

// Search serves a cached response when one exists and otherwise queries the
// backend. Only responses without source errors are cached so a recovering
// source shows up on the next call.
func (s *SearchService) Search(ctx context.Context, query string, sources []models.SourceName, limit int) (*models.SearchResponse, error) {
	query = strings.TrimSpace(query)
	log := s.logger.WithFields(logrus.Fields{
		"query":   query,
		"sources": sources,
		"limit":   limit,
	})

	key := database.SearchCacheKey(query, sources, limit)
	if s.cachingEnabled() {
		cached, err := s.cache.GetCachedSearchResponse(ctx, key)
		switch {
		case err == nil && slices.Equal(cached.Sources, sources):
			s.metrics.CacheLookup("search", true)
			log.Debug("Search results served from cache")
			return cached, nil
		case err == nil, errors.Is(err, database.ErrCacheMiss):
			// The key ignores selection order but merged items do not.
			s.metrics.CacheLookup("search", false)
		default:
			log.WithError(err).Warn("Search cache lookup failed")
		}
	}

	resp, err := s.backend.Search(ctx, query, sources, limit)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}
	if resp.Items == nil {
		resp.Items = []models.SearchItem{}
	}
	if resp.Errors == nil {
		resp.Errors = []models.SourceError{}
	}

	if s.cachingEnabled() && len(resp.Errors) == 0 {
		if err := s.cache.CacheSearchResponse(ctx, key, resp, s.cacheTTL); err != nil {
			log.WithError(err).Warn("Failed to cache search results")
		}
	}

	log.WithFields(logrus.Fields{
		"items_count":  len(resp.Items),
		"errors_count": len(resp.Errors),
	}).Info("Search completed")
	return resp, nil
}

func (s *SearchService) cachingEnabled() bool {
	return s.cache != nil && s.cacheTTL > 0
}
