package services

import (
	"context"

	"github.com/Ayash-Bera/apifusion/internal/models"
)

// StatusProvider lists the health of every source. force skips any cache.
type StatusProvider interface {
	Get(ctx context.Context, force bool) ([]models.SourceStatus, error)
}

// StatusFetcher is satisfied by the mock generator.
type StatusFetcher interface {
	Sources(ctx context.Context) ([]models.SourceStatus, error)
}

// FetcherStatus adapts a fetcher without a cache into a StatusProvider.
type FetcherStatus struct {
	Fetcher StatusFetcher
}

func (f FetcherStatus) Get(ctx context.Context, force bool) ([]models.SourceStatus, error) {
	return f.Fetcher.Sources(ctx)
}
