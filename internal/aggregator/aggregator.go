// Package aggregator fans a query out to the selected connectors and merges
// the results. Per-source failures become SourceErrors; only caller
// cancellation fails the whole search.
package aggregator

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/Ayash-Bera/apifusion/internal/connectors"
	"github.com/Ayash-Bera/apifusion/internal/metrics"
	"github.com/Ayash-Bera/apifusion/internal/models"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

type Config struct {
	// Timeout bounds each source call.
	Timeout time.Duration
	Breaker BreakerConfig
}

type Aggregator struct {
	registry *connectors.Registry
	config   Config
	metrics  *metrics.Metrics
	logger   *logrus.Logger

	mu       sync.Mutex
	breakers map[models.SourceName]*Breaker
}

func New(registry *connectors.Registry, config Config, m *metrics.Metrics, logger *logrus.Logger) *Aggregator {
	return &Aggregator{
		registry: registry,
		config:   config,
		metrics:  m,
		logger:   logger,
		breakers: make(map[models.SourceName]*Breaker),
	}
}

// Search queries every selected source concurrently. Items are merged in
// selection order, deduplicated on (source, url) and truncated to limit.
func (a *Aggregator) Search(ctx context.Context, query string, sources []models.SourceName, limit int) (*models.SearchResponse, error) {
	batches := make([][]models.SearchItem, len(sources))
	failures := make([]*models.SourceError, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	for i, src := range sources {
		conn, ok := a.registry.Get(src)
		if !ok {
			failures[i] = &models.SourceError{
				Source:  src,
				Message: fmt.Sprintf("Unsupported source: %s", src),
				Type:    models.ErrorTypeUnsupported,
			}
			continue
		}

		g.Go(func() error {
			items, err := a.searchSource(gctx, conn, query, limit)
			if err != nil {
				failures[i] = a.classify(src, err)
				return nil
			}
			batches[i] = items
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	errs := make([]models.SourceError, 0)
	for _, f := range failures {
		if f != nil {
			errs = append(errs, *f)
			a.metrics.SourceError(string(f.Source), f.Type)
		}
	}

	return &models.SearchResponse{
		Query:   query,
		Sources: sources,
		Items:   models.MergeItems(limit, batches...),
		Errors:  errs,
	}, nil
}

func (a *Aggregator) searchSource(ctx context.Context, conn connectors.Connector, query string, limit int) ([]models.SearchItem, error) {
	src := conn.Name()
	breaker := a.breaker(src)
	if err := breaker.Allow(); err != nil {
		return nil, err
	}

	callCtx := ctx
	if a.config.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, a.config.Timeout)
		defer cancel()
	}

	start := time.Now()
	items, err := conn.Search(callCtx, query, limit)
	elapsed := time.Since(start)

	// Abandoned calls say nothing about the upstream's health.
	if ctx.Err() == nil {
		breaker.Record(err)
	}

	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	a.metrics.ObserveSource(string(src), outcome, elapsed)

	log := a.logger.WithFields(logrus.Fields{
		"source":  src,
		"elapsed": elapsed.Milliseconds(),
		"items":   len(items),
	})
	if err != nil {
		log.WithError(err).Warn("Source search failed")
	} else {
		log.Debug("Source search completed")
	}

	return items, err
}

func (a *Aggregator) breaker(src models.SourceName) *Breaker {
	a.mu.Lock()
	defer a.mu.Unlock()

	b, ok := a.breakers[src]
	if !ok {
		b = NewBreaker(a.config.Breaker, func(from, to BreakerState) {
			a.logger.WithFields(logrus.Fields{
				"source": src,
				"from":   from.String(),
				"to":     to.String(),
			}).Warn("Circuit breaker state changed")
			a.metrics.SetBreakerState(string(src), int(to))
		})
		a.breakers[src] = b
	}
	return b
}

// BreakerState reports the circuit state of src.
func (a *Aggregator) BreakerState(src models.SourceName) BreakerState {
	return a.breaker(src).State()
}

func (a *Aggregator) classify(src models.SourceName, err error) *models.SourceError {
	var statusErr *connectors.StatusError
	var netErr net.Error

	switch {
	case errors.Is(err, ErrCircuitOpen):
		return &models.SourceError{Source: src, Message: "Source temporarily disabled after repeated failures", Type: models.ErrorTypeCircuitOpen}
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &netErr) && netErr.Timeout():
		return &models.SourceError{Source: src, Message: "Timeout while calling source", Type: models.ErrorTypeTimeout}
	case errors.As(err, &statusErr):
		return &models.SourceError{Source: src, Message: fmt.Sprintf("Bad status from source: %d", statusErr.StatusCode), Type: models.ErrorTypeBadStatus}
	default:
		return &models.SourceError{Source: src, Message: fmt.Sprintf("Unhandled error: %v", err), Type: models.ErrorTypeUnknown}
	}
}
