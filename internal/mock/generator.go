// Package mock produces placeholder search data in-process. Both the dashboard
// client (mock mode) and the server (search.mode=mock) serve it.
package mock

import (
	"context"
	"fmt"
	"time"

	"github.com/Ayash-Bera/apifusion/internal/models"
	"github.com/google/uuid"
)

// DefaultLatency mimics a round trip to a real backend.
const DefaultLatency = 350 * time.Millisecond

const snippet = "Mock result. Next step: real search connector."

type Generator struct {
	Latency time.Duration
	Now     func() time.Time
}

func NewGenerator(latency time.Duration) *Generator {
	return &Generator{
		Latency: latency,
		Now:     time.Now,
	}
}

// Search returns one canned item per github/hackernews source and a source
// error for rss, in selection order, truncated to limit.
func (g *Generator) Search(ctx context.Context, q string, sources []models.SourceName, limit int) (*models.SearchResponse, error) {
	if err := g.wait(ctx); err != nil {
		return nil, err
	}

	now := g.Now().UTC()
	batches := make([][]models.SearchItem, 0, len(sources))
	errs := make([]models.SourceError, 0)

	for _, src := range sources {
		switch src {
		case models.SourceGitHub:
			batches = append(batches, []models.SearchItem{{
				Source:    models.SourceGitHub,
				Title:     fmt.Sprintf("Example repo about %s", q),
				URL:       "https://github.com/example/repo",
				Snippet:   models.Ptr(snippet),
				Score:     models.Ptr(1234.0),
				Timestamp: models.Ptr(now),
			}})
		case models.SourceHackerNews:
			batches = append(batches, []models.SearchItem{{
				Source:    models.SourceHackerNews,
				Title:     fmt.Sprintf("HN discussion: %s", q),
				URL:       "https://news.ycombinator.com/item?id=1",
				Snippet:   models.Ptr(snippet),
				Score:     models.Ptr(256.0),
				Timestamp: models.Ptr(now),
			}})
		case models.SourceRSS:
			errs = append(errs, models.SourceError{
				Source:  models.SourceRSS,
				Message: "RSS source temporarily unavailable",
				Type:    models.ErrorTypeSource,
			})
		default:
			errs = append(errs, models.SourceError{
				Source:  src,
				Message: fmt.Sprintf("Unsupported source: %s", src),
				Type:    models.ErrorTypeUnsupported,
			})
		}
	}

	return &models.SearchResponse{
		Query:   q,
		Sources: append([]models.SourceName{}, sources...),
		Items:   models.MergeItems(limit, batches...),
		Errors:  errs,
	}, nil
}

// Sources reports every known source as healthy with fixed latencies.
func (g *Generator) Sources(ctx context.Context) ([]models.SourceStatus, error) {
	if err := g.wait(ctx); err != nil {
		return nil, err
	}
	now := g.Now().UTC()
	latencies := map[models.SourceName]int64{
		models.SourceGitHub:     120,
		models.SourceHackerNews: 80,
		models.SourceRSS:        40,
	}

	out := make([]models.SourceStatus, 0, len(models.KnownSources))
	for _, src := range models.KnownSources {
		out = append(out, models.SourceStatus{
			Source:        src,
			OK:            true,
			LatencyMs:     models.Ptr(latencies[src]),
			LastCheckedAt: now,
		})
	}
	return out, nil
}

// Logs fabricates up to limit log rows, newest first.
func (g *Generator) Logs(ctx context.Context, limit int) ([]models.LogRow, error) {
	if err := g.wait(ctx); err != nil {
		return nil, err
	}
	queries := []string{"fastapi", "golang generics", "rust async", "", "sqlite wal"}
	if limit > len(queries) {
		limit = len(queries)
	}

	now := g.Now().UTC()
	rows := make([]models.LogRow, 0, limit)
	for i := 0; i < limit; i++ {
		row := models.LogRow{
			ID:          uint(len(queries) - i),
			TS:          now.Add(-time.Duration(i) * time.Minute),
			RequestID:   uuid.NewString(),
			Sources:     []string{string(models.SourceGitHub), string(models.SourceHackerNews)},
			ItemsCount:  2,
			ErrorsCount: 0,
		}
		if q := queries[i]; q != "" {
			row.Q = models.Ptr(q)
			row.TookMs = models.Ptr(int64(120 + 37*i))
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (g *Generator) wait(ctx context.Context) error {
	if g.Latency <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(g.Latency)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
