package services

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/Ayash-Bera/apifusion/internal/database"
	"github.com/Ayash-Bera/apifusion/internal/mock"
	"github.com/Ayash-Bera/apifusion/internal/models"
	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

type countingSearcher struct {
	calls int
	inner Searcher
	err   error
}

func (c *countingSearcher) Search(ctx context.Context, query string, sources []models.SourceName, limit int) (*models.SearchResponse, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return c.inner.Search(ctx, query, sources, limit)
}

func newCache(t *testing.T) *database.Cache {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return database.NewCache(client, testLogger())
}

func TestSearchService_CachesCleanResponses(t *testing.T) {
	backend := &countingSearcher{inner: mock.NewGenerator(0)}
	svc := NewSearchService(backend, newCache(t), time.Minute, nil, testLogger())
	ctx := context.Background()
	sources := []models.SourceName{models.SourceGitHub, models.SourceHackerNews}

	first, err := svc.Search(ctx, "fastapi", sources, 20)
	require.NoError(t, err)
	second, err := svc.Search(ctx, " fastapi ", sources, 20)
	require.NoError(t, err)

	assert.Equal(t, 1, backend.calls)
	assert.Equal(t, "fastapi", second.Query)
	require.Len(t, second.Items, len(first.Items))
	for i := range first.Items {
		assert.Equal(t, first.Items[i].URL, second.Items[i].URL)
		assert.Equal(t, first.Items[i].Title, second.Items[i].Title)
	}
	assert.Nil(t, second.TookMs)
}

func TestSearchService_CaseDistinctQueriesAreNotShared(t *testing.T) {
	backend := &countingSearcher{inner: mock.NewGenerator(0)}
	svc := NewSearchService(backend, newCache(t), time.Minute, nil, testLogger())
	ctx := context.Background()
	sources := []models.SourceName{models.SourceGitHub, models.SourceHackerNews}

	_, err := svc.Search(ctx, "fastapi", sources, 20)
	require.NoError(t, err)
	resp, err := svc.Search(ctx, "FastAPI", sources, 20)
	require.NoError(t, err)

	assert.Equal(t, 2, backend.calls)
	assert.Equal(t, "FastAPI", resp.Query)
	require.NotEmpty(t, resp.Items)
	assert.Contains(t, resp.Items[0].Title, "FastAPI")
}

func TestSearchService_SelectionOrderIsNotShared(t *testing.T) {
	backend := &countingSearcher{inner: mock.NewGenerator(0)}
	svc := NewSearchService(backend, newCache(t), time.Minute, nil, testLogger())
	ctx := context.Background()

	_, err := svc.Search(ctx, "go", []models.SourceName{models.SourceGitHub, models.SourceHackerNews}, 20)
	require.NoError(t, err)
	resp, err := svc.Search(ctx, "go", []models.SourceName{models.SourceHackerNews, models.SourceGitHub}, 20)
	require.NoError(t, err)

	assert.Equal(t, 2, backend.calls)
	require.Len(t, resp.Items, 2)
	assert.Equal(t, models.SourceHackerNews, resp.Items[0].Source)
}

func TestSearchService_SkipsCacheWithSourceErrors(t *testing.T) {
	backend := &countingSearcher{inner: mock.NewGenerator(0)}
	svc := NewSearchService(backend, newCache(t), time.Minute, nil, testLogger())
	ctx := context.Background()
	sources := []models.SourceName{models.SourceRSS}

	for range 2 {
		resp, err := svc.Search(ctx, "go", sources, 20)
		require.NoError(t, err)
		require.Len(t, resp.Errors, 1)
	}
	assert.Equal(t, 2, backend.calls)
}

func TestSearchService_WithoutCache(t *testing.T) {
	backend := &countingSearcher{inner: mock.NewGenerator(0)}
	svc := NewSearchService(backend, nil, time.Minute, nil, testLogger())

	resp, err := svc.Search(context.Background(), "go", []models.SourceName{models.SourceGitHub}, 20)
	require.NoError(t, err)
	assert.Len(t, resp.Items, 1)
	assert.NotNil(t, resp.Errors)
}

func TestSearchService_BackendError(t *testing.T) {
	boom := errors.New("boom")
	svc := NewSearchService(&countingSearcher{err: boom}, nil, 0, nil, testLogger())

	_, err := svc.Search(context.Background(), "go", models.DefaultSources, 20)
	assert.ErrorIs(t, err, boom)
}

func TestFetcherStatus(t *testing.T) {
	provider := FetcherStatus{Fetcher: mock.NewGenerator(0)}
	statuses, err := provider.Get(context.Background(), true)
	require.NoError(t, err)
	assert.Len(t, statuses, len(models.KnownSources))
}
