package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Ayash-Bera/apifusion/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var both = []models.SourceName{models.SourceGitHub, models.SourceHackerNews}

func newAPIClient(t *testing.T, url string, timeout time.Duration) *Client {
	t.Helper()
	c, err := New(Config{Mode: ModeAPI, BaseURL: url, Timeout: timeout}, logrus.New())
	require.NoError(t, err)
	return c
}

func TestClient_SearchAPI(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "GET", r.Method)
		assert.Equal(t, "/v1/search", r.URL.Path)
		assert.Equal(t, "fastapi", r.URL.Query().Get("q"))
		assert.Equal(t, "20", r.URL.Query().Get("limit"))
		assert.Equal(t, []string{"github", "hackernews"}, r.URL.Query()["sources"])

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set(TookHeader, "42")
		json.NewEncoder(w).Encode(models.SearchResponse{
			Query:   "fastapi",
			Sources: both,
			Items: []models.SearchItem{{
				Source: models.SourceGitHub,
				Title:  "tiangolo/fastapi",
				URL:    "https://github.com/tiangolo/fastapi",
			}},
		})
	}))
	defer server.Close()

	c := newAPIClient(t, server.URL, 0)
	resp, err := c.Search(context.Background(), "fastapi", both, 20)
	require.NoError(t, err)

	require.Len(t, resp.Items, 1)
	assert.Equal(t, "tiangolo/fastapi", resp.Items[0].Title)
	assert.NotNil(t, resp.Errors)
	require.NotNil(t, resp.TookMs)
	assert.Equal(t, int64(42), *resp.TookMs)
}

func TestClient_SearchAPIEnforcesLimitAndUniqueness(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(models.SearchResponse{
			Query:   "fastapi",
			Sources: both,
			Items: []models.SearchItem{
				{Source: models.SourceGitHub, Title: "a", URL: "https://github.com/a"},
				{Source: models.SourceGitHub, Title: "a again", URL: "https://github.com/a"},
				{Source: models.SourceHackerNews, Title: "b", URL: "https://news.ycombinator.com/item?id=1"},
			},
		})
	}))
	defer server.Close()

	c := newAPIClient(t, server.URL, 0)
	resp, err := c.Search(context.Background(), "fastapi", both, 2)
	require.NoError(t, err)

	require.Len(t, resp.Items, 2)
	seen := map[string]bool{}
	for _, it := range resp.Items {
		key := string(it.Source) + "|" + it.URL
		assert.False(t, seen[key], "duplicate %s", key)
		seen[key] = true
	}
	assert.Equal(t, "a", resp.Items[0].Title)
	assert.Equal(t, "b", resp.Items[1].Title)
}

func TestClient_MissingTookHeaderLeavesNil(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"query":"q","sources":["github"],"items":[],"errors":[]}`))
	}))
	defer server.Close()

	resp, err := newAPIClient(t, server.URL, 0).Search(context.Background(), "q", both[:1], 5)
	require.NoError(t, err)
	assert.Nil(t, resp.TookMs)
}

func TestClient_ErrorHandling(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("boom"))
	}))
	defer server.Close()

	_, err := newAPIClient(t, server.URL, 0).Search(context.Background(), "x", both, 20)
	require.Error(t, err)

	var httpErr *HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusInternalServerError, httpErr.StatusCode)
	assert.Equal(t, "HTTP 500: boom", err.Error())
	assert.False(t, IsCanceled(err))
}

func TestClient_ErrorWithoutBodyUsesStatusText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	_, err := newAPIClient(t, server.URL, 0).Search(context.Background(), "x", both, 20)
	require.Error(t, err)
	assert.Equal(t, "HTTP 502: Bad Gateway", err.Error())
}

func TestClient_MalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer server.Close()

	_, err := newAPIClient(t, server.URL, 0).Search(context.Background(), "x", both, 20)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "malformed response")
}

func TestClient_CancelIsNotAFailure(t *testing.T) {
	started := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-r.Context().Done()
	}))
	defer server.Close()

	c := newAPIClient(t, server.URL, 0)
	ctx, cancel := context.WithCancel(context.Background())

	errCh := make(chan error, 1)
	go func() {
		_, err := c.Search(ctx, "slow", both, 20)
		errCh <- err
	}()

	<-started
	cancel()

	select {
	case err := <-errCh:
		require.Error(t, err)
		assert.True(t, IsCanceled(err))
		assert.False(t, errors.Is(err, ErrTimeout))
	case <-time.After(2 * time.Second):
		t.Fatal("search did not return after cancel")
	}
}

func TestClient_TimeoutIsFatal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	_, err := newAPIClient(t, server.URL, 50*time.Millisecond).Search(context.Background(), "slow", both, 20)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTimeout))
	assert.False(t, IsCanceled(err))
}

func TestClient_EmptySources(t *testing.T) {
	c, err := New(Config{Mode: ModeMock}, logrus.New())
	require.NoError(t, err)

	_, err = c.Search(context.Background(), "x", nil, 20)
	assert.ErrorIs(t, err, ErrNoSources)
}

func TestClient_MockMode(t *testing.T) {
	c, err := New(Config{Mode: ModeMock}, logrus.New())
	require.NoError(t, err)

	resp, err := c.Search(context.Background(), "fastapi", both, 20)
	require.NoError(t, err)
	assert.Len(t, resp.Items, 2)
	assert.Empty(t, resp.Errors)

	resp, err = c.Search(context.Background(), "fastapi", []models.SourceName{models.SourceRSS}, 20)
	require.NoError(t, err)
	assert.Empty(t, resp.Items)
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, models.SourceRSS, resp.Errors[0].Source)
}

func TestClient_MockCanceledBeforeLatency(t *testing.T) {
	c, err := New(Config{Mode: ModeMock, MockLatency: time.Second}, logrus.New())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = c.Search(ctx, "q", both, 20)
	assert.True(t, IsCanceled(err))
}

func TestClient_SourcesAndLogs(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/sources":
			json.NewEncoder(w).Encode([]models.SourceStatus{
				{Source: models.SourceGitHub, OK: true, LatencyMs: models.Ptr(int64(12)), LastCheckedAt: now},
				{Source: models.SourceRSS, OK: false, LastCheckedAt: now, Error: models.Ptr("http_status:503")},
			})
		case "/v1/logs":
			assert.Equal(t, "50", r.URL.Query().Get("limit"))
			json.NewEncoder(w).Encode([]models.LogRow{{ID: 7, TS: now, RequestID: "abc", ItemsCount: 3}})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	c := newAPIClient(t, server.URL, time.Second)

	statuses, err := c.GetSources(context.Background())
	require.NoError(t, err)
	require.Len(t, statuses, 2)
	assert.True(t, statuses[0].OK)
	require.NotNil(t, statuses[1].Error)
	assert.Equal(t, "http_status:503", *statuses[1].Error)

	rows, err := c.GetLogs(context.Background(), 50)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "abc", rows[0].RequestID)
	assert.True(t, rows[0].TS.Equal(now))
}

func TestNew_InvalidConfig(t *testing.T) {
	_, err := New(Config{Mode: "carrier-pigeon"}, logrus.New())
	assert.Error(t, err)

	_, err = New(Config{Mode: ModeAPI}, logrus.New())
	assert.Error(t, err)
}
