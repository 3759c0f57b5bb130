package discovery

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const page = `<!doctype html>
<html><head>
<title>Example blog</title>
<link rel="alternate" type="application/rss+xml" title="Posts" href="/feed.xml">
<link rel="alternate" type="application/atom+xml" title="Atom" href="https://cdn.example.com/atom.xml">
<link rel="alternate" type="application/rss+xml" href="/feed.xml">
<link rel="alternate" hreflang="de" href="/de/">
<link rel="stylesheet" type="text/css" href="/style.css">
</head><body><a href="/feed.xml">RSS</a></body></html>`

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newSite(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/":
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = io.WriteString(w, page)
		case "/bare":
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = io.WriteString(w, "<html><head><title>none</title></head></html>")
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestDiscover_FindsAlternateFeeds(t *testing.T) {
	srv := newSite(t)
	d := NewDiscoverer(Options{}, testLogger())

	feeds, err := d.Discover(context.Background(), srv.URL+"/")
	require.NoError(t, err)
	require.Len(t, feeds, 2)

	assert.Equal(t, Feed{URL: srv.URL + "/feed.xml", Title: "Posts", Type: "rss"}, feeds[0])
	assert.Equal(t, Feed{URL: "https://cdn.example.com/atom.xml", Title: "Atom", Type: "atom"}, feeds[1])
}

func TestDiscover_NoFeeds(t *testing.T) {
	srv := newSite(t)
	feeds, err := NewDiscoverer(Options{}, testLogger()).Discover(context.Background(), srv.URL+"/bare")
	require.NoError(t, err)
	assert.Empty(t, feeds)
}

func TestDiscover_NotFound(t *testing.T) {
	srv := newSite(t)
	_, err := NewDiscoverer(Options{}, testLogger()).Discover(context.Background(), srv.URL+"/missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestDiscover_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewDiscoverer(Options{}, testLogger()).Discover(ctx, "http://127.0.0.1:1/")
	assert.ErrorIs(t, err, context.Canceled)
}
