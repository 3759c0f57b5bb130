// Package discovery finds the RSS and Atom feeds a website advertises, so
// they can be added to rss.feeds.
package discovery

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"
	"github.com/gocolly/colly/v2/debug"
	"github.com/sirupsen/logrus"
)

const userAgent = "API-Fusion-FeedDiscovery/1.0"

var feedTypes = map[string]string{
	"application/rss+xml":   "rss",
	"application/atom+xml":  "atom",
	"application/feed+json": "json",
	"application/xml":       "rss",
	"text/xml":              "rss",
}

// Feed is one advertised feed.
type Feed struct {
	URL   string `json:"url"`
	Title string `json:"title"`
	Type  string `json:"type"`
}

type Options struct {
	Timeout time.Duration
	Verbose bool
}

type Discoverer struct {
	opts   Options
	logger *logrus.Logger
}

func NewDiscoverer(opts Options, logger *logrus.Logger) *Discoverer {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	return &Discoverer{opts: opts, logger: logger}
}

// Discover visits siteURL and returns the feeds declared with
// <link rel="alternate">, resolved to absolute URLs in page order.
func (d *Discoverer) Discover(ctx context.Context, siteURL string) ([]Feed, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c := colly.NewCollector(colly.UserAgent(userAgent))
	c.SetRequestTimeout(d.opts.Timeout)
	if d.opts.Verbose {
		c.SetDebugger(&debug.LogDebugger{})
	}

	var (
		feeds    []Feed
		seen     = make(map[string]bool)
		visitErr error
	)

	c.OnRequest(func(r *colly.Request) {
		if ctx.Err() != nil {
			r.Abort()
		}
	})

	c.OnHTML(`link[rel~="alternate"]`, func(e *colly.HTMLElement) {
		kind, ok := feedTypes[strings.ToLower(strings.TrimSpace(e.Attr("type")))]
		if !ok {
			return
		}
		href := strings.TrimSpace(e.Attr("href"))
		if href == "" {
			return
		}
		abs := e.Request.AbsoluteURL(href)
		if abs == "" || seen[abs] {
			return
		}
		seen[abs] = true
		feeds = append(feeds, Feed{
			URL:   abs,
			Title: strings.TrimSpace(e.Attr("title")),
			Type:  kind,
		})
	})

	c.OnError(func(r *colly.Response, err error) {
		visitErr = fmt.Errorf("fetch %s: status %d: %w", r.Request.URL, r.StatusCode, err)
	})

	err := c.Visit(siteURL)
	c.Wait()
	switch {
	case ctx.Err() != nil:
		return nil, ctx.Err()
	case visitErr != nil:
		return nil, visitErr
	case err != nil:
		return nil, fmt.Errorf("failed to visit %s: %w", siteURL, err)
	}

	d.logger.WithFields(logrus.Fields{
		"site":  siteURL,
		"feeds": len(feeds),
	}).Debug("Feed discovery completed")
	return feeds, nil
}
