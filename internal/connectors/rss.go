package connectors

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Ayash-Bera/apifusion/internal/models"
	"github.com/mmcdole/gofeed"
)

// RSS filters entries of the configured feeds by a case-insensitive match
// of the query in title or summary. Feeds are read in order until limit
// matches are collected.
type RSS struct {
	fetcher *fetcher
	feeds   []string
	cleaner *Cleaner
}

func NewRSS(f *fetcher, feeds []string, cleaner *Cleaner) *RSS {
	return &RSS{fetcher: f, feeds: feeds, cleaner: cleaner}
}

func (r *RSS) Name() models.SourceName { return models.SourceRSS }

func (r *RSS) Search(ctx context.Context, query string, limit int) ([]models.SearchItem, error) {
	if limit <= 0 {
		return []models.SearchItem{}, nil
	}
	needle := strings.ToLower(query)
	items := make([]models.SearchItem, 0, limit)

	for _, feedURL := range r.feeds {
		body, err := r.fetcher.get(ctx, r.Name(), feedURL, map[string]string{
			"Accept": "application/rss+xml, application/atom+xml, application/xml;q=0.9, */*;q=0.8",
		})
		if err != nil {
			return nil, err
		}

		// gofeed.Parser is not safe for concurrent use.
		feed, err := gofeed.NewParser().Parse(bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("parse feed %s: %w", feedURL, err)
		}

		for _, entry := range feed.Items {
			link := extractLink(entry)
			if entry.Title == "" || link == "" {
				continue
			}
			if !strings.Contains(strings.ToLower(entry.Title), needle) &&
				!strings.Contains(strings.ToLower(entry.Description), needle) {
				continue
			}

			items = append(items, models.SearchItem{
				Source:    models.SourceRSS,
				Title:     entry.Title,
				URL:       link,
				Snippet:   r.cleaner.Snippet(entry.Description),
				Timestamp: entryTime(entry),
			})
			if len(items) >= limit {
				return items, nil
			}
		}
	}
	return items, nil
}

// extractLink prefers the explicit link and falls back to a URL-shaped GUID.
func extractLink(entry *gofeed.Item) string {
	if entry.Link != "" {
		return entry.Link
	}
	if strings.HasPrefix(entry.GUID, "http") {
		return entry.GUID
	}
	return ""
}

func entryTime(entry *gofeed.Item) *time.Time {
	ts := time.Now().UTC()
	if entry.PublishedParsed != nil {
		ts = entry.PublishedParsed.UTC()
	} else if entry.UpdatedParsed != nil {
		ts = entry.UpdatedParsed.UTC()
	}
	return &ts
}
