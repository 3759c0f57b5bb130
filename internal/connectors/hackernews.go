package connectors

import (
	"context"
	"net/url"
	"strconv"

	"github.com/Ayash-Bera/apifusion/internal/models"
)

type HackerNews struct {
	fetcher *fetcher
	baseURL string
	cleaner *Cleaner
}

type algoliaResponse struct {
	Hits []algoliaHit `json:"hits"`
}

type algoliaHit struct {
	Title      string `json:"title"`
	URL        string `json:"url"`
	StoryTitle string `json:"story_title"`
	StoryURL   string `json:"story_url"`
	StoryText  string `json:"story_text"`
	Points     *int   `json:"points"`
	CreatedAt  string `json:"created_at"`
}

func NewHackerNews(f *fetcher, baseURL string, cleaner *Cleaner) *HackerNews {
	return &HackerNews{fetcher: f, baseURL: baseURL, cleaner: cleaner}
}

func (h *HackerNews) Name() models.SourceName { return models.SourceHackerNews }

// Search queries stories through Algolia. Comment hits fall back to the
// title and url of their parent story.
func (h *HackerNews) Search(ctx context.Context, query string, limit int) ([]models.SearchItem, error) {
	if limit <= 0 {
		return []models.SearchItem{}, nil
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("tags", "story")
	params.Set("hitsPerPage", strconv.Itoa(min(limit, maxPerPage)))

	var resp algoliaResponse
	if err := h.fetcher.getJSON(ctx, h.Name(), h.baseURL+"/search?"+params.Encode(), nil, &resp); err != nil {
		return nil, err
	}

	items := make([]models.SearchItem, 0, len(resp.Hits))
	for _, hit := range resp.Hits {
		title := firstNonEmpty(hit.Title, hit.StoryTitle)
		link := firstNonEmpty(hit.URL, hit.StoryURL)
		if title == "" || link == "" {
			continue
		}
		item := models.SearchItem{
			Source:    models.SourceHackerNews,
			Title:     title,
			URL:       link,
			Snippet:   h.cleaner.Snippet(hit.StoryText),
			Timestamp: parseTime(hit.CreatedAt),
		}
		if hit.Points != nil {
			item.Score = models.Ptr(float64(*hit.Points))
		}
		items = append(items, item)
		if len(items) >= limit {
			break
		}
	}
	return items, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
