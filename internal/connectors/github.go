package connectors

import (
	"context"
	"net/url"
	"strconv"

	"github.com/Ayash-Bera/apifusion/internal/models"
)

const maxPerPage = 50

type GitHub struct {
	fetcher *fetcher
	baseURL string
	token   string
	cleaner *Cleaner
}

type githubSearchResponse struct {
	Items []githubRepo `json:"items"`
}

type githubRepo struct {
	FullName        string `json:"full_name"`
	HTMLURL         string `json:"html_url"`
	Description     string `json:"description"`
	StargazersCount *int   `json:"stargazers_count"`
	PushedAt        string `json:"pushed_at"`
}

func NewGitHub(f *fetcher, baseURL, token string, cleaner *Cleaner) *GitHub {
	return &GitHub{fetcher: f, baseURL: baseURL, token: token, cleaner: cleaner}
}

func (g *GitHub) Name() models.SourceName { return models.SourceGitHub }

// Search queries repositories sorted by stars. Score is the star count and
// the timestamp is the last push.
func (g *GitHub) Search(ctx context.Context, query string, limit int) ([]models.SearchItem, error) {
	if limit <= 0 {
		return []models.SearchItem{}, nil
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("sort", "stars")
	params.Set("order", "desc")
	params.Set("per_page", strconv.Itoa(min(limit, maxPerPage)))

	headers := map[string]string{"Accept": "application/vnd.github+json"}
	if g.token != "" {
		headers["Authorization"] = "Bearer " + g.token
	}

	var resp githubSearchResponse
	if err := g.fetcher.getJSON(ctx, g.Name(), g.baseURL+"/search/repositories?"+params.Encode(), headers, &resp); err != nil {
		return nil, err
	}

	items := make([]models.SearchItem, 0, len(resp.Items))
	for _, repo := range resp.Items {
		if repo.HTMLURL == "" || repo.FullName == "" {
			continue
		}
		item := models.SearchItem{
			Source:    models.SourceGitHub,
			Title:     repo.FullName,
			URL:       repo.HTMLURL,
			Snippet:   g.cleaner.Snippet(repo.Description),
			Timestamp: parseTime(repo.PushedAt),
		}
		if repo.StargazersCount != nil {
			item.Score = models.Ptr(float64(*repo.StargazersCount))
		}
		items = append(items, item)
		if len(items) >= limit {
			break
		}
	}
	return items, nil
}
