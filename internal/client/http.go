package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/Ayash-Bera/apifusion/internal/models"
	"github.com/sirupsen/logrus"
)

// TookHeader carries the server-side aggregation time in milliseconds.
const TookHeader = "X-Took-Ms"

type httpBackend struct {
	baseURL    string
	httpClient *http.Client
	logger     *logrus.Logger
}

func (b *httpBackend) search(ctx context.Context, query string, sources []models.SourceName, limit int) (*models.SearchResponse, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("limit", strconv.Itoa(limit))
	for _, s := range sources {
		params.Add("sources", string(s))
	}

	var resp models.SearchResponse
	headers, err := b.get(ctx, "/v1/search", params, &resp)
	if err != nil {
		return nil, err
	}

	if took := headers.Get(TookHeader); took != "" {
		if ms, err := strconv.ParseInt(took, 10, 64); err == nil {
			resp.TookMs = &ms
		}
	}
	return &resp, nil
}

func (b *httpBackend) sources(ctx context.Context) ([]models.SourceStatus, error) {
	var out []models.SourceStatus
	if _, err := b.get(ctx, "/v1/sources", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (b *httpBackend) logs(ctx context.Context, limit int) ([]models.LogRow, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))

	var out []models.LogRow
	if _, err := b.get(ctx, "/v1/logs", params, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (b *httpBackend) get(ctx context.Context, endpoint string, params url.Values, result interface{}) (http.Header, error) {
	target := b.baseURL + endpoint
	if len(params) > 0 {
		target += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "api-fusion/0.1")

	b.logger.WithFields(logrus.Fields{
		"method": http.MethodGet,
		"url":    target,
	}).Debug("Making API request")

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	b.logger.WithFields(logrus.Fields{
		"status_code":   resp.StatusCode,
		"url":           target,
		"response_size": len(body),
	}).Debug("API response received")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &HTTPError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
		}
	}

	if err := json.Unmarshal(body, result); err != nil {
		return nil, fmt.Errorf("malformed response from %s: %w", endpoint, err)
	}

	return resp.Header, nil
}
