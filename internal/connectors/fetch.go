package connectors

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/Ayash-Bera/apifusion/internal/models"
	"github.com/sirupsen/logrus"
)

const maxBodyBytes = 8 << 20

type fetcher struct {
	httpClient *http.Client
	retry      RetryConfig
	logger     *logrus.Logger
}

func newFetcher(httpClient *http.Client, retry RetryConfig, logger *logrus.Logger) *fetcher {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &fetcher{httpClient: httpClient, retry: retry, logger: logger}
}

// get performs a GET with retries and returns the body of a 2xx response.
func (f *fetcher) get(ctx context.Context, source models.SourceName, url string, headers map[string]string) ([]byte, error) {
	var body []byte
	err := retryOperation(ctx, f.retry, f.logger.WithField("source", source), func() error {
		var err error
		body, err = f.getOnce(ctx, source, url, headers)
		return err
	})
	return body, err
}

func (f *fetcher) getOnce(ctx context.Context, source models.SourceName, url string, headers map[string]string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", source, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s response: %w", source, err)
	}

	f.logger.WithFields(logrus.Fields{
		"source":        source,
		"status_code":   resp.StatusCode,
		"response_size": len(body),
	}).Debug("Upstream response received")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{Source: source, URL: url, StatusCode: resp.StatusCode}
	}
	return body, nil
}

func (f *fetcher) getJSON(ctx context.Context, source models.SourceName, url string, headers map[string]string, out interface{}) error {
	body, err := f.get(ctx, source, url, headers)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", source, err)
	}
	return nil
}
