// Package status probes each upstream with a light GET and serves the
// results from a short-lived cache.
package status

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/Ayash-Bera/apifusion/internal/config"
	"github.com/Ayash-Bera/apifusion/internal/database"
	"github.com/Ayash-Bera/apifusion/internal/metrics"
	"github.com/Ayash-Bera/apifusion/internal/models"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultTTL          = 15 * time.Second
	DefaultProbeTimeout = 3 * time.Second
	probeUserAgent      = "API-Fusion/1.0"
)

// Probe names the endpoint checked for one source.
type Probe struct {
	Source models.SourceName
	URL    string
}

// ProbesFromConfig lists the probe endpoints in canonical source order.
func ProbesFromConfig(cfg *config.Config) []Probe {
	rssURL := "https://hnrss.org/newest"
	if len(cfg.RSS.Feeds) > 0 {
		rssURL = cfg.RSS.Feeds[0]
	}
	return []Probe{
		{Source: models.SourceGitHub, URL: cfg.GitHub.BaseURL + "/rate_limit"},
		{Source: models.SourceHackerNews, URL: cfg.HackerNews.ProbeURL},
		{Source: models.SourceRSS, URL: rssURL},
	}
}

// Mirror shares status snapshots between server instances.
type Mirror interface {
	CacheSourceStatuses(ctx context.Context, statuses []models.SourceStatus, expiration time.Duration) error
	GetCachedSourceStatuses(ctx context.Context) ([]models.SourceStatus, error)
}

type Options struct {
	Probes     []Probe
	TTL        time.Duration
	Timeout    time.Duration
	HTTPClient *http.Client
	Mirror     Mirror
	Metrics    *metrics.Metrics
}

type Service struct {
	probes     []Probe
	ttl        time.Duration
	timeout    time.Duration
	httpClient *http.Client
	mirror     Mirror
	metrics    *metrics.Metrics
	logger     *logrus.Logger
	now        func() time.Time

	mu        sync.RWMutex
	data      []models.SourceStatus
	fetchedAt time.Time
	group     singleflight.Group
}

func NewService(opts Options, logger *logrus.Logger) *Service {
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultProbeTimeout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{}
	}
	return &Service{
		probes:     opts.Probes,
		ttl:        opts.TTL,
		timeout:    opts.Timeout,
		httpClient: opts.HTTPClient,
		mirror:     opts.Mirror,
		metrics:    opts.Metrics,
		logger:     logger,
		now:        time.Now,
	}
}

// Get returns the cached statuses while fresh. force skips both the local
// cache and the mirror. Concurrent refreshes share one probe round.
func (s *Service) Get(ctx context.Context, force bool) ([]models.SourceStatus, error) {
	if !force {
		if data, ok := s.fresh(); ok {
			s.metrics.CacheLookup("sources", true)
			return data, nil
		}
		if data, ok := s.fromMirror(ctx); ok {
			s.metrics.CacheLookup("sources", true)
			return data, nil
		}
		s.metrics.CacheLookup("sources", false)
	}

	ch := s.group.DoChan("probe", func() (interface{}, error) {
		if !force {
			if data, ok := s.fresh(); ok {
				return data, nil
			}
		}
		// Detached so one canceled request does not fail the shared refresh.
		return s.Refresh(context.WithoutCancel(ctx)), nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return clone(res.Val.([]models.SourceStatus)), nil
	}
}

// Refresh probes every source now and stores the result.
func (s *Service) Refresh(ctx context.Context) []models.SourceStatus {
	checkedAt := s.now().UTC()
	out := make([]models.SourceStatus, len(s.probes))

	var g errgroup.Group
	for i, p := range s.probes {
		g.Go(func() error {
			out[i] = s.probe(ctx, p, checkedAt)
			return nil
		})
	}
	_ = g.Wait()

	s.mu.Lock()
	s.data = out
	s.fetchedAt = s.now()
	s.mu.Unlock()

	if s.mirror != nil {
		if err := s.mirror.CacheSourceStatuses(ctx, out, s.ttl); err != nil {
			s.logger.WithError(err).Warn("Failed to mirror source statuses")
		}
	}

	s.logger.WithField("sources", len(out)).Debug("Source probes completed")
	return clone(out)
}

func (s *Service) probe(ctx context.Context, p Probe, checkedAt time.Time) models.SourceStatus {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	status := models.SourceStatus{Source: p.Source, LastCheckedAt: checkedAt}
	start := time.Now()

	code, err := s.get(ctx, p.URL)
	status.LatencyMs = models.Ptr(time.Since(start).Milliseconds())

	switch {
	case err != nil:
		status.Error = models.Ptr(err.Error())
	case code >= 200 && code < 400:
		status.OK = true
	default:
		status.Error = models.Ptr(fmt.Sprintf("http_status:%d", code))
	}

	if !status.OK {
		s.logger.WithFields(logrus.Fields{
			"source": p.Source,
			"url":    p.URL,
			"error":  *status.Error,
		}).Warn("Source probe failed")
	}
	return status
}

func (s *Service) get(ctx context.Context, url string) (int, error) {
	if url == "" {
		return 0, errors.New("no probe endpoint configured")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("User-Agent", probeUserAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	resp.Body.Close()
	return resp.StatusCode, nil
}

func (s *Service) fresh() ([]models.SourceStatus, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.data == nil || s.now().Sub(s.fetchedAt) >= s.ttl {
		return nil, false
	}
	return clone(s.data), true
}

func (s *Service) fromMirror(ctx context.Context) ([]models.SourceStatus, bool) {
	if s.mirror == nil {
		return nil, false
	}
	data, err := s.mirror.GetCachedSourceStatuses(ctx)
	if err != nil {
		if !errors.Is(err, database.ErrCacheMiss) {
			s.logger.WithError(err).Warn("Failed to read mirrored source statuses")
		}
		return nil, false
	}
	return data, true
}

// Run refreshes the statuses every interval until ctx is done.
func (s *Service) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			statuses := s.Refresh(ctx)
			healthy := 0
			for _, st := range statuses {
				if st.OK {
					healthy++
				}
			}
			s.logger.WithFields(logrus.Fields{
				"healthy": healthy,
				"total":   len(statuses),
			}).Debug("Periodic source check completed")
		}
	}
}

func clone(in []models.SourceStatus) []models.SourceStatus {
	return append([]models.SourceStatus(nil), in...)
}
