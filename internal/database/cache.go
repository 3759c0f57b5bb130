package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/Ayash-Bera/apifusion/internal/models"
	"github.com/Ayash-Bera/apifusion/pkg/utils"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

// ErrCacheMiss is returned when a key is absent or expired.
var ErrCacheMiss = errors.New("cache miss")

// Cache key constants
const (
	SearchResultsKey = "search:results:%s"
	SourceStatusKey  = "sources:status"
)

// Cache stores JSON documents in redis.
type Cache struct {
	client *redis.Client
	logger *logrus.Logger
}

func NewCache(client *redis.Client, logger *logrus.Logger) *Cache {
	return &Cache{
		client: client,
		logger: logger,
	}
}

// SearchCacheKey identifies a search by trimmed query, source set and limit.
func SearchCacheKey(query string, sources []models.SourceName, limit int) string {
	names := make([]string, 0, len(sources))
	for _, s := range sources {
		names = append(names, string(s))
	}
	sort.Strings(names)

	raw := strings.TrimSpace(query) + "|" + strings.Join(names, ",") + "|" + strconv.Itoa(limit)
	return fmt.Sprintf(SearchResultsKey, utils.MD5Hash(raw))
}

func (c *Cache) setJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	return c.client.Set(ctx, key, data, expiration).Err()
}

func (c *Cache) getJSON(ctx context.Context, key string, out interface{}) error {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrCacheMiss
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

// CacheSearchResponse stores a response without its took_ms, which belongs to
// the request that produced it.
func (c *Cache) CacheSearchResponse(ctx context.Context, key string, resp *models.SearchResponse, expiration time.Duration) error {
	stored := *resp
	stored.TookMs = nil
	return c.setJSON(ctx, key, stored, expiration)
}

func (c *Cache) GetCachedSearchResponse(ctx context.Context, key string) (*models.SearchResponse, error) {
	var resp models.SearchResponse
	if err := c.getJSON(ctx, key, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Cache) CacheSourceStatuses(ctx context.Context, statuses []models.SourceStatus, expiration time.Duration) error {
	return c.setJSON(ctx, SourceStatusKey, statuses, expiration)
}

func (c *Cache) GetCachedSourceStatuses(ctx context.Context) ([]models.SourceStatus, error) {
	var statuses []models.SourceStatus
	if err := c.getJSON(ctx, SourceStatusKey, &statuses); err != nil {
		return nil, err
	}
	return statuses, nil
}

// InvalidateSourceStatuses drops the shared status snapshot.
func (c *Cache) InvalidateSourceStatuses(ctx context.Context) error {
	return c.client.Del(ctx, SourceStatusKey).Err()
}
