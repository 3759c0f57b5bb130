package models

import (
	"strings"
	"time"
)

// SourceName identifies an upstream source. Values outside the known set are
// kept as-is so newer backends can introduce sources without breaking clients.
type SourceName string

const (
	SourceGitHub     SourceName = "github"
	SourceHackerNews SourceName = "hackernews"
	SourceRSS        SourceName = "rss"
)

// KnownSources lists the sources in their canonical display order.
var KnownSources = []SourceName{SourceGitHub, SourceHackerNews, SourceRSS}

// DefaultSources is the selection used when a request names none.
var DefaultSources = []SourceName{SourceGitHub, SourceHackerNews}

func (s SourceName) Known() bool {
	for _, k := range KnownSources {
		if s == k {
			return true
		}
	}
	return false
}

// ParseSources trims, drops empties and removes duplicates, keeping first-seen order.
func ParseSources(raw []string) []SourceName {
	seen := make(map[SourceName]bool, len(raw))
	out := make([]SourceName, 0, len(raw))
	for _, r := range raw {
		for _, part := range strings.Split(r, ",") {
			s := SourceName(strings.ToLower(strings.TrimSpace(part)))
			if s == "" || seen[s] {
				continue
			}
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

// Source error categories carried in SourceError.Type.
const (
	ErrorTypeSource      = "source_error"
	ErrorTypeTimeout     = "timeout"
	ErrorTypeBadStatus   = "bad_status"
	ErrorTypeUnknown     = "unknown"
	ErrorTypeUnsupported = "unsupported"
	ErrorTypeCircuitOpen = "circuit_open"
)

// SearchItem is one normalized result. Optional fields are pointers and are
// encoded as explicit nulls.
type SearchItem struct {
	Source    SourceName `json:"source"`
	Title     string     `json:"title"`
	URL       string     `json:"url"`
	Snippet   *string    `json:"snippet"`
	Score     *float64   `json:"score"`
	Timestamp *time.Time `json:"timestamp"`
}

// ItemKey is the display and reconciliation identity of an item.
type ItemKey struct {
	Source SourceName
	URL    string
}

func (i SearchItem) Key() ItemKey {
	return ItemKey{Source: i.Source, URL: i.URL}
}

// SourceError reports that one source failed while the aggregation succeeded.
type SourceError struct {
	Source  SourceName `json:"source"`
	Message string     `json:"message"`
	Type    string     `json:"type"`
}

// SearchResponse is the aggregated result of one query. TookMs is filled by
// the client from the X-Took-Ms header.
type SearchResponse struct {
	Query   string        `json:"query"`
	Sources []SourceName  `json:"sources"`
	Items   []SearchItem  `json:"items"`
	Errors  []SourceError `json:"errors"`
	TookMs  *int64        `json:"took_ms,omitempty"`
}

// MergeItems concatenates batches in order, drops repeated (source, url) pairs
// and truncates to limit. A limit <= 0 yields no items.
func MergeItems(limit int, batches ...[]SearchItem) []SearchItem {
	items := make([]SearchItem, 0)
	if limit <= 0 {
		return items
	}
	seen := make(map[ItemKey]bool)
	for _, batch := range batches {
		for _, it := range batch {
			k := it.Key()
			if seen[k] {
				continue
			}
			seen[k] = true
			items = append(items, it)
			if len(items) == limit {
				return items
			}
		}
	}
	return items
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}
