package models

import "time"

// LogRow is one historical search invocation as served by /v1/logs.
type LogRow struct {
	ID          uint      `json:"id"`
	TS          time.Time `json:"ts"`
	RequestID   string    `json:"request_id"`
	Q           *string   `json:"q"`
	Sources     []string  `json:"sources"`
	TookMs      *int64    `json:"took_ms"`
	ItemsCount  int       `json:"items_count"`
	ErrorsCount int       `json:"errors_count"`
}

type HealthResponse struct {
	Status   string            `json:"status"`
	App      string            `json:"app"`
	Env      string            `json:"env"`
	Services map[string]string `json:"services,omitempty"`
}
