package models

import "time"

// SourceStatus is the health of one upstream source.
type SourceStatus struct {
	Source        SourceName `json:"source"`
	OK            bool       `json:"ok"`
	LatencyMs     *int64     `json:"latency_ms"`
	LastCheckedAt time.Time  `json:"last_checked_at"`
	Error         *string    `json:"error"`
}
