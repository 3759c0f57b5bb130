package models

// GORM models

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

// StringArray for PostgreSQL array support
type StringArray []string

func (s StringArray) Value() (driver.Value, error) {
	if len(s) == 0 {
		return "{}", nil
	}
	return fmt.Sprintf("{%s}", strings.Join(s, ",")), nil
}

func (s *StringArray) Scan(value interface{}) error {
	if value == nil {
		*s = StringArray{}
		return nil
	}

	switch v := value.(type) {
	case string:
		v = strings.Trim(v, "{}")
		if v == "" {
			*s = StringArray{}
			return nil
		}
		*s = StringArray(strings.Split(v, ","))
	case []byte:
		return s.Scan(string(v))
	default:
		return fmt.Errorf("cannot scan %T into StringArray", value)
	}
	return nil
}

// SourceErrorList stores source errors as a JSON document.
type SourceErrorList []SourceError

func (l SourceErrorList) Value() (driver.Value, error) {
	if l == nil {
		l = SourceErrorList{}
	}
	data, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func (l *SourceErrorList) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*l = SourceErrorList{}
		return nil
	case string:
		return json.Unmarshal([]byte(v), l)
	case []byte:
		return json.Unmarshal(v, l)
	default:
		return fmt.Errorf("cannot scan %T into SourceErrorList", value)
	}
}

// RequestLog records one completed /v1/search call
type RequestLog struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	TS          time.Time       `json:"ts" gorm:"not null;index"`
	RequestID   string          `json:"request_id" gorm:"size:64;index"`
	Path        string          `json:"path" gorm:"size:200"`
	Q           string          `json:"q" gorm:"size:300"`
	Sources     StringArray     `json:"sources" gorm:"type:text[]"`
	Limit       int             `json:"limit"`
	TookMs      int64           `json:"took_ms"`
	ItemsCount  int             `json:"items_count" gorm:"default:0"`
	ErrorsCount int             `json:"errors_count" gorm:"default:0"`
	Errors      SourceErrorList `json:"errors" gorm:"type:jsonb"`
}

// RequestLogRepository persists and lists search invocations
type RequestLogRepository interface {
	Create(ctx context.Context, log *RequestLog) error
	GetRecent(ctx context.Context, limit int) ([]RequestLog, error)
}

func (RequestLog) TableName() string { return "request_logs" }

func (rl *RequestLog) Validate() error {
	if rl.RequestID == "" {
		return fmt.Errorf("request ID is required")
	}
	if rl.TookMs < 0 {
		return fmt.Errorf("took_ms cannot be negative")
	}
	if rl.ErrorsCount != len(rl.Errors) {
		return fmt.Errorf("errors_count %d does not match %d errors", rl.ErrorsCount, len(rl.Errors))
	}
	return nil
}

func (rl *RequestLog) BeforeCreate(tx *gorm.DB) error {
	if rl.TS.IsZero() {
		rl.TS = time.Now().UTC()
	}
	return rl.Validate()
}

// ToLogRow converts the stored record to its API shape.
func (rl RequestLog) ToLogRow() LogRow {
	row := LogRow{
		ID:          rl.ID,
		TS:          rl.TS,
		RequestID:   rl.RequestID,
		Sources:     []string(rl.Sources),
		TookMs:      Ptr(rl.TookMs),
		ItemsCount:  rl.ItemsCount,
		ErrorsCount: rl.ErrorsCount,
	}
	if row.Sources == nil {
		row.Sources = []string{}
	}
	if rl.Q != "" {
		row.Q = Ptr(rl.Q)
	}
	return row
}
