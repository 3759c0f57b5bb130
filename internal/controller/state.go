package controller

import (
	"github.com/Ayash-Bera/apifusion/internal/models"
)

type Status int

const (
	Idle Status = iota
	Pending
	Resolved
	FailedFatal
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case Pending:
		return "pending"
	case Resolved:
		return "resolved"
	case FailedFatal:
		return "failed"
	default:
		return "unknown"
	}
}

// State is a point-in-time copy of everything a view needs.
type State struct {
	// Text echoes raw input immediately.
	Text string
	// Query is the trimmed settled text the current results belong to.
	Query   string
	Sources []models.SourceName
	Limit   int
	Status  Status
	Items   []models.SearchItem
	Errors  []models.SourceError
	TookMs  *int64
	// Fatal holds the failure message while Status is FailedFatal.
	Fatal string
}

func (s State) clone() State {
	out := s
	out.Sources = append([]models.SourceName(nil), s.Sources...)
	out.Items = append([]models.SearchItem(nil), s.Items...)
	out.Errors = append([]models.SourceError(nil), s.Errors...)
	if s.TookMs != nil {
		out.TookMs = models.Ptr(*s.TookMs)
	}
	return out
}

func (s *State) clearResults() {
	s.Items = nil
	s.Errors = nil
	s.TookMs = nil
}

// Selected reports whether src is part of the current selection.
func (s State) Selected(src models.SourceName) bool {
	for _, v := range s.Sources {
		if v == src {
			return true
		}
	}
	return false
}
