package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/Ayash-Bera/apifusion/internal/models"
	"github.com/Ayash-Bera/apifusion/internal/panels"
	"github.com/charmbracelet/lipgloss"
)

// StatusPanel renders the source health panel in any phase.
func StatusPanel(v panels.View[models.SourceStatus], s Styles) string {
	var sb strings.Builder
	sb.WriteString(s.Title.Render("Sources status"))
	sb.WriteString("\n")

	switch v.Phase {
	case panels.Failed:
		sb.WriteString(s.Fatal.Render(v.Err))
	case panels.Loaded:
		sb.WriteString(Statuses(v.Rows, s))
	default:
		sb.WriteString(s.Subtle.Render("Loading…"))
	}
	return sb.String()
}

func Statuses(rows []models.SourceStatus, s Styles) string {
	table := [][]string{{"SOURCE", "STATE", "LATENCY", "CHECKED", "ERROR"}}
	for _, r := range rows {
		state := s.OK.Render("ok")
		if !r.OK {
			state = s.Down.Render("down")
		}
		latency := "—"
		if r.LatencyMs != nil {
			latency = fmt.Sprintf("%d ms", *r.LatencyMs)
		}
		errText := ""
		if r.Error != nil {
			errText = *r.Error
		}
		table = append(table, []string{
			string(r.Source),
			state,
			latency,
			r.LastCheckedAt.Local().Format(time.TimeOnly),
			errText,
		})
	}
	return Table(table, s)
}

// LogPanel renders the request log panel in any phase.
func LogPanel(v panels.View[models.LogRow], s Styles) string {
	var sb strings.Builder
	sb.WriteString(s.Title.Render("Request logs"))
	sb.WriteString("\n")

	switch v.Phase {
	case panels.Failed:
		sb.WriteString(s.Fatal.Render(v.Err))
	case panels.Loaded:
		if len(v.Rows) == 0 {
			sb.WriteString(s.Subtle.Render("No requests yet"))
		} else {
			sb.WriteString(Logs(v.Rows, s))
		}
	default:
		sb.WriteString(s.Subtle.Render("Loading…"))
	}
	return sb.String()
}

func Logs(rows []models.LogRow, s Styles) string {
	table := [][]string{{"TIME", "QUERY", "SOURCES", "TOOK", "ITEMS", "ERRORS", "REQUEST"}}
	for _, r := range rows {
		q := "—"
		if r.Q != nil {
			q = *r.Q
		}
		took := "—"
		if r.TookMs != nil {
			took = fmt.Sprintf("%d ms", *r.TookMs)
		}
		table = append(table, []string{
			r.TS.Local().Format(time.DateTime),
			q,
			strings.Join(r.Sources, ","),
			took,
			fmt.Sprintf("%d", r.ItemsCount),
			fmt.Sprintf("%d", r.ErrorsCount),
			r.RequestID,
		})
	}
	return Table(table, s)
}

// Table lays rows out in padded columns; the first row is the header.
func Table(rows [][]string, s Styles) string {
	if len(rows) == 0 {
		return ""
	}
	widths := make([]int, len(rows[0]))
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && lipgloss.Width(cell) > widths[i] {
				widths[i] = lipgloss.Width(cell)
			}
		}
	}

	var sb strings.Builder
	for n, row := range rows {
		cells := make([]string, 0, len(row))
		for i, cell := range row {
			pad := 0
			if i < len(widths) {
				pad = widths[i] - lipgloss.Width(cell)
			}
			cells = append(cells, cell+strings.Repeat(" ", pad))
		}
		line := strings.TrimRight(strings.Join(cells, "  "), " ")
		if n == 0 {
			line = s.Bold.Render(line)
		}
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	return sb.String()
}
