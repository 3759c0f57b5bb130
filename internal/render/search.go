package render

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/Ayash-Bera/apifusion/internal/controller"
	"github.com/Ayash-Bera/apifusion/internal/models"
)

const (
	noSnippet   = "No description"
	noResults   = "Nothing found"
	loadingText = "loading…"
)

// Search renders the whole search view for one controller state.
func Search(st controller.State, s Styles) string {
	var sb strings.Builder

	sb.WriteString(Summary(st, s))
	sb.WriteString("\n")

	if st.Status == controller.FailedFatal && st.Fatal != "" {
		sb.WriteString(s.Fatal.Render(st.Fatal))
		sb.WriteString("\n")
	}

	if len(st.Errors) > 0 {
		sb.WriteString(Warnings(st.Errors, s))
		sb.WriteString("\n")
	}

	for _, it := range st.Items {
		sb.WriteString(Item(it, s))
		sb.WriteString("\n")
	}

	if st.Status == controller.Resolved && len(st.Items) == 0 && strings.TrimSpace(st.Query) != "" {
		sb.WriteString(s.Subtle.Render(noResults))
		sb.WriteString("\n")
	}

	return sb.String()
}

// Summary is the one-line header: source toggles, limit and result count.
func Summary(st controller.State, s Styles) string {
	parts := make([]string, 0, len(models.KnownSources)+2)
	for i, src := range models.KnownSources {
		label := fmt.Sprintf("%d %s", i+1, SourceLabel(src))
		if st.Selected(src) {
			parts = append(parts, s.Active.Render("● "+label))
		} else {
			parts = append(parts, s.Inactive.Render("○ "+label))
		}
	}
	parts = append(parts, s.Subtle.Render(fmt.Sprintf("limit %d", st.Limit)))

	var count string
	switch st.Status {
	case controller.Pending:
		count = loadingText
	default:
		count = fmt.Sprintf("%d results", len(st.Items))
		if st.TookMs != nil {
			count += fmt.Sprintf(" in %d ms", *st.TookMs)
		}
	}
	parts = append(parts, s.Subtle.Render(count))

	return strings.Join(parts, "  ")
}

// Warnings lists per-source errors as "source: message (type)".
func Warnings(errs []models.SourceError, s Styles) string {
	lines := make([]string, 0, len(errs)+1)
	lines = append(lines, s.Bold.Render("Source errors"))
	for _, e := range errs {
		lines = append(lines, fmt.Sprintf("%s: %s (%s)", e.Source, e.Message, e.Type))
	}
	return s.Warnings.Render(strings.Join(lines, "\n"))
}

// Item renders one result card.
func Item(it models.SearchItem, s Styles) string {
	ts := "—"
	if it.Timestamp != nil {
		ts = it.Timestamp.Local().Format(time.DateTime)
	}
	score := "score: —"
	if it.Score != nil {
		score = fmt.Sprintf("score: %d", int64(math.Round(*it.Score)))
	}

	snippet := s.Subtle.Render(noSnippet)
	if it.Snippet != nil && *it.Snippet != "" {
		snippet = *it.Snippet
	}

	lines := []string{
		fmt.Sprintf("%s %s  %s", s.Badge(it.Source), s.Subtle.Render(ts), s.Subtle.Render(score)),
		s.Bold.Render(it.Title),
		snippet,
		s.Subtle.Render(it.URL),
	}
	return s.Card.Render(strings.Join(lines, "\n"))
}
