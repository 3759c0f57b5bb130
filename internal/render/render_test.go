package render

import (
	"strings"
	"testing"
	"time"

	"github.com/Ayash-Bera/apifusion/internal/controller"
	"github.com/Ayash-Bera/apifusion/internal/models"
	"github.com/Ayash-Bera/apifusion/internal/panels"
	"github.com/stretchr/testify/assert"
)

func TestSearch_ResolvedWithWarnings(t *testing.T) {
	st := controller.State{
		Query:   "fastapi",
		Sources: []models.SourceName{models.SourceGitHub, models.SourceRSS},
		Limit:   20,
		Status:  controller.Resolved,
		Items: []models.SearchItem{{
			Source:  models.SourceGitHub,
			Title:   "tiangolo/fastapi",
			URL:     "https://github.com/tiangolo/fastapi",
			Snippet: models.Ptr("FastAPI framework"),
			Score:   models.Ptr(71234.6),
		}},
		Errors: []models.SourceError{{
			Source:  models.SourceRSS,
			Message: "RSS source temporarily unavailable",
			Type:    models.ErrorTypeSource,
		}},
		TookMs: models.Ptr(int64(87)),
	}

	out := Search(st, DefaultStyles())
	assert.Contains(t, out, "tiangolo/fastapi")
	assert.Contains(t, out, "FastAPI framework")
	assert.Contains(t, out, "score: 71235")
	assert.Contains(t, out, "1 results in 87 ms")
	assert.Contains(t, out, "rss: RSS source temporarily unavailable (source_error)")
	assert.NotContains(t, out, noResults)
}

func TestSearch_PendingAndEmpty(t *testing.T) {
	s := DefaultStyles()

	pending := Search(controller.State{Query: "go", Limit: 10, Status: controller.Pending}, s)
	assert.Contains(t, pending, loadingText)

	empty := Search(controller.State{Query: "go", Limit: 10, Status: controller.Resolved}, s)
	assert.Contains(t, empty, noResults)

	idle := Search(controller.State{Limit: 10, Status: controller.Idle}, s)
	assert.NotContains(t, idle, noResults)
}

func TestSearch_FatalBanner(t *testing.T) {
	out := Search(controller.State{
		Query:  "x",
		Status: controller.FailedFatal,
		Fatal:  "HTTP 500: boom",
	}, DefaultStyles())

	assert.Contains(t, out, "HTTP 500: boom")
	assert.NotContains(t, out, noResults)
}

func TestItem_MissingOptionalFields(t *testing.T) {
	out := Item(models.SearchItem{Source: models.SourceHackerNews, Title: "Show HN", URL: "https://x"}, DefaultStyles())
	assert.Contains(t, out, noSnippet)
	assert.Contains(t, out, "score: —")
	assert.Contains(t, out, "[hackernews]")
}

func TestStatusPanel_Phases(t *testing.T) {
	s := DefaultStyles()
	assert.Contains(t, StatusPanel(panels.View[models.SourceStatus]{Phase: panels.Loading}, s), "Loading")
	assert.Contains(t, StatusPanel(panels.View[models.SourceStatus]{Phase: panels.Failed, Err: "HTTP 502: Bad Gateway"}, s), "HTTP 502")

	out := StatusPanel(panels.View[models.SourceStatus]{
		Phase: panels.Loaded,
		Rows: []models.SourceStatus{
			{Source: models.SourceGitHub, OK: true, LatencyMs: models.Ptr(int64(120)), LastCheckedAt: time.Now()},
			{Source: models.SourceRSS, OK: false, LastCheckedAt: time.Now(), Error: models.Ptr("http_status:503")},
		},
	}, s)
	assert.Contains(t, out, "120 ms")
	assert.Contains(t, out, "http_status:503")
	assert.Less(t, strings.Index(out, "github"), strings.Index(out, "rss"))
}

func TestLogPanel_Rows(t *testing.T) {
	out := LogPanel(panels.View[models.LogRow]{
		Phase: panels.Loaded,
		Rows: []models.LogRow{
			{ID: 2, TS: time.Now(), RequestID: "req-2", Q: models.Ptr("golang"), Sources: []string{"github"}, TookMs: models.Ptr(int64(33)), ItemsCount: 4},
			{ID: 1, TS: time.Now(), RequestID: "req-1"},
		},
	}, DefaultStyles())

	assert.Contains(t, out, "golang")
	assert.Contains(t, out, "33 ms")
	assert.Contains(t, out, "req-1")
	assert.Less(t, strings.Index(out, "req-2"), strings.Index(out, "req-1"))

	empty := LogPanel(panels.View[models.LogRow]{Phase: panels.Loaded}, DefaultStyles())
	assert.Contains(t, empty, "No requests yet")
}

func TestTable_AlignsColumns(t *testing.T) {
	out := Table([][]string{{"A", "B"}, {"long", "x"}}, Styles{})
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Equal(t, "A     B", lines[0])
	assert.Equal(t, "long  x", lines[1])
}
