package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/Ayash-Bera/apifusion/internal/client"
	"github.com/Ayash-Bera/apifusion/internal/controller"
	"github.com/Ayash-Bera/apifusion/internal/models"
	"github.com/Ayash-Bera/apifusion/internal/panels"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newTestModel(t *testing.T) (Model, *controller.Controller) {
	t.Helper()
	logger := logrus.New()
	c, err := client.New(client.Config{Mode: client.ModeMock}, logger)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	ctrl := controller.New(c, controller.Options{Debounce: 10 * time.Millisecond}, logger)
	go ctrl.Run(ctx)

	status := panels.NewStatusPanel(c, nil, logger)
	logs := panels.NewLogPanel(c, 5, nil, logger)
	t.Cleanup(func() {
		cancel()
		<-ctrl.Done()
		status.Unmount()
		logs.Unmount()
		status.Wait()
		logs.Wait()
	})

	return NewModel(ctx, ctrl, status, logs, nil), ctrl
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out
}

func TestModel_TypingFeedsController(t *testing.T) {
	m, ctrl := newTestModel(t)

	m = update(t, m, runes("g"))
	m = update(t, m, runes("o"))
	assert.Equal(t, "go", m.input.Value())

	require.Eventually(t, func() bool {
		st := ctrl.Snapshot()
		return st.Status == controller.Resolved && st.Query == "go"
	}, 2*time.Second, 5*time.Millisecond)

	m = update(t, m, changedMsg{})
	view := m.View()
	assert.Contains(t, view, "Example repo about go")
	assert.Contains(t, view, "HN discussion: go")
}

func TestModel_SourceTogglesAndLastSourceGuard(t *testing.T) {
	m, ctrl := newTestModel(t)
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	require.False(t, m.input.Focused())

	m = update(t, m, runes("2"))
	assert.Equal(t, []models.SourceName{models.SourceGitHub}, ctrl.Snapshot().Sources)
	assert.Empty(t, m.flash)

	m = update(t, m, runes("1"))
	assert.Equal(t, []models.SourceName{models.SourceGitHub}, ctrl.Snapshot().Sources)
	assert.NotEmpty(t, m.flash)
	assert.Contains(t, m.View(), "At least one source")

	m = update(t, m, runes("3"))
	assert.Equal(t, []models.SourceName{models.SourceGitHub, models.SourceRSS}, ctrl.Snapshot().Sources)
}

func TestModel_LimitCycles(t *testing.T) {
	m, ctrl := newTestModel(t)
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})

	m = update(t, m, runes("l"))
	require.Eventually(t, func() bool { return ctrl.Snapshot().Limit == 30 }, time.Second, 5*time.Millisecond)

	assert.Equal(t, 10, nextLimit(50))
	assert.Equal(t, 10, nextLimit(7))
	_ = m
}

func TestModel_PagesMountPanels(t *testing.T) {
	m, _ := newTestModel(t)
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})

	m = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, pageSources, m.page)
	m.status.Wait()
	view := m.View()
	assert.Contains(t, view, "Sources status")
	assert.Contains(t, view, "hackernews")

	m = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, pageLogs, m.page)
	assert.Equal(t, panels.Unmounted, m.status.View().Phase)
	m.logs.Wait()
	assert.Contains(t, m.View(), "Request logs")

	m = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, pageSearch, m.page)
	assert.True(t, strings.Contains(m.View(), "Search"))
}

func TestModel_QuitKeys(t *testing.T) {
	m, _ := newTestModel(t)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}
