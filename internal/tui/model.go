// Package tui is the interactive dashboard: a search page driven by the
// query controller plus the source-status and request-log panels.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/Ayash-Bera/apifusion/internal/controller"
	"github.com/Ayash-Bera/apifusion/internal/models"
	"github.com/Ayash-Bera/apifusion/internal/panels"
	"github.com/Ayash-Bera/apifusion/internal/render"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Limits are the page sizes offered by the limit selector.
var Limits = []int{10, 20, 30, 50}

type page int

const (
	pageSearch page = iota
	pageSources
	pageLogs
)

var pageNames = []string{"Search", "Sources", "Logs"}

// changedMsg tells the model to re-read controller and panel state.
type changedMsg struct{}

type Model struct {
	ctx     context.Context
	ctrl    *controller.Controller
	status  *panels.StatusPanel
	logs    *panels.LogPanel
	changes <-chan struct{}

	input   textinput.Model
	spinner spinner.Model
	styles  render.Styles

	page  page
	state controller.State
	flash string
	width int
}

func NewModel(ctx context.Context, ctrl *controller.Controller, status *panels.StatusPanel, logs *panels.LogPanel, changes <-chan struct{}) Model {
	in := textinput.New()
	in.Placeholder = "e.g. fastapi"
	in.Prompt = "› "
	in.CharLimit = 200
	in.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		ctx:     ctx,
		ctrl:    ctrl,
		status:  status,
		logs:    logs,
		changes: changes,
		input:   in,
		spinner: sp,
		styles:  render.DefaultStyles(),
		state:   ctrl.Snapshot(),
	}
}

// SetQuery pre-fills the input and hands the text to the controller.
func (m *Model) SetQuery(q string) {
	m.input.SetValue(q)
	m.ctrl.SetQuery(q)
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick, waitForChange(m.changes))
}

func waitForChange(ch <-chan struct{}) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return changedMsg{}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = max(20, msg.Width-10)

	case changedMsg:
		m.state = m.ctrl.Snapshot()
		return m, waitForChange(m.changes)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.input.Focused() {
			return m.updateInput(msg)
		}
		return m.updateKeys(msg)
	}

	return m, tea.Batch(cmds...)
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.input.Blur()
		return m, nil
	case tea.KeyEnter:
		if !m.ctrl.Flush() {
			m.ctrl.Refresh()
		}
		return m, nil
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if after := m.input.Value(); after != before {
		m.ctrl.SetQuery(after)
		m.state.Text = after
	}
	return m, cmd
}

func (m Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.flash = ""

	switch key := msg.String(); key {
	case "q":
		return m, tea.Quit
	case "/", "i":
		m.page = pageSearch
		return m, m.input.Focus()
	case "tab":
		m.switchPage((m.page + 1) % page(len(pageNames)))
	case "shift+tab":
		m.switchPage((m.page + page(len(pageNames)) - 1) % page(len(pageNames)))
	case "1", "2", "3":
		src := models.KnownSources[key[0]-'1']
		if !m.ctrl.ToggleSource(src) {
			m.flash = "At least one source must stay selected"
		}
		m.state = m.ctrl.Snapshot()
	case "l":
		m.ctrl.SetLimit(nextLimit(m.state.Limit))
	case "r":
		switch m.page {
		case pageSources:
			m.status.Mount(m.ctx)
		case pageLogs:
			m.logs.Mount(m.ctx)
		default:
			m.ctrl.Refresh()
		}
	}
	return m, nil
}

func (m *Model) switchPage(to page) {
	if to == m.page {
		return
	}
	switch m.page {
	case pageSources:
		m.status.Unmount()
	case pageLogs:
		m.logs.Unmount()
	}
	m.page = to
	switch to {
	case pageSources:
		m.status.Mount(m.ctx)
	case pageLogs:
		m.logs.Mount(m.ctx)
	}
}

func nextLimit(current int) int {
	for i, l := range Limits {
		if l == current {
			return Limits[(i+1)%len(Limits)]
		}
	}
	return Limits[0]
}

func (m Model) View() string {
	var sb strings.Builder

	sb.WriteString(m.styles.Title.Render("⚡ API Fusion"))
	sb.WriteString(m.styles.Subtle.Render("  multi-source search"))
	sb.WriteString("\n")
	sb.WriteString(m.tabs())
	sb.WriteString("\n\n")

	switch m.page {
	case pageSources:
		sb.WriteString(render.StatusPanel(m.status.View(), m.styles))
	case pageLogs:
		sb.WriteString(render.LogPanel(m.logs.View(), m.styles))
	default:
		sb.WriteString(m.input.View())
		if m.state.Status == controller.Pending {
			sb.WriteString(" " + m.spinner.View())
		}
		sb.WriteString("\n")
		sb.WriteString(render.Search(m.state, m.styles))
	}

	if m.flash != "" {
		sb.WriteString("\n")
		sb.WriteString(lipgloss.NewStyle().Foreground(render.Warning).Render(m.flash))
	}
	sb.WriteString("\n")
	sb.WriteString(m.styles.Subtle.Render(m.help()))
	return sb.String()
}

func (m Model) tabs() string {
	out := make([]string, 0, len(pageNames))
	for i, name := range pageNames {
		if page(i) == m.page {
			out = append(out, m.styles.Active.Render(name))
		} else {
			out = append(out, m.styles.Inactive.Render(name))
		}
	}
	return strings.Join(out, " │ ")
}

func (m Model) help() string {
	if m.input.Focused() {
		return "enter search now • esc leave input • ctrl+c quit"
	}
	return fmt.Sprintf("1/2/3 toggle sources • l limit (%d) • / edit query • tab pages • r reload • q quit", m.state.Limit)
}
