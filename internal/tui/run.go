package tui

import (
	"context"
	"fmt"

	"github.com/Ayash-Bera/apifusion/internal/client"
	"github.com/Ayash-Bera/apifusion/internal/controller"
	"github.com/Ayash-Bera/apifusion/internal/models"
	"github.com/Ayash-Bera/apifusion/internal/panels"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
)

type Options struct {
	Controller   controller.Options
	InitialQuery string
	LogLimit     int
}

// Backend is what the dashboard needs from the aggregation client.
type Backend interface {
	client.Searcher
	client.Fetcher
}

// Run blocks until the user quits or ctx is done.
func Run(ctx context.Context, backend Backend, opts Options, logger *logrus.Logger) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	changes := make(chan struct{}, 1)
	signal := func() {
		select {
		case changes <- struct{}{}:
		default:
		}
	}

	ctrlOpts := opts.Controller
	ctrlOpts.OnChange = func(controller.State) { signal() }
	ctrl := controller.New(backend, ctrlOpts, logger)

	status := panels.NewStatusPanel(backend, func(panels.View[models.SourceStatus]) { signal() }, logger)
	logs := panels.NewLogPanel(backend, opts.LogLimit, func(panels.View[models.LogRow]) { signal() }, logger)

	go ctrl.Run(ctx)
	defer func() {
		ctrl.Close()
		<-ctrl.Done()
		status.Unmount()
		logs.Unmount()
		status.Wait()
		logs.Wait()
	}()

	model := NewModel(ctx, ctrl, status, logs, changes)
	if opts.InitialQuery != "" {
		model.SetQuery(opts.InitialQuery)
	}

	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("dashboard exited: %w", err)
	}
	return nil
}
