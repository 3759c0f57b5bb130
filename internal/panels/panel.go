// Package panels holds the read-only views over source health and request
// logs. Each panel fetches once per mount and never applies a result that
// arrives after it was unmounted.
package panels

import (
	"context"
	"sync"

	"github.com/Ayash-Bera/apifusion/internal/client"
	"github.com/Ayash-Bera/apifusion/internal/models"
	"github.com/sirupsen/logrus"
)

// DefaultLogLimit is the row count requested by the log panel.
const DefaultLogLimit = 50

type Phase int

const (
	Unmounted Phase = iota
	Loading
	Loaded
	Failed
)

type View[T any] struct {
	Phase Phase
	Rows  []T
	Err   string
}

type Panel[T any] struct {
	name     string
	fetch    func(ctx context.Context) ([]T, error)
	onChange func(View[T])
	logger   *logrus.Logger

	mu     sync.RWMutex
	view   View[T]
	gen    uint64
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

type (
	StatusPanel = Panel[models.SourceStatus]
	LogPanel    = Panel[models.LogRow]
)

func NewStatusPanel(f client.Fetcher, onChange func(View[models.SourceStatus]), logger *logrus.Logger) *StatusPanel {
	return &Panel[models.SourceStatus]{
		name:     "sources",
		fetch:    f.GetSources,
		onChange: onChange,
		logger:   logger,
	}
}

func NewLogPanel(f client.Fetcher, limit int, onChange func(View[models.LogRow]), logger *logrus.Logger) *LogPanel {
	if limit <= 0 {
		limit = DefaultLogLimit
	}
	return &Panel[models.LogRow]{
		name: "logs",
		fetch: func(ctx context.Context) ([]models.LogRow, error) {
			return f.GetLogs(ctx, limit)
		},
		onChange: onChange,
		logger:   logger,
	}
}

// Mount starts a single fetch. Mounting an already mounted panel restarts it.
func (p *Panel[T]) Mount(ctx context.Context) {
	p.mu.Lock()
	if p.cancel != nil {
		p.cancel()
	}
	p.gen++
	gen := p.gen
	fetchCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.view = View[T]{Phase: Loading}
	snap := p.view
	p.mu.Unlock()

	p.notify(snap)

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		rows, err := p.fetch(fetchCtx)
		p.finish(gen, rows, err)
	}()
}

// Unmount stops the panel. Any fetch still running is canceled and its
// result is discarded.
func (p *Panel[T]) Unmount() {
	p.mu.Lock()
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	p.gen++
	p.view = View[T]{Phase: Unmounted}
	p.mu.Unlock()
}

// Wait blocks until every fetch started by Mount has returned.
func (p *Panel[T]) Wait() {
	p.wg.Wait()
}

func (p *Panel[T]) View() View[T] {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := p.view
	out.Rows = append([]T(nil), p.view.Rows...)
	return out
}

func (p *Panel[T]) finish(gen uint64, rows []T, err error) {
	p.mu.Lock()
	if gen != p.gen {
		p.mu.Unlock()
		p.logger.WithField("panel", p.name).Debug("Discarding result for unmounted panel")
		return
	}
	if err != nil && client.IsCanceled(err) {
		p.mu.Unlock()
		return
	}
	p.cancel()
	p.cancel = nil
	if err != nil {
		p.view = View[T]{Phase: Failed, Err: err.Error()}
	} else {
		p.view = View[T]{Phase: Loaded, Rows: rows}
	}
	snap := p.view
	p.mu.Unlock()

	if err != nil {
		p.logger.WithError(err).WithField("panel", p.name).Warn("Panel fetch failed")
	}
	p.notify(snap)
}

func (p *Panel[T]) notify(v View[T]) {
	if p.onChange != nil {
		p.onChange(v)
	}
}
