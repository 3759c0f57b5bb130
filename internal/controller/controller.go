// Package controller owns the search view state: it debounces query text,
// issues at most one aggregated search at a time and discards every outcome
// that has been superseded.
package controller

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/Ayash-Bera/apifusion/internal/client"
	"github.com/Ayash-Bera/apifusion/internal/debounce"
	"github.com/Ayash-Bera/apifusion/internal/models"
	"github.com/sirupsen/logrus"
)

const (
	DefaultDebounce = 350 * time.Millisecond
	DefaultLimit    = 20
)

type Options struct {
	Debounce time.Duration
	Limit    int
	Sources  []models.SourceName
	// OnChange is invoked from the event loop after every state change.
	OnChange func(State)
}

type event interface{}

type textEvent struct{ text string }

type settledEvent struct{ text string }

type limitEvent struct{ limit int }

type refreshEvent struct{}

type toggleEvent struct {
	source models.SourceName
	reply  chan bool
}

type resultEvent struct {
	ctx  context.Context
	resp *models.SearchResponse
	err  error
}

type Controller struct {
	searcher client.Searcher
	logger   *logrus.Logger
	onChange func(State)

	debouncer *debounce.Debouncer[string]
	events    chan event
	quit      chan struct{}
	done      chan struct{}
	exited    chan struct{}
	closeOnce sync.Once

	mu    sync.RWMutex
	state State

	// loop-owned
	settled  string
	inflight context.Context
	cancel   context.CancelFunc
	calls    sync.WaitGroup
}

func New(searcher client.Searcher, opts Options, logger *logrus.Logger) *Controller {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Limit <= 0 {
		opts.Limit = DefaultLimit
	}
	sources := append([]models.SourceName(nil), opts.Sources...)
	if len(sources) == 0 {
		sources = append(sources, models.DefaultSources...)
	}

	c := &Controller{
		searcher: searcher,
		logger:   logger,
		onChange: opts.OnChange,
		events:   make(chan event, 16),
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
		exited:   make(chan struct{}),
		state: State{
			Sources: sources,
			Limit:   opts.Limit,
			Status:  Idle,
		},
	}
	c.debouncer = debounce.New(opts.Debounce, func(text string) {
		c.post(settledEvent{text: text})
	})
	return c
}

// Run processes events until ctx is done or Close is called. In-flight
// calls are canceled and awaited before Run returns.
func (c *Controller) Run(ctx context.Context) error {
	runCtx, stop := context.WithCancel(ctx)
	defer stop()

	defer func() {
		defer close(c.exited)
		close(c.done)
		c.debouncer.Stop()
		c.cancelInflight()
		c.calls.Wait()
	}()

	for {
		select {
		case <-runCtx.Done():
			return ctx.Err()
		case <-c.quit:
			return nil
		case ev := <-c.events:
			c.handle(runCtx, ev)
		}
	}
}

func (c *Controller) Close() {
	c.closeOnce.Do(func() { close(c.quit) })
}

// Done is closed after Run has returned and every call it issued has finished.
func (c *Controller) Done() <-chan struct{} {
	return c.exited
}

// SetQuery echoes text immediately and schedules a debounced search.
func (c *Controller) SetQuery(text string) {
	c.post(textEvent{text: text})
}

// ToggleSource flips src in the selection. Deselecting the last selected
// source is refused and reported as false.
func (c *Controller) ToggleSource(src models.SourceName) bool {
	reply := make(chan bool, 1)
	if !c.post(toggleEvent{source: src, reply: reply}) {
		return false
	}
	select {
	case ok := <-reply:
		return ok
	case <-c.done:
		return false
	}
}

func (c *Controller) SetLimit(n int) {
	if n <= 0 {
		return
	}
	c.post(limitEvent{limit: n})
}

// Refresh re-issues the search for the current settled text.
func (c *Controller) Refresh() {
	c.post(refreshEvent{})
}

// Flush settles pending query text now instead of waiting out the delay.
func (c *Controller) Flush() bool {
	return c.debouncer.Flush()
}

func (c *Controller) Snapshot() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.clone()
}

func (c *Controller) post(ev event) bool {
	select {
	case c.events <- ev:
		return true
	case <-c.quit:
		return false
	case <-c.done:
		return false
	}
}

func (c *Controller) handle(ctx context.Context, ev event) {
	switch ev := ev.(type) {
	case textEvent:
		c.update(func(s *State) { s.Text = ev.text })
		c.debouncer.Set(ev.text)

	case settledEvent:
		if ev.text == c.settled {
			return
		}
		c.settled = ev.text
		c.issue(ctx)

	case refreshEvent:
		c.issue(ctx)

	case limitEvent:
		if ev.limit == c.Snapshot().Limit {
			return
		}
		c.update(func(s *State) { s.Limit = ev.limit })
		c.issue(ctx)

	case toggleEvent:
		changed := c.toggle(ev.source)
		ev.reply <- changed
		if changed {
			c.issue(ctx)
		}

	case resultEvent:
		c.apply(ev)
	}
}

func (c *Controller) toggle(src models.SourceName) bool {
	changed := false
	c.update(func(s *State) {
		if !s.Selected(src) {
			s.Sources = append(s.Sources, src)
			changed = true
			return
		}
		if len(s.Sources) == 1 {
			return
		}
		next := make([]models.SourceName, 0, len(s.Sources)-1)
		for _, v := range s.Sources {
			if v != src {
				next = append(next, v)
			}
		}
		s.Sources = next
		changed = true
	})
	return changed
}

// issue cancels whatever is in flight and, for non-blank settled text,
// starts a new call.
func (c *Controller) issue(ctx context.Context) {
	c.cancelInflight()

	query := strings.TrimSpace(c.settled)
	if query == "" {
		c.update(func(s *State) {
			s.Status = Idle
			s.Query = ""
			s.Fatal = ""
			s.clearResults()
		})
		return
	}

	snap := c.Snapshot()
	callCtx, cancel := context.WithCancel(ctx)
	c.inflight = callCtx
	c.cancel = cancel

	c.update(func(s *State) {
		s.Status = Pending
		s.Query = query
		s.Fatal = ""
	})

	c.logger.WithFields(logrus.Fields{
		"query":   query,
		"sources": snap.Sources,
		"limit":   snap.Limit,
	}).Debug("Issuing search")

	c.calls.Add(1)
	go func() {
		defer c.calls.Done()
		resp, err := c.searcher.Search(callCtx, query, snap.Sources, snap.Limit)
		c.post(resultEvent{ctx: callCtx, resp: resp, err: err})
	}()
}

func (c *Controller) apply(ev resultEvent) {
	if ev.ctx != c.inflight || ev.ctx.Err() != nil {
		return
	}
	if ev.err != nil && client.IsCanceled(ev.err) {
		return
	}
	c.cancelInflight()

	if ev.err != nil {
		c.logger.WithError(ev.err).Warn("Search failed")
		c.update(func(s *State) {
			s.Status = FailedFatal
			s.Fatal = ev.err.Error()
			s.clearResults()
		})
		return
	}

	c.update(func(s *State) {
		s.Status = Resolved
		s.Items = ev.resp.Items
		s.Errors = ev.resp.Errors
		s.TookMs = ev.resp.TookMs
	})
}

func (c *Controller) cancelInflight() {
	if c.cancel != nil {
		c.cancel()
	}
	c.cancel = nil
	c.inflight = nil
}

func (c *Controller) update(fn func(*State)) {
	c.mu.Lock()
	fn(&c.state)
	snap := c.state.clone()
	c.mu.Unlock()

	if c.onChange != nil {
		c.onChange(snap)
	}
}
