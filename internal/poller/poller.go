// Package poller runs the periodic background refreshes: activity counters
// of watched items, trend feeds and, on demand, the fixture collections.
package poller

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Task names used by the service.
const (
	TaskCounters = "counters"
	TaskTrends   = "trends"
	TaskFixtures = "fixtures"
)

var ErrUnknownTask = errors.New("unknown refresh target")

// Task is a named refresh. A zero Interval means it only runs when forced.
type Task struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

// TaskStatus is the last outcome of a task.
type TaskStatus struct {
	Interval  string    `json:"interval"`
	LastRun   time.Time `json:"last_run"`
	LastError string    `json:"last_error,omitempty"`
	Runs      int       `json:"runs"`
}

type Poller struct {
	logger *zap.Logger
	tasks  map[string]Task
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu        sync.RWMutex
	status    map[string]TaskStatus
	isPolling bool
	runMu     map[string]*sync.Mutex
}

func New(logger *zap.Logger, tasks ...Task) *Poller {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	p := &Poller{
		logger: logger.Named("poller"),
		tasks:  make(map[string]Task),
		ctx:    ctx,
		cancel: cancel,
		status: make(map[string]TaskStatus),
		runMu:  make(map[string]*sync.Mutex),
	}
	for _, t := range tasks {
		p.tasks[t.Name] = t
		p.runMu[t.Name] = &sync.Mutex{}
	}
	return p
}

// Start launches one ticker loop per task with a positive interval.
func (p *Poller) Start() {
	p.mu.Lock()
	if p.isPolling {
		p.mu.Unlock()
		return
	}
	p.isPolling = true
	p.mu.Unlock()

	for _, t := range p.tasks {
		if t.Interval <= 0 {
			continue
		}
		p.logger.Info("starting refresh loop", zap.String("task", t.Name), zap.Duration("interval", t.Interval))
		p.wg.Add(1)
		go p.loop(t)
	}
}

// Stop cancels every loop and waits for running refreshes to return.
func (p *Poller) Stop() {
	p.mu.Lock()
	if !p.isPolling {
		p.mu.Unlock()
		return
	}
	p.isPolling = false
	p.mu.Unlock()

	p.cancel()
	p.wg.Wait()
	p.logger.Info("poller stopped")
}

func (p *Poller) IsPolling() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.isPolling
}

func (p *Poller) loop(t Task) {
	defer p.wg.Done()

	ticker := time.NewTicker(t.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			_ = p.run(p.ctx, t)
		case <-p.ctx.Done():
			return
		}
	}
}

// ForceRefresh runs the named task now.
func (p *Poller) ForceRefresh(ctx context.Context, name string) error {
	t, ok := p.tasks[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTask, name)
	}
	p.logger.Info("forced refresh", zap.String("task", name))
	return p.run(ctx, t)
}

func (p *Poller) run(ctx context.Context, t Task) error {
	mu := p.runMu[t.Name]
	mu.Lock()
	defer mu.Unlock()

	started := time.Now()
	err := t.Run(ctx)

	p.mu.Lock()
	st := p.status[t.Name]
	st.Interval = t.Interval.String()
	st.LastRun = started
	st.Runs++
	st.LastError = ""
	if err != nil {
		st.LastError = err.Error()
	}
	p.status[t.Name] = st
	p.mu.Unlock()

	if err != nil {
		p.logger.Warn("refresh failed", zap.String("task", t.Name), zap.Error(err))
		return err
	}
	p.logger.Debug("refresh done", zap.String("task", t.Name), zap.Duration("took", time.Since(started)))
	return nil
}

// Status reports every task, including ones that have not run yet.
func (p *Poller) Status() map[string]TaskStatus {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make(map[string]TaskStatus, len(p.tasks))
	for name, t := range p.tasks {
		st := p.status[name]
		st.Interval = t.Interval.String()
		out[name] = st
	}
	return out
}

// Tasks lists the registered task names, sorted.
func (p *Poller) Tasks() []string {
	names := make([]string, 0, len(p.tasks))
	for name := range p.tasks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
