// Package schedule runs background tasks on a fixed interval.
//
// Usage:
//
//	s := schedule.New(time.Second)
//	s.Every(5).Minutes().Name("catalog:warm").WithoutOverlapping().Run(catalog.Warm)
//
//	s.Start(ctx) // once at boot
//	defer s.Wait()
package schedule

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jhonlemus05/FastBite-Delivery/pkg/logger"
)

// Task is one scheduled unit of work. ctx is cancelled when the scheduler stops.
type Task func(ctx context.Context) error

type entry struct {
	id        string
	interval  time.Duration
	task      Task
	noOverlap bool

	mu      sync.Mutex
	lastRun time.Time
	running bool
}

// Scheduler dispatches due entries from a single ticking loop.
type Scheduler struct {
	tick time.Duration

	mu      sync.Mutex
	entries []*entry
	wg      sync.WaitGroup
	stopped chan struct{} // closed when the loop exits
}

// New returns a scheduler that checks for due tasks every tick.
func New(tick time.Duration) *Scheduler {
	if tick <= 0 {
		tick = time.Second
	}
	return &Scheduler{tick: tick}
}

// Default is the process-wide scheduler.
var Default = New(time.Second)

// ------------------- Fluent builder -------------------

// FreqBuilder picks the unit of an interval.
type FreqBuilder struct {
	s *Scheduler
	n int
}

// Schedule configures one entry before Run registers it.
type Schedule struct {
	s *Scheduler
	e *entry
}

func (s *Scheduler) Every(n int) *FreqBuilder { return &FreqBuilder{s: s, n: n} }

func (f *FreqBuilder) every(unit time.Duration) *Schedule {
	return &Schedule{s: f.s, e: &entry{interval: time.Duration(f.n) * unit}}
}

func (f *FreqBuilder) Seconds() *Schedule { return f.every(time.Second) }
func (f *FreqBuilder) Minutes() *Schedule { return f.every(time.Minute) }
func (f *FreqBuilder) Hours() *Schedule   { return f.every(time.Hour) }

// Interval schedules with an explicit duration, e.g. one read from config.
func (s *Scheduler) Interval(d time.Duration) *Schedule {
	return &Schedule{s: s, e: &entry{interval: d}}
}

// WithoutOverlapping skips a run while the previous one is still executing.
func (sc *Schedule) WithoutOverlapping() *Schedule {
	sc.e.noOverlap = true
	return sc
}

// Name sets the identifier used in logs.
func (sc *Schedule) Name(id string) *Schedule {
	sc.e.id = id
	return sc
}

// Run registers the task. It first runs on the first tick after Start.
func (sc *Schedule) Run(fn Task) {
	sc.e.task = fn
	sc.s.mu.Lock()
	defer sc.s.mu.Unlock()
	if sc.e.id == "" {
		sc.e.id = fmt.Sprintf("task-%d", len(sc.s.entries)+1)
	}
	sc.s.entries = append(sc.s.entries, sc.e)
}

// ------------------- Loop -------------------

// Start launches the loop in the background. Running tasks see ctx cancelled
// on shutdown; Wait blocks until they return.
func (s *Scheduler) Start(ctx context.Context) {
	s.stopped = make(chan struct{})
	go s.run(ctx)
	logger.Info("schedule: scheduler started", "entries", len(s.List()))
}

// Wait blocks until the loop has exited and every dispatched task returned.
// Call it after cancelling the ctx given to Start.
func (s *Scheduler) Wait() {
	if s.stopped != nil {
		<-s.stopped
	}
	s.wg.Wait()
}

func (s *Scheduler) run(ctx context.Context) {
	defer close(s.stopped)
	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("schedule: scheduler stopped")
			return
		case now := <-ticker.C:
			s.mu.Lock()
			current := append([]*entry(nil), s.entries...)
			s.mu.Unlock()

			for _, e := range current {
				if e.due(now) {
					s.dispatch(ctx, e)
				}
			}
		}
	}
}

func (e *entry) due(now time.Time) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastRun.IsZero() || now.Sub(e.lastRun) >= e.interval
}

func (s *Scheduler) dispatch(ctx context.Context, e *entry) {
	e.mu.Lock()
	if e.noOverlap && e.running {
		e.mu.Unlock()
		logger.Warn("schedule: skipping overlapping task", "id", e.id)
		return
	}
	e.running = true
	e.lastRun = time.Now()
	e.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			e.mu.Lock()
			e.running = false
			e.mu.Unlock()
			if r := recover(); r != nil {
				logger.Error("schedule: task panicked", "id", e.id, "panic", r)
			}
		}()

		started := time.Now()
		if err := e.task(ctx); err != nil {
			logger.Warn("schedule: task failed", "id", e.id, "error", err)
			return
		}
		logger.Debug("schedule: task done", "id", e.id, "elapsed", time.Since(started))
	}()
}

// List returns "id  [interval]" for every registered entry.
func (s *Scheduler) List() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, fmt.Sprintf("%s  [%s]", e.id, e.interval))
	}
	return out
}
