// Package schedule runs the storefront's periodic housekeeping.
//
//	s := schedule.New()
//	s.Every(time.Minute).Name("ratelimit.sweep").WithoutOverlapping().Run(func() {
//	    limiter.Sweep(10 * time.Minute)
//	})
//	s.Start(ctx)
package schedule

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shashiranjanraj/bookstore/pkg/logger"
)

// Task is the function signature for a scheduled task.
type Task func()

type entry struct {
	id        string
	interval  time.Duration
	task      Task
	lastRun   time.Time
	running   bool // overlap guard
	noOverlap bool
	mu        sync.Mutex
}

// Scheduler dispatches registered tasks when their interval has elapsed.
type Scheduler struct {
	tick    time.Duration
	mu      sync.Mutex
	entries []*entry
}

// New returns a Scheduler that checks for due tasks every second.
func New() *Scheduler { return NewWithTick(time.Second) }

// NewWithTick returns a Scheduler with a custom check period.
func NewWithTick(tick time.Duration) *Scheduler { return &Scheduler{tick: tick} }

// Schedule is a fluent builder for a single entry before it is registered.
type Schedule struct {
	s *Scheduler
	e *entry
}

// Every starts a builder for a task repeated every d.
func (s *Scheduler) Every(d time.Duration) *Schedule {
	return &Schedule{s: s, e: &entry{interval: d}}
}

// WithoutOverlapping prevents a new run if the previous one is still executing.
func (b *Schedule) WithoutOverlapping() *Schedule {
	b.e.noOverlap = true
	return b
}

// Name gives the entry an identifier for logging.
func (b *Schedule) Name(id string) *Schedule {
	b.e.id = id
	return b
}

// Run registers the task.
func (b *Schedule) Run(fn Task) {
	b.e.task = fn
	b.s.mu.Lock()
	defer b.s.mu.Unlock()
	if b.e.id == "" {
		b.e.id = fmt.Sprintf("task-%d", len(b.s.entries)+1)
	}
	b.s.entries = append(b.s.entries, b.e)
}

// Start runs the dispatch loop in the background until ctx is done. A task
// first runs one interval after Start.
func (s *Scheduler) Start(ctx context.Context) {
	now := time.Now()
	s.mu.Lock()
	for _, e := range s.entries {
		e.lastRun = now
	}
	s.mu.Unlock()

	go s.run(ctx)
	logger.Debug("schedule: scheduler started")
}

func (s *Scheduler) run(ctx context.Context) {
	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Debug("schedule: scheduler stopped")
			return
		case now := <-ticker.C:
			s.mu.Lock()
			current := make([]*entry, len(s.entries))
			copy(current, s.entries)
			s.mu.Unlock()

			for _, e := range current {
				if e.due(now) {
					e.dispatch()
				}
			}
		}
	}
}

func (e *entry) due(now time.Time) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return now.Sub(e.lastRun) >= e.interval
}

func (e *entry) dispatch() {
	e.mu.Lock()
	if e.noOverlap && e.running {
		e.mu.Unlock()
		logger.Warn("schedule: skipping overlapping task", "id", e.id)
		return
	}
	e.running = true
	e.lastRun = time.Now()
	e.mu.Unlock()

	go func() {
		defer func() {
			e.mu.Lock()
			e.running = false
			e.mu.Unlock()
			if r := recover(); r != nil {
				logger.Error("schedule: task panicked", "id", e.id, "panic", r)
			}
		}()
		logger.Debug("schedule: running task", "id", e.id)
		e.task()
	}()
}

// List describes the registered entries.
func (s *Scheduler) List() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, fmt.Sprintf("%s  [%s]", e.id, e.interval))
	}
	return out
}
