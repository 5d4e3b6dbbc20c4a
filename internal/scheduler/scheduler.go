// Package scheduler drives the periodic verification pass.
//
// A Scheduler runs its pass function once immediately on Start and then on
// every tick of a fixed interval. Stop ends the schedule but never interrupts
// a pass that is already running: the pass context is detached from the
// schedule, and Stop returns only once that pass has finished.
package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Scheduler owns one background goroutine per run, so passes never overlap.
type Scheduler struct {
	interval time.Duration
	passFn   func(context.Context)

	// lifecycle serializes Start and Stop. Stop holds it while it waits for
	// the in-flight pass, so status reads must not take it.
	lifecycle sync.Mutex
	cancel    context.CancelFunc
	done      chan struct{}

	running atomic.Bool
	handle  atomic.Value // string
}

// Status is a point-in-time view of the scheduler.
type Status struct {
	Running  bool          `json:"isRunning"`
	Interval time.Duration `json:"checkInterval"`
	// Handle identifies the current run for diagnostics; empty when stopped.
	Handle string `json:"intervalId,omitempty"`
}

func New(interval time.Duration, passFn func(context.Context)) (*Scheduler, error) {
	if interval <= 0 {
		return nil, errors.New("interval must be > 0")
	}
	if passFn == nil {
		return nil, errors.New("passFn must not be nil")
	}
	s := &Scheduler{
		interval: interval,
		passFn:   passFn,
		done:     make(chan struct{}),
	}
	s.handle.Store("")
	return s, nil
}

// Start launches a new run with a fresh handle. It returns false if the
// scheduler is already running.
func (s *Scheduler) Start() bool {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()

	if s.running.Load() {
		slog.Info("verification scheduler already running", "handle", s.currentHandle())
		return false
	}

	stopCtx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	handle := uuid.NewString()

	s.cancel = cancel
	s.done = done
	s.handle.Store(handle)
	s.running.Store(true)

	go s.run(stopCtx, done, handle)
	return true
}

func (s *Scheduler) run(stopCtx context.Context, done chan struct{}, handle string) {
	defer close(done)

	// Passes outlive Stop; only the loop below watches stopCtx.
	passCtx := context.WithoutCancel(stopCtx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	slog.Info("verification scheduler started", "interval", s.interval.String(), "handle", handle)

	s.safePass(passCtx)

	for {
		select {
		case <-stopCtx.Done():
			slog.Info("verification scheduler stopping", "handle", handle)
			return
		case <-ticker.C:
			if stopCtx.Err() != nil {
				return
			}
			s.safePass(passCtx)
		}
	}
}

// Stop ends the schedule and waits for an in-flight pass to complete. It
// returns false if the scheduler was not running.
func (s *Scheduler) Stop() bool {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()

	if !s.running.Load() {
		return false
	}

	s.cancel()
	<-s.done

	handle := s.currentHandle()
	s.handle.Store("")
	s.running.Store(false)

	slog.Info("verification scheduler stopped", "handle", handle)
	return true
}

func (s *Scheduler) IsRunning() bool {
	return s.running.Load()
}

func (s *Scheduler) Interval() time.Duration {
	return s.interval
}

// Status never blocks, even while Stop waits for a pass.
func (s *Scheduler) Status() Status {
	return Status{
		Running:  s.running.Load(),
		Interval: s.interval,
		Handle:   s.currentHandle(),
	}
}

func (s *Scheduler) currentHandle() string {
	h, _ := s.handle.Load().(string)
	return h
}

func (s *Scheduler) safePass(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("verification pass panic recovered", "panic", r)
		}
	}()

	start := time.Now()
	s.passFn(ctx)
	slog.Debug("verification pass completed", "duration_ms", time.Since(start).Milliseconds())
}
