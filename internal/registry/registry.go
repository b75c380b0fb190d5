// Package registry is an in-process time-triggered execution facility: a
// set of named jobs, fired on fixed intervals or once at a specific
// instant, with APScheduler-style coalescing, single-instance-in-flight,
// and misfire-grace semantics layered on top of robfig/cron/v3's bare
// scheduling primitives. It never parses a cron expression — every
// schedule is built from a time.Duration or a fixed time.Time, by hand.
package registry

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/olive-green/api-scheduler/internal/logger"
	"github.com/olive-green/api-scheduler/internal/metrics"
)

// Callback is invoked when a job fires. ctx is cancelled when the Registry
// shuts down; callbacks are expected to run to completion under their own
// timeouts regardless (in-flight HTTP calls are not forcibly
// aborted").
type Callback func(ctx context.Context)

// Registry owns cron entries and enforces concurrency limits.
type Registry struct {
	mu           sync.Mutex
	cron         *cron.Cron
	jobs         map[string]*trackedJob
	sem          chan struct{}
	misfireGrace time.Duration
	rootCtx      context.Context
	cancel       context.CancelFunc
	log          *logger.Logger
}

// New builds a Registry with the given misfire grace period and a
// concurrency cap on simultaneously in-flight callbacks across every job.
func New(misfireGrace time.Duration, maxConcurrent int, log *logger.Logger) *Registry {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Registry{
		cron:         cron.New(),
		jobs:         make(map[string]*trackedJob),
		sem:          make(chan struct{}, maxConcurrent),
		misfireGrace: misfireGrace,
		rootCtx:      ctx,
		cancel:       cancel,
		log:          log,
	}
}

// Start begins dispatching timers. Idempotent at the caller's discretion;
// the underlying cron.Cron is itself safe to Start once.
func (r *Registry) Start() {
	r.cron.Start()
}

// Shutdown stops accepting new firings and waits for in-flight callbacks to
// finish.
func (r *Registry) Shutdown(ctx context.Context) error {
	cronCtx := r.cron.Stop()
	defer r.cancel()
	select {
	case <-cronCtx.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// AddInterval installs (or replaces) a recurring job firing every interval.
// endTime, if non-nil, is a hard stop: once reached the job removes itself
// without ever invoking cb again, independent of any separate stop hook
// that may also be watching the same deadline.
func (r *Registry) AddInterval(name string, interval time.Duration, endTime *time.Time, cb Callback) error {
	if interval <= 0 {
		return fmt.Errorf("registry: interval must be positive, got %s", interval)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.removeLocked(name)

	job := &trackedJob{
		name:         name,
		interval:     interval,
		endTime:      endTime,
		callback:     cb,
		misfireGrace: r.misfireGrace,
		registry:     r,
	}
	job.entryID = r.cron.Schedule(job, job)
	r.jobs[name] = job
	metrics.SetActiveSchedules(len(r.jobs))
	return nil
}

// AddOnce installs a one-shot job firing at exactly `at` (the WINDOW stop
// hook trigger). It is the hand-written analogue of APScheduler's `date`
// trigger; robfig/cron/v3 has no built-in equivalent.
func (r *Registry) AddOnce(name string, at time.Time, cb Callback) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.removeLocked(name)

	job := &trackedJob{
		name:     name,
		once:     true,
		onceAt:   at,
		callback: cb,
		registry: r,
	}
	job.entryID = r.cron.Schedule(onceSchedule{at: at}, job)
	r.jobs[name] = job
	metrics.SetActiveSchedules(len(r.jobs))
	return nil
}

// Remove deregisters name. Safe to call on an unregistered name.
func (r *Registry) Remove(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removeLocked(name)
}

func (r *Registry) removeLocked(name string) {
	job, ok := r.jobs[name]
	if !ok {
		return
	}
	r.cron.Remove(job.entryID)
	delete(r.jobs, name)
	metrics.SetActiveSchedules(len(r.jobs))
}

// Pause suspends firings for name; the job stays registered so its timer
// keeps advancing (preserving coalescing semantics on Resume). No-op if
// name isn't registered.
func (r *Registry) Pause(name string) {
	r.mu.Lock()
	job, ok := r.jobs[name]
	r.mu.Unlock()
	if !ok {
		return
	}
	job.setPaused(true)
}

// Resume reverses Pause. No-op if name isn't registered.
func (r *Registry) Resume(name string) {
	r.mu.Lock()
	job, ok := r.jobs[name]
	r.mu.Unlock()
	if !ok {
		return
	}
	job.setPaused(false)
}

// HasJob reports whether name is currently registered.
func (r *Registry) HasJob(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.jobs[name]
	return ok
}

// List returns every registered job name.
func (r *Registry) List() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.jobs))
	for name := range r.jobs {
		names = append(names, name)
	}
	return names
}

// dispatch runs cb under the concurrency cap. Called from the per-entry
// goroutine robfig/cron already spawns per firing, so blocking here never
// stalls the registry's own timer loop.
func (r *Registry) dispatch(cb Callback) {
	select {
	case r.sem <- struct{}{}:
	case <-r.rootCtx.Done():
		return
	}
	defer func() { <-r.sem }()
	cb(r.rootCtx)
}

func (r *Registry) logf(format string, args ...interface{}) {
	if r.log == nil {
		return
	}
	r.log.Infof(format, args...)
}
