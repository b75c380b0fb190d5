package registry

import (
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/olive-green/api-scheduler/internal/metrics"
)

// trackedJob implements both cron.Schedule and cron.Job, layering
// misfire-grace, coalescing, and max-instances=1 on top of a plain fixed
// interval or a one-shot instant.
//
// Coalescing falls out of Next always computing forward from "now" rather
// than from a backlog of missed instants, so a long-running prior firing
// never produces a burst of catch-up calls when it finally returns.
type trackedJob struct {
	name         string
	interval     time.Duration
	endTime      *time.Time
	once         bool
	onceAt       time.Time
	callback     Callback
	misfireGrace time.Duration
	registry     *Registry

	entryID cron.EntryID

	mu           sync.Mutex
	paused       bool
	inFlight     bool
	fired        bool
	expectedNext time.Time
}

// Next implements cron.Schedule for interval jobs, recording the expected
// next fire time that Run checks against the misfire grace. Its once branch
// reports onceAt until the job has fired, but AddOnce registers one-shot
// jobs with onceSchedule as their cron.Schedule, so the registry never calls
// this method for them; a one-shot job is kept from firing twice by Run's
// fired check and its self-removal instead.
func (j *trackedJob) Next(t time.Time) time.Time {
	if j.once {
		j.mu.Lock()
		defer j.mu.Unlock()
		if j.fired {
			return t.Add(100 * 365 * 24 * time.Hour)
		}
		return j.onceAt
	}
	next := t.Add(j.interval)
	j.mu.Lock()
	j.expectedNext = next
	j.mu.Unlock()
	return next
}

// Run implements cron.Job. robfig/cron invokes this in its own per-firing
// goroutine, so blocking here (on the concurrency semaphore, or on the
// callback itself) never stalls the registry's timer loop.
func (j *trackedJob) Run() {
	j.mu.Lock()
	if j.paused {
		j.mu.Unlock()
		metrics.RecordRegistryRejection("paused")
		return
	}
	if j.inFlight {
		// max-instances=1: an earlier firing is still running, drop this one.
		j.mu.Unlock()
		metrics.RecordRegistryRejection("max_instances")
		return
	}
	if j.once && j.fired {
		j.mu.Unlock()
		return
	}
	expected := j.expectedNext
	j.inFlight = true
	j.fired = true
	j.mu.Unlock()

	defer func() {
		j.mu.Lock()
		j.inFlight = false
		j.mu.Unlock()
	}()

	now := time.Now()

	if j.endTime != nil && !now.Before(*j.endTime) {
		j.registry.logf("registry: job %s past end_time, removing", j.name)
		j.registry.Remove(j.name)
		return
	}

	if !j.once && j.misfireGrace > 0 && !expected.IsZero() && now.Sub(expected) > j.misfireGrace {
		j.registry.logf("registry: job %s missed its slot by %s, beyond misfire grace, dropping", j.name, now.Sub(expected))
		metrics.RecordRegistryRejection("misfire_grace")
		return
	}

	if j.once {
		// A one-shot job never re-fires: robfig/cron recomputes Next
		// right after starting Run in its own goroutine, and
		// onceSchedule.Next always reports the same instant, so it must
		// self-remove here.
		defer j.registry.Remove(j.name)
	}

	j.registry.dispatch(j.callback)
}

func (j *trackedJob) setPaused(p bool) {
	j.mu.Lock()
	j.paused = p
	j.mu.Unlock()
}

// onceSchedule fires once at a fixed instant. robfig/cron/v3 has no
// built-in one-shot trigger; this is the hand-written equivalent of
// APScheduler's `date` trigger.
type onceSchedule struct {
	at time.Time
}

func (s onceSchedule) Next(t time.Time) time.Time {
	return s.at
}
