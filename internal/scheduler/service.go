// Package scheduler owns the job registry, translates schedule rows into
// timers, and runs the firing callback that ties the Store, the HTTP
// executor and the registry together.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/olive-green/api-scheduler/internal/database/models"
	"github.com/olive-green/api-scheduler/internal/httpx"
	"github.com/olive-green/api-scheduler/internal/logger"
	"github.com/olive-green/api-scheduler/internal/registry"
	"github.com/olive-green/api-scheduler/internal/store"
)

// Service is the Scheduler Service.
type Service struct {
	store    store.Store
	executor *httpx.Executor
	registry *registry.Registry
	log      *logger.Logger
}

// New builds a Service over the given collaborators.
func New(st store.Store, executor *httpx.Executor, reg *registry.Registry, log *logger.Logger) *Service {
	return &Service{store: st, executor: executor, registry: reg, log: log}
}

// Start begins servicing timers. Idempotent.
func (s *Service) Start() {
	s.registry.Start()
}

// Shutdown stops accepting new firings and waits for in-flight callbacks to
// complete.
func (s *Service) Shutdown(ctx context.Context) error {
	return s.registry.Shutdown(ctx)
}

// Rehydrate loads every ACTIVE schedule and installs its timer. Per-schedule
// failures are logged and skipped; they never abort the overall rehydration.
func (s *Service) Rehydrate(ctx context.Context) error {
	schedules, err := s.store.ListActiveSchedules(ctx)
	if err != nil {
		return fmt.Errorf("scheduler: rehydrate: list active schedules: %w", err)
	}

	for i := range schedules {
		schedule := &schedules[i]
		if err := s.AddJob(ctx, schedule); err != nil {
			s.log.Errorw("rehydrate: failed to add job", "schedule_id", schedule.ID, "error", err)
			continue
		}
	}
	return nil
}

func jobName(scheduleID uint) string      { return fmt.Sprintf("schedule_%d", scheduleID) }
func stopHookName(scheduleID uint) string { return jobName(scheduleID) + "_stop" }

// AddJob installs or replaces the timer for schedule, per the per-type
// algorithm for the schedule's type.
func (s *Service) AddJob(ctx context.Context, schedule *models.Schedule) error {
	name := jobName(schedule.ID)

	switch schedule.ScheduleType {
	case models.ScheduleInterval:
		interval := time.Duration(schedule.IntervalSeconds) * time.Second
		if err := s.registry.AddInterval(name, interval, nil, s.onFireCallback(schedule.ID)); err != nil {
			return fmt.Errorf("scheduler: add_job: %w", err)
		}

	case models.ScheduleWindow:
		if schedule.DurationSeconds == nil {
			return fmt.Errorf("scheduler: WINDOW schedule %d missing duration_seconds", schedule.ID)
		}

		startedAt := schedule.StartedAt
		if startedAt == nil {
			now := time.Now().UTC()
			startedAt = &now
			if err := s.store.SetScheduleStartedAt(ctx, schedule.ID, now); err != nil {
				return fmt.Errorf("scheduler: persist started_at: %w", err)
			}
			schedule.StartedAt = startedAt
		}

		endTime := startedAt.Add(time.Duration(*schedule.DurationSeconds) * time.Second)
		now := time.Now().UTC()
		if !now.Before(endTime) {
			return s.store.SetScheduleStatus(ctx, schedule.ID, models.ScheduleStopped, &now)
		}

		interval := time.Duration(schedule.IntervalSeconds) * time.Second
		if err := s.registry.AddInterval(name, interval, &endTime, s.onFireCallback(schedule.ID)); err != nil {
			return fmt.Errorf("scheduler: add_job: %w", err)
		}
		if err := s.registry.AddOnce(stopHookName(schedule.ID), endTime, s.onStopCallback(schedule.ID)); err != nil {
			return fmt.Errorf("scheduler: add stop hook: %w", err)
		}

	default:
		return fmt.Errorf("scheduler: unknown schedule type %q", schedule.ScheduleType)
	}

	return s.store.SetScheduleJobHandle(ctx, schedule.ID, name)
}

// PauseJob suspends schedule's timer. The caller must have already
// committed the ACTIVE -> PAUSED transition.
func (s *Service) PauseJob(schedule *models.Schedule) {
	s.registry.Pause(jobName(schedule.ID))
}

// ResumeJob resumes a suspended timer, or reinstalls it from scratch if it
// was never registered (e.g. after a process restart skipped it).
func (s *Service) ResumeJob(ctx context.Context, schedule *models.Schedule) error {
	name := jobName(schedule.ID)
	if s.registry.HasJob(name) {
		s.registry.Resume(name)
		return nil
	}
	return s.AddJob(ctx, schedule)
}

// RemoveJob tears down both the main timer and the WINDOW stop hook, if any.
func (s *Service) RemoveJob(schedule *models.Schedule) {
	s.registry.Remove(jobName(schedule.ID))
	s.registry.Remove(stopHookName(schedule.ID))
}

func (s *Service) onFireCallback(scheduleID uint) registry.Callback {
	return func(ctx context.Context) {
		defer func() {
			if r := recover(); r != nil {
				s.log.Errorw("firing panicked", "schedule_id", scheduleID, "panic", r)
			}
		}()
		s.onFire(ctx, scheduleID)
	}
}

func (s *Service) onStopCallback(scheduleID uint) registry.Callback {
	return func(ctx context.Context) {
		defer func() {
			if r := recover(); r != nil {
				s.log.Errorw("stop hook panicked", "schedule_id", scheduleID, "panic", r)
			}
		}()
		s.onStop(ctx, scheduleID)
	}
}

// onStop is the WINDOW stop hook: atomically mark the schedule STOPPED.
func (s *Service) onStop(ctx context.Context, scheduleID uint) {
	now := time.Now().UTC()
	if err := s.store.SetScheduleStatus(ctx, scheduleID, models.ScheduleStopped, &now); err != nil && !errors.Is(err, store.ErrNotFound) {
		s.log.Errorw("failed to mark window schedule stopped", "schedule_id", scheduleID, "error", err)
	}
}
