package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/olive-green/api-scheduler/internal/database/models"
	"github.com/olive-green/api-scheduler/internal/httpx"
	"github.com/olive-green/api-scheduler/internal/metrics"
	"github.com/olive-green/api-scheduler/internal/store"
)

// onFire is the firing callback: load the schedule and target, record a
// provisional run, execute the request, then finalize the run. It is also the
// Run Recorder: the two-phase write (insert-provisional, then
// update-on-complete) lives here so the scheduling path can never forget
// either half.
func (s *Service) onFire(ctx context.Context, scheduleID uint) {
	schedule, err := s.store.FindScheduleByID(ctx, scheduleID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return
		}
		s.log.Errorw("onFire: load schedule failed", "schedule_id", scheduleID, "error", err)
		return
	}

	// Defensive: covers races with a concurrent pause/stop.
	if schedule.Status != models.ScheduleActive {
		return
	}

	target, err := s.store.FindTargetByID(ctx, schedule.TargetID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.recordMissingTarget(ctx, schedule)
			return
		}
		s.log.Errorw("onFire: load target failed", "schedule_id", scheduleID, "error", err)
		return
	}

	startedAt := time.Now().UTC()
	run := &models.Run{
		ScheduleID:     schedule.ID,
		Status:         models.RunFailed,
		StartedAt:      startedAt,
		RequestURL:     target.URL,
		RequestMethod:  string(target.Method),
		RequestHeaders: target.Headers,
		RequestBody:    target.Body,
	}
	if err := s.store.InsertRun(ctx, run); err != nil {
		s.log.Errorw("onFire: insert provisional run failed", "schedule_id", scheduleID, "error", err)
		return
	}

	outcome := s.executor.Execute(ctx, httpx.Request{
		URL:     target.URL,
		Method:  target.Method,
		Headers: target.Headers,
		Body:    target.Body,
	})

	applyOutcome(run, outcome)
	metrics.RecordFiring(string(run.Status), time.Duration(outcome.LatencyMS*float64(time.Millisecond)))
	if err := s.store.UpdateRun(ctx, run); err != nil {
		s.log.Errorw("onFire: update run failed", "schedule_id", scheduleID, "run_id", run.ID, "error", err)
		return
	}

	attempt := &models.Attempt{
		RunID:         run.ID,
		AttemptNumber: 1,
		Status:        run.Status,
		StartedAt:     run.StartedAt,
		CompletedAt:   run.CompletedAt,
		StatusCode:    run.StatusCode,
		LatencyMS:     run.LatencyMS,
		ErrorMessage:  run.ErrorMessage,
		ErrorType:     run.ErrorType,
	}
	if err := s.store.InsertAttempt(ctx, attempt); err != nil {
		s.log.Errorw("onFire: insert attempt failed", "schedule_id", scheduleID, "run_id", run.ID, "error", err)
	}
}

// recordMissingTarget handles a schedule whose target was deleted mid-run:
// it persists a synthetic FAILED run with error_type=unknown rather than
// silently skipping, so the run ledger never has a silent gap.
func (s *Service) recordMissingTarget(ctx context.Context, schedule *models.Schedule) {
	now := time.Now().UTC()
	unknown := models.ErrorUnknown
	message := "target not found"
	run := &models.Run{
		ScheduleID:    schedule.ID,
		Status:        models.RunFailed,
		StartedAt:     now,
		CompletedAt:   &now,
		ErrorMessage:  &message,
		ErrorType:     &unknown,
		RequestMethod: "",
	}
	metrics.RecordFiring(string(models.RunFailed), 0)
	if err := s.store.InsertRun(ctx, run); err != nil {
		s.log.Errorw("onFire: failed to record missing-target run", "schedule_id", schedule.ID, "error", err)
		return
	}

	attempt := &models.Attempt{
		RunID:         run.ID,
		AttemptNumber: 1,
		Status:        run.Status,
		StartedAt:     run.StartedAt,
		CompletedAt:   run.CompletedAt,
		ErrorMessage:  run.ErrorMessage,
		ErrorType:     run.ErrorType,
	}
	if err := s.store.InsertAttempt(ctx, attempt); err != nil {
		s.log.Errorw("onFire: failed to record missing-target attempt", "schedule_id", schedule.ID, "error", err)
	}
}

func applyOutcome(run *models.Run, outcome httpx.Outcome) {
	completedAt := time.Now().UTC()
	latency := outcome.LatencyMS

	run.Status = outcome.Status
	run.StatusCode = outcome.StatusCode
	run.LatencyMS = &latency
	run.ResponseSizeBytes = outcome.ResponseSizeBytes
	run.ErrorMessage = outcome.ErrorMessage
	run.ErrorType = outcome.ErrorType
	run.ResponseHeaders = outcome.ResponseHeaders
	run.ResponseBody = outcome.ResponseBody
	run.CompletedAt = &completedAt
}
