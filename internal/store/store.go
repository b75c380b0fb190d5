// Package store provides transactional persistence for targets, schedules,
// runs and attempts.
package store

import (
	"context"
	"time"

	"github.com/olive-green/api-scheduler/internal/database/models"
)

// RunFilter narrows ListRuns / the metrics aggregations. A nil field means
// "don't filter on this".
type RunFilter struct {
	ScheduleID *uint
	Status     *models.RunStatus
	Since      *time.Time
	Until      *time.Time
	Limit      int
	Offset     int
}

// RunAggregates summarizes a RunFilter's matching rows, per the
// "aggregations over runs for metrics".
type RunAggregates struct {
	Total            int64
	CountByStatus    map[models.RunStatus]int64
	AverageLatencyMS float64
	MaxStartedAt     *time.Time
}

// Store is the durable persistence boundary for the scheduler. Every method
// that mutates more than one row commits as a single transaction.
type Store interface {
	InsertTarget(ctx context.Context, target *models.Target) error
	UpdateTarget(ctx context.Context, target *models.Target) error
	DeleteTarget(ctx context.Context, id uint) error
	ListTargets(ctx context.Context) ([]models.Target, error)
	FindTargetByID(ctx context.Context, id uint) (*models.Target, error)
	FindTargetByName(ctx context.Context, name string) (*models.Target, error)

	InsertSchedule(ctx context.Context, schedule *models.Schedule) error
	UpdateSchedule(ctx context.Context, schedule *models.Schedule) error
	DeleteSchedule(ctx context.Context, id uint) error
	ListSchedules(ctx context.Context, statusFilter *models.ScheduleStatus) ([]models.Schedule, error)
	FindScheduleByID(ctx context.Context, id uint) (*models.Schedule, error)
	FindScheduleByName(ctx context.Context, name string) (*models.Schedule, error)
	ListActiveSchedules(ctx context.Context) ([]models.Schedule, error)

	// SetScheduleStatus atomically transitions status and, when provided,
	// stamps stoppedAt (used by the WINDOW expiry path).
	SetScheduleStatus(ctx context.Context, id uint, status models.ScheduleStatus, stoppedAt *time.Time) error
	// SetScheduleStartedAt records the instant a WINDOW schedule's clock
	// started, the first time add_job ever installs its timer.
	SetScheduleStartedAt(ctx context.Context, id uint, startedAt time.Time) error
	// SetScheduleJobHandle persists the opaque timer-registration name.
	SetScheduleJobHandle(ctx context.Context, id uint, handle string) error

	// InsertRun writes the provisional run row; run.ID is populated on
	// return.
	InsertRun(ctx context.Context, run *models.Run) error
	// UpdateRun persists the final outcome fields of an existing run.
	UpdateRun(ctx context.Context, run *models.Run) error
	InsertAttempt(ctx context.Context, attempt *models.Attempt) error
	ListRuns(ctx context.Context, filter RunFilter) ([]models.Run, error)
	FindRunWithAttempts(ctx context.Context, id uint) (*models.Run, error)

	// Aggregate computes RunAggregates over filter for the metrics surface.
	Aggregate(ctx context.Context, filter RunFilter) (RunAggregates, error)
}
