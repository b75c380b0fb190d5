package store

import (
	"context"
	"testing"
	"time"

	"github.com/olive-green/api-scheduler/internal/database/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestStore(t *testing.T) *GormStore {
	db, err := gorm.Open(sqlite.Open(":memory:?_foreign_keys=on"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	err = db.AutoMigrate(&models.Target{}, &models.Schedule{}, &models.Run{}, &models.Attempt{})
	require.NoError(t, err)

	return New(db)
}

func TestGormStore_TargetUniqueName(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	t1 := &models.Target{Name: "ping", URL: "https://ok.test/ping", Method: models.MethodGET}
	require.NoError(t, s.InsertTarget(ctx, t1))

	dup := &models.Target{Name: "ping", URL: "https://ok.test/other", Method: models.MethodGET}
	err := s.InsertTarget(ctx, dup)
	assert.ErrorIs(t, err, ErrDuplicateName)
}

func TestGormStore_ScheduleForeignKeyViolation(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	schedule := &models.Schedule{
		Name:            "missing-target",
		TargetID:        9999,
		ScheduleType:    models.ScheduleInterval,
		IntervalSeconds: 5,
		Status:          models.ScheduleActive,
	}
	err := s.InsertSchedule(ctx, schedule)
	assert.ErrorIs(t, err, ErrForeignKeyViolation)
}

func TestGormStore_FindByIDNotFound(t *testing.T) {
	s := setupTestStore(t)
	_, err := s.FindTargetByID(context.Background(), 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGormStore_SetScheduleStatusAtomic(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	target := &models.Target{Name: "t", URL: "https://ok.test", Method: models.MethodGET}
	require.NoError(t, s.InsertTarget(ctx, target))

	schedule := &models.Schedule{
		Name:            "s",
		TargetID:        target.ID,
		ScheduleType:    models.ScheduleWindow,
		IntervalSeconds: 1,
		Status:          models.ScheduleActive,
	}
	require.NoError(t, s.InsertSchedule(ctx, schedule))

	stoppedAt := time.Now().UTC()
	require.NoError(t, s.SetScheduleStatus(ctx, schedule.ID, models.ScheduleStopped, &stoppedAt))

	fetched, err := s.FindScheduleByID(ctx, schedule.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ScheduleStopped, fetched.Status)
	require.NotNil(t, fetched.StoppedAt)
	assert.WithinDuration(t, stoppedAt, *fetched.StoppedAt, time.Second)
}

func TestGormStore_RunAndAttemptLifecycle(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	target := &models.Target{Name: "t", URL: "https://ok.test", Method: models.MethodGET}
	require.NoError(t, s.InsertTarget(ctx, target))
	schedule := &models.Schedule{
		Name: "s", TargetID: target.ID, ScheduleType: models.ScheduleInterval,
		IntervalSeconds: 1, Status: models.ScheduleActive,
	}
	require.NoError(t, s.InsertSchedule(ctx, schedule))

	run := &models.Run{
		ScheduleID:    schedule.ID,
		Status:        models.RunFailed,
		StartedAt:     time.Now().UTC(),
		RequestURL:    target.URL,
		RequestMethod: string(target.Method),
	}
	require.NoError(t, s.InsertRun(ctx, run))
	require.NotZero(t, run.ID)

	completedAt := run.StartedAt.Add(50 * time.Millisecond)
	code := 200
	latency := 50.0
	run.Status = models.RunSuccess
	run.StatusCode = &code
	run.LatencyMS = &latency
	run.CompletedAt = &completedAt
	require.NoError(t, s.UpdateRun(ctx, run))

	attempt := &models.Attempt{
		RunID: run.ID, AttemptNumber: 1, Status: run.Status,
		StartedAt: run.StartedAt, CompletedAt: run.CompletedAt,
		StatusCode: run.StatusCode, LatencyMS: run.LatencyMS,
	}
	require.NoError(t, s.InsertAttempt(ctx, attempt))

	fetched, err := s.FindRunWithAttempts(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RunSuccess, fetched.Status)
	require.Len(t, fetched.Attempts, 1)
	assert.Equal(t, 1, fetched.Attempts[0].AttemptNumber)

	agg, err := s.Aggregate(ctx, RunFilter{ScheduleID: &schedule.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), agg.Total)
	assert.Equal(t, int64(1), agg.CountByStatus[models.RunSuccess])
	assert.InDelta(t, 50.0, agg.AverageLatencyMS, 0.001)
}

func TestGormStore_ListSchedulesByStatus(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	target := &models.Target{Name: "t", URL: "https://ok.test", Method: models.MethodGET}
	require.NoError(t, s.InsertTarget(ctx, target))

	active := &models.Schedule{Name: "a", TargetID: target.ID, ScheduleType: models.ScheduleInterval, IntervalSeconds: 1, Status: models.ScheduleActive}
	paused := &models.Schedule{Name: "b", TargetID: target.ID, ScheduleType: models.ScheduleInterval, IntervalSeconds: 1, Status: models.SchedulePaused}
	require.NoError(t, s.InsertSchedule(ctx, active))
	require.NoError(t, s.InsertSchedule(ctx, paused))

	activeOnly, err := s.ListActiveSchedules(ctx)
	require.NoError(t, err)
	require.Len(t, activeOnly, 1)
	assert.Equal(t, "a", activeOnly[0].Name)
}
