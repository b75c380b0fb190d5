package store

import (
	"context"
	"errors"
	"time"

	"github.com/olive-green/api-scheduler/internal/database/models"
	"gorm.io/gorm"
)

// GormStore implements Store on top of a gorm.DB. It works unmodified
// against either of the two dialects Connect supports, since the duplicate
// key / foreign key error translation lives in gorm itself
// (gorm.Config{TranslateError: true}).
type GormStore struct {
	db *gorm.DB
}

// New wraps db in a Store.
func New(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicateName
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return ErrForeignKeyViolation
	default:
		return err
	}
}

func (s *GormStore) InsertTarget(ctx context.Context, target *models.Target) error {
	return translate(s.db.WithContext(ctx).Create(target).Error)
}

func (s *GormStore) UpdateTarget(ctx context.Context, target *models.Target) error {
	return translate(s.db.WithContext(ctx).Save(target).Error)
}

func (s *GormStore) DeleteTarget(ctx context.Context, id uint) error {
	return translate(s.db.WithContext(ctx).Delete(&models.Target{}, id).Error)
}

func (s *GormStore) ListTargets(ctx context.Context) ([]models.Target, error) {
	var targets []models.Target
	err := s.db.WithContext(ctx).Order("id").Find(&targets).Error
	return targets, translate(err)
}

func (s *GormStore) FindTargetByID(ctx context.Context, id uint) (*models.Target, error) {
	var target models.Target
	err := s.db.WithContext(ctx).First(&target, id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &target, nil
}

func (s *GormStore) FindTargetByName(ctx context.Context, name string) (*models.Target, error) {
	var target models.Target
	err := s.db.WithContext(ctx).Where("name = ?", name).First(&target).Error
	if err != nil {
		return nil, translate(err)
	}
	return &target, nil
}

func (s *GormStore) InsertSchedule(ctx context.Context, schedule *models.Schedule) error {
	return translate(s.db.WithContext(ctx).Create(schedule).Error)
}

func (s *GormStore) UpdateSchedule(ctx context.Context, schedule *models.Schedule) error {
	return translate(s.db.WithContext(ctx).Save(schedule).Error)
}

func (s *GormStore) DeleteSchedule(ctx context.Context, id uint) error {
	return translate(s.db.WithContext(ctx).Delete(&models.Schedule{}, id).Error)
}

func (s *GormStore) ListSchedules(ctx context.Context, statusFilter *models.ScheduleStatus) ([]models.Schedule, error) {
	q := s.db.WithContext(ctx).Order("id")
	if statusFilter != nil {
		q = q.Where("status = ?", *statusFilter)
	}
	var schedules []models.Schedule
	err := q.Find(&schedules).Error
	return schedules, translate(err)
}

func (s *GormStore) FindScheduleByID(ctx context.Context, id uint) (*models.Schedule, error) {
	var schedule models.Schedule
	err := s.db.WithContext(ctx).First(&schedule, id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &schedule, nil
}

func (s *GormStore) FindScheduleByName(ctx context.Context, name string) (*models.Schedule, error) {
	var schedule models.Schedule
	err := s.db.WithContext(ctx).Where("name = ?", name).First(&schedule).Error
	if err != nil {
		return nil, translate(err)
	}
	return &schedule, nil
}

func (s *GormStore) ListActiveSchedules(ctx context.Context) ([]models.Schedule, error) {
	active := models.ScheduleActive
	return s.ListSchedules(ctx, &active)
}

func (s *GormStore) SetScheduleStatus(ctx context.Context, id uint, status models.ScheduleStatus, stoppedAt *time.Time) error {
	updates := map[string]interface{}{"status": status}
	if stoppedAt != nil {
		updates["stopped_at"] = *stoppedAt
	}
	res := s.db.WithContext(ctx).Model(&models.Schedule{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) SetScheduleStartedAt(ctx context.Context, id uint, startedAt time.Time) error {
	res := s.db.WithContext(ctx).Model(&models.Schedule{}).Where("id = ?", id).Update("started_at", startedAt)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) SetScheduleJobHandle(ctx context.Context, id uint, handle string) error {
	res := s.db.WithContext(ctx).Model(&models.Schedule{}).Where("id = ?", id).Update("job_handle", handle)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) InsertRun(ctx context.Context, run *models.Run) error {
	return translate(s.db.WithContext(ctx).Create(run).Error)
}

func (s *GormStore) UpdateRun(ctx context.Context, run *models.Run) error {
	return translate(s.db.WithContext(ctx).Save(run).Error)
}

func (s *GormStore) InsertAttempt(ctx context.Context, attempt *models.Attempt) error {
	return translate(s.db.WithContext(ctx).Create(attempt).Error)
}

func (s *GormStore) ListRuns(ctx context.Context, filter RunFilter) ([]models.Run, error) {
	q := applyRunFilter(s.db.WithContext(ctx), filter).Order("started_at desc")
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
	}
	var runs []models.Run
	err := q.Find(&runs).Error
	return runs, translate(err)
}

func (s *GormStore) FindRunWithAttempts(ctx context.Context, id uint) (*models.Run, error) {
	var run models.Run
	err := s.db.WithContext(ctx).Preload("Attempts").First(&run, id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &run, nil
}

func (s *GormStore) Aggregate(ctx context.Context, filter RunFilter) (RunAggregates, error) {
	var agg RunAggregates
	agg.CountByStatus = make(map[models.RunStatus]int64)

	base := applyRunFilter(s.db.WithContext(ctx).Model(&models.Run{}), filter)

	if err := base.Session(&gorm.Session{}).Count(&agg.Total).Error; err != nil {
		return agg, translate(err)
	}

	var byStatus []struct {
		Status models.RunStatus
		Count  int64
	}
	if err := base.Session(&gorm.Session{}).Select("status, count(*) as count").Group("status").Find(&byStatus).Error; err != nil {
		return agg, translate(err)
	}
	for _, row := range byStatus {
		agg.CountByStatus[row.Status] = row.Count
	}

	var avg struct{ Avg float64 }
	if err := base.Session(&gorm.Session{}).Select("coalesce(avg(latency_ms), 0) as avg").Scan(&avg).Error; err != nil {
		return agg, translate(err)
	}
	agg.AverageLatencyMS = avg.Avg

	var maxStarted *time.Time
	if err := base.Session(&gorm.Session{}).Select("max(started_at)").Scan(&maxStarted).Error; err != nil {
		return agg, translate(err)
	}
	agg.MaxStartedAt = maxStarted

	return agg, nil
}

func applyRunFilter(q *gorm.DB, filter RunFilter) *gorm.DB {
	if filter.ScheduleID != nil {
		q = q.Where("schedule_id = ?", *filter.ScheduleID)
	}
	if filter.Status != nil {
		q = q.Where("status = ?", *filter.Status)
	}
	if filter.Since != nil {
		q = q.Where("started_at >= ?", *filter.Since)
	}
	if filter.Until != nil {
		q = q.Where("started_at <= ?", *filter.Until)
	}
	return q
}
