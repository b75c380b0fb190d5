package models

import "time"

// Schedule is a firing rule bound to one Target.
type Schedule struct {
	ID              uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	Name            string         `gorm:"uniqueIndex;size:255;not null" json:"name" validate:"required,max=255"`
	TargetID        uint           `gorm:"not null;index" json:"target_id" validate:"required"`
	ScheduleType    ScheduleType   `gorm:"size:10;not null" json:"schedule_type" validate:"required"`
	IntervalSeconds int            `gorm:"not null" json:"interval_seconds" validate:"required,gt=0"`
	DurationSeconds *int           `json:"duration_seconds,omitempty"`
	Status          ScheduleStatus `gorm:"size:10;not null;index;default:ACTIVE" json:"status"`
	CreatedAt       time.Time      `json:"created_at"`
	StartedAt       *time.Time     `json:"started_at,omitempty"`
	StoppedAt       *time.Time     `json:"stopped_at,omitempty"`
	JobHandle       *string        `gorm:"size:255" json:"job_handle,omitempty"`

	Target *Target `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Runs   []Run   `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// TableName pins the table name so renaming the Go type never migrates data.
func (Schedule) TableName() string { return "schedules" }
