package models

import "time"

// Target is a reusable HTTP endpoint specification.
type Target struct {
	ID        uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string     `gorm:"uniqueIndex;size:255;not null" json:"name" validate:"required,max=255"`
	URL       string     `gorm:"size:2048;not null" json:"url" validate:"required,url,max=2048"`
	Method    HTTPMethod `gorm:"size:10;not null" json:"method" validate:"required"`
	Headers   Headers    `gorm:"type:text" json:"headers"`
	Body      *string    `gorm:"type:text" json:"body,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`

	Schedules []Schedule `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// TableName pins the table name so renaming the Go type never migrates data.
func (Target) TableName() string { return "targets" }
