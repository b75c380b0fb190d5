package models

import "time"

// Attempt is one HTTP call made while executing a Run. The executor never
// retries on its own, so today every Run has exactly one
// Attempt; the table exists so a future retry policy has somewhere to land
// without a schema change.
type Attempt struct {
	ID            uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	RunID         uint       `gorm:"not null;index" json:"run_id"`
	AttemptNumber int        `gorm:"not null;default:1" json:"attempt_number"`
	Status        RunStatus  `gorm:"size:20;not null" json:"status"`
	StartedAt     time.Time  `gorm:"not null" json:"started_at"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
	StatusCode    *int       `json:"status_code,omitempty"`
	LatencyMS     *float64   `json:"latency_ms,omitempty"`
	ErrorMessage  *string    `gorm:"type:text" json:"error_message,omitempty"`
	ErrorType     *ErrorType `gorm:"size:32" json:"error_type,omitempty"`
}

// TableName pins the table name so renaming the Go type never migrates data.
func (Attempt) TableName() string { return "attempts" }
