package models

import "time"

// Run is one firing of one Schedule: exactly one attempted HTTP request.
type Run struct {
	ID                uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	ScheduleID        uint       `gorm:"not null;index" json:"schedule_id"`
	Status            RunStatus  `gorm:"size:20;not null" json:"status"`
	StartedAt         time.Time  `gorm:"not null;index" json:"started_at"`
	CompletedAt       *time.Time `json:"completed_at,omitempty"`
	StatusCode        *int       `json:"status_code,omitempty"`
	LatencyMS         *float64   `json:"latency_ms,omitempty"`
	ResponseSizeBytes *int64     `json:"response_size_bytes,omitempty"`
	ErrorMessage      *string    `gorm:"type:text" json:"error_message,omitempty"`
	ErrorType         *ErrorType `gorm:"size:32" json:"error_type,omitempty"`

	// Request snapshot, captured at firing time.
	RequestURL     string  `gorm:"size:2048;not null" json:"request_url"`
	RequestMethod  string  `gorm:"size:10;not null" json:"request_method"`
	RequestHeaders Headers `gorm:"type:text" json:"request_headers"`
	RequestBody    *string `gorm:"type:text" json:"request_body,omitempty"`

	// Response snapshot. Body is truncated at 10,000 bytes; ResponseSizeBytes
	// above retains the untruncated length.
	ResponseHeaders Headers `gorm:"type:text" json:"response_headers"`
	ResponseBody    *string `gorm:"type:text" json:"response_body,omitempty"`

	Attempts []Attempt `gorm:"constraint:OnDelete:CASCADE" json:"attempts,omitempty"`
}

// TableName pins the table name so renaming the Go type never migrates data.
func (Run) TableName() string { return "runs" }

// MaxResponseBodyBytes is the truncation limit for stored response bodies.
const MaxResponseBodyBytes = 10000
