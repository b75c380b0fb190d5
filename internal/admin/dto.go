package admin

import "github.com/olive-green/api-scheduler/internal/database/models"

// CreateTargetRequest is the payload for POST /targets.
type CreateTargetRequest struct {
	Name    string            `json:"name" binding:"required,max=255"`
	URL     string            `json:"url" binding:"required,url,max=2048"`
	Method  models.HTTPMethod `json:"method" binding:"required"`
	Headers map[string]string `json:"headers"`
	Body    *string           `json:"body,omitempty"`
}

// UpdateTargetRequest is the payload for PUT /targets/:id. Every field is
// optional; only set fields are applied.
type UpdateTargetRequest struct {
	Name    *string            `json:"name,omitempty" binding:"omitempty,max=255"`
	URL     *string            `json:"url,omitempty" binding:"omitempty,url,max=2048"`
	Method  *models.HTTPMethod `json:"method,omitempty"`
	Headers map[string]string  `json:"headers,omitempty"`
	Body    *string            `json:"body,omitempty"`
}

// CreateScheduleRequest is the payload for POST /schedules.
type CreateScheduleRequest struct {
	Name            string              `json:"name" binding:"required,max=255"`
	TargetID        uint                `json:"target_id" binding:"required"`
	ScheduleType    models.ScheduleType `json:"schedule_type" binding:"required"`
	IntervalSeconds int                 `json:"interval_seconds" binding:"required,gt=0"`
	DurationSeconds *int                `json:"duration_seconds,omitempty"`
}

// UpdateScheduleRequest is the payload for PUT /schedules/:id. Name and
// timing fields may be changed; target_id, schedule_type and status cannot
// be changed through this endpoint (use pause/resume/delete for status).
type UpdateScheduleRequest struct {
	Name            *string `json:"name,omitempty" binding:"omitempty,max=255"`
	IntervalSeconds *int    `json:"interval_seconds,omitempty" binding:"omitempty,gt=0"`
	DurationSeconds *int    `json:"duration_seconds,omitempty"`
}

// ErrorResponse is the uniform error body returned by every admin endpoint.
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse is a plain acknowledgement body for delete endpoints.
type MessageResponse struct {
	Message string `json:"message"`
}

// SystemMetrics is the overall rollup for GET /metrics/system.
type SystemMetrics struct {
	TotalTargets     int64    `json:"total_targets"`
	TotalSchedules   int64    `json:"total_schedules"`
	ActiveSchedules  int64    `json:"active_schedules"`
	PausedSchedules  int64    `json:"paused_schedules"`
	StoppedSchedules int64    `json:"stopped_schedules"`
	TotalRuns        int64    `json:"total_runs"`
	RunsLastHour     int64    `json:"runs_last_hour"`
	SuccessRate      float64  `json:"success_rate"`
	AvgLatencyMS     *float64 `json:"avg_latency_ms,omitempty"`
}

// ScheduleMetrics is the per-schedule rollup for GET /metrics/schedules.
type ScheduleMetrics struct {
	ScheduleID     uint     `json:"schedule_id"`
	ScheduleName   string   `json:"schedule_name"`
	TotalRuns      int64    `json:"total_runs"`
	SuccessfulRuns int64    `json:"successful_runs"`
	FailedRuns     int64    `json:"failed_runs"`
	AvgLatencyMS   *float64 `json:"avg_latency_ms,omitempty"`
	LastRunAt      *string  `json:"last_run_at,omitempty"`
}
