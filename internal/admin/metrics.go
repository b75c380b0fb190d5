package admin

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/olive-green/api-scheduler/internal/database/models"
	"github.com/olive-green/api-scheduler/internal/store"
)

// GetSystemMetrics returns an overall rollup: target/schedule counts by
// status, run counts, success rate and average latency.
// @Summary System metrics
// @Tags Metrics
// @Produce json
// @Success 200 {object} SystemMetrics
// @Router /metrics/system [get]
func (h *Handler) GetSystemMetrics(c *gin.Context) {
	ctx := c.Request.Context()

	targets, err := h.store.ListTargets(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	schedules, err := h.store.ListSchedules(ctx, nil)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	var active, paused, stopped int64
	for _, s := range schedules {
		switch s.Status {
		case models.ScheduleActive:
			active++
		case models.SchedulePaused:
			paused++
		case models.ScheduleStopped:
			stopped++
		}
	}

	agg, err := h.store.Aggregate(ctx, store.RunFilter{})
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	oneHourAgo := time.Now().UTC().Add(-time.Hour)
	recentAgg, err := h.store.Aggregate(ctx, store.RunFilter{Since: &oneHourAgo})
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	successRate := 0.0
	if agg.Total > 0 {
		successRate = float64(agg.CountByStatus[models.RunSuccess]) / float64(agg.Total) * 100
	}

	var avgLatency *float64
	if agg.Total > 0 {
		v := agg.AverageLatencyMS
		avgLatency = &v
	}

	c.JSON(http.StatusOK, SystemMetrics{
		TotalTargets:     int64(len(targets)),
		TotalSchedules:   int64(len(schedules)),
		ActiveSchedules:  active,
		PausedSchedules:  paused,
		StoppedSchedules: stopped,
		TotalRuns:        agg.Total,
		RunsLastHour:     recentAgg.Total,
		SuccessRate:      successRate,
		AvgLatencyMS:     avgLatency,
	})
}

// GetScheduleMetrics returns a per-schedule rollup.
// @Summary Per-schedule metrics
// @Tags Metrics
// @Produce json
// @Success 200 {array} ScheduleMetrics
// @Router /metrics/schedules [get]
func (h *Handler) GetScheduleMetrics(c *gin.Context) {
	ctx := c.Request.Context()

	schedules, err := h.store.ListSchedules(ctx, nil)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	out := make([]ScheduleMetrics, 0, len(schedules))
	for _, s := range schedules {
		scheduleID := s.ID
		agg, err := h.store.Aggregate(ctx, store.RunFilter{ScheduleID: &scheduleID})
		if err != nil {
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
			return
		}

		var avgLatency *float64
		if agg.Total > 0 {
			v := agg.AverageLatencyMS
			avgLatency = &v
		}
		var lastRunAt *string
		if agg.MaxStartedAt != nil {
			formatted := agg.MaxStartedAt.Format(time.RFC3339)
			lastRunAt = &formatted
		}

		out = append(out, ScheduleMetrics{
			ScheduleID:     s.ID,
			ScheduleName:   s.Name,
			TotalRuns:      agg.Total,
			SuccessfulRuns: agg.CountByStatus[models.RunSuccess],
			FailedRuns:     agg.Total - agg.CountByStatus[models.RunSuccess],
			AvgLatencyMS:   avgLatency,
			LastRunAt:      lastRunAt,
		})
	}

	c.JSON(http.StatusOK, out)
}
