package admin

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/olive-green/api-scheduler/internal/database/models"
	"github.com/olive-green/api-scheduler/internal/store"
)

// ListRuns lists runs with optional schedule_id/status/start_time/end_time
// filters and pagination, most recent first.
// @Summary List runs
// @Tags Runs
// @Produce json
// @Param schedule_id query int false "Filter by schedule"
// @Param status query string false "Filter by status"
// @Param start_time query string false "RFC3339, only runs started at or after"
// @Param end_time query string false "RFC3339, only runs started at or before"
// @Param skip query int false "Offset, default 0"
// @Param limit query int false "Max rows, default 100, max 1000"
// @Success 200 {array} models.Run
// @Failure 400 {object} ErrorResponse
// @Router /runs [get]
func (h *Handler) ListRuns(c *gin.Context) {
	filter := store.RunFilter{Limit: 100}

	if raw := c.Query("schedule_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid schedule_id"})
			return
		}
		scheduleID := uint(id)
		filter.ScheduleID = &scheduleID
	}

	if raw := c.Query("status"); raw != "" {
		status := models.RunStatus(raw)
		filter.Status = &status
	}

	if raw := c.Query("start_time"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid start_time"})
			return
		}
		filter.Since = &t
	}

	if raw := c.Query("end_time"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid end_time"})
			return
		}
		filter.Until = &t
	}

	if raw := c.Query("skip"); raw != "" {
		skip, err := strconv.Atoi(raw)
		if err != nil || skip < 0 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid skip"})
			return
		}
		filter.Offset = skip
	}

	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > 1000 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid limit, must be 1-1000"})
			return
		}
		filter.Limit = limit
	}

	runs, err := h.store.ListRuns(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, runs)
}

// GetRun returns one run with its attempts.
// @Summary Get run
// @Tags Runs
// @Produce json
// @Param id path int true "Run ID"
// @Success 200 {object} models.Run
// @Failure 404 {object} ErrorResponse
// @Router /runs/{id} [get]
func (h *Handler) GetRun(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	run, err := h.store.FindRunWithAttempts(c.Request.Context(), id)
	if err != nil {
		h.handleLookupError(c, err, "run", id)
		return
	}
	c.JSON(http.StatusOK, run)
}
