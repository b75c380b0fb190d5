package admin

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/olive-green/api-scheduler/internal/database/models"
	"github.com/olive-green/api-scheduler/internal/store"
)

// CreateSchedule creates a schedule ACTIVE by default and installs its
// timer. If the timer install fails, the schedule row is left intact so
// the operator can retry via update.
// @Summary Create schedule
// @Tags Schedules
// @Accept json
// @Produce json
// @Param schedule body CreateScheduleRequest true "Schedule"
// @Success 201 {object} models.Schedule
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /schedules [post]
func (h *Handler) CreateSchedule(c *gin.Context) {
	var req CreateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	if !req.ScheduleType.Valid() {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid schedule_type"})
		return
	}
	if req.ScheduleType == models.ScheduleWindow && req.DurationSeconds == nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "duration_seconds is required for WINDOW schedules"})
		return
	}

	ctx := c.Request.Context()
	if _, err := h.store.FindTargetByID(ctx, req.TargetID); err != nil {
		h.handleLookupError(c, err, "target", req.TargetID)
		return
	}

	schedule := &models.Schedule{
		Name:            req.Name,
		TargetID:        req.TargetID,
		ScheduleType:    req.ScheduleType,
		IntervalSeconds: req.IntervalSeconds,
		DurationSeconds: req.DurationSeconds,
		Status:          models.ScheduleActive,
	}
	if err := h.store.InsertSchedule(ctx, schedule); err != nil {
		h.handleWriteError(c, err, req.Name)
		return
	}

	if err := h.scheduler.AddJob(ctx, schedule); err != nil {
		h.log.Errorw("failed to install timer for new schedule", "schedule_id", schedule.ID, "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to install schedule timer: " + err.Error()})
		return
	}

	h.log.Infow("created schedule", "schedule_id", schedule.ID, "name", schedule.Name)
	c.JSON(http.StatusCreated, schedule)
}

// ListSchedules returns schedules, optionally filtered by status.
// @Summary List schedules
// @Tags Schedules
// @Produce json
// @Param status query string false "ACTIVE, PAUSED or STOPPED"
// @Success 200 {array} models.Schedule
// @Router /schedules [get]
func (h *Handler) ListSchedules(c *gin.Context) {
	var statusFilter *models.ScheduleStatus
	if raw := c.Query("status"); raw != "" {
		s := models.ScheduleStatus(raw)
		if !s.Valid() {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid status filter"})
			return
		}
		statusFilter = &s
	}

	schedules, err := h.store.ListSchedules(c.Request.Context(), statusFilter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, schedules)
}

// GetSchedule returns one schedule by id.
// @Summary Get schedule
// @Tags Schedules
// @Produce json
// @Param id path int true "Schedule ID"
// @Success 200 {object} models.Schedule
// @Failure 404 {object} ErrorResponse
// @Router /schedules/{id} [get]
func (h *Handler) GetSchedule(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	schedule, err := h.store.FindScheduleByID(c.Request.Context(), id)
	if err != nil {
		h.handleLookupError(c, err, "schedule", id)
		return
	}
	c.JSON(http.StatusOK, schedule)
}

// UpdateSchedule updates name/timing fields and, if the schedule is
// currently ACTIVE, reinstalls its timer to pick up the new values.
// @Summary Update schedule
// @Tags Schedules
// @Accept json
// @Produce json
// @Param id path int true "Schedule ID"
// @Param schedule body UpdateScheduleRequest true "Fields to update"
// @Success 200 {object} models.Schedule
// @Failure 404 {object} ErrorResponse
// @Router /schedules/{id} [put]
func (h *Handler) UpdateSchedule(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	var req UpdateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	ctx := c.Request.Context()
	schedule, err := h.store.FindScheduleByID(ctx, id)
	if err != nil {
		h.handleLookupError(c, err, "schedule", id)
		return
	}

	if req.Name != nil {
		schedule.Name = *req.Name
	}
	if req.IntervalSeconds != nil {
		schedule.IntervalSeconds = *req.IntervalSeconds
	}
	if req.DurationSeconds != nil {
		schedule.DurationSeconds = req.DurationSeconds
	}

	if err := h.store.UpdateSchedule(ctx, schedule); err != nil {
		h.handleWriteError(c, err, schedule.Name)
		return
	}

	if schedule.Status == models.ScheduleActive {
		if err := h.scheduler.AddJob(ctx, schedule); err != nil {
			h.log.Errorw("failed to reinstall timer after update", "schedule_id", schedule.ID, "error", err)
		}
	}

	h.log.Infow("updated schedule", "schedule_id", schedule.ID)
	c.JSON(http.StatusOK, schedule)
}

// PauseSchedule transitions an ACTIVE schedule to PAUSED and suspends its
// timer. The Store commit happens before the timer is paused, per the
// scheduler's contract.
// @Summary Pause schedule
// @Tags Schedules
// @Produce json
// @Param id path int true "Schedule ID"
// @Success 200 {object} models.Schedule
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /schedules/{id}/pause [post]
func (h *Handler) PauseSchedule(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	ctx := c.Request.Context()
	schedule, err := h.store.FindScheduleByID(ctx, id)
	if err != nil {
		h.handleLookupError(c, err, "schedule", id)
		return
	}
	if schedule.Status != models.ScheduleActive {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "schedule is not active"})
		return
	}

	if err := h.store.SetScheduleStatus(ctx, id, models.SchedulePaused, nil); err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	schedule.Status = models.SchedulePaused
	h.scheduler.PauseJob(schedule)

	h.log.Infow("paused schedule", "schedule_id", id)
	c.JSON(http.StatusOK, schedule)
}

// ResumeSchedule transitions a PAUSED schedule back to ACTIVE and resumes
// its timer (or reinstalls it if it was never registered).
// @Summary Resume schedule
// @Tags Schedules
// @Produce json
// @Param id path int true "Schedule ID"
// @Success 200 {object} models.Schedule
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /schedules/{id}/resume [post]
func (h *Handler) ResumeSchedule(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	ctx := c.Request.Context()
	schedule, err := h.store.FindScheduleByID(ctx, id)
	if err != nil {
		h.handleLookupError(c, err, "schedule", id)
		return
	}
	if schedule.Status != models.SchedulePaused {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "schedule is not paused"})
		return
	}

	if err := h.store.SetScheduleStatus(ctx, id, models.ScheduleActive, nil); err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	schedule.Status = models.ScheduleActive

	if err := h.scheduler.ResumeJob(ctx, schedule); err != nil {
		h.log.Errorw("failed to resume schedule timer", "schedule_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to resume schedule: " + err.Error()})
		return
	}

	h.log.Infow("resumed schedule", "schedule_id", id)
	c.JSON(http.StatusOK, schedule)
}

// DeleteSchedule removes the schedule's timer and row; cascades to runs.
// @Summary Delete schedule
// @Tags Schedules
// @Produce json
// @Param id path int true "Schedule ID"
// @Success 200 {object} MessageResponse
// @Failure 404 {object} ErrorResponse
// @Router /schedules/{id} [delete]
func (h *Handler) DeleteSchedule(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	ctx := c.Request.Context()
	schedule, err := h.store.FindScheduleByID(ctx, id)
	if err != nil {
		h.handleLookupError(c, err, "schedule", id)
		return
	}

	h.scheduler.RemoveJob(schedule)

	if err := h.store.DeleteSchedule(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "schedule not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	h.log.Infow("deleted schedule", "schedule_id", id)
	c.JSON(http.StatusOK, MessageResponse{Message: "schedule deleted"})
}
