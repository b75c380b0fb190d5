package admin

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/olive-green/api-scheduler/internal/database/models"
	"github.com/olive-green/api-scheduler/internal/store"
)

// CreateTarget registers a new HTTP endpoint specification.
// @Summary Create target
// @Tags Targets
// @Accept json
// @Produce json
// @Param target body CreateTargetRequest true "Target"
// @Success 201 {object} models.Target
// @Failure 400 {object} ErrorResponse
// @Router /targets [post]
func (h *Handler) CreateTarget(c *gin.Context) {
	var req CreateTargetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	if !req.Method.Valid() {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid method"})
		return
	}

	target := &models.Target{
		Name:    req.Name,
		URL:     req.URL,
		Method:  req.Method,
		Headers: req.Headers,
		Body:    req.Body,
	}
	if err := h.store.InsertTarget(c.Request.Context(), target); err != nil {
		h.handleWriteError(c, err, req.Name)
		return
	}

	h.log.Infow("created target", "target_id", target.ID, "name", target.Name)
	c.JSON(http.StatusCreated, target)
}

// ListTargets returns every registered target.
// @Summary List targets
// @Tags Targets
// @Produce json
// @Success 200 {array} models.Target
// @Router /targets [get]
func (h *Handler) ListTargets(c *gin.Context) {
	targets, err := h.store.ListTargets(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, targets)
}

// GetTarget returns one target by id.
// @Summary Get target
// @Tags Targets
// @Produce json
// @Param id path int true "Target ID"
// @Success 200 {object} models.Target
// @Failure 404 {object} ErrorResponse
// @Router /targets/{id} [get]
func (h *Handler) GetTarget(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	target, err := h.store.FindTargetByID(c.Request.Context(), id)
	if err != nil {
		h.handleLookupError(c, err, "target", id)
		return
	}
	c.JSON(http.StatusOK, target)
}

// UpdateTarget updates the fields present in the request body.
// @Summary Update target
// @Tags Targets
// @Accept json
// @Produce json
// @Param id path int true "Target ID"
// @Param target body UpdateTargetRequest true "Fields to update"
// @Success 200 {object} models.Target
// @Failure 404 {object} ErrorResponse
// @Router /targets/{id} [put]
func (h *Handler) UpdateTarget(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	var req UpdateTargetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	target, err := h.store.FindTargetByID(c.Request.Context(), id)
	if err != nil {
		h.handleLookupError(c, err, "target", id)
		return
	}

	if req.Name != nil {
		target.Name = *req.Name
	}
	if req.URL != nil {
		target.URL = *req.URL
	}
	if req.Method != nil {
		if !req.Method.Valid() {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid method"})
			return
		}
		target.Method = *req.Method
	}
	if req.Headers != nil {
		target.Headers = req.Headers
	}
	if req.Body != nil {
		target.Body = req.Body
	}

	if err := h.store.UpdateTarget(c.Request.Context(), target); err != nil {
		h.handleWriteError(c, err, target.Name)
		return
	}

	h.log.Infow("updated target", "target_id", target.ID)
	c.JSON(http.StatusOK, target)
}

// DeleteTarget removes a target; cascades to dependent schedules.
// @Summary Delete target
// @Tags Targets
// @Produce json
// @Param id path int true "Target ID"
// @Success 200 {object} MessageResponse
// @Failure 404 {object} ErrorResponse
// @Router /targets/{id} [delete]
func (h *Handler) DeleteTarget(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	if err := h.store.DeleteTarget(c.Request.Context(), id); err != nil {
		h.handleLookupError(c, err, "target", id)
		return
	}

	h.log.Infow("deleted target", "target_id", id)
	c.JSON(http.StatusOK, MessageResponse{Message: "target deleted"})
}

func parseID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return 0, errors.New("invalid id")
	}
	return uint(id), nil
}

func (h *Handler) handleLookupError(c *gin.Context, err error, kind string, id uint) {
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: kind + " not found"})
		return
	}
	h.log.Errorw("store lookup failed", "kind", kind, "id", id, "error", err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
}

func (h *Handler) handleWriteError(c *gin.Context, err error, name string) {
	switch {
	case errors.Is(err, store.ErrDuplicateName):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "name '" + name + "' already exists"})
	case errors.Is(err, store.ErrForeignKeyViolation):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "referenced record does not exist"})
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "not found"})
	default:
		h.log.Errorw("store write failed", "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
	}
}
