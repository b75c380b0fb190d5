// Package admin implements the REST administration surface for targets,
// schedules, runs and metrics: the external collaborator that mutates the
// Store and then calls into the Scheduler Service to keep its timers in
// sync.
package admin

import (
	"github.com/olive-green/api-scheduler/internal/logger"
	"github.com/olive-green/api-scheduler/internal/scheduler"
	"github.com/olive-green/api-scheduler/internal/store"
)

// Handler serves the /targets, /schedules, /runs and /metrics routes.
type Handler struct {
	store     store.Store
	scheduler *scheduler.Service
	log       *logger.Logger
}

// NewHandler builds a Handler over the given Store and Scheduler Service.
func NewHandler(st store.Store, svc *scheduler.Service, log *logger.Logger) *Handler {
	return &Handler{store: st, scheduler: svc, log: log}
}
