// Package health exposes liveness/readiness probes for the admin surface.
package health

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/olive-green/api-scheduler/internal/logger"
	"github.com/olive-green/api-scheduler/internal/registry"
)

// Handler serves /health, /health/live and /health/ready.
type Handler struct {
	db  *gorm.DB
	reg *registry.Registry
	log *logger.Logger
}

// NewHandler builds a Handler.
func NewHandler(db *gorm.DB, reg *registry.Registry, log *logger.Logger) *Handler {
	return &Handler{db: db, reg: reg, log: log}
}

// Status is the overall health payload.
type Status struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Uptime    time.Duration          `json:"uptime"`
	Checks    map[string]CheckResult `json:"checks"`
	System    SystemInfo             `json:"system"`
}

// CheckResult is the outcome of one named health check.
type CheckResult struct {
	Status   string        `json:"status"`
	Message  string        `json:"message,omitempty"`
	Duration time.Duration `json:"duration"`
}

// SystemInfo is a snapshot of process-level resource usage.
type SystemInfo struct {
	GoVersion      string `json:"go_version"`
	NumGoroutine   int    `json:"num_goroutine"`
	NumCPU         int    `json:"num_cpu"`
	RegisteredJobs int    `json:"registered_jobs"`
}

var startTime = time.Now()

// GetHealth reports the database check alongside process info.
// @Summary Health check
// @Description Get system health with the database check and process info
// @Tags Health
// @Produce json
// @Success 200 {object} Status
// @Failure 503 {object} Status
// @Router /health [get]
func (h *Handler) GetHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	checks := map[string]CheckResult{"database": h.checkDatabase(ctx)}
	status := "healthy"
	if checks["database"].Status != "healthy" {
		status = "unhealthy"
	}

	registered := 0
	if h.reg != nil {
		registered = len(h.reg.List())
	}

	body := Status{
		Status:    status,
		Timestamp: time.Now(),
		Uptime:    time.Since(startTime),
		Checks:    checks,
		System: SystemInfo{
			GoVersion:      runtime.Version(),
			NumGoroutine:   runtime.NumGoroutine(),
			NumCPU:         runtime.NumCPU(),
			RegisteredJobs: registered,
		},
	}

	code := http.StatusOK
	if status != "healthy" {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, body)
}

// GetLiveness is a bare liveness probe for orchestrators.
// @Summary Liveness check
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health/live [get]
func (h *Handler) GetLiveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "alive", "timestamp": time.Now()})
}

// GetReadiness checks the database only; that's the one dependency the
// admin surface genuinely cannot serve requests without.
// @Summary Readiness check
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /health/ready [get]
func (h *Handler) GetReadiness(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	if h.checkDatabase(ctx).Status == "healthy" {
		c.JSON(http.StatusOK, gin.H{"status": "ready", "timestamp": time.Now()})
		return
	}
	c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "timestamp": time.Now()})
}

func (h *Handler) checkDatabase(ctx context.Context) CheckResult {
	start := time.Now()
	if h.db == nil {
		return CheckResult{Status: "unhealthy", Message: "database not initialized", Duration: time.Since(start)}
	}
	sqlDB, err := h.db.DB()
	if err != nil {
		return CheckResult{Status: "unhealthy", Message: err.Error(), Duration: time.Since(start)}
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return CheckResult{Status: "unhealthy", Message: err.Error(), Duration: time.Since(start)}
	}
	return CheckResult{Status: "healthy", Duration: time.Since(start)}
}
