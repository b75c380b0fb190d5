package admin

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/olive-green/api-scheduler/internal/database/models"
	"github.com/olive-green/api-scheduler/internal/httpx"
	"github.com/olive-green/api-scheduler/internal/logger"
	"github.com/olive-green/api-scheduler/internal/registry"
	"github.com/olive-green/api-scheduler/internal/scheduler"
	"github.com/olive-green/api-scheduler/internal/store"
)

func newTestHandler(t *testing.T) (*Handler, store.Store) {
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Target{}, &models.Schedule{}, &models.Run{}, &models.Attempt{}))

	st := store.New(db)
	exec := httpx.New(2*time.Second, 2*time.Second)
	reg := registry.New(60*time.Second, 10, logger.New("error"))
	svc := scheduler.New(st, exec, reg, logger.New("error"))
	svc.Start()
	t.Cleanup(func() { _ = svc.Shutdown(context.Background()) })

	return NewHandler(st, svc, logger.New("error")), st
}

func newTestRouter(h *Handler) *gin.Engine {
	router := gin.New()
	targets := router.Group("/targets")
	{
		targets.POST("", h.CreateTarget)
		targets.GET("", h.ListTargets)
		targets.GET("/:id", h.GetTarget)
		targets.PUT("/:id", h.UpdateTarget)
		targets.DELETE("/:id", h.DeleteTarget)
	}
	schedules := router.Group("/schedules")
	{
		schedules.POST("", h.CreateSchedule)
		schedules.GET("", h.ListSchedules)
		schedules.GET("/:id", h.GetSchedule)
		schedules.PUT("/:id", h.UpdateSchedule)
		schedules.DELETE("/:id", h.DeleteSchedule)
		schedules.POST("/:id/pause", h.PauseSchedule)
		schedules.POST("/:id/resume", h.ResumeSchedule)
	}
	runs := router.Group("/runs")
	{
		runs.GET("", h.ListRuns)
		runs.GET("/:id", h.GetRun)
	}
	metricsRoutes := router.Group("/metrics")
	{
		metricsRoutes.GET("/system", h.GetSystemMetrics)
		metricsRoutes.GET("/schedules", h.GetScheduleMetrics)
	}
	return router
}

func doRequest(router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Buffer
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewBuffer(raw)
	} else {
		reader = bytes.NewBuffer(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCreateTarget_Succeeds(t *testing.T) {
	h, _ := newTestHandler(t)
	router := newTestRouter(h)

	w := doRequest(router, http.MethodPost, "/targets", CreateTargetRequest{
		Name: "payments-health", URL: "https://example.com/health", Method: models.MethodGET,
	})

	require.Equal(t, http.StatusCreated, w.Code)
	var target models.Target
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &target))
	assert.Equal(t, "payments-health", target.Name)
	assert.NotZero(t, target.ID)
}

func TestCreateTarget_RejectsInvalidMethod(t *testing.T) {
	h, _ := newTestHandler(t)
	router := newTestRouter(h)

	w := doRequest(router, http.MethodPost, "/targets", CreateTargetRequest{
		Name: "bad", URL: "https://example.com", Method: models.HTTPMethod("TRACE"),
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateTarget_RejectsDuplicateName(t *testing.T) {
	h, _ := newTestHandler(t)
	router := newTestRouter(h)

	req := CreateTargetRequest{Name: "dup", URL: "https://example.com", Method: models.MethodGET}
	require.Equal(t, http.StatusCreated, doRequest(router, http.MethodPost, "/targets", req).Code)

	w := doRequest(router, http.MethodPost, "/targets", req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetTarget_NotFound(t *testing.T) {
	h, _ := newTestHandler(t)
	router := newTestRouter(h)

	w := doRequest(router, http.MethodGet, "/targets/999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateTarget_AppliesPartialFields(t *testing.T) {
	h, st := newTestHandler(t)
	router := newTestRouter(h)
	ctx := context.Background()

	target := &models.Target{Name: "orig", URL: "https://example.com", Method: models.MethodGET}
	require.NoError(t, st.InsertTarget(ctx, target))

	newName := "renamed"
	w := doRequest(router, http.MethodPut, "/targets/1", UpdateTargetRequest{Name: &newName})
	require.Equal(t, http.StatusOK, w.Code)

	updated, err := st.FindTargetByID(ctx, target.ID)
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Name)
	assert.Equal(t, "https://example.com", updated.URL)
}

func TestDeleteTarget_Succeeds(t *testing.T) {
	h, st := newTestHandler(t)
	router := newTestRouter(h)
	ctx := context.Background()

	target := &models.Target{Name: "to-delete", URL: "https://example.com", Method: models.MethodGET}
	require.NoError(t, st.InsertTarget(ctx, target))

	w := doRequest(router, http.MethodDelete, "/targets/1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	_, err := st.FindTargetByID(ctx, target.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestCreateSchedule_RejectsMissingTarget(t *testing.T) {
	h, _ := newTestHandler(t)
	router := newTestRouter(h)

	w := doRequest(router, http.MethodPost, "/schedules", CreateScheduleRequest{
		Name: "s1", TargetID: 42, ScheduleType: models.ScheduleInterval, IntervalSeconds: 60,
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateSchedule_WindowRequiresDuration(t *testing.T) {
	h, st := newTestHandler(t)
	router := newTestRouter(h)
	ctx := context.Background()

	target := &models.Target{Name: "t", URL: "https://example.com", Method: models.MethodGET}
	require.NoError(t, st.InsertTarget(ctx, target))

	w := doRequest(router, http.MethodPost, "/schedules", CreateScheduleRequest{
		Name: "s1", TargetID: target.ID, ScheduleType: models.ScheduleWindow, IntervalSeconds: 60,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateSchedule_Succeeds(t *testing.T) {
	h, st := newTestHandler(t)
	router := newTestRouter(h)
	ctx := context.Background()

	target := &models.Target{Name: "t", URL: "https://example.com", Method: models.MethodGET}
	require.NoError(t, st.InsertTarget(ctx, target))

	w := doRequest(router, http.MethodPost, "/schedules", CreateScheduleRequest{
		Name: "s1", TargetID: target.ID, ScheduleType: models.ScheduleInterval, IntervalSeconds: 60,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var schedule models.Schedule
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &schedule))
	assert.Equal(t, models.ScheduleActive, schedule.Status)
}

func TestPauseAndResumeSchedule(t *testing.T) {
	h, st := newTestHandler(t)
	router := newTestRouter(h)
	ctx := context.Background()

	target := &models.Target{Name: "t", URL: "https://example.com", Method: models.MethodGET}
	require.NoError(t, st.InsertTarget(ctx, target))
	schedule := &models.Schedule{
		Name: "s1", TargetID: target.ID, ScheduleType: models.ScheduleInterval,
		IntervalSeconds: 60, Status: models.ScheduleActive,
	}
	require.NoError(t, st.InsertSchedule(ctx, schedule))
	require.NoError(t, h.scheduler.AddJob(ctx, schedule))

	w := doRequest(router, http.MethodPost, "/schedules/1/pause", nil)
	require.Equal(t, http.StatusOK, w.Code)
	stored, err := st.FindScheduleByID(ctx, schedule.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SchedulePaused, stored.Status)

	w = doRequest(router, http.MethodPost, "/schedules/1/pause", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(router, http.MethodPost, "/schedules/1/resume", nil)
	require.Equal(t, http.StatusOK, w.Code)
	stored, err = st.FindScheduleByID(ctx, schedule.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ScheduleActive, stored.Status)
}

func TestDeleteSchedule_RemovesTimerAndRow(t *testing.T) {
	h, st := newTestHandler(t)
	router := newTestRouter(h)
	ctx := context.Background()

	target := &models.Target{Name: "t", URL: "https://example.com", Method: models.MethodGET}
	require.NoError(t, st.InsertTarget(ctx, target))
	schedule := &models.Schedule{
		Name: "s1", TargetID: target.ID, ScheduleType: models.ScheduleInterval,
		IntervalSeconds: 60, Status: models.ScheduleActive,
	}
	require.NoError(t, st.InsertSchedule(ctx, schedule))
	require.NoError(t, h.scheduler.AddJob(ctx, schedule))

	w := doRequest(router, http.MethodDelete, "/schedules/1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	_, err := st.FindScheduleByID(ctx, schedule.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestListRuns_FiltersByScheduleAndStatus(t *testing.T) {
	h, st := newTestHandler(t)
	router := newTestRouter(h)
	ctx := context.Background()

	target := &models.Target{Name: "t", URL: "https://example.com", Method: models.MethodGET}
	require.NoError(t, st.InsertTarget(ctx, target))
	schedule := &models.Schedule{Name: "s1", TargetID: target.ID, ScheduleType: models.ScheduleInterval, IntervalSeconds: 60}
	require.NoError(t, st.InsertSchedule(ctx, schedule))

	statusCode := 200
	run := &models.Run{ScheduleID: schedule.ID, StartedAt: time.Now().UTC(), Status: models.RunSuccess, StatusCode: &statusCode}
	require.NoError(t, st.InsertRun(ctx, run))

	w := doRequest(router, http.MethodGet, "/runs?schedule_id=1&status=SUCCESS", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var runs []models.Run
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &runs))
	require.Len(t, runs, 1)

	w = doRequest(router, http.MethodGet, "/runs?limit=0", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetRun_ReturnsAttempts(t *testing.T) {
	h, st := newTestHandler(t)
	router := newTestRouter(h)
	ctx := context.Background()

	target := &models.Target{Name: "t", URL: "https://example.com", Method: models.MethodGET}
	require.NoError(t, st.InsertTarget(ctx, target))
	schedule := &models.Schedule{Name: "s1", TargetID: target.ID, ScheduleType: models.ScheduleInterval, IntervalSeconds: 60}
	require.NoError(t, st.InsertSchedule(ctx, schedule))
	run := &models.Run{ScheduleID: schedule.ID, StartedAt: time.Now().UTC(), Status: models.RunSuccess}
	require.NoError(t, st.InsertRun(ctx, run))
	require.NoError(t, st.InsertAttempt(ctx, &models.Attempt{RunID: run.ID, AttemptNumber: 1}))

	w := doRequest(router, http.MethodGet, "/runs/1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var got models.Run
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got.Attempts, 1)
}

func TestGetSystemMetrics_AggregatesCounts(t *testing.T) {
	h, st := newTestHandler(t)
	router := newTestRouter(h)
	ctx := context.Background()

	target := &models.Target{Name: "t", URL: "https://example.com", Method: models.MethodGET}
	require.NoError(t, st.InsertTarget(ctx, target))
	schedule := &models.Schedule{
		Name: "s1", TargetID: target.ID, ScheduleType: models.ScheduleInterval,
		IntervalSeconds: 60, Status: models.ScheduleActive,
	}
	require.NoError(t, st.InsertSchedule(ctx, schedule))
	statusCode := 200
	run := &models.Run{ScheduleID: schedule.ID, StartedAt: time.Now().UTC(), Status: models.RunSuccess, StatusCode: &statusCode, LatencyMS: ptrFloat(12.5)}
	require.NoError(t, st.InsertRun(ctx, run))

	w := doRequest(router, http.MethodGet, "/metrics/system", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var got SystemMetrics
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, int64(1), got.TotalTargets)
	assert.Equal(t, int64(1), got.TotalSchedules)
	assert.Equal(t, int64(1), got.ActiveSchedules)
	assert.Equal(t, int64(1), got.TotalRuns)
	assert.Equal(t, 100.0, got.SuccessRate)
}

func TestGetScheduleMetrics_PerSchedule(t *testing.T) {
	h, st := newTestHandler(t)
	router := newTestRouter(h)
	ctx := context.Background()

	target := &models.Target{Name: "t", URL: "https://example.com", Method: models.MethodGET}
	require.NoError(t, st.InsertTarget(ctx, target))
	schedule := &models.Schedule{Name: "s1", TargetID: target.ID, ScheduleType: models.ScheduleInterval, IntervalSeconds: 60}
	require.NoError(t, st.InsertSchedule(ctx, schedule))
	run := &models.Run{ScheduleID: schedule.ID, StartedAt: time.Now().UTC(), Status: models.RunSuccess}
	require.NoError(t, st.InsertRun(ctx, run))

	w := doRequest(router, http.MethodGet, "/metrics/schedules", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var got []ScheduleMetrics
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "s1", got[0].ScheduleName)
	assert.Equal(t, int64(1), got[0].TotalRuns)
}

func ptrFloat(v float64) *float64 { return &v }
