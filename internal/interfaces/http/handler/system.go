package handler

import (
	"errors"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/crosslist/backend/internal/infrastructure/scheduler"
)

// EngineScheduler is the scheduler surface the system handler exposes
type EngineScheduler interface {
	GetStatus() map[string]any
	TriggerManualRun() error
}

// DBPinger reports database connectivity
type DBPinger interface {
	Ping() error
}

// SystemHandler handles health and engine control API endpoints
type SystemHandler struct {
	BaseHandler
	startTime time.Time
	db        DBPinger
	decay     EngineScheduler
	reconcile EngineScheduler
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(db DBPinger, decay, reconcile EngineScheduler) *SystemHandler {
	return &SystemHandler{
		startTime: time.Now(),
		db:        db,
		decay:     decay,
		reconcile: reconcile,
	}
}

// RegisterRoutes registers system routes
func (h *SystemHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/health", h.Health)

	engines := rg.Group("/engines")
	{
		engines.GET("/status", h.EngineStatus)
		engines.POST("/decay/run", h.TriggerDecay)
		engines.POST("/reconcile/run", h.TriggerReconcile)
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	GoVersion string `json:"go_version"`
	Uptime    string `json:"uptime"`
	Database  string `json:"database"`
}

// Health reports service and database health
func (h *SystemHandler) Health(c *gin.Context) {
	resp := HealthResponse{
		Status:    "ok",
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
		Database:  "ok",
	}

	if h.db != nil {
		if err := h.db.Ping(); err != nil {
			resp.Status = "degraded"
			resp.Database = "unreachable"
		}
	}

	h.Success(c, resp)
}

// EngineStatus reports the decay and reconciliation engine schedules
func (h *SystemHandler) EngineStatus(c *gin.Context) {
	status := map[string]any{}
	if h.decay != nil {
		status["decay"] = h.decay.GetStatus()
	}
	if h.reconcile != nil {
		status["reconcile"] = h.reconcile.GetStatus()
	}
	h.Success(c, status)
}

// TriggerDecay kicks off a decay cycle outside the schedule
func (h *SystemHandler) TriggerDecay(c *gin.Context) {
	h.trigger(c, h.decay, "decay")
}

// TriggerReconcile kicks off a reconciliation pass outside the schedule
func (h *SystemHandler) TriggerReconcile(c *gin.Context) {
	h.trigger(c, h.reconcile, "reconcile")
}

func (h *SystemHandler) trigger(c *gin.Context, s EngineScheduler, name string) {
	if s == nil {
		h.NotFound(c, "Engine is not configured")
		return
	}

	if err := s.TriggerManualRun(); err != nil {
		switch {
		case errors.Is(err, scheduler.ErrSchedulerNotRunning):
			h.Conflict(c, "Engine is not running")
		case errors.Is(err, scheduler.ErrRunInProgress):
			h.Conflict(c, "A run is already in progress")
		default:
			h.InternalError(c, "Failed to trigger run")
		}
		return
	}

	h.Success(c, gin.H{"engine": name, "triggered": true})
}
