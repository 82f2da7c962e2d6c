package health

import (
	"context"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"hexagonal/config"
	"hexagonal/infrastructure/persistence/gormdb"
	"hexagonal/infrastructure/persistence/gormdb/po"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const checkTimeout = 2 * time.Second

// Controller Health check controller
type Controller struct {
	config    *config.Config
	db        *gorm.DB
	outbox    *gormdb.OutboxRepository
	startTime time.Time
}

// NewController Create health check controller
// db 与 outbox 都可以为 nil，对应检查项会被跳过
func NewController(cfg *config.Config, db *gorm.DB, outbox *gormdb.OutboxRepository) *Controller {
	return &Controller{
		config:    cfg,
		db:        db,
		outbox:    outbox,
		startTime: time.Now(),
	}
}

// RegisterRoutes Register health check routes
func (c *Controller) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/health", c.Health)
	router.GET("/health/live", c.Liveness)
	router.GET("/health/ready", c.Readiness)
}

// HealthResponse Health check response
type HealthResponse struct {
	Status    string           `json:"status"`
	Version   string           `json:"version"`
	Uptime    string           `json:"uptime"`
	Timestamp string           `json:"timestamp"`
	Checks    map[string]Check `json:"checks,omitempty"`
	System    *SystemInfo      `json:"system,omitempty"`
}

// Check Check item
type Check struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Latency string `json:"latency,omitempty"`
}

// SystemInfo System information
type SystemInfo struct {
	GoVersion    string `json:"go_version"`
	NumCPU       int    `json:"num_cpu"`
	NumGoroutine int    `json:"num_goroutine"`
	MemAlloc     uint64 `json:"mem_alloc_bytes"`
}

// Health Complete health check
func (c *Controller) Health(ctx *gin.Context) {
	reqCtx, cancel := context.WithTimeout(ctx.Request.Context(), checkTimeout)
	defer cancel()

	checks := make(map[string]Check)
	overallStatus := "healthy"

	if c.db != nil {
		dbCheck := c.checkDatabase(reqCtx)
		checks["database"] = dbCheck
		if dbCheck.Status != "healthy" {
			overallStatus = "unhealthy"
		}
	}

	// outbox 积压只降级，不判为不健康
	if c.outbox != nil {
		outboxCheck := c.checkOutbox(reqCtx)
		checks["outbox"] = outboxCheck
		if outboxCheck.Status != "healthy" && overallStatus == "healthy" {
			overallStatus = "degraded"
		}
	}

	response := HealthResponse{
		Status:    overallStatus,
		Version:   c.config.App.Version,
		Uptime:    time.Since(c.startTime).String(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
	}

	// Only expose system info in development mode
	if c.config.IsDevelopment() {
		var memStats runtime.MemStats
		runtime.ReadMemStats(&memStats)
		response.System = &SystemInfo{
			GoVersion:    runtime.Version(),
			NumCPU:       runtime.NumCPU(),
			NumGoroutine: runtime.NumGoroutine(),
			MemAlloc:     memStats.Alloc,
		}
	}

	statusCode := http.StatusOK
	if overallStatus == "unhealthy" {
		statusCode = http.StatusServiceUnavailable
	}

	ctx.JSON(statusCode, response)
}

// Liveness Liveness check (Kubernetes liveness probe)
func (c *Controller) Liveness(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}

// Readiness Readiness check (Kubernetes readiness probe)
func (c *Controller) Readiness(ctx *gin.Context) {
	if c.db != nil {
		reqCtx, cancel := context.WithTimeout(ctx.Request.Context(), checkTimeout)
		defer cancel()
		if err := gormdb.Ping(reqCtx, c.db); err != nil {
			ctx.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "not_ready",
				"message": "database not available",
			})
			return
		}
	}

	ctx.JSON(http.StatusOK, gin.H{
		"status": "ready",
	})
}

func (c *Controller) checkDatabase(ctx context.Context) Check {
	start := time.Now()
	err := gormdb.Ping(ctx, c.db)
	latency := time.Since(start)

	if err != nil {
		return Check{
			Status:  "unhealthy",
			Message: err.Error(),
			Latency: latency.String(),
		}
	}
	return Check{
		Status:  "healthy",
		Latency: latency.String(),
	}
}

func (c *Controller) checkOutbox(ctx context.Context) Check {
	pending, err := c.outbox.CountByStatus(ctx, po.EventStatusPending)
	if err != nil {
		return Check{Status: "unhealthy", Message: err.Error()}
	}
	failed, err := c.outbox.CountByStatus(ctx, po.EventStatusFailed)
	if err != nil {
		return Check{Status: "unhealthy", Message: err.Error()}
	}

	msg := fmt.Sprintf("pending=%d failed=%d", pending, failed)
	if failed > 0 {
		return Check{Status: "degraded", Message: msg}
	}
	return Check{Status: "healthy", Message: msg}
}
