package api

import (
	"net/http"

	"hexagonal/api/health"
	"hexagonal/api/middleware"
	"hexagonal/api/order"
	"hexagonal/api/user"
	"hexagonal/config"
	"hexagonal/pkg/metrics"

	"github.com/gin-gonic/gin"
)

// Router Route configuration
type Router struct {
	engine           *gin.Engine
	config           *config.Config
	healthController *health.Controller
	userController   *user.Controller
	orderController  *order.Controller
}

// NewRouter Create route configuration
func NewRouter(
	cfg *config.Config,
	healthController *health.Controller,
	userController *user.Controller,
	orderController *order.Controller,
) *Router {
	if cfg.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	// 顺序有关：请求 ID 最先生成，恢复中间件包住其余中间件
	engine.Use(middleware.RequestIDMiddleware())
	engine.Use(middleware.RecoveryMiddleware())
	engine.Use(middleware.LoggingMiddleware())
	if cfg.Metrics.Enabled {
		engine.Use(middleware.MetricsMiddleware())
	}
	engine.Use(middleware.CORSMiddleware(&cfg.CORS))
	engine.Use(middleware.RateLimitMiddleware(&cfg.Server.RateLimit))

	return &Router{
		engine:           engine,
		config:           cfg,
		healthController: healthController,
		userController:   userController,
		orderController:  orderController,
	}
}

// SetupRoutes Set up all routes
func (r *Router) SetupRoutes() {
	apiGroup := r.engine.Group("/api/v1")
	{
		r.healthController.RegisterRoutes(apiGroup)
		r.userController.RegisterRoutes(apiGroup)
		r.orderController.RegisterRoutes(apiGroup)
	}

	if r.config.Metrics.Enabled {
		r.engine.GET(r.config.Metrics.Path, gin.WrapH(metrics.Handler()))
	}

	r.engine.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"name":    r.config.App.Name,
			"version": r.config.App.Version,
			"env":     r.config.App.Env,
			"health":  "/api/v1/health",
			"metrics": r.config.Metrics.Path,
		})
	})
}

// GetEngine Get Gin engine
func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}
