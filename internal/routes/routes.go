// internal/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"rf-serial-service/internal/config"
	"rf-serial-service/internal/handler"
	"rf-serial-service/internal/middleware"
	"rf-serial-service/internal/service"
	"rf-serial-service/internal/utils"
)

// Router holds all dependencies for routing
type Router struct {
	config   *config.Config
	logger   *zap.Logger
	manager  *service.ConnectionManager
	eventBus *handler.EventBus
}

// NewRouter creates a new router instance
func NewRouter(
	config *config.Config,
	logger *zap.Logger,
	manager *service.ConnectionManager,
	eventBus *handler.EventBus,
) *Router {
	return &Router{
		config:   config,
		logger:   logger,
		manager:  manager,
		eventBus: eventBus,
	}
}

// SetupRouter creates and configures the Gin router
func (r *Router) SetupRouter() *gin.Engine {
	if r.config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()

	r.addMiddleware(router)
	r.addRoutes(router)

	return router
}

// addMiddleware adds middleware to the router
func (r *Router) addMiddleware(router *gin.Engine) {
	router.Use(middleware.RecoveryMiddleware(r.logger))
	router.Use(middleware.RequestIDMiddleware())

	serviceLogger := utils.NewServiceLogger(r.logger, "http-server")
	router.Use(middleware.LoggingMiddleware(serviceLogger))

	router.Use(middleware.CORSMiddleware(&r.config.Server))

	r.logger.Info("Middleware configured")
}

// addRoutes sets up all application routes
func (r *Router) addRoutes(router *gin.Engine) {
	healthHandler := handler.NewHealthHandler(r.manager, r.config, r.logger)
	connectionHandler := handler.NewConnectionHandler(r.manager, r.logger)
	transmitHandler := handler.NewTransmitHandler(r.manager, &r.config.Values, r.logger)
	portHandler := handler.NewPortHandler(r.logger)
	wsHandler := handler.NewWebSocketHandler(r.manager, r.eventBus, r.logger)

	// Health check routes
	healthHandler.RegisterRoutes(router)

	// API v1 routes
	apiV1 := router.Group("/api/v1")
	connectionHandler.RegisterRoutes(apiV1)
	transmitHandler.RegisterRoutes(apiV1)
	portHandler.RegisterRoutes(apiV1)

	// WebSocket routes
	ws := router.Group("/ws")
	wsHandler.RegisterRoutes(ws)

	r.logger.Info("All routes configured successfully")
}
