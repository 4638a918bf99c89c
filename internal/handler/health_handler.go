// internal/handler/health_handler.go
package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"rf-serial-service/internal/config"
	"rf-serial-service/internal/model"
	"rf-serial-service/internal/service"
	"rf-serial-service/internal/utils"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	manager   *service.ConnectionManager
	config    *config.Config
	logger    *utils.ServiceLogger
	startTime time.Time
}

// HealthResponse represents the health check payload
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Service   string                 `json:"service"`
	Version   string                 `json:"version"`
	Uptime    string                 `json:"uptime"`
	Checks    map[string]CheckResult `json:"checks"`
}

// CheckResult represents a single health check outcome
type CheckResult struct {
	Status  string                 `json:"status"`
	Message string                 `json:"message,omitempty"`
	Data    map[string]interface{} `json:"data,omitempty"`
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(manager *service.ConnectionManager, cfg *config.Config, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		manager:   manager,
		config:    cfg,
		logger:    utils.NewServiceLogger(logger, "health-handler"),
		startTime: time.Now(),
	}
}

// RegisterRoutes registers health check routes
func (h *HealthHandler) RegisterRoutes(router *gin.Engine) {
	router.GET("/health", h.HealthCheck)
	router.GET("/ready", h.ReadinessCheck)
	router.GET("/live", h.LivenessCheck)
}

// HealthCheck reports overall service health. A down serial link does
// not make the service unhealthy; it is reported as a check so
// dashboards can distinguish the two.
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	info := h.manager.Info()

	health := &HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
		Service:   h.config.App.Name,
		Version:   h.config.App.Version,
		Uptime:    time.Since(h.startTime).String(),
		Checks:    make(map[string]CheckResult),
	}

	linkCheck := CheckResult{
		Status: "healthy",
		Data: map[string]interface{}{
			"port":      info.Port,
			"baud_rate": info.BaudRate,
			"status":    info.Status,
		},
	}
	switch info.Status {
	case model.StatusConnected:
		linkCheck.Message = "Serial link up"
	case model.StatusError:
		linkCheck.Status = "degraded"
		linkCheck.Message = info.LastError
	default:
		linkCheck.Status = "degraded"
		linkCheck.Message = "Serial link down"
	}
	health.Checks["serial_link"] = linkCheck

	c.JSON(http.StatusOK, health)
}

// ReadinessCheck reports whether the service can accept traffic
func (h *HealthHandler) ReadinessCheck(c *gin.Context) {
	utils.SuccessResponse(c, http.StatusOK, "Ready", gin.H{
		"connected": h.manager.IsConnected(),
	})
}

// LivenessCheck reports process liveness
func (h *HealthHandler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "alive"})
}
