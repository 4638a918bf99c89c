// internal/handler/connection_handler.go
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"rf-serial-service/internal/service"
	"rf-serial-service/internal/utils"
)

// ConnectionHandler handles serial connection lifecycle requests
type ConnectionHandler struct {
	manager *service.ConnectionManager
	logger  *utils.ServiceLogger
}

// NewConnectionHandler creates a new connection handler
func NewConnectionHandler(manager *service.ConnectionManager, logger *zap.Logger) *ConnectionHandler {
	return &ConnectionHandler{
		manager: manager,
		logger:  utils.NewServiceLogger(logger, "connection-handler"),
	}
}

// RegisterRoutes registers connection routes
func (h *ConnectionHandler) RegisterRoutes(router *gin.RouterGroup) {
	connection := router.Group("/connection")
	{
		connection.GET("", h.GetConnection)
		connection.POST("/connect", h.Connect)
		connection.POST("/disconnect", h.Disconnect)
		connection.POST("/retry", h.Retry)
	}
}

// ConnectRequest optionally selects a different port before connecting
type ConnectRequest struct {
	Port string `json:"port"`
}

// GetConnection returns the current connection snapshot
func (h *ConnectionHandler) GetConnection(c *gin.Context) {
	utils.SuccessResponse(c, http.StatusOK, "Connection status", h.manager.Info())
}

// Connect opens the serial link. A port in the request body switches
// the manager to that port first, dropping any open handle.
func (h *ConnectionHandler) Connect(c *gin.Context) {
	var req ConnectRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
			return
		}
	}

	if req.Port != "" {
		h.manager.Disconnect()
		h.manager.SetPort(req.Port)
		h.logger.Info("Switching serial port", zap.String("port", req.Port))
	}

	if err := h.manager.Connect(); err != nil {
		utils.ErrorResponse(c, http.StatusBadGateway, h.manager.LastError(), err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Connected", h.manager.Info())
}

// Disconnect releases the serial port
func (h *ConnectionHandler) Disconnect(c *gin.Context) {
	h.manager.Disconnect()
	utils.SuccessResponse(c, http.StatusOK, "Disconnected", h.manager.Info())
}

// Retry drops the current handle and reconnects
func (h *ConnectionHandler) Retry(c *gin.Context) {
	if err := h.manager.Retry(); err != nil {
		utils.ErrorResponse(c, http.StatusBadGateway, h.manager.LastError(), err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Reconnected", h.manager.Info())
}
