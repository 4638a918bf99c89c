// internal/handler/port_handler.go
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"rf-serial-service/internal/protocol"
	"rf-serial-service/internal/utils"
)

// PortHandler handles serial port enumeration requests
type PortHandler struct {
	logger *utils.ServiceLogger
}

// NewPortHandler creates a new port handler
func NewPortHandler(logger *zap.Logger) *PortHandler {
	return &PortHandler{
		logger: utils.NewServiceLogger(logger, "port-handler"),
	}
}

// RegisterRoutes registers port routes
func (h *PortHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/ports", h.ListPorts)
}

// ListPorts returns the serial ports the host OS currently reports
func (h *PortHandler) ListPorts(c *gin.Context) {
	ports, err := protocol.ListPorts()
	if err != nil {
		h.logger.Error("Failed to list serial ports", zap.Error(err))
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to list serial ports", err)
		return
	}

	if ports == nil {
		ports = []string{}
	}

	utils.SuccessResponse(c, http.StatusOK, "Available serial ports", gin.H{"ports": ports})
}
