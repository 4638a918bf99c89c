// internal/handler/transmit_handler.go
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"rf-serial-service/internal/config"
	"rf-serial-service/internal/service"
	"rf-serial-service/internal/utils"
	"rf-serial-service/internal/validator"
)

// TransmitHandler handles value validation and transmission requests
type TransmitHandler struct {
	manager      *service.ConnectionManager
	validator    *validator.Validator
	defaultValue int
	logger       *utils.ServiceLogger
}

// NewTransmitHandler creates a new transmit handler
func NewTransmitHandler(manager *service.ConnectionManager, cfg *config.ValuesConfig, logger *zap.Logger) *TransmitHandler {
	return &TransmitHandler{
		manager:      manager,
		validator:    validator.New(cfg.Min, cfg.Max),
		defaultValue: cfg.Default,
		logger:       utils.NewServiceLogger(logger, "transmit-handler"),
	}
}

// RegisterRoutes registers transmission routes
func (h *TransmitHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/send", h.Send)
	router.POST("/validate", h.Validate)
}

// SendRequest carries the raw operator input. The value is text, not
// a number: validation messages must reflect exactly what was typed.
type SendRequest struct {
	Value string `json:"value"`
}

// Send validates the input and transmits it to the RF transceiver.
// Empty input transmits the configured default value.
func (h *TransmitHandler) Send(c *gin.Context) {
	var req SendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	result := h.validator.Validate(req.Value)
	if !result.IsValid {
		utils.ValidationErrorResponse(c, result.Message)
		return
	}

	value, err := h.validator.ParseValue(req.Value, h.defaultValue)
	if err != nil {
		utils.ValidationErrorResponse(c, "Invalid: Numbers only")
		return
	}

	// Send exactly once; the manager re-checks the link under its own
	// lock, so the status code must come from the result, not a
	// separate connectivity probe
	sendResult := h.manager.Send(value)
	if !sendResult.Success {
		h.logger.Warn("Transmission failed",
			zap.Int("value", value),
			zap.String("message", sendResult.Message),
		)
		statusCode := http.StatusBadGateway
		if sendResult.Message == service.NotConnectedMessage {
			statusCode = http.StatusConflict
		}
		utils.ErrorResponse(c, statusCode, sendResult.Message, nil)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, sendResult.Message, sendResult)
}

// Validate runs input validation without touching the serial link.
// UIs call this per keystroke.
func (h *TransmitHandler) Validate(c *gin.Context) {
	var req SendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	result := h.validator.Validate(req.Value)
	utils.SuccessResponse(c, http.StatusOK, "Validation result", result)
}
