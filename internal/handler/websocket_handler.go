// internal/handler/websocket_handler.go
package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"rf-serial-service/internal/model"
	"rf-serial-service/internal/service"
	"rf-serial-service/internal/utils"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
)

// WebSocketHandler streams connection status transitions to clients
// in real time
type WebSocketHandler struct {
	upgrader websocket.Upgrader
	clients  *ClientRegistry
	manager  *service.ConnectionManager
	eventBus *EventBus
	logger   *utils.ServiceLogger
}

// NewWebSocketHandler creates a new WebSocket handler subscribed to
// the status event bus
func NewWebSocketHandler(manager *service.ConnectionManager, eventBus *EventBus, logger *zap.Logger) *WebSocketHandler {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			// In production, implement proper origin checking
			return true
		},
	}

	handler := &WebSocketHandler{
		upgrader: upgrader,
		clients:  NewClientRegistry(),
		manager:  manager,
		eventBus: eventBus,
		logger:   utils.NewServiceLogger(logger, "websocket-handler"),
	}

	go handler.consumeEvents(eventBus.Subscribe())

	return handler
}

// RegisterRoutes registers WebSocket routes
func (h *WebSocketHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/status", h.HandleStatusConnection)
}

// HandleStatusConnection upgrades the request and streams status
// events. The current connection snapshot is sent immediately so
// clients render without waiting for the next transition.
func (h *WebSocketHandler) HandleStatusConnection(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("Failed to upgrade WebSocket connection", zap.Error(err))
		return
	}

	client := &Client{
		ID:          uuid.New().String(),
		Connection:  conn,
		Send:        make(chan []byte, 64),
		UserAgent:   c.Request.UserAgent(),
		RemoteAddr:  c.Request.RemoteAddr,
		ConnectedAt: time.Now(),
	}

	h.clients.Register(client)
	h.logger.Info("Status WebSocket client connected",
		zap.String("client_id", client.ID),
		zap.String("remote_addr", client.RemoteAddr),
		zap.Int("client_count", h.clients.Count()),
	)

	h.sendSnapshot(client)

	go h.handleClientRead(client)
	go h.handleClientWrite(client)
}

// sendSnapshot queues the current connection state for a new client
func (h *WebSocketHandler) sendSnapshot(client *Client) {
	info := h.manager.Info()
	event := model.StatusEvent{
		Status:    info.Status,
		Message:   info.LastError,
		Port:      info.Port,
		Timestamp: time.Now(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("Failed to marshal status snapshot", zap.Error(err))
		return
	}

	select {
	case client.Send <- payload:
	default:
	}
}

// consumeEvents broadcasts bus events to all connected clients
func (h *WebSocketHandler) consumeEvents(events <-chan model.StatusEvent) {
	for event := range events {
		payload, err := json.Marshal(event)
		if err != nil {
			h.logger.Error("Failed to marshal status event", zap.Error(err))
			continue
		}

		for _, client := range h.clients.All() {
			select {
			case client.Send <- payload:
			default:
				// Client is slow, skip this event for it
			}
		}
	}
}

// handleClientRead drains client messages and detects disconnects.
// The status stream is one-way; inbound payloads are discarded.
func (h *WebSocketHandler) handleClientRead(client *Client) {
	defer func() {
		h.clients.Unregister(client)
		client.Connection.Close()
		h.logger.Info("Status WebSocket client disconnected",
			zap.String("client_id", client.ID),
		)
	}()

	client.Connection.SetReadDeadline(time.Now().Add(pongWait))
	client.Connection.SetPongHandler(func(string) error {
		client.Connection.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := client.Connection.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.Error("WebSocket read error",
					zap.Error(err),
					zap.String("client_id", client.ID),
				)
			}
			break
		}
	}
}

// handleClientWrite pumps queued events to the client with keepalive
// pings
func (h *WebSocketHandler) handleClientWrite(client *Client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		client.Connection.Close()
	}()

	for {
		select {
		case payload, ok := <-client.Send:
			client.Connection.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				client.Connection.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := client.Connection.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}

		case <-ticker.C:
			client.Connection.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.Connection.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
