// internal/handler/websocket_types.go
package handler

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Client represents one WebSocket subscriber to the status stream
type Client struct {
	ID          string
	Connection  *websocket.Conn
	Send        chan []byte
	UserAgent   string
	RemoteAddr  string
	ConnectedAt time.Time
}

// ClientRegistry tracks connected WebSocket clients
type ClientRegistry struct {
	clients map[string]*Client
	mutex   sync.RWMutex
}

// NewClientRegistry creates an empty registry
func NewClientRegistry() *ClientRegistry {
	return &ClientRegistry{
		clients: make(map[string]*Client),
	}
}

// Register adds a client
func (cr *ClientRegistry) Register(client *Client) {
	cr.mutex.Lock()
	defer cr.mutex.Unlock()
	cr.clients[client.ID] = client
}

// Unregister removes a client and closes its send channel
func (cr *ClientRegistry) Unregister(client *Client) {
	cr.mutex.Lock()
	defer cr.mutex.Unlock()

	if _, exists := cr.clients[client.ID]; exists {
		delete(cr.clients, client.ID)
		close(client.Send)
	}
}

// All returns a snapshot of connected clients
func (cr *ClientRegistry) All() []*Client {
	cr.mutex.RLock()
	defer cr.mutex.RUnlock()

	clients := make([]*Client, 0, len(cr.clients))
	for _, client := range cr.clients {
		clients = append(clients, client)
	}
	return clients
}

// Count returns the number of connected clients
func (cr *ClientRegistry) Count() int {
	cr.mutex.RLock()
	defer cr.mutex.RUnlock()
	return len(cr.clients)
}
