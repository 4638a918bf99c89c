// internal/model/connection.go
package model

import "time"

// ConnectionStatus represents the current state of the serial link
type ConnectionStatus string

const (
	StatusDisconnected ConnectionStatus = "DISCONNECTED"
	StatusConnecting   ConnectionStatus = "CONNECTING"
	StatusConnected    ConnectionStatus = "CONNECTED"
	StatusError        ConnectionStatus = "ERROR"
)

// ValidationResult is the outcome of validating raw operator input.
// It is recomputed on every request and never stored.
type ValidationResult struct {
	IsValid bool   `json:"is_valid"`
	Message string `json:"message"`
}

// SendResult is the outcome of one transmission attempt
type SendResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Value   int    `json:"value"`
}

// ConnectionInfo is the externally visible snapshot of the serial link
type ConnectionInfo struct {
	Port      string           `json:"port"`
	BaudRate  int              `json:"baud_rate"`
	Status    ConnectionStatus `json:"status"`
	Connected bool             `json:"connected"`
	LastError string           `json:"last_error,omitempty"`
}

// StatusEvent is broadcast to WebSocket subscribers on every
// connection state transition
type StatusEvent struct {
	Status    ConnectionStatus `json:"status"`
	Message   string           `json:"message,omitempty"`
	Port      string           `json:"port"`
	Timestamp time.Time        `json:"timestamp"`
}
