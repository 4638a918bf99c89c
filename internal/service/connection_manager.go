// internal/service/connection_manager.go
package service

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"

	"rf-serial-service/internal/config"
	"rf-serial-service/internal/model"
	"rf-serial-service/internal/protocol"
)

// NotConnectedMessage is the send result message when no transport
// handle is open. Callers branch on it to distinguish "link down" from
// transmission failures.
const NotConnectedMessage = "Error: Not connected to serial port"

// StatusCallback is invoked synchronously on every connection status
// transition. At most one callback is registered per manager.
// Callbacks may read manager state; they must not invoke Connect,
// Disconnect, Retry or Send.
type StatusCallback func(status model.ConnectionStatus, message string)

// ConnectionManager owns the serial line to the RF transceiver. It
// tracks the four-state connection status, classifies transport errors
// into operator-facing messages and performs the encode-and-write send
// operation. The transport handle lives for exactly one connection
// attempt: created on a successful Connect, dropped on Disconnect.
//
// Operations serialize on opMu; unlike the original single-threaded
// caller, the HTTP surface invokes the manager from multiple
// goroutines. State reads take the lighter mu so status callbacks and
// snapshot accessors never contend with a blocking transport call.
type ConnectionManager struct {
	factory protocol.TransportFactory
	logger  *zap.Logger

	// opMu serializes Connect, Disconnect, Retry and Send
	opMu sync.Mutex

	mu           sync.RWMutex
	serialConfig config.SerialConfig
	transport    protocol.Transport
	status       model.ConnectionStatus
	lastError    string
	callback     StatusCallback
}

// NewConnectionManager creates a manager in the Disconnected state.
// The transport factory is called once per connection attempt.
func NewConnectionManager(cfg *config.Config, factory protocol.TransportFactory, logger *zap.Logger) *ConnectionManager {
	return &ConnectionManager{
		serialConfig: cfg.Serial,
		factory:      factory,
		logger:       logger.With(zap.String("component", "connection-manager")),
		status:       model.StatusDisconnected,
	}
}

// SetStatusCallback registers the single status notification sink
func (cm *ConnectionManager) SetStatusCallback(callback StatusCallback) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.callback = callback
}

// Connect attempts to open the serial port with the configured port,
// baud rate and fixed frame parameters. It always emits a Connecting
// notification first, then either Connected or Error.
func (cm *ConnectionManager) Connect() error {
	cm.opMu.Lock()
	defer cm.opMu.Unlock()
	return cm.connect()
}

func (cm *ConnectionManager) connect() error {
	cm.updateStatus(model.StatusConnecting, "")

	cfg := cm.serialConfigSnapshot()
	transport := cm.factory(&cfg, cm.logger)

	if err := transport.Open(); err != nil {
		message := cm.classifyError(err, cfg.Port)
		cm.setTransport(nil)
		cm.updateStatus(model.StatusError, message)
		cm.logger.Error("Connection failed",
			zap.String("port", cfg.Port),
			zap.String("reason", message),
		)
		return fmt.Errorf("connect failed: %s", message)
	}

	cm.setTransport(transport)
	cm.updateStatus(model.StatusConnected, "")
	cm.logger.Info("Connected to serial port",
		zap.String("port", cfg.Port),
		zap.Int("baud_rate", cfg.BaudRate),
	)
	return nil
}

// Disconnect closes and releases the transport handle if one is open.
// Idempotent. It does not emit a status notification; after it returns
// no handle is referenced and IsConnected reports false.
func (cm *ConnectionManager) Disconnect() {
	cm.opMu.Lock()
	defer cm.opMu.Unlock()
	cm.disconnect()
}

func (cm *ConnectionManager) disconnect() {
	cm.mu.Lock()
	transport := cm.transport
	cm.transport = nil
	cm.mu.Unlock()

	if transport != nil && transport.IsOpen() {
		if err := transport.Close(); err != nil {
			cm.logger.Warn("Error closing serial port", zap.Error(err))
		}
	}
}

// Retry drops any existing handle and attempts a fresh connection
func (cm *ConnectionManager) Retry() error {
	cm.opMu.Lock()
	defer cm.opMu.Unlock()

	cm.disconnect()
	return cm.connect()
}

// IsConnected reports whether a transport handle is present and open
func (cm *ConnectionManager) IsConnected() bool {
	cm.mu.RLock()
	transport := cm.transport
	cm.mu.RUnlock()
	return transport != nil && transport.IsOpen()
}

// Send transmits a value to the RF transceiver as its decimal ASCII
// representation. Transmission failures are reported in the result
// only; they never move the status away from Connected since the link
// may still be usable.
func (cm *ConnectionManager) Send(value int) model.SendResult {
	cm.opMu.Lock()
	defer cm.opMu.Unlock()

	cm.mu.RLock()
	transport := cm.transport
	cm.mu.RUnlock()

	if transport == nil || !transport.IsOpen() {
		return model.SendResult{
			Value:   value,
			Message: NotConnectedMessage,
		}
	}

	data := []byte(strconv.Itoa(value))

	n, err := transport.Write(data)
	if err != nil {
		cm.logger.Error("Transmission failed",
			zap.Int("value", value),
			zap.Error(err),
		)
		return model.SendResult{
			Value:   value,
			Message: fmt.Sprintf("Error: %v", err),
		}
	}

	if n != len(data) {
		cm.logger.Error("Incomplete transmission",
			zap.Int("value", value),
			zap.Int("written", n),
			zap.Int("requested", len(data)),
		)
		return model.SendResult{
			Value:   value,
			Message: "Error: Incomplete transmission",
		}
	}

	cm.logger.Info("Value transmitted",
		zap.Int("value", value),
		zap.Int("bytes", n),
	)
	return model.SendResult{
		Success: true,
		Value:   value,
		Message: fmt.Sprintf("Sent: %d", value),
	}
}

// Status returns the current connection status
func (cm *ConnectionManager) Status() model.ConnectionStatus {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.status
}

// LastError returns the last classified error message. Empty unless
// the status is Error.
func (cm *ConnectionManager) LastError() string {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.lastError
}

// Port returns the configured port identifier
func (cm *ConnectionManager) Port() string {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.serialConfig.Port
}

// SetPort changes the port used by subsequent connection attempts.
// Callers switching ports disconnect first.
func (cm *ConnectionManager) SetPort(port string) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.serialConfig.Port = port
}

// Info returns an externally visible snapshot of the link
func (cm *ConnectionManager) Info() model.ConnectionInfo {
	cm.mu.RLock()
	transport := cm.transport
	info := model.ConnectionInfo{
		Port:      cm.serialConfig.Port,
		BaudRate:  cm.serialConfig.BaudRate,
		Status:    cm.status,
		LastError: cm.lastError,
	}
	cm.mu.RUnlock()

	info.Connected = transport != nil && transport.IsOpen()
	return info
}

func (cm *ConnectionManager) serialConfigSnapshot() config.SerialConfig {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.serialConfig
}

func (cm *ConnectionManager) setTransport(transport protocol.Transport) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.transport = transport
}

// updateStatus records a transition and notifies the registered
// callback exactly once. The callback runs outside the state lock so
// it can read manager state.
func (cm *ConnectionManager) updateStatus(status model.ConnectionStatus, message string) {
	cm.mu.Lock()
	cm.status = status
	cm.lastError = message
	callback := cm.callback
	cm.mu.Unlock()

	if callback != nil {
		callback(status, message)
	}
}

// classifyError maps platform-specific transport error text onto
// operator-actionable messages. Substring matching is deliberate:
// open failures arrive as free text whose wording differs per OS.
func (cm *ConnectionManager) classifyError(err error, port string) string {
	// Unwrap so the fallback surfaces the transport's own text, not
	// our wrapping
	underlying := err
	for u := errors.Unwrap(underlying); u != nil; u = errors.Unwrap(underlying) {
		underlying = u
	}

	errStr := strings.ToLower(underlying.Error())

	switch {
	case strings.Contains(errStr, "no such file") || strings.Contains(errStr, "not found"):
		return fmt.Sprintf("Serial port %s not found", port)
	case strings.Contains(errStr, "permission denied"):
		return "Permission denied. Check port access rights"
	case strings.Contains(errStr, "access is denied"):
		return "Port is in use by another application"
	default:
		return underlying.Error()
	}
}
