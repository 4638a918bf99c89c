// internal/protocol/protocol.go
package protocol

import (
	"go.uber.org/zap"

	"rf-serial-service/internal/config"
)

// Transport represents the serial line resource owned by exactly one
// connection manager at a time. Write returns the byte count so the
// caller can detect short writes.
type Transport interface {
	// Connection lifecycle
	Open() error
	Close() error
	IsOpen() bool

	// Data transmission
	Write(data []byte) (int, error)
}

// TransportFactory creates a transport for one connection attempt.
// Injected into the connection manager so tests can substitute fakes.
type TransportFactory func(cfg *config.SerialConfig, logger *zap.Logger) Transport
