// internal/protocol/serial_transport.go
package protocol

import (
	"fmt"
	"sync"

	"go.bug.st/serial"
	"go.uber.org/zap"

	"rf-serial-service/internal/config"
)

// SerialTransport implements Transport on top of a physical serial
// port. The frame parameters are fixed by configuration and applied on
// every Open.
type SerialTransport struct {
	config *config.SerialConfig
	port   serial.Port
	logger *zap.Logger
	mutex  sync.RWMutex
	isOpen bool
}

// NewSerialTransport creates a transport for the configured port
func NewSerialTransport(cfg *config.SerialConfig, logger *zap.Logger) Transport {
	return &SerialTransport{
		config: cfg,
		logger: logger.With(
			zap.String("transport", "serial"),
			zap.String("port", cfg.Port),
		),
	}
}

// Open opens the serial port with the configured mode
func (st *SerialTransport) Open() error {
	st.mutex.Lock()
	defer st.mutex.Unlock()

	if st.isOpen {
		return nil
	}

	st.logger.Info("Opening serial port",
		zap.Int("baud_rate", st.config.BaudRate),
		zap.Duration("timeout", st.config.Timeout),
	)

	mode := &serial.Mode{
		BaudRate: st.config.BaudRate,
		DataBits: st.config.DataBits,
	}

	switch st.config.StopBits {
	case 2:
		mode.StopBits = serial.TwoStopBits
	default:
		mode.StopBits = serial.OneStopBit
	}

	switch st.config.Parity {
	case "none":
		mode.Parity = serial.NoParity
	case "odd":
		mode.Parity = serial.OddParity
	case "even":
		mode.Parity = serial.EvenParity
	default:
		mode.Parity = serial.NoParity
	}

	port, err := serial.Open(st.config.Port, mode)
	if err != nil {
		st.logger.Error("Failed to open serial port", zap.Error(err))
		return fmt.Errorf("failed to open serial port: %w", err)
	}

	if err := port.SetReadTimeout(st.config.Timeout); err != nil {
		port.Close()
		return fmt.Errorf("failed to set read timeout: %w", err)
	}

	st.port = port
	st.isOpen = true

	st.logger.Info("Serial port opened successfully")
	return nil
}

// Close closes and releases the serial port
func (st *SerialTransport) Close() error {
	st.mutex.Lock()
	defer st.mutex.Unlock()

	if !st.isOpen || st.port == nil {
		return nil
	}

	if err := st.port.Close(); err != nil {
		st.logger.Error("Failed to close serial port", zap.Error(err))
		return fmt.Errorf("failed to close serial port: %w", err)
	}

	st.port = nil
	st.isOpen = false

	st.logger.Info("Serial port closed")
	return nil
}

// IsOpen returns whether the port is currently open
func (st *SerialTransport) IsOpen() bool {
	st.mutex.RLock()
	defer st.mutex.RUnlock()
	return st.isOpen && st.port != nil
}

// Write writes data to the serial port and returns the number of
// bytes actually transmitted
func (st *SerialTransport) Write(data []byte) (int, error) {
	st.mutex.RLock()
	defer st.mutex.RUnlock()

	if !st.isOpen || st.port == nil {
		return 0, fmt.Errorf("serial port not open")
	}

	n, err := st.port.Write(data)
	if err != nil {
		st.logger.Error("Serial write failed", zap.Error(err))
		return n, fmt.Errorf("failed to write to serial port: %w", err)
	}

	st.logger.Debug("Serial write completed", zap.Int("bytes", n))
	return n, nil
}
