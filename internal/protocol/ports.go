// internal/protocol/ports.go
package protocol

import (
	"fmt"

	"go.bug.st/serial"
)

// ListPorts returns the serial ports the host OS currently reports,
// in OS order. Used by presentation layers that offer manual port
// selection.
func ListPorts() ([]string, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to get serial ports: %w", err)
	}
	return ports, nil
}
