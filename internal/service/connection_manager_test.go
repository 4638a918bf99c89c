// internal/service/connection_manager_test.go
package service

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"rf-serial-service/internal/config"
	"rf-serial-service/internal/model"
	"rf-serial-service/internal/protocol"
)

// fakeTransport implements protocol.Transport for tests
type fakeTransport struct {
	openErr  error
	writeErr error
	shortBy  int
	open     bool
	written  bytes.Buffer
}

func (f *fakeTransport) Open() error {
	if f.openErr != nil {
		return f.openErr
	}
	f.open = true
	return nil
}

func (f *fakeTransport) Close() error {
	f.open = false
	return nil
}

func (f *fakeTransport) IsOpen() bool {
	return f.open
}

func (f *fakeTransport) Write(data []byte) (int, error) {
	if f.writeErr != nil {
		return 0, f.writeErr
	}
	n := len(data) - f.shortBy
	if n < 0 {
		n = 0
	}
	f.written.Write(data[:n])
	return n, nil
}

// notification records one status callback invocation
type notification struct {
	status  model.ConnectionStatus
	message string
}

func testConfig() *config.Config {
	return &config.Config{
		Serial: config.SerialConfig{
			Port:     "/dev/ttyUSB2",
			BaudRate: 57600,
			DataBits: 8,
			StopBits: 1,
			Parity:   "none",
		},
	}
}

// newTestManager builds a manager whose factory hands out the given
// transports in order, reusing the last one once exhausted
func newTestManager(t *testing.T, transports ...*fakeTransport) (*ConnectionManager, *[]notification) {
	t.Helper()

	index := 0
	factory := func(cfg *config.SerialConfig, logger *zap.Logger) protocol.Transport {
		transport := transports[index]
		if index < len(transports)-1 {
			index++
		}
		return transport
	}

	manager := NewConnectionManager(testConfig(), factory, zap.NewNop())

	notifications := &[]notification{}
	manager.SetStatusCallback(func(status model.ConnectionStatus, message string) {
		*notifications = append(*notifications, notification{status, message})
	})

	return manager, notifications
}

func TestManagerInitialState(t *testing.T) {
	manager, _ := newTestManager(t, &fakeTransport{})

	if got := manager.Status(); got != model.StatusDisconnected {
		t.Errorf("initial status = %s, want %s", got, model.StatusDisconnected)
	}
	if manager.IsConnected() {
		t.Error("new manager reports connected")
	}
	if manager.LastError() != "" {
		t.Errorf("new manager has last error %q", manager.LastError())
	}
}

func TestConnectSuccess(t *testing.T) {
	manager, notifications := newTestManager(t, &fakeTransport{})

	if err := manager.Connect(); err != nil {
		t.Fatalf("Connect: unexpected error: %v", err)
	}

	if got := manager.Status(); got != model.StatusConnected {
		t.Errorf("status = %s, want %s", got, model.StatusConnected)
	}
	if !manager.IsConnected() {
		t.Error("IsConnected = false after successful connect")
	}

	want := []notification{
		{model.StatusConnecting, ""},
		{model.StatusConnected, ""},
	}
	if len(*notifications) != len(want) {
		t.Fatalf("got %d notifications, want %d: %v", len(*notifications), len(want), *notifications)
	}
	for i, n := range want {
		if (*notifications)[i] != n {
			t.Errorf("notification[%d] = %+v, want %+v", i, (*notifications)[i], n)
		}
	}
}

func TestConnectFailureClassification(t *testing.T) {
	tests := []struct {
		name    string
		openErr error
		want    string
	}{
		{
			name:    "port missing",
			openErr: errors.New("open /dev/ttyUSB2: No such file or directory"),
			want:    "Serial port /dev/ttyUSB2 not found",
		},
		{
			name:    "port not found",
			openErr: errors.New("Serial port not found"),
			want:    "Serial port /dev/ttyUSB2 not found",
		},
		{
			name:    "permission denied",
			openErr: errors.New("open /dev/ttyUSB2: Permission denied"),
			want:    "Permission denied. Check port access rights",
		},
		{
			name:    "port busy",
			openErr: errors.New("could not open COM3: Access is denied."),
			want:    "Port is in use by another application",
		},
		{
			name:    "unclassified passthrough",
			openErr: errors.New("device reports readiness to read but returned no data"),
			want:    "device reports readiness to read but returned no data",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			manager, notifications := newTestManager(t, &fakeTransport{openErr: tt.openErr})

			if err := manager.Connect(); err == nil {
				t.Fatal("Connect: expected error")
			}

			if got := manager.Status(); got != model.StatusError {
				t.Errorf("status = %s, want %s", got, model.StatusError)
			}
			if got := manager.LastError(); got != tt.want {
				t.Errorf("LastError = %q, want %q", got, tt.want)
			}
			if manager.IsConnected() {
				t.Error("IsConnected = true after failed connect")
			}

			if len(*notifications) != 2 {
				t.Fatalf("got %d notifications, want 2: %v", len(*notifications), *notifications)
			}
			if (*notifications)[0].status != model.StatusConnecting {
				t.Errorf("first notification = %s, want %s", (*notifications)[0].status, model.StatusConnecting)
			}
			if (*notifications)[1].status != model.StatusError || (*notifications)[1].message != tt.want {
				t.Errorf("second notification = %+v, want Error with %q", (*notifications)[1], tt.want)
			}
		})
	}
}

func TestClassificationWrappedError(t *testing.T) {
	// The transport wraps open failures; classification must still see
	// the underlying text
	wrapped := &fakeTransport{
		openErr: errors.New("failed to open serial port: open /dev/ttyUSB2: permission denied"),
	}
	manager, _ := newTestManager(t, wrapped)

	manager.Connect()
	if got := manager.LastError(); got != "Permission denied. Check port access rights" {
		t.Errorf("LastError = %q", got)
	}
}

func TestDisconnect(t *testing.T) {
	transport := &fakeTransport{}
	manager, notifications := newTestManager(t, transport)

	if err := manager.Connect(); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	before := len(*notifications)

	manager.Disconnect()

	if manager.IsConnected() {
		t.Error("IsConnected = true after Disconnect")
	}
	if transport.IsOpen() {
		t.Error("transport left open after Disconnect")
	}
	if len(*notifications) != before {
		t.Errorf("Disconnect emitted %d notification(s); expected none", len(*notifications)-before)
	}

	// Idempotent
	manager.Disconnect()
	if manager.IsConnected() {
		t.Error("IsConnected = true after second Disconnect")
	}
}

func TestRetryAfterFailure(t *testing.T) {
	failing := &fakeTransport{openErr: errors.New("no such file or directory")}
	working := &fakeTransport{}
	manager, notifications := newTestManager(t, failing, working)

	if err := manager.Connect(); err == nil {
		t.Fatal("first Connect: expected error")
	}
	if got := manager.Status(); got != model.StatusError {
		t.Fatalf("status = %s, want %s", got, model.StatusError)
	}

	if err := manager.Retry(); err != nil {
		t.Fatalf("Retry: unexpected error: %v", err)
	}

	if got := manager.Status(); got != model.StatusConnected {
		t.Errorf("status after retry = %s, want %s", got, model.StatusConnected)
	}
	if !manager.IsConnected() {
		t.Error("IsConnected = false after successful retry")
	}
	if got := manager.LastError(); got != "" {
		t.Errorf("LastError = %q after successful retry", got)
	}

	// Connecting, Error, Connecting, Connected
	if len(*notifications) != 4 {
		t.Fatalf("got %d notifications, want 4: %v", len(*notifications), *notifications)
	}
	if (*notifications)[3].status != model.StatusConnected {
		t.Errorf("final notification = %+v", (*notifications)[3])
	}
}

func TestSendNotConnected(t *testing.T) {
	transport := &fakeTransport{}
	manager, _ := newTestManager(t, transport)

	result := manager.Send(50)

	if result.Success {
		t.Error("Send on disconnected manager succeeded")
	}
	if result.Message != "Error: Not connected to serial port" {
		t.Errorf("message = %q", result.Message)
	}
	if transport.written.Len() != 0 {
		t.Errorf("disconnected Send wrote %q to transport", transport.written.String())
	}
}

func TestSendSuccess(t *testing.T) {
	transport := &fakeTransport{}
	manager, _ := newTestManager(t, transport)

	if err := manager.Connect(); err != nil {
		t.Fatalf("Connect: %v", err)
	}

	result := manager.Send(50)

	if !result.Success {
		t.Fatalf("Send failed: %q", result.Message)
	}
	if !strings.Contains(result.Message, "50") {
		t.Errorf("message %q does not contain the sent value", result.Message)
	}
	if got := transport.written.String(); got != "50" {
		t.Errorf("transport received %q, want %q", got, "50")
	}
}

func TestSendFormatsDecimalASCII(t *testing.T) {
	tests := []struct {
		value int
		want  string
	}{
		{0, "0"},
		{7, "7"},
		{100, "100"},
	}

	for _, tt := range tests {
		transport := &fakeTransport{}
		manager, _ := newTestManager(t, transport)
		if err := manager.Connect(); err != nil {
			t.Fatalf("Connect: %v", err)
		}

		result := manager.Send(tt.value)
		if !result.Success {
			t.Errorf("Send(%d) failed: %q", tt.value, result.Message)
			continue
		}
		if got := transport.written.String(); got != tt.want {
			t.Errorf("Send(%d) wrote %q, want %q", tt.value, got, tt.want)
		}
	}
}

func TestSendShortWrite(t *testing.T) {
	transport := &fakeTransport{shortBy: 1}
	manager, _ := newTestManager(t, transport)

	if err := manager.Connect(); err != nil {
		t.Fatalf("Connect: %v", err)
	}

	result := manager.Send(50)

	if result.Success {
		t.Error("short write reported success")
	}
	if result.Message != "Error: Incomplete transmission" {
		t.Errorf("message = %q", result.Message)
	}
	if got := manager.Status(); got != model.StatusConnected {
		t.Errorf("short write changed status to %s", got)
	}
}

func TestSendWriteError(t *testing.T) {
	transport := &fakeTransport{writeErr: errors.New("input/output error")}
	manager, _ := newTestManager(t, transport)

	if err := manager.Connect(); err != nil {
		t.Fatalf("Connect: %v", err)
	}

	result := manager.Send(50)

	if result.Success {
		t.Error("failed write reported success")
	}
	if !strings.Contains(result.Message, "input/output error") {
		t.Errorf("message %q does not mention the underlying error", result.Message)
	}
	if got := manager.Status(); got != model.StatusConnected {
		t.Errorf("write failure changed status to %s", got)
	}
}

func TestSetPort(t *testing.T) {
	manager, _ := newTestManager(t, &fakeTransport{})

	manager.SetPort("COM7")

	if got := manager.Port(); got != "COM7" {
		t.Errorf("Port = %q, want %q", got, "COM7")
	}

	info := manager.Info()
	if info.Port != "COM7" {
		t.Errorf("Info.Port = %q, want %q", info.Port, "COM7")
	}
}

func TestConnectUsesCurrentPort(t *testing.T) {
	failing := &fakeTransport{openErr: errors.New("no such file")}
	manager, _ := newTestManager(t, failing)

	manager.SetPort("COM9")
	manager.Connect()

	if got := manager.LastError(); got != "Serial port COM9 not found" {
		t.Errorf("LastError = %q", got)
	}
}

func TestInfoSnapshot(t *testing.T) {
	manager, _ := newTestManager(t, &fakeTransport{})

	info := manager.Info()
	if info.Status != model.StatusDisconnected || info.Connected {
		t.Errorf("initial Info = %+v", info)
	}
	if info.BaudRate != 57600 {
		t.Errorf("Info.BaudRate = %d, want 57600", info.BaudRate)
	}

	manager.Connect()
	info = manager.Info()
	if info.Status != model.StatusConnected || !info.Connected {
		t.Errorf("connected Info = %+v", info)
	}
	if info.LastError != "" {
		t.Errorf("connected Info.LastError = %q", info.LastError)
	}
}

func TestCallbackMayReadManagerState(t *testing.T) {
	manager, _ := newTestManager(t, &fakeTransport{})

	var seenPorts []string
	manager.SetStatusCallback(func(status model.ConnectionStatus, message string) {
		seenPorts = append(seenPorts, manager.Port())
	})

	if err := manager.Connect(); err != nil {
		t.Fatalf("Connect: %v", err)
	}

	if len(seenPorts) != 2 {
		t.Fatalf("callback invoked %d times, want 2", len(seenPorts))
	}
	for _, port := range seenPorts {
		if port != "/dev/ttyUSB2" {
			t.Errorf("callback saw port %q", port)
		}
	}
}
