// internal/config/config_test.go
package config

import (
	"runtime"
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		Serial: SerialConfig{
			Port:     "/dev/ttyUSB2",
			BaudRate: 57600,
			DataBits: 8,
			StopBits: 1,
			Parity:   "none",
			Timeout:  2 * time.Second,
		},
		Values: ValuesConfig{Min: 0, Max: 100, Default: 0},
		App:    AppConfig{Environment: "development"},
	}
}

func TestValidateOK(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateMissingPort(t *testing.T) {
	cfg := validConfig()
	cfg.Serial.Port = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for empty port")
	}
}

func TestValidateBadBaudRate(t *testing.T) {
	cfg := validConfig()
	cfg.Serial.BaudRate = 12345
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unsupported baud rate")
	}
}

func TestValidateBadTimeout(t *testing.T) {
	cfg := validConfig()
	cfg.Serial.Timeout = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for zero timeout")
	}
}

func TestValidateValueBounds(t *testing.T) {
	cfg := validConfig()
	cfg.Values.Min = 50
	cfg.Values.Max = 10
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for min > max")
	}

	cfg = validConfig()
	cfg.Values.Default = 200
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for default outside range")
	}
}

func TestDefaultSerialPort(t *testing.T) {
	port := defaultSerialPort()
	if runtime.GOOS == "windows" {
		if port != "COM3" {
			t.Errorf("default port = %q, want COM3", port)
		}
	} else {
		if port != "/dev/ttyUSB2" {
			t.Errorf("default port = %q, want /dev/ttyUSB2", port)
		}
	}
}

func TestIsProduction(t *testing.T) {
	cfg := validConfig()
	if cfg.IsProduction() {
		t.Error("development config reports production")
	}

	cfg.App.Environment = "production"
	if !cfg.IsProduction() {
		t.Error("production config not detected")
	}
}

func TestGetServerAddr(t *testing.T) {
	cfg := validConfig()
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = "8090"
	if got := cfg.GetServerAddr(); got != "127.0.0.1:8090" {
		t.Errorf("GetServerAddr = %q", got)
	}
}
