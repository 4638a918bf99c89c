// internal/config/config.go
package config

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Serial  SerialConfig  `mapstructure:"serial"`
	Values  ValuesConfig  `mapstructure:"values"`
	Logging LoggingConfig `mapstructure:"logging"`
	App     AppConfig     `mapstructure:"app"`
}

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Host           string        `mapstructure:"host"`
	Port           string        `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
}

// SerialConfig represents the serial link configuration. The frame
// parameters (8N1) and timeout are fixed for the RF transceiver and
// only overridable through configuration, never at runtime.
type SerialConfig struct {
	Port        string        `mapstructure:"port"`
	BaudRate    int           `mapstructure:"baud_rate"`
	DataBits    int           `mapstructure:"data_bits"`
	StopBits    int           `mapstructure:"stop_bits"`
	Parity      string        `mapstructure:"parity"`
	Timeout     time.Duration `mapstructure:"timeout"`
	AutoConnect bool          `mapstructure:"auto_connect"`
}

// ValuesConfig represents the accepted transmission value range
type ValuesConfig struct {
	Min     int `mapstructure:"min"`
	Max     int `mapstructure:"max"`
	Default int `mapstructure:"default"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Output     string `mapstructure:"output"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
}

// AppConfig represents application metadata
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// Load reads configuration from file and environment variables
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./internal/config")

	viper.SetEnvPrefix("RF_SERIAL")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// No config file is fine, defaults and env cover everything
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults resolves all defaults once at startup. The host platform
// is consulted only here; the rest of the application sees plain
// configuration values.
func setDefaults() {
	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", "8090")
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "30s")
	viper.SetDefault("server.idle_timeout", "120s")

	// Serial defaults: 57600 8N1, 2 second timeout. The default device
	// path differs per platform; off Windows the service also connects
	// at startup instead of waiting for a port selection.
	viper.SetDefault("serial.port", defaultSerialPort())
	viper.SetDefault("serial.baud_rate", 57600)
	viper.SetDefault("serial.data_bits", 8)
	viper.SetDefault("serial.stop_bits", 1)
	viper.SetDefault("serial.parity", "none")
	viper.SetDefault("serial.timeout", "2s")
	viper.SetDefault("serial.auto_connect", runtime.GOOS != "windows")

	// Value constraints
	viper.SetDefault("values.min", 0)
	viper.SetDefault("values.max", 100)
	viper.SetDefault("values.default", 0)

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
	viper.SetDefault("logging.output", "stdout")
	viper.SetDefault("logging.max_size", 100)
	viper.SetDefault("logging.max_backups", 3)
	viper.SetDefault("logging.max_age", 28)
	viper.SetDefault("logging.compress", true)

	// App defaults
	viper.SetDefault("app.name", "rf-serial-service")
	viper.SetDefault("app.version", "1.0.0")
	viper.SetDefault("app.environment", "development")
}

// defaultSerialPort returns the usual USB serial device path for the
// host platform
func defaultSerialPort() string {
	if runtime.GOOS == "windows" {
		return "COM3"
	}
	return "/dev/ttyUSB2"
}

// Validate checks configuration consistency
func (c *Config) Validate() error {
	if c.Serial.Port == "" {
		return fmt.Errorf("serial port is required")
	}

	validRates := []int{1200, 2400, 4800, 9600, 19200, 38400, 57600, 115200}
	valid := false
	for _, rate := range validRates {
		if c.Serial.BaudRate == rate {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("invalid baud rate: %d", c.Serial.BaudRate)
	}

	if c.Serial.Timeout <= 0 {
		return fmt.Errorf("serial timeout must be positive")
	}

	if c.Values.Min > c.Values.Max {
		return fmt.Errorf("values.min %d exceeds values.max %d", c.Values.Min, c.Values.Max)
	}
	if c.Values.Default < c.Values.Min || c.Values.Default > c.Values.Max {
		return fmt.Errorf("values.default %d outside [%d, %d]", c.Values.Default, c.Values.Min, c.Values.Max)
	}

	return nil
}

// GetServerAddr returns the server listen address
func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%s", c.Server.Host, c.Server.Port)
}

// IsProduction returns whether the app runs in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}
