package config

import (
	"fmt"
	"strings"

	"bpp-notes/internal/logger"
	"bpp-notes/internal/model"
)

// Database drivers.
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
)

// ConfigService identifies the running service.
type ConfigService struct {
	Name string `mapstructure:"name"`
}

// ConfigDatabase selects and reaches the note store.
type ConfigDatabase struct {
	Driver        string `mapstructure:"driver"`
	ConnectionStr string `mapstructure:"connection_str"`
	PasswordStr   string `mapstructure:"password_str"`
	RetryAttempts uint   `mapstructure:"retry_attempts"`
}

// ConfigLogging logging settings
type ConfigLogging struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

// ConfigServer server settings
type ConfigServer struct {
	PortGRPC                int    `mapstructure:"port_grpc"`
	PortHTTP                int    `mapstructure:"port_http"`
	GracefulShutdownTimeout int    `mapstructure:"graceful_shutdown_timeout"`
	MaxConcurrentStreams    uint32 `mapstructure:"max_concurrent_streams"`
	RateLimitRPS            int    `mapstructure:"rate_limit_rps"`
	RateLimitBurst          int    `mapstructure:"rate_limit_burst"`
}

// ConfigGateway HTTP gateway settings
type ConfigGateway struct {
	Enabled            bool   `mapstructure:"enabled"`
	CORSAllowedOrigins string `mapstructure:"cors_allowed_origins"`
	CORSMaxAge         int    `mapstructure:"cors_max_age"`
}

// Config is the server configuration.
type Config struct {
	Service  *ConfigService  `mapstructure:"service"`
	Database *ConfigDatabase `mapstructure:"database"`
	Logging  *ConfigLogging  `mapstructure:"logging"`
	Server   *ConfigServer   `mapstructure:"server"`
	Gateway  *ConfigGateway  `mapstructure:"gateway"`
}

// Defaults holds the value of every known key.
var Defaults = map[string]any{
	"service.name": "NoteService",

	"database.driver":         DriverMemory,
	"database.connection_str": "",
	"database.password_str":   "",
	"database.retry_attempts": 3,

	"logging.level":  "INFO",
	"logging.pretty": false,

	"server.port_grpc":                 8085,
	"server.port_http":                 8086,
	"server.graceful_shutdown_timeout": 10,
	"server.max_concurrent_streams":    25,
	"server.rate_limit_rps":            100,
	"server.rate_limit_burst":          10,

	"gateway.enabled":              false,
	"gateway.cors_allowed_origins": "*",
	"gateway.cors_max_age":         86400,
}

// Validate reports missing or contradictory options as model.ErrConfigInvalid.
func (c *Config) Validate() error {
	if c.Service == nil || c.Database == nil || c.Logging == nil || c.Server == nil || c.Gateway == nil {
		return fmt.Errorf("%w: missing section", model.ErrConfigInvalid)
	}

	if strings.TrimSpace(c.Service.Name) == "" {
		return fmt.Errorf("%w: service.name is required", model.ErrConfigInvalid)
	}

	if _, err := logger.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("%w: logging.level: %v", model.ErrConfigInvalid, err)
	}

	switch c.Database.Driver {
	case DriverMemory:
	case DriverPostgres:
		if strings.TrimSpace(c.Database.ConnectionStr) == "" {
			return fmt.Errorf("%w: database.connection_str is required for %s", model.ErrConfigInvalid, DriverPostgres)
		}
	default:
		return fmt.Errorf("%w: unknown database.driver %q", model.ErrConfigInvalid, c.Database.Driver)
	}

	if !validPort(c.Server.PortGRPC) {
		return fmt.Errorf("%w: server.port_grpc %d out of range", model.ErrConfigInvalid, c.Server.PortGRPC)
	}
	if c.Gateway.Enabled {
		if !validPort(c.Server.PortHTTP) {
			return fmt.Errorf("%w: server.port_http %d out of range", model.ErrConfigInvalid, c.Server.PortHTTP)
		}
		if c.Server.PortHTTP == c.Server.PortGRPC {
			return fmt.Errorf("%w: server.port_http and server.port_grpc must differ", model.ErrConfigInvalid)
		}
	}

	if c.Server.GracefulShutdownTimeout < 0 {
		return fmt.Errorf("%w: server.graceful_shutdown_timeout must not be negative", model.ErrConfigInvalid)
	}

	return nil
}

func validPort(p int) bool {
	return p > 0 && p < 65536
}
