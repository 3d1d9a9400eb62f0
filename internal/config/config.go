package config

import (
	"fmt"
	"time"

	"github.com/rezkam/almanac/internal/domain"
	"github.com/rezkam/almanac/internal/env"
)

const (
	defaultHost              = "localhost"
	defaultPort              = "8080"
	defaultReadTimeout       = 30 * time.Second
	defaultWriteTimeout      = 30 * time.Second
	defaultIdleTimeout       = 120 * time.Second
	defaultReadHeaderTimeout = 10 * time.Second
	defaultMaxHeaderBytes    = 1 << 20
	defaultMaxBodyBytes      = 1 << 20
	defaultShutdownTimeout   = 30 * time.Second
	defaultServiceName       = "almanac"
)

// ServerConfig holds all configuration for the server binary. Fields left
// unset in the environment get sensible defaults.
type ServerConfig struct {
	HTTP            HTTPConfig
	Engine          EngineConfig
	Observability   ObservabilityConfig
	ShutdownTimeout time.Duration `env:"ALMANAC_SHUTDOWN_TIMEOUT"`
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Host              string        `env:"ALMANAC_HTTP_HOST"`
	Port              string        `env:"ALMANAC_HTTP_PORT"`
	ReadTimeout       time.Duration `env:"ALMANAC_HTTP_READ_TIMEOUT"`
	WriteTimeout      time.Duration `env:"ALMANAC_HTTP_WRITE_TIMEOUT"`
	IdleTimeout       time.Duration `env:"ALMANAC_HTTP_IDLE_TIMEOUT"`
	ReadHeaderTimeout time.Duration `env:"ALMANAC_HTTP_READ_HEADER_TIMEOUT"`
	MaxHeaderBytes    int           `env:"ALMANAC_HTTP_MAX_HEADER_BYTES"`
	MaxBodyBytes      int64         `env:"ALMANAC_HTTP_MAX_BODY_BYTES"`
}

// EngineConfig holds scheduling engine configuration.
type EngineConfig struct {
	// RecurrenceHorizonYears bounds recurring-event expansion. Zero falls
	// back to the engine default of five years.
	RecurrenceHorizonYears int `env:"ALMANAC_RECURRENCE_HORIZON_YEARS"`
}

// Validate implements env.Validator.
func (c *EngineConfig) Validate() error {
	if c.RecurrenceHorizonYears < 0 {
		return fmt.Errorf("ALMANAC_RECURRENCE_HORIZON_YEARS must not be negative, got %d", c.RecurrenceHorizonYears)
	}
	return nil
}

// ObservabilityConfig holds observability configuration. The OTLP endpoint
// and headers come from the standard OTEL_* environment variables.
type ObservabilityConfig struct {
	OTelEnabled bool   `env:"ALMANAC_OTEL_ENABLED"`
	ServiceName string `env:"OTEL_SERVICE_NAME"`
}

// LoadServerConfig loads and validates server configuration from the
// environment.
func LoadServerConfig() (*ServerConfig, error) {
	cfg := &ServerConfig{}

	if err := env.Load(cfg); err != nil {
		return nil, fmt.Errorf("failed to load server config: %w", err)
	}

	cfg.applyDefaults()

	return cfg, nil
}

func (c *ServerConfig) applyDefaults() {
	if c.HTTP.Host == "" {
		c.HTTP.Host = defaultHost
	}
	if c.HTTP.Port == "" {
		c.HTTP.Port = defaultPort
	}
	if c.HTTP.ReadTimeout == 0 {
		c.HTTP.ReadTimeout = defaultReadTimeout
	}
	if c.HTTP.WriteTimeout == 0 {
		c.HTTP.WriteTimeout = defaultWriteTimeout
	}
	if c.HTTP.IdleTimeout == 0 {
		c.HTTP.IdleTimeout = defaultIdleTimeout
	}
	if c.HTTP.ReadHeaderTimeout == 0 {
		c.HTTP.ReadHeaderTimeout = defaultReadHeaderTimeout
	}
	if c.HTTP.MaxHeaderBytes == 0 {
		c.HTTP.MaxHeaderBytes = defaultMaxHeaderBytes
	}
	if c.HTTP.MaxBodyBytes == 0 {
		c.HTTP.MaxBodyBytes = defaultMaxBodyBytes
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = defaultShutdownTimeout
	}
	if c.Engine.RecurrenceHorizonYears == 0 {
		c.Engine.RecurrenceHorizonYears = domain.DefaultHorizonYears
	}
	if c.Observability.ServiceName == "" {
		c.Observability.ServiceName = defaultServiceName
	}
}
