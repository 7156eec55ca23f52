package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the complete application configuration
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Log      LogConfig      `koanf:"log"`
	OTLP     OTLPConfig     `koanf:"otlp"`
	Metrics  MetricsConfig  `koanf:"metrics"`
	Catalog  CatalogConfig  `koanf:"catalog"`
	Shutdown ShutdownConfig `koanf:"shutdown"`
}

type ServerConfig struct {
	Host           string `koanf:"host"`
	Port           int    `koanf:"port"`
	MaxHeaderBytes int    `koanf:"maxheaderbytes"`
	Timeout        struct {
		Read       time.Duration `koanf:"read"`
		Write      time.Duration `koanf:"write"`
		Idle       time.Duration `koanf:"idle"`
		ReadHeader time.Duration `koanf:"readheader"`
	} `koanf:"timeout"`
}

// Addr returns the listen address in host:port form
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func (c *ServerConfig) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid HTTP server port: %d", c.Port)
	}
	if c.MaxHeaderBytes <= 0 {
		return fmt.Errorf("invalid HTTP server max header bytes: %d", c.MaxHeaderBytes)
	}
	if c.Timeout.Read <= 0 {
		return fmt.Errorf("invalid HTTP server read timeout: %v", c.Timeout.Read)
	}
	if c.Timeout.Write <= 0 {
		return fmt.Errorf("invalid HTTP server write timeout: %v", c.Timeout.Write)
	}
	if c.Timeout.Idle <= 0 {
		return fmt.Errorf("invalid HTTP server idle timeout: %v", c.Timeout.Idle)
	}
	if c.Timeout.ReadHeader <= 0 {
		return fmt.Errorf("invalid HTTP server read header timeout: %v", c.Timeout.ReadHeader)
	}
	return nil
}

type LogConfig struct {
	Level string `koanf:"level"`
}

func (c *LogConfig) Validate() error {
	switch strings.ToLower(c.Level) {
	case "debug", "info", "warn", "error":
		return nil
	}
	return fmt.Errorf("invalid log level: %q", c.Level)
}

// OTLPConfig controls trace and metric export.
// When Enabled is false nothing is exported but /metrics still works.
type OTLPConfig struct {
	Enabled     bool   `koanf:"enabled"`
	Endpoint    string `koanf:"endpoint"`
	ServiceName string `koanf:"servicename"`
	Environment string `koanf:"environment"`
}

func (c *OTLPConfig) Validate() error {
	if c.ServiceName == "" {
		return fmt.Errorf("service name is not configured")
	}
	if c.Enabled && c.Endpoint == "" {
		return fmt.Errorf("OTLP endpoint is not configured")
	}
	return nil
}

type MetricsConfig struct {
	// DurationMs adds the http.server.request.duration.ms histogram
	DurationMs bool `koanf:"durationms"`
}

type CatalogConfig struct {
	// Seed preloads the demo products and users at startup
	Seed bool `koanf:"seed"`
}

type ShutdownConfig struct {
	Timeout time.Duration `koanf:"timeout"`
}

func (c *ShutdownConfig) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("shutdown timeout is not configured")
	}
	return nil
}

// Validate checks if the configuration values are valid
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return err
	}
	if err := c.Log.Validate(); err != nil {
		return err
	}
	if err := c.OTLP.Validate(); err != nil {
		return err
	}
	if err := c.Shutdown.Validate(); err != nil {
		return err
	}
	return nil
}

func (c *Config) String() string {
	var b strings.Builder

	b.WriteString("\n--- Server Configuration ---\n")
	b.WriteString(fmt.Sprintf("  server.host: %s\n", c.Server.Host))
	b.WriteString(fmt.Sprintf("  server.port: %d\n", c.Server.Port))
	b.WriteString(fmt.Sprintf("  server.maxheaderbytes: %d\n", c.Server.MaxHeaderBytes))
	b.WriteString(fmt.Sprintf("  server.timeout.read: %v\n", c.Server.Timeout.Read))
	b.WriteString(fmt.Sprintf("  server.timeout.write: %v\n", c.Server.Timeout.Write))
	b.WriteString(fmt.Sprintf("  server.timeout.idle: %v\n", c.Server.Timeout.Idle))
	b.WriteString(fmt.Sprintf("  server.timeout.readheader: %v\n", c.Server.Timeout.ReadHeader))

	b.WriteString("\n--- Observability & Logging ---\n")
	b.WriteString(fmt.Sprintf("  log.level: %s\n", c.Log.Level))
	b.WriteString(fmt.Sprintf("  otlp.enabled: %t\n", c.OTLP.Enabled))
	b.WriteString(fmt.Sprintf("  otlp.endpoint: %s\n", c.OTLP.Endpoint))
	b.WriteString(fmt.Sprintf("  otlp.servicename: %s\n", c.OTLP.ServiceName))
	b.WriteString(fmt.Sprintf("  otlp.environment: %s\n", c.OTLP.Environment))
	b.WriteString(fmt.Sprintf("  metrics.durationms: %t\n", c.Metrics.DurationMs))

	b.WriteString("\n--- Application Behavior ---\n")
	b.WriteString(fmt.Sprintf("  catalog.seed: %t\n", c.Catalog.Seed))
	b.WriteString(fmt.Sprintf("  shutdown.timeout: %s\n", c.Shutdown.Timeout))

	return b.String()
}
