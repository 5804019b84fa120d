// Package connpool provides a typed registry of keyed database connection
// handles with pluggable native backends and configurable observability.
package connpool

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"

	"github.com/fernandezvara/connpool/hooks"
)

// Config holds registry configuration
type Config struct {
	// Connection
	ConnectionString    string // Initial connection string for new connections
	HasConnectionString bool   // Apply ConnectionString on New (allows an empty string)

	// Observability (all optional)
	Logger          *slog.Logger          // Structured logger
	LogSlowOps      time.Duration         // Warn on operations slower than this (0 = disabled)
	MetricsRegistry prometheus.Registerer // Prometheus registry for metrics
	Tracer          trace.Tracer          // OpenTelemetry tracer
	Hooks           []hooks.Hook          // Additional operation hooks
}

// DefaultConfig returns a config that applies connString to new connections
func DefaultConfig(connString string) Config {
	return Config{
		ConnectionString:    connString,
		HasConnectionString: true,
	}
}

// applyDefaults normalizes the config before use
func (c *Config) applyDefaults() {
	if c.LogSlowOps < 0 {
		c.LogSlowOps = 0
	}
	if c.ConnectionString != "" {
		c.HasConnectionString = true
	}
}

// WithLogger enables operation logging
func (c Config) WithLogger(logger *slog.Logger) Config {
	c.Logger = logger
	return c
}

// WithSlowOpLog warns on operations slower than the threshold
func (c Config) WithSlowOpLog(threshold time.Duration) Config {
	c.LogSlowOps = threshold
	return c
}

// WithMetrics enables Prometheus metrics
func (c Config) WithMetrics(registry prometheus.Registerer) Config {
	c.MetricsRegistry = registry
	return c
}

// WithTracing enables OpenTelemetry tracing
func (c Config) WithTracing(tracer trace.Tracer) Config {
	c.Tracer = tracer
	return c
}

// WithHook adds a custom operation hook
func (c Config) WithHook(h hooks.Hook) Config {
	c.Hooks = append(append([]hooks.Hook(nil), c.Hooks...), h)
	return c
}
