package hooks

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// MetricsHook implements Prometheus metrics collection
type MetricsHook struct {
	opDuration  *prometheus.HistogramVec
	opTotal     *prometheus.CounterVec
	opErrors    *prometheus.CounterVec
	connections prometheus.Gauge
}

// NewMetricsHook creates a new metrics hook and registers collectors
func NewMetricsHook(registry prometheus.Registerer) (*MetricsHook, error) {
	h := &MetricsHook{
		opDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "connpool_operation_duration_seconds",
				Help:    "Duration of connection registry operations in seconds",
				Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1, 5},
			},
			[]string{"operation"},
		),
		opTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "connpool_operations_total",
				Help: "Total number of connection registry operations",
			},
			[]string{"operation"},
		),
		opErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "connpool_operation_errors_total",
				Help: "Total number of failed connection registry operations",
			},
			[]string{"operation"},
		),
		connections: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "connpool_connections",
				Help: "Number of connections currently registered across registries",
			},
		),
	}

	collectors := []prometheus.Collector{h.opDuration, h.opTotal, h.opErrors, h.connections}
	for i, c := range collectors {
		if err := registry.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if !errors.As(err, &are) {
				return nil, err
			}
			// Reuse the collector registered by an earlier registry
			switch i {
			case 0:
				h.opDuration = are.ExistingCollector.(*prometheus.HistogramVec)
			case 1:
				h.opTotal = are.ExistingCollector.(*prometheus.CounterVec)
			case 2:
				h.opErrors = are.ExistingCollector.(*prometheus.CounterVec)
			case 3:
				h.connections = are.ExistingCollector.(prometheus.Gauge)
			}
		}
	}

	return h, nil
}

// BeforeOperation is called before an operation is executed
func (h *MetricsHook) BeforeOperation(ctx context.Context, event *Event) context.Context {
	return ctx
}

// AfterOperation is called after an operation is executed
func (h *MetricsHook) AfterOperation(ctx context.Context, event *Event) {
	duration := time.Since(event.StartTime).Seconds()

	h.opDuration.WithLabelValues(event.Op).Observe(duration)
	h.opTotal.WithLabelValues(event.Op).Inc()

	// The gauge may be shared by several registries, so it moves by deltas
	if event.Op == OpCheckOutNew && event.Err == nil {
		h.connections.Inc()
	}
	if event.Removed > 0 {
		h.connections.Sub(float64(event.Removed))
	}

	if event.Err != nil {
		h.opErrors.WithLabelValues(event.Op).Inc()
	}
}
