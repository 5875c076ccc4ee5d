// Package metrics counts provider attempts on a private prometheus registry.
package metrics

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/common/expfmt"

	"github.com/chriscorrea/nodellm/internal/llm/common"
)

// Namespace prefixes every metric name
const Namespace = "nodellm"

// Collector implements common.Recorder
type Collector struct {
	registry *prometheus.Registry

	attemptsTotal   *prometheus.CounterVec
	attemptDuration *prometheus.HistogramVec

	logger *slog.Logger
}

var _ common.Recorder = (*Collector)(nil)

// NewCollector creates a collector with its own registry, so several
// collectors can coexist in one process
func NewCollector(namespace string, logger *slog.Logger) *Collector {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	c := &Collector{registry: reg, logger: logger}
	if c.logger != nil {
		c.logger = c.logger.With("component", "metrics")
	}

	c.attemptsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_attempts_total",
			Help:      "Total number of provider request attempts by outcome category",
		},
		[]string{"provider", "kind", "category"},
	)

	// image renders at 4K run for minutes
	c.attemptDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "provider_attempt_duration_seconds",
			Help:      "Provider request attempt duration in seconds",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"provider", "kind"},
	)

	return c
}

// ObserveAttempt records one attempt
func (c *Collector) ObserveAttempt(provider, kind, category string, elapsed time.Duration) {
	c.attemptsTotal.WithLabelValues(provider, kind, category).Inc()
	c.attemptDuration.WithLabelValues(provider, kind).Observe(elapsed.Seconds())

	if c.logger != nil {
		c.logger.Debug("attempt recorded",
			"provider", provider,
			"kind", kind,
			"category", category,
			"elapsed", elapsed)
	}
}

// Registry exposes the underlying registry
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// WriteText writes every metric in the Prometheus text exposition format
func (c *Collector) WriteText(w io.Writer) error {
	families, err := c.registry.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("failed to encode metric %s: %w", mf.GetName(), err)
		}
	}
	return nil
}
