// Package telemetry exposes Prometheus metrics of chart rendering.
package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Metrics holds the service collectors on a private registry.
type Metrics struct {
	registry   *prometheus.Registry
	transforms *prometheus.CounterVec
	duration   prometheus.Histogram
	boxes      prometheus.Histogram
	renders    *prometheus.CounterVec
}

// New creates and registers the collectors, plus the Go runtime and process
// collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		transforms: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "boxplot",
			Name:      "transforms_total",
			Help:      "Box-plot transforms by outcome.",
		}, []string{"outcome"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "boxplot",
			Name:      "transform_duration_seconds",
			Help:      "Time spent transforming query results into a chart option.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
		boxes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "boxplot",
			Name:      "transform_boxes",
			Help:      "Box entries per rendered chart.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		}),
		renders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "boxplot",
			Name:      "chart_renders_total",
			Help:      "Saved chart renders by source kind and outcome.",
		}, []string{"source", "outcome"}),
	}
	m.registry.MustRegister(
		m.transforms, m.duration, m.boxes, m.renders,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveTransform records one transform. A nil receiver is a no-op so
// callers can run without metrics.
func (m *Metrics) ObserveTransform(start time.Time, boxes int, err error) {
	if m == nil {
		return
	}
	m.duration.Observe(time.Since(start).Seconds())
	if err != nil {
		m.transforms.WithLabelValues(OutcomeError).Inc()
		return
	}
	m.transforms.WithLabelValues(OutcomeOK).Inc()
	m.boxes.Observe(float64(boxes))
}

// ObserveRender records one saved chart render.
func (m *Metrics) ObserveRender(source string, err error) {
	if m == nil {
		return
	}
	outcome := OutcomeOK
	if err != nil {
		outcome = OutcomeError
	}
	m.renders.WithLabelValues(source, outcome).Inc()
}

// Registry returns the registry the collectors are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
