package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics are the counters exported on /metrics
type Metrics struct {
	Conversions *prometheus.CounterVec
	Duration    prometheus.Histogram
	Triangles   prometheus.Counter
	Renders     *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them on reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Conversions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stl2glb_conversions_total",
			Help: "STL to GLB conversions by result.",
		}, []string{"result"}),
		Duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "stl2glb_conversion_seconds",
			Help:    "Time spent decoding STL and encoding GLB.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 4, 8),
		}),
		Triangles: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stl2glb_triangles_total",
			Help: "Triangles converted.",
		}),
		Renders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stl2glb_renders_total",
			Help: "OpenSCAD renders by result.",
		}, []string{"result"}),
	}

	reg.MustRegister(
		m.Conversions,
		m.Duration,
		m.Triangles,
		m.Renders,
		collectors.NewGoCollector(),
	)

	return m
}
