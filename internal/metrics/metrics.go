// Package metrics exposes lane guidance counters in Prometheus format.
package metrics

import (
	"net/http"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/banshee-data/laneguide/internal/clearance"
)

// Metrics holds the run and server counters. It is also a measurement sink,
// so a run can publish live frame counts while it processes.
type Metrics struct {
	// Frame counters
	FramesProcessed atomic.Uint64
	FramesGood      atomic.Uint64
	FramesOnLine    atomic.Uint64
	FramesNoLane    atomic.Uint64

	// LastClearancePx is the latest measured clearance; -1 for NO LANE.
	LastClearancePx atomic.Int64
	// LastTimestampMs is the video time of the latest frame.
	LastTimestampMs atomic.Uint64

	// Run and API counters
	RunsCompleted atomic.Uint64
	RunsFailed    atomic.Uint64
	APIRequests   atomic.Uint64

	clearanceHist prometheus.Histogram
	registry      *prometheus.Registry
}

// New creates a Metrics instance with its own registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		clearanceHist: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "laneguide_clearance_px",
			Help:    "Measured clearance between the vehicle line and the nearest lane pixel",
			Buckets: []float64{5, 10, 20, 30, 45, 60, 90, 120, 180, 240, 360},
		}),
	}
	m.LastClearancePx.Store(-1)
	m.registerPrometheusMetrics()
	return m
}

func (m *Metrics) gauge(name, help string, f func() float64) {
	m.registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{Name: name, Help: help},
		f,
	))
}

func (m *Metrics) registerPrometheusMetrics() {
	load := func(v *atomic.Uint64) func() float64 {
		return func() float64 { return float64(v.Load()) }
	}

	m.gauge("laneguide_frames_processed_total", "Total frames evaluated", load(&m.FramesProcessed))
	m.gauge("laneguide_frames_good_total", "Frames classified GOOD", load(&m.FramesGood))
	m.gauge("laneguide_frames_on_line_total", "Frames classified BAD - ON LINE", load(&m.FramesOnLine))
	m.gauge("laneguide_frames_no_lane_total", "Frames classified NO LANE", load(&m.FramesNoLane))
	m.gauge("laneguide_last_clearance_px", "Latest measured clearance, -1 when no lane was found",
		func() float64 { return float64(m.LastClearancePx.Load()) })
	m.gauge("laneguide_last_timestamp_seconds", "Video time of the latest evaluated frame",
		func() float64 { return float64(m.LastTimestampMs.Load()) / 1000 })

	m.gauge("laneguide_runs_completed_total", "Runs that finished and were stored", load(&m.RunsCompleted))
	m.gauge("laneguide_runs_failed_total", "Runs that aborted with an error", load(&m.RunsFailed))
	m.gauge("laneguide_api_requests_total", "HTTP API requests served", load(&m.APIRequests))

	m.registry.MustRegister(m.clearanceHist)
}

// Record updates the frame counters from one measurement.
func (m *Metrics) Record(r clearance.Record) error {
	m.FramesProcessed.Add(1)
	switch r.Measurement.Status {
	case clearance.StatusGood:
		m.FramesGood.Add(1)
	case clearance.StatusOnLine:
		m.FramesOnLine.Add(1)
	default:
		m.FramesNoLane.Add(1)
	}
	if r.Measurement.Measured {
		m.LastClearancePx.Store(int64(r.Measurement.ClearancePx))
		m.clearanceHist.Observe(float64(r.Measurement.ClearancePx))
	} else {
		m.LastClearancePx.Store(-1)
	}
	if r.TimestampSec > 0 {
		m.LastTimestampMs.Store(uint64(r.TimestampSec * 1000))
	}
	return nil
}

// Close is a no-op; counters outlive the run.
func (m *Metrics) Close() error { return nil }

// Instrument counts requests served by h.
func (m *Metrics) Instrument(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.APIRequests.Add(1)
		h.ServeHTTP(w, r)
	})
}

// Handler returns the Prometheus HTTP handler.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for tests and extra collectors.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }
