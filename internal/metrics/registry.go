package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry holds the alert metrics on its own prometheus registry so a
// one-shot run can dump them to a node_exporter textfile.
type Registry struct {
	reg *prometheus.Registry

	callsTotal         *prometheus.CounterVec
	callDuration       prometheus.Histogram
	devicesDispatched  prometheus.Counter
	validationFailures prometheus.Counter
	lastRunTimestamp   prometheus.Gauge
}

// NewRegistry creates a new metrics registry
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Registry{
		reg: reg,
		callsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "insteon_alert_calls_total",
			Help: "Total number of calls sent to the Insteon hub, by result",
		}, []string{"result"}),
		callDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "insteon_alert_call_duration_seconds",
			Help:    "Duration of a single hub call",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		devicesDispatched: factory.NewCounter(prometheus.CounterOpts{
			Name: "insteon_alert_devices_dispatched_total",
			Help: "Total number of devices a command was dispatched to",
		}),
		validationFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "insteon_alert_validation_failures_total",
			Help: "Total number of alert runs rejected before dispatch",
		}),
		lastRunTimestamp: factory.NewGauge(prometheus.GaugeOpts{
			Name: "insteon_alert_last_run_timestamp_seconds",
			Help: "Unix time the last alert run finished",
		}),
	}
}

// ObserveCall records the outcome and latency of one hub call
func (r *Registry) ObserveCall(success bool, d time.Duration) {
	result := "failure"
	if success {
		result = "success"
	}
	r.callsTotal.WithLabelValues(result).Inc()
	r.callDuration.Observe(d.Seconds())
}

func (r *Registry) IncDevicesDispatched() {
	r.devicesDispatched.Inc()
}

func (r *Registry) IncValidationFailures() {
	r.validationFailures.Inc()
}

func (r *Registry) SetLastRun(t time.Time) {
	r.lastRunTimestamp.Set(float64(t.Unix()))
}

// Gatherer exposes the underlying registry, mainly for tests.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}

// WriteTextfile writes all metrics in the text exposition format. The file
// is written to a temp file and renamed so collectors never see a partial file.
func (r *Registry) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.reg); err != nil {
		return fmt.Errorf("writing metrics textfile: %w", err)
	}
	return nil
}
