package viewer

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus metrics exported by the viewer.
type Metrics struct {
	Requests        *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	ReportsComputed *prometheus.CounterVec
	ComputeDuration prometheus.Histogram

	CompletionPct  *prometheus.GaugeVec
	RiskLoad       *prometheus.GaugeVec
	TotalDelayDays *prometheus.GaugeVec
	CostVariance   *prometheus.GaugeVec
}

// NewMetrics creates the metrics and registers them with registry.
func NewMetrics(registry prometheus.Registerer) *Metrics {
	factory := promauto.With(registry)

	return &Metrics{
		Requests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gantry_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"route", "code"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gantry_http_request_duration_seconds",
				Help:    "HTTP request latency",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route"},
		),
		ReportsComputed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gantry_reports_computed_total",
				Help: "Total number of analytics reports computed",
			},
			[]string{"project"},
		),
		ComputeDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "gantry_compute_duration_seconds",
				Help:    "Time spent computing one report",
				Buckets: []float64{.001, .005, .01, .05, .1, .5, 1},
			},
		),
		CompletionPct: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "gantry_completion_percent",
				Help: "Completion percentage of the last computed report",
			},
			[]string{"project"},
		),
		RiskLoad: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "gantry_risk_load",
				Help: "Activities at risk, delayed or blocked in the last computed report",
			},
			[]string{"project"},
		),
		TotalDelayDays: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "gantry_delay_days",
				Help: "Attributed delay days in the last computed report",
			},
			[]string{"project"},
		),
		CostVariance: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "gantry_cost_variance",
				Help: "Forecast minus budget in the last computed report",
			},
			[]string{"project"},
		),
	}
}
