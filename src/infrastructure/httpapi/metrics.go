package httpapi

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MohammedBenaboud/Alphaseeker/src/application/pipeline"
	"github.com/MohammedBenaboud/Alphaseeker/src/application/tune"
	"github.com/MohammedBenaboud/Alphaseeker/src/domain"
)

// MetricsRegistry holds the Prometheus metrics for the scan loop.
type MetricsRegistry struct {
	registry *prometheus.Registry

	CyclesTotal     prometheus.Counter
	ExecutionsTotal *prometheus.CounterVec
	FetchErrors     prometheus.Counter
	CycleDuration   prometheus.Histogram

	OpenPositions  prometheus.Gauge
	ExposureUSD    prometheus.Gauge
	SignalAccuracy prometheus.Gauge
	ErrorRate      prometheus.Gauge
	AssetsScanned  prometheus.Gauge
}

// NewMetricsRegistry creates the registry with all metrics registered.
func NewMetricsRegistry() *MetricsRegistry {
	m := &MetricsRegistry{
		registry: prometheus.NewRegistry(),

		CyclesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "alphaseeker_cycles_total",
			Help: "Total number of completed scan cycles",
		}),
		ExecutionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "alphaseeker_executions_total",
			Help: "Execution log entries by kind",
		}, []string{"kind"}),
		FetchErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "alphaseeker_fetch_errors_total",
			Help: "Market data fetches that failed outright",
		}),
		CycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "alphaseeker_cycle_duration_seconds",
			Help:    "Wall time of one scan cycle",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
		}),

		OpenPositions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "alphaseeker_open_positions",
			Help: "Currently held simulated positions",
		}),
		ExposureUSD: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "alphaseeker_exposure_usd",
			Help: "Total simulated capital at risk",
		}),
		SignalAccuracy: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "alphaseeker_signal_accuracy_percent",
			Help: "Rolling signal accuracy over the recent outcome window",
		}),
		ErrorRate: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "alphaseeker_error_rate_percent",
			Help: "Share of rejections in the recent execution log",
		}),
		AssetsScanned: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "alphaseeker_assets_scanned",
			Help: "Assets in the most recent batch",
		}),
	}

	m.registry.MustRegister(
		m.CyclesTotal, m.ExecutionsTotal, m.FetchErrors, m.CycleDuration,
		m.OpenPositions, m.ExposureUSD, m.SignalAccuracy, m.ErrorRate, m.AssetsScanned,
	)
	return m
}

// ObserveCycle records everything one completed cycle produced.
func (m *MetricsRegistry) ObserveCycle(assets int, portfolio domain.Portfolio,
	newLogs []pipeline.ExecutionLogEntry, metric tune.SystemMetric, elapsed time.Duration) {

	m.CyclesTotal.Inc()
	m.CycleDuration.Observe(elapsed.Seconds())
	m.AssetsScanned.Set(float64(assets))

	for _, entry := range newLogs {
		m.ExecutionsTotal.WithLabelValues(string(entry.Kind)).Inc()
	}

	m.OpenPositions.Set(float64(len(portfolio)))
	m.ExposureUSD.Set(portfolio.Exposure())
	m.SignalAccuracy.Set(metric.SignalAccuracy)
	m.ErrorRate.Set(metric.ErrorRate)
}

// Handler exposes the registry in Prometheus text format.
func (m *MetricsRegistry) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
