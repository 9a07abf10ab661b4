package monitoring

import (
	"net/http"
	"sync"

	"github.com/GriffinCanCode/tickprof/internal/profiler"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	TurnsTotal    prometheus.Counter
	ReportsTotal  *prometheus.CounterVec
	PanicFlushes  prometheus.Counter
	TurnUsage     prometheus.Histogram
	TurnRatio     prometheus.Histogram
	TurnEvents    prometheus.Histogram
	LastTurnUsage prometheus.Gauge

	gatherer prometheus.Gatherer

	// Snapshot for summaries - track current values
	snapshot Snapshot
	mu       sync.RWMutex
}

// Snapshot holds running totals for a quick summary.
type Snapshot struct {
	Turns    int64   `json:"turns"`
	Reports  int64   `json:"reports"`
	Panics   int64   `json:"panics"`
	MaxUsage float64 `json:"maxUsage"`
	SumUsage float64 `json:"sumUsage"`
}

// NewMetrics registers the metrics on reg. A nil reg uses a fresh registry.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)

	return &Metrics{
		gatherer: reg,

		TurnsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "tickprof_turns_total",
				Help: "Total number of completed turns",
			},
		),
		ReportsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tickprof_reports_total",
				Help: "Total number of trace reports emitted",
			},
			[]string{"reason"},
		),
		PanicFlushes: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "tickprof_panic_flushes_total",
				Help: "Total number of emergency flushes",
			},
		),
		TurnUsage: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "tickprof_turn_usage_ms",
				Help:    "Usage clock reading at turn end, in milliseconds",
				Buckets: []float64{1, 2.5, 5, 10, 20, 50, 100, 250, 500, 1000},
			},
		),
		TurnRatio: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "tickprof_turn_usage_ratio",
				Help:    "Turn usage divided by the turn limit",
				Buckets: []float64{.1, .25, .5, .75, .9, 1, 1.5, 2, 5},
			},
		),
		TurnEvents: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "tickprof_turn_events",
				Help:    "Span events recorded per turn",
				Buckets: prometheus.ExponentialBuckets(2, 4, 8),
			},
		),
		LastTurnUsage: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "tickprof_last_turn_usage_ms",
				Help: "Usage of the most recent turn, in milliseconds",
			},
		),
	}
}

// TurnStarted implements profiler.Observer.
func (m *Metrics) TurnStarted() {}

// TurnEnded records a finished turn.
func (m *Metrics) TurnEnded(stats profiler.TurnStats) {
	m.TurnsTotal.Inc()
	m.TurnUsage.Observe(stats.Used)
	m.TurnEvents.Observe(float64(stats.Events))
	m.LastTurnUsage.Set(stats.Used)
	if stats.Limit > 0 {
		m.TurnRatio.Observe(stats.Used / stats.Limit)
	}

	m.mu.Lock()
	m.snapshot.Turns++
	m.snapshot.SumUsage += stats.Used
	if stats.Used > m.snapshot.MaxUsage {
		m.snapshot.MaxUsage = stats.Used
	}
	m.mu.Unlock()
}

// ReportFlushed records an emitted report.
func (m *Metrics) ReportFlushed(reason profiler.FlushReason, _ int) {
	m.ReportsTotal.WithLabelValues(string(reason)).Inc()
	if reason == profiler.ReasonPanic {
		m.PanicFlushes.Inc()
	}

	m.mu.Lock()
	m.snapshot.Reports++
	if reason == profiler.ReasonPanic {
		m.snapshot.Panics++
	}
	m.mu.Unlock()
}

// Snapshot returns a copy of the running totals.
func (m *Metrics) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshot
}

// AverageUsage returns mean turn usage, or 0 before the first turn.
func (s Snapshot) AverageUsage() float64 {
	if s.Turns == 0 {
		return 0
	}
	return s.SumUsage / float64(s.Turns)
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
