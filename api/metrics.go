package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/warp/coverage-engine/coverage"
)

// Metrics holds the Prometheus collectors of the coverage API. Each Metrics
// owns its registry so tests can build as many as they like.
type Metrics struct {
	registry *prometheus.Registry

	reportsTotal      *prometheus.CounterVec
	gapsDetected      *prometheus.CounterVec
	paymentsRecorded  *prometheus.CounterVec
	alertsScheduled   *prometheus.GaugeVec
	alertScansTotal   *prometheus.CounterVec
	alertScanDuration prometheus.Histogram
}

// NewMetrics creates and registers all collectors.
func NewMetrics() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.reportsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "coverage",
			Name:      "reports_total",
			Help:      "Coverage computations served, by kind and outcome.",
		},
		[]string{"kind", "outcome"},
	)
	m.gapsDetected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "coverage",
			Name:      "gaps_detected_total",
			Help:      "Coverage gaps returned by the gap detector, by severity.",
		},
		[]string{"severity"},
	)
	m.paymentsRecorded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "coverage",
			Name:      "payments_recorded_total",
			Help:      "Payments appended to the ledger, by payer and outcome.",
		},
		[]string{"payer", "outcome"},
	)
	m.alertsScheduled = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "coverage",
			Name:      "portfolio_alerts",
			Help:      "Alerts found by the last portfolio scan, by priority.",
		},
		[]string{"priority"},
	)
	m.alertScansTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "coverage",
			Name:      "alert_scans_total",
			Help:      "Portfolio alert scans run by the scheduler, by outcome.",
		},
		[]string{"outcome"},
	)
	m.alertScanDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "coverage",
			Name:      "alert_scan_duration_seconds",
			Help:      "Duration of portfolio alert scans.",
			Buckets:   prometheus.DefBuckets,
		},
	)

	m.registry.MustRegister(
		m.reportsTotal,
		m.gapsDetected,
		m.paymentsRecorded,
		m.alertsScheduled,
		m.alertScansTotal,
		m.alertScanDuration,
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry for tests and extra collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) observeReport(kind string, err error) {
	m.reportsTotal.WithLabelValues(kind, outcome(err)).Inc()
}

func (m *Metrics) observeGaps(a coverage.GapAnalysis) {
	for _, g := range a.Gaps {
		m.gapsDetected.WithLabelValues(string(g.Severity)).Inc()
	}
}

func (m *Metrics) observePayment(payer string, err error) {
	m.paymentsRecorded.WithLabelValues(payer, outcome(err)).Inc()
}

func (m *Metrics) observeScan(alerts []coverage.RentalAlert, seconds float64, err error) {
	m.alertScansTotal.WithLabelValues(outcome(err)).Inc()
	m.alertScanDuration.Observe(seconds)
	if err != nil {
		return
	}
	counts := map[coverage.Priority]int{
		coverage.PriorityCritical: 0,
		coverage.PriorityHigh:     0,
		coverage.PriorityMedium:   0,
	}
	for _, a := range alerts {
		counts[a.Priority]++
	}
	for p, n := range counts {
		m.alertsScheduled.WithLabelValues(string(p)).Set(float64(n))
	}
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case coverage.IsClientError(err):
		return "rejected"
	case coverage.IsNotFound(err):
		return "not_found"
	case coverage.IsConflict(err):
		return "conflict"
	default:
		return "error"
	}
}
