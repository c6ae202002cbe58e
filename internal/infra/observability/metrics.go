package observability

import (
	"time"

	"github.com/hmoraes/bankist-api/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Metrics holds all Prometheus metrics for the Bankist API.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	operationDuration *prometheus.HistogramVec
	loginsTotal       *prometheus.CounterVec
	transfersTotal    *prometheus.CounterVec
	loansTotal        *prometheus.CounterVec
	sessionTimeouts   prometheus.Counter
	movementsRecorded prometheus.Counter
	activeSessions    prometheus.Gauge
	cacheHits         *prometheus.CounterVec
	cacheMisses       *prometheus.CounterVec
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. Using a private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		operationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bankist_operation_duration_seconds",
				Help:    "Duration of banking operations.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		loginsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bankist_logins_total",
				Help: "Total login attempts by outcome.",
			},
			[]string{"status"},
		),
		transfersTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bankist_transfers_total",
				Help: "Total transfer attempts by outcome.",
			},
			[]string{"status"},
		),
		loansTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bankist_loans_total",
				Help: "Total loan requests by outcome.",
			},
			[]string{"status"},
		),
		sessionTimeouts: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "bankist_session_timeouts_total",
				Help: "Sessions ended by the idle countdown reaching zero.",
			},
		),
		movementsRecorded: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "bankist_movements_recorded_total",
				Help: "Movements appended to any account ledger.",
			},
		),
		activeSessions: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "bankist_active_sessions",
				Help: "Currently active sessions (0 or 1 in the single-session model).",
			},
		),
		cacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bankist_cache_hits_total",
				Help: "Total cache hits.",
			},
			[]string{"cache"},
		),
		cacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bankist_cache_misses_total",
				Help: "Total cache misses.",
			},
			[]string{"cache"},
		),
	}
}

// RecordOperationDuration records the duration of a banking operation.
func (m *Metrics) RecordOperationDuration(operation string, d time.Duration) {
	m.operationDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// IncrLogin increments the login counter with an outcome label.
func (m *Metrics) IncrLogin(status string) {
	m.loginsTotal.WithLabelValues(status).Inc()
}

// IncrTransfer increments the transfer counter with an outcome label.
func (m *Metrics) IncrTransfer(status string) {
	m.transfersTotal.WithLabelValues(status).Inc()
}

// IncrLoan increments the loan counter with an outcome label.
func (m *Metrics) IncrLoan(status string) {
	m.loansTotal.WithLabelValues(status).Inc()
}

// IncrSessionTimeout increments the idle-timeout counter.
func (m *Metrics) IncrSessionTimeout() {
	m.sessionTimeouts.Inc()
}

// IncrMovements adds n recorded movements.
func (m *Metrics) IncrMovements(n int) {
	m.movementsRecorded.Add(float64(n))
}

// SetActiveSessions sets the active-session gauge.
func (m *Metrics) SetActiveSessions(n int) {
	m.activeSessions.Set(float64(n))
}

// IncrCacheHit increments the cache hit counter.
func (m *Metrics) IncrCacheHit(cache string) {
	m.cacheHits.WithLabelValues(cache).Inc()
}

// IncrCacheMiss increments the cache miss counter.
func (m *Metrics) IncrCacheMiss(cache string) {
	m.cacheMisses.WithLabelValues(cache).Inc()
}

// GetBankSnapshot returns a snapshot of the banking counters suitable for
// the GET /v1/metrics/bank endpoint.
// Note: Prometheus counters expose cumulative values.
func (m *Metrics) GetBankSnapshot() *domain.BankMetrics {
	logins := getCounterValue(m.loginsTotal, "success")
	failedLogins := getCounterValue(m.loginsTotal, "invalid") +
		getCounterValue(m.loginsTotal, "locked")
	transfers := getCounterValue(m.transfersTotal, "success")
	loans := getCounterValue(m.loansTotal, "approved")

	failureRate := float64(0)
	if logins+failedLogins > 0 {
		failureRate = failedLogins / (logins + failedLogins)
	}

	return &domain.BankMetrics{
		LoginsTotal:       int64(logins),
		FailedLogins:      int64(failedLogins),
		TransfersTotal:    int64(transfers),
		LoansTotal:        int64(loans),
		SessionTimeouts:   int64(getPlainCounterValue(m.sessionTimeouts)),
		ActiveSessions:    int64(getGaugeValue(m.activeSessions)),
		LoginFailureRate:  failureRate,
		MovementsRecorded: int64(getPlainCounterValue(m.movementsRecorded)),
	}
}

// getCounterValue extracts the current float64 value from a CounterVec for a given label.
func getCounterValue(cv *prometheus.CounterVec, label string) float64 {
	counter := cv.WithLabelValues(label)
	m := &dto.Metric{}
	if err := counter.(prometheus.Metric).Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}

func getPlainCounterValue(c prometheus.Counter) float64 {
	m := &dto.Metric{}
	if err := c.Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}

func getGaugeValue(g prometheus.Gauge) float64 {
	m := &dto.Metric{}
	if err := g.Write(m); err != nil {
		return 0
	}
	if m.Gauge != nil && m.Gauge.Value != nil {
		return *m.Gauge.Value
	}
	return 0
}
