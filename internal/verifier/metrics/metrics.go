package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Requests          *prometheus.CounterVec
	Verified          prometheus.Counter
	SnapshotsIngested *prometheus.CounterVec
	Rejections        *prometheus.CounterVec
	OpDuration        *prometheus.HistogramVec
}

func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Requests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "procurement_verification_requests_total",
			Help: "Verification requests logged, by target kind",
		}, []string{"kind"}),
		Verified: f.NewCounter(prometheus.CounterOpts{
			Name: "procurement_verification_requests_verified_total",
			Help: "Verification requests confirmed by the authority",
		}),
		SnapshotsIngested: f.NewCounterVec(prometheus.CounterOpts{
			Name: "procurement_audit_snapshots_ingested_total",
			Help: "Audit snapshots stored, by kind",
		}, []string{"kind"}),
		Rejections: f.NewCounterVec(prometheus.CounterOpts{
			Name: "procurement_verifier_rejections_total",
			Help: "Verifier calls rejected, by operation and ledger code",
		}, []string{"operation", "code"}),
		OpDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "procurement_verifier_operation_duration_seconds",
			Help:    "Duration of verifier operations",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		}, []string{"operation"}),
	}
}

func (m *Metrics) IncrementRequests(kind string) {
	m.Requests.WithLabelValues(kind).Inc()
}

func (m *Metrics) IncrementVerified() {
	m.Verified.Inc()
}

func (m *Metrics) IncrementSnapshots(kind string) {
	m.SnapshotsIngested.WithLabelValues(kind).Inc()
}

func (m *Metrics) IncrementRejection(operation string, code uint32) {
	m.Rejections.WithLabelValues(operation, strconv.FormatUint(uint64(code), 10)).Inc()
}

func (m *Metrics) ObserveOperation(operation string, start time.Time) {
	m.OpDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
