package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the tender registry.
type Metrics struct {
	TendersCreated prometheus.Counter
	TendersClosed  prometheus.Counter
	Rejections     *prometheus.CounterVec
	OpDuration     *prometheus.HistogramVec
}

// New registers the tender metrics with reg. Pass prometheus.DefaultRegisterer
// in production and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		TendersCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "procurement_tenders_created_total",
			Help: "Total number of tenders created",
		}),
		TendersClosed: f.NewCounter(prometheus.CounterOpts{
			Name: "procurement_tenders_closed_total",
			Help: "Total number of tenders closed",
		}),
		Rejections: f.NewCounterVec(prometheus.CounterOpts{
			Name: "procurement_tender_rejections_total",
			Help: "Tender registry calls rejected, by operation and ledger code",
		}, []string{"operation", "code"}),
		OpDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "procurement_tender_operation_duration_seconds",
			Help:    "Duration of tender registry operations",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		}, []string{"operation"}),
	}
}

func (m *Metrics) IncrementTendersCreated() {
	m.TendersCreated.Inc()
}

func (m *Metrics) IncrementTendersClosed() {
	m.TendersClosed.Inc()
}

func (m *Metrics) IncrementRejection(operation string, code uint32) {
	m.Rejections.WithLabelValues(operation, strconv.FormatUint(uint64(code), 10)).Inc()
}

// ObserveOperation records the duration of an operation.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveOperation(operation string, start time.Time) {
	m.OpDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
