package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for bidder qualification.
type Metrics struct {
	BiddersRegistered prometheus.Counter
	Outcomes          *prometheus.CounterVec
	Rejections        *prometheus.CounterVec
	OpDuration        *prometheus.HistogramVec
}

func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		BiddersRegistered: f.NewCounter(prometheus.CounterOpts{
			Name: "procurement_bidders_registered_total",
			Help: "Total number of bidders registered",
		}),
		Outcomes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "procurement_qualification_outcomes_total",
			Help: "Qualification evaluations by outcome",
		}, []string{"outcome"}),
		Rejections: f.NewCounterVec(prometheus.CounterOpts{
			Name: "procurement_qualifier_rejections_total",
			Help: "Qualifier calls rejected, by operation and ledger code",
		}, []string{"operation", "code"}),
		OpDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "procurement_qualifier_operation_duration_seconds",
			Help:    "Duration of qualifier operations",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		}, []string{"operation"}),
	}
}

func (m *Metrics) IncrementBiddersRegistered() {
	m.BiddersRegistered.Inc()
}

// IncrementOutcome counts one evaluation, labelled by its criteria tag.
func (m *Metrics) IncrementOutcome(tag string) {
	m.Outcomes.WithLabelValues(tag).Inc()
}

func (m *Metrics) IncrementRejection(operation string, code uint32) {
	m.Rejections.WithLabelValues(operation, strconv.FormatUint(uint64(code), 10)).Inc()
}

func (m *Metrics) ObserveOperation(operation string, start time.Time) {
	m.OpDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
