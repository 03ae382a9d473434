package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"Conflux/internal/domain/models"
	domrepo "Conflux/internal/domain/repository"
)

// Recorder implements domain repository.Metrics using Prometheus.
type Recorder struct {
	signalsTotal    *prometheus.CounterVec
	outcomesTotal   *prometheus.CounterVec
	unknownOutcomes prometheus.Counter
	errorsTotal     *prometheus.CounterVec
	latency         *prometheus.HistogramVec
	filterWeight    *prometheus.GaugeVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		signalsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "conflux_signals_total",
				Help: "Signals evaluated, labeled by gate result and regime",
			},
			[]string{"result", "regime"},
		),
		outcomesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "conflux_outcomes_total",
				Help: "Trade outcomes recorded, labeled by result",
			},
			[]string{"result"},
		),
		unknownOutcomes: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "conflux_unknown_outcomes_total",
				Help: "Outcomes received for unknown or expired signal ids",
			},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "conflux_errors_total",
				Help: "Recovered errors, labeled by kind",
			},
			[]string{"kind"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "conflux_operation_duration_seconds",
				Help:    "Duration of engine operations in seconds",
				Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.5},
			},
			[]string{"operation"},
		),
		filterWeight: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "conflux_filter_weight",
				Help: "Current global learned weight per filter",
			},
			[]string{"filter"},
		),
	}
}

func (r *Recorder) RecordSignal(result string, regime models.RegimeType) {
	r.signalsTotal.WithLabelValues(result, string(regime)).Inc()
}

func (r *Recorder) RecordOutcome(success bool) {
	result := "loss"
	if success {
		result = "win"
	}
	r.outcomesTotal.WithLabelValues(result).Inc()
}

func (r *Recorder) RecordUnknownOutcome() {
	r.unknownOutcomes.Inc()
}

func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

func (r *Recorder) RecordWeight(filter string, weight float64) {
	r.filterWeight.WithLabelValues(filter).Set(weight)
}

var _ domrepo.Metrics = (*Recorder)(nil)
