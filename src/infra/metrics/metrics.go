package metrics

import (
	"errors"
	"time"

	"filmgraph/src/domain"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	OutcomeOK               = "ok"
	OutcomeNotFound         = "not_found"
	OutcomeInvalidOperation = "invalid_operation"
	OutcomeStorage          = "storage_error"
	OutcomeError            = "error"
)

// Recorder concentra as métricas do engine. Um Recorder nil é válido e não registra nada.
type Recorder struct {
	operations    *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	cacheLookups  *prometheus.CounterVec
	eventFailures *prometheus.CounterVec
}

func NewRecorder(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)

	return &Recorder{
		operations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "filmgraph_operations_total",
				Help: "Total number of engine operations by outcome",
			},
			[]string{"operation", "outcome"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "filmgraph_operation_duration_seconds",
				Help:    "Duration of engine operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		cacheLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "filmgraph_cache_lookups_total",
				Help: "Like-count cache lookups by result",
			},
			[]string{"result"},
		),
		eventFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "filmgraph_event_publish_failures_total",
				Help: "Domain events that could not be published",
			},
			[]string{"event_type"},
		),
	}
}

func (r *Recorder) Observe(operation string, start time.Time, err error) {
	if r == nil {
		return
	}
	r.operations.WithLabelValues(operation, Outcome(err)).Inc()
	r.duration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

func (r *Recorder) CacheHit() {
	if r == nil {
		return
	}
	r.cacheLookups.WithLabelValues("hit").Inc()
}

func (r *Recorder) CacheMiss() {
	if r == nil {
		return
	}
	r.cacheLookups.WithLabelValues("miss").Inc()
}

func (r *Recorder) EventPublishFailed(eventType string) {
	if r == nil {
		return
	}
	r.eventFailures.WithLabelValues(eventType).Inc()
}

func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, domain.ErrEntityNotFound):
		return OutcomeNotFound
	case errors.Is(err, domain.ErrInvalidOperation):
		return OutcomeInvalidOperation
	case errors.Is(err, domain.ErrStorage):
		return OutcomeStorage
	}
	return OutcomeError
}
