package metrics_test

import (
	"errors"
	"fmt"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"filmgraph/src/domain"
	"filmgraph/src/infra/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

var _ = Describe("Recorder", func() {
	var (
		registry *prometheus.Registry
		recorder *metrics.Recorder
	)

	BeforeEach(func() {
		registry = prometheus.NewRegistry()
		recorder = metrics.NewRecorder(registry)
	})

	It("should count operations by outcome", func() {
		// ACT
		recorder.Observe("add_like", time.Now(), nil)
		recorder.Observe("add_like", time.Now(), nil)
		recorder.Observe("add_like", time.Now(), fmt.Errorf("wrapped: %w", domain.NewNotFound(domain.KindFilm, 1)))

		// ASSERT
		Expect(testutil.ToFloat64(registryCounter(registry, "add_like", metrics.OutcomeOK))).To(Equal(2.0))
		Expect(testutil.ToFloat64(registryCounter(registry, "add_like", metrics.OutcomeNotFound))).To(Equal(1.0))
	})

	It("should count cache lookups and publication failures", func() {
		// ACT
		recorder.CacheHit()
		recorder.CacheMiss()
		recorder.CacheMiss()
		recorder.EventPublishFailed(domain.EventLikeAdded)

		// ASSERT
		count, err := testutil.GatherAndCount(registry, "filmgraph_cache_lookups_total", "filmgraph_event_publish_failures_total")
		Expect(err).NotTo(HaveOccurred())
		Expect(count).To(Equal(3))
	})

	It("should accept a nil recorder", func() {
		var nilRecorder *metrics.Recorder

		Expect(func() {
			nilRecorder.Observe("get_popular", time.Now(), nil)
			nilRecorder.CacheHit()
			nilRecorder.CacheMiss()
			nilRecorder.EventPublishFailed(domain.EventVoteAdded)
		}).NotTo(Panic())
	})

	DescribeTable("Outcome",
		func(err error, expected string) {
			Expect(metrics.Outcome(err)).To(Equal(expected))
		},
		Entry("success", nil, metrics.OutcomeOK),
		Entry("not found", domain.NewNotFound(domain.KindUser, 1), metrics.OutcomeNotFound),
		Entry("invalid", domain.NewInvalidOperation("count"), metrics.OutcomeInvalidOperation),
		Entry("storage", domain.NewStorageError("like_set", errors.New("eof")), metrics.OutcomeStorage),
		Entry("anything else", errors.New("boom"), metrics.OutcomeError),
	)
})

// registryCounter recria o vetor com os mesmos opts para obter o filho já registrado.
func registryCounter(registry *prometheus.Registry, operation, outcome string) prometheus.Collector {
	counter := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "filmgraph_operations_total",
		Help: "Total number of engine operations by outcome",
	}, []string{"operation", "outcome"})

	var already prometheus.AlreadyRegisteredError
	if err := registry.Register(counter); errors.As(err, &already) {
		return already.ExistingCollector.(*prometheus.CounterVec).WithLabelValues(operation, outcome)
	}
	panic("operations counter was not registered")
}
