package app

import (
	"context"
	"log/slog"
	"os"

	"filmgraph/src/helper/env"
	"filmgraph/src/infra/metrics"
	"filmgraph/src/services/engagement"
	"filmgraph/src/services/events"
	"filmgraph/src/services/friendship"
	"filmgraph/src/services/ranking"
	"filmgraph/src/services/recommendation"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/fx"
)

// EntityStore é tudo que os quatro serviços precisam do storage. É satisfeito
// pelo *memstore.Store e pelo *repositories.EntityStore.
type EntityStore interface {
	friendship.UserStore
	friendship.EdgeStore
	engagement.Store
	ranking.Store
	recommendation.Store
}

// HealthChecks são as dependências verificadas pelo /healthz.
type HealthChecks map[string]func(ctx context.Context) error

// KafkaConfig é fornecida por cada binário. GroupID vazio cria só o producer.
type KafkaConfig struct {
	GroupID string
}

// Module monta o engine: logger, métricas, storage, eventos e serviços.
var Module = fx.Options(
	fx.Provide(
		NewLogger,
		newRegistry,
		newRecorder,
		newEntityStore,
		newKafkaClient,
		newEventPublisher,
		newFriendshipService,
		newEngagementService,
		newRankingService,
		newRecommendationService,
	),
)

func NewLogger() *slog.Logger {
	logLevel := env.GetString("LOG_LEVEL", "info")
	var level slog.Level

	switch logLevel {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	logger := slog.New(h)
	slog.SetDefault(logger)
	return logger
}

func newRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

func newRecorder(reg *prometheus.Registry) *metrics.Recorder {
	return metrics.NewRecorder(reg)
}

func newFriendshipService(logger *slog.Logger, store EntityStore, publisher events.Publisher, recorder *metrics.Recorder) *friendship.FriendshipService {
	return friendship.NewFriendshipService(logger, store, store, publisher, recorder)
}

func newEngagementService(logger *slog.Logger, store EntityStore, publisher events.Publisher, recorder *metrics.Recorder) *engagement.EngagementService {
	return engagement.NewEngagementService(logger, store, publisher, recorder)
}

func newRankingService(logger *slog.Logger, store EntityStore, recorder *metrics.Recorder) *ranking.RankingService {
	return ranking.NewRankingService(logger, store, recorder)
}

func newRecommendationService(logger *slog.Logger, store EntityStore, recorder *metrics.Recorder) *recommendation.RecommendationService {
	return recommendation.NewRecommendationService(logger, store, recorder)
}
