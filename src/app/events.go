package app

import (
	"context"
	"log/slog"

	"filmgraph/src/helper/env"
	"filmgraph/src/infra/kafka"
	"filmgraph/src/services/events"

	"go.uber.org/fx"
)

// newKafkaClient devolve nil quando KAFKA_BROKERS não está configurado.
func newKafkaClient(lc fx.Lifecycle, logger *slog.Logger, cfg KafkaConfig) (*kafka.KafkaClient, error) {
	brokers := env.GetString("KAFKA_BROKERS")
	if brokers == "" {
		return nil, nil
	}

	client, err := kafka.NewKafkaClient(logger, brokers, cfg.GroupID, env.GetInt("KAFKA_BATCH_SIZE", 100))
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			logger.Info("Shutting down Kafka client...")
			return client.Close()
		},
	})

	return client, nil
}

func newEventPublisher(logger *slog.Logger, kafkaClient *kafka.KafkaClient) events.Publisher {
	if kafkaClient == nil {
		logger.Warn("KAFKA_BROKERS not set, domain events will only be logged")
		return events.NewLogPublisher(logger)
	}

	topic := env.GetString("KAFKA_DOMAIN_EVENTS_TOPIC", "filmgraph.domain-events")
	return events.NewDomainEventPublisher(logger, kafkaClient, topic)
}
