package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"filmgraph/src/adapters/kafka/consumers"
	"filmgraph/src/app"
	"filmgraph/src/helper/env"
	"filmgraph/src/infra/kafka"
	"filmgraph/src/services/engagement"

	"go.uber.org/fx"
)

func main() {
	log.SetOutput(os.Stdout)
	log.Println("Starting Engagement Consumer with Uber Fx...")

	fxApp := fx.New(
		app.Module,
		fx.Supply(app.KafkaConfig{GroupID: env.MustGetString("KAFKA_ENGAGEMENT_CONSUMER_GROUP_ID")}),

		// Providers
		fx.Provide(newEngagementConsumer),

		// Invocations
		fx.Invoke(startConsumer),
	)

	if err := fxApp.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start consumer application: %v", err)
	}

	// Wait for interrupt signal to gracefully shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	log.Println("Shutting down engagement consumer...")

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer stopCancel()

	if err := fxApp.Stop(stopCtx); err != nil {
		log.Printf("Failed to stop application gracefully: %v", err)
	}

	log.Println("Engagement consumer shutdown complete")
}

func newEngagementConsumer(
	logger *slog.Logger,
	engagementService *engagement.EngagementService,
) *consumers.EngagementConsumer {
	return consumers.NewEngagementConsumer(logger, engagementService)
}

func startConsumer(
	lc fx.Lifecycle,
	logger *slog.Logger,
	kafkaClient *kafka.KafkaClient,
	engagementConsumer *consumers.EngagementConsumer,
) error {
	if kafkaClient == nil {
		return errors.New("KAFKA_BROKERS is required by the engagement consumer")
	}

	topic := env.MustGetString("KAFKA_ENGAGEMENT_COMMANDS_TOPIC")

	// o ctx do OnStart expira depois da inicialização; o consumer vive até o OnStop
	consumerCtx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				defer close(done)
				if err := engagementConsumer.Start(consumerCtx, kafkaClient, topic); err != nil {
					logger.Error("Consumer failed", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			cancel()
			select {
			case <-done:
			case <-ctx.Done():
				return ctx.Err()
			}
			return nil
		},
	})

	return nil
}
