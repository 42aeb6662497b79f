package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"filmgraph/src/domain"
	"filmgraph/src/infra/kafka"

	"github.com/google/uuid"
)

const (
	sourceService = "filmgraph"
	schemaVersion = "v1"
)

// MessageProducer é satisfeito pelo *kafka.KafkaClient.
type MessageProducer interface {
	Producer(ctx context.Context, messages []kafka.Message, topic string) error
}

type DomainEventPublisher struct {
	logger   *slog.Logger
	producer MessageProducer
	topic    string
}

func NewDomainEventPublisher(
	logger *slog.Logger,
	producer MessageProducer,
	topic string,
) *DomainEventPublisher {
	return &DomainEventPublisher{
		logger:   logger,
		producer: producer,
		topic:    topic,
	}
}

// Publish envia um evento já persistido. A chave é o agregado do evento, então
// eventos do mesmo par/filme/review caem na mesma partição e mantêm a ordem.
func (p *DomainEventPublisher) Publish(ctx context.Context, event domain.DomainEvent) error {
	return p.PublishDomainEvents(ctx, []domain.DomainEvent{event})
}

func (p *DomainEventPublisher) PublishDomainEvents(ctx context.Context, events []domain.DomainEvent) error {
	if len(events) == 0 {
		return nil
	}

	kafkaMessages := make([]kafka.Message, 0, len(events))

	for _, event := range events {
		eventBytes, err := json.Marshal(event)
		if err != nil {
			return fmt.Errorf("failed to marshal domain event %s: %w", event.Type, err)
		}

		kafkaMessages = append(kafkaMessages, kafka.Message{
			Key:     event.AggregateKey(),
			Value:   eventBytes,
			Headers: createEventHeaders(event),
		})
	}

	if err := p.producer.Producer(ctx, kafkaMessages, p.topic); err != nil {
		return fmt.Errorf("failed to publish domain events to topic %s: %w", p.topic, err)
	}

	p.logger.Debug("Published domain events", "topic", p.topic, "events_count", len(kafkaMessages))

	return nil
}

// createEventHeaders permite filtrar eventos sem desserializar o payload.
func createEventHeaders(event domain.DomainEvent) map[string]string {
	headers := map[string]string{
		"event_type":     event.Type,
		"event_id":       uuid.NewString(),
		"source_service": sourceService,
		"schema_version": schemaVersion,
	}

	if event.Polarity != "" {
		headers["polarity"] = string(event.Polarity)
	}

	return headers
}

// Publisher é o contrato comum aos serviços que emitem eventos de domínio.
type Publisher interface {
	Publish(ctx context.Context, event domain.DomainEvent) error
}
