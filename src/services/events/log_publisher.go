package events

import (
	"context"
	"log/slog"

	"filmgraph/src/domain"
)

// LogPublisher só registra o evento. Usado quando KAFKA_BROKERS não está configurado.
type LogPublisher struct {
	logger *slog.Logger
}

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(ctx context.Context, event domain.DomainEvent) error {
	p.logger.Debug("Domain event", "event_type", event.Type, "aggregate", event.AggregateKey())
	return nil
}
