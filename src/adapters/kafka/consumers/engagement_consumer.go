package consumers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"filmgraph/src/domain"
	"filmgraph/src/domain/entities"
	"filmgraph/src/infra/kafka"
	"filmgraph/src/services/engagement"
)

const (
	ActionLikeAdd    = "like.add"
	ActionLikeRemove = "like.remove"
	ActionVoteAdd    = "vote.add"
	ActionVoteRemove = "vote.remove"
)

// EngagementCommand representa o schema da mensagem Kafka
type EngagementCommand struct {
	Action   string            `json:"action"`
	FilmID   int64             `json:"film_id,omitempty"`
	ReviewID int64             `json:"review_id,omitempty"`
	UserID   int64             `json:"user_id"`
	Polarity entities.Polarity `json:"polarity,omitempty"`
}

type EngagementConsumer struct {
	logger            *slog.Logger
	engagementService *engagement.EngagementService
}

func NewEngagementConsumer(
	logger *slog.Logger,
	engagementService *engagement.EngagementService,
) *EngagementConsumer {
	return &EngagementConsumer{
		logger:            logger,
		engagementService: engagementService,
	}
}

func (c *EngagementConsumer) Start(ctx context.Context, kafkaClient *kafka.KafkaClient, topic string) error {
	c.logger.Info("Starting engagement consumer", "topic", topic)

	return kafkaClient.Consumer(ctx, c.HandleMessages, topic)
}

// HandleMessages aplica os comandos na ordem do lote. Comandos inválidos ou
// sobre entidades inexistentes são descartados (nunca vão passar); falha de
// storage interrompe o lote para que ele seja reentregue.
func (c *EngagementConsumer) HandleMessages(ctx context.Context, messages []kafka.Message) error {
	if len(messages) == 0 {
		return nil
	}

	applied, skipped := 0, 0

	for _, msg := range messages {
		var command EngagementCommand
		if err := json.Unmarshal(msg.Value, &command); err != nil {
			c.logger.Error("Skipping malformed engagement command",
				"error", err,
				"key", msg.Key,
				"value", string(msg.Value))
			skipped++
			continue
		}

		err := c.apply(ctx, command)
		switch {
		case err == nil:
			applied++
		case errors.Is(err, domain.ErrEntityNotFound), errors.Is(err, domain.ErrInvalidOperation):
			c.logger.Warn("Skipping rejected engagement command",
				"error", err,
				"key", msg.Key,
				"action", command.Action,
				"user_id", command.UserID)
			skipped++
		default:
			c.logger.Error("Failed to apply engagement command",
				"error", err,
				"key", msg.Key,
				"action", command.Action)
			return fmt.Errorf("failed to apply engagement command with key %s: %w", msg.Key, err)
		}
	}

	c.logger.Info("Processed engagement batch",
		"count", len(messages),
		"applied", applied,
		"skipped", skipped)

	return nil
}

func (c *EngagementConsumer) apply(ctx context.Context, command EngagementCommand) error {
	switch command.Action {
	case ActionLikeAdd:
		return c.engagementService.AddLike(ctx, command.FilmID, command.UserID)
	case ActionLikeRemove:
		return c.engagementService.RemoveLike(ctx, command.FilmID, command.UserID)
	case ActionVoteAdd:
		_, err := c.engagementService.AddVote(ctx, command.ReviewID, command.UserID, command.Polarity)
		return err
	case ActionVoteRemove:
		_, err := c.engagementService.RemoveVote(ctx, command.ReviewID, command.UserID, command.Polarity)
		return err
	}
	return domain.NewInvalidOperation("unknown engagement action %q", command.Action)
}
