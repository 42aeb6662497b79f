package friendship

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"filmgraph/src/domain"
	"filmgraph/src/domain/entities"
	"filmgraph/src/infra/metrics"
)

// UserStore é a parte do Entity Store que resolve usuários.
type UserStore interface {
	UserExists(ctx context.Context, userID int64) (bool, error)
	FetchUsers(ctx context.Context, userIDs []int64) ([]entities.User, error)
}

// EdgeStore persiste arestas de amizade. Cada aresta é uma única escrita
// sobre o par não ordenado, então os dois lados nunca divergem.
type EdgeStore interface {
	PersistFriendEdge(ctx context.Context, op domain.EdgeOp, userID, friendID int64) (bool, error)
	FriendIDs(ctx context.Context, userID int64) ([]int64, error)
	CommonFriendIDs(ctx context.Context, userID, otherID int64) ([]int64, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, event domain.DomainEvent) error
}

type FriendshipService struct {
	logger    *slog.Logger
	users     UserStore
	edges     EdgeStore
	publisher EventPublisher
	recorder  *metrics.Recorder
}

func NewFriendshipService(
	logger *slog.Logger,
	users UserStore,
	edges EdgeStore,
	publisher EventPublisher,
	recorder *metrics.Recorder,
) *FriendshipService {
	return &FriendshipService{
		logger:    logger,
		users:     users,
		edges:     edges,
		publisher: publisher,
		recorder:  recorder,
	}
}

// ensureUsers valida todos os IDs antes de qualquer escrita.
func (s *FriendshipService) ensureUsers(ctx context.Context, userIDs ...int64) error {
	for _, userID := range userIDs {
		exists, err := s.users.UserExists(ctx, userID)
		if err != nil {
			return fmt.Errorf("failed to check user %d: %w", userID, domain.AsStorageError("user_exists", err))
		}
		if !exists {
			return domain.NewNotFound(domain.KindUser, userID)
		}
	}
	return nil
}

func (s *FriendshipService) emit(ctx context.Context, eventType string, userID, friendID int64) {
	if s.publisher == nil {
		return
	}

	event := domain.DomainEvent{
		Type:       eventType,
		UserID:     userID,
		FriendID:   friendID,
		OccurredAt: time.Now().UTC().UnixMilli(),
	}

	if err := s.publisher.Publish(ctx, event); err != nil {
		s.recorder.EventPublishFailed(eventType)
		s.logger.Error("Failed to publish friendship event",
			"error", err,
			"event_type", eventType,
			"user_id", userID,
			"friend_id", friendID)
	}
}

func (s *FriendshipService) fetchUsers(ctx context.Context, userIDs []int64) ([]entities.User, error) {
	if len(userIDs) == 0 {
		return []entities.User{}, nil
	}

	users, err := s.users.FetchUsers(ctx, userIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch users: %w", domain.AsStorageError("fetch_users", err))
	}

	sortUsers(users)
	return users, nil
}
