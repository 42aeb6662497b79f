package engagement

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"filmgraph/src/domain"
	"filmgraph/src/domain/entities"
	"filmgraph/src/infra/metrics"
)

// Store é a parte do Entity Store usada pelo ledger de likes e votos.
// PersistVoteEdge deve aplicar o ajuste de score na mesma transação da aresta.
type Store interface {
	UserExists(ctx context.Context, userID int64) (bool, error)
	FilmExists(ctx context.Context, filmID int64) (bool, error)
	FetchReview(ctx context.Context, reviewID int64) (*entities.Review, error)
	PersistLikeEdge(ctx context.Context, op domain.EdgeOp, filmID, userID int64) (bool, error)
	LikedBy(ctx context.Context, filmID int64) ([]int64, error)
	PersistVoteEdge(ctx context.Context, op domain.EdgeOp, vote entities.VoteEdge) (domain.VoteChange, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, event domain.DomainEvent) error
}

type EngagementService struct {
	logger    *slog.Logger
	store     Store
	publisher EventPublisher
	recorder  *metrics.Recorder
}

func NewEngagementService(
	logger *slog.Logger,
	store Store,
	publisher EventPublisher,
	recorder *metrics.Recorder,
) *EngagementService {
	return &EngagementService{
		logger:    logger,
		store:     store,
		publisher: publisher,
		recorder:  recorder,
	}
}

func (s *EngagementService) ensureUser(ctx context.Context, userID int64) error {
	exists, err := s.store.UserExists(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to check user %d: %w", userID, domain.AsStorageError("user_exists", err))
	}
	if !exists {
		return domain.NewNotFound(domain.KindUser, userID)
	}
	return nil
}

func (s *EngagementService) ensureFilm(ctx context.Context, filmID int64) error {
	exists, err := s.store.FilmExists(ctx, filmID)
	if err != nil {
		return fmt.Errorf("failed to check film %d: %w", filmID, domain.AsStorageError("film_exists", err))
	}
	if !exists {
		return domain.NewNotFound(domain.KindFilm, filmID)
	}
	return nil
}

func (s *EngagementService) fetchReview(ctx context.Context, reviewID int64) (*entities.Review, error) {
	review, err := s.store.FetchReview(ctx, reviewID)
	if err != nil {
		return nil, domain.AsStorageError("fetch_review", err)
	}
	if review == nil {
		return nil, domain.NewNotFound(domain.KindReview, reviewID)
	}
	return review, nil
}

func (s *EngagementService) emit(ctx context.Context, event domain.DomainEvent) {
	if s.publisher == nil {
		return
	}

	event.OccurredAt = time.Now().UTC().UnixMilli()

	if err := s.publisher.Publish(ctx, event); err != nil {
		s.recorder.EventPublishFailed(event.Type)
		s.logger.Error("Failed to publish engagement event",
			"error", err,
			"event_type", event.Type,
			"user_id", event.UserID,
			"film_id", event.FilmID,
			"review_id", event.ReviewID)
	}
}
