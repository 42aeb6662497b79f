package engagement

import (
	"context"
	"fmt"
	"slices"
	"time"

	"filmgraph/src/domain"
)

// AddLike registra que userID curtiu filmID. Curtir de novo é no-op.
func (s *EngagementService) AddLike(ctx context.Context, filmID, userID int64) (err error) {
	defer func(start time.Time) { s.recorder.Observe("add_like", start, err) }(time.Now())

	return s.persistLike(ctx, domain.EdgeAdd, filmID, userID)
}

// RemoveLike apaga a curtida. Remover uma curtida inexistente é no-op.
func (s *EngagementService) RemoveLike(ctx context.Context, filmID, userID int64) (err error) {
	defer func(start time.Time) { s.recorder.Observe("remove_like", start, err) }(time.Now())

	return s.persistLike(ctx, domain.EdgeRemove, filmID, userID)
}

// GetLikes retorna os IDs dos usuários que curtiram o filme, em ordem crescente.
func (s *EngagementService) GetLikes(ctx context.Context, filmID int64) (userIDs []int64, err error) {
	defer func(start time.Time) { s.recorder.Observe("get_likes", start, err) }(time.Now())

	if err := s.ensureFilm(ctx, filmID); err != nil {
		return nil, err
	}

	userIDs, err = s.store.LikedBy(ctx, filmID)
	if err != nil {
		return nil, fmt.Errorf("EngagementService.GetLikes - failed to load likes of film %d: %w", filmID, domain.AsStorageError("liked_by", err))
	}

	if userIDs == nil {
		userIDs = []int64{}
	}
	slices.Sort(userIDs)
	return userIDs, nil
}

func (s *EngagementService) persistLike(ctx context.Context, op domain.EdgeOp, filmID, userID int64) error {
	if err := s.ensureFilm(ctx, filmID); err != nil {
		return err
	}
	if err := s.ensureUser(ctx, userID); err != nil {
		return err
	}

	changed, err := s.store.PersistLikeEdge(ctx, op, filmID, userID)
	if err != nil {
		return fmt.Errorf("EngagementService.persistLike - failed to %s like (%d, %d): %w", op, filmID, userID, domain.AsStorageError("persist_like_edge", err))
	}

	if !changed {
		return nil
	}

	eventType := domain.EventLikeAdded
	if op == domain.EdgeRemove {
		eventType = domain.EventLikeRemoved
	}

	s.logger.Debug("Like edge changed", "op", op.String(), "film_id", filmID, "user_id", userID)
	s.emit(ctx, domain.DomainEvent{Type: eventType, FilmID: filmID, UserID: userID})

	return nil
}
