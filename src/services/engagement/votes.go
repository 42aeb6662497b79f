package engagement

import (
	"context"
	"fmt"
	"time"

	"filmgraph/src/domain"
	"filmgraph/src/domain/entities"
)

// AddVote registra o voto de userID na review. Cada usuário tem no máximo um
// voto por review: um voto de polaridade oposta substitui o anterior e um voto
// idêntico é no-op. Retorna a review com o score atualizado.
func (s *EngagementService) AddVote(ctx context.Context, reviewID, userID int64, polarity entities.Polarity) (review *entities.Review, err error) {
	defer func(start time.Time) { s.recorder.Observe("add_vote", start, err) }(time.Now())

	if !polarity.Valid() {
		return nil, domain.NewInvalidOperation("unknown vote polarity %q", polarity)
	}

	review, err = s.fetchReview(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if err := s.ensureUser(ctx, userID); err != nil {
		return nil, err
	}

	change, err := s.store.PersistVoteEdge(ctx, domain.EdgeAdd, entities.VoteEdge{ReviewID: reviewID, UserID: userID, Polarity: polarity})
	if err != nil {
		return nil, fmt.Errorf("EngagementService.AddVote - failed to persist vote (%d, %d, %s): %w", reviewID, userID, polarity, domain.AsStorageError("persist_vote_edge", err))
	}

	review.Useful = change.Useful

	if change.Changed {
		s.emit(ctx, domain.DomainEvent{
			Type:     domain.EventVoteAdded,
			ReviewID: reviewID,
			UserID:   userID,
			Polarity: polarity,
			Previous: change.Previous,
			Useful:   &change.Useful,
		})
	}

	return review, nil
}

// RemoveVote desfaz o voto de userID com a polaridade informada. Se o usuário
// não tem esse voto na review, nada muda.
func (s *EngagementService) RemoveVote(ctx context.Context, reviewID, userID int64, polarity entities.Polarity) (review *entities.Review, err error) {
	defer func(start time.Time) { s.recorder.Observe("remove_vote", start, err) }(time.Now())

	if !polarity.Valid() {
		return nil, domain.NewInvalidOperation("unknown vote polarity %q", polarity)
	}

	review, err = s.fetchReview(ctx, reviewID)
	if err != nil {
		return nil, err
	}

	change, err := s.store.PersistVoteEdge(ctx, domain.EdgeRemove, entities.VoteEdge{ReviewID: reviewID, UserID: userID, Polarity: polarity})
	if err != nil {
		return nil, fmt.Errorf("EngagementService.RemoveVote - failed to remove vote (%d, %d, %s): %w", reviewID, userID, polarity, domain.AsStorageError("persist_vote_edge", err))
	}

	review.Useful = change.Useful

	if change.Changed {
		s.emit(ctx, domain.DomainEvent{
			Type:     domain.EventVoteRemoved,
			ReviewID: reviewID,
			UserID:   userID,
			Polarity: polarity,
			Useful:   &change.Useful,
		})
	}

	return review, nil
}
