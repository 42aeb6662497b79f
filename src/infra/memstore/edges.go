package memstore

import (
	"context"

	"filmgraph/src/domain"
	"filmgraph/src/domain/entities"
)

// PersistFriendEdge grava o par canônico e o índice de adjacência dos dois
// lados sob o mesmo lock.
func (s *Store) PersistFriendEdge(ctx context.Context, op domain.EdgeOp, userID, friendID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("persist_friend_edge"); err != nil {
		return false, err
	}
	if userID == friendID {
		return false, domain.NewInvalidOperation("friend edge needs two distinct users")
	}

	low, high := entities.FriendEdge{UserID: userID, FriendID: friendID}.Canonical()
	pair := friendPair{low: low, high: high}
	_, exists := s.friendEdges[pair]

	switch op {
	case domain.EdgeAdd:
		if exists {
			return false, nil
		}
		s.friendEdges[pair] = struct{}{}
		addToIndex(s.friendIndex, low, high)
		addToIndex(s.friendIndex, high, low)
		return true, nil
	case domain.EdgeRemove:
		if !exists {
			return false, nil
		}
		delete(s.friendEdges, pair)
		removeFromIndex(s.friendIndex, low, high)
		removeFromIndex(s.friendIndex, high, low)
		return true, nil
	}

	return false, domain.NewInvalidOperation("unknown edge op %d", op)
}

func (s *Store) FriendIDs(ctx context.Context, userID int64) ([]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.fail("friend_ids"); err != nil {
		return nil, err
	}
	return keys(s.friendIndex[userID]), nil
}

// CommonFriendIDs intersecta os dois conjuntos sob a mesma leitura.
func (s *Store) CommonFriendIDs(ctx context.Context, userID, otherID int64) ([]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.fail("common_friend_ids"); err != nil {
		return nil, err
	}

	common := make(map[int64]struct{})
	for friendID := range s.friendIndex[userID] {
		if _, ok := s.friendIndex[otherID][friendID]; ok {
			common[friendID] = struct{}{}
		}
	}
	return keys(common), nil
}

func (s *Store) PersistLikeEdge(ctx context.Context, op domain.EdgeOp, filmID, userID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("persist_like_edge"); err != nil {
		return false, err
	}

	_, exists := s.filmLikes[filmID][userID]

	switch op {
	case domain.EdgeAdd:
		if exists {
			return false, nil
		}
		addToIndex(s.filmLikes, filmID, userID)
		addToIndex(s.userLikes, userID, filmID)
		return true, nil
	case domain.EdgeRemove:
		if !exists {
			return false, nil
		}
		removeFromIndex(s.filmLikes, filmID, userID)
		removeFromIndex(s.userLikes, userID, filmID)
		return true, nil
	}

	return false, domain.NewInvalidOperation("unknown edge op %d", op)
}

func (s *Store) LikedBy(ctx context.Context, filmID int64) ([]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.fail("liked_by"); err != nil {
		return nil, err
	}
	return keys(s.filmLikes[filmID]), nil
}

// PersistVoteEdge aplica a política de voto exclusivo: no máximo um voto por
// (review, usuário). O score é ajustado junto com a aresta.
func (s *Store) PersistVoteEdge(ctx context.Context, op domain.EdgeOp, vote entities.VoteEdge) (domain.VoteChange, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("persist_vote_edge"); err != nil {
		return domain.VoteChange{}, err
	}

	review, ok := s.reviews[vote.ReviewID]
	if !ok {
		return domain.VoteChange{}, domain.NewNotFound(domain.KindReview, vote.ReviewID)
	}

	key := votePair{reviewID: vote.ReviewID, userID: vote.UserID}
	var previous *entities.Polarity
	if current, exists := s.votes[key]; exists {
		previous = &current
	}

	next, changed, err := domain.ResolveVote(op, previous, vote.Polarity)
	if err != nil {
		return domain.VoteChange{}, err
	}
	if !changed {
		return domain.VoteChange{Previous: previous, Useful: review.Useful}, nil
	}

	if next == nil {
		delete(s.votes, key)
	} else {
		s.votes[key] = *next
	}

	review.Useful += domain.ScoreDelta(previous, next)
	s.reviews[vote.ReviewID] = review

	return domain.VoteChange{Changed: true, Previous: previous, Useful: review.Useful}, nil
}

func addToIndex(index map[int64]map[int64]struct{}, key, value int64) {
	set, ok := index[key]
	if !ok {
		set = make(map[int64]struct{})
		index[key] = set
	}
	set[value] = struct{}{}
}

func removeFromIndex(index map[int64]map[int64]struct{}, key, value int64) {
	set, ok := index[key]
	if !ok {
		return
	}
	delete(set, value)
	if len(set) == 0 {
		delete(index, key)
	}
}
