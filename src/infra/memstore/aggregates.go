package memstore

import (
	"context"

	"filmgraph/src/domain"
	"filmgraph/src/domain/entities"
)

// LikeCounts inclui filmes sem likes, desde que casem com o filtro.
func (s *Store) LikeCounts(ctx context.Context, filter domain.PopularityFilter) (map[int64]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.fail("like_counts"); err != nil {
		return nil, err
	}

	counts := make(map[int64]int)
	for id, film := range s.films {
		if !filter.Matches(film) {
			continue
		}
		counts[id] = len(s.filmLikes[id])
	}
	return counts, nil
}

func (s *Store) LikeSet(ctx context.Context, userID int64) ([]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.fail("like_set"); err != nil {
		return nil, err
	}
	return keys(s.userLikes[userID]), nil
}

func (s *Store) LikeNeighborhood(ctx context.Context, userID int64) (domain.LikeNeighborhood, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.fail("like_neighborhood"); err != nil {
		return domain.LikeNeighborhood{}, err
	}

	neighbors := make(map[int64]struct{})
	for filmID := range s.userLikes[userID] {
		for otherID := range s.filmLikes[filmID] {
			if otherID != userID {
				neighbors[otherID] = struct{}{}
			}
		}
	}

	candidates := make(map[int64][]int64, len(neighbors))
	for otherID := range neighbors {
		candidates[otherID] = keys(s.userLikes[otherID])
	}

	return domain.LikeNeighborhood{
		Own:        keys(s.userLikes[userID]),
		Candidates: candidates,
	}, nil
}

// VoteTally conta os votos presentes em uma review, por polaridade.
func (s *Store) VoteTally(reviewID int64) (positive, negative int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for key, polarity := range s.votes {
		if key.reviewID != reviewID {
			continue
		}
		switch polarity {
		case entities.PolarityPositive:
			positive++
		case entities.PolarityNegative:
			negative++
		}
	}
	return positive, negative
}
