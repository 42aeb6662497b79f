package recommendation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"filmgraph/src/domain"
	"filmgraph/src/domain/entities"
	"filmgraph/src/infra/metrics"

	"golang.org/x/sync/errgroup"
)

// Store expõe os conjuntos de likes usados na busca do vizinho.
//
// LikeNeighborhood devolve, numa única leitura consistente, os likes de userID
// e os de cada outro usuário que compartilha pelo menos um filme curtido.
// Usuários sem interseção nunca podem ser o vizinho, então a busca fica
// equivalente a enumerar todos os usuários.
type Store interface {
	UserExists(ctx context.Context, userID int64) (bool, error)
	LikeNeighborhood(ctx context.Context, userID int64) (domain.LikeNeighborhood, error)
	FetchFilms(ctx context.Context, filmIDs []int64) ([]entities.Film, error)
}

type RecommendationService struct {
	logger   *slog.Logger
	store    Store
	recorder *metrics.Recorder
}

func NewRecommendationService(logger *slog.Logger, store Store, recorder *metrics.Recorder) *RecommendationService {
	return &RecommendationService{
		logger:   logger,
		store:    store,
		recorder: recorder,
	}
}

// GetRecommendations recomenda os filmes que o vizinho mais próximo de userID
// curtiu e userID ainda não curtiu, em ordem crescente de ID. Não escreve nada.
func (s *RecommendationService) GetRecommendations(ctx context.Context, userID int64) (films []entities.Film, err error) {
	defer func(start time.Time) { s.recorder.Observe("get_recommendations", start, err) }(time.Now())

	var (
		exists       bool
		neighborhood domain.LikeNeighborhood
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		exists, err = s.store.UserExists(gctx, userID)
		return domain.AsStorageError("user_exists", err)
	})
	g.Go(func() error {
		var err error
		neighborhood, err = s.store.LikeNeighborhood(gctx, userID)
		return domain.AsStorageError("like_neighborhood", err)
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("RecommendationService.GetRecommendations - failed to load user %d: %w", userID, err)
	}

	if !exists {
		return nil, domain.NewNotFound(domain.KindUser, userID)
	}

	likeSet := neighborhood.Own
	if len(likeSet) == 0 {
		return []entities.Film{}, nil
	}

	neighbor, ok := NearestNeighbor(userID, likeSet, neighborhood.Candidates)
	if !ok {
		return []entities.Film{}, nil
	}

	filmIDs := Difference(neighborhood.Candidates[neighbor.UserID], likeSet)

	s.logger.Debug("Nearest neighbor selected",
		"user_id", userID,
		"neighbor_id", neighbor.UserID,
		"overlap", neighbor.Overlap,
		"recommended", len(filmIDs))

	if len(filmIDs) == 0 {
		return []entities.Film{}, nil
	}

	films, err = s.store.FetchFilms(ctx, filmIDs)
	if err != nil {
		return nil, fmt.Errorf("RecommendationService.GetRecommendations - failed to fetch films: %w", domain.AsStorageError("fetch_films", err))
	}

	sortFilms(films)
	return films, nil
}
