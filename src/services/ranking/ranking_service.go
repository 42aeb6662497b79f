package ranking

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"filmgraph/src/domain"
	"filmgraph/src/domain/entities"
	"filmgraph/src/infra/metrics"
)

// Store entrega a contagem de likes de todo filme que casa com o filtro,
// inclusive filmes sem nenhum like.
type Store interface {
	LikeCounts(ctx context.Context, filter domain.PopularityFilter) (map[int64]int, error)
	FetchFilms(ctx context.Context, filmIDs []int64) ([]entities.Film, error)
}

type RankingService struct {
	logger   *slog.Logger
	store    Store
	recorder *metrics.Recorder
}

func NewRankingService(logger *slog.Logger, store Store, recorder *metrics.Recorder) *RankingService {
	return &RankingService{
		logger:   logger,
		store:    store,
		recorder: recorder,
	}
}

// FilmScore é a posição de um filme no ranking.
type FilmScore struct {
	FilmID int64
	Likes  int
}

// GetPopular retorna os count filmes mais curtidos que casam com o filtro.
// Empates são resolvidos pelo menor ID de filme.
func (s *RankingService) GetPopular(ctx context.Context, count int, filter domain.PopularityFilter) (films []entities.Film, err error) {
	defer func(start time.Time) { s.recorder.Observe("get_popular", start, err) }(time.Now())

	if count <= 0 {
		return nil, domain.NewInvalidOperation("count must be a positive integer, got %d", count)
	}

	counts, err := s.store.LikeCounts(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("RankingService.GetPopular - failed to load like counts: %w", domain.AsStorageError("like_counts", err))
	}

	top := TopK(counts, count)
	if len(top) == 0 {
		return []entities.Film{}, nil
	}

	filmIDs := make([]int64, len(top))
	for i, score := range top {
		filmIDs[i] = score.FilmID
	}

	fetched, err := s.store.FetchFilms(ctx, filmIDs)
	if err != nil {
		return nil, fmt.Errorf("RankingService.GetPopular - failed to fetch films: %w", domain.AsStorageError("fetch_films", err))
	}

	byID := make(map[int64]entities.Film, len(fetched))
	for _, film := range fetched {
		byID[film.ID] = film
	}

	films = make([]entities.Film, 0, len(top))
	for _, score := range top {
		film, ok := byID[score.FilmID]
		if !ok {
			// filme apagado entre as duas leituras
			s.logger.Warn("Ranked film vanished before fetch", "film_id", score.FilmID)
			continue
		}
		films = append(films, film)
	}

	return films, nil
}

// TopK ordena por likes decrescente e ID crescente e corta em k.
func TopK(counts map[int64]int, k int) []FilmScore {
	if k <= 0 || len(counts) == 0 {
		return nil
	}

	scored := make([]FilmScore, 0, len(counts))
	for filmID, likes := range counts {
		scored = append(scored, FilmScore{FilmID: filmID, Likes: likes})
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Likes != scored[j].Likes {
			return scored[i].Likes > scored[j].Likes
		}
		return scored[i].FilmID < scored[j].FilmID
	})

	if k > len(scored) {
		k = len(scored)
	}

	return scored[:k]
}
