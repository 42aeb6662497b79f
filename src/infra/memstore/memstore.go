package memstore

import (
	"context"
	"slices"
	"sync"

	"filmgraph/src/domain"
	"filmgraph/src/domain/entities"
)

type friendPair struct {
	low, high int64
}

type votePair struct {
	reviewID, userID int64
}

// Store é um Entity Store em memória. Um único RWMutex protege todas as
// arestas: escritas são atômicas e cada leitura vê um snapshot consistente.
type Store struct {
	mu sync.RWMutex

	users   map[int64]entities.User
	films   map[int64]entities.Film
	reviews map[int64]entities.Review

	friendEdges map[friendPair]struct{}
	friendIndex map[int64]map[int64]struct{}
	filmLikes   map[int64]map[int64]struct{}
	userLikes   map[int64]map[int64]struct{}
	votes       map[votePair]entities.Polarity

	failWith error
}

func New() *Store {
	return &Store{
		users:       make(map[int64]entities.User),
		films:       make(map[int64]entities.Film),
		reviews:     make(map[int64]entities.Review),
		friendEdges: make(map[friendPair]struct{}),
		friendIndex: make(map[int64]map[int64]struct{}),
		filmLikes:   make(map[int64]map[int64]struct{}),
		userLikes:   make(map[int64]map[int64]struct{}),
		votes:       make(map[votePair]entities.Polarity),
	}
}

// FailWith faz toda operação seguinte falhar com um StorageError. nil desliga.
func (s *Store) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failWith = err
}

func (s *Store) fail(op string) error {
	if s.failWith != nil {
		return domain.NewStorageError(op, s.failWith)
	}
	return nil
}

// ############################################################
// ####################### SEED ###############################
// ############################################################

func (s *Store) PutUser(user entities.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.ID] = user
}

func (s *Store) PutFilm(film entities.Film) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.films[film.ID] = film
}

// PutReview grava a review com score zerado; o score só muda por votos.
func (s *Store) PutReview(review entities.Review) {
	s.mu.Lock()
	defer s.mu.Unlock()
	review.Useful = 0
	s.reviews[review.ID] = review
}

// ############################################################
// ##################### EXISTENCE ############################
// ############################################################

func (s *Store) UserExists(ctx context.Context, userID int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.fail("user_exists"); err != nil {
		return false, err
	}
	_, ok := s.users[userID]
	return ok, nil
}

func (s *Store) FilmExists(ctx context.Context, filmID int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.fail("film_exists"); err != nil {
		return false, err
	}
	_, ok := s.films[filmID]
	return ok, nil
}

func (s *Store) ReviewExists(ctx context.Context, reviewID int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.fail("review_exists"); err != nil {
		return false, err
	}
	_, ok := s.reviews[reviewID]
	return ok, nil
}

// ############################################################
// ######################## FETCH #############################
// ############################################################

func (s *Store) FetchUser(ctx context.Context, userID int64) (*entities.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.fail("fetch_user"); err != nil {
		return nil, err
	}
	user, ok := s.users[userID]
	if !ok {
		return nil, domain.NewNotFound(domain.KindUser, userID)
	}
	return &user, nil
}

func (s *Store) FetchUsers(ctx context.Context, userIDs []int64) ([]entities.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.fail("fetch_users"); err != nil {
		return nil, err
	}
	users := make([]entities.User, 0, len(userIDs))
	for _, id := range uniqueSorted(userIDs) {
		if user, ok := s.users[id]; ok {
			users = append(users, user)
		}
	}
	return users, nil
}

func (s *Store) FetchFilm(ctx context.Context, filmID int64) (*entities.Film, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.fail("fetch_film"); err != nil {
		return nil, err
	}
	film, ok := s.films[filmID]
	if !ok {
		return nil, domain.NewNotFound(domain.KindFilm, filmID)
	}
	return &film, nil
}

func (s *Store) FetchFilms(ctx context.Context, filmIDs []int64) ([]entities.Film, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.fail("fetch_films"); err != nil {
		return nil, err
	}
	films := make([]entities.Film, 0, len(filmIDs))
	for _, id := range uniqueSorted(filmIDs) {
		if film, ok := s.films[id]; ok {
			films = append(films, film)
		}
	}
	return films, nil
}

func (s *Store) FetchReview(ctx context.Context, reviewID int64) (*entities.Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.fail("fetch_review"); err != nil {
		return nil, err
	}
	review, ok := s.reviews[reviewID]
	if !ok {
		return nil, domain.NewNotFound(domain.KindReview, reviewID)
	}
	return &review, nil
}

func uniqueSorted(ids []int64) []int64 {
	sorted := slices.Clone(ids)
	slices.Sort(sorted)
	return slices.Compact(sorted)
}

func keys(set map[int64]struct{}) []int64 {
	result := make([]int64, 0, len(set))
	for id := range set {
		result = append(result, id)
	}
	slices.Sort(result)
	return result
}
