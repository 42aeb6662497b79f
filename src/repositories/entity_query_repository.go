package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"filmgraph/src/domain"
	"filmgraph/src/domain/entities"
	"filmgraph/src/infra/postgres"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EntityQueryRepository faz todas as leituras do Entity Store no pool de leitura.
// Cada método é uma única query, então cada resultado é um snapshot consistente.
type EntityQueryRepository struct {
	pool *pgxpool.Pool
}

func NewEntityQueryRepository(pool *pgxpool.Pool) *EntityQueryRepository {
	return &EntityQueryRepository{pool: pool}
}

func (r *EntityQueryRepository) UserExists(ctx context.Context, userID int64) (bool, error) {
	return r.exists(ctx, "user_exists", `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, userID)
}

func (r *EntityQueryRepository) FilmExists(ctx context.Context, filmID int64) (bool, error) {
	return r.exists(ctx, "film_exists", `SELECT EXISTS (SELECT 1 FROM films WHERE id = $1)`, filmID)
}

func (r *EntityQueryRepository) ReviewExists(ctx context.Context, reviewID int64) (bool, error) {
	return r.exists(ctx, "review_exists", `SELECT EXISTS (SELECT 1 FROM reviews WHERE id = $1)`, reviewID)
}

func (r *EntityQueryRepository) exists(ctx context.Context, op string, query string, id int64) (bool, error) {
	var exists bool
	if err := r.pool.QueryRow(ctx, query, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("EntityQueryRepository.%s - query failed: %w", op, domain.NewStorageError(op, err))
	}
	return exists, nil
}

// ############################################################
// ######################## USERS #############################
// ############################################################

const selectUsers = `
	SELECT
		id,
		email,
		login,
		name,
		birthday,
		created_at,
		updated_at
	FROM
		users
`

func (r *EntityQueryRepository) FetchUser(ctx context.Context, userID int64) (*entities.User, error) {
	users, err := r.FetchUsers(ctx, []int64{userID})
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, domain.NewNotFound(domain.KindUser, userID)
	}
	return &users[0], nil
}

// FetchUsers ignora IDs inexistentes e devolve em ordem crescente de ID.
func (r *EntityQueryRepository) FetchUsers(ctx context.Context, userIDs []int64) ([]entities.User, error) {
	if len(userIDs) == 0 {
		return []entities.User{}, nil
	}

	rows, err := r.pool.Query(ctx, selectUsers+` WHERE id = ANY($1) ORDER BY id`, userIDs)
	if err != nil {
		return nil, fmt.Errorf("EntityQueryRepository.FetchUsers - query failed: %w", domain.NewStorageError("fetch_users", err))
	}
	defer rows.Close()

	users := make([]entities.User, 0, len(userIDs))
	for rows.Next() {
		var user entities.User
		var birthday *time.Time

		if err := rows.Scan(&user.ID, &user.Email, &user.Login, &user.Name, &birthday, &user.CreatedAt, &user.UpdatedAt); err != nil {
			return nil, fmt.Errorf("EntityQueryRepository.FetchUsers - failed to scan user: %w", domain.NewStorageError("fetch_users", err))
		}
		if birthday != nil {
			user.Birthday = *birthday
		}

		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("EntityQueryRepository.FetchUsers - error iterating rows: %w", domain.NewStorageError("fetch_users", err))
	}

	return users, nil
}

// ############################################################
// ######################## FILMS #############################
// ############################################################

func (r *EntityQueryRepository) FetchFilm(ctx context.Context, filmID int64) (*entities.Film, error) {
	films, err := r.FetchFilms(ctx, []int64{filmID})
	if err != nil {
		return nil, err
	}
	if len(films) == 0 {
		return nil, domain.NewNotFound(domain.KindFilm, filmID)
	}
	return &films[0], nil
}

// FetchFilms carrega os filmes com seus gêneros numa única query.
func (r *EntityQueryRepository) FetchFilms(ctx context.Context, filmIDs []int64) ([]entities.Film, error) {
	if len(filmIDs) == 0 {
		return []entities.Film{}, nil
	}

	query := `
		SELECT
			f.id,
			f.name,
			f.description,
			f.release_date,
			f.duration,
			f.created_at,
			f.updated_at,
			COALESCE(
				JSONB_AGG(jsonb_build_object('id', g.id, 'name', g.name) ORDER BY g.id) FILTER (WHERE g.id IS NOT NULL),
				'[]'::jsonb
			) AS genres
		FROM
			films f
		LEFT JOIN
			film_genres fg ON fg.film_id = f.id
		LEFT JOIN
			genres g ON g.id = fg.genre_id
		WHERE
			f.id = ANY($1)
		GROUP BY
			f.id
		ORDER BY
			f.id;
	`

	rows, err := r.pool.Query(ctx, query, filmIDs)
	if err != nil {
		return nil, fmt.Errorf("EntityQueryRepository.FetchFilms - query failed: %w", domain.NewStorageError("fetch_films", err))
	}
	defer rows.Close()

	films := make([]entities.Film, 0, len(filmIDs))
	for rows.Next() {
		var film entities.Film
		var genresRaw []byte

		if err := rows.Scan(&film.ID, &film.Name, &film.Description, &film.ReleaseDate, &film.Duration, &film.CreatedAt, &film.UpdatedAt, &genresRaw); err != nil {
			return nil, fmt.Errorf("EntityQueryRepository.FetchFilms - failed to scan film: %w", domain.NewStorageError("fetch_films", err))
		}

		if err := json.Unmarshal(genresRaw, &film.Genres); err != nil {
			return nil, fmt.Errorf("EntityQueryRepository.FetchFilms - failed to decode genres of film %d: %w", film.ID, domain.NewStorageError("fetch_films", err))
		}

		films = append(films, film)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("EntityQueryRepository.FetchFilms - error iterating rows: %w", domain.NewStorageError("fetch_films", err))
	}

	return films, nil
}

// ############################################################
// ####################### REVIEWS ############################
// ############################################################

func (r *EntityQueryRepository) FetchReview(ctx context.Context, reviewID int64) (*entities.Review, error) {
	query := `
		SELECT
			id,
			film_id,
			user_id,
			content,
			is_positive,
			useful,
			created_at,
			updated_at
		FROM
			reviews
		WHERE
			id = $1;
	`

	var review entities.Review
	err := r.pool.QueryRow(ctx, query, reviewID).Scan(
		&review.ID, &review.FilmID, &review.UserID, &review.Content,
		&review.IsPositive, &review.Useful, &review.CreatedAt, &review.UpdatedAt,
	)
	if postgres.IsNoRows(err) {
		return nil, domain.NewNotFound(domain.KindReview, reviewID)
	}
	if err != nil {
		return nil, fmt.Errorf("EntityQueryRepository.FetchReview - query failed: %w", domain.NewStorageError("fetch_review", err))
	}

	return &review, nil
}

// ############################################################
// ######################## EDGES #############################
// ############################################################

// FriendIDs lê os dois lados do par canônico.
func (r *EntityQueryRepository) FriendIDs(ctx context.Context, userID int64) ([]int64, error) {
	query := `
		SELECT user_high FROM friendships WHERE user_low = $1
		UNION
		SELECT user_low FROM friendships WHERE user_high = $1
		ORDER BY 1;
	`
	return r.ids(ctx, "friend_ids", query, userID)
}

// CommonFriendIDs resolve a interseção num único statement, então os dois
// conjuntos vêm do mesmo snapshot.
func (r *EntityQueryRepository) CommonFriendIDs(ctx context.Context, userID, otherID int64) ([]int64, error) {
	query := `
		(
			SELECT user_high FROM friendships WHERE user_low = $1
			UNION
			SELECT user_low FROM friendships WHERE user_high = $1
		)
		INTERSECT
		(
			SELECT user_high FROM friendships WHERE user_low = $2
			UNION
			SELECT user_low FROM friendships WHERE user_high = $2
		)
		ORDER BY 1;
	`
	return r.ids(ctx, "common_friend_ids", query, userID, otherID)
}

func (r *EntityQueryRepository) LikedBy(ctx context.Context, filmID int64) ([]int64, error) {
	return r.ids(ctx, "liked_by", `SELECT user_id FROM film_likes WHERE film_id = $1 ORDER BY user_id`, filmID)
}

func (r *EntityQueryRepository) LikeSet(ctx context.Context, userID int64) ([]int64, error) {
	return r.ids(ctx, "like_set", `SELECT film_id FROM film_likes WHERE user_id = $1 ORDER BY film_id`, userID)
}

func (r *EntityQueryRepository) ids(ctx context.Context, op string, query string, args ...any) ([]int64, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("EntityQueryRepository.%s - query failed: %w", op, domain.NewStorageError(op, err))
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("EntityQueryRepository.%s - failed to scan id: %w", op, domain.NewStorageError(op, err))
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("EntityQueryRepository.%s - error iterating rows: %w", op, domain.NewStorageError(op, err))
	}

	return ids, nil
}

// ############################################################
// ###################### AGGREGATES ##########################
// ############################################################

// LikeCounts conta likes de todo filme que casa com o filtro. O LEFT JOIN
// mantém os filmes sem likes no resultado.
func (r *EntityQueryRepository) LikeCounts(ctx context.Context, filter domain.PopularityFilter) (map[int64]int, error) {
	query := `
		SELECT
			f.id,
			COUNT(fl.user_id)
		FROM
			films f
		LEFT JOIN
			film_likes fl ON fl.film_id = f.id
		WHERE
			($1::BIGINT IS NULL OR EXISTS (
				SELECT 1 FROM film_genres fg WHERE fg.film_id = f.id AND fg.genre_id = $1::BIGINT
			))
			AND ($2::INTEGER IS NULL OR EXTRACT(YEAR FROM f.release_date)::INTEGER = $2::INTEGER)
		GROUP BY
			f.id;
	`

	rows, err := r.pool.Query(ctx, query, postgres.NewNullInt8(filter.GenreID), postgres.NewNullInt4(filter.Year))
	if err != nil {
		return nil, fmt.Errorf("EntityQueryRepository.LikeCounts - query failed: %w", domain.NewStorageError("like_counts", err))
	}
	defer rows.Close()

	counts := make(map[int64]int)
	for rows.Next() {
		var filmID int64
		var likes int
		if err := rows.Scan(&filmID, &likes); err != nil {
			return nil, fmt.Errorf("EntityQueryRepository.LikeCounts - failed to scan count: %w", domain.NewStorageError("like_counts", err))
		}
		counts[filmID] = likes
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("EntityQueryRepository.LikeCounts - error iterating rows: %w", domain.NewStorageError("like_counts", err))
	}

	return counts, nil
}

// LikeNeighborhood lê os likes de userID e os de todo usuário que curtiu ao
// menos um filme em comum num único statement. A linha do próprio userID vem
// junto e vira Own.
func (r *EntityQueryRepository) LikeNeighborhood(ctx context.Context, userID int64) (domain.LikeNeighborhood, error) {
	query := `
		WITH neighbors AS (
			SELECT DISTINCT
				other.user_id
			FROM
				film_likes mine
			JOIN
				film_likes other ON other.film_id = mine.film_id
			WHERE
				mine.user_id = $1 AND other.user_id <> $1
		)
		SELECT
			fl.user_id,
			ARRAY_AGG(fl.film_id ORDER BY fl.film_id)
		FROM
			film_likes fl
		WHERE
			fl.user_id = $1 OR fl.user_id IN (SELECT user_id FROM neighbors)
		GROUP BY
			fl.user_id;
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return domain.LikeNeighborhood{}, fmt.Errorf("EntityQueryRepository.LikeNeighborhood - query failed: %w", domain.NewStorageError("like_neighborhood", err))
	}
	defer rows.Close()

	neighborhood := domain.LikeNeighborhood{
		Own:        []int64{},
		Candidates: make(map[int64][]int64),
	}
	for rows.Next() {
		var likerID int64
		var filmIDs []int64
		if err := rows.Scan(&likerID, &filmIDs); err != nil {
			return domain.LikeNeighborhood{}, fmt.Errorf("EntityQueryRepository.LikeNeighborhood - failed to scan like set: %w", domain.NewStorageError("like_neighborhood", err))
		}
		if likerID == userID {
			neighborhood.Own = filmIDs
			continue
		}
		neighborhood.Candidates[likerID] = filmIDs
	}

	if err := rows.Err(); err != nil {
		return domain.LikeNeighborhood{}, fmt.Errorf("EntityQueryRepository.LikeNeighborhood - error iterating rows: %w", domain.NewStorageError("like_neighborhood", err))
	}

	return neighborhood, nil
}
