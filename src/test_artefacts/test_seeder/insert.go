package test_seeder

import (
	"context"
	"fmt"

	"filmgraph/src/domain/entities"
)

// InsertUser inserts a user and writes the generated id back
func (ts TestSeeder) InsertUser(ctx context.Context, user *entities.User) {
	query := `
		INSERT INTO users (email, login, name, birthday, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`

	err := ts.pool.QueryRow(ctx, query,
		user.Email,
		user.Login,
		user.Name,
		user.Birthday,
		user.CreatedAt,
		user.UpdatedAt,
	).Scan(&user.ID)

	if err != nil {
		panic(fmt.Sprintf("Seeder.InsertUser failed: %v", err))
	}
}

// InsertFilm inserts a film together with its genres (genres are upserted)
func (ts TestSeeder) InsertFilm(ctx context.Context, film *entities.Film) {
	query := `
		INSERT INTO films (name, description, release_date, duration, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`

	err := ts.pool.QueryRow(ctx, query,
		film.Name,
		film.Description,
		film.ReleaseDate,
		film.Duration,
		film.CreatedAt,
		film.UpdatedAt,
	).Scan(&film.ID)

	if err != nil {
		panic(fmt.Sprintf("Seeder.InsertFilm failed: %v", err))
	}

	for _, genre := range film.Genres {
		_, err := ts.pool.Exec(ctx, `INSERT INTO genres (id, name) VALUES ($1, $2) ON CONFLICT (id) DO NOTHING`, genre.ID, genre.Name)
		if err != nil {
			panic(fmt.Sprintf("Seeder.InsertFilm genre failed: %v", err))
		}

		_, err = ts.pool.Exec(ctx, `INSERT INTO film_genres (film_id, genre_id) VALUES ($1, $2)`, film.ID, genre.ID)
		if err != nil {
			panic(fmt.Sprintf("Seeder.InsertFilm film_genre failed: %v", err))
		}
	}
}

// InsertReview inserts a review with a zero usefulness score
func (ts TestSeeder) InsertReview(ctx context.Context, review *entities.Review) {
	query := `
		INSERT INTO reviews (film_id, user_id, content, is_positive, useful, created_at, updated_at)
		VALUES ($1, $2, $3, $4, 0, $5, $6) RETURNING id`

	err := ts.pool.QueryRow(ctx, query,
		review.FilmID,
		review.UserID,
		review.Content,
		review.IsPositive,
		review.CreatedAt,
		review.UpdatedAt,
	).Scan(&review.ID)

	if err != nil {
		panic(fmt.Sprintf("Seeder.InsertReview failed: %v", err))
	}
	review.Useful = 0
}

// InsertLike inserts a like edge directly, bypassing the engine
func (ts TestSeeder) InsertLike(ctx context.Context, filmID, userID int64) {
	_, err := ts.pool.Exec(ctx, `INSERT INTO film_likes (film_id, user_id) VALUES ($1, $2)`, filmID, userID)
	if err != nil {
		panic(fmt.Sprintf("Seeder.InsertLike failed: %v", err))
	}
}
