//go:build datagen_postgres
// +build datagen_postgres

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"filmgraph/src/domain"
	"filmgraph/src/domain/entities"
	"filmgraph/src/helper/env"
	"filmgraph/src/infra/postgres"

	"github.com/go-faker/faker/v4"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Gêneros fixos do catálogo
var genres = []entities.Genre{
	{ID: 1, Name: "Comédia"},
	{ID: 2, Name: "Drama"},
	{ID: 3, Name: "Desenho"},
	{ID: 4, Name: "Suspense"},
	{ID: 5, Name: "Documentário"},
	{ID: 6, Name: "Ação"},
}

type seedConfig struct {
	users      int
	films      int
	avgLikes   int
	avgFriends int
	reviews    int
	maxVotes   int
	bulkSize   int
}

type reviewRow struct {
	id         int64
	filmID     int64
	userID     int64
	content    string
	isPositive bool
	useful     int64
}

func newSQLClient() (*pgxpool.Pool, error) {
	dbHost := env.MustGetString("DB_WRITE_HOST")
	dbPort := env.GetString("DB_WRITE_PORT", "5432")
	dbname := env.MustGetString("DB_NAME")
	dbUser := env.MustGetString("DB_USER")
	dbPassword := env.MustGetString("DB_PASSWORD")
	maxConnections := 10
	return postgres.NewPostgresClient(dbHost, dbPort, dbname, dbUser, dbPassword, maxConnections)
}

func main() {
	cfg := seedConfig{}
	flag.IntVar(&cfg.users, "users", 1000, "Número de usuários")
	flag.IntVar(&cfg.films, "films", 300, "Número de filmes")
	flag.IntVar(&cfg.avgLikes, "avg-likes", 20, "Média de likes por usuário")
	flag.IntVar(&cfg.avgFriends, "avg-friends", 8, "Média de amigos por usuário")
	flag.IntVar(&cfg.reviews, "reviews", 2000, "Número de reviews")
	flag.IntVar(&cfg.maxVotes, "max-votes", 15, "Máximo de votos por review")
	flag.IntVar(&cfg.bulkSize, "bulk-size", 5000, "Linhas por COPY")
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\n🛑 Shutdown signal received, stopping...")
		cancel()
	}()

	db, err := newSQLClient()
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer db.Close()

	if err := postgres.Migrate(ctx, db); err != nil {
		log.Fatalf("Failed to migrate: %v", err)
	}

	startTime := time.Now()
	if err := seed(ctx, db, cfg); err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}

	fmt.Printf("\n🏁 Seeding finished in %v\n", time.Since(startTime).Round(time.Millisecond))
}

func seed(ctx context.Context, db *pgxpool.Pool, cfg seedConfig) error {
	for _, genre := range genres {
		if _, err := db.Exec(ctx, `INSERT INTO genres (id, name) VALUES ($1, $2) ON CONFLICT (id) DO NOTHING`, genre.ID, genre.Name); err != nil {
			return fmt.Errorf("failed to insert genres: %w", err)
		}
	}

	userIDs, err := reserveIDs(ctx, db, "users_id_seq", cfg.users)
	if err != nil {
		return err
	}
	filmIDs, err := reserveIDs(ctx, db, "films_id_seq", cfg.films)
	if err != nil {
		return err
	}

	// 1. USUÁRIOS
	userRows := make([][]any, 0, len(userIDs))
	for _, id := range userIDs {
		birthday, _ := time.Parse(time.DateOnly, faker.Date())
		userRows = append(userRows, []any{id, faker.Email(), faker.Username(), faker.Name(), birthday})
	}
	if err := copyRows(ctx, db, "users", []string{"id", "email", "login", "name", "birthday"}, userRows, cfg.bulkSize); err != nil {
		return err
	}
	log.Printf("✅ %d users", len(userRows))

	// 2. FILMES E GÊNEROS
	filmRows := make([][]any, 0, len(filmIDs))
	filmGenreRows := make([][]any, 0, len(filmIDs)*2)
	for _, id := range filmIDs {
		releaseDate := time.Date(1950+rand.Intn(75), time.Month(rand.Intn(12)+1), rand.Intn(28)+1, 0, 0, 0, 0, time.UTC)
		filmRows = append(filmRows, []any{id, faker.Word() + " " + faker.LastName(), faker.Sentence(), releaseDate, 70 + rand.Intn(130)})

		for _, genreIdx := range rand.Perm(len(genres))[:rand.Intn(3)+1] {
			filmGenreRows = append(filmGenreRows, []any{id, genres[genreIdx].ID})
		}
	}
	if err := copyRows(ctx, db, "films", []string{"id", "name", "description", "release_date", "duration"}, filmRows, cfg.bulkSize); err != nil {
		return err
	}
	if err := copyRows(ctx, db, "film_genres", []string{"film_id", "genre_id"}, filmGenreRows, cfg.bulkSize); err != nil {
		return err
	}
	log.Printf("✅ %d films, %d film genres", len(filmRows), len(filmGenreRows))

	// 3. LIKES (distribuição enviesada para os primeiros filmes, para o ranking ter cauda)
	likeRows := make([][]any, 0, len(userIDs)*cfg.avgLikes)
	for _, userID := range userIDs {
		liked := make(map[int64]struct{})
		target := rand.Intn(cfg.avgLikes*2 + 1)
		for attempts := 0; len(liked) < target && attempts < target*4; attempts++ {
			idx := int(float64(len(filmIDs)) * rand.Float64() * rand.Float64())
			filmID := filmIDs[idx]
			if _, dup := liked[filmID]; dup {
				continue
			}
			liked[filmID] = struct{}{}
			likeRows = append(likeRows, []any{filmID, userID})
		}
	}
	if err := copyRows(ctx, db, "film_likes", []string{"film_id", "user_id"}, likeRows, cfg.bulkSize); err != nil {
		return err
	}
	log.Printf("✅ %d likes", len(likeRows))

	// 4. AMIZADES (uma linha por par canônico)
	pairs := make(map[[2]int64]struct{})
	friendRows := make([][]any, 0, len(userIDs)*cfg.avgFriends/2)
	for _, userID := range userIDs {
		numFriends := rand.Intn(cfg.avgFriends + 1)
		for i := 0; i < numFriends; i++ {
			friendID := userIDs[rand.Intn(len(userIDs))]
			if friendID == userID {
				continue
			}
			low, high := entities.FriendEdge{UserID: userID, FriendID: friendID}.Canonical()
			if _, dup := pairs[[2]int64{low, high}]; dup {
				continue
			}
			pairs[[2]int64{low, high}] = struct{}{}
			friendRows = append(friendRows, []any{low, high})
		}
	}
	if err := copyRows(ctx, db, "friendships", []string{"user_low", "user_high"}, friendRows, cfg.bulkSize); err != nil {
		return err
	}
	log.Printf("✅ %d friendships", len(friendRows))

	// 5. REVIEWS E VOTOS (useful calculado a partir dos votos gerados)
	reviewIDs, err := reserveIDs(ctx, db, "reviews_id_seq", cfg.reviews)
	if err != nil {
		return err
	}

	reviews := make([]reviewRow, 0, len(reviewIDs))
	voteRows := make([][]any, 0, len(reviewIDs)*cfg.maxVotes/2)
	for _, reviewID := range reviewIDs {
		review := reviewRow{
			id:         reviewID,
			filmID:     filmIDs[rand.Intn(len(filmIDs))],
			userID:     userIDs[rand.Intn(len(userIDs))],
			content:    faker.Paragraph(),
			isPositive: rand.Float32() > 0.3,
		}

		voters := rand.Perm(len(userIDs))
		numVotes := rand.Intn(cfg.maxVotes + 1)
		if numVotes > len(voters) {
			numVotes = len(voters)
		}
		for _, voterIdx := range voters[:numVotes] {
			polarity := entities.PolarityPositive
			if rand.Float32() < 0.35 {
				polarity = entities.PolarityNegative
			}
			review.useful += domain.ScoreDelta(nil, &polarity)
			voteRows = append(voteRows, []any{reviewID, userIDs[voterIdx], string(polarity)})
		}

		reviews = append(reviews, review)
	}

	reviewRows := make([][]any, len(reviews))
	for i, r := range reviews {
		reviewRows[i] = []any{r.id, r.filmID, r.userID, r.content, r.isPositive, r.useful}
	}
	if err := copyRows(ctx, db, "reviews", []string{"id", "film_id", "user_id", "content", "is_positive", "useful"}, reviewRows, cfg.bulkSize); err != nil {
		return err
	}
	if err := copyRows(ctx, db, "review_votes", []string{"review_id", "user_id", "polarity"}, voteRows, cfg.bulkSize); err != nil {
		return err
	}
	log.Printf("✅ %d reviews, %d votes", len(reviewRows), len(voteRows))

	return nil
}

// reserveIDs consome n valores da sequence para poder usar COPY com IDs explícitos.
func reserveIDs(ctx context.Context, db *pgxpool.Pool, sequence string, n int) ([]int64, error) {
	rows, err := db.Query(ctx, `SELECT nextval($1::regclass) FROM generate_series(1, $2)`, sequence, n)
	if err != nil {
		return nil, fmt.Errorf("failed to reserve ids from %s: %w", sequence, err)
	}

	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, fmt.Errorf("failed to read ids from %s: %w", sequence, err)
	}
	return ids, nil
}

func copyRows(ctx context.Context, db *pgxpool.Pool, table string, columns []string, rows [][]any, bulkSize int) error {
	for start := 0; start < len(rows); start += bulkSize {
		if err := ctx.Err(); err != nil {
			return err
		}

		end := min(start+bulkSize, len(rows))
		if _, err := db.CopyFrom(ctx, pgx.Identifier{table}, columns, pgx.CopyFromRows(rows[start:end])); err != nil {
			return fmt.Errorf("failed to copy into %s: %w", table, err)
		}
	}
	return nil
}
