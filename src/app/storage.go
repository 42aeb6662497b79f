package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"filmgraph/src/helper/env"
	"filmgraph/src/infra/memstore"
	"filmgraph/src/infra/metrics"
	"filmgraph/src/infra/neo4j"
	"filmgraph/src/infra/postgres"
	"filmgraph/src/infra/redis"
	"filmgraph/src/repositories"

	"go.uber.org/fx"
)

const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendNeo4j    = "neo4j"
)

// newEntityStore escolhe o backend por STORE_BACKEND. No Postgres, o cache de
// contagens só é ligado com REDIS_HOSTS e as amizades vão para o Neo4j com
// FRIEND_GRAPH_BACKEND=neo4j.
func newEntityStore(lc fx.Lifecycle, logger *slog.Logger, recorder *metrics.Recorder) (EntityStore, HealthChecks, error) {
	backend := env.GetString("STORE_BACKEND", BackendPostgres)

	switch backend {
	case BackendMemory:
		logger.Warn("Using in-memory entity store, data is lost on restart")
		return memstore.New(), HealthChecks{}, nil
	case BackendPostgres:
		return newPostgresEntityStore(lc, logger, recorder)
	}

	return nil, nil, fmt.Errorf("unknown STORE_BACKEND %q", backend)
}

func newPostgresEntityStore(lc fx.Lifecycle, logger *slog.Logger, recorder *metrics.Recorder) (EntityStore, HealthChecks, error) {
	readWriteClient, err := newReadWriteClient()
	if err != nil {
		return nil, nil, err
	}

	checks := HealthChecks{
		"postgres": func(ctx context.Context) error {
			return readWriteClient.GetWritePool().Ping(ctx)
		},
	}
	closers := []func(ctx context.Context) error{
		func(ctx context.Context) error {
			readWriteClient.Close()
			return nil
		},
	}

	if env.GetBool("DB_AUTO_MIGRATE", false) {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := postgres.Migrate(ctx, readWriteClient.GetWritePool()); err != nil {
			readWriteClient.Close()
			return nil, nil, err
		}
		logger.Info("Database migrations applied")
	}

	queries := repositories.NewEntityQueryRepository(readWriteClient.GetReadPool())

	var options []repositories.EntityStoreOption
	var invalidator repositories.LikeCountInvalidator

	if redisHosts := env.GetString("REDIS_HOSTS"); redisHosts != "" {
		redisClient := redis.NewRedisClient(
			redisHosts,
			env.GetInt("REDIS_POOL_SIZE", 50),
			env.GetDuration("REDIS_DEFAULT_TTL", 120*time.Second),
		)

		cached := repositories.NewCachedLikeCountRepository(logger, queries, redisClient, recorder)
		options = append(options, repositories.WithLikeCounts(cached))
		invalidator = cached

		checks["redis"] = redisClient.HealthCheck
		closers = append(closers, func(ctx context.Context) error { return redisClient.Close() })
		logger.Info("Like-count cache enabled", "hosts", redisHosts)
	}

	if env.GetString("FRIEND_GRAPH_BACKEND", BackendPostgres) == BackendNeo4j {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		driver, err := neo4j.NewNeo4jClient(ctx,
			env.MustGetString("NEO4J_URI"),
			env.GetString("NEO4J_USER", "neo4j"),
			env.MustGetString("NEO4J_PASSWORD"),
		)
		if err != nil {
			closeAll(context.Background(), logger, closers)
			return nil, nil, err
		}
		if err := neo4j.EnsureSchema(ctx, driver); err != nil {
			driver.Close(ctx) //nolint:errcheck
			closeAll(context.Background(), logger, closers)
			return nil, nil, err
		}

		options = append(options, repositories.WithFriendEdges(repositories.NewNeo4jFriendRepository(driver)))

		checks["neo4j"] = driver.VerifyConnectivity
		closers = append(closers, driver.Close)
		logger.Info("Friend edges stored in Neo4j")
	}

	writes := repositories.NewEdgeWriteRepository(logger, readWriteClient.GetWritePool(), invalidator)

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			closeAll(ctx, logger, closers)
			return nil
		},
	})

	return repositories.NewEntityStore(queries, writes, options...), checks, nil
}

func newReadWriteClient() (*postgres.ReadWriteClient, error) {
	dbWriteHost := env.MustGetString("DB_WRITE_HOST")
	dbReadHost := env.GetString("DB_READ_HOST", dbWriteHost)
	dbWritePort := env.GetString("DB_WRITE_PORT", "5432")
	dbReadPort := env.GetString("DB_READ_PORT", dbWritePort)
	dbname := env.MustGetString("DB_NAME")
	dbUser := env.MustGetString("DB_USER")
	dbPassword := env.MustGetString("DB_PASSWORD")
	maxConnections := env.GetInt("DB_MAX_POOL_CONNECTIONS", 25)

	return postgres.NewReadWriteClient(dbReadHost, dbWriteHost, dbReadPort, dbWritePort, dbname, dbUser, dbPassword, maxConnections)
}

// closeAll fecha na ordem inversa de abertura.
func closeAll(ctx context.Context, logger *slog.Logger, closers []func(ctx context.Context) error) {
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i](ctx); err != nil {
			logger.Error("Failed to close dependency", "error", err)
		}
	}
}
