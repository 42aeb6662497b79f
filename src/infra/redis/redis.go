package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker/v2"
)

type RedisClient struct {
	client            redis.UniversalClient
	breaker           *gobreaker.CircuitBreaker[any]
	defaultTTLSeconds time.Duration
	prefix            string
}

// NewRedisClient aceita um ou mais endereços separados por vírgula; com mais
// de um endereço o cliente opera em modo cluster.
func NewRedisClient(addrs string, poolSize int, defaultTTLSeconds time.Duration) *RedisClient {
	client := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs: strings.Split(addrs, ","),

		PoolSize:     poolSize,
		MinIdleConns: 10,

		MaxRedirects: 3,

		// Timeouts curtos: o cache nunca pode ser mais lento que o banco
		DialTimeout:  5 * time.Second,
		ReadTimeout:  1 * time.Second,
		WriteTimeout: 1 * time.Second,

		MaxRetries:      3,
		MinRetryBackoff: 50 * time.Millisecond,
		MaxRetryBackoff: 500 * time.Millisecond,
	})

	breaker := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        "redis-cache",
		MaxRequests: 1,
		Interval:    30 * time.Second,
		Timeout:     10 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("Redis circuit breaker changed state", "breaker", name, "from", from.String(), "to", to.String())
		},
	})

	return &RedisClient{
		client:            client,
		breaker:           breaker,
		defaultTTLSeconds: defaultTTLSeconds,
	}
}

// WithPrefix devolve uma cópia que prefixa todas as chaves (usado em testes).
func (rc *RedisClient) WithPrefix(prefix string) *RedisClient {
	clone := *rc
	clone.prefix = prefix
	return &clone
}

func (rc *RedisClient) key(key string) string {
	return rc.prefix + key
}

func (rc *RedisClient) execute(fn func() (any, error)) (any, error) {
	result, err := rc.breaker.Execute(fn)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("redis unavailable: %w", err)
	}
	return result, err
}

// SetWithRegistry grava o valor e adiciona a chave em cada registry, para que
// uma escrita sobre qualquer entidade listada invalide o cache.
func (rc *RedisClient) SetWithRegistry(ctx context.Context, cacheKey string, cacheValue string, registryKeys []string) error {
	_, err := rc.execute(func() (any, error) {
		pipe := rc.client.TxPipeline()

		fields := map[string]interface{}{
			"data":      cacheValue,
			"cached_at": time.Now().Unix(),
		}
		pipe.HSet(ctx, rc.key(cacheKey), fields)
		pipe.Expire(ctx, rc.key(cacheKey), rc.defaultTTLSeconds)

		for _, registryKey := range registryKeys {
			pipe.SAdd(ctx, rc.key(registryKey), rc.key(cacheKey))
			pipe.Expire(ctx, rc.key(registryKey), rc.defaultTTLSeconds)
		}

		_, err := pipe.Exec(ctx)
		return nil, err
	})
	return err
}

func (rc *RedisClient) GetKey(ctx context.Context, key string) (string, bool, error) {
	type lookup struct {
		value string
		found bool
	}

	result, err := rc.execute(func() (any, error) {
		value, err := rc.client.HGet(ctx, rc.key(key), "data").Result()
		// miss não conta como falha para o breaker
		if errors.Is(err, redis.Nil) {
			return lookup{}, nil
		}
		if err != nil {
			return nil, err
		}
		return lookup{value: value, found: true}, nil
	})
	if err != nil {
		return "", false, err
	}

	found := result.(lookup)
	return found.value, found.found, nil
}

// GetCounter lê um contador inteiro. Chave ausente vale zero.
func (rc *RedisClient) GetCounter(ctx context.Context, key string) (int64, error) {
	result, err := rc.execute(func() (any, error) {
		value, err := rc.client.Get(ctx, rc.key(key)).Int64()
		if errors.Is(err, redis.Nil) {
			return int64(0), nil
		}
		return value, err
	})
	if err != nil {
		return 0, err
	}
	return result.(int64), nil
}

// IncrCounter incrementa o contador e devolve o novo valor. O contador não expira.
func (rc *RedisClient) IncrCounter(ctx context.Context, key string) (int64, error) {
	result, err := rc.execute(func() (any, error) {
		return rc.client.Incr(ctx, rc.key(key)).Result()
	})
	if err != nil {
		return 0, err
	}
	return result.(int64), nil
}

// GetMultipleSetMembers lê os membros de vários registries. As chaves do mapa
// retornado já estão prefixadas e prontas para InvalidateKeys.
func (rc *RedisClient) GetMultipleSetMembers(ctx context.Context, keys []string) (map[string][]string, error) {
	result, err := rc.execute(func() (any, error) {
		pipe := rc.client.Pipeline()

		commands := make(map[string]*redis.StringSliceCmd, len(keys))
		for _, key := range keys {
			commands[rc.key(key)] = pipe.SMembers(ctx, rc.key(key))
		}

		if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
			return nil, err
		}

		members := make(map[string][]string, len(commands))
		for key, cmd := range commands {
			values, err := cmd.Result()
			if err != nil && !errors.Is(err, redis.Nil) {
				return nil, err
			}
			members[key] = values
		}
		return members, nil
	})
	if err != nil {
		return nil, err
	}

	return result.(map[string][]string), nil
}

// InvalidateKeys apaga chaves já prefixadas. Em cluster as chaves podem estar
// em slots diferentes, então o DEL é feito uma a uma.
func (rc *RedisClient) InvalidateKeys(ctx context.Context, keys []string) error {
	_, err := rc.execute(func() (any, error) {
		var failures []string

		for _, key := range keys {
			if err := rc.client.Del(ctx, key).Err(); err != nil {
				failures = append(failures, fmt.Sprintf("key %s: %v", key, err))
			}
		}

		if len(failures) > 0 {
			return nil, fmt.Errorf("invalidation errors: %s", strings.Join(failures, "; "))
		}
		return nil, nil
	})
	return err
}

// FlushByPrefix apaga tudo que começa com o prefixo do cliente. Sem prefixo não faz nada.
func (rc *RedisClient) FlushByPrefix(ctx context.Context) error {
	if rc.prefix == "" {
		return nil
	}

	flush := func(ctx context.Context, client redis.UniversalClient) error {
		iter := client.Scan(ctx, 0, rc.prefix+"*", 500).Iterator()
		for iter.Next(ctx) {
			if err := client.Del(ctx, iter.Val()).Err(); err != nil {
				return err
			}
		}
		return iter.Err()
	}

	if cluster, ok := rc.client.(*redis.ClusterClient); ok {
		return cluster.ForEachMaster(ctx, func(ctx context.Context, node *redis.Client) error {
			return flush(ctx, node)
		})
	}

	return flush(ctx, rc.client)
}

func (rc *RedisClient) HealthCheck(ctx context.Context) error {
	return rc.client.Ping(ctx).Err()
}

func (rc *RedisClient) Close() error {
	return rc.client.Close()
}
