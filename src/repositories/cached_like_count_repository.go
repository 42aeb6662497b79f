package repositories

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"filmgraph/src/domain"
	"filmgraph/src/infra/metrics"

	"golang.org/x/sync/singleflight"
)

type LikeCountSource interface {
	LikeCounts(ctx context.Context, filter domain.PopularityFilter) (map[int64]int, error)
}

// LikeCountCache é o subconjunto do RedisClient usado pelo cache de contagens.
type LikeCountCache interface {
	GetKey(ctx context.Context, key string) (string, bool, error)
	SetWithRegistry(ctx context.Context, cacheKey string, cacheValue string, registryKeys []string) error
	GetMultipleSetMembers(ctx context.Context, keys []string) (map[string][]string, error)
	InvalidateKeys(ctx context.Context, keys []string) error
	GetCounter(ctx context.Context, key string) (int64, error)
	IncrCounter(ctx context.Context, key string) (int64, error)
}

const (
	likeCountsGenerationKey = "films:popular:generation"

	// a leitura compartilhada pelo singleflight não herda o cancelamento de
	// nenhum chamador, só este limite
	likeCountsFlightTimeout = 10 * time.Second
)

// CachedLikeCountRepository guarda no Redis o agregado de likes por filtro.
//
// A chave inclui uma geração global, incrementada a cada invalidação: uma
// leitura que começou antes de um like grava numa geração que ninguém mais
// consulta. Cada chave também é registrada em "registry:film:<id>" para todo
// filme do resultado, e a invalidação apaga essas chaves na hora.
type CachedLikeCountRepository struct {
	logger   *slog.Logger
	source   LikeCountSource
	cache    LikeCountCache
	recorder *metrics.Recorder
	flight   singleflight.Group
}

func NewCachedLikeCountRepository(
	logger *slog.Logger,
	source LikeCountSource,
	cache LikeCountCache,
	recorder *metrics.Recorder,
) *CachedLikeCountRepository {
	return &CachedLikeCountRepository{
		logger:   logger,
		source:   source,
		cache:    cache,
		recorder: recorder,
	}
}

type cachedLikeCounts struct {
	Counts map[int64]int `json:"counts"`
}

func (r *CachedLikeCountRepository) LikeCounts(ctx context.Context, filter domain.PopularityFilter) (map[int64]int, error) {
	generation, err := r.cache.GetCounter(ctx, likeCountsGenerationKey)
	if err != nil {
		// sem a geração não há como gravar com segurança: lê direto do banco
		r.logger.Warn("Like-count cache generation read failed", "error", err)
		r.recorder.CacheMiss()
		return r.source.LikeCounts(ctx, filter)
	}

	cacheKey := likeCountsCacheKey(filter, generation)

	counts, found, err := r.getFromCache(ctx, cacheKey)
	if found && err == nil {
		r.recorder.CacheHit()
		return counts, nil
	}

	if err != nil {
		// erro de cache não impede a leitura no banco
		r.logger.Warn("Like-count cache read failed", "error", err, "cache_key", cacheKey)
	}

	r.recorder.CacheMiss()

	// misses concorrentes do mesmo filtro fazem uma única leitura no banco
	flight := r.flight.DoChan(cacheKey, func() (any, error) {
		flightCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), likeCountsFlightTimeout)
		defer cancel()

		counts, err := r.source.LikeCounts(flightCtx, filter)
		if err != nil {
			return nil, err
		}
		r.setInCache(flightCtx, cacheKey, counts)
		return counts, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case result := <-flight:
		if result.Err != nil {
			return nil, result.Err
		}
		return copyCounts(result.Val.(map[int64]int)), nil
	}
}

func likeCountsCacheKey(filter domain.PopularityFilter, generation int64) string {
	genre, year := "any", "any"
	if filter.GenreID != nil {
		genre = fmt.Sprintf("%d", *filter.GenreID)
	}
	if filter.Year != nil {
		year = fmt.Sprintf("%d", *filter.Year)
	}

	keyData := fmt.Sprintf("likes:counts:genre:%s:year:%s", genre, year)

	hash := md5.Sum([]byte(keyData))
	return fmt.Sprintf("films:popular:%x:gen:%d", hash, generation)
}

func filmRegistryKey(filmID int64) string {
	return fmt.Sprintf("registry:film:%d", filmID)
}

func (r *CachedLikeCountRepository) getFromCache(ctx context.Context, cacheKey string) (map[int64]int, bool, error) {
	cachedJSON, found, err := r.cache.GetKey(ctx, cacheKey)
	if !found || err != nil {
		return nil, false, err
	}

	var cached cachedLikeCounts
	if err := json.Unmarshal([]byte(cachedJSON), &cached); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal cached like counts: %w", err)
	}
	if cached.Counts == nil {
		cached.Counts = make(map[int64]int)
	}

	return cached.Counts, true, nil
}

func (r *CachedLikeCountRepository) setInCache(ctx context.Context, cacheKey string, counts map[int64]int) {
	dataJSON, err := json.Marshal(cachedLikeCounts{Counts: counts})
	if err != nil {
		r.logger.Error("Failed to marshal like counts", "error", err, "cache_key", cacheKey)
		return
	}

	registryKeys := make([]string, 0, len(counts))
	for filmID := range counts {
		registryKeys = append(registryKeys, filmRegistryKey(filmID))
	}

	if err := r.cache.SetWithRegistry(ctx, cacheKey, string(dataJSON), registryKeys); err != nil {
		r.logger.Warn("Failed to cache like counts", "error", err, "cache_key", cacheKey)
		return
	}

	r.logger.Debug("Like counts cached", "cache_key", cacheKey, "films", len(counts))
}

// InvalidateByFilmIDs avança a geração e apaga os registries dos filmes e toda
// chave registrada neles.
func (r *CachedLikeCountRepository) InvalidateByFilmIDs(ctx context.Context, filmIDs []int64) error {
	if len(filmIDs) == 0 {
		return nil
	}

	if _, err := r.cache.IncrCounter(ctx, likeCountsGenerationKey); err != nil {
		return fmt.Errorf("CachedLikeCountRepository.InvalidateByFilmIDs - failed to advance generation: %w", err)
	}

	registryKeys := make([]string, len(filmIDs))
	for i, filmID := range filmIDs {
		registryKeys[i] = filmRegistryKey(filmID)
	}

	registryResults, err := r.cache.GetMultipleSetMembers(ctx, registryKeys)
	if err != nil {
		return fmt.Errorf("CachedLikeCountRepository.InvalidateByFilmIDs - failed to get registry data: %w", err)
	}

	keysToDelete := make(map[string]bool)
	for registryKey, relatedKeys := range registryResults {
		keysToDelete[registryKey] = true
		for _, relatedKey := range relatedKeys {
			keysToDelete[relatedKey] = true
		}
	}

	keys := make([]string, 0, len(keysToDelete))
	for key := range keysToDelete {
		keys = append(keys, key)
	}

	if len(keys) == 0 {
		return nil
	}

	r.logger.Debug("Invalidating like-count cache", "keys", len(keys), "films", len(filmIDs))
	return r.cache.InvalidateKeys(ctx, keys)
}

// copyCounts evita que chamadores compartilhando um singleflight alterem o mesmo mapa.
func copyCounts(counts map[int64]int) map[int64]int {
	result := make(map[int64]int, len(counts))
	for k, v := range counts {
		result[k] = v
	}
	return result
}
