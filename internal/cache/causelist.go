package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/patrickmn/go-cache"

	"github.com/JustJay7/ecourts-fetcher/internal/causelist"
	"github.com/JustJay7/ecourts-fetcher/internal/config"
	"github.com/JustJay7/ecourts-fetcher/pkg/logger"
)

// CauseListKey is the storage key for parsed entries of one source URL
func CauseListKey(sourceURL string) string {
	sum := sha1.Sum([]byte(sourceURL))
	return "causelist__" + hex.EncodeToString(sum[:])
}

// NewCauseListCache returns a Redis backed cache when REDIS_ADDR is set,
// otherwise an in-process one
func NewCauseListCache(ctx context.Context, cfg *config.Config, log *logger.Logger) (causelist.Cache, error) {
	if cfg.RedisAddr == "" {
		log.Info("Using in-memory cause list cache")
		return NewMemoryCauseListCache(cfg.CauseListCacheTTL), nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.RedisAddr, err)
	}

	log.Info("Using redis cause list cache", "addr", cfg.RedisAddr, "db", cfg.RedisDB)
	return NewRedisCauseListCache(client, cfg.CauseListCacheTTL), nil
}

// MemoryCauseListCache keeps parsed cause-lists in process
type MemoryCauseListCache struct {
	cache *cache.Cache
}

func NewMemoryCauseListCache(ttl time.Duration) *MemoryCauseListCache {
	return &MemoryCauseListCache{cache: cache.New(ttl, ttl*2)}
}

func (m *MemoryCauseListCache) Get(_ context.Context, sourceURL string) ([]causelist.Entry, bool, error) {
	v, ok := m.cache.Get(CauseListKey(sourceURL))
	if !ok {
		return nil, false, nil
	}
	entries, ok := v.([]causelist.Entry)
	return entries, ok, nil
}

func (m *MemoryCauseListCache) Set(_ context.Context, sourceURL string, entries []causelist.Entry) error {
	m.cache.Set(CauseListKey(sourceURL), entries, cache.DefaultExpiration)
	return nil
}

// RedisCauseListCache stores entries as JSON so several instances share them
type RedisCauseListCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCauseListCache(client *redis.Client, ttl time.Duration) *RedisCauseListCache {
	return &RedisCauseListCache{client: client, ttl: ttl}
}

func (r *RedisCauseListCache) Get(ctx context.Context, sourceURL string) ([]causelist.Entry, bool, error) {
	value, err := r.client.Get(ctx, CauseListKey(sourceURL)).Result()
	if err == redis.Nil {
		return nil, false, nil
	} else if err != nil {
		return nil, false, fmt.Errorf("error getting value from redis: %w", err)
	}

	var entries []causelist.Entry
	if err := json.Unmarshal([]byte(value), &entries); err != nil {
		return nil, false, fmt.Errorf("error unmarshalling cause list: %w", err)
	}
	return entries, true, nil
}

func (r *RedisCauseListCache) Set(ctx context.Context, sourceURL string, entries []causelist.Entry) error {
	val, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("error marshalling cause list: %w", err)
	}
	if err := r.client.Set(ctx, CauseListKey(sourceURL), val, r.ttl).Err(); err != nil {
		return fmt.Errorf("error setting value in redis: %w", err)
	}
	return nil
}

func (r *RedisCauseListCache) Close() error {
	return r.client.Close()
}
