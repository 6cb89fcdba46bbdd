// internal/dates/cache.go
package dates

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/perfdash/backend-go/internal/config"
	"github.com/perfdash/backend-go/internal/domain"
	"github.com/redis/go-redis/v9"
)

const (
	analysisKeyPrefix  = "dates:analysis"
	scanBatchSize      = 100
	defaultAnalysisTTL = 10 * time.Minute
)

// Cache memoizes year-inference results keyed by dataset content hash.
// Staleness is prevented structurally: a changed dataset hashes to a new key,
// and replacement additionally triggers Invalidate. Hash collisions go
// undetected; that is an accepted risk.
type Cache interface {
	Get(ctx context.Context, key string) (Analysis, bool, error)
	Set(ctx context.Context, key string, analysis Analysis) error
	Invalidate(ctx context.Context) error
}

// DatasetHash fingerprints a record collection by its (id, month) pairs in
// collection order. The collection is replaced wholesale, so order is stable
// for the lifetime of one dataset.
func DatasetHash(records []domain.Record) string {
	h := sha1.New()
	for _, r := range records {
		h.Write([]byte(r.ID))
		h.Write([]byte{'|'})
		h.Write([]byte(r.Month))
		h.Write([]byte{';'})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// NewCache builds the configured cache backend: redis when enabled, an
// in-process memo otherwise.
func NewCache(cfg config.CacheConfig) (Cache, error) {
	if !cfg.Enabled {
		return NewMemoryCache(), nil
	}

	opts, err := buildRedisOptions(cfg)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	ttl := time.Duration(cfg.AnalysisTTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = defaultAnalysisTTL
	}

	return &redisCache{client: client, ttl: ttl}, nil
}

type memoryCache struct {
	mu      sync.RWMutex
	entries map[string]Analysis
}

// NewMemoryCache returns an in-process cache, the default backend.
func NewMemoryCache() Cache {
	return &memoryCache{entries: make(map[string]Analysis)}
}

func (c *memoryCache) Get(ctx context.Context, key string) (Analysis, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	analysis, ok := c.entries[key]
	return analysis, ok, nil
}

func (c *memoryCache) Set(ctx context.Context, key string, analysis Analysis) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = analysis
	return nil
}

func (c *memoryCache) Invalidate(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]Analysis)
	return nil
}

type noopCache struct{}

// NewNoopCache returns a cache that never hits, for tests and callers that
// want recomputation on every call.
func NewNoopCache() Cache {
	return &noopCache{}
}

func (noopCache) Get(ctx context.Context, key string) (Analysis, bool, error) {
	return Analysis{}, false, nil
}

func (noopCache) Set(ctx context.Context, key string, analysis Analysis) error {
	return nil
}

func (noopCache) Invalidate(ctx context.Context) error {
	return nil
}

type redisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func (c *redisCache) Get(ctx context.Context, key string) (Analysis, bool, error) {
	payload, err := c.client.Get(ctx, analysisKeyPrefix+":"+key).Bytes()
	if err == redis.Nil {
		return Analysis{}, false, nil
	}
	if err != nil {
		return Analysis{}, false, fmt.Errorf("redis get failed: %w", err)
	}

	var analysis Analysis
	if err := json.Unmarshal(payload, &analysis); err != nil {
		return Analysis{}, false, fmt.Errorf("decode analysis cache: %w", err)
	}
	return analysis, true, nil
}

func (c *redisCache) Set(ctx context.Context, key string, analysis Analysis) error {
	payload, err := json.Marshal(analysis)
	if err != nil {
		return fmt.Errorf("encode analysis cache: %w", err)
	}
	if err := c.client.Set(ctx, analysisKeyPrefix+":"+key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisCache) Invalidate(ctx context.Context) error {
	var cursor uint64
	for {
		keys, nextCursor, err := c.client.Scan(ctx, cursor, analysisKeyPrefix+"*", scanBatchSize).Result()
		if err != nil {
			return fmt.Errorf("redis scan failed: %w", err)
		}

		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("redis delete failed: %w", err)
			}
		}

		cursor = nextCursor
		if cursor == 0 {
			return nil
		}
	}
}

func buildRedisOptions(cfg config.CacheConfig) (*redis.Options, error) {
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url: %w", err)
		}
		return opt, nil
	}

	host := cfg.RedisHost
	if host == "" {
		host = "127.0.0.1"
	}
	port := cfg.RedisPort
	if port == "" {
		port = "6379"
	}

	return &redis.Options{
		Addr:     net.JoinHostPort(host, port),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}, nil
}
