// Package cache holds the enriched scenario set between the research phase
// and the execution phase. Redis when available, in-memory otherwise.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"OpportunityScout/internal/model"
)

const scenarioKey = "scout:scenarios"

// Cache is a byte-level key/value store with TTL.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, val []byte, ttl time.Duration) error
}

// RedisCache backs the cache with a Redis server.
type RedisCache struct {
	client *redis.Client
}

// MemoryCache is the in-process fallback when Redis is not reachable.
type MemoryCache struct {
	mu    sync.Mutex
	items map[string]memItem
}

type memItem struct {
	val []byte
	exp time.Time
}

// New connects to Redis at the given URL, falling back to an in-memory cache
// when the URL is empty or the server does not answer a ping.
func New(redisURL string) Cache {
	if redisURL == "" {
		return NewMemoryCache()
	}
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Printf("[WARN] invalid redis url, using memory cache: %v", err)
		return NewMemoryCache()
	}
	client := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("[WARN] redis unreachable, using memory cache: %v", err)
		return NewMemoryCache()
	}
	log.Printf("[INFO] scenario cache backed by redis")
	return &RedisCache{client: client}
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{items: make(map[string]memItem)}
}

func (r *RedisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	b, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	return b, true
}

func (r *RedisCache) Set(ctx context.Context, key string, val []byte, ttl time.Duration) error {
	return r.client.Set(ctx, key, val, ttl).Err()
}

func (m *MemoryCache) Get(_ context.Context, key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.items[key]
	if !ok {
		return nil, false
	}
	if !it.exp.IsZero() && time.Now().After(it.exp) {
		delete(m.items, key)
		return nil, false
	}
	return it.val, true
}

func (m *MemoryCache) Set(_ context.Context, key string, val []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	exp := time.Time{}
	if ttl > 0 {
		exp = time.Now().Add(ttl)
	}
	m.items[key] = memItem{val: val, exp: exp}
	return nil
}

// SaveScenarios stores the enriched scenario set for the next execution run.
func SaveScenarios(ctx context.Context, c Cache, scenarios []model.EnrichedScenario, ttl time.Duration) error {
	payload, err := json.Marshal(scenarios)
	if err != nil {
		return fmt.Errorf("marshal scenarios: %w", err)
	}
	return c.Set(ctx, scenarioKey, payload, ttl)
}

// LoadScenarios retrieves the cached scenario set. The second return is false
// when no set has been cached or it has expired.
func LoadScenarios(ctx context.Context, c Cache) ([]model.EnrichedScenario, bool, error) {
	payload, ok := c.Get(ctx, scenarioKey)
	if !ok {
		return nil, false, nil
	}
	var scenarios []model.EnrichedScenario
	if err := json.Unmarshal(payload, &scenarios); err != nil {
		return nil, false, fmt.Errorf("unmarshal scenarios: %w", err)
	}
	return scenarios, true, nil
}
