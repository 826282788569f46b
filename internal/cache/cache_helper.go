package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// CacheHelper provides cache-aside operations under a key prefix.
// A helper built with a nil client is a no-op cache.
type CacheHelper struct {
	client *redis.Client
	prefix string
}

func NewCacheHelper(client *redis.Client, prefix string) *CacheHelper {
	return &CacheHelper{
		client: client,
		prefix: prefix,
	}
}

type CacheConfig struct {
	TTL    time.Duration
	Prefix string
}

var (
	// Published catalog: assessments and their candidate-facing questions
	PublishedCacheConfig = CacheConfig{
		TTL:    5 * time.Minute,
		Prefix: "published:",
	}

	// Categories change rarely
	CategoryCacheConfig = CacheConfig{
		TTL:    30 * time.Minute,
		Prefix: "category:",
	}

	UserCacheConfig = CacheConfig{
		TTL:    15 * time.Minute,
		Prefix: "user:",
	}
)

var (
	ErrCacheNotAvailable = errors.New("cache not available")
	ErrCacheNotFound     = errors.New("cache not found")
)

func (c *CacheHelper) Enabled() bool {
	return c != nil && c.client != nil
}

func (c *CacheHelper) GetCacheKey(key string) string {
	return c.prefix + key
}

// Get retrieves and unmarshals data from cache
func (c *CacheHelper) Get(ctx context.Context, key string, dest interface{}) error {
	if !c.Enabled() {
		return ErrCacheNotAvailable
	}

	data, err := c.client.Get(ctx, c.GetCacheKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrCacheNotFound
		}
		return fmt.Errorf("cache get error: %w", err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("cache unmarshal error: %w", err)
	}
	return nil
}

// Set marshals and stores data in cache
func (c *CacheHelper) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if !c.Enabled() {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache marshal error: %w", err)
	}
	return c.client.Set(ctx, c.GetCacheKey(key), data, ttl).Err()
}

// generationTTL outlives every entry TTL so a bumped generation is seen by in-flight fetches
const generationTTL = time.Hour

var errStaleWrite = errors.New("cache entry invalidated during fetch")

func (c *CacheHelper) generationKey(key string) string {
	return c.prefix + "gen:" + key
}

// generation returns the invalidation counter of key; a missing counter reads as ""
func (c *CacheHelper) generation(ctx context.Context, key string) (string, error) {
	gen, err := c.client.Get(ctx, c.generationKey(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return gen, err
}

// Delete removes keys and bumps their generations in one transaction,
// so a CacheOrExecute fetch that started earlier cannot write them back.
func (c *CacheHelper) Delete(ctx context.Context, keys ...string) error {
	if !c.Enabled() || len(keys) == 0 {
		return nil
	}

	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, key := range keys {
			pipe.Del(ctx, c.GetCacheKey(key))
			pipe.Incr(ctx, c.generationKey(key))
			pipe.Expire(ctx, c.generationKey(key), generationTTL)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("cache delete error: %w", err)
	}
	return nil
}

// setIfGeneration stores data only while key's generation still equals gen
func (c *CacheHelper) setIfGeneration(ctx context.Context, key, gen string, data []byte, ttl time.Duration) error {
	genKey := c.generationKey(key)
	return c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, genKey).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != gen {
			return errStaleWrite
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, c.GetCacheKey(key), data, ttl)
			return nil
		})
		return err
	}, genKey)
}

// CacheOrExecute reads key into dest, falling back to fetchFunc on a miss.
// The fetched value is written back before returning unless the key was
// invalidated while fetchFunc ran.
func (c *CacheHelper) CacheOrExecute(ctx context.Context, key string, dest interface{}, ttl time.Duration, fetchFunc func() (interface{}, error)) error {
	err := c.Get(ctx, key, dest)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrCacheNotFound) && !errors.Is(err, ErrCacheNotAvailable) {
		slog.WarnContext(ctx, "Cache get error, proceeding to fetch", "error", err, "key", key)
	}

	writeBack := c.Enabled()
	var gen string
	if writeBack {
		if gen, err = c.generation(ctx, key); err != nil {
			slog.WarnContext(ctx, "Cache generation read error, skipping write-back", "error", err, "key", key)
			writeBack = false
		}
	}

	value, err := fetchFunc()
	if err != nil {
		return err
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal result error: %w", err)
	}

	if writeBack {
		err := c.setIfGeneration(ctx, key, gen, data, ttl)
		switch {
		case err == nil:
		case errors.Is(err, errStaleWrite), errors.Is(err, redis.TxFailedErr):
			slog.DebugContext(ctx, "Cache write-back dropped after invalidation", "key", key)
		default:
			slog.ErrorContext(ctx, "Cache set error", "error", err, "key", key)
		}
	}

	return json.Unmarshal(data, dest)
}

// CacheManager manages multiple cache helpers
type CacheManager struct {
	client    *redis.Client
	Published *CacheHelper
	Category  *CacheHelper
	User      *CacheHelper
}

func NewCacheManager(client *redis.Client) *CacheManager {
	return &CacheManager{
		client:    client,
		Published: NewCacheHelper(client, PublishedCacheConfig.Prefix),
		Category:  NewCacheHelper(client, CategoryCacheConfig.Prefix),
		User:      NewCacheHelper(client, UserCacheConfig.Prefix),
	}
}

// HealthCheck verifies cache connectivity
func (cm *CacheManager) HealthCheck(ctx context.Context) error {
	if cm.client == nil {
		return ErrCacheNotAvailable
	}
	if err := cm.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("cache health check failed: %w", err)
	}
	return nil
}
