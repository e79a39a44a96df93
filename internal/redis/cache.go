package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// CacheClient caches resolved pet-type identifiers per store. Type ids are
// stable for the life of a type, so the resolver can skip re-listing a
// store's types on every purchase; entries expire on TTL so deleted types
// eventually fall out.
type CacheClient struct {
	client    redis.UniversalClient
	ttl       time.Duration
	keyPrefix string
}

// NewCacheClient creates a new Redis cache client with cluster support
func NewCacheClient(addrs []string, password string, clusterMode bool, ttl time.Duration, keyPrefix string) *CacheClient {
	var client redis.UniversalClient

	if clusterMode {
		client = redis.NewClusterClient(&redis.ClusterOptions{
			Addrs:        addrs,
			Password:     password,
			MaxRetries:   3,
			PoolSize:     50,
			MinIdleConns: 5,
			PoolTimeout:  30 * time.Second,
		})
	} else {
		addr := "localhost:6379"
		if len(addrs) > 0 {
			addr = addrs[0]
		}
		client = redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       0,
			PoolSize: 10,
		})
	}

	return &CacheClient{
		client:    client,
		ttl:       ttl,
		keyPrefix: keyPrefix,
	}
}

// GetPetTypeID retrieves a cached pet-type identifier. A cache miss returns
// an empty id and no error.
func (c *CacheClient) GetPetTypeID(ctx context.Context, store int, typeName string) (string, error) {
	key := c.petTypeKey(store, typeName)

	id, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return "", nil
		}
		log.Error().Err(err).Str("type", typeName).Int("store", store).Msg("Failed to get pet type id from cache")
		return "", fmt.Errorf("failed to get pet type id from cache: %w", err)
	}

	log.Debug().Str("type", typeName).Int("store", store).Msg("Cache hit for pet type id")
	return id, nil
}

// SetPetTypeID stores a resolved pet-type identifier
func (c *CacheClient) SetPetTypeID(ctx context.Context, store int, typeName, id string) error {
	key := c.petTypeKey(store, typeName)

	if err := c.client.Set(ctx, key, id, c.ttl).Err(); err != nil {
		log.Error().Err(err).Str("type", typeName).Int("store", store).Msg("Failed to cache pet type id")
		return fmt.Errorf("failed to cache pet type id: %w", err)
	}

	return nil
}

// Ping checks if Redis is available
func (c *CacheClient) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (c *CacheClient) Close() error {
	return c.client.Close()
}

// petTypeKey generates the cache key for a (store, type name) pair.
// Type names match case-insensitively, so the key is lowercased.
func (c *CacheClient) petTypeKey(store int, typeName string) string {
	return fmt.Sprintf("%spettype:%d:%s", c.keyPrefix, store, strings.ToLower(typeName))
}
