package riot

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/riftscope/riftscope/pkg/logger"
)

// redisCache shares the immutable-response cache across processes. Errors
// degrade to a miss; the gateway never depends on the cache being up.
type redisCache struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
	log       logger.Logger
}

const (
	redisKeyPrefix  = "riftscope:riot:"
	redisDefaultTTL = 24 * time.Hour
	redisOpTimeout  = 250 * time.Millisecond
)

// NewRedisCache creates a Redis-backed cache. The TTL caps memory on the
// Redis side the way maxSize does for the in-memory cache; cached payloads
// are immutable so expiry is purely a space concern.
func NewRedisCache(addr string) Cache {
	return &redisCache{
		client:    redis.NewClient(&redis.Options{Addr: addr}),
		keyPrefix: redisKeyPrefix,
		ttl:       redisDefaultTTL,
		log:       logger.Named("riot-cache"),
	}
}

func (c *redisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	opCtx, cancel := context.WithTimeout(ctx, redisOpTimeout)
	defer cancel()

	val, err := c.client.Get(opCtx, c.keyPrefix+key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.log.Debug(ctx, "redis get failed", logger.String("key", key), logger.Error(err))
		}
		return nil, false
	}
	return val, true
}

func (c *redisCache) Set(ctx context.Context, key string, value []byte) {
	opCtx, cancel := context.WithTimeout(ctx, redisOpTimeout)
	defer cancel()

	if err := c.client.Set(opCtx, c.keyPrefix+key, value, c.ttl).Err(); err != nil {
		c.log.Debug(ctx, "redis set failed", logger.String("key", key), logger.Error(err))
	}
}
