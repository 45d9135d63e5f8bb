package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/iwvelando/rental-projection/internal/projection"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const redisKeyPrefix = "rental-projection:"

// Redis is a projection cache shared between server instances. Outputs are
// stored as JSON. Redis failures are logged and treated as misses.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedis connects to the Redis server at addr.
func NewRedis(logger *zap.Logger, addr string, ttl time.Duration) *Redis {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Redis{
		client: redis.NewClient(&redis.Options{Addr: addr}),
		ttl:    ttl,
		logger: logger,
	}
}

// Ping checks the connection.
func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Get implements projection.Cache.
func (r *Redis) Get(ctx context.Context, key string) (*projection.Output, bool) {
	payload, err := r.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.logger.Warn("failed to read projection from redis",
				zap.String("op", "cache.Redis.Get"),
				zap.Error(err),
			)
		}
		return nil, false
	}

	var out projection.Output
	if err := json.Unmarshal(payload, &out); err != nil {
		r.logger.Warn("discarding undecodable cached projection",
			zap.String("op", "cache.Redis.Get"),
			zap.String("key", key),
			zap.Error(err),
		)
		return nil, false
	}
	return &out, true
}

// Set implements projection.Cache.
func (r *Redis) Set(ctx context.Context, key string, out *projection.Output) {
	payload, err := json.Marshal(out)
	if err != nil {
		r.logger.Warn("failed to encode projection for redis",
			zap.String("op", "cache.Redis.Set"),
			zap.Error(err),
		)
		return
	}
	if err := r.client.Set(ctx, redisKeyPrefix+key, payload, r.ttl).Err(); err != nil {
		r.logger.Warn("failed to write projection to redis",
			zap.String("op", "cache.Redis.Set"),
			zap.Error(err),
		)
	}
}

// Close releases the connection pool.
func (r *Redis) Close() error {
	return r.client.Close()
}

var _ projection.Cache = (*Redis)(nil)
