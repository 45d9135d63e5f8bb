package projection

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
)

// Cache stores computed outputs by input fingerprint.
type Cache interface {
	Get(ctx context.Context, key string) (*Output, bool)
	Set(ctx context.Context, key string, out *Output)
}

// Fingerprint identifies an input under a policy. Two inputs with the same
// fingerprint always produce the same output.
func Fingerprint(in Input, policy Policy) (string, error) {
	payload, err := json.Marshal(struct {
		Input  Input  `json:"input"`
		Policy Policy `json:"policy"`
	}{in, policy.WithDefaults()})
	if err != nil {
		return "", fmt.Errorf("failed to encode input: %w", err)
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:]), nil
}

// CachedEngine memoizes an Engine. Failed computations are never stored.
type CachedEngine struct {
	engine *Engine
	cache  Cache
	logger *zap.Logger
}

// NewCachedEngine wraps engine with cache. A nil cache stores nothing.
func NewCachedEngine(logger *zap.Logger, engine *Engine, cache Cache) *CachedEngine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cache == nil {
		cache = noCache{}
	}
	return &CachedEngine{engine: engine, cache: cache, logger: logger}
}

// Compute returns the cached output for in, computing and storing it on a
// miss. The returned output is never shared with the cache.
func (c *CachedEngine) Compute(ctx context.Context, in Input) (*Output, error) {
	key, err := Fingerprint(in, c.engine.Policy())
	if err != nil {
		return nil, err
	}

	if out, ok := c.cache.Get(ctx, key); ok {
		c.logger.Debug("projection cache hit",
			zap.String("op", "projection.CachedEngine.Compute"),
			zap.String("key", key),
		)
		return out.Clone(), nil
	}

	out, err := c.engine.Compute(in)
	if err != nil {
		return nil, err
	}
	c.cache.Set(ctx, key, out.Clone())
	return out, nil
}

type noCache struct{}

func (noCache) Get(context.Context, string) (*Output, bool) { return nil, false }

func (noCache) Set(context.Context, string, *Output) {}

// Engine returns the wrapped engine.
func (c *CachedEngine) Engine() *Engine {
	return c.engine
}
