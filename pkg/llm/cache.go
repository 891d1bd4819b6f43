package llm

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"math"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// EmbeddingCache memoizes GetEmbedding results so repeated buyer turns and
// repeated backlog prompts don't re-pay the embedding model. No cache is
// mandated; a NoopEmbeddingCache is always a valid choice.
type EmbeddingCache interface {
	Get(ctx context.Context, text string) ([]float32, bool)
	Set(ctx context.Context, text string, embedding []float32)
}

// NoopEmbeddingCache never caches; every call is a miss.
type NoopEmbeddingCache struct{}

func (NoopEmbeddingCache) Get(context.Context, string) ([]float32, bool) { return nil, false }
func (NoopEmbeddingCache) Set(context.Context, string, []float32)        {}

// LRUEmbeddingCache is an in-process cache for single-instance deployments
// or tests where a Redis dependency is undesirable.
type LRUEmbeddingCache struct {
	cache *lru.Cache[string, []float32]
}

// NewLRUEmbeddingCache creates an in-process embedding cache holding up to
// size entries, evicting least-recently-used first.
func NewLRUEmbeddingCache(size int) (*LRUEmbeddingCache, error) {
	cache, err := lru.New[string, []float32](size)
	if err != nil {
		return nil, err
	}
	return &LRUEmbeddingCache{cache: cache}, nil
}

func (c *LRUEmbeddingCache) Get(_ context.Context, text string) ([]float32, bool) {
	return c.cache.Get(cacheKey(text))
}

func (c *LRUEmbeddingCache) Set(_ context.Context, text string, embedding []float32) {
	c.cache.Add(cacheKey(text), embedding)
}

// RedisEmbeddingCache shares cached embeddings across replicas of the
// matcher process. Values are encoded as a flat sequence of big-endian
// float32 bits to avoid the allocation overhead of JSON for 1536-length
// vectors.
type RedisEmbeddingCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisEmbeddingCache wraps an existing Redis client. ttl of zero means
// cached entries never expire.
func NewRedisEmbeddingCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisEmbeddingCache {
	return &RedisEmbeddingCache{client: client, ttl: ttl, logger: logger.Named("llm.cache.redis")}
}

func (c *RedisEmbeddingCache) Get(ctx context.Context, text string) ([]float32, bool) {
	data, err := c.client.Get(ctx, "embed:"+cacheKey(text)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("embedding cache read failed", zap.Error(err))
		}
		return nil, false
	}
	return decodeFloat32s(data), true
}

func (c *RedisEmbeddingCache) Set(ctx context.Context, text string, embedding []float32) {
	if err := c.client.Set(ctx, "embed:"+cacheKey(text), encodeFloat32s(embedding), c.ttl).Err(); err != nil {
		c.logger.Warn("embedding cache write failed", zap.Error(err))
	}
}

func cacheKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

func encodeFloat32s(values []float32) []byte {
	buf := make([]byte, 4*len(values))
	for i, v := range values {
		binary.BigEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

func decodeFloat32s(data []byte) []float32 {
	values := make([]float32, len(data)/4)
	for i := range values {
		values[i] = math.Float32frombits(binary.BigEndian.Uint32(data[i*4:]))
	}
	return values
}

var (
	_ EmbeddingCache = (*LRUEmbeddingCache)(nil)
	_ EmbeddingCache = (*RedisEmbeddingCache)(nil)
	_ EmbeddingCache = NoopEmbeddingCache{}
)
