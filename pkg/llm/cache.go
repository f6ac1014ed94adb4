package llm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/medibuddy-diagnosis-server/internal/domain"
)

// CachedGenerator memoizes generated responses in Redis. Identical prompts
// within the TTL are served from cache, which keeps repeated utterances
// (and test traffic) from burning model quota. Cache failures are treated
// as misses and never fail the call.
type CachedGenerator struct {
	inner domain.TextGenerator
	redis *redis.Client
	ttl   time.Duration
	log   *logrus.Logger
}

// NewCachedGenerator creates the caching decorator. The Redis connection is
// verified up front so a misconfigured cache fails at startup, not on the
// first chat turn.
func NewCachedGenerator(inner domain.TextGenerator, cfg domain.CacheConfig, logger *logrus.Logger) (*CachedGenerator, error) {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}

	ttl := cfg.DefaultTTL
	if ttl <= 0 {
		ttl = time.Hour
	}

	return &CachedGenerator{
		inner: inner,
		redis: client,
		ttl:   ttl,
		log:   logger,
	}, nil
}

// Generate returns a cached response when one exists, otherwise delegates
// and stores the result.
func (c *CachedGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	key := c.cacheKey(prompt)

	val, err := c.redis.Get(ctx, key).Result()
	if err == nil {
		c.log.WithField("key", key).Debug("Generation cache hit")
		return val, nil
	}
	if err != redis.Nil {
		c.log.WithError(err).Warn("Generation cache read failed, treating as miss")
	}

	text, err := c.inner.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}

	if err := c.redis.Set(ctx, key, text, c.ttl).Err(); err != nil {
		c.log.WithError(err).Warn("Generation cache write failed")
	}

	return text, nil
}

// Close releases the Redis connection.
func (c *CachedGenerator) Close() error {
	return c.redis.Close()
}

func (c *CachedGenerator) cacheKey(prompt string) string {
	sum := sha256.Sum256([]byte(prompt))
	return "medibuddy:gen:" + hex.EncodeToString(sum[:])
}
