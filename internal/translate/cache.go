package translate

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"sakinah/backend/internal/logging"
)

const cacheKeyPrefix = "translate"

// kv is the subset of redis.Cmdable the cache needs.
type kv interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
}

// Cached memoises a Translator in Redis. Concurrent lookups of the same text
// share one upstream call. Redis failures fall through to the wrapped
// translator.
type Cached struct {
	next      Translator
	kv        kv
	direction Direction
	ttl       time.Duration
	sf        singleflight.Group
}

func NewCached(next Translator, client kv, direction Direction, ttl time.Duration) *Cached {
	return &Cached{next: next, kv: client, direction: direction, ttl: ttl}
}

func (c *Cached) key(text string) string {
	sum := sha256.Sum256([]byte(text))
	return fmt.Sprintf("%s:%s:%s", cacheKeyPrefix, c.direction, hex.EncodeToString(sum[:]))
}

func (c *Cached) Translate(ctx context.Context, text string) (string, error) {
	key := c.key(text)
	// Callers coalesced onto this lookup must not fail because the first
	// caller went away.
	shared := context.WithoutCancel(ctx)
	result, err, _ := c.sf.Do(key, func() (any, error) {
		return c.lookup(shared, key, text)
	})
	if err != nil {
		return "", err
	}
	translated, ok := result.(string)
	if !ok {
		return "", fmt.Errorf("unexpected result type from singleflight")
	}
	return translated, nil
}

func (c *Cached) lookup(ctx context.Context, key, text string) (string, error) {
	l := logging.Ctx(ctx)

	cached, err := c.kv.Get(ctx, key).Result()
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, redis.Nil) {
		l.Warn().Err(err).Str("direction", string(c.direction)).Msg("translation cache read failed")
	}

	translated, err := c.next.Translate(ctx, text)
	if err != nil {
		return "", err
	}

	if err := c.kv.Set(ctx, key, translated, c.ttl).Err(); err != nil {
		l.Warn().Err(err).Str("direction", string(c.direction)).Msg("translation cache write failed")
	}
	return translated, nil
}
