package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/d60-Lab/ibp/pkg/logger"
)

// CachedProvider caches successful provider responses in redis. Failures are
// never cached so the next search retries the upstream.
type CachedProvider struct {
	Provider
	cache *redis.Client
	ttl   time.Duration
	now   func() time.Time
}

func NewCachedProvider(p Provider, cache *redis.Client, ttl time.Duration) *CachedProvider {
	return &CachedProvider{Provider: p, cache: cache, ttl: ttl, now: time.Now}
}

func (c *CachedProvider) QueryByName(ctx context.Context, firstName, lastName string) ([]Record, error) {
	key := fmt.Sprintf("provider:%s:name:%s:%s", c.Jurisdiction(), strings.ToLower(firstName), strings.ToLower(lastName))
	return c.cached(ctx, key, func() ([]Record, error) {
		return c.Provider.QueryByName(ctx, firstName, lastName)
	})
}

func (c *CachedProvider) QueryByID(ctx context.Context, id int64) ([]Record, error) {
	key := fmt.Sprintf("provider:%s:id:%d", c.Jurisdiction(), id)
	return c.cached(ctx, key, func() ([]Record, error) {
		return c.Provider.QueryByID(ctx, id)
	})
}

type bypassKey struct{}

// WithoutCache marks ctx so cached providers skip the cache read. Refreshes
// that must reflect the provider's current state use it.
func WithoutCache(ctx context.Context) context.Context {
	return context.WithValue(ctx, bypassKey{}, true)
}

func bypass(ctx context.Context) bool {
	v, _ := ctx.Value(bypassKey{}).(bool)
	return v
}

func (c *CachedProvider) cached(ctx context.Context, key string, load func() ([]Record, error)) ([]Record, error) {
	if !bypass(ctx) {
		if data, err := c.cache.Get(ctx, key).Bytes(); err == nil {
			var out []Record
			if uErr := json.Unmarshal(data, &out); uErr == nil {
				return out, nil
			}
		}
	}

	records, err := load()
	if err != nil {
		return nil, err
	}
	// stamped before caching so hits keep the upstream fetch time
	fetched := c.now().UTC()
	for i := range records {
		if records[i].DatetimeFetched.IsZero() {
			records[i].DatetimeFetched = fetched
		}
	}
	if payload, err := json.Marshal(records); err == nil {
		if err := c.cache.Set(ctx, key, payload, c.ttl).Err(); err != nil {
			logger.Warn("provider cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return records, nil
}
