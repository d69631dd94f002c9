package tokencache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/curalink/internal/db"
	"github.com/kailas-cloud/curalink/internal/domain"
)

var cacheKeyPrefix = domain.KeyPrefix + "token:"

// ttlFraction is the share of the remaining token lifetime a cached token is kept for.
const ttlFraction = 0.8

// store is the consumer interface for the token cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// CachedSource caches access tokens in a key-value store.
type CachedSource struct {
	inner      domain.TokenSource
	store      store
	key        string
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
	now        func() time.Time
}

// New creates a caching decorator. subject identifies the credential
// (e.g. the service account username) so that different accounts never share a token.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"), passed explicitly.
func New(
	inner domain.TokenSource,
	s store,
	subject string,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *CachedSource {
	return &CachedSource{
		inner:      inner,
		store:      s,
		key:        cacheKeyPrefix + subject,
		cacheTotal: cacheTotal,
		logger:     logger,
		now:        time.Now,
	}
}

// Token returns a cached token while it is still valid, otherwise fetches a new one.
// Cache failures degrade to a fresh fetch; only the inner source's error is returned.
func (c *CachedSource) Token(ctx context.Context) (domain.Token, error) {
	now := c.now()

	if tok, ok := c.getFromCache(ctx); ok && tok.Valid(now) {
		c.incCache("hit")
		return tok, nil
	}

	c.incCache("miss")

	tok, err := c.inner.Token(ctx)
	if err != nil {
		return domain.Token{}, fmt.Errorf("fetch token: %w", err)
	}

	c.putToCache(ctx, tok, now)
	return tok, nil
}

func (c *CachedSource) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

func (c *CachedSource) getFromCache(ctx context.Context) (domain.Token, bool) {
	data, err := c.store.Get(ctx, c.key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached token", zap.String("key", c.key), zap.Error(err))
		}
		return domain.Token{}, false
	}
	if len(data) == 0 {
		return domain.Token{}, false
	}

	var tok domain.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		c.logger.Warn("Failed to parse cached token", zap.String("key", c.key), zap.Error(err))
		return domain.Token{}, false
	}
	return tok, true
}

func (c *CachedSource) putToCache(ctx context.Context, tok domain.Token, now time.Time) {
	ttl := time.Duration(float64(tok.ExpiresAt.Sub(now)) * ttlFraction)
	if ttl < time.Second {
		return
	}
	data, err := json.Marshal(tok)
	if err != nil {
		c.logger.Warn("Failed to encode token", zap.Error(err))
		return
	}
	if err := c.store.SetWithTTL(ctx, c.key, data, ttl); err != nil {
		c.logger.Warn("Failed to cache token", zap.String("key", c.key), zap.Error(err))
	}
}
