package tokencache

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"

	"github.com/kailas-cloud/curalink/internal/db"
	"github.com/kailas-cloud/curalink/internal/domain"
)

func TestToken_CacheMiss(t *testing.T) {
	inner := &mockSource{token: domain.Token{AccessToken: "fresh", ExpiresAt: testNow.Add(300 * time.Second)}}
	cs, ms := newTestCachedSource(t, inner)

	var gotKey string
	var gotTTL time.Duration
	ms.setFn = func(_ context.Context, key string, _ []byte, ttl time.Duration) error {
		gotKey, gotTTL = key, ttl
		return nil
	}

	tok, err := cs.Token(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tok.AccessToken != "fresh" {
		t.Errorf("token = %q", tok.AccessToken)
	}
	if gotKey != "curalink:token:admin" {
		t.Errorf("cache key = %q", gotKey)
	}
	if gotTTL != 240*time.Second {
		t.Errorf("ttl = %v, want 80%% of 300s", gotTTL)
	}
}

func TestToken_CacheHit(t *testing.T) {
	inner := &mockSource{}
	cs, ms := newTestCachedSource(t, inner)

	cached, _ := json.Marshal(domain.Token{AccessToken: "cached", ExpiresAt: testNow.Add(time.Minute)})
	ms.getFn = func(_ context.Context, _ string) ([]byte, error) { return cached, nil }

	tok, err := cs.Token(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tok.AccessToken != "cached" {
		t.Errorf("token = %q", tok.AccessToken)
	}
	if inner.calls != 0 {
		t.Errorf("expected no inner calls on hit, got %d", inner.calls)
	}
}

func TestToken_ExpiredEntryRefetches(t *testing.T) {
	inner := &mockSource{token: domain.Token{AccessToken: "fresh", ExpiresAt: testNow.Add(time.Hour)}}
	cs, ms := newTestCachedSource(t, inner)

	stale, _ := json.Marshal(domain.Token{AccessToken: "stale", ExpiresAt: testNow.Add(-time.Second)})
	ms.getFn = func(_ context.Context, _ string) ([]byte, error) { return stale, nil }

	tok, err := cs.Token(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tok.AccessToken != "fresh" || inner.calls != 1 {
		t.Errorf("token = %q, inner calls = %d", tok.AccessToken, inner.calls)
	}
}

func TestToken_StoreFailureDegrades(t *testing.T) {
	inner := &mockSource{token: domain.Token{AccessToken: "fresh", ExpiresAt: testNow.Add(time.Hour)}}
	cs, ms := newTestCachedSource(t, inner)

	ms.getFn = func(_ context.Context, _ string) ([]byte, error) { return nil, errors.New("connection refused") }
	ms.setFn = func(_ context.Context, _ string, _ []byte, _ time.Duration) error { return errors.New("connection refused") }

	tok, err := cs.Token(context.Background())
	if err != nil {
		t.Fatalf("store failures must not surface: %v", err)
	}
	if tok.AccessToken != "fresh" {
		t.Errorf("token = %q", tok.AccessToken)
	}
}

func TestToken_CorruptEntry(t *testing.T) {
	inner := &mockSource{token: domain.Token{AccessToken: "fresh", ExpiresAt: testNow.Add(time.Hour)}}
	cs, ms := newTestCachedSource(t, inner)
	ms.getFn = func(_ context.Context, _ string) ([]byte, error) { return []byte("{not json"), nil }

	if _, err := cs.Token(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.calls != 1 {
		t.Errorf("expected refetch, got %d inner calls", inner.calls)
	}
}

func TestToken_InnerError(t *testing.T) {
	inner := &mockSource{err: domain.ErrAuthentication}
	cs, _ := newTestCachedSource(t, inner)

	_, err := cs.Token(context.Background())
	if !errors.Is(err, domain.ErrAuthentication) {
		t.Fatalf("expected ErrAuthentication, got %v", err)
	}
}

func TestToken_ShortLivedNotCached(t *testing.T) {
	inner := &mockSource{token: domain.Token{AccessToken: "brief", ExpiresAt: testNow.Add(time.Second)}}
	cs, ms := newTestCachedSource(t, inner)

	ms.setFn = func(_ context.Context, _ string, _ []byte, _ time.Duration) error {
		t.Fatal("token with under a second of cacheable lifetime should not be stored")
		return nil
	}
	if _, err := cs.Token(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestToken_Metrics(t *testing.T) {
	counter := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "test_token_cache_total"}, []string{"result"})
	inner := &mockSource{token: domain.Token{AccessToken: "t", ExpiresAt: testNow.Add(time.Hour)}}
	ms := &mockKVStore{getFn: func(_ context.Context, _ string) ([]byte, error) { return nil, db.ErrKeyNotFound }}
	cs := New(inner, ms, "admin", counter, zap.NewNop())
	cs.now = func() time.Time { return testNow }

	if _, err := cs.Token(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v := testutil.ToFloat64(counter.WithLabelValues("miss")); v != 1 {
		t.Errorf("miss = %f", v)
	}
}
