// Package budget persists assistant token counters in the key-value store.
package budget

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kailas-cloud/curalink/internal/db"
	"github.com/kailas-cloud/curalink/internal/domain"
)

// Default key lifetimes. Keys outlive their window so a restart inside the
// window reloads the running total.
const (
	DefaultDailyTTL   = 48 * time.Hour
	DefaultMonthlyTTL = 62 * 24 * time.Hour
)

// Window markers as they appear in counter keys.
const (
	windowDaily   = "daily"
	windowMonthly = "monthly"
)

var keyPrefix = domain.KeyPrefix + "budget:"

// ErrMalformedKey is returned for keys outside curalink:budget:{provider}:{window}:{date}.
var ErrMalformedKey = errors.New("malformed budget key")

type counters interface {
	Get(ctx context.Context, key string) ([]byte, error)
	IncrByWithTTL(ctx context.Context, key string, val int64, ttl time.Duration) (int64, error)
}

// Store keeps one counter per provider and window.
type Store struct {
	kv   counters
	ttls map[string]time.Duration
}

// New creates a budget store. Zero TTLs select the defaults.
func New(kv counters, dailyTTL, monthTTL time.Duration) *Store {
	if dailyTTL <= 0 {
		dailyTTL = DefaultDailyTTL
	}
	if monthTTL <= 0 {
		monthTTL = DefaultMonthlyTTL
	}
	return &Store{
		kv: kv,
		ttls: map[string]time.Duration{
			windowDaily:   dailyTTL,
			windowMonthly: monthTTL,
		},
	}
}

// IncrBy adds tokens to a window counter. The first increment fixes the key's expiry.
func (s *Store) IncrBy(ctx context.Context, key string, val int64) error {
	ttl, err := s.ttl(key)
	if err != nil {
		return err
	}
	if _, err := s.kv.IncrByWithTTL(ctx, key, val, ttl); err != nil {
		return fmt.Errorf("add %d tokens to %s: %w", val, key, err)
	}
	return nil
}

// Get returns the running total. A missing key reads as 0.
func (s *Store) Get(ctx context.Context, key string) (int64, error) {
	data, err := s.kv.Get(ctx, key)
	switch {
	case errors.Is(err, db.ErrKeyNotFound):
		return 0, nil
	case err != nil:
		return 0, fmt.Errorf("read %s: %w", key, err)
	}
	total, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil || total < 0 {
		return 0, fmt.Errorf("counter %s holds %q", key, data)
	}
	return total, nil
}

func (s *Store) ttl(key string) (time.Duration, error) {
	rest, ok := strings.CutPrefix(key, keyPrefix)
	parts := strings.Split(rest, ":")
	if !ok || len(parts) != 3 {
		return 0, fmt.Errorf("%w: %s", ErrMalformedKey, key)
	}
	ttl, ok := s.ttls[parts[1]]
	if !ok {
		return 0, fmt.Errorf("%w: unknown window %q in %s", ErrMalformedKey, parts[1], key)
	}
	return ttl, nil
}
