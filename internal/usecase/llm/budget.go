package llm

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/curalink/internal/domain"
	"github.com/kailas-cloud/curalink/internal/domain/usage"
)

// BudgetAction defines behavior when token budget is exceeded.
type BudgetAction string

const (
	// BudgetActionWarn logs a warning but allows the request.
	BudgetActionWarn BudgetAction = "warn"
	// BudgetActionReject blocks the request.
	BudgetActionReject BudgetAction = "reject"
)

// persistTimeout bounds the write-behind of one Record call.
const persistTimeout = 2 * time.Second

// BudgetStore is the persistence interface for budget counters.
// Implementations must be idempotent (IncrBy can be called repeatedly).
type BudgetStore interface {
	IncrBy(ctx context.Context, key string, val int64) error
	Get(ctx context.Context, key string) (int64, error)
}

// window is one budget period. Its counter resets when the UTC period rolls over.
type window struct {
	period usage.Period
	marker string // key segment, also used by the store to pick the TTL
	layout string
	limit  int64
	used   int64
	start  time.Time
}

func newWindow(p usage.Period, limit int64, now time.Time) window {
	w := window{period: p, limit: limit, marker: "daily", layout: "2006-01-02"}
	if p == usage.PeriodMonth {
		w.marker, w.layout = "monthly", "2006-01"
	}
	w.start, _ = p.Bounds(now)
	return w
}

func (w *window) roll(now time.Time) {
	if start, _ := w.period.Bounds(now); start.After(w.start) {
		w.used = 0
		w.start = start
	}
}

func (w *window) exceeded() bool { return w.limit > 0 && w.used >= w.limit }

// remaining returns tokens left, -1 when unlimited and 0 once overdrawn.
func (w *window) remaining() int64 {
	switch {
	case w.limit == 0:
		return -1
	case w.used >= w.limit:
		return 0
	default:
		return w.limit - w.used
	}
}

func (w *window) keyAt(provider string, t time.Time) string {
	return fmt.Sprintf("%sbudget:%s:%s:%s", domain.KeyPrefix, provider, w.marker, t.Format(w.layout))
}

func (w *window) key(provider string) string { return w.keyAt(provider, w.start) }

// BudgetTracker is an in-memory token budget for the assistant with optional persistence.
// Check never leaves the process; Record updates memory first, then writes behind to the store.
type BudgetTracker struct {
	mu       sync.Mutex
	day      window
	month    window
	action   BudgetAction
	provider string
	store    BudgetStore
	logger   *zap.Logger
	now      func() time.Time
}

// NewBudgetTracker creates a budget tracker. A zero limit means unlimited.
func NewBudgetTracker(
	provider string, dailyLimit, monthlyLimit int64,
	action BudgetAction, logger *zap.Logger,
) *BudgetTracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	now := time.Now().UTC()
	return &BudgetTracker{
		day:      newWindow(usage.PeriodDay, dailyLimit, now),
		month:    newWindow(usage.PeriodMonth, monthlyLimit, now),
		action:   action,
		provider: provider,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// WithStore attaches a persistence store and loads the current window counters.
// A load failure leaves the counter at zero.
func (b *BudgetTracker) WithStore(ctx context.Context, store BudgetStore) *BudgetTracker {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.store = store
	b.rollLocked()
	for _, w := range []*window{&b.day, &b.month} {
		key := w.key(b.provider)
		val, err := store.Get(ctx, key)
		if err != nil {
			b.logger.Warn("Failed to load assistant budget", zap.String("key", key), zap.Error(err))
			continue
		}
		w.used = val
	}

	b.logger.Info("Assistant budget loaded",
		zap.String("provider", b.provider),
		zap.Int64("daily_used", b.day.used),
		zap.Int64("monthly_used", b.month.used),
	)
	return b
}

func (b *BudgetTracker) rollLocked() {
	now := b.now()
	b.day.roll(now)
	b.month.roll(now)
}

// Check verifies the budget allows a new request. With BudgetActionWarn an
// exhausted budget is only logged.
func (b *BudgetTracker) Check(_ context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.rollLocked()
	if !b.day.exceeded() && !b.month.exceeded() {
		return nil
	}
	if b.action == BudgetActionReject {
		return domain.ErrAssistantQuotaExceeded
	}

	b.logger.Warn("Assistant token budget exceeded",
		zap.String("provider", b.provider),
		zap.Int64("daily_used", b.day.used),
		zap.Int64("daily_limit", b.day.limit),
		zap.Int64("monthly_used", b.month.used),
		zap.Int64("monthly_limit", b.month.limit),
	)
	return nil
}

// Record registers consumed tokens after a request.
func (b *BudgetTracker) Record(tokens int64) {
	b.mu.Lock()
	b.rollLocked()
	b.day.used += tokens
	b.month.used += tokens
	store := b.store
	keys := [2]string{b.day.key(b.provider), b.month.key(b.provider)}
	b.mu.Unlock()

	if store == nil {
		return
	}

	// Detached from the request context: the answer is already computed.
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	for _, key := range keys {
		if err := store.IncrBy(ctx, key, tokens); err != nil {
			b.logger.Warn("Failed to persist assistant budget", zap.String("key", key), zap.Error(err))
		}
	}
}

// Provider returns the provider label the budget is keyed under.
func (b *BudgetTracker) Provider() string { return b.provider }

// DailyLimit returns the daily token cap (0 if unlimited).
func (b *BudgetTracker) DailyLimit() int64 { return b.day.limit }

// MonthlyLimit returns the monthly token cap (0 if unlimited).
func (b *BudgetTracker) MonthlyLimit() int64 { return b.month.limit }

// DailyUsed returns tokens consumed today.
func (b *BudgetTracker) DailyUsed() int64 { return b.read(func() int64 { return b.day.used }) }

// MonthlyUsed returns tokens consumed this month.
func (b *BudgetTracker) MonthlyUsed() int64 { return b.read(func() int64 { return b.month.used }) }

// RemainingDaily returns tokens left in the daily budget (-1 if unlimited).
func (b *BudgetTracker) RemainingDaily() int64 { return b.read(b.day.remaining) }

// RemainingMonthly returns tokens left in the monthly budget (-1 if unlimited).
func (b *BudgetTracker) RemainingMonthly() int64 { return b.read(b.month.remaining) }

func (b *BudgetTracker) read(f func() int64) int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.rollLocked()
	return f()
}
