// Package usage describes assistant token consumption over a budget period.
package usage

import (
	"fmt"
	"time"

	"github.com/kailas-cloud/curalink/internal/domain"
)

// Period is the aggregation granularity.
type Period string

// Aggregation period constants.
const (
	PeriodDay   Period = "day"
	PeriodMonth Period = "month"
)

// ParsePeriod validates a period name. Empty selects PeriodDay.
func ParsePeriod(s string) (Period, error) {
	switch Period(s) {
	case "":
		return PeriodDay, nil
	case PeriodDay, PeriodMonth:
		return Period(s), nil
	default:
		return "", fmt.Errorf("%w: period must be day or month, got %q", domain.ErrInvalidCriteria, s)
	}
}

// Budget is a token budget snapshot. TokensLimit 0 means unlimited, in which
// case TokensRemaining is -1.
type Budget struct {
	TokensLimit     int64     `json:"tokensLimit"`
	TokensRemaining int64     `json:"tokensRemaining"`
	Exhausted       bool      `json:"exhausted"`
	ResetsAt        time.Time `json:"resetsAt"`
}

// Report is the assistant token usage for one period.
type Report struct {
	Period      Period    `json:"period"`
	PeriodStart time.Time `json:"periodStart"`
	PeriodEnd   time.Time `json:"periodEnd"`
	Provider    string    `json:"provider,omitempty"`
	TokensUsed  int64     `json:"tokensUsed"`
	Budget      Budget    `json:"budget"`
}

// Bounds returns the UTC period containing now.
func (p Period) Bounds(now time.Time) (start, end time.Time) {
	now = now.UTC()
	if p == PeriodMonth {
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		return start, start.AddDate(0, 1, 0)
	}
	start = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 0, 1)
}
