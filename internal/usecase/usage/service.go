package usage

import (
	"context"
	"time"

	domusage "github.com/kailas-cloud/curalink/internal/domain/usage"
)

// Service handles assistant usage reporting.
type Service struct {
	br  BudgetReader
	now func() time.Time
}

// New creates a Service. br can be nil (no budget tracking).
func New(br BudgetReader) *Service {
	return &Service{br: br, now: time.Now}
}

// GetReport builds a usage report for the given period.
func (s *Service) GetReport(_ context.Context, period domusage.Period) domusage.Report {
	start, end := period.Bounds(s.now())
	r := domusage.Report{
		Period:      period,
		PeriodStart: start,
		PeriodEnd:   end,
		Budget:      domusage.Budget{TokensRemaining: -1, ResetsAt: end},
	}
	if s.br == nil {
		return r
	}

	var limit, used, left int64
	if period == domusage.PeriodMonth {
		limit, used, left = s.br.MonthlyLimit(), s.br.MonthlyUsed(), s.br.RemainingMonthly()
	} else {
		limit, used, left = s.br.DailyLimit(), s.br.DailyUsed(), s.br.RemainingDaily()
	}

	r.Provider = s.br.Provider()
	r.TokensUsed = used
	r.Budget.TokensLimit = limit
	r.Budget.TokensRemaining = left
	r.Budget.Exhausted = limit > 0 && left <= 0
	return r
}
