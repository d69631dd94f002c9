// Package llm wraps the assistant's chat model with a token budget and logging.
package llm

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/curalink/internal/domain"
	"github.com/kailas-cloud/curalink/internal/metrics"
)

// BudgetChecker is the local interface for budget enforcement.
type BudgetChecker interface {
	Check(ctx context.Context) error
	Record(tokens int64)
	RemainingDaily() int64
	RemainingMonthly() int64
}

// InstrumentedChatModel wraps a ChatModel with budget enforcement and logging.
// Transport metrics (requests, duration, tokens) are recorded in transport/openai.
type InstrumentedChatModel struct {
	inner    domain.ChatModel
	provider string
	budget   BudgetChecker
	logger   *zap.Logger
}

// NewInstrumentedChatModel wraps a chat model. budget can be nil.
func NewInstrumentedChatModel(
	inner domain.ChatModel, provider string, budget BudgetChecker, logger *zap.Logger,
) *InstrumentedChatModel {
	return &InstrumentedChatModel{
		inner:    inner,
		provider: provider,
		budget:   budget,
		logger:   logger,
	}
}

// Model returns the wrapped model name.
func (p *InstrumentedChatModel) Model() string { return p.inner.Model() }

// Complete checks the budget, delegates to the inner model and records usage.
func (p *InstrumentedChatModel) Complete(
	ctx context.Context, system string, history []domain.ChatMessage, question string,
) (domain.Completion, error) {
	if p.budget != nil {
		if err := p.budget.Check(ctx); err != nil {
			p.logger.Error("Assistant budget exceeded",
				zap.String("provider", p.provider),
				zap.String("model", p.inner.Model()),
				zap.Error(err),
			)
			return domain.Completion{}, fmt.Errorf("budget check: %w", err)
		}
	}

	start := time.Now()

	result, err := p.inner.Complete(ctx, system, history, question)

	duration := time.Since(start)

	if err != nil {
		p.logger.Error("Assistant request failed",
			zap.String("provider", p.provider),
			zap.String("model", p.inner.Model()),
			zap.Duration("duration", duration),
			zap.Int("history_turns", len(history)),
			zap.Error(err),
		)
		return domain.Completion{}, fmt.Errorf("complete: %w", err)
	}

	if p.budget != nil && result.TotalTokens > 0 {
		p.budget.Record(int64(result.TotalTokens))
		remaining := metrics.AssistantBudgetTokensRemaining
		remaining.WithLabelValues(p.provider, "daily").Set(float64(p.budget.RemainingDaily()))
		remaining.WithLabelValues(p.provider, "monthly").Set(float64(p.budget.RemainingMonthly()))
	}

	p.logger.Debug("Assistant request completed",
		zap.String("provider", p.provider),
		zap.String("model", p.inner.Model()),
		zap.Duration("duration", duration),
		zap.Int("prompt_tokens", result.PromptTokens),
		zap.Int("completion_tokens", result.CompletionTokens),
		zap.Int("total_tokens", result.TotalTokens),
	)

	return result, nil
}
