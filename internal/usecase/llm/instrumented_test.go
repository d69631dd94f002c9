package llm

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"

	"github.com/kailas-cloud/curalink/internal/domain"
	"github.com/kailas-cloud/curalink/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.RegisterAssistantMetrics()
	os.Exit(m.Run())
}

type mockChatModel struct {
	result domain.Completion
	err    error
	calls  int
}

func (m *mockChatModel) Complete(
	_ context.Context, _ string, _ []domain.ChatMessage, _ string,
) (domain.Completion, error) {
	m.calls++
	return m.result, m.err
}

func (m *mockChatModel) Model() string { return "llama3" }

func TestInstrumentedChatModel_Success(t *testing.T) {
	inner := &mockChatModel{result: domain.Completion{Text: "3 studies", TotalTokens: 40}}
	p := NewInstrumentedChatModel(inner, "ollama", nil, zap.NewNop())

	got, err := p.Complete(context.Background(), "sys", nil, "how many?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Text != "3 studies" {
		t.Errorf("text = %q", got.Text)
	}
	if p.Model() != "llama3" {
		t.Errorf("Model() = %q", p.Model())
	}
}

func TestInstrumentedChatModel_RecordsBudget(t *testing.T) {
	inner := &mockChatModel{result: domain.Completion{Text: "ok", TotalTokens: 250}}
	bt := NewBudgetTracker("budget-test", 1000, 0, BudgetActionReject, zap.NewNop())
	p := NewInstrumentedChatModel(inner, "budget-test", bt, zap.NewNop())

	if _, err := p.Complete(context.Background(), "sys", nil, "q"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bt.DailyUsed() != 250 {
		t.Errorf("expected 250 tokens recorded, got %d", bt.DailyUsed())
	}
	gauge := metrics.AssistantBudgetTokensRemaining.WithLabelValues("budget-test", "daily")
	if v := testutil.ToFloat64(gauge); v != 750 {
		t.Errorf("remaining gauge = %v, want 750", v)
	}
}

func TestInstrumentedChatModel_BudgetRejectsBeforeCall(t *testing.T) {
	inner := &mockChatModel{result: domain.Completion{Text: "ok"}}
	bt := NewBudgetTracker("reject-test", 10, 0, BudgetActionReject, zap.NewNop())
	bt.Record(10)
	p := NewInstrumentedChatModel(inner, "reject-test", bt, zap.NewNop())

	_, err := p.Complete(context.Background(), "sys", nil, "q")
	if !errors.Is(err, domain.ErrAssistantQuotaExceeded) {
		t.Fatalf("expected ErrAssistantQuotaExceeded, got %v", err)
	}
	if inner.calls != 0 {
		t.Error("inner model must not be called when budget is exhausted")
	}
}

func TestInstrumentedChatModel_ErrorPreservesKind(t *testing.T) {
	inner := &mockChatModel{err: domain.ErrAssistantAuth}
	p := NewInstrumentedChatModel(inner, "ollama", nil, zap.NewNop())

	_, err := p.Complete(context.Background(), "sys", nil, "q")
	if !errors.Is(err, domain.ErrAssistantAuth) {
		t.Fatalf("expected ErrAssistantAuth, got %v", err)
	}
}
