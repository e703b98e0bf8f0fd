package llm

import (
	"context"
	"sync"

	"github.com/mindcareai/mindcare/internal/domain"
)

// MockClient is a test double for Client. It records every call.
type MockClient struct {
	ProviderName string
	ReplyFunc    func(ctx context.Context, history []domain.Message, lang domain.Language) (string, error)

	mu    sync.Mutex
	calls []MockCall
}

// MockCall captures the arguments of one Reply invocation.
type MockCall struct {
	History  []domain.Message
	Language domain.Language
}

func (m *MockClient) Name() string {
	if m.ProviderName == "" {
		return "mock"
	}
	return m.ProviderName
}

func (m *MockClient) Reply(ctx context.Context, history []domain.Message, lang domain.Language) (string, error) {
	m.mu.Lock()
	h := make([]domain.Message, len(history))
	copy(h, history)
	m.calls = append(m.calls, MockCall{History: h, Language: lang})
	m.mu.Unlock()

	if m.ReplyFunc != nil {
		return m.ReplyFunc(ctx, history, lang)
	}
	return "mock response", nil
}

// Calls returns a copy of the recorded invocations.
func (m *MockClient) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]MockCall, len(m.calls))
	copy(out, m.calls)
	return out
}
