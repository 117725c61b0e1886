package provider

import (
	"context"
	"sync"
)

// MockYieldProvider is an in-memory YieldProvider for tests and local runs.
type MockYieldProvider struct {
	mu    sync.Mutex
	quote YieldQuote
	err   error
	calls []YieldQuery
}

// NewMockYieldProvider returns a provider that answers every query with quote.
func NewMockYieldProvider(quote YieldQuote) *MockYieldProvider {
	return &MockYieldProvider{quote: quote}
}

// FailWith makes every subsequent call return err.
func (m *MockYieldProvider) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns the queries received so far.
func (m *MockYieldProvider) Calls() []YieldQuery {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]YieldQuery(nil), m.calls...)
}

func (m *MockYieldProvider) QuoteYield(_ context.Context, q YieldQuery) (YieldQuote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, q)
	if m.err != nil {
		return YieldQuote{}, m.err
	}
	return m.quote, nil
}
