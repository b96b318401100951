package llm

import (
	"context"
	"sync"
)

// MockInvoker is an Invoker for tests.
type MockInvoker struct {
	mu          sync.Mutex
	text        string
	err         error
	lastRequest *ProviderRequest
	callCount   int

	// InvokeFunc can be overridden for custom behavior
	InvokeFunc func(ctx context.Context, req *ProviderRequest) (*Result, error)
}

var _ Invoker = (*MockInvoker)(nil)

// NewMockInvoker creates a mock that answers with text.
func NewMockInvoker(text string) *MockInvoker {
	return &MockInvoker{text: text}
}

// SetResponse sets the response text.
func (m *MockInvoker) SetResponse(text string) {
	m.mu.Lock()
	m.text = text
	m.mu.Unlock()
}

// SetError sets an error to return.
func (m *MockInvoker) SetError(err error) {
	m.mu.Lock()
	m.err = err
	m.mu.Unlock()
}

// LastRequest returns the last request.
func (m *MockInvoker) LastRequest() *ProviderRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastRequest
}

// CallCount returns the number of Invoke calls made.
func (m *MockInvoker) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// Invoke implements Invoker.
func (m *MockInvoker) Invoke(ctx context.Context, req *ProviderRequest) (*Result, error) {
	m.mu.Lock()
	m.callCount++
	m.lastRequest = req
	fn, text, err := m.InvokeFunc, m.text, m.err
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, req)
	}
	if err != nil {
		return nil, err
	}
	res := &Result{Provider: req.Provider, Model: req.Model, Text: text, Format: req.Format}
	if text == "" {
		res.Text = NoSummary
		res.Empty = true
	}
	return res, nil
}
