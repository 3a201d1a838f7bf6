// File: internal/fixer/mocks_test.go
package fixer

import (
	"context"
	"sync"

	"github.com/xkilldash9x/docmend/api/schemas"
)

// mockGenerator is a scriptable schemas.Generator that instruments the
// concurrency the scheduler actually achieves.
type mockGenerator struct {
	mu sync.Mutex
	// generate is invoked per request; defaults to echoing a fixed string.
	generate func(ctx context.Context, req schemas.GenerationRequest) (string, error)

	inFlight    int
	maxInFlight int
	calls       []schemas.GenerationRequest
}

func (m *mockGenerator) Generate(ctx context.Context, req schemas.GenerationRequest) (string, error) {
	m.mu.Lock()
	m.inFlight++
	if m.inFlight > m.maxInFlight {
		m.maxInFlight = m.inFlight
	}
	m.calls = append(m.calls, req)
	fn := m.generate
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.inFlight--
		m.mu.Unlock()
	}()

	if fn != nil {
		return fn(ctx, req)
	}
	return "generated", nil
}

func (m *mockGenerator) MaxInFlight() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.maxInFlight
}

func (m *mockGenerator) Calls() []schemas.GenerationRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]schemas.GenerationRequest, len(m.calls))
	copy(out, m.calls)
	return out
}
