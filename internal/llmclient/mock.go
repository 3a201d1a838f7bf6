// File: internal/llmclient/mock.go
// Description: Offline Generator used for dry runs and local development.

package llmclient

import (
	"context"
	"fmt"

	"github.com/xkilldash9x/docmend/api/schemas"
)

// MockGenerator returns deterministic placeholder replacements without any
// network traffic.
type MockGenerator struct{}

// NewMockGenerator creates the offline generator.
func NewMockGenerator() *MockGenerator {
	return &MockGenerator{}
}

// Generate produces a visibly-placeholder replacement that still exercises
// the full scheduling and merge pipeline.
func (m *MockGenerator) Generate(_ context.Context, req schemas.GenerationRequest) (string, error) {
	return fmt.Sprintf("[%s: %s]", req.Action, req.Target), nil
}
