// File: internal/llmclient/factory.go
// Description: Constructs the configured Generator implementation.

package llmclient

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/xkilldash9x/docmend/api/schemas"
	"github.com/xkilldash9x/docmend/internal/config"
)

// NewGenerator is the factory for the generation collaborator.
func NewGenerator(cfg config.LLMConfig, logger *zap.Logger) (schemas.Generator, error) {
	switch cfg.Provider {
	case config.ProviderGemini:
		client, err := NewGeminiClient(cfg, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create gemini client: %w", err)
		}
		logger.Info("Instantiated generation client",
			zap.String("provider", string(cfg.Provider)),
			zap.String("model", cfg.Model))
		return client, nil
	case config.ProviderMock:
		logger.Warn("Using mock generation client; replacements are placeholders")
		return NewMockGenerator(), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.Provider)
	}
}
