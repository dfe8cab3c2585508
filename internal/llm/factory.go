package llm

import (
	"context"
	"fmt"

	"wikijobs/internal/config"
	"wikijobs/internal/llm/providers"
)

// Provider names accepted in llm.provider
const (
	ProviderClaude = "claude"
	ProviderGemini = "gemini"
)

// LLMFactory creates text generation providers
type LLMFactory struct {
	config *config.Config
}

// NewLLMFactory creates a new LLM factory instance
func NewLLMFactory(cfg *config.Config) *LLMFactory {
	return &LLMFactory{
		config: cfg,
	}
}

// CreateProvider creates the configured provider. Missing credentials give a
// ConfigurationError.
func (f *LLMFactory) CreateProvider(ctx context.Context) (TextGenerator, error) {
	switch f.config.LLM.Provider {
	case ProviderClaude:
		return providers.NewClaudeProvider(f.config)
	case ProviderGemini:
		return providers.NewGeminiProvider(ctx, f.config)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", f.config.LLM.Provider)
	}
}

// GetSupportedProviders returns a list of supported LLM providers
func (f *LLMFactory) GetSupportedProviders() []string {
	return []string{ProviderClaude, ProviderGemini}
}
