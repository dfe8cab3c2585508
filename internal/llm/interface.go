package llm

import "context"

// TextGenerator produces free text from a single prompt
type TextGenerator interface {
	// GenerateText sends prompt to the provider and returns the concatenated text reply
	GenerateText(ctx context.Context, prompt string) (string, error)

	// IsHealthy checks if the provider is configured and reachable
	IsHealthy(ctx context.Context) error

	// GetProviderName returns the name of the provider
	GetProviderName() string
}
