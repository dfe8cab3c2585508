package providers

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"wikijobs/internal/config"
	"wikijobs/internal/logging"
	"wikijobs/internal/logging/types"
	"wikijobs/pkg/utils"
)

// ClaudeProvider generates text with Anthropic's Claude
type ClaudeProvider struct {
	client anthropic.Client
	config *config.Config
	logger types.Logger
}

// NewClaudeProvider creates a new Claude provider instance. Extra request
// options are appended after the API key.
func NewClaudeProvider(cfg *config.Config, opts ...option.RequestOption) (*ClaudeProvider, error) {
	if cfg.LLM.APIKey == "" {
		return nil, utils.NewConfigurationError("LLM_API_KEY", "Claude API key not configured")
	}

	client := anthropic.NewClient(
		append([]option.RequestOption{option.WithAPIKey(cfg.LLM.APIKey)}, opts...)...,
	)

	return &ClaudeProvider{
		client: client,
		config: cfg,
		logger: logging.ForComponent("llm.claude"),
	}, nil
}

// GenerateText sends prompt as a single user message and joins the text blocks of the reply
func (cp *ClaudeProvider) GenerateText(ctx context.Context, prompt string) (string, error) {
	startTime := time.Now()

	response, err := cp.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(cp.config.LLM.Model),
		MaxTokens:   int64(cp.config.LLM.MaxTokens),
		Temperature: anthropic.Float(float64(cp.config.LLM.Temperature)),
		Messages: []anthropic.MessageParam{{
			Content: []anthropic.ContentBlockParamUnion{{
				OfText: &anthropic.TextBlockParam{Text: prompt},
			}},
			Role: anthropic.MessageParamRoleUser,
		}},
	})
	if err != nil {
		status := 0
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			status = apiErr.StatusCode
		}
		cp.logger.Error("Claude request failed", map[string]interface{}{
			"error":  err.Error(),
			"status": status,
		})
		return "", utils.NewUpstreamError(utils.KindPlanGenerationFailed, "claude", "Claude request failed", status, err)
	}

	var sb strings.Builder
	for _, content := range response.Content {
		if content.Type == "text" {
			sb.WriteString(content.AsText().Text)
		}
	}

	text := sb.String()
	if strings.TrimSpace(text) == "" {
		return "", utils.NewUpstreamError(utils.KindPlanGenerationFailed, "claude", "Claude returned no text", 0, nil)
	}

	cp.logger.Debug("Claude request completed", map[string]interface{}{
		"duration":      utils.FormatDuration(time.Since(startTime)),
		"output_tokens": response.Usage.OutputTokens,
	})

	return text, nil
}

// IsHealthy checks if the Claude provider is healthy and available
func (cp *ClaudeProvider) IsHealthy(ctx context.Context) error {
	if cp.config.LLM.APIKey == "" {
		return utils.NewConfigurationError("LLM_API_KEY", "Claude API key not configured")
	}

	_, err := cp.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(cp.config.LLM.Model),
		MaxTokens: 16,
		Messages: []anthropic.MessageParam{{
			Content: []anthropic.ContentBlockParamUnion{{
				OfText: &anthropic.TextBlockParam{Text: "Hello"},
			}},
			Role: anthropic.MessageParamRoleUser,
		}},
	})
	if err != nil {
		return utils.NewUpstreamError(utils.KindPlanGenerationFailed, "claude", "Claude API health check failed", 0, err)
	}

	return nil
}

// GetProviderName returns the name of the LLM provider
func (cp *ClaudeProvider) GetProviderName() string {
	return "claude"
}
