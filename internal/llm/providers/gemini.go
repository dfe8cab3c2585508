package providers

import (
	"context"
	"strings"

	"cloud.google.com/go/vertexai/genai"

	"wikijobs/internal/config"
	"wikijobs/internal/logging"
	"wikijobs/internal/logging/types"
	"wikijobs/pkg/utils"
)

// DefaultGeminiModel is used when llm.model names a non-Gemini model
const DefaultGeminiModel = "gemini-1.5-flash"

// GeminiProvider generates text with Gemini on Vertex AI
type GeminiProvider struct {
	client *genai.Client
	model  *genai.GenerativeModel
	config *config.Config
	logger types.Logger
}

// NewGeminiProvider creates a Vertex AI client for the configured project.
// Credentials come from Application Default Credentials.
func NewGeminiProvider(ctx context.Context, cfg *config.Config) (*GeminiProvider, error) {
	if cfg.LLM.ProjectID == "" {
		return nil, utils.NewConfigurationError("GCP_PROJECT_ID", "Vertex AI project not configured")
	}

	client, err := genai.NewClient(ctx, cfg.LLM.ProjectID, cfg.LLM.Location)
	if err != nil {
		return nil, utils.NewUpstreamError(utils.KindPlanGenerationFailed, "gemini", "failed to create Vertex AI client", 0, err)
	}

	modelName := cfg.LLM.Model
	if !strings.HasPrefix(modelName, "gemini") {
		modelName = DefaultGeminiModel
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(cfg.LLM.Temperature)
	model.SetMaxOutputTokens(int32(cfg.LLM.MaxTokens))

	return &GeminiProvider{
		client: client,
		model:  model,
		config: cfg,
		logger: logging.ForComponent("llm.gemini"),
	}, nil
}

// GenerateText sends the prompt and joins the text parts of the first candidate
func (gp *GeminiProvider) GenerateText(ctx context.Context, prompt string) (string, error) {
	resp, err := gp.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		gp.logger.Error("Gemini request failed", map[string]interface{}{
			"error": err.Error(),
		})
		return "", utils.NewUpstreamError(utils.KindPlanGenerationFailed, "gemini", "Gemini request failed", 0, err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", utils.NewUpstreamError(utils.KindPlanGenerationFailed, "gemini", "no response candidates returned", 0, nil)
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}

	return sb.String(), nil
}

// IsHealthy sends a one-word prompt
func (gp *GeminiProvider) IsHealthy(ctx context.Context) error {
	if _, err := gp.model.GenerateContent(ctx, genai.Text("Hello")); err != nil {
		return utils.NewUpstreamError(utils.KindPlanGenerationFailed, "gemini", "Gemini health check failed", 0, err)
	}
	return nil
}

// GetProviderName returns the name of the LLM provider
func (gp *GeminiProvider) GetProviderName() string {
	return "gemini"
}

// Close closes the Vertex AI client
func (gp *GeminiProvider) Close() error {
	return gp.client.Close()
}
