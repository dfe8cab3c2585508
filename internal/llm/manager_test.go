package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wikijobs/internal/config"
	"wikijobs/pkg/utils"
)

type fakeGenerator struct {
	text string
	err  error
}

func (f *fakeGenerator) GenerateText(ctx context.Context, prompt string) (string, error) {
	return f.text, f.err
}

func (f *fakeGenerator) IsHealthy(ctx context.Context) error { return f.err }

func (f *fakeGenerator) GetProviderName() string { return "fake" }

func TestManagerStart_MissingKeyIsNotFatal(t *testing.T) {
	m := NewManager(config.Default())

	require.NoError(t, m.Start(context.Background()))
	assert.False(t, m.IsHealthy())
	assert.Equal(t, "none", m.GetProviderName())

	_, err := m.GenerateText(context.Background(), "prompt")
	assert.True(t, utils.IsConfigurationError(err))
}

func TestManagerStart_UnsupportedProvider(t *testing.T) {
	cfg := config.Default()
	cfg.LLM.Provider = "palm"

	err := NewManager(cfg).Start(context.Background())
	assert.Error(t, err)
}

func TestManagerGenerateText(t *testing.T) {
	gen := &fakeGenerator{text: "plan"}
	m := NewManagerWithProvider(config.Default(), gen)

	text, err := m.GenerateText(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, "plan", text)
	assert.True(t, m.IsHealthy())
	assert.Equal(t, "fake", m.GetProviderName())

	gen.err = errors.New("boom")
	_, err = m.GenerateText(context.Background(), "prompt")
	assert.Error(t, err)
	assert.False(t, m.IsHealthy())
}

func TestFactorySupportedProviders(t *testing.T) {
	f := NewLLMFactory(config.Default())
	assert.ElementsMatch(t, []string{"claude", "gemini"}, f.GetSupportedProviders())
}
