package llm

import (
	"context"
	"fmt"
	"io"
	"sync"

	"wikijobs/internal/config"
	"wikijobs/internal/logging"
	"wikijobs/internal/logging/types"
	"wikijobs/pkg/utils"
)

// Manager owns the configured provider and tracks its health
type Manager struct {
	config   *config.Config
	factory  *LLMFactory
	provider TextGenerator
	logger   types.Logger
	mu       sync.RWMutex
	healthy  bool
}

// NewManager creates a new LLM manager instance
func NewManager(cfg *config.Config) *Manager {
	return &Manager{
		config:  cfg,
		factory: NewLLMFactory(cfg),
		logger:  logging.ForComponent("llm"),
	}
}

// NewManagerWithProvider wraps an existing provider, skipping the factory
func NewManagerWithProvider(cfg *config.Config, provider TextGenerator) *Manager {
	m := NewManager(cfg)
	m.provider = provider
	m.healthy = provider != nil
	return m
}

// Start creates the provider and runs one health check. Neither missing
// credentials nor a failed check stop the server: plan requests then use the
// fallback plan.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.logger.Info("Starting LLM manager", map[string]interface{}{
		"provider": m.config.LLM.Provider,
	})

	provider, err := m.factory.CreateProvider(ctx)
	if err != nil {
		if utils.IsConfigurationError(err) {
			m.logger.Warn("LLM provider not configured, plan generation will use fallback plans", map[string]interface{}{
				"error": err.Error(),
			})
			return nil
		}
		return fmt.Errorf("failed to create LLM provider: %w", err)
	}
	m.provider = provider

	checkCtx, cancel := context.WithTimeout(ctx, m.config.LLM.Timeout)
	defer cancel()

	if err := m.provider.IsHealthy(checkCtx); err != nil {
		m.logger.Warn("LLM provider health check failed", map[string]interface{}{
			"provider": provider.GetProviderName(),
			"error":    err.Error(),
		})
		m.healthy = false
	} else {
		m.healthy = true
		m.logger.Info("LLM manager started successfully", map[string]interface{}{
			"provider": provider.GetProviderName(),
		})
	}

	return nil
}

// Stop shuts down the LLM manager
func (m *Manager) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.logger.Info("Stopping LLM manager")
	var err error
	if closer, ok := m.provider.(io.Closer); ok {
		err = closer.Close()
	}
	m.provider = nil
	m.healthy = false
	return err
}

// GenerateText forwards to the provider. Without a provider it returns a
// ConfigurationError. An unhealthy provider is still tried, since the failed
// check may have been transient.
func (m *Manager) GenerateText(ctx context.Context, prompt string) (string, error) {
	m.mu.RLock()
	provider := m.provider
	m.mu.RUnlock()

	if provider == nil {
		return "", utils.NewConfigurationError("LLM_API_KEY", "text generation provider not configured")
	}

	ctx, cancel := context.WithTimeout(ctx, m.config.LLM.Timeout)
	defer cancel()

	text, err := provider.GenerateText(ctx, prompt)

	m.mu.Lock()
	m.healthy = err == nil
	m.mu.Unlock()

	return text, err
}

// IsHealthy reports the last known provider health
func (m *Manager) IsHealthy() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.healthy && m.provider != nil
}

// GetProviderName returns the name of the current LLM provider
func (m *Manager) GetProviderName() string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.provider != nil {
		return m.provider.GetProviderName()
	}
	return "none"
}

// CheckHealth performs a health check on the LLM provider
func (m *Manager) CheckHealth(ctx context.Context) error {
	m.mu.RLock()
	provider := m.provider
	m.mu.RUnlock()

	if provider == nil {
		return fmt.Errorf("LLM provider not available")
	}

	err := provider.IsHealthy(ctx)

	m.mu.Lock()
	m.healthy = err == nil
	m.mu.Unlock()

	return err
}
