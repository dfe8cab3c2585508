package logging

import (
	"fmt"
	"sync"

	"wikijobs/internal/config"
	"wikijobs/internal/logging/adapters"
	"wikijobs/internal/logging/types"
)

// Name of the in-memory adapter that every manager registers
const RecentAdapterName = "recent"

// Manager manages the logging system initialization and configuration
type Manager struct {
	factory *AdapterFactory
	logger  *MultiLogger
	recent  *adapters.MemoryAdapter
}

// NewManager creates a new logging manager
func NewManager() *Manager {
	m := &Manager{
		factory: NewAdapterFactory(),
		logger:  NewMultiLogger(),
		recent:  adapters.NewMemoryAdapter(RecentAdapterName, 200),
	}
	_ = m.logger.AddAdapter(m.recent)
	return m
}

// Initialize initializes the logging system from configuration
func (m *Manager) Initialize(cfg *config.Config) error {
	m.logger.SetLevel(ParseLogLevel(cfg.Logging.Level))

	enabled := 0
	for _, adapterConfig := range cfg.Logging.Adapters {
		if !adapterConfig.Enabled {
			continue
		}

		adapter, err := m.factory.CreateAdapter(AdapterConfig{
			Name:    adapterConfig.Name,
			Type:    adapterConfig.Type,
			Enabled: adapterConfig.Enabled,
			Options: adapterConfig.Options,
		})
		if err != nil {
			return fmt.Errorf("failed to create adapter %s: %w", adapterConfig.Name, err)
		}
		if err := m.logger.AddAdapter(adapter); err != nil {
			return fmt.Errorf("failed to add adapter %s: %w", adapterConfig.Name, err)
		}
		enabled++
	}

	if enabled > 0 {
		return nil
	}

	// No adapters configured: plain stdout in the configured format
	return m.logger.AddAdapter(adapters.NewStdoutAdapter("stdout", adapters.StdoutConfig{
		Format: cfg.Logging.Format,
	}))
}

// GetLogger returns the initialized logger
func (m *Manager) GetLogger() Logger {
	return m.logger
}

// Recent returns buffered entries at or above level, oldest first
func (m *Manager) Recent(level LogLevel) []LogEntry {
	return m.recent.Entries(level)
}

// Health reports adapter health keyed by adapter name
func (m *Manager) Health() map[string]string {
	return m.logger.AdapterHealth()
}

// Close closes the logging system
func (m *Manager) Close() error {
	return m.logger.Close()
}

var (
	globalManager *Manager
	globalMu      sync.Mutex
)

// InitializeLogging initializes the global logging system
func InitializeLogging(cfg *config.Config) error {
	m := NewManager()
	if err := m.Initialize(cfg); err != nil {
		return err
	}
	globalMu.Lock()
	globalManager = m
	globalMu.Unlock()
	return nil
}

// GetGlobalManager returns the global manager, creating a stdout-only one if needed
func GetGlobalManager() *Manager {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalManager == nil {
		m := NewManager()
		_ = m.logger.AddAdapter(adapters.NewStdoutAdapter("fallback_stdout", adapters.StdoutConfig{Format: "json"}))
		globalManager = m
	}
	return globalManager
}

// GetGlobalLogger returns the global logger instance
func GetGlobalLogger() Logger {
	return GetGlobalManager().GetLogger()
}

// ForComponent returns the global logger tagged with a component field
func ForComponent(name string) Logger {
	return GetGlobalLogger().WithField(types.FieldComponent, name)
}

// CloseLogging closes the global logging system
func CloseLogging() error {
	globalMu.Lock()
	defer globalMu.Unlock()
	if globalManager != nil {
		return globalManager.Close()
	}
	return nil
}

// LogWithRequestID creates a logger with request ID context
func LogWithRequestID(requestID string) Logger {
	return GetGlobalLogger().WithField(types.FieldRequestID, requestID)
}
