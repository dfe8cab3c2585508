package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0:8080", cfg.Address())
	assert.Equal(t, "claude", cfg.LLM.Provider)
	assert.Equal(t, "memory", cfg.Sessions.Store)
	assert.Equal(t, 2*time.Hour, cfg.Sessions.TTL)
	assert.True(t, cfg.Sessions.UseSamples)
	assert.Equal(t, 20, cfg.BackgroundTasks.MaxConcurrentTasks)
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default().JobSearch.BaseURL, cfg.JobSearch.BaseURL)
}

func TestLoadConfigExpandsEnvVars(t *testing.T) {
	t.Setenv("TEST_ADZUNA_ID", "id-123")
	t.Setenv("TEST_ADZUNA_KEY", "key-456")

	path := writeConfig(t, `
job_search:
  app_id: "${TEST_ADZUNA_ID}"
  app_key: "$TEST_ADZUNA_KEY"
  country: "${TEST_UNSET_COUNTRY_VAR}"
sessions:
  ttl: 30m
  use_samples: false
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "id-123", cfg.JobSearch.AppID)
	assert.Equal(t, "key-456", cfg.JobSearch.AppKey)
	// Unset variables are left as written
	assert.Equal(t, "${TEST_UNSET_COUNTRY_VAR}", cfg.JobSearch.Country)
	assert.Equal(t, 30*time.Minute, cfg.Sessions.TTL)
	assert.False(t, cfg.Sessions.UseSamples)
	// Keys absent from the file keep their defaults
	assert.Equal(t, 50, cfg.Sessions.MaxJobs)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("JOB_SEARCH_COUNTRY", "US")
	t.Setenv("LLM_PROVIDER", "gemini")
	t.Setenv("SESSION_STORE", "redis")
	t.Setenv("SESSION_TTL", "45m")
	t.Setenv("SESSION_USE_SAMPLES", "0")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("LOG_FILE_PATH", "/tmp/wikijobs-test.log")

	path := writeConfig(t, `
server:
  port: 8081
logging:
  adapters:
    - name: file
      type: file
      enabled: true
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "us", cfg.JobSearch.Country)
	assert.Equal(t, "gemini", cfg.LLM.Provider)
	assert.Equal(t, "redis", cfg.Sessions.Store)
	assert.Equal(t, 45*time.Minute, cfg.Sessions.TTL)
	assert.False(t, cfg.Sessions.UseSamples)
	assert.Equal(t, 3, cfg.Redis.DB)
	require.Len(t, cfg.Logging.Adapters, 1)
	assert.Equal(t, "/tmp/wikijobs-test.log", cfg.Logging.Adapters[0].Options["file_path"])
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	path := writeConfig(t, "server: [unclosed")
	_, err := LoadConfig(path)
	assert.Error(t, err)
}
