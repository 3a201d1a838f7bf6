// File: internal/config/config_test.go
package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	assert.Equal(t, 3, cfg.Engine.WorkerConcurrency)
	assert.Equal(t, 10*time.Minute, cfg.Engine.SessionTimeout)
	assert.Equal(t, ProviderGemini, cfg.LLM.Provider)
	assert.Equal(t, "gemini-2.5-flash", cfg.LLM.Model)
	assert.Equal(t, 2*time.Minute, cfg.LLM.MaxRetryElapsed)
	assert.False(t, cfg.Store.Enabled)
	assert.Equal(t, 2*time.Second, cfg.Watch.Debounce)
	assert.Equal(t, "info", cfg.Logger.Level)
}

func TestNewConfigFromViper_Overrides(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	v.Set("engine.worker_concurrency", 8)
	v.Set("llm.provider", "mock")

	cfg, err := NewConfigFromViper(v)
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Engine.WorkerConcurrency)
	assert.Equal(t, ProviderMock, cfg.LLM.Provider)
}

func TestNewConfigFromViper_APIKeyFromEnv(t *testing.T) {
	t.Setenv("DOCMEND_LLM_API_KEY", "sekret")

	v := viper.New()
	SetDefaults(v)
	cfg, err := NewConfigFromViper(v)
	require.NoError(t, err)
	assert.Equal(t, "sekret", cfg.LLM.APIKey)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "defaults are valid",
			mutate: func(c *Config) {},
		},
		{
			name:    "zero concurrency rejected",
			mutate:  func(c *Config) { c.Engine.WorkerConcurrency = 0 },
			wantErr: "worker_concurrency",
		},
		{
			name:    "negative rate rejected",
			mutate:  func(c *Config) { c.Engine.GenerationRatePerSecond = -1 },
			wantErr: "generation_rate_per_second",
		},
		{
			name:    "unknown provider rejected",
			mutate:  func(c *Config) { c.LLM.Provider = "gpt9" },
			wantErr: "unknown provider",
		},
		{
			name:    "gemini requires a model",
			mutate:  func(c *Config) { c.LLM.Model = "" },
			wantErr: "model is required",
		},
		{
			name:    "enabled store requires url",
			mutate:  func(c *Config) { c.Store.Enabled = true },
			wantErr: "store.url",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}
