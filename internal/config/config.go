// File: internal/config/config.go
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Config holds the entire application configuration.
type Config struct {
	Logger LoggerConfig `mapstructure:"logger" yaml:"logger"`
	Engine EngineConfig `mapstructure:"engine" yaml:"engine"`
	LLM    LLMConfig    `mapstructure:"llm" yaml:"llm"`
	Store  StoreConfig  `mapstructure:"store" yaml:"store"`
	Watch  WatchConfig  `mapstructure:"watch" yaml:"watch"`
}

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Format      string `mapstructure:"format" yaml:"format"`
	AddSource   bool   `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int    `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int    `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool   `mapstructure:"compress" yaml:"compress"`
}

// EngineConfig configures the fix scheduling engine.
type EngineConfig struct {
	// WorkerConcurrency bounds simultaneous generation calls. Policy default
	// is 3; kept configurable for testing and throttled providers.
	WorkerConcurrency int `mapstructure:"worker_concurrency" yaml:"worker_concurrency"`
	// GenerationRatePerSecond throttles outbound generation calls across all
	// workers. Zero disables the limiter.
	GenerationRatePerSecond float64 `mapstructure:"generation_rate_per_second" yaml:"generation_rate_per_second"`
	// SessionTimeout caps one batch end to end.
	SessionTimeout time.Duration `mapstructure:"session_timeout" yaml:"session_timeout"`
}

// LLMProvider defines the supported generation providers.
type LLMProvider string

const (
	ProviderGemini LLMProvider = "gemini"
	ProviderMock   LLMProvider = "mock"
)

// LLMConfig defines the generation collaborator.
type LLMConfig struct {
	Provider    LLMProvider   `mapstructure:"provider" yaml:"provider"`
	Model       string        `mapstructure:"model" yaml:"model"`
	APIKey      string        `mapstructure:"api_key" yaml:"-"`
	Endpoint    string        `mapstructure:"endpoint" yaml:"endpoint"`
	APITimeout  time.Duration `mapstructure:"api_timeout" yaml:"api_timeout"`
	Temperature float32       `mapstructure:"temperature" yaml:"temperature"`
	MaxTokens   int           `mapstructure:"max_tokens" yaml:"max_tokens"`
	// MaxRetryElapsed caps the exponential backoff spent on transient API
	// errors for a single generation call.
	MaxRetryElapsed time.Duration `mapstructure:"max_retry_elapsed" yaml:"max_retry_elapsed"`
}

// StoreConfig configures the optional PostgreSQL session audit trail.
type StoreConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	URL     string `mapstructure:"url" yaml:"-"`
}

// DefaultWatchDebounce is the quiet period the watcher waits for before
// dispatching a buffered issue batch.
const DefaultWatchDebounce = 2 * time.Second

// WatchConfig configures the issue feed watcher.
type WatchConfig struct {
	// FeedPath is the JSONL file of incoming issues to tail.
	FeedPath string `mapstructure:"feed_path" yaml:"feed_path"`
	// Debounce is how long the watcher waits after the last arrival before
	// dispatching the buffered issues as one batch.
	Debounce time.Duration `mapstructure:"debounce" yaml:"debounce"`
}

// SetDefaults initializes default values for all configuration parameters.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "docmend")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)

	// -- Engine --
	v.SetDefault("engine.worker_concurrency", 3)
	v.SetDefault("engine.generation_rate_per_second", 0)
	v.SetDefault("engine.session_timeout", "10m")

	// -- LLM --
	v.SetDefault("llm.provider", "gemini")
	v.SetDefault("llm.model", "gemini-2.5-flash")
	v.SetDefault("llm.api_timeout", "60s")
	v.SetDefault("llm.temperature", 0.2)
	v.SetDefault("llm.max_tokens", 1024)
	v.SetDefault("llm.max_retry_elapsed", "2m")

	// -- Store --
	v.SetDefault("store.enabled", false)

	// -- Watch --
	v.SetDefault("watch.debounce", DefaultWatchDebounce)
}

// NewConfigFromViper creates a validated configuration instance from a viper
// object.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	// Bind environment variables for sensitive data.
	v.BindEnv("llm.api_key", "DOCMEND_LLM_API_KEY")
	v.BindEnv("store.url", "DOCMEND_STORE_URL")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Unmarshal can miss env-only keys that were never set elsewhere.
	if cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = os.Getenv("DOCMEND_LLM_API_KEY")
	}
	if cfg.Store.URL == "" {
		cfg.Store.URL = os.Getenv("DOCMEND_STORE_URL")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// NewDefaultConfig returns a configuration populated with default values.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	if c.Engine.WorkerConcurrency <= 0 {
		return fmt.Errorf("engine.worker_concurrency must be a positive integer")
	}
	if c.Engine.GenerationRatePerSecond < 0 {
		return fmt.Errorf("engine.generation_rate_per_second must not be negative")
	}
	if err := c.LLM.Validate(); err != nil {
		return fmt.Errorf("llm configuration invalid: %w", err)
	}
	if c.Store.Enabled && c.Store.URL == "" {
		return fmt.Errorf("store.url is required when the store is enabled; set DOCMEND_STORE_URL")
	}
	return nil
}

// Validate checks the LLM settings.
func (l *LLMConfig) Validate() error {
	switch l.Provider {
	case ProviderGemini, ProviderMock:
	default:
		return fmt.Errorf("unknown provider %q", l.Provider)
	}
	if l.Provider == ProviderGemini && l.Model == "" {
		return fmt.Errorf("model is required for the gemini provider")
	}
	return nil
}
