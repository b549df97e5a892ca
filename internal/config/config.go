package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
)

type Config struct {
	// Server
	Port          string
	SessionTTL    time.Duration
	LogLevel      string
	SecureCookies bool

	// Inference
	Provider       string
	Model          string
	APIKey         string
	OllamaURL      string
	OpenAIBaseURL  string
	RequestTimeout time.Duration

	// Limits
	MaxUploadSizeMB int
	MaxSessions     int
}

// Load reads configuration from the environment. A missing credential is not an
// error here: it is reported to the user when an analysis is submitted.
func Load() (*Config, error) {
	cfg := &Config{
		Port:            getEnv("PORT", "8888"),
		SessionTTL:      getEnvDuration("SESSION_TTL", time.Hour),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		SecureCookies:   getEnv("SECURE_COOKIES", "false") == "true",
		Provider:        strings.ToLower(getEnv("PROVIDER", ProviderGemini)),
		Model:           getEnv("MODEL", ""),
		OllamaURL:       getEnv("OLLAMA_URL", getEnv("OLLAMA_HOST", "http://localhost:11434")),
		OpenAIBaseURL:   getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		RequestTimeout:  getEnvDuration("REQUEST_TIMEOUT", 2*time.Minute),
		MaxUploadSizeMB: getEnvInt("MAX_UPLOAD_SIZE_MB", 10),
		MaxSessions:     getEnvInt("MAX_SESSIONS", 1000),
	}
	cfg.APIKey = cfg.credentialFromEnv()
	if cfg.Model == "" {
		cfg.Model = DefaultModel(cfg.Provider)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderGemini, ProviderOpenAI, ProviderOllama:
	default:
		return fmt.Errorf("unsupported provider: %s", c.Provider)
	}
	if c.MaxUploadSizeMB < 0 {
		return fmt.Errorf("MAX_UPLOAD_SIZE_MB must not be negative")
	}
	if c.MaxSessions < 0 {
		return fmt.Errorf("MAX_SESSIONS must not be negative")
	}
	if c.RequestTimeout < 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must not be negative")
	}
	return nil
}

// RequiresCredential reports whether the configured provider needs an API key
func (c *Config) RequiresCredential() bool {
	return c.Provider != ProviderOllama
}

// MaxUploadBytes returns the upload limit in bytes; zero disables the limit.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadSizeMB) * 1024 * 1024
}

// SlogLevel maps LOG_LEVEL onto a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (c *Config) credentialFromEnv() string {
	switch c.Provider {
	case ProviderOpenAI:
		return getEnv("OPENAI_API_KEY", getEnv("API_KEY", ""))
	case ProviderOllama:
		return ""
	default:
		return getEnv("API_KEY", getEnv("GEMINI_API_KEY", ""))
	}
}

// DefaultModel returns the model used when MODEL is unset
func DefaultModel(provider string) string {
	switch provider {
	case ProviderOpenAI:
		return "gpt-4o"
	case ProviderOllama:
		return "mistral-small3.2:24b"
	default:
		return "gemini-2.5-flash"
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
		slog.Warn("ignoring invalid integer", "key", key, "value", val)
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
		slog.Warn("ignoring invalid duration", "key", key, "value", val)
	}
	return fallback
}
