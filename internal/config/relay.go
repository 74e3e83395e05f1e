package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Completion providers understood by the relay.
const (
	ProviderOpenAI = "openai"
	ProviderClaude = "claude"
)

// Normalizer kinds understood by the relay.
const (
	NormalizerGoquery   = "goquery"
	NormalizerHTML2Text = "html2text"
)

// RelayConfig holds the process-wide configuration of the relay.
// It is built once at startup and passed to constructors explicitly.
type RelayConfig struct {
	// Port the HTTP server listens on. Default: "5000"
	Port string

	// Version reported by the health endpoint.
	Version string

	// MaxBodyBytes bounds the size of a request body. Default: 1 MiB
	MaxBodyBytes int64

	// Normalizer selects the HTML to text implementation. Default: goquery
	Normalizer string

	// Completion configures the language-model client.
	Completion CompletionConfig

	// TracingEnabled installs an OpenTelemetry SDK tracer provider. Default: true
	TracingEnabled bool
}

// CompletionConfig holds settings for the completion service client.
type CompletionConfig struct {
	// Provider is "openai" or "claude". Default: openai
	Provider string

	// APIKey is the resolved credential. Never logged.
	APIKey string

	// APIKeyParam names an SSM parameter holding the credential.
	// Used only when APIKey is empty.
	APIKeyParam string

	// Model identifier. Defaults per provider.
	Model string

	// BaseURL overrides the provider endpoint (testing, proxies).
	BaseURL string

	// Timeout bounds a single remote call. Default: 60s
	Timeout time.Duration

	// MaxTokens caps the generated reply. Default: 1024
	MaxTokens int

	// CircuitBreaker wraps the client in a circuit breaker. Default: true
	CircuitBreaker bool
}

// DefaultRelayConfig returns the configuration used when nothing is overridden.
func DefaultRelayConfig() *RelayConfig {
	return &RelayConfig{
		Port:         "5000",
		Version:      "dev",
		MaxBodyBytes: 1 << 20,
		Normalizer:   NormalizerGoquery,
		Completion: CompletionConfig{
			Provider:       ProviderOpenAI,
			Timeout:        60 * time.Second,
			MaxTokens:      1024,
			CircuitBreaker: true,
		},
		TracingEnabled: true,
	}
}

// DefaultModel returns the model used for a provider when none is configured.
func DefaultModel(provider string) string {
	if provider == ProviderClaude {
		return "claude-sonnet-4-5"
	}
	return "gpt-4o"
}

// APIKeyEnv returns the environment variable holding the provider credential.
func APIKeyEnv(provider string) string {
	if provider == ProviderClaude {
		return "ANTHROPIC_API_KEY"
	}
	return "OPENAI_API_KEY"
}

// LoadRelayConfig builds the relay configuration.
// Defaults are overlaid with the YAML file named by RELAY_CONFIG_FILE (if any),
// then with environment variables. The result is validated before return.
func LoadRelayConfig() (*RelayConfig, error) {
	cfg := DefaultRelayConfig()

	if path := os.Getenv("RELAY_CONFIG_FILE"); path != "" {
		if err := applyFile(cfg, path); err != nil {
			return nil, err
		}
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid relay configuration: %w", err)
	}

	return cfg, nil
}

func applyEnv(cfg *RelayConfig) {
	cfg.Port = getEnvOrDefault("PORT", cfg.Port)
	cfg.Version = getEnvOrDefault("APP_VERSION", cfg.Version)
	cfg.MaxBodyBytes = int64(getEnvInt("MAX_BODY_BYTES", int(cfg.MaxBodyBytes)))
	cfg.Normalizer = strings.ToLower(getEnvOrDefault("NORMALIZER", cfg.Normalizer))
	cfg.TracingEnabled = getEnvBool("TRACING_ENABLED", cfg.TracingEnabled)

	c := &cfg.Completion
	c.Provider = strings.ToLower(getEnvOrDefault("COMPLETION_PROVIDER", c.Provider))
	c.Model = getEnvOrDefault("COMPLETION_MODEL", c.Model)
	c.BaseURL = getEnvOrDefault("COMPLETION_BASE_URL", c.BaseURL)
	c.Timeout = getEnvDuration("COMPLETION_TIMEOUT", c.Timeout)
	c.MaxTokens = getEnvInt("COMPLETION_MAX_TOKENS", c.MaxTokens)
	c.CircuitBreaker = getEnvBool("COMPLETION_CIRCUIT_BREAKER", c.CircuitBreaker)

	keyEnv := APIKeyEnv(c.Provider)
	c.APIKey = getEnvOrDefault(keyEnv, c.APIKey)
	c.APIKeyParam = getEnvOrDefault(keyEnv+"_PARAM", c.APIKeyParam)

	if c.Model == "" {
		c.Model = DefaultModel(c.Provider)
	}
}

// Validate checks the configuration and fails closed on invalid values.
func (c *RelayConfig) Validate() error {
	port, err := strconv.Atoi(c.Port)
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("PORT must be a number between 1 and 65535, got %q", c.Port)
	}

	if c.MaxBodyBytes <= 0 {
		return fmt.Errorf("MAX_BODY_BYTES must be positive")
	}

	switch c.Normalizer {
	case NormalizerGoquery, NormalizerHTML2Text:
	default:
		return fmt.Errorf("NORMALIZER must be %q or %q, got %q", NormalizerGoquery, NormalizerHTML2Text, c.Normalizer)
	}

	return c.Completion.Validate()
}

// Validate checks the completion settings.
func (c *CompletionConfig) Validate() error {
	switch c.Provider {
	case ProviderOpenAI, ProviderClaude:
	default:
		return fmt.Errorf("COMPLETION_PROVIDER must be %q or %q, got %q", ProviderOpenAI, ProviderClaude, c.Provider)
	}

	if c.APIKey == "" && c.APIKeyParam == "" {
		keyEnv := APIKeyEnv(c.Provider)
		return fmt.Errorf("%s or %s_PARAM must be set", keyEnv, keyEnv)
	}

	if c.Timeout <= 0 {
		return fmt.Errorf("COMPLETION_TIMEOUT must be positive")
	}

	if c.MaxTokens <= 0 {
		return fmt.Errorf("COMPLETION_MAX_TOKENS must be positive")
	}

	return nil
}

// getEnvOrDefault returns environment variable value or default.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool parses boolean environment variable with default.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.ParseBool(value)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getEnvInt parses integer environment variable with default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getEnvDuration parses duration environment variable with default.
// Supports formats like "30s", "1m", "2h".
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		parsed, err := time.ParseDuration(value)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}
