package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// fileConfig mirrors the YAML overlay. It carries no credentials;
// only the SSM parameter name may be set from a file.
type fileConfig struct {
	Port           string `yaml:"port"`
	Version        string `yaml:"version"`
	MaxBodyBytes   int64  `yaml:"max_body_bytes"`
	Normalizer     string `yaml:"normalizer"`
	TracingEnabled *bool  `yaml:"tracing_enabled"`
	Completion     struct {
		Provider       string `yaml:"provider"`
		Model          string `yaml:"model"`
		BaseURL        string `yaml:"base_url"`
		Timeout        string `yaml:"timeout"`
		MaxTokens      int    `yaml:"max_tokens"`
		CircuitBreaker *bool  `yaml:"circuit_breaker"`
		APIKeyParam    string `yaml:"api_key_param"`
	} `yaml:"completion"`
}

// applyFile overlays the non-zero values of the YAML file at path onto cfg.
// The path comes from the process environment, not from request input.
func applyFile(cfg *RelayConfig, path string) error {
	// #nosec G304 -- path is provided by the operator via RELAY_CONFIG_FILE
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}

	if fc.Port != "" {
		cfg.Port = fc.Port
	}
	if fc.Version != "" {
		cfg.Version = fc.Version
	}
	if fc.MaxBodyBytes != 0 {
		cfg.MaxBodyBytes = fc.MaxBodyBytes
	}
	if fc.Normalizer != "" {
		cfg.Normalizer = fc.Normalizer
	}
	if fc.TracingEnabled != nil {
		cfg.TracingEnabled = *fc.TracingEnabled
	}

	c := &cfg.Completion
	if fc.Completion.Provider != "" {
		c.Provider = fc.Completion.Provider
	}
	if fc.Completion.Model != "" {
		c.Model = fc.Completion.Model
	}
	if fc.Completion.BaseURL != "" {
		c.BaseURL = fc.Completion.BaseURL
	}
	if fc.Completion.Timeout != "" {
		d, err := time.ParseDuration(fc.Completion.Timeout)
		if err != nil {
			return fmt.Errorf("completion.timeout: %w", err)
		}
		c.Timeout = d
	}
	if fc.Completion.MaxTokens != 0 {
		c.MaxTokens = fc.Completion.MaxTokens
	}
	if fc.Completion.CircuitBreaker != nil {
		c.CircuitBreaker = *fc.Completion.CircuitBreaker
	}
	if fc.Completion.APIKeyParam != "" {
		c.APIKeyParam = fc.Completion.APIKeyParam
	}

	return nil
}
