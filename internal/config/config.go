package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/daikw/sportsbot/internal/voice/provider"
)

// ErrMissingCredential is returned when the generation provider has no API key
var ErrMissingCredential = errors.New("API configuratie ontbreekt")

// LLM provider names
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
	ProviderMock   = "mock"
)

// Defaults
const (
	DefaultAddr      = ":3000"
	DefaultServerURL = "http://localhost:3000"
	DefaultModel     = "gemini-2.5-flash"

	// DefaultOpenAIModel is used by the openai provider when no model is configured
	DefaultOpenAIModel = "gpt-4o-mini"
)

// DefaultModels maps request model aliases to provider model names
var DefaultModels = map[string]string{
	"smart": "gemini-2.5-flash",
	"fast":  "gemini-2.5-flash-lite",
}

// Config is the application configuration
type Config struct {
	Server ServerConfig `json:"server"`
	LLM    LLMConfig    `json:"llm"`
	Client ClientConfig `json:"client"`
	Voice  VoiceConfig  `json:"voice"`
}

// ServerConfig configures the HTTP server
type ServerConfig struct {
	Addr string `json:"addr,omitempty"`
}

// LLMConfig configures the generation provider
type LLMConfig struct {
	Provider     string            `json:"provider,omitempty"`
	APIKey       string            `json:"apiKey,omitempty"`
	BaseURL      string            `json:"baseURL,omitempty"`
	DefaultModel string            `json:"defaultModel,omitempty"`
	Models       map[string]string `json:"models,omitempty"`
}

// ClientConfig configures the terminal chat client
type ClientConfig struct {
	ServerURL string `json:"serverURL,omitempty"`
	Model     string `json:"model,omitempty"`
}

// VoiceConfig configures speech output
type VoiceConfig struct {
	DefaultProvider string                    `json:"defaultProvider,omitempty"`
	Rate            float64                   `json:"rate,omitempty"`
	Locales         []string                  `json:"locales,omitempty"`
	Providers       map[string]ProviderConfig `json:"providers,omitempty"`
}

// ProviderConfig represents speech provider specific configuration
type ProviderConfig struct {
	Voice      string  `json:"voice,omitempty"`
	Rate       float64 `json:"rate,omitempty"`
	Format     string  `json:"format,omitempty"`
	Region     string  `json:"region,omitempty"`
	Engine     string  `json:"engine,omitempty"`
	SampleRate string  `json:"sampleRate,omitempty"`
	ProjectID  string  `json:"projectId,omitempty"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{Addr: DefaultAddr},
		LLM: LLMConfig{
			Provider: ProviderGemini,
		},
		Client: ClientConfig{
			ServerURL: DefaultServerURL,
			Model:     "smart",
		},
	}
}

// ResolveModel maps a request alias to a provider model name.
// Unknown or empty aliases resolve to the configured default model, or the
// default of the provider when none is configured.
func (c LLMConfig) ResolveModel(alias string) string {
	if m, ok := c.Models[alias]; ok && m != "" {
		return m
	}
	if c.Provider == ProviderGemini || c.Provider == "" {
		if m, ok := DefaultModels[alias]; ok {
			return m
		}
	}
	if c.DefaultModel != "" {
		return c.DefaultModel
	}
	if c.Provider == ProviderOpenAI {
		return DefaultOpenAIModel
	}
	return DefaultModel
}

// Credential returns the API key of the configured provider
func (c LLMConfig) Credential() (string, error) {
	if c.Provider == ProviderMock {
		return "", nil
	}
	if c.APIKey == "" {
		return "", fmt.Errorf("%w. Voeg %s toe aan environment variables.", ErrMissingCredential, credentialEnv(c.Provider))
	}
	return c.APIKey, nil
}

// GetProviderConfig returns configuration for a specific speech provider
func (c *VoiceConfig) GetProviderConfig(providerName string) *ProviderConfig {
	if c == nil || c.Providers == nil {
		return nil
	}
	if config, exists := c.Providers[providerName]; exists {
		return &config
	}
	return nil
}

// Validate validates the configuration and returns every problem found
func (c *Config) Validate() []string {
	var errs []string
	if c == nil {
		return errs
	}

	switch c.LLM.Provider {
	case ProviderGemini, ProviderOpenAI, ProviderMock:
	default:
		errs = append(errs, fmt.Sprintf("llm: unknown provider '%s'", c.LLM.Provider))
	}

	if c.Voice.DefaultProvider != "" && !provider.IsSupported(c.Voice.DefaultProvider) {
		errs = append(errs, fmt.Sprintf("voice: unknown provider '%s'", c.Voice.DefaultProvider))
	}
	if c.Voice.Rate != 0 && (c.Voice.Rate < 0.25 || c.Voice.Rate > 4.0) {
		errs = append(errs, "voice: rate must be between 0.25 and 4.0")
	}
	for name, p := range c.Voice.Providers {
		if !provider.IsSupported(name) {
			errs = append(errs, fmt.Sprintf("voice.%s: unknown provider", name))
		}
		if p.Rate != 0 && (p.Rate < 0.25 || p.Rate > 4.0) {
			errs = append(errs, fmt.Sprintf("voice.%s: rate must be between 0.25 and 4.0", name))
		}
	}

	return errs
}

// applyEnv overrides file values with environment variables
func (c *Config) applyEnv() {
	if v := os.Getenv("SPORTSBOT_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("SPORTSBOT_SERVER_URL"); v != "" {
		c.Client.ServerURL = v
	}
	if v := os.Getenv("SPORTSBOT_LLM_PROVIDER"); v != "" {
		c.LLM.Provider = strings.ToLower(v)
	}
	if v := os.Getenv(credentialEnv(c.LLM.Provider)); v != "" {
		c.LLM.APIKey = v
	}
	if v := os.Getenv("OPENAI_BASE_URL"); v != "" && c.LLM.Provider == ProviderOpenAI {
		c.LLM.BaseURL = v
	}
	if v := os.Getenv("SPORTSBOT_VOICE_PROVIDER"); v != "" {
		c.Voice.DefaultProvider = v
	}
}

func credentialEnv(providerName string) string {
	if providerName == ProviderOpenAI {
		return "OPENAI_API_KEY"
	}
	return "GEMINI_API_KEY"
}

// MaskSecrets returns a copy safe for display
func (c *Config) MaskSecrets() *Config {
	if c == nil {
		return nil
	}
	masked := *c
	if c.LLM.APIKey != "" {
		masked.LLM.APIKey = fmt.Sprintf("[set, %d chars]", len(c.LLM.APIKey))
	}
	return &masked
}
