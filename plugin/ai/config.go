package ai

import (
	"errors"
	"time"

	"github.com/peachme/peachme/internal/profile"
)

// LLMConfig represents LLM configuration.
type LLMConfig struct {
	APIKey      string
	BaseURL     string  // default: https://api.openai.com/v1
	Model       string  // default: gpt-4o-mini
	MaxTokens   int     // default: 2048
	Temperature float32 // default: 0.7
	MaxRetries  int     // default: 3
	Timeout     time.Duration
}

// NewLLMConfigFromProfile creates LLM config from profile.
func NewLLMConfigFromProfile(p *profile.Profile) *LLMConfig {
	return &LLMConfig{
		APIKey:      p.AIAPIKey,
		BaseURL:     p.AIBaseURL,
		Model:       p.AIChatModel,
		MaxTokens:   2048,
		Temperature: 0.7,
		MaxRetries:  3,
		Timeout:     60 * time.Second,
	}
}

// Validate validates the configuration.
func (c *LLMConfig) Validate() error {
	if c.APIKey == "" {
		return errors.New("LLM API key is required")
	}
	if c.Model == "" {
		return errors.New("LLM model is required")
	}
	return nil
}
