package llm

import (
	"fmt"
	"strings"

	"github.com/ppiankov/tagline/internal/model"
)

// NewProvider creates the configured provider; nil, nil means disabled
func NewProvider(config Config) (Provider, error) {
	switch strings.ToLower(config.Provider) {
	case "openai":
		return NewOpenAIProvider(config)
	case "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (supported: openai; set llm.base_url for compatible servers)", config.Provider)
	}
}

// ConfigFromModel converts model.LLMConfig to llm.Config
func ConfigFromModel(c model.LLMConfig) Config {
	return Config{
		Provider:          c.Provider,
		Model:             c.Model,
		APIKey:            c.APIKey,
		BaseURL:           c.BaseURL,
		Timeout:           c.Timeout,
		StrictEvidence:    c.StrictEvidence,
		MaxTokens:         c.MaxTokens,
		RequestsPerSecond: c.RequestsPerSecond,
	}
}
