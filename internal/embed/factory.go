package embed

import (
	"fmt"
	"strings"

	"github.com/ppiankov/politikcred/internal/model"
)

// NewProvider creates an embedding provider based on configuration. An empty
// provider name disables embeddings and returns nil.
func NewProvider(config Config) (Provider, error) {
	switch strings.ToLower(config.Provider) {
	case "openai":
		return NewOpenAIProvider(config)

	case "ollama":
		return NewOllamaProvider(config)

	case "":
		return nil, nil

	default:
		return nil, fmt.Errorf("unknown embedding provider: %s (supported: openai, ollama)", config.Provider)
	}
}

// ConfigFromModel converts the runtime configuration into provider config
func ConfigFromModel(ec model.EmbeddingConfig, hc model.HTTPConfig) Config {
	return Config{
		Provider:   ec.Provider,
		Model:      ec.Model,
		APIKey:     ec.APIKey,
		BaseURL:    ec.BaseURL,
		Timeout:    ec.Timeout,
		HTTPProxy:  hc.HTTPProxy,
		HTTPSProxy: hc.HTTPSProxy,
		NoProxy:    hc.NoProxy,
	}
}
