package embed

import (
	"context"
	"fmt"

	"github.com/ppiankov/politikcred/internal/util"
	"github.com/sashabaranov/go-openai"
)

// OpenAIProvider embeds text with the OpenAI embeddings API
type OpenAIProvider struct {
	client *openai.Client
	config Config
}

// NewOpenAIProvider creates a new OpenAI provider
func NewOpenAIProvider(config Config) (*OpenAIProvider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}
	clientConfig.HTTPClient = util.NewHTTPClient(config.Timeout, config.HTTPProxy, config.HTTPSProxy, config.NoProxy)

	return &OpenAIProvider{
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
	}, nil
}

// Name returns the provider name
func (p *OpenAIProvider) Name() string {
	return "openai"
}

// Embed returns the embedding for text
func (p *OpenAIProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	model := openai.EmbeddingModel(p.config.Model)
	if model == "" {
		model = openai.SmallEmbedding3
	}

	resp, err := p.client.CreateEmbeddings(ctx, openai.EmbeddingRequestStrings{
		Input: []string{text},
		Model: model,
	})
	if err != nil {
		return nil, unavailable(p.Name(), err)
	}
	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return nil, unavailable(p.Name(), fmt.Errorf("empty embedding response"))
	}

	return resp.Data[0].Embedding, nil
}
