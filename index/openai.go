package index

import (
	"context"
	"fmt"
	"os"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIEmbedder implements Embedder using the OpenAI embeddings API.
type OpenAIEmbedder struct {
	client *openai.Client
	model  openai.EmbeddingModel
}

var _ Embedder = (*OpenAIEmbedder)(nil)

// OpenAIOption configures an OpenAIEmbedder.
type OpenAIOption func(*OpenAIEmbedder)

// WithEmbeddingModel sets the embedding model to use.
func WithEmbeddingModel(model openai.EmbeddingModel) OpenAIOption {
	return func(e *OpenAIEmbedder) {
		e.model = model
	}
}

// NewOpenAIEmbedder creates a new OpenAI-backed embedder.
// If apiKey is empty, it tries to read from OPENAI_API_KEY environment variable.
func NewOpenAIEmbedder(apiKey string, opts ...OpenAIOption) (*OpenAIEmbedder, error) {
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY not set")
	}

	e := &OpenAIEmbedder{
		client: openai.NewClient(apiKey),
		model:  openai.SmallEmbedding3,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e, nil
}

// Embed returns the embedding vector for the given text.
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: e.model,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("embedding response is empty")
	}
	return resp.Data[0].Embedding, nil
}
