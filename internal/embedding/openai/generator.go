// Package openai generates vector embeddings through the OpenAI SDK.
package openai

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/davidbz/hearth/internal/domain"
)

// Generator generates embeddings using OpenAI.
type Generator struct {
	client openai.Client
	model  string
}

// NewGenerator creates a new OpenAI embedding generator from the backend's
// provider configuration and the configured embedding model.
func NewGenerator(cfg domain.ProviderConfig, model string) (*Generator, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("OpenAI API key is required")
	}

	if model == "" {
		model = string(openai.EmbeddingModelTextEmbedding3Small)
	}

	return &Generator{
		client: openai.NewClient(option.WithAPIKey(cfg.APIKey)),
		model:  model,
	}, nil
}

// Generate creates a vector embedding from text.
func (g *Generator) Generate(ctx context.Context, text string) ([]float64, error) {
	if text == "" {
		return nil, errors.New("text cannot be empty")
	}

	//nolint:exhaustruct // OpenAI SDK struct has many optional fields
	resp, err := g.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: []string{text},
		},
		Model: openai.EmbeddingModel(g.model),
	})
	if err != nil {
		return nil, &domain.TransportError{
			Backend: domain.BackendOpenAI,
			Err:     fmt.Errorf("create embeddings: %w", err),
		}
	}

	if len(resp.Data) == 0 {
		return nil, &domain.ProtocolError{
			Backend: domain.BackendOpenAI,
			Err:     errors.New("no embeddings returned"),
		}
	}

	return resp.Data[0].Embedding, nil
}
