// Package embedding exposes the narrow text-to-vector path. Unlike
// completions, there is no capability matching and no fallback: a backend
// either implements embeddings or the request fails immediately.
package embedding

import (
	"context"
	"fmt"

	"github.com/davidbz/hearth/internal/domain"
	"github.com/davidbz/hearth/internal/observability"
)

// Service routes embedding requests to the backends that implement them.
type Service struct {
	generators map[domain.Backend]domain.EmbeddingGenerator
}

// NewService creates the embedding service over the configured generators
// (DI constructor). Currently only the openai backend provides one.
func NewService(generators map[domain.Backend]domain.EmbeddingGenerator) *Service {
	return &Service{generators: generators}
}

// Embed turns text into a vector using the given backend, defaulting to
// openai. A backend without embedding support fails with
// ErrEmbeddingUnsupported; an unconfigured one with a ConfigurationError.
// Neither is retried.
func (s *Service) Embed(ctx context.Context, text string, backend domain.Backend) ([]float64, error) {
	if backend == "" {
		backend = domain.BackendOpenAI
	}

	gen, ok := s.generators[backend]
	if !ok {
		if backend == domain.BackendOpenAI {
			return nil, &domain.ConfigurationError{Backend: backend, Reason: "missing credentials"}
		}
		return nil, fmt.Errorf("%w: %s", domain.ErrEmbeddingUnsupported, backend)
	}

	observability.FromContext(ctx).Debug("generating embedding",
		observability.String("backend", string(backend)),
		observability.Int("text_len", len(text)),
	)

	return gen.Generate(ctx, text)
}
