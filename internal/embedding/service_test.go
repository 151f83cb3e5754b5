package embedding_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/davidbz/hearth/internal/domain"
	"github.com/davidbz/hearth/internal/embedding"
)

type mockGenerator struct {
	vector []float64
	calls  int
}

func (m *mockGenerator) Generate(_ context.Context, _ string) ([]float64, error) {
	m.calls++
	return m.vector, nil
}

func TestEmbed(t *testing.T) {
	ctx := context.Background()

	t.Run("should embed through the default backend", func(t *testing.T) {
		gen := &mockGenerator{vector: []float64{0.1, 0.2}}
		svc := embedding.NewService(map[domain.Backend]domain.EmbeddingGenerator{
			domain.BackendOpenAI: gen,
		})

		vec, err := svc.Embed(ctx, "hello", "")

		require.NoError(t, err)
		require.Equal(t, []float64{0.1, 0.2}, vec)
		require.Equal(t, 1, gen.calls)
	})

	t.Run("should fail immediately for a backend without embedding support", func(t *testing.T) {
		gen := &mockGenerator{}
		svc := embedding.NewService(map[domain.Backend]domain.EmbeddingGenerator{
			domain.BackendOpenAI: gen,
		})

		_, err := svc.Embed(ctx, "hello", domain.BackendAnthropic)

		require.ErrorIs(t, err, domain.ErrEmbeddingUnsupported)
		require.Zero(t, gen.calls, "no fallback for embeddings")
	})

	t.Run("should report a configuration error when openai is not configured", func(t *testing.T) {
		svc := embedding.NewService(map[domain.Backend]domain.EmbeddingGenerator{})

		_, err := svc.Embed(ctx, "hello", domain.BackendOpenAI)

		var cfgErr *domain.ConfigurationError
		require.ErrorAs(t, err, &cfgErr)
	})
}
