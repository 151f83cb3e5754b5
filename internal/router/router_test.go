package router_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/davidbz/hearth/internal/catalog"
	"github.com/davidbz/hearth/internal/config"
	"github.com/davidbz/hearth/internal/domain"
	"github.com/davidbz/hearth/internal/observability"
	"github.com/davidbz/hearth/internal/provider"
	"github.com/davidbz/hearth/internal/router"
)

// mockAdapter is a test double recording invocations per backend.
type mockAdapter struct {
	backend domain.Backend
	calls   int
	err     error
}

func (m *mockAdapter) Complete(_ context.Context, _ *domain.CompletionRequest) (*domain.CompletionResponse, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return &domain.CompletionResponse{
		Text:         "ok from " + string(m.backend),
		Provider:     m.backend,
		Model:        "test-model",
		FinishReason: domain.FinishReasonStop,
	}, nil
}

func (m *mockAdapter) Backend() domain.Backend {
	return m.backend
}

func storeFor(backends ...domain.Backend) *provider.Store {
	cfg := &config.Config{}
	for _, backend := range backends {
		switch backend {
		case domain.BackendOpenAI:
			cfg.OpenAI.APIKey = "key"
		case domain.BackendAnthropic:
			cfg.Anthropic.APIKey = "key"
		case domain.BackendGemini:
			cfg.Gemini.APIKey = "key"
		case domain.BackendMistral:
			cfg.Mistral.APIKey = "key"
		case domain.BackendOllama:
			cfg.Ollama.BaseURL = "http://localhost:11434"
		case domain.BackendLMStudio:
			cfg.LMStudio.BaseURL = "http://localhost:1234"
		case domain.BackendLlamaCpp:
			cfg.LlamaCpp.Bin = "/usr/local/bin/llama-run"
		}
	}
	return provider.NewStore(cfg)
}

func newTestRouter(
	store *provider.Store,
	fallback bool,
	adapters ...*mockAdapter,
) (*router.Router, map[domain.Backend]*mockAdapter) {
	byBackend := make(map[domain.Backend]domain.Adapter, len(adapters))
	mocks := make(map[domain.Backend]*mockAdapter, len(adapters))
	for _, adapter := range adapters {
		byBackend[adapter.backend] = adapter
		mocks[adapter.backend] = adapter
	}

	r := router.New(store, catalog.New(), byBackend,
		&config.RouterConfig{FallbackEnabled: fallback},
		observability.NewEventBus())

	return r, mocks
}

func TestComplete(t *testing.T) {
	ctx := context.Background()
	req := &domain.CompletionRequest{Prompt: "hello"}

	t.Run("should use the explicitly requested backend", func(t *testing.T) {
		store := storeFor(domain.BackendOpenAI, domain.BackendAnthropic)
		r, mocks := newTestRouter(store, true,
			&mockAdapter{backend: domain.BackendOpenAI},
			&mockAdapter{backend: domain.BackendAnthropic},
		)

		resp, err := r.Complete(ctx, domain.BackendAnthropic, req)

		require.NoError(t, err)
		require.Equal(t, domain.BackendAnthropic, resp.Provider)
		require.Zero(t, mocks[domain.BackendOpenAI].calls)
	})

	t.Run("should fail without fallback when the explicit backend is not configured", func(t *testing.T) {
		store := storeFor(domain.BackendOpenAI)
		r, mocks := newTestRouter(store, true,
			&mockAdapter{backend: domain.BackendOpenAI},
		)

		_, err := r.Complete(ctx, domain.BackendGemini, req)

		var cfgErr *domain.ConfigurationError
		require.ErrorAs(t, err, &cfgErr)
		require.Equal(t, domain.BackendGemini, cfgErr.Backend)
		require.Zero(t, mocks[domain.BackendOpenAI].calls)
	})

	t.Run("should reject identifiers outside the enumeration", func(t *testing.T) {
		store := storeFor(domain.BackendOpenAI)
		r, _ := newTestRouter(store, true, &mockAdapter{backend: domain.BackendOpenAI})

		_, err := r.Complete(ctx, domain.Backend("groq"), req)

		var cfgErr *domain.ConfigurationError
		require.ErrorAs(t, err, &cfgErr)
	})

	t.Run("should fall back to the default backend without an explicit choice", func(t *testing.T) {
		store := storeFor(domain.BackendMistral, domain.BackendOllama)
		r, _ := newTestRouter(store, true,
			&mockAdapter{backend: domain.BackendMistral},
			&mockAdapter{backend: domain.BackendOllama},
		)

		resp, err := r.Complete(ctx, "", req)

		require.NoError(t, err)
		require.Equal(t, domain.BackendMistral, resp.Provider)
	})

	t.Run("should route by capability when tags are present", func(t *testing.T) {
		cfg := &config.Config{}
		cfg.Gemini.APIKey = "key"
		cfg.Mistral.APIKey = "key"
		cfg.Router.DefaultProvider = "mistral"
		store := provider.NewStore(cfg)
		r, _ := newTestRouter(store, true,
			&mockAdapter{backend: domain.BackendMistral},
			&mockAdapter{backend: domain.BackendGemini},
		)

		// Default is mistral; its default model has no vision capability,
		// gemini's does.
		resp, err := r.Complete(ctx, "", &domain.CompletionRequest{
			Prompt:       "what is in this image",
			Capabilities: []domain.Capability{domain.CapabilityVision},
		})

		require.NoError(t, err)
		require.Equal(t, domain.BackendGemini, resp.Provider)
	})

	t.Run("should surface a configuration error with zero backends configured", func(t *testing.T) {
		store := storeFor()
		r, _ := newTestRouter(store, true)

		_, err := r.Complete(ctx, "", req)

		var cfgErr *domain.ConfigurationError
		require.ErrorAs(t, err, &cfgErr)
	})
}

func TestFallback(t *testing.T) {
	ctx := context.Background()
	req := &domain.CompletionRequest{Prompt: "hello"}
	boom := &domain.TransportError{Backend: domain.BackendOpenAI, Err: errors.New("connection refused")}

	t.Run("should return the first succeeding fallback in cloud-first order", func(t *testing.T) {
		store := storeFor(domain.BackendOpenAI, domain.BackendAnthropic, domain.BackendGemini, domain.BackendMistral)
		r, mocks := newTestRouter(store, true,
			&mockAdapter{backend: domain.BackendOpenAI, err: boom},
			&mockAdapter{backend: domain.BackendAnthropic, err: &domain.TransportError{Backend: domain.BackendAnthropic, Err: errors.New("down")}},
			&mockAdapter{backend: domain.BackendGemini},
			&mockAdapter{backend: domain.BackendMistral},
		)

		resp, err := r.Complete(ctx, domain.BackendOpenAI, req)

		require.NoError(t, err)
		require.Equal(t, domain.BackendGemini, resp.Provider)
		require.Equal(t, 1, mocks[domain.BackendAnthropic].calls)
		require.Zero(t, mocks[domain.BackendMistral].calls, "chain stops at the first success")
	})

	t.Run("should prefer cloud backends over local ones in the chain", func(t *testing.T) {
		store := storeFor(domain.BackendOllama, domain.BackendMistral, domain.BackendLlamaCpp)
		r, mocks := newTestRouter(store, true,
			&mockAdapter{backend: domain.BackendOllama, err: boom},
			&mockAdapter{backend: domain.BackendMistral},
			&mockAdapter{backend: domain.BackendLlamaCpp},
		)

		resp, err := r.Complete(ctx, domain.BackendOllama, req)

		require.NoError(t, err)
		require.Equal(t, domain.BackendMistral, resp.Provider)
		require.Zero(t, mocks[domain.BackendLlamaCpp].calls)
	})

	t.Run("should never retry the failed backend", func(t *testing.T) {
		store := storeFor(domain.BackendOpenAI, domain.BackendAnthropic)
		failing := &mockAdapter{backend: domain.BackendOpenAI, err: boom}
		r, _ := newTestRouter(store, true,
			failing,
			&mockAdapter{backend: domain.BackendAnthropic},
		)

		_, err := r.Complete(ctx, domain.BackendOpenAI, req)

		require.NoError(t, err)
		require.Equal(t, 1, failing.calls)
	})

	t.Run("should return the original error when fallback is disabled", func(t *testing.T) {
		store := storeFor(domain.BackendOpenAI, domain.BackendAnthropic)
		r, mocks := newTestRouter(store, false,
			&mockAdapter{backend: domain.BackendOpenAI, err: boom},
			&mockAdapter{backend: domain.BackendAnthropic},
		)

		_, err := r.Complete(ctx, domain.BackendOpenAI, req)

		require.ErrorIs(t, err, boom)
		require.Zero(t, mocks[domain.BackendAnthropic].calls)
	})

	t.Run("should return the original error when no other backend is configured", func(t *testing.T) {
		store := storeFor(domain.BackendOpenAI)
		r, _ := newTestRouter(store, true,
			&mockAdapter{backend: domain.BackendOpenAI, err: boom},
		)

		_, err := r.Complete(ctx, domain.BackendOpenAI, req)

		require.ErrorIs(t, err, boom)
	})

	t.Run("should surface the last error with the first failure preserved", func(t *testing.T) {
		lastErr := &domain.TransportError{Backend: domain.BackendAnthropic, Err: errors.New("also down")}
		store := storeFor(domain.BackendOpenAI, domain.BackendAnthropic)
		r, _ := newTestRouter(store, true,
			&mockAdapter{backend: domain.BackendOpenAI, err: boom},
			&mockAdapter{backend: domain.BackendAnthropic, err: lastErr},
		)

		_, err := r.Complete(ctx, domain.BackendOpenAI, req)

		require.ErrorIs(t, err, lastErr)
		require.Contains(t, err.Error(), "connection refused")
	})

	t.Run("should try each fallback candidate at most once", func(t *testing.T) {
		store := storeFor(domain.BackendOpenAI, domain.BackendAnthropic, domain.BackendOllama)
		a := &mockAdapter{backend: domain.BackendOpenAI, err: boom}
		b := &mockAdapter{backend: domain.BackendAnthropic, err: boom}
		c := &mockAdapter{backend: domain.BackendOllama, err: boom}
		r, _ := newTestRouter(store, true, a, b, c)

		_, err := r.Complete(ctx, domain.BackendOpenAI, req)

		require.Error(t, err)
		require.Equal(t, 1, a.calls)
		require.Equal(t, 1, b.calls)
		require.Equal(t, 1, c.calls)
	})
}
