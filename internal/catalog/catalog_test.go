package catalog_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/davidbz/hearth/internal/catalog"
	"github.com/davidbz/hearth/internal/domain"
)

// countingStore is a ConfigStore double that records how often each backend's
// configuration is read, so tests can assert on the search behavior itself.
type countingStore struct {
	configs         map[domain.Backend]domain.ProviderConfig
	order           []domain.Backend
	getCalls        map[domain.Backend]int
	configuredCalls int
}

func newCountingStore(models map[domain.Backend]string) *countingStore {
	s := &countingStore{
		configs:  make(map[domain.Backend]domain.ProviderConfig),
		getCalls: make(map[domain.Backend]int),
	}
	for _, backend := range domain.AllBackends() {
		model, ok := models[backend]
		if !ok {
			continue
		}
		s.configs[backend] = domain.ProviderConfig{Model: model}
		s.order = append(s.order, backend)
	}
	return s
}

func (s *countingStore) IsConfigured(backend domain.Backend) bool {
	_, ok := s.configs[backend]
	return ok
}

func (s *countingStore) Get(backend domain.Backend) (domain.ProviderConfig, bool) {
	s.getCalls[backend]++
	pc, ok := s.configs[backend]
	return pc, ok
}

func (s *countingStore) Configured() []domain.Backend {
	s.configuredCalls++
	return s.order
}

func (s *countingStore) Default() domain.Backend {
	if len(s.order) == 0 {
		return ""
	}
	return s.order[0]
}

func TestHasCapability(t *testing.T) {
	c := catalog.New()

	require.True(t, c.HasCapability("gpt-4o", domain.CapabilityVision))
	require.True(t, c.HasCapability("claude-sonnet-4-20250514", domain.CapabilityCreative))
	require.False(t, c.HasCapability("claude-sonnet-4-20250514", domain.CapabilityVision))
	require.False(t, c.HasCapability("unknown-model", domain.CapabilityCode))
}

func TestModels(t *testing.T) {
	c := catalog.New()

	models := c.Models(domain.BackendOpenAI)
	require.NotEmpty(t, models)
	require.Equal(t, "gpt-4o", models[0].Name)
	require.Contains(t, models[0].Capabilities, domain.CapabilityReasoning)

	require.Empty(t, c.Models(domain.Backend("nonexistent")))
}

func TestBestMatch(t *testing.T) {
	ctx := context.Background()

	t.Run("should return preferred backend without scanning when it covers everything", func(t *testing.T) {
		c := catalog.New()
		store := newCountingStore(map[domain.Backend]string{
			domain.BackendOpenAI:    "gpt-4o",
			domain.BackendAnthropic: "claude-sonnet-4-20250514",
		})

		backend, model := c.BestMatch(ctx,
			[]domain.Capability{domain.CapabilityCode, domain.CapabilityVision},
			domain.BackendOpenAI, store)

		require.Equal(t, domain.BackendOpenAI, backend)
		require.Equal(t, "gpt-4o", model)

		// Early exit: only the preferred backend's config was read.
		require.Equal(t, 1, store.getCalls[domain.BackendOpenAI])
		require.Zero(t, store.getCalls[domain.BackendAnthropic])
		require.Zero(t, store.configuredCalls)
	})

	t.Run("should pick the best partial match among other backends", func(t *testing.T) {
		c := catalog.New()
		store := newCountingStore(map[domain.Backend]string{
			domain.BackendGemini:    "gemini-2.0-flash",
			domain.BackendOpenAI:    "gpt-4o",
			domain.BackendAnthropic: "claude-sonnet-4-20250514",
		})

		// Gemini's default covers creative+vision but not code; gpt-4o
		// matches code+vision, claude matches code+creative.
		backend, model := c.BestMatch(ctx,
			[]domain.Capability{domain.CapabilityCode, domain.CapabilityCreative, domain.CapabilityVision},
			domain.BackendGemini, store)

		// Both alternatives match two of three; openai is seen first.
		require.Equal(t, domain.BackendOpenAI, backend)
		require.Equal(t, "gpt-4o", model)
	})

	t.Run("should favor the first-seen backend on equal match counts", func(t *testing.T) {
		c := catalog.New()
		store := newCountingStore(map[domain.Backend]string{
			domain.BackendMistral:  "mistral-large-latest",
			domain.BackendLMStudio: "qwen2.5-coder-7b-instruct",
			domain.BackendOllama:   "llama3.1",
		})

		// Preferred covers instruction+creative but not code. Mistral and
		// lmstudio both match only the code capability; mistral comes first
		// in canonical order.
		backend, _ := c.BestMatch(ctx,
			[]domain.Capability{domain.CapabilityCode},
			domain.BackendOllama, store)

		require.Equal(t, domain.BackendMistral, backend)
	})

	t.Run("should fall back to the preferred backend when nothing matches", func(t *testing.T) {
		c := catalog.New()
		store := newCountingStore(map[domain.Backend]string{
			domain.BackendMistral:  "mistral-large-latest",
			domain.BackendLlamaCpp: "llama-3.1-8b-instruct",
		})

		backend, model := c.BestMatch(ctx,
			[]domain.Capability{domain.CapabilityVision},
			domain.BackendLlamaCpp, store)

		require.Equal(t, domain.BackendLlamaCpp, backend)
		require.Equal(t, "llama-3.1-8b-instruct", model)
	})

	t.Run("should treat an empty capability list as covered by the preferred backend", func(t *testing.T) {
		c := catalog.New()
		store := newCountingStore(map[domain.Backend]string{
			domain.BackendOpenAI: "gpt-4o",
			domain.BackendOllama: "llama3.1",
		})

		backend, _ := c.BestMatch(ctx, nil, domain.BackendOllama, store)

		require.Equal(t, domain.BackendOllama, backend)
		require.Zero(t, store.configuredCalls)
	})
}
