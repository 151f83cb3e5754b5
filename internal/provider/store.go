// Package provider builds and exposes per-backend configuration.
// The store is assembled once at startup from environment-derived config and
// is read-only afterwards; unsynchronized concurrent reads are safe. No
// network calls happen during construction.
package provider

import (
	"github.com/davidbz/hearth/internal/config"
	"github.com/davidbz/hearth/internal/domain"
)

// Per-backend defaults applied when the environment leaves them unset.
var defaultModels = map[domain.Backend]string{
	domain.BackendOpenAI:    "gpt-4o",
	domain.BackendAnthropic: "claude-sonnet-4-20250514",
	domain.BackendGemini:    "gemini-2.0-flash",
	domain.BackendMistral:   "mistral-large-latest",
	domain.BackendOllama:    "llama3.1",
	domain.BackendLMStudio:  "qwen2.5-coder-7b-instruct",
	domain.BackendLlamaCpp:  "llama-3.1-8b-instruct",
}

var defaultBaseURLs = map[domain.Backend]string{
	domain.BackendOpenAI:    "https://api.openai.com/v1",
	domain.BackendAnthropic: "https://api.anthropic.com",
	domain.BackendGemini:    "https://generativelanguage.googleapis.com",
	domain.BackendMistral:   "https://api.mistral.ai",
}

// Store implements the domain.ConfigStore interface.
type Store struct {
	configs        map[domain.Backend]domain.ProviderConfig
	defaultBackend domain.Backend
}

// NewStore builds the configuration store. A backend with no credential (or
// no endpoint / runner binary, for local backends) is simply absent from the
// store. The default backend is the configured override when valid, otherwise
// the first configured backend in canonical order.
func NewStore(cfg *config.Config) *Store {
	s := &Store{
		configs:        make(map[domain.Backend]domain.ProviderConfig),
		defaultBackend: "",
	}

	groups := map[domain.Backend]config.ProviderEnv{
		domain.BackendOpenAI:    cfg.OpenAI,
		domain.BackendAnthropic: cfg.Anthropic,
		domain.BackendGemini:    cfg.Gemini,
		domain.BackendMistral:   cfg.Mistral,
		domain.BackendOllama:    cfg.Ollama,
		domain.BackendLMStudio:  cfg.LMStudio,
		domain.BackendLlamaCpp:  cfg.LlamaCpp,
	}

	for _, backend := range domain.AllBackends() {
		group := groups[backend]
		if !usable(backend, group) {
			continue
		}

		pc := domain.ProviderConfig{
			APIKey:      group.APIKey,
			BaseURL:     group.BaseURL,
			Command:     group.Bin,
			Model:       group.Model,
			MaxTokens:   group.MaxTokens,
			Temperature: group.Temperature,
		}
		if pc.Model == "" {
			pc.Model = defaultModels[backend]
		}
		if pc.BaseURL == "" {
			pc.BaseURL = defaultBaseURLs[backend]
		}

		s.configs[backend] = pc
		if s.defaultBackend == "" {
			s.defaultBackend = backend
		}
	}

	if override := domain.Backend(cfg.Router.DefaultProvider); override != "" {
		if _, ok := s.configs[override]; ok {
			s.defaultBackend = override
		}
	}

	return s
}

// usable reports whether the env group carries enough to reach the backend.
func usable(backend domain.Backend, group config.ProviderEnv) bool {
	switch backend {
	case domain.BackendOllama, domain.BackendLMStudio:
		return group.BaseURL != ""
	case domain.BackendLlamaCpp:
		return group.Bin != ""
	default:
		return group.APIKey != ""
	}
}

// IsConfigured reports whether the backend has usable configuration.
func (s *Store) IsConfigured(backend domain.Backend) bool {
	_, ok := s.configs[backend]
	return ok
}

// Get retrieves a backend's configuration; ok is false when absent.
func (s *Store) Get(backend domain.Backend) (domain.ProviderConfig, bool) {
	pc, ok := s.configs[backend]
	return pc, ok
}

// Configured returns every configured backend in canonical order
// (cloud backends first, then local ones).
func (s *Store) Configured() []domain.Backend {
	backends := make([]domain.Backend, 0, len(s.configs))
	for _, backend := range domain.AllBackends() {
		if _, ok := s.configs[backend]; ok {
			backends = append(backends, backend)
		}
	}
	return backends
}

// Default returns the default backend, or "" when nothing is configured.
func (s *Store) Default() domain.Backend {
	return s.defaultBackend
}
