package domain

import "context"

// Adapter translates the unified completion contract to one backend's
// native protocol.
type Adapter interface {
	// Complete sends a completion request and returns the normalized response.
	Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error)

	// Backend returns the backend identifier this adapter serves.
	Backend() Backend
}

// ConfigStore exposes per-backend configuration built once at startup.
type ConfigStore interface {
	// IsConfigured reports whether the backend has usable configuration.
	IsConfigured(backend Backend) bool

	// Get retrieves a backend's configuration; ok is false when absent.
	Get(backend Backend) (ProviderConfig, bool)

	// Configured returns every configured backend in canonical order.
	Configured() []Backend

	// Default returns the default backend, or "" when none is configured.
	Default() Backend
}

// EmbeddingGenerator turns text into a vector embedding.
type EmbeddingGenerator interface {
	Generate(ctx context.Context, text string) ([]float64, error)
}

// ContextStore persists multi-turn conversation state keyed by a
// caller-supplied context identifier.
type ContextStore interface {
	// History returns the stored turns for a context, oldest first.
	History(ctx context.Context, contextID string) ([]Message, error)

	// Append adds turns to a context's history.
	Append(ctx context.Context, contextID string, turns ...Message) error
}
