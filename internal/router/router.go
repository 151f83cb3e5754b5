// Package router resolves each completion request to a backend, invokes its
// adapter, and walks an ordered fallback chain when the backend fails.
package router

import (
	"context"
	"fmt"

	"github.com/davidbz/hearth/internal/catalog"
	"github.com/davidbz/hearth/internal/config"
	"github.com/davidbz/hearth/internal/domain"
	"github.com/davidbz/hearth/internal/observability"
)

// Router orchestrates backend selection and fallback.
type Router struct {
	store           domain.ConfigStore
	catalog         *catalog.Catalog
	adapters        map[domain.Backend]domain.Adapter
	events          *observability.EventBus
	fallbackEnabled bool
}

// New creates a router over the configured adapters (DI constructor).
// The adapter map holds one instance per configured backend, built at startup.
func New(
	store domain.ConfigStore,
	cat *catalog.Catalog,
	adapters map[domain.Backend]domain.Adapter,
	cfg *config.RouterConfig,
	events *observability.EventBus,
) *Router {
	return &Router{
		store:           store,
		catalog:         cat,
		adapters:        adapters,
		events:          events,
		fallbackEnabled: cfg.FallbackEnabled,
	}
}

// Complete resolves a backend for the request, runs its adapter, and on
// failure tries each remaining configured backend once, cloud backends first.
// Fallback is a single level deep: a backend that fails during fallback does
// not trigger a further search. The response is tagged with the backend that
// actually produced it.
func (r *Router) Complete(
	ctx context.Context,
	requested domain.Backend,
	req *domain.CompletionRequest,
) (*domain.CompletionResponse, error) {
	backend, err := r.resolve(ctx, requested, req)
	if err != nil {
		return nil, err
	}

	ctx = observability.WithProvider(ctx, string(backend))
	logger := observability.FromContext(ctx)

	resp, err := r.invoke(ctx, backend, req)
	if err == nil {
		return resp, nil
	}

	if !r.fallbackEnabled {
		return nil, err
	}

	firstErr := err
	chain := r.fallbackChain(backend)
	if len(chain) == 0 {
		return nil, firstErr
	}

	logger.Warn("backend failed, walking fallback chain",
		observability.String("failed", string(backend)),
		observability.Int("candidates", len(chain)),
		observability.Error(firstErr),
	)

	lastErr := firstErr
	for _, fb := range chain {
		r.events.Publish(ctx, "fallback_attempted", map[string]interface{}{
			"failed":   string(backend),
			"fallback": string(fb),
		})

		resp, fbErr := r.invoke(observability.WithProvider(ctx, string(fb)), fb, req)
		if fbErr == nil {
			return resp, nil
		}
		lastErr = fbErr
	}

	// The terminal error surfaces with the original failure preserved in the
	// message, since the chain alone cannot tell them apart.
	return nil, fmt.Errorf("%s failed (%v); fallback exhausted: %w", backend, firstErr, lastErr)
}

// resolve picks a backend: explicit caller choice, else capability-based best
// match, else the store's default. An explicit choice that is not configured
// is a configuration error and is never retried.
func (r *Router) resolve(
	ctx context.Context,
	requested domain.Backend,
	req *domain.CompletionRequest,
) (domain.Backend, error) {
	if requested != "" {
		if !requested.Valid() {
			return "", &domain.ConfigurationError{Backend: requested, Reason: "unknown provider"}
		}
		if !r.store.IsConfigured(requested) {
			return "", &domain.ConfigurationError{Backend: requested, Reason: "missing credentials or endpoint"}
		}
		return requested, nil
	}

	preferred := r.store.Default()
	if preferred == "" {
		return "", &domain.ConfigurationError{Reason: "no providers configured"}
	}

	if len(req.Capabilities) > 0 {
		backend, model := r.catalog.BestMatch(ctx, req.Capabilities, preferred, r.store)
		observability.FromContext(ctx).Debug("capability routing selected backend",
			observability.String("backend", string(backend)),
			observability.String("model", model),
		)
		return backend, nil
	}

	return preferred, nil
}

func (r *Router) invoke(
	ctx context.Context,
	backend domain.Backend,
	req *domain.CompletionRequest,
) (*domain.CompletionResponse, error) {
	adapter, ok := r.adapters[backend]
	if !ok {
		return nil, &domain.ConfigurationError{Backend: backend, Reason: "no adapter registered"}
	}
	return adapter.Complete(ctx, req)
}

// fallbackChain returns every other configured backend with a registered
// adapter, cloud backends first, explicitly excluding the failed one.
func (r *Router) fallbackChain(failed domain.Backend) []domain.Backend {
	chain := make([]domain.Backend, 0, len(r.adapters))
	for _, backend := range r.store.Configured() {
		if backend == failed {
			continue
		}
		if _, ok := r.adapters[backend]; !ok {
			continue
		}
		chain = append(chain, backend)
	}
	return chain
}
