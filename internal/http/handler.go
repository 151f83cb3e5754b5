package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/davidbz/hearth/internal/catalog"
	"github.com/davidbz/hearth/internal/domain"
	"github.com/davidbz/hearth/internal/embedding"
	"github.com/davidbz/hearth/internal/observability"
	"github.com/davidbz/hearth/internal/router"
)

// Handler handles HTTP requests.
type Handler struct {
	router    *router.Router
	embedding *embedding.Service
	store     domain.ConfigStore
	catalog   *catalog.Catalog
	contexts  domain.ContextStore // nil when Redis is not configured
}

// NewHandler creates a new HTTP handler (DI constructor).
func NewHandler(
	rt *router.Router,
	emb *embedding.Service,
	store domain.ConfigStore,
	cat *catalog.Catalog,
	contexts domain.ContextStore,
) *Handler {
	return &Handler{
		router:    rt,
		embedding: emb,
		store:     store,
		catalog:   cat,
		contexts:  contexts,
	}
}

type completionRequest struct {
	domain.CompletionRequest
	Provider string `json:"provider,omitempty"`
}

// HandleCompletion processes completion requests.
func (h *Handler) HandleCompletion(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var body completionRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	// The core expects this invariant to hold before it is invoked.
	if body.Prompt == "" && len(body.Messages) == 0 {
		http.Error(w, domain.ErrEmptyRequest.Error(), http.StatusBadRequest)
		return
	}

	if body.Provider != "" {
		ctx = observability.WithProvider(ctx, body.Provider)
	}

	logger := observability.FromContext(ctx)
	logger.Info("completion request received",
		zap.String("provider", body.Provider),
		zap.String("context_id", body.ContextID),
		zap.Strings("capabilities", capabilityStrings(body.Capabilities)),
	)

	req := body.CompletionRequest
	userTurns := h.loadContext(ctx, &req)

	response, err := h.router.Complete(ctx, domain.Backend(body.Provider), &req)
	if err != nil {
		logger.Error("completion failed", zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	h.storeContext(ctx, req.ContextID, userTurns, response)

	logger.Info("completion succeeded",
		zap.String("backend", string(response.Provider)),
		zap.Int("tokens", response.Usage.TotalTokens),
	)

	writeJSON(ctx, w, response)
}

// loadContext prepends the stored conversation history for the request's
// context identifier and returns the new user-visible turns so they can be
// persisted after a successful completion. Without a context store, context
// identifiers are accepted but inert.
func (h *Handler) loadContext(ctx context.Context, req *domain.CompletionRequest) []domain.Message {
	turns, err := req.Turns()
	if err != nil {
		return nil
	}

	if req.ContextID == "" || h.contexts == nil {
		return turns
	}

	history, err := h.contexts.History(ctx, req.ContextID)
	if err != nil {
		observability.FromContext(ctx).Warn("context history unavailable, continuing without it",
			zap.Error(err))
		return turns
	}

	if len(history) > 0 {
		req.Messages = append(history, turns...)
		req.Prompt = ""
	}

	return turns
}

func (h *Handler) storeContext(
	ctx context.Context,
	contextID string,
	userTurns []domain.Message,
	response *domain.CompletionResponse,
) {
	if contextID == "" || h.contexts == nil {
		return
	}

	turns := append(userTurns, domain.Message{
		Role:    domain.RoleAssistant,
		Content: response.Text,
	})
	if err := h.contexts.Append(ctx, contextID, turns...); err != nil {
		observability.FromContext(ctx).Warn("failed to store context turns", zap.Error(err))
	}
}

type embeddingRequest struct {
	Text     string `json:"text"`
	Provider string `json:"provider,omitempty"`
}

// HandleEmbedding processes embedding requests.
func (h *Handler) HandleEmbedding(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var body embeddingRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	if body.Text == "" {
		http.Error(w, "text is required", http.StatusBadRequest)
		return
	}

	vector, err := h.embedding.Embed(ctx, body.Text, domain.Backend(body.Provider))
	if err != nil {
		observability.FromContext(ctx).Error("embedding failed", zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(ctx, w, map[string][]float64{"embedding": vector})
}

// HandleProviders lists the configured backend identifiers.
func (h *Handler) HandleProviders(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, map[string]interface{}{
		"providers": h.store.Configured(),
		"default":   h.store.Default(),
	})
}

// HandleModels returns the static model/capability listing for one backend.
func (h *Handler) HandleModels(w http.ResponseWriter, r *http.Request) {
	backend := domain.Backend(r.PathValue("id"))
	if !backend.Valid() {
		http.Error(w, fmt.Sprintf("unknown provider: %s", backend), http.StatusNotFound)
		return
	}

	writeJSON(r.Context(), w, map[string]interface{}{
		"provider": backend,
		"models":   h.catalog.Models(backend),
	})
}

// HandleHealth handles health check requests.
func (h *Handler) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(map[string]string{
		"status": "healthy",
	}); err != nil {
		// Already written status, can't change it, just log.
		return
	}
}

func writeJSON(ctx context.Context, w http.ResponseWriter, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		observability.FromContext(ctx).Error("failed to encode response", zap.Error(err))
	}
}

func capabilityStrings(caps []domain.Capability) []string {
	out := make([]string, len(caps))
	for i, c := range caps {
		out[i] = string(c)
	}
	return out
}
