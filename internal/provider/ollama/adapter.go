// Package ollama provides an adapter for a locally reachable Ollama server
// using its native /api/chat endpoint with streaming disabled.
package ollama

import (
	"context"
	"net/http"
	"time"

	"github.com/davidbz/hearth/internal/domain"
	"github.com/davidbz/hearth/internal/observability"
	"github.com/davidbz/hearth/internal/provider"
)

// Local models can be slow on first load.
const requestTimeout = 300 * time.Second

// Adapter implements the domain.Adapter interface for Ollama.
type Adapter struct {
	cfg        domain.ProviderConfig
	httpClient *http.Client
}

// NewAdapter creates a new Ollama adapter from the backend's configuration.
func NewAdapter(cfg domain.ProviderConfig) *Adapter {
	return &Adapter{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: requestTimeout},
	}
}

// Backend returns the backend identifier this adapter serves.
func (a *Adapter) Backend() domain.Backend {
	return domain.BackendOllama
}

type chatOptions struct {
	NumPredict  int      `json:"num_predict,omitempty"`
	Temperature float64  `json:"temperature,omitempty"`
	TopP        float64  `json:"top_p,omitempty"`
	Stop        []string `json:"stop,omitempty"`
}

type chatRequest struct {
	Model    string           `json:"model"`
	Messages []domain.Message `json:"messages"`
	Stream   bool             `json:"stream"`
	Options  chatOptions      `json:"options"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Message struct {
		Content string `json:"content"`
	} `json:"message"`
	DoneReason      string `json:"done_reason"`
	PromptEvalCount int    `json:"prompt_eval_count"`
	EvalCount       int    `json:"eval_count"`
}

// Complete sends a completion request and returns the normalized response.
// Penalty parameters are not part of the wire protocol and are silently
// dropped. Eval counts are zero-filled when the server omits them.
func (a *Adapter) Complete(ctx context.Context, req *domain.CompletionRequest) (*domain.CompletionResponse, error) {
	turns, err := req.ChatTurns()
	if err != nil {
		return nil, err
	}

	maxTokens := a.cfg.MaxTokens
	if req.MaxTokens > 0 {
		maxTokens = req.MaxTokens
	}

	temperature := a.cfg.Temperature
	if req.Temperature > 0 {
		temperature = req.Temperature
	}

	body := chatRequest{
		Model:    a.cfg.Model,
		Messages: turns,
		Stream:   false,
		Options: chatOptions{
			NumPredict:  maxTokens,
			Temperature: temperature,
			TopP:        req.TopP,
			Stop:        req.Stop,
		},
	}

	logger := observability.FromContext(ctx)
	logger.Debug("calling Ollama server", observability.String("model", a.cfg.Model))

	var out chatResponse
	err = provider.PostJSON(ctx, a.httpClient, domain.BackendOllama, a.cfg.BaseURL+"/api/chat", nil, body, &out)
	if err != nil {
		logger.Error("Ollama call failed", observability.Error(err))
		return nil, err
	}

	model := out.Model
	if model == "" {
		model = a.cfg.Model
	}

	return &domain.CompletionResponse{
		Text:     out.Message.Content,
		Provider: domain.BackendOllama,
		Model:    model,
		Usage: domain.Usage{
			PromptTokens:     out.PromptEvalCount,
			CompletionTokens: out.EvalCount,
			TotalTokens:      out.PromptEvalCount + out.EvalCount,
		},
		FinishReason: normalizeDoneReason(out.DoneReason),
	}, nil
}

func normalizeDoneReason(reason string) string {
	switch reason {
	case "stop":
		return domain.FinishReasonStop
	case "length":
		return domain.FinishReasonLength
	default:
		return reason
	}
}
