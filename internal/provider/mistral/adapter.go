// Package mistral provides an adapter for the Mistral chat completions API,
// which speaks an OpenAI-compatible wire format with bearer authentication.
package mistral

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/davidbz/hearth/internal/domain"
	"github.com/davidbz/hearth/internal/observability"
	"github.com/davidbz/hearth/internal/provider"
)

const requestTimeout = 120 * time.Second

var errNoChoices = errors.New("response contained no choices")

// Adapter implements the domain.Adapter interface for Mistral.
type Adapter struct {
	cfg        domain.ProviderConfig
	httpClient *http.Client
}

// NewAdapter creates a new Mistral adapter from the backend's configuration.
func NewAdapter(cfg domain.ProviderConfig) *Adapter {
	return &Adapter{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: requestTimeout},
	}
}

// Backend returns the backend identifier this adapter serves.
func (a *Adapter) Backend() domain.Backend {
	return domain.BackendMistral
}

type chatRequest struct {
	Model            string           `json:"model"`
	Messages         []domain.Message `json:"messages"`
	MaxTokens        int              `json:"max_tokens,omitempty"`
	Temperature      float64          `json:"temperature,omitempty"`
	TopP             float64          `json:"top_p,omitempty"`
	Stop             []string         `json:"stop,omitempty"`
	PresencePenalty  float64          `json:"presence_penalty,omitempty"`
	FrequencyPenalty float64          `json:"frequency_penalty,omitempty"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// Complete sends a completion request and returns the normalized response.
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
		Model:            a.cfg.Model,
		Messages:         turns,
		MaxTokens:        maxTokens,
		Temperature:      temperature,
		TopP:             req.TopP,
		Stop:             req.Stop,
		PresencePenalty:  req.PresencePenalty,
		FrequencyPenalty: req.FrequencyPenalty,
	}

	logger := observability.FromContext(ctx)
	logger.Debug("calling Mistral API", observability.String("model", a.cfg.Model))

	var out chatResponse
	err = provider.PostJSON(ctx, a.httpClient, domain.BackendMistral,
		a.cfg.BaseURL+"/v1/chat/completions",
		map[string]string{"Authorization": "Bearer " + a.cfg.APIKey},
		body, &out)
	if err != nil {
		logger.Error("Mistral API call failed", observability.Error(err))
		return nil, err
	}

	if len(out.Choices) == 0 {
		return nil, &domain.ProtocolError{Backend: domain.BackendMistral, Err: errNoChoices}
	}

	choice := out.Choices[0]

	model := out.Model
	if model == "" {
		model = a.cfg.Model
	}

	return &domain.CompletionResponse{
		Text:     choice.Message.Content,
		Provider: domain.BackendMistral,
		Model:    model,
		Usage: domain.Usage{
			PromptTokens:     out.Usage.PromptTokens,
			CompletionTokens: out.Usage.CompletionTokens,
			TotalTokens:      out.Usage.TotalTokens,
		},
		FinishReason: normalizeFinishReason(choice.FinishReason),
	}, nil
}

func normalizeFinishReason(reason string) string {
	switch reason {
	case "stop":
		return domain.FinishReasonStop
	case "length", "model_length":
		return domain.FinishReasonLength
	default:
		return reason
	}
}
