// Package anthropic provides an adapter for the Anthropic Messages API.
// Anthropic carries the system instruction as a top-level request field
// rather than a system-role message.
package anthropic

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/davidbz/hearth/internal/domain"
	"github.com/davidbz/hearth/internal/observability"
	"github.com/davidbz/hearth/internal/provider"
)

const (
	apiVersion     = "2023-06-01"
	requestTimeout = 120 * time.Second

	// The Messages API rejects requests without max_tokens.
	fallbackMaxTokens = 1024
)

var errNoContent = errors.New("response contained no content blocks")

// Adapter implements the domain.Adapter interface for Anthropic.
type Adapter struct {
	cfg        domain.ProviderConfig
	httpClient *http.Client
}

// NewAdapter creates a new Anthropic adapter from the backend's configuration.
func NewAdapter(cfg domain.ProviderConfig) *Adapter {
	return &Adapter{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: requestTimeout},
	}
}

// Backend returns the backend identifier this adapter serves.
func (a *Adapter) Backend() domain.Backend {
	return domain.BackendAnthropic
}

type messagesRequest struct {
	Model         string           `json:"model"`
	MaxTokens     int              `json:"max_tokens"`
	System        string           `json:"system,omitempty"`
	Messages      []domain.Message `json:"messages"`
	Temperature   float64          `json:"temperature,omitempty"`
	TopP          float64          `json:"top_p,omitempty"`
	StopSequences []string         `json:"stop_sequences,omitempty"`
}

type messagesResponse struct {
	Model   string `json:"model"`
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

// Complete sends a completion request and returns the normalized response.
// Presence and frequency penalties are not part of the Messages API wire
// protocol and are silently dropped.
func (a *Adapter) Complete(ctx context.Context, req *domain.CompletionRequest) (*domain.CompletionResponse, error) {
	turns, err := req.Turns()
	if err != nil {
		return nil, err
	}

	maxTokens := a.cfg.MaxTokens
	if req.MaxTokens > 0 {
		maxTokens = req.MaxTokens
	}
	if maxTokens <= 0 {
		maxTokens = fallbackMaxTokens
	}

	temperature := a.cfg.Temperature
	if req.Temperature > 0 {
		temperature = req.Temperature
	}

	body := messagesRequest{
		Model:         a.cfg.Model,
		MaxTokens:     maxTokens,
		System:        req.System,
		Messages:      turns,
		Temperature:   temperature,
		TopP:          req.TopP,
		StopSequences: req.Stop,
	}

	logger := observability.FromContext(ctx)
	logger.Debug("calling Anthropic API", observability.String("model", a.cfg.Model))

	var out messagesResponse
	if err := a.post(ctx, "/v1/messages", body, &out); err != nil {
		logger.Error("Anthropic API call failed", observability.Error(err))
		return nil, err
	}

	if len(out.Content) == 0 {
		return nil, &domain.ProtocolError{Backend: domain.BackendAnthropic, Err: errNoContent}
	}

	var text strings.Builder
	for _, block := range out.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	model := out.Model
	if model == "" {
		model = a.cfg.Model
	}

	return &domain.CompletionResponse{
		Text:     text.String(),
		Provider: domain.BackendAnthropic,
		Model:    model,
		Usage: domain.Usage{
			PromptTokens:     out.Usage.InputTokens,
			CompletionTokens: out.Usage.OutputTokens,
			TotalTokens:      out.Usage.InputTokens + out.Usage.OutputTokens,
		},
		FinishReason: normalizeStopReason(out.StopReason),
	}, nil
}

func (a *Adapter) post(ctx context.Context, path string, payload, out any) error {
	return provider.PostJSON(ctx, a.httpClient, domain.BackendAnthropic, a.cfg.BaseURL+path, map[string]string{
		"x-api-key":         a.cfg.APIKey,
		"anthropic-version": apiVersion,
	}, payload, out)
}

func normalizeStopReason(reason string) string {
	switch reason {
	case "end_turn", "stop_sequence":
		return domain.FinishReasonStop
	case "max_tokens":
		return domain.FinishReasonLength
	default:
		return reason
	}
}
