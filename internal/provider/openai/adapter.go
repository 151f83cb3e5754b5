// Package openai provides an adapter for the OpenAI API using the official
// SDK. It implements the domain.Adapter interface and converts between the
// unified completion contract and SDK types.
package openai

import (
	"context"
	"errors"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/davidbz/hearth/internal/domain"
	"github.com/davidbz/hearth/internal/observability"
)

var errNoChoices = errors.New("response contained no choices")

// Adapter implements the domain.Adapter interface for OpenAI.
type Adapter struct {
	client openai.Client
	cfg    domain.ProviderConfig
}

const requestTimeout = 120 * time.Second

// NewAdapter creates a new OpenAI adapter from the backend's configuration.
func NewAdapter(cfg domain.ProviderConfig) *Adapter {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithRequestTimeout(requestTimeout),
	}

	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &Adapter{
		client: openai.NewClient(opts...),
		cfg:    cfg,
	}
}

// Backend returns the backend identifier this adapter serves.
func (a *Adapter) Backend() domain.Backend {
	return domain.BackendOpenAI
}

// Complete sends a completion request and returns the normalized response.
func (a *Adapter) Complete(ctx context.Context, req *domain.CompletionRequest) (*domain.CompletionResponse, error) {
	params, err := a.toSDKParams(req)
	if err != nil {
		return nil, err
	}

	logger := observability.FromContext(ctx)
	logger.Debug("calling OpenAI API", observability.String("model", string(params.Model)))

	resp, err := a.client.Chat.Completions.New(ctx, params)
	if err != nil {
		logger.Error("OpenAI API call failed", observability.Error(err))
		return nil, &domain.TransportError{Backend: domain.BackendOpenAI, Err: err}
	}

	if len(resp.Choices) == 0 {
		return nil, &domain.ProtocolError{Backend: domain.BackendOpenAI, Err: errNoChoices}
	}

	choice := resp.Choices[0]

	return &domain.CompletionResponse{
		Text:     choice.Message.Content,
		Provider: domain.BackendOpenAI,
		Model:    string(resp.Model),
		Usage: domain.Usage{
			PromptTokens:     int(resp.Usage.PromptTokens),
			CompletionTokens: int(resp.Usage.CompletionTokens),
			TotalTokens:      int(resp.Usage.TotalTokens),
		},
		FinishReason: normalizeFinishReason(choice.FinishReason),
	}, nil
}

// toSDKParams converts the unified request to SDK ChatCompletionNewParams.
// Request-level parameters override the configured defaults.
func (a *Adapter) toSDKParams(req *domain.CompletionRequest) (openai.ChatCompletionNewParams, error) {
	turns, err := req.ChatTurns()
	if err != nil {
		return openai.ChatCompletionNewParams{}, err
	}

	messages := make([]openai.ChatCompletionMessageParamUnion, len(turns))
	for i, turn := range turns {
		switch turn.Role {
		case domain.RoleSystem:
			messages[i] = openai.SystemMessage(turn.Content)
		case domain.RoleAssistant:
			messages[i] = openai.AssistantMessage(turn.Content)
		default:
			messages[i] = openai.UserMessage(turn.Content)
		}
	}

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(a.cfg.Model),
		Messages: messages,
	}

	maxTokens := a.cfg.MaxTokens
	if req.MaxTokens > 0 {
		maxTokens = req.MaxTokens
	}
	if maxTokens > 0 {
		params.MaxTokens = openai.Int(int64(maxTokens))
	}

	temperature := a.cfg.Temperature
	if req.Temperature > 0 {
		temperature = req.Temperature
	}
	if temperature > 0 {
		params.Temperature = openai.Float(temperature)
	}

	if req.TopP > 0 {
		params.TopP = openai.Float(req.TopP)
	}
	if req.PresencePenalty != 0 {
		params.PresencePenalty = openai.Float(req.PresencePenalty)
	}
	if req.FrequencyPenalty != 0 {
		params.FrequencyPenalty = openai.Float(req.FrequencyPenalty)
	}
	if len(req.Stop) > 0 {
		params.Stop = openai.ChatCompletionNewParamsStopUnion{OfStringArray: req.Stop}
	}

	return params, nil
}

func normalizeFinishReason(reason string) string {
	switch reason {
	case "stop":
		return domain.FinishReasonStop
	case "length":
		return domain.FinishReasonLength
	default:
		return reason
	}
}
