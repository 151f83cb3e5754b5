// Package gemini provides an adapter for the Google Gemini generateContent
// API. Gemini has no dedicated system role, so the system instruction is
// folded into the first user turn; assistant turns map to the "model" role.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/davidbz/hearth/internal/domain"
	"github.com/davidbz/hearth/internal/observability"
	"github.com/davidbz/hearth/internal/provider"
)

const requestTimeout = 120 * time.Second

var errNoCandidates = errors.New("response contained no candidates")

// Adapter implements the domain.Adapter interface for Gemini.
type Adapter struct {
	cfg        domain.ProviderConfig
	httpClient *http.Client
}

// NewAdapter creates a new Gemini adapter from the backend's configuration.
func NewAdapter(cfg domain.ProviderConfig) *Adapter {
	return &Adapter{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: requestTimeout},
	}
}

// Backend returns the backend identifier this adapter serves.
func (a *Adapter) Backend() domain.Backend {
	return domain.BackendGemini
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role"`
	Parts []part `json:"parts"`
}

type generationConfig struct {
	MaxOutputTokens int      `json:"maxOutputTokens,omitempty"`
	Temperature     float64  `json:"temperature,omitempty"`
	TopP            float64  `json:"topP,omitempty"`
	StopSequences   []string `json:"stopSequences,omitempty"`
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
	UsageMetadata struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
		TotalTokenCount      int `json:"totalTokenCount"`
	} `json:"usageMetadata"`
}

// Complete sends a completion request and returns the normalized response.
// Presence and frequency penalties are not part of the wire protocol and are
// silently dropped.
func (a *Adapter) Complete(ctx context.Context, req *domain.CompletionRequest) (*domain.CompletionResponse, error) {
	turns, err := req.MergedTurns()
	if err != nil {
		return nil, err
	}

	contents := make([]content, len(turns))
	for i, turn := range turns {
		role := "user"
		if turn.Role == domain.RoleAssistant {
			role = "model"
		}
		contents[i] = content{Role: role, Parts: []part{{Text: turn.Content}}}
	}

	maxTokens := a.cfg.MaxTokens
	if req.MaxTokens > 0 {
		maxTokens = req.MaxTokens
	}

	temperature := a.cfg.Temperature
	if req.Temperature > 0 {
		temperature = req.Temperature
	}

	body := generateRequest{
		Contents: contents,
		GenerationConfig: generationConfig{
			MaxOutputTokens: maxTokens,
			Temperature:     temperature,
			TopP:            req.TopP,
			StopSequences:   req.Stop,
		},
	}

	logger := observability.FromContext(ctx)
	logger.Debug("calling Gemini API", observability.String("model", a.cfg.Model))

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", a.cfg.BaseURL, a.cfg.Model, a.cfg.APIKey)

	var out generateResponse
	if err := provider.PostJSON(ctx, a.httpClient, domain.BackendGemini, url, nil, body, &out); err != nil {
		logger.Error("Gemini API call failed", observability.Error(err))
		return nil, err
	}

	if len(out.Candidates) == 0 {
		return nil, &domain.ProtocolError{Backend: domain.BackendGemini, Err: errNoCandidates}
	}

	candidate := out.Candidates[0]

	var text strings.Builder
	for _, p := range candidate.Content.Parts {
		text.WriteString(p.Text)
	}

	return &domain.CompletionResponse{
		Text:     text.String(),
		Provider: domain.BackendGemini,
		Model:    a.cfg.Model,
		Usage: domain.Usage{
			PromptTokens:     out.UsageMetadata.PromptTokenCount,
			CompletionTokens: out.UsageMetadata.CandidatesTokenCount,
			TotalTokens:      out.UsageMetadata.TotalTokenCount,
		},
		FinishReason: normalizeFinishReason(candidate.FinishReason),
	}, nil
}

func normalizeFinishReason(reason string) string {
	switch reason {
	case "STOP":
		return domain.FinishReasonStop
	case "MAX_TOKENS":
		return domain.FinishReasonLength
	default:
		return strings.ToLower(reason)
	}
}
