package domain

// Backend identifies one concrete text-generation backend.
type Backend string

const (
	BackendOpenAI    Backend = "openai"
	BackendAnthropic Backend = "anthropic"
	BackendGemini    Backend = "gemini"
	BackendMistral   Backend = "mistral"
	BackendOllama    Backend = "ollama"
	BackendLMStudio  Backend = "lmstudio"
	BackendLlamaCpp  Backend = "llamacpp"
)

// AllBackends returns every known backend in canonical order:
// cloud providers first, then locally reachable runtimes.
// Fallback chains walk this order.
func AllBackends() []Backend {
	return []Backend{
		BackendOpenAI,
		BackendAnthropic,
		BackendGemini,
		BackendMistral,
		BackendOllama,
		BackendLMStudio,
		BackendLlamaCpp,
	}
}

// IsCloud reports whether the backend is a commercial cloud API
// (as opposed to a locally hosted runtime).
func (b Backend) IsCloud() bool {
	switch b {
	case BackendOpenAI, BackendAnthropic, BackendGemini, BackendMistral:
		return true
	default:
		return false
	}
}

// Valid reports whether the identifier is part of the closed enumeration.
func (b Backend) Valid() bool {
	for _, known := range AllBackends() {
		if b == known {
			return true
		}
	}
	return false
}

// Capability is a coarse task-fitness tag associated with a model.
type Capability string

const (
	CapabilityCode        Capability = "code"
	CapabilityReasoning   Capability = "reasoning"
	CapabilityCreative    Capability = "creative"
	CapabilityInstruction Capability = "instruction"
	CapabilityVision      Capability = "vision"
)

// Message roles shared by every chat-style backend.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message represents a single conversation turn.
type Message struct {
	Role    string `json:"role"` // user, assistant, system
	Content string `json:"content"`
}

// CompletionRequest represents a unified completion request.
// At least one of Prompt or Messages must be present.
type CompletionRequest struct {
	Prompt           string       `json:"prompt,omitempty"`
	System           string       `json:"system,omitempty"`
	Messages         []Message    `json:"messages,omitempty"`
	MaxTokens        int          `json:"max_tokens,omitempty"`
	Temperature      float64      `json:"temperature,omitempty"`
	TopP             float64      `json:"top_p,omitempty"`
	Stop             []string     `json:"stop,omitempty"`
	PresencePenalty  float64      `json:"presence_penalty,omitempty"`
	FrequencyPenalty float64      `json:"frequency_penalty,omitempty"`
	ContextID        string       `json:"context_id,omitempty"`
	Capabilities     []Capability `json:"capabilities,omitempty"`
}

// CompletionResponse represents a unified completion response.
// Provider and Model identify the backend that actually produced the text,
// which may differ from the requested backend after fallback.
type CompletionResponse struct {
	Text         string  `json:"text"`
	Usage        Usage   `json:"usage"`
	Provider     Backend `json:"provider"`
	Model        string  `json:"model"`
	FinishReason string  `json:"finish_reason"`
}

// Usage tracks token consumption. Backends that do not report usage
// leave all fields zero rather than omitting them.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ProviderConfig holds one backend's configuration. Instances are built once
// at startup by the configuration store and are immutable afterwards.
type ProviderConfig struct {
	APIKey      string
	BaseURL     string
	Command     string // local process runner binary (llamacpp only)
	Model       string
	MaxTokens   int
	Temperature float64
}

// Normalized finish reasons shared by all adapters. An empty string means
// the backend did not report one.
const (
	FinishReasonStop   = "stop"
	FinishReasonLength = "length"
)
