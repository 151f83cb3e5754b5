// Package catalog maps model identifiers to the task capabilities they
// support. The catalog is static: it is loaded once at process start and is
// read-only afterwards, so unsynchronized concurrent reads are safe.
package catalog

import (
	"context"

	"github.com/davidbz/hearth/internal/domain"
	"github.com/davidbz/hearth/internal/observability"
)

// ModelInfo describes one model and its capability tags.
type ModelInfo struct {
	Name         string              `json:"name"`
	Capabilities []domain.Capability `json:"capabilities"`
}

// Catalog holds the static model/capability tables.
type Catalog struct {
	capabilities map[string]map[domain.Capability]bool
	models       map[domain.Backend][]string
}

// New builds the catalog from the built-in tables.
func New() *Catalog {
	c := &Catalog{
		capabilities: make(map[string]map[domain.Capability]bool),
		models:       make(map[domain.Backend][]string),
	}

	add := func(backend domain.Backend, model string, caps ...domain.Capability) {
		set := make(map[domain.Capability]bool, len(caps))
		for _, capability := range caps {
			set[capability] = true
		}
		c.capabilities[model] = set
		c.models[backend] = append(c.models[backend], model)
	}

	add(domain.BackendOpenAI, "gpt-4o",
		domain.CapabilityCode, domain.CapabilityReasoning, domain.CapabilityInstruction, domain.CapabilityVision)
	add(domain.BackendOpenAI, "gpt-4o-mini",
		domain.CapabilityCode, domain.CapabilityInstruction)
	add(domain.BackendOpenAI, "o1",
		domain.CapabilityCode, domain.CapabilityReasoning)

	add(domain.BackendAnthropic, "claude-sonnet-4-20250514",
		domain.CapabilityCode, domain.CapabilityReasoning, domain.CapabilityCreative, domain.CapabilityInstruction)
	add(domain.BackendAnthropic, "claude-3-5-haiku-20241022",
		domain.CapabilityCreative, domain.CapabilityInstruction)

	add(domain.BackendGemini, "gemini-2.0-flash",
		domain.CapabilityCreative, domain.CapabilityInstruction, domain.CapabilityVision)
	add(domain.BackendGemini, "gemini-1.5-pro",
		domain.CapabilityReasoning, domain.CapabilityInstruction, domain.CapabilityVision)

	add(domain.BackendMistral, "mistral-large-latest",
		domain.CapabilityCode, domain.CapabilityInstruction)
	add(domain.BackendMistral, "codestral-latest",
		domain.CapabilityCode)

	add(domain.BackendOllama, "llama3.1",
		domain.CapabilityCreative, domain.CapabilityInstruction)
	add(domain.BackendOllama, "mistral-nemo",
		domain.CapabilityInstruction)

	add(domain.BackendLMStudio, "qwen2.5-coder-7b-instruct",
		domain.CapabilityCode, domain.CapabilityInstruction)

	add(domain.BackendLlamaCpp, "llama-3.1-8b-instruct",
		domain.CapabilityInstruction)

	return c
}

// HasCapability reports whether the model carries the capability tag.
// Unknown models carry no capabilities.
func (c *Catalog) HasCapability(model string, capability domain.Capability) bool {
	return c.capabilities[model][capability]
}

// Capabilities returns the model's capability tags in stable order.
func (c *Catalog) Capabilities(model string) []domain.Capability {
	set := c.capabilities[model]
	caps := make([]domain.Capability, 0, len(set))
	for _, capability := range []domain.Capability{
		domain.CapabilityCode,
		domain.CapabilityReasoning,
		domain.CapabilityCreative,
		domain.CapabilityInstruction,
		domain.CapabilityVision,
	} {
		if set[capability] {
			caps = append(caps, capability)
		}
	}
	return caps
}

// Models returns the known models for a backend with their capabilities.
func (c *Catalog) Models(backend domain.Backend) []ModelInfo {
	names := c.models[backend]
	infos := make([]ModelInfo, 0, len(names))
	for _, name := range names {
		infos = append(infos, ModelInfo{Name: name, Capabilities: c.Capabilities(name)})
	}
	return infos
}

// BestMatch picks the backend whose default model best covers the requested
// capabilities. The preferred backend is evaluated first and wins immediately
// when its default model covers every requested capability; otherwise every
// other configured backend's default model is scanned greedily, keeping the
// highest match count with first-seen winning ties. When no default model
// matches any capability the preferred backend is returned unchanged.
//
// Only each backend's configured default model is considered, not its full
// model list. Deterministic, not optimal.
func (c *Catalog) BestMatch(
	ctx context.Context,
	requested []domain.Capability,
	preferred domain.Backend,
	store domain.ConfigStore,
) (domain.Backend, string) {
	preferredModel := ""
	if pc, ok := store.Get(preferred); ok {
		preferredModel = pc.Model
	}

	if c.matchCount(preferredModel, requested) == len(requested) {
		return preferred, preferredModel
	}

	logger := observability.FromContext(ctx)

	best := preferred
	bestModel := preferredModel
	bestCount := -1

	for _, backend := range store.Configured() {
		if backend == preferred {
			continue
		}

		pc, ok := store.Get(backend)
		if !ok {
			continue
		}

		count := c.matchCount(pc.Model, requested)
		if count == 0 {
			continue
		}

		if count > bestCount {
			best = backend
			bestModel = pc.Model
			bestCount = count
		}
	}

	logger.Debug("capability match resolved",
		observability.String("backend", string(best)),
		observability.String("model", bestModel),
		observability.Int("matched", bestCount),
	)

	return best, bestModel
}

func (c *Catalog) matchCount(model string, requested []domain.Capability) int {
	count := 0
	for _, capability := range requested {
		if c.HasCapability(model, capability) {
			count++
		}
	}
	return count
}
