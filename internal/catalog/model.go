// Package catalog defines the canonical model types produced by the
// acquisition pipeline and the raw record shape received from upstream.
package catalog

import (
	"encoding/json"
	"sort"
)

// Capability identifies something a model can do. Values come from a fixed
// vocabulary; the classifier never invents new ones.
type Capability string

const (
	CapVision          Capability = "vision"
	CapCode            Capability = "code"
	CapChat            Capability = "chat"
	CapCompletion      Capability = "completion"
	CapFunctionCalling Capability = "function_calling"
	CapReasoning       Capability = "reasoning"
	CapMath            Capability = "math"
)

// Capabilities is the vocabulary in declaration order. Classified tags are
// always emitted in this order regardless of where keywords appeared.
var Capabilities = []Capability{
	CapVision,
	CapCode,
	CapChat,
	CapCompletion,
	CapFunctionCalling,
	CapReasoning,
	CapMath,
}

// DefaultContextLength is assumed when upstream gives no usable value.
const DefaultContextLength = 4096

// Pricing is the normalized per-token cost of a model.
type Pricing struct {
	PromptCost     float64 `json:"prompt_cost" yaml:"prompt_cost"`
	CompletionCost float64 `json:"completion_cost" yaml:"completion_cost"`
	IsFree         bool    `json:"is_free" yaml:"is_free"`
	Currency       string  `json:"currency" yaml:"currency"`
}

// Model is a fully normalized catalog entry. Every Model handed past the
// normalizer has a non-empty ID and DisplayName, non-negative pricing, and a
// context length of at least one token.
type Model struct {
	ID                 string       `json:"id" yaml:"id"`
	DisplayName        string       `json:"display_name" yaml:"display_name"`
	Provider           string       `json:"provider" yaml:"provider"`
	Pricing            Pricing      `json:"pricing" yaml:"pricing"`
	ContextLength      int          `json:"context_length" yaml:"context_length"`
	Capabilities       []Capability `json:"capabilities" yaml:"capabilities"`
	CompatibilityScore int          `json:"compatibility_score" yaml:"compatibility_score"`
	Description        string       `json:"description" yaml:"description"`
}

// HasCapability checks if the model carries a specific capability tag.
func (m *Model) HasCapability(c Capability) bool {
	for _, have := range m.Capabilities {
		if have == c {
			return true
		}
	}
	return false
}

// RawRecord is one untrusted upstream catalog entry. Pricing and context
// length arrive as numbers, strings with currency symbols, or not at all, so
// loosely typed fields absorb whatever the API sends.
type RawRecord struct {
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	Description   string      `json:"description,omitempty"`
	Pricing       *RawPricing `json:"pricing,omitempty"`
	ContextLength any         `json:"context_length,omitempty"`
	Created       json.Number `json:"created,omitempty"`
}

// RawPricing is the untrusted pricing block of a raw record.
type RawPricing struct {
	Prompt     any `json:"prompt"`
	Completion any `json:"completion"`
}

// Sort orders a catalog for presentation: free models first, then descending
// compatibility score, then display name. The consuming UI depends on this
// exact tie-breaking, so it must stay stable across releases.
func Sort(models []Model) {
	sort.SliceStable(models, func(i, j int) bool {
		a, b := &models[i], &models[j]
		if a.Pricing.IsFree != b.Pricing.IsFree {
			return a.Pricing.IsFree
		}
		if a.CompatibilityScore != b.CompatibilityScore {
			return a.CompatibilityScore > b.CompatibilityScore
		}
		return a.DisplayName < b.DisplayName
	})
}

// FilterFree returns only the free models, preserving order.
func FilterFree(models []Model) []Model {
	var free []Model
	for _, m := range models {
		if m.Pricing.IsFree {
			free = append(free, m)
		}
	}
	return free
}
