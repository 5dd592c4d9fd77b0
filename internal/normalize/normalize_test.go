package normalize

import (
	"reflect"
	"testing"

	"github.com/everstacklabs/modelfeed/internal/catalog"
)

func validRaw() *catalog.RawRecord {
	return &catalog.RawRecord{
		ID:            "meta-llama/llama-3.2-3b-instruct:free",
		Name:          "Llama 3.2 3B Instruct",
		Pricing:       &catalog.RawPricing{Prompt: 0.0, Completion: 0.0},
		ContextLength: 131072.0,
	}
}

func TestRecordScenario(t *testing.T) {
	m, ok := Record(validRaw())
	if !ok {
		t.Fatal("expected record to be accepted")
	}

	if !m.Pricing.IsFree {
		t.Error("expected IsFree = true")
	}
	if m.Provider != "Meta" {
		t.Errorf("Provider = %q, want %q", m.Provider, "Meta")
	}
	if m.ContextLength != 131072 {
		t.Errorf("ContextLength = %d, want 131072", m.ContextLength)
	}
	if m.DisplayName != "Llama 3.2 3B Instruct" {
		t.Errorf("DisplayName = %q, want %q", m.DisplayName, "Llama 3.2 3B Instruct")
	}
	if !m.HasCapability(catalog.CapChat) || !m.HasCapability(catalog.CapCode) {
		t.Errorf("Capabilities = %v, want chat and code included", m.Capabilities)
	}
	if m.CompatibilityScore != 94 {
		t.Errorf("CompatibilityScore = %d, want 94", m.CompatibilityScore)
	}
	if m.Description != "Free · 131K context · Code" {
		t.Errorf("Description = %q", m.Description)
	}
}

func TestRecordRejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*catalog.RawRecord)
	}{
		{"empty id", func(r *catalog.RawRecord) { r.ID = "" }},
		{"whitespace id", func(r *catalog.RawRecord) { r.ID = "   " }},
		{"missing name", func(r *catalog.RawRecord) { r.Name = "" }},
		{"missing pricing", func(r *catalog.RawRecord) { r.Pricing = nil }},
		{"deprecated marker in id", func(r *catalog.RawRecord) { r.ID = "acme/old-model-deprecated" }},
		{"disabled marker in name", func(r *catalog.RawRecord) { r.Name = "Old Model (disabled)" }},
		{"maintenance marker in description", func(r *catalog.RawRecord) { r.Description = "Down for maintenance" }},
		{"unstable beta marker", func(r *catalog.RawRecord) { r.Description = "unstable-beta build" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := validRaw()
			tt.mutate(raw)
			if _, ok := Record(raw); ok {
				t.Error("expected record to be rejected")
			}
		})
	}
}

func TestRecordIdempotent(t *testing.T) {
	raw := validRaw()
	first, ok1 := Record(raw)
	second, ok2 := Record(raw)
	if !ok1 || !ok2 {
		t.Fatal("expected record to be accepted twice")
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("normalization not idempotent:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestRecordClampsNegativePrices(t *testing.T) {
	raw := validRaw()
	raw.Pricing = &catalog.RawPricing{Prompt: -5.0, Completion: "$0.004"}

	m, ok := Record(raw)
	if !ok {
		t.Fatal("expected record to be accepted")
	}
	if m.Pricing.PromptCost != 0 {
		t.Errorf("PromptCost = %v, want 0", m.Pricing.PromptCost)
	}
	if m.Pricing.CompletionCost != 0.004 {
		t.Errorf("CompletionCost = %v, want 0.004", m.Pricing.CompletionCost)
	}
}

func TestRecordsDropsSilently(t *testing.T) {
	raws := []catalog.RawRecord{
		*validRaw(),
		{ID: "", Name: "No ID", Pricing: &catalog.RawPricing{}},
		{ID: "acme/no-pricing", Name: "No Pricing"},
		{
			ID:      "acme/good-model",
			Name:    "Good Model",
			Pricing: &catalog.RawPricing{Prompt: "0.001", Completion: "0.002"},
		},
	}

	models := Records(raws)
	if len(models) != 2 {
		t.Fatalf("Records kept %d models, want 2", len(models))
	}
	if models[0].ID != "meta-llama/llama-3.2-3b-instruct:free" || models[1].ID != "acme/good-model" {
		t.Errorf("unexpected survivors: %v, %v", models[0].ID, models[1].ID)
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Llama 3.2 3B Instruct", "Llama 3.2 3B Instruct"},
		{"mistralai/mistral-7b-instruct", "Mistral 7b Instruct"},
		{"gpt-4o_mini", "Gpt 4o Mini"},
		{"plain", "Plain"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := displayName(tt.in)
			if got != tt.want {
				t.Errorf("displayName(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		name string
		m    catalog.Model
		want string
	}{
		{
			"free with context and code",
			catalog.Model{
				Pricing:       catalog.Pricing{IsFree: true},
				ContextLength: 131072,
				Capabilities:  []catalog.Capability{catalog.CapCode, catalog.CapChat},
			},
			"Free · 131K context · Code",
		},
		{
			"paid with vision",
			catalog.Model{
				Pricing:       catalog.Pricing{PromptCost: 0.0000025},
				ContextLength: 128000,
				Capabilities:  []catalog.Capability{catalog.CapVision},
			},
			"Paid · 128K context · Vision",
		},
		{
			"small context not rounded",
			catalog.Model{Pricing: catalog.Pricing{IsFree: true}, ContextLength: 512},
			"Free · 512 context",
		},
		{
			"rounds to nearest thousand",
			catalog.Model{Pricing: catalog.Pricing{IsFree: true}, ContextLength: 32768},
			"Free · 33K context",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := describe(&tt.m)
			if got != tt.want {
				t.Errorf("describe = %q, want %q", got, tt.want)
			}
		})
	}
}
