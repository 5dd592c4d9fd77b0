package catalog

import (
	_ "embed"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

//go:embed fallback.yaml
var fallbackYAML []byte

type fallbackFile struct {
	Models []fallbackModel `yaml:"models" validate:"min=1,dive"`
}

// fallbackModel mirrors Model with validation tags so a malformed edit to the
// embedded file is caught by tests instead of shipping a broken catalog.
type fallbackModel struct {
	ID           string `yaml:"id" validate:"required"`
	DisplayName  string `yaml:"display_name" validate:"required"`
	Provider     string `yaml:"provider" validate:"required"`
	Pricing      struct {
		PromptCost     float64 `yaml:"prompt_cost" validate:"gte=0"`
		CompletionCost float64 `yaml:"completion_cost" validate:"gte=0"`
		IsFree         bool    `yaml:"is_free"`
		Currency       string  `yaml:"currency" validate:"required"`
	} `yaml:"pricing"`
	ContextLength      int          `yaml:"context_length" validate:"gte=1"`
	Capabilities       []Capability `yaml:"capabilities" validate:"min=1"`
	CompatibilityScore int          `yaml:"compatibility_score" validate:"gte=0,lte=100"`
	Description        string       `yaml:"description" validate:"required"`
}

var (
	fallbackOnce   sync.Once
	fallbackModels []Model
	fallbackErr    error
)

// Fallback returns the embedded static catalog, sorted. The slice is a fresh
// copy on every call so callers cannot mutate the embedded data.
func Fallback() []Model {
	fallbackOnce.Do(loadFallback)
	if fallbackErr != nil {
		// The embedded file is compiled in and covered by tests; reaching
		// this means a broken build, not a runtime condition to recover from.
		panic(fallbackErr)
	}
	out := make([]Model, len(fallbackModels))
	copy(out, fallbackModels)
	return out
}

func loadFallback() {
	var f fallbackFile
	if err := yaml.Unmarshal(fallbackYAML, &f); err != nil {
		fallbackErr = fmt.Errorf("parsing embedded fallback catalog: %w", err)
		return
	}
	if err := validator.New().Struct(&f); err != nil {
		fallbackErr = fmt.Errorf("validating embedded fallback catalog: %w", err)
		return
	}

	models := make([]Model, 0, len(f.Models))
	for _, fm := range f.Models {
		models = append(models, Model{
			ID:          fm.ID,
			DisplayName: fm.DisplayName,
			Provider:    fm.Provider,
			Pricing: Pricing{
				PromptCost:     fm.Pricing.PromptCost,
				CompletionCost: fm.Pricing.CompletionCost,
				IsFree:         fm.Pricing.IsFree,
				Currency:       fm.Pricing.Currency,
			},
			ContextLength:      fm.ContextLength,
			Capabilities:       fm.Capabilities,
			CompatibilityScore: fm.CompatibilityScore,
			Description:        fm.Description,
		})
	}
	Sort(models)
	fallbackModels = models
}
