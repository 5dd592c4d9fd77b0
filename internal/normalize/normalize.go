package normalize

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/everstacklabs/modelfeed/internal/catalog"
)

// unavailableMarkers matches records the upstream still lists but that are
// known to be broken or retired. Excluding them is an allow-list-by-exclusion
// choice: better to hide a working model than surface a dead one.
var unavailableMarkers = regexp.MustCompile(
	`(?i)deprecated|disabled|unavailable|maintenance|unstable[-_ ]?beta|beta[-_ ]?unstable`,
)

// Record validates and normalizes one raw record. The boolean reports whether
// the record was accepted; rejected records carry no error because a partially
// malformed upstream catalog should degrade to fewer models shown, not fail
// the fetch.
func Record(raw *catalog.RawRecord) (catalog.Model, bool) {
	if strings.TrimSpace(raw.ID) == "" {
		return catalog.Model{}, false
	}
	if strings.TrimSpace(raw.Name) == "" {
		return catalog.Model{}, false
	}
	if raw.Pricing == nil {
		return catalog.Model{}, false
	}
	if unavailableMarkers.MatchString(raw.ID + " " + raw.Name + " " + raw.Description) {
		return catalog.Model{}, false
	}

	facts := Classify(raw)

	prompt := clampNonNegative(ParsePrice(raw.Pricing.Prompt))
	completion := clampNonNegative(ParsePrice(raw.Pricing.Completion))

	m := catalog.Model{
		ID:          raw.ID,
		DisplayName: displayName(raw.Name),
		Provider:    facts.Provider,
		Pricing: catalog.Pricing{
			PromptCost:     prompt,
			CompletionCost: completion,
			IsFree:         facts.IsFree,
			Currency:       "USD",
		},
		ContextLength:      facts.ContextLength,
		Capabilities:       facts.Capabilities,
		CompatibilityScore: facts.Score,
	}
	m.Description = describe(&m)
	return m, true
}

// Records normalizes a batch, silently dropping rejects.
func Records(raws []catalog.RawRecord) []catalog.Model {
	models := make([]catalog.Model, 0, len(raws))
	for i := range raws {
		if m, ok := Record(&raws[i]); ok {
			models = append(models, m)
		}
	}
	return models
}

// displayName strips the provider namespace, replaces separators with spaces,
// and capitalizes each word.
func displayName(name string) string {
	if idx := strings.Index(name, "/"); idx >= 0 {
		name = name[idx+1:]
	}
	name = strings.NewReplacer("-", " ", "_", " ").Replace(name)
	return titleCase(name)
}

// describe builds the presentational summary: price clause, context clause,
// and vision/code badges joined with a fixed separator.
func describe(m *catalog.Model) string {
	var clauses []string

	if m.Pricing.IsFree {
		clauses = append(clauses, "Free")
	} else {
		clauses = append(clauses, "Paid")
	}

	if m.ContextLength >= 1000 {
		clauses = append(clauses, fmt.Sprintf("%dK context", int(math.Round(float64(m.ContextLength)/1000))))
	} else if m.ContextLength > 0 {
		clauses = append(clauses, fmt.Sprintf("%d context", m.ContextLength))
	}

	if m.HasCapability(catalog.CapVision) {
		clauses = append(clauses, "Vision")
	}
	if m.HasCapability(catalog.CapCode) {
		clauses = append(clauses, "Code")
	}

	if len(clauses) == 0 {
		return "General purpose model"
	}
	return strings.Join(clauses, " · ")
}

func clampNonNegative(f float64) float64 {
	if f < 0 {
		return 0
	}
	return f
}
