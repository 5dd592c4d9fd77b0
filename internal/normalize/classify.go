package normalize

import (
	"strconv"
	"strings"

	"github.com/everstacklabs/modelfeed/internal/catalog"
)

// DefaultProvider labels models whose id carries no recognizable namespace.
const DefaultProvider = "OpenRouter"

// Facts are the classifier's conclusions about one raw record.
type Facts struct {
	IsFree        bool
	Capabilities  []catalog.Capability
	Provider      string
	ContextLength int
	Score         int
}

// freeIDMarkers are substrings in a model id that mark a free variant.
var freeIDMarkers = []string{":free", "/free", "-free", "_free", "free-", "free_"}

// freeSynonyms are words in a name or description that advertise a free model.
// Plain substring matching means a paid model named "Freeform-7B" is flagged
// free too; the consuming UI treats the flag as a filter convenience, not a
// billing guarantee, so the over-approximation is accepted.
var freeSynonyms = []string{"free", "gratis", "complimentary", "no cost"}

// capabilityKeywords maps each vocabulary tag to the id/name/description
// keywords that imply it. Family names with a strong track record for a skill
// (llama, deepseek for code) count as that skill's keyword.
var capabilityKeywords = map[catalog.Capability][]string{
	catalog.CapVision:          {"vision", "image", "visual", "multimodal"},
	catalog.CapCode:            {"code", "coder", "coding", "codestral", "starcoder", "deepseek", "llama"},
	catalog.CapChat:            {"chat", "instruct", "turbo", "conversational"},
	catalog.CapCompletion:      {"completion", "davinci", "babbage"},
	catalog.CapFunctionCalling: {"function", "tool use", "tools"},
	catalog.CapReasoning:       {"reasoning", "think", "o1", "r1", "qwq"},
	catalog.CapMath:            {"math", "arithmetic"},
}

// providerPrefixes maps id namespaces to display labels. Order matters:
// first match wins.
var providerPrefixes = []struct {
	prefix string
	label  string
}{
	{"openai/", "OpenAI"},
	{"anthropic/", "Anthropic"},
	{"google/", "Google"},
	{"meta-llama/", "Meta"},
	{"mistralai/", "Mistral"},
	{"microsoft/", "Microsoft"},
	{"cohere/", "Cohere"},
	{"deepseek/", "DeepSeek"},
	{"qwen/", "Qwen"},
	{"x-ai/", "xAI"},
	{"nvidia/", "NVIDIA"},
	{"perplexity/", "Perplexity"},
	{"amazon/", "Amazon"},
}

// topProviderPrefixes earn the reputational score bonus.
var topProviderPrefixes = []string{
	"openai/", "anthropic/", "google/", "meta-llama/", "mistralai/",
}

// Classify derives facts about a raw record using layered heuristics. It
// never fails; unknowns resolve to conservative defaults.
func Classify(raw *catalog.RawRecord) Facts {
	var prompt, completion float64
	if raw.Pricing != nil {
		prompt = ParsePrice(raw.Pricing.Prompt)
		completion = ParsePrice(raw.Pricing.Completion)
	}

	f := Facts{
		IsFree:        isFree(raw, prompt, completion),
		Capabilities:  extractCapabilities(raw),
		Provider:      inferProvider(raw.ID),
		ContextLength: parseContextLength(raw.ContextLength),
	}
	f.Score = score(raw.ID, f.ContextLength, len(f.Capabilities))
	return f
}

// isFree combines three independent signals with OR: zero pricing, a free
// marker in the id, or a free synonym in the name/description.
func isFree(raw *catalog.RawRecord, prompt, completion float64) bool {
	if raw.Pricing != nil && prompt == 0 && completion == 0 {
		return true
	}

	id := strings.ToLower(raw.ID)
	for _, marker := range freeIDMarkers {
		if strings.Contains(id, marker) {
			return true
		}
	}

	text := strings.ToLower(raw.Name + " " + raw.Description)
	for _, word := range freeSynonyms {
		if strings.Contains(text, word) {
			return true
		}
	}

	return false
}

// extractCapabilities tests one lowercase haystack of id+name+description
// against each tag's keyword list. Output order is vocabulary order.
func extractCapabilities(raw *catalog.RawRecord) []catalog.Capability {
	haystack := strings.ToLower(raw.ID + " " + raw.Name + " " + raw.Description)

	var caps []catalog.Capability
	for _, tag := range catalog.Capabilities {
		for _, kw := range capabilityKeywords[tag] {
			if strings.Contains(haystack, kw) {
				caps = append(caps, tag)
				break
			}
		}
	}
	return caps
}

// inferProvider checks the id against the known namespace table, falls back
// to title-casing an unknown namespace, then to the host service's own label.
func inferProvider(id string) string {
	lower := strings.ToLower(id)
	for _, p := range providerPrefixes {
		if strings.HasPrefix(lower, p.prefix) {
			return p.label
		}
	}
	if idx := strings.Index(id, "/"); idx > 0 {
		return titleCase(strings.ReplaceAll(id[:idx], "-", " "))
	}
	return DefaultProvider
}

// parseContextLength accepts numbers and strings like "128k", "1.5m", or
// "131,072". Anything unusable yields the default.
func parseContextLength(v any) int {
	switch n := v.(type) {
	case float64:
		if n >= 1 {
			return int(n)
		}
	case int:
		if n >= 1 {
			return n
		}
	case string:
		s := strings.ToLower(strings.TrimSpace(n))
		s = strings.NewReplacer(",", "", "_", "", " ", "").Replace(s)
		mult := 1.0
		switch {
		case strings.HasSuffix(s, "k"):
			mult, s = 1_000, strings.TrimSuffix(s, "k")
		case strings.HasSuffix(s, "m"):
			mult, s = 1_000_000, strings.TrimSuffix(s, "m")
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil && f*mult >= 1 {
			return int(f * mult)
		}
	}
	return catalog.DefaultContextLength
}

// score is a heuristic ranking signal in [0, 100], not a correctness claim.
// Context tiers are mutually exclusive; only the highest one applies.
func score(id string, contextLength, capCount int) int {
	s := 50

	switch {
	case contextLength >= 128_000:
		s += 25
	case contextLength >= 32_000:
		s += 20
	case contextLength >= 16_000:
		s += 15
	case contextLength >= 8_000:
		s += 10
	case contextLength >= 4_000:
		s += 5
	}

	lower := strings.ToLower(id)
	for _, prefix := range topProviderPrefixes {
		if strings.HasPrefix(lower, prefix) {
			s += 15
			break
		}
	}

	capBonus := 2 * capCount
	if capBonus > 10 {
		capBonus = 10
	}
	s += capBonus

	if s > 100 {
		s = 100
	}
	if s < 0 {
		s = 0
	}
	return s
}

// titleCase capitalizes the first letter of each space-separated word.
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
