package anthropic

import (
	"slices"
	"strings"

	"github.com/leofalp/aimux/core/cost"
	"github.com/leofalp/aimux/providers/ai"
)

const (
	ModelClaudeSonnet4 = "claude-sonnet-4-0"
	ModelClaudeOpus4   = "claude-opus-4-0"
)

// models is the Anthropic catalog; the adapter is text-only.
var models = ai.Catalog{
	{
		Provider:          ProviderName,
		ID:                ModelClaudeSonnet4,
		Capabilities:      ai.Capabilities(ai.CapabilityText),
		Pricing:           cost.PerMillion(3.0, 15.0),
		SupportsTools:     true,
		SupportsWebSearch: true,
	},
	{
		Provider:          ProviderName,
		ID:                ModelClaudeOpus4,
		Capabilities:      ai.Capabilities(ai.CapabilityText),
		Pricing:           cost.PerMillion(15.0, 75.0),
		SupportsTools:     true,
		SupportsWebSearch: true,
	},
}

// betaHeaderValue returns the comma-joined anthropic-beta header value, with
// duplicates removed. It returns an empty string when no beta features are
// configured so the header is omitted.
func betaHeaderValue(features []string) string {
	unique := make([]string, 0, len(features))
	for _, feature := range features {
		if feature != "" && !slices.Contains(unique, feature) {
			unique = append(unique, feature)
		}
	}
	return strings.Join(unique, ",")
}
