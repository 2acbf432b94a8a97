package gemini

import (
	"github.com/leofalp/aimux/core/cost"
	"github.com/leofalp/aimux/providers/ai"
)

const (
	Model20FlashExp = "gemini-2.0-flash-exp"
	Model25Pro      = "gemini-2.5-pro"
	ModelImagen3    = "imagen-3.0-generate-001"
)

// tierThreshold is the prompt size above which gemini-2.5-pro switches to
// the long-context rate.
const tierThreshold = 200_000

// models is the Gemini catalog. The first model of each capability is its
// default.
var models = ai.Catalog{
	{
		Provider:          ProviderName,
		ID:                Model20FlashExp,
		Capabilities:      ai.Capabilities(ai.CapabilityText),
		Pricing:           cost.PerToken(0.000000075, 0.0000003),
		SupportsTools:     true,
		SupportsWebSearch: true,
	},
	{
		// Input: $1.25/M (<=200k), $2.50/M (>200k)
		// Output: $10.00/M (<=200k), $15.00/M (>200k)
		Provider:     ProviderName,
		ID:           Model25Pro,
		Capabilities: ai.Capabilities(ai.CapabilityText),
		Pricing: cost.WithTiers(cost.Threshold(tierThreshold,
			cost.RatePerMillion(1.25, 10.00),
			cost.RatePerMillion(2.50, 15.00),
		)),
		SupportsTools:     true,
		SupportsWebSearch: true,
	},
	{
		Provider:     ProviderName,
		ID:           ModelImagen3,
		Capabilities: ai.Capabilities(ai.CapabilityImage),
		Pricing:      cost.PerToken(0.00000004, 0.00000008),
	},
}
