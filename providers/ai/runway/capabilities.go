package runway

import "github.com/leofalp/aimux/providers/ai"

const ModelGen2 = "gen2"

// models is the Runway catalog. Generations are billed in credits, so the
// model has no token pricing.
var models = ai.Catalog{
	{Provider: ProviderName, ID: ModelGen2, Capabilities: ai.Capabilities(ai.CapabilityVideo)},
}
