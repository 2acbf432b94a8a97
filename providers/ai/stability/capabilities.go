package stability

import "github.com/leofalp/aimux/providers/ai"

// Engine ids accepted by the v1 generation endpoint.
const (
	ModelSD15   = "stable-diffusion-v1-5"
	ModelSD16   = "stable-diffusion-v1-6"
	ModelSD21   = "stable-diffusion-768-v2-1"
	ModelSDXL10 = "stable-diffusion-xl-1024-v1-0"

	ModelStableVideo = "stable-video-diffusion"
)

// models is the Stability catalog. Stability bills in credits, not tokens,
// so no model carries token pricing and every cost is the unknown sentinel.
var models = ai.Catalog{
	{Provider: ProviderName, ID: ModelSD15, Capabilities: ai.Capabilities(ai.CapabilityImage)},
	{Provider: ProviderName, ID: ModelSD16, Capabilities: ai.Capabilities(ai.CapabilityImage)},
	{Provider: ProviderName, ID: ModelSD21, Capabilities: ai.Capabilities(ai.CapabilityImage)},
	{Provider: ProviderName, ID: ModelSDXL10, Capabilities: ai.Capabilities(ai.CapabilityImage)},
	{Provider: ProviderName, ID: ModelStableVideo, Capabilities: ai.Capabilities(ai.CapabilityVideo)},
}
