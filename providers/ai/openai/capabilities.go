package openai

import (
	"github.com/leofalp/aimux/core/cost"
	"github.com/leofalp/aimux/providers/ai"
)

const (
	ModelGPT41        = "gpt-4.1"
	ModelGPT4o        = "gpt-4o"
	ModelGPTImage1    = "gpt-image-1"
	ModelGPT4oMiniTTS = "gpt-4o-mini-tts"
	ModelWhisper1     = "whisper-1"
)

// models is the OpenAI catalog. The first model of each capability is its
// default.
var models = ai.Catalog{
	{
		Provider:          ProviderName,
		ID:                ModelGPT41,
		Capabilities:      ai.Capabilities(ai.CapabilityText),
		Pricing:           cost.PerMillion(2.0, 8.0),
		SupportsTools:     true,
		SupportsWebSearch: true,
	},
	{
		Provider:          ProviderName,
		ID:                ModelGPT4o,
		Capabilities:      ai.Capabilities(ai.CapabilityText),
		Pricing:           cost.PerMillion(2.5, 10.0),
		SupportsTools:     true,
		SupportsWebSearch: true,
	},
	{
		Provider:     ProviderName,
		ID:           ModelGPTImage1,
		Capabilities: ai.Capabilities(ai.CapabilityImage),
		Pricing:      cost.PerMillion(5, 40),
	},
	{
		Provider:     ProviderName,
		ID:           ModelGPT4oMiniTTS,
		Capabilities: ai.Capabilities(ai.CapabilityTTS),
		Pricing:      cost.PerMillion(0.6, 12),
	},
	{
		// Billed per minute of audio, not per token.
		Provider:     ProviderName,
		ID:           ModelWhisper1,
		Capabilities: ai.Capabilities(ai.CapabilitySTT),
	},
}
