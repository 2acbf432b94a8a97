package elevenlabs

import "github.com/leofalp/aimux/providers/ai"

const (
	ModelFlashV2        = "eleven_flash_v2"        // Fastest, half the price
	ModelMultilingualV2 = "eleven_multilingual_v2" // Multilingual
)

var models = ai.Catalog{
	{Provider: ProviderName, ID: ModelFlashV2, Capabilities: ai.Capabilities(ai.CapabilityTTS)},
	{Provider: ProviderName, ID: ModelMultilingualV2, Capabilities: ai.Capabilities(ai.CapabilityTTS)},
}

// Voice is a voice from the built-in catalogue or the account's voice list.
type Voice struct {
	ID          string            `json:"voice_id"`
	Name        string            `json:"name"`
	Category    string            `json:"category,omitempty"`
	Description string            `json:"description,omitempty"`
	Labels      map[string]string `json:"labels,omitempty"`
}

// DefaultVoices are the voices addressable by name. The first one is used
// when a request names no voice.
var DefaultVoices = []Voice{
	{ID: "uyVNoMrnUku1dZyVEXwD", Name: "Anna Kim", Description: "Friendly and clear, suited to tutorials"},
	{ID: "v1jVu1Ky28piIPEJqRrm", Name: "KKC RADIO", Description: "Friendly and clear, suited to tutorials"},
	{ID: "4JJwo477JUAx3HV0T7n7", Name: "YohanKoo", Description: "Friendly and clear, suited to tutorials"},
}

// voiceID resolves a voice name from DefaultVoices. Empty selects the
// default voice and anything else is taken as a voice id.
func voiceID(voice string) string {
	if voice == "" {
		return DefaultVoices[0].ID
	}
	for _, v := range DefaultVoices {
		if v.Name == voice {
			return v.ID
		}
	}
	return voice
}
