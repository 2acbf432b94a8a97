// Package ai defines the provider-agnostic contract implemented by every
// generative-AI adapter (OpenAI, Anthropic, Gemini, Stability, Runway,
// ElevenLabs).
//
// A [Provider] exposes one method per capability (text, image, speech,
// video) and reports failures inside its result types instead of returning
// Go errors. Models are described by [ModelDescriptor] values grouped in a
// [Catalog], each carrying a [CapabilitySet] and an optional pricing.
//
// Text adapters only implement a [Dialect]: the translation between
// [TextRequest] and their wire format, and between the wire response and the
// normalized [Outcome]. [RunText] drives the dialect and owns the tool round
// trip, so that logic is written once for every provider.
package ai
