// Package openai adapts the OpenAI APIs to the [ai.Provider] contract.
//
// Text generation uses the /v1/responses endpoint. It is the only adapter
// able to resume a conversation from a previous response id
// ([memory.Continuation]). The adapter also covers image generation and
// edits, text-to-speech and speech-to-text ([ai.Transcriber]).
//
// [New] reads OPENAI_API_KEY and OPENAI_API_BASE_URL from the environment and
// registers the image_generator tool, which lets a text model return an
// image instead of text.
package openai
