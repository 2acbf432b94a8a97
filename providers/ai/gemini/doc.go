// Package gemini implements [ai.Provider] for Google's Gemini generative
// language API.
//
// Text generation goes through the generateContent endpoint and supports
// user functions (functionCall / functionResponse parts) and Google Search
// grounding. Function schemas are sent without additionalProperties, which
// Gemini's schema validator rejects. Image generation uses the same endpoint
// with the IMAGE response modality.
//
// The primary entry point is [New], which reads GEMINI_API_KEY and
// GEMINI_API_BASE_URL from the environment. gemini-2.5-pro is billed with
// context-length tiers: prompts above 200k tokens use the higher rate.
package gemini
