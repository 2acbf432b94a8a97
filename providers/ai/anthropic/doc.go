// Package anthropic implements the [ai.Provider] interface for Anthropic's
// Messages API.
//
// Only text generation is available. The request is built from the generic
// [ai.TextRequest], tool calls are detected through a "tool_use" stop reason
// and answered with tool_result blocks, and the web_search system tool is
// mapped to Anthropic's server-side web search.
//
// The primary entry point is [New], which reads ANTHROPIC_API_KEY and
// ANTHROPIC_API_BASE_URL from the environment. Use [AnthropicProvider.WithAPIKey],
// [AnthropicProvider.WithBaseURL], or [AnthropicProvider.WithHttpClient] to configure
// the provider programmatically.
package anthropic
