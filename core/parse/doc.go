// Package parse decodes the argument payloads that language models attach to
// tool invocations.
//
// Arguments arrive as a JSON string (OpenAI, Gemini after encoding) or as an
// already structured object (Anthropic). Either way they end up as a
// map[string]any handed to the tool handler. [Arguments] is lenient: invalid
// JSON is repaired with jsonrepair before giving up. [Into] converts the map
// into a typed input struct.
package parse
