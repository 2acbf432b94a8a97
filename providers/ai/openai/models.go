package openai

import (
	"github.com/leofalp/aimux/internal/jsonschema"
)

/*
	RESPONSES API - INPUT
*/

// responseCreateRequest is the request for the `/v1/responses` endpoint.
type responseCreateRequest struct {
	Model              string         `json:"model"`
	Input              []any          `json:"input"` // inputMessage, outputItem or functionCallOutput
	Instructions       string         `json:"instructions,omitempty"`
	PreviousResponseID string         `json:"previous_response_id,omitempty"`
	Temperature        *float64       `json:"temperature,omitempty"`
	MaxOutputTokens    *int           `json:"max_output_tokens,omitempty"`
	Tools              []responseTool `json:"tools,omitempty"`
	ToolChoice         any            `json:"tool_choice,omitempty"` // "auto" or {"type": ...}
}

// inputMessage is a role/content turn of the input array.
type inputMessage struct {
	Role    string `json:"role"` // developer, user, assistant
	Content string `json:"content"`
}

// functionCallOutput binds a tool result to a function call.
type functionCallOutput struct {
	Type   string `json:"type"` // "function_call_output"
	CallID string `json:"call_id"`
	Output string `json:"output"`
}

type responseTool struct {
	Type        string             `json:"type"` // "function", "web_search_preview"
	Name        string             `json:"name,omitempty"`
	Description string             `json:"description,omitempty"`
	Parameters  *jsonschema.Schema `json:"parameters,omitempty"`
}

/*
	RESPONSES API - OUTPUT
*/

type responseCreateResponse struct {
	ID     string        `json:"id"`
	Model  string        `json:"model"`
	Output []outputItem  `json:"output"`
	Status string        `json:"status"` // "completed", "in_progress", "failed", "incomplete"
	Usage  *usageDetails `json:"usage,omitempty"`
	Error  *errorDetails `json:"error,omitempty"`
}

// outputItem is an element of the `output` array. It is also sent back
// verbatim in the follow-up request input.
type outputItem struct {
	ID      string          `json:"id,omitempty"`
	Type    string          `json:"type"`           // "message", "function_call", "web_search_call", ...
	Role    string          `json:"role,omitempty"` // "assistant"
	Content []contentOutput `json:"content,omitempty"`
	Status  string          `json:"status,omitempty"`

	// For function calls
	Name      string `json:"name,omitempty"`
	CallID    string `json:"call_id,omitempty"`
	Arguments string `json:"arguments,omitempty"` // JSON string
}

type contentOutput struct {
	Type        string       `json:"type"` // "output_text", "refusal"
	Text        string       `json:"text,omitempty"`
	Annotations []annotation `json:"annotations,omitempty"`
}

type annotation struct {
	Type  string `json:"type"` // "url_citation"
	Title string `json:"title,omitempty"`
	URL   string `json:"url,omitempty"`
}

type usageDetails struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

type errorDetails struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    string `json:"code"`
}

/*
	IMAGES API
*/

type imageGenerationRequest struct {
	Model   string `json:"model"`
	Prompt  string `json:"prompt"`
	N       int    `json:"n,omitempty"`
	Size    string `json:"size,omitempty"`    // "1024x1024" or "auto"
	Quality string `json:"quality,omitempty"` // "low", "medium", "high", "auto"
}

type imageResponse struct {
	Created int64         `json:"created"`
	Data    []imageData   `json:"data"`
	Usage   *usageDetails `json:"usage,omitempty"`
}

type imageData struct {
	B64JSON       string `json:"b64_json,omitempty"`
	URL           string `json:"url,omitempty"`
	RevisedPrompt string `json:"revised_prompt,omitempty"`
}

/*
	AUDIO API
*/

type speechRequest struct {
	Model          string `json:"model"`
	Input          string `json:"input"`
	Voice          string `json:"voice"`
	Instructions   string `json:"instructions,omitempty"`
	ResponseFormat string `json:"response_format,omitempty"` // mp3, opus, aac, flac, wav, pcm
}

type transcriptionResponse struct {
	Text  string        `json:"text"`
	Usage *usageDetails `json:"usage,omitempty"`
}
