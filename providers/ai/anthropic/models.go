package anthropic

import (
	"encoding/json"

	"github.com/leofalp/aimux/internal/jsonschema"
)

/*
	ANTHROPIC MESSAGES API - REQUEST TYPES
*/

// anthropicRequest represents the request body for Anthropic's Messages API.
type anthropicRequest struct {
	Model       string             `json:"model"`
	Messages    []anthropicMessage `json:"messages"`
	System      string             `json:"system,omitempty"`
	MaxTokens   int                `json:"max_tokens"` // Required by Anthropic on every request
	Temperature *float64           `json:"temperature,omitempty"`
	Tools       []anthropicTool    `json:"tools,omitempty"`
}

// anthropicMessage represents a single message in the conversation.
// Content holds anthropicContentBlock values for turns built locally and
// responseContentBlock values for assistant turns echoed from a response.
type anthropicMessage struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content []any  `json:"content"`
}

// anthropicContentBlock is a discriminated union via the Type field:
//   - "text": Text
//   - "tool_result": ToolUseID, Content, IsError
type anthropicContentBlock struct {
	Type      string `json:"type"`
	Text      string `json:"text,omitempty"`
	ToolUseID string `json:"tool_use_id,omitempty"`
	Content   string `json:"content,omitempty"`
	IsError   bool   `json:"is_error,omitempty"`
}

// anthropicTool describes either a client tool (Name, Description,
// InputSchema) or a server tool (Type, Name, MaxUses).
type anthropicTool struct {
	Type        string             `json:"type,omitempty"` // Server tools only, e.g. "web_search_20250305"
	Name        string             `json:"name"`
	Description string             `json:"description,omitempty"`
	InputSchema *jsonschema.Schema `json:"input_schema,omitempty"` // Required for client tools
	MaxUses     int                `json:"max_uses,omitempty"`
}

/*
	ANTHROPIC MESSAGES API - RESPONSE TYPES
*/

// anthropicResponse represents the response from Anthropic's Messages API.
type anthropicResponse struct {
	ID         string                 `json:"id"`
	Type       string                 `json:"type"` // "message" or "error"
	Role       string                 `json:"role"` // "assistant"
	Content    []responseContentBlock `json:"content"`
	Model      string                 `json:"model"`
	StopReason string                 `json:"stop_reason"` // "end_turn", "tool_use", "max_tokens", ...
	Usage      anthropicUsage         `json:"usage"`
	Error      *anthropicError        `json:"error,omitempty"`
}

// responseContentBlock represents a content block in the response. The
// decoded fields cover text and tool_use blocks; the original bytes are kept
// so that every block, including server tool blocks, is echoed back
// unchanged in a follow-up request.
type responseContentBlock struct {
	Type  string          `json:"type"`            // "text", "tool_use", "server_tool_use", "web_search_tool_result"
	Text  string          `json:"text,omitempty"`  // For type="text"
	ID    string          `json:"id,omitempty"`    // For type="tool_use"
	Name  string          `json:"name,omitempty"`  // For type="tool_use"
	Input json.RawMessage `json:"input,omitempty"` // For type="tool_use" (arbitrary JSON)

	raw json.RawMessage
}

// UnmarshalJSON decodes the known fields and keeps a copy of data.
func (b *responseContentBlock) UnmarshalJSON(data []byte) error {
	type plain responseContentBlock
	var decoded plain
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	*b = responseContentBlock(decoded)
	b.raw = append(json.RawMessage(nil), data...)
	return nil
}

// MarshalJSON returns the original bytes when the block was decoded from a
// response.
func (b responseContentBlock) MarshalJSON() ([]byte, error) {
	if len(b.raw) > 0 {
		return b.raw, nil
	}
	type plain responseContentBlock
	return json.Marshal(plain(b))
}

// anthropicUsage reports token consumption for a single request.
type anthropicUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

type anthropicError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}
