package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/leofalp/aimux/core/cost"
	"github.com/leofalp/aimux/providers/ai"
	"github.com/leofalp/aimux/providers/memory"
	"github.com/leofalp/aimux/providers/tool"
	"github.com/leofalp/aimux/providers/tool/calculator"
)

func newTestProvider(t *testing.T, handler http.HandlerFunc) *AnthropicProvider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	registry := tool.NewRegistry()
	registry.Add(calculator.NewCalculatorTool())
	return New(ai.NewEnv(registry, cost.NewCalculator(1500, 1.2))).
		WithAPIKey("test-api-key").
		WithBaseURL(server.URL).
		WithHttpClient(server.Client())
}

func decodeRequest(t *testing.T, r *http.Request) anthropicTestRequest {
	t.Helper()
	var body anthropicTestRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode request: %v", err)
	}
	return body
}

// anthropicTestRequest mirrors the wire request with generic content so tests
// can inspect echoed blocks.
type anthropicTestRequest struct {
	Model     string `json:"model"`
	System    string `json:"system"`
	MaxTokens int    `json:"max_tokens"`
	Messages  []struct {
		Role    string           `json:"role"`
		Content []map[string]any `json:"content"`
	} `json:"messages"`
	Tools []map[string]any `json:"tools"`
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Fatalf("failed to encode response: %v", err)
	}
}

func textResponse(text string) map[string]any {
	return map[string]any{
		"id":          "msg_1",
		"type":        "message",
		"role":        "assistant",
		"model":       ModelClaudeSonnet4,
		"stop_reason": "end_turn",
		"content":     []map[string]any{{"type": "text", "text": text}},
		"usage":       map[string]any{"input_tokens": 1000, "output_tokens": 500},
	}
}

// TestNew verifies that New() returns a non-nil provider with the default base URL.
func TestNew(t *testing.T) {
	provider := New(ai.Env{})
	if provider == nil {
		t.Fatal("New() returned nil")
	}
	if provider.baseURL != defaultBaseURL {
		t.Errorf("expected baseURL %q, got %q", defaultBaseURL, provider.baseURL)
	}
	if provider.SupportsContinuation() {
		t.Error("anthropic must not claim continuation support")
	}
}

// TestBuildHeaders verifies authentication, version and beta headers.
func TestBuildHeaders(t *testing.T) {
	provider := New(ai.Env{}).WithAPIKey("key").WithBetaFeatures("a", "b", "a")

	headers := map[string]string{}
	for _, h := range provider.buildHeaders() {
		headers[h.Key] = h.Value
	}
	if headers["x-api-key"] != "key" || headers["anthropic-version"] != anthropicVersion {
		t.Errorf("unexpected headers %v", headers)
	}
	if headers["anthropic-beta"] != "a,b" {
		t.Errorf("expected deduplicated beta header, got %q", headers["anthropic-beta"])
	}

	plain := New(ai.Env{}).WithAPIKey("key")
	for _, h := range plain.buildHeaders() {
		if h.Key == "anthropic-beta" {
			t.Error("beta header must be omitted without beta features")
		}
	}
}

func TestGenerateText(t *testing.T) {
	provider := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != messagesEndpoint {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("x-api-key") != "test-api-key" {
			t.Errorf("expected x-api-key header, got %q", r.Header.Get("x-api-key"))
		}
		if r.Header.Get("Authorization") != "" {
			t.Error("Anthropic must not receive a Bearer token")
		}

		body := decodeRequest(t, r)
		if body.Model != ModelClaudeSonnet4 || body.MaxTokens != defaultMaxTokens {
			t.Errorf("unexpected model/max_tokens %s %d", body.Model, body.MaxTokens)
		}
		if body.System != "Be brief." {
			t.Errorf("expected system prompt, got %q", body.System)
		}
		writeJSON(t, w, textResponse("Hello!"))
	})

	result := provider.GenerateText(context.Background(), ai.TextRequest{Prompt: "Hi", Instructions: "Be brief."})
	if result.Err != nil {
		t.Fatalf("unexpected error: %v", result.Err)
	}
	if result.Text != "Hello!" || result.Model != ModelClaudeSonnet4 {
		t.Errorf("unexpected result %+v", result)
	}
	if result.Usage.TotalTokens != 1500 {
		t.Errorf("expected derived total tokens, got %+v", result.Usage)
	}
	// 1000 * 3e-6 + 500 * 15e-6 = 0.0105
	if result.Cost.TotalCostUSD < 0.01049 || result.Cost.TotalCostUSD > 0.01051 {
		t.Errorf("unexpected cost %+v", result.Cost)
	}
}

func TestGenerateText_ToolUseRoundTrip(t *testing.T) {
	calls := 0
	provider := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		body := decodeRequest(t, r)

		switch calls {
		case 1:
			if len(body.Tools) != 1 || body.Tools[0]["name"] != calculator.Name || body.Tools[0]["input_schema"] == nil {
				t.Errorf("expected calculator tool with input_schema, got %v", body.Tools)
			}
			writeJSON(t, w, map[string]any{
				"id":          "msg_1",
				"type":        "message",
				"role":        "assistant",
				"stop_reason": "tool_use",
				"content": []map[string]any{
					{"type": "text", "text": "Let me calculate. "},
					{"type": "tool_use", "id": "toolu_1", "name": calculator.Name, "input": map[string]any{"expression": "6*7"}},
				},
				"usage": map[string]any{"input_tokens": 100, "output_tokens": 50},
			})
		case 2:
			if len(body.Messages) != 3 {
				t.Fatalf("expected user, assistant and tool result turns, got %d", len(body.Messages))
			}
			assistant := body.Messages[1]
			if assistant.Role != "assistant" || len(assistant.Content) != 2 || assistant.Content[1]["id"] != "toolu_1" {
				t.Errorf("assistant turn not echoed verbatim: %+v", assistant)
			}
			result := body.Messages[2]
			if result.Role != "user" || result.Content[0]["type"] != "tool_result" ||
				result.Content[0]["tool_use_id"] != "toolu_1" || result.Content[0]["content"] != "42" {
				t.Errorf("unexpected tool result turn: %+v", result)
			}
			writeJSON(t, w, textResponse("The answer is 42."))
		default:
			t.Errorf("unexpected call %d", calls)
		}
	})

	result := provider.GenerateText(context.Background(), ai.TextRequest{
		Prompt:    "What is 6*7?",
		UserTools: []string{calculator.Name},
	})
	if result.Err != nil {
		t.Fatalf("unexpected error: %v", result.Err)
	}
	if result.Text != "Let me calculate. The answer is 42." {
		t.Errorf("unexpected text %q", result.Text)
	}
	if len(result.Tools) != 1 || result.Tools[0] != calculator.Name {
		t.Errorf("unexpected tools %v", result.Tools)
	}
	if result.Usage.InputTokens != 100 {
		t.Errorf("usage must come from the first call, got %+v", result.Usage)
	}
}

func TestGenerateText_WebSearchServerTool(t *testing.T) {
	provider := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		body := decodeRequest(t, r)
		if len(body.Tools) != 1 || body.Tools[0]["type"] != webSearchToolType || body.Tools[0]["name"] != ai.SystemToolWebSearch {
			t.Errorf("expected web search server tool, got %v", body.Tools)
		}
		writeJSON(t, w, map[string]any{
			"id":          "msg_ws",
			"stop_reason": "end_turn",
			"content": []map[string]any{
				{"type": "server_tool_use", "id": "srvtoolu_1", "name": "web_search", "input": map[string]any{"query": "seoul weather"}},
				{"type": "web_search_tool_result", "tool_use_id": "srvtoolu_1", "content": []any{}},
				{"type": "text", "text": "Sunny."},
			},
			"usage": map[string]any{"input_tokens": 10, "output_tokens": 5},
		})
	})

	result := provider.GenerateText(context.Background(), ai.TextRequest{
		Prompt:      "Weather in Seoul?",
		SystemTools: []string{ai.SystemToolWebSearch},
	})
	if result.Err != nil || result.Text != "Sunny." || len(result.Tools) != 0 {
		t.Errorf("unexpected result %+v", result)
	}
}

func TestGenerateText_HistoryAndDowngrade(t *testing.T) {
	provider := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		body := decodeRequest(t, r)
		if len(body.Messages) != 1 {
			t.Errorf("downgraded continuation must start a fresh history, got %d messages", len(body.Messages))
		}
		writeJSON(t, w, textResponse("ok"))
	})

	result := provider.GenerateText(context.Background(), ai.TextRequest{
		Prompt:       "hello",
		Conversation: memory.Continuation{ResponseID: "resp_x"},
	})
	if result.Err != nil {
		t.Fatalf("unexpected error: %v", result.Err)
	}
	history, ok := result.Conversation.(memory.History)
	if !ok || history.Len() != 2 {
		t.Errorf("expected two-message history, got %#v", result.Conversation)
	}
}

func TestGenerateText_SystemTurnsFolded(t *testing.T) {
	provider := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		body := decodeRequest(t, r)
		if body.System != "rule\n\nremember" {
			t.Errorf("unexpected system %q", body.System)
		}
		for _, m := range body.Messages {
			if m.Role == "system" {
				t.Error("system role must not be sent as a message")
			}
		}
		writeJSON(t, w, textResponse("ok"))
	})

	history := memory.NewHistory(memory.Message{Role: memory.RoleSystem, Content: "remember"})
	provider.GenerateText(context.Background(), ai.TextRequest{Prompt: "x", Instructions: "rule", Conversation: history})
}

func TestGenerateText_Errors(t *testing.T) {
	provider := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"rate_limit_error","message":"slow down"}}`))
	})

	result := provider.GenerateText(context.Background(), ai.TextRequest{Prompt: "x"})
	if !errors.Is(result.Err, ai.ErrProviderCall) {
		t.Errorf("expected ErrProviderCall, got %v", result.Err)
	}

	noKey := New(ai.Env{}).WithAPIKey("")
	result = noKey.GenerateText(context.Background(), ai.TextRequest{Prompt: "x"})
	if !errors.Is(result.Err, ai.ErrMissingAPIKey) {
		t.Errorf("expected ErrMissingAPIKey, got %v", result.Err)
	}
}

func TestUnsupportedCapabilities(t *testing.T) {
	provider := New(ai.Env{})
	ctx := context.Background()

	if res := provider.GenerateImage(ctx, ai.ImageRequest{Prompt: "x"}); !errors.Is(res.Err, ai.ErrUnsupportedCapability) {
		t.Errorf("expected unsupported image, got %v", res.Err)
	}
	if res := provider.GenerateTTS(ctx, ai.TTSRequest{Prompt: "x"}); !errors.Is(res.Err, ai.ErrUnsupportedCapability) {
		t.Errorf("expected unsupported tts, got %v", res.Err)
	}
}

func TestResponseContentBlockRoundTrip(t *testing.T) {
	in := `{"type":"web_search_tool_result","tool_use_id":"srv_1","content":[{"type":"web_search_result","url":"https://example.com"}]}`

	var block responseContentBlock
	if err := json.Unmarshal([]byte(in), &block); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	out, err := json.Marshal(block)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(out) != in {
		t.Errorf("block not preserved:\n got %s\nwant %s", out, in)
	}
}
