package openai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/leofalp/aimux/core/cost"
	"github.com/leofalp/aimux/providers/ai"
	"github.com/leofalp/aimux/providers/memory"
	"github.com/leofalp/aimux/providers/tool"
	"github.com/leofalp/aimux/providers/tool/calculator"
)

func newTestProvider(t *testing.T, handler http.HandlerFunc) (*OpenAIProvider, *tool.Registry) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	registry := tool.NewRegistry()
	registry.Add(calculator.NewCalculatorTool())
	p := New(ai.NewEnv(registry, cost.NewCalculator(1500, 1.2))).
		WithAPIKey("test-key").
		WithBaseURL(server.URL).
		WithHttpClient(server.Client())
	return p, registry
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Fatalf("failed to encode response: %v", err)
	}
}

func decodeRequest(t *testing.T, r *http.Request) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode request: %v", err)
	}
	return body
}

func messageResponse(id, text string) map[string]any {
	return map[string]any{
		"id":     id,
		"status": "completed",
		"output": []map[string]any{{
			"id":      "msg_" + id,
			"type":    "message",
			"role":    "assistant",
			"content": []map[string]any{{"type": "output_text", "text": text}},
		}},
		"usage": map[string]any{"input_tokens": 1000, "output_tokens": 500, "total_tokens": 1500},
	}
}

func TestNewWithoutEnvVariable(t *testing.T) {
	if err := os.Unsetenv("OPENAI_API_KEY"); err != nil {
		t.Fatal("failed to unset env variable: " + err.Error())
	}

	registry := tool.NewRegistry()
	p := New(ai.NewEnv(registry, nil))
	if p == nil {
		t.Fatal("expected provider to be created even without env variable")
	}
	if _, ok := registry.Lookup(ImageGeneratorTool); !ok {
		t.Error("expected image_generator to be registered")
	}

	result := p.GenerateText(context.Background(), ai.TextRequest{Prompt: "hi"})
	if !errors.Is(result.Err, ai.ErrMissingAPIKey) {
		t.Errorf("expected ErrMissingAPIKey, got %v", result.Err)
	}
}

func TestGenerateText(t *testing.T) {
	p, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != responsesEndpoint {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("expected Authorization header 'Bearer test-key', got %s", r.Header.Get("Authorization"))
		}

		body := decodeRequest(t, r)
		if body["model"] != ModelGPT41 {
			t.Errorf("expected default model, got %v", body["model"])
		}
		input := body["input"].([]any)
		if len(input) != 2 {
			t.Fatalf("expected developer and user turns, got %v", input)
		}
		if input[0].(map[string]any)["role"] != "developer" {
			t.Errorf("expected developer instruction first, got %v", input[0])
		}
		if _, ok := body["tools"]; ok {
			t.Error("no tools expected")
		}

		writeJSON(t, w, messageResponse("resp_1", "Paris is the capital of France."))
	})

	result := p.GenerateText(context.Background(), ai.TextRequest{
		Prompt:       "What is the capital of France?",
		Instructions: "Answer briefly.",
	})
	if result.Err != nil {
		t.Fatalf("unexpected error: %v", result.Err)
	}
	if result.Text != "Paris is the capital of France." {
		t.Errorf("unexpected text %q", result.Text)
	}
	if result.ResponseID != "resp_1" {
		t.Errorf("unexpected response id %q", result.ResponseID)
	}
	if result.Usage.TotalTokens != 1500 {
		t.Errorf("unexpected usage %+v", result.Usage)
	}
	if !result.Cost.Known || result.Cost.TotalCostUSD < 0.00599 || result.Cost.TotalCostUSD > 0.00601 {
		t.Errorf("unexpected cost %+v", result.Cost)
	}
}

func TestGenerateText_CalculatorRoundTrip(t *testing.T) {
	calls := 0
	p, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		body := decodeRequest(t, r)

		switch calls {
		case 1:
			tools := body["tools"].([]any)
			if len(tools) != 1 || tools[0].(map[string]any)["name"] != calculator.Name {
				t.Errorf("expected calculator tool, got %v", tools)
			}
			writeJSON(t, w, map[string]any{
				"id":     "resp_1",
				"status": "completed",
				"output": []map[string]any{{
					"id":        "fc_1",
					"type":      "function_call",
					"status":    "completed",
					"name":      calculator.Name,
					"call_id":   "call_42",
					"arguments": `{"expression":"(2+3)*4"}`,
				}},
				"usage": map[string]any{"input_tokens": 1000, "output_tokens": 500, "total_tokens": 1500},
			})
		case 2:
			input := body["input"].([]any)
			if len(input) != 3 {
				t.Fatalf("expected user turn, function call and output, got %v", input)
			}
			call := input[1].(map[string]any)
			if call["type"] != "function_call" || call["call_id"] != "call_42" {
				t.Errorf("function call not echoed verbatim: %v", call)
			}
			output := input[2].(map[string]any)
			if output["type"] != "function_call_output" || output["call_id"] != "call_42" || output["output"] != "20" {
				t.Errorf("unexpected tool output item: %v", output)
			}
			writeJSON(t, w, messageResponse("resp_2", "(2+3)*4 = 20"))
		default:
			t.Errorf("unexpected call %d", calls)
		}
	})

	result := p.GenerateText(context.Background(), ai.TextRequest{
		Prompt:    "Compute (2+3)*4",
		UserTools: []string{calculator.Name},
	})
	if result.Err != nil {
		t.Fatalf("unexpected error: %v", result.Err)
	}
	if len(result.Tools) != 1 || result.Tools[0] != calculator.Name {
		t.Errorf("expected calculator in tools, got %v", result.Tools)
	}
	if result.Text != "(2+3)*4 = 20" {
		t.Errorf("unexpected text %q", result.Text)
	}
	if calls != 2 {
		t.Errorf("expected two requests, got %d", calls)
	}
}

func TestGenerateText_WebSearch(t *testing.T) {
	p, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		body := decodeRequest(t, r)
		tools := body["tools"].([]any)
		if tools[0].(map[string]any)["type"] != webSearchTool {
			t.Errorf("expected web_search_preview tool, got %v", tools)
		}
		choice, _ := body["tool_choice"].(map[string]any)
		if choice["type"] != webSearchTool {
			t.Errorf("expected forced tool choice, got %v", body["tool_choice"])
		}
		writeJSON(t, w, messageResponse("resp_ws", "It is sunny."))
	})

	result := p.GenerateText(context.Background(), ai.TextRequest{
		Prompt:      "Weather in Seoul?",
		SystemTools: []string{ai.SystemToolWebSearch},
	})
	if result.Err != nil || result.Text != "It is sunny." {
		t.Errorf("unexpected result %+v", result)
	}
}

func TestGenerateText_Continuation(t *testing.T) {
	p, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		body := decodeRequest(t, r)
		if body["previous_response_id"] != "resp_1" {
			t.Errorf("expected previous_response_id resp_1, got %v", body["previous_response_id"])
		}
		if input := body["input"].([]any); len(input) != 1 {
			t.Errorf("expected only the new user turn, got %v", input)
		}
		writeJSON(t, w, messageResponse("resp_2", "Your name is Kim."))
	})

	result := p.GenerateText(context.Background(), ai.TextRequest{
		Prompt:       "What is my name?",
		Conversation: memory.Continuation{ResponseID: "resp_1"},
	})
	next, ok := result.Conversation.(memory.Continuation)
	if !ok || next.ResponseID != "resp_2" {
		t.Errorf("expected continuation resp_2, got %#v", result.Conversation)
	}
}

func TestGenerateText_History(t *testing.T) {
	p, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		body := decodeRequest(t, r)
		input := body["input"].([]any)
		if len(input) != 3 {
			t.Fatalf("expected two prior turns and the prompt, got %v", input)
		}
		if input[1].(map[string]any)["role"] != "assistant" {
			t.Errorf("unexpected role order %v", input)
		}
		writeJSON(t, w, messageResponse("resp_3", "Kim."))
	})

	history := memory.NewHistory(memory.UserMessage("I am Kim."), memory.AssistantMessage("Hello Kim."))
	result := p.GenerateText(context.Background(), ai.TextRequest{Prompt: "Who am I?", Conversation: history})
	updated, ok := result.Conversation.(memory.History)
	if !ok || updated.Len() != 4 {
		t.Errorf("expected four messages, got %#v", result.Conversation)
	}
}

func TestGenerateText_ProviderError(t *testing.T) {
	p, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"boom"}}`))
	})

	result := p.GenerateText(context.Background(), ai.TextRequest{Prompt: "hi"})
	if !errors.Is(result.Err, ai.ErrProviderCall) {
		t.Fatalf("expected ErrProviderCall, got %v", result.Err)
	}
	if result.Text != "" || result.Error == "" {
		t.Errorf("expected zeroed error result, got %+v", result)
	}
}

func imageHandler(t *testing.T, image []byte) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]any{
			"created": 1,
			"data":    []map[string]any{{"b64_json": base64.StdEncoding.EncodeToString(image)}},
			"usage":   map[string]any{"input_tokens": 10, "output_tokens": 1000, "total_tokens": 1010},
		})
	}
}

func TestGenerateImage(t *testing.T) {
	png := []byte("fake-png")
	p, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != imageGenerationsEndpoint {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		body := decodeRequest(t, r)
		if body["size"] != "1024x1536" || body["model"] != ModelGPTImage1 {
			t.Errorf("unexpected request %v", body)
		}
		imageHandler(t, png)(w, r)
	})

	result := p.GenerateImage(context.Background(), ai.ImageRequest{Prompt: "a cat", Width: 1024, Height: 1536})
	if result.Err != nil {
		t.Fatalf("unexpected error: %v", result.Err)
	}
	if string(result.Image) != "fake-png" || result.ImageType != "image/png" {
		t.Errorf("unexpected image %q (%s)", result.Image, result.ImageType)
	}
	if result.Usage.OutputTokens != 1000 || !result.Cost.Known {
		t.Errorf("unexpected usage/cost %+v %+v", result.Usage, result.Cost)
	}
}

func TestGenerateText_ImageGeneratorShortCircuit(t *testing.T) {
	responses := 0
	p, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case responsesEndpoint:
			responses++
			writeJSON(t, w, map[string]any{
				"id":     "resp_img",
				"status": "completed",
				"output": []map[string]any{{
					"type":      "function_call",
					"status":    "completed",
					"name":      ImageGeneratorTool,
					"call_id":   "call_img",
					"arguments": `{"prompt":"a red fox"}`,
				}},
				"usage": map[string]any{"input_tokens": 1000, "output_tokens": 500, "total_tokens": 1500},
			})
		case imageGenerationsEndpoint:
			imageHandler(t, []byte("fox"))(w, r)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})

	result := p.GenerateText(context.Background(), ai.TextRequest{
		Prompt:    "Draw a red fox",
		UserTools: []string{ImageGeneratorTool},
	})
	if result.Err != nil {
		t.Fatalf("unexpected error: %v", result.Err)
	}
	if responses != 1 {
		t.Errorf("expected no follow-up call, got %d responses calls", responses)
	}
	if result.Image == nil || string(result.Image.Data) != "fox" {
		t.Fatalf("expected image artifact, got %+v", result.Image)
	}
	// text call: 1000*2e-6 + 500*8e-6 = 0.006; image: 10*5e-6 + 1000*4e-5 = 0.04005
	if result.Cost.TotalCostUSD < 0.04604 || result.Cost.TotalCostUSD > 0.04606 {
		t.Errorf("expected combined cost, got %f", result.Cost.TotalCostUSD)
	}
}

func TestEditImage(t *testing.T) {
	p, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != imageEditsEndpoint {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("expected multipart body: %v", err)
		}
		if r.FormValue("prompt") != "add a hat" || r.FormValue("model") != ModelGPTImage1 {
			t.Errorf("unexpected fields %v", r.MultipartForm.Value)
		}
		file, header, err := r.FormFile("image")
		if err != nil {
			t.Fatalf("expected image file: %v", err)
		}
		defer file.Close()
		data, _ := io.ReadAll(file)
		if string(data) != "source" || header.Header.Get("Content-Type") != "image/jpeg" {
			t.Errorf("unexpected file %q %s", data, header.Header.Get("Content-Type"))
		}
		imageHandler(t, []byte("edited"))(w, r)
	})

	result := p.EditImage(context.Background(), ai.EditImageRequest{Prompt: "add a hat", Image: []byte("source"), MimeType: "image/jpeg"})
	if result.Err != nil || string(result.Image) != "edited" {
		t.Errorf("unexpected result %+v", result)
	}

	empty := p.EditImage(context.Background(), ai.EditImageRequest{Prompt: "x"})
	if !errors.Is(empty.Err, ai.ErrInvalidRequest) {
		t.Errorf("expected ErrInvalidRequest, got %v", empty.Err)
	}
}

func TestGenerateTTS(t *testing.T) {
	p, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		body := decodeRequest(t, r)
		if body["voice"] != defaultVoice || body["response_format"] != "mp3" || body["input"] != "hello" {
			t.Errorf("unexpected speech request %v", body)
		}
		w.Header().Set("Content-Type", "audio/mpeg")
		_, _ = w.Write([]byte("ID3audio"))
	})

	result := p.GenerateTTS(context.Background(), ai.TTSRequest{Prompt: "hello"})
	if result.Err != nil {
		t.Fatalf("unexpected error: %v", result.Err)
	}
	if string(result.Audio) != "ID3audio" || result.Format != "mp3" || result.Model != ModelGPT4oMiniTTS {
		t.Errorf("unexpected result %+v", result)
	}
}

func TestTranscribe(t *testing.T) {
	p, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("expected multipart body: %v", err)
		}
		if r.FormValue("model") != ModelWhisper1 || r.FormValue("language") != "ko" {
			t.Errorf("unexpected fields %v", r.MultipartForm.Value)
		}
		writeJSON(t, w, map[string]any{"text": "안녕하세요"})
	})

	var transcriber ai.Transcriber = p
	result := transcriber.Transcribe(context.Background(), ai.TranscriptionRequest{Audio: []byte("mp3"), Language: "ko"})
	if result.Err != nil || result.Text != "안녕하세요" {
		t.Errorf("unexpected result %+v", result)
	}
	if result.Cost.Known {
		t.Error("whisper has no token price, expected unknown cost")
	}
}

func TestCapabilityGating(t *testing.T) {
	p, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("no request expected, got %s", r.URL.Path)
	})

	video := p.GenerateVideo(context.Background(), ai.VideoRequest{Prompt: "x"})
	if !errors.Is(video.Err, ai.ErrUnsupportedCapability) {
		t.Errorf("expected ErrUnsupportedCapability for video, got %v", video.Err)
	}

	image := p.GenerateImage(context.Background(), ai.ImageRequest{Model: ModelGPT41, Prompt: "x"})
	if !errors.Is(image.Err, ai.ErrUnsupportedCapability) || image.Image != nil {
		t.Errorf("expected gating error for text model, got %+v", image)
	}
}
