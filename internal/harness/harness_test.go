package harness

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/leofalp/aimux/core/cost"
	"github.com/leofalp/aimux/core/dispatch"
	"github.com/leofalp/aimux/providers/ai"
	"github.com/leofalp/aimux/providers/ai/elevenlabs"
	"github.com/leofalp/aimux/providers/memory"
	"github.com/leofalp/aimux/providers/memory/inmemory"
)

// echoProvider answers text requests with the number of turns it was sent.
type echoProvider struct {
	ai.Unsupported
	continuation bool
	conversation []memory.Ref
}

func (p *echoProvider) Name() string               { return p.Provider }
func (p *echoProvider) SupportsContinuation() bool { return p.continuation }

func (p *echoProvider) Models() ai.Catalog {
	return ai.Catalog{
		{
			Provider:      p.Provider,
			ID:            "echo-1",
			Capabilities:  ai.Capabilities(ai.CapabilityText, ai.CapabilityImage),
			SupportsTools: true,
		},
	}
}

func (p *echoProvider) GenerateText(_ context.Context, request ai.TextRequest) ai.TextResult {
	p.conversation = append(p.conversation, request.Conversation)
	result := ai.TextResult{
		Model: request.Model,
		Text:  "echo: " + request.Prompt,
		Usage: cost.NewUsage(3, 2, 0),
		Cost:  cost.Record{TotalCostUSD: 0.5, Known: true},
	}
	switch ref := request.Conversation.(type) {
	case memory.History:
		result.Conversation = ref.With(memory.UserMessage(request.Prompt), memory.AssistantMessage(result.Text))
	case memory.Continuation:
		result.Conversation = memory.Continuation{ResponseID: "resp_" + request.Prompt[:2]}
	}
	return result
}

func (p *echoProvider) GenerateImage(context.Context, ai.ImageRequest) ai.ImageResult {
	return ai.FailImage(errors.New("quota exceeded"))
}

func newHarness(t *testing.T, providers ...ai.Provider) (*Harness, string) {
	t.Helper()
	d := dispatch.New(nil, nil)
	d.Register(providers...)
	out := t.TempDir()
	return New(d, WithOutputDir(out)), out
}

func TestParseFeature(t *testing.T) {
	tests := []struct {
		in      string
		want    Feature
		wantErr bool
	}{
		{in: "text", want: FeatureText},
		{in: " TTS ", want: FeatureTTS},
		{in: "conversation_state", want: FeatureConversationState},
		{in: "", want: FeatureAll},
		{in: "openai", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFeature(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFeature(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseFeature(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}

	if IsFeature("gemini") || !IsFeature("websearch") {
		t.Error("IsFeature should tell providers and features apart")
	}
}

func TestRun_Text(t *testing.T) {
	h, out := newHarness(t, &echoProvider{Unsupported: ai.Unsupported{Provider: "echo"}})

	reports, err := h.Run(context.Background(), FeatureText)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if len(reports) != 1 {
		t.Fatalf("got %d reports, want 1", len(reports))
	}
	r := reports[0]
	if r.Err != nil || r.Provider != "echo" || r.Model != "echo-1" || r.Feature != FeatureText {
		t.Fatalf("unexpected report: %+v", r)
	}

	data, err := os.ReadFile(filepath.Join(out, "echo", "echo-1.txt"))
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	content := string(data)
	if !strings.HasPrefix(content, "echo: "+narrationPrompt) {
		t.Errorf("text missing from output: %q", content)
	}
	if !strings.Contains(content, `"total_tokens": 5`) || !strings.Contains(content, `"total_cost_usd": 0.5`) {
		t.Errorf("usage or cost missing from output: %q", content)
	}
}

func TestRun_FailureIsReported(t *testing.T) {
	h, out := newHarness(t, &echoProvider{Unsupported: ai.Unsupported{Provider: "echo"}})

	reports, err := h.Run(context.Background(), FeatureImage)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if len(reports) != 1 || reports[0].Err == nil {
		t.Fatalf("expected one failed report, got %+v", reports)
	}
	if _, err := os.Stat(filepath.Join(out, "echo", "echo-1.jpg")); !os.IsNotExist(err) {
		t.Error("no file should be written for a failed call")
	}
}

func TestRun_Conversation(t *testing.T) {
	p := &echoProvider{Unsupported: ai.Unsupported{Provider: "echo"}}
	h, out := newHarness(t, p)

	reports, err := h.Run(context.Background(), FeatureConversation)
	if err != nil || len(reports) != 1 || reports[0].Err != nil {
		t.Fatalf("Run() = %+v, %v", reports, err)
	}
	if reports[0].Usage.TotalTokens != 10 || reports[0].Cost.TotalCostUSD != 1.0 {
		t.Errorf("usage/cost should sum both turns: %+v %+v", reports[0].Usage, reports[0].Cost)
	}

	second, ok := p.conversation[1].(memory.History)
	if !ok || second.Len() != 2 {
		t.Fatalf("second call should carry the first exchange, got %#v", p.conversation[1])
	}
	if _, err := os.Stat(filepath.Join(out, "echo", "echo-1.conversation.txt")); err != nil {
		t.Errorf("conversation output missing: %v", err)
	}
}

func TestRun_ConversationState(t *testing.T) {
	tests := []struct {
		name         string
		continuation bool
		want         memory.Ref
	}{
		{name: "history", continuation: false, want: memory.History{}},
		{name: "continuation", continuation: true, want: memory.Continuation{ResponseID: "resp_My"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &echoProvider{Unsupported: ai.Unsupported{Provider: "echo"}, continuation: tt.continuation}
			d := dispatch.New(nil, nil)
			d.Register(p)
			store := inmemory.New()
			h := New(d, WithOutputDir(t.TempDir()), WithStore(store))

			reports, err := h.Run(context.Background(), FeatureConversationState)
			if err != nil || len(reports) != 1 || reports[0].Err != nil {
				t.Fatalf("Run() = %+v, %v", reports, err)
			}
			if len(p.conversation) != 2 {
				t.Fatalf("expected 2 calls, got %d", len(p.conversation))
			}

			switch want := tt.want.(type) {
			case memory.Continuation:
				got, ok := p.conversation[1].(memory.Continuation)
				if !ok || got != want {
					t.Errorf("second call ref = %#v, want %#v", p.conversation[1], want)
				}
			case memory.History:
				got, ok := p.conversation[1].(memory.History)
				if !ok || got.Len() != 2 {
					t.Errorf("second call ref = %#v, want a 2-message history", p.conversation[1])
				}
			}
			if store.Len() != 0 {
				t.Error("session should be cleared after the run")
			}
		})
	}
}

func TestRun_UnknownProvider(t *testing.T) {
	h, _ := newHarness(t, &echoProvider{Unsupported: ai.Unsupported{Provider: "echo"}})
	if _, err := h.Run(context.Background(), FeatureText, "nope"); !errors.Is(err, dispatch.ErrUnknownProvider) {
		t.Errorf("Run() error = %v, want ErrUnknownProvider", err)
	}
}

func TestRun_TTSWithAdapter(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "audio/mpeg")
		_, _ = w.Write([]byte("ID3-audio"))
	}))
	defer server.Close()

	d := dispatch.New(nil, nil)
	d.Register(elevenlabs.New(d.Env()).WithAPIKey("test-key").WithBaseURL(server.URL))
	out := t.TempDir()
	h := New(d, WithOutputDir(out))

	reports, err := h.Run(context.Background(), FeatureTTS, elevenlabs.ProviderName)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if len(reports) != len(elevenlabs.New(d.Env()).Models()) {
		t.Fatalf("expected one report per model, got %d", len(reports))
	}
	for _, r := range reports {
		if r.Err != nil {
			t.Fatalf("%s failed: %v", r.Model, r.Err)
		}
		data, err := os.ReadFile(filepath.Join(out, elevenlabs.ProviderName, r.Model+".mp3"))
		if err != nil {
			t.Fatalf("reading %s: %v", r.Model, err)
		}
		if string(data) != "ID3-audio" {
			t.Errorf("%s audio = %q", r.Model, data)
		}
	}
}
