package dispatch

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/spf13/viper"

	"github.com/leofalp/aimux/core/cost"
	"github.com/leofalp/aimux/core/overview"
	"github.com/leofalp/aimux/internal/config"
	"github.com/leofalp/aimux/providers/ai"
	"github.com/leofalp/aimux/providers/observability/slogobs"
)

type fakeProvider struct {
	ai.Unsupported
	catalog ai.Catalog
	calls   int
}

func newFake(name string, modelIDs ...string) *fakeProvider {
	p := &fakeProvider{Unsupported: ai.Unsupported{Provider: name}}
	for _, id := range modelIDs {
		p.catalog = append(p.catalog, ai.ModelDescriptor{
			Provider:     name,
			ID:           id,
			Capabilities: ai.Capabilities(ai.CapabilityText),
		})
	}
	return p
}

func (p *fakeProvider) Name() string       { return p.Provider }
func (p *fakeProvider) Models() ai.Catalog { return p.catalog }

func (p *fakeProvider) GenerateText(_ context.Context, request ai.TextRequest) ai.TextResult {
	p.calls++
	return ai.TextResult{
		Model: request.Model,
		Text:  p.Provider + ": " + request.Prompt,
		Usage: cost.NewUsage(10, 5, 0),
		Cost:  cost.Record{TotalCostUSD: 0.01, Known: true},
	}
}

type transcribingProvider struct {
	*fakeProvider
}

func (p transcribingProvider) Transcribe(_ context.Context, request ai.TranscriptionRequest) ai.TranscriptionResult {
	return ai.TranscriptionResult{Model: request.Model, Text: "hello"}
}

func TestResolve(t *testing.T) {
	d := New(nil, nil)
	openai := newFake("openai", "gpt-4o")
	gemini := newFake("gemini", "gemini-2.5-pro")
	d.Register(openai, gemini)

	tests := []struct {
		name     string
		provider string
		model    string
		want     string
		wantErr  error
	}{
		{name: "explicit provider", provider: "gemini", model: "gpt-4o", want: "gemini"},
		{name: "model lookup", model: "gemini-2.5-pro", want: "gemini"},
		{name: "unknown model falls back", model: "mystery", want: "openai"},
		{name: "no hints", want: "openai"},
		{name: "unknown provider", provider: "nope", wantErr: ErrUnknownProvider},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := d.Resolve(tt.provider, tt.model)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Resolve() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve() unexpected error: %v", err)
			}
			if p.Name() != tt.want {
				t.Errorf("Resolve() = %q, want %q", p.Name(), tt.want)
			}
		})
	}
}

func TestResolve_NoProviders(t *testing.T) {
	d := New(nil, nil)
	if _, err := d.Resolve("", "gpt-4o"); !errors.Is(err, ErrNoProviders) {
		t.Errorf("Resolve() error = %v, want ErrNoProviders", err)
	}
}

func TestRegister_ReplacesKeepingOrder(t *testing.T) {
	d := New(nil, nil)
	first := newFake("openai")
	d.Register(first, newFake("gemini"))
	replacement := newFake("openai")
	d.Register(replacement)

	if got := d.Providers(); len(got) != 2 || got[0] != "openai" || got[1] != "gemini" {
		t.Fatalf("Providers() = %v, want [openai gemini]", got)
	}
	p, ok := d.Provider("openai")
	if !ok || p != ai.Provider(replacement) {
		t.Error("Provider(openai) should return the replacement adapter")
	}
}

func TestGenerateText(t *testing.T) {
	var logs bytes.Buffer
	observer := slogobs.New(
		slogobs.WithOutput(&logs),
		slogobs.WithFormat(slogobs.FormatJSON),
		slogobs.WithLevel(slog.LevelInfo),
	)
	d := New(nil, nil, WithObserver(observer))
	fake := newFake("openai", "gpt-4o")
	d.Register(fake)

	env := d.GenerateText(context.Background(), "", ai.TextRequest{Model: "gpt-4o", Prompt: "hi"})
	if env.Err != nil {
		t.Fatalf("GenerateText() error: %v", env.Err)
	}
	if env.RequestID == "" {
		t.Error("RequestID should be set")
	}
	if env.Provider != "openai" || env.Model != "gpt-4o" {
		t.Errorf("provider/model = %q/%q", env.Provider, env.Model)
	}
	if env.Text != "openai: hi" {
		t.Errorf("Text = %q", env.Text)
	}
	if env.Usage.TotalTokens != 15 || env.Cost.TotalCostUSD != 0.01 {
		t.Errorf("usage/cost = %+v / %+v", env.Usage, env.Cost)
	}
	if env.Elapsed <= 0 {
		t.Error("Elapsed should be measured")
	}
	if !strings.Contains(logs.String(), "dispatch completed") {
		t.Errorf("expected completion log, got: %s", logs.String())
	}
	if !strings.Contains(logs.String(), env.RequestID) {
		t.Error("logs should carry the request id")
	}
}

func TestDispatch_Failures(t *testing.T) {
	d := New(nil, nil)
	d.Register(newFake("openai", "gpt-4o"))
	ctx := context.Background()

	tests := []struct {
		name    string
		call    func() Envelope
		wantErr error
	}{
		{
			name:    "unknown provider",
			call:    func() Envelope { return d.GenerateText(ctx, "missing", ai.TextRequest{Prompt: "hi"}) },
			wantErr: ErrUnknownProvider,
		},
		{
			name:    "unsupported image",
			call:    func() Envelope { return d.GenerateImage(ctx, "openai", ai.ImageRequest{Prompt: "cat"}) },
			wantErr: ai.ErrUnsupportedCapability,
		},
		{
			name:    "unsupported edit",
			call:    func() Envelope { return d.EditImage(ctx, "openai", ai.EditImageRequest{Prompt: "cat"}) },
			wantErr: ai.ErrUnsupportedCapability,
		},
		{
			name:    "unsupported tts",
			call:    func() Envelope { return d.GenerateTTS(ctx, "openai", ai.TTSRequest{Prompt: "hi"}) },
			wantErr: ai.ErrUnsupportedCapability,
		},
		{
			name:    "unsupported video",
			call:    func() Envelope { return d.GenerateVideo(ctx, "openai", ai.VideoRequest{Prompt: "waves"}) },
			wantErr: ai.ErrUnsupportedCapability,
		},
		{
			name:    "no transcriber",
			call:    func() Envelope { return d.Transcribe(ctx, "openai", ai.TranscriptionRequest{Audio: []byte{1}}) },
			wantErr: ai.ErrUnsupportedCapability,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := tt.call()
			if !errors.Is(env.Err, tt.wantErr) {
				t.Fatalf("Err = %v, want %v", env.Err, tt.wantErr)
			}
			if env.Error == "" {
				t.Error("Error message should be set")
			}
			if env.RequestID == "" {
				t.Error("RequestID should be set on failures too")
			}
		})
	}
}

func TestTranscribe(t *testing.T) {
	d := New(nil, nil)
	d.Register(transcribingProvider{newFake("openai")})

	env := d.Transcribe(context.Background(), "openai", ai.TranscriptionRequest{Model: "whisper-1", Audio: []byte{1}})
	if env.Err != nil {
		t.Fatalf("Transcribe() error: %v", env.Err)
	}
	if env.Text != "hello" || env.Model != "whisper-1" {
		t.Errorf("Text/Model = %q/%q", env.Text, env.Model)
	}
}

func TestCheckAPIKeys(t *testing.T) {
	for _, k := range config.ProviderKeys {
		t.Setenv(k.EnvVar, "")
	}
	v := viper.New()
	v.Set("OPENAI_API_KEY", "sk-test")
	var logs bytes.Buffer
	d := New(nil, nil,
		WithConfig(config.FromViper(v)),
		WithObserver(slogobs.New(slogobs.WithOutput(&logs), slogobs.WithLevel(slog.LevelInfo))),
	)

	statuses := d.CheckAPIKeys(context.Background())
	if len(statuses) != len(config.ProviderKeys) {
		t.Fatalf("got %d statuses, want %d", len(statuses), len(config.ProviderKeys))
	}
	for _, s := range statuses {
		want := s.Provider == "openai"
		if s.Present != want {
			t.Errorf("%s present = %v, want %v", s.Provider, s.Present, want)
		}
	}
	if !strings.Contains(logs.String(), "API key not set") {
		t.Errorf("expected missing-key warnings, got: %s", logs.String())
	}
}

func TestDispatch_RecordsOverview(t *testing.T) {
	d := New(nil, nil)
	d.Register(newFake("openai", "gpt-4o"))
	ov := overview.New()
	ctx := ov.ToContext(context.Background())

	ok := d.GenerateText(ctx, "", ai.TextRequest{Model: "gpt-4o", Prompt: "hi"})
	failed := d.GenerateImage(ctx, "openai", ai.ImageRequest{Prompt: "cat"})

	entries := ov.Entries()
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].RequestID != ok.RequestID || entries[0].Capability != "text" || entries[0].Failed {
		t.Errorf("unexpected first entry: %+v", entries[0])
	}
	if entries[1].RequestID != failed.RequestID || !entries[1].Failed {
		t.Errorf("unexpected second entry: %+v", entries[1])
	}
	if got := ov.Summary().TotalCost.TotalCostUSD; got != 0.01 {
		t.Errorf("TotalCostUSD = %v, want 0.01", got)
	}
}
