package harness

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/leofalp/aimux/core/cost"
	"github.com/leofalp/aimux/core/dispatch"
	"github.com/leofalp/aimux/providers/ai"
	"github.com/leofalp/aimux/providers/memory"
	"github.com/leofalp/aimux/providers/memory/inmemory"
	"github.com/leofalp/aimux/providers/observability"
	"github.com/leofalp/aimux/providers/tool/calculator"
)

// DefaultOutputDir is where artifacts are written when no directory is set.
const DefaultOutputDir = "test_output"

const (
	narrationPrompt = "Write the narration for a 30-second video short in Korean, one sentence per line. Do not add anything else."
	newsPrompt      = "Pick one of today's Korean news stories suitable for a short and write a 30-second narration in Korean, one sentence per line. Do not add anything else."
	productPrompt   = "Germinated and roasted barley tea\nA healthy barley tea with a rich, nutty flavor and aroma\nPacked in a zipper bag to stay fresh after opening"
	toolPrompt      = "Use the calculator tool to compute (17 + 25) * 3 and answer with the result only."
	firstTurn       = "My name is Mina and my favorite color is teal. Reply with a short greeting."
	secondTurn      = "What is my name and my favorite color?"
)

// ErrSkipped marks a model the harness could not exercise for a feature.
var ErrSkipped = errors.New("skipped")

// Report is the outcome of one feature run against one model.
type Report struct {
	Provider string        `json:"provider"`
	Model    string        `json:"model"`
	Feature  Feature       `json:"feature"`
	File     string        `json:"file,omitempty"`
	Usage    cost.Usage    `json:"usage"`
	Cost     cost.Record   `json:"cost"`
	Elapsed  time.Duration `json:"elapsed"`
	Err      error         `json:"-"`
}

// Harness runs feature tests through a dispatcher.
type Harness struct {
	dispatcher *dispatch.Dispatcher
	outDir     string
	store      memory.Store
	audio      []byte
	imageURL   string
}

// Option configures a Harness.
type Option func(*Harness)

// WithOutputDir sets the root output directory.
func WithOutputDir(dir string) Option {
	return func(h *Harness) {
		h.outDir = dir
	}
}

// WithStore sets the store used by the conversation_state feature.
func WithStore(store memory.Store) Option {
	return func(h *Harness) {
		h.store = store
	}
}

// WithAudioSample sets the audio transcribed by the stt feature. Without
// one, stt uses the first audio produced by a tts run of the same session.
func WithAudioSample(audio []byte) Option {
	return func(h *Harness) {
		h.audio = audio
	}
}

// WithImageURL sets the source image of the video feature. Providers that
// only animate images fail the video feature without one.
func WithImageURL(url string) Option {
	return func(h *Harness) {
		h.imageURL = url
	}
}

// New returns a Harness driving d.
func New(d *dispatch.Dispatcher, opts ...Option) *Harness {
	h := &Harness{
		dispatcher: d,
		outDir:     DefaultOutputDir,
		store:      inmemory.New(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Run exercises feature on every model of the named providers, or of every
// registered provider when none is named. Per-model failures are reported,
// not returned; the error covers unknown providers and filesystem failures.
func (h *Harness) Run(ctx context.Context, feature Feature, providers ...string) ([]Report, error) {
	if len(providers) == 0 {
		providers = h.dispatcher.Providers()
	}

	var reports []Report
	for _, name := range providers {
		p, ok := h.dispatcher.Provider(name)
		if !ok {
			return reports, fmt.Errorf("%w: %q", dispatch.ErrUnknownProvider, name)
		}
		dir := filepath.Join(h.outDir, name)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return reports, fmt.Errorf("creating output directory: %w", err)
		}
		for _, model := range p.Models() {
			reports = append(reports, h.testModel(ctx, dir, name, model, feature)...)
		}
	}
	return reports, nil
}

func (h *Harness) testModel(ctx context.Context, dir, provider string, model ai.ModelDescriptor, feature Feature) []Report {
	observer := observability.ObserverFromContext(ctx)
	var reports []Report
	run := func(f Feature, fn func() Report) {
		if !feature.selected(f) {
			return
		}
		report := fn()
		report.Provider = provider
		report.Model = model.ID
		report.Feature = f
		if report.Err != nil && !errors.Is(report.Err, ErrSkipped) {
			observer.Error(ctx, "feature test failed",
				observability.String(observability.AttrProvider, provider),
				observability.String(observability.AttrModel, model.ID),
				observability.String("feature", string(f)),
				observability.Error(report.Err),
			)
		} else if report.File != "" {
			observer.Info(ctx, "feature test written",
				observability.String(observability.AttrProvider, provider),
				observability.String(observability.AttrModel, model.ID),
				observability.String("feature", string(f)),
				observability.String("file", report.File),
			)
		}
		reports = append(reports, report)
	}

	// Features sharing an extension with a base feature add their name,
	// e.g. gpt-4o.tool.txt.
	path := func(ext string) string {
		return filepath.Join(dir, model.ID+"."+ext)
	}

	if model.Has(ai.CapabilityText) {
		run(FeatureText, func() Report {
			env := h.dispatcher.GenerateText(ctx, provider, ai.TextRequest{Model: model.ID, Prompt: narrationPrompt})
			return writeText(path("txt"), env)
		})
		if model.SupportsWebSearch {
			run(FeatureWebSearch, func() Report {
				env := h.dispatcher.GenerateText(ctx, provider, ai.TextRequest{
					Model:       model.ID,
					Prompt:      newsPrompt,
					SystemTools: []string{ai.SystemToolWebSearch},
				})
				return writeText(path(string(FeatureWebSearch)+".txt"), env)
			})
		}
		if model.SupportsTools {
			run(FeatureTool, func() Report {
				env := h.dispatcher.GenerateText(ctx, provider, ai.TextRequest{
					Model:     model.ID,
					Prompt:    toolPrompt,
					UserTools: []string{calculator.Name},
				})
				return writeText(path(string(FeatureTool)+".txt"), env)
			})
		}
		run(FeatureConversation, func() Report {
			return h.conversation(ctx, path(string(FeatureConversation)+".txt"), provider, model.ID)
		})
		run(FeatureConversationState, func() Report {
			return h.conversationState(ctx, path(string(FeatureConversationState)+".txt"), provider, model.ID)
		})
	}
	if model.Has(ai.CapabilityImage) {
		run(FeatureImage, func() Report {
			env := h.dispatcher.GenerateImage(ctx, provider, ai.ImageRequest{Model: model.ID, Prompt: productPrompt})
			return writeBinary(path("jpg"), env, env.Image)
		})
	}
	if model.Has(ai.CapabilityTTS) {
		run(FeatureTTS, func() Report {
			env := h.dispatcher.GenerateTTS(ctx, provider, ai.TTSRequest{Model: model.ID, Prompt: productPrompt})
			if env.Err == nil && h.audio == nil {
				h.audio = env.Audio
			}
			return writeBinary(path("mp3"), env, env.Audio)
		})
	}
	if model.Has(ai.CapabilityVideo) {
		run(FeatureVideo, func() Report {
			env := h.dispatcher.GenerateVideo(ctx, provider, ai.VideoRequest{
				Model:    model.ID,
				Prompt:   productPrompt,
				ImageURL: h.imageURL,
			})
			if env.Err == nil && len(env.VideoData) == 0 {
				// Asynchronous generation: only a reference is available.
				return writeJSON(path("mp4.json"), env, env.Video)
			}
			return writeBinary(path("mp4"), env, env.VideoData)
		})
	}
	if model.Has(ai.CapabilitySTT) {
		run(FeatureSTT, func() Report {
			if len(h.audio) == 0 {
				return Report{Err: fmt.Errorf("%w: no audio sample", ErrSkipped)}
			}
			env := h.dispatcher.Transcribe(ctx, provider, ai.TranscriptionRequest{
				Model:    model.ID,
				Audio:    h.audio,
				FileName: "sample.mp3",
			})
			return writeText(path("txt"), env)
		})
	}
	return reports
}

// conversation threads a caller-owned History through two calls.
func (h *Harness) conversation(ctx context.Context, file, provider, model string) Report {
	first := h.dispatcher.GenerateText(ctx, provider, ai.TextRequest{
		Model:        model,
		Prompt:       firstTurn,
		Conversation: memory.History{},
	})
	if first.Err != nil {
		return reportOf(first)
	}
	second := h.dispatcher.GenerateText(ctx, provider, ai.TextRequest{
		Model:        model,
		Prompt:       secondTurn,
		Conversation: first.Conversation,
	})
	return writeTurns(file, first, second)
}

// conversationState keeps the state in the store between calls, starting
// from a continuation when the provider holds state server-side.
func (h *Harness) conversationState(ctx context.Context, file, provider, model string) Report {
	session := provider + "/" + model
	defer h.store.Delete(ctx, session)

	var start memory.Ref = memory.History{}
	if p, ok := h.dispatcher.Provider(provider); ok && p.SupportsContinuation() {
		start = memory.Continuation{}
	}
	h.store.Save(ctx, session, start)

	first := h.dispatcher.GenerateText(ctx, provider, ai.TextRequest{
		Model:        model,
		Prompt:       firstTurn,
		Conversation: h.store.Load(ctx, session),
	})
	if first.Err != nil {
		return reportOf(first)
	}
	h.store.Save(ctx, session, first.Conversation)

	second := h.dispatcher.GenerateText(ctx, provider, ai.TextRequest{
		Model:        model,
		Prompt:       secondTurn,
		Conversation: h.store.Load(ctx, session),
	})
	return writeTurns(file, first, second)
}

func reportOf(env dispatch.Envelope) Report {
	return Report{Usage: env.Usage, Cost: env.Cost, Elapsed: env.Elapsed, Err: env.Err}
}

// writeText writes the text followed by the usage and cost as indented JSON.
func writeText(file string, env dispatch.Envelope) Report {
	report := reportOf(env)
	if env.Err != nil {
		return report
	}
	var b strings.Builder
	b.WriteString(env.Text)
	appendJSON(&b, env.Usage)
	appendJSON(&b, env.Cost)
	return writeFile(report, file, []byte(b.String()))
}

func writeTurns(file string, first, second dispatch.Envelope) Report {
	report := reportOf(second)
	report.Usage = cost.NewUsage(
		first.Usage.InputTokens+second.Usage.InputTokens,
		first.Usage.OutputTokens+second.Usage.OutputTokens,
		first.Usage.TotalTokens+second.Usage.TotalTokens,
	)
	report.Cost = first.Cost.Add(second.Cost)
	report.Elapsed = first.Elapsed + second.Elapsed
	if second.Err != nil {
		return report
	}
	var b strings.Builder
	fmt.Fprintf(&b, "> %s\n%s\n\n> %s\n%s", firstTurn, first.Text, secondTurn, second.Text)
	appendJSON(&b, report.Usage)
	appendJSON(&b, report.Cost)
	return writeFile(report, file, []byte(b.String()))
}

func writeBinary(file string, env dispatch.Envelope, data []byte) Report {
	report := reportOf(env)
	if env.Err != nil {
		return report
	}
	if len(data) == 0 {
		report.Err = errors.New("empty output")
		return report
	}
	return writeFile(report, file, data)
}

func writeJSON(file string, env dispatch.Envelope, v any) Report {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		report := reportOf(env)
		report.Err = err
		return report
	}
	return writeFile(reportOf(env), file, data)
}

func writeFile(report Report, file string, data []byte) Report {
	if err := os.WriteFile(file, data, 0o644); err != nil {
		report.Err = fmt.Errorf("writing %s: %w", file, err)
		return report
	}
	report.File = file
	return report
}

func appendJSON(b *strings.Builder, v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return
	}
	b.WriteString("\n\n")
	b.Write(data)
}
