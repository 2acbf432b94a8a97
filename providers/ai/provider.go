package ai

import (
	"context"
	"fmt"

	"github.com/leofalp/aimux/core/cost"
	"github.com/leofalp/aimux/providers/tool"
)

// Provider is the uniform contract every adapter satisfies. Generation
// methods never return Go errors: failures are reported through the result's
// Err and Error fields, so a caller always gets a well-formed result.
type Provider interface {
	// Name is the provider key used by the dispatcher, e.g. "openai".
	Name() string

	// Models returns the adapter's immutable model catalog.
	Models() Catalog

	// SupportsContinuation reports whether the provider can resume a
	// conversation from a server-side response id.
	SupportsContinuation() bool

	GenerateText(ctx context.Context, request TextRequest) TextResult
	GenerateImage(ctx context.Context, request ImageRequest) ImageResult
	EditImage(ctx context.Context, request EditImageRequest) ImageResult
	GenerateTTS(ctx context.Context, request TTSRequest) AudioResult
	GenerateVideo(ctx context.Context, request VideoRequest) VideoResult
}

// Transcriber is implemented by providers offering speech-to-text. Callers
// detect it via type assertion.
type Transcriber interface {
	Transcribe(ctx context.Context, request TranscriptionRequest) TranscriptionResult
}

// Env holds the collaborators shared by every adapter of a process.
type Env struct {
	Registry   *tool.Registry
	Calculator *cost.Calculator
}

// NewEnv returns an Env, filling nil fields with an empty registry and a
// calculator using the default exchange rate and margin.
func NewEnv(registry *tool.Registry, calculator *cost.Calculator) Env {
	return Env{Registry: registry, Calculator: calculator}.withDefaults()
}

func (e Env) withDefaults() Env {
	if e.Registry == nil {
		e.Registry = tool.NewRegistry()
	}
	if e.Calculator == nil {
		e.Calculator = cost.NewCalculator(cost.DefaultExchangeRate, cost.DefaultMargin)
	}
	return e
}

// Unsupported provides "not implemented" defaults for every generation
// method. Adapters embed it and override what they support.
type Unsupported struct {
	Provider string
}

func (u Unsupported) unsupported(capability string) error {
	return fmt.Errorf("%w: %s does not implement %s", ErrUnsupportedCapability, u.Provider, capability)
}

func (u Unsupported) GenerateText(context.Context, TextRequest) TextResult {
	return FailText(u.unsupported("generateText"))
}

func (u Unsupported) GenerateImage(context.Context, ImageRequest) ImageResult {
	return FailImage(u.unsupported("generateImage"))
}

func (u Unsupported) EditImage(context.Context, EditImageRequest) ImageResult {
	return FailImage(u.unsupported("editImage"))
}

func (u Unsupported) GenerateTTS(context.Context, TTSRequest) AudioResult {
	return FailAudio(u.unsupported("generateTTS"))
}

func (u Unsupported) GenerateVideo(context.Context, VideoRequest) VideoResult {
	return FailVideo(u.unsupported("generateVideo"))
}

func (u Unsupported) SupportsContinuation() bool {
	return false
}
