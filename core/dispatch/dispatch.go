package dispatch

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/spf13/viper"

	"github.com/leofalp/aimux/core/cost"
	"github.com/leofalp/aimux/core/overview"
	"github.com/leofalp/aimux/internal/config"
	"github.com/leofalp/aimux/internal/utils"
	"github.com/leofalp/aimux/providers/ai"
	"github.com/leofalp/aimux/providers/observability"
	"github.com/leofalp/aimux/providers/tool"
)

var (
	// ErrUnknownProvider is reported when a request names a provider that was
	// never registered.
	ErrUnknownProvider = errors.New("unknown provider")

	// ErrNoProviders is reported when no adapter is registered at all.
	ErrNoProviders = errors.New("no providers registered")
)

// Dispatcher holds the registered adapters and routes requests to them.
type Dispatcher struct {
	env      ai.Env
	observer observability.Provider
	config   *config.Config

	mu        sync.RWMutex
	providers map[string]ai.Provider
	order     []string
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithObserver sets the observer installed on every dispatched context.
// Without it the observer already carried by the caller's context is used.
func WithObserver(observer observability.Provider) Option {
	return func(d *Dispatcher) {
		d.observer = observer
	}
}

// WithConfig sets the configuration consulted by CheckAPIKeys.
func WithConfig(cfg *config.Config) Option {
	return func(d *Dispatcher) {
		d.config = cfg
	}
}

// New creates a Dispatcher sharing registry and calc with the adapters it
// builds an [ai.Env] for. Nil arguments get the [ai.NewEnv] defaults.
func New(registry *tool.Registry, calc *cost.Calculator, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		env:       ai.NewEnv(registry, calc),
		providers: make(map[string]ai.Provider),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Env returns the environment adapters should be constructed with so that
// they share the dispatcher's tool registry and calculator.
func (d *Dispatcher) Env() ai.Env {
	return d.env
}

// Register adds adapters under their Name. Registering a name again
// replaces the adapter but keeps its position; the first registered adapter
// is the fallback for requests that resolve nowhere else.
func (d *Dispatcher) Register(providers ...ai.Provider) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, p := range providers {
		name := p.Name()
		if _, exists := d.providers[name]; !exists {
			d.order = append(d.order, name)
		}
		d.providers[name] = p
	}
}

// Providers returns the registered provider names in registration order.
func (d *Dispatcher) Providers() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]string(nil), d.order...)
}

// Provider returns the adapter registered under name.
func (d *Dispatcher) Provider(name string) (ai.Provider, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	p, ok := d.providers[name]
	return p, ok
}

// Resolve picks the adapter for a request. An explicit provider name wins;
// otherwise the first catalog listing model is used, and failing that the
// default adapter.
func (d *Dispatcher) Resolve(provider, model string) (ai.Provider, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if provider != "" {
		p, ok := d.providers[provider]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, provider)
		}
		return p, nil
	}
	if len(d.order) == 0 {
		return nil, ErrNoProviders
	}
	if model != "" {
		for _, name := range d.order {
			if _, ok := d.providers[name].Models().Find(model); ok {
				return d.providers[name], nil
			}
		}
	}
	return d.providers[d.order[0]], nil
}

// CheckAPIKeys reports which provider API keys are configured and logs the
// missing ones. The check is advisory: calls are dispatched regardless.
func (d *Dispatcher) CheckAPIKeys(ctx context.Context) []config.KeyStatus {
	cfg := d.config
	if cfg == nil {
		cfg = config.FromViper(viper.New())
	}
	statuses := cfg.CheckAPIKeys()
	config.LogKeyStatus(d.context(ctx), statuses)
	return statuses
}

func (d *Dispatcher) GenerateText(ctx context.Context, provider string, request ai.TextRequest) Envelope {
	return d.dispatch(ctx, provider, request.Model, ai.CapabilityText, func(ctx context.Context, p ai.Provider, e *Envelope) {
		flattenText(e, p.GenerateText(ctx, request))
	})
}

func (d *Dispatcher) GenerateImage(ctx context.Context, provider string, request ai.ImageRequest) Envelope {
	return d.dispatch(ctx, provider, request.Model, ai.CapabilityImage, func(ctx context.Context, p ai.Provider, e *Envelope) {
		flattenImage(e, p.GenerateImage(ctx, request))
	})
}

func (d *Dispatcher) EditImage(ctx context.Context, provider string, request ai.EditImageRequest) Envelope {
	return d.dispatch(ctx, provider, request.Model, ai.CapabilityImage, func(ctx context.Context, p ai.Provider, e *Envelope) {
		flattenImage(e, p.EditImage(ctx, request))
	})
}

func (d *Dispatcher) GenerateTTS(ctx context.Context, provider string, request ai.TTSRequest) Envelope {
	return d.dispatch(ctx, provider, request.Model, ai.CapabilityTTS, func(ctx context.Context, p ai.Provider, e *Envelope) {
		flattenAudio(e, p.GenerateTTS(ctx, request))
	})
}

func (d *Dispatcher) GenerateVideo(ctx context.Context, provider string, request ai.VideoRequest) Envelope {
	return d.dispatch(ctx, provider, request.Model, ai.CapabilityVideo, func(ctx context.Context, p ai.Provider, e *Envelope) {
		flattenVideo(e, p.GenerateVideo(ctx, request))
	})
}

// Transcribe routes to providers implementing [ai.Transcriber]; others fail
// with [ai.ErrUnsupportedCapability].
func (d *Dispatcher) Transcribe(ctx context.Context, provider string, request ai.TranscriptionRequest) Envelope {
	return d.dispatch(ctx, provider, request.Model, ai.CapabilitySTT, func(ctx context.Context, p ai.Provider, e *Envelope) {
		t, ok := p.(ai.Transcriber)
		if !ok {
			e.fail(fmt.Errorf("%w: %s does not implement transcribe", ai.ErrUnsupportedCapability, p.Name()))
			return
		}
		flattenTranscription(e, t.Transcribe(ctx, request))
	})
}

func (d *Dispatcher) context(ctx context.Context) context.Context {
	if d.observer != nil {
		return observability.ContextWithObserver(ctx, d.observer)
	}
	return ctx
}

// dispatch wraps one adapter call with a request id, a dispatch span and a
// timer. call fills the envelope from the adapter result.
func (d *Dispatcher) dispatch(ctx context.Context, provider, model string, capability ai.Capability, call func(context.Context, ai.Provider, *Envelope)) Envelope {
	env := Envelope{
		RequestID:  uuid.NewString(),
		Provider:   provider,
		Capability: capability,
		Model:      model,
	}

	ctx = d.context(ctx)
	observer := observability.ObserverFromContext(ctx)
	ctx, span := observer.StartSpan(ctx, observability.SpanDispatch,
		observability.String(observability.AttrRequestID, env.RequestID),
		observability.String(observability.AttrCapability, capability.String()),
	)
	defer span.End()

	timer := utils.NewTimer()
	p, err := d.Resolve(provider, model)
	if err != nil {
		env.fail(err)
	} else {
		env.Provider = p.Name()
		call(ctx, p, &env)
	}
	env.Elapsed = timer.Stop()
	record(ctx, env)

	attrs := []observability.Attribute{
		observability.String(observability.AttrRequestID, env.RequestID),
		observability.String(observability.AttrProvider, env.Provider),
		observability.String(observability.AttrModel, env.Model),
		observability.String(observability.AttrCapability, capability.String()),
		observability.Duration(observability.AttrElapsed, env.Elapsed),
	}
	span.SetAttributes(attrs...)

	if env.Err != nil {
		span.RecordError(env.Err)
		span.SetStatus(observability.StatusError, env.Error)
		observer.Error(ctx, "dispatch failed", append(attrs, observability.Error(env.Err))...)
		return env
	}

	span.SetStatus(observability.StatusOK, "")
	observer.Info(ctx, "dispatch completed", append(attrs,
		observability.Int(observability.AttrTokensTotal, env.Usage.TotalTokens),
		observability.Float64(observability.AttrCostUSD, env.Cost.TotalCostUSD),
	)...)
	return env
}

// record adds env to the overview carried by ctx, if any.
func record(ctx context.Context, env Envelope) {
	ov, ok := overview.FromContext(ctx)
	if !ok {
		return
	}
	ov.Include(overview.Entry{
		RequestID:  env.RequestID,
		Provider:   env.Provider,
		Model:      env.Model,
		Capability: env.Capability.String(),
		Tools:      env.Tools,
		Usage:      env.Usage,
		Cost:       env.Cost,
		Elapsed:    env.Elapsed,
		Failed:     env.Err != nil,
	})
}
