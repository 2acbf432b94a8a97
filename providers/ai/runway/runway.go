package runway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"

	"github.com/leofalp/aimux/core/cost"
	"github.com/leofalp/aimux/internal/utils"
	"github.com/leofalp/aimux/providers/ai"
	"github.com/leofalp/aimux/providers/observability"
)

const (
	ProviderName = "runway"

	defaultBaseURL      = "https://api.runwayml.com/v1"
	generationsEndpoint = "/generations/"
)

// endpoints maps each generation mode to its path.
var endpoints = map[ai.VideoMode]string{
	ai.VideoModeTextToVideo:  "/text-to-video",
	ai.VideoModeImageToVideo: "/image-to-video",
	ai.VideoModeVideoToVideo: "/video-to-video",
}

// RunwayProvider implements [ai.Provider] for video generation only.
type RunwayProvider struct {
	ai.Unsupported
	env     ai.Env
	apiKey  string
	baseURL string
	client  *http.Client
}

// New creates a Runway provider reading RUNWAY_API_KEY and
// RUNWAY_API_BASE_URL from the environment.
func New(env ai.Env) *RunwayProvider {
	baseURL := os.Getenv("RUNWAY_API_BASE_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &RunwayProvider{
		Unsupported: ai.Unsupported{Provider: ProviderName},
		env:         ai.NewEnv(env.Registry, env.Calculator),
		apiKey:      os.Getenv("RUNWAY_API_KEY"),
		baseURL:     baseURL,
		client:      &http.Client{},
	}
}

// WithAPIKey sets the API key for the provider
func (p *RunwayProvider) WithAPIKey(apiKey string) *RunwayProvider {
	p.apiKey = apiKey
	return p
}

// WithBaseURL sets the base URL for the API
func (p *RunwayProvider) WithBaseURL(baseURL string) *RunwayProvider {
	p.baseURL = baseURL
	return p
}

// WithHttpClient sets a custom HTTP client
func (p *RunwayProvider) WithHttpClient(httpClient *http.Client) *RunwayProvider {
	p.client = httpClient
	return p
}

func (p *RunwayProvider) Name() string { return ProviderName }

func (p *RunwayProvider) Models() ai.Catalog { return models }

// resolveMode returns the mode to use for request. An explicit mode must
// come with the URL it needs; VideoModeAuto prefers the image URL, then the
// video URL, then plain text.
func resolveMode(request ai.VideoRequest) (ai.VideoMode, error) {
	switch request.Mode {
	case ai.VideoModeAuto:
		switch {
		case request.ImageURL != "":
			return ai.VideoModeImageToVideo, nil
		case request.VideoURL != "":
			return ai.VideoModeVideoToVideo, nil
		default:
			return ai.VideoModeTextToVideo, nil
		}
	case ai.VideoModeTextToVideo:
		return request.Mode, nil
	case ai.VideoModeImageToVideo:
		if request.ImageURL == "" {
			return "", fmt.Errorf("%w: %s requires an image URL", ai.ErrInvalidRequest, request.Mode)
		}
		return request.Mode, nil
	case ai.VideoModeVideoToVideo:
		if request.VideoURL == "" {
			return "", fmt.Errorf("%w: %s requires a video URL", ai.ErrInvalidRequest, request.Mode)
		}
		return request.Mode, nil
	default:
		return "", fmt.Errorf("%w: unknown video mode %q", ai.ErrInvalidRequest, request.Mode)
	}
}

// GenerateVideo starts a generation and returns its reference. The video
// itself is fetched later through CheckVideoStatus.
func (p *RunwayProvider) GenerateVideo(ctx context.Context, request ai.VideoRequest) ai.VideoResult {
	model, err := models.SelectModel(ProviderName, request.Model, ai.CapabilityVideo)
	if err != nil {
		return ai.FailVideo(err)
	}
	mode, err := resolveMode(request)
	if err != nil {
		return ai.FailVideo(err)
	}

	body := generationRequest{Prompt: request.Prompt}
	switch mode {
	case ai.VideoModeImageToVideo:
		body.Image = request.ImageURL
	case ai.VideoModeVideoToVideo:
		body.Video = request.VideoURL
	}
	if err := ai.DecodeOptions(request.Options, &body.generationOptions); err != nil {
		return ai.FailVideo(err)
	}

	ctx, finish := ai.StartCall(ctx, ProviderName, ai.CapabilityVideo, model)
	observability.ObserverFromContext(ctx).Debug(ctx, "starting runway generation",
		observability.String(observability.AttrModel, model),
		observability.String("runway.mode", string(mode)),
	)
	result := p.post(ctx, model, endpoints[mode], body)
	finish(result.Err)
	return result
}

func (p *RunwayProvider) post(ctx context.Context, model, endpoint string, body generationRequest) ai.VideoResult {
	if err := ai.RequireAPIKey(ProviderName, p.apiKey); err != nil {
		return ai.FailVideo(err)
	}

	_, resp, err := utils.DoPostSync[generation](ctx, p.client, p.baseURL+endpoint, p.apiKey, body)
	if err != nil {
		return ai.FailVideo(ai.CallError(err))
	}
	return p.videoResult(model, resp)
}

// CheckVideoStatus polls a generation started by GenerateVideo. Reference.URL
// is set once the generation has succeeded.
func (p *RunwayProvider) CheckVideoStatus(ctx context.Context, generationID string) ai.VideoResult {
	if generationID == "" {
		return ai.FailVideo(fmt.Errorf("%w: generation id is empty", ai.ErrInvalidRequest))
	}
	if err := ai.RequireAPIKey(ProviderName, p.apiKey); err != nil {
		return ai.FailVideo(err)
	}

	_, resp, err := utils.DoGetSync[generation](ctx, p.client, p.baseURL+generationsEndpoint+url.PathEscape(generationID), p.apiKey)
	if err != nil {
		return ai.FailVideo(ai.CallError(err))
	}
	return p.videoResult(ModelGen2, resp)
}

func (p *RunwayProvider) videoResult(model string, resp *generation) ai.VideoResult {
	if resp == nil || resp.ID == "" {
		return ai.FailVideo(ai.CallError(errors.New("no generation id in response")))
	}
	if resp.Status == "FAILED" {
		return ai.FailVideo(ai.CallError(fmt.Errorf("generation %s failed: %s", resp.ID, resp.Failure)))
	}

	ref := ai.VideoReference{ID: resp.ID, Status: resp.Status}
	if len(resp.Output) > 0 {
		ref.URL = resp.Output[0]
	}
	return ai.VideoResult{
		Model:     model,
		Reference: ref,
		Cost:      models.CalculateCost(p.env.Calculator, model, cost.Usage{}),
	}
}
