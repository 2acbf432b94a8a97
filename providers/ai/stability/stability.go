package stability

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/leofalp/aimux/core/cost"
	"github.com/leofalp/aimux/internal/utils"
	"github.com/leofalp/aimux/providers/ai"
)

const (
	ProviderName = "stability"

	defaultBaseURL = "https://api.stability.ai"
	videoEndpoint  = "/v2beta/stable-video/generate"

	defaultSize     = 1024
	defaultSteps    = 30
	defaultCFGScale = 7
	imageMimeType   = "image/png"
)

// defaultVideoParams apply when VideoRequest.Options leaves a field out.
var defaultVideoParams = videoParams{MotionStrength: 0.5, Frames: 25, FPS: 6}

// StabilityProvider implements [ai.Provider] for image and video generation.
// Text, speech and image edits report [ai.ErrUnsupportedCapability].
type StabilityProvider struct {
	ai.Unsupported
	env     ai.Env
	apiKey  string
	baseURL string
	client  *http.Client
}

// New creates a Stability provider reading STABILITY_API_KEY and
// STABILITY_API_BASE_URL from the environment.
func New(env ai.Env) *StabilityProvider {
	baseURL := os.Getenv("STABILITY_API_BASE_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &StabilityProvider{
		Unsupported: ai.Unsupported{Provider: ProviderName},
		env:         ai.NewEnv(env.Registry, env.Calculator),
		apiKey:      os.Getenv("STABILITY_API_KEY"),
		baseURL:     baseURL,
		client:      &http.Client{},
	}
}

// WithAPIKey sets the API key for the provider
func (p *StabilityProvider) WithAPIKey(apiKey string) *StabilityProvider {
	p.apiKey = apiKey
	return p
}

// WithBaseURL sets the base URL for the API
func (p *StabilityProvider) WithBaseURL(baseURL string) *StabilityProvider {
	p.baseURL = baseURL
	return p
}

// WithHttpClient sets a custom HTTP client
func (p *StabilityProvider) WithHttpClient(httpClient *http.Client) *StabilityProvider {
	p.client = httpClient
	return p
}

func (p *StabilityProvider) Name() string { return ProviderName }

func (p *StabilityProvider) Models() ai.Catalog { return models }

// GenerateImage renders the prompt with a v1 engine and returns the first
// artifact. Zero Width, Height, Steps or CFGScale fall back to 1024x1024,
// 30 steps and a scale of 7.
func (p *StabilityProvider) GenerateImage(ctx context.Context, request ai.ImageRequest) ai.ImageResult {
	model, err := models.SelectModel(ProviderName, request.Model, ai.CapabilityImage)
	if err != nil {
		return ai.FailImage(err)
	}
	ctx, finish := ai.StartCall(ctx, ProviderName, ai.CapabilityImage, model)
	result := p.generateImage(ctx, model, request)
	finish(result.Err)
	return result
}

func (p *StabilityProvider) generateImage(ctx context.Context, model string, request ai.ImageRequest) ai.ImageResult {
	if err := ai.RequireAPIKey(ProviderName, p.apiKey); err != nil {
		return ai.FailImage(err)
	}

	body := textToImageRequest{
		TextPrompts: weightedPrompts(request.Prompt, request.NegativePrompt),
		CFGScale:    orDefault(request.CFGScale, defaultCFGScale),
		Width:       orDefault(request.Width, defaultSize),
		Height:      orDefault(request.Height, defaultSize),
		Steps:       orDefault(request.Steps, defaultSteps),
		Samples:     max(request.N, 1),
	}

	url := fmt.Sprintf("%s/v1/generation/%s/text-to-image", p.baseURL, model)
	_, resp, err := utils.DoPostSync[textToImageResponse](ctx, p.client, url, p.apiKey, body,
		utils.HeaderOption{Key: "Accept", Value: "application/json"},
	)
	if err != nil {
		return ai.FailImage(ai.CallError(err))
	}
	if resp == nil || len(resp.Artifacts) == 0 {
		return ai.FailImage(ai.CallError(errors.New("no artifacts in response")))
	}

	first := resp.Artifacts[0]
	if first.FinishReason == "CONTENT_FILTERED" {
		return ai.FailImage(ai.CallError(errors.New("image was content filtered")))
	}
	image, err := base64.StdEncoding.DecodeString(first.Base64)
	if err != nil {
		return ai.FailImage(ai.CallError(fmt.Errorf("decoding image: %w", err)))
	}

	return ai.ImageResult{
		Model:     model,
		Image:     image,
		ImageType: imageMimeType,
		Cost:      models.CalculateCost(p.env.Calculator, model, cost.Usage{}),
	}
}

// GenerateVideo starts an image-to-video job. The source image is
// mandatory; motion_strength, frames and fps may be set through Options.
func (p *StabilityProvider) GenerateVideo(ctx context.Context, request ai.VideoRequest) ai.VideoResult {
	model, err := models.SelectModel(ProviderName, request.Model, ai.CapabilityVideo)
	if err != nil {
		return ai.FailVideo(err)
	}
	if request.ImageURL == "" {
		return ai.FailVideo(fmt.Errorf("%w: stability video generation requires an image URL", ai.ErrInvalidRequest))
	}
	params := defaultVideoParams
	if err := ai.DecodeOptions(request.Options, &params); err != nil {
		return ai.FailVideo(err)
	}

	ctx, finish := ai.StartCall(ctx, ProviderName, ai.CapabilityVideo, model)
	result := p.generateVideo(ctx, model, request, params)
	finish(result.Err)
	return result
}

func (p *StabilityProvider) generateVideo(ctx context.Context, model string, request ai.VideoRequest, params videoParams) ai.VideoResult {
	if err := ai.RequireAPIKey(ProviderName, p.apiKey); err != nil {
		return ai.FailVideo(err)
	}

	_, resp, err := utils.DoPostSync[videoResponse](ctx, p.client, p.baseURL+videoEndpoint, p.apiKey, videoRequest{
		VideoParams: params,
		TextPrompts: []textPrompt{{Text: request.Prompt, Weight: 1}},
		ImageURL:    request.ImageURL,
	}, utils.HeaderOption{Key: "Accept", Value: "application/json"})
	if err != nil {
		return ai.FailVideo(ai.CallError(err))
	}
	if resp == nil || resp.ID == "" {
		return ai.FailVideo(ai.CallError(errors.New("no generation id in response")))
	}

	return ai.VideoResult{
		Model:     model,
		Reference: ai.VideoReference{ID: resp.ID, Status: resp.Status},
		Cost:      models.CalculateCost(p.env.Calculator, model, cost.Usage{}),
	}
}

func weightedPrompts(prompt, negative string) []textPrompt {
	prompts := []textPrompt{{Text: prompt, Weight: 1}}
	if negative != "" {
		prompts = append(prompts, textPrompt{Text: negative, Weight: -1})
	}
	return prompts
}

func orDefault[T int | float64](v, fallback T) T {
	if v <= 0 {
		return fallback
	}
	return v
}
