package openai

import (
	"context"
	"net/http"
	"os"

	"github.com/leofalp/aimux/internal/jsonschema"
	"github.com/leofalp/aimux/providers/ai"
	"github.com/leofalp/aimux/providers/tool"
)

const (
	ProviderName = "openai"

	defaultBaseURL            = "https://api.openai.com/v1"
	responsesEndpoint         = "/responses"
	imageGenerationsEndpoint  = "/images/generations"
	imageEditsEndpoint        = "/images/edits"
	speechEndpoint            = "/audio/speech"
	transcriptionsEndpoint    = "/audio/transcriptions"
	defaultVoice              = "sage"
	defaultAudioFormat        = "mp3"
	defaultImageMimeType      = "image/png"
	defaultTranscriptionAudio = "audio.mp3"
)

// ImageGeneratorTool is the user tool registered by [New]. It lets a text
// model produce an image, which is returned as the text call's result.
const ImageGeneratorTool = "image_generator"

// OpenAIProvider adapts the OpenAI Responses, Images and Audio APIs. It is the
// only adapter that can continue a conversation from a response id.
type OpenAIProvider struct {
	ai.Unsupported
	env     ai.Env
	apiKey  string
	baseURL string
	client  *http.Client
}

// New creates an OpenAI provider reading OPENAI_API_KEY and
// OPENAI_API_BASE_URL from the environment. It registers the
// [ImageGeneratorTool] in env's registry.
func New(env ai.Env) *OpenAIProvider {
	baseURL := os.Getenv("OPENAI_API_BASE_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	p := &OpenAIProvider{
		Unsupported: ai.Unsupported{Provider: ProviderName},
		env:         ai.NewEnv(env.Registry, env.Calculator),
		apiKey:      os.Getenv("OPENAI_API_KEY"),
		baseURL:     baseURL,
		client:      &http.Client{},
	}
	p.registerImageGenerator()
	return p
}

// WithAPIKey sets the API key for the provider
func (p *OpenAIProvider) WithAPIKey(apiKey string) *OpenAIProvider {
	p.apiKey = apiKey
	return p
}

// WithBaseURL sets the base URL for the API
func (p *OpenAIProvider) WithBaseURL(baseURL string) *OpenAIProvider {
	p.baseURL = baseURL
	return p
}

// WithHttpClient sets a custom HTTP client
func (p *OpenAIProvider) WithHttpClient(httpClient *http.Client) *OpenAIProvider {
	p.client = httpClient
	return p
}

func (p *OpenAIProvider) Name() string { return ProviderName }

func (p *OpenAIProvider) Models() ai.Catalog { return models }

func (p *OpenAIProvider) SupportsContinuation() bool { return true }

// GenerateText runs a Responses API call with at most one tool round trip.
// web_search is mapped to the web_search_preview tool and forced through
// tool_choice.
func (p *OpenAIProvider) GenerateText(ctx context.Context, request ai.TextRequest) ai.TextResult {
	return ai.RunText[responseCreateRequest](ctx, dialect{p: p}, p.env, models, request)
}

func (p *OpenAIProvider) registerImageGenerator() {
	p.env.Registry.Register(ImageGeneratorTool, "Generates an image from a text prompt",
		jsonschema.Object(map[string]*jsonschema.Schema{
			"prompt": jsonschema.String("The prompt for image generation"),
		}, "prompt"),
		func(ctx context.Context, args map[string]any) (any, error) {
			prompt, _ := args["prompt"].(string)
			result := p.GenerateImage(ctx, ai.ImageRequest{Prompt: prompt, N: 1})
			if result.Err != nil {
				return nil, result.Err
			}
			return &tool.Artifact{
				Kind:     tool.ArtifactImage,
				Data:     result.Image,
				MimeType: result.ImageType,
				Usage:    result.Usage,
				Cost:     result.Cost,
			}, nil
		},
	)
}
