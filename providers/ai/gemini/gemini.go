package gemini

import (
	"context"
	"net/http"
	"os"

	"github.com/leofalp/aimux/internal/utils"
	"github.com/leofalp/aimux/providers/ai"
)

const (
	ProviderName = "gemini"

	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

	// defaultMaxOutputTokens and defaultTemperature are applied when the
	// request leaves them unset.
	defaultMaxOutputTokens = 2048
	defaultTemperature     = 0.7
)

// GeminiProvider implements [ai.Provider] for Google's Gemini API. It
// generates text and images; the other capabilities report
// [ai.ErrUnsupportedCapability].
type GeminiProvider struct {
	ai.Unsupported
	env     ai.Env
	apiKey  string
	baseURL string
	client  *http.Client
}

// New creates a new Gemini provider instance with default values from environment.
// Environment variables:
//   - GEMINI_API_KEY: API key for authentication
//   - GEMINI_API_BASE_URL: Base URL for API (optional, defaults to Google's API)
func New(env ai.Env) *GeminiProvider {
	baseURL := os.Getenv("GEMINI_API_BASE_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &GeminiProvider{
		Unsupported: ai.Unsupported{Provider: ProviderName},
		env:         ai.NewEnv(env.Registry, env.Calculator),
		apiKey:      os.Getenv("GEMINI_API_KEY"),
		baseURL:     baseURL,
		client:      &http.Client{},
	}
}

// WithAPIKey sets the API key for the provider.
func (p *GeminiProvider) WithAPIKey(apiKey string) *GeminiProvider {
	p.apiKey = apiKey
	return p
}

// WithBaseURL sets the base URL for the API.
func (p *GeminiProvider) WithBaseURL(baseURL string) *GeminiProvider {
	p.baseURL = baseURL
	return p
}

// WithHttpClient sets a custom HTTP client.
func (p *GeminiProvider) WithHttpClient(httpClient *http.Client) *GeminiProvider {
	p.client = httpClient
	return p
}

func (p *GeminiProvider) Name() string { return ProviderName }

func (p *GeminiProvider) Models() ai.Catalog { return models }

// GenerateText calls generateContent. A functionCall part in the first
// response triggers one functionResponse round trip.
func (p *GeminiProvider) GenerateText(ctx context.Context, request ai.TextRequest) ai.TextResult {
	return ai.RunText[generateContentRequest](ctx, dialect{p: p}, p.env, models, request)
}

// generateContent posts req to the model's generateContent endpoint.
// Gemini authenticates with x-goog-api-key instead of a Bearer token.
func (p *GeminiProvider) generateContent(ctx context.Context, model string, req generateContentRequest) (*generateContentResponse, error) {
	if err := ai.RequireAPIKey(ProviderName, p.apiKey); err != nil {
		return nil, err
	}

	url := p.baseURL + "/models/" + model + ":generateContent"
	_, resp, err := utils.DoPostSync[generateContentResponse](ctx, p.client, url, "", req,
		utils.HeaderOption{Key: "x-goog-api-key", Value: p.apiKey},
	)
	return resp, err
}
