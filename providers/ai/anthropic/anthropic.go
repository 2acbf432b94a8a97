package anthropic

import (
	"context"
	"net/http"
	"os"

	"github.com/leofalp/aimux/internal/utils"
	"github.com/leofalp/aimux/providers/ai"
)

const (
	ProviderName = "anthropic"

	// defaultBaseURL is the canonical base URL for Anthropic's Messages API.
	defaultBaseURL = "https://api.anthropic.com/v1"

	// messagesEndpoint is the path for the Messages API endpoint.
	messagesEndpoint = "/messages"

	// anthropicVersion is the required anthropic-version header value.
	// Anthropic uses this to version-lock response formats independently of the URL.
	anthropicVersion = "2023-06-01"

	// defaultMaxTokens is sent when the request does not set MaxTokens;
	// Anthropic rejects requests without max_tokens.
	defaultMaxTokens = 1000

	// webSearchToolType is the server tool used for the web_search system tool.
	webSearchToolType = "web_search_20250305"
	webSearchMaxUses  = 5
)

// AnthropicProvider implements [ai.Provider] for Anthropic's Messages API.
// Only text generation is supported; every other capability reports
// [ai.ErrUnsupportedCapability]. Use [New] to construct a ready-to-use instance.
type AnthropicProvider struct {
	ai.Unsupported
	env          ai.Env
	apiKey       string
	baseURL      string
	client       *http.Client
	betaFeatures []string
}

// New returns an [AnthropicProvider] initialized from environment variables.
// It reads ANTHROPIC_API_KEY for authentication and ANTHROPIC_API_BASE_URL for
// the endpoint base (defaulting to https://api.anthropic.com/v1 when unset).
func New(env ai.Env) *AnthropicProvider {
	baseURL := os.Getenv("ANTHROPIC_API_BASE_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &AnthropicProvider{
		Unsupported: ai.Unsupported{Provider: ProviderName},
		env:         ai.NewEnv(env.Registry, env.Calculator),
		apiKey:      os.Getenv("ANTHROPIC_API_KEY"),
		baseURL:     baseURL,
		client:      &http.Client{},
	}
}

// WithAPIKey sets the API key used for authenticating requests and returns the
// provider so calls can be chained. It overrides the value read from ANTHROPIC_API_KEY.
func (p *AnthropicProvider) WithAPIKey(apiKey string) *AnthropicProvider {
	p.apiKey = apiKey
	return p
}

// WithBaseURL overrides the API base URL and returns the provider so calls can
// be chained. Use this when targeting a proxy or local testing endpoint.
func (p *AnthropicProvider) WithBaseURL(baseURL string) *AnthropicProvider {
	p.baseURL = baseURL
	return p
}

// WithHttpClient replaces the default [http.Client] used for API calls and
// returns the provider so calls can be chained. Useful for injecting custom
// timeouts, transport layers, or test doubles.
func (p *AnthropicProvider) WithHttpClient(httpClient *http.Client) *AnthropicProvider {
	p.client = httpClient
	return p
}

// WithBetaFeatures sets the values sent in the anthropic-beta header.
func (p *AnthropicProvider) WithBetaFeatures(features ...string) *AnthropicProvider {
	p.betaFeatures = features
	return p
}

func (p *AnthropicProvider) Name() string { return ProviderName }

func (p *AnthropicProvider) Models() ai.Catalog { return models }

// GenerateText sends a Messages API request. A stop_reason of "tool_use"
// triggers the single tool round trip driven by [ai.RunText].
func (p *AnthropicProvider) GenerateText(ctx context.Context, request ai.TextRequest) ai.TextResult {
	return ai.RunText[anthropicRequest](ctx, dialect{p: p}, p.env, models, request)
}

// buildHeaders constructs the HTTP headers required for every Anthropic request.
// x-api-key carries the credential (Anthropic does not use Bearer tokens),
// anthropic-version pins the wire format, and anthropic-beta is added only when
// beta features are configured so the header is absent for standard requests.
func (p *AnthropicProvider) buildHeaders() []utils.HeaderOption {
	headers := []utils.HeaderOption{
		{Key: "x-api-key", Value: p.apiKey},
		{Key: "anthropic-version", Value: anthropicVersion},
	}

	if betaValue := betaHeaderValue(p.betaFeatures); betaValue != "" {
		headers = append(headers, utils.HeaderOption{Key: "anthropic-beta", Value: betaValue})
	}

	return headers
}
