package elevenlabs

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
	ProviderName = "elevenlabs"

	defaultBaseURL     = "https://api.elevenlabs.io/v1"
	textToSpeechPath   = "/text-to-speech/"
	voicesPath         = "/voices"
	defaultAudioFormat = "mp3"
)

// outputFormats maps short container names to ElevenLabs output_format
// values. Other values are forwarded unchanged.
var outputFormats = map[string]string{
	"mp3": "mp3_44100_128",
	"pcm": "pcm_44100",
}

// ElevenLabsProvider implements [ai.Provider] for speech synthesis only.
type ElevenLabsProvider struct {
	ai.Unsupported
	env     ai.Env
	apiKey  string
	baseURL string
	client  *http.Client
}

// New creates an ElevenLabs provider reading ELEVENLABS_API_KEY and
// ELEVENLABS_API_BASE_URL from the environment.
func New(env ai.Env) *ElevenLabsProvider {
	baseURL := os.Getenv("ELEVENLABS_API_BASE_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &ElevenLabsProvider{
		Unsupported: ai.Unsupported{Provider: ProviderName},
		env:         ai.NewEnv(env.Registry, env.Calculator),
		apiKey:      os.Getenv("ELEVENLABS_API_KEY"),
		baseURL:     baseURL,
		client:      &http.Client{},
	}
}

// WithAPIKey sets the API key for the provider
func (p *ElevenLabsProvider) WithAPIKey(apiKey string) *ElevenLabsProvider {
	p.apiKey = apiKey
	return p
}

// WithBaseURL sets the base URL for the API
func (p *ElevenLabsProvider) WithBaseURL(baseURL string) *ElevenLabsProvider {
	p.baseURL = baseURL
	return p
}

// WithHttpClient sets a custom HTTP client
func (p *ElevenLabsProvider) WithHttpClient(httpClient *http.Client) *ElevenLabsProvider {
	p.client = httpClient
	return p
}

func (p *ElevenLabsProvider) Name() string { return ProviderName }

func (p *ElevenLabsProvider) Models() ai.Catalog { return models }

func (p *ElevenLabsProvider) headers() []utils.HeaderOption {
	return []utils.HeaderOption{{Key: "xi-api-key", Value: p.apiKey}}
}

// GenerateTTS converts the prompt to speech. Instructions are ignored.
func (p *ElevenLabsProvider) GenerateTTS(ctx context.Context, request ai.TTSRequest) ai.AudioResult {
	model, err := models.SelectModel(ProviderName, request.Model, ai.CapabilityTTS)
	if err != nil {
		return ai.FailAudio(err)
	}
	ctx, finish := ai.StartCall(ctx, ProviderName, ai.CapabilityTTS, model)
	result := p.generateTTS(ctx, model, request)
	finish(result.Err)
	return result
}

func (p *ElevenLabsProvider) generateTTS(ctx context.Context, model string, request ai.TTSRequest) ai.AudioResult {
	if err := ai.RequireAPIKey(ProviderName, p.apiKey); err != nil {
		return ai.FailAudio(err)
	}

	format := request.Format
	if format == "" {
		format = defaultAudioFormat
	}
	outputFormat, ok := outputFormats[format]
	if !ok {
		outputFormat = format
	}

	voice := voiceID(request.Voice)
	observability.ObserverFromContext(ctx).Debug(ctx, "converting text to speech",
		observability.String(observability.AttrModel, model),
		observability.String("elevenlabs.voice_id", voice),
	)

	endpoint := p.baseURL + textToSpeechPath + url.PathEscape(voice) + "?output_format=" + url.QueryEscape(outputFormat)
	_, audio, err := utils.DoPostRaw(ctx, p.client, endpoint, "", speechRequest{
		Text:    request.Prompt,
		ModelID: model,
	}, p.headers()...)
	if err != nil {
		return ai.FailAudio(ai.CallError(err))
	}
	if len(audio) == 0 {
		return ai.FailAudio(ai.CallError(errors.New("empty audio response")))
	}

	return ai.AudioResult{
		Model:  model,
		Audio:  audio,
		Format: format,
		Cost:   models.CalculateCost(p.env.Calculator, model, cost.Usage{}),
	}
}

// Voices lists the voices available to the account.
func (p *ElevenLabsProvider) Voices(ctx context.Context) ([]Voice, error) {
	if err := ai.RequireAPIKey(ProviderName, p.apiKey); err != nil {
		return nil, err
	}
	_, resp, err := utils.DoGetSync[voicesResponse](ctx, p.client, p.baseURL+voicesPath, "", p.headers()...)
	if err != nil {
		return nil, ai.CallError(err)
	}
	return resp.Voices, nil
}

// Voice fetches a single voice by id.
func (p *ElevenLabsProvider) Voice(ctx context.Context, id string) (*Voice, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: voice id is empty", ai.ErrInvalidRequest)
	}
	if err := ai.RequireAPIKey(ProviderName, p.apiKey); err != nil {
		return nil, err
	}
	_, voice, err := utils.DoGetSync[Voice](ctx, p.client, p.baseURL+voicesPath+"/"+url.PathEscape(id), "", p.headers()...)
	if err != nil {
		return nil, ai.CallError(err)
	}
	return voice, nil
}
