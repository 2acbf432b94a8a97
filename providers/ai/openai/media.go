package openai

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"

	"github.com/leofalp/aimux/core/cost"
	"github.com/leofalp/aimux/internal/utils"
	"github.com/leofalp/aimux/providers/ai"
)

// GenerateImage calls the Images API and returns the first image, decoded
// from base64.
func (p *OpenAIProvider) GenerateImage(ctx context.Context, request ai.ImageRequest) ai.ImageResult {
	model, err := models.SelectModel(ProviderName, request.Model, ai.CapabilityImage)
	if err != nil {
		return ai.FailImage(err)
	}
	ctx, finish := ai.StartCall(ctx, ProviderName, ai.CapabilityImage, model)
	result := p.generateImage(ctx, model, request)
	finish(result.Err)
	return result
}

func (p *OpenAIProvider) generateImage(ctx context.Context, model string, request ai.ImageRequest) ai.ImageResult {
	if err := ai.RequireAPIKey(ProviderName, p.apiKey); err != nil {
		return ai.FailImage(err)
	}

	size := "auto"
	if request.Width > 0 && request.Height > 0 {
		size = fmt.Sprintf("%dx%d", request.Width, request.Height)
	}

	_, resp, err := utils.DoPostSync[imageResponse](ctx, p.client, p.baseURL+imageGenerationsEndpoint, p.apiKey, imageGenerationRequest{
		Model:   model,
		Prompt:  request.Prompt,
		N:       max(request.N, 1),
		Size:    size,
		Quality: "auto",
	})
	if err != nil {
		return ai.FailImage(ai.CallError(err))
	}
	return p.imageResult(model, resp)
}

// EditImage sends the source image to the edits endpoint as multipart form
// data.
func (p *OpenAIProvider) EditImage(ctx context.Context, request ai.EditImageRequest) ai.ImageResult {
	model, err := models.SelectModel(ProviderName, request.Model, ai.CapabilityImage)
	if err != nil {
		return ai.FailImage(err)
	}
	if len(request.Image) == 0 {
		return ai.FailImage(fmt.Errorf("%w: source image is empty", ai.ErrInvalidRequest))
	}

	ctx, finish := ai.StartCall(ctx, ProviderName, ai.CapabilityImage, model)
	result := p.editImage(ctx, model, request)
	finish(result.Err)
	return result
}

func (p *OpenAIProvider) editImage(ctx context.Context, model string, request ai.EditImageRequest) ai.ImageResult {
	if err := ai.RequireAPIKey(ProviderName, p.apiKey); err != nil {
		return ai.FailImage(err)
	}

	mimeType := request.MimeType
	if mimeType == "" {
		mimeType = defaultImageMimeType
	}

	form := utils.MultipartForm{
		Fields: map[string]string{
			"model":  model,
			"prompt": request.Prompt,
			"n":      strconv.Itoa(max(request.N, 1)),
		},
		Files: []utils.FormFile{{
			Field:       "image",
			FileName:    "image" + extensionFor(mimeType),
			ContentType: mimeType,
			Data:        request.Image,
		}},
	}

	_, resp, err := utils.DoPostMultipart[imageResponse](ctx, p.client, p.baseURL+imageEditsEndpoint, p.apiKey, form)
	if err != nil {
		return ai.FailImage(ai.CallError(err))
	}
	return p.imageResult(model, resp)
}

func (p *OpenAIProvider) imageResult(model string, resp *imageResponse) ai.ImageResult {
	if resp == nil || len(resp.Data) == 0 || resp.Data[0].B64JSON == "" {
		return ai.FailImage(ai.CallError(errors.New("no image in response")))
	}

	image, err := base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
	if err != nil {
		return ai.FailImage(ai.CallError(fmt.Errorf("decoding image: %w", err)))
	}

	var usage cost.Usage
	if resp.Usage != nil {
		usage = cost.NewUsage(resp.Usage.InputTokens, resp.Usage.OutputTokens, resp.Usage.TotalTokens)
	}
	return ai.ImageResult{
		Model:     model,
		Image:     image,
		ImageType: defaultImageMimeType,
		Usage:     usage,
		Cost:      models.CalculateCost(p.env.Calculator, model, usage),
	}
}

// GenerateTTS synthesizes speech. The Audio API reports no token usage, so
// Usage is zero and Cost is a known zero.
func (p *OpenAIProvider) GenerateTTS(ctx context.Context, request ai.TTSRequest) ai.AudioResult {
	model, err := models.SelectModel(ProviderName, request.Model, ai.CapabilityTTS)
	if err != nil {
		return ai.FailAudio(err)
	}
	ctx, finish := ai.StartCall(ctx, ProviderName, ai.CapabilityTTS, model)
	result := p.generateTTS(ctx, model, request)
	finish(result.Err)
	return result
}

func (p *OpenAIProvider) generateTTS(ctx context.Context, model string, request ai.TTSRequest) ai.AudioResult {
	if err := ai.RequireAPIKey(ProviderName, p.apiKey); err != nil {
		return ai.FailAudio(err)
	}

	voice := request.Voice
	if voice == "" {
		voice = defaultVoice
	}
	format := request.Format
	if format == "" {
		format = defaultAudioFormat
	}

	_, audio, err := utils.DoPostRaw(ctx, p.client, p.baseURL+speechEndpoint, p.apiKey, speechRequest{
		Model:          model,
		Input:          request.Prompt,
		Voice:          voice,
		Instructions:   request.Instructions,
		ResponseFormat: format,
	})
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

// Transcribe converts speech to text with the transcriptions endpoint.
func (p *OpenAIProvider) Transcribe(ctx context.Context, request ai.TranscriptionRequest) ai.TranscriptionResult {
	model, err := models.SelectModel(ProviderName, request.Model, ai.CapabilitySTT)
	if err != nil {
		return ai.FailTranscription(err)
	}
	if len(request.Audio) == 0 {
		return ai.FailTranscription(fmt.Errorf("%w: audio is empty", ai.ErrInvalidRequest))
	}

	ctx, finish := ai.StartCall(ctx, ProviderName, ai.CapabilitySTT, model)
	result := p.transcribe(ctx, model, request)
	finish(result.Err)
	return result
}

func (p *OpenAIProvider) transcribe(ctx context.Context, model string, request ai.TranscriptionRequest) ai.TranscriptionResult {
	if err := ai.RequireAPIKey(ProviderName, p.apiKey); err != nil {
		return ai.FailTranscription(err)
	}

	fileName := request.FileName
	if fileName == "" {
		fileName = defaultTranscriptionAudio
	}
	form := utils.MultipartForm{
		Fields: map[string]string{"model": model},
		Files:  []utils.FormFile{{Field: "file", FileName: fileName, Data: request.Audio}},
	}
	if request.Language != "" {
		form.Fields["language"] = request.Language
	}

	_, resp, err := utils.DoPostMultipart[transcriptionResponse](ctx, p.client, p.baseURL+transcriptionsEndpoint, p.apiKey, form)
	if err != nil {
		return ai.FailTranscription(ai.CallError(err))
	}
	if resp == nil {
		return ai.FailTranscription(ai.CallError(errors.New("empty transcription response")))
	}

	var usage cost.Usage
	if resp.Usage != nil {
		usage = cost.NewUsage(resp.Usage.InputTokens, resp.Usage.OutputTokens, resp.Usage.TotalTokens)
	}
	return ai.TranscriptionResult{
		Model: model,
		Text:  resp.Text,
		Usage: usage,
		Cost:  models.CalculateCost(p.env.Calculator, model, usage),
	}
}

func extensionFor(mimeType string) string {
	switch mimeType {
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	default:
		return ".png"
	}
}
