package gemini

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/leofalp/aimux/providers/ai"
)

// imageModalities asks generateContent to answer with an image. TEXT is
// required alongside IMAGE.
var imageModalities = []string{"TEXT", "IMAGE"}

// GenerateImage asks an image-capable model for the prompt and returns the
// first inline image of the response. Accompanying text parts are dropped.
func (p *GeminiProvider) GenerateImage(ctx context.Context, request ai.ImageRequest) ai.ImageResult {
	model, err := models.SelectModel(ProviderName, request.Model, ai.CapabilityImage)
	if err != nil {
		return ai.FailImage(err)
	}
	ctx, finish := ai.StartCall(ctx, ProviderName, ai.CapabilityImage, model)
	result := p.generateImage(ctx, model, request)
	finish(result.Err)
	return result
}

func (p *GeminiProvider) generateImage(ctx context.Context, model string, request ai.ImageRequest) ai.ImageResult {
	resp, err := p.generateContent(ctx, model, generateContentRequest{
		Contents:         []content{textContent("user", request.Prompt)},
		GenerationConfig: &generationConfig{ResponseModalities: imageModalities},
	})
	if err != nil {
		return ai.FailImage(ai.CallError(err))
	}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ai.FailImage(ai.CallError(errors.New("no image in response")))
	}

	for _, part := range resp.Candidates[0].Content.Parts {
		if part.InlineData == nil {
			continue
		}
		image, err := base64.StdEncoding.DecodeString(part.InlineData.Data)
		if err != nil {
			return ai.FailImage(ai.CallError(fmt.Errorf("decoding image: %w", err)))
		}
		usage := usageFrom(resp.UsageMetadata)
		return ai.ImageResult{
			Model:     model,
			Image:     image,
			ImageType: part.InlineData.MimeType,
			Usage:     usage,
			Cost:      models.CalculateCost(p.env.Calculator, model, usage),
		}
	}
	return ai.FailImage(ai.CallError(errors.New("no image in response")))
}
