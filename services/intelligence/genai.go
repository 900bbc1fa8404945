package intelligence

import (
	"context"
	"fmt"

	"fashionstudio/utils"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

// GenAIGenerator calls an image-capable Gemini model through the genai SDK.
// The same client type serves both the Vertex AI and the Gemini API backends.
type GenAIGenerator struct {
	client *genai.Client
	model  string
	config *genai.GenerateContentConfig
}

// NewVertexGenerator creates a generator against Vertex AI using application default credentials.
func NewVertexGenerator(ctx context.Context, project, location, model string) (*GenAIGenerator, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Project:  project,
		Location: location,
		Backend:  genai.BackendVertexAI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Vertex AI client: %w", err)
	}
	return &GenAIGenerator{client: client, model: model, config: tryOnConfig()}, nil
}

// NewGeminiAPIGenerator creates a generator against the Gemini API using an API key.
func NewGeminiAPIGenerator(ctx context.Context, apiKey, model string) (*GenAIGenerator, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini API client: %w", err)
	}
	return &GenAIGenerator{client: client, model: model, config: tryOnConfig()}, nil
}

func tryOnConfig() *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		Temperature:        genai.Ptr[float32](0.7),
		TopP:               genai.Ptr[float32](0.9),
		MaxOutputTokens:    8192,
		ResponseModalities: []string{"TEXT", "IMAGE"},
		SafetySettings: []*genai.SafetySetting{
			{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockThresholdBlockOnlyHigh},
			{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockThresholdBlockOnlyHigh},
			{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockThresholdBlockOnlyHigh},
			{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockThresholdBlockOnlyHigh},
		},
	}
}

func tryOnContents(model, garment Image) []*genai.Content {
	return []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(TryOnPrompt),
			genai.NewPartFromBytes(model.Data, model.MIMEType),
			genai.NewPartFromBytes(garment.Data, garment.MIMEType),
		}, genai.RoleUser),
	}
}

// Generate sends both photos with the try-on prompt and returns the produced image.
func (g *GenAIGenerator) Generate(ctx context.Context, model, garment Image) (Image, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, tryOnContents(model, garment), g.config)
	if err != nil {
		return Image{}, fmt.Errorf("generate content (%s): %w", g.model, err)
	}

	img, err := firstInlineImage(resp)
	if err != nil {
		utils.GetLogger().Warn("Generation response rejected",
			zap.String("model", g.model),
			zap.Int("candidates", len(resp.Candidates)),
			zap.Error(err))
		return Image{}, err
	}
	return img, nil
}

// firstInlineImage accepts exactly one response shape: the first inline image part of the first candidate.
func firstInlineImage(resp *genai.GenerateContentResponse) (Image, error) {
	if resp == nil {
		return Image{}, ErrNoImage
	}
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return Image{}, fmt.Errorf("%w: prompt blocked (%s)", ErrBlocked, resp.PromptFeedback.BlockReason)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		return Image{}, ErrNoImage
	}

	candidate := resp.Candidates[0]
	if candidate.FinishReason == genai.FinishReasonSafety || candidate.FinishReason == genai.FinishReasonProhibitedContent {
		return Image{}, fmt.Errorf("%w: %s", ErrBlocked, candidate.FinishReason)
	}
	if candidate.Content == nil {
		return Image{}, ErrNoImage
	}
	for _, part := range candidate.Content.Parts {
		if part != nil && part.InlineData != nil && len(part.InlineData.Data) > 0 {
			mimeType := part.InlineData.MIMEType
			if mimeType == "" {
				mimeType = "image/png"
			}
			return Image{Data: part.InlineData.Data, MIMEType: mimeType}, nil
		}
	}
	return Image{}, ErrNoImage
}
