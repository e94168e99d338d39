package service

import (
	"context"
	"fmt"

	"github.com/clarity-ai/clarity/internal/config"
	"github.com/clarity-ai/clarity/internal/domain"
	"github.com/clarity-ai/clarity/internal/media"
	"google.golang.org/genai"
)

// Turn is one prior exchange entry handed to the model as history.
type Turn struct {
	Role domain.Role
	Text string
}

// ContentPart is one element of the ordered prompt content list: either
// text or an inline media reference.
type ContentPart struct {
	Text     string
	MediaRef string
}

type TextRequest struct {
	System  string
	History []Turn // oldest first
	Parts   []ContentPart

	// JSONSchema, when set, constrains the response to a JSON object of
	// this shape. The response text is then the JSON serialization.
	JSONSchema *genai.Schema
}

type TextResult struct {
	Text  string
	Usage domain.TokenUsage
}

// ModelClient is the model API boundary. The concrete wire format is the
// provider's concern; callers hand over system text, history, and an ordered
// content list and get text (or inline media) back.
type ModelClient interface {
	GenerateText(ctx context.Context, req TextRequest) (*TextResult, error)
	GenerateImage(ctx context.Context, prompt string) (string, error)
	SynthesizeSpeech(ctx context.Context, text string) (string, error)
}

// GeminiService implements ModelClient against the Gemini API.
type GeminiService struct {
	client      *genai.Client
	textModel   string
	imageModel  string
	speechModel string
}

func NewGeminiService(ctx context.Context, apiKey, textModel, imageModel, speechModel string) (*GeminiService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &GeminiService{
		client:      client,
		textModel:   textModel,
		imageModel:  imageModel,
		speechModel: speechModel,
	}, nil
}

func (s *GeminiService) GenerateText(ctx context.Context, req TextRequest) (*TextResult, error) {
	var contents []*genai.Content
	for _, t := range req.History {
		var role genai.Role = genai.RoleUser
		if t.Role == domain.RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(t.Text, role))
	}

	parts, err := toParts(req.Parts)
	if err != nil {
		return nil, err
	}
	contents = append(contents, genai.NewContentFromParts(parts, genai.RoleUser))

	cfg := &genai.GenerateContentConfig{}
	if req.System != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}
	if req.JSONSchema != nil {
		cfg.ResponseMIMEType = "application/json"
		cfg.ResponseSchema = req.JSONSchema
	}

	res, err := s.client.Models.GenerateContent(ctx, s.textModel, contents, cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrGeneration, err)
	}

	text := res.Text()
	if text == "" {
		return nil, domain.ErrEmptyResponse
	}

	return &TextResult{Text: text, Usage: usageFrom(res)}, nil
}

func (s *GeminiService) GenerateImage(ctx context.Context, prompt string) (string, error) {
	res, err := s.client.Models.GenerateImages(ctx, s.imageModel, prompt, &genai.GenerateImagesConfig{
		NumberOfImages: 1,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrGeneration, err)
	}
	if len(res.GeneratedImages) == 0 || res.GeneratedImages[0].Image == nil {
		return "", fmt.Errorf("%w: no image returned", domain.ErrGeneration)
	}

	img := res.GeneratedImages[0].Image
	mimeType := img.MIMEType
	if mimeType == "" {
		mimeType = "image/png"
	}
	return media.Encode(img.ImageBytes, mimeType)
}

func (s *GeminiService) SynthesizeSpeech(ctx context.Context, text string) (string, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(text, genai.RoleUser),
	}

	cfg := &genai.GenerateContentConfig{
		ResponseModalities: []string{"AUDIO"},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{
					VoiceName: config.SpeechVoice,
				},
			},
		},
	}

	res, err := s.client.Models.GenerateContent(ctx, s.speechModel, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrGeneration, err)
	}

	for _, cand := range res.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				return media.Encode(part.InlineData.Data, part.InlineData.MIMEType)
			}
		}
	}
	return "", fmt.Errorf("%w: no audio returned", domain.ErrGeneration)
}

func toParts(in []ContentPart) ([]*genai.Part, error) {
	parts := make([]*genai.Part, 0, len(in))
	for _, p := range in {
		if p.MediaRef != "" {
			data, mimeType, err := media.Decode(p.MediaRef)
			if err != nil {
				return nil, err
			}
			parts = append(parts, genai.NewPartFromBytes(data, mimeType))
			continue
		}
		parts = append(parts, genai.NewPartFromText(p.Text))
	}
	return parts, nil
}

func usageFrom(res *genai.GenerateContentResponse) domain.TokenUsage {
	if res.UsageMetadata == nil {
		return domain.TokenUsage{}
	}
	return domain.TokenUsage{
		PromptTokens:     int(res.UsageMetadata.PromptTokenCount),
		CompletionTokens: int(res.UsageMetadata.CandidatesTokenCount),
	}
}
