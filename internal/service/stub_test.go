package service_test

import (
	"context"

	"github.com/clarity-ai/clarity/internal/service"
)

// stubModel implements service.ModelClient with per-call hooks.
type stubModel struct {
	generateText    func(ctx context.Context, req service.TextRequest) (*service.TextResult, error)
	generateImage   func(ctx context.Context, prompt string) (string, error)
	synthesizeSpeak func(ctx context.Context, text string) (string, error)
}

func (s *stubModel) GenerateText(ctx context.Context, req service.TextRequest) (*service.TextResult, error) {
	return s.generateText(ctx, req)
}

func (s *stubModel) GenerateImage(ctx context.Context, prompt string) (string, error) {
	return s.generateImage(ctx, prompt)
}

func (s *stubModel) SynthesizeSpeech(ctx context.Context, text string) (string, error) {
	return s.synthesizeSpeak(ctx, text)
}
