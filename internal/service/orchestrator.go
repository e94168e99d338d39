package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/clarity-ai/clarity/internal/config"
	"github.com/clarity-ai/clarity/internal/domain"
	"google.golang.org/genai"
)

// Orchestrator composes freeform conversational requests: persona and
// language directives, a trailing history window, the new user input, and
// any attached media, into a single model invocation.
type Orchestrator struct {
	model ModelClient
}

func NewOrchestrator(model ModelClient) *Orchestrator {
	return &Orchestrator{model: model}
}

type FreeformInput struct {
	Text     string
	History  []domain.Message // full chat log; the window is applied here
	Settings domain.Settings
	Image    string // inline media reference, optional
	Audio    string // inline media reference, optional
}

type FreeformResult struct {
	Response   string
	Transcript string // set only when audio was supplied
	Usage      domain.TokenUsage
}

// transcriptSchema asks the model for an explicit transcript alongside the
// answer instead of relying on prose conventions.
var transcriptSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"transcription": {Type: genai.TypeString},
		"response":      {Type: genai.TypeString},
	},
	Required: []string{"transcription", "response"},
}

const transcriptDirective = "First transcribe the attached audio exactly, then answer the transcribed request."

// Respond runs one freeform turn. Audio turns transcribe and answer in the
// same call. Any transport or model failure surfaces as ErrGeneration; the
// caller rolls back the pending placeholder.
func (o *Orchestrator) Respond(ctx context.Context, in FreeformInput) (*FreeformResult, error) {
	req := TextRequest{
		System:  buildSystemInstruction(in.Settings),
		History: historyWindow(in.History),
	}

	if in.Audio != "" {
		req.Parts = append(req.Parts, ContentPart{Text: transcriptDirective})
		req.JSONSchema = transcriptSchema
	}
	if in.Image != "" {
		req.Parts = append(req.Parts, ContentPart{MediaRef: in.Image})
	}
	if in.Audio != "" {
		req.Parts = append(req.Parts, ContentPart{MediaRef: in.Audio})
	}
	if strings.TrimSpace(in.Text) != "" {
		req.Parts = append(req.Parts, ContentPart{Text: in.Text})
	}

	res, err := o.model.GenerateText(ctx, req)
	if err != nil {
		if errors.Is(err, domain.ErrGeneration) || errors.Is(err, domain.ErrEmptyResponse) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrGeneration, err)
	}

	out := &FreeformResult{Response: res.Text, Usage: res.Usage}
	if in.Audio != "" {
		out.Transcript, out.Response = extractTranscript(res.Text, in.Text)
	}
	return out, nil
}

// buildSystemInstruction folds persona and language settings into the system
// text, falling back to a default helpful-assistant instruction and
// respond-in-input-language directive.
func buildSystemInstruction(s domain.Settings) string {
	persona := strings.TrimSpace(s.Persona)
	if persona == "" {
		persona = config.DefaultPersona
	}
	language := strings.TrimSpace(s.Language)
	if language == "" {
		language = config.DefaultLanguage
	}
	return fmt.Sprintf("%s Respond in %s.", persona, language)
}

// historyWindow keeps the trailing window of settled turns, oldest first.
func historyWindow(messages []domain.Message) []Turn {
	var turns []Turn
	for _, m := range messages {
		if m.Pending || strings.TrimSpace(m.Text) == "" {
			continue
		}
		turns = append(turns, Turn{Role: m.Role, Text: m.Text})
	}
	if len(turns) > config.HistoryWindowMessages {
		turns = turns[len(turns)-config.HistoryWindowMessages:]
	}
	return turns
}

// extractTranscript pulls the transcript out of an audio turn's reply.
// Preferred path is the structured {transcription, response} object; the
// "Transcription:" prefix scan is a best-effort fallback for prose replies,
// and the caller-supplied text stands in when both fail.
func extractTranscript(raw, fallback string) (transcript, response string) {
	var structured struct {
		Transcription string `json:"transcription"`
		Response      string `json:"response"`
	}
	if err := json.Unmarshal([]byte(raw), &structured); err == nil && structured.Response != "" {
		return structured.Transcription, structured.Response
	}

	line, rest, found := strings.Cut(raw, "\n")
	if t, ok := strings.CutPrefix(strings.TrimSpace(line), "Transcription:"); ok {
		transcript = strings.TrimSpace(t)
		if found {
			return transcript, strings.TrimSpace(rest)
		}
		return transcript, ""
	}

	return fallback, raw
}
