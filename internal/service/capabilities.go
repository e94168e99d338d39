package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/clarity-ai/clarity/internal/domain"
	"google.golang.org/genai"
)

// CapabilityService runs the specialized single-shot requests. Each takes
// one scalar input and returns one structured output; no conversation
// history is involved and schema failures are fatal for the single request.
type CapabilityService struct {
	model   ModelClient
	webpage *WebpageService
}

func NewCapabilityService(model ModelClient, webpage *WebpageService) *CapabilityService {
	return &CapabilityService{model: model, webpage: webpage}
}

// Run dispatches to the capability named by the router and reports the
// token usage of the underlying model call.
func (s *CapabilityService) Run(ctx context.Context, capability domain.Capability, argument string) (*domain.CapabilityResult, domain.TokenUsage, error) {
	result := &domain.CapabilityResult{Kind: capability, InputText: argument}

	var usage domain.TokenUsage
	var err error
	switch capability {
	case domain.CapabilityImagine:
		result.Image, err = s.model.GenerateImage(ctx, argument)
	case domain.CapabilityAnalyze:
		result.Analysis, usage, err = s.Analyze(ctx, argument)
	case domain.CapabilityExplain:
		result.Explanation, usage, err = s.Explain(ctx, argument)
	case domain.CapabilitySummarize:
		result.Summary, usage, err = s.Summarize(ctx, argument)
	case domain.CapabilityIdea:
		result.Ideas, usage, err = s.Idea(ctx, argument)
	case domain.CapabilityHomework:
		result.Homework, usage, err = s.Homework(ctx, argument)
	default:
		return nil, usage, fmt.Errorf("unknown capability %q", capability)
	}
	if err != nil {
		return nil, usage, err
	}
	return result, usage, nil
}

func (s *CapabilityService) Analyze(ctx context.Context, problem string) (*domain.AnalysisResult, domain.TokenUsage, error) {
	prompt := "You are an expert problem solver. Analyze the following problem description. " +
		"Break it down into its key components, identify the most likely root cause, and suggest " +
		"a few concrete first steps to begin resolving it.\n\nProblem:\n" + problem

	schema := objectSchema(map[string]*genai.Schema{
		"keyComponents": stringArraySchema(),
		"rootCause":     {Type: genai.TypeString},
		"firstSteps":    stringArraySchema(),
	})

	var out domain.AnalysisResult
	usage, err := s.generateJSON(ctx, prompt, schema, &out)
	if err != nil {
		return nil, usage, err
	}
	if out.RootCause == "" || len(out.KeyComponents) == 0 || len(out.FirstSteps) == 0 {
		return nil, usage, fmt.Errorf("%w: incomplete analysis", domain.ErrSchemaValidation)
	}
	return &out, usage, nil
}

func (s *CapabilityService) Explain(ctx context.Context, topic string) (*domain.Explanation, domain.TokenUsage, error) {
	prompt := "You are an expert educator who can explain complex topics simply. " +
		"Provide a clear explanation of the following topic, a few simple examples, " +
		"and a relatable analogy.\n\nTopic:\n" + topic

	schema := objectSchema(map[string]*genai.Schema{
		"explanation": {Type: genai.TypeString},
		"examples":    stringArraySchema(),
		"analogy":     {Type: genai.TypeString},
	})

	var out domain.Explanation
	usage, err := s.generateJSON(ctx, prompt, schema, &out)
	if err != nil {
		return nil, usage, err
	}
	if out.Explanation == "" {
		return nil, usage, fmt.Errorf("%w: empty explanation", domain.ErrSchemaValidation)
	}
	return &out, usage, nil
}

// Summarize condenses long text. When the argument is a URL the page is
// fetched and reduced to readable text first.
func (s *CapabilityService) Summarize(ctx context.Context, text string) (*domain.Summary, domain.TokenUsage, error) {
	if isURL(text) && s.webpage != nil {
		extracted, err := s.webpage.Extract(ctx, text)
		if err != nil {
			return nil, domain.TokenUsage{}, err
		}
		text = extracted
	}

	prompt := "Summarize the following text concisely, then list its key points.\n\nText:\n" + text

	schema := objectSchema(map[string]*genai.Schema{
		"summary":   {Type: genai.TypeString},
		"keyPoints": stringArraySchema(),
	})

	var out domain.Summary
	usage, err := s.generateJSON(ctx, prompt, schema, &out)
	if err != nil {
		return nil, usage, err
	}
	if out.Summary == "" {
		return nil, usage, fmt.Errorf("%w: empty summary", domain.ErrSchemaValidation)
	}
	return &out, usage, nil
}

func (s *CapabilityService) Idea(ctx context.Context, topic string) (*domain.IdeaList, domain.TokenUsage, error) {
	prompt := "You are a creative brainstorming partner. Generate a list of unique and " +
		"interesting ideas for the following topic.\n\nTopic:\n" + topic

	schema := objectSchema(map[string]*genai.Schema{
		"ideas": stringArraySchema(),
	})

	var out domain.IdeaList
	usage, err := s.generateJSON(ctx, prompt, schema, &out)
	if err != nil {
		return nil, usage, err
	}
	if len(out.Ideas) == 0 {
		return nil, usage, fmt.Errorf("%w: no ideas returned", domain.ErrSchemaValidation)
	}
	return &out, usage, nil
}

func (s *CapabilityService) Homework(ctx context.Context, question string) (*domain.HomeworkHelp, domain.TokenUsage, error) {
	prompt := "You are a friendly and encouraging tutor. A student has asked for help with a " +
		"homework question. Guide them to the answer: break the solution into logical, " +
		"easy-to-follow steps with a clear title and simple explanation each, then give the " +
		"final answer.\n\nStudent's question:\n" + question

	schema := objectSchema(map[string]*genai.Schema{
		"steps": {
			Type: genai.TypeArray,
			Items: objectSchema(map[string]*genai.Schema{
				"title":       {Type: genai.TypeString},
				"explanation": {Type: genai.TypeString},
			}),
		},
		"finalAnswer": {Type: genai.TypeString},
	})

	var out domain.HomeworkHelp
	usage, err := s.generateJSON(ctx, prompt, schema, &out)
	if err != nil {
		return nil, usage, err
	}
	if len(out.Steps) == 0 || out.FinalAnswer == "" {
		return nil, usage, fmt.Errorf("%w: incomplete homework help", domain.ErrSchemaValidation)
	}
	return &out, usage, nil
}

func (s *CapabilityService) generateJSON(ctx context.Context, prompt string, schema *genai.Schema, out any) (domain.TokenUsage, error) {
	res, err := s.model.GenerateText(ctx, TextRequest{
		Parts:      []ContentPart{{Text: prompt}},
		JSONSchema: schema,
	})
	if err != nil {
		return domain.TokenUsage{}, err
	}
	if err := json.Unmarshal([]byte(res.Text), out); err != nil {
		return res.Usage, fmt.Errorf("%w: %v", domain.ErrSchemaValidation, err)
	}
	return res.Usage, nil
}

func objectSchema(props map[string]*genai.Schema) *genai.Schema {
	required := make([]string, 0, len(props))
	for name := range props {
		required = append(required, name)
	}
	return &genai.Schema{Type: genai.TypeObject, Properties: props, Required: required}
}

func stringArraySchema() *genai.Schema {
	return &genai.Schema{Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}}
}

func isURL(text string) bool {
	text = strings.TrimSpace(text)
	if strings.ContainsAny(text, " \n\t") {
		return false
	}
	return strings.HasPrefix(text, "http://") || strings.HasPrefix(text, "https://")
}
