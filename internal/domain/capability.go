package domain

// Capability names a specialized single-shot request. The value doubles as
// the view name sent to the UI in a view-switch signal.
type Capability string

const (
	CapabilityImagine   Capability = "Imagine"
	CapabilityAnalyze   Capability = "Analyze"
	CapabilityExplain   Capability = "Explain"
	CapabilitySummarize Capability = "Summarize"
	CapabilityIdea      Capability = "Get Idea"
	CapabilityHomework  Capability = "Homework Helper"
)

type AnalysisResult struct {
	KeyComponents []string `json:"keyComponents"`
	RootCause     string   `json:"rootCause"`
	FirstSteps    []string `json:"firstSteps"`
}

type Explanation struct {
	Explanation string   `json:"explanation"`
	Examples    []string `json:"examples"`
	Analogy     string   `json:"analogy"`
}

type Summary struct {
	Summary   string   `json:"summary"`
	KeyPoints []string `json:"keyPoints"`
}

type IdeaList struct {
	Ideas []string `json:"ideas"`
}

type HomeworkStep struct {
	Title       string `json:"title"`
	Explanation string `json:"explanation"`
}

type HomeworkHelp struct {
	Steps       []HomeworkStep `json:"steps"`
	FinalAnswer string         `json:"finalAnswer"`
}

// CapabilityResult is the tagged union produced by a capability request.
// Exactly one payload field matching Kind is set.
type CapabilityResult struct {
	Kind      Capability `json:"kind"`
	InputText string     `json:"input_text"`

	Analysis    *AnalysisResult `json:"analysis,omitempty"`
	Explanation *Explanation    `json:"explanation,omitempty"`
	Summary     *Summary        `json:"summary,omitempty"`
	Ideas       *IdeaList       `json:"ideas,omitempty"`
	Homework    *HomeworkHelp   `json:"homework,omitempty"`
	Image       string          `json:"image,omitempty"` // inline media reference
}

// ViewSignal tells the UI to switch to a capability view with result data.
type ViewSignal struct {
	View Capability        `json:"view"`
	Data *CapabilityResult `json:"data"`
}
