package domain

// Settings holds a user's response language and persona text. Both may be
// empty, in which case the orchestrator falls back to its defaults.
type Settings struct {
	Language string `json:"language"`
	Persona  string `json:"persona"`
}
