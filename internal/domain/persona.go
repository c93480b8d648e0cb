package domain

// Persona is a named voice profile used to bias generated rituals. The
// catalog is loaded once from static configuration and never mutated.
type Persona struct {
	ID                 string   `json:"id"`
	Name               string   `json:"name"`
	ShortName          string   `json:"short_name"`
	Title              string   `json:"title"`
	Era                string   `json:"era,omitempty"`
	Voice              string   `json:"voice"`
	RitualStyle        string   `json:"ritual_style"`
	EmpowermentMessage string   `json:"empowerment_message,omitempty"`
	Specialties        []string `json:"specialties"`
	SamplePrompts      []string `json:"sample_prompts,omitempty"`
	Sources            []string `json:"historical_sources,omitempty"`
}
