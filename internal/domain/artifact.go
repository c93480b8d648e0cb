package domain

// RitualStep is one ordered instruction within a generated ritual.
type RitualStep struct {
	Instruction string `json:"instruction"`
	Duration    string `json:"duration,omitempty"`
	Note        string `json:"note,omitempty"`
}

// SpokenWords holds the three spoken segments of a ritual.
type SpokenWords struct {
	Invocation string `json:"invocation,omitempty"`
	Chant      string `json:"chant,omitempty"`
	Closing    string `json:"closing,omitempty"`
}

// HistoricalContext grounds a ritual in documented practice.
type HistoricalContext struct {
	Tradition     string   `json:"tradition,omitempty"`
	Sources       []string `json:"sources,omitempty"`
	Practitioners []string `json:"practitioners,omitempty"`
}

// Artifact is the structured output of one generation request. When the
// provider response cannot be parsed, RawText carries the unparsed reply and
// ParseFailed is set; the structured fields stay empty in that case, never
// both.
type Artifact struct {
	Title       string             `json:"title"`
	Materials   []string           `json:"materials,omitempty"`
	Steps       []RitualStep       `json:"steps,omitempty"`
	SpokenWords SpokenWords        `json:"spoken_words"`
	Context     *HistoricalContext `json:"historical_context,omitempty"`
	Warnings    []string           `json:"warnings,omitempty"`
	ImageBase64 string             `json:"image_base64,omitempty"`
	RawText     string             `json:"raw_text,omitempty"`
	ParseFailed bool               `json:"parse_failed,omitempty"`
}

// Structured reports whether the artifact carries parsed ritual content.
func (a Artifact) Structured() bool {
	return !a.ParseFailed && len(a.Steps) > 0
}
