package spelltext

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// StaticGenerator produces a deterministic ritual document without calling a
// model. Used when no provider API key is configured, so local development
// and tests exercise the full pipeline.
type StaticGenerator struct{}

func NewStaticGenerator() *StaticGenerator {
	return &StaticGenerator{}
}

type staticArtifact struct {
	Title       string            `json:"title"`
	Materials   []string          `json:"materials"`
	Steps       []staticStep      `json:"steps"`
	SpokenWords staticSpokenWords `json:"spoken_words"`
	Context     staticContext     `json:"historical_context"`
	Warnings    []string          `json:"warnings"`
}

type staticStep struct {
	Instruction string `json:"instruction"`
	Duration    string `json:"duration,omitempty"`
	Note        string `json:"note,omitempty"`
}

type staticSpokenWords struct {
	Invocation string `json:"invocation"`
	Chant      string `json:"chant"`
	Closing    string `json:"closing"`
}

type staticContext struct {
	Tradition     string   `json:"tradition"`
	Sources       []string `json:"sources"`
	Practitioners []string `json:"practitioners"`
}

func (s *StaticGenerator) Generate(_ context.Context, req Request) (string, error) {
	intention := strings.TrimSpace(req.Intention)
	if intention == "" {
		intention = "a fresh beginning"
	}
	c := cases.Title(language.Und)
	title := fmt.Sprintf("A Working for %s", c.String(firstWords(intention, 5)))

	doc := staticArtifact{
		Title:     title,
		Materials: []string{"One white candle", "A slip of paper and pen", "A small bowl of water"},
		Steps: []staticStep{
			{Instruction: "Clear a small surface and set the candle at its center.", Duration: "2 minutes"},
			{Instruction: fmt.Sprintf("Write your intention on the paper: %s.", intention)},
			{Instruction: "Light the candle and read the invocation aloud.", Note: "Speak slowly; repetition matters more than volume."},
			{Instruction: "Fold the paper three times toward you and place it under the bowl."},
			{Instruction: "Sit with the candle until it feels complete, then speak the closing words and snuff the flame."},
		},
		SpokenWords: staticSpokenWords{
			Invocation: "By quiet flame and steady hand, I name what I intend.",
			Chant:      fmt.Sprintf("What I seek, I speak: %s.", intention),
			Closing:    "The work is made; the way is open. So it is.",
		},
		Context: staticContext{
			Tradition: "Candle and paper charms of the early twentieth-century occult revival",
			Sources:   []string{"Documented folk charm patterns, 1910-1945"},
		},
		Warnings: []string{"Never leave a burning candle unattended."},
	}
	if req.Persona != "" {
		doc.Context.Practitioners = []string{req.Persona}
	}
	out, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("static generator: %w", err)
	}
	return string(out), nil
}

func firstWords(s string, n int) string {
	fields := strings.Fields(s)
	if len(fields) > n {
		fields = fields[:n]
	}
	return strings.Join(fields, " ")
}

var _ Generator = (*StaticGenerator)(nil)
