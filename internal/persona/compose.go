package persona

import (
	"fmt"
	"strings"

	"crowlands/internal/domain"
)

// artifactSchema is the JSON shape the text model is asked to produce. It
// mirrors domain.Artifact's structured fields.
const artifactSchema = `{
  "title": "short evocative title",
  "materials": ["item the seeker needs", "..."],
  "steps": [{"instruction": "what to do", "duration": "optional timing", "note": "optional tip"}],
  "spoken_words": {"invocation": "opening words", "chant": "main utterance", "closing": "closing words"},
  "historical_context": {"tradition": "tradition drawn on", "sources": ["documented source"], "practitioners": ["historical practitioner"]},
  "warnings": ["optional caution"]
}`

// ComposePrompt interpolates a persona's voice descriptor and the seeker's
// intention into the fixed generation template. The output is deterministic:
// the same persona and intention always produce the same prompt text.
func ComposePrompt(p domain.Persona, intention string) string {
	var b strings.Builder
	b.WriteString(p.Voice)
	b.WriteString("\n\n")
	if p.RitualStyle != "" {
		fmt.Fprintf(&b, "Your ritual style: %s\n", p.RitualStyle)
	}
	if len(p.Specialties) > 0 {
		fmt.Fprintf(&b, "Your specialties: %s\n", strings.Join(p.Specialties, ", "))
	}
	if len(p.Sources) > 0 {
		fmt.Fprintf(&b, "Historical sources you draw on: %s\n", strings.Join(p.Sources, "; "))
	}
	b.WriteString("\nA seeker asks for help with the following intention:\n")
	fmt.Fprintf(&b, "%q\n\n", strings.TrimSpace(intention))
	b.WriteString("Craft a complete, practical ritual for this intention in your own voice. ")
	b.WriteString("Ground it in documented historical practice and keep every step actionable. ")
	b.WriteString("Respond with only a JSON object, no prose around it, matching exactly this shape:\n")
	b.WriteString(artifactSchema)
	return b.String()
}

// ComposeImagePrompt derives the short image-generation prompt from an
// artifact title, in the house art direction carried over from the original
// grimoire designs.
func ComposeImagePrompt(title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		title = "a candlelit ritual scene"
	}
	return fmt.Sprintf(
		"1920s-1940s mystical art style, %s, art deco influences, rich jewel tones, Bloomsbury aesthetic",
		title,
	)
}
