package orchestrator

import (
	"encoding/json"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"crowlands/internal/domain"
)

// artifactPayload mirrors the JSON shape the prompt instructs providers to
// produce. Parsing is tolerant: the model wraps replies in code fences or
// leading prose often enough that we scan for the outermost object.
type artifactPayload struct {
	Title     string   `json:"title"`
	Materials []string `json:"materials"`
	Steps     []struct {
		Instruction string `json:"instruction"`
		Duration    string `json:"duration"`
		Note        string `json:"note"`
	} `json:"steps"`
	SpokenWords struct {
		Invocation string `json:"invocation"`
		Chant      string `json:"chant"`
		Closing    string `json:"closing"`
	} `json:"spoken_words"`
	HistoricalContext struct {
		Tradition     string   `json:"tradition"`
		Sources       []string `json:"sources"`
		Practitioners []string `json:"practitioners"`
	} `json:"historical_context"`
	Warnings []string `json:"warnings"`
}

func parseArtifact(raw, intention string) domain.Artifact {
	cleaned := stripFences(raw)
	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start < 0 || end <= start {
		return fallbackArtifact(raw, intention)
	}

	var payload artifactPayload
	if err := json.Unmarshal([]byte(cleaned[start:end+1]), &payload); err != nil {
		return fallbackArtifact(raw, intention)
	}
	if payload.Title == "" || len(payload.Steps) == 0 {
		return fallbackArtifact(raw, intention)
	}

	a := domain.Artifact{
		Title:     payload.Title,
		Materials: payload.Materials,
		SpokenWords: domain.SpokenWords{
			Invocation: payload.SpokenWords.Invocation,
			Chant:      payload.SpokenWords.Chant,
			Closing:    payload.SpokenWords.Closing,
		},
		Warnings: payload.Warnings,
	}
	hc := payload.HistoricalContext
	if hc.Tradition != "" || len(hc.Sources) > 0 || len(hc.Practitioners) > 0 {
		a.Context = &domain.HistoricalContext{
			Tradition:     hc.Tradition,
			Sources:       hc.Sources,
			Practitioners: hc.Practitioners,
		}
	}
	for _, s := range payload.Steps {
		a.Steps = append(a.Steps, domain.RitualStep{
			Instruction: s.Instruction,
			Duration:    s.Duration,
			Note:        s.Note,
		})
	}
	return a
}

// fallbackArtifact preserves an unparseable reply verbatim so a paid
// generation unit never produces an empty response.
func fallbackArtifact(raw, intention string) domain.Artifact {
	return domain.Artifact{
		Title:       deriveTitle(intention),
		RawText:     strings.TrimSpace(raw),
		ParseFailed: true,
	}
}

func deriveTitle(intention string) string {
	words := strings.Fields(intention)
	if len(words) > 6 {
		words = words[:6]
	}
	caser := cases.Title(language.English)
	return "A Working for " + caser.String(strings.Join(words, " "))
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
