// Package spelltext dispatches composed ritual prompts to a text-generation
// provider and returns the raw model reply. Parsing into the structured
// artifact shape happens in the orchestrator.
package spelltext

import "context"

// Request carries the composed prompt plus enough context for the static
// fallback generator to produce a sensible reply without a model.
type Request struct {
	Prompt    string
	Intention string
	Persona   string
}

// Generator is the contract implemented by all text providers. A call may
// block for several seconds; implementations must honor ctx.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}
