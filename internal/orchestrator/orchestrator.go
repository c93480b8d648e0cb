// Package orchestrator coordinates one generation request end to end:
// quota reservation, persona-aware prompt composition, the text provider
// call, response parsing, and the optional independent image step.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"crowlands/internal/domain"
	"crowlands/internal/infra"
	"crowlands/internal/ledger"
	"crowlands/internal/persona"
	"crowlands/internal/providers/image"
	"crowlands/internal/providers/spelltext"
)

// Reserver is the slice of the entitlement ledger the orchestrator needs.
type Reserver interface {
	Reserve(ctx context.Context, userID string) (*ledger.Reservation, error)
}

// Request is one generation request, alive only for the duration of the
// call. An empty PersonaID selects the neutral default guide.
type Request struct {
	UserID    string
	PersonaID string
	Intention string
	WantImage bool
}

// Result is the assembled outcome of a granted generation.
type Result struct {
	Artifact    domain.Artifact
	Persona     *domain.Persona
	Remaining   int
	Unlimited   bool
	ImageFailed bool
}

type Orchestrator struct {
	registry *persona.Registry
	ledger   Reserver
	text     spelltext.Generator
	image    image.Generator
	logger   infra.Logger
}

func New(registry *persona.Registry, led Reserver, text spelltext.Generator, img image.Generator, logger infra.Logger) *Orchestrator {
	return &Orchestrator{
		registry: registry,
		ledger:   led,
		text:     text,
		image:    img,
		logger:   logger,
	}
}

// Generate runs the full pipeline. Quota is charged before the provider is
// invoked and is not refunded on provider failure: the attempt cost external
// budget regardless of the output. Image failure degrades the result instead
// of failing it.
func (o *Orchestrator) Generate(ctx context.Context, req Request) (*Result, error) {
	intention := strings.TrimSpace(req.Intention)
	if intention == "" {
		return nil, domain.ErrInvalidIntention
	}

	guide := o.registry.Default()
	var selected *domain.Persona
	if req.PersonaID != "" {
		p, err := o.registry.Get(req.PersonaID)
		if err != nil {
			return nil, err
		}
		guide = p
		selected = &p
	}

	res, err := o.ledger.Reserve(ctx, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("reserve generation unit: %w", err)
	}
	if !res.Granted {
		return nil, &domain.QuotaError{Limit: res.Limit, Remaining: res.Remaining}
	}

	prompt := persona.ComposePrompt(guide, intention)
	raw, err := o.text.Generate(ctx, spelltext.Request{
		Prompt:    prompt,
		Intention: intention,
		Persona:   guide.ShortName,
	})
	if err != nil {
		o.logger.Error().Err(err).Str("user_id", req.UserID).Str("persona", guide.ID).Msg("text provider failed")
		if errors.Is(err, domain.ErrProviderFailure) {
			return nil, err
		}
		return nil, fmt.Errorf("%v: %w", err, domain.ErrProviderFailure)
	}

	artifact := parseArtifact(raw, intention)
	if artifact.ParseFailed {
		o.logger.Warn().Str("user_id", req.UserID).Msg("provider reply did not parse, serving raw-text fallback")
	}

	result := &Result{
		Artifact:  artifact,
		Persona:   selected,
		Remaining: res.Remaining,
		Unlimited: res.Unlimited,
	}

	if req.WantImage {
		result.ImageFailed = true
		if o.image != nil {
			asset, ierr := o.image.Generate(ctx, image.Request{
				Prompt:    persona.ComposeImagePrompt(artifact.Title),
				RequestID: uuid.NewString(),
			})
			if ierr != nil {
				o.logger.Warn().Err(ierr).Str("user_id", req.UserID).Msg("image provider failed, returning artifact without image")
			} else {
				result.Artifact.ImageBase64 = asset.Base64
				result.ImageFailed = false
			}
		}
	}

	return result, nil
}
