// Package persona holds the static catalog of guides and the prompt
// composition used to bias ritual generation. The catalog is embedded,
// validated once at load, and read-only afterwards.
package persona

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"crowlands/internal/domain"
)

//go:embed personas.json
var catalogJSON []byte

type catalogFile struct {
	Default  domain.Persona   `json:"default"`
	Personas []domain.Persona `json:"personas"`
}

// Registry is the immutable persona catalog. It requires no synchronization.
type Registry struct {
	byID  map[string]domain.Persona
	order []domain.Persona
	def   domain.Persona
}

// NewRegistry loads and validates the embedded catalog.
func NewRegistry() (*Registry, error) {
	return newRegistryFrom(catalogJSON)
}

func newRegistryFrom(data []byte) (*Registry, error) {
	var file catalogFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("persona catalog: %w", err)
	}
	if err := validate(file.Default); err != nil {
		return nil, fmt.Errorf("persona catalog: default persona: %w", err)
	}
	r := &Registry{
		byID: make(map[string]domain.Persona, len(file.Personas)),
		def:  file.Default,
	}
	for _, p := range file.Personas {
		if err := validate(p); err != nil {
			return nil, fmt.Errorf("persona catalog: %q: %w", p.ID, err)
		}
		if _, dup := r.byID[p.ID]; dup {
			return nil, fmt.Errorf("persona catalog: duplicate id %q", p.ID)
		}
		r.byID[p.ID] = p
		r.order = append(r.order, p)
	}
	return r, nil
}

func validate(p domain.Persona) error {
	switch {
	case strings.TrimSpace(p.ID) == "":
		return fmt.Errorf("id is required")
	case strings.TrimSpace(p.Name) == "":
		return fmt.Errorf("name is required")
	case strings.TrimSpace(p.Title) == "":
		return fmt.Errorf("title is required")
	case strings.TrimSpace(p.Voice) == "":
		return fmt.Errorf("voice descriptor is required")
	case len(p.Specialties) == 0:
		return fmt.Errorf("at least one specialty is required")
	}
	return nil
}

// Get returns the persona with the given id or domain.ErrNotFound.
func (r *Registry) Get(id string) (domain.Persona, error) {
	p, ok := r.byID[id]
	if !ok {
		return domain.Persona{}, fmt.Errorf("persona %q: %w", id, domain.ErrNotFound)
	}
	return p, nil
}

// List returns the personas in catalog order. The returned slice is a copy.
func (r *Registry) List() []domain.Persona {
	out := make([]domain.Persona, len(r.order))
	copy(out, r.order)
	return out
}

// Default returns the neutral persona applied when no guide is selected.
func (r *Registry) Default() domain.Persona {
	return r.def
}
