package domain

import "time"

// SavedSpell is a generated artifact a user chose to keep, with the persona
// attribution captured at save time. Each save creates a new record; there
// is no overwrite.
type SavedSpell struct {
	ID          string    `json:"id"`
	UserID      string    `json:"-"`
	Title       string    `json:"title"`
	PersonaID   string    `json:"persona_id,omitempty"`
	PersonaName string    `json:"persona_name,omitempty"`
	Artifact    Artifact  `json:"spell"`
	ImageBase64 string    `json:"image_base64,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
