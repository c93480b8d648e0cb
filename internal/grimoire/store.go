// Package grimoire is the user-scoped archive of saved artifacts. Every
// operation is keyed by owner, so one user can never see or delete another's
// entries.
package grimoire

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"crowlands/internal/domain"
	"crowlands/internal/infra"
	"crowlands/internal/sqlinline"
)

type Store struct {
	sql    infra.SQLExecutor
	logger infra.Logger
}

func NewStore(sql infra.SQLExecutor, logger infra.Logger) *Store {
	return &Store{sql: sql, logger: logger}
}

// Save archives an artifact under a new identifier. Saving the same artifact
// twice creates two entries; the caller decides whether that is a problem.
func (s *Store) Save(ctx context.Context, spell domain.SavedSpell) (*domain.SavedSpell, error) {
	spell.Title = strings.TrimSpace(spell.Title)
	if spell.Title == "" {
		spell.Title = spell.Artifact.Title
	}
	if spell.Title == "" {
		return nil, errors.New("saved spell needs a title")
	}

	artifactJSON, err := json.Marshal(spell.Artifact)
	if err != nil {
		return nil, fmt.Errorf("encode artifact: %w", err)
	}

	spell.ID = uuid.NewString()
	row := s.sql.QueryRow(ctx, sqlinline.QInsertSavedSpell,
		spell.ID, spell.UserID, spell.Title, spell.PersonaID, spell.PersonaName, string(artifactJSON), spell.ImageBase64)
	if err := row.Scan(&spell.ID); err != nil {
		return nil, fmt.Errorf("insert saved spell: %w", err)
	}

	s.logger.Info().Str("user_id", spell.UserID).Str("spell_id", spell.ID).Msg("spell saved to grimoire")
	return &spell, nil
}

// List returns the user's saved spells, newest first. An empty grimoire is a
// normal result, not an error.
func (s *Store) List(ctx context.Context, userID string) ([]domain.SavedSpell, error) {
	rows, err := s.sql.Query(ctx, sqlinline.QListSavedSpells, userID)
	if err != nil {
		return nil, fmt.Errorf("list saved spells: %w", err)
	}
	defer rows.Close()

	spells := make([]domain.SavedSpell, 0)
	for rows.Next() {
		var (
			spell        domain.SavedSpell
			artifactJSON []byte
		)
		if err := rows.Scan(&spell.ID, &spell.Title, &spell.PersonaID, &spell.PersonaName, &artifactJSON, &spell.ImageBase64, &spell.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan saved spell: %w", err)
		}
		if err := json.Unmarshal(artifactJSON, &spell.Artifact); err != nil {
			return nil, fmt.Errorf("decode artifact for spell %s: %w", spell.ID, err)
		}
		spell.UserID = userID
		spells = append(spells, spell)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate saved spells: %w", err)
	}
	return spells, nil
}

// Delete removes one entry. Deleting an entry that does not exist, or that
// belongs to someone else, reports ErrNotFound; the two cases are deliberately
// indistinguishable.
func (s *Store) Delete(ctx context.Context, userID, spellID string) error {
	if _, err := uuid.Parse(spellID); err != nil {
		return fmt.Errorf("spell %s: %w", spellID, domain.ErrNotFound)
	}

	tag, err := s.sql.Exec(ctx, sqlinline.QDeleteSavedSpell, spellID, userID)
	if err != nil {
		return fmt.Errorf("delete saved spell: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("spell %s: %w", spellID, domain.ErrNotFound)
	}
	return nil
}
