package grimoire

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crowlands/internal/domain"
	"crowlands/internal/infra/pgxtest"
	"crowlands/internal/sqlinline"
)

const userID = "4f9d8a6e-0000-0000-0000-000000000001"

func sampleArtifact() domain.Artifact {
	return domain.Artifact{
		Title:     "Hearthside Protection",
		Materials: []string{"salt"},
		Steps:     []domain.RitualStep{{Instruction: "Light the candle."}},
	}
}

func TestSaveGeneratesIDAndEncodesArtifact(t *testing.T) {
	exec := &pgxtest.Executor{
		QueryRowFn: func(query string, args ...any) pgx.Row {
			return pgxtest.Row{Values: []any{args[0]}}
		},
	}
	store := NewStore(exec, zerolog.Nop())

	saved, err := store.Save(context.Background(), domain.SavedSpell{
		UserID:      userID,
		PersonaID:   "kathleen",
		PersonaName: "Kathleen",
		Artifact:    sampleArtifact(),
	})
	require.NoError(t, err)

	_, err = uuid.Parse(saved.ID)
	require.NoError(t, err, "saved spell id should be a uuid")
	assert.Equal(t, "Hearthside Protection", saved.Title, "title falls back to the artifact's")

	calls := exec.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, sqlinline.QInsertSavedSpell, calls[0].Query)

	var artifact domain.Artifact
	require.NoError(t, json.Unmarshal([]byte(calls[0].Args[5].(string)), &artifact))
	assert.Equal(t, "Hearthside Protection", artifact.Title)
}

func TestSaveTwiceCreatesDistinctEntries(t *testing.T) {
	exec := &pgxtest.Executor{
		QueryRowFn: func(query string, args ...any) pgx.Row {
			return pgxtest.Row{Values: []any{args[0]}}
		},
	}
	store := NewStore(exec, zerolog.Nop())

	spell := domain.SavedSpell{UserID: userID, Artifact: sampleArtifact()}
	first, err := store.Save(context.Background(), spell)
	require.NoError(t, err)
	second, err := store.Save(context.Background(), spell)
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
}

func TestSaveRequiresSomeTitle(t *testing.T) {
	store := NewStore(&pgxtest.Executor{}, zerolog.Nop())
	_, err := store.Save(context.Background(), domain.SavedSpell{UserID: userID, Title: "   "})
	require.Error(t, err)
}

func TestListDecodesArtifacts(t *testing.T) {
	created := time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC)
	artifactJSON, err := json.Marshal(sampleArtifact())
	require.NoError(t, err)

	exec := &pgxtest.Executor{
		QueryFn: func(query string, args ...any) (pgx.Rows, error) {
			return pgxtest.NewRows([][]any{
				{"5d0b2c1a-0000-0000-0000-000000000002", "Hearthside Protection", "kathleen", "Kathleen", artifactJSON, "", created},
			}), nil
		},
	}
	store := NewStore(exec, zerolog.Nop())

	spells, err := store.List(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, spells, 1)

	assert.Equal(t, "Hearthside Protection", spells[0].Artifact.Title)
	assert.Equal(t, userID, spells[0].UserID)
	assert.Equal(t, created, spells[0].CreatedAt)
}

func TestListEmptyGrimoire(t *testing.T) {
	store := NewStore(&pgxtest.Executor{}, zerolog.Nop())
	spells, err := store.List(context.Background(), userID)
	require.NoError(t, err)
	assert.NotNil(t, spells)
	assert.Empty(t, spells)
}

func TestDeleteScopedToOwner(t *testing.T) {
	exec := &pgxtest.Executor{
		ExecFn: func(query string, args ...any) (pgconn.CommandTag, error) {
			return pgconn.NewCommandTag("DELETE 1"), nil
		},
	}
	store := NewStore(exec, zerolog.Nop())

	spellID := "5d0b2c1a-0000-0000-0000-000000000002"
	require.NoError(t, store.Delete(context.Background(), userID, spellID))

	calls := exec.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, sqlinline.QDeleteSavedSpell, calls[0].Query)
	assert.Equal(t, spellID, calls[0].Args[0])
	assert.Equal(t, userID, calls[0].Args[1])
}

func TestDeleteMissingSpell(t *testing.T) {
	exec := &pgxtest.Executor{
		ExecFn: func(query string, args ...any) (pgconn.CommandTag, error) {
			return pgconn.NewCommandTag("DELETE 0"), nil
		},
	}
	store := NewStore(exec, zerolog.Nop())

	err := store.Delete(context.Background(), userID, "5d0b2c1a-0000-0000-0000-000000000002")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteRejectsMalformedID(t *testing.T) {
	exec := &pgxtest.Executor{}
	store := NewStore(exec, zerolog.Nop())

	err := store.Delete(context.Background(), userID, "not-a-uuid")
	require.ErrorIs(t, err, domain.ErrNotFound)
	assert.Empty(t, exec.Calls(), "malformed ids never reach the database")
}
