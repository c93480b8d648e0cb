package handlers

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"crowlands/internal/domain"
	zippkg "crowlands/pkg/zip"
)

type grimoireSaveRequest struct {
	Title       string          `json:"title"`
	Spell       domain.Artifact `json:"spell"`
	PersonaID   string          `json:"persona_id"`
	PersonaName string          `json:"persona_name"`
	ImageBase64 string          `json:"image_base64"`
}

func (a *App) GrimoireSave(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.fail(w, r, domain.ErrUnauthorized)
		return
	}

	var req grimoireSaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if strings.TrimSpace(req.Title) == "" && strings.TrimSpace(req.Spell.Title) == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "spell needs a title")
		return
	}

	saved, err := a.Grimoire.Save(r.Context(), domain.SavedSpell{
		UserID:      userID,
		Title:       req.Title,
		PersonaID:   req.PersonaID,
		PersonaName: req.PersonaName,
		Artifact:    req.Spell,
		ImageBase64: req.ImageBase64,
	})
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusCreated, map[string]string{"id": saved.ID})
}

func (a *App) GrimoireList(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.fail(w, r, domain.ErrUnauthorized)
		return
	}

	spells, err := a.Grimoire.List(r.Context(), userID)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{"items": spells})
}

// GrimoireExport bundles the whole grimoire into a zip: one JSON document
// per spell, plus the image when one was saved.
func (a *App) GrimoireExport(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.fail(w, r, domain.ErrUnauthorized)
		return
	}

	spells, err := a.Grimoire.List(r.Context(), userID)
	if err != nil {
		a.fail(w, r, err)
		return
	}

	archive, err := zippkg.Archive(exportEntries(spells))
	if err != nil {
		a.fail(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", `attachment; filename="grimoire.zip"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(archive)
}

func exportEntries(spells []domain.SavedSpell) []zippkg.Entry {
	entries := make([]zippkg.Entry, 0, len(spells))
	for _, spell := range spells {
		doc, err := json.MarshalIndent(spell, "", "  ")
		if err != nil {
			continue
		}
		base := "spells/" + spell.ID
		entries = append(entries, zippkg.Entry{Name: base + ".json", Data: doc})
		if spell.ImageBase64 != "" {
			if img, err := base64.StdEncoding.DecodeString(spell.ImageBase64); err == nil {
				entries = append(entries, zippkg.Entry{Name: base + ".png", Data: img})
			}
		}
	}
	return entries
}

func (a *App) GrimoireDelete(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.fail(w, r, domain.ErrUnauthorized)
		return
	}

	if err := a.Grimoire.Delete(r.Context(), userID, chi.URLParam(r, "spellID")); err != nil {
		a.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
