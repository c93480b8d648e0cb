package handlers

import (
	"encoding/json"
	"net/http"

	"crowlands/internal/domain"
	"crowlands/internal/orchestrator"
)

type generateRequest struct {
	Intention string `json:"intention"`
	PersonaID string `json:"persona_id"`
	WantImage bool   `json:"want_image"`
}

type generateResponse struct {
	Spell          domain.Artifact `json:"spell"`
	Persona        *domain.Persona `json:"persona,omitempty"`
	ImageFailed    bool            `json:"image_failed"`
	RemainingQuota *int            `json:"remaining_quota"`
}

func (a *App) SpellGenerate(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.fail(w, r, domain.ErrUnauthorized)
		return
	}

	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}

	result, err := a.Generator.Generate(r.Context(), orchestrator.Request{
		UserID:    userID,
		PersonaID: req.PersonaID,
		Intention: req.Intention,
		WantImage: req.WantImage,
	})
	if err != nil {
		a.fail(w, r, err)
		return
	}

	resp := generateResponse{
		Spell:       result.Artifact,
		Persona:     result.Persona,
		ImageFailed: result.ImageFailed,
	}
	if !result.Unlimited {
		remaining := result.Remaining
		resp.RemainingQuota = &remaining
	}
	a.json(w, http.StatusOK, resp)
}
