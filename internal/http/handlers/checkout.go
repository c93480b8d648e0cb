package handlers

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"crowlands/internal/domain"
)

type checkoutRequest struct {
	ReturnURL string `json:"return_url"`
}

// CheckoutCreate opens a processor session and records it as pending. The
// session id in the response is what the client polls afterwards.
func (a *App) CheckoutCreate(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.fail(w, r, domain.ErrUnauthorized)
		return
	}

	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	returnURL := strings.TrimSpace(req.ReturnURL)
	if u, err := url.Parse(returnURL); err != nil || u.Scheme == "" || u.Host == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "return_url must be absolute")
		return
	}

	sess, err := a.Processor.CreateSession(r.Context(), userID, returnURL+"?checkout=success", returnURL+"?checkout=cancelled")
	if err != nil {
		a.Logger.Error().Err(err).Str("user_id", userID).Msg("checkout session create failed")
		a.error(w, http.StatusBadGateway, "provider_failure", "payment provider unavailable")
		return
	}

	if err := a.Sessions.Create(r.Context(), sess.ID, userID, returnURL); err != nil {
		a.fail(w, r, err)
		return
	}

	a.json(w, http.StatusOK, map[string]string{
		"checkout_url": sess.URL,
		"session_id":   sess.ID,
	})
}

// CheckoutStatus runs one confirmation attempt for the caller's own session.
// A paid answer means the tier upgrade has already been applied.
func (a *App) CheckoutStatus(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.fail(w, r, domain.ErrUnauthorized)
		return
	}

	sessionID := chi.URLParam(r, "sessionID")
	sess, err := a.Sessions.Get(r.Context(), sessionID)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if sess.UserID != userID {
		// Do not reveal that the session exists at all.
		a.fail(w, r, domain.ErrNotFound)
		return
	}

	status, err := a.Confirmer.CheckOnce(r.Context(), sessionID)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, map[string]string{"status": string(status)})
}
