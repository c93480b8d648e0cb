// Package handlers holds the HTTP surface. Handlers stay thin: decode,
// delegate to a service, map domain errors to the response envelope.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"crowlands/internal/domain"
	"crowlands/internal/grimoire"
	"crowlands/internal/infra"
	"crowlands/internal/ledger"
	"crowlands/internal/middleware"
	"crowlands/internal/orchestrator"
	"crowlands/internal/payments"
	"crowlands/internal/persona"
)

// Generator is the generation pipeline as the HTTP layer sees it.
type Generator interface {
	Generate(ctx context.Context, req orchestrator.Request) (*orchestrator.Result, error)
}

// Confirmer resolves payment sessions against the processor.
type Confirmer interface {
	CheckOnce(ctx context.Context, sessionID string) (domain.PaymentStatus, error)
}

type App struct {
	Logger    infra.Logger
	Config    *infra.Config
	Personas  *persona.Registry
	Ledger    *ledger.Ledger
	Generator Generator
	Grimoire  *grimoire.Store
	Sessions  *payments.Store
	Processor payments.Processor
	Confirmer Confirmer
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, status int, code, message string) {
	a.json(w, status, map[string]any{
		"error": map[string]string{"code": code, "message": message},
	})
}

func (a *App) currentUserID(r *http.Request) string {
	return middleware.UserIDFromContext(r.Context())
}

// fail maps domain sentinel errors onto the envelope; anything unrecognized
// is an internal error and the detail stays in the log, not the response.
func (a *App) fail(w http.ResponseWriter, r *http.Request, err error) {
	var quotaErr *domain.QuotaError
	switch {
	case errors.As(err, &quotaErr):
		a.json(w, http.StatusForbidden, map[string]any{
			"error": map[string]any{
				"code":      "quota_exceeded",
				"message":   "monthly spell quota reached",
				"limit":     quotaErr.Limit,
				"remaining": 0,
			},
		})
	case errors.Is(err, domain.ErrInvalidIntention):
		a.error(w, http.StatusBadRequest, "bad_request", "intention must not be empty")
	case errors.Is(err, domain.ErrNotFound):
		a.error(w, http.StatusNotFound, "not_found", "resource not found")
	case errors.Is(err, domain.ErrUnauthorized):
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
	case errors.Is(err, domain.ErrProviderFailure):
		a.error(w, http.StatusBadGateway, "provider_failure", "generation provider unavailable")
	case errors.Is(err, domain.ErrVerificationTimeout):
		a.error(w, http.StatusGatewayTimeout, "verification_timeout", "payment not yet confirmed")
	default:
		a.Logger.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		a.error(w, http.StatusInternalServerError, "internal", "internal error")
	}
}

func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]string{"status": "ok"})
}
