package handlers

import (
	"net/http"
	"time"

	"crowlands/internal/domain"
)

type entitlementResponse struct {
	Tier        domain.SubscriptionTier `json:"tier"`
	Limit       *int                    `json:"limit"`
	Remaining   *int                    `json:"remaining"`
	PeriodStart time.Time               `json:"period_start"`
}

func (a *App) EntitlementStatus(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.fail(w, r, domain.ErrUnauthorized)
		return
	}

	st, err := a.Ledger.Status(r.Context(), userID)
	if err != nil {
		a.fail(w, r, err)
		return
	}

	resp := entitlementResponse{Tier: st.Tier, PeriodStart: st.PeriodStart}
	if !st.Unlimited {
		limit, remaining := st.Limit, st.Remaining
		resp.Limit = &limit
		resp.Remaining = &remaining
	}
	a.json(w, http.StatusOK, resp)
}
