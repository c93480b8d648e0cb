// Package httpapi assembles the chi router: shared middleware, the public
// surface, and the bearer-token protected API under /v1.
package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"crowlands/internal/http/handlers"
	"crowlands/internal/infra"
	"crowlands/internal/middleware"
)

func NewRouter(app *handlers.App, cfg *infra.Config, logger infra.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.CORS(cfg.CORSOrigins),
		middleware.Logger(logger),
	)

	r.Get("/v1/healthz", app.Health)
	r.Get("/v1/personas", app.PersonaList)
	r.Get("/v1/personas/{id}", app.PersonaGet)

	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthJWT(cfg.JWTSecret))
		r.Use(middleware.RateLimit(cfg.RateLimitPerMin, time.Minute))

		r.Post("/v1/spells/generate", app.SpellGenerate)
		r.Get("/v1/entitlement", app.EntitlementStatus)

		r.Post("/v1/checkout/session", app.CheckoutCreate)
		r.Get("/v1/checkout/status/{sessionID}", app.CheckoutStatus)

		r.Route("/v1/grimoire", func(r chi.Router) {
			r.Post("/spells", app.GrimoireSave)
			r.Get("/spells", app.GrimoireList)
			r.Delete("/spells/{spellID}", app.GrimoireDelete)
			r.Get("/export", app.GrimoireExport)
		})
	})

	return r
}
