package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (a *App) PersonaList(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]any{
		"personas": a.Personas.List(),
		"default":  a.Personas.Default().ID,
	})
}

func (a *App) PersonaGet(w http.ResponseWriter, r *http.Request) {
	p, err := a.Personas.Get(chi.URLParam(r, "id"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, p)
}
