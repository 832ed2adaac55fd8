package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"promovideo/internal/assets"
	"promovideo/internal/infra"
	"promovideo/internal/infra/credentials"
	"promovideo/internal/providers/ideas"
	"promovideo/internal/providers/refine"
	"promovideo/internal/wizard"
)

// App bundles the wizard's collaborators for the HTTP handlers.
type App struct {
	Logger     infra.Logger
	Cfg        *infra.Config
	Sessions   *wizard.Store
	Ideas      *ideas.Gateway
	Refine     *refine.Gateway
	Gate       *credentials.Gate
	Fetcher    assets.Fetcher
	NewSession func() *wizard.Session
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, kind, msg string) {
	a.json(w, code, map[string]any{
		"error": map[string]string{"code": kind, "message": msg},
	})
}

// session resolves the {id} URL parameter to a live session, writing the
// error response itself when the session is missing.
func (a *App) session(w http.ResponseWriter, r *http.Request) (*wizard.Session, bool) {
	id := chi.URLParam(r, "id")
	if id == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "session id required")
		return nil, false
	}
	sess, ok := a.Sessions.Get(id)
	if !ok {
		a.error(w, http.StatusNotFound, "not_found", "session not found or expired")
		return nil, false
	}
	return sess, true
}

func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]string{"status": "ok"})
}
