package handlers

import (
	"net/http"

	"promovideo/internal/wizard"
)

type sessionSummary struct {
	ID            string   `json:"id"`
	Stage         string   `json:"stage"`
	AssetCount    int      `json:"asset_count"`
	UploadedCount int      `json:"uploaded_count"`
	Selection     []string `json:"selection"`
	HasConcept    bool     `json:"has_concept"`
	Prompt        string   `json:"prompt,omitempty"`
	JobState      string   `json:"job_state"`
	JobStatus     string   `json:"job_status,omitempty"`
	StageError    string   `json:"stage_error,omitempty"`
	Supported     bool     `json:"video_supported"`
	HasCredential bool     `json:"has_credential"`
}

// SessionCreate starts a new wizard session and loads the bundled product
// images. Individual preload failures degrade gracefully; the session is
// created regardless.
func (a *App) SessionCreate(w http.ResponseWriter, r *http.Request) {
	sess := a.NewSession()
	loaded := sess.Registry.LoadPreloaded(r.Context(), a.Fetcher, a.Cfg.PreloadImages)
	a.Sessions.Put(sess)

	a.Logger.Info().
		Str("session_id", sess.ID).
		Int("preloaded", loaded).
		Msg("wizard: session created")
	a.json(w, http.StatusCreated, a.summarize(sess))
}

func (a *App) SessionGet(w http.ResponseWriter, r *http.Request) {
	sess, ok := a.session(w, r)
	if !ok {
		return
	}
	a.json(w, http.StatusOK, a.summarize(sess))
}

// SessionReset returns the wizard to the Assets stage, discarding concept,
// suggestions, prompt, and job state. The asset registry survives.
func (a *App) SessionReset(w http.ResponseWriter, r *http.Request) {
	sess, ok := a.session(w, r)
	if !ok {
		return
	}
	sess.Reset()
	a.json(w, http.StatusOK, a.summarize(sess))
}

func (a *App) SessionDelete(w http.ResponseWriter, r *http.Request) {
	sess, ok := a.session(w, r)
	if !ok {
		return
	}
	a.Sessions.Delete(sess.ID)
	w.WriteHeader(http.StatusNoContent)
}

func (a *App) summarize(sess *wizard.Session) sessionSummary {
	_, hasConcept := sess.ActiveConcept()
	return sessionSummary{
		ID:            sess.ID,
		Stage:         sess.Stage().String(),
		AssetCount:    len(sess.Registry.Snapshot()),
		UploadedCount: sess.Registry.UploadedCount(),
		Selection:     sess.Registry.Selection(),
		HasConcept:    hasConcept,
		Prompt:        sess.Prompt(),
		JobState:      string(sess.Orchestrator.State()),
		JobStatus:     sess.Orchestrator.Status(),
		StageError:    sess.StageError(),
		Supported:     a.Gate.Supported(),
		HasCredential: a.Gate.HasCredential(),
	}
}
