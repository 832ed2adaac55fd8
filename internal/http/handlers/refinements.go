package handlers

import (
	"encoding/json"
	"net/http"

	"promovideo/internal/domain/promo"
	"promovideo/internal/promptgen"
	"promovideo/internal/wizard"
)

// RefinementsGenerate fetches categorized suggestions for the active concept.
// Requires the Refine stage, i.e. a chosen concept.
func (a *App) RefinementsGenerate(w http.ResponseWriter, r *http.Request) {
	sess, ok := a.session(w, r)
	if !ok {
		return
	}
	concept, hasConcept := sess.ActiveConcept()
	if !hasConcept {
		a.error(w, http.StatusConflict, "wrong_stage", wizard.ErrNoActiveConcept.Error())
		return
	}

	suggestions, err := a.Refine.Generate(r.Context(), concept)
	if err != nil {
		sess.SetStageError(promo.ErrRefinement.Error())
		a.error(w, http.StatusBadGateway, "gateway", promo.ErrRefinement.Error())
		return
	}
	if err := sess.SetSuggestions(suggestions); err != nil {
		a.error(w, http.StatusConflict, "wrong_stage", err.Error())
		return
	}
	a.json(w, http.StatusOK, map[string]any{"suggestions": suggestions})
}

type selectionsRequest struct {
	Style           string `json:"style"`
	Environment     string `json:"environment"`
	Lighting        string `json:"lighting"`
	Details         string `json:"details"`
	DurationSeconds int    `json:"duration_seconds"`
}

// SelectionsUpdate stores the user's refinement choices. Values are
// free-form; they may diverge from the offered options.
func (a *App) SelectionsUpdate(w http.ResponseWriter, r *http.Request) {
	sess, ok := a.session(w, r)
	if !ok {
		return
	}
	var req selectionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	sel := promptgen.Selections{
		Style:           req.Style,
		Environment:     req.Environment,
		Lighting:        req.Lighting,
		Details:         req.Details,
		DurationSeconds: req.DurationSeconds,
	}
	if err := sess.UpdateSelections(sel); err != nil {
		a.error(w, http.StatusConflict, "wrong_stage", err.Error())
		return
	}
	a.json(w, http.StatusOK, map[string]any{"stage": sess.Stage().String()})
}

type promptRequest struct {
	Prompt string `json:"prompt"`
}

// PromptCompose enters the Generate stage, composing the prompt from the
// current selections, or stores a user edit when one is supplied.
func (a *App) PromptCompose(w http.ResponseWriter, r *http.Request) {
	sess, ok := a.session(w, r)
	if !ok {
		return
	}
	var req promptRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
			return
		}
	}

	if req.Prompt != "" {
		if err := sess.SetPrompt(req.Prompt); err != nil {
			a.error(w, http.StatusConflict, "wrong_stage", err.Error())
			return
		}
	}
	prompt, err := sess.EnterGenerate()
	if err != nil {
		a.error(w, http.StatusConflict, "wrong_stage", err.Error())
		return
	}
	a.json(w, http.StatusOK, map[string]any{"prompt": prompt, "stage": sess.Stage().String()})
}
