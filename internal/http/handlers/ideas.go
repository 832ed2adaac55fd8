package handlers

import (
	"encoding/json"
	"net/http"

	"promovideo/internal/domain/promo"
)

type ideasRequest struct {
	Description string   `json:"description"`
	Features    []string `json:"features"`
}

// IdeasGenerate asks the idea gateway for three video concepts and moves the
// session into the Ideas stage.
func (a *App) IdeasGenerate(w http.ResponseWriter, r *http.Request) {
	sess, ok := a.session(w, r)
	if !ok {
		return
	}
	var req ideasRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}

	concepts, err := a.Ideas.Generate(r.Context(), req.Description, req.Features)
	if err != nil {
		if promo.IsValidation(err) {
			a.error(w, http.StatusBadRequest, "validation", err.Error())
			return
		}
		sess.SetStageError(promo.ErrIdeaGeneration.Error())
		a.error(w, http.StatusBadGateway, "gateway", promo.ErrIdeaGeneration.Error())
		return
	}

	if err := sess.SetConcepts(concepts); err != nil {
		a.error(w, http.StatusConflict, "wrong_stage", err.Error())
		return
	}
	a.json(w, http.StatusOK, map[string]any{"concepts": concepts, "stage": sess.Stage().String()})
}

type chooseConceptRequest struct {
	Index int `json:"index"`
}

// ConceptChoose activates one generated concept and advances to Refine.
func (a *App) ConceptChoose(w http.ResponseWriter, r *http.Request) {
	sess, ok := a.session(w, r)
	if !ok {
		return
	}
	var req chooseConceptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if err := sess.ChooseConcept(req.Index); err != nil {
		a.error(w, http.StatusConflict, "wrong_stage", err.Error())
		return
	}
	concept, _ := sess.ActiveConcept()
	a.json(w, http.StatusOK, map[string]any{"concept": concept, "stage": sess.Stage().String()})
}
