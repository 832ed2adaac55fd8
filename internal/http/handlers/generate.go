package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"promovideo/internal/domain/promo"
	"promovideo/internal/video"
	"promovideo/internal/wizard"
)

type generateRequest struct {
	AspectRatio string `json:"aspect_ratio"`
}

// GenerateSubmit validates the selection and prompt, then runs the
// generation job in the background. Validation failures never reach the
// remote API and are reported synchronously.
func (a *App) GenerateSubmit(w http.ResponseWriter, r *http.Request) {
	sess, ok := a.session(w, r)
	if !ok {
		return
	}
	var req generateRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
			return
		}
	}

	// An in-flight job must never be abandoned by a concurrent submit; the
	// caller gets a synchronous conflict instead.
	switch sess.Orchestrator.State() {
	case video.StateSubmitting, video.StatePolling:
		a.error(w, http.StatusConflict, "job_in_progress", video.ErrJobInProgress.Error())
		return
	}

	prompt, err := sess.EnterGenerate()
	if err != nil {
		a.error(w, http.StatusConflict, "wrong_stage", err.Error())
		return
	}
	selected := sess.Registry.Selected()
	aspect := promo.AspectRatio(req.AspectRatio)

	// Re-run the orchestrator's validation up front so the caller gets a
	// synchronous 4xx instead of a failed background job.
	if len(selected) < 1 || len(selected) > 3 {
		a.error(w, http.StatusUnprocessableEntity, "validation", "select between 1 and 3 reference images")
		return
	}
	if !a.Gate.Supported() || !a.Gate.HasCredential() {
		a.error(w, http.StatusPreconditionFailed, "capability", "video generation is not available")
		return
	}

	jobCtx, cancel := context.WithCancel(context.Background())
	sess.BindJob(cancel)

	go func() {
		defer cancel()
		_, err := sess.Orchestrator.Submit(jobCtx, selected, prompt, aspect)
		switch {
		case err == nil, errors.Is(err, context.Canceled):
		case errors.Is(err, video.ErrJobInProgress):
			a.Logger.Warn().Str("session_id", sess.ID).Msg("generate: job already running")
		case promo.IsValidation(err):
			sess.SetStageError(err.Error())
		default:
			a.Logger.Error().Err(err).Str("session_id", sess.ID).Msg("generate: job ended abnormally")
		}
	}()

	a.json(w, http.StatusAccepted, map[string]any{
		"job_state": string(video.StateSubmitting),
		"stage":     wizard.StageGenerate.String(),
	})
}

// GenerateStatus reports the orchestrator's state, progress string, and, on
// failure, the classified kind with localized recovery guidance.
func (a *App) GenerateStatus(w http.ResponseWriter, r *http.Request) {
	sess, ok := a.session(w, r)
	if !ok {
		return
	}
	state := sess.Orchestrator.State()
	body := map[string]any{
		"job_state":  string(state),
		"job_status": sess.Orchestrator.Status(),
	}
	if result := sess.Orchestrator.Result(); result != nil {
		body["reference_mode"] = string(result.Mode)
		body["aspect_ratio"] = string(result.AspectRatio)
		if result.Failure != nil {
			body["failure"] = map[string]any{
				"kind":     string(result.Failure.Kind),
				"message":  result.Failure.Message,
				"guidance": failureGuidance(r.Context(), result.Failure.Kind),
				"retryable": result.Failure.Kind == promo.FailureQuota ||
					result.Failure.Kind == promo.FailureTimeout,
			}
		}
		if result.State == video.StateSucceeded {
			body["video_url"] = "/v1/sessions/" + sess.ID + "/job/video"
		}
	}
	a.json(w, http.StatusOK, body)
}

// GenerateVideo streams the finished artifact bytes.
func (a *App) GenerateVideo(w http.ResponseWriter, r *http.Request) {
	sess, ok := a.session(w, r)
	if !ok {
		return
	}
	result := sess.Orchestrator.Result()
	if result == nil || result.State != video.StateSucceeded {
		a.error(w, http.StatusNotFound, "not_found", "no finished video for this session")
		return
	}
	w.Header().Set("Content-Type", result.MIMEType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.VideoData)
}
