package handlers

import (
	"encoding/json"
	"net/http"
)

type credentialRequest struct {
	APIKey string `json:"api_key"`
}

// CredentialSet stores a replacement API key after the previous one was
// rejected and forgotten. The key is deployment-wide, not session-scoped.
func (a *App) CredentialSet(w http.ResponseWriter, r *http.Request) {
	var req credentialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if err := a.Gate.SetCredential(req.APIKey); err != nil {
		a.error(w, http.StatusBadRequest, "validation", err.Error())
		return
	}
	a.Logger.Info().Msg("credentials: api key replaced")
	a.json(w, http.StatusOK, map[string]any{
		"video_supported": a.Gate.Supported(),
		"has_credential":  a.Gate.HasCredential(),
	})
}
