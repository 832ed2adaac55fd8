package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"promovideo/internal/assets"
)

const maxUploadBytes = 10 << 20 // per request

type assetView struct {
	ID         string `json:"id"`
	Origin     string `json:"origin"`
	PreviewURL string `json:"preview_url"`
	MIMEType   string `json:"mime_type"`
	Selected   bool   `json:"selected"`
}

func (a *App) AssetsList(w http.ResponseWriter, r *http.Request) {
	sess, ok := a.session(w, r)
	if !ok {
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"items":     a.assetViews(sess.Registry),
		"selection": sess.Registry.Selection(),
	})
}

// AssetsUpload accepts multipart image uploads. Files beyond the upload
// quota are rejected with a quota error while the allowed prefix is still
// registered.
func (a *App) AssetsUpload(w http.ResponseWriter, r *http.Request) {
	sess, ok := a.session(w, r)
	if !ok {
		return
	}
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid multipart payload")
		return
	}

	var uploads []assets.Upload
	for _, headers := range r.MultipartForm.File {
		for _, fh := range headers {
			f, err := fh.Open()
			if err != nil {
				continue
			}
			data, err := io.ReadAll(f)
			f.Close()
			if err != nil {
				continue
			}
			uploads = append(uploads, assets.Upload{
				Name:     fh.Filename,
				MIMEType: fh.Header.Get("Content-Type"),
				Data:     data,
			})
		}
	}
	if len(uploads) == 0 {
		a.error(w, http.StatusBadRequest, "bad_request", "no image files in payload")
		return
	}

	added, err := sess.Registry.AddUploads(uploads)
	var quotaErr *assets.QuotaError
	if errors.As(err, &quotaErr) {
		a.json(w, http.StatusUnprocessableEntity, map[string]any{
			"items": viewsOf(added, sess.Registry),
			"error": map[string]any{
				"code":     "upload_quota",
				"message":  quotaErr.Error(),
				"accepted": quotaErr.Accepted,
				"rejected": quotaErr.Rejected,
			},
		})
		return
	}
	a.json(w, http.StatusCreated, map[string]any{"items": viewsOf(added, sess.Registry)})
}

func (a *App) AssetDelete(w http.ResponseWriter, r *http.Request) {
	sess, ok := a.session(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "assetID")
	switch err := sess.Registry.Remove(id); {
	case errors.Is(err, assets.ErrAssetNotFound):
		a.error(w, http.StatusNotFound, "not_found", "asset not found")
	case errors.Is(err, assets.ErrPreloadedImmutable):
		a.error(w, http.StatusForbidden, "forbidden", "preloaded assets cannot be removed")
	case err != nil:
		a.error(w, http.StatusInternalServerError, "internal", "failed to remove asset")
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

// AssetToggle flips an asset in or out of the video-generation selection.
// Toggling a fourth asset is a notice, not an error: the selection is
// returned unchanged with limit_reached set.
func (a *App) AssetToggle(w http.ResponseWriter, r *http.Request) {
	sess, ok := a.session(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "assetID")
	selection, err := sess.Registry.ToggleSelection(id)
	switch {
	case errors.Is(err, assets.ErrAssetNotFound):
		a.error(w, http.StatusNotFound, "not_found", "asset not found")
		return
	case errors.Is(err, assets.ErrSelectionLimit):
		a.json(w, http.StatusOK, map[string]any{
			"selection":     selection,
			"limit_reached": true,
			"notice":        guidance(r.Context(), noticeSelectionLimit),
		})
		return
	}
	a.json(w, http.StatusOK, map[string]any{"selection": selection, "limit_reached": false})
}

// AssetPreview streams the stored image bytes, the server-side analog of the
// revocable local preview handle.
func (a *App) AssetPreview(w http.ResponseWriter, r *http.Request) {
	sess, ok := a.session(w, r)
	if !ok {
		return
	}
	asset, found := sess.Registry.Get(chi.URLParam(r, "assetID"))
	if !found {
		a.error(w, http.StatusNotFound, "not_found", "asset not found")
		return
	}
	w.Header().Set("Content-Type", asset.MIMEType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(asset.Data)
}

func (a *App) assetViews(reg *assets.Registry) []assetView {
	return viewsOf(reg.Snapshot(), reg)
}

func viewsOf(list []assets.MediaAsset, reg *assets.Registry) []assetView {
	selected := make(map[string]struct{})
	for _, id := range reg.Selection() {
		selected[id] = struct{}{}
	}
	views := make([]assetView, 0, len(list))
	for _, asset := range list {
		_, isSelected := selected[asset.ID]
		views = append(views, assetView{
			ID:         asset.ID,
			Origin:     string(asset.Origin),
			PreviewURL: asset.PreviewURL,
			MIMEType:   asset.MIMEType,
			Selected:   isSelected,
		})
	}
	return views
}
