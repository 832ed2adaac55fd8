// Package assets owns the in-memory collection of selectable media items:
// preloaded product shots plus user uploads, the selection set for video
// generation, and the upload quota.
package assets

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"promovideo/internal/infra"
)

const (
	// MaxUploads bounds the total number of user-uploaded assets.
	MaxUploads = 5
	// SelectionLimit bounds how many assets may condition one video job.
	SelectionLimit = 3

	preloadConcurrency = 4
)

// Origin distinguishes bundled product shots from user uploads.
type Origin string

const (
	OriginPreloaded Origin = "preloaded"
	OriginUploaded  Origin = "uploaded"
)

// MediaAsset is one selectable image. Preloaded assets are immutable and
// undeletable; uploaded assets own a revocable preview handle that must be
// released exactly once when the asset is removed.
type MediaAsset struct {
	ID         string
	Origin     Origin
	PreviewURL string
	Data       []byte
	MIMEType   string
}

// Upload is one user-supplied file pending registration.
type Upload struct {
	Name     string
	MIMEType string
	Data     []byte
}

// Releaser revokes a preview handle. Invoked once per uploaded asset, on
// removal or registry teardown.
type Releaser func(previewURL string)

// ErrSelectionLimit signals that the selection already holds SelectionLimit
// assets. It is a notice, not a fatal error: the set is left unchanged.
var ErrSelectionLimit = errors.New("selection limit reached")

// ErrAssetNotFound reports an unknown asset id.
var ErrAssetNotFound = errors.New("asset not found")

// ErrPreloadedImmutable reports an attempt to delete a bundled asset.
var ErrPreloadedImmutable = errors.New("preloaded assets cannot be removed")

// QuotaError reports uploads rejected because the upload quota was reached.
// The accepted prefix has already been registered.
type QuotaError struct {
	Accepted int
	Rejected int
}

func (e *QuotaError) Error() string {
	return fmt.Sprintf("upload limit reached: %d file(s) rejected (max %d uploads)", e.Rejected, MaxUploads)
}

// Fetcher retrieves a named image resource as raw bytes plus its MIME type.
type Fetcher interface {
	Fetch(ctx context.Context, name string) (data []byte, mimeType string, err error)
}

// Registry is the mutex-guarded asset collection for one wizard session.
type Registry struct {
	mu       sync.Mutex
	order    []string
	byID     map[string]*MediaAsset
	selected []string
	uploaded int
	release  Releaser
	logger   infra.Logger
}

func NewRegistry(logger infra.Logger, release Releaser) *Registry {
	if release == nil {
		release = func(string) {}
	}
	return &Registry{
		byID:    make(map[string]*MediaAsset),
		release: release,
		logger:  logger,
	}
}

// LoadPreloaded fetches the fixed, ordered list of bundled product images and
// registers each as a preloaded asset. A per-item failure is logged and the
// item dropped; the registry never fails wholesale because one image is
// missing. Returns the number of assets loaded.
func (r *Registry) LoadPreloaded(ctx context.Context, fetcher Fetcher, names []string) int {
	type fetched struct {
		data []byte
		mime string
	}
	results := make([]*fetched, len(names))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(preloadConcurrency)
	for i, name := range names {
		i, name := i, name
		g.Go(func() error {
			data, mime, err := fetcher.Fetch(gctx, name)
			if err != nil {
				r.logger.Warn().Err(err).Str("image", name).Msg("assets: preloaded image skipped")
				return nil
			}
			results[i] = &fetched{data: data, mime: mime}
			return nil
		})
	}
	_ = g.Wait()

	r.mu.Lock()
	defer r.mu.Unlock()
	loaded := 0
	for i, res := range results {
		if res == nil {
			continue
		}
		asset := &MediaAsset{
			ID:         uuid.NewString(),
			Origin:     OriginPreloaded,
			PreviewURL: names[i],
			Data:       res.data,
			MIMEType:   res.mime,
		}
		r.byID[asset.ID] = asset
		r.order = append(r.order, asset.ID)
		loaded++
	}
	return loaded
}

// AddUploads filters the input to image files and registers as many as the
// remaining upload quota allows. When files beyond the quota are present, the
// allowed prefix is still processed and a *QuotaError describes the rest.
func (r *Registry) AddUploads(uploads []Upload) ([]MediaAsset, error) {
	images := make([]Upload, 0, len(uploads))
	for _, u := range uploads {
		if strings.HasPrefix(u.MIMEType, "image/") {
			images = append(images, u)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	remaining := MaxUploads - r.uploaded
	if remaining < 0 {
		remaining = 0
	}
	accepted := images
	rejected := 0
	if len(images) > remaining {
		accepted = images[:remaining]
		rejected = len(images) - remaining
	}

	added := make([]MediaAsset, 0, len(accepted))
	for _, u := range accepted {
		asset := &MediaAsset{
			ID:       uuid.NewString(),
			Origin:   OriginUploaded,
			Data:     u.Data,
			MIMEType: u.MIMEType,
		}
		asset.PreviewURL = "preview://" + asset.ID
		r.byID[asset.ID] = asset
		r.order = append(r.order, asset.ID)
		r.uploaded++
		added = append(added, *asset)
	}

	if rejected > 0 {
		return added, &QuotaError{Accepted: len(accepted), Rejected: rejected}
	}
	return added, nil
}

// Remove deletes an uploaded asset, releases its preview handle, and drops
// its id from the selection set. Removing a preloaded asset is refused.
func (r *Registry) Remove(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	asset, ok := r.byID[id]
	if !ok {
		return ErrAssetNotFound
	}
	if asset.Origin == OriginPreloaded {
		return ErrPreloadedImmutable
	}

	delete(r.byID, id)
	r.order = removeID(r.order, id)
	r.selected = removeID(r.selected, id)
	r.uploaded--
	r.release(asset.PreviewURL)
	return nil
}

// ToggleSelection adds or removes an asset from the video-generation
// selection. Toggling a new id while SelectionLimit assets are selected
// leaves the set unchanged and returns ErrSelectionLimit.
func (r *Registry) ToggleSelection(id string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return r.selectionLocked(), ErrAssetNotFound
	}
	for _, sel := range r.selected {
		if sel == id {
			r.selected = removeID(r.selected, id)
			return r.selectionLocked(), nil
		}
	}
	if len(r.selected) >= SelectionLimit {
		return r.selectionLocked(), ErrSelectionLimit
	}
	r.selected = append(r.selected, id)
	return r.selectionLocked(), nil
}

// Selection returns the ordered ids currently selected.
func (r *Registry) Selection() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.selectionLocked()
}

// Selected returns the selected assets in selection order.
func (r *Registry) Selected() []MediaAsset {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]MediaAsset, 0, len(r.selected))
	for _, id := range r.selected {
		if asset, ok := r.byID[id]; ok {
			out = append(out, *asset)
		}
	}
	return out
}

// Get returns a copy of the asset with the given id.
func (r *Registry) Get(id string) (MediaAsset, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	asset, ok := r.byID[id]
	if !ok {
		return MediaAsset{}, false
	}
	return *asset, true
}

// Snapshot returns all assets in insertion order.
func (r *Registry) Snapshot() []MediaAsset {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]MediaAsset, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, *r.byID[id])
	}
	return out
}

// UploadedCount returns the number of registered uploads.
func (r *Registry) UploadedCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.uploaded
}

// Close releases the preview handles of all uploaded assets. Called on
// session teardown.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range r.order {
		if asset := r.byID[id]; asset.Origin == OriginUploaded {
			r.release(asset.PreviewURL)
		}
	}
	r.order = nil
	r.selected = nil
	r.byID = make(map[string]*MediaAsset)
	r.uploaded = 0
}

func (r *Registry) selectionLocked() []string {
	return append([]string(nil), r.selected...)
}

func removeID(list []string, id string) []string {
	out := list[:0]
	for _, v := range list {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
