package assets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/rs/zerolog"
)

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

type fakeFetcher struct {
	fail map[string]bool
}

func (f *fakeFetcher) Fetch(_ context.Context, name string) ([]byte, string, error) {
	if f.fail[name] {
		return nil, "", errors.New("fetch failed")
	}
	return []byte("img:" + name), "image/png", nil
}

func upload(name string) Upload {
	return Upload{Name: name, MIMEType: "image/png", Data: []byte(name)}
}

func TestLoadPreloadedPartialFailure(t *testing.T) {
	reg := NewRegistry(testLogger(), nil)
	fetcher := &fakeFetcher{fail: map[string]bool{"b.png": true}}

	loaded := reg.LoadPreloaded(context.Background(), fetcher, []string{"a.png", "b.png"})
	if loaded != 1 {
		t.Fatalf("loaded = %d, want 1", loaded)
	}
	snapshot := reg.Snapshot()
	if len(snapshot) != 1 {
		t.Fatalf("snapshot size = %d, want 1", len(snapshot))
	}
	if snapshot[0].Origin != OriginPreloaded {
		t.Fatalf("origin = %q, want preloaded", snapshot[0].Origin)
	}
	if string(snapshot[0].Data) != "img:a.png" {
		t.Fatalf("unexpected data %q", snapshot[0].Data)
	}
}

func TestLoadPreloadedKeepsOrder(t *testing.T) {
	reg := NewRegistry(testLogger(), nil)
	names := []string{"1.png", "2.png", "3.png", "4.png", "5.png"}
	reg.LoadPreloaded(context.Background(), &fakeFetcher{}, names)

	snapshot := reg.Snapshot()
	if len(snapshot) != len(names) {
		t.Fatalf("snapshot size = %d, want %d", len(snapshot), len(names))
	}
	for i, asset := range snapshot {
		if want := "img:" + names[i]; string(asset.Data) != want {
			t.Fatalf("asset %d = %q, want %q", i, asset.Data, want)
		}
	}
}

func TestAddUploadsQuota(t *testing.T) {
	reg := NewRegistry(testLogger(), nil)

	var uploads []Upload
	for i := 0; i < 4; i++ {
		uploads = append(uploads, upload(fmt.Sprintf("u%d.png", i)))
	}
	added, err := reg.AddUploads(uploads)
	if err != nil {
		t.Fatalf("AddUploads returned error: %v", err)
	}
	if len(added) != 4 {
		t.Fatalf("added = %d, want 4", len(added))
	}

	// Two more files but only one slot left: exactly one accepted.
	added, err = reg.AddUploads([]Upload{upload("u4.png"), upload("u5.png")})
	var quotaErr *QuotaError
	if !errors.As(err, &quotaErr) {
		t.Fatalf("expected QuotaError, got %v", err)
	}
	if len(added) != 1 || quotaErr.Rejected != 1 {
		t.Fatalf("accepted %d rejected %d, want 1/1", len(added), quotaErr.Rejected)
	}
	if reg.UploadedCount() != MaxUploads {
		t.Fatalf("uploaded = %d, want %d", reg.UploadedCount(), MaxUploads)
	}
}

func TestAddUploadsFiltersNonImages(t *testing.T) {
	reg := NewRegistry(testLogger(), nil)
	added, err := reg.AddUploads([]Upload{
		{Name: "doc.pdf", MIMEType: "application/pdf", Data: []byte("x")},
		upload("ok.png"),
	})
	if err != nil {
		t.Fatalf("AddUploads returned error: %v", err)
	}
	if len(added) != 1 || added[0].MIMEType != "image/png" {
		t.Fatalf("expected only the image to be registered, got %d", len(added))
	}
}

func TestToggleSelectionLimit(t *testing.T) {
	reg := NewRegistry(testLogger(), nil)
	added, _ := reg.AddUploads([]Upload{upload("a"), upload("b"), upload("c"), upload("d")})

	for i := 0; i < 3; i++ {
		if _, err := reg.ToggleSelection(added[i].ID); err != nil {
			t.Fatalf("toggle %d: %v", i, err)
		}
	}
	sel, err := reg.ToggleSelection(added[3].ID)
	if !errors.Is(err, ErrSelectionLimit) {
		t.Fatalf("expected ErrSelectionLimit, got %v", err)
	}
	if len(sel) != 3 {
		t.Fatalf("selection size = %d, want 3 (unchanged)", len(sel))
	}

	// Toggling an already-selected id removes it.
	sel, err = reg.ToggleSelection(added[0].ID)
	if err != nil {
		t.Fatalf("toggle off: %v", err)
	}
	if len(sel) != 2 {
		t.Fatalf("selection size = %d, want 2", len(sel))
	}
}

func TestRemoveDropsSelectionAndReleasesPreview(t *testing.T) {
	var released []string
	reg := NewRegistry(testLogger(), func(url string) {
		released = append(released, url)
	})
	added, _ := reg.AddUploads([]Upload{upload("a"), upload("b")})
	if _, err := reg.ToggleSelection(added[0].ID); err != nil {
		t.Fatalf("toggle: %v", err)
	}

	if err := reg.Remove(added[0].ID); err != nil {
		t.Fatalf("Remove returned error: %v", err)
	}
	if len(reg.Selection()) != 0 {
		t.Fatalf("selection not cleared: %v", reg.Selection())
	}
	if _, ok := reg.Get(added[0].ID); ok {
		t.Fatal("asset still present after Remove")
	}
	if len(released) != 1 || released[0] != added[0].PreviewURL {
		t.Fatalf("preview not released exactly once: %v", released)
	}
	if reg.UploadedCount() != 1 {
		t.Fatalf("uploaded = %d, want 1", reg.UploadedCount())
	}
}

func TestRemovePreloadedRefused(t *testing.T) {
	reg := NewRegistry(testLogger(), nil)
	reg.LoadPreloaded(context.Background(), &fakeFetcher{}, []string{"a.png"})
	id := reg.Snapshot()[0].ID

	if err := reg.Remove(id); !errors.Is(err, ErrPreloadedImmutable) {
		t.Fatalf("expected ErrPreloadedImmutable, got %v", err)
	}
	if err := reg.Remove("missing"); !errors.Is(err, ErrAssetNotFound) {
		t.Fatalf("expected ErrAssetNotFound, got %v", err)
	}
}

func TestCloseReleasesAllUploads(t *testing.T) {
	released := 0
	reg := NewRegistry(testLogger(), func(string) { released++ })
	reg.LoadPreloaded(context.Background(), &fakeFetcher{}, []string{"p.png"})
	reg.AddUploads([]Upload{upload("a"), upload("b")})

	reg.Close()
	if released != 2 {
		t.Fatalf("released = %d, want 2", released)
	}
}
