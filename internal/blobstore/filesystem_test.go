package blobstore

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/choralworks/medialib/internal/config"
)

func newTestStore(t *testing.T) Store {
	t.Helper()

	cfg := &config.StorageConfig{
		BasePath:      t.TempDir(),
		PublicBaseURL: "/files",
	}

	store, err := New(cfg, slog.New(slog.NewTextHandler(os.Stderr, nil)))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return store
}

func TestUploadReturnsURLAndRef(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	url, ref, err := store.Upload(ctx, []byte("chorale audio bytes"), "audio/mpeg", nil)
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if ref == "" {
		t.Fatal("Upload() returned empty ref")
	}
	if !strings.HasPrefix(url, "/files/") {
		t.Errorf("url = %q, want /files/ prefix", url)
	}
	if !strings.HasSuffix(url, ref) {
		t.Errorf("url %q does not end with ref %q", url, ref)
	}

	exists, err := store.Exists(ctx, ref)
	if err != nil {
		t.Fatalf("Exists() error = %v", err)
	}
	if !exists {
		t.Error("uploaded blob not found")
	}
}

func TestUploadReportsProgress(t *testing.T) {
	store := newTestStore(t)

	var percents []int
	data := make([]byte, progressChunkSize*2+100)

	_, _, err := store.Upload(context.Background(), data, "video/mp4", func(p int) {
		percents = append(percents, p)
	})
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}

	if len(percents) == 0 {
		t.Fatal("no progress reported")
	}
	if percents[len(percents)-1] != 100 {
		t.Errorf("final progress = %d, want 100", percents[len(percents)-1])
	}
	for i := 1; i < len(percents); i++ {
		if percents[i] < percents[i-1] {
			t.Errorf("progress went backwards: %v", percents)
		}
	}
}

func TestUploadEmptyDataCompletes(t *testing.T) {
	store := newTestStore(t)

	var last int
	_, ref, err := store.Upload(context.Background(), nil, "image/png", func(p int) { last = p })
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if ref == "" {
		t.Error("empty upload should still produce a ref")
	}
	if last != 100 {
		t.Errorf("final progress = %d, want 100", last)
	}
}

func TestDeleteByRef(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, ref, err := store.Upload(ctx, []byte("sheet music"), "application/pdf", nil)
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}

	if err := store.DeleteByRef(ctx, ref, "document"); err != nil {
		t.Fatalf("DeleteByRef() error = %v", err)
	}

	exists, err := store.Exists(ctx, ref)
	if err != nil {
		t.Fatalf("Exists() error = %v", err)
	}
	if exists {
		t.Error("blob still present after delete")
	}

	// deleting an absent ref is a no-op
	if err := store.DeleteByRef(ctx, ref, "document"); err != nil {
		t.Errorf("second DeleteByRef() error = %v, want nil", err)
	}
}

func TestInvalidRefs(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	tests := []struct {
		name string
		ref  string
	}{
		{"empty", ""},
		{"traversal", "../escape"},
		{"absolute", "/etc/passwd"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := store.DeleteByRef(ctx, tt.ref, ""); err != ErrInvalidRef {
				t.Errorf("DeleteByRef(%q) error = %v, want ErrInvalidRef", tt.ref, err)
			}
			if _, err := store.Exists(ctx, tt.ref); err != ErrInvalidRef {
				t.Errorf("Exists(%q) error = %v, want ErrInvalidRef", tt.ref, err)
			}
		})
	}
}

func TestDeleteCleansEmptyDirectories(t *testing.T) {
	cfg := &config.StorageConfig{
		BasePath:      t.TempDir(),
		PublicBaseURL: "/files",
	}
	store, err := New(cfg, slog.New(slog.NewTextHandler(os.Stderr, nil)))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx := context.Background()
	_, ref, err := store.Upload(ctx, []byte("x"), "image/png", nil)
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}

	if err := store.DeleteByRef(ctx, ref, "image"); err != nil {
		t.Fatalf("DeleteByRef() error = %v", err)
	}

	base, _ := filepath.Abs(cfg.BasePath)
	dir := filepath.Join(base, filepath.Dir(ref))
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Errorf("empty prefix directory %s should be removed", dir)
	}
}
