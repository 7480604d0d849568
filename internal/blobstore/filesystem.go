package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/choralworks/medialib/internal/config"
	"github.com/choralworks/medialib/internal/lifecycle"
	"github.com/google/uuid"
)

// progressChunkSize controls how often upload progress is reported.
const progressChunkSize = 256 * 1024

// filesystem implements Store using the local filesystem.
// Blobs are stored as files under a configurable base path; the ref is the
// file's path relative to the base, and the URL is the ref joined onto the
// configured public base URL.
type filesystem struct {
	basePath      string
	publicBaseURL string
	logger        *slog.Logger
}

// New creates a new filesystem blob store.
// The base path is resolved to an absolute path during construction.
// Directory creation is deferred to Start() for lifecycle integration.
func New(cfg *config.StorageConfig, logger *slog.Logger) (Store, error) {
	if cfg.BasePath == "" {
		return nil, fmt.Errorf("base_path required")
	}

	absPath, err := filepath.Abs(cfg.BasePath)
	if err != nil {
		return nil, fmt.Errorf("resolve base_path: %w", err)
	}

	return &filesystem{
		basePath:      absPath,
		publicBaseURL: strings.TrimSuffix(cfg.PublicBaseURL, "/"),
		logger:        logger.With("system", "blobstore"),
	}, nil
}

func (f *filesystem) Start(lc *lifecycle.Coordinator) error {
	f.logger.Info("starting blob store", "base_path", f.basePath)

	lc.OnStartup(func() {
		if err := os.MkdirAll(f.basePath, 0755); err != nil {
			f.logger.Error("blob store initialization failed", "error", err)
			return
		}
		f.logger.Info("blob store directory initialized")
	})

	return nil
}

func (f *filesystem) Upload(ctx context.Context, data []byte, contentType string, onProgress ProgressFunc) (string, string, error) {
	ref := buildRef(contentType)

	path, err := f.fullPath(ref)
	if err != nil {
		return "", "", err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", "", fmt.Errorf("create directory: %w", err)
	}

	tmpPath := path + ".tmp"
	out, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return "", "", fmt.Errorf("create temp file: %w", err)
	}

	if err := writeChunked(ctx, out, data, onProgress); err != nil {
		out.Close()
		os.Remove(tmpPath)
		return "", "", err
	}

	if err := out.Close(); err != nil {
		os.Remove(tmpPath)
		return "", "", fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return "", "", fmt.Errorf("rename temp file: %w", err)
	}

	return f.publicBaseURL + "/" + ref, ref, nil
}

func (f *filesystem) DeleteByRef(ctx context.Context, ref, resourceType string) error {
	path, err := f.fullPath(ref)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)

	if err := os.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		if errors.Is(err, fs.ErrPermission) {
			return ErrPermissionDenied
		}
		return fmt.Errorf("remove file: %w", err)
	}

	if dir != f.basePath && strings.HasPrefix(dir, f.basePath) {
		entries, err := os.ReadDir(dir)
		if err != nil {
			f.logger.Warn("failed to read directory for cleanup", "dir", dir, "error", err)
			return nil
		}

		if len(entries) == 0 {
			if err := os.Remove(dir); err != nil && !errors.Is(err, fs.ErrNotExist) {
				f.logger.Warn("failed to remove empty directory", "dir", dir, "error", err)
			}
		}
	}

	return nil
}

func (f *filesystem) Exists(ctx context.Context, ref string) (bool, error) {
	path, err := f.fullPath(ref)
	if err != nil {
		return false, err
	}

	_, err = os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		if errors.Is(err, fs.ErrPermission) {
			return false, ErrPermissionDenied
		}
		return false, fmt.Errorf("stat file: %w", err)
	}

	return true, nil
}

func (f *filesystem) fullPath(ref string) (string, error) {
	if ref == "" {
		return "", ErrInvalidRef
	}

	cleaned := filepath.Clean(ref)
	if strings.HasPrefix(cleaned, "..") || filepath.IsAbs(cleaned) {
		return "", ErrInvalidRef
	}

	fullPath := filepath.Join(f.basePath, cleaned)

	if !strings.HasPrefix(fullPath, f.basePath) {
		return "", ErrInvalidRef
	}

	return fullPath, nil
}

func writeChunked(ctx context.Context, out *os.File, data []byte, onProgress ProgressFunc) error {
	total := len(data)
	if total == 0 {
		report(onProgress, 100)
		return nil
	}

	written := 0
	for written < total {
		if err := ctx.Err(); err != nil {
			return err
		}

		end := written + progressChunkSize
		if end > total {
			end = total
		}

		n, err := out.Write(data[written:end])
		if err != nil {
			return fmt.Errorf("write file: %w", err)
		}
		written += n

		report(onProgress, written*100/total)
	}

	return nil
}

func report(onProgress ProgressFunc, percent int) {
	if onProgress != nil {
		onProgress(percent)
	}
}

func buildRef(contentType string) string {
	id := uuid.New().String()
	prefix := id[:2]

	ext := ""
	if exts, err := mime.ExtensionsByType(contentType); err == nil && len(exts) > 0 {
		ext = exts[0]
	}

	return fmt.Sprintf("%s/%s%s", prefix, id, ext)
}
