// Package blobstore provides binary object storage for uploaded media.
// It defines a Store interface returning opaque references usable for
// later deletion, and includes a filesystem implementation suitable for
// development and single-node deployments.
package blobstore

import (
	"context"
	"errors"

	"github.com/choralworks/medialib/internal/lifecycle"
)

// Storage errors returned by Store implementations.
var (
	// ErrNotFound indicates the referenced blob does not exist in storage.
	ErrNotFound = errors.New("blobstore: ref not found")

	// ErrPermissionDenied indicates insufficient permissions to access the blob.
	ErrPermissionDenied = errors.New("blobstore: permission denied")

	// ErrInvalidRef indicates the reference is malformed or contains invalid
	// characters. This includes empty refs and path traversal attempts.
	ErrInvalidRef = errors.New("blobstore: invalid ref")
)

// ProgressFunc receives upload progress as a percentage in [0, 100].
type ProgressFunc func(percent int)

// Store persists binary content and returns opaque references.
// Implementations handle the underlying storage mechanism (filesystem,
// CDN, object store) while providing a consistent API.
type Store interface {
	// Upload stores data and returns a publicly resolvable URL together with
	// an opaque ref usable for later deletion. onProgress, when non-nil, is
	// called with ascending percentages ending at 100 on success.
	Upload(ctx context.Context, data []byte, contentType string, onProgress ProgressFunc) (url, ref string, err error)

	// DeleteByRef deletes the blob addressed by ref. resourceType is an
	// implementation hint (image, audio, video, document) and may be ignored.
	// Deleting an absent ref is a no-op.
	DeleteByRef(ctx context.Context, ref, resourceType string) error

	// Exists reports whether the blob addressed by ref is present.
	Exists(ctx context.Context, ref string) (bool, error)

	// Start registers lifecycle hooks with the coordinator.
	Start(lc *lifecycle.Coordinator) error
}
