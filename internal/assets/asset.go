// Package assets implements the media asset synchronization layer: a
// paginated, cached view of uploaded files kept consistent with a metadata
// record store and a binary blob store that fail independently.
package assets

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Type classifies an asset by its content.
type Type string

// Asset type constants.
const (
	TypeImage    Type = "image"
	TypeAudio    Type = "audio"
	TypeVideo    Type = "video"
	TypeDocument Type = "document"
)

// Valid reports whether t is one of the known asset types.
func (t Type) Valid() bool {
	switch t {
	case TypeImage, TypeAudio, TypeVideo, TypeDocument:
		return true
	}
	return false
}

// TypeFromContentType derives the asset type from a MIME content type.
// Anything that is not an image, audio, or video is a document.
func TypeFromContentType(contentType string) Type {
	mediaType := contentType
	if i := strings.Index(mediaType, ";"); i >= 0 {
		mediaType = mediaType[:i]
	}
	mediaType = strings.TrimSpace(strings.ToLower(mediaType))

	switch {
	case strings.HasPrefix(mediaType, "image/"):
		return TypeImage
	case strings.HasPrefix(mediaType, "audio/"):
		return TypeAudio
	case strings.HasPrefix(mediaType, "video/"):
		return TypeVideo
	default:
		return TypeDocument
	}
}

// Record represents one stored asset's metadata.
// BlobRef is the opaque reference required to delete the binary; when empty,
// the binary cannot be paired with the record for cleanup.
type Record struct {
	ID        uuid.UUID `json:"id"`
	Scope     string    `json:"scope"`
	Name      string    `json:"name"`
	URL       string    `json:"url"`
	Type      Type      `json:"type"`
	SizeBytes int64     `json:"size_bytes"`
	Folder    string    `json:"folder"`
	BlobRef   string    `json:"blob_ref,omitempty"`
	PageCount *int      `json:"page_count,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Cursor is the keyset boundary of the last record seen in a paginated
// listing. Records strictly after the boundary (older by creation time,
// ties broken by id) form the next page.
type Cursor struct {
	CreatedAt time.Time `json:"created_at"`
	ID        uuid.UUID `json:"id"`
}

// CursorOf returns the cursor boundary positioned at rec.
func CursorOf(rec Record) Cursor {
	return Cursor{CreatedAt: rec.CreatedAt, ID: rec.ID}
}

// CreateCommand contains the data required to create a new asset record.
// ID, URL, BlobRef, and timestamps are assigned during the upload flow.
type CreateCommand struct {
	Scope     string
	Name      string
	URL       string
	Type      Type
	SizeBytes int64
	Folder    string
	BlobRef   string
	PageCount *int
}

// normalize fills derived defaults: the folder falls back to the type name.
func (c *CreateCommand) normalize() {
	if c.Folder == "" {
		c.Folder = string(c.Type)
	}
}
