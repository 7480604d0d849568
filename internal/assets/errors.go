package assets

import (
	"errors"
	"net/http"
)

// Domain errors for asset operations. Coordinators convert raw store
// failures into this taxonomy at their boundary; transport errors never
// reach callers unwrapped.
var (
	// ErrStoreUnavailable indicates a metadata or blob store call failed
	// outright (network, auth, quota). Always surfaced with a retry
	// affordance; retries are caller-initiated, never automatic.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrInvalidArgument indicates a precondition violation rejected before
	// any remote call, such as a too-short search keyword.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInvalidState indicates programming-level misuse, such as fetching a
	// next page before the first. It signals a caller bug, not a runtime
	// condition to present to users.
	ErrInvalidState = errors.New("invalid state")

	// ErrNotFound indicates the requested asset record does not exist.
	ErrNotFound = errors.New("asset not found")

	// ErrDuplicate indicates an asset record conflicts with an existing one.
	ErrDuplicate = errors.New("asset already exists")

	// ErrFileTooLarge indicates an upload exceeds the configured maximum size.
	ErrFileTooLarge = errors.New("file exceeds maximum upload size")

	// ErrInvalidFile indicates an unreadable or malformed upload.
	ErrInvalidFile = errors.New("invalid file")
)

// MapHTTPStatus converts domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, ErrInvalidState):
		return http.StatusBadRequest
	case errors.Is(err, ErrInvalidFile):
		return http.StatusBadRequest
	case errors.Is(err, ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, ErrStoreUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
