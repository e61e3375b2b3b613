package source

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotFound means no transmittal has the requested id.
	ErrNotFound = errors.New("transmittal not found")
	// ErrNotDraft means the operation needs a draft (edit, delete, generate).
	ErrNotDraft = errors.New("transmittal is not a draft")
	// ErrInvalidMode is returned for an unknown duplicate mode.
	ErrInvalidMode = errors.New("invalid duplicate mode")
	// ErrInvalidReceipt means an upload is empty, too large, or neither an
	// image nor a PDF.
	ErrInvalidReceipt = errors.New("invalid receipt")
	// ErrUnknownDocument means a pick matches nothing in the document library.
	ErrUnknownDocument = errors.New("unknown library document")
)

const opUploadReceipt = "upload receipt"

// FetchError is a failed call to the remote portal. It is always recoverable:
// callers keep what they already show and let the user retry.
type FetchError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: %d %s: %v", e.Op, e.StatusCode, http.StatusText(e.StatusCode), e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Is maps HTTP status codes onto the package sentinels.
func (e *FetchError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case ErrNotDraft:
		return e.StatusCode == http.StatusBadRequest && e.Op != opUploadReceipt
	case ErrInvalidReceipt:
		return e.StatusCode == http.StatusBadRequest && e.Op == opUploadReceipt
	}
	return false
}
