package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrBackendUnavailable signals that an OCR backend cannot initialize on this host.
	ErrBackendUnavailable = errors.New("ocr backend unavailable")
	// ErrExtractionFailed signals that a backend initialized but could not process the document.
	ErrExtractionFailed = errors.New("text extraction failed")
	// ErrNoBackendAvailable signals that no OCR backend is usable at all.
	ErrNoBackendAvailable = errors.New("no ocr backend available")
	// ErrUnsupportedDocument signals a document kind that cannot be routed.
	ErrUnsupportedDocument = errors.New("unsupported document")
	// ErrDependencyMissing signals that an optional capability (e.g. PDF support) is not installed.
	ErrDependencyMissing = errors.New("dependency missing")
	// ErrInvalidRequest signals malformed caller input.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrChatProviderError signals a chat-completion provider failure.
	ErrChatProviderError = errors.New("chat provider error")
	// ErrNotImplemented signals an unimplemented feature.
	ErrNotImplemented = errors.New("not implemented")
)

// BackendError reports the failure of a single OCR backend.
// It matches both ErrExtractionFailed and the underlying cause via errors.Is.
type BackendError struct {
	Backend string
	Err     error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("%s ocr failed: %v", e.Backend, e.Err)
}

func (e *BackendError) Unwrap() []error { return []error{ErrExtractionFailed, e.Err} }

// NewBackendError wraps a backend failure.
func NewBackendError(backend string, err error) error {
	return &BackendError{Backend: backend, Err: err}
}
