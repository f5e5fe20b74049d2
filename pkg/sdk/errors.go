package ocrchat

import "github.com/kailas-cloud/ocrchat/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrBackendUnavailable  = domain.ErrBackendUnavailable
	ErrExtractionFailed    = domain.ErrExtractionFailed
	ErrNoBackendAvailable  = domain.ErrNoBackendAvailable
	ErrUnsupportedDocument = domain.ErrUnsupportedDocument
	ErrDependencyMissing   = domain.ErrDependencyMissing
	ErrInvalidRequest      = domain.ErrInvalidRequest
	ErrChatProviderError   = domain.ErrChatProviderError
	ErrNotImplemented      = domain.ErrNotImplemented
)
