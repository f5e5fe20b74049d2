package health

import (
	"context"

	"github.com/kailas-cloud/ocrchat/internal/usecase/extraction"
)

// ChatChecker checks chat provider availability.
type ChatChecker interface {
	HealthCheck(ctx context.Context) error
}

// BackendLister reports the registered OCR backends.
type BackendLister interface {
	Backends() []extraction.BackendStatus
}
