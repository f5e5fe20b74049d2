package chat

import (
	"context"

	"github.com/kailas-cloud/ocrchat/internal/domain"
	"github.com/kailas-cloud/ocrchat/internal/usecase/ingest"
)

// Ingestor extracts context text from an uploaded document.
type Ingestor interface {
	Ingest(ctx context.Context, doc domain.Document, opts ingest.Options) (domain.ExtractionResult, error)
}
