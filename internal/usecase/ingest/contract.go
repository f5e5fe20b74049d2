package ingest

import (
	"context"

	"github.com/kailas-cloud/ocrchat/internal/domain"
)

// OCR recognizes text in an image file.
type OCR interface {
	OCR(ctx context.Context, path string, languages []string, fast bool) (string, error)
}

// PDFOpener parses a PDF into page-addressable text.
type PDFOpener interface {
	Open(data []byte) (domain.PageSource, error)
}
