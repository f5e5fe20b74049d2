// Package ingest turns uploaded documents into budgeted context text.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/ocrchat/internal/domain"
	"github.com/kailas-cloud/ocrchat/internal/domain/budget"
	"github.com/kailas-cloud/ocrchat/internal/metrics"
)

// pageSeparator joins the text of consecutive PDF pages.
const pageSeparator = "\n\n"

// Options controls a single ingestion.
type Options struct {
	// Limit is the character budget; <= 0 means unlimited.
	Limit     int
	Languages []string
	Fast      bool
}

// Service dispatches documents to the text, PDF or image path.
type Service struct {
	ocr     OCR
	pdf     PDFOpener
	tempDir string
	logger  *zap.Logger
}

// New creates a Service. pdf may be nil when PDF support is disabled;
// tempDir "" uses the OS default.
func New(ocr OCR, pdf PDFOpener, tempDir string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{ocr: ocr, pdf: pdf, tempDir: tempDir, logger: logger}
}

// Ingest extracts the text of doc. The declared kind wins over the filename extension.
func (s *Service) Ingest(ctx context.Context, doc domain.Document, opts Options) (domain.ExtractionResult, error) {
	kind := doc.ResolveKind()

	var (
		res domain.ExtractionResult
		err error
	)
	switch kind {
	case domain.KindText:
		res = s.ingestText(doc.Data, opts.Limit)
	case domain.KindPDF:
		res, err = s.ingestPDF(ctx, doc.Data, opts.Limit)
	case domain.KindImage:
		res, err = s.ingestImage(ctx, doc, opts)
	default:
		err = fmt.Errorf("kind %q: %w", kind, domain.ErrUnsupportedDocument)
	}

	label := string(kind)
	if err != nil {
		metrics.DocumentsIngestedTotal.WithLabelValues(label, "error").Inc()
		s.logger.Warn("Document ingestion failed",
			zap.String("kind", label),
			zap.String("filename", doc.Filename),
			zap.Int("bytes", len(doc.Data)),
			zap.Error(err),
		)
		return domain.ExtractionResult{}, err
	}

	metrics.DocumentsIngestedTotal.WithLabelValues(label, "success").Inc()
	if res.Truncated {
		metrics.DocumentsTruncatedTotal.WithLabelValues(label).Inc()
	}
	s.logger.Debug("Document ingested",
		zap.String("kind", label),
		zap.Int("bytes", len(doc.Data)),
		zap.Int("chars", budget.Len(res.Text)),
		zap.Int("limit", opts.Limit),
		zap.Bool("truncated", res.Truncated),
	)
	return res, nil
}

func (s *Service) ingestText(data []byte, limit int) domain.ExtractionResult {
	text, enc := DecodeText(data)
	s.logger.Debug("Text decoded", zap.String("encoding", enc))

	text, truncated := budget.Clamp(text, limit)
	res := domain.ExtractionResult{Text: text, Truncated: truncated}
	if truncated {
		res.Warning = domain.WarningTextTruncated
	}
	return res
}

// ingestPDF reads pages until the budget is filled. Pages that fail are skipped.
func (s *Service) ingestPDF(ctx context.Context, data []byte, limit int) (domain.ExtractionResult, error) {
	if s.pdf == nil {
		return domain.ExtractionResult{}, fmt.Errorf("pdf support is disabled: %w", domain.ErrDependencyMissing)
	}

	src, err := s.pdf.Open(data)
	if err != nil {
		return domain.ExtractionResult{}, fmt.Errorf("%w: %w", domain.ErrExtractionFailed, err)
	}

	pages := src.NumPages()
	var (
		chunks []string
		chars  int
		failed int
	)
	for page := 1; page <= pages; page++ {
		if err := ctx.Err(); err != nil {
			return domain.ExtractionResult{}, fmt.Errorf("read pdf: %w", err)
		}

		text, err := src.PageText(page)
		if err != nil {
			failed++
			metrics.PDFPageErrorsTotal.Inc()
			s.logger.Warn("PDF page skipped", zap.Int("page", page), zap.Error(err))
			continue
		}
		if text == "" {
			continue
		}
		chunks = append(chunks, text)
		chars += budget.Len(text)
		if limit > 0 && chars >= limit {
			break
		}
	}

	if pages > 0 && failed == pages {
		return domain.ExtractionResult{}, fmt.Errorf("all %d pdf pages failed: %w", pages, domain.ErrExtractionFailed)
	}

	text, truncated := budget.Clamp(strings.Join(chunks, pageSeparator), limit)
	res := domain.ExtractionResult{Text: text, Truncated: truncated}
	if truncated {
		res.Warning = domain.WarningPDFTruncated
	}
	return res, nil
}

// ingestImage saves the upload into a private temp dir, runs OCR and removes the dir.
func (s *Service) ingestImage(ctx context.Context, doc domain.Document, opts Options) (domain.ExtractionResult, error) {
	if s.ocr == nil {
		return domain.ExtractionResult{}, domain.ErrNoBackendAvailable
	}

	dir, err := os.MkdirTemp(s.tempDir, "ocrchat-*")
	if err != nil {
		return domain.ExtractionResult{}, fmt.Errorf("create temp dir: %w", err)
	}
	defer func() {
		if rmErr := os.RemoveAll(dir); rmErr != nil {
			s.logger.Warn("Temp dir cleanup failed", zap.String("dir", dir), zap.Error(rmErr))
		}
	}()

	path := filepath.Join(dir, uuid.NewString()+"-"+SafeFilename(doc.Filename))
	if err := os.WriteFile(path, doc.Data, 0o600); err != nil {
		return domain.ExtractionResult{}, fmt.Errorf("save upload: %w", err)
	}

	text, err := s.ocr.OCR(ctx, path, opts.Languages, opts.Fast)
	if err != nil {
		if errors.Is(err, domain.ErrExtractionFailed) || errors.Is(err, domain.ErrNoBackendAvailable) {
			return domain.ExtractionResult{}, err
		}
		// the caller went away; this is not a document problem
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return domain.ExtractionResult{}, err
		}
		return domain.ExtractionResult{}, fmt.Errorf("%w: %w", domain.ErrExtractionFailed, err)
	}

	// OCR output has no warning code; the clamp only guards the budget.
	text, truncated := budget.Clamp(text, opts.Limit)
	return domain.ExtractionResult{Text: text, Truncated: truncated}, nil
}

// SafeFilename keeps the base name of an upload with only portable characters.
func SafeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('_')
		}
	}
	out := strings.Trim(b.String(), "._")
	if out == "" {
		return "upload"
	}
	return out
}
