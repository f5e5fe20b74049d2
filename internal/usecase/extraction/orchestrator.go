// Package extraction chains OCR backends in priority order with fallback on failure.
package extraction

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/ocrchat/internal/domain"
	"github.com/kailas-cloud/ocrchat/internal/metrics"
)

// BackendStatus describes one registered backend.
type BackendStatus struct {
	Name      string
	Available bool
}

// Orchestrator runs the first available backend that succeeds.
// Callers only see the recognized text or one aggregated error.
type Orchestrator struct {
	backends []domain.OCRBackend
	logger   *zap.Logger
}

// NewOrchestrator registers backends in priority order (most accurate first).
func NewOrchestrator(logger *zap.Logger, backends ...domain.OCRBackend) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{backends: backends, logger: logger}
}

// Backends reports every registered backend with its current availability.
func (o *Orchestrator) Backends() []BackendStatus {
	out := make([]BackendStatus, 0, len(o.backends))
	for _, b := range o.backends {
		out = append(out, BackendStatus{Name: b.Name(), Available: b.Available()})
	}
	return out
}

// OCR recognizes text in the image at path.
//
// Unavailable backends are skipped. A failing backend is logged and the next one is
// tried. ErrNoBackendAvailable is returned when nothing could run at all; otherwise
// the last failure is returned wrapped as a *domain.BackendError.
func (o *Orchestrator) OCR(ctx context.Context, path string, languages []string, fast bool) (string, error) {
	langs := domain.NormalizeLanguages(languages)

	var (
		lastErr error
		failed  string
	)
	for _, b := range o.backends {
		name := b.Name()
		if !b.Available() {
			o.logger.Debug("OCR backend unavailable, skipping", zap.String("backend", name))
			metrics.OCRAttemptsTotal.WithLabelValues(name, "unavailable").Inc()
			continue
		}
		if failed != "" {
			metrics.OCRFallbacksTotal.WithLabelValues(failed).Inc()
		}

		start := time.Now()
		text, err := b.Extract(ctx, path, langs, fast)
		duration := time.Since(start)
		metrics.OCRDuration.WithLabelValues(name).Observe(duration.Seconds())

		if err == nil {
			metrics.OCRAttemptsTotal.WithLabelValues(name, "success").Inc()
			o.logger.Debug("OCR completed",
				zap.String("backend", name),
				zap.Strings("languages", langs),
				zap.Bool("fast", fast),
				zap.Duration("duration", duration),
				zap.Int("chars", len(text)),
			)
			return text, nil
		}

		if errors.Is(err, domain.ErrBackendUnavailable) {
			// availability changed between the probe and the call
			metrics.OCRAttemptsTotal.WithLabelValues(name, "unavailable").Inc()
			o.logger.Warn("OCR backend became unavailable", zap.String("backend", name), zap.Error(err))
			continue
		}

		metrics.OCRAttemptsTotal.WithLabelValues(name, "error").Inc()
		o.logger.Warn("OCR backend failed",
			zap.String("backend", name),
			zap.Duration("duration", duration),
			zap.Error(err),
		)

		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", fmt.Errorf("ocr: %w", ctxErr)
		}

		if !errors.Is(err, domain.ErrExtractionFailed) {
			err = domain.NewBackendError(name, err)
		}
		lastErr = err
		failed = name
	}

	if lastErr == nil {
		return "", domain.ErrNoBackendAvailable
	}
	return "", lastErr
}
