package chat

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/ocrchat/internal/domain"
	"github.com/kailas-cloud/ocrchat/internal/domain/conversation"
	"github.com/kailas-cloud/ocrchat/internal/metrics"
)

// HealthChecker is implemented by providers that can probe their endpoint.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// InstrumentedClient wraps a ChatClient with metrics and logging.
// Listing and health probes are forwarded when the inner client supports them.
type InstrumentedClient struct {
	inner    domain.ChatClient
	provider string
	logger   *zap.Logger
}

// NewInstrumentedClient wraps a chat client with observability.
func NewInstrumentedClient(inner domain.ChatClient, provider string, logger *zap.Logger) *InstrumentedClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InstrumentedClient{inner: inner, provider: provider, logger: logger}
}

// Complete records the request outcome and duration.
func (c *InstrumentedClient) Complete(ctx context.Context, model string, turns []conversation.Turn) (string, error) {
	start := time.Now()
	reply, err := c.inner.Complete(ctx, model, turns)
	duration := time.Since(start)

	metrics.ChatRequestDuration.WithLabelValues(c.provider, model).Observe(duration.Seconds())

	if err != nil {
		metrics.ChatRequestsTotal.WithLabelValues(c.provider, model, "error").Inc()
		c.logger.Error("Chat request failed",
			zap.String("provider", c.provider),
			zap.String("model", model),
			zap.Int("turns", len(turns)),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return "", fmt.Errorf("complete: %w", err)
	}

	metrics.ChatRequestsTotal.WithLabelValues(c.provider, model, "success").Inc()
	c.logger.Debug("Chat request completed",
		zap.String("provider", c.provider),
		zap.String("model", model),
		zap.Int("turns", len(turns)),
		zap.Duration("duration", duration),
	)
	return reply, nil
}

// ListModels forwards to the inner client.
func (c *InstrumentedClient) ListModels(ctx context.Context) ([]domain.Model, error) {
	lister, ok := c.inner.(domain.ModelLister)
	if !ok {
		return nil, fmt.Errorf("%s model listing: %w", c.provider, domain.ErrNotImplemented)
	}
	return lister.ListModels(ctx)
}

// HealthCheck forwards to the inner client. Clients without a probe are assumed healthy.
func (c *InstrumentedClient) HealthCheck(ctx context.Context) error {
	if hc, ok := c.inner.(HealthChecker); ok {
		return hc.HealthCheck(ctx)
	}
	return nil
}
