package ocrchat

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/ocrchat/internal/domain"
	"github.com/kailas-cloud/ocrchat/internal/domain/conversation"
)

// ChatClient produces the assistant reply for a conversation.
// Implement it to plug in a provider the SDK does not ship.
type ChatClient interface {
	Complete(ctx context.Context, model string, messages []Message) (string, error)
}

// ModelLister is optionally implemented by a ChatClient.
type ModelLister interface {
	ListModels(ctx context.Context) ([]Model, error)
}

// OCRBackend recognizes text in an image file. Backends are tried in the order given;
// one that is not Available is skipped.
type OCRBackend interface {
	Name() string
	Available() bool
	Extract(ctx context.Context, path string, languages []string, fast bool) (string, error)
}

// chatAdapter exposes a public ChatClient as a domain.ChatClient.
type chatAdapter struct {
	inner ChatClient
}

func (a *chatAdapter) Complete(ctx context.Context, model string, turns []conversation.Turn) (string, error) {
	return a.inner.Complete(ctx, model, fromTurns(turns))
}

func (a *chatAdapter) ListModels(ctx context.Context) ([]domain.Model, error) {
	lister, ok := a.inner.(ModelLister)
	if !ok {
		return nil, fmt.Errorf("model listing: %w", domain.ErrNotImplemented)
	}
	models, err := lister.ListModels(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Model, len(models))
	for i, m := range models {
		out[i] = domain.Model{Name: m.Name, Model: m.Name, ParameterSize: m.ParameterSize, ContextLength: m.ContextLength}
	}
	return out, nil
}

func (a *chatAdapter) HealthCheck(ctx context.Context) error {
	if hc, ok := a.inner.(interface{ HealthCheck(context.Context) error }); ok {
		return hc.HealthCheck(ctx)
	}
	return nil
}
