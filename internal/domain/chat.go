package domain

import (
	"context"

	"github.com/kailas-cloud/ocrchat/internal/domain/conversation"
)

// ChatClient sends an assembled conversation to a chat-completion provider.
type ChatClient interface {
	Complete(ctx context.Context, model string, turns []conversation.Turn) (string, error)
}

// ModelLister is implemented by providers that can enumerate their models.
type ModelLister interface {
	ListModels(ctx context.Context) ([]Model, error)
}

// Model describes one model offered by the chat provider.
// ParameterSize and ContextLength are only known to providers that report model details.
type Model struct {
	Name          string `json:"name"`
	Model         string `json:"model"`
	ParameterSize string `json:"parameter_size,omitempty"`
	ContextLength int    `json:"context_length,omitempty"`
}
