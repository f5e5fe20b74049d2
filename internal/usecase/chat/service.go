// Package chat answers a prompt with optional document context through a chat provider.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/ocrchat/internal/domain"
	"github.com/kailas-cloud/ocrchat/internal/domain/budget"
	"github.com/kailas-cloud/ocrchat/internal/domain/conversation"
	"github.com/kailas-cloud/ocrchat/internal/logger"
	"github.com/kailas-cloud/ocrchat/internal/usecase/ingest"
)

// Request is one chat exchange.
type Request struct {
	// Model is passed to the provider and selects the context budget. Empty means the default model.
	Model     string
	Languages []string
	Fast      bool
	Prompt    string
	History   []conversation.Turn
	// Upload is optional.
	Upload *domain.Document
	// Context is text extracted earlier (e.g. by an interactive session). Ignored when Upload is set.
	Context string
}

// Response carries the reply and the context that was sent with it.
type Response struct {
	Reply         string
	Model         string
	ExtractedText string
	Warning       domain.Warning
}

// Service coordinates ingestion, budgeting, assembly and the provider call.
type Service struct {
	ingestor     Ingestor
	client       domain.ChatClient
	budget       budget.Table
	defaultModel string
	languages    []string
	fast         bool
}

// Option configures a Service.
type Option func(*Service)

// WithOCRDefaults sets the languages used when a request names none.
// fast forces fast recognition for every upload.
func WithOCRDefaults(languages []string, fast bool) Option {
	return func(s *Service) {
		s.languages = domain.NormalizeLanguages(languages)
		s.fast = fast
	}
}

// New creates a Service.
func New(ingestor Ingestor, client domain.ChatClient, table budget.Table, defaultModel string, opts ...Option) *Service {
	s := &Service{
		ingestor:     ingestor,
		client:       client,
		budget:       table,
		defaultModel: defaultModel,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DefaultModel returns the model used when a request names none.
func (s *Service) DefaultModel() string { return s.defaultModel }

// LimitFor exposes the context budget of a model.
func (s *Service) LimitFor(model string) int {
	return s.budget.LimitFor(s.resolveModel(model))
}

func (s *Service) resolveModel(model string) string {
	if m := strings.TrimSpace(model); m != "" {
		return m
	}
	return s.defaultModel
}

// Chat runs one exchange.
func (s *Service) Chat(ctx context.Context, req Request) (Response, error) {
	log := logger.FromContext(ctx)

	model := s.resolveModel(req.Model)
	if model == "" {
		return Response{}, fmt.Errorf("model is required: %w", domain.ErrInvalidRequest)
	}
	if strings.TrimSpace(req.Prompt) == "" && req.Upload == nil {
		return Response{}, fmt.Errorf("prompt or upload is required: %w", domain.ErrInvalidRequest)
	}

	limit := s.budget.LimitFor(model)
	resp := Response{Model: model}

	if req.Upload != nil {
		langs := req.Languages
		if len(langs) == 0 {
			langs = s.languages
		}
		res, err := s.ingestor.Ingest(ctx, *req.Upload, ingest.Options{
			Limit:     limit,
			Languages: langs,
			Fast:      req.Fast || s.fast,
		})
		if err != nil {
			return Response{}, fmt.Errorf("ingest upload: %w", err)
		}
		// re-clamp: the ingestor may be swapped for one with a looser contract
		resp.ExtractedText, _ = budget.Clamp(res.Text, limit)
		resp.Warning = res.Warning
	} else if req.Context != "" {
		var cut bool
		resp.ExtractedText, cut = budget.Clamp(req.Context, limit)
		if cut {
			resp.Warning = domain.WarningTextTruncated
		}
	}

	turns := conversation.Assemble(req.History, resp.ExtractedText, req.Prompt)

	reply, err := s.client.Complete(ctx, model, turns)
	if err != nil {
		if !errors.Is(err, domain.ErrChatProviderError) {
			err = fmt.Errorf("%w: %w", domain.ErrChatProviderError, err)
		}
		return Response{}, err
	}
	resp.Reply = reply

	log.Info("Chat completed",
		zap.String("model", model),
		zap.Int("history_turns", len(req.History)),
		zap.Int("context_chars", budget.Len(resp.ExtractedText)),
		zap.Int("context_limit", limit),
		zap.String("warning", string(resp.Warning)),
		zap.Int("reply_chars", budget.Len(reply)),
	)
	return resp, nil
}

// Models lists the provider's models when it supports listing.
func (s *Service) Models(ctx context.Context) ([]domain.Model, error) {
	lister, ok := s.client.(domain.ModelLister)
	if !ok {
		return nil, fmt.Errorf("model listing: %w", domain.ErrNotImplemented)
	}
	models, err := lister.ListModels(ctx)
	if err != nil {
		if !errors.Is(err, domain.ErrChatProviderError) && !errors.Is(err, domain.ErrNotImplemented) {
			err = fmt.Errorf("%w: %w", domain.ErrChatProviderError, err)
		}
		return nil, err
	}
	return models, nil
}
