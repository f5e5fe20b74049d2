package ocrchat

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/ocrchat/internal/domain"
	"github.com/kailas-cloud/ocrchat/internal/domain/budget"
	"github.com/kailas-cloud/ocrchat/internal/ocr/tesseract"
	"github.com/kailas-cloud/ocrchat/internal/ocr/vision"
	"github.com/kailas-cloud/ocrchat/internal/pdftext"
	"github.com/kailas-cloud/ocrchat/internal/transport/ollama"
	"github.com/kailas-cloud/ocrchat/internal/transport/openai"
	chatuc "github.com/kailas-cloud/ocrchat/internal/usecase/chat"
	"github.com/kailas-cloud/ocrchat/internal/usecase/extraction"
	healthuc "github.com/kailas-cloud/ocrchat/internal/usecase/health"
	"github.com/kailas-cloud/ocrchat/internal/usecase/ingest"
)

const (
	defaultModel   = "qwen3:4b"
	defaultBaseURL = "http://localhost:11434/v1"
	defaultTimeout = 5 * time.Minute
)

// Internal interfaces for substitution in tests.
type ingestUseCase interface {
	Ingest(ctx context.Context, doc domain.Document, opts ingest.Options) (domain.ExtractionResult, error)
}

type chatUseCase interface {
	Chat(ctx context.Context, req chatuc.Request) (chatuc.Response, error)
	Models(ctx context.Context) ([]domain.Model, error)
	LimitFor(model string) int
	DefaultModel() string
}

type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}

// Client is the ocrchat SDK entry point. It is safe for concurrent use.
type Client struct {
	ingestSvc ingestUseCase
	chatSvc   chatUseCase
	healthSvc healthUseCase
	languages []string
	fast      bool
	obs       *observer
}

// New creates a Client. Without options it chats with a local Ollama through its
// OpenAI-compatible endpoint and uses the default OCR backends.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		provider:     providerOpenAI,
		baseURL:      defaultBaseURL,
		defaultModel: defaultModel,
		timeout:      defaultTimeout,
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	client, err := buildChatClient(cfg)
	if err != nil {
		return nil, err
	}
	return wireClient(cfg, client, obs), nil
}

func buildChatClient(cfg *clientConfig) (domain.ChatClient, error) {
	if cfg.chat != nil {
		return &chatAdapter{inner: cfg.chat}, nil
	}
	switch cfg.provider {
	case providerOpenAI:
		return openai.NewChat(&openai.Config{
			APIKey:  cfg.apiKey,
			BaseURL: cfg.baseURL,
			Timeout: cfg.timeout,
		}), nil
	case providerOllama:
		c, err := ollama.NewChat(&ollama.Config{
			ServerURL:    cfg.baseURL,
			DefaultModel: cfg.defaultModel,
			Timeout:      cfg.timeout,
		})
		if err != nil {
			return nil, fmt.Errorf("ocrchat: %w", err)
		}
		return c, nil
	default:
		return nil, fmt.Errorf("ocrchat: unknown provider %q", cfg.provider)
	}
}

func wireClient(cfg *clientConfig, client domain.ChatClient, obs *observer) *Client {
	var backends []domain.OCRBackend
	if cfg.backends == nil {
		backends = []domain.OCRBackend{
			vision.New(vision.DefaultHelper),
			tesseract.New(tesseract.DefaultBinary),
		}
	} else {
		for _, b := range cfg.backends {
			backends = append(backends, b)
		}
	}
	orch := extraction.NewOrchestrator(zap.NewNop(), backends...)

	var pdf ingest.PDFOpener
	if !cfg.disablePDF {
		pdf = pdftext.Opener{}
	}
	ingestSvc := ingest.New(orch, pdf, cfg.tempDir, zap.NewNop())

	table := budget.NewTable(budget.DefaultRules, cfg.budgetFallback)
	if len(cfg.budgetRules) > 0 {
		rules := make([]budget.Rule, len(cfg.budgetRules))
		for i, r := range cfg.budgetRules {
			rules[i] = budget.Rule{Token: r.Token, Limit: r.Limit}
		}
		table = budget.NewTable(rules, cfg.budgetFallback)
	}

	instrumented := chatuc.NewInstrumentedClient(client, cfg.provider, zap.NewNop())

	return &Client{
		ingestSvc: ingestSvc,
		chatSvc:   chatuc.New(ingestSvc, instrumented, table, cfg.defaultModel),
		healthSvc: healthuc.New(instrumented, orch),
		languages: cfg.languages,
		fast:      cfg.fast,
		obs:       obs,
	}
}

// DefaultModel returns the model used when a request names none.
func (c *Client) DefaultModel() string { return c.chatSvc.DefaultModel() }

// LimitFor returns the context budget, in characters, for a model ("" = default model).
func (c *Client) LimitFor(model string) int { return c.chatSvc.LimitFor(model) }

// Ingest extracts the text of doc, truncated to the budget of model ("" = default model).
func (c *Client) Ingest(ctx context.Context, doc Document, model string) (ext Extraction, err error) {
	start := time.Now()
	defer func() { c.obs.observe("ingest", start, err, "filename", doc.Filename) }()

	d, err := toDomainDocument(doc)
	if err != nil {
		return Extraction{}, err
	}
	res, err := c.ingestSvc.Ingest(ctx, d, ingest.Options{
		Limit:     c.chatSvc.LimitFor(model),
		Languages: c.languages,
		Fast:      c.fast,
	})
	if err != nil {
		return Extraction{}, err
	}
	return fromExtraction(res), nil
}

// Chat runs one exchange. Request languages default to the client's; Fast is
// forced on by WithFastOCR.
func (c *Client) Chat(ctx context.Context, req ChatRequest) (resp ChatResponse, err error) {
	start := time.Now()
	defer func() { c.obs.observe("chat", start, err, "model", req.Model) }()

	history, err := toTurns(req.History)
	if err != nil {
		return ChatResponse{}, err
	}

	langs := req.Languages
	if len(langs) == 0 {
		langs = c.languages
	}
	r := chatuc.Request{
		Model:     req.Model,
		Languages: langs,
		Fast:      req.Fast || c.fast,
		Prompt:    req.Prompt,
		History:   history,
		Context:   req.Context,
	}
	if req.Upload != nil {
		d, err := toDomainDocument(*req.Upload)
		if err != nil {
			return ChatResponse{}, err
		}
		r.Upload = &d
	}

	out, err := c.chatSvc.Chat(ctx, r)
	if err != nil {
		return ChatResponse{}, err
	}
	return fromChatResponse(out), nil
}

// Models lists the provider's models. Returns ErrNotImplemented when the provider cannot list.
func (c *Client) Models(ctx context.Context) (models []Model, err error) {
	start := time.Now()
	defer func() { c.obs.observe("models", start, err) }()

	list, err := c.chatSvc.Models(ctx)
	if err != nil {
		return nil, err
	}
	models = make([]Model, len(list))
	for i, m := range list {
		models[i] = Model{Name: m.Name, ParameterSize: m.ParameterSize, ContextLength: m.ContextLength}
	}
	return models, nil
}
