// Package app is the composition root: it builds the services from config and serves the HTTP API.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kailas-cloud/ocrchat/internal/config"
	"github.com/kailas-cloud/ocrchat/internal/domain"
	"github.com/kailas-cloud/ocrchat/internal/domain/budget"
	logpkg "github.com/kailas-cloud/ocrchat/internal/logger"
	"github.com/kailas-cloud/ocrchat/internal/metrics"
	"github.com/kailas-cloud/ocrchat/internal/ocr/tesseract"
	"github.com/kailas-cloud/ocrchat/internal/ocr/vision"
	"github.com/kailas-cloud/ocrchat/internal/pdftext"
	chiTransport "github.com/kailas-cloud/ocrchat/internal/transport/chi"
	"github.com/kailas-cloud/ocrchat/internal/transport/ollama"
	"github.com/kailas-cloud/ocrchat/internal/transport/openai"
	chatuc "github.com/kailas-cloud/ocrchat/internal/usecase/chat"
	"github.com/kailas-cloud/ocrchat/internal/usecase/extraction"
	healthuc "github.com/kailas-cloud/ocrchat/internal/usecase/health"
	"github.com/kailas-cloud/ocrchat/internal/usecase/ingest"
)

// App holds the wired services.
type App struct {
	cfg    config.Config
	logger *zap.Logger

	Orchestrator *extraction.Orchestrator
	Ingest       *ingest.Service
	Chat         *chatuc.Service
	Health       *healthuc.Service
}

// Option overrides a collaborator built from config.
type Option func(*options)

type options struct {
	chat        domain.ChatClient
	backends    []domain.OCRBackend
	backendsSet bool
}

// WithChatClient replaces the configured chat provider.
func WithChatClient(c domain.ChatClient) Option {
	return func(o *options) { o.chat = c }
}

// WithBackends replaces the configured OCR backends. No arguments means no OCR at all.
func WithBackends(b ...domain.OCRBackend) Option {
	return func(o *options) {
		o.backends = b
		o.backendsSet = true
	}
}

// New wires the application from cfg.
func New(cfg config.Config, logger *zap.Logger, opts ...Option) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	metrics.RegisterPipelineMetrics()

	backends := o.backends
	if !o.backendsSet {
		backends = OCRBackends(cfg.OCR)
	}
	orch := extraction.NewOrchestrator(logger, backends...)

	// nil interface, not a typed nil: ingest reports ErrDependencyMissing on nil
	var pdf ingest.PDFOpener
	if cfg.Documents.PDF() {
		pdf = pdftext.Opener{}
	}
	ingestSvc := ingest.New(orch, pdf, cfg.OCR.TempDir, logger)

	provider := cfg.Chat.Provider
	inner := o.chat
	if inner == nil {
		var err error
		inner, err = NewChatClient(cfg.Chat, logger)
		if err != nil {
			return nil, err
		}
	} else {
		provider = "custom"
	}
	client := chatuc.NewInstrumentedClient(inner, provider, logger)

	chatSvc := chatuc.New(ingestSvc, client, BudgetTable(cfg.Budget), cfg.Chat.DefaultModel,
		chatuc.WithOCRDefaults(cfg.OCR.Languages, cfg.OCR.Fast))
	healthSvc := healthuc.New(client, orch)

	return &App{
		cfg:          cfg,
		logger:       logger,
		Orchestrator: orch,
		Ingest:       ingestSvc,
		Chat:         chatSvc,
		Health:       healthSvc,
	}, nil
}

// NewChatClient builds the provider named by cfg.Provider.
func NewChatClient(cfg config.ChatConfig, logger *zap.Logger) (domain.ChatClient, error) {
	timeout := time.Duration(cfg.TimeoutSec) * time.Second
	switch cfg.Provider {
	case config.ProviderOpenAI, "":
		return openai.NewChat(&openai.Config{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			User:    cfg.User,
			Timeout: timeout,
			Logger:  logger,
		}), nil
	case config.ProviderOllama:
		c, err := ollama.NewChat(&ollama.Config{
			ServerURL:    cfg.BaseURL,
			DefaultModel: cfg.DefaultModel,
			Timeout:      timeout,
			Logger:       logger,
		})
		if err != nil {
			return nil, fmt.Errorf("chat provider %s: %w", cfg.Provider, err)
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unknown chat provider %q", cfg.Provider)
	}
}

// OCRBackends builds the backends in preference order.
func OCRBackends(cfg config.OCRConfig) []domain.OCRBackend {
	out := make([]domain.OCRBackend, 0, len(cfg.Backends))
	for _, name := range cfg.Backends {
		switch name {
		case config.BackendVision:
			out = append(out, vision.New(cfg.VisionHelper))
		case config.BackendTesseract:
			out = append(out, tesseract.New(cfg.TesseractBinary, tesseract.WithPSM(cfg.TesseractPSM)))
		}
	}
	return out
}

// BudgetTable converts configured rules. No rules keeps the built-in table.
func BudgetTable(cfg config.BudgetConfig) budget.Table {
	if len(cfg.Rules) == 0 {
		return budget.NewTable(budget.DefaultRules, cfg.DefaultLimit)
	}
	rules := make([]budget.Rule, 0, len(cfg.Rules))
	for _, r := range cfg.Rules {
		rules = append(rules, budget.Rule{Token: r.Token, Limit: r.Limit})
	}
	return budget.NewTable(rules, cfg.DefaultLimit)
}

// Router returns the HTTP handler with the full middleware chain.
func (a *App) Router() http.Handler {
	server := chiTransport.NewServer(a.Chat, a.Health, a.cfg.Upload.MaxBytes, a.logger)

	r := chi.NewRouter()
	r.Use(chiTransport.JSONRecoverer(a.logger))
	r.Use(chimw.RequestID)
	r.Use(chiTransport.WideEventMiddleware(a.logger))
	r.Use(chiTransport.BearerAuthMiddleware(a.cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Routes(r)
	return r
}

// Serve runs the HTTP server until ctx is done, then shuts down gracefully.
func (a *App) Serve(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", a.cfg.HTTP.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           a.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       time.Duration(a.cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout:      time.Duration(a.cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
		a.logger.Info("Received shutdown signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(a.cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	a.logger.Info("Server stopped gracefully")
	return nil
}

// LogStartup reports the effective setup.
func (a *App) LogStartup(env, version, commit string) {
	backends := make([]string, 0)
	for _, b := range a.Orchestrator.Backends() {
		if b.Available {
			backends = append(backends, b.Name)
		}
	}
	a.logger.Info("Starting ocrchat API server",
		zap.String("version", version),
		zap.String("commit", commit),
		zap.String("env", env),
		zap.Int("http_port", a.cfg.HTTP.Port),
		zap.String("chat_provider", a.cfg.Chat.Provider),
		zap.String("chat_base_url", a.cfg.Chat.BaseURL),
		zap.String("default_model", a.cfg.Chat.DefaultModel),
		zap.Strings("ocr_backends", backends),
		zap.Bool("pdf_enabled", a.cfg.Documents.PDF()),
	)
}

// Run loads config for env, serves the API until ctx is done and flushes the logger.
func Run(ctx context.Context, env string, version, commit string) error {
	cfg, err := config.Load(env)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	a, err := New(cfg, logger)
	if err != nil {
		return err
	}
	a.LogStartup(env, version, commit)
	return a.Serve(ctx)
}
