package ocrchat

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

const (
	providerOpenAI = "openai"
	providerOllama = "ollama"
)

// BudgetRule maps a model-name substring to a context size in characters.
type BudgetRule struct {
	Token string
	Limit int
}

type clientConfig struct {
	provider string
	baseURL  string
	apiKey   string
	timeout  time.Duration

	chat     ChatClient
	backends []OCRBackend

	defaultModel string
	languages    []string
	fast         bool
	tempDir      string
	disablePDF   bool

	budgetRules    []BudgetRule
	budgetFallback int

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithOpenAI talks to an OpenAI-compatible endpoint (OpenAI, vLLM, Ollama's /v1).
// This is the default, pointed at a local Ollama.
func WithOpenAI(baseURL, apiKey string) Option {
	return optionFunc(func(c *clientConfig) {
		c.provider = providerOpenAI
		c.baseURL = baseURL
		c.apiKey = apiKey
	})
}

// WithOllama talks to Ollama's native API.
func WithOllama(serverURL string) Option {
	return optionFunc(func(c *clientConfig) {
		c.provider = providerOllama
		c.baseURL = serverURL
	})
}

// WithChatClient replaces the built-in providers.
func WithChatClient(cc ChatClient) Option {
	return optionFunc(func(c *clientConfig) {
		c.chat = cc
	})
}

// WithTimeout bounds each chat provider call. Default: 5 minutes.
func WithTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.timeout = d
	})
}

// WithBackends sets the OCR backends in preference order.
// Default: Apple Vision (macOS only), then Tesseract.
func WithBackends(b ...OCRBackend) Option {
	return optionFunc(func(c *clientConfig) {
		c.backends = append([]OCRBackend{}, b...)
	})
}

// WithDefaultModel sets the model used when a request names none. Default: qwen3:4b.
func WithDefaultModel(model string) Option {
	return optionFunc(func(c *clientConfig) {
		c.defaultModel = model
	})
}

// WithLanguages sets the default OCR language hints (BCP-47, e.g. "en-US").
func WithLanguages(langs ...string) Option {
	return optionFunc(func(c *clientConfig) {
		c.languages = langs
	})
}

// WithFastOCR prefers OCR speed over accuracy for every request.
func WithFastOCR() Option {
	return optionFunc(func(c *clientConfig) {
		c.fast = true
	})
}

// WithTempDir sets where uploaded images are staged for OCR. Default: os.TempDir().
func WithTempDir(dir string) Option {
	return optionFunc(func(c *clientConfig) {
		c.tempDir = dir
	})
}

// WithoutPDF rejects PDF documents with ErrDependencyMissing.
func WithoutPDF() Option {
	return optionFunc(func(c *clientConfig) {
		c.disablePDF = true
	})
}

// WithBudgetRules replaces the model context budget table. Rules are checked in order
// and the first whose token occurs in the lower-cased model name wins.
// fallback <= 0 keeps the built-in default of 16000 characters.
func WithBudgetRules(fallback int, rules ...BudgetRule) Option {
	return optionFunc(func(c *clientConfig) {
		c.budgetFallback = fallback
		c.budgetRules = rules
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
