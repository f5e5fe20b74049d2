package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/ocrchat/internal/config"
	"github.com/kailas-cloud/ocrchat/internal/domain"
	"github.com/kailas-cloud/ocrchat/internal/version"
	ocrchat "github.com/kailas-cloud/ocrchat/pkg/sdk"
)

// clientFlags are shared by the commands that talk to a model or run OCR locally.
type clientFlags struct {
	provider string
	baseURL  string
	apiKey   string
	model    string
	lang     string
	fast     bool
	verbose  bool
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "ocrchat",
		Short:        "Chat with a language model about images, PDFs and text files",
		Version:      version.String(),
		SilenceUsage: true,
	}

	flags := &clientFlags{}
	pf := root.PersistentFlags()
	pf.StringVar(&flags.provider, "provider", envOr("CHAT_PROVIDER", config.ProviderOpenAI), "chat provider: openai (OpenAI-compatible) or ollama")
	pf.StringVar(&flags.baseURL, "base-url", os.Getenv("CHAT_BASE_URL"), "chat provider URL (default: local Ollama)")
	pf.StringVar(&flags.apiKey, "api-key", envOr("CHAT_API_KEY", "ollama"), "API key for the OpenAI-compatible provider")
	pf.StringVar(&flags.model, "model", envOr("DEFAULT_MODEL", "qwen3:4b"), "model name")
	pf.StringVar(&flags.lang, "lang", "", "comma-separated OCR language tags, e.g. ru-RU,en-US")
	pf.BoolVar(&flags.fast, "fast", false, "use fast OCR recognition level")
	pf.BoolVarP(&flags.verbose, "verbose", "v", false, "log SDK operations to stderr")

	root.AddCommand(
		newServeCmd(),
		newChatCmd(flags),
		newOCRCmd(flags),
		newModelsCmd(flags),
	)
	return root
}

// newClient builds the SDK client from the shared flags.
func (f *clientFlags) newClient() (*ocrchat.Client, error) {
	opts := []ocrchat.Option{ocrchat.WithDefaultModel(f.model)}

	switch f.provider {
	case config.ProviderOllama:
		opts = append(opts, ocrchat.WithOllama(f.baseURL))
	case config.ProviderOpenAI:
		baseURL := f.baseURL
		if baseURL == "" {
			baseURL = config.Default().Chat.BaseURL
		}
		opts = append(opts, ocrchat.WithOpenAI(baseURL, f.apiKey))
	default:
		return nil, fmt.Errorf("unknown provider %q", f.provider)
	}

	if langs := domain.SplitLanguages(f.lang); len(langs) > 0 {
		opts = append(opts, ocrchat.WithLanguages(langs...))
	}
	if f.fast {
		opts = append(opts, ocrchat.WithFastOCR())
	}
	if f.verbose {
		opts = append(opts, ocrchat.WithLogger(slog.New(slog.NewTextHandler(os.Stderr,
			&slog.HandlerOptions{Level: slog.LevelDebug}))))
	}
	return ocrchat.New(opts...)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
