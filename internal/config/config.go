package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the ocrchat configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Chat      ChatConfig      `yaml:"chat"`
	OCR       OCRConfig       `yaml:"ocr"`
	Documents DocumentsConfig `yaml:"documents"`
	Upload    UploadConfig    `yaml:"upload"`
	Budget    BudgetConfig    `yaml:"budget"`
	Auth      AuthConfig      `yaml:"auth"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// Chat providers.
const (
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
)

// ChatConfig holds chat-completion provider settings.
type ChatConfig struct {
	Provider     string `yaml:"provider"` // openai (OpenAI-compatible, default), ollama (native API)
	BaseURL      string `yaml:"base_url"`
	APIKey       string `yaml:"api_key"`
	DefaultModel string `yaml:"default_model"`
	User         string `yaml:"user"`
	TimeoutSec   int    `yaml:"timeout_sec"`
}

// OCR backend names accepted in ocr.backends.
const (
	BackendVision    = "vision"
	BackendTesseract = "tesseract"
)

// OCRConfig holds OCR backend settings.
type OCRConfig struct {
	Backends        []string `yaml:"backends"` // preference order
	Languages       []string `yaml:"languages"`
	Fast            bool     `yaml:"fast"`
	VisionHelper    string   `yaml:"vision_helper"`
	TesseractBinary string   `yaml:"tesseract_binary"`
	TesseractPSM    int      `yaml:"tesseract_psm"` // 0 = tesseract default
	TempDir         string   `yaml:"temp_dir"`
}

// DocumentsConfig toggles optional document capabilities.
type DocumentsConfig struct {
	PDFEnabled *bool `yaml:"pdf_enabled"` // default true
}

// PDF reports whether PDF uploads are accepted.
func (d DocumentsConfig) PDF() bool {
	return d.PDFEnabled == nil || *d.PDFEnabled
}

// UploadConfig holds upload limits.
type UploadConfig struct {
	MaxBytes int64 `yaml:"max_bytes"`
}

// BudgetConfig overrides the model context budget table.
// Rules are evaluated in order; an empty list keeps the built-in table.
type BudgetConfig struct {
	DefaultLimit int          `yaml:"default_limit"`
	Rules        []BudgetRule `yaml:"rules"`
}

// BudgetRule maps a model-name substring to a character limit.
type BudgetRule struct {
	Token string `yaml:"token"`
	Limit int    `yaml:"limit"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}
	return Parse(data)
}

// Parse decodes YAML with ${VAR:-default} substitution, applies defaults and validates.
func Parse(data []byte) (Config, error) {
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// Default returns a configuration usable without any file: a local Ollama behind its
// OpenAI-compatible endpoint and both OCR backends.
func Default() Config {
	cfg := Config{HTTP: HTTPConfig{Port: 8000}}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 30
	}
	// local models can take minutes on long contexts
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 300
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Chat.Provider == "" {
		c.Chat.Provider = ProviderOpenAI
	}
	if c.Chat.BaseURL == "" {
		switch c.Chat.Provider {
		case ProviderOllama:
			c.Chat.BaseURL = "http://localhost:11434"
		default:
			c.Chat.BaseURL = "http://localhost:11434/v1"
		}
	}
	if c.Chat.DefaultModel == "" {
		c.Chat.DefaultModel = "qwen3:4b"
	}
	if c.Chat.TimeoutSec <= 0 {
		c.Chat.TimeoutSec = 300
	}
	if len(c.OCR.Backends) == 0 {
		c.OCR.Backends = []string{BackendVision, BackendTesseract}
	}
	if len(c.OCR.Languages) == 0 {
		c.OCR.Languages = []string{"en-US"}
	}
	if c.OCR.VisionHelper == "" {
		c.OCR.VisionHelper = "vision-ocr"
	}
	if c.OCR.TesseractBinary == "" {
		c.OCR.TesseractBinary = "tesseract"
	}
	if c.Upload.MaxBytes <= 0 {
		c.Upload.MaxBytes = 32 << 20
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.Chat.Provider {
	case ProviderOpenAI, ProviderOllama:
	default:
		return fmt.Errorf("chat.provider must be %q or %q, got %q", ProviderOpenAI, ProviderOllama, c.Chat.Provider)
	}
	seen := make(map[string]bool, len(c.OCR.Backends))
	for _, b := range c.OCR.Backends {
		switch b {
		case BackendVision, BackendTesseract:
		default:
			return fmt.Errorf("ocr.backends: unknown backend %q", b)
		}
		if seen[b] {
			return fmt.Errorf("ocr.backends: duplicate backend %q", b)
		}
		seen[b] = true
	}
	if c.OCR.TesseractPSM < 0 || c.OCR.TesseractPSM > 13 {
		return fmt.Errorf("ocr.tesseract_psm must be between 0 and 13, got %d", c.OCR.TesseractPSM)
	}
	if c.Budget.DefaultLimit < 0 {
		return fmt.Errorf("budget.default_limit must not be negative, got %d", c.Budget.DefaultLimit)
	}
	for i, r := range c.Budget.Rules {
		if strings.TrimSpace(r.Token) == "" {
			return fmt.Errorf("budget.rules[%d].token is required", i)
		}
		if r.Limit <= 0 {
			return fmt.Errorf("budget.rules[%d].limit must be positive, got %d", i, r.Limit)
		}
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
