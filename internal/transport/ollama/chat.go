// Package ollama talks to the native Ollama API.
package ollama

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"go.uber.org/zap"

	"github.com/kailas-cloud/ocrchat/internal/domain"
	"github.com/kailas-cloud/ocrchat/internal/domain/conversation"
)

// DefaultServerURL is where a local Ollama listens.
const DefaultServerURL = "http://localhost:11434"

// Config holds the Ollama settings.
type Config struct {
	ServerURL    string
	DefaultModel string
	Timeout      time.Duration
	Logger       *zap.Logger
}

// Chat is a chat-completion provider backed by langchaingo's Ollama client.
// The model is chosen per call; DefaultModel only seeds the client.
type Chat struct {
	llm     *ollama.LLM
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

// NewChat creates an Ollama chat provider.
func NewChat(cfg *Config) (*Chat, error) {
	baseURL := strings.TrimRight(cfg.ServerURL, "/")
	if baseURL == "" {
		baseURL = DefaultServerURL
	}
	httpClient := &http.Client{Timeout: cfg.Timeout}

	llm, err := ollama.New(
		ollama.WithServerURL(baseURL),
		ollama.WithModel(cfg.DefaultModel),
		ollama.WithHTTPClient(httpClient),
	)
	if err != nil {
		return nil, fmt.Errorf("create ollama client: %w", err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Chat{llm: llm, baseURL: baseURL, http: httpClient, logger: logger}, nil
}

var roles = map[conversation.Role]llms.ChatMessageType{
	conversation.RoleSystem:    llms.ChatMessageTypeSystem,
	conversation.RoleUser:      llms.ChatMessageTypeHuman,
	conversation.RoleAssistant: llms.ChatMessageTypeAI,
}

// Complete implements domain.ChatClient.
func (c *Chat) Complete(ctx context.Context, model string, turns []conversation.Turn) (string, error) {
	msgs := make([]llms.MessageContent, 0, len(turns))
	for _, t := range turns {
		role, ok := roles[t.Role]
		if !ok {
			return "", fmt.Errorf("role %q: %w", t.Role, domain.ErrInvalidRequest)
		}
		msgs = append(msgs, llms.TextParts(role, t.Content))
	}

	resp, err := c.llm.GenerateContent(ctx, msgs, llms.WithModel(model))
	if err != nil {
		return "", fmt.Errorf("ollama chat: %w: %w", err, domain.ErrChatProviderError)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty ollama response: %w", domain.ErrChatProviderError)
	}
	return resp.Choices[0].Content, nil
}

// tagsResponse is the body of GET /api/tags.
type tagsResponse struct {
	Models []struct {
		Name    string `json:"name"`
		Model   string `json:"model"`
		Details struct {
			ParameterSize string `json:"parameter_size"`
			ContextLength int    `json:"context_length"`
		} `json:"details"`
	} `json:"models"`
}

// ListModels implements domain.ModelLister using the local model registry.
func (c *Chat) ListModels(ctx context.Context) ([]domain.Model, error) {
	var tags tagsResponse
	if err := c.getJSON(ctx, "/api/tags", &tags); err != nil {
		return nil, err
	}

	models := make([]domain.Model, 0, len(tags.Models))
	for _, m := range tags.Models {
		name := m.Name
		if name == "" {
			name = m.Model
		}
		if name == "" {
			continue
		}
		id := m.Model
		if id == "" {
			id = name
		}
		models = append(models, domain.Model{
			Name:          name,
			Model:         id,
			ParameterSize: m.Details.ParameterSize,
			ContextLength: m.Details.ContextLength,
		})
	}
	return models, nil
}

// HealthCheck verifies that the Ollama server answers.
func (c *Chat) HealthCheck(ctx context.Context) error {
	var tags tagsResponse
	if err := c.getJSON(ctx, "/api/tags", &tags); err != nil {
		return fmt.Errorf("ollama tags: %w", err)
	}
	return nil
}

func (c *Chat) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, http.NoBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w: %w", path, err, domain.ErrChatProviderError)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: status %d: %w", path, resp.StatusCode, domain.ErrChatProviderError)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w: %w", path, err, domain.ErrChatProviderError)
	}
	return nil
}
