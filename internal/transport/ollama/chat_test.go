package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kailas-cloud/ocrchat/internal/domain"
	"github.com/kailas-cloud/ocrchat/internal/domain/conversation"
)

func newTestChat(t *testing.T, url string) *Chat {
	t.Helper()
	c, err := NewChat(&Config{ServerURL: url + "/", DefaultModel: "qwen3:4b"})
	if err != nil {
		t.Fatalf("NewChat: %v", err)
	}
	return c
}

func TestChat_Complete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Model != "llama3.2:3b" {
			t.Errorf("model = %q", req.Model)
		}
		if len(req.Messages) != 3 || req.Messages[0].Role != "system" || req.Messages[2].Role != "user" {
			t.Errorf("messages = %+v", req.Messages)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"model":"llama3.2:3b","created_at":"2026-01-01T00:00:00Z",` +
			`"message":{"role":"assistant","content":"Bonjour"},"done":true}`))
	}))
	defer server.Close()

	reply, err := newTestChat(t, server.URL).Complete(context.Background(), "llama3.2:3b", []conversation.Turn{
		{Role: conversation.RoleSystem, Content: "S"},
		{Role: conversation.RoleAssistant, Content: "earlier"},
		{Role: conversation.RoleUser, Content: "hello in french"},
	})
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if reply != "Bonjour" {
		t.Errorf("reply = %q", reply)
	}
}

func TestChat_CompleteServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"out of memory"}`))
	}))
	defer server.Close()

	_, err := newTestChat(t, server.URL).Complete(context.Background(), "m", []conversation.Turn{
		{Role: conversation.RoleUser, Content: "hi"},
	})
	if !errors.Is(err, domain.ErrChatProviderError) {
		t.Errorf("expected ErrChatProviderError, got %v", err)
	}
}

func TestChat_CompleteRejectsUnknownRole(t *testing.T) {
	c := newTestChat(t, "http://127.0.0.1:1")
	_, err := c.Complete(context.Background(), "m", []conversation.Turn{{Role: "tool", Content: "x"}})
	if !errors.Is(err, domain.ErrInvalidRequest) {
		t.Errorf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestChat_ListModels(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"models":[
			{"name":"qwen3:4b","model":"qwen3:4b","details":{"parameter_size":"4.0B"}},
			{"model":"gemma3:1b"},
			{"name":""}
		]}`))
	}))
	defer server.Close()

	c := newTestChat(t, server.URL)
	models, err := c.ListModels(context.Background())
	if err != nil {
		t.Fatalf("ListModels failed: %v", err)
	}
	if len(models) != 2 {
		t.Fatalf("expected 2 models, got %+v", models)
	}
	if models[0].ParameterSize != "4.0B" || models[1].Name != "gemma3:1b" || models[1].Model != "gemma3:1b" {
		t.Errorf("models = %+v", models)
	}
	if err := c.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck failed: %v", err)
	}
}

func TestChat_ListModelsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	_, err := newTestChat(t, server.URL).ListModels(context.Background())
	if !errors.Is(err, domain.ErrChatProviderError) {
		t.Errorf("expected ErrChatProviderError, got %v", err)
	}
}
