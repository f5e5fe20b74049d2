package ocrchat

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

// --- Fakes ---

type fakeChat struct {
	reply    string
	err      error
	model    string
	messages []Message
}

func (f *fakeChat) Complete(_ context.Context, model string, messages []Message) (string, error) {
	f.model = model
	f.messages = messages
	return f.reply, f.err
}

type listingChat struct {
	fakeChat
	models []Model
}

func (l *listingChat) ListModels(context.Context) ([]Model, error) { return l.models, nil }

type fakeBackend struct {
	name      string
	text      string
	err       error
	available bool
	langs     []string
	fast      bool
}

func (f *fakeBackend) Name() string    { return f.name }
func (f *fakeBackend) Available() bool { return f.available }
func (f *fakeBackend) Extract(_ context.Context, _ string, langs []string, fast bool) (string, error) {
	f.langs = langs
	f.fast = fast
	return f.text, f.err
}

func newTestClient(t *testing.T, chat ChatClient, opts ...Option) *Client {
	t.Helper()
	base := []Option{WithChatClient(chat), WithTempDir(t.TempDir()), WithBackends()}
	c, err := New(append(base, opts...)...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

// --- Tests ---

func TestNew_Defaults(t *testing.T) {
	c, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if c.DefaultModel() != "qwen3:4b" {
		t.Errorf("default model = %q", c.DefaultModel())
	}
	if c.LimitFor("") != 10000 {
		t.Errorf("LimitFor(default) = %d, want 10000", c.LimitFor(""))
	}
}

func TestNew_Providers(t *testing.T) {
	if _, err := New(WithOllama("http://127.0.0.1:1")); err != nil {
		t.Errorf("ollama: %v", err)
	}
	if _, err := New(WithOpenAI("http://127.0.0.1:1/v1", "key")); err != nil {
		t.Errorf("openai: %v", err)
	}
}

func TestIngest_Text(t *testing.T) {
	c := newTestClient(t, &fakeChat{}, WithBudgetRules(0, BudgetRule{Token: "tiny", Limit: 5}))

	ext, err := c.Ingest(context.Background(), Document{Filename: "a.txt", Data: []byte("hello world")}, "tiny")
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if ext.Text != "hello" || !ext.Truncated || ext.Warning != WarningTextTruncated {
		t.Errorf("extraction = %+v", ext)
	}
}

func TestIngest_ImageUsesBackendsAndDefaults(t *testing.T) {
	backend := &fakeBackend{name: "fake", text: "scanned", available: true}
	c := newTestClient(t, &fakeChat{}, WithBackends(backend), WithLanguages("ru-RU"), WithFastOCR())

	ext, err := c.Ingest(context.Background(), Document{Filename: "scan.png", Data: []byte("png")}, "")
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if ext.Text != "scanned" {
		t.Errorf("text = %q", ext.Text)
	}
	if len(backend.langs) != 1 || backend.langs[0] != "ru-RU" || !backend.fast {
		t.Errorf("backend got langs=%v fast=%v", backend.langs, backend.fast)
	}
}

func TestIngest_Errors(t *testing.T) {
	c := newTestClient(t, &fakeChat{}, WithoutPDF())

	_, err := c.Ingest(context.Background(), Document{Filename: "a.bin", Kind: "docx"}, "")
	if !errors.Is(err, ErrUnsupportedDocument) {
		t.Errorf("unknown kind: got %v", err)
	}

	_, err = c.Ingest(context.Background(), Document{Filename: "a.pdf", Data: []byte("%PDF")}, "")
	if !errors.Is(err, ErrDependencyMissing) {
		t.Errorf("pdf disabled: got %v", err)
	}

	_, err = c.Ingest(context.Background(), Document{Filename: "a.png", Data: []byte("png")}, "")
	if !errors.Is(err, ErrNoBackendAvailable) {
		t.Errorf("no backend: got %v", err)
	}
}

func TestIngest_BackendFailure(t *testing.T) {
	backend := &fakeBackend{name: "tesseract", err: errors.New("exit status 1"), available: true}
	c := newTestClient(t, &fakeChat{}, WithBackends(backend))

	_, err := c.Ingest(context.Background(), Document{Filename: "a.png", Data: []byte("png")}, "")
	if !errors.Is(err, ErrExtractionFailed) {
		t.Fatalf("expected ErrExtractionFailed, got %v", err)
	}
	if !strings.Contains(err.Error(), "tesseract ocr failed") {
		t.Errorf("message = %q", err.Error())
	}
}

func TestChat(t *testing.T) {
	chat := &fakeChat{reply: "twelve fifty"}
	c := newTestClient(t, chat)

	resp, err := c.Chat(context.Background(), ChatRequest{
		Prompt:  "total?",
		History: []Message{{Role: "system", Content: "S"}},
		Upload:  &Document{Filename: "r.txt", Data: []byte("TOTAL 12.50")},
	})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if resp.Reply != "twelve fifty" || resp.ExtractedText != "TOTAL 12.50" || resp.Model != "qwen3:4b" {
		t.Errorf("response = %+v", resp)
	}

	want := []Message{
		{Role: "system", Content: "S"},
		{Role: "user", Content: "Context (OCR text from image):\nTOTAL 12.50"},
		{Role: "user", Content: "total?"},
	}
	if len(chat.messages) != len(want) {
		t.Fatalf("messages = %+v", chat.messages)
	}
	for i := range want {
		if chat.messages[i] != want[i] {
			t.Errorf("message %d = %+v, want %+v", i, chat.messages[i], want[i])
		}
	}
}

func TestChat_CarriedContext(t *testing.T) {
	chat := &fakeChat{reply: "ok"}
	c := newTestClient(t, chat)

	if _, err := c.Chat(context.Background(), ChatRequest{Prompt: "q", Context: "earlier scan"}); err != nil {
		t.Fatal(err)
	}
	if chat.messages[0].Content != "Context (OCR text from image):\nearlier scan" {
		t.Errorf("context message = %+v", chat.messages[0])
	}
}

func TestChat_InvalidRequests(t *testing.T) {
	c := newTestClient(t, &fakeChat{})

	_, err := c.Chat(context.Background(), ChatRequest{Prompt: "q", History: []Message{{Role: "tool"}}})
	if !errors.Is(err, ErrInvalidRequest) {
		t.Errorf("bad role: got %v", err)
	}

	_, err = c.Chat(context.Background(), ChatRequest{})
	if !errors.Is(err, ErrInvalidRequest) {
		t.Errorf("empty request: got %v", err)
	}
}

func TestChat_ProviderError(t *testing.T) {
	c := newTestClient(t, &fakeChat{err: errors.New("boom")})

	_, err := c.Chat(context.Background(), ChatRequest{Prompt: "q"})
	if !errors.Is(err, ErrChatProviderError) {
		t.Errorf("expected ErrChatProviderError, got %v", err)
	}
}

func TestModels(t *testing.T) {
	c := newTestClient(t, &fakeChat{})
	if _, err := c.Models(context.Background()); !errors.Is(err, ErrNotImplemented) {
		t.Errorf("expected ErrNotImplemented, got %v", err)
	}

	lister := &listingChat{models: []Model{{Name: "qwen3:4b", ParameterSize: "4B"}}}
	c = newTestClient(t, lister)
	models, err := c.Models(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(models) != 1 || models[0].Name != "qwen3:4b" || models[0].ParameterSize != "4B" {
		t.Errorf("models = %+v", models)
	}
}

func TestHealth(t *testing.T) {
	c := newTestClient(t, &fakeChat{}, WithBackends(
		&fakeBackend{name: "vision"},
		&fakeBackend{name: "tesseract", available: true},
	))

	h := c.Health(context.Background())
	if h.Status != "ok" {
		t.Errorf("status = %q", h.Status)
	}
	if h.Checks["ocr_vision"] != "unavailable" || h.Checks["ocr_tesseract"] != "ok" || h.Checks["chat"] != "ok" {
		t.Errorf("checks = %v", h.Checks)
	}
}

func TestObserver_MetricsAndLogs(t *testing.T) {
	reg := prometheus.NewRegistry()
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	c := newTestClient(t, &fakeChat{reply: "ok"}, WithPrometheus(reg), WithLogger(logger))
	_, _ = c.Chat(context.Background(), ChatRequest{Prompt: "q"})
	_, _ = c.Chat(context.Background(), ChatRequest{})

	// a second client on the same registry reuses the collectors
	c2 := newTestClient(t, &fakeChat{reply: "ok"}, WithPrometheus(reg))
	_, _ = c2.Chat(context.Background(), ChatRequest{Prompt: "q"})

	obs := c.obs.metrics.operations
	if v := testutil.ToFloat64(obs.WithLabelValues("chat", "ok")); v != 2 {
		t.Errorf("chat ok = %v, want 2", v)
	}
	if v := testutil.ToFloat64(obs.WithLabelValues("chat", "error")); v != 1 {
		t.Errorf("chat error = %v, want 1", v)
	}
	if !strings.Contains(buf.String(), "operation failed") || !strings.Contains(buf.String(), "op=chat") {
		t.Errorf("log output = %q", buf.String())
	}
}

func TestObserver_Nil(t *testing.T) {
	var o *observer
	o.observe("noop", time.Now(), nil)
}
