package extraction

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/kailas-cloud/ocrchat/internal/domain"
)

// --- Mocks ---

type mockBackend struct {
	name      string
	available bool
	text      string
	err       error

	calls     int
	languages []string
	fast      bool
}

func (m *mockBackend) Name() string    { return m.name }
func (m *mockBackend) Available() bool { return m.available }

func (m *mockBackend) Extract(_ context.Context, _ string, languages []string, fast bool) (string, error) {
	m.calls++
	m.languages = languages
	m.fast = fast
	return m.text, m.err
}

// --- Tests ---

func TestOCR_PrimarySucceeds(t *testing.T) {
	primary := &mockBackend{name: "vision", available: true, text: "from vision"}
	secondary := &mockBackend{name: "tesseract", available: true, text: "from tesseract"}

	text, err := NewOrchestrator(nil, primary, secondary).OCR(context.Background(), "a.png", nil, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "from vision" {
		t.Errorf("text = %q", text)
	}
	if secondary.calls != 0 {
		t.Error("secondary must not run when primary succeeds")
	}
	if !primary.fast {
		t.Error("fast flag not forwarded")
	}
}

func TestOCR_FallsBackOnFailure(t *testing.T) {
	primary := &mockBackend{name: "vision", available: true, err: domain.NewBackendError("vision", errors.New("boom"))}
	secondary := &mockBackend{name: "tesseract", available: true, text: "fallback text"}

	text, err := NewOrchestrator(nil, primary, secondary).OCR(context.Background(), "a.png", nil, false)
	if err != nil {
		t.Fatalf("expected fallback to succeed, got %v", err)
	}
	if text != "fallback text" {
		t.Errorf("text = %q", text)
	}
	if primary.calls != 1 || secondary.calls != 1 {
		t.Errorf("calls = %d/%d", primary.calls, secondary.calls)
	}
}

func TestOCR_SkipsUnavailablePrimary(t *testing.T) {
	primary := &mockBackend{name: "vision", available: false}
	secondary := &mockBackend{name: "tesseract", available: true, text: "ok"}

	text, err := NewOrchestrator(nil, primary, secondary).OCR(context.Background(), "a.png", nil, false)
	if err != nil || text != "ok" {
		t.Fatalf("OCR = %q, %v", text, err)
	}
	if primary.calls != 0 {
		t.Error("unavailable backend must not be called")
	}
}

func TestOCR_NoBackendAvailable(t *testing.T) {
	o := NewOrchestrator(nil,
		&mockBackend{name: "vision"},
		&mockBackend{name: "tesseract"},
	)
	_, err := o.OCR(context.Background(), "a.png", nil, false)
	if !errors.Is(err, domain.ErrNoBackendAvailable) {
		t.Errorf("expected ErrNoBackendAvailable, got %v", err)
	}

	if _, err := NewOrchestrator(nil).OCR(context.Background(), "a.png", nil, false); !errors.Is(err, domain.ErrNoBackendAvailable) {
		t.Errorf("empty registry: expected ErrNoBackendAvailable, got %v", err)
	}
}

func TestOCR_AllFailReturnsLastCause(t *testing.T) {
	cause := errors.New("tesseract exploded")
	o := NewOrchestrator(nil,
		&mockBackend{name: "vision", available: true, err: errors.New("vision exploded")},
		&mockBackend{name: "tesseract", available: true, err: cause},
	)

	_, err := o.OCR(context.Background(), "a.png", nil, false)
	if !errors.Is(err, domain.ErrExtractionFailed) {
		t.Fatalf("expected ErrExtractionFailed, got %v", err)
	}
	if !errors.Is(err, cause) {
		t.Errorf("expected last cause in chain, got %v", err)
	}
	if err.Error() != "tesseract ocr failed: tesseract exploded" {
		t.Errorf("message = %q", err.Error())
	}
	if errors.Is(err, domain.ErrNoBackendAvailable) {
		t.Error("failure after an attempt must not report NoBackendAvailable")
	}
}

func TestOCR_UnavailableAtCallTimeFallsThrough(t *testing.T) {
	o := NewOrchestrator(nil,
		&mockBackend{name: "vision", available: true, err: domain.ErrBackendUnavailable},
	)
	_, err := o.OCR(context.Background(), "a.png", nil, false)
	if !errors.Is(err, domain.ErrNoBackendAvailable) {
		t.Errorf("expected ErrNoBackendAvailable, got %v", err)
	}
}

func TestOCR_StopsOnCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	secondary := &mockBackend{name: "tesseract", available: true, text: "late"}
	o := NewOrchestrator(nil,
		&mockBackend{name: "vision", available: true, err: context.Canceled},
		secondary,
	)

	_, err := o.OCR(ctx, "a.png", nil, false)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if secondary.calls != 0 {
		t.Error("no fallback after cancellation")
	}
}

func TestOCR_NormalizesLanguages(t *testing.T) {
	b := &mockBackend{name: "tesseract", available: true}
	_, _ = NewOrchestrator(nil, b).OCR(context.Background(), "a.png", []string{"en-US", "en-US", "", "ru-RU"}, false)

	if !reflect.DeepEqual(b.languages, []string{"en-US", "ru-RU"}) {
		t.Errorf("languages = %v", b.languages)
	}

	_, _ = NewOrchestrator(nil, b).OCR(context.Background(), "a.png", nil, false)
	if !reflect.DeepEqual(b.languages, []string{domain.DefaultLanguage}) {
		t.Errorf("default languages = %v", b.languages)
	}
}

func TestBackends(t *testing.T) {
	o := NewOrchestrator(nil,
		&mockBackend{name: "vision"},
		&mockBackend{name: "tesseract", available: true},
	)
	got := o.Backends()
	if len(got) != 2 || got[0].Name != "vision" || got[0].Available || !got[1].Available {
		t.Errorf("Backends = %+v", got)
	}
	if !strings.Contains(got[1].Name, "tess") {
		t.Errorf("unexpected name %q", got[1].Name)
	}
}
