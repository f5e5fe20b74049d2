package domain

import (
	"errors"
	"reflect"
	"testing"
)

func TestNormalizeLanguages(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"dedupe and drop blanks", []string{"en-US", "en-US", "", "ru-RU"}, []string{"en-US", "ru-RU"}},
		{"empty", nil, []string{DefaultLanguage}},
		{"only blanks", []string{"", "  "}, []string{DefaultLanguage}},
		{"trims", []string{" ru-RU ", "ru-RU"}, []string{"ru-RU"}},
		{"keeps order", []string{"ru-RU", "de-DE", "en-US"}, []string{"ru-RU", "de-DE", "en-US"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := NormalizeLanguages(tc.in)
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("NormalizeLanguages(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestNormalizeLanguages_DoesNotMutateInput(t *testing.T) {
	in := []string{"en-US", "en-US"}
	_ = NormalizeLanguages(in)
	if in[1] != "en-US" {
		t.Errorf("input mutated: %q", in)
	}
}

func TestSplitLanguages(t *testing.T) {
	got := SplitLanguages("ru-RU, en-US,,")
	want := []string{"ru-RU", "en-US"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SplitLanguages = %q, want %q", got, want)
	}
	if got := SplitLanguages(""); len(got) != 0 {
		t.Errorf("SplitLanguages(\"\") = %q, want empty", got)
	}
}

func TestBackendError_MatchesSentinelAndCause(t *testing.T) {
	cause := errors.New("exit status 1")
	err := NewBackendError("tesseract", cause)

	if !errors.Is(err, ErrExtractionFailed) {
		t.Error("expected errors.Is(err, ErrExtractionFailed)")
	}
	if !errors.Is(err, cause) {
		t.Error("expected errors.Is(err, cause)")
	}
	if err.Error() != "tesseract ocr failed: exit status 1" {
		t.Errorf("unexpected message: %q", err.Error())
	}

	var be *BackendError
	if !errors.As(err, &be) || be.Backend != "tesseract" {
		t.Errorf("errors.As failed: %+v", be)
	}
}
