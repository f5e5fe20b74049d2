package domain

import (
	"errors"
	"testing"
)

func TestKindFromFilename(t *testing.T) {
	tests := []struct {
		name string
		want Kind
	}{
		{"notes.txt", KindText},
		{"README.MD", KindText},
		{"table.csv", KindText},
		{"report.pdf", KindPDF},
		{"Scan.PDF", KindPDF},
		{"photo.png", KindImage},
		{"photo.heic", KindImage},
		{"noext", KindImage},
		{"", KindImage},
	}

	for _, tc := range tests {
		if got := KindFromFilename(tc.name); got != tc.want {
			t.Errorf("KindFromFilename(%q) = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestParseKind(t *testing.T) {
	valid := map[string]Kind{
		"":        KindUnknown,
		"unknown": KindUnknown,
		"image":   KindImage,
		"Text":    KindText,
		" pdf ":   KindPDF,
	}
	for in, want := range valid {
		got, err := ParseKind(in)
		if err != nil {
			t.Errorf("ParseKind(%q) unexpected error: %v", in, err)
			continue
		}
		if got != want {
			t.Errorf("ParseKind(%q) = %q, want %q", in, got, want)
		}
	}

	_, err := ParseKind("spreadsheet")
	if !errors.Is(err, ErrUnsupportedDocument) {
		t.Errorf("expected ErrUnsupportedDocument, got %v", err)
	}
}

func TestDocument_ResolveKind_DeclaredWins(t *testing.T) {
	doc := Document{Kind: KindText, Filename: "scan.pdf"}
	if got := doc.ResolveKind(); got != KindText {
		t.Errorf("declared kind should win, got %q", got)
	}

	doc = Document{Filename: "scan.pdf"}
	if got := doc.ResolveKind(); got != KindPDF {
		t.Errorf("inferred kind = %q, want pdf", got)
	}
}
