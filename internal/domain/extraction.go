package domain

import (
	"context"
	"strings"
)

// Warning is a machine-readable note attached to an extraction result.
type Warning string

// Extraction warnings.
const (
	WarningNone          Warning = ""
	WarningTextTruncated Warning = "text_truncated"
	WarningPDFTruncated  Warning = "pdf_truncated"
)

// ExtractionResult is the text pulled out of a single document.
// Text is empty (never absent) when nothing was extracted.
type ExtractionResult struct {
	Text      string
	Truncated bool
	Warning   Warning
}

// OCRBackend extracts text from an image file.
type OCRBackend interface {
	// Name identifies the backend in logs, metrics and errors.
	Name() string
	// Available reports whether the backend can run on this host.
	Available() bool
	// Extract recognizes text in the image at path. fast trades accuracy for latency.
	Extract(ctx context.Context, path string, languages []string, fast bool) (string, error)
}

// DefaultLanguage is used when no language hint survives normalization.
const DefaultLanguage = "en-US"

// NormalizeLanguages trims, drops blanks and deduplicates language tags,
// preserving first-seen order. An empty result falls back to DefaultLanguage.
func NormalizeLanguages(langs []string) []string {
	out := make([]string, 0, len(langs))
	seen := make(map[string]struct{}, len(langs))
	for _, l := range langs {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	if len(out) == 0 {
		return []string{DefaultLanguage}
	}
	return out
}

// SplitLanguages parses a comma-separated language list ("ru-RU, en-US").
func SplitLanguages(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// PageSource gives page-by-page access to the text of a paged document.
// Pages are numbered from 1.
type PageSource interface {
	NumPages() int
	PageText(page int) (string, error)
}
