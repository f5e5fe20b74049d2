package domain

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Kind is the declared or inferred type of an uploaded document.
type Kind string

// Document kinds.
const (
	KindUnknown Kind = ""
	KindImage   Kind = "image"
	KindText    Kind = "text"
	KindPDF     Kind = "pdf"
)

var textExtensions = map[string]struct{}{
	".txt": {},
	".md":  {},
	".csv": {},
}

// ParseKind converts a declared kind string. Empty and "unknown" map to KindUnknown.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindImage, KindText, KindPDF, KindUnknown:
		return k, nil
	case "unknown":
		return KindUnknown, nil
	default:
		return KindUnknown, fmt.Errorf("kind %q: %w", s, ErrUnsupportedDocument)
	}
}

// KindFromFilename infers the kind from the file extension.
// Anything that is neither text nor PDF is treated as an image.
func KindFromFilename(name string) Kind {
	ext := strings.ToLower(filepath.Ext(name))
	if _, ok := textExtensions[ext]; ok {
		return KindText
	}
	if ext == ".pdf" {
		return KindPDF
	}
	return KindImage
}

// Document is a raw upload. It lives only for the duration of one ingestion call.
type Document struct {
	Data     []byte
	Kind     Kind
	Filename string
}

// ResolveKind returns the declared kind when set, otherwise the kind inferred from Filename.
func (d *Document) ResolveKind() Kind {
	if d.Kind != KindUnknown {
		return d.Kind
	}
	return KindFromFilename(d.Filename)
}
