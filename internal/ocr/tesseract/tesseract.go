// Package tesseract recognizes text with the tesseract CLI.
package tesseract

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"strconv"
	"strings"

	// decoders for image.Decode
	_ "image/gif"
	_ "image/jpeg"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/kailas-cloud/ocrchat/internal/domain"
	"github.com/kailas-cloud/ocrchat/internal/ocr"
)

// Name is the backend identifier used in logs and metrics.
const Name = "tesseract"

// DefaultBinary is the tesseract executable looked up on PATH.
const DefaultBinary = "tesseract"

// Backend runs tesseract on decoded image pixels.
type Backend struct {
	binary     string
	psm        int
	runner     ocr.Runner
	resolvable func(string) bool
}

// Option configures a Backend.
type Option func(*Backend)

// WithRunner replaces the command runner.
func WithRunner(r ocr.Runner) Option {
	return func(b *Backend) { b.runner = r }
}

// WithResolver overrides binary lookup. Used in tests.
func WithResolver(fn func(string) bool) Option {
	return func(b *Backend) { b.resolvable = fn }
}

// WithPSM sets the page segmentation mode. Zero keeps the tesseract default.
func WithPSM(psm int) Option {
	return func(b *Backend) { b.psm = psm }
}

// New creates a tesseract backend. An empty binary means DefaultBinary.
func New(binary string, opts ...Option) *Backend {
	if binary == "" {
		binary = DefaultBinary
	}
	b := &Backend{
		binary:     binary,
		runner:     ocr.ExecRunner{},
		resolvable: ocr.Resolvable,
	}
	for _, o := range opts {
		o(b)
	}
	return b
}

// Name implements domain.OCRBackend.
func (b *Backend) Name() string { return Name }

// Available reports whether the tesseract binary resolves.
func (b *Backend) Available() bool { return b.resolvable(b.binary) }

// Extract implements domain.OCRBackend. fast has no tesseract equivalent and is ignored.
func (b *Backend) Extract(ctx context.Context, path string, languages []string, _ bool) (string, error) {
	if !b.Available() {
		return "", fmt.Errorf("%s: %w", Name, domain.ErrBackendUnavailable)
	}

	pixels, err := decodeAsPNG(path)
	if err != nil {
		return "", domain.NewBackendError(Name, err)
	}

	args := []string{"stdin", "stdout", "-l", LanguageTokens(languages)}
	if b.psm > 0 {
		args = append(args, "--psm", strconv.Itoa(b.psm))
	}

	out, stderr, err := b.runner.Run(ctx, bytes.NewReader(pixels), b.binary, args...)
	if err != nil {
		if msg := strings.TrimSpace(string(stderr)); msg != "" {
			err = fmt.Errorf("%w: %s", err, ocr.Truncate(msg, 512))
		}
		return "", domain.NewBackendError(Name, err)
	}
	return strings.TrimSpace(string(out)), nil
}

// decodeAsPNG loads any registered image format and re-encodes it losslessly as PNG,
// which every tesseract build can read from stdin.
func decodeAsPNG(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	defer func() { _ = f.Close() }()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode %s as png: %w", format, err)
	}
	return buf.Bytes(), nil
}

// traineddata maps ISO 639-1 base tags to tesseract model names.
// Tokens not listed are passed through unchanged.
var traineddata = map[string]string{
	"en": "eng",
	"ru": "rus",
	"uk": "ukr",
	"de": "deu",
	"fr": "fra",
	"es": "spa",
	"it": "ita",
	"pt": "por",
	"pl": "pol",
	"nl": "nld",
	"tr": "tur",
	"ja": "jpn",
	"ko": "kor",
	"zh": "chi_sim",
}

// LanguageTokens reduces language tags to their base token ("ru-RU" -> "ru" -> "rus"),
// deduplicates them in order and joins them with "+".
func LanguageTokens(languages []string) string {
	seen := make(map[string]struct{}, len(languages))
	var tokens []string
	for _, lang := range domain.NormalizeLanguages(languages) {
		parts := strings.FieldsFunc(lang, func(r rune) bool {
			return r == '-' || r == '_'
		})
		if len(parts) == 0 {
			continue
		}
		base := strings.ToLower(parts[0])
		if mapped, ok := traineddata[base]; ok {
			base = mapped
		}
		if _, dup := seen[base]; dup {
			continue
		}
		seen[base] = struct{}{}
		tokens = append(tokens, base)
	}
	if len(tokens) == 0 {
		return traineddata["en"]
	}
	return strings.Join(tokens, "+")
}
