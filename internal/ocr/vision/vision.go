// Package vision recognizes text with the macOS Vision framework through a helper executable.
//
// The helper receives the image path, a prioritized language list and the recognition
// level, and prints the top candidate of every detected text region on its own line.
package vision

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"sync"

	"github.com/kailas-cloud/ocrchat/internal/domain"
	"github.com/kailas-cloud/ocrchat/internal/ocr"
)

// Name is the backend identifier used in logs and metrics.
const Name = "vision"

// DefaultHelper is the helper executable looked up on PATH.
const DefaultHelper = "vision-ocr"

// Backend runs Vision text recognition.
type Backend struct {
	helper     string
	runner     ocr.Runner
	goos       string
	resolvable func(string) bool
}

// Option configures a Backend.
type Option func(*Backend)

// WithRunner replaces the command runner.
func WithRunner(r ocr.Runner) Option {
	return func(b *Backend) { b.runner = r }
}

// WithPlatform overrides host detection. Used in tests.
func WithPlatform(goos string, resolvable func(string) bool) Option {
	return func(b *Backend) {
		b.goos = goos
		b.resolvable = resolvable
	}
}

// New creates a Vision backend. An empty helper means DefaultHelper.
func New(helper string, opts ...Option) *Backend {
	if helper == "" {
		helper = DefaultHelper
	}
	b := &Backend{
		helper:     helper,
		runner:     ocr.ExecRunner{},
		goos:       runtime.GOOS,
		resolvable: ocr.Resolvable,
	}
	for _, o := range opts {
		o(b)
	}
	return b
}

// Name implements domain.OCRBackend.
func (b *Backend) Name() string { return Name }

// Available reports whether Vision can run here: macOS with the helper installed.
func (b *Backend) Available() bool {
	return b.goos == "darwin" && b.resolvable(b.helper)
}

// Extract implements domain.OCRBackend.
func (b *Backend) Extract(ctx context.Context, path string, languages []string, fast bool) (string, error) {
	if !b.Available() {
		return "", fmt.Errorf("%s: %w", Name, domain.ErrBackendUnavailable)
	}

	lines, err := b.recognizeSync(ctx, Args(path, languages, fast))
	if err != nil {
		return "", domain.NewBackendError(Name, err)
	}
	return strings.TrimSpace(strings.Join(lines, "\n")), nil
}

// Args builds the helper command line.
func Args(path string, languages []string, fast bool) []string {
	level := "accurate"
	if fast {
		level = "fast"
	}
	args := []string{"--languages", strings.Join(languages, ","), "--level", level}
	if fast {
		args = append(args, "--no-correction")
	}
	return append(args, "--", path)
}

type outcome struct {
	lines []string
	err   error
}

// recognizeSync blocks until recognize delivers its single completion.
func (b *Backend) recognizeSync(ctx context.Context, args []string) ([]string, error) {
	done := make(chan outcome, 1)
	b.recognize(ctx, args, func(lines []string, err error) {
		done <- outcome{lines: lines, err: err}
	})

	select {
	case o := <-done:
		return o.lines, o.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// recognize starts the helper and reports completion through the handler exactly once.
func (b *Backend) recognize(ctx context.Context, args []string, handler func([]string, error)) {
	var once sync.Once
	complete := func(lines []string, err error) {
		once.Do(func() { handler(lines, err) })
	}

	go func() {
		stdout, stderr, err := b.runner.Run(ctx, nil, b.helper, args...)
		if err != nil {
			if msg := strings.TrimSpace(string(stderr)); msg != "" {
				err = fmt.Errorf("%w: %s", err, ocr.Truncate(msg, 512))
			}
			complete(nil, err)
			return
		}
		complete(splitLines(string(stdout)), nil)
	}()
}

func splitLines(s string) []string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return strings.Split(s, "\n")
}
