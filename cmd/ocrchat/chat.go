package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/ocrchat/internal/domain/conversation"
	ocrchat "github.com/kailas-cloud/ocrchat/pkg/sdk"
)

// previewRunes bounds the extracted text echoed after a file is read.
const previewRunes = 600

func newChatCmd(flags *clientFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Interactive chat; paste a file path to use its text as context",
		Long: "Interactive chat with a language model.\n\n" +
			"  <path>              read a file (image, PDF or text) and keep its text as context\n" +
			"  <path> | question   read a file and ask about it in one line\n" +
			"  clear, reset        forget the context and the conversation\n" +
			"  q, quit, :q         exit",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := flags.newClient()
			if err != nil {
				return err
			}
			r := &repl{
				client:  client,
				session: conversation.NewSession(""),
				model:   flags.model,
				out:     cmd.OutOrStdout(),
			}
			return r.run(cmd.Context(), cmd.InOrStdin())
		},
	}
}

// chatClient is the part of the SDK client the loop uses.
type chatClient interface {
	Ingest(ctx context.Context, doc ocrchat.Document, model string) (ocrchat.Extraction, error)
	Chat(ctx context.Context, req ocrchat.ChatRequest) (ocrchat.ChatResponse, error)
}

type repl struct {
	client  chatClient
	session *conversation.Session
	model   string
	out     io.Writer
}

func (r *repl) run(ctx context.Context, in io.Reader) error {
	fmt.Fprintf(r.out, "Chat with %s. Type a file path to read it, or '<path> | question'. Type 'q' to quit.\n", r.model)

	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for {
		fmt.Fprint(r.out, "You> ")
		if !sc.Scan() {
			fmt.Fprintln(r.out)
			return sc.Err()
		}
		if ctx.Err() != nil {
			return nil
		}
		if !r.handle(ctx, strings.TrimSpace(sc.Text())) {
			return nil
		}
	}
}

// handle processes one input line and reports whether the loop should continue.
func (r *repl) handle(ctx context.Context, line string) bool {
	if line == "" {
		return true
	}
	switch strings.ToLower(line) {
	case "q", "quit", ":q":
		return false
	case "clear", "reset":
		r.session.Reset()
		fmt.Fprintln(r.out, "Context cleared.")
		return true
	}

	path, prompt := r.parseLine(line)
	if path != "" {
		if !r.load(ctx, path) {
			return true
		}
		if prompt == "" {
			fmt.Fprintln(r.out, "Now ask a question about this text, or paste another path.")
			return true
		}
	}
	r.ask(ctx, prompt)
	return true
}

// parseLine splits "<path> | question". A whole line that names an existing file is a path.
// A path that does not exist is dropped and the question (or the whole line) is asked as is.
func (r *repl) parseLine(line string) (path, prompt string) {
	if left, right, ok := strings.Cut(line, "|"); ok {
		prompt = strings.TrimSpace(right)
		if p, err := normalizePath(left); err == nil && isFile(p) {
			return p, prompt
		}
		if prompt == "" {
			prompt = line
		}
		return "", prompt
	}
	if p, err := normalizePath(line); err == nil && isFile(p) {
		return p, ""
	}
	return "", line
}

func (r *repl) load(ctx context.Context, path string) bool {
	fmt.Fprintf(r.out, "[OCR] Reading: %s\n", path)
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(r.out, "OCR error: %v\n", err)
		return false
	}
	ext, err := r.client.Ingest(ctx, ocrchat.Document{Filename: filepath.Base(path), Data: data}, r.model)
	if err != nil {
		fmt.Fprintf(r.out, "OCR error: %v\n", err)
		return false
	}
	r.session.SetContext(ext.Text, path)

	fmt.Fprintf(r.out, "[OCR] Extracted text (truncated to %d chars):\n", previewRunes)
	fmt.Fprintln(r.out, preview(ext.Text, previewRunes))
	if ext.Warning != "" {
		fmt.Fprintf(r.out, "[OCR] %s: the text was cut to fit %s\n", ext.Warning, r.model)
	}
	return true
}

func (r *repl) ask(ctx context.Context, prompt string) {
	text, _ := r.session.Context()
	history := r.session.History()
	msgs := make([]ocrchat.Message, len(history))
	for i, t := range history {
		msgs[i] = ocrchat.Message{Role: string(t.Role), Content: t.Content}
	}

	resp, err := r.client.Chat(ctx, ocrchat.ChatRequest{
		Model:   r.model,
		Prompt:  prompt,
		History: msgs,
		Context: text,
	})
	if err != nil {
		fmt.Fprintf(r.out, "LLM error: %v\n", err)
		return
	}
	r.session.Record(prompt, resp.Reply)
	fmt.Fprintf(r.out, "%s> %s\n\n", r.model, resp.Reply)
}

// preview returns the first n runes of s, with an ellipsis when it was cut.
func preview(s string, n int) string {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos] + "…"
		}
		i++
	}
	return s
}
