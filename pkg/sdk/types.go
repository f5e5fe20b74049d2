package ocrchat

import (
	"fmt"

	"github.com/kailas-cloud/ocrchat/internal/domain"
	"github.com/kailas-cloud/ocrchat/internal/domain/conversation"
	chatuc "github.com/kailas-cloud/ocrchat/internal/usecase/chat"
)

// Document kinds. KindAuto infers the kind from the file extension.
const (
	KindAuto  = ""
	KindText  = "text"
	KindPDF   = "pdf"
	KindImage = "image"
)

// Warnings attached to extracted text.
const (
	WarningTextTruncated = string(domain.WarningTextTruncated)
	WarningPDFTruncated  = string(domain.WarningPDFTruncated)
)

// Document is an uploaded file.
type Document struct {
	Filename string
	Kind     string // KindAuto, KindText, KindPDF or KindImage
	Data     []byte
}

// Extraction is the text pulled out of a document.
type Extraction struct {
	Text      string
	Truncated bool
	Warning   string // "" when the text fit the budget
}

// Message is one conversation turn. Role is "system", "user" or "assistant".
type Message struct {
	Role    string
	Content string
}

// ChatRequest is one exchange.
type ChatRequest struct {
	Model     string // empty = client default
	Languages []string
	Fast      bool
	Prompt    string
	History   []Message
	Upload    *Document
	// Context is text extracted earlier; ignored when Upload is set.
	Context string
}

// ChatResponse is the model reply plus the context it was given.
type ChatResponse struct {
	Reply         string
	Model         string
	ExtractedText string
	Warning       string
}

// Model is a model offered by the chat provider.
type Model struct {
	Name          string
	ParameterSize string
	ContextLength int
}

func toDomainDocument(d Document) (domain.Document, error) {
	kind, err := domain.ParseKind(d.Kind)
	if err != nil {
		return domain.Document{}, err
	}
	return domain.Document{Data: d.Data, Kind: kind, Filename: d.Filename}, nil
}

func toTurns(msgs []Message) ([]conversation.Turn, error) {
	turns := make([]conversation.Turn, 0, len(msgs))
	for _, m := range msgs {
		role, err := conversation.ParseRole(m.Role)
		if err != nil {
			return nil, fmt.Errorf("history: %w: %w", err, domain.ErrInvalidRequest)
		}
		turns = append(turns, conversation.Turn{Role: role, Content: m.Content})
	}
	return turns, nil
}

func fromTurns(turns []conversation.Turn) []Message {
	out := make([]Message, len(turns))
	for i, t := range turns {
		out[i] = Message{Role: string(t.Role), Content: t.Content}
	}
	return out
}

func fromExtraction(r domain.ExtractionResult) Extraction {
	return Extraction{Text: r.Text, Truncated: r.Truncated, Warning: string(r.Warning)}
}

func fromChatResponse(r chatuc.Response) ChatResponse {
	return ChatResponse{
		Reply:         r.Reply,
		Model:         r.Model,
		ExtractedText: r.ExtractedText,
		Warning:       string(r.Warning),
	}
}
