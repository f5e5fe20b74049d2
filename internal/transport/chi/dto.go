package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/kailas-cloud/ocrchat/internal/domain"
	"github.com/kailas-cloud/ocrchat/internal/domain/conversation"
	chatuc "github.com/kailas-cloud/ocrchat/internal/usecase/chat"
)

// ErrorCode is the machine-readable code of an error response.
type ErrorCode string

// Error codes.
const (
	ErrorCodeBadRequest          ErrorCode = "bad_request"
	ErrorCodeUnauthorized        ErrorCode = "unauthorized"
	ErrorCodePayloadTooLarge     ErrorCode = "payload_too_large"
	ErrorCodeUnsupportedDocument ErrorCode = "unsupported_document"
	ErrorCodeExtractionFailed    ErrorCode = "extraction_failed"
	ErrorCodeDependencyMissing   ErrorCode = "dependency_missing"
	ErrorCodeNoBackendAvailable  ErrorCode = "no_backend_available"
	ErrorCodeChatProviderError   ErrorCode = "chat_provider_error"
	ErrorCodeNotImplemented      ErrorCode = "not_implemented"
	ErrorCodeRequestCanceled     ErrorCode = "request_canceled"
	ErrorCodeTimeout             ErrorCode = "timeout"
	ErrorCodeInternalError       ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// ChatResponse is the body of POST /api/chat.
type ChatResponse struct {
	Reply   string `json:"reply"`
	Model   string `json:"model"`
	OCRText string `json:"ocr_text"`
	// DocumentWarning is null when the document fit the budget.
	DocumentWarning *string `json:"document_warning"`
}

// ModelsResponse is the body of GET /api/models.
type ModelsResponse struct {
	Models []domain.Model `json:"models"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// uploadFields are the accepted multipart file fields, in lookup order.
var uploadFields = []string{"upload", "image"}

var truthy = map[string]struct{}{"1": {}, "true": {}, "yes": {}, "on": {}}

// chatRequestFromForm maps a parsed form onto a chat request.
func chatRequestFromForm(r *http.Request) (chatuc.Request, error) {
	req := chatuc.Request{
		Model:     strings.TrimSpace(r.FormValue("model")),
		Languages: domain.SplitLanguages(r.FormValue("lang")),
		Fast:      parseFlag(r.FormValue("fast")),
		Prompt:    strings.TrimSpace(r.FormValue("prompt")),
		History:   parseHistory(r.FormValue("history")),
	}

	kind, err := domain.ParseKind(r.FormValue("upload_kind"))
	if err != nil {
		return chatuc.Request{}, err
	}

	doc, err := uploadFromForm(r)
	if err != nil {
		return chatuc.Request{}, err
	}
	if doc != nil {
		doc.Kind = kind
		req.Upload = doc
	}
	return req, nil
}

func parseFlag(v string) bool {
	_, ok := truthy[strings.ToLower(strings.TrimSpace(v))]
	return ok
}

// parseHistory decodes the JSON turn list. Malformed input yields an empty history;
// turns with unknown roles are dropped.
func parseHistory(raw string) []conversation.Turn {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var items []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil
	}
	turns := make([]conversation.Turn, 0, len(items))
	for _, it := range items {
		role, err := conversation.ParseRole(it.Role)
		if err != nil {
			continue
		}
		turns = append(turns, conversation.Turn{Role: role, Content: it.Content})
	}
	return turns
}

// uploadFromForm reads the first present file field. Files without a name are ignored.
func uploadFromForm(r *http.Request) (*domain.Document, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}
	for _, field := range uploadFields {
		f, hdr, err := r.FormFile(field)
		if errors.Is(err, http.ErrMissingFile) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w: %w", field, err, domain.ErrInvalidRequest)
		}
		data, err := io.ReadAll(f)
		_ = f.Close()
		if err != nil {
			return nil, fmt.Errorf("read %s: %w: %w", field, err, domain.ErrInvalidRequest)
		}
		if hdr.Filename == "" {
			return nil, nil
		}
		return &domain.Document{Data: data, Filename: hdr.Filename}, nil
	}
	return nil, nil
}

func chatResponseToDTO(resp chatuc.Response) ChatResponse {
	out := ChatResponse{
		Reply:   resp.Reply,
		Model:   resp.Model,
		OCRText: resp.ExtractedText,
	}
	if resp.Warning != domain.WarningNone {
		w := string(resp.Warning)
		out.DocumentWarning = &w
	}
	return out
}
