// Package chi exposes the chat pipeline over HTTP.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/ocrchat/internal/domain"
	chatuc "github.com/kailas-cloud/ocrchat/internal/usecase/chat"
	healthuc "github.com/kailas-cloud/ocrchat/internal/usecase/health"
)

// DefaultMaxUploadBytes caps a /api/chat request body.
const DefaultMaxUploadBytes int64 = 32 << 20

// StatusClientClosedRequest is reported when the client disconnects before the answer is ready.
const StatusClientClosedRequest = 499

// multipartMemory is how much of a multipart body is kept in memory before spilling to disk.
const multipartMemory = 8 << 20

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// ChatService is the subset of the chat usecase the HTTP layer needs.
type ChatService interface {
	Chat(ctx context.Context, req chatuc.Request) (chatuc.Response, error)
	Models(ctx context.Context) ([]domain.Model, error)
}

// HealthService reports component health.
type HealthService interface {
	Check(ctx context.Context) healthuc.Report
}

// Server holds the HTTP handlers.
type Server struct {
	chat           ChatService
	health         HealthService
	logger         *zap.Logger
	maxUploadBytes int64
	errorHandlers  []errorHandler
}

// NewServer creates an HTTP API server. maxUploadBytes <= 0 means DefaultMaxUploadBytes.
func NewServer(chat ChatService, health HealthService, maxUploadBytes int64, logger *zap.Logger) *Server {
	if maxUploadBytes <= 0 {
		maxUploadBytes = DefaultMaxUploadBytes
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		chat:           chat,
		health:         health,
		logger:         logger,
		maxUploadBytes: maxUploadBytes,
	}
	// order matters: an extraction error may also carry its upstream cause,
	// and a provider error may wrap the request context's error
	s.errorHandlers = []errorHandler{
		sentinelHandler(context.Canceled, StatusClientClosedRequest, ErrorCodeRequestCanceled),
		sentinelHandler(context.DeadlineExceeded, http.StatusGatewayTimeout, ErrorCodeTimeout),
		sentinelHandler(domain.ErrInvalidRequest, http.StatusBadRequest, ErrorCodeBadRequest),
		sentinelHandler(domain.ErrUnsupportedDocument, http.StatusBadRequest, ErrorCodeUnsupportedDocument),
		sentinelHandler(domain.ErrDependencyMissing, http.StatusInternalServerError, ErrorCodeDependencyMissing),
		sentinelHandler(domain.ErrNoBackendAvailable, http.StatusInternalServerError, ErrorCodeNoBackendAvailable),
		sentinelHandler(domain.ErrExtractionFailed, http.StatusBadRequest, ErrorCodeExtractionFailed),
		sentinelHandler(domain.ErrChatProviderError, http.StatusBadGateway, ErrorCodeChatProviderError),
		sentinelHandler(domain.ErrNotImplemented, http.StatusNotImplemented, ErrorCodeNotImplemented),
	}
	return s
}

// Routes mounts the API on r.
func (s *Server) Routes(r chi.Router) {
	r.Post("/api/chat", s.Chat)
	r.Get("/api/models", s.ListModels)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, ErrorCodeBadRequest, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, ErrorCodeBadRequest, "method not allowed")
	})
}

// Chat handles POST /api/chat (multipart or urlencoded form).
func (s *Server) Chat(w http.ResponseWriter, r *http.Request) {
	if r.ContentLength > s.maxUploadBytes {
		writeError(w, http.StatusRequestEntityTooLarge, ErrorCodePayloadTooLarge, "upload exceeds the size limit")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			writeError(w, http.StatusRequestEntityTooLarge, ErrorCodePayloadTooLarge, "upload exceeds the size limit")
			return
		case errors.Is(err, http.ErrNotMultipart):
			// plain form: ParseMultipartForm already ran ParseForm
		default:
			writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "invalid form: "+err.Error())
			return
		}
	}
	if r.MultipartForm != nil {
		defer func() { _ = r.MultipartForm.RemoveAll() }()
	}

	req, err := chatRequestFromForm(r)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	resp, err := s.chat.Chat(r.Context(), req)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, chatResponseToDTO(resp))
}

// ListModels handles GET /api/models.
func (s *Server) ListModels(w http.ResponseWriter, r *http.Request) {
	models, err := s.chat.Models(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	if models == nil {
		models = []domain.Model{}
	}
	writeJSON(w, http.StatusOK, ModelsResponse{Models: models})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a client-facing message without exposing internals.
// OCR failures keep the failing backend and its cause for diagnosis.
func safeDomainMessage(err error) string {
	var be *domain.BackendError
	if errors.As(err, &be) {
		return be.Error()
	}

	sentinels := []error{
		context.Canceled,
		context.DeadlineExceeded,
		domain.ErrInvalidRequest,
		domain.ErrUnsupportedDocument,
		domain.ErrDependencyMissing,
		domain.ErrNoBackendAvailable,
		domain.ErrExtractionFailed,
		domain.ErrChatProviderError,
		domain.ErrNotImplemented,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Warn("domain error",
		zap.String("path", r.URL.Path),
		zap.String("request_id", chimw.GetReqID(r.Context())),
		zap.Error(err),
	)

	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorCodeInternalError, "internal error")
}
