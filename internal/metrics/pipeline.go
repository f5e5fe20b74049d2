package metrics

import "github.com/prometheus/client_golang/prometheus"

// Document pipeline Prometheus metrics.
var (
	OCRAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ocrchat",
			Name:      "ocr_attempts_total",
			Help:      "Total number of OCR backend attempts",
		},
		[]string{"backend", "status"},
	)

	OCRDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ocrchat",
			Name:      "ocr_duration_seconds",
			Help:      "OCR backend duration in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"backend"},
	)

	OCRFallbacksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ocrchat",
			Name:      "ocr_fallbacks_total",
			Help:      "OCR requests that moved on to the next backend after a failure",
		},
		[]string{"from"},
	)

	DocumentsIngestedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ocrchat",
			Name:      "documents_ingested_total",
			Help:      "Documents ingested by kind and outcome",
		},
		[]string{"kind", "status"},
	)

	DocumentsTruncatedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ocrchat",
			Name:      "documents_truncated_total",
			Help:      "Documents whose extracted text was cut to the model budget",
		},
		[]string{"kind"},
	)

	PDFPageErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "ocrchat",
			Name:      "pdf_page_errors_total",
			Help:      "PDF pages skipped because text extraction failed",
		},
	)

	ChatRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ocrchat",
			Name:      "chat_requests_total",
			Help:      "Total number of chat completion requests",
		},
		[]string{"provider", "model", "status"},
	)

	ChatRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ocrchat",
			Name:      "chat_request_duration_seconds",
			Help:      "Chat completion request duration in seconds",
			Buckets:   []float64{0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
		[]string{"provider", "model"},
	)
)

var pipelineMetricsRegistered bool

// RegisterPipelineMetrics registers the document pipeline metrics. Must be called once from main.
func RegisterPipelineMetrics() {
	if pipelineMetricsRegistered {
		return
	}
	prometheus.MustRegister(OCRAttemptsTotal)
	prometheus.MustRegister(OCRDuration)
	prometheus.MustRegister(OCRFallbacksTotal)
	prometheus.MustRegister(DocumentsIngestedTotal)
	prometheus.MustRegister(DocumentsTruncatedTotal)
	prometheus.MustRegister(PDFPageErrorsTotal)
	prometheus.MustRegister(ChatRequestsTotal)
	prometheus.MustRegister(ChatRequestDuration)
	pipelineMetricsRegistered = true
}
