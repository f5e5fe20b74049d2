package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
	// Unhealthy indicates that neither chat nor OCR can serve requests.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
	// CheckUnavailable marks an OCR backend that cannot run on this host.
	CheckUnavailable CheckResult = "unavailable"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	chat ChatChecker
	ocr  BackendLister
}

// New creates a Service. Either dependency can be nil.
func New(chat ChatChecker, ocr BackendLister) *Service {
	return &Service{chat: chat, ocr: ocr}
}

// Check probes the chat provider and reports OCR backend availability.
// A host without any OCR backend still serves text and PDF uploads, so it is only degraded.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	chatOK := true
	if s.chat != nil {
		if err := s.chat.HealthCheck(ctx); err != nil {
			checks["chat"] = CheckError
			chatOK = false
		} else {
			checks["chat"] = CheckOK
		}
	}

	ocrOK := s.ocr == nil
	if s.ocr != nil {
		for _, b := range s.ocr.Backends() {
			if b.Available {
				checks["ocr_"+b.Name] = CheckOK
				ocrOK = true
			} else {
				checks["ocr_"+b.Name] = CheckUnavailable
			}
		}
	}

	status := Healthy
	switch {
	case !chatOK && !ocrOK:
		status = Unhealthy
	case !chatOK || !ocrOK:
		status = Degraded
	}

	return Report{Status: status, Checks: checks}
}
