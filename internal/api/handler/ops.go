// Package handler provides HTTP handlers for the CareMate API.
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/caremate/caremate/internal/api/models"
	"github.com/caremate/caremate/internal/api/response"
	"github.com/caremate/caremate/internal/assistant"
)

// StatusReporter exposes the orchestrator's view of the provider fleet.
type StatusReporter interface {
	ServiceStatus() assistant.ServiceStatus
}

// ReadyCheck verifies one dependency. A nil error means ready.
type ReadyCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	version     string
	buildTime   string
	reporter    StatusReporter
	readyChecks []ReadyCheck
}

// NewOpsHandler creates a new OpsHandler. The reporter may be nil when the
// assistant subsystem is not wired (worker-only deployments).
func NewOpsHandler(version, buildTime string, reporter StatusReporter, readyChecks []ReadyCheck) *OpsHandler {
	return &OpsHandler{
		version:     version,
		buildTime:   buildTime,
		reporter:    reporter,
		readyChecks: readyChecks,
	}
}

// HealthCheck handles GET /v1/ops/health - liveness check.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
		Details: map[string]interface{}{
			"version":   h.version,
			"buildTime": h.buildTime,
		},
	}
	response.JSON(w, r, http.StatusOK, health)
}

// ReadinessCheck handles GET /v1/ops/ready - readiness check.
func (h *OpsHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	details := make(map[string]interface{}, len(h.readyChecks))
	status := models.HealthStatusOK
	for _, check := range h.readyChecks {
		if err := check.Check(ctx); err != nil {
			details[check.Name] = err.Error()
			status = models.HealthStatusFail
		} else {
			details[check.Name] = "ok"
		}
	}

	health := models.Health{
		Status:  status,
		Time:    models.Timestamp(time.Now()),
		Details: details,
	}

	code := http.StatusOK
	if status == models.HealthStatusFail {
		code = http.StatusServiceUnavailable
	}
	response.JSON(w, r, code, health)
}

// SystemStatus handles GET /v1/ops/status - subsystem status.
func (h *OpsHandler) SystemStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := models.HealthStatusOK
	subsystems := make([]models.SubsystemStatus, 0, len(h.readyChecks)+1)
	for _, check := range h.readyChecks {
		sub := models.SubsystemStatus{Name: check.Name, Status: models.HealthStatusOK}
		if err := check.Check(ctx); err != nil {
			detail := err.Error()
			sub.Status = models.HealthStatusFail
			sub.Detail = &detail
			status = models.HealthStatusDegraded
		}
		subsystems = append(subsystems, sub)
	}

	if h.reporter != nil {
		sub := models.SubsystemStatus{Name: "assistant", Status: models.HealthStatusOK}
		svc := h.reporter.ServiceStatus()
		switch {
		case svc.EligibleCount == 0:
			sub.Status = models.HealthStatusFail
			status = models.HealthStatusDegraded
		case svc.EligibleCount < svc.TotalCount:
			sub.Status = models.HealthStatusDegraded
		}
		subsystems = append(subsystems, sub)
	}

	response.JSON(w, r, http.StatusOK, models.SystemStatus{
		Status:     status,
		Time:       models.Timestamp(time.Now()),
		Subsystems: subsystems,
	})
}

// AssistantStatus handles GET /v1/ops/assistant - provider fleet detail.
func (h *OpsHandler) AssistantStatus(w http.ResponseWriter, r *http.Request) {
	if h.reporter == nil {
		response.ServiceUnavailable(w, r, "assistant subsystem not configured")
		return
	}

	svc := h.reporter.ServiceStatus()

	status := models.HealthStatusOK
	switch {
	case svc.EligibleCount == 0:
		status = models.HealthStatusFail
	case svc.EligibleCount < svc.TotalCount:
		status = models.HealthStatusDegraded
	}

	providers := make([]models.AssistantHealth, 0, len(svc.Providers))
	for _, snap := range svc.Providers {
		p := models.AssistantHealth{
			Provider:            snap.Provider,
			State:               string(snap.State),
			SuccessRate:         snap.SuccessRate,
			ConsecutiveFailures: snap.ConsecutiveFailures,
			LastLatencyMs:       snap.LastLatency.Milliseconds(),
		}
		if !snap.LastCheckedAt.IsZero() {
			ts := models.Timestamp(snap.LastCheckedAt)
			p.LastCheckedAt = &ts
		}
		if snap.LastError != "" {
			lastErr := snap.LastError
			p.LastError = &lastErr
		}
		providers = append(providers, p)
	}

	result := models.AssistantStatus{
		Status:        status,
		Time:          models.Timestamp(time.Now()),
		EligibleCount: svc.EligibleCount,
		TotalCount:    svc.TotalCount,
		Providers:     providers,
	}
	if !svc.LastSweepAt.IsZero() {
		ts := models.Timestamp(svc.LastSweepAt)
		result.LastSweepAt = &ts
	}

	response.JSON(w, r, http.StatusOK, result)
}
