// Package handler provides HTTP handlers for the AirSight API.
package handler

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/airsight/airsight/internal/airquality"
	"github.com/airsight/airsight/internal/api/models"
	"github.com/airsight/airsight/internal/api/response"
	"github.com/airsight/airsight/internal/provider/resilience"
	"github.com/airsight/airsight/internal/ws"
)

// Pinger checks connectivity to a backing service.
type Pinger interface {
	Ping(ctx context.Context) error
}

// OpsHandlerConfig holds dependencies for the operational endpoints.
type OpsHandlerConfig struct {
	Version   string
	BuildTime string

	// Services flags which external services have credentials configured.
	Services map[string]bool

	// Subsystems are pinged by the readiness check. Nil pingers are skipped.
	Subsystems map[string]Pinger

	Registry   *resilience.Registry
	AirService *airquality.Service
	Hub        *ws.Hub
}

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	cfg OpsHandlerConfig
}

// NewOpsHandler creates a new OpsHandler.
func NewOpsHandler(cfg OpsHandlerConfig) *OpsHandler {
	return &OpsHandler{cfg: cfg}
}

// HealthCheck handles GET /v1/ops/health - liveness check.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status:   models.HealthStatusOK,
		Time:     models.Timestamp(time.Now()),
		Version:  h.cfg.Version,
		Services: h.cfg.Services,
	}
	response.JSON(w, r, http.StatusOK, health)
}

// ReadinessCheck handles GET /v1/ops/ready - readiness check.
// Pings every registered subsystem; any failure makes the service not ready.
func (h *OpsHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := models.HealthStatusOK
	for _, name := range sortedSubsystems(h.cfg.Subsystems) {
		p := h.cfg.Subsystems[name]
		if p == nil {
			continue
		}
		if err := p.Ping(ctx); err != nil {
			status = models.HealthStatusFail
			break
		}
	}

	health := models.Health{
		Status: status,
		Time:   models.Timestamp(time.Now()),
	}

	code := http.StatusOK
	if status == models.HealthStatusFail {
		code = http.StatusServiceUnavailable
	}
	response.JSON(w, r, code, health)
}

// SystemStatus handles GET /v1/ops/status - provider and subsystem status.
func (h *OpsHandler) SystemStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := models.SystemStatus{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
	}

	for _, name := range sortedSubsystems(h.cfg.Subsystems) {
		p := h.cfg.Subsystems[name]
		sub := models.SubsystemStatus{Name: name, Status: models.HealthStatusOK}
		if p == nil {
			sub.Status = models.HealthStatusDegraded
			sub.Detail = "not configured"
		} else if err := p.Ping(ctx); err != nil {
			sub.Status = models.HealthStatusFail
			sub.Detail = err.Error()
			status.Status = models.HealthStatusDegraded
		}
		status.Subsystems = append(status.Subsystems, sub)
	}

	if h.cfg.Registry != nil {
		health := h.cfg.Registry.AllHealth()
		sort.Slice(health, func(i, j int) bool { return health[i].Name < health[j].Name })
		for _, ph := range health {
			status.Providers = append(status.Providers, providerStatus(ph))
			if !ph.IsHealthy() {
				status.Status = models.HealthStatusDegraded
			}
		}
	}

	if h.cfg.AirService != nil {
		cs := h.cfg.AirService.CacheStatus(ctx)
		status.Cache = models.CacheStatus{
			HasData:     cs.HasData,
			ZoneCount:   cs.ZoneCount,
			FailedCount: cs.FailedCount,
		}
		if cs.HasData {
			ts := models.Timestamp(cs.FetchedAt)
			status.Cache.FetchedAt = &ts
		}
	}

	if h.cfg.Hub != nil {
		status.Clients = h.cfg.Hub.ClientCount()
	}

	response.JSON(w, r, http.StatusOK, status)
}

func providerStatus(ph *resilience.ProviderHealth) models.ProviderStatus {
	ps := models.ProviderStatus{
		Provider:     ph.Name,
		Status:       models.HealthStatusOK,
		CircuitState: ph.CircuitState.String(),
		LastError:    ph.LastError,
	}
	switch {
	case ph.IsDegraded():
		ps.Status = models.HealthStatusDegraded
	case !ph.IsHealthy():
		ps.Status = models.HealthStatusFail
	}
	if ph.LastSuccessAt != nil {
		ts := models.Timestamp(*ph.LastSuccessAt)
		ps.LastSuccessAt = &ts
	}
	if ph.LastFailureAt != nil {
		ts := models.Timestamp(*ph.LastFailureAt)
		ps.LastFailureAt = &ts
	}
	return ps
}

func sortedSubsystems(subsystems map[string]Pinger) []string {
	names := make([]string, 0, len(subsystems))
	for name := range subsystems {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
