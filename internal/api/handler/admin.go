package handler

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/airsight/airsight/internal/airquality"
	"github.com/airsight/airsight/internal/api/middleware"
	"github.com/airsight/airsight/internal/api/response"
	"github.com/airsight/airsight/internal/weather"
)

// CycleRunner runs one full refresh cycle (fetch, alert, analyze, broadcast).
type CycleRunner interface {
	RunCycle(ctx context.Context) error
}

// AdminHandler handles authenticated operator endpoints.
type AdminHandler struct {
	air     *airquality.Service
	weather *weather.Service
	cycles  CycleRunner
	logger  zerolog.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(air *airquality.Service, svc *weather.Service, cycles CycleRunner, logger zerolog.Logger) *AdminHandler {
	return &AdminHandler{air: air, weather: svc, cycles: cycles, logger: logger}
}

// ClearCache handles POST /v1/admin/cache/clear - drop all cached data so the
// next request refetches from providers.
func (h *AdminHandler) ClearCache(w http.ResponseWriter, r *http.Request) {
	if err := h.air.InvalidateCache(r.Context()); err != nil {
		response.InternalError(w, r, "failed to clear snapshot cache")
		return
	}
	h.weather.InvalidateCache()

	h.logger.Info().
		Str("subject", middleware.GetSubject(r.Context())).
		Msg("caches cleared by operator")

	response.NoContent(w, r)
}

// Refresh handles POST /v1/admin/refresh - run a refresh cycle now instead of
// waiting for the next scheduled tick.
func (h *AdminHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if err := h.cycles.RunCycle(r.Context()); err != nil {
		response.ServiceUnavailable(w, r, "refresh cycle failed: "+err.Error())
		return
	}

	h.logger.Info().
		Str("subject", middleware.GetSubject(r.Context())).
		Msg("refresh cycle triggered by operator")

	response.Accepted(w, r, "/v1/air/current", nil)
}
