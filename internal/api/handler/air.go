package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/airsight/airsight/internal/airquality"
	"github.com/airsight/airsight/internal/api/models"
	"github.com/airsight/airsight/internal/api/response"
)

// AirHandler handles air quality endpoints.
type AirHandler struct {
	air *airquality.Service
}

// NewAirHandler creates a new AirHandler.
func NewAirHandler(air *airquality.Service) *AirHandler {
	return &AirHandler{air: air}
}

// Current handles GET /v1/air/current - the aggregated city snapshot.
func (h *AirHandler) Current(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.air.GetSnapshot(r.Context())
	if err != nil {
		if errors.Is(err, airquality.ErrProviderUnavailable) {
			response.ServiceUnavailable(w, r, "no air quality provider is currently reachable")
			return
		}
		response.InternalError(w, r, "failed to load air quality snapshot")
		return
	}

	response.JSON(w, r, http.StatusOK, models.NewSnapshotResponse(snapshot))
}

// Zones handles GET /v1/air/zones - the monitored zones as a GeoJSON
// FeatureCollection for the map layer. Current readings ride along as
// feature properties when a snapshot is available.
func (h *AirHandler) Zones(w http.ResponseWriter, r *http.Request) {
	// The zone list must render even when every provider is down, so a
	// snapshot failure only drops the reading properties.
	snapshot, _ := h.air.GetSnapshot(r.Context())

	response.JSON(w, r, http.StatusOK, models.NewZoneCollection(h.air.Zones(), snapshot))
}

// Zone handles GET /v1/air/zones/{zoneID} - a single zone's reading.
func (h *AirHandler) Zone(w http.ResponseWriter, r *http.Request) {
	zoneID := chi.URLParam(r, "zoneID")
	if zoneID == "" {
		response.BadRequest(w, r, "zoneID is required", nil)
		return
	}

	zone, err := h.air.GetZone(r.Context(), zoneID)
	if err != nil {
		switch {
		case errors.Is(err, airquality.ErrZoneNotFound):
			response.NotFound(w, r, "unknown zone: "+zoneID)
		case errors.Is(err, airquality.ErrProviderUnavailable):
			response.ServiceUnavailable(w, r, "no air quality provider is currently reachable")
		default:
			response.InternalError(w, r, "failed to load zone reading")
		}
		return
	}

	response.JSON(w, r, http.StatusOK, models.ZoneResponse{Zone: models.NewZoneReading(zone)})
}
