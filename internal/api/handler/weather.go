package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/airsight/airsight/internal/api/models"
	"github.com/airsight/airsight/internal/api/response"
	"github.com/airsight/airsight/internal/weather"
)

// Default coordinates when the request carries none (Nairobi CBD).
const (
	defaultLat = -1.2864
	defaultLon = 36.8172
)

// WeatherHandler handles weather endpoints.
type WeatherHandler struct {
	weather *weather.Service
}

// NewWeatherHandler creates a new WeatherHandler.
func NewWeatherHandler(svc *weather.Service) *WeatherHandler {
	return &WeatherHandler{weather: svc}
}

// Current handles GET /v1/weather/current?lat=&lon= - current conditions.
func (h *WeatherHandler) Current(w http.ResponseWriter, r *http.Request) {
	lat, lon, err := coordinates(r)
	if err != nil {
		response.BadRequest(w, r, err.Error(), nil)
		return
	}

	obs, err := h.weather.GetCurrentWeather(r.Context(), lat, lon)
	if err != nil {
		switch {
		case errors.Is(err, weather.ErrInvalidCoordinates):
			response.BadRequest(w, r, "coordinates out of range", nil)
		case errors.Is(err, weather.ErrProviderUnavailable):
			response.ServiceUnavailable(w, r, "weather provider is currently unreachable")
		default:
			response.InternalError(w, r, "failed to load weather")
		}
		return
	}

	response.JSON(w, r, http.StatusOK, models.NewWeatherResponse(obs))
}

// coordinates parses optional lat/lon query params, defaulting to the city
// center. Both must be present together.
func coordinates(r *http.Request) (float64, float64, error) {
	rawLat := r.URL.Query().Get("lat")
	rawLon := r.URL.Query().Get("lon")

	if rawLat == "" && rawLon == "" {
		return defaultLat, defaultLon, nil
	}
	if rawLat == "" || rawLon == "" {
		return 0, 0, errors.New("lat and lon must be provided together")
	}

	lat, err := strconv.ParseFloat(rawLat, 64)
	if err != nil {
		return 0, 0, errors.New("invalid lat: " + rawLat)
	}
	lon, err := strconv.ParseFloat(rawLon, 64)
	if err != nil {
		return 0, 0, errors.New("invalid lon: " + rawLon)
	}
	return lat, lon, nil
}
