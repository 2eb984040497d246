package models

import "github.com/airsight/airsight/internal/weather"

// WeatherResponse is the API representation of current weather, annotated
// with its air quality dispersion context.
type WeatherResponse struct {
	Observation      *weather.Observation `json:"observation"`
	WindCategory     string               `json:"windCategory"`
	DispersionFactor float64              `json:"dispersionFactor"`
}

// NewWeatherResponse converts a domain observation to its API shape.
func NewWeatherResponse(obs *weather.Observation) WeatherResponse {
	return WeatherResponse{
		Observation:      obs,
		WindCategory:     string(obs.WindCategory()),
		DispersionFactor: obs.DispersionFactor(),
	}
}
