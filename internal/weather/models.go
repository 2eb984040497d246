// Package weather provides current weather conditions for monitored zones,
// including wind-based dispersion context for air quality interpretation.
package weather

import (
	"errors"
	"time"
)

// Weather errors.
var (
	ErrProviderUnavailable = errors.New("weather provider unavailable")
	ErrInvalidCoordinates  = errors.New("invalid coordinates")
)

// Observation represents current weather at a point.
type Observation struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`

	// Temperature in Celsius.
	Temperature float64 `json:"temperature_c"`

	// FeelsLike in Celsius.
	FeelsLike float64 `json:"feels_like_c"`

	// Humidity percentage (0-100).
	Humidity float64 `json:"humidity"`

	// WindSpeed in m/s, WindDirection in degrees (0=N, 90=E).
	WindSpeed     float64 `json:"wind_speed_ms"`
	WindDirection float64 `json:"wind_direction_deg"`
	WindGust      float64 `json:"wind_gust_ms,omitempty"`

	// Pressure in hPa.
	Pressure float64 `json:"pressure_hpa"`

	// Precipitation in mm over the last hour.
	Precipitation float64 `json:"precipitation_mm"`

	Condition   Condition `json:"condition"`
	Description string    `json:"description"`

	// CloudCover percentage (0-100).
	CloudCover float64 `json:"cloud_cover"`

	// Visibility in kilometers.
	Visibility float64 `json:"visibility_km"`

	// UVIndex as reported by the provider.
	UVIndex float64 `json:"uv_index"`

	ObservedAt time.Time `json:"observed_at"`
	FetchedAt  time.Time `json:"fetched_at"`
}

// Condition is the general weather condition.
type Condition string

const (
	ConditionClear        Condition = "CLEAR"
	ConditionClouds       Condition = "CLOUDS"
	ConditionRain         Condition = "RAIN"
	ConditionDrizzle      Condition = "DRIZZLE"
	ConditionThunderstorm Condition = "THUNDERSTORM"
	ConditionMist         Condition = "MIST"
	ConditionFog          Condition = "FOG"
	ConditionHaze         Condition = "HAZE"
	ConditionUnknown      Condition = "UNKNOWN"
)

// WindCategory categorizes wind speed by its effect on pollutant dispersion.
type WindCategory string

const (
	WindCalm     WindCategory = "CALM"     // < 1 m/s, pollutants accumulate
	WindLight    WindCategory = "LIGHT"    // 1-3 m/s, minimal dispersion
	WindModerate WindCategory = "MODERATE" // 3-8 m/s, good dispersion
	WindStrong   WindCategory = "STRONG"   // > 8 m/s, excellent dispersion
)

// WindCategory returns the dispersion band for the observed wind speed.
func (o *Observation) WindCategory() WindCategory {
	switch {
	case o.WindSpeed < 1:
		return WindCalm
	case o.WindSpeed < 3:
		return WindLight
	case o.WindSpeed < 8:
		return WindModerate
	default:
		return WindStrong
	}
}

// DispersionFactor returns a multiplier (0.7-1.3) indicating how the current
// wind affects pollutant accumulation. Values above 1 mean pollutants linger.
func (o *Observation) DispersionFactor() float64 {
	switch o.WindCategory() {
	case WindCalm:
		return 1.3
	case WindLight:
		return 1.1
	case WindModerate:
		return 0.9
	case WindStrong:
		return 0.7
	default:
		return 1.0
	}
}
