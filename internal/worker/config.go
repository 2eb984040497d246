// Package worker provides background cache warming for AirSight.
//
// The worker consumes refresh jobs from Pub/Sub and warms the air quality
// snapshot and per-zone weather caches so API requests never pay the
// provider round-trip.
package worker

import (
	"time"

	"github.com/airsight/airsight/internal/airquality"
)

// RefreshConfig holds configuration for the cache refresh job.
type RefreshConfig struct {
	// Zones are the monitored zones whose weather caches get warmed.
	// If empty, uses the default zone set.
	Zones []airquality.Zone

	// Concurrency is the number of concurrent weather warm-ups.
	// Default: 3
	Concurrency int

	// Timeout is the timeout for each refresh operation.
	// Default: 30 seconds
	Timeout time.Duration

	// RefreshAirQuality enables snapshot refresh.
	// Default: true
	RefreshAirQuality bool

	// RefreshWeather enables per-zone weather warm-up.
	// Default: true
	RefreshWeather bool
}

// DefaultRefreshConfig returns the default refresh configuration.
func DefaultRefreshConfig() RefreshConfig {
	return RefreshConfig{
		Zones:             airquality.DefaultZones(),
		Concurrency:       3,
		Timeout:           30 * time.Second,
		RefreshAirQuality: true,
		RefreshWeather:    true,
	}
}
