package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/airsight/airsight/internal/airquality"
	"github.com/airsight/airsight/internal/weather"
)

// RefreshJob warms the provider caches.
type RefreshJob struct {
	config RefreshConfig
	logger zerolog.Logger

	// Services (optional, nil if not configured)
	airQualityService *airquality.Service
	weatherService    *weather.Service

	metrics *RefreshMetrics
}

// RefreshMetrics tracks refresh job statistics.
type RefreshMetrics struct {
	mu sync.RWMutex

	TotalRefreshes    int64
	SuccessfulRefresh int64
	FailedRefreshes   int64
	AirQualityRefresh int64
	WeatherRefresh    int64

	LastRefreshAt       time.Time
	LastRefreshDuration time.Duration
	TotalDuration       time.Duration
}

// RefreshJobConfig holds configuration for creating a RefreshJob.
type RefreshJobConfig struct {
	Config            RefreshConfig
	Logger            zerolog.Logger
	AirQualityService *airquality.Service
	WeatherService    *weather.Service
}

// NewRefreshJob creates a new refresh job processor.
func NewRefreshJob(cfg RefreshJobConfig) *RefreshJob {
	config := cfg.Config
	if len(config.Zones) == 0 {
		config = DefaultRefreshConfig()
	}

	return &RefreshJob{
		config:            config,
		logger:            cfg.Logger,
		airQualityService: cfg.AirQualityService,
		weatherService:    cfg.WeatherService,
		metrics:           &RefreshMetrics{},
	}
}

// RefreshResult contains the result of a refresh operation.
type RefreshResult struct {
	StartTime  time.Time
	EndTime    time.Time
	Duration   time.Duration
	Successful int
	Failed     int
	Errors     []RefreshError
}

// RefreshError represents an error during refresh.
type RefreshError struct {
	Provider string
	ZoneID   string
	Error    string
}

// Run refreshes the air quality snapshot and warms the weather cache for
// every monitored zone.
func (j *RefreshJob) Run(ctx context.Context) *RefreshResult {
	startTime := time.Now()
	result := &RefreshResult{StartTime: startTime}

	j.logger.Info().
		Int("zones", len(j.config.Zones)).
		Int("concurrency", j.config.Concurrency).
		Msg("starting cache refresh job")

	if j.config.RefreshAirQuality && j.airQualityService != nil {
		if err := j.refreshSnapshot(ctx); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, RefreshError{
				Provider: "airquality",
				Error:    err.Error(),
			})
		} else {
			result.Successful++
			atomic.AddInt64(&j.metrics.AirQualityRefresh, 1)
		}
	}

	if j.config.RefreshWeather && j.weatherService != nil {
		j.warmWeather(ctx, result)
	}

	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(startTime)

	j.updateMetrics(result)

	j.logger.Info().
		Dur("duration", result.Duration).
		Int("successful", result.Successful).
		Int("failed", result.Failed).
		Msg("cache refresh job completed")

	return result
}

// refreshSnapshot forces one snapshot re-fetch. The snapshot is city-wide,
// so a single call covers every zone.
func (j *RefreshJob) refreshSnapshot(ctx context.Context) error {
	jobCtx, cancel := context.WithTimeout(ctx, j.config.Timeout)
	defer cancel()

	_, err := j.airQualityService.Refresh(jobCtx)
	return err
}

type zoneResult struct {
	zoneID string
	err    error
}

// warmWeather fans out over the zones so each grid cell's observation is
// cached before the dashboard asks for it.
func (j *RefreshJob) warmWeather(ctx context.Context, result *RefreshResult) {
	zones := make(chan airquality.Zone, len(j.config.Zones))
	results := make(chan zoneResult, len(j.config.Zones))

	var wg sync.WaitGroup
	for i := 0; i < j.config.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for zone := range zones {
				select {
				case <-ctx.Done():
					return
				default:
				}

				zoneCtx, cancel := context.WithTimeout(ctx, j.config.Timeout)
				_, err := j.weatherService.GetCurrentWeather(zoneCtx, zone.Lat, zone.Lon)
				cancel()
				results <- zoneResult{zoneID: zone.ID, err: err}
			}
		}()
	}

	for _, zone := range j.config.Zones {
		zones <- zone
	}
	close(zones)

	go func() {
		wg.Wait()
		close(results)
	}()

	for zr := range results {
		if zr.err != nil {
			result.Failed++
			result.Errors = append(result.Errors, RefreshError{
				Provider: "weather",
				ZoneID:   zr.zoneID,
				Error:    zr.err.Error(),
			})
			continue
		}
		result.Successful++
		atomic.AddInt64(&j.metrics.WeatherRefresh, 1)
	}
}

func (j *RefreshJob) updateMetrics(result *RefreshResult) {
	j.metrics.mu.Lock()
	defer j.metrics.mu.Unlock()

	j.metrics.TotalRefreshes++
	j.metrics.SuccessfulRefresh += int64(result.Successful)
	j.metrics.FailedRefreshes += int64(result.Failed)
	j.metrics.LastRefreshAt = result.EndTime
	j.metrics.LastRefreshDuration = result.Duration
	j.metrics.TotalDuration += result.Duration
}

// GetMetrics returns a copy of the current metrics.
func (j *RefreshJob) GetMetrics() RefreshMetrics {
	j.metrics.mu.RLock()
	defer j.metrics.mu.RUnlock()

	return RefreshMetrics{
		TotalRefreshes:      j.metrics.TotalRefreshes,
		SuccessfulRefresh:   j.metrics.SuccessfulRefresh,
		FailedRefreshes:     j.metrics.FailedRefreshes,
		AirQualityRefresh:   j.metrics.AirQualityRefresh,
		WeatherRefresh:      j.metrics.WeatherRefresh,
		LastRefreshAt:       j.metrics.LastRefreshAt,
		LastRefreshDuration: j.metrics.LastRefreshDuration,
		TotalDuration:       j.metrics.TotalDuration,
	}
}
