package weather

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
)

// Provider defines the interface for weather data providers.
type Provider interface {
	// GetCurrentWeather fetches current weather for a location.
	GetCurrentWeather(ctx context.Context, lat, lon float64) (*Observation, error)

	// Name returns the provider name for logging.
	Name() string
}

// ServiceConfig holds configuration for the weather service.
type ServiceConfig struct {
	// Provider is the weather data provider.
	Provider Provider

	// Logger for service operations.
	Logger zerolog.Logger

	// CacheTTL is how long observations stay fresh (default: 10 minutes).
	CacheTTL time.Duration

	// CacheGridSize groups nearby points into shared cache cells, in
	// degrees (default: 0.1, roughly 11km at the equator).
	CacheGridSize float64

	// StaleIfErrorTTL allows serving a stale observation when the provider
	// fails (default: 1 hour).
	StaleIfErrorTTL time.Duration

	// Clock is injectable for tests. Defaults to the real clock.
	Clock clockwork.Clock
}

// Service provides cached current weather.
type Service struct {
	provider        Provider
	logger          zerolog.Logger
	clock           clockwork.Clock
	cacheTTL        time.Duration
	cacheGridSize   float64
	staleIfErrorTTL time.Duration

	mu    sync.RWMutex
	cache map[string]*cachedObservation
}

type cachedObservation struct {
	observation *Observation
	fetchedAt   time.Time
	expiresAt   time.Time
}

// NewService creates a new weather service.
func NewService(cfg ServiceConfig) *Service {
	cacheTTL := cfg.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 10 * time.Minute
	}

	cacheGridSize := cfg.CacheGridSize
	if cacheGridSize == 0 {
		cacheGridSize = 0.1
	}

	staleIfErrorTTL := cfg.StaleIfErrorTTL
	if staleIfErrorTTL == 0 {
		staleIfErrorTTL = 1 * time.Hour
	}

	clock := cfg.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	return &Service{
		provider:        cfg.Provider,
		logger:          cfg.Logger,
		clock:           clock,
		cacheTTL:        cacheTTL,
		cacheGridSize:   cacheGridSize,
		staleIfErrorTTL: staleIfErrorTTL,
		cache:           make(map[string]*cachedObservation),
	}
}

// GetCurrentWeather returns current weather for a location, from cache when
// fresh.
func (s *Service) GetCurrentWeather(ctx context.Context, lat, lon float64) (*Observation, error) {
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return nil, ErrInvalidCoordinates
	}

	key := s.cacheKey(lat, lon)

	s.mu.RLock()
	if cached, ok := s.cache[key]; ok && s.clock.Now().Before(cached.expiresAt) {
		s.mu.RUnlock()
		return cached.observation, nil
	}
	s.mu.RUnlock()

	return s.fetch(ctx, lat, lon, key)
}

// InvalidateCache clears all cached observations.
func (s *Service) InvalidateCache() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache = make(map[string]*cachedObservation)
}

// CacheStats describes the observation cache.
type CacheStats struct {
	Entries      int
	FreshEntries int
	Provider     string
}

// CacheStats returns observation cache statistics.
func (s *Service) CacheStats() CacheStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	fresh := 0
	now := s.clock.Now()
	for _, c := range s.cache {
		if now.Before(c.expiresAt) {
			fresh++
		}
	}

	return CacheStats{
		Entries:      len(s.cache),
		FreshEntries: fresh,
		Provider:     s.provider.Name(),
	}
}

// fetch loads from the provider under the write lock, with a double-check and
// a stale-if-error fallback.
func (s *Service) fetch(ctx context.Context, lat, lon float64, key string) (*Observation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cached, ok := s.cache[key]; ok && s.clock.Now().Before(cached.expiresAt) {
		return cached.observation, nil
	}

	s.logger.Debug().
		Float64("lat", lat).
		Float64("lon", lon).
		Str("provider", s.provider.Name()).
		Msg("fetching weather from provider")

	obs, err := s.provider.GetCurrentWeather(ctx, lat, lon)
	if err != nil {
		s.logger.Error().Err(err).
			Float64("lat", lat).
			Float64("lon", lon).
			Msg("failed to fetch weather")

		if cached, ok := s.cache[key]; ok &&
			s.clock.Now().Before(cached.fetchedAt.Add(s.staleIfErrorTTL)) {
			s.logger.Warn().
				Time("fetched_at", cached.fetchedAt).
				Msg("serving stale weather observation")
			return cached.observation, nil
		}
		return nil, ErrProviderUnavailable
	}

	now := s.clock.Now()
	s.cache[key] = &cachedObservation{
		observation: obs,
		fetchedAt:   now,
		expiresAt:   now.Add(s.cacheTTL),
	}
	s.sweep(now)

	return obs, nil
}

// cacheKey snaps a point to its grid cell.
func (s *Service) cacheKey(lat, lon float64) string {
	gridLat := math.Floor(lat/s.cacheGridSize) * s.cacheGridSize
	gridLon := math.Floor(lon/s.cacheGridSize) * s.cacheGridSize
	return fmt.Sprintf("%.2f:%.2f", gridLat, gridLon)
}

// sweep drops entries too old even for the stale-if-error path. Called under
// the write lock.
func (s *Service) sweep(now time.Time) {
	for key, cached := range s.cache {
		if now.After(cached.fetchedAt.Add(s.staleIfErrorTTL)) {
			delete(s.cache, key)
		}
	}
}
