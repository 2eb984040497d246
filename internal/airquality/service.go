package airquality

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/airsight/airsight/internal/cache"
	"github.com/airsight/airsight/internal/provider/resilience"
	"github.com/airsight/airsight/internal/telemetry"
)

// snapshotKey is the cache key for the current snapshot.
const snapshotKey = "airquality:snapshot"

// Provider defines the interface for air quality data providers.
type Provider interface {
	// Name returns the provider name for logging and health tracking.
	Name() string

	// FetchReadings fetches current readings for the given zones.
	FetchReadings(ctx context.Context, zones []Zone) ([]*Reading, error)
}

// ServiceConfig holds configuration for the aggregation service.
type ServiceConfig struct {
	// Providers are fanned out to concurrently on every refresh.
	Providers []Provider

	// Zones are the monitored zones. Defaults to DefaultZones.
	Zones []Zone

	// Store caches serialized snapshots (memory or Redis).
	Store cache.Store

	// Registry records per-provider success/failure for the ops endpoint.
	// Optional.
	Registry *resilience.Registry

	// Metrics records provider call durations and cache hit rates.
	// Optional; nil disables recording.
	Metrics *telemetry.ProviderMetrics

	// Logger for service operations.
	Logger zerolog.Logger

	// CacheTTL is how long a snapshot stays fresh (default: 15 minutes).
	CacheTTL time.Duration

	// StaleIfErrorTTL allows serving a stale snapshot when every provider
	// fails (default: 1 hour).
	StaleIfErrorTTL time.Duration
}

// Service aggregates provider readings into cached per-zone snapshots.
type Service struct {
	providers       []Provider
	zones           []Zone
	store           cache.Store
	registry        *resilience.Registry
	metrics         *telemetry.ProviderMetrics
	logger          zerolog.Logger
	cacheTTL        time.Duration
	staleIfErrorTTL time.Duration

	// mu serializes refreshes; lastGood backs the stale-if-error path.
	mu       sync.Mutex
	lastGood *Snapshot
}

// NewService creates a new aggregation service.
func NewService(cfg ServiceConfig) *Service {
	zones := cfg.Zones
	if len(zones) == 0 {
		zones = DefaultZones()
	}

	cacheTTL := cfg.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 15 * time.Minute
	}

	staleIfErrorTTL := cfg.StaleIfErrorTTL
	if staleIfErrorTTL == 0 {
		staleIfErrorTTL = 1 * time.Hour
	}

	store := cfg.Store
	if store == nil {
		store = cache.NewMemoryStore()
	}

	return &Service{
		providers:       cfg.Providers,
		zones:           zones,
		store:           store,
		registry:        cfg.Registry,
		metrics:         cfg.Metrics,
		logger:          cfg.Logger,
		cacheTTL:        cacheTTL,
		staleIfErrorTTL: staleIfErrorTTL,
	}
}

// Zones returns the monitored zones.
func (s *Service) Zones() []Zone {
	return s.zones
}

// GetSnapshot returns the current snapshot, from cache when fresh.
func (s *Service) GetSnapshot(ctx context.Context) (*Snapshot, error) {
	if snapshot := s.cachedSnapshot(ctx); snapshot != nil {
		s.metrics.RecordCacheHit("airquality", "snapshot")
		return snapshot, nil
	}
	s.metrics.RecordCacheMiss("airquality", "snapshot")
	return s.refresh(ctx)
}

// GetZone returns the aggregated reading for a single zone.
func (s *Service) GetZone(ctx context.Context, zoneID string) (*ZoneReading, error) {
	snapshot, err := s.GetSnapshot(ctx)
	if err != nil {
		return nil, err
	}

	zone, ok := snapshot.Zones[zoneID]
	if !ok {
		return nil, ErrZoneNotFound
	}
	return zone, nil
}

// Refresh forces a provider re-fetch, bypassing the cache.
func (s *Service) Refresh(ctx context.Context) (*Snapshot, error) {
	if err := s.store.Delete(ctx, snapshotKey); err != nil {
		s.logger.Warn().Err(err).Msg("failed to drop cached snapshot before refresh")
	}
	return s.refresh(ctx)
}

// InvalidateCache drops the cached snapshot. The stale-if-error copy is
// retained so an immediate provider outage still degrades gracefully.
func (s *Service) InvalidateCache(ctx context.Context) error {
	return s.store.Delete(ctx, snapshotKey)
}

// CacheStatus describes the current cache state.
type CacheStatus struct {
	HasData     bool
	FetchedAt   time.Time
	ZoneCount   int
	Providers   []string
	FailedCount int
}

// CacheStatus returns information about the cached snapshot.
func (s *Service) CacheStatus(ctx context.Context) CacheStatus {
	snapshot := s.cachedSnapshot(ctx)
	if snapshot == nil {
		return CacheStatus{}
	}

	providers := make([]string, 0, len(s.providers))
	for _, p := range s.providers {
		providers = append(providers, p.Name())
	}

	return CacheStatus{
		HasData:     true,
		FetchedAt:   snapshot.FetchedAt,
		ZoneCount:   len(snapshot.Zones),
		Providers:   providers,
		FailedCount: len(snapshot.ProviderErrors),
	}
}

// cachedSnapshot loads and decodes the cached snapshot, or nil on miss.
func (s *Service) cachedSnapshot(ctx context.Context) *Snapshot {
	data, err := s.store.Get(ctx, snapshotKey)
	if err != nil {
		return nil
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		s.logger.Warn().Err(err).Msg("discarding undecodable cached snapshot")
		_ = s.store.Delete(ctx, snapshotKey)
		return nil
	}
	return &snapshot
}

// providerResult carries one provider's outcome through the fan-out join.
type providerResult struct {
	name     string
	readings []*Reading
	err      error
}

// refresh fans out to all providers, joins results all-settled, aggregates,
// and stores the snapshot. Only a total provider outage is an error.
func (s *Service) refresh(ctx context.Context) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Another caller may have refreshed while we waited on the lock.
	if snapshot := s.cachedSnapshot(ctx); snapshot != nil {
		return snapshot, nil
	}

	s.logger.Debug().Int("providers", len(s.providers)).Msg("refreshing air quality snapshot")

	results := make(chan providerResult, len(s.providers))
	var wg sync.WaitGroup
	for _, p := range s.providers {
		wg.Add(1)
		go func(p Provider) {
			defer wg.Done()
			start := time.Now()
			readings, err := p.FetchReadings(ctx, s.zones)
			s.metrics.RecordRequest(p.Name(), "fetch-readings", time.Since(start), err)
			results <- providerResult{name: p.Name(), readings: readings, err: err}
		}(p)
	}
	wg.Wait()
	close(results)

	snapshot := NewSnapshot()
	for r := range results {
		if r.err != nil {
			s.logger.Warn().Str("provider", r.name).Err(r.err).Msg("provider fetch failed")
			snapshot.ProviderErrors[r.name] = r.err.Error()
			if s.registry != nil {
				s.registry.RecordFailure(r.name, r.err)
			}
			continue
		}
		snapshot.Readings = append(snapshot.Readings, r.readings...)
		if s.registry != nil {
			s.registry.RecordSuccess(r.name)
		}
	}

	if len(snapshot.Readings) == 0 {
		s.logger.Error().Int("failed_providers", len(snapshot.ProviderErrors)).
			Msg("no provider returned readings")

		if s.lastGood != nil && time.Since(s.lastGood.FetchedAt) < s.staleIfErrorTTL {
			s.logger.Warn().
				Time("fetched_at", s.lastGood.FetchedAt).
				Msg("serving stale air quality snapshot")
			return s.lastGood, nil
		}
		return nil, ErrProviderUnavailable
	}

	s.aggregate(snapshot)
	s.lastGood = snapshot

	if data, err := json.Marshal(snapshot); err == nil {
		if setErr := s.store.Set(ctx, snapshotKey, data, s.cacheTTL); setErr != nil {
			s.logger.Warn().Err(setErr).Msg("failed to cache snapshot")
		}
	}

	s.logger.Info().
		Int("zones", len(snapshot.Zones)).
		Int("readings", len(snapshot.Readings)).
		Int("failed_providers", len(snapshot.ProviderErrors)).
		Msg("air quality snapshot refreshed")

	return snapshot, nil
}

// aggregate folds raw readings into per-zone averages with AQI.
func (s *Service) aggregate(snapshot *Snapshot) {
	byZone := make(map[string][]*Reading)
	for _, r := range snapshot.Readings {
		byZone[r.ZoneID] = append(byZone[r.ZoneID], r)
	}

	for _, zone := range s.zones {
		readings := byZone[zone.ID]
		if len(readings) == 0 {
			continue
		}

		zr := &ZoneReading{
			Zone:        zone,
			PM25:        meanOf(readings, func(r *Reading) *float64 { return r.PM25 }),
			PM10:        meanOf(readings, func(r *Reading) *float64 { return r.PM10 }),
			NO2:         meanOf(readings, func(r *Reading) *float64 { return r.NO2 }),
			SO2:         meanOf(readings, func(r *Reading) *float64 { return r.SO2 }),
			O3:          meanOf(readings, func(r *Reading) *float64 { return r.O3 }),
			CO:          meanOf(readings, func(r *Reading) *float64 { return r.CO }),
			SampleCount: len(readings),
			UpdatedAt:   latestMeasurement(readings),
			AQI:         -1,
			Category:    CategoryUnknown,
		}

		if zr.PM25 != nil {
			zr.AQI = AQIFromPM25(*zr.PM25)
			zr.Category = CategoryForAQI(zr.AQI)
		}

		zr.Sources = uniqueSources(readings)
		snapshot.Zones[zone.ID] = zr
	}
}

// meanOf averages a pollutant over the readings that reported it.
func meanOf(readings []*Reading, field func(*Reading) *float64) *float64 {
	var sum float64
	var n int
	for _, r := range readings {
		if v := field(r); v != nil {
			sum += *v
			n++
		}
	}
	if n == 0 {
		return nil
	}
	mean := sum / float64(n)
	return &mean
}

func latestMeasurement(readings []*Reading) time.Time {
	var latest time.Time
	for _, r := range readings {
		if r.MeasuredAt.After(latest) {
			latest = r.MeasuredAt
		}
	}
	if latest.IsZero() {
		return time.Now()
	}
	return latest
}

func uniqueSources(readings []*Reading) []string {
	seen := make(map[string]struct{}, len(readings))
	for _, r := range readings {
		seen[r.Source] = struct{}{}
	}
	sources := make([]string, 0, len(seen))
	for source := range seen {
		sources = append(sources, source)
	}
	sort.Strings(sources)
	return sources
}
