package analysis

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/airsight/airsight/internal/airquality"
)

// ServiceConfig holds configuration for the analysis service.
type ServiceConfig struct {
	// Repository persists analysis runs. Defaults to in-memory.
	Repository Repository

	// Logger for service operations.
	Logger zerolog.Logger

	// Clock is injectable for tests. Defaults to the real clock.
	Clock clockwork.Clock
}

// Service runs structural analyses over snapshots and persists the results.
type Service struct {
	repository Repository
	logger     zerolog.Logger
	clock      clockwork.Clock
}

// NewService creates a new analysis service.
func NewService(cfg ServiceConfig) *Service {
	repository := cfg.Repository
	if repository == nil {
		repository = NewMemoryRepository()
	}

	clock := cfg.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	return &Service{
		repository: repository,
		logger:     cfg.Logger,
		clock:      clock,
	}
}

// Analyze runs hotspot detection, source attribution, and recommendation
// derivation over a snapshot and persists the result.
func (s *Service) Analyze(ctx context.Context, snapshot *airquality.Snapshot) (*Analysis, error) {
	now := s.clock.Now().UTC()

	hotspots, cityMean, err := DetectHotspots(snapshot)
	if err != nil && !errors.Is(err, ErrNotEnoughData) {
		return nil, err
	}
	sparse := errors.Is(err, ErrNotEnoughData)
	if sparse {
		// Attribution and recommendations still work on sparse data;
		// only the deviation statistics need a minimum sample.
		cityMean = meanPM25(snapshot)
	}

	attributions := AttributeSources(snapshot, now)
	recommendations := Recommend(cityMean, hotspots, attributions)

	analysis := &Analysis{
		ID:              uuid.NewString(),
		GeneratedAt:     now,
		CityMeanPM25:    cityMean,
		ZoneCount:       len(snapshot.Zones),
		Hotspots:        hotspots,
		Attributions:    attributions,
		Recommendations: recommendations,
	}

	if err := s.repository.Create(ctx, analysis); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("analysis_id", analysis.ID).
		Float64("city_mean_pm25", cityMean).
		Int("hotspots", len(hotspots)).
		Bool("sparse", sparse).
		Msg("analysis completed")

	return analysis, nil
}

// Latest returns the most recent analysis.
func (s *Service) Latest(ctx context.Context) (*Analysis, error) {
	return s.repository.GetLatest(ctx)
}

// Get returns an analysis by ID.
func (s *Service) Get(ctx context.Context, id string) (*Analysis, error) {
	return s.repository.Get(ctx, id)
}

// History returns recent analyses, newest first.
func (s *Service) History(ctx context.Context, limit int) ([]*Analysis, error) {
	return s.repository.ListRecent(ctx, limit)
}

// AttachNarrative stores a model-generated narrative on an analysis.
func (s *Service) AttachNarrative(ctx context.Context, id, narrative string) error {
	return s.repository.SetNarrative(ctx, id, narrative)
}

func meanPM25(snapshot *airquality.Snapshot) float64 {
	values := snapshot.PM25Values()
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
