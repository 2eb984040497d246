package alert

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/airsight/airsight/internal/airquality"
)

// ServiceConfig holds configuration for the alert service.
type ServiceConfig struct {
	// Repository persists alerts. Defaults to in-memory.
	Repository Repository

	// Logger for service operations.
	Logger zerolog.Logger

	// WarningThreshold is the PM2.5 level (µg/m³) that raises a warning.
	// Defaults to the WHO guideline.
	WarningThreshold float64

	// CriticalThreshold is the PM2.5 level (µg/m³) that raises a critical
	// alert. Defaults to the severe threshold.
	CriticalThreshold float64

	// Clock is injectable for tests. Defaults to the real clock.
	Clock clockwork.Clock
}

// Service evaluates snapshots against thresholds. One active alert per zone;
// a zone recovering below threshold resolves its alert.
type Service struct {
	repository        Repository
	logger            zerolog.Logger
	clock             clockwork.Clock
	warningThreshold  float64
	criticalThreshold float64
}

// NewService creates a new alert service.
func NewService(cfg ServiceConfig) *Service {
	repository := cfg.Repository
	if repository == nil {
		repository = NewMemoryRepository()
	}

	warningThreshold := cfg.WarningThreshold
	if warningThreshold == 0 {
		warningThreshold = airquality.PM25GuidelineWHO
	}

	criticalThreshold := cfg.CriticalThreshold
	if criticalThreshold == 0 {
		criticalThreshold = airquality.PM25SevereThreshold
	}

	clock := cfg.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	return &Service{
		repository:        repository,
		logger:            cfg.Logger,
		clock:             clock,
		warningThreshold:  warningThreshold,
		criticalThreshold: criticalThreshold,
	}
}

// Evaluate checks every zone in the snapshot against the thresholds and
// returns newly raised alerts. Already-active alerts are not re-raised
// unless the zone escalated from warning to critical.
func (s *Service) Evaluate(ctx context.Context, snapshot *airquality.Snapshot) ([]*Alert, error) {
	var raised []*Alert

	for _, zr := range snapshot.ZoneList() {
		alert, err := s.evaluateZone(ctx, zr)
		if err != nil {
			return nil, err
		}
		if alert != nil {
			raised = append(raised, alert)
		}
	}

	return raised, nil
}

func (s *Service) evaluateZone(ctx context.Context, zr *airquality.ZoneReading) (*Alert, error) {
	if zr.PM25 == nil {
		return nil, nil
	}
	pm25 := *zr.PM25

	active, err := s.repository.GetActiveByZone(ctx, zr.Zone.ID)
	if err != nil && !errors.Is(err, ErrAlertNotFound) {
		return nil, err
	}

	level, breached := s.levelFor(pm25)

	if !breached {
		if active != nil {
			if err := s.repository.Resolve(ctx, active.ID); err != nil {
				return nil, err
			}
			s.logger.Info().
				Str("zone", zr.Zone.ID).
				Str("alert_id", active.ID).
				Msg("alert resolved")
		}
		return nil, nil
	}

	if active != nil {
		// Escalation re-raises; anything else keeps the existing alert.
		if !(active.Level == LevelWarning && level == LevelCritical) {
			return nil, nil
		}
		if err := s.repository.Resolve(ctx, active.ID); err != nil {
			return nil, err
		}
	}

	alert := &Alert{
		ID:       uuid.NewString(),
		ZoneID:   zr.Zone.ID,
		ZoneName: zr.Zone.Name,
		Level:    level,
		PM25:     pm25,
		AQI:      zr.AQI,
		Message: fmt.Sprintf("PM2.5 in %s is %.1f µg/m³ (%s)",
			zr.Zone.Name, pm25, zr.Category),
		RecommendedActions: actionsFor(level),
		CreatedAt:          s.clock.Now().UTC(),
	}

	if err := s.repository.Create(ctx, alert); err != nil {
		return nil, err
	}

	s.logger.Warn().
		Str("zone", zr.Zone.ID).
		Str("level", string(level)).
		Float64("pm25", pm25).
		Msg("alert raised")

	return alert, nil
}

// actionsFor maps an alert level to the guidance published with it.
func actionsFor(level Level) []string {
	switch level {
	case LevelCritical:
		return []string{
			"Avoid all outdoor activity until levels recover",
			"Wear an N95 mask if going outside is unavoidable",
			"Deploy mobile air quality units to the affected zone",
		}
	default:
		return []string{
			"Limit prolonged outdoor exertion, especially for sensitive groups",
			"Keep windows closed during peak traffic hours",
		}
	}
}

func (s *Service) levelFor(pm25 float64) (Level, bool) {
	switch {
	case pm25 > s.criticalThreshold:
		return LevelCritical, true
	case pm25 > s.warningThreshold:
		return LevelWarning, true
	default:
		return "", false
	}
}

// Active returns all unresolved alerts, newest first.
func (s *Service) Active(ctx context.Context) ([]*Alert, error) {
	return s.repository.List(ctx, ListOptions{ActiveOnly: true})
}

// History returns recent alerts including resolved ones, newest first.
func (s *Service) History(ctx context.Context, limit int) ([]*Alert, error) {
	return s.repository.List(ctx, ListOptions{Limit: limit})
}
