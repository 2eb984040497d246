// Package refresher drives the periodic refresh cycle: re-fetch provider
// data, evaluate alerts, run the analysis, and push live updates.
package refresher

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/airsight/airsight/internal/airquality"
	"github.com/airsight/airsight/internal/alert"
	"github.com/airsight/airsight/internal/analysis"
	"github.com/airsight/airsight/internal/ws"
)

// SnapshotRefresher re-fetches provider data, bypassing the cache.
type SnapshotRefresher interface {
	Refresh(ctx context.Context) (*airquality.Snapshot, error)
}

// AlertEvaluator checks a snapshot against alert thresholds.
type AlertEvaluator interface {
	Evaluate(ctx context.Context, snapshot *airquality.Snapshot) ([]*alert.Alert, error)
}

// Analyzer runs the structural analysis over a snapshot.
type Analyzer interface {
	Analyze(ctx context.Context, snapshot *airquality.Snapshot) (*analysis.Analysis, error)
	AttachNarrative(ctx context.Context, id, narrative string) error
}

// Narrator produces model-written narratives.
type Narrator interface {
	Enabled() bool
	Narrate(ctx context.Context, a *analysis.Analysis) (string, error)
}

// Broadcaster pushes events to connected clients.
type Broadcaster interface {
	Broadcast(room string, event ws.Event)
}

// Config holds configuration for the refresher.
type Config struct {
	Snapshots SnapshotRefresher
	Alerts    AlertEvaluator
	Analyzer  Analyzer
	Narrator  Narrator
	Hub       Broadcaster

	// Interval between refresh cycles (default: 15 minutes).
	Interval time.Duration

	// Room receiving the broadcasts (default: the dashboard room).
	Room string

	// NarrativeTimeout bounds the async narrative generation
	// (default: 2 minutes).
	NarrativeTimeout time.Duration

	// Logger for refresher operations.
	Logger zerolog.Logger

	// Clock is injectable for tests. Defaults to the real clock.
	Clock clockwork.Clock
}

// Refresher runs the refresh cycle on a timer.
type Refresher struct {
	snapshots SnapshotRefresher
	alerts    AlertEvaluator
	analyzer  Analyzer
	narrator  Narrator
	hub       Broadcaster

	interval         time.Duration
	room             string
	narrativeTimeout time.Duration
	logger           zerolog.Logger
	clock            clockwork.Clock
}

// New creates a new refresher.
func New(cfg Config) *Refresher {
	interval := cfg.Interval
	if interval == 0 {
		interval = 15 * time.Minute
	}

	room := cfg.Room
	if room == "" {
		room = ws.DefaultRoom
	}

	narrativeTimeout := cfg.NarrativeTimeout
	if narrativeTimeout == 0 {
		narrativeTimeout = 2 * time.Minute
	}

	clock := cfg.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	return &Refresher{
		snapshots:        cfg.Snapshots,
		alerts:           cfg.Alerts,
		analyzer:         cfg.Analyzer,
		narrator:         cfg.Narrator,
		hub:              cfg.Hub,
		interval:         interval,
		room:             room,
		narrativeTimeout: narrativeTimeout,
		logger:           cfg.Logger,
		clock:            clock,
	}
}

// Run refreshes on the configured interval until the context is canceled.
func (r *Refresher) Run(ctx context.Context) error {
	ticker := r.clock.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info().Dur("interval", r.interval).Msg("refresher started")

	for {
		select {
		case <-ctx.Done():
			r.logger.Info().Msg("refresher stopped")
			return ctx.Err()
		case <-ticker.Chan():
			r.hub.Broadcast(r.room, ws.NewEvent(ws.EventAutoRefresh, r.room, map[string]any{
				"interval_minutes": r.interval.Minutes(),
			}))
			if err := r.RunCycle(ctx); err != nil {
				r.logger.Error().Err(err).Msg("refresh cycle failed")
			}
		}
	}
}

// RunCycle executes one full refresh cycle: fetch, alert, analyze,
// broadcast. Also invoked directly by the admin refresh endpoint.
func (r *Refresher) RunCycle(ctx context.Context) error {
	snapshot, err := r.snapshots.Refresh(ctx)
	if err != nil {
		return err
	}

	r.hub.Broadcast(r.room, ws.NewEvent(ws.EventDataUpdate, r.room, snapshot))

	raised, err := r.alerts.Evaluate(ctx, snapshot)
	if err != nil {
		r.logger.Error().Err(err).Msg("alert evaluation failed")
	}
	for _, a := range raised {
		if a.Level == alert.LevelCritical {
			r.hub.Broadcast(r.room, ws.NewEvent(ws.EventCriticalAlert, r.room, a))
		}
	}

	result, err := r.analyzer.Analyze(ctx, snapshot)
	if err != nil {
		r.logger.Error().Err(err).Msg("analysis failed")
		return nil
	}

	if r.narrator != nil && r.narrator.Enabled() {
		go r.narrate(result)
	}

	return nil
}

// narrate generates and attaches the narrative off the refresh path, then
// announces it.
func (r *Refresher) narrate(result *analysis.Analysis) {
	ctx, cancel := context.WithTimeout(context.Background(), r.narrativeTimeout)
	defer cancel()

	narrative, err := r.narrator.Narrate(ctx, result)
	if err != nil {
		r.logger.Error().Err(err).Str("analysis_id", result.ID).Msg("narrative generation failed")
		return
	}

	if err := r.analyzer.AttachNarrative(ctx, result.ID, narrative); err != nil {
		r.logger.Error().Err(err).Str("analysis_id", result.ID).Msg("failed to store narrative")
		return
	}

	r.hub.Broadcast(r.room, ws.NewEvent(ws.EventAnalysisComplete, r.room, map[string]any{
		"analysis_id": result.ID,
		"narrative":   narrative,
	}))
}
