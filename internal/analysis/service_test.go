package analysis_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/airsight/airsight/internal/analysis"
)

func TestService_Analyze_PersistsResult(t *testing.T) {
	repo := analysis.NewMemoryRepository()
	service := analysis.NewService(analysis.ServiceConfig{
		Repository: repo,
		Logger:     zerolog.Nop(),
	})

	values := make(map[string]float64)
	for i := 0; i < 11; i++ {
		values[fmt.Sprintf("zone_%d", i)] = 20
	}
	values["industrial_area"] = 95

	result, err := service.Analyze(context.Background(), snapshotWith(values))
	require.NoError(t, err)
	assert.NotEmpty(t, result.ID)
	assert.Len(t, result.Hotspots, 1)
	assert.NotEmpty(t, result.Recommendations)

	latest, err := service.Latest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, result.ID, latest.ID)
}

func TestService_Analyze_SparseDataStillRecommends(t *testing.T) {
	service := analysis.NewService(analysis.ServiceConfig{Logger: zerolog.Nop()})

	// Two zones is below the hotspot minimum, but the city mean and
	// recommendations still come out.
	result, err := service.Analyze(context.Background(), snapshotWith(map[string]float64{
		"a": 50, "b": 70,
	}))
	require.NoError(t, err)
	assert.Empty(t, result.Hotspots)
	assert.InDelta(t, 60.0, result.CityMeanPM25, 0.001)
	assert.NotEmpty(t, result.Recommendations)
}

func TestService_Latest_NotFound(t *testing.T) {
	service := analysis.NewService(analysis.ServiceConfig{Logger: zerolog.Nop()})

	_, err := service.Latest(context.Background())
	assert.ErrorIs(t, err, analysis.ErrAnalysisNotFound)
}

func TestService_AttachNarrative(t *testing.T) {
	service := analysis.NewService(analysis.ServiceConfig{Logger: zerolog.Nop()})

	values := map[string]float64{"a": 20, "b": 21, "c": 19, "d": 20, "e": 22}
	result, err := service.Analyze(context.Background(), snapshotWith(values))
	require.NoError(t, err)

	require.NoError(t, service.AttachNarrative(context.Background(), result.ID, "calm week across all zones"))

	latest, err := service.Latest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "calm week across all zones", latest.Narrative)
	assert.NotNil(t, latest.NarrativeAt)

	assert.ErrorIs(t,
		service.AttachNarrative(context.Background(), "missing", "x"),
		analysis.ErrAnalysisNotFound)
}

func TestService_History(t *testing.T) {
	clock := clockwork.NewFakeClock()
	service := analysis.NewService(analysis.ServiceConfig{
		Logger: zerolog.Nop(),
		Clock:  clock,
	})

	values := map[string]float64{"a": 20, "b": 21, "c": 19, "d": 20, "e": 22}

	first, err := service.Analyze(context.Background(), snapshotWith(values))
	require.NoError(t, err)
	clock.Advance(time.Hour)
	second, err := service.Analyze(context.Background(), snapshotWith(values))
	require.NoError(t, err)

	history, err := service.History(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, second.ID, history[0].ID)
	assert.Equal(t, first.ID, history[1].ID)
}
