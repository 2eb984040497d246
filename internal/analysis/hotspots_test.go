package analysis_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/airsight/airsight/internal/airquality"
	"github.com/airsight/airsight/internal/analysis"
)

// snapshotWith builds a snapshot from zoneID -> PM2.5 pairs.
func snapshotWith(pm25 map[string]float64) *airquality.Snapshot {
	snapshot := airquality.NewSnapshot()
	for zoneID, value := range pm25 {
		snapshot.Zones[zoneID] = &airquality.ZoneReading{
			Zone:        airquality.Zone{ID: zoneID, Name: zoneID},
			PM25:        airquality.Float64Ptr(value),
			SampleCount: 10,
			UpdatedAt:   time.Now(),
		}
	}
	return snapshot
}

func TestDetectHotspots_FindsCriticalOutlier(t *testing.T) {
	// Eleven quiet zones plus one extreme outlier.
	values := make(map[string]float64)
	for i := 0; i < 11; i++ {
		values[fmt.Sprintf("zone_%d", i)] = 20
	}
	values["industrial_area"] = 95

	hotspots, mean, err := analysis.DetectHotspots(snapshotWith(values))
	require.NoError(t, err)
	require.Len(t, hotspots, 1)

	h := hotspots[0]
	assert.Equal(t, "industrial_area", h.ZoneID)
	assert.Equal(t, analysis.HotspotCritical, h.Level)
	assert.InDelta(t, 26.25, mean, 0.01)
	assert.Greater(t, h.Severity, 2.5)
}

func TestDetectHotspots_NoOutliers(t *testing.T) {
	snapshot := snapshotWith(map[string]float64{
		"a": 20, "b": 22, "c": 19, "d": 21, "e": 20,
	})

	hotspots, _, err := analysis.DetectHotspots(snapshot)
	require.NoError(t, err)
	assert.Empty(t, hotspots)
}

func TestDetectHotspots_NotEnoughData(t *testing.T) {
	snapshot := snapshotWith(map[string]float64{"a": 20, "b": 90})

	_, _, err := analysis.DetectHotspots(snapshot)
	assert.ErrorIs(t, err, analysis.ErrNotEnoughData)
}

func TestDetectHotspots_CapsAtTenWorstZones(t *testing.T) {
	// Twelve zones stand well clear of the two-sigma cutoff; only the ten
	// worst come back.
	values := make(map[string]float64)
	for i := 0; i < 88; i++ {
		values[fmt.Sprintf("quiet_%d", i)] = 5
	}
	for i := 0; i < 12; i++ {
		values[fmt.Sprintf("hot_%d", i)] = 100
	}

	hotspots, _, err := analysis.DetectHotspots(snapshotWith(values))
	require.NoError(t, err)
	assert.Len(t, hotspots, 10)
}

func TestDetectHotspots_SortedBySeverity(t *testing.T) {
	values := make(map[string]float64)
	for i := 0; i < 18; i++ {
		values[fmt.Sprintf("zone_%d", i)] = 10
	}
	values["x"] = 100
	values["y"] = 150

	hotspots, _, err := analysis.DetectHotspots(snapshotWith(values))
	require.NoError(t, err)
	require.Len(t, hotspots, 2)

	assert.Equal(t, "y", hotspots[0].ZoneID)
	assert.Equal(t, analysis.HotspotCritical, hotspots[0].Level)
	assert.Equal(t, "x", hotspots[1].ZoneID)
	assert.Equal(t, analysis.HotspotHigh, hotspots[1].Level)
}
