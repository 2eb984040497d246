package analysis_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/airsight/airsight/internal/analysis"
)

func TestRecommend_CleanCity(t *testing.T) {
	recs := analysis.Recommend(15.0, nil, nil)

	require.Len(t, recs, 1)
	assert.Equal(t, analysis.PriorityLow, recs[0].Priority)
}

func TestRecommend_ElevatedCityMean(t *testing.T) {
	recs := analysis.Recommend(40.0, nil, nil)

	require.Len(t, recs, 1)
	assert.Equal(t, analysis.PriorityMedium, recs[0].Priority)
	assert.Contains(t, recs[0].Rationale, "40.0")
}

func TestRecommend_SevereCityMean(t *testing.T) {
	recs := analysis.Recommend(60.0, nil, nil)

	require.Len(t, recs, 1)
	assert.Equal(t, analysis.PriorityHigh, recs[0].Priority)
}

func TestRecommend_CarriesImpactCostAndTimeline(t *testing.T) {
	attributions := []analysis.SourceAttribution{
		{ZoneID: "nairobi_cbd", Source: analysis.SourceTraffic},
		{ZoneID: "industrial_area", Source: analysis.SourceIndustry},
		{ZoneID: "kibera", Source: analysis.SourceWasteBurning},
	}

	recs := analysis.Recommend(60.0, nil, attributions)
	require.Len(t, recs, 4)

	for _, rec := range recs {
		assert.NotEmpty(t, rec.PolicyType, rec.Title)
		assert.Greater(t, rec.ExpectedImpactPercent, 0.0, rec.Title)
		assert.Greater(t, rec.CostEstimate, 0.0, rec.Title)
		assert.Greater(t, rec.ImplementationDays, 0, rec.Title)
	}
}

func TestRecommend_CriticalHotspotIsUrgentAndFirst(t *testing.T) {
	hotspots := []analysis.Hotspot{
		{ZoneID: "industrial_area", Level: analysis.HotspotCritical},
		{ZoneID: "westlands", Level: analysis.HotspotHigh},
	}

	recs := analysis.Recommend(40.0, hotspots, nil)

	require.NotEmpty(t, recs)
	assert.Equal(t, analysis.PriorityUrgent, recs[0].Priority)
	assert.Equal(t, []string{"industrial_area"}, recs[0].TargetZones)
}

func TestRecommend_SourceSpecificActions(t *testing.T) {
	attributions := []analysis.SourceAttribution{
		{ZoneID: "nairobi_cbd", Source: analysis.SourceTraffic},
		{ZoneID: "industrial_area", Source: analysis.SourceIndustry},
		{ZoneID: "kibera", Source: analysis.SourceWasteBurning},
		{ZoneID: "karen", Source: analysis.SourceBackground},
	}

	recs := analysis.Recommend(15.0, nil, attributions)
	require.Len(t, recs, 3)

	// Industry outranks the medium-priority source actions.
	assert.Equal(t, analysis.PriorityHigh, recs[0].Priority)
	assert.Equal(t, []string{"industrial_area"}, recs[0].TargetZones)
}

func TestRecommend_OrderedByPriority(t *testing.T) {
	hotspots := []analysis.Hotspot{{ZoneID: "kibera", Level: analysis.HotspotCritical}}
	attributions := []analysis.SourceAttribution{
		{ZoneID: "nairobi_cbd", Source: analysis.SourceTraffic},
		{ZoneID: "industrial_area", Source: analysis.SourceIndustry},
	}

	recs := analysis.Recommend(60.0, hotspots, attributions)
	require.Len(t, recs, 4)

	assert.Equal(t, analysis.PriorityUrgent, recs[0].Priority)
	assert.Equal(t, analysis.PriorityHigh, recs[1].Priority)
	assert.Equal(t, analysis.PriorityHigh, recs[2].Priority)
	assert.Equal(t, analysis.PriorityMedium, recs[3].Priority)
}
