package analysis

import (
	"fmt"
	"sort"

	"github.com/airsight/airsight/internal/airquality"
)

// Recommend derives policy recommendations from the city mean, detected
// hotspots, and source attributions. Ordered most urgent first.
func Recommend(cityMean float64, hotspots []Hotspot, attributions []SourceAttribution) []PolicyRecommendation {
	var recs []PolicyRecommendation

	if zones := criticalZones(hotspots); len(zones) > 0 {
		recs = append(recs, PolicyRecommendation{
			PolicyType:            "emergency_response",
			Title:                 "Immediate intervention in critical zones",
			Action:                "Issue public health advisories and deploy mobile monitoring to the affected zones.",
			Priority:              PriorityUrgent,
			TargetZones:           zones,
			Rationale:             "PM2.5 in these zones exceeds the city mean by more than three standard deviations.",
			ExpectedImpactPercent: 15.0,
			CostEstimate:          12000,
			ImplementationDays:    14,
		})
	}

	if cityMean > airquality.PM25GuidelineWHO {
		priority := PriorityMedium
		if cityMean > airquality.PM25SevereThreshold {
			priority = PriorityHigh
		}
		recs = append(recs, PolicyRecommendation{
			PolicyType: "emission_reduction",
			Title:      "Citywide PM2.5 reduction measures",
			Action:     "Tighten vehicle emission checks and restrict open burning until levels recover.",
			Priority:   priority,
			Rationale: fmt.Sprintf("City mean PM2.5 of %.1f µg/m³ exceeds the %.0f µg/m³ guideline.",
				cityMean, airquality.PM25GuidelineWHO),
			ExpectedImpactPercent: 20.0,
			CostEstimate:          10000,
			ImplementationDays:    90,
		})
	}

	grouped := zonesBySource(attributions)
	for _, source := range []SourceType{SourceTraffic, SourceIndustry, SourceWasteBurning} {
		if zones := grouped[source]; len(zones) > 0 {
			if rec, ok := sourceRecommendation(source, zones); ok {
				recs = append(recs, rec)
			}
		}
	}

	if len(recs) == 0 {
		recs = append(recs, PolicyRecommendation{
			PolicyType: "monitoring",
			Title:      "Maintain monitoring coverage",
			Action:     "Continue routine monitoring; no intervention currently indicated.",
			Priority:   PriorityLow,
			Rationale:  "All zones are within guideline levels with no anomalous sources detected.",
		})
	}

	sortByPriority(recs)
	return recs
}

func criticalZones(hotspots []Hotspot) []string {
	var zones []string
	for _, h := range hotspots {
		if h.Level == HotspotCritical {
			zones = append(zones, h.ZoneID)
		}
	}
	return zones
}

func zonesBySource(attributions []SourceAttribution) map[SourceType][]string {
	grouped := make(map[SourceType][]string)
	for _, a := range attributions {
		switch a.Source {
		case SourceTraffic, SourceIndustry, SourceWasteBurning:
			grouped[a.Source] = append(grouped[a.Source], a.ZoneID)
		}
	}
	return grouped
}

func sourceRecommendation(source SourceType, zones []string) (PolicyRecommendation, bool) {
	switch source {
	case SourceTraffic:
		return PolicyRecommendation{
			PolicyType:            "traffic_restriction",
			Title:                 "Traffic emission controls",
			Action:                "Reroute heavy vehicles away from the affected zones during peak hours and prioritize public transport lanes.",
			Priority:              PriorityMedium,
			TargetZones:           zones,
			Rationale:             "NO2 signatures indicate vehicle exhaust as the dominant source.",
			ExpectedImpactPercent: 25.0,
			CostEstimate:          8500,
			ImplementationDays:    30,
		}, true
	case SourceIndustry:
		return PolicyRecommendation{
			PolicyType:            "industrial_monitoring",
			Title:                 "Industrial compliance inspections",
			Action:                "Schedule stack emission audits for facilities in the affected zones.",
			Priority:              PriorityHigh,
			TargetZones:           zones,
			Rationale:             "Elevated SO2 indicates industrial fuel combustion.",
			ExpectedImpactPercent: 20.0,
			CostEstimate:          15000,
			ImplementationDays:    90,
		}, true
	case SourceWasteBurning:
		return PolicyRecommendation{
			PolicyType:            "waste_management",
			Title:                 "Waste collection enforcement",
			Action:                "Increase evening waste collection frequency and enforce the open burning ban.",
			Priority:              PriorityMedium,
			TargetZones:           zones,
			Rationale:             "Fine-particle dominated evening peaks indicate open waste burning.",
			ExpectedImpactPercent: 40.0,
			CostEstimate:          7500,
			ImplementationDays:    60,
		}, true
	}
	return PolicyRecommendation{}, false
}

var priorityRank = map[Priority]int{
	PriorityUrgent: 0,
	PriorityHigh:   1,
	PriorityMedium: 2,
	PriorityLow:    3,
}

func sortByPriority(recs []PolicyRecommendation) {
	sort.SliceStable(recs, func(i, j int) bool {
		return priorityRank[recs[i].Priority] < priorityRank[recs[j].Priority]
	})
}
