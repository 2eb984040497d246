package analysis

import (
	"math"
	"time"

	"github.com/airsight/airsight/internal/airquality"
)

// Attribution thresholds. The ratios are heuristics tuned against urban
// monitoring data: high NO2 relative to PM2.5 tracks combustion-engine
// traffic, elevated SO2 tracks industrial fuel, and a fine-particle-heavy
// mix after dark tracks open waste burning.
const (
	trafficNO2Ratio     = 0.6
	trafficMaxScore     = 0.8
	industrySO2Cutoff   = 20.0
	industrySO2Scale    = 50.0
	industryMaxScore    = 0.7
	wasteFineRatio      = 0.7
	wasteScore          = 0.5
	eveningStartHour    = 18
	attributionFullN    = 50
	attributionMaxScore = 0.8
)

// AttributeSources infers the emission source mix per zone. Each matched
// signature contributes a score; scores are normalized so the contributions
// sum to 1. Zones matching no signature are attributed entirely to
// background.
func AttributeSources(snapshot *airquality.Snapshot, now time.Time) []SourceAttribution {
	zones := snapshot.ZoneList()
	attributions := make([]SourceAttribution, 0, len(zones))

	for _, zr := range zones {
		attributions = append(attributions, attributeZone(zr, now))
	}

	return attributions
}

func attributeZone(zr *airquality.ZoneReading, now time.Time) SourceAttribution {
	attribution := SourceAttribution{
		ZoneID:     zr.Zone.ID,
		Confidence: confidenceFor(zr.SampleCount),
	}

	scores := make(map[SourceType]float64)

	if zr.NO2 != nil && zr.PM25 != nil && *zr.PM25 > 0 {
		if ratio := *zr.NO2 / *zr.PM25; ratio > trafficNO2Ratio {
			scores[SourceTraffic] = math.Min(trafficMaxScore, ratio)
			attribution.Indicators = append(attribution.Indicators, "elevated NO2 to PM2.5 ratio")
		}
	}

	if zr.SO2 != nil && *zr.SO2 > industrySO2Cutoff {
		scores[SourceIndustry] = math.Min(industryMaxScore, *zr.SO2/industrySO2Scale)
		attribution.Indicators = append(attribution.Indicators, "elevated SO2")
	}

	if zr.PM25 != nil && zr.PM10 != nil && *zr.PM10 > 0 {
		if *zr.PM25 / *zr.PM10 > wasteFineRatio && now.Hour() >= eveningStartHour {
			scores[SourceWasteBurning] = wasteScore
			attribution.Indicators = append(attribution.Indicators, "fine-particle dominated evening peak")
		}
	}

	attribution.Contributions, attribution.Source = normalizeContributions(scores)
	return attribution
}

// normalizeContributions scales the raw signature scores so they sum to 1
// and picks the dominant source. No matched signature means the whole
// reading is background.
func normalizeContributions(scores map[SourceType]float64) (map[SourceType]float64, SourceType) {
	var total float64
	for _, score := range scores {
		total += score
	}
	if total == 0 {
		return map[SourceType]float64{SourceBackground: 1}, SourceBackground
	}

	contributions := make(map[SourceType]float64, len(scores))
	dominant := SourceBackground
	best := 0.0
	// Fixed order keeps the dominant source deterministic on ties.
	for _, source := range []SourceType{SourceTraffic, SourceIndustry, SourceWasteBurning} {
		score, ok := scores[source]
		if !ok {
			continue
		}
		contributions[source] = score / total
		if contributions[source] > best {
			best = contributions[source]
			dominant = source
		}
	}

	return contributions, dominant
}

// confidenceFor scales confidence with sample count, capped at the maximum
// score a heuristic attribution can claim.
func confidenceFor(sampleCount int) float64 {
	fraction := float64(sampleCount) / attributionFullN
	if fraction > 1 {
		fraction = 1
	}
	return fraction * attributionMaxScore
}
