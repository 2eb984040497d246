package analysis

import (
	"math"
	"sort"

	"github.com/airsight/airsight/internal/airquality"
)

const (
	// minHotspotSamples is the smallest number of zone PM2.5 values for
	// which the deviation statistics are meaningful.
	minHotspotSamples = 5

	// maxHotspots caps the result at the worst offenders.
	maxHotspots = 10
)

// DetectHotspots finds zones whose PM2.5 deviates more than two standard
// deviations above the city mean. Three standard deviations marks a zone
// critical. Returns up to maxHotspots hotspots sorted by severity, worst
// first.
func DetectHotspots(snapshot *airquality.Snapshot) ([]Hotspot, float64, error) {
	type zoneValue struct {
		zone *airquality.ZoneReading
		pm25 float64
	}

	var values []zoneValue
	for _, zr := range snapshot.Zones {
		if zr.PM25 != nil {
			values = append(values, zoneValue{zone: zr, pm25: *zr.PM25})
		}
	}

	if len(values) < minHotspotSamples {
		return nil, 0, ErrNotEnoughData
	}

	var sum float64
	for _, v := range values {
		sum += v.pm25
	}
	mean := sum / float64(len(values))

	var variance float64
	for _, v := range values {
		d := v.pm25 - mean
		variance += d * d
	}
	stddev := math.Sqrt(variance / float64(len(values)))

	highCutoff := mean + 2*stddev
	criticalCutoff := mean + 3*stddev

	var hotspots []Hotspot
	for _, v := range values {
		if v.pm25 <= highCutoff {
			continue
		}

		level := HotspotHigh
		if v.pm25 > criticalCutoff {
			level = HotspotCritical
		}

		severity := 0.0
		if mean > 0 {
			severity = v.pm25 / mean
		}

		hotspots = append(hotspots, Hotspot{
			ZoneID:   v.zone.Zone.ID,
			ZoneName: v.zone.Zone.Name,
			Lat:      v.zone.Zone.Lat,
			Lon:      v.zone.Zone.Lon,
			PM25:     v.pm25,
			CityMean: mean,
			Severity: severity,
			Level:    level,
		})
	}

	sort.Slice(hotspots, func(i, j int) bool {
		return hotspots[i].Severity > hotspots[j].Severity
	})
	if len(hotspots) > maxHotspots {
		hotspots = hotspots[:maxHotspots]
	}

	return hotspots, mean, nil
}
