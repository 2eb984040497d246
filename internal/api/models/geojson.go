package models

import (
	"github.com/airsight/airsight/internal/airquality"
	"github.com/airsight/airsight/internal/analysis"
)

// FeatureCollection is a GeoJSON FeatureCollection, the shape map layers
// consume directly.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// Feature is a GeoJSON Feature with point geometry.
type Feature struct {
	Type       string         `json:"type"`
	Geometry   PointGeometry  `json:"geometry"`
	Properties map[string]any `json:"properties"`
}

// PointGeometry holds coordinates in GeoJSON order: [lon, lat].
type PointGeometry struct {
	Type        string     `json:"type"`
	Coordinates [2]float64 `json:"coordinates"`
}

func newPointFeature(lat, lon float64, props map[string]any) Feature {
	return Feature{
		Type:       "Feature",
		Geometry:   PointGeometry{Type: "Point", Coordinates: [2]float64{lon, lat}},
		Properties: props,
	}
}

// NewZoneCollection renders the monitored zones as a FeatureCollection.
// When the snapshot has a reading for a zone, its aggregate values ride
// along as feature properties.
func NewZoneCollection(zones []airquality.Zone, snapshot *airquality.Snapshot) FeatureCollection {
	fc := FeatureCollection{Type: "FeatureCollection", Features: make([]Feature, 0, len(zones))}

	for _, z := range zones {
		props := map[string]any{
			"zoneId":   z.ID,
			"zoneName": z.Name,
		}
		if snapshot != nil {
			if zr, ok := snapshot.Zones[z.ID]; ok {
				if zr.PM25 != nil {
					props["pm25"] = *zr.PM25
				}
				props["aqi"] = zr.AQI
				props["category"] = zr.Category
				props["sampleCount"] = zr.SampleCount
			}
		}
		fc.Features = append(fc.Features, newPointFeature(z.Lat, z.Lon, props))
	}

	return fc
}

// NewHotspotCollection renders detected hotspots as a FeatureCollection.
func NewHotspotCollection(hotspots []analysis.Hotspot, cityMean float64, generatedAt Timestamp) HotspotCollection {
	fc := FeatureCollection{Type: "FeatureCollection", Features: make([]Feature, 0, len(hotspots))}

	for _, h := range hotspots {
		fc.Features = append(fc.Features, newPointFeature(h.Lat, h.Lon, map[string]any{
			"zoneId":   h.ZoneID,
			"zoneName": h.ZoneName,
			"pm25":     h.PM25,
			"severity": h.Severity,
			"level":    h.Level,
		}))
	}

	return HotspotCollection{
		FeatureCollection: fc,
		CityMeanPM25:      cityMean,
		GeneratedAt:       generatedAt,
	}
}

// HotspotCollection is a FeatureCollection annotated with the city-wide
// baseline the severity scores are relative to.
type HotspotCollection struct {
	FeatureCollection
	CityMeanPM25 float64   `json:"cityMeanPm25"`
	GeneratedAt  Timestamp `json:"generatedAt"`
}
