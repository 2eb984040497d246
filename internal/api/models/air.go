package models

import "github.com/airsight/airsight/internal/airquality"

// ZoneReading is the API representation of one zone's aggregated reading.
type ZoneReading struct {
	ZoneID   string  `json:"zoneId"`
	ZoneName string  `json:"zoneName"`
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`

	PM25 *float64 `json:"pm25,omitempty"`
	PM10 *float64 `json:"pm10,omitempty"`
	NO2  *float64 `json:"no2,omitempty"`
	SO2  *float64 `json:"so2,omitempty"`
	O3   *float64 `json:"o3,omitempty"`
	CO   *float64 `json:"co,omitempty"`

	AQI      int    `json:"aqi"`
	Category string `json:"category"`

	Sources     []string  `json:"sources"`
	SampleCount int       `json:"sampleCount"`
	UpdatedAt   Timestamp `json:"updatedAt"`
}

// SnapshotResponse is the API representation of the current snapshot.
type SnapshotResponse struct {
	Zones          []ZoneReading     `json:"zones"`
	ProviderErrors map[string]string `json:"providerErrors,omitempty"`
	FetchedAt      Timestamp         `json:"fetchedAt"`
}

// ZoneResponse wraps a single zone reading.
type ZoneResponse struct {
	Zone ZoneReading `json:"zone"`
}

// NewZoneReading converts a domain zone reading to its API shape.
func NewZoneReading(zr *airquality.ZoneReading) ZoneReading {
	return ZoneReading{
		ZoneID:      zr.Zone.ID,
		ZoneName:    zr.Zone.Name,
		Lat:         zr.Zone.Lat,
		Lon:         zr.Zone.Lon,
		PM25:        zr.PM25,
		PM10:        zr.PM10,
		NO2:         zr.NO2,
		SO2:         zr.SO2,
		O3:          zr.O3,
		CO:          zr.CO,
		AQI:         zr.AQI,
		Category:    string(zr.Category),
		Sources:     zr.Sources,
		SampleCount: zr.SampleCount,
		UpdatedAt:   Timestamp(zr.UpdatedAt),
	}
}

// NewSnapshotResponse converts a domain snapshot to its API shape.
func NewSnapshotResponse(snapshot *airquality.Snapshot) SnapshotResponse {
	zones := make([]ZoneReading, 0, len(snapshot.Zones))
	for _, zr := range snapshot.ZoneList() {
		zones = append(zones, NewZoneReading(zr))
	}

	return SnapshotResponse{
		Zones:          zones,
		ProviderErrors: snapshot.ProviderErrors,
		FetchedAt:      Timestamp(snapshot.FetchedAt),
	}
}
