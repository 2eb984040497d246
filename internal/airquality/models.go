// Package airquality aggregates pollution readings from multiple providers
// into per-zone snapshots with TTL caching.
package airquality

import (
	"errors"
	"sort"
	"time"
)

// Aggregation errors.
var (
	ErrZoneNotFound        = errors.New("zone not found")
	ErrNoReadings          = errors.New("no readings available")
	ErrProviderUnavailable = errors.New("air quality providers unavailable")
)

// Zone represents a monitored geographic zone.
type Zone struct {
	ID   string
	Name string
	Lat  float64
	Lon  float64
}

// Reading is a normalized pollutant measurement from a single provider.
// Pollutant fields are pointers because providers report different subsets;
// a nil field was simply not reported.
type Reading struct {
	ZoneID  string
	Station string
	Lat     float64
	Lon     float64

	PM25 *float64 // µg/m³
	PM10 *float64 // µg/m³
	NO2  *float64 // µg/m³
	SO2  *float64 // µg/m³
	O3   *float64 // µg/m³
	CO   *float64 // µg/m³

	Source     string
	MeasuredAt time.Time
}

// ZoneReading is the per-zone aggregate over all providers that reported.
type ZoneReading struct {
	Zone Zone

	PM25 *float64
	PM10 *float64
	NO2  *float64
	SO2  *float64
	O3   *float64
	CO   *float64

	// AQI is computed from the averaged PM2.5, -1 when PM2.5 is absent.
	AQI      int
	Category Category

	// Sources lists the providers that contributed to this aggregate.
	Sources     []string
	SampleCount int
	UpdatedAt   time.Time
}

// Snapshot is a point-in-time view of all zones.
type Snapshot struct {
	// Zones maps zone ID to its aggregated reading.
	Zones map[string]*ZoneReading `json:"zones"`

	// Readings holds the raw per-provider readings behind the aggregates.
	Readings []*Reading `json:"readings"`

	// ProviderErrors records providers that failed during this fetch.
	// A failed provider is absent from the aggregate, not fatal.
	ProviderErrors map[string]string `json:"providerErrors,omitempty"`

	FetchedAt time.Time `json:"fetchedAt"`
}

// NewSnapshot creates an empty snapshot stamped with the current time.
func NewSnapshot() *Snapshot {
	return &Snapshot{
		Zones:          make(map[string]*ZoneReading),
		ProviderErrors: make(map[string]string),
		FetchedAt:      time.Now(),
	}
}

// ZoneList returns all zone readings as a slice, ordered by zone ID.
func (s *Snapshot) ZoneList() []*ZoneReading {
	zones := make([]*ZoneReading, 0, len(s.Zones))
	for _, z := range s.Zones {
		zones = append(zones, z)
	}
	sort.Slice(zones, func(i, j int) bool {
		return zones[i].Zone.ID < zones[j].Zone.ID
	})
	return zones
}

// PM25Values returns the averaged PM2.5 value of every zone that has one.
func (s *Snapshot) PM25Values() []float64 {
	values := make([]float64, 0, len(s.Zones))
	for _, z := range s.Zones {
		if z.PM25 != nil {
			values = append(values, *z.PM25)
		}
	}
	return values
}

// DefaultZones returns the monitored zones for the Nairobi deployment.
func DefaultZones() []Zone {
	return []Zone{
		{ID: "nairobi_cbd", Name: "Nairobi CBD", Lat: -1.2864, Lon: 36.8172},
		{ID: "industrial_area", Name: "Industrial Area", Lat: -1.3089, Lon: 36.8510},
		{ID: "westlands", Name: "Westlands", Lat: -1.2676, Lon: 36.8070},
		{ID: "kibera", Name: "Kibera", Lat: -1.3133, Lon: 36.7923},
		{ID: "eastleigh", Name: "Eastleigh", Lat: -1.2743, Lon: 36.8504},
		{ID: "karen", Name: "Karen", Lat: -1.3194, Lon: 36.7096},
		{ID: "kasarani", Name: "Kasarani", Lat: -1.2250, Lon: 36.8989},
		{ID: "embakasi", Name: "Embakasi", Lat: -1.3231, Lon: 36.8942},
	}
}

// Float64Ptr returns a pointer to v. Convenience for building readings.
func Float64Ptr(v float64) *float64 {
	return &v
}
