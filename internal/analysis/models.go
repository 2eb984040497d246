// Package analysis detects pollution hotspots, attributes likely emission
// sources, and derives policy recommendations from aggregated zone readings.
package analysis

import (
	"errors"
	"time"
)

// Analysis errors.
var (
	ErrAnalysisNotFound = errors.New("analysis not found")
	ErrNotEnoughData    = errors.New("not enough readings for analysis")
)

// HotspotLevel classifies how far a zone deviates from the city mean.
type HotspotLevel string

const (
	HotspotHigh     HotspotLevel = "HIGH"
	HotspotCritical HotspotLevel = "CRITICAL"
)

// Hotspot is a zone whose PM2.5 stands out statistically from the rest of
// the city.
type Hotspot struct {
	ZoneID   string       `json:"zone_id"`
	ZoneName string       `json:"zone_name"`
	Lat      float64      `json:"lat"`
	Lon      float64      `json:"lon"`
	PM25     float64      `json:"pm25"`
	CityMean float64      `json:"city_mean"`
	Severity float64      `json:"severity"`
	Level    HotspotLevel `json:"level"`
}

// SourceType is a likely emission source class.
type SourceType string

const (
	SourceTraffic      SourceType = "TRAFFIC"
	SourceIndustry     SourceType = "INDUSTRY"
	SourceWasteBurning SourceType = "WASTE_BURNING"

	// SourceBackground absorbs the residual when no chemical signature
	// matches; a zone with no attributable source is 100% background.
	SourceBackground SourceType = "BACKGROUND"
)

// SourceAttribution is the inferred emission source mix for a zone.
type SourceAttribution struct {
	ZoneID string `json:"zone_id"`

	// Source is the dominant contributor.
	Source SourceType `json:"source"`

	// Contributions maps each source class to its normalized share;
	// the shares sum to 1.
	Contributions map[SourceType]float64 `json:"contributions"`

	Confidence float64  `json:"confidence"`
	Indicators []string `json:"indicators,omitempty"`
}

// Priority orders policy recommendations.
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
	PriorityUrgent Priority = "URGENT"
)

// PolicyRecommendation is an actionable intervention derived from the
// current pollution picture.
type PolicyRecommendation struct {
	PolicyType  string   `json:"policy_type"`
	Title       string   `json:"title"`
	Action      string   `json:"action"`
	Priority    Priority `json:"priority"`
	TargetZones []string `json:"target_zones,omitempty"`
	Rationale   string   `json:"rationale"`

	// ExpectedImpactPercent estimates the PM2.5 reduction if implemented.
	ExpectedImpactPercent float64 `json:"expected_impact_percent"`

	// CostEstimate is the rough implementation cost in USD.
	CostEstimate float64 `json:"cost_estimate"`

	// ImplementationDays is the estimated time to put the policy in effect.
	ImplementationDays int `json:"implementation_time_days"`
}

// Analysis is one complete analysis run over a snapshot.
type Analysis struct {
	ID              string                 `json:"id"`
	GeneratedAt     time.Time              `json:"generated_at"`
	CityMeanPM25    float64                `json:"city_mean_pm25"`
	ZoneCount       int                    `json:"zone_count"`
	Hotspots        []Hotspot              `json:"hotspots"`
	Attributions    []SourceAttribution    `json:"attributions"`
	Recommendations []PolicyRecommendation `json:"recommendations"`

	// Narrative is an optional model-generated summary, attached
	// asynchronously after the structural analysis completes.
	Narrative   string     `json:"narrative,omitempty"`
	NarrativeAt *time.Time `json:"narrative_at,omitempty"`
}
