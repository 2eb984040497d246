package models

import "github.com/airsight/airsight/internal/analysis"

// AnalysisResponse is the API representation of an analysis run. The
// structured findings keep their domain JSON shapes.
type AnalysisResponse struct {
	ID              string                          `json:"id"`
	GeneratedAt     Timestamp                       `json:"generatedAt"`
	CityMeanPM25    float64                         `json:"cityMeanPm25"`
	ZoneCount       int                             `json:"zoneCount"`
	Hotspots        []analysis.Hotspot              `json:"hotspots"`
	Attributions    []analysis.SourceAttribution    `json:"attributions"`
	Recommendations []analysis.PolicyRecommendation `json:"recommendations"`
	Narrative       string                          `json:"narrative,omitempty"`
	NarrativeAt     *Timestamp                      `json:"narrativeAt,omitempty"`
}

// NewAnalysisResponse converts a domain analysis to its API shape.
func NewAnalysisResponse(a *analysis.Analysis) AnalysisResponse {
	resp := AnalysisResponse{
		ID:              a.ID,
		GeneratedAt:     Timestamp(a.GeneratedAt),
		CityMeanPM25:    a.CityMeanPM25,
		ZoneCount:       a.ZoneCount,
		Hotspots:        a.Hotspots,
		Attributions:    a.Attributions,
		Recommendations: a.Recommendations,
		Narrative:       a.Narrative,
	}
	if a.NarrativeAt != nil {
		ts := Timestamp(*a.NarrativeAt)
		resp.NarrativeAt = &ts
	}
	return resp
}

// RecommendationsResponse lists current policy recommendations.
type RecommendationsResponse struct {
	Recommendations []analysis.PolicyRecommendation `json:"recommendations"`
	GeneratedAt     Timestamp                       `json:"generatedAt"`
}
