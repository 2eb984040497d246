package handler

import (
	"errors"
	"net/http"

	"github.com/airsight/airsight/internal/airquality"
	"github.com/airsight/airsight/internal/analysis"
	"github.com/airsight/airsight/internal/api/models"
	"github.com/airsight/airsight/internal/api/response"
)

// AnalysisHandler handles analysis, hotspot and recommendation endpoints.
type AnalysisHandler struct {
	air      *airquality.Service
	analyses *analysis.Service
}

// NewAnalysisHandler creates a new AnalysisHandler.
func NewAnalysisHandler(air *airquality.Service, analyses *analysis.Service) *AnalysisHandler {
	return &AnalysisHandler{air: air, analyses: analyses}
}

// Trigger handles POST /v1/analysis - run an analysis on the current
// snapshot. The structured findings are returned immediately; the narrative
// arrives later over the websocket.
func (h *AnalysisHandler) Trigger(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.air.GetSnapshot(r.Context())
	if err != nil {
		if errors.Is(err, airquality.ErrProviderUnavailable) {
			response.ServiceUnavailable(w, r, "no air quality provider is currently reachable")
			return
		}
		response.InternalError(w, r, "failed to load air quality snapshot")
		return
	}

	result, err := h.analyses.Analyze(r.Context(), snapshot)
	if err != nil {
		response.InternalError(w, r, "analysis failed")
		return
	}

	response.Accepted(w, r, "/v1/analysis/latest", models.NewAnalysisResponse(result))
}

// Latest handles GET /v1/analysis/latest - the most recent analysis.
func (h *AnalysisHandler) Latest(w http.ResponseWriter, r *http.Request) {
	result, err := h.analyses.Latest(r.Context())
	if err != nil {
		if errors.Is(err, analysis.ErrAnalysisNotFound) {
			response.NotFound(w, r, "no analysis has been generated yet")
			return
		}
		response.InternalError(w, r, "failed to load analysis")
		return
	}

	response.JSON(w, r, http.StatusOK, models.NewAnalysisResponse(result))
}

// History handles GET /v1/analysis?limit= - recent analyses, newest first.
func (h *AnalysisHandler) History(w http.ResponseWriter, r *http.Request) {
	limit, err := limitParam(r, defaultHistoryLimit)
	if err != nil {
		response.BadRequest(w, r, err.Error(), nil)
		return
	}

	results, err := h.analyses.History(r.Context(), limit)
	if err != nil {
		response.InternalError(w, r, "failed to load analysis history")
		return
	}

	out := struct {
		Analyses []models.AnalysisResponse `json:"analyses"`
	}{Analyses: make([]models.AnalysisResponse, 0, len(results))}
	for _, a := range results {
		out.Analyses = append(out.Analyses, models.NewAnalysisResponse(a))
	}

	response.JSON(w, r, http.StatusOK, out)
}

// Hotspots handles GET /v1/air/hotspots - hotspots computed from the current
// snapshot, as a GeoJSON FeatureCollection. A snapshot too sparse to
// baseline returns an empty collection.
func (h *AnalysisHandler) Hotspots(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.air.GetSnapshot(r.Context())
	if err != nil {
		if errors.Is(err, airquality.ErrProviderUnavailable) {
			response.ServiceUnavailable(w, r, "no air quality provider is currently reachable")
			return
		}
		response.InternalError(w, r, "failed to load air quality snapshot")
		return
	}

	hotspots, cityMean, err := analysis.DetectHotspots(snapshot)
	if err != nil && !errors.Is(err, analysis.ErrNotEnoughData) {
		response.InternalError(w, r, "hotspot detection failed")
		return
	}
	collection := models.NewHotspotCollection(hotspots, cityMean, models.Timestamp(snapshot.FetchedAt))
	response.JSON(w, r, http.StatusOK, collection)
}

// Recommendations handles GET /v1/recommendations - the latest analysis's
// policy recommendations.
func (h *AnalysisHandler) Recommendations(w http.ResponseWriter, r *http.Request) {
	result, err := h.analyses.Latest(r.Context())
	if err != nil {
		if errors.Is(err, analysis.ErrAnalysisNotFound) {
			response.NotFound(w, r, "no analysis has been generated yet")
			return
		}
		response.InternalError(w, r, "failed to load recommendations")
		return
	}

	response.JSON(w, r, http.StatusOK, models.RecommendationsResponse{
		Recommendations: result.Recommendations,
		GeneratedAt:     models.Timestamp(result.GeneratedAt),
	})
}
