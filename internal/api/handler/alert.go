package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/airsight/airsight/internal/alert"
	"github.com/airsight/airsight/internal/api/models"
	"github.com/airsight/airsight/internal/api/response"
)

const defaultHistoryLimit = 50

// AlertHandler handles alert endpoints.
type AlertHandler struct {
	alerts *alert.Service
}

// NewAlertHandler creates a new AlertHandler.
func NewAlertHandler(alerts *alert.Service) *AlertHandler {
	return &AlertHandler{alerts: alerts}
}

// Active handles GET /v1/alerts - currently active alerts.
func (h *AlertHandler) Active(w http.ResponseWriter, r *http.Request) {
	alerts, err := h.alerts.Active(r.Context())
	if err != nil {
		response.InternalError(w, r, "failed to load active alerts")
		return
	}
	response.JSON(w, r, http.StatusOK, models.NewAlertsResponse(alerts))
}

// History handles GET /v1/alerts/history?limit= - recent alerts, resolved
// ones included.
func (h *AlertHandler) History(w http.ResponseWriter, r *http.Request) {
	limit, err := limitParam(r, defaultHistoryLimit)
	if err != nil {
		response.BadRequest(w, r, err.Error(), nil)
		return
	}

	alerts, err := h.alerts.History(r.Context(), limit)
	if err != nil {
		response.InternalError(w, r, "failed to load alert history")
		return
	}
	response.JSON(w, r, http.StatusOK, models.NewAlertsResponse(alerts))
}

// limitParam parses an optional positive ?limit= query parameter.
func limitParam(r *http.Request, def int) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid limit: %q", raw)
	}
	return n, nil
}
