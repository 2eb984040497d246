package models

import "github.com/airsight/airsight/internal/alert"

// Alert is the API representation of a raised alert.
type Alert struct {
	ID       string  `json:"id"`
	ZoneID   string  `json:"zoneId"`
	ZoneName string  `json:"zoneName"`
	Level    string  `json:"level"`
	PM25     float64 `json:"pm25"`
	AQI      int     `json:"aqi"`
	Message  string  `json:"message"`

	RecommendedActions []string `json:"recommendedActions"`

	CreatedAt  Timestamp  `json:"createdAt"`
	ResolvedAt *Timestamp `json:"resolvedAt,omitempty"`
}

// AlertsResponse lists alerts.
type AlertsResponse struct {
	Alerts []Alert `json:"alerts"`
}

// NewAlert converts a domain alert to its API shape.
func NewAlert(a *alert.Alert) Alert {
	out := Alert{
		ID:                 a.ID,
		ZoneID:             a.ZoneID,
		ZoneName:           a.ZoneName,
		Level:              string(a.Level),
		PM25:               a.PM25,
		AQI:                a.AQI,
		Message:            a.Message,
		RecommendedActions: a.RecommendedActions,
		CreatedAt:          Timestamp(a.CreatedAt),
	}
	if a.ResolvedAt != nil {
		ts := Timestamp(*a.ResolvedAt)
		out.ResolvedAt = &ts
	}
	return out
}

// NewAlertsResponse converts a list of domain alerts.
func NewAlertsResponse(alerts []*alert.Alert) AlertsResponse {
	out := AlertsResponse{Alerts: make([]Alert, 0, len(alerts))}
	for _, a := range alerts {
		out.Alerts = append(out.Alerts, NewAlert(a))
	}
	return out
}
