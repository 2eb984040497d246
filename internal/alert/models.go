// Package alert raises threshold alerts when zone air quality degrades and
// keeps a history of past alerts.
package alert

import (
	"errors"
	"time"
)

// Alert errors.
var (
	ErrAlertNotFound = errors.New("alert not found")
)

// Level is the alert severity.
type Level string

const (
	LevelWarning  Level = "WARNING"
	LevelCritical Level = "CRITICAL"
)

// Alert is one raised air quality alert for a zone.
type Alert struct {
	ID       string  `json:"id"`
	ZoneID   string  `json:"zone_id"`
	ZoneName string  `json:"zone_name"`
	Level    Level   `json:"level"`
	PM25     float64 `json:"pm25"`
	AQI      int     `json:"aqi"`
	Message  string  `json:"message"`

	// RecommendedActions is level-appropriate public health guidance
	// attached when the alert is raised.
	RecommendedActions []string `json:"recommended_actions"`

	CreatedAt time.Time `json:"created_at"`

	// ResolvedAt is set when a later evaluation finds the zone back under
	// threshold.
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
}

// Active reports whether the alert has not yet been resolved.
func (a *Alert) Active() bool {
	return a.ResolvedAt == nil
}
