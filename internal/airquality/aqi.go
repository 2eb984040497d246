package airquality

import "math"

// Category is the health-impact band for an AQI value.
type Category string

const (
	CategoryGood               Category = "GOOD"
	CategoryModerate           Category = "MODERATE"
	CategoryUnhealthySensitive Category = "UNHEALTHY_SENSITIVE"
	CategoryUnhealthy          Category = "UNHEALTHY"
	CategoryVeryUnhealthy      Category = "VERY_UNHEALTHY"
	CategoryHazardous          Category = "HAZARDOUS"
	CategoryUnknown            Category = "UNKNOWN"
)

// aqiBreakpoint maps a PM2.5 concentration band to an AQI band
// (US EPA PM2.5 breakpoints).
type aqiBreakpoint struct {
	concLow  float64
	concHigh float64
	aqiLow   int
	aqiHigh  int
	category Category
}

var pm25Breakpoints = []aqiBreakpoint{
	{0.0, 12.0, 0, 50, CategoryGood},
	{12.1, 35.4, 51, 100, CategoryModerate},
	{35.5, 55.4, 101, 150, CategoryUnhealthySensitive},
	{55.5, 150.4, 151, 200, CategoryUnhealthy},
	{150.5, 250.4, 201, 300, CategoryVeryUnhealthy},
	{250.5, 500.4, 301, 500, CategoryHazardous},
}

// AQIFromPM25 computes the US EPA AQI for a PM2.5 concentration in µg/m³.
// Values above the scale clamp to 500; negative values return -1.
func AQIFromPM25(pm25 float64) int {
	if pm25 < 0 {
		return -1
	}

	for _, bp := range pm25Breakpoints {
		if pm25 <= bp.concHigh {
			span := (bp.concHigh - bp.concLow)
			ratio := (pm25 - bp.concLow) / span
			aqi := float64(bp.aqiLow) + ratio*float64(bp.aqiHigh-bp.aqiLow)
			return int(math.Round(aqi))
		}
	}
	return 500
}

// PM25FromAQI inverts the PM2.5 breakpoint mapping, estimating the
// concentration in µg/m³ behind a US AQI value. Providers that publish only
// AQI sub-indices (WAQI, IQAir) are normalized through this.
func PM25FromAQI(aqi int) float64 {
	if aqi < 0 {
		return -1
	}
	for _, bp := range pm25Breakpoints {
		if aqi <= bp.aqiHigh {
			ratio := float64(aqi-bp.aqiLow) / float64(bp.aqiHigh-bp.aqiLow)
			if ratio < 0 {
				ratio = 0
			}
			return bp.concLow + ratio*(bp.concHigh-bp.concLow)
		}
	}
	return pm25Breakpoints[len(pm25Breakpoints)-1].concHigh
}

// CategoryForAQI returns the health-impact band for an AQI value.
func CategoryForAQI(aqi int) Category {
	switch {
	case aqi < 0:
		return CategoryUnknown
	case aqi <= 50:
		return CategoryGood
	case aqi <= 100:
		return CategoryModerate
	case aqi <= 150:
		return CategoryUnhealthySensitive
	case aqi <= 200:
		return CategoryUnhealthy
	case aqi <= 300:
		return CategoryVeryUnhealthy
	default:
		return CategoryHazardous
	}
}

// WHO 24-hour PM2.5 guideline values used for alerting thresholds (µg/m³).
const (
	// PM25GuidelineWHO is the WHO interim target used as the elevated
	// threshold in recommendations and alerts.
	PM25GuidelineWHO = 35.0

	// PM25SevereThreshold marks severely degraded air quality.
	PM25SevereThreshold = 55.0
)
