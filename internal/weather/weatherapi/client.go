// Package weatherapi provides a client for the WeatherAPI.com current
// conditions API.
package weatherapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/airsight/airsight/internal/provider/resilience"
	"github.com/airsight/airsight/internal/weather"
)

const (
	// DefaultBaseURL is the base URL for the WeatherAPI.com API.
	DefaultBaseURL = "https://api.weatherapi.com/v1"

	// ProviderName identifies this provider.
	ProviderName = "weatherapi"
)

// HTTPDoer abstracts HTTP request execution.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientConfig holds configuration for the WeatherAPI client.
type ClientConfig struct {
	// APIKey is the WeatherAPI.com API key (required).
	APIKey string

	// BaseURL is the API base URL (defaults to DefaultBaseURL).
	BaseURL string

	// HTTPClient is the HTTP client to use. If nil, a default resilient
	// client is created.
	HTTPClient HTTPDoer

	// Timeout for individual API requests (default: 10s).
	Timeout time.Duration
}

// Client is a WeatherAPI.com client.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient HTTPDoer
}

// NewClient creates a new WeatherAPI client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = 10 * time.Second
		}
		httpClient = resilience.NewClient(resilience.ClientConfig{
			Name:            ProviderName,
			Timeout:         timeout,
			MaxRetries:      3,
			InitialInterval: 200 * time.Millisecond,
			MaxInterval:     5 * time.Second,
		})
	}

	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// API response types (from the current.json endpoint).

type currentResponse struct {
	Location locationData `json:"location"`
	Current  currentData  `json:"current"`
}

type locationData struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type currentData struct {
	LastUpdatedEpoch int64         `json:"last_updated_epoch"`
	TempC            float64       `json:"temp_c"`
	FeelsLikeC       float64       `json:"feelslike_c"`
	Humidity         float64       `json:"humidity"`
	WindKph          float64       `json:"wind_kph"`
	WindDegree       float64       `json:"wind_degree"`
	GustKph          float64       `json:"gust_kph"`
	PressureMb       float64       `json:"pressure_mb"`
	PrecipMm         float64       `json:"precip_mm"`
	Cloud            float64       `json:"cloud"`
	VisKm            float64       `json:"vis_km"`
	UV               float64       `json:"uv"`
	Condition        conditionData `json:"condition"`
}

type conditionData struct {
	Text string `json:"text"`
	Code int    `json:"code"`
}

// GetCurrentWeather fetches current conditions for a location.
func (c *Client) GetCurrentWeather(ctx context.Context, lat, lon float64) (*weather.Observation, error) {
	url := fmt.Sprintf("%s/current.json?key=%s&q=%.4f,%.4f&aqi=no", c.baseURL, c.apiKey, lat, lon)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch current conditions: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d from current endpoint", resp.StatusCode)
	}

	var result currentResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode current response: %w", err)
	}

	return c.toObservation(&result), nil
}

// kphToMs converts km/h to m/s.
func kphToMs(kph float64) float64 {
	return kph / 3.6
}

func (c *Client) toObservation(result *currentResponse) *weather.Observation {
	cur := result.Current

	return &weather.Observation{
		Lat:           result.Location.Lat,
		Lon:           result.Location.Lon,
		Temperature:   cur.TempC,
		FeelsLike:     cur.FeelsLikeC,
		Humidity:      cur.Humidity,
		WindSpeed:     kphToMs(cur.WindKph),
		WindDirection: cur.WindDegree,
		WindGust:      kphToMs(cur.GustKph),
		Pressure:      cur.PressureMb,
		Precipitation: cur.PrecipMm,
		Condition:     conditionFromCode(cur.Condition.Code),
		Description:   cur.Condition.Text,
		CloudCover:    cur.Cloud,
		Visibility:    cur.VisKm,
		UVIndex:       cur.UV,
		ObservedAt:    time.Unix(cur.LastUpdatedEpoch, 0).UTC(),
		FetchedAt:     time.Now().UTC(),
	}
}

// conditionFromCode maps WeatherAPI condition codes to the domain condition.
// Codes follow the published WeatherAPI condition table.
func conditionFromCode(code int) weather.Condition {
	switch {
	case code == 1000:
		return weather.ConditionClear
	case code == 1003 || code == 1006 || code == 1009:
		return weather.ConditionClouds
	case code == 1030:
		return weather.ConditionMist
	case code == 1135 || code == 1147:
		return weather.ConditionFog
	case code == 1150 || code == 1153 || code == 1168 || code == 1171:
		return weather.ConditionDrizzle
	case code >= 1180 && code <= 1201:
		return weather.ConditionRain
	case code == 1240 || code == 1243 || code == 1246:
		return weather.ConditionRain
	case code == 1087 || (code >= 1273 && code <= 1282):
		return weather.ConditionThunderstorm
	default:
		return weather.ConditionUnknown
	}
}
