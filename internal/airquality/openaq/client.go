// Package openaq provides a client for the OpenAQ API.
package openaq

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/airsight/airsight/internal/airquality"
	"github.com/airsight/airsight/internal/provider/resilience"
)

const (
	// DefaultBaseURL is the base URL for the OpenAQ API.
	DefaultBaseURL = "https://api.openaq.org/v2"

	// ProviderName identifies this provider.
	ProviderName = "openaq"

	// searchRadiusMeters bounds the station search around a zone center.
	searchRadiusMeters = 10000
)

// HTTPDoer abstracts HTTP request execution.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientConfig holds configuration for the OpenAQ client.
type ClientConfig struct {
	// APIKey is the OpenAQ API key (required).
	APIKey string

	// BaseURL is the API base URL (defaults to DefaultBaseURL).
	BaseURL string

	// HTTPClient is the HTTP client to use. If nil, a default resilient
	// client is created.
	HTTPClient HTTPDoer

	// Timeout for individual API requests (default: 10s).
	Timeout time.Duration
}

// Client is an OpenAQ API client.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient HTTPDoer
}

// NewClient creates a new OpenAQ client.
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

// API response types (from the OpenAQ latest endpoint).

type latestResponse struct {
	Results []latestResult `json:"results"`
}

type latestResult struct {
	Location     string            `json:"location"`
	Coordinates  coordinates       `json:"coordinates"`
	Measurements []measurementData `json:"measurements"`
}

type coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type measurementData struct {
	Parameter   string  `json:"parameter"`
	Value       float64 `json:"value"`
	Unit        string  `json:"unit"`
	LastUpdated string  `json:"lastUpdated"`
}

// FetchReadings fetches the latest measurements near each zone center.
func (c *Client) FetchReadings(ctx context.Context, zones []airquality.Zone) ([]*airquality.Reading, error) {
	var readings []*airquality.Reading

	for _, zone := range zones {
		zoneReadings, err := c.fetchZone(ctx, zone)
		if err != nil {
			return nil, fmt.Errorf("fetch zone %s: %w", zone.ID, err)
		}
		readings = append(readings, zoneReadings...)
	}

	return readings, nil
}

// fetchZone fetches latest station readings around one zone.
func (c *Client) fetchZone(ctx context.Context, zone airquality.Zone) ([]*airquality.Reading, error) {
	url := fmt.Sprintf("%s/latest?coordinates=%.4f,%.4f&radius=%d&limit=25",
		c.baseURL, zone.Lat, zone.Lon, searchRadiusMeters)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch latest: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d from latest endpoint", resp.StatusCode)
	}

	var result latestResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode latest response: %w", err)
	}

	readings := make([]*airquality.Reading, 0, len(result.Results))
	for _, station := range result.Results {
		if r := c.toReading(zone.ID, &station); r != nil {
			readings = append(readings, r)
		}
	}

	return readings, nil
}

// toReading converts one station result to a domain Reading.
// Stations that report none of the tracked pollutants are skipped.
func (c *Client) toReading(zoneID string, station *latestResult) *airquality.Reading {
	reading := &airquality.Reading{
		ZoneID:  zoneID,
		Station: station.Location,
		Lat:     station.Coordinates.Latitude,
		Lon:     station.Coordinates.Longitude,
		Source:  ProviderName,
	}

	var latest time.Time
	seen := false

	for _, m := range station.Measurements {
		value := m.Value
		switch strings.ToLower(m.Parameter) {
		case "pm25":
			reading.PM25 = &value
		case "pm10":
			reading.PM10 = &value
		case "no2":
			reading.NO2 = &value
		case "so2":
			reading.SO2 = &value
		case "o3":
			reading.O3 = &value
		case "co":
			reading.CO = &value
		default:
			continue
		}
		seen = true

		if t, parseErr := time.Parse(time.RFC3339, m.LastUpdated); parseErr == nil && t.After(latest) {
			latest = t
		}
	}

	if !seen {
		return nil
	}

	reading.MeasuredAt = latest
	return reading
}
