// Package iqair provides a client for the IQAir AirVisual API.
package iqair

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
	// DefaultBaseURL is the base URL for the IQAir AirVisual API.
	DefaultBaseURL = "https://api.airvisual.com/v2"

	// ProviderName identifies this provider.
	ProviderName = "iqair"
)

// HTTPDoer abstracts HTTP request execution.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientConfig holds configuration for the IQAir client.
type ClientConfig struct {
	// APIKey is the AirVisual API key (required).
	APIKey string

	// BaseURL is the API base URL (defaults to DefaultBaseURL).
	BaseURL string

	// HTTPClient is the HTTP client to use. If nil, a default resilient
	// client is created.
	HTTPClient HTTPDoer

	// Timeout for individual API requests (default: 10s).
	Timeout time.Duration
}

// Client is an IQAir AirVisual API client.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient HTTPDoer
}

// NewClient creates a new IQAir client.
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

// API response types (from the AirVisual nearest_city endpoint).

type nearestCityResponse struct {
	Status string          `json:"status"`
	Data   nearestCityData `json:"data"`
}

type nearestCityData struct {
	City    string       `json:"city"`
	Current currentBlock `json:"current"`
}

type currentBlock struct {
	Pollution pollutionBlock `json:"pollution"`
}

type pollutionBlock struct {
	Ts     string     `json:"ts"`
	AQIUS  int        `json:"aqius"`
	MainUS string     `json:"mainus"`
	P2     *concBlock `json:"p2,omitempty"`
	P1     *concBlock `json:"p1,omitempty"`
}

type concBlock struct {
	Conc float64 `json:"conc"`
}

// FetchReadings fetches the nearest-city pollution snapshot for each zone.
func (c *Client) FetchReadings(ctx context.Context, zones []airquality.Zone) ([]*airquality.Reading, error) {
	var readings []*airquality.Reading

	for _, zone := range zones {
		reading, err := c.fetchZone(ctx, zone)
		if err != nil {
			return nil, fmt.Errorf("fetch zone %s: %w", zone.ID, err)
		}
		if reading != nil {
			readings = append(readings, reading)
		}
	}

	return readings, nil
}

func (c *Client) fetchZone(ctx context.Context, zone airquality.Zone) (*airquality.Reading, error) {
	url := fmt.Sprintf("%s/nearest_city?lat=%.4f&lon=%.4f&key=%s", c.baseURL, zone.Lat, zone.Lon, c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch nearest city: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d from nearest_city endpoint", resp.StatusCode)
	}

	var result nearestCityResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode nearest_city response: %w", err)
	}

	if result.Status != "success" {
		return nil, fmt.Errorf("nearest_city returned status %q", result.Status)
	}

	pollution := result.Data.Current.Pollution
	reading := &airquality.Reading{
		ZoneID:     zone.ID,
		Station:    result.Data.City,
		Lat:        zone.Lat,
		Lon:        zone.Lon,
		Source:     ProviderName,
		MeasuredAt: parseTs(pollution.Ts),
	}

	switch {
	case pollution.P2 != nil:
		reading.PM25 = airquality.Float64Ptr(pollution.P2.Conc)
	case pollution.MainUS == "p2" && pollution.AQIUS >= 0:
		// Only the US AQI is published; back it out to a concentration.
		reading.PM25 = airquality.Float64Ptr(airquality.PM25FromAQI(pollution.AQIUS))
	}

	if pollution.P1 != nil {
		reading.PM10 = airquality.Float64Ptr(pollution.P1.Conc)
	}

	if reading.PM25 == nil && reading.PM10 == nil {
		return nil, nil
	}

	return reading, nil
}

func parseTs(ts string) time.Time {
	if t, err := time.Parse(time.RFC3339, ts); err == nil {
		return t
	}
	return time.Now()
}
