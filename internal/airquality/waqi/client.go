// Package waqi provides a client for the World Air Quality Index API.
package waqi

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
	// DefaultBaseURL is the base URL for the WAQI API.
	DefaultBaseURL = "https://api.waqi.info"

	// ProviderName identifies this provider.
	ProviderName = "waqi"
)

// HTTPDoer abstracts HTTP request execution.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientConfig holds configuration for the WAQI client.
type ClientConfig struct {
	// Token is the WAQI API token (required).
	Token string

	// BaseURL is the API base URL (defaults to DefaultBaseURL).
	BaseURL string

	// HTTPClient is the HTTP client to use. If nil, a default resilient
	// client is created.
	HTTPClient HTTPDoer

	// Timeout for individual API requests (default: 10s).
	Timeout time.Duration
}

// Client is a WAQI API client.
type Client struct {
	token      string
	baseURL    string
	httpClient HTTPDoer
}

// NewClient creates a new WAQI client.
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
		token:      cfg.Token,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// API response types (from the WAQI geo feed).

type feedResponse struct {
	Status string   `json:"status"`
	Data   feedData `json:"data"`
}

type feedData struct {
	AQI  int              `json:"aqi"`
	City feedCity         `json:"city"`
	IAQI map[string]iaqiV `json:"iaqi"`
	Time feedTime         `json:"time"`
}

type feedCity struct {
	Name string    `json:"name"`
	Geo  []float64 `json:"geo"`
}

type iaqiV struct {
	V float64 `json:"v"`
}

type feedTime struct {
	ISO string `json:"iso"`
}

// FetchReadings fetches the nearest station feed for each zone center.
// WAQI reports AQI sub-indices, so PM2.5 is back-converted to a
// concentration estimate; other pollutants are not carried over.
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
	url := fmt.Sprintf("%s/feed/geo:%.4f;%.4f/?token=%s", c.baseURL, zone.Lat, zone.Lon, c.token)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d from feed endpoint", resp.StatusCode)
	}

	var result feedResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode feed response: %w", err)
	}

	if result.Status != "ok" {
		return nil, fmt.Errorf("feed returned status %q", result.Status)
	}

	pm25Sub, ok := result.Data.IAQI["pm25"]
	if !ok {
		// Station without a PM2.5 sub-index contributes nothing.
		return nil, nil
	}

	pm25 := airquality.PM25FromAQI(int(pm25Sub.V))
	if pm25 < 0 {
		return nil, nil
	}

	reading := &airquality.Reading{
		ZoneID:     zone.ID,
		Station:    result.Data.City.Name,
		Lat:        zone.Lat,
		Lon:        zone.Lon,
		Source:     ProviderName,
		PM25:       airquality.Float64Ptr(pm25),
		MeasuredAt: parseFeedTime(result.Data.Time.ISO),
	}
	if len(result.Data.City.Geo) == 2 {
		reading.Lat = result.Data.City.Geo[0]
		reading.Lon = result.Data.City.Geo[1]
	}

	return reading, nil
}

func parseFeedTime(iso string) time.Time {
	if t, err := time.Parse(time.RFC3339, iso); err == nil {
		return t
	}
	return time.Now()
}
