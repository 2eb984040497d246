package iqair_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/airsight/airsight/internal/airquality"
	"github.com/airsight/airsight/internal/airquality/iqair"
)

func testZone() airquality.Zone {
	return airquality.Zone{ID: "westlands", Name: "Westlands", Lat: -1.2673, Lon: 36.8111}
}

func TestClient_FetchReadings_WithConcentration(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "-1.2673", r.URL.Query().Get("lat"))
		assert.Equal(t, "36.8111", r.URL.Query().Get("lon"))
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"status": "success",
			"data": {
				"city": "Nairobi",
				"current": {
					"pollution": {
						"ts": "2026-08-24T10:00:00.000Z",
						"aqius": 85,
						"mainus": "p2",
						"p2": {"conc": 28.7},
						"p1": {"conc": 44.0}
					}
				}
			}
		}`))
	}))
	defer server.Close()

	client := iqair.NewClient(iqair.ClientConfig{
		APIKey:     "test-key",
		BaseURL:    server.URL,
		HTTPClient: http.DefaultClient,
	})

	readings, err := client.FetchReadings(context.Background(), []airquality.Zone{testZone()})
	require.NoError(t, err)
	require.Len(t, readings, 1)

	r := readings[0]
	assert.Equal(t, "westlands", r.ZoneID)
	assert.Equal(t, "Nairobi", r.Station)
	assert.Equal(t, "iqair", r.Source)
	require.NotNil(t, r.PM25)
	assert.InDelta(t, 28.7, *r.PM25, 0.001)
	require.NotNil(t, r.PM10)
	assert.InDelta(t, 44.0, *r.PM10, 0.001)
}

func TestClient_FetchReadings_AQIOnly(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"status": "success",
			"data": {
				"city": "Nairobi",
				"current": {
					"pollution": {
						"ts": "2026-08-24T10:00:00.000Z",
						"aqius": 50,
						"mainus": "p2"
					}
				}
			}
		}`))
	}))
	defer server.Close()

	client := iqair.NewClient(iqair.ClientConfig{
		APIKey:     "test-key",
		BaseURL:    server.URL,
		HTTPClient: http.DefaultClient,
	})

	readings, err := client.FetchReadings(context.Background(), []airquality.Zone{testZone()})
	require.NoError(t, err)
	require.Len(t, readings, 1)

	// AQI 50 is the top of the good band, i.e. 12.0 µg/m³.
	require.NotNil(t, readings[0].PM25)
	assert.InDelta(t, 12.0, *readings[0].PM25, 0.001)
}

func TestClient_FetchReadings_NoUsableData(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"status": "success",
			"data": {
				"city": "Nairobi",
				"current": {
					"pollution": {
						"ts": "2026-08-24T10:00:00.000Z",
						"aqius": 40,
						"mainus": "o3"
					}
				}
			}
		}`))
	}))
	defer server.Close()

	client := iqair.NewClient(iqair.ClientConfig{
		APIKey:     "test-key",
		BaseURL:    server.URL,
		HTTPClient: http.DefaultClient,
	})

	readings, err := client.FetchReadings(context.Background(), []airquality.Zone{testZone()})
	require.NoError(t, err)
	assert.Empty(t, readings)
}

func TestClient_FetchReadings_FailureStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status": "call_limit_reached", "data": {}}`))
	}))
	defer server.Close()

	client := iqair.NewClient(iqair.ClientConfig{
		APIKey:     "test-key",
		BaseURL:    server.URL,
		HTTPClient: http.DefaultClient,
	})

	_, err := client.FetchReadings(context.Background(), []airquality.Zone{testZone()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "call_limit_reached")
}

func TestClient_Name(t *testing.T) {
	client := iqair.NewClient(iqair.ClientConfig{APIKey: "k"})
	assert.Equal(t, "iqair", client.Name())
}
