package openaq_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/airsight/airsight/internal/airquality"
	"github.com/airsight/airsight/internal/airquality/openaq"
)

func testZone() airquality.Zone {
	return airquality.Zone{ID: "nairobi_cbd", Name: "Nairobi CBD", Lat: -1.2864, Lon: 36.8172}
}

func TestClient_FetchReadings(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("X-API-Key"))
		assert.Equal(t, "-1.2864,36.8172", r.URL.Query().Get("coordinates"))
		assert.Equal(t, "10000", r.URL.Query().Get("radius"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"results": [
				{
					"location": "Nairobi US Embassy",
					"coordinates": {"latitude": -1.2921, "longitude": 36.8219},
					"measurements": [
						{"parameter": "pm25", "value": 28.5, "unit": "µg/m³", "lastUpdated": "2026-08-24T10:00:00Z"},
						{"parameter": "pm10", "value": 51.0, "unit": "µg/m³", "lastUpdated": "2026-08-24T10:00:00Z"},
						{"parameter": "no2", "value": 18.2, "unit": "µg/m³", "lastUpdated": "2026-08-24T09:00:00Z"}
					]
				},
				{
					"location": "Irrelevant Station",
					"coordinates": {"latitude": -1.30, "longitude": 36.80},
					"measurements": [
						{"parameter": "bc", "value": 2.0, "unit": "µg/m³", "lastUpdated": "2026-08-24T10:00:00Z"}
					]
				}
			]
		}`))
	}))
	defer server.Close()

	client := openaq.NewClient(openaq.ClientConfig{
		APIKey:     "test-key",
		BaseURL:    server.URL,
		HTTPClient: http.DefaultClient,
	})

	readings, err := client.FetchReadings(context.Background(), []airquality.Zone{testZone()})
	require.NoError(t, err)
	require.Len(t, readings, 1)

	r := readings[0]
	assert.Equal(t, "nairobi_cbd", r.ZoneID)
	assert.Equal(t, "Nairobi US Embassy", r.Station)
	assert.Equal(t, "openaq", r.Source)
	require.NotNil(t, r.PM25)
	assert.InDelta(t, 28.5, *r.PM25, 0.001)
	require.NotNil(t, r.PM10)
	assert.InDelta(t, 51.0, *r.PM10, 0.001)
	require.NotNil(t, r.NO2)
	assert.InDelta(t, 18.2, *r.NO2, 0.001)
	assert.Nil(t, r.SO2)
	assert.Equal(t, "2026-08-24T10:00:00Z", r.MeasuredAt.Format("2006-01-02T15:04:05Z"))
}

func TestClient_FetchReadings_EmptyResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results": []}`))
	}))
	defer server.Close()

	client := openaq.NewClient(openaq.ClientConfig{
		APIKey:     "test-key",
		BaseURL:    server.URL,
		HTTPClient: http.DefaultClient,
	})

	readings, err := client.FetchReadings(context.Background(), []airquality.Zone{testZone()})
	require.NoError(t, err)
	assert.Empty(t, readings)
}

func TestClient_FetchReadings_Non200(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := openaq.NewClient(openaq.ClientConfig{
		APIKey:     "bad-key",
		BaseURL:    server.URL,
		HTTPClient: http.DefaultClient,
	})

	_, err := client.FetchReadings(context.Background(), []airquality.Zone{testZone()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 401")
}

func TestClient_Name(t *testing.T) {
	client := openaq.NewClient(openaq.ClientConfig{APIKey: "k"})
	assert.Equal(t, "openaq", client.Name())
}
