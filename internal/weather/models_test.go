package weather_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/airsight/airsight/internal/weather"
)

func TestObservation_WindCategory(t *testing.T) {
	tests := []struct {
		speed float64
		want  weather.WindCategory
	}{
		{0.5, weather.WindCalm},
		{2.0, weather.WindLight},
		{5.0, weather.WindModerate},
		{10.0, weather.WindStrong},
	}

	for _, tt := range tests {
		obs := &weather.Observation{WindSpeed: tt.speed}
		assert.Equal(t, tt.want, obs.WindCategory())
	}
}

func TestObservation_DispersionFactor(t *testing.T) {
	calm := &weather.Observation{WindSpeed: 0.5}
	strong := &weather.Observation{WindSpeed: 10.0}

	assert.Equal(t, 1.3, calm.DispersionFactor())
	assert.Equal(t, 0.7, strong.DispersionFactor())
	assert.Greater(t, calm.DispersionFactor(), strong.DispersionFactor())
}
