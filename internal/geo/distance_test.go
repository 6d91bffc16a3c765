package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHaversine(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lng1, lat2, lng2 float64
		wantKm                 float64
		delta                  float64
	}{
		{
			name: "identical points",
			lat1: 34.0522, lng1: -118.2437,
			lat2: 34.0522, lng2: -118.2437,
			wantKm: 0, delta: 0.0001,
		},
		{
			name: "new york to los angeles",
			lat1: 40.7128, lng1: -74.0060,
			lat2: 34.0522, lng2: -118.2437,
			wantKm: 3936, delta: 15,
		},
		{
			name: "london to paris",
			lat1: 51.5074, lng1: -0.1278,
			lat2: 48.8566, lng2: 2.3522,
			wantKm: 344, delta: 5,
		},
		{
			name: "across the antimeridian",
			lat1: 0, lng1: 179.5,
			lat2: 0, lng2: -179.5,
			wantKm: 111.2, delta: 1,
		},
		{
			name: "antipodal",
			lat1: 0, lng1: 0,
			lat2: 0, lng2: 180,
			wantKm: 20015, delta: 5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Haversine(tt.lat1, tt.lng1, tt.lat2, tt.lng2)
			assert.InDelta(t, tt.wantKm, got, tt.delta)

			// Symmetric by definition.
			assert.InDelta(t, got, Haversine(tt.lat2, tt.lng2, tt.lat1, tt.lng1), 0.0001)
		})
	}
}

func TestHaversineNonNegative(t *testing.T) {
	assert.GreaterOrEqual(t, Haversine(89.9, 10, -89.9, -170), 0.0)
}
