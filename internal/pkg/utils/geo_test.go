package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateHaversineDistance(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lon1, lat2, lon2 float64
		want                   float64
		delta                  float64
	}{
		{"same point", 12.9716, 77.5946, 12.9716, 77.5946, 0, 0.0001},
		{"one degree of latitude", 0, 0, 1, 0, 111194.93, 0.5},
		{"bangalore to chennai", 12.9716, 77.5946, 13.0827, 80.2707, 290170, 1500},
		{"antipodal", 0, 0, 0, 180, 20015086.8, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateHaversineDistance(tt.lat1, tt.lon1, tt.lat2, tt.lon2)
			assert.InDelta(t, tt.want, got, tt.delta)
		})
	}
}

func TestCalculateHaversineDistance_Symmetric(t *testing.T) {
	a := CalculateHaversineDistance(28.6139, 77.2090, 19.0760, 72.8777)
	b := CalculateHaversineDistance(19.0760, 72.8777, 28.6139, 77.2090)
	assert.InDelta(t, a, b, 1e-6)
}

func TestWithinRadius(t *testing.T) {
	assert.True(t, WithinRadius(99.9, 100))
	assert.True(t, WithinRadius(100, 100))
	assert.False(t, WithinRadius(100.01, 100))
}
