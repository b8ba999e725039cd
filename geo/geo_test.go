package geo_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"tidbyt.dev/transit/geo"
)

func TestHaversineMetersZeroForSamePoint(t *testing.T) {
	assert.InDelta(t, 0, geo.HaversineMeters(51.5, -0.1, 51.5, -0.1), 0.001)
}

func TestHaversineMetersKnownDistance(t *testing.T) {
	// Roughly the distance between London and Paris city centers (~344km).
	d := geo.HaversineMeters(51.5074, -0.1278, 48.8566, 2.3522)
	assert.InDelta(t, 344000, d, 10000)
}

func TestAreStopsNearbyDefaultThreshold(t *testing.T) {
	assert.True(t, geo.AreStopsNearby(51.5074, -0.1278, 51.5075, -0.1279, 0))
	assert.False(t, geo.AreStopsNearby(51.5074, -0.1278, 51.6074, -0.1278, 0))
}

func TestWalkingTimeSecondsClampedRange(t *testing.T) {
	// Same point: still at least the 3 minute floor.
	assert.Equal(t, 180, geo.WalkingTimeSeconds(1, 1, 1, 1))

	// Far apart: clamped to the 15 minute ceiling.
	assert.Equal(t, 900, geo.WalkingTimeSeconds(0, 0, 10, 10))
}
