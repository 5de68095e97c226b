package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVincentyDistance(t *testing.T) {
	t.Run("one degree along the equator", func(t *testing.T) {
		// Exactly a·π/180 on the ellipsoid.
		assert.InDelta(t, 111319.491, vincentyDistanceM(0, 0, 0, 1), 0.01)
	})

	t.Run("one degree along a meridian", func(t *testing.T) {
		assert.InDelta(t, 110574.4, vincentyDistanceM(0, 10, 1, 10), 1.0)
	})

	t.Run("symmetric", func(t *testing.T) {
		d1 := vincentyDistanceM(48.1351, 11.5820, 52.5200, 13.4050)
		d2 := vincentyDistanceM(52.5200, 13.4050, 48.1351, 11.5820)
		assert.InDelta(t, d1, d2, 1e-6)
		assert.Greater(t, d1, 450_000.0)
		assert.Less(t, d1, 550_000.0)
	})

	t.Run("coincident points", func(t *testing.T) {
		assert.Zero(t, vincentyDistanceM(48.1, 11.6, 48.1, 11.6))
	})
}

func TestEpicentralDistanceKM(t *testing.T) {
	t.Run("missing origin", func(t *testing.T) {
		_, err := EpicentralDistanceKM(nil, Coordinates{Latitude: 48, Longitude: 11})
		assert.ErrorIs(t, err, ErrNoOrigin)
	})

	t.Run("origin without coordinates", func(t *testing.T) {
		_, err := EpicentralDistanceKM(&Origin{}, Coordinates{Latitude: 48, Longitude: 11})
		assert.ErrorIs(t, err, ErrNoOrigin)
	})

	t.Run("kilometers", func(t *testing.T) {
		o := &Origin{Latitude: 10, Longitude: 20}
		d, err := EpicentralDistanceKM(o, Coordinates{Latitude: 10, Longitude: 21})
		require.NoError(t, err)
		// One degree of longitude at 10° latitude.
		assert.InDelta(t, 109.6, d, 0.3)
	})
}

func TestHypocentralDistanceKM(t *testing.T) {
	t.Run("vertical separation only", func(t *testing.T) {
		o := &Origin{Latitude: 10, Longitude: 20, Depth: 10000}
		d, err := HypocentralDistanceKM(o, Coordinates{Latitude: 10, Longitude: 20, Elevation: 200}, discard)
		require.NoError(t, err)
		assert.InDelta(t, 10.2, d, 1e-9)
	})

	t.Run("sensor burial subtracts from elevation", func(t *testing.T) {
		o := &Origin{Latitude: 10, Longitude: 20, Depth: 10000}
		c := Coordinates{Latitude: 10, Longitude: 20, Elevation: 200, LocalDepth: 150}
		d, err := HypocentralDistanceKM(o, c, discard)
		require.NoError(t, err)
		assert.InDelta(t, 10.05, d, 1e-9)
	})

	t.Run("combines epicentral and vertical", func(t *testing.T) {
		o := &Origin{Latitude: 10, Longitude: 20, Depth: 8000}
		c := Coordinates{Latitude: 10, Longitude: 20.1, Elevation: 500}
		d, err := HypocentralDistanceKM(o, c, discard)
		require.NoError(t, err)

		epi, err := EpicentralDistanceKM(o, c)
		require.NoError(t, err)
		assert.Greater(t, d, epi)
		assert.Less(t, d, epi+8.5)
	})

	t.Run("missing origin", func(t *testing.T) {
		_, err := HypocentralDistanceKM(nil, Coordinates{}, discard)
		assert.ErrorIs(t, err, ErrNoOrigin)
	})
}

func TestKilometersToDegrees(t *testing.T) {
	assert.InDelta(t, 1.0, KilometersToDegrees(111.19492664455873), 1e-12)
	assert.InDelta(t, 0.0, KilometersToDegrees(0), 1e-12)
}
