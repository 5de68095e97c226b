package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gapStore builds a store with one origin whose arrivals point at P picks of
// stations with the given azimuths. A nil azimuth is carried through as an
// arrival without azimuth information.
func gapStore(t *testing.T, azimuths map[string][]*float64) *Store {
	t.Helper()
	s := NewStore(discard)
	o := &Origin{ID: newResourceID(), Latitude: 48.1, Longitude: 11.6, Depth: 8000}
	for station, azs := range azimuths {
		for i, az := range azs {
			phase := "P"
			if i > 0 {
				phase = "S"
			}
			p, err := s.FindOrCreatePick(WaveformID{Network: "BW", Station: station, Channel: "EHZ"}, phase)
			require.NoError(t, err)
			o.Arrivals = append(o.Arrivals, Arrival{PickID: p.ID, Phase: phase, Azimuth: az})
		}
	}
	s.ReplaceOrigin(o)
	return s
}

func az(v float64) *float64 { return &v }

func TestUpdateAzimuthalGap(t *testing.T) {
	t.Run("evenly spaced stations", func(t *testing.T) {
		s := gapStore(t, map[string][]*float64{
			"ST01": {az(10)},
			"ST02": {az(100)},
			"ST03": {az(190)},
			"ST04": {az(280)},
		})

		require.NoError(t, UpdateAzimuthalGap(s, discard))

		q := s.Event().Origin.Quality
		require.NotNil(t, q.AzimuthalGap)
		require.NotNil(t, q.SecondaryGap)
		assert.InDelta(t, 90.0, *q.AzimuthalGap, 1e-9)
		assert.InDelta(t, 180.0, *q.SecondaryGap, 1e-9)
	})

	t.Run("station azimuth is the median over its arrivals", func(t *testing.T) {
		// ST01's S arrival at 350 would widen the gap if it were averaged in;
		// the median of {10, 10, 350} stays at 10.
		s := gapStore(t, map[string][]*float64{
			"ST01": {az(10), az(10), az(350)},
			"ST02": {az(130)},
			"ST03": {az(250)},
		})

		require.NoError(t, UpdateAzimuthalGap(s, discard))
		assert.InDelta(t, 120.0, *s.Event().Origin.Quality.AzimuthalGap, 1e-9)
	})

	t.Run("arrival without azimuth is tolerated", func(t *testing.T) {
		s := gapStore(t, map[string][]*float64{
			"ST01": {az(10), nil},
			"ST02": {az(130)},
			"ST03": {az(250)},
		})

		require.NoError(t, UpdateAzimuthalGap(s, discard))
		assert.InDelta(t, 120.0, *s.Event().Origin.Quality.AzimuthalGap, 1e-9)
	})

	t.Run("station with no azimuth at all aborts", func(t *testing.T) {
		s := gapStore(t, map[string][]*float64{
			"ST01": {nil},
			"ST02": {az(130)},
			"ST03": {az(250)},
		})

		err := UpdateAzimuthalGap(s, discard)
		require.Error(t, err)
		assert.Nil(t, s.Event().Origin.Quality.AzimuthalGap)
	})

	t.Run("arrival with unknown pick aborts", func(t *testing.T) {
		s := gapStore(t, map[string][]*float64{"ST01": {az(10)}})
		s.Event().Origin.Arrivals = append(s.Event().Origin.Arrivals,
			Arrival{PickID: "missing", Phase: "P", Azimuth: az(99)})

		assert.Error(t, UpdateAzimuthalGap(s, discard))
	})

	t.Run("no origin", func(t *testing.T) {
		s := NewStore(discard)
		assert.ErrorIs(t, UpdateAzimuthalGap(s, discard), ErrNoOrigin)
	})
}

func TestCircularGap(t *testing.T) {
	tests := []struct {
		name     string
		azimuths []float64
		step     int
		want     float64
	}{
		{"single station", []float64{45}, 1, 360},
		{"two opposite stations", []float64{0, 180}, 1, 180},
		{"clustered stations", []float64{10, 20, 30}, 1, 340},
		{"secondary with two stations", []float64{0, 180}, 2, 360},
		{"secondary clustered", []float64{10, 20, 30}, 2, 350},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, circularGap(tt.azimuths, tt.step), 1e-9)
		})
	}
}

func TestMedian(t *testing.T) {
	assert.InDelta(t, 10.0, median([]float64{350, 10, 10}), 1e-12)
	assert.InDelta(t, 15.0, median([]float64{10, 20}), 1e-12)
	assert.InDelta(t, 7.0, median([]float64{7}), 1e-12)
}
