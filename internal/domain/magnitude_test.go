package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeInventory serves a fixed set of stations; responses are attached per
// seed string.
type fakeInventory struct {
	stations  []Station
	responses map[string]InstrumentResponse
}

func (f *fakeInventory) Stations() []Station { return f.stations }

func (f *fakeInventory) StationCoordinates(network, station, location string) (Coordinates, bool) {
	for _, s := range f.stations {
		if s.Network == network && s.Code == station && s.Location == location {
			return s.Coordinates, true
		}
	}
	return Coordinates{}, false
}

func (f *fakeInventory) Response(wid WaveformID) (InstrumentResponse, bool) {
	r, ok := f.responses[wid.SeedString()]
	return r, ok
}

// fixedEstimator returns one preset magnitude per call count, recording the
// distances it was asked about.
type fixedEstimator struct {
	mags      []float64
	calls     int
	distances []float64
}

func (f *fixedEstimator) Estimate(readings []AmplitudeReading, hypoDistKM float64) (float64, error) {
	f.distances = append(f.distances, hypoDistKM)
	m := f.mags[f.calls%len(f.mags)]
	f.calls++
	return m, nil
}

func magnitudeFixture(t *testing.T) (*Store, *fakeInventory) {
	t.Helper()
	s := NewStore(discard)
	s.ReplaceOrigin(&Origin{
		ID:        newResourceID(),
		Latitude:  48.0,
		Longitude: 11.0,
		Depth:     9000,
	})

	inv := &fakeInventory{
		stations: []Station{
			{Network: "BW", Code: "RJOB", Coordinates: Coordinates{Latitude: 48.1, Longitude: 11.2, Elevation: 650}},
			{Network: "BW", Code: "RMOA", Coordinates: Coordinates{Latitude: 47.9, Longitude: 10.9, Elevation: 520}},
		},
		responses: map[string]InstrumentResponse{
			"BW.RJOB..EHZ": {Gain: 1, Sensitivity: 2.5e9},
			"BW.RJOB..EHN": {Gain: 1, Sensitivity: 2.5e9},
		},
	}

	base := time.Date(2024, 3, 1, 12, 0, 4, 0, time.UTC)
	addAmplitude := func(station, channel string) {
		a, err := s.FindOrCreateAmplitude(WaveformID{Network: "BW", Station: station, Channel: channel})
		require.NoError(t, err)
		a.Low = &Extremum{Time: base, Value: -1200}
		a.High = &Extremum{Time: base.Add(120 * time.Millisecond), Value: 1400}
	}
	addAmplitude("RJOB", "EHZ")
	addAmplitude("RJOB", "EHN")
	addAmplitude("RMOA", "EHZ") // no response metadata attached

	return s, inv
}

func TestComputeStationMagnitudes(t *testing.T) {
	t.Run("one magnitude per qualifying station group", func(t *testing.T) {
		s, inv := magnitudeFixture(t)
		est := &fixedEstimator{mags: []float64{2.3}}

		require.NoError(t, ComputeStationMagnitudes(s, inv, est, discard))

		// RMOA has no response metadata and is skipped, not fatal.
		sms := s.Event().StationMagnitudes
		require.Len(t, sms, 1)
		sm := sms[0]
		assert.Equal(t, "RJOB", sm.Station)
		assert.Equal(t, 2.3, sm.Mag)
		assert.Equal(t, "ML", sm.Type)
		assert.True(t, sm.Used)
		assert.Equal(t, s.Event().Origin.ID, sm.OriginID)
		assert.ElementsMatch(t, []string{"EHZ", "EHN"}, sm.Channels)
		assert.Len(t, sm.AmplitudeIDs, 2)

		// Both readings of the group go into one estimate.
		assert.Equal(t, 1, est.calls)
		require.Len(t, est.distances, 1)
		assert.Greater(t, est.distances[0], 9.0)
	})

	t.Run("incomplete amplitudes do not qualify", func(t *testing.T) {
		s, inv := magnitudeFixture(t)
		for _, a := range s.Event().Amplitudes {
			a.High = nil
		}

		require.NoError(t, ComputeStationMagnitudes(s, inv, &fixedEstimator{mags: []float64{1}}, discard))
		assert.Empty(t, s.Event().StationMagnitudes)
	})

	t.Run("no origin", func(t *testing.T) {
		s := NewStore(discard)
		err := ComputeStationMagnitudes(s, &fakeInventory{}, &fixedEstimator{mags: []float64{1}}, discard)
		assert.ErrorIs(t, err, ErrNoOrigin)
	})
}

func TestUpdateNetworkMagnitude(t *testing.T) {
	setup := func(t *testing.T, mags ...float64) *Store {
		t.Helper()
		s := NewStore(discard)
		o := &Origin{ID: newResourceID()}
		s.ReplaceOrigin(o)
		for i, m := range mags {
			s.Event().StationMagnitudes = append(s.Event().StationMagnitudes, &StationMagnitude{
				ID:       newResourceID(),
				OriginID: o.ID,
				Network:  "BW",
				Station:  []string{"ST01", "ST02", "ST03"}[i%3],
				Mag:      m,
				Type:     "ML",
				Used:     true,
			})
		}
		return s
	}

	t.Run("mean, population std-dev and equal weights", func(t *testing.T) {
		s := setup(t, 2.0, 2.4, 2.2)

		UpdateNetworkMagnitude(s, discard)

		require.Len(t, s.Event().Magnitudes, 1)
		m := s.Event().Magnitudes[0]
		assert.InDelta(t, 2.2, m.Mag, 1e-9)
		assert.InDelta(t, 0.1633, m.Uncertainty, 1e-4)
		assert.Equal(t, 3, m.StationCount)
		require.Len(t, m.Contributions, 3)
		for _, c := range m.Contributions {
			assert.InDelta(t, 1.0/3.0, c.Weight, 1e-12)
		}
	})

	t.Run("deselected station magnitude is excluded", func(t *testing.T) {
		s := setup(t, 2.0, 2.4, 2.2)
		s.Event().StationMagnitudes[1].Used = false

		UpdateNetworkMagnitude(s, discard)

		require.Len(t, s.Event().Magnitudes, 1)
		m := s.Event().Magnitudes[0]
		assert.InDelta(t, 2.1, m.Mag, 1e-9)
		assert.Equal(t, 2, m.StationCount)
		for _, c := range m.Contributions {
			assert.InDelta(t, 0.5, c.Weight, 1e-12)
		}
	})

	t.Run("station magnitude of a stale origin is excluded", func(t *testing.T) {
		s := setup(t, 2.0)
		s.Event().StationMagnitudes[0].OriginID = "stale"

		UpdateNetworkMagnitude(s, discard)
		assert.Empty(t, s.Event().Magnitudes)
	})

	t.Run("all deselected clears magnitudes without error", func(t *testing.T) {
		s := setup(t, 2.0, 2.4)
		for _, sm := range s.Event().StationMagnitudes {
			sm.Used = false
		}
		s.Event().Magnitudes = []*Magnitude{{ID: "old"}}

		UpdateNetworkMagnitude(s, discard)
		assert.Empty(t, s.Event().Magnitudes)
	})

	t.Run("no origin clears magnitudes", func(t *testing.T) {
		s := NewStore(discard)
		s.Event().Magnitudes = []*Magnitude{{ID: "old"}}

		UpdateNetworkMagnitude(s, discard)
		assert.Empty(t, s.Event().Magnitudes)
	})
}

func TestUpdateArrivalDistanceStats(t *testing.T) {
	d := func(v float64) *float64 { return &v }
	o := &Origin{Arrivals: []Arrival{
		{Distance: d(0.5)},
		{Distance: d(0.1)},
		{Distance: nil},
		{Distance: d(0.3)},
	}}

	UpdateArrivalDistanceStats(o)

	require.NotNil(t, o.Quality.MinimumDistance)
	assert.InDelta(t, 0.1, *o.Quality.MinimumDistance, 1e-12)
	assert.InDelta(t, 0.5, *o.Quality.MaximumDistance, 1e-12)
	assert.InDelta(t, 0.3, *o.Quality.MedianDistance, 1e-12)
}

func TestRichterEstimator(t *testing.T) {
	flat := InstrumentResponse{Gain: 1, Sensitivity: 1e9}
	reading := func(p2p float64) AmplitudeReading {
		return AmplitudeReading{Response: flat, PeakToPeak: p2p, TimeSpan: 150 * time.Millisecond}
	}

	t.Run("no readings", func(t *testing.T) {
		_, err := RichterEstimator{}.Estimate(nil, 20)
		assert.Error(t, err)
	})

	t.Run("larger amplitude gives larger magnitude", func(t *testing.T) {
		small, err := RichterEstimator{}.Estimate([]AmplitudeReading{reading(1e4)}, 20)
		require.NoError(t, err)
		large, err := RichterEstimator{}.Estimate([]AmplitudeReading{reading(1e6)}, 20)
		require.NoError(t, err)
		// Two orders of magnitude in amplitude are two magnitude units.
		assert.InDelta(t, 2.0, large-small, 1e-9)
	})

	t.Run("farther means larger for the same amplitude", func(t *testing.T) {
		near, err := RichterEstimator{}.Estimate([]AmplitudeReading{reading(1e5)}, 10)
		require.NoError(t, err)
		far, err := RichterEstimator{}.Estimate([]AmplitudeReading{reading(1e5)}, 100)
		require.NoError(t, err)
		assert.Greater(t, far, near)
	})
}
