package inventory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tremorlab/seispick/internal/domain"
)

const fixture = `{
  "stations": [
    {
      "network": "BW",
      "code": "RJOB",
      "latitude": 47.737167,
      "longitude": 12.795714,
      "elevation": 860,
      "responses": [
        {
          "channel": "EHZ",
          "poles": [[-4.21, 4.66], [-4.21, -4.66]],
          "zeros": [[0, 0], [0, 0]],
          "gain": 1.0,
          "sensitivity": 671140000.0
        }
      ]
    },
    {
      "network": "BW",
      "code": "RMOA",
      "latitude": 47.761658,
      "longitude": 12.864466,
      "elevation": 815,
      "local_depth": 5
    }
  ]
}`

func TestParse(t *testing.T) {
	inv, err := Parse([]byte(fixture))
	require.NoError(t, err)

	t.Run("stations keep file order", func(t *testing.T) {
		stations := inv.Stations()
		require.Len(t, stations, 2)
		assert.Equal(t, "RJOB", stations[0].Code)
		assert.Equal(t, "RMOA", stations[1].Code)
	})

	t.Run("coordinate lookup", func(t *testing.T) {
		c, ok := inv.StationCoordinates("BW", "RMOA", "")
		require.True(t, ok)
		assert.InDelta(t, 47.761658, c.Latitude, 1e-9)
		assert.InDelta(t, 5.0, c.LocalDepth, 1e-9)

		_, ok = inv.StationCoordinates("BW", "NONE", "")
		assert.False(t, ok)
	})

	t.Run("response lookup", func(t *testing.T) {
		wid := domain.WaveformID{Network: "BW", Station: "RJOB", Channel: "EHZ"}
		r, ok := inv.Response(wid)
		require.True(t, ok)
		require.Len(t, r.Poles, 2)
		assert.Equal(t, complex(-4.21, 4.66), r.Poles[0])
		assert.InDelta(t, 671140000.0, r.Sensitivity, 1e-3)

		_, ok = inv.Response(domain.WaveformID{Network: "BW", Station: "RMOA", Channel: "EHZ"})
		assert.False(t, ok)
	})

	t.Run("station without code fails", func(t *testing.T) {
		_, err := Parse([]byte(`{"stations": [{"network": "BW"}]}`))
		assert.ErrorContains(t, err, "station without a code")
	})
}
