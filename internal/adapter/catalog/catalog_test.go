package catalog

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tremorlab/seispick/internal/domain"
)

func sampleEvent() *domain.Event {
	event := domain.NewEvent()
	event.Picks = []*domain.Pick{{
		ID:         "pick-1",
		WaveformID: domain.WaveformID{Network: "BW", Station: "RJOB", Channel: "EHZ"},
		Phase:      "P",
		Time:       time.Date(2026, 5, 4, 10, 57, 58, 0, time.UTC),
		Onset:      domain.OnsetImpulsive,
		Polarity:   domain.PolarityPositive,
		Weight:     1,
	}}
	event.Origin = &domain.Origin{
		ID:        "origin-1",
		Time:      time.Date(2026, 5, 4, 10, 57, 50, 0, time.UTC),
		Latitude:  48.48,
		Longitude: 11.24,
		Depth:     4730,
		Method:    "nlloc",
		Arrivals:  []domain.Arrival{{PickID: "pick-1", Phase: "P"}},
		Scatter:   []domain.ScatterSample{{X: 1, Y: 2, Z: 3, PDF: 0.5}},
	}
	return event
}

func TestRoundTrip(t *testing.T) {
	event := sampleEvent()

	data, err := Encode(event)
	require.NoError(t, err)

	got, err := Decode(data)
	require.NoError(t, err)

	// Scatter samples are session state only.
	diff := cmp.Diff(event, got, cmpopts.IgnoreFields(domain.Origin{}, "Scatter"))
	assert.Empty(t, diff)
	assert.Empty(t, got.Origin.Scatter)
}

func TestDecode(t *testing.T) {
	t.Run("rejects an event without id", func(t *testing.T) {
		_, err := Decode([]byte(`{}`))

		assert.ErrorContains(t, err, "missing event id")
	})

	t.Run("rejects malformed json", func(t *testing.T) {
		_, err := Decode([]byte(`{`))

		assert.Error(t, err)
	})
}

func TestLoadSave(t *testing.T) {
	t.Run("round trips through a file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "event.json")
		require.NoError(t, Save(path, sampleEvent()))

		got, err := Load(path)

		require.NoError(t, err)
		assert.Equal(t, sampleEvent().Picks[0].ID, got.Picks[0].ID)
	})

	t.Run("missing file yields a fresh event", func(t *testing.T) {
		got, err := Load(filepath.Join(t.TempDir(), "absent.json"))

		require.NoError(t, err)
		assert.NotEmpty(t, got.ID)
		assert.Empty(t, got.Picks)
		assert.Equal(t, -1, got.CurrentFocalMechanism)
	})
}
