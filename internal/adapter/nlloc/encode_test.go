package nlloc

import (
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tremorlab/seispick/internal/domain"
)

var discard = slog.New(slog.DiscardHandler)

func ptr(v float64) *float64 { return &v }

func testPick(station, phase string, at time.Time) *domain.Pick {
	return &domain.Pick{
		ID:         "pick-" + station + "-" + phase,
		WaveformID: domain.WaveformID{Network: "BW", Station: station, Channel: "EHZ"},
		Phase:      phase,
		Time:       at,
	}
}

func TestEncodePhases(t *testing.T) {
	at := time.Date(2010, 4, 23, 8, 22, 33, 100_000_000, time.UTC)

	t.Run("renders one observation line per pick", func(t *testing.T) {
		p := testPick("RJOB", "P", at)
		p.Uncertainty = ptr(0.01)

		out := EncodePhases([]*domain.Pick{p}, 0.05, discard)

		want := "RJOB   ?    ?    ? P      ? 20100423 0822 33.1000 GAU  2.00e-02 -1.00e+00 -1.00e+00 -1.00e+00\n\n"
		assert.Equal(t, want, out)
	})

	t.Run("asymmetric uncertainty bounds are summed", func(t *testing.T) {
		p := testPick("RJOB", "P", at)
		p.LowerUncertainty = ptr(0.01)
		p.UpperUncertainty = ptr(0.03)

		out := EncodePhases([]*domain.Pick{p}, 0.05, discard)

		assert.Contains(t, out, " 4.00e-02 ")
	})

	t.Run("pick without uncertainty uses the default", func(t *testing.T) {
		p := testPick("RJOB", "P", at)

		out := EncodePhases([]*domain.Pick{p}, 0.05, discard)

		assert.Contains(t, out, " 5.00e-02 ")
	})

	t.Run("file ends with a blank line", func(t *testing.T) {
		out := EncodePhases([]*domain.Pick{testPick("RJOB", "P", at)}, 0.05, discard)

		require.True(t, strings.HasSuffix(out, "\n\n"))
	})
}
