// Package nlloc renders picks into NonLinLoc phase observation files and
// parses NonLinLoc hypocenter summary and scatter files back into an origin.
package nlloc

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/tremorlab/seispick/internal/domain"
)

// EncodePhases renders one observation line per pick. Instrument, component,
// onset and first motion are left unconstrained; NonLinLoc only weighs the
// time and its Gaussian error.
//
// The error column is derived from the pick uncertainty: an asymmetric
// lower/upper pair is summed, a symmetric value is doubled, and a pick
// without any uncertainty falls back to the configured default with a
// warning.
func EncodePhases(picks []*domain.Pick, defaultUncertainty float64, logger *slog.Logger) string {
	var b strings.Builder
	for _, p := range picks {
		errSec := defaultUncertainty
		switch {
		case p.LowerUncertainty != nil && p.UpperUncertainty != nil:
			errSec = *p.LowerUncertainty + *p.UpperUncertainty
		case p.Uncertainty != nil:
			errSec = 2 * *p.Uncertainty
		default:
			logger.Warn("pick carries no uncertainty, using default",
				"station", p.WaveformID.Station, "phase", p.Phase,
				"default_seconds", defaultUncertainty)
		}

		sec := float64(p.Time.Second()) + float64(p.Time.Nanosecond())/1e9
		fmt.Fprintf(&b, "%-6s %-4s %-4s %s %-6s %s %s %s %7.4f GAU %9.2e %s %s %s\n",
			p.WaveformID.Station, "?", "?", "?", p.Phase, "?",
			p.Time.Format("20060102"), p.Time.Format("1504"), sec,
			errSec, "-1.00e+00", "-1.00e+00", "-1.00e+00")
	}
	b.WriteString("\n")
	return b.String()
}
