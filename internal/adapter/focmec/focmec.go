// Package focmec renders first-motion polarities into the FOCMEC input
// format and parses the ranked solution summary back into focal mechanisms.
package focmec

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/tremorlab/seispick/internal/domain"
	"github.com/tremorlab/seispick/internal/stationcode"
)

// focmecPolarity maps a pick's polarity to the FOCMEC polarity letter for
// the component it was read on. Only vertical readings are usable as P
// first motions.
func focmecPolarity(component string, pol domain.Polarity) (string, bool) {
	if component != "Z" {
		return "", false
	}
	switch pol {
	case domain.PolarityPositive:
		return "U", true
	case domain.PolarityNegative:
		return "D", true
	default:
		return "", false
	}
}

// EncodePolarities renders one polarity line per pick that has a polarity
// and a located arrival with azimuth and takeoff angle. Picks missing any of
// those are skipped with a warning. The returned count is the number of
// encoded polarities; the solution misfit is normalized by it later.
func EncodePolarities(store *domain.Store, codes *stationcode.Map, logger *slog.Logger) (string, int, error) {
	event := store.Event()
	if event.Origin == nil {
		return "", 0, domain.ErrNoOrigin
	}
	arrivalsByPick := map[string]*domain.Arrival{}
	for i := range event.Origin.Arrivals {
		arr := &event.Origin.Arrivals[i]
		arrivalsByPick[arr.PickID] = arr
	}

	var b strings.Builder
	// FOCMEC ignores the first line of its input.
	b.WriteString("\n")
	count := 0
	for _, pick := range event.Picks {
		arr, ok := arrivalsByPick[pick.ID]
		if !ok {
			logger.Warn("pick has no arrival, run the location again after changing picks",
				"station", pick.WaveformID.Station, "phase", pick.Phase)
			continue
		}
		if pick.Polarity == domain.PolarityUnknown {
			logger.Warn("pick has no polarity",
				"station", pick.WaveformID.Station, "phase", pick.Phase)
			continue
		}
		if arr.Azimuth == nil {
			logger.Warn("arrival has no azimuth",
				"station", pick.WaveformID.Station, "phase", pick.Phase)
			continue
		}
		if arr.TakeoffAngle == nil {
			logger.Warn("arrival has no takeoff angle",
				"station", pick.WaveformID.Station, "phase", pick.Phase)
			continue
		}
		comp := ""
		if cha := pick.WaveformID.Channel; cha != "" {
			comp = cha[len(cha)-1:]
		}
		pol, ok := focmecPolarity(comp, pick.Polarity)
		if !ok {
			logger.Warn("polarity has no FOCMEC identifier",
				"station", pick.WaveformID.Station, "phase", pick.Phase,
				"component", comp)
			continue
		}
		short, ok := codes.Short(pick.WaveformID.Station)
		if !ok {
			return "", 0, fmt.Errorf("encode polarities: no short code for station %q", pick.WaveformID.Station)
		}
		fmt.Fprintf(&b, "%4s  %6.2f  %6.2f%1s\n", short, *arr.Azimuth, *arr.TakeoffAngle, pol)
		count++
	}
	return b.String(), count, nil
}

// DecodeSummary parses the ranked FOCMEC solution list. Each line is one
// acceptable solution; the misfit is the polarity error count normalized by
// the number of polarities fed in.
func DecodeSummary(data string, polarityCount int, logger *slog.Logger) ([]*domain.FocalMechanism, error) {
	var fms []*domain.FocalMechanism
	for i, line := range strings.Split(data, "\n") {
		toks := strings.Fields(line)
		if len(toks) == 0 {
			continue
		}
		if len(toks) < 6 {
			return nil, &domain.FormatError{Format: "focmec", Line: i + 1, Field: "solution",
				Err: fmt.Errorf("want at least 6 fields, got %d", len(toks))}
		}
		var vals [3]float64
		for j := range vals {
			v, err := strconv.ParseFloat(toks[j], 64)
			if err != nil {
				return nil, &domain.FormatError{Format: "focmec", Line: i + 1, Field: "plane", Err: err}
			}
			vals[j] = v
		}
		polarityErrors := 0
		for _, tok := range toks[3:6] {
			v, err := strconv.ParseFloat(tok, 64)
			if err != nil {
				return nil, &domain.FormatError{Format: "focmec", Line: i + 1, Field: "errors", Err: err}
			}
			polarityErrors += int(v)
		}

		fm := domain.NewFocalMechanism()
		fm.Plane = domain.NodalPlane{Dip: vals[0], Strike: vals[1], Rake: vals[2]}
		fm.PolarityErrors = polarityErrors
		fm.StationPolarityCount = polarityCount
		if polarityCount > 0 {
			fm.Misfit = float64(polarityErrors) / float64(polarityCount)
		}
		fms = append(fms, fm)
		logger.Info("focal mechanism solution",
			"strike", fm.Plane.Strike, "dip", fm.Plane.Dip, "rake", fm.Plane.Rake,
			"polarity_errors", polarityErrors, "polarity_count", polarityCount)
	}
	return fms, nil
}
