package domain

import (
	"fmt"
	"log/slog"
	"sort"
)

// UpdateAzimuthalGap recomputes the primary and secondary azimuthal gap of
// the event's origin from its arrival azimuths and stores them on the
// origin's quality.
//
// Each station contributes the median azimuth over its arrivals, so a single
// noisy phase cannot skew a station's direction. An arrival without an
// azimuth is tolerated with a warning and simply does not contribute; an
// arrival whose pick cannot be resolved, or a station left with no azimuth
// at all, makes the gap undefined and aborts the computation.
func UpdateAzimuthalGap(s *Store, logger *slog.Logger) error {
	o := s.Event().Origin
	if o == nil {
		return ErrNoOrigin
	}
	byID := make(map[string]*Pick, len(s.Event().Picks))
	for _, p := range s.Event().Picks {
		byID[p.ID] = p
	}

	perStation := map[string][]float64{}
	for _, a := range o.Arrivals {
		p, ok := byID[a.PickID]
		if !ok {
			return fmt.Errorf("no pick for arrival %s/%s: azimuthal gap undefined", a.PickID, a.Phase)
		}
		netsta := p.WaveformID.Network + "." + p.WaveformID.Station
		if a.Azimuth == nil {
			logger.Warn("arrival has no azimuth, not contributing to azimuthal gap",
				"station", netsta, "phase", a.Phase)
			// Record the station so a fully azimuth-less station is detected.
			if _, seen := perStation[netsta]; !seen {
				perStation[netsta] = nil
			}
			continue
		}
		perStation[netsta] = append(perStation[netsta], *a.Azimuth)
	}

	azimuths := make([]float64, 0, len(perStation))
	for netsta, az := range perStation {
		if len(az) == 0 {
			return fmt.Errorf("no azimuth information for station %s: azimuthal gap undefined", netsta)
		}
		azimuths = append(azimuths, median(az))
	}
	if len(azimuths) == 0 {
		return fmt.Errorf("no arrivals with azimuths: azimuthal gap undefined")
	}
	sort.Float64s(azimuths)

	gap := circularGap(azimuths, 1)
	secondary := circularGap(azimuths, 2)

	o.Quality.AzimuthalGap = &gap
	o.Quality.SecondaryGap = &secondary
	logger.Info("updated azimuthal gap", "gap", gap, "secondary_gap", secondary)
	return nil
}

// circularGap returns the maximum difference between azimuths `step`
// positions apart in the sorted list, wrapping around the full circle. The
// first `step` differences pick up +360 for the wrap.
func circularGap(sorted []float64, step int) float64 {
	n := len(sorted)
	maxGap := 0.0
	for i := 0; i < n; i++ {
		j := i - step
		diff := sorted[i] - sorted[(j%n+n)%n]
		if j < 0 {
			diff += 360
		}
		if diff > maxGap {
			maxGap = diff
		}
	}
	return maxGap
}

func median(values []float64) float64 {
	v := append([]float64(nil), values...)
	sort.Float64s(v)
	n := len(v)
	if n%2 == 1 {
		return v[n/2]
	}
	return (v[n/2-1] + v[n/2]) / 2
}
