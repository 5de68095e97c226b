package domain

import (
	"errors"
	"log/slog"
	"math"
	"math/cmplx"
	"sort"
	"strings"
	"time"
)

// AmplitudeReading is one qualifying amplitude prepared for magnitude
// estimation: the instrument response of the trace it was read on, the
// peak-to-peak value in counts, and the time span between the two extrema.
type AmplitudeReading struct {
	Response   InstrumentResponse
	PeakToPeak float64
	TimeSpan   time.Duration
}

// MagnitudeEstimator turns a station's amplitude readings plus its
// hypocentral distance into one local magnitude value. The numerical
// relation is pluggable; the engine only depends on this contract.
type MagnitudeEstimator interface {
	Estimate(readings []AmplitudeReading, hypoDistKM float64) (float64, error)
}

// ComputeStationMagnitudes derives one station magnitude per (network,
// station, location) group that has at least one qualifying amplitude. An
// amplitude qualifies when both extrema are set (so a time span exists) and
// the inventory has response metadata for its trace; groups without response
// metadata are skipped with a warning. Previously computed station
// magnitudes are replaced wholesale.
func ComputeStationMagnitudes(s *Store, inv StationInventory, est MagnitudeEstimator, logger *slog.Logger) error {
	event := s.Event()
	origin := event.Origin
	if origin == nil {
		return ErrNoOrigin
	}
	event.StationMagnitudes = nil

	groups := map[[3]string]struct{}{}
	var order [][3]string
	for _, amp := range event.Amplitudes {
		key := [3]string{amp.WaveformID.Network, amp.WaveformID.Station, amp.WaveformID.Location}
		if _, ok := groups[key]; !ok {
			groups[key] = struct{}{}
			order = append(order, key)
		}
	}

	for _, key := range order {
		net, sta, loc := key[0], key[1], key[2]

		var (
			readings []AmplitudeReading
			channels []string
			ampIDs   []string
		)
		for _, amp := range s.Amplitudes(net, sta, loc) {
			span, ok := amp.TimeSpan()
			if !ok {
				continue
			}
			p2p, _ := amp.PeakToPeak()
			resp, ok := inv.Response(amp.WaveformID)
			if !ok {
				logger.Warn("skipping amplitude: missing instrument response metadata",
					"station", sta, "waveform_id", amp.WaveformID.SeedString())
				continue
			}
			readings = append(readings, AmplitudeReading{
				Response:   resp,
				PeakToPeak: p2p,
				TimeSpan:   span,
			})
			channels = append(channels, amp.WaveformID.Channel)
			ampIDs = append(ampIDs, amp.ID)
		}
		if len(readings) == 0 {
			continue
		}

		coords, ok := inv.StationCoordinates(net, sta, loc)
		if !ok {
			logger.Warn("skipping station magnitude: no station coordinates",
				"network", net, "station", sta, "location", loc)
			continue
		}
		dist, err := HypocentralDistanceKM(origin, coords, logger)
		if err != nil {
			return err
		}
		mag, err := est.Estimate(readings, dist)
		if err != nil {
			logger.Warn("skipping station magnitude: estimation failed",
				"station", sta, "error", err)
			continue
		}

		sm := &StationMagnitude{
			ID:           newResourceID(),
			OriginID:     origin.ID,
			Network:      net,
			Station:      sta,
			Location:     loc,
			Mag:          mag,
			Type:         "ML",
			Used:         true,
			Channels:     channels,
			AmplitudeIDs: ampIDs,
		}
		event.StationMagnitudes = append(event.StationMagnitudes, sm)
		logger.Info("calculated station magnitude",
			"station", sta, "mag", mag, "channels", strings.Join(channels, ","))
	}
	return nil
}

// UpdateNetworkMagnitude aggregates the used station magnitudes of the
// active origin into a single network magnitude with equal 1/N contribution
// weights. With no origin or no usable station magnitudes the magnitude
// list is cleared; neither case is an error.
func UpdateNetworkMagnitude(s *Store, logger *slog.Logger) {
	event := s.Event()
	if event.Origin == nil {
		event.Magnitudes = nil
		logger.Info("no origin information for magnitude, nothing to do")
		return
	}
	origin := event.Origin

	var used []*StationMagnitude
	for _, sm := range event.StationMagnitudes {
		if sm.OriginID != origin.ID {
			logger.Warn("skipping station magnitude with non-matching origin id",
				"station_magnitude_origin", sm.OriginID, "current_origin", origin.ID)
			continue
		}
		if !sm.Used {
			logger.Info("skipping manually deselected station magnitude", "station", sm.Station)
			continue
		}
		used = append(used, sm)
	}
	if len(used) == 0 {
		event.Magnitudes = nil
		logger.Info("no station magnitudes (or all deselected), nothing to do")
		return
	}

	values := make([]float64, len(used))
	for i, sm := range used {
		values[i] = sm.Mag
	}
	m := &Magnitude{
		ID:           newResourceID(),
		OriginID:     origin.ID,
		Type:         "ML",
		Mag:          mean(values),
		Uncertainty:  populationStdDev(values),
		StationCount: len(used),
	}
	weight := 1.0 / float64(len(used))
	for _, sm := range used {
		m.Contributions = append(m.Contributions, MagnitudeContribution{
			StationMagnitudeID: sm.ID,
			Weight:             weight,
		})
	}
	event.Magnitudes = []*Magnitude{m}
	logger.Info("new network magnitude", "mag", m.Mag, "std", m.Uncertainty, "stations", m.StationCount)
}

// UpdateArrivalDistanceStats refreshes the min/max/median epicentral
// distance on the origin quality from its arrivals. Arrivals without a
// distance do not contribute.
func UpdateArrivalDistanceStats(o *Origin) {
	if o == nil {
		return
	}
	var dists []float64
	for _, a := range o.Arrivals {
		if a.Distance != nil {
			dists = append(dists, *a.Distance)
		}
	}
	if len(dists) == 0 {
		return
	}
	sort.Float64s(dists)
	minD, maxD, medD := dists[0], dists[len(dists)-1], median(dists)
	o.Quality.MinimumDistance = &minD
	o.Quality.MaximumDistance = &maxD
	o.Quality.MedianDistance = &medD
}

func mean(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func populationStdDev(values []float64) float64 {
	m := mean(values)
	sum := 0.0
	for _, v := range values {
		d := v - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)))
}

// woodAnderson is the reference Wood-Anderson torsion seismometer response
// the local magnitude scale is defined against (Richter 1935).
var woodAnderson = InstrumentResponse{
	Poles:       []complex128{complex(-6.283, -4.7124), complex(-6.283, 4.7124)},
	Zeros:       []complex128{0},
	Gain:        1.0 / 2.25,
	Sensitivity: 2080,
}

// RichterEstimator is the default MagnitudeEstimator: it reduces each
// reading to the amplitude a Wood-Anderson instrument would have recorded
// and applies the southern-California local magnitude relation
//
//	ML = log10(A_WA[mm]) + log10(d/100) + 0.00301·(d−100) + 3.0
//
// then averages over the readings of the station.
type RichterEstimator struct{}

func (RichterEstimator) Estimate(readings []AmplitudeReading, hypoDistKM float64) (float64, error) {
	if len(readings) == 0 {
		return 0, errors.New("no amplitude readings")
	}
	mags := make([]float64, 0, len(readings))
	for _, r := range readings {
		waMM := woodAndersonAmplitudeMM(r)
		mag := math.Log10(waMM) + math.Log10(hypoDistKM/100.0) + 0.00301*(hypoDistKM-100.0) + 3.0
		mags = append(mags, mag)
	}
	return mean(mags), nil
}

// woodAndersonAmplitudeMM converts a raw peak-to-peak reading in counts to
// the zero-to-peak amplitude in millimeters a Wood-Anderson would have
// written, evaluating both responses at the dominant frequency implied by
// the reading's time span (half period between extrema).
func woodAndersonAmplitudeMM(r AmplitudeReading) float64 {
	freq := 1.0 / (2 * r.TimeSpan.Seconds())
	ampl := r.PeakToPeak / 2
	ampl /= amplitudeAtFrequency(r.Response, freq) * r.Response.Sensitivity
	ampl *= amplitudeAtFrequency(woodAnderson, freq) * woodAnderson.Sensitivity
	return ampl * 1000 // meters to millimeters
}

// amplitudeAtFrequency evaluates the normalized amplitude of a
// poles-and-zeros transfer function at the given frequency.
func amplitudeAtFrequency(resp InstrumentResponse, freq float64) float64 {
	jw := complex(0, 2*math.Pi*freq)
	num := complex(1, 0)
	for _, z := range resp.Zeros {
		num *= jw - z
	}
	den := complex(1, 0)
	for _, p := range resp.Poles {
		den *= jw - p
	}
	return cmplx.Abs(num/den) * resp.Gain
}
