// Package hypo71 renders pick and station data into the fixed-width HYPO71
// input format consumed by Hypo2000, and parses the Hypo2000 summary output
// back into an origin.
package hypo71

import (
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/tremorlab/seispick/internal/domain"
	"github.com/tremorlab/seispick/internal/stationcode"
)

// EncodeStations renders the station coordinate table. Coordinates are split
// into integer degrees and decimal minutes with hemisphere letters; the
// elevation column carries the sensor elevation corrected for burial depth.
func EncodeStations(stations []domain.Station, codes *stationcode.Map) (string, error) {
	var b strings.Builder
	for _, sta := range stations {
		short, ok := codes.Short(sta.Code)
		if !ok {
			return "", fmt.Errorf("encode stations: no short code for station %q", sta.Code)
		}
		latDeg, latMin, latHem := degreesMinutes(sta.Latitude, "N", "S")
		lonDeg, lonMin, lonHem := degreesMinutes(sta.Longitude, "E", "W")
		ele := int(math.Round(sta.Elevation - sta.LocalDepth))
		fmt.Fprintf(&b, "%6s%02d%05.2f%1s%03d%05.2f%1s%4d\n",
			short, latDeg, latMin, latHem, lonDeg, lonMin, lonHem, ele)
	}
	return b.String(), nil
}

func degreesMinutes(value float64, posHem, negHem string) (int, float64, string) {
	hem := posHem
	if value < 0 {
		hem = negHem
		value = -value
	}
	deg := int(value)
	return deg, (value - float64(deg)) * 60, hem
}

// EncodePhases renders the pick table, one card per station in inventory
// order. The P reading carries the absolute time; an S reading continues on
// the next line with seconds counted from the P reading's minute.
//
// An S pick without a matching P pick cannot be expressed in this format and
// fails the whole encode. An S pick more than 99 seconds after the P minute
// overflows the seconds column and is dropped with a warning instead.
func EncodePhases(store *domain.Store, stations []domain.Station, codes *stationcode.Map, logger *slog.Logger) (string, error) {
	var b strings.Builder
	for _, sta := range stations {
		p := store.FindPick(domain.PickFilter{Network: sta.Network, Station: sta.Code, Phase: "P"})
		s := store.FindPick(domain.PickFilter{Network: sta.Network, Station: sta.Code, Phase: "S"})
		if p == nil && s == nil {
			continue
		}
		if p == nil {
			return "", fmt.Errorf("encode phases: station %s has an S pick but no P pick", sta.Code)
		}
		short, ok := codes.Short(sta.Code)
		if !ok {
			return "", fmt.Errorf("encode phases: no short code for station %q", sta.Code)
		}

		pt, pHun := roundHundredths(p.Time)
		date := pt.Format("060102150405") + fmt.Sprintf(".%02d", pHun)
		fmt.Fprintf(&b, "%4s%1sP%1s%1d %15s",
			short, onsetChar(p.Onset), polarityChar(p.Polarity), clampWeight(p.Weight), date)

		if s == nil {
			b.WriteString("\n")
			continue
		}
		st, sHun := roundHundredths(s.Time)
		sec := st.Second() + ((st.Minute()-pt.Minute()+60)%60)*60
		if sec > 99 {
			logger.Warn("S pick does not fit phase card, dropping it",
				"station", sta.Code, "seconds_after_p_minute", sec)
			b.WriteString("\n")
			continue
		}
		date2 := fmt.Sprintf("%d.%02d", sec, sHun)
		fmt.Fprintf(&b, "%12s%1sS%1s%1d\n",
			date2, onsetChar(s.Onset), polarityChar(s.Polarity), clampWeight(s.Weight))
	}
	return b.String(), nil
}

// roundHundredths rounds a time to hundredths of a second, carrying into the
// seconds when the fraction rounds up to a full second.
func roundHundredths(t time.Time) (time.Time, int) {
	hun := int(math.Round(float64(t.Nanosecond()) / 1e7))
	if hun == 100 {
		return t.Add(time.Second), 0
	}
	return t, hun
}

func onsetChar(o domain.Onset) string {
	switch o {
	case domain.OnsetImpulsive:
		return "I"
	case domain.OnsetEmergent:
		return "E"
	default:
		return "?"
	}
}

func polarityChar(p domain.Polarity) string {
	switch p {
	case domain.PolarityPositive:
		return "U"
	case domain.PolarityNegative:
		return "D"
	default:
		return "?"
	}
}

func clampWeight(w int) int {
	if w < 0 {
		return 0
	}
	if w > 3 {
		return 3
	}
	return w
}
