package nlloc

import (
	"errors"
	"log/slog"
	"math"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/tremorlab/seispick/internal/domain"
)

const (
	signatureAnchor  = "SIGNATURE"
	hypocenterAnchor = "HYPOCENTER"
	geographicAnchor = "GEOGRAPHIC  OT"
	qualityAnchor    = "QUALITY"
	statisticsAnchor = "STATISTICS"
	phaseAnchor      = "PHASE ID"
	phaseEndAnchor   = "END_PHASE"
)

// DecodeSummary parses a NonLinLoc hypocenter summary ("last.hyp") into a
// new origin. The store is consulted to link arrivals to picks; its current
// origin is never touched.
//
// Every section anchor must be present, otherwise the decode fails with a
// FormatError. A phase row with a zero predicted travel time means the ray
// never left the travel time grid; the arrival is dropped with a warning.
func DecodeSummary(data string, store *domain.Store, logger *slog.Logger) (*domain.Origin, error) {
	lines := strings.Split(data, "\n")

	o := domain.NewOrigin()
	o.Method = "nlloc"

	sig, _, err := anchoredLine(lines, signatureAnchor)
	if err != nil {
		return nil, err
	}
	decodeSignature(sig, o, logger)

	if _, _, err := anchoredLine(lines, hypocenterAnchor); err != nil {
		return nil, err
	}

	geo, geoNo, err := anchoredLine(lines, geographicAnchor)
	if err != nil {
		return nil, err
	}
	if err := decodeGeographic(geo, geoNo, o); err != nil {
		return nil, err
	}

	qual, qualNo, err := anchoredLine(lines, qualityAnchor)
	if err != nil {
		return nil, err
	}
	if err := decodeQuality(qual, qualNo, o); err != nil {
		return nil, err
	}

	stats, statsNo, err := anchoredLine(lines, statisticsAnchor)
	if err != nil {
		return nil, err
	}
	if err := decodeStatistics(stats, statsNo, o); err != nil {
		return nil, err
	}

	phaseStart, err := anchorIndex(lines, phaseAnchor)
	if err != nil {
		return nil, err
	}
	decodePhaseRows(lines[phaseStart+1:], phaseStart+1, o, store, logger)

	return o, nil
}

// decodeSignature extracts program version and run time from the quoted
// signature line. The line is informational; a malformed one is tolerated.
func decodeSignature(line string, o *domain.Origin, logger *slog.Logger) {
	parts := strings.Split(line, "\"")
	if len(parts) < 2 {
		return
	}
	toks := strings.Fields(parts[1])
	if len(toks) < 3 {
		return
	}
	o.ProgramVersion = toks[len(toks)-3]
	date := strings.TrimPrefix(toks[len(toks)-2], "run:")
	created, err := time.Parse("02Jan200615h04m05", date+toks[len(toks)-1])
	if err != nil {
		logger.Warn("unparseable run time in signature line", "error", err)
		return
	}
	o.CreatedAt = created
}

func decodeGeographic(line string, lineNo int, o *domain.Origin) error {
	toks := strings.Fields(line)
	if len(toks) < 8 {
		return &domain.FormatError{Format: "nlloc", Line: lineNo, Field: "origin time",
			Err: errors.New("truncated GEOGRAPHIC line")}
	}
	var parts [5]int
	for i := range parts {
		v, err := strconv.Atoi(toks[2+i])
		if err != nil {
			return &domain.FormatError{Format: "nlloc", Line: lineNo, Field: "origin time", Err: err}
		}
		parts[i] = v
	}
	seconds, err := strconv.ParseFloat(toks[7], 64)
	if err != nil {
		return &domain.FormatError{Format: "nlloc", Line: lineNo, Field: "origin seconds", Err: err}
	}
	o.Time = time.Date(parts[0], time.Month(parts[1]), parts[2], parts[3], parts[4], 0, 0, time.UTC).
		Add(time.Duration(math.Round(seconds * float64(time.Second))))

	lat, err := labeledFloat(toks, "Lat", lineNo)
	if err != nil {
		return err
	}
	lon, err := labeledFloat(toks, "Long", lineNo)
	if err != nil {
		return err
	}
	depth, err := labeledFloat(toks, "Depth", lineNo)
	if err != nil {
		return err
	}
	o.Latitude = lat
	o.Longitude = lon
	o.Depth = depth * 1e3
	return nil
}

func decodeQuality(line string, lineNo int, o *domain.Origin) error {
	toks := strings.Fields(line)
	rms, err := labeledFloat(toks, "RMS", lineNo)
	if err != nil {
		return err
	}
	gap, err := labeledFloat(toks, "Gap", lineNo)
	if err != nil {
		return err
	}
	o.Quality.StandardError = &rms
	o.Quality.AzimuthalGap = &gap
	return nil
}

func decodeStatistics(line string, lineNo int, o *domain.Origin) error {
	toks := strings.Fields(line)
	var vals [7]float64
	for i, label := range []string{"EllAz1", "Dip1", "Len1", "Az2", "Dip2", "Len2", "Len3"} {
		v, err := labeledFloat(toks, label, lineNo)
		if err != nil {
			return err
		}
		vals[i] = v
	}
	errX, errY, errZ := ellipsoidToCartesian(vals[0], vals[1], vals[2], vals[3], vals[4], vals[5], vals[6])
	// The ellipsoid axes are one-sigma half lengths; report full widths.
	errX, errY, errZ = 2*errX, 2*errY, 2*errZ

	minH, maxH := errX*1e3, errY*1e3
	azMax := 90.0
	if errY > errX {
		minH, maxH = maxH, minH
		azMax = 0.0
	}
	depthM := errZ * 1e3
	o.Uncertainty = domain.OriginUncertainty{
		MinHorizontalM:       &minH,
		MaxHorizontalM:       &maxH,
		AzimuthMaxHorizontal: &azMax,
		DepthM:               &depthM,
		PreferredDescription: "uncertainty ellipse",
	}
	return nil
}

func decodePhaseRows(lines []string, offset int, o *domain.Origin, store *domain.Store, logger *slog.Logger) {
	stationsUsed := map[string]struct{}{}
	for i, line := range lines {
		lineNo := offset + i + 1
		if strings.HasPrefix(line, phaseEndAnchor) {
			break
		}
		toks := strings.Fields(line)
		if len(toks) < 25 {
			continue
		}
		station := toks[0]
		phase := toks[4]
		if phase != "P" && phase != "S" {
			logger.Warn("ignoring phase reading of unhandled type",
				"station", station, "phase", phase, "line", lineNo)
			continue
		}
		ttPred, err := strconv.ParseFloat(toks[15], 64)
		if err != nil {
			logger.Warn("skipping phase row", "line", lineNo, "error", err)
			continue
		}
		if ttPred == 0 {
			logger.Warn("predicted travel time is zero, travel time grid does not cover the station",
				"station", station, "phase", phase, "line", lineNo)
			continue
		}

		stationsUsed[station] = struct{}{}
		o.Quality.UsedPhaseCount++
		if phase == "P" {
			o.Quality.UsedPhaseCountP++
		} else {
			o.Quality.UsedPhaseCountS++
		}

		pick := store.FindPick(domain.PickFilter{Station: station, Phase: phase})
		if pick == nil {
			logger.Warn("result file reports a phase with no matching pick",
				"station", station, "phase", phase, "line", lineNo)
			continue
		}
		backfillPick(pick, toks[3], toks[5])

		arr := domain.Arrival{PickID: pick.ID, Phase: phase}
		if res, err := strconv.ParseFloat(toks[16], 64); err == nil {
			arr.TimeResidual = &res
		}
		if w, err := strconv.ParseFloat(toks[17], 64); err == nil {
			arr.TimeWeight = &w
		}
		if sdist, err := strconv.ParseFloat(toks[21], 64); err == nil {
			d := domain.KilometersToDegrees(sdist)
			arr.Distance = &d
		}
		sAzim, errA := strconv.ParseFloat(toks[22], 64)
		rayAz, errR := strconv.ParseFloat(toks[23], 64)
		rayDip, errD := strconv.ParseFloat(toks[24], 64)
		if errA == nil && errR == nil && errD == nil {
			if rayAz == 0 && rayDip == 0 {
				// The ray azimuth and dip were not computed; fall back to
				// the station azimuth and leave the takeoff angle unset.
				arr.Azimuth = &sAzim
			} else {
				arr.Azimuth = &rayAz
				arr.TakeoffAngle = &rayDip
			}
		}
		o.Arrivals = append(o.Arrivals, arr)
	}
	o.Quality.UsedStationCount = len(stationsUsed)
}

func backfillPick(pick *domain.Pick, onset, polarity string) {
	if pick.Onset == domain.OnsetUnknown {
		switch strings.ToUpper(onset) {
		case "I":
			pick.Onset = domain.OnsetImpulsive
		case "E":
			pick.Onset = domain.OnsetEmergent
		}
	}
	if pick.Polarity == domain.PolarityUnknown {
		switch polarity {
		case "U", "u", "+":
			pick.Polarity = domain.PolarityPositive
		case "D", "d", "-":
			pick.Polarity = domain.PolarityNegative
		}
	}
}

// DecodeControlModel extracts the velocity model name from a NonLinLoc
// control file: the basename of the travel time grid root on the last
// LOCFILES statement.
func DecodeControlModel(data string) (string, error) {
	lines := strings.Split(data, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if !strings.HasPrefix(lines[i], "LOCFILES") {
			continue
		}
		toks := strings.Fields(lines[i])
		if len(toks) < 4 {
			return "", &domain.FormatError{Format: "nlloc", Line: i + 1, Field: "LOCFILES",
				Err: errors.New("statement too short")}
		}
		return path.Base(toks[3]), nil
	}
	return "", &domain.FormatError{Format: "nlloc", Field: "LOCFILES", Err: domain.ErrAnchorNotFound}
}

// ellipsoidToCartesian converts the error ellipsoid's principal half axes
// (azimuth and dip in degrees, length in kilometers; the third axis is
// normal to the first two) into per-axis extents along east, north and
// vertical.
func ellipsoidToCartesian(az1, dip1, len1, az2, dip2, len2, len3 float64) (x, y, z float64) {
	v1 := axisVector(az1, dip1, len1)
	v2 := axisVector(az2, dip2, len2)
	v3 := cross(unit(v1), unit(v2))
	for i := range v3 {
		v3[i] *= len3
	}
	x = maxAbs(v1[0], v2[0], v3[0])
	y = maxAbs(v1[1], v2[1], v3[1])
	z = maxAbs(v1[2], v2[2], v3[2])
	return x, y, z
}

func axisVector(azDeg, dipDeg, length float64) [3]float64 {
	az := azDeg * math.Pi / 180
	dip := dipDeg * math.Pi / 180
	return [3]float64{
		length * math.Cos(dip) * math.Sin(az),
		length * math.Cos(dip) * math.Cos(az),
		length * math.Sin(dip),
	}
}

func unit(v [3]float64) [3]float64 {
	n := math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
	if n == 0 {
		return v
	}
	return [3]float64{v[0] / n, v[1] / n, v[2] / n}
}

func cross(a, b [3]float64) [3]float64 {
	return [3]float64{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

func maxAbs(values ...float64) float64 {
	m := 0.0
	for _, v := range values {
		if a := math.Abs(v); a > m {
			m = a
		}
	}
	return m
}

func labeledFloat(toks []string, label string, lineNo int) (float64, error) {
	for i, tok := range toks {
		if tok == label && i+1 < len(toks) {
			v, err := strconv.ParseFloat(toks[i+1], 64)
			if err != nil {
				return 0, &domain.FormatError{Format: "nlloc", Line: lineNo, Field: label, Err: err}
			}
			return v, nil
		}
	}
	return 0, &domain.FormatError{Format: "nlloc", Line: lineNo, Field: label,
		Err: errors.New("label not found")}
}

func anchoredLine(lines []string, anchor string) (string, int, error) {
	idx, err := anchorIndex(lines, anchor)
	if err != nil {
		return "", 0, err
	}
	return lines[idx], idx + 1, nil
}

func anchorIndex(lines []string, anchor string) (int, error) {
	for i, line := range lines {
		if strings.HasPrefix(line, anchor) {
			return i, nil
		}
	}
	return 0, &domain.FormatError{
		Format: "nlloc", Field: anchor,
		Err: domain.ErrAnchorNotFound,
	}
}
