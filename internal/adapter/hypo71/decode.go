package hypo71

import (
	"errors"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/tremorlab/seispick/internal/domain"
	"github.com/tremorlab/seispick/internal/stationcode"
)

// span is a half-open byte range within a fixed-width line.
type span struct {
	name       string
	start, end int
}

func (s span) of(line string) string {
	if len(line) < s.end {
		line = line + strings.Repeat(" ", s.end-len(line))
	}
	return strings.TrimSpace(line[s.start:s.end])
}

func (s span) float(line string, lineNo int) (float64, error) {
	v, err := strconv.ParseFloat(s.of(line), 64)
	if err != nil {
		return 0, &domain.FormatError{Format: "hypo2000", Line: lineNo, Field: s.name, Err: err}
	}
	return v, nil
}

func (s span) int(line string, lineNo int) (int, error) {
	v, err := strconv.Atoi(s.of(line))
	if err != nil {
		return 0, &domain.FormatError{Format: "hypo2000", Line: lineNo, Field: s.name, Err: err}
	}
	return v, nil
}

// Column layout of the Hypo2000 print file. The origin line follows the
// " YEAR MO DA" header, the gap and model lines follow the " NSTA NPHS"
// header, and one phase line per reading follows the station table header.
var (
	originYear    = span{"year", 1, 5}
	originMonth   = span{"month", 6, 8}
	originDay     = span{"day", 9, 11}
	originHour    = span{"hour", 13, 15}
	originMinute  = span{"minute", 15, 17}
	originSeconds = span{"seconds", 18, 23}
	originLatDeg  = span{"latitude degrees", 25, 27}
	originLatHem  = span{"latitude hemisphere", 27, 28}
	originLatMin  = span{"latitude minutes", 28, 33}
	originLonDeg  = span{"longitude degrees", 35, 38}
	originLonHem  = span{"longitude hemisphere", 38, 39}
	originLonMin  = span{"longitude minutes", 39, 44}
	originDepth   = span{"depth", 46, 51}
	originRMS     = span{"rms", 52, 57}
	originErrXY   = span{"horizontal error", 58, 63}
	originErrZ    = span{"vertical error", 64, 69}

	qualityGap = span{"azimuthal gap", 23, 26}
	modelName  = span{"model", 49, 120}

	phaseStation   = span{"station", 0, 6}
	phaseDist      = span{"distance", 18, 23}
	phaseAzimuth   = span{"azimuth", 23, 26}
	phaseIncidence = span{"incidence", 27, 30}
	phaseOnset     = span{"onset", 31, 32}
	phaseLabel     = span{"phase", 32, 33}
	phasePolarity  = span{"polarity", 33, 34}
	phaseResidual  = span{"residual", 61, 66}
	phaseWeight    = span{"weight", 68, 72}
)

const (
	originAnchor  = " YEAR MO DA  --ORIGIN--"
	qualityAnchor = " NSTA NPHS  DMIN MODEL"
	stationAnchor = " STA NET COM L CR DIST AZM"
)

// DecodeSummary parses a Hypo2000 print file into a new origin. Arrivals are
// linked to the store's picks via the reverse short-code mapping; the store's
// current origin is never touched, installing the result is the caller's job.
//
// A missing section anchor or an unparseable origin field fails the decode.
// A phase line whose pick cannot be found only loses that arrival.
func DecodeSummary(data string, store *domain.Store, codes *stationcode.Map, logger *slog.Logger) (*domain.Origin, error) {
	lines := strings.Split(data, "\n")

	o := domain.NewOrigin()
	o.Method = "hyp2000"

	originLine, originNo, err := lineAfterAnchor(lines, originAnchor, 1)
	if err != nil {
		return nil, err
	}
	if err := decodeOriginLine(originLine, originNo, o); err != nil {
		return nil, err
	}

	gapLine, gapNo, err := lineAfterAnchor(lines, qualityAnchor, 1)
	if err != nil {
		return nil, err
	}
	gap, err := qualityGap.float(gapLine, gapNo)
	if err != nil {
		return nil, err
	}
	o.Quality.AzimuthalGap = &gap
	if modelLine, _, err := lineAfterAnchor(lines, qualityAnchor, 2); err == nil {
		o.EarthModel = modelName.of(modelLine)
	}

	stationStart, err := indexAfterAnchor(lines, stationAnchor)
	if err != nil {
		return nil, err
	}
	decodePhaseLines(lines[stationStart:], stationStart, o, store, codes, logger)

	return o, nil
}

func decodeOriginLine(line string, lineNo int, o *domain.Origin) error {
	year, err := originYear.int(line, lineNo)
	if err != nil {
		return err
	}
	month, err := originMonth.int(line, lineNo)
	if err != nil {
		return err
	}
	day, err := originDay.int(line, lineNo)
	if err != nil {
		return err
	}
	hour, err := originHour.int(line, lineNo)
	if err != nil {
		return err
	}
	minute, err := originMinute.int(line, lineNo)
	if err != nil {
		return err
	}
	seconds, err := originSeconds.float(line, lineNo)
	if err != nil {
		return err
	}
	o.Time = time.Date(year, time.Month(month), day, hour, minute, 0, 0, time.UTC).
		Add(time.Duration(math.Round(seconds * float64(time.Second))))

	lat, err := decodeDegreesMinutes(line, lineNo, originLatDeg, originLatMin, originLatHem, "S")
	if err != nil {
		return err
	}
	o.Latitude = lat
	lon, err := decodeDegreesMinutes(line, lineNo, originLonDeg, originLonMin, originLonHem, "W")
	if err != nil {
		return err
	}
	o.Longitude = lon

	// The depth column is kilometers; the origin carries meters positive down.
	depth, err := originDepth.float(line, lineNo)
	if err != nil {
		return err
	}
	o.Depth = depth * 1e3

	rms, err := originRMS.float(line, lineNo)
	if err != nil {
		return err
	}
	o.Quality.StandardError = &rms

	errXY, err := originErrXY.float(line, lineNo)
	if err != nil {
		return err
	}
	errZ, err := originErrZ.float(line, lineNo)
	if err != nil {
		return err
	}
	horiz := errXY * 1e3
	vert := errZ * 1e3
	o.Uncertainty = domain.OriginUncertainty{
		HorizontalM:          &horiz,
		DepthM:               &vert,
		PreferredDescription: "horizontal uncertainty",
	}
	return nil
}

func decodeDegreesMinutes(line string, lineNo int, degSpan, minSpan, hemSpan span, negHem string) (float64, error) {
	deg, err := degSpan.float(line, lineNo)
	if err != nil {
		return 0, err
	}
	min, err := minSpan.float(line, lineNo)
	if err != nil {
		return 0, err
	}
	v := deg + min/60
	if hemSpan.of(line) == negHem {
		v = -v
	}
	return v, nil
}

func decodePhaseLines(lines []string, offset int, o *domain.Origin, store *domain.Store, codes *stationcode.Map, logger *slog.Logger) {
	var station string
	var dist, azm, inc float64
	stationsUsed := map[string]struct{}{}
	for i, line := range lines {
		lineNo := offset + i + 1
		if strings.TrimSpace(line) == "" {
			break
		}
		phase := phaseLabel.of(line)
		if phase != "P" && phase != "S" {
			continue
		}

		// A blank station field continues the previous station's block and
		// reuses its geometry columns.
		if code := phaseStation.of(line); code != "" {
			full, ok := codes.Full(code)
			if !ok {
				logger.Warn("unknown station short code in result file", "short_code", code, "line", lineNo)
				full = code
			}
			station = full
			var err error
			if dist, err = phaseDist.float(line, lineNo); err != nil {
				logger.Warn("skipping phase line", "error", err)
				continue
			}
			if azm, err = phaseAzimuth.float(line, lineNo); err != nil {
				logger.Warn("skipping phase line", "error", err)
				continue
			}
			if inc, err = phaseIncidence.float(line, lineNo); err != nil {
				logger.Warn("skipping phase line", "error", err)
				continue
			}
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
		backfillPick(pick, phaseOnset.of(line), phasePolarity.of(line))

		arr := domain.Arrival{PickID: pick.ID, Phase: phase}
		d := domain.KilometersToDegrees(dist)
		a, t := azm, inc
		arr.Distance = &d
		arr.Azimuth = &a
		arr.TakeoffAngle = &t
		if res, err := phaseResidual.float(line, lineNo); err == nil {
			arr.TimeResidual = &res
		}
		if w, err := phaseWeight.float(line, lineNo); err == nil {
			arr.TimeWeight = &w
		}
		o.Arrivals = append(o.Arrivals, arr)
	}
	o.Quality.UsedStationCount = len(stationsUsed)
}

// backfillPick copies onset and polarity reported by the locator onto a pick
// that does not carry them yet. Analyst-set values are never overwritten.
func backfillPick(pick *domain.Pick, onset, polarity string) {
	if pick.Onset == domain.OnsetUnknown {
		switch onset {
		case "I":
			pick.Onset = domain.OnsetImpulsive
		case "E":
			pick.Onset = domain.OnsetEmergent
		}
	}
	if pick.Polarity == domain.PolarityUnknown {
		switch polarity {
		case "U":
			pick.Polarity = domain.PolarityPositive
		case "D":
			pick.Polarity = domain.PolarityNegative
		}
	}
}

func lineAfterAnchor(lines []string, anchor string, skip int) (string, int, error) {
	idx, err := indexAfterAnchor(lines, anchor)
	if err != nil {
		return "", 0, err
	}
	idx += skip - 1
	if idx >= len(lines) {
		return "", 0, &domain.FormatError{
			Format: "hypo2000", Field: anchor,
			Err: errors.New("file truncated after anchor"),
		}
	}
	return lines[idx], idx + 1, nil
}

func indexAfterAnchor(lines []string, anchor string) (int, error) {
	for i, line := range lines {
		if strings.HasPrefix(line, anchor) {
			return i + 1, nil
		}
	}
	return 0, &domain.FormatError{
		Format: "hypo2000", Field: anchor,
		Err: domain.ErrAnchorNotFound,
	}
}
