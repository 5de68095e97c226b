package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// WaveformID identifies the recorded trace a reading was made on.
type WaveformID struct {
	Network  string `json:"network"`
	Station  string `json:"station"`
	Location string `json:"location"`
	Channel  string `json:"channel"`
}

// ParseWaveformID parses a dotted SEED identifier ("NET.STA.LOC.CHA").
func ParseWaveformID(seed string) (WaveformID, error) {
	parts := strings.Split(seed, ".")
	if len(parts) != 4 {
		return WaveformID{}, fmt.Errorf("parse waveform id %q: want 4 dot-separated fields, got %d", seed, len(parts))
	}
	return WaveformID{Network: parts[0], Station: parts[1], Location: parts[2], Channel: parts[3]}, nil
}

// SeedString returns the dotted SEED form of the identifier.
func (w WaveformID) SeedString() string {
	return strings.Join([]string{w.Network, w.Station, w.Location, w.Channel}, ".")
}

// Onset describes how sharply a phase arrival emerges from the noise.
type Onset string

const (
	OnsetUnknown   Onset = ""
	OnsetImpulsive Onset = "impulsive"
	OnsetEmergent  Onset = "emergent"
)

// Polarity is the first-motion direction of an arrival.
type Polarity string

const (
	PolarityUnknown  Polarity = ""
	PolarityPositive Polarity = "positive"
	PolarityNegative Polarity = "negative"
)

// Pick is a phase arrival time read on one channel.
type Pick struct {
	ID         string     `json:"id"`
	WaveformID WaveformID `json:"waveform_id"`
	Phase      string     `json:"phase"`
	Time       time.Time  `json:"time"`

	// Symmetric uncertainty in seconds, or an asymmetric lower/upper pair.
	// All three are optional; when both asymmetric bounds are set they take
	// precedence over the symmetric value.
	Uncertainty      *float64 `json:"uncertainty,omitempty"`
	LowerUncertainty *float64 `json:"lower_uncertainty,omitempty"`
	UpperUncertainty *float64 `json:"upper_uncertainty,omitempty"`

	Onset    Onset    `json:"onset,omitempty"`
	Polarity Polarity `json:"polarity,omitempty"`
	Weight   int      `json:"weight"` // 0 (best) .. 3 (worst)

	CreatedAt time.Time `json:"created_at"`
}

// PickKey is the uniqueness key for picks: one pick per trace and phase label.
type PickKey struct {
	WaveformID WaveformID
	Phase      string
}

// Key returns the pick's uniqueness key.
func (p *Pick) Key() PickKey {
	return PickKey{WaveformID: p.WaveformID, Phase: p.Phase}
}

// Extremum is one extremal waveform reading of an amplitude pair.
type Extremum struct {
	Time  time.Time `json:"time"`
	Value float64   `json:"value"`
}

// Amplitude is a pair of extremal readings used for magnitude estimation.
// Either extremum may be absent while the analyst is still setting it.
type Amplitude struct {
	ID         string     `json:"id"`
	WaveformID WaveformID `json:"waveform_id"`
	Low        *Extremum  `json:"low,omitempty"`
	High       *Extremum  `json:"high,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// PeakToPeak returns the absolute value difference of the two extrema.
// The second return is false until both extrema are set.
func (a *Amplitude) PeakToPeak() (float64, bool) {
	if a.Low == nil || a.High == nil {
		return 0, false
	}
	v := a.High.Value - a.Low.Value
	if v < 0 {
		v = -v
	}
	return v, true
}

// TimeSpan returns the absolute time separation of the two extrema.
func (a *Amplitude) TimeSpan() (time.Duration, bool) {
	if a.Low == nil || a.High == nil {
		return 0, false
	}
	d := a.High.Time.Sub(a.Low.Time)
	if d < 0 {
		d = -d
	}
	return d, true
}

// Arrival associates a pick with an origin and carries the geometric and
// residual quantities reported by the locator. Arrivals reference picks by
// ID; they never copy pick data.
type Arrival struct {
	PickID string `json:"pick_id"`
	Phase  string `json:"phase"`

	Azimuth      *float64 `json:"azimuth,omitempty"`       // degrees CW from north
	TakeoffAngle *float64 `json:"takeoff_angle,omitempty"` // degrees
	Distance     *float64 `json:"distance,omitempty"`      // epicentral, degrees
	TimeResidual *float64 `json:"time_residual,omitempty"` // observed − predicted, seconds
	TimeWeight   *float64 `json:"time_weight,omitempty"`
}

// OriginUncertainty describes the location error, either as a single
// horizontal value or as an uncertainty ellipse.
type OriginUncertainty struct {
	HorizontalM          *float64 `json:"horizontal_m,omitempty"`
	MinHorizontalM       *float64 `json:"min_horizontal_m,omitempty"`
	MaxHorizontalM       *float64 `json:"max_horizontal_m,omitempty"`
	AzimuthMaxHorizontal *float64 `json:"azimuth_max_horizontal,omitempty"`
	DepthM               *float64 `json:"depth_m,omitempty"`
	PreferredDescription string   `json:"preferred_description,omitempty"`
}

// OriginQuality holds the solution quality metrics reported by the locator
// plus the gap values derived afterwards.
type OriginQuality struct {
	StandardError       *float64 `json:"standard_error,omitempty"` // RMS, seconds
	AzimuthalGap        *float64 `json:"azimuthal_gap,omitempty"`
	SecondaryGap        *float64 `json:"secondary_gap,omitempty"`
	UsedPhaseCount      int      `json:"used_phase_count"`
	UsedPhaseCountP     int      `json:"used_phase_count_p"`
	UsedPhaseCountS     int      `json:"used_phase_count_s"`
	UsedStationCount    int      `json:"used_station_count"`
	MinimumDistance     *float64 `json:"minimum_distance,omitempty"` // degrees
	MaximumDistance     *float64 `json:"maximum_distance,omitempty"`
	MedianDistance      *float64 `json:"median_distance,omitempty"`
}

// ScatterSample is one Monte-Carlo sample of the location PDF.
type ScatterSample struct {
	X, Y, Z float64 // locator grid coordinates, km
	PDF     float64 // probability density weight
}

// Origin is a hypocenter solution.
type Origin struct {
	ID        string    `json:"id"`
	Time      time.Time `json:"time"`
	Longitude float64   `json:"longitude"`
	Latitude  float64   `json:"latitude"`
	Depth     float64   `json:"depth"` // meters, positive down

	Uncertainty OriginUncertainty `json:"uncertainty"`
	Quality     OriginQuality     `json:"quality"`

	Method         string    `json:"method"`     // e.g. "hyp2000", "nlloc"
	EarthModel     string    `json:"earth_model,omitempty"`
	ProgramVersion string    `json:"program_version,omitempty"`
	CreatedAt      time.Time `json:"created_at"`

	Arrivals []Arrival       `json:"arrivals"`
	Scatter  []ScatterSample `json:"-"`
}

// StationMagnitude is one station's local magnitude estimate.
type StationMagnitude struct {
	ID       string `json:"id"`
	OriginID string `json:"origin_id"`
	Network  string `json:"network"`
	Station  string `json:"station"`
	Location string `json:"location"`

	Mag  float64 `json:"mag"`
	Type string  `json:"type"` // "ML"

	// Used controls whether the value enters the network aggregation. The
	// analyst toggles it instead of deleting the reading.
	Used bool `json:"used"`

	Channels     []string `json:"channels,omitempty"`
	AmplitudeIDs []string `json:"amplitude_ids,omitempty"`
}

// MagnitudeContribution records one station magnitude's share in a network
// magnitude. Weights are always equal (1/N).
type MagnitudeContribution struct {
	StationMagnitudeID string  `json:"station_magnitude_id"`
	Weight             float64 `json:"weight"`
}

// Magnitude is the network-level magnitude aggregated over the used station
// magnitudes of one origin.
type Magnitude struct {
	ID           string  `json:"id"`
	OriginID     string  `json:"origin_id"`
	Type         string  `json:"type"` // "ML"
	Mag          float64 `json:"mag"`
	Uncertainty  float64 `json:"uncertainty"` // population standard deviation
	StationCount int     `json:"station_count"`

	Contributions []MagnitudeContribution `json:"contributions"`
}

// NodalPlane is one fault-plane solution in strike/dip/rake degrees.
type NodalPlane struct {
	Strike float64 `json:"strike"`
	Dip    float64 `json:"dip"`
	Rake   float64 `json:"rake"`
}

// FocalMechanism is one candidate solution from a focal mechanism search.
type FocalMechanism struct {
	ID                   string     `json:"id"`
	Plane                NodalPlane `json:"plane"`
	Misfit               float64    `json:"misfit"`
	PolarityErrors       int        `json:"polarity_errors"`
	StationPolarityCount int        `json:"station_polarity_count"`
}

// Event is the aggregate root for the single event under analysis.
type Event struct {
	ID string `json:"id"`

	Picks      []*Pick      `json:"picks"`
	Amplitudes []*Amplitude `json:"amplitudes"`

	// The active hypocenter solution. Replaced wholesale after each
	// successful location run, nil before the first one.
	Origin *Origin `json:"origin,omitempty"`

	Magnitudes        []*Magnitude        `json:"magnitudes"`
	StationMagnitudes []*StationMagnitude `json:"station_magnitudes"`

	FocalMechanisms []*FocalMechanism `json:"focal_mechanisms"`
	// Index of the currently selected focal mechanism, -1 when none.
	CurrentFocalMechanism int `json:"current_focal_mechanism"`
}

// NewOrigin creates an empty origin with a fresh resource ID and creation
// timestamp. Decoders fill in the rest.
func NewOrigin() *Origin {
	return &Origin{ID: newResourceID(), CreatedAt: clock.Now()}
}

// NewFocalMechanism creates an empty focal mechanism with a fresh resource ID.
func NewFocalMechanism() *FocalMechanism {
	return &FocalMechanism{ID: newResourceID()}
}

// NewEvent creates an empty event with a fresh resource ID.
func NewEvent() *Event {
	return &Event{
		ID:                    newResourceID(),
		CurrentFocalMechanism: -1,
	}
}

func newResourceID() string {
	return uuid.NewString()
}
