package domain

import (
	"errors"
	"log/slog"
)

// Store owns the single active event and enforces its association and
// uniqueness invariants. All mutation of event state goes through it.
//
// The Store is deliberately not safe for concurrent use: a location cycle
// must run encode → locate → decode against a stable event, so callers
// serialize access (see pipeline).
type Store struct {
	event  *Event
	logger *slog.Logger
}

// NewStore creates a store holding a fresh empty event.
func NewStore(logger *slog.Logger) *Store {
	return &Store{event: NewEvent(), logger: logger}
}

// NewStoreWithEvent wraps an existing event, e.g. one loaded from a catalog
// file.
func NewStoreWithEvent(event *Event, logger *slog.Logger) *Store {
	return &Store{event: event, logger: logger}
}

// Event returns the active event.
func (s *Store) Event() *Event { return s.event }

// PickFilter selects picks. Zero-valued fields match anything; Location is a
// pointer because the empty location code is a legitimate match target.
type PickFilter struct {
	Network    string
	Station    string
	Location   *string
	Phase      string
	SeedString string
}

func (f PickFilter) matches(p *Pick) bool {
	if f.Network != "" && f.Network != p.WaveformID.Network {
		return false
	}
	if f.Station != "" && f.Station != p.WaveformID.Station {
		return false
	}
	if f.Location != nil && *f.Location != p.WaveformID.Location {
		return false
	}
	if f.Phase != "" && f.Phase != p.Phase {
		return false
	}
	if f.SeedString != "" && f.SeedString != p.WaveformID.SeedString() {
		return false
	}
	return true
}

// FindPick returns the first pick matching the filter, or nil. It does not
// enforce that only one pick matches.
func (s *Store) FindPick(f PickFilter) *Pick {
	for _, p := range s.event.Picks {
		if f.matches(p) {
			return p
		}
	}
	return nil
}

// FindOrCreatePick returns the pick for the given trace and phase, creating
// an empty one if none exists. Creation is idempotent per (waveform id,
// phase): calling twice with the same arguments returns the same pick.
func (s *Store) FindOrCreatePick(wid WaveformID, phase string) (*Pick, error) {
	if wid.Station == "" || phase == "" {
		return nil, ErrInvalidQuery
	}
	if p := s.FindPick(PickFilter{SeedString: wid.SeedString(), Phase: phase}); p != nil {
		return p, nil
	}
	p := &Pick{
		ID:         newResourceID(),
		WaveformID: wid,
		Phase:      phase,
		CreatedAt:  clock.Now(),
	}
	s.event.Picks = append(s.event.Picks, p)
	return p, nil
}

// Picks returns all picks for a station, optionally restricted to one
// location code.
func (s *Store) Picks(network, station string, location *string) []*Pick {
	var out []*Pick
	for _, p := range s.event.Picks {
		if p.WaveformID.Network != network || p.WaveformID.Station != station {
			continue
		}
		if location != nil && p.WaveformID.Location != *location {
			continue
		}
		out = append(out, p)
	}
	return out
}

// SetPick replaces the stored pick with the same (waveform id, phase) key,
// or appends when none exists.
func (s *Store) SetPick(pick *Pick) {
	for i, p := range s.event.Picks {
		if p.Key() == pick.Key() {
			s.event.Picks[i] = pick
			return
		}
	}
	s.event.Picks = append(s.event.Picks, pick)
}

// RemovePick deletes the pick by identity. Missing picks are ignored.
func (s *Store) RemovePick(pick *Pick) {
	for i, p := range s.event.Picks {
		if p == pick {
			s.event.Picks = append(s.event.Picks[:i], s.event.Picks[i+1:]...)
			return
		}
	}
}

// RemoveDuplicatePicks enforces the (waveform id, phase) uniqueness
// invariant over externally imported picks: the first occurrence of each key
// is kept, every later one is removed and logged. Returns the removal count.
func (s *Store) RemoveDuplicatePicks() int {
	seen := make(map[PickKey]struct{}, len(s.event.Picks))
	kept := s.event.Picks[:0]
	removed := 0
	for _, p := range s.event.Picks {
		if _, dup := seen[p.Key()]; dup {
			s.logger.Warn("removing duplicate pick",
				"waveform_id", p.WaveformID.SeedString(),
				"phase", p.Phase,
				"time", p.Time,
			)
			removed++
			continue
		}
		seen[p.Key()] = struct{}{}
		kept = append(kept, p)
	}
	s.event.Picks = kept
	return removed
}

// AmplitudeFilter selects amplitudes, with the same wildcard semantics as
// PickFilter.
type AmplitudeFilter struct {
	Network    string
	Station    string
	Location   *string
	SeedString string
}

func (f AmplitudeFilter) matches(a *Amplitude) bool {
	if f.Network != "" && f.Network != a.WaveformID.Network {
		return false
	}
	if f.Station != "" && f.Station != a.WaveformID.Station {
		return false
	}
	if f.Location != nil && *f.Location != a.WaveformID.Location {
		return false
	}
	if f.SeedString != "" && f.SeedString != a.WaveformID.SeedString() {
		return false
	}
	return true
}

// FindAmplitude returns the first amplitude matching the filter, or nil.
func (s *Store) FindAmplitude(f AmplitudeFilter) *Amplitude {
	for _, a := range s.event.Amplitudes {
		if f.matches(a) {
			return a
		}
	}
	return nil
}

// FindOrCreateAmplitude returns the amplitude for the given trace, creating
// an empty one if none exists.
func (s *Store) FindOrCreateAmplitude(wid WaveformID) (*Amplitude, error) {
	if wid.Station == "" {
		return nil, errors.New("invalid query: waveform id is required")
	}
	if a := s.FindAmplitude(AmplitudeFilter{SeedString: wid.SeedString()}); a != nil {
		return a, nil
	}
	a := &Amplitude{ID: newResourceID(), WaveformID: wid, CreatedAt: clock.Now()}
	s.event.Amplitudes = append(s.event.Amplitudes, a)
	return a, nil
}

// Amplitudes returns all amplitudes of one (network, station, location).
func (s *Store) Amplitudes(network, station, location string) []*Amplitude {
	var out []*Amplitude
	for _, a := range s.event.Amplitudes {
		if a.WaveformID.Network == network &&
			a.WaveformID.Station == station &&
			a.WaveformID.Location == location {
			out = append(out, a)
		}
	}
	return out
}

// RemoveAmplitude deletes the amplitude by identity. Missing ones are ignored.
func (s *Store) RemoveAmplitude(amp *Amplitude) {
	for i, a := range s.event.Amplitudes {
		if a == amp {
			s.event.Amplitudes = append(s.event.Amplitudes[:i], s.event.Amplitudes[i+1:]...)
			return
		}
	}
}

// StationMagnitude returns the first station magnitude for the given
// (network, station, location), or nil.
func (s *Store) StationMagnitude(network, station, location string) *StationMagnitude {
	for _, sm := range s.event.StationMagnitudes {
		if sm.Network == network && sm.Station == station && sm.Location == location {
			return sm
		}
	}
	return nil
}

// ReplaceOrigin installs a new hypocenter solution, discarding the previous
// one together with all magnitudes derived from it.
func (s *Store) ReplaceOrigin(o *Origin) {
	s.event.Origin = o
	s.event.Magnitudes = nil
	s.event.StationMagnitudes = nil
}

// ClearEvent discards all analysis state and starts a fresh event. Only the
// identity is renewed; nothing else survives.
func (s *Store) ClearEvent() {
	s.logger.Info("clearing previous event data")
	s.event = NewEvent()
}

// ClearOriginAndMagnitudes drops the location solution and all magnitudes
// while keeping picks and amplitudes.
func (s *Store) ClearOriginAndMagnitudes() {
	s.logger.Info("clearing previous origin and magnitude data")
	s.event.Origin = nil
	s.event.Magnitudes = nil
	s.event.StationMagnitudes = nil
}

// ClearFocalMechanisms drops all focal mechanism solutions.
func (s *Store) ClearFocalMechanisms() {
	s.logger.Info("clearing previous focal mechanism data")
	s.event.FocalMechanisms = nil
	s.event.CurrentFocalMechanism = -1
}

// SetFocalMechanisms installs a ranked solution list and selects the first.
func (s *Store) SetFocalMechanisms(fms []*FocalMechanism) {
	s.event.FocalMechanisms = fms
	if len(fms) == 0 {
		s.event.CurrentFocalMechanism = -1
		return
	}
	s.event.CurrentFocalMechanism = 0
}

// NextFocalMechanism cycles the selection to the next ranked solution and
// returns it.
func (s *Store) NextFocalMechanism() (*FocalMechanism, error) {
	fms := s.event.FocalMechanisms
	if len(fms) == 0 {
		return nil, errors.New("no focal mechanism data")
	}
	s.event.CurrentFocalMechanism = (s.event.CurrentFocalMechanism + 1) % len(fms)
	fm := fms[s.event.CurrentFocalMechanism]
	s.logger.Info("selected focal mechanism",
		"index", s.event.CurrentFocalMechanism+1,
		"of", len(fms),
		"strike", fm.Plane.Strike,
		"dip", fm.Plane.Dip,
		"rake", fm.Plane.Rake,
		"misfit", fm.Misfit,
	)
	return fm, nil
}
