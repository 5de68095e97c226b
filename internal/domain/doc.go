// Package domain models a single seismic event under interactive analysis:
// phase picks, amplitude readings, hypocenter solutions and magnitudes.
//
// # Data Source
//
// Picks and amplitudes are produced by an analyst reading waveforms (or by an
// automatic picker) and are keyed by the SEED trace identifier of the channel
// they were read on. Origins come back from external location programs
// (Hypo2000, NonLinLoc) through the format adapters; focal mechanisms come
// back from FOCMEC. The adapters write decoded results into the Store, which
// owns all event state.
//
// # Conventions
//
// Waveform identifier:
//
//	"<network>.<station>.<location>.<channel>"  →  e.g. "BW.RJOB..EHZ"
//	The location code is frequently empty. Station codes are 1–5 characters.
//
// Depth and elevation signs:
//
//	Origin depth is in meters, positive down. Station elevation is in meters,
//	positive up. A buried sensor's local depth is in meters below the surface
//	and subtracts from the elevation. Hypocentral distance combines all three:
//
//	  hypo_km = sqrt(epi_km² + ((depth + elevation − local_depth)/1000)²)
//
// Pick weight:
//
//	Integer 0–3 following the HYPO71 weighting scheme: 0 is a full-weight
//	reading, 3 is nearly ignored by the locators.
//
// Onset and polarity:
//
//	Onset is impulsive ("I" in fixed formats), emergent ("E") or unknown ("?").
//	Polarity is positive ("U" / compression), negative ("D" / dilatation) or
//	unknown. Both are free to stay unknown; the formats have explicit
//	placeholder characters.
//
// Phase labels:
//
//	Free-form strings; "P" and "S" are the only labels the fixed-column
//	formats can express, everything else is carried through the NonLinLoc
//	free-field format unchanged.
//
// # Uniqueness
//
// At most one pick may exist per (waveform id, phase) pair. The Store's
// FindOrCreatePick enforces this on creation; picks imported from outside go
// through RemoveDuplicatePicks, which keeps the first occurrence of each pair
// and logs every removal.
//
// # ID Generation
//
// Every entity carries a UUID resource ID assigned at creation. Network
// magnitudes reference their contributing station magnitudes by ID, station
// magnitudes reference their source amplitudes by ID, and arrivals reference
// picks by ID, so wholesale replacement of an origin never invalidates the
// picks it was derived from.
package domain
