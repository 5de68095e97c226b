package domain

import (
	"errors"
	"fmt"
)

// ErrInvalidQuery is returned by creating lookups that were not given enough
// key fields to identify the entity they would create.
var ErrInvalidQuery = errors.New("invalid query: waveform id and phase are required")

// ErrNoOrigin signals that a computation needs an origin and the event has
// none yet (or the origin lacks coordinates).
var ErrNoOrigin = errors.New("no origin information")

// ErrNoStationCoordinates signals missing station metadata for a distance
// computation.
var ErrNoStationCoordinates = errors.New("station coordinates unavailable")

// FormatError reports a structural problem in an external program's file:
// a section anchor that never appeared, or a field that failed to parse.
type FormatError struct {
	Format string // "hypo2000", "nlloc", "focmec", "hypo71"
	Line   int    // 1-based line number, 0 when not line-bound
	Field  string // offending field or anchor, empty when not field-bound
	Err    error
}

func (e *FormatError) Error() string {
	switch {
	case e.Field != "" && e.Line > 0:
		return fmt.Sprintf("%s format: line %d, field %s: %v", e.Format, e.Line, e.Field, e.Err)
	case e.Field != "":
		return fmt.Sprintf("%s format: %s: %v", e.Format, e.Field, e.Err)
	case e.Line > 0:
		return fmt.Sprintf("%s format: line %d: %v", e.Format, e.Line, e.Err)
	default:
		return fmt.Sprintf("%s format: %v", e.Format, e.Err)
	}
}

func (e *FormatError) Unwrap() error { return e.Err }

// ErrAnchorNotFound is wrapped by FormatError when a required section anchor
// is missing from a result file.
var ErrAnchorNotFound = errors.New("anchor line not found")

// ConfigurationError reports a missing or invalid configuration value. The
// operation may continue on a fallback; Fallback records the value used.
type ConfigurationError struct {
	Key      string
	Fallback string
	Err      error
}

func (e *ConfigurationError) Error() string {
	if e.Fallback != "" {
		return fmt.Sprintf("configuration %s: %v (falling back to %s)", e.Key, e.Err, e.Fallback)
	}
	return fmt.Sprintf("configuration %s: %v", e.Key, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// ExternalProcessError reports a location program exiting abnormally. The
// captured stderr is preserved for the analyst; there is no retry.
type ExternalProcessError struct {
	Program  string
	ExitCode int
	Stderr   string
}

func (e *ExternalProcessError) Error() string {
	return fmt.Sprintf("%s exited with code %d: %s", e.Program, e.ExitCode, e.Stderr)
}
