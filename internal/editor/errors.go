package editor

import "errors"

// Rejections returned by the editor components. Every rejected command leaves
// the owning component's prior state untouched. Callers match with errors.Is.
var (
	// ErrInvalidParameter is returned for values outside a parameter's domain
	// (rate not in the allowed set, NaN volume, unknown crop field).
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrOutOfRange is returned for scrub targets outside [0, duration].
	ErrOutOfRange = errors.New("out of range")

	// ErrInvalidTrim is returned when start >= end or either bound lies
	// outside the media.
	ErrInvalidTrim = errors.New("invalid trim")

	// ErrInvalidTimelineEdit is returned for overlapping or out-of-bounds
	// timeline actions.
	ErrInvalidTimelineEdit = errors.New("invalid timeline edit")

	// ErrDurationUnknown is returned by time-relative operations attempted
	// before the engine has resolved the media duration.
	ErrDurationUnknown = errors.New("duration unknown")
)
