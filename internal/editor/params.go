package editor

import (
	"fmt"
	"math"
	"strings"
)

// TrimRange is the sub-range of the media intended for playback or export
type TrimRange struct {
	Start float64
	End   float64
}

// Length is End - Start
func (r TrimRange) Length() float64 {
	return r.End - r.Start
}

// Contains reports whether t falls inside the range
func (r TrimRange) Contains(t float64) bool {
	return t >= r.Start && t <= r.End
}

// CropField selects one side of a CropRect
type CropField int

const (
	CropX CropField = iota
	CropY
	CropWidth
	CropHeight
)

// CropFields lists every crop field in display order
var CropFields = []CropField{CropX, CropY, CropWidth, CropHeight}

func (f CropField) String() string {
	switch f {
	case CropX:
		return "x"
	case CropY:
		return "y"
	case CropWidth:
		return "width"
	case CropHeight:
		return "height"
	}
	return fmt.Sprintf("CropField(%d)", int(f))
}

// ParseCropField maps "x", "y", "width" and "height" to their field
func ParseCropField(s string) (CropField, error) {
	for _, f := range CropFields {
		if strings.EqualFold(s, f.String()) {
			return f, nil
		}
	}
	return 0, fmt.Errorf("%w: crop field %q", ErrInvalidParameter, s)
}

func (f CropField) valid() bool {
	return f >= CropX && f <= CropHeight
}

// CropRect is the visible sub-region of the frame, in percent of the frame
// size. Each field is kept in [0,100] on its own; the pair sums may exceed 100.
type CropRect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// FullFrame is the uncropped rectangle
func FullFrame() CropRect {
	return CropRect{X: 0, Y: 0, Width: 100, Height: 100}
}

// Field returns the value of one field
func (c CropRect) Field(f CropField) float64 {
	switch f {
	case CropX:
		return c.X
	case CropY:
		return c.Y
	case CropWidth:
		return c.Width
	case CropHeight:
		return c.Height
	}
	return 0
}

func (c CropRect) with(f CropField, v float64) CropRect {
	switch f {
	case CropX:
		c.X = v
	case CropY:
		c.Y = v
	case CropWidth:
		c.Width = v
	case CropHeight:
		c.Height = v
	}
	return c
}

// Overflows reports a rectangle reaching past the right or bottom edge
func (c CropRect) Overflows() bool {
	return c.X+c.Width > 100 || c.Y+c.Height > 100
}

// InsetRegion is the clip applied to the playback surface, as percentages
// cut from each edge. Sides can go negative when the CropRect overflows.
type InsetRegion struct {
	Top    float64
	Right  float64
	Bottom float64
	Left   float64
}

// CSS renders the region as a clip-path inset() value
func (r InsetRegion) CSS() string {
	return fmt.Sprintf("inset(%g%% %g%% %g%% %g%%)", r.Top, r.Right, r.Bottom, r.Left)
}

// EditParameterStore owns the trim range and crop rectangle.
//
// Policies: a trim outside 0 <= start < end <= duration is rejected with
// ErrInvalidTrim and the previous range kept; crop values are clamped to
// [0,100].
type EditParameterStore struct {
	trim     TrimRange
	crop     CropRect
	duration float64
	known    bool
}

// NewEditParameterStore starts with an empty trim and the full frame
func NewEditParameterStore() *EditParameterStore {
	return &EditParameterStore{crop: FullFrame()}
}

// Trim returns the current trim range
func (s *EditParameterStore) Trim() TrimRange {
	return s.trim
}

// Crop returns the current crop rectangle
func (s *EditParameterStore) Crop() CropRect {
	return s.crop
}

// SetTrim replaces both bounds at once
func (s *EditParameterStore) SetTrim(start, end float64) error {
	if !s.known {
		return fmt.Errorf("set trim: %w", ErrDurationUnknown)
	}
	if !(start >= 0 && start < end && end <= s.duration) {
		return fmt.Errorf("%w: [%v, %v] with duration %v", ErrInvalidTrim, start, end, s.duration)
	}
	s.trim = TrimRange{Start: start, End: end}
	return nil
}

// SetCropField clamps value to [0,100] and updates only the named field
func (s *EditParameterStore) SetCropField(field CropField, value float64) error {
	if !field.valid() {
		return fmt.Errorf("%w: crop field %d", ErrInvalidParameter, int(field))
	}
	if math.IsNaN(value) {
		return fmt.Errorf("%w: crop %s is NaN", ErrInvalidParameter, field)
	}
	s.crop = s.crop.with(field, clamp(value, 0, 100))
	return nil
}

// CropRenderRegion derives the inset clip for the playback surface
func (s *EditParameterStore) CropRenderRegion() InsetRegion {
	return insetFor(s.crop)
}

func insetFor(c CropRect) InsetRegion {
	return InsetRegion{
		Top:    c.Y,
		Right:  100 - c.Width - c.X,
		Bottom: 100 - c.Height - c.Y,
		Left:   c.X,
	}
}

// resetForDuration makes the trim span the whole media
func (s *EditParameterStore) resetForDuration(d float64) {
	s.duration = d
	s.known = true
	s.trim = TrimRange{Start: 0, End: d}
}

// reset forgets the duration; the crop survives a new asset
func (s *EditParameterStore) reset() {
	s.duration = 0
	s.known = false
	s.trim = TrimRange{}
}
