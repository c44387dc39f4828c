package editor

import (
	"math"
	"testing"
)

func TestSetTrim(t *testing.T) {
	tests := []struct {
		name       string
		start, end float64
		wantErr    bool
	}{
		{"full range", 0, 120, false},
		{"inner range", 10.5, 30, false},
		{"start equals end", 30, 30, true},
		{"start after end", 40, 30, true},
		{"negative start", -1, 30, true},
		{"end past duration", 10, 120.5, true},
		{"NaN start", math.NaN(), 30, true},
		{"NaN end", 0, math.NaN(), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewEditParameterStore()
			s.resetForDuration(120)
			assertNoError(t, s.SetTrim(1, 2))

			err := s.SetTrim(tt.start, tt.end)
			if tt.wantErr {
				assertErrorIs(t, err, ErrInvalidTrim)
				assertEqual(t, s.Trim(), TrimRange{Start: 1, End: 2}, "trim after rejection")
				return
			}
			assertNoError(t, err)
			assertEqual(t, s.Trim(), TrimRange{Start: tt.start, End: tt.end}, "trim")
		})
	}
}

func TestSetTrimDurationUnknown(t *testing.T) {
	s := NewEditParameterStore()
	assertErrorIs(t, s.SetTrim(0, 1), ErrDurationUnknown)
	assertEqual(t, s.Trim(), TrimRange{}, "trim")
}

func TestResetForDuration(t *testing.T) {
	s := NewEditParameterStore()
	for _, d := range []float64{0, 42, 3600} {
		s.resetForDuration(d)
		assertEqual(t, s.Trim().End, d, "trim end")
		assertEqual(t, s.Trim().Start, 0.0, "trim start")
	}
}

func TestSetCropFieldClamps(t *testing.T) {
	s := NewEditParameterStore()
	assertNoError(t, s.SetCropField(CropX, 10))
	assertNoError(t, s.SetCropField(CropY, 20))

	assertNoError(t, s.SetCropField(CropWidth, 150))
	want := CropRect{X: 10, Y: 20, Width: 100, Height: 100}
	assertEqual(t, s.Crop(), want, "width clamped, others untouched")

	assertNoError(t, s.SetCropField(CropHeight, -5))
	want.Height = 0
	assertEqual(t, s.Crop(), want, "height clamped to zero")
}

func TestSetCropFieldRejects(t *testing.T) {
	s := NewEditParameterStore()
	assertErrorIs(t, s.SetCropField(CropField(9), 10), ErrInvalidParameter)
	assertErrorIs(t, s.SetCropField(CropX, math.NaN()), ErrInvalidParameter)
	assertEqual(t, s.Crop(), FullFrame(), "crop unchanged")
}

func TestCropOverflowIsPreserved(t *testing.T) {
	s := NewEditParameterStore()
	assertNoError(t, s.SetCropField(CropX, 40))
	// width stays 100: the pair is not bounded together
	crop := s.Crop()
	assertEqual(t, crop.Width, 100.0, "width")
	assertEqual(t, crop.Overflows(), true, "overflows")
	assertEqual(t, s.CropRenderRegion().Right, -40.0, "negative right inset")
}

func TestCropRenderRegion(t *testing.T) {
	s := NewEditParameterStore()
	assertEqual(t, s.CropRenderRegion(), InsetRegion{}, "full frame has no inset")

	assertNoError(t, s.SetCropField(CropX, 10))
	assertNoError(t, s.SetCropField(CropY, 5))
	assertNoError(t, s.SetCropField(CropWidth, 50))
	assertNoError(t, s.SetCropField(CropHeight, 60))

	region := s.CropRenderRegion()
	assertEqual(t, region, InsetRegion{Top: 5, Right: 40, Bottom: 35, Left: 10}, "inset")
	assertEqual(t, region.CSS(), "inset(5% 40% 35% 10%)", "css")

	// pure: asking twice gives the same answer and changes nothing
	assertEqual(t, s.CropRenderRegion(), region, "second call")
}

func TestParseCropField(t *testing.T) {
	for _, f := range CropFields {
		got, err := ParseCropField(f.String())
		assertNoError(t, err)
		assertEqual(t, got, f, "round trip")
	}
	got, err := ParseCropField("WIDTH")
	assertNoError(t, err)
	assertEqual(t, got, CropWidth, "case-insensitive")

	_, err = ParseCropField("depth")
	assertErrorIs(t, err, ErrInvalidParameter)
}
