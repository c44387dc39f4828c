package editor

import "fmt"

// Event is an input the Editor reacts to: a user gesture or an engine
// notification. The set is closed; see Editor.Handle.
type Event interface {
	event()
}

// SliderParam names the continuous controls a slider can drive
type SliderParam int

const (
	SliderVolume SliderParam = iota
	SliderTrimStart
	SliderTrimEnd
	SliderCropX
	SliderCropY
	SliderCropWidth
	SliderCropHeight
)

func (p SliderParam) String() string {
	switch p {
	case SliderVolume:
		return "volume"
	case SliderTrimStart:
		return "trimStart"
	case SliderTrimEnd:
		return "trimEnd"
	case SliderCropX:
		return "crop.x"
	case SliderCropY:
		return "crop.y"
	case SliderCropWidth:
		return "crop.width"
	case SliderCropHeight:
		return "crop.height"
	}
	return fmt.Sprintf("SliderParam(%d)", int(p))
}

// CropSlider returns the slider for a crop field
func CropSlider(f CropField) SliderParam {
	return SliderCropX + SliderParam(f)
}

type (
	// FileSelected loads a new source, replacing the current asset
	FileSelected struct {
		Kind MediaKind
		Path string
	}

	// SliderChanged carries a new slider value
	SliderChanged struct {
		Param SliderParam
		Value float64
	}

	// RateSelected picks a playback rate
	RateSelected struct {
		Rate float64
	}

	// TimelineDragged is a scrub on a track (or the ruler, with an empty Track)
	TimelineDragged struct {
		Track TrackID
		Time  float64
	}

	// TimelineActionResized moves the bounds of one action
	TimelineActionResized struct {
		Track    TrackID
		ActionID string
		Start    float64
		End      float64
	}

	// PlayPauseClicked toggles playback
	PlayPauseClicked struct{}

	// TimeAdvanced is the engine clock notification
	TimeAdvanced struct {
		Seconds float64
	}

	// DurationResolved is the engine's report of the media length
	DurationResolved struct {
		Seconds float64
	}

	// PlaybackEnded is the engine's report that it paused itself at the end
	// of the media
	PlaybackEnded struct{}
)

func (FileSelected) event()          {}
func (SliderChanged) event()         {}
func (RateSelected) event()          {}
func (TimelineDragged) event()       {}
func (TimelineActionResized) event() {}
func (PlayPauseClicked) event()      {}
func (TimeAdvanced) event()          {}
func (DurationResolved) event()      {}
func (PlaybackEnded) event()         {}
