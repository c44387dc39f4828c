package editor

// Engine is the opaque media playback engine the editor drives. It decodes
// and renders a source on its own; the editor only issues commands to it and
// learns about its clock through TimeAdvanced and DurationResolved events.
//
// Load must leave the engine paused at position zero.
type Engine interface {
	Load(asset MediaAsset) error
	Play() error
	Pause() error
	Seek(seconds float64) error
	SetVolume(volume float64) error
	SetRate(rate float64) error
}
