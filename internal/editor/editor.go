// Package editor is the synchronization and edit-parameter core of clipdeck.
//
// The four components each own their state: PlaybackController (playback
// intent, clock, asset), TimelineModel (tracks and cursor),
// EditParameterStore (trim and crop) and SyncBridge, which carries engine
// clock updates to the timeline and timeline scrubs to the engine without
// either direction echoing back. Editor wires them to an Engine and accepts
// input as Events.
//
// Nothing here is safe for concurrent use. All events must be delivered from
// one goroutine, which in clipdeck is the Bubble Tea update loop.
package editor

import (
	"fmt"
	"log/slog"
)

// Editor is the entry point for user gestures and engine notifications
type Editor struct {
	engine Engine
	opts   Options

	Playback *PlaybackController
	Timeline *TimelineModel
	Params   *EditParameterStore
	Bridge   *SyncBridge
}

// New builds the component cluster around engine
func New(engine Engine, opts Options) *Editor {
	opts = opts.normalized()
	playback := NewPlaybackController(engine, opts)
	timeline := NewTimelineModel()
	params := NewEditParameterStore()
	return &Editor{
		engine:   engine,
		opts:     opts,
		Playback: playback,
		Timeline: timeline,
		Params:   params,
		Bridge:   NewSyncBridge(engine, playback, timeline, params, opts),
	}
}

// Handle dispatches one event to the component that owns the affected state.
// A returned error means the event was rejected and no state changed.
func (e *Editor) Handle(ev Event) error {
	switch ev := ev.(type) {
	case FileSelected:
		_, err := e.LoadAsset(ev.Kind, ev.Path)
		return err
	case SliderChanged:
		return e.applySlider(ev.Param, ev.Value)
	case RateSelected:
		return e.Playback.SetRate(ev.Rate)
	case TimelineDragged:
		return e.Timeline.OnUserScrub(ev.Track, ev.Time)
	case TimelineActionResized:
		return e.Timeline.ResizeAction(ev.Track, ev.ActionID, ev.Start, ev.End)
	case PlayPauseClicked:
		return e.Playback.Toggle()
	case TimeAdvanced:
		return e.Playback.OnTimeAdvance(ev.Seconds)
	case DurationResolved:
		return e.Playback.OnDurationKnown(ev.Seconds)
	case PlaybackEnded:
		e.Playback.OnPlaybackEnded()
		return nil
	case nil:
		return fmt.Errorf("%w: nil event", ErrInvalidParameter)
	}
	return fmt.Errorf("%w: unhandled event %T", ErrInvalidParameter, ev)
}

func (e *Editor) applySlider(param SliderParam, v float64) error {
	switch param {
	case SliderVolume:
		return e.Playback.SetVolume(v)
	case SliderTrimStart:
		return e.Params.SetTrim(v, e.Params.Trim().End)
	case SliderTrimEnd:
		return e.Params.SetTrim(e.Params.Trim().Start, v)
	case SliderCropX, SliderCropY, SliderCropWidth, SliderCropHeight:
		return e.Params.SetCropField(CropField(param-SliderCropX), v)
	}
	return fmt.Errorf("%w: slider %s", ErrInvalidParameter, param)
}

// LoadAsset replaces the current asset. Clock, trim and tracks start over
// until the engine resolves the new duration; crop, volume and rate carry
// over and are re-sent to the engine.
func (e *Editor) LoadAsset(kind MediaKind, path string) (MediaAsset, error) {
	asset, err := NewMediaAsset(kind, path)
	if err != nil {
		return MediaAsset{}, err
	}
	if err := e.engine.Load(asset); err != nil {
		return MediaAsset{}, fmt.Errorf("load %s: %w", path, err)
	}

	e.Bridge.clear()
	e.Playback.load(asset)
	e.Timeline.reset()
	e.Params.reset()

	state := e.Playback.State()
	if err := e.engine.SetVolume(state.Volume); err != nil {
		slog.Warn("engine rejected volume", "asset", asset.ID, "err", err)
	}
	if err := e.engine.SetRate(state.Rate); err != nil {
		slog.Warn("engine rejected rate", "asset", asset.ID, "err", err)
	}
	slog.Info("asset loaded", "asset", asset.ID, "kind", asset.Kind, "path", asset.Path)
	return asset, nil
}

// Reconfigure applies new options to a running editor. The current rate is
// kept even if the new set no longer contains it.
func (e *Editor) Reconfigure(opts Options) {
	opts = opts.normalized()
	e.opts = opts
	e.Playback.setRates(opts.Rates)
	e.Bridge.configure(opts)
}

// Options returns the options in effect
func (e *Editor) Options() Options {
	o := e.opts
	o.Rates = append([]float64(nil), o.Rates...)
	return o
}

// Snapshot is a read-only copy of everything a view needs
type Snapshot struct {
	Asset         MediaAsset
	Playback      PlaybackState
	Trim          TrimRange
	Crop          CropRect
	Inset         InsetRegion
	CropOverflow  bool
	Tracks        []TimelineTrack
	Cursor        float64
	CurrentLabel  string
	DurationLabel string
}

// Snapshot captures the current state of all components
func (e *Editor) Snapshot() Snapshot {
	asset := e.Playback.Asset()
	state := e.Playback.State()
	crop := e.Params.Crop()
	return Snapshot{
		Asset:         asset,
		Playback:      state,
		Trim:          e.Params.Trim(),
		Crop:          crop,
		Inset:         e.Params.CropRenderRegion(),
		CropOverflow:  crop.Overflows(),
		Tracks:        e.Timeline.Tracks(),
		Cursor:        e.Timeline.Cursor(),
		CurrentLabel:  FormatTime(state.CurrentTime),
		DurationLabel: FormatTime(asset.Duration),
	}
}
