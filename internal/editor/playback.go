package editor

import (
	"fmt"
	"log/slog"
	"math"
)

// PlaybackState is the playback intent plus the last known clock position
type PlaybackState struct {
	IsPlaying   bool
	Volume      float64
	Rate        float64
	CurrentTime float64
}

// PlaybackController owns PlaybackState and the loaded MediaAsset and is the
// only component that issues play, pause, volume and rate commands to the
// engine.
//
// Policies: volume is clamped to [0,1]; a rate outside the allowed set is
// rejected with ErrInvalidParameter. A command the engine fails to accept
// leaves the state unchanged.
type PlaybackController struct {
	engine Engine
	bridge *SyncBridge
	rates  []float64

	asset MediaAsset
	state PlaybackState
}

// NewPlaybackController creates a paused controller at position zero
func NewPlaybackController(engine Engine, opts Options) *PlaybackController {
	opts = opts.normalized()
	p := &PlaybackController{
		engine: engine,
		rates:  opts.Rates,
		state: PlaybackState{
			Volume: opts.DefaultVolume,
			Rate:   1,
		},
	}
	if !p.rateAllowed(1) {
		p.state.Rate = opts.Rates[0]
	}
	return p
}

// State returns a copy of the current playback state
func (p *PlaybackController) State() PlaybackState {
	return p.state
}

// Asset returns the loaded asset (zero value before the first load)
func (p *PlaybackController) Asset() MediaAsset {
	return p.asset
}

// Duration returns the media duration and whether the engine has resolved it
func (p *PlaybackController) Duration() (float64, bool) {
	return p.asset.Duration, p.asset.DurationKnown
}

// Rates returns the allowed rate set
func (p *PlaybackController) Rates() []float64 {
	return append([]float64(nil), p.rates...)
}

// Play starts playback. Calling it while already playing issues no command.
func (p *PlaybackController) Play() error {
	if p.state.IsPlaying {
		return nil
	}
	if err := p.engine.Play(); err != nil {
		return fmt.Errorf("play: %w", err)
	}
	p.state.IsPlaying = true
	return nil
}

// Pause pauses playback. Calling it while already paused issues no command.
func (p *PlaybackController) Pause() error {
	if !p.state.IsPlaying {
		return nil
	}
	if err := p.engine.Pause(); err != nil {
		return fmt.Errorf("pause: %w", err)
	}
	p.state.IsPlaying = false
	return nil
}

// Toggle switches between playing and paused
func (p *PlaybackController) Toggle() error {
	if p.state.IsPlaying {
		return p.Pause()
	}
	return p.Play()
}

// SetVolume clamps v to [0,1] and sends it to the engine
func (p *PlaybackController) SetVolume(v float64) error {
	if math.IsNaN(v) {
		return fmt.Errorf("%w: volume is NaN", ErrInvalidParameter)
	}
	v = clamp(v, 0, 1)
	if err := p.engine.SetVolume(v); err != nil {
		return fmt.Errorf("set volume %.2f: %w", v, err)
	}
	p.state.Volume = v
	return nil
}

// SetRate accepts only members of the allowed rate set
func (p *PlaybackController) SetRate(r float64) error {
	if !p.rateAllowed(r) {
		return fmt.Errorf("%w: rate %v not in %v", ErrInvalidParameter, r, p.rates)
	}
	if err := p.engine.SetRate(r); err != nil {
		return fmt.Errorf("set rate %v: %w", r, err)
	}
	p.state.Rate = r
	return nil
}

// NextRate returns the allowed rate following the current one, wrapping
// around. It is what a rate selector cycling through its options offers.
func (p *PlaybackController) NextRate() float64 {
	for i, r := range p.rates {
		if r == p.state.Rate {
			return p.rates[(i+1)%len(p.rates)]
		}
	}
	return p.rates[0]
}

// OnTimeAdvance records an engine clock notification. Values are clamped to
// [0, duration] once the duration is known. The SyncBridge may discard a
// notification that predates an in-flight scrub.
func (p *PlaybackController) OnTimeAdvance(t float64) error {
	if math.IsNaN(t) {
		return fmt.Errorf("%w: time advance is NaN", ErrInvalidParameter)
	}
	t = p.bound(t)
	if p.bridge != nil && !p.bridge.timeAdvanced(t) {
		return nil
	}
	p.state.CurrentTime = t
	return nil
}

// OnDurationKnown records the resolved media duration and has the SyncBridge
// reset the trim range and rebuild the timeline. Once known, the duration is
// fixed for the asset; later notifications are ignored.
func (p *PlaybackController) OnDurationKnown(d float64) error {
	if math.IsNaN(d) || math.IsInf(d, 0) || d < 0 {
		return fmt.Errorf("%w: duration %v", ErrInvalidParameter, d)
	}
	if p.asset.DurationKnown {
		if d != p.asset.Duration {
			slog.Warn("duration already resolved", "asset", p.asset.ID, "have", p.asset.Duration, "got", d)
		}
		return nil
	}
	p.asset.Duration = d
	p.asset.DurationKnown = true
	p.state.CurrentTime = p.bound(p.state.CurrentTime)
	if p.bridge != nil {
		p.bridge.durationResolved(d)
	}
	return nil
}

// OnPlaybackEnded records that the engine stopped on its own, at the end of
// the media. No command is sent; the next Toggle plays again.
func (p *PlaybackController) OnPlaybackEnded() {
	if !p.state.IsPlaying {
		return
	}
	p.state.IsPlaying = false
	slog.Debug("playback ended", "asset", p.asset.ID, "time", p.state.CurrentTime)
}

func (p *PlaybackController) setRates(rates []float64) {
	p.rates = append([]float64(nil), rates...)
}

// load swaps in a new asset; the engine has already been told to load it
func (p *PlaybackController) load(asset MediaAsset) {
	p.asset = asset
	p.state.IsPlaying = false
	p.state.CurrentTime = 0
}

// setCurrentTime is the SyncBridge's optimistic update after a scrub
func (p *PlaybackController) setCurrentTime(t float64) {
	p.state.CurrentTime = p.bound(t)
}

func (p *PlaybackController) bound(t float64) float64 {
	if t < 0 {
		return 0
	}
	if p.asset.DurationKnown && t > p.asset.Duration {
		return p.asset.Duration
	}
	return t
}

func (p *PlaybackController) rateAllowed(r float64) bool {
	for _, allowed := range p.rates {
		if r == allowed {
			return true
		}
	}
	return false
}
