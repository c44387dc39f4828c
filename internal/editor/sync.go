package editor

import (
	"fmt"
	"log/slog"
	"math"
)

// SyncBridge keeps the engine clock and the timeline cursor in agreement.
//
// Player to timeline: a time advance moves the cursor through SetCursor and
// nothing else. Timeline to player: a scrub seeks the engine, then moves the
// playback clock and cursor to the target straight away, since the engine's
// next time advance arrives later.
//
// The only state the bridge keeps is the pending scrub target and the side of
// it the clock was on before the scrub. A time advance within epsilon of the
// target confirms the seek. One further out on the side the clock came from
// is a tick the engine emitted before it processed the seek, and is dropped
// so the cursor does not jump back to the old position. After staleLimit such
// drops the engine's position wins, which covers engines that land on a
// keyframe short of the target. A tick beyond the target on the other side
// is taken as the engine playing on from it.
type SyncBridge struct {
	engine   Engine
	playback *PlaybackController
	timeline *TimelineModel
	params   *EditParameterStore

	epsilon    float64
	staleLimit int

	pending  bool
	target   float64
	backward bool
	stale    int
}

// NewSyncBridge connects the components so that their notifications flow
// through the bridge
func NewSyncBridge(engine Engine, playback *PlaybackController, timeline *TimelineModel, params *EditParameterStore, opts Options) *SyncBridge {
	opts = opts.normalized()
	b := &SyncBridge{
		engine:     engine,
		playback:   playback,
		timeline:   timeline,
		params:     params,
		epsilon:    opts.EchoEpsilon,
		staleLimit: opts.StaleLimit,
	}
	playback.bridge = b
	timeline.bridge = b
	return b
}

// PendingScrub returns the scrub target still awaiting engine confirmation
func (b *SyncBridge) PendingScrub() (float64, bool) {
	return b.target, b.pending
}

// CurrentTime is the shared notion of "now" for time readouts
func (b *SyncBridge) CurrentTime() float64 {
	return b.playback.State().CurrentTime
}

// requestSeek runs the timeline to player direction. Nothing changes if the
// engine refuses the seek.
func (b *SyncBridge) requestSeek(t float64) error {
	if err := b.engine.Seek(t); err != nil {
		return fmt.Errorf("seek %.3f: %w", t, err)
	}
	origin := b.playback.State().CurrentTime
	b.playback.setCurrentTime(t)
	b.timeline.SetCursor(b.playback.State().CurrentTime)
	b.pending = true
	b.target = t
	b.backward = origin > t
	b.stale = 0
	return nil
}

// timeAdvanced runs the player to timeline direction and reports whether the
// playback clock should take the value.
func (b *SyncBridge) timeAdvanced(t float64) bool {
	if b.pending {
		switch {
		case math.Abs(t-b.target) <= b.epsilon:
			b.pending = false
		case b.isStale(t) && b.stale < b.staleLimit:
			b.stale++
			slog.Debug("dropped stale time advance", "time", t, "target", b.target, "dropped", b.stale)
			return false
		default:
			b.pending = false
		}
	}
	b.timeline.SetCursor(t)
	return true
}

// isStale reports whether t lies beyond epsilon of the pending target on the
// side the clock was on before the scrub
func (b *SyncBridge) isStale(t float64) bool {
	if b.backward {
		return t > b.target+b.epsilon
	}
	return t < b.target-b.epsilon
}

func (b *SyncBridge) durationResolved(d float64) {
	b.params.resetForDuration(d)
	b.timeline.BuildTracks(d)
}

func (b *SyncBridge) configure(opts Options) {
	b.epsilon = opts.EchoEpsilon
	b.staleLimit = opts.StaleLimit
}

func (b *SyncBridge) clear() {
	b.pending = false
	b.target = 0
	b.backward = false
	b.stale = 0
}
