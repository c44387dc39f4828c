package editor

import (
	"fmt"
	"math"
	"sort"
)

// TrackID names a timeline track, one per media stream kind
type TrackID string

const (
	TrackVideo TrackID = "video"
	TrackAudio TrackID = "audio"
)

// EffectKind tags what a timeline action does to its range
type EffectKind string

const (
	EffectVideo EffectKind = "videoEffect"
	EffectAudio EffectKind = "audioEffect"
)

// TimelineAction is one span of a track
type TimelineAction struct {
	ID     string
	Start  float64
	End    float64
	Effect EffectKind
}

// TimelineTrack holds actions ordered by start time. Actions never overlap
// and stay within [0, duration].
type TimelineTrack struct {
	ID      TrackID
	Actions []TimelineAction
}

func (t TimelineTrack) clone() TimelineTrack {
	t.Actions = append([]TimelineAction(nil), t.Actions...)
	return t
}

// TimelineModel is the discrete track/action view of the media range and the
// position of its cursor. Scrubs are rejected (never clamped) when outside
// the media.
type TimelineModel struct {
	bridge *SyncBridge

	tracks   []TimelineTrack
	duration float64
	known    bool
	cursor   float64
}

// NewTimelineModel returns an empty timeline; tracks appear on BuildTracks
func NewTimelineModel() *TimelineModel {
	return &TimelineModel{}
}

// BuildTracks replaces the track set with one full-range action per track
func (m *TimelineModel) BuildTracks(duration float64) {
	m.duration = duration
	m.known = true
	m.tracks = []TimelineTrack{
		{
			ID:      TrackVideo,
			Actions: []TimelineAction{{ID: "videoAction", Start: 0, End: duration, Effect: EffectVideo}},
		},
		{
			ID:      TrackAudio,
			Actions: []TimelineAction{{ID: "audioAction", Start: 0, End: duration, Effect: EffectAudio}},
		},
	}
	if m.cursor > duration {
		m.cursor = duration
	}
}

// Tracks returns a deep copy of the track set
func (m *TimelineModel) Tracks() []TimelineTrack {
	out := make([]TimelineTrack, len(m.tracks))
	for i, t := range m.tracks {
		out[i] = t.clone()
	}
	return out
}

// Track returns a copy of one track
func (m *TimelineModel) Track(id TrackID) (TimelineTrack, bool) {
	i := m.trackIndex(id)
	if i < 0 {
		return TimelineTrack{}, false
	}
	return m.tracks[i].clone(), true
}

// Cursor returns the visual cursor position in seconds
func (m *TimelineModel) Cursor() float64 {
	return m.cursor
}

// SetCursor moves the visual cursor. It is representation-only: it never
// produces a seek, and setting the same value again changes nothing.
func (m *TimelineModel) SetCursor(t float64) {
	m.cursor = t
}

// OnUserScrub handles a drag on the timeline. An empty trackID means the
// time ruler. On success the request goes to the SyncBridge as a seek intent.
func (m *TimelineModel) OnUserScrub(trackID TrackID, t float64) error {
	if !m.known {
		return fmt.Errorf("scrub: %w", ErrDurationUnknown)
	}
	if trackID != "" && m.trackIndex(trackID) < 0 {
		return fmt.Errorf("%w: unknown track %q", ErrInvalidParameter, trackID)
	}
	if !(t >= 0 && t <= m.duration) {
		return fmt.Errorf("%w: scrub to %v outside [0, %v]", ErrOutOfRange, t, m.duration)
	}
	if m.bridge == nil {
		m.SetCursor(t)
		return nil
	}
	return m.bridge.requestSeek(t)
}

// OnTrackEdited replaces a track's actions after an edit in the timeline.
// The list is stored sorted by start time.
func (m *TimelineModel) OnTrackEdited(trackID TrackID, actions []TimelineAction) error {
	if !m.known {
		return fmt.Errorf("edit track: %w", ErrDurationUnknown)
	}
	i := m.trackIndex(trackID)
	if i < 0 {
		return fmt.Errorf("%w: unknown track %q", ErrInvalidTimelineEdit, trackID)
	}

	edited := append([]TimelineAction(nil), actions...)
	sort.SliceStable(edited, func(a, b int) bool { return edited[a].Start < edited[b].Start })

	seen := make(map[string]bool, len(edited))
	for j, a := range edited {
		if a.ID == "" {
			return fmt.Errorf("%w: action without id", ErrInvalidTimelineEdit)
		}
		if seen[a.ID] {
			return fmt.Errorf("%w: duplicate action %q", ErrInvalidTimelineEdit, a.ID)
		}
		seen[a.ID] = true
		if math.IsNaN(a.Start) || math.IsNaN(a.End) || !(a.Start >= 0 && a.Start < a.End && a.End <= m.duration) {
			return fmt.Errorf("%w: action %q [%v, %v] outside [0, %v]", ErrInvalidTimelineEdit, a.ID, a.Start, a.End, m.duration)
		}
		if j > 0 && edited[j-1].End > a.Start {
			return fmt.Errorf("%w: action %q overlaps %q", ErrInvalidTimelineEdit, a.ID, edited[j-1].ID)
		}
	}

	m.tracks[i] = TimelineTrack{ID: trackID, Actions: edited}
	return nil
}

// ResizeAction moves the bounds of one action and validates the result
// through OnTrackEdited.
func (m *TimelineModel) ResizeAction(trackID TrackID, actionID string, start, end float64) error {
	if !m.known {
		return fmt.Errorf("resize action: %w", ErrDurationUnknown)
	}
	track, ok := m.Track(trackID)
	if !ok {
		return fmt.Errorf("%w: unknown track %q", ErrInvalidTimelineEdit, trackID)
	}
	for j := range track.Actions {
		if track.Actions[j].ID == actionID {
			track.Actions[j].Start = start
			track.Actions[j].End = end
			return m.OnTrackEdited(trackID, track.Actions)
		}
	}
	return fmt.Errorf("%w: unknown action %q on track %q", ErrInvalidTimelineEdit, actionID, trackID)
}

// reset drops the tracks when a new asset replaces the old one
func (m *TimelineModel) reset() {
	m.tracks = nil
	m.duration = 0
	m.known = false
	m.cursor = 0
}

func (m *TimelineModel) trackIndex(id TrackID) int {
	for i, t := range m.tracks {
		if t.ID == id {
			return i
		}
	}
	return -1
}
