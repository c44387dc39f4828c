package main

import (
	"errors"
	"strings"
	"testing"

	"github.com/charmbracelet/bubbletea"

	"clipdeck/internal/editor"
)

// stubEngine accepts every command and remembers seeks and loads
type stubEngine struct {
	seeks   []float64
	loaded  []editor.MediaAsset
	playing bool
}

func (s *stubEngine) Load(asset editor.MediaAsset) error {
	s.loaded = append(s.loaded, asset)
	s.playing = false
	return nil
}

func (s *stubEngine) Play() error {
	s.playing = true
	return nil
}

func (s *stubEngine) Pause() error {
	s.playing = false
	return nil
}

func (s *stubEngine) Seek(seconds float64) error {
	s.seeks = append(s.seeks, seconds)
	return nil
}

func (s *stubEngine) SetVolume(float64) error   { return nil }
func (s *stubEngine) SetRate(float64) error     { return nil }
func (s *stubEngine) Start(func(tea.Msg)) error { return nil }
func (s *stubEngine) Close() error              { return nil }

func newTestModel(t *testing.T) (model, *stubEngine) {
	t.Helper()
	t.Setenv("TERM", "xterm-256color")
	t.Setenv("TERM_PROGRAM", "")
	config.Set(defaultConfig())

	eng := &stubEngine{}
	ed := editor.New(eng, editorOptions(config.Get()))
	return newModel(ed, eng, "", editor.KindVideo), eng
}

func update(t *testing.T, m model, msg tea.Msg) (model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(model)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return nm, cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// loadedModel has a 120 second video with its duration resolved
func loadedModel(t *testing.T) (model, *stubEngine) {
	t.Helper()
	m, eng := newTestModel(t)
	m, _ = update(t, m, loadRequestMsg{kind: editor.KindVideo, path: "/media/clip.mp4"})
	m, _ = update(t, m, engineDurationMsg{assetID: m.currentAssetID(), seconds: 120})
	if _, known := m.editor.Playback.Duration(); !known {
		t.Fatal("Expected a resolved duration")
	}
	return m, eng
}

func TestModelLoadRequest(t *testing.T) {
	m, eng := newTestModel(t)

	m, cmd := update(t, m, loadRequestMsg{kind: editor.KindVideo, path: "/media/clip.mp4"})
	if cmd == nil {
		t.Error("Expected a poster lookup after loading")
	}
	assertEqual(t, len(eng.loaded), 1, "engine loads")
	assertEqual(t, m.editor.Playback.Asset().Path, "/media/clip.mp4", "asset path")

	// before the duration arrives, scrubbing is refused with the "nothing loaded" error
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRight})
	if !isNothingLoaded(m.lastError) {
		t.Errorf("Expected duration-unknown error, got %v", m.lastError)
	}
}

func TestModelDropsStaleEngineMessages(t *testing.T) {
	m, _ := loadedModel(t)

	m, _ = update(t, m, engineTimeMsg{assetID: "someone-else", seconds: 50})
	assertEqual(t, m.editor.Playback.State().CurrentTime, 0.0, "current time")

	m, _ = update(t, m, engineTimeMsg{assetID: m.currentAssetID(), seconds: 50})
	assertEqual(t, m.editor.Playback.State().CurrentTime, 50.0, "current time")
	assertEqual(t, m.editor.Timeline.Cursor(), 50.0, "cursor")
}

func TestModelScrubKeys(t *testing.T) {
	m, eng := loadedModel(t)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRight})
	assertEqual(t, m.editor.Timeline.Cursor(), 5.0, "cursor after right")
	assertEqual(t, m.editor.Playback.State().CurrentTime, 5.0, "optimistic clock")

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyLeft})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyLeft})
	assertEqual(t, m.editor.Timeline.Cursor(), 0.0, "cursor clamped at start")

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnd})
	assertEqual(t, m.editor.Timeline.Cursor(), 120.0, "cursor at end")

	assertEqual(t, len(eng.seeks), 4, "seek count")
	assertEqual(t, eng.seeks[3], 120.0, "last seek")
	if m.lastError != nil {
		t.Errorf("Unexpected error %v", m.lastError)
	}
}

func TestModelPlayPause(t *testing.T) {
	m, eng := loadedModel(t)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeySpace})
	assertEqual(t, m.editor.Playback.State().IsPlaying, true, "playing")
	assertEqual(t, eng.playing, true, "engine playing")

	m, _ = update(t, m, runes("p"))
	assertEqual(t, m.editor.Playback.State().IsPlaying, false, "paused")
}

func TestModelPlaybackEnded(t *testing.T) {
	m, eng := loadedModel(t)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeySpace})
	m, _ = update(t, m, engineTimeMsg{assetID: m.currentAssetID(), seconds: 60})

	// a report for a replaced asset changes nothing
	m, _ = update(t, m, engineEndedMsg{assetID: "gone"})
	assertEqual(t, m.editor.Playback.State().IsPlaying, true, "still playing")

	m, _ = update(t, m, engineEndedMsg{assetID: m.currentAssetID()})
	assertEqual(t, m.editor.Playback.State().IsPlaying, false, "stopped at end")
	eng.playing = false

	// one press plays again
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeySpace})
	assertEqual(t, m.editor.Playback.State().IsPlaying, true, "playing again")
	assertEqual(t, eng.playing, true, "engine playing")
	assertEqual(t, len(eng.seeks), 0, "no rewind away from the end")
}

func TestModelPlayFromEndStartsOver(t *testing.T) {
	m, eng := loadedModel(t)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeySpace})
	m, _ = update(t, m, engineTimeMsg{assetID: m.currentAssetID(), seconds: 120})
	m, _ = update(t, m, engineEndedMsg{assetID: m.currentAssetID()})
	eng.playing = false

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeySpace})
	if len(eng.seeks) != 1 || eng.seeks[0] != 0 {
		t.Errorf("Expected one rewind to 0, got %v", eng.seeks)
	}
	assertEqual(t, m.editor.Playback.State().CurrentTime, 0.0, "cursor at start")
	assertEqual(t, m.editor.Playback.State().IsPlaying, true, "playing")
	assertEqual(t, eng.playing, true, "engine playing")
}

func TestModelTrimKeys(t *testing.T) {
	m, _ := loadedModel(t)

	m, _ = update(t, m, engineTimeMsg{assetID: m.currentAssetID(), seconds: 30})
	m, _ = update(t, m, runes("["))
	m, _ = update(t, m, engineTimeMsg{assetID: m.currentAssetID(), seconds: 90})
	m, _ = update(t, m, runes("]"))

	assertEqual(t, m.editor.Params.Trim(), editor.TrimRange{Start: 30, End: 90}, "trim")

	// an end before the start is rejected and leaves the range alone
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyHome})
	m, _ = update(t, m, runes("]"))
	if !errors.Is(m.lastError, editor.ErrInvalidTrim) {
		t.Errorf("Expected invalid trim, got %v", m.lastError)
	}
	assertEqual(t, m.editor.Params.Trim(), editor.TrimRange{Start: 30, End: 90}, "trim")
}

func TestModelVolumeAndRate(t *testing.T) {
	m, _ := loadedModel(t)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyUp})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyUp})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyUp})
	assertEqual(t, m.editor.Playback.State().Volume, 1.0, "volume clamped")

	m, _ = update(t, m, runes("r"))
	assertEqual(t, m.editor.Playback.State().Rate, 1.5, "next rate")
}

func TestModelCropKeys(t *testing.T) {
	m, _ := loadedModel(t)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assertEqual(t, m.cropField, editor.CropY, "selected field")
	m, _ = update(t, m, runes("+"))
	m, _ = update(t, m, runes("+"))
	assertEqual(t, m.editor.Params.Crop().Y, 10.0, "crop y")

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	assertEqual(t, m.cropField, editor.CropHeight, "wrapped selection")
	m, _ = update(t, m, runes("+"))
	assertEqual(t, m.editor.Params.Crop().Height, 100.0, "height clamped")
}

func TestModelResizeAction(t *testing.T) {
	m, _ := loadedModel(t)

	m, _ = update(t, m, engineTimeMsg{assetID: m.currentAssetID(), seconds: 20})
	m, _ = update(t, m, runes("{"))
	track, _ := m.editor.Timeline.Track(editor.TrackVideo)
	assertEqual(t, track.Actions[0].Start, 20.0, "video action start")

	m, _ = update(t, m, runes("t"))
	assertEqual(t, m.selectedTrack, editor.TrackAudio, "selected track")
	m, _ = update(t, m, engineTimeMsg{assetID: m.currentAssetID(), seconds: 60})
	m, _ = update(t, m, runes("}"))
	track, _ = m.editor.Timeline.Track(editor.TrackAudio)
	assertEqual(t, track.Actions[0].End, 60.0, "audio action end")
}

func TestModelPastedPath(t *testing.T) {
	m, _ := newTestModel(t)

	_, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("'/music/my song.mp3'"), Paste: true})
	if cmd == nil {
		t.Fatal("Expected a load command")
	}
	assertEqual(t, cmd(), tea.Msg(loadRequestMsg{kind: editor.KindAudio, path: "/music/my song.mp3"}), "load request")
}

func TestModelQuit(t *testing.T) {
	m, _ := newTestModel(t)
	_, cmd := update(t, m, runes("q"))
	if cmd == nil {
		t.Fatal("Expected a quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("Expected tea.QuitMsg")
	}
}

func TestModelView(t *testing.T) {
	m, _ := newTestModel(t)
	if !strings.Contains(m.View(), "Nothing loaded") {
		t.Error("Expected the empty state")
	}

	m, _ = loadedModel(t)
	view := m.View()
	for _, want := range []string{"clip.mp4", "0:00", "2:00", "crop"} {
		if !strings.Contains(view, want) {
			t.Errorf("Expected view to contain %q", want)
		}
	}
}
