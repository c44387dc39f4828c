package main

import (
	"fmt"

	"github.com/charmbracelet/bubbletea"

	"clipdeck/internal/editor"
)

// playbackEngine is an editor.Engine that reports its clock back to the
// program. Notifications are posted with send from the engine's own
// goroutines and reach the editor through Update, so the editor is only ever
// touched by the Bubble Tea event loop.
type playbackEngine interface {
	editor.Engine
	Start(send func(tea.Msg)) error
	Close() error
}

// engineTimeMsg is a time-advance notification for the asset the engine had
// loaded when it was emitted
type engineTimeMsg struct {
	assetID string
	seconds float64
}

// engineDurationMsg reports the resolved length of an asset
type engineDurationMsg struct {
	assetID string
	seconds float64
}

// engineEndedMsg reports that the engine paused itself at the end of the media
type engineEndedMsg struct {
	assetID string
}

// engineErrMsg carries an asynchronous engine failure
type engineErrMsg struct {
	err error
}

// newPlaybackEngine creates the engine selected by engine.kind
func newPlaybackEngine(cfg Config) (playbackEngine, error) {
	switch cfg.Engine.Kind {
	case "mpv":
		return newMpvEngine(cfg.Engine.MpvPath), nil
	case "sim":
		return newSimEngine(cfg.Engine.FfprobePath, refreshInterval(cfg)), nil
	}
	return nil, fmt.Errorf("unknown engine kind %q", cfg.Engine.Kind)
}
