package main

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"math"
	"time"

	"github.com/charmbracelet/bubbletea"

	"clipdeck/internal/editor"
)

// model is the Bubble Tea model. It translates key presses and engine
// notifications into editor events; all editor state lives in the editor.
type model struct {
	editor    *editor.Editor
	engine    playbackEngine
	color     string
	width     int
	height    int
	lastError error

	// Initial file from the command line
	initialPath string
	initialKind editor.MediaKind

	// Which track the action-resize keys apply to, and which crop field +/- adjusts
	selectedTrack editor.TrackID
	cropField     editor.CropField

	// Crop preview
	supportsKitty  bool
	poster         image.Image
	posterAssetID  string
	previewEncoded string
	previewKey     string // asset id and crop the current preview was requested for

	// File name scrolling state
	scrollOffset int
	scrollPause  int
	scrollTick   int

	showHelp bool
}

func newModel(ed *editor.Editor, engine playbackEngine, path string, kind editor.MediaKind) model {
	cfg := config.Get()
	return model{
		editor:        ed,
		engine:        engine,
		color:         cfg.UI.Color,
		initialPath:   path,
		initialKind:   kind,
		selectedTrack: editor.TrackVideo,
		cropField:     editor.CropX,
		supportsKitty: supportsKittyGraphics(),
	}
}

// UI refresh tick
type tickMsg time.Time

// Request to load a file, from the command line or a terminal drop
type loadRequestMsg struct {
	kind editor.MediaKind
	path string
}

// Poster image found next to an asset
type posterMsg struct {
	assetID string
	img     image.Image
}

// Crop preview rendered in the background
type previewMsg struct {
	key     string
	encoded string
	color   string
	err     error
}

func refreshInterval(cfg Config) time.Duration {
	return time.Duration(cfg.Timing.UIRefreshMs) * time.Millisecond
}

// Schedule next UI refresh tick
func tickCmd() tea.Cmd {
	return tea.Tick(refreshInterval(config.Get()), func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Find and decode a poster in the background
func loadPosterCmd(asset editor.MediaAsset) tea.Cmd {
	return func() tea.Msg {
		path, ok := findPoster(asset.Path)
		if !ok {
			return nil
		}
		img, err := loadPoster(path)
		if err != nil {
			slog.Warn("poster unreadable", "asset", asset.ID, "path", path, "err", err)
			return nil
		}
		return posterMsg{assetID: asset.ID, img: img}
	}
}

// Crop, scale and encode the preview in the background (doesn't block UI)
func renderPreviewCmd(key string, poster image.Image, crop editor.CropRect) tea.Cmd {
	cfg := config.Get()
	return func() tea.Msg {
		msg := previewMsg{key: key}
		func() {
			defer func() {
				if r := recover(); r != nil {
					msg.err = fmt.Errorf("preview: %v", r)
				}
			}()
			msg.color, msg.encoded, msg.err = renderPreview(poster, crop, cfg.UI.ColorMode == "auto",
				cfg.Preview.WidthPixels, cfg.Preview.WidthColumns)
		}()
		return msg
	}
}

func (m model) Init() tea.Cmd {
	cmds := []tea.Cmd{tickCmd(), watchConfigCmd()}
	if m.initialPath != "" {
		req := loadRequestMsg{kind: m.initialKind, path: m.initialPath}
		cmds = append(cmds, func() tea.Msg { return req })
	}
	return tea.Batch(cmds...)
}

// handle passes one event to the editor and records the outcome
func (m *model) handle(ev editor.Event) error {
	err := m.editor.Handle(ev)
	if err != nil {
		slog.Info("event rejected", "event", fmt.Sprintf("%T", ev), "err", err)
		m.lastError = err
		return err
	}
	m.lastError = nil
	return nil
}

// currentAssetID is used to drop notifications for a replaced asset
func (m model) currentAssetID() string {
	return m.editor.Playback.Asset().ID
}

// scrubTo clamps the target into the media, since only legal positions are
// offered to the editor, and sends it as a ruler drag
func (m *model) scrubTo(t float64) {
	if d, known := m.editor.Playback.Duration(); known {
		t = math.Max(0, math.Min(t, d))
	}
	_ = m.handle(editor.TimelineDragged{Time: t})
}

// playPause toggles playback. Playing from the very end starts over, as the
// engine would otherwise stop again at once.
func (m *model) playPause() {
	state := m.editor.Playback.State()
	if d, known := m.editor.Playback.Duration(); known && d > 0 && !state.IsPlaying && state.CurrentTime >= d {
		m.scrubTo(0)
		if m.lastError != nil {
			return
		}
	}
	_ = m.handle(editor.PlayPauseClicked{})
}

// resizeActionAtCursor moves the start or end of the selected track's action
// under the cursor (or the nearest one) to the cursor
func (m *model) resizeActionAtCursor(moveStart bool) {
	track, ok := m.editor.Timeline.Track(m.selectedTrack)
	if !ok || len(track.Actions) == 0 {
		m.lastError = fmt.Errorf("%w: no actions on %s track", editor.ErrInvalidTimelineEdit, m.selectedTrack)
		return
	}
	cursor := m.editor.Timeline.Cursor()
	target := track.Actions[0]
	best := math.Inf(1)
	for _, a := range track.Actions {
		if cursor >= a.Start && cursor <= a.End {
			target = a
			break
		}
		if dist := math.Min(math.Abs(cursor-a.Start), math.Abs(cursor-a.End)); dist < best {
			best = dist
			target = a
		}
	}
	ev := editor.TimelineActionResized{Track: m.selectedTrack, ActionID: target.ID, Start: target.Start, End: target.End}
	if moveStart {
		ev.Start = cursor
	} else {
		ev.End = cursor
	}
	_ = m.handle(ev)
}

// previewCmd requests a new preview if the asset, poster or crop changed
func (m *model) previewCmd() tea.Cmd {
	cfg := config.Get()
	if !m.supportsKitty || !cfg.Preview.Enabled || m.poster == nil || m.posterAssetID != m.currentAssetID() {
		return nil
	}
	crop := m.editor.Params.Crop()
	key := fmt.Sprintf("%s|%v", m.posterAssetID, crop)
	if key == m.previewKey {
		return nil
	}
	m.previewKey = key
	return renderPreviewCmd(key, m.poster, crop)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cfg := config.Get()

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Paste {
			// A file dropped onto the terminal arrives as a pasted path
			path := cleanDroppedPath(string(msg.Runes))
			return m, func() tea.Msg { return loadRequestMsg{kind: mediaKindForPath(path), path: path} }
		}

		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ", "p":
			m.playPause()
		case "left":
			m.scrubTo(m.editor.Timeline.Cursor() - cfg.Playback.ScrubStep)
		case "right":
			m.scrubTo(m.editor.Timeline.Cursor() + cfg.Playback.ScrubStep)
		case "shift+left":
			m.scrubTo(m.editor.Timeline.Cursor() - 1)
		case "shift+right":
			m.scrubTo(m.editor.Timeline.Cursor() + 1)
		case "home":
			m.scrubTo(0)
		case "end":
			d, _ := m.editor.Playback.Duration()
			m.scrubTo(d)
		case "up":
			v := m.editor.Playback.State().Volume + cfg.Playback.VolumeStep
			_ = m.handle(editor.SliderChanged{Param: editor.SliderVolume, Value: v})
		case "down":
			v := m.editor.Playback.State().Volume - cfg.Playback.VolumeStep
			_ = m.handle(editor.SliderChanged{Param: editor.SliderVolume, Value: v})
		case "r":
			_ = m.handle(editor.RateSelected{Rate: m.editor.Playback.NextRate()})
		case "[":
			_ = m.handle(editor.SliderChanged{Param: editor.SliderTrimStart, Value: m.editor.Timeline.Cursor()})
		case "]":
			_ = m.handle(editor.SliderChanged{Param: editor.SliderTrimEnd, Value: m.editor.Timeline.Cursor()})
		case "t":
			if m.selectedTrack == editor.TrackVideo {
				m.selectedTrack = editor.TrackAudio
			} else {
				m.selectedTrack = editor.TrackVideo
			}
		case "{":
			m.resizeActionAtCursor(true)
		case "}":
			m.resizeActionAtCursor(false)
		case "tab":
			m.cropField = editor.CropFields[(int(m.cropField)+1)%len(editor.CropFields)]
		case "shift+tab":
			n := len(editor.CropFields)
			m.cropField = editor.CropFields[(int(m.cropField)+n-1)%n]
		case "+", "=":
			v := m.editor.Params.Crop().Field(m.cropField) + cfg.Playback.CropStep
			_ = m.handle(editor.SliderChanged{Param: editor.CropSlider(m.cropField), Value: v})
			return m, m.previewCmd()
		case "-", "_":
			v := m.editor.Params.Crop().Field(m.cropField) - cfg.Playback.CropStep
			_ = m.handle(editor.SliderChanged{Param: editor.CropSlider(m.cropField), Value: v})
			return m, m.previewCmd()
		case "?":
			m.showHelp = !m.showHelp
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case loadRequestMsg:
		if err := m.handle(editor.FileSelected{Kind: msg.kind, Path: msg.path}); err != nil {
			return m, nil
		}
		asset := m.editor.Playback.Asset()
		m.poster = nil
		m.posterAssetID = ""
		m.previewEncoded = ""
		m.previewKey = ""
		m.scrollOffset = 0
		m.scrollPause = 30
		m.scrollTick = 0
		if cfg.UI.ColorMode == "manual" {
			m.color = cfg.UI.Color
		}
		return m, loadPosterCmd(asset)

	case engineTimeMsg:
		if msg.assetID != m.currentAssetID() {
			return m, nil
		}
		// Clock ticks only surface errors, they never clear one
		if err := m.editor.Handle(editor.TimeAdvanced{Seconds: msg.seconds}); err != nil {
			m.lastError = err
		}

	case engineDurationMsg:
		if msg.assetID != m.currentAssetID() {
			return m, nil
		}
		_ = m.handle(editor.DurationResolved{Seconds: msg.seconds})

	case engineEndedMsg:
		if msg.assetID != m.currentAssetID() {
			return m, nil
		}
		_ = m.handle(editor.PlaybackEnded{})

	case engineErrMsg:
		slog.Error("engine failure", "err", msg.err)
		m.lastError = msg.err

	case posterMsg:
		if msg.assetID != m.currentAssetID() {
			return m, nil
		}
		m.poster = msg.img
		m.posterAssetID = msg.assetID
		return m, m.previewCmd()

	case previewMsg:
		if msg.key != m.previewKey {
			// superseded by a newer crop
			return m, nil
		}
		if msg.err != nil {
			slog.Warn("preview failed", "err", msg.err)
			m.previewEncoded = ""
			return m, nil
		}
		m.previewEncoded = msg.encoded
		if cfg.UI.ColorMode == "auto" && msg.color != "" {
			m.color = msg.color
		}

	case configReloadMsg:
		m.editor.Reconfigure(editorOptions(cfg))
		if cfg.UI.ColorMode == "manual" {
			m.color = cfg.UI.Color
		}
		if !cfg.Preview.Enabled {
			m.previewEncoded = ""
			m.previewKey = ""
			return m, watchConfigCmd()
		}
		// Sizes may have changed; force a re-render
		m.previewKey = ""
		return m, tea.Batch(watchConfigCmd(), m.previewCmd())

	case tickMsg:
		m.scrollTick++
		if m.scrollPause > 0 {
			m.scrollPause--
		} else if m.scrollTick%3 == 0 {
			m.scrollOffset++
			name := []rune(fileLabel(m.editor.Playback.Asset()))
			if len(name) > titleWidth(cfg) && m.scrollOffset >= len(name)+len([]rune(scrollSeparator)) {
				m.scrollOffset = 0
				m.scrollPause = 30
			}
		}
		return m, tickCmd()
	}

	return m, nil
}

// isNothingLoaded tells the "no file yet" state apart from real errors
func isNothingLoaded(err error) bool {
	return errors.Is(err, editor.ErrDurationUnknown)
}
