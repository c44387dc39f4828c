package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/bubbletea"

	"clipdeck/internal/editor"
)

// Property observer ids registered with mpv
const (
	mpvObserveTimePos    = 1
	mpvObserveDuration   = 2
	mpvObserveEOFReached = 3
)

// mpvEngine drives an mpv process over its JSON IPC socket. Commands are
// fire-and-forget; mpv's replies and property changes are read on a separate
// goroutine and posted to the program.
type mpvEngine struct {
	path   string
	socket string

	mu      sync.Mutex
	cmd     *exec.Cmd
	conn    net.Conn
	assetID string
	nextID  int
	// loaded is false from Load until mpv reports file-loaded; clock
	// reports in between may still belong to the previous file
	loaded bool
}

func newMpvEngine(path string) *mpvEngine {
	return &mpvEngine{
		path:   path,
		socket: filepath.Join(os.TempDir(), fmt.Sprintf("clipdeck-mpv-%d.sock", os.Getpid())),
	}
}

// Start launches mpv idle and subscribes to its clock and duration
func (e *mpvEngine) Start(send func(tea.Msg)) error {
	_ = os.Remove(e.socket)
	cmd := exec.Command(e.path,
		"--idle=yes",
		"--force-window=yes",
		"--keep-open=yes",
		"--pause=yes",
		"--no-terminal",
		"--input-ipc-server="+e.socket,
	)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", e.path, err)
	}

	conn, err := dialWithRetry(e.socket, 50, 100*time.Millisecond)
	if err != nil {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
		_ = os.Remove(e.socket)
		return fmt.Errorf("connect to mpv: %w", err)
	}
	return e.attach(cmd, conn, send)
}

// attach subscribes to the properties the editor needs and starts reading.
// On failure the process is stopped and the socket removed.
func (e *mpvEngine) attach(cmd *exec.Cmd, conn net.Conn, send func(tea.Msg)) error {
	e.mu.Lock()
	e.cmd = cmd
	e.conn = conn
	e.mu.Unlock()

	for _, p := range []struct {
		id   int
		name string
	}{
		{mpvObserveTimePos, "time-pos"},
		{mpvObserveDuration, "duration"},
		{mpvObserveEOFReached, "eof-reached"},
	} {
		if err := e.command("observe_property", p.id, p.name); err != nil {
			if cerr := e.Close(); cerr != nil {
				slog.Warn("mpv cleanup", "err", cerr)
			}
			return fmt.Errorf("observe %s: %w", p.name, err)
		}
	}

	go e.readLoop(conn, send)
	return nil
}

func dialWithRetry(socket string, attempts int, wait time.Duration) (net.Conn, error) {
	var lastErr error
	for i := 0; i < attempts; i++ {
		conn, err := net.Dial("unix", socket)
		if err == nil {
			return conn, nil
		}
		lastErr = err
		time.Sleep(wait)
	}
	return nil, lastErr
}

func (e *mpvEngine) readLoop(conn net.Conn, send func(tea.Msg)) {
	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		e.mu.Lock()
		msg, fileLoaded := decodeMpvLine(scanner.Bytes(), e.assetID, e.loaded)
		if fileLoaded {
			e.loaded = true
		}
		e.mu.Unlock()
		if msg != nil {
			send(msg)
		}
	}
	err := scanner.Err()
	if err == nil {
		err = errors.New("mpv closed the connection")
	}
	send(engineErrMsg{err: fmt.Errorf("mpv: %w", err)})
}

// mpvLine is either a command reply or an event
type mpvLine struct {
	Event     string          `json:"event"`
	ID        int             `json:"id"`
	Name      string          `json:"name"`
	Data      json.RawMessage `json:"data"`
	Error     string          `json:"error"`
	RequestID int             `json:"request_id"`
}

// decodeMpvLine turns one IPC line into a program message, or nil when the
// line carries nothing the editor needs. fileLoaded reports mpv's file-loaded
// event. Until then (loaded false) clock and end-of-file reports are dropped,
// since they may still describe the previous file.
func decodeMpvLine(line []byte, assetID string, loaded bool) (msg tea.Msg, fileLoaded bool) {
	var l mpvLine
	if err := json.Unmarshal(line, &l); err != nil {
		return engineErrMsg{err: fmt.Errorf("mpv: decode %q: %w", line, err)}, false
	}

	switch l.Event {
	case "":
		if l.Error != "" && l.Error != "success" {
			return engineErrMsg{err: fmt.Errorf("mpv: request %d: %s", l.RequestID, l.Error)}, false
		}
		return nil, false
	case "file-loaded":
		return nil, true
	case "property-change":
	default:
		return nil, false
	}

	if l.ID == mpvObserveEOFReached {
		var eof bool
		if !loaded || json.Unmarshal(l.Data, &eof) != nil || !eof {
			return nil, false
		}
		return engineEndedMsg{assetID: assetID}, false
	}

	// data is null while nothing is loaded
	var value *float64
	if len(l.Data) == 0 || json.Unmarshal(l.Data, &value) != nil || value == nil {
		return nil, false
	}
	switch l.ID {
	case mpvObserveTimePos:
		if !loaded {
			return nil, false
		}
		return engineTimeMsg{assetID: assetID, seconds: *value}, false
	case mpvObserveDuration:
		return engineDurationMsg{assetID: assetID, seconds: *value}, false
	}
	return nil, false
}

// encodeMpvCommand renders one IPC request line
func encodeMpvCommand(requestID int, args ...interface{}) ([]byte, error) {
	line, err := json.Marshal(struct {
		Command   []interface{} `json:"command"`
		RequestID int           `json:"request_id"`
	}{Command: args, RequestID: requestID})
	if err != nil {
		return nil, err
	}
	return append(line, '\n'), nil
}

func (e *mpvEngine) command(args ...interface{}) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.conn == nil {
		return errors.New("mpv is not running")
	}
	e.nextID++
	line, err := encodeMpvCommand(e.nextID, args...)
	if err != nil {
		return fmt.Errorf("mpv %v: %w", args[0], err)
	}
	if _, err := e.conn.Write(line); err != nil {
		return fmt.Errorf("mpv %v: %w", args[0], err)
	}
	return nil
}

func (e *mpvEngine) Load(asset editor.MediaAsset) error {
	if err := e.command("set_property", "pause", true); err != nil {
		return err
	}
	e.mu.Lock()
	e.assetID = asset.ID
	e.loaded = false
	e.mu.Unlock()
	return e.command("loadfile", asset.Path, "replace")
}

func (e *mpvEngine) Play() error {
	return e.command("set_property", "pause", false)
}

func (e *mpvEngine) Pause() error {
	return e.command("set_property", "pause", true)
}

func (e *mpvEngine) Seek(seconds float64) error {
	return e.command("seek", seconds, "absolute")
}

// SetVolume maps [0,1] onto mpv's 0-100 scale
func (e *mpvEngine) SetVolume(volume float64) error {
	return e.command("set_property", "volume", volume*100)
}

func (e *mpvEngine) SetRate(rate float64) error {
	return e.command("set_property", "speed", rate)
}

// Close asks mpv to quit and waits briefly before killing it
func (e *mpvEngine) Close() error {
	_ = e.command("quit")

	e.mu.Lock()
	cmd, conn := e.cmd, e.conn
	e.conn = nil
	e.mu.Unlock()

	if conn != nil {
		_ = conn.Close()
	}
	defer os.Remove(e.socket)
	if cmd == nil {
		return nil
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()
	select {
	case <-done:
		return nil
	case <-time.After(2 * time.Second):
		_ = cmd.Process.Kill()
		return <-done
	}
}
