package main

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbletea"

	"clipdeck/internal/editor"
)

// simEngine is a headless engine with a virtual clock. It decodes nothing:
// the duration comes from ffprobe and the position is interpolated from the
// last seek or play, like a player whose position is only sampled.
type simEngine struct {
	interval time.Duration
	lookup   func(ctx context.Context, path string) (float64, error)
	now      func() time.Time

	mu           sync.Mutex
	send         func(tea.Msg)
	stop         chan struct{}
	assetID      string
	duration     float64
	known        bool
	playing      bool
	rate         float64
	volume       float64
	lastPosition float64
	lastTime     time.Time
	dirty        bool
}

func newSimEngine(ffprobePath string, interval time.Duration) *simEngine {
	return &simEngine{
		interval: interval,
		lookup: func(ctx context.Context, path string) (float64, error) {
			return ffprobeDuration(ctx, ffprobePath, path)
		},
		now:  time.Now,
		rate: 1,
	}
}

// ffprobeDuration asks ffprobe for the container duration in seconds
func ffprobeDuration(ctx context.Context, ffprobePath, mediaPath string) (float64, error) {
	cmd := exec.CommandContext(ctx, ffprobePath,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		mediaPath,
	)
	out, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe %s: %w", mediaPath, err)
	}
	d, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse duration %q: %w", strings.TrimSpace(string(out)), err)
	}
	return d, nil
}

// Start begins emitting time advances every interval
func (s *simEngine) Start(send func(tea.Msg)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stop != nil {
		return fmt.Errorf("engine already started")
	}
	s.send = send
	s.stop = make(chan struct{})
	go s.run(s.stop)
	return nil
}

func (s *simEngine) run(stop chan struct{}) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.tick()
		}
	}
}

// tick emits the current position while playing, or once after a seek, and
// reports the end of the media when playback runs into it
func (s *simEngine) tick() {
	s.mu.Lock()
	if !s.playing && !s.dirty {
		s.mu.Unlock()
		return
	}
	pos := s.position()
	ended := s.playing && s.known && pos >= s.duration
	if ended {
		// end of media: hold the last frame like a keep-open player
		s.lastPosition = s.duration
		s.lastTime = s.now()
		s.playing = false
	}
	s.dirty = false
	assetID := s.assetID
	send := s.send
	s.mu.Unlock()

	if send == nil {
		return
	}
	send(engineTimeMsg{assetID: assetID, seconds: pos})
	if ended {
		send(engineEndedMsg{assetID: assetID})
	}
}

// position interpolates from the last anchor; callers hold mu
func (s *simEngine) position() float64 {
	if !s.playing {
		return s.lastPosition
	}
	elapsed := s.now().Sub(s.lastTime).Seconds()
	pos := s.lastPosition + elapsed*s.rate
	if s.known && pos > s.duration {
		pos = s.duration
	}
	return pos
}

// rebase moves the anchor to now so rate and state changes apply from here on
func (s *simEngine) rebase() {
	s.lastPosition = s.position()
	s.lastTime = s.now()
}

func (s *simEngine) Load(asset editor.MediaAsset) error {
	s.mu.Lock()
	s.assetID = asset.ID
	s.known = false
	s.duration = 0
	s.playing = false
	s.lastPosition = 0
	s.lastTime = s.now()
	s.dirty = false
	s.mu.Unlock()

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		d, err := s.lookup(ctx, asset.Path)

		s.mu.Lock()
		if s.assetID != asset.ID {
			// superseded by a newer load
			s.mu.Unlock()
			return
		}
		if err == nil {
			s.duration = d
			s.known = true
		}
		send := s.send
		s.mu.Unlock()

		if send == nil {
			return
		}
		if err != nil {
			send(engineErrMsg{err: err})
			return
		}
		send(engineDurationMsg{assetID: asset.ID, seconds: d})
	}()
	return nil
}

func (s *simEngine) Play() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.playing {
		return nil
	}
	s.lastTime = s.now()
	s.playing = true
	return nil
}

func (s *simEngine) Pause() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rebase()
	s.playing = false
	return nil
}

func (s *simEngine) Seek(seconds float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seconds < 0 {
		seconds = 0
	}
	if s.known && seconds > s.duration {
		seconds = s.duration
	}
	s.lastPosition = seconds
	s.lastTime = s.now()
	s.dirty = true
	return nil
}

func (s *simEngine) SetVolume(volume float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.volume = volume
	return nil
}

func (s *simEngine) SetRate(rate float64) error {
	if rate <= 0 {
		return fmt.Errorf("rate must be positive (got %v)", rate)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rebase()
	s.rate = rate
	return nil
}

func (s *simEngine) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stop != nil {
		close(s.stop)
		s.stop = nil
	}
	return nil
}
