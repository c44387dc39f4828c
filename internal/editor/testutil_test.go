package editor

import (
	"errors"
	"testing"
)

// fakeEngine records every command it receives. Setting fail makes the next
// commands return that error.
type fakeEngine struct {
	calls   []string
	seeks   []float64
	volumes []float64
	rates   []float64
	loaded  []MediaAsset
	fail    error
}

var errEngine = errors.New("engine unavailable")

func (f *fakeEngine) Load(asset MediaAsset) error {
	f.calls = append(f.calls, "load")
	if f.fail != nil {
		return f.fail
	}
	f.loaded = append(f.loaded, asset)
	return nil
}

func (f *fakeEngine) Play() error {
	f.calls = append(f.calls, "play")
	return f.fail
}

func (f *fakeEngine) Pause() error {
	f.calls = append(f.calls, "pause")
	return f.fail
}

func (f *fakeEngine) Seek(seconds float64) error {
	f.calls = append(f.calls, "seek")
	if f.fail != nil {
		return f.fail
	}
	f.seeks = append(f.seeks, seconds)
	return nil
}

func (f *fakeEngine) SetVolume(v float64) error {
	f.calls = append(f.calls, "volume")
	if f.fail != nil {
		return f.fail
	}
	f.volumes = append(f.volumes, v)
	return nil
}

func (f *fakeEngine) SetRate(r float64) error {
	f.calls = append(f.calls, "rate")
	if f.fail != nil {
		return f.fail
	}
	f.rates = append(f.rates, r)
	return nil
}

func (f *fakeEngine) count(call string) int {
	n := 0
	for _, c := range f.calls {
		if c == call {
			n++
		}
	}
	return n
}

// newLoadedEditor returns an editor with an asset whose duration is resolved
func newLoadedEditor(t *testing.T, duration float64) (*Editor, *fakeEngine) {
	t.Helper()
	eng := &fakeEngine{}
	ed := New(eng, DefaultOptions())
	if _, err := ed.LoadAsset(KindVideo, "/media/clip.mp4"); err != nil {
		t.Fatalf("LoadAsset: %v", err)
	}
	if err := ed.Handle(DurationResolved{Seconds: duration}); err != nil {
		t.Fatalf("DurationResolved: %v", err)
	}
	return ed, eng
}

func assertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
}

func assertErrorIs(t *testing.T, err, target error) {
	t.Helper()
	if !errors.Is(err, target) {
		t.Fatalf("Expected error %v, got %v", target, err)
	}
}

func assertEqual(t *testing.T, got, want interface{}, msg string) {
	t.Helper()
	if got != want {
		t.Errorf("%s: got %v, want %v", msg, got, want)
	}
}
