package editor

import "math"

// Options tunes the editor core. The zero value is not usable; start from
// DefaultOptions.
type Options struct {
	// Rates is the closed set of playback rates SetRate accepts
	Rates []float64
	// DefaultVolume is the initial volume, clamped to [0,1]
	DefaultVolume float64
	// EchoEpsilon is how close (seconds) an engine time advance must be to the
	// last scrub target to count as the engine confirming that seek
	EchoEpsilon float64
	// StaleLimit caps how many pre-seek time advances are dropped while a
	// scrub is waiting for confirmation
	StaleLimit int
}

// DefaultOptions returns the rate set {0.5, 1, 1.5, 2}, volume 0.8, a 250ms
// echo window and a stale limit of 2.
func DefaultOptions() Options {
	return Options{
		Rates:         []float64{0.5, 1, 1.5, 2},
		DefaultVolume: 0.8,
		EchoEpsilon:   0.25,
		StaleLimit:    2,
	}
}

func (o Options) normalized() Options {
	def := DefaultOptions()
	if len(o.Rates) == 0 {
		o.Rates = def.Rates
	}
	o.Rates = append([]float64(nil), o.Rates...)
	if math.IsNaN(o.DefaultVolume) {
		o.DefaultVolume = def.DefaultVolume
	}
	o.DefaultVolume = clamp(o.DefaultVolume, 0, 1)
	if math.IsNaN(o.EchoEpsilon) || o.EchoEpsilon < 0 {
		o.EchoEpsilon = def.EchoEpsilon
	}
	if o.StaleLimit < 0 {
		o.StaleLimit = 0
	}
	return o
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
