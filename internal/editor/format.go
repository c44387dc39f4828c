package editor

import (
	"fmt"
	"math"
)

// FormatTime renders seconds as "H:MM:SS" from one hour upward and as
// "M:SS" below that. Fractions are dropped; negative and non-finite inputs
// render as "0:00".
func FormatTime(seconds float64) string {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds < 0 {
		seconds = 0
	}
	total := int64(math.Floor(seconds))
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
