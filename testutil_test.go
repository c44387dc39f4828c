package main

import (
	"image"
	"image/color"
	"testing"

	"github.com/charmbracelet/bubbletea"
)

// generateTestImage creates a simple test image with specified dimensions and colors
func generateTestImage(width, height int, fillColor color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, fillColor)
		}
	}
	return img
}

var (
	quadrantTopLeft     = color.RGBA{255, 0, 0, 255}
	quadrantTopRight    = color.RGBA{255, 200, 0, 255}
	quadrantBottomRight = color.RGBA{0, 0, 255, 255}
	quadrantBottomLeft  = color.RGBA{200, 0, 200, 255}
)

// generateQuadrantImage paints the quadrants red, yellow, blue and magenta
// (top-left, top-right, bottom-right, bottom-left) so crops can be checked
// by sampling corners
func generateQuadrantImage(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var c color.RGBA
			switch {
			case x < width/2 && y < height/2:
				c = quadrantTopLeft
			case y < height/2:
				c = quadrantTopRight
			case x >= width/2:
				c = quadrantBottomRight
			default:
				c = quadrantBottomLeft
			}
			img.Set(x, y, c)
		}
	}
	return img
}

// recorder collects messages an engine posts to the program
type recorder struct {
	msgs chan tea.Msg
}

func newRecorder() *recorder {
	return &recorder{msgs: make(chan tea.Msg, 64)}
}

func (r *recorder) send(msg tea.Msg) {
	r.msgs <- msg
}

// assertNoError is a test helper that fails the test if an error occurred
func assertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
}

// assertEqual is a generic test helper for comparing values
func assertEqual(t *testing.T, got, want interface{}, msg string) {
	t.Helper()
	if got != want {
		t.Errorf("%s: got %v, want %v", msg, got, want)
	}
}

// isValidHexColor checks if a string is a valid hex color (e.g., "#RRGGBB")
func isValidHexColor(color string) bool {
	if len(color) != 7 || color[0] != '#' {
		return false
	}
	for i := 1; i < 7; i++ {
		c := color[i]
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')) {
			return false
		}
	}
	return true
}
