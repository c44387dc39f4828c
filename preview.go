package main

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/EdlinOrg/prominentcolor"
	"github.com/nfnt/resize"
	"github.com/oliamb/cutter"
	_ "golang.org/x/image/webp"

	"clipdeck/internal/editor"
)

// findPoster looks for a still image next to the media file to stand in for
// the video frame in the crop preview
func findPoster(mediaPath string) (string, bool) {
	if mediaPath == "" {
		return "", false
	}

	base := strings.TrimSuffix(mediaPath, filepath.Ext(mediaPath))
	dir := filepath.Dir(mediaPath)

	var candidates []string
	for _, ext := range []string{".jpg", ".jpeg", ".png", ".webp"} {
		candidates = append(candidates, base+ext, base+"-poster"+ext)
	}
	for _, ext := range []string{".jpg", ".jpeg", ".png", ".webp"} {
		candidates = append(candidates, filepath.Join(dir, "poster"+ext), filepath.Join(dir, "cover"+ext))
	}

	for _, candidate := range candidates {
		if candidate == mediaPath {
			continue
		}
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}
	}
	return "", false
}

// decodeImageData decodes base64-encoded or raw image bytes
func decodeImageData(data []byte) (image.Image, error) {
	imageData := data
	if decoded, err := base64.StdEncoding.DecodeString(string(data)); err == nil {
		imageData = decoded
	}
	if len(imageData) == 0 {
		return nil, fmt.Errorf("empty image data")
	}

	img, _, err := image.Decode(bytes.NewReader(imageData))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}

func loadPoster(path string) (image.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read poster: %w", err)
	}
	return decodeImageData(data)
}

// cropRectPixels maps a percentage CropRect onto img's bounds. A rectangle
// reaching past the frame edge is cut at the edge.
func cropRectPixels(bounds image.Rectangle, crop editor.CropRect) image.Rectangle {
	w := float64(bounds.Dx())
	h := float64(bounds.Dy())
	x0 := bounds.Min.X + int(math.Round(w*crop.X/100))
	y0 := bounds.Min.Y + int(math.Round(h*crop.Y/100))
	x1 := x0 + int(math.Round(w*crop.Width/100))
	y1 := y0 + int(math.Round(h*crop.Height/100))
	return image.Rect(x0, y0, x1, y1).Intersect(bounds)
}

// cropImage applies the crop rectangle to img
func cropImage(img image.Image, crop editor.CropRect) (image.Image, error) {
	if img == nil {
		return nil, fmt.Errorf("nil image")
	}
	bounds := img.Bounds()
	r := cropRectPixels(bounds, crop)
	if r.Empty() {
		return nil, fmt.Errorf("crop %+v leaves no visible area", crop)
	}
	return cutter.Crop(img, cutter.Config{
		Width:   r.Dx(),
		Height:  r.Dy(),
		Anchor:  r.Min.Sub(bounds.Min),
		Mode:    cutter.TopLeft,
		Options: cutter.Copy,
	})
}

// extractAccentColor picks a prominent color light and saturated enough to
// read on a dark terminal, as "#rrggbb"
func extractAccentColor(img image.Image) (string, error) {
	if img == nil {
		return "", fmt.Errorf("nil image")
	}
	colors, err := prominentcolor.KmeansWithArgs(prominentcolor.ArgumentNoCropping, img)
	if err != nil || len(colors) == 0 {
		return "", fmt.Errorf("no suitable colors found")
	}

	for _, c := range colors {
		lightness, saturation := hsl(c.Color.R, c.Color.G, c.Color.B)
		if lightness >= 0.3 && lightness <= 0.85 && saturation >= 0.25 {
			return fmt.Sprintf("#%02x%02x%02x", c.Color.R, c.Color.G, c.Color.B), nil
		}
	}
	c := colors[0]
	return fmt.Sprintf("#%02x%02x%02x", c.Color.R, c.Color.G, c.Color.B), nil
}

// hsl returns lightness and saturation of an 8-bit RGB color
func hsl(r, g, b uint32) (lightness, saturation float64) {
	rf, gf, bf := float64(r)/255, float64(g)/255, float64(b)/255
	hi := math.Max(rf, math.Max(gf, bf))
	lo := math.Min(rf, math.Min(gf, bf))
	lightness = (hi + lo) / 2
	if hi == lo {
		return lightness, 0
	}
	if lightness > 0.5 {
		return lightness, (hi - lo) / (2 - hi - lo)
	}
	return lightness, (hi - lo) / (hi + lo)
}

// Check if terminal supports Kitty graphics protocol
func supportsKittyGraphics() bool {
	term := os.Getenv("TERM")
	termProgram := os.Getenv("TERM_PROGRAM")

	if strings.Contains(term, "kitty") || strings.Contains(term, "konsole") {
		return true
	}
	if termProgram == "ghostty" || termProgram == "WezTerm" {
		return true
	}
	return false
}

// Image id reused for every preview so each frame replaces the last
const previewImageID = 43

// encodeForKitty scales img to widthPixels and wraps it in Kitty graphics
// escapes sized to widthColumns terminal cells
func encodeForKitty(img image.Image, widthPixels, widthColumns int) (string, error) {
	if img == nil {
		return "", fmt.Errorf("nil image")
	}

	resized := resize.Resize(uint(widthPixels), 0, img, resize.Lanczos3)

	var buf bytes.Buffer
	if err := png.Encode(&buf, resized); err != nil {
		return "", fmt.Errorf("failed to encode PNG: %w", err)
	}
	encoded := base64.StdEncoding.EncodeToString(buf.Bytes())

	// Kitty protocol needs chunking for large payloads (max 4096 bytes per chunk)
	const chunkSize = 4096
	var result strings.Builder
	result.WriteString(fmt.Sprintf("\033_Ga=d,d=I,i=%d\033\\", previewImageID))

	if len(encoded) <= chunkSize {
		result.WriteString(fmt.Sprintf("\033_Ga=T,f=100,t=d,i=%d,c=%d,C=1;%s\033\\", previewImageID, widthColumns, encoded))
		return result.String(), nil
	}
	for i := 0; i < len(encoded); i += chunkSize {
		end := i + chunkSize
		if end > len(encoded) {
			end = len(encoded)
		}
		chunk := encoded[i:end]

		switch {
		case i == 0:
			result.WriteString(fmt.Sprintf("\033_Ga=T,f=100,t=d,i=%d,c=%d,C=1,m=1;%s\033\\", previewImageID, widthColumns, chunk))
		case end == len(encoded):
			result.WriteString(fmt.Sprintf("\033_Gm=0;%s\033\\", chunk))
		default:
			result.WriteString(fmt.Sprintf("\033_Gm=1;%s\033\\", chunk))
		}
	}
	return result.String(), nil
}

// renderPreview crops the poster, optionally extracts an accent color from
// the visible region, and encodes the result for the terminal
func renderPreview(poster image.Image, crop editor.CropRect, extractColor bool, widthPixels, widthColumns int) (color string, encoded string, err error) {
	visible, err := cropImage(poster, crop)
	if err != nil {
		return "", "", err
	}
	if extractColor {
		if c, err := extractAccentColor(visible); err == nil {
			color = c
		}
	}
	encoded, err = encodeForKitty(visible, widthPixels, widthColumns)
	if err != nil {
		return color, "", err
	}
	return color, encoded, nil
}
