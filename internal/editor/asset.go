package editor

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// MediaKind is the kind of source a MediaAsset was loaded from
type MediaKind string

const (
	KindVideo MediaKind = "video"
	KindAudio MediaKind = "audio"
)

// ParseMediaKind accepts "video" or "audio" (case-insensitive)
func ParseMediaKind(s string) (MediaKind, error) {
	switch MediaKind(strings.ToLower(strings.TrimSpace(s))) {
	case KindVideo:
		return KindVideo, nil
	case KindAudio:
		return KindAudio, nil
	}
	return "", fmt.Errorf("%w: media kind %q", ErrInvalidParameter, s)
}

// MediaAsset identifies a loaded source. Duration is meaningful only once
// DurationKnown is set; after that the asset does not change until a new
// one replaces it.
type MediaAsset struct {
	ID            string
	Kind          MediaKind
	Path          string
	Duration      float64
	DurationKnown bool
}

// NewMediaAsset creates an asset with a fresh id and an unknown duration
func NewMediaAsset(kind MediaKind, path string) (MediaAsset, error) {
	if kind != KindVideo && kind != KindAudio {
		return MediaAsset{}, fmt.Errorf("%w: media kind %q", ErrInvalidParameter, kind)
	}
	if strings.TrimSpace(path) == "" {
		return MediaAsset{}, fmt.Errorf("%w: empty media path", ErrInvalidParameter)
	}
	return MediaAsset{
		ID:   uuid.NewString(),
		Kind: kind,
		Path: path,
	}, nil
}

// Loaded reports whether the asset refers to an actual source
func (a MediaAsset) Loaded() bool {
	return a.ID != ""
}
