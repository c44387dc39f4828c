package main

import (
	"path/filepath"
	"strings"

	"clipdeck/internal/editor"
)

// scrollText returns a scrolling window of text with smooth looping
func scrollText(text string, max int, offset int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}

	fullText := append(runes, []rune(scrollSeparator)...)
	textLen := len(fullText)
	offset = offset % textLen

	result := make([]rune, 0, max)
	for i := 0; i < max; i++ {
		result = append(result, fullText[(offset+i)%textLen])
	}
	return string(result)
}

const scrollSeparator = "  •  "

var audioExtensions = map[string]bool{
	".mp3": true, ".wav": true, ".ogg": true, ".oga": true, ".flac": true,
	".m4a": true, ".aac": true, ".opus": true, ".wma": true,
}

// mediaKindForPath guesses the media kind from the file extension
func mediaKindForPath(path string) editor.MediaKind {
	if audioExtensions[strings.ToLower(filepath.Ext(path))] {
		return editor.KindAudio
	}
	return editor.KindVideo
}

// cleanDroppedPath turns text pasted by a terminal file drop into a path:
// surrounding quotes, a file:// prefix and backslash escapes are removed
func cleanDroppedPath(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && (s[0] == '\'' || s[0] == '"') && s[len(s)-1] == s[0] {
		s = s[1 : len(s)-1]
	}
	s = strings.TrimPrefix(s, "file://")
	return strings.ReplaceAll(s, "\\ ", " ")
}
