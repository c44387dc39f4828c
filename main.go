package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/charmbracelet/bubbletea"

	"clipdeck/internal/editor"
)

var (
	colorFlag     string
	engineFlag    string
	noPreviewFlag bool
	audioFlag     bool
)

func init() {
	flag.StringVar(&colorFlag, "color", "", "Set the desired color (name or hex)")
	flag.StringVar(&colorFlag, "c", "", "Set the desired color (shorthand)")
	flag.StringVar(&engineFlag, "engine", "", "Playback engine: mpv or sim")
	flag.BoolVar(&noPreviewFlag, "no-preview", false, "Disable the crop preview")
	flag.BoolVar(&audioFlag, "audio", false, "Treat the file as audio regardless of its extension")
}

// setupLogging sends the log to a file when CLIPDECK_DEBUG is set, since the
// terminal belongs to the TUI. The value is the file path; "1" means
// clipdeck.log in the working directory.
func setupLogging() (io.Closer, error) {
	path := os.Getenv("CLIPDECK_DEBUG")
	if path == "" {
		discardLogs()
		return nil, nil
	}
	if path == "1" || path == "true" {
		path = "clipdeck.log"
	}
	f, err := tea.LogToFile(path, "clipdeck")
	if err != nil {
		return nil, fmt.Errorf("open log %s: %w", path, err)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug})))
	return f, nil
}

func discardLogs() {
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func main() {
	flag.Parse()
	initConfig()

	logFile, err := setupLogging()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		discardLogs()
	}
	if logFile != nil {
		defer logFile.Close()
	}

	var path string
	var kind editor.MediaKind
	if flag.NArg() > 0 {
		path, err = filepath.Abs(flag.Arg(0))
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		kind = mediaKindForPath(path)
		if audioFlag {
			kind = editor.KindAudio
		}
	}

	cfg := config.Get()
	engine, err := newPlaybackEngine(cfg)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	ed := editor.New(engine, editorOptions(cfg))
	p := tea.NewProgram(newModel(ed, engine, path, kind), tea.WithAltScreen())

	if err := engine.Start(p.Send); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	slog.Info("engine started", "kind", cfg.Engine.Kind)

	_, runErr := p.Run()
	if err := engine.Close(); err != nil {
		slog.Warn("engine close", "err", err)
	}
	if runErr != nil {
		fmt.Printf("Error: %v", runErr)
		os.Exit(1)
	}
}
