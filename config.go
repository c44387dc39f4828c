package main

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"clipdeck/internal/editor"
)

// Config holds all application configuration
type Config struct {
	UI struct {
		Color     string `mapstructure:"color"`
		ColorMode string `mapstructure:"color_mode"`
		MaxWidth  int    `mapstructure:"max_width"`
	} `mapstructure:"ui"`
	Playback struct {
		DefaultVolume float64   `mapstructure:"default_volume"`
		Rates         []float64 `mapstructure:"rates"`
		VolumeStep    float64   `mapstructure:"volume_step"`
		ScrubStep     float64   `mapstructure:"scrub_step"`
		CropStep      float64   `mapstructure:"crop_step"`
	} `mapstructure:"playback"`
	Sync struct {
		EchoEpsilon float64 `mapstructure:"echo_epsilon"`
		StaleLimit  int     `mapstructure:"stale_limit"`
	} `mapstructure:"sync"`
	Preview struct {
		Enabled      bool `mapstructure:"enabled"`
		WidthPixels  int  `mapstructure:"width_pixels"`
		WidthColumns int  `mapstructure:"width_columns"`
		Padding      int  `mapstructure:"padding"`
	} `mapstructure:"preview"`
	Engine struct {
		Kind        string `mapstructure:"kind"`
		MpvPath     string `mapstructure:"mpv_path"`
		FfprobePath string `mapstructure:"ffprobe_path"`
	} `mapstructure:"engine"`
	Timing struct {
		UIRefreshMs int `mapstructure:"ui_refresh_ms"`
	} `mapstructure:"timing"`
}

// SafeConfig wraps Config with thread-safe access
type SafeConfig struct {
	mu  sync.RWMutex
	cfg Config
}

// Get returns a copy of the current config (thread-safe read)
func (sc *SafeConfig) Get() Config {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	cfg := sc.cfg
	cfg.Playback.Rates = append([]float64(nil), sc.cfg.Playback.Rates...)
	return cfg
}

// Set updates the config (thread-safe write)
func (sc *SafeConfig) Set(cfg Config) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	cfg.Playback.Rates = append([]float64(nil), cfg.Playback.Rates...)
	sc.cfg = cfg
}

var config = &SafeConfig{}

// Config file changed notification
type configReloadMsg struct{}

var configChangeChan = make(chan struct{}, 1)

// Watch for config file changes
func watchConfigCmd() tea.Cmd {
	return func() tea.Msg {
		<-configChangeChan
		return configReloadMsg{}
	}
}

// defaultConfig mirrors the viper defaults; invalid fields fall back to it
func defaultConfig() Config {
	var cfg Config
	cfg.UI.Color = "2"
	cfg.UI.ColorMode = "manual"
	cfg.UI.MaxWidth = 72
	cfg.Playback.DefaultVolume = 0.8
	cfg.Playback.Rates = []float64{0.5, 1, 1.5, 2}
	cfg.Playback.VolumeStep = 0.1
	cfg.Playback.ScrubStep = 5
	cfg.Playback.CropStep = 5
	cfg.Sync.EchoEpsilon = 0.25
	cfg.Sync.StaleLimit = 2
	cfg.Preview.Enabled = true
	cfg.Preview.WidthPixels = 320
	cfg.Preview.WidthColumns = 16
	cfg.Preview.Padding = 18
	cfg.Engine.Kind = "mpv"
	cfg.Engine.MpvPath = "mpv"
	cfg.Engine.FfprobePath = "ffprobe"
	cfg.Timing.UIRefreshMs = 100
	return cfg
}

func setViperDefaults(v *viper.Viper) {
	def := defaultConfig()
	v.SetDefault("ui.color", def.UI.Color)
	v.SetDefault("ui.color_mode", def.UI.ColorMode)
	v.SetDefault("ui.max_width", def.UI.MaxWidth)
	v.SetDefault("playback.default_volume", def.Playback.DefaultVolume)
	v.SetDefault("playback.rates", def.Playback.Rates)
	v.SetDefault("playback.volume_step", def.Playback.VolumeStep)
	v.SetDefault("playback.scrub_step", def.Playback.ScrubStep)
	v.SetDefault("playback.crop_step", def.Playback.CropStep)
	v.SetDefault("sync.echo_epsilon", def.Sync.EchoEpsilon)
	v.SetDefault("sync.stale_limit", def.Sync.StaleLimit)
	v.SetDefault("preview.enabled", def.Preview.Enabled)
	v.SetDefault("preview.width_pixels", def.Preview.WidthPixels)
	v.SetDefault("preview.width_columns", def.Preview.WidthColumns)
	v.SetDefault("preview.padding", def.Preview.Padding)
	v.SetDefault("engine.kind", def.Engine.Kind)
	v.SetDefault("engine.mpv_path", def.Engine.MpvPath)
	v.SetDefault("engine.ffprobe_path", def.Engine.FfprobePath)
	v.SetDefault("timing.ui_refresh_ms", def.Timing.UIRefreshMs)
}

func initConfig() {
	setViperDefaults(viper.GetViper())

	// Set config file location following XDG standard
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			configHome = filepath.Join(homeDir, ".config")
		}
	}
	if configHome != "" {
		viper.AddConfigPath(filepath.Join(configHome, "clipdeck"))
	}

	// Environment variable support with CLIPDECK_ prefix
	viper.SetEnvPrefix("CLIPDECK")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Fprintf(os.Stderr, "Warning: Error reading config file: %v\n", err)
		}
	}

	// Command-line flags take precedence
	if colorFlag != "" {
		viper.Set("ui.color", colorFlag)
	}
	if engineFlag != "" {
		viper.Set("engine.kind", engineFlag)
	}
	if noPreviewFlag {
		viper.Set("preview.enabled", false)
	}

	cfg, errs := loadConfig(viper.GetViper())
	printConfigWarnings(errs)
	config.Set(cfg)

	viper.OnConfigChange(func(e fsnotify.Event) {
		newCfg, errs := loadConfig(viper.GetViper())
		if len(errs) > 0 {
			// stderr belongs to the TUI now
			for _, err := range errs {
				slog.Warn("config reload", "file", e.Name, "err", err)
			}
		}
		config.Set(newCfg)
		select {
		case configChangeChan <- struct{}{}:
		default:
			// Channel full, skip notification
		}
	})
	viper.WatchConfig()
}

// loadConfig unmarshals v and replaces invalid fields with defaults
func loadConfig(v *viper.Viper) (Config, []error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return defaultConfig(), []error{configError{field: "config", message: err.Error()}}
	}
	errs := validateConfig(&cfg)
	applyDefaultsForInvalidFields(&cfg, errs)
	return cfg, errs
}

// configError describes one invalid configuration field
type configError struct {
	field   string
	message string
}

func (e configError) Error() string {
	return fmt.Sprintf("%s: %s", e.field, e.message)
}

var hexColorPattern = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// isValidColor accepts ANSI codes 0-255 and #RGB / #RRGGBB hex colors
func isValidColor(color string) bool {
	if strings.HasPrefix(color, "#") {
		return hexColorPattern.MatchString(color)
	}
	if color == "" || len(color) > 3 {
		return false
	}
	n, err := strconv.Atoi(color)
	return err == nil && n >= 0 && n <= 255 && strconv.Itoa(n) == color
}

// validateConfig returns one configError per invalid field
func validateConfig(cfg *Config) []error {
	var errs []error
	add := func(field, format string, args ...interface{}) {
		errs = append(errs, configError{field: field, message: fmt.Sprintf(format, args...)})
	}

	if !isValidColor(cfg.UI.Color) {
		add("ui.color", "invalid color format '%s'", cfg.UI.Color)
	}
	if cfg.UI.ColorMode != "manual" && cfg.UI.ColorMode != "auto" {
		add("ui.color_mode", "must be 'manual' or 'auto' (got '%s')", cfg.UI.ColorMode)
	}
	if cfg.UI.MaxWidth < 40 {
		add("ui.max_width", "must be at least 40 (got %d)", cfg.UI.MaxWidth)
	}

	if v := cfg.Playback.DefaultVolume; math.IsNaN(v) || v < 0 || v > 1 {
		add("playback.default_volume", "must be within [0,1] (got %v)", v)
	}
	if len(cfg.Playback.Rates) == 0 {
		add("playback.rates", "must list at least one rate")
	}
	for _, r := range cfg.Playback.Rates {
		if math.IsNaN(r) || r <= 0 || r > 16 {
			add("playback.rates", "rate %v outside (0,16]", r)
			break
		}
	}
	if v := cfg.Playback.VolumeStep; math.IsNaN(v) || v <= 0 || v > 1 {
		add("playback.volume_step", "must be within (0,1] (got %v)", v)
	}
	if v := cfg.Playback.ScrubStep; math.IsNaN(v) || v <= 0 {
		add("playback.scrub_step", "must be positive (got %v)", v)
	}
	if v := cfg.Playback.CropStep; math.IsNaN(v) || v <= 0 || v > 100 {
		add("playback.crop_step", "must be within (0,100] (got %v)", v)
	}

	if v := cfg.Sync.EchoEpsilon; math.IsNaN(v) || v < 0 || v > 5 {
		add("sync.echo_epsilon", "must be within [0,5] seconds (got %v)", v)
	}
	if cfg.Sync.StaleLimit < 0 || cfg.Sync.StaleLimit > 50 {
		add("sync.stale_limit", "must be within [0,50] (got %d)", cfg.Sync.StaleLimit)
	}

	if cfg.Preview.WidthPixels < 16 || cfg.Preview.WidthPixels > 2000 {
		add("preview.width_pixels", "must be within [16,2000] (got %d)", cfg.Preview.WidthPixels)
	}
	if cfg.Preview.WidthColumns < 4 || cfg.Preview.WidthColumns > 80 {
		add("preview.width_columns", "must be within [4,80] (got %d)", cfg.Preview.WidthColumns)
	}
	if cfg.Preview.Padding < 0 || cfg.Preview.Padding >= cfg.UI.MaxWidth {
		add("preview.padding", "must be within [0,max_width) (got %d)", cfg.Preview.Padding)
	}

	if cfg.Engine.Kind != "mpv" && cfg.Engine.Kind != "sim" {
		add("engine.kind", "must be 'mpv' or 'sim' (got '%s')", cfg.Engine.Kind)
	}
	if strings.TrimSpace(cfg.Engine.MpvPath) == "" {
		add("engine.mpv_path", "must not be empty")
	}
	if strings.TrimSpace(cfg.Engine.FfprobePath) == "" {
		add("engine.ffprobe_path", "must not be empty")
	}

	if cfg.Timing.UIRefreshMs < 16 || cfg.Timing.UIRefreshMs > 5000 {
		add("timing.ui_refresh_ms", "must be within [16,5000] (got %d)", cfg.Timing.UIRefreshMs)
	}
	return errs
}

// applyDefaultsForInvalidFields resets every field named in errs
func applyDefaultsForInvalidFields(cfg *Config, errs []error) {
	def := defaultConfig()
	for _, err := range errs {
		ce, ok := err.(configError)
		if !ok {
			continue
		}
		switch ce.field {
		case "ui.color":
			cfg.UI.Color = def.UI.Color
		case "ui.color_mode":
			cfg.UI.ColorMode = def.UI.ColorMode
		case "ui.max_width":
			cfg.UI.MaxWidth = def.UI.MaxWidth
		case "playback.default_volume":
			cfg.Playback.DefaultVolume = def.Playback.DefaultVolume
		case "playback.rates":
			cfg.Playback.Rates = def.Playback.Rates
		case "playback.volume_step":
			cfg.Playback.VolumeStep = def.Playback.VolumeStep
		case "playback.scrub_step":
			cfg.Playback.ScrubStep = def.Playback.ScrubStep
		case "playback.crop_step":
			cfg.Playback.CropStep = def.Playback.CropStep
		case "sync.echo_epsilon":
			cfg.Sync.EchoEpsilon = def.Sync.EchoEpsilon
		case "sync.stale_limit":
			cfg.Sync.StaleLimit = def.Sync.StaleLimit
		case "preview.width_pixels":
			cfg.Preview.WidthPixels = def.Preview.WidthPixels
		case "preview.width_columns":
			cfg.Preview.WidthColumns = def.Preview.WidthColumns
		case "preview.padding":
			cfg.Preview.Padding = def.Preview.Padding
		case "engine.kind":
			cfg.Engine.Kind = def.Engine.Kind
		case "engine.mpv_path":
			cfg.Engine.MpvPath = def.Engine.MpvPath
		case "engine.ffprobe_path":
			cfg.Engine.FfprobePath = def.Engine.FfprobePath
		case "timing.ui_refresh_ms":
			cfg.Timing.UIRefreshMs = def.Timing.UIRefreshMs
		}
	}
	// padding is checked against max_width, which may itself have been reset
	if cfg.Preview.Padding >= cfg.UI.MaxWidth {
		cfg.Preview.Padding = def.Preview.Padding
	}
}

func printConfigWarnings(errs []error) {
	for _, err := range errs {
		fmt.Fprintf(os.Stderr, "Warning: invalid config %v, using default\n", err)
	}
}

// editorOptions maps the config onto the editor core's tunables
func editorOptions(cfg Config) editor.Options {
	return editor.Options{
		Rates:         cfg.Playback.Rates,
		DefaultVolume: cfg.Playback.DefaultVolume,
		EchoEpsilon:   cfg.Sync.EchoEpsilon,
		StaleLimit:    cfg.Sync.StaleLimit,
	}
}
