// Package config provides configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"strconv"
	"strings"

	"github.com/user/camgrid/pkg/batch"
	"github.com/user/camgrid/pkg/orchestrator"
	"github.com/user/camgrid/pkg/pipeline"
	"github.com/user/camgrid/pkg/ports"
	"gopkg.in/yaml.v3"
)

// ErrInvalid is wrapped by every validation error.
var ErrInvalid = errors.New("invalid configuration")

// Config represents the full configuration for camgrid.
type Config struct {
	// Discovery
	RecordingPattern string `yaml:"recording_pattern"`
	CameraPattern    string `yaml:"camera_pattern"`
	OutputExt        string `yaml:"output_ext"`
	Workers          int    `yaml:"workers"`
	LockFile         string `yaml:"lock_file"`

	// Composition
	Overlay         OverlayConfig `yaml:"overlay"`
	BackgroundColor string        `yaml:"background_color"`
	ClearEachTick   bool          `yaml:"clear_each_tick"`

	// Clock
	MidnightFallback bool `yaml:"midnight_fallback"`

	// Encoding
	Codec       string `yaml:"codec"`
	FFmpegPath  string `yaml:"ffmpeg_path"`
	FFprobePath string `yaml:"ffprobe_path"`

	// Logging
	LogLevel      string `yaml:"log_level"`
	ProgressEvery int    `yaml:"progress_every"`

	// Debug
	Debug      bool   `yaml:"debug"`
	DebugDir   string `yaml:"debug_dir"`
	DebugEvery int    `yaml:"debug_every"`
}

// OverlayConfig represents the timecode overlay.
type OverlayConfig struct {
	Position        string  `yaml:"position"`
	FontSize        float64 `yaml:"font_size"`
	FontPath        string  `yaml:"font_path"`
	Margin          int     `yaml:"margin"`
	Padding         int     `yaml:"padding"`
	TextColor       string  `yaml:"text_color"`
	BackgroundColor string  `yaml:"background_color"`
}

// Defaults returns a Config with default values.
func Defaults() Config {
	b := batch.DefaultOptions()
	o := orchestrator.DefaultConfig()
	return Config{
		RecordingPattern: b.RecordingPattern,
		CameraPattern:    b.CameraPattern,
		OutputExt:        b.OutputExt,
		Workers:          b.Workers,
		LockFile:         b.LockFile,

		Overlay: OverlayConfig{
			Position:        string(o.Overlay.Position),
			FontSize:        o.Overlay.FontSize,
			Margin:          o.Overlay.Margin,
			Padding:         o.Overlay.Padding,
			TextColor:       "#ffffff",
			BackgroundColor: "#000000",
		},
		BackgroundColor: "#000000",

		Codec: string(o.Codec),

		LogLevel:      "info",
		ProgressEvery: o.ProgressEvery,

		DebugDir:   "./debug",
		DebugEvery: o.DebugEvery,
	}
}

// LoadFromFile loads configuration from a YAML file on top of the defaults.
func LoadFromFile(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks the values that have no sensible fallback.
func (c Config) Validate() error {
	switch ports.Codec(c.Codec) {
	case ports.CodecH264, ports.CodecAV1:
	default:
		return fmt.Errorf("%w: codec %q (want h264 or av1)", ErrInvalid, c.Codec)
	}
	switch pipeline.OverlayPosition(c.Overlay.Position) {
	case pipeline.OverlayTopLeft, pipeline.OverlayCenter:
	default:
		return fmt.Errorf("%w: overlay position %q", ErrInvalid, c.Overlay.Position)
	}
	if c.Overlay.FontSize <= 0 {
		return fmt.Errorf("%w: overlay font size %v", ErrInvalid, c.Overlay.FontSize)
	}
	if c.Workers < 1 {
		return fmt.Errorf("%w: workers %d", ErrInvalid, c.Workers)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error", "quiet":
	default:
		return fmt.Errorf("%w: log level %q", ErrInvalid, c.LogLevel)
	}
	if text, _ := parseColor(c.Overlay.TextColor); text == nil {
		return fmt.Errorf("%w: overlay.text_color %q", ErrInvalid, c.Overlay.TextColor)
	}
	if box, _ := parseColor(c.Overlay.BackgroundColor); box == nil {
		return fmt.Errorf("%w: overlay.background_color %q", ErrInvalid, c.Overlay.BackgroundColor)
	}
	for name, value := range map[string]string{
		"background_color":         c.BackgroundColor,
		"overlay.text_color":       c.Overlay.TextColor,
		"overlay.background_color": c.Overlay.BackgroundColor,
	} {
		if _, err := parseColor(value); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalid, name, err)
		}
	}
	return nil
}

// ParseColor parses "#rrggbb" or "#rrggbbaa". "none" yields nil; malformed
// values yield black.
func ParseColor(hex string) color.Color {
	c, err := parseColor(hex)
	if err != nil {
		return color.Black
	}
	return c
}

func parseColor(s string) (color.Color, error) {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "none") {
		return nil, nil
	}
	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 && len(hex) != 8 {
		return nil, fmt.Errorf("color %q: want #rrggbb or #rrggbbaa", s)
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return nil, fmt.Errorf("color %q: %w", s, err)
	}
	return color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}

// ToOrchestratorConfig converts Config to orchestrator.Config.
func (c Config) ToOrchestratorConfig() orchestrator.Config {
	background := ParseColor(c.BackgroundColor)
	if background == nil {
		background = color.Black
	}
	return orchestrator.Config{
		Overlay: pipeline.OverlayStyle{
			Position:        pipeline.OverlayPosition(c.Overlay.Position),
			FontSize:        c.Overlay.FontSize,
			FontPath:        c.Overlay.FontPath,
			Margin:          c.Overlay.Margin,
			Padding:         c.Overlay.Padding,
			TextColor:       ParseColor(c.Overlay.TextColor),
			BackgroundColor: ParseColor(c.Overlay.BackgroundColor),
		},
		Background:       background,
		ClearEachTick:    c.ClearEachTick,
		Codec:            ports.Codec(c.Codec),
		MidnightFallback: c.MidnightFallback,
		ProgressEvery:    c.ProgressEvery,
		DebugEvery:       c.DebugEvery,
	}
}

// ToBatchOptions converts Config to batch.Options for the given root.
func (c Config) ToBatchOptions(root string) batch.Options {
	return batch.Options{
		Root:             root,
		RecordingPattern: c.RecordingPattern,
		CameraPattern:    c.CameraPattern,
		OutputExt:        c.OutputExt,
		Workers:          c.Workers,
		LockFile:         c.LockFile,
	}
}
