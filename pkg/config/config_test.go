package config

import (
	"errors"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/user/camgrid/pkg/pipeline"
	"github.com/user/camgrid/pkg/ports"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	if cfg.RecordingPattern != "*.qtm" {
		t.Errorf("RecordingPattern = %q", cfg.RecordingPattern)
	}
	if cfg.CameraPattern != "_Miqus*.avi" {
		t.Errorf("CameraPattern = %q", cfg.CameraPattern)
	}
	if cfg.Workers != 1 {
		t.Errorf("Workers = %d, want 1", cfg.Workers)
	}
	if cfg.Codec != "h264" {
		t.Errorf("Codec = %q, want h264", cfg.Codec)
	}
	if cfg.Overlay.Position != "top-left" {
		t.Errorf("Overlay.Position = %q", cfg.Overlay.Position)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults do not validate: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "camgrid.yaml")
	yaml := `
workers: 4
codec: av1
clear_each_tick: true
overlay:
  position: center
  font_size: 32
  text_color: "#ff0000"
`
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}

	if cfg.Workers != 4 || cfg.Codec != "av1" || !cfg.ClearEachTick {
		t.Errorf("loaded values not applied: %+v", cfg)
	}
	if cfg.Overlay.Position != "center" || cfg.Overlay.FontSize != 32 {
		t.Errorf("overlay = %+v", cfg.Overlay)
	}
	// Unset keys keep their defaults.
	if cfg.CameraPattern != "_Miqus*.avi" {
		t.Errorf("CameraPattern = %q, want default", cfg.CameraPattern)
	}
	if cfg.Overlay.Padding != Defaults().Overlay.Padding {
		t.Errorf("Overlay.Padding = %d, want default", cfg.Overlay.Padding)
	}
}

func TestLoadFromFile_Errors(t *testing.T) {
	if _, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("workers: [1, 2"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFromFile(path); err == nil {
		t.Error("expected error for malformed YAML")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"codec", func(c *Config) { c.Codec = "vp9" }},
		{"position", func(c *Config) { c.Overlay.Position = "bottom" }},
		{"font size", func(c *Config) { c.Overlay.FontSize = 0 }},
		{"workers", func(c *Config) { c.Workers = 0 }},
		{"log level", func(c *Config) { c.LogLevel = "verbose" }},
		{"color", func(c *Config) { c.BackgroundColor = "#12" }},
		{"overlay box none", func(c *Config) { c.Overlay.BackgroundColor = "none" }},
		{"text none", func(c *Config) { c.Overlay.TextColor = "none" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if !errors.Is(err, ErrInvalid) {
				t.Errorf("Validate() = %v, want ErrInvalid", err)
			}
		})
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		input string
		want  color.Color
	}{
		{"#ffffff", color.NRGBA{255, 255, 255, 255}},
		{"#000000", color.NRGBA{0, 0, 0, 255}},
		{"#ff8000", color.NRGBA{255, 128, 0, 255}},
		{"00ff00", color.NRGBA{0, 255, 0, 255}},
		{"#00000080", color.NRGBA{0, 0, 0, 128}},
		{"none", nil},
		{"#zzzzzz", color.Black},
		{"#fff", color.Black},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := ParseColor(tt.input)
			if got != tt.want {
				t.Errorf("ParseColor(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestToOrchestratorConfig(t *testing.T) {
	cfg := Defaults()
	cfg.Codec = "av1"
	cfg.Overlay.Position = "center"
	cfg.Overlay.BackgroundColor = "#00000080"
	cfg.BackgroundColor = "#102030"
	cfg.MidnightFallback = true

	oc := cfg.ToOrchestratorConfig()

	if oc.Codec != ports.CodecAV1 {
		t.Errorf("Codec = %q", oc.Codec)
	}
	if oc.Overlay.Position != pipeline.OverlayCenter {
		t.Errorf("Position = %q", oc.Overlay.Position)
	}
	if oc.Overlay.BackgroundColor != (color.NRGBA{0, 0, 0, 0x80}) {
		t.Errorf("overlay background = %v, want translucent black", oc.Overlay.BackgroundColor)
	}
	if oc.Background != (color.NRGBA{0x10, 0x20, 0x30, 0xff}) {
		t.Errorf("Background = %v", oc.Background)
	}
	if !oc.MidnightFallback {
		t.Error("MidnightFallback not carried over")
	}
	if oc.ProgressEvery != cfg.ProgressEvery || oc.DebugEvery != cfg.DebugEvery {
		t.Errorf("intervals = %d/%d", oc.ProgressEvery, oc.DebugEvery)
	}
}

func TestToBatchOptions(t *testing.T) {
	cfg := Defaults()
	cfg.Workers = 3
	cfg.OutputExt = ".mp4"

	opts := cfg.ToBatchOptions("/data")
	if opts.Root != "/data" || opts.Workers != 3 || opts.OutputExt != ".mp4" {
		t.Errorf("opts = %+v", opts)
	}
	if opts.LockFile != cfg.LockFile {
		t.Errorf("LockFile = %q", opts.LockFile)
	}
}
