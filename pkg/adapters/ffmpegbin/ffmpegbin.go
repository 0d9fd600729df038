// Package ffmpegbin locates the ffmpeg and ffprobe executables.
package ffmpegbin

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// Tool names an executable of the FFmpeg suite.
type Tool string

const (
	FFmpeg  Tool = "ffmpeg"
	FFprobe Tool = "ffprobe"
)

// ErrNotFound is returned when a tool cannot be located.
var ErrNotFound = errors.New("ffmpegbin: executable not found")

// EnvVar returns the environment variable that overrides the tool's location,
// e.g. FFMPEG_PATH.
func (t Tool) EnvVar() string {
	return strings.ToUpper(string(t)) + "_PATH"
}

func (t Tool) execName() string {
	if runtime.GOOS == "windows" {
		return string(t) + ".exe"
	}
	return string(t)
}

// Find searches for a tool.
// Priority: 1) custom, 2) <TOOL>_PATH env, 3) PATH, 4) common locations.
func Find(tool Tool, custom string) (string, error) {
	if custom != "" {
		if _, err := os.Stat(custom); err == nil {
			return custom, nil
		}
		return "", fmt.Errorf("%w: custom path %s for %s", ErrNotFound, custom, tool)
	}

	if envPath := os.Getenv(tool.EnvVar()); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath, nil
		}
		return "", fmt.Errorf("%w: %s %s", ErrNotFound, tool.EnvVar(), envPath)
	}

	if path, err := exec.LookPath(tool.execName()); err == nil {
		return path, nil
	}

	for _, dir := range commonDirs() {
		p := filepath.Join(dir, tool.execName())
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}

	return "", fmt.Errorf("%w: %s", ErrNotFound, tool)
}

// FindSibling finds tool next to an already located executable of the suite
// before falling back to Find. ffprobe usually ships beside ffmpeg.
func FindSibling(tool Tool, custom, sibling string) (string, error) {
	if custom == "" && os.Getenv(tool.EnvVar()) == "" && sibling != "" {
		p := filepath.Join(filepath.Dir(sibling), tool.execName())
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return Find(tool, custom)
}

// Available reports whether tool can be located with default settings.
func Available(tool Tool) bool {
	_, err := Find(tool, "")
	return err == nil
}

func commonDirs() []string {
	switch runtime.GOOS {
	case "windows":
		return []string{
			`C:\ffmpeg\bin`,
			`C:\Program Files\ffmpeg\bin`,
			`C:\Program Files (x86)\ffmpeg\bin`,
		}
	case "darwin":
		return []string{
			"/opt/homebrew/bin",
			"/usr/local/bin",
			"/usr/bin",
		}
	default:
		return []string{
			"/usr/bin",
			"/usr/local/bin",
			"/opt/homebrew/bin",
			"/snap/bin",
		}
	}
}
