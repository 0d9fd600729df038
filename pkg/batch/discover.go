// Package batch finds the recordings below a directory and merges their
// cameras, one job per recording.
package batch

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/user/camgrid/pkg/ports"
)

// Options configures discovery and the batch run.
type Options struct {
	Root string
	// RecordingPattern matches the recording files that name a take.
	RecordingPattern string
	// CameraPattern is appended to a recording's base name to find its
	// camera files in the same directory.
	CameraPattern string
	// OutputExt is the extension of the merged file written next to the
	// recording. A recording whose output exists is skipped.
	OutputExt string
	// Workers is the number of recordings merged at once.
	Workers int
	// LockFile is created in Root to keep concurrent runs apart. Empty
	// disables locking.
	LockFile string
}

// DefaultOptions returns the default batch options.
func DefaultOptions() Options {
	return Options{
		RecordingPattern: "*.qtm",
		CameraPattern:    "_Miqus*.avi",
		OutputExt:        ".avi",
		Workers:          1,
		LockFile:         ".camgrid.lock",
	}
}

// Recording is one take and its cameras.
type Recording struct {
	Name    string   // Path of the take relative to the root, without extension
	Path    string   // Recording file
	Output  string   // Merged video destination
	Cameras []string // Camera files in lexical order
}

// Discover walks opts.Root and returns every recording with its candidate
// cameras, in lexical order of the recording paths.
func Discover(fs ports.FileSystem, opts Options) ([]Recording, error) {
	paths, err := fs.Walk(opts.Root, opts.RecordingPattern)
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", opts.Root, err)
	}

	recordings := make([]Recording, 0, len(paths))
	for _, path := range paths {
		dir := filepath.Dir(path)
		base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

		cameras, err := fs.Glob(filepath.Join(escapeGlob(dir), escapeGlob(base)+opts.CameraPattern))
		if err != nil {
			return nil, fmt.Errorf("camera pattern %q: %w", opts.CameraPattern, err)
		}

		name := base
		if rel, err := filepath.Rel(opts.Root, filepath.Join(dir, base)); err == nil {
			name = filepath.ToSlash(rel)
		}

		recordings = append(recordings, Recording{
			Name:    name,
			Path:    path,
			Output:  filepath.Join(dir, base+opts.OutputExt),
			Cameras: cameras,
		})
	}
	return recordings, nil
}

// escapeGlob quotes the pattern metacharacters of a literal path segment.
// Windows patterns have no escape character.
func escapeGlob(s string) string {
	if runtime.GOOS == "windows" {
		return s
	}
	var sb strings.Builder
	for _, r := range s {
		switch r {
		case '*', '?', '[', '\\':
			sb.WriteRune('\\')
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
