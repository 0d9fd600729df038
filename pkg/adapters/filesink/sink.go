// Package filesink provides a file-based debug sink implementation.
package filesink

import (
	"fmt"
	"image"
	"path/filepath"

	"github.com/user/camgrid/pkg/ports"
)

// Sink saves debug output under baseDir/<job ID>/.
type Sink struct {
	baseDir  string
	fs       ports.FileSystem
	renderer ports.Renderer
}

// New creates a new FileSink.
func New(baseDir string, fs ports.FileSystem, renderer ports.Renderer) *Sink {
	return &Sink{
		baseDir:  baseDir,
		fs:       fs,
		renderer: renderer,
	}
}

// Enabled returns true as this sink saves output.
func (s *Sink) Enabled() bool {
	return true
}

// SaveJobJSON saves the job description as job.json.
func (s *Sink) SaveJobJSON(jobID string, data []byte) error {
	path := filepath.Join(s.baseDir, jobID, "job.json")
	return s.fs.WriteFile(path, data)
}

// SaveComposedFrame saves a composed canvas as a PNG named after its tick.
func (s *Sink) SaveComposedFrame(jobID string, tick int, img image.Image) error {
	dir := filepath.Join(s.baseDir, jobID, "frames")
	if err := s.fs.MkdirAll(dir); err != nil {
		return err
	}
	data, err := s.renderer.EncodePNG(img)
	if err != nil {
		return fmt.Errorf("encode composed frame: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("frame-%05d.png", tick))
	return s.fs.WriteFile(path, data)
}

var _ ports.DebugSink = (*Sink)(nil)
