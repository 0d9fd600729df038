// Package ffmpegsource decodes camera files by streaming raw RGBA frames out
// of an ffmpeg process.
package ffmpegsource

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os/exec"
	"sync"

	"github.com/user/camgrid/pkg/ports"
)

// ErrClosed is returned by NextFrame after Close.
var ErrClosed = errors.New("ffmpegsource: source closed")

// Opener implements ports.SourceOpener.
type Opener struct {
	ffmpegPath string
	prober     ports.MediaProber
	logger     ports.Logger
}

// NewOpener creates an opener that probes files with prober and decodes them
// with the ffmpeg binary at ffmpegPath.
func NewOpener(ffmpegPath string, prober ports.MediaProber, logger ports.Logger) *Opener {
	return &Opener{
		ffmpegPath: ffmpegPath,
		prober:     prober,
		logger:     logger.WithComponent("ffmpegsource"),
	}
}

// Open probes path and starts decoding it.
func (o *Opener) Open(ctx context.Context, path string) (ports.FrameSource, error) {
	info, err := o.prober.Probe(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("probe %s: %w", path, err)
	}
	if info.Width <= 0 || info.Height <= 0 {
		return nil, fmt.Errorf("probe %s: invalid frame size %dx%d", path, info.Width, info.Height)
	}

	args := []string{
		"-v", "error",
		"-nostdin",
		"-i", path,
		"-map", "0:v:0",
		"-an",
		"-vsync", "passthrough",
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"pipe:1",
	}

	ctx, cancel := context.WithCancel(ctx)
	cmd := exec.CommandContext(ctx, o.ffmpegPath, args...)
	s := &Source{
		info:   info,
		cancel: cancel,
		cmd:    cmd,
		path:   path,
		logger: o.logger,
	}
	cmd.Stderr = &s.stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to get stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		cancel()
		return nil, fmt.Errorf("failed to start ffmpeg: %w", err)
	}
	s.stdout = bufio.NewReaderSize(stdout, info.Width*info.Height*4)

	o.logger.Debug("Decoding %s: %dx%d at %.3f fps", path, info.Width, info.Height, info.FrameRate)
	return s, nil
}

var _ ports.SourceOpener = (*Opener)(nil)

// Source is one running ffmpeg decoder.
type Source struct {
	info   ports.SourceInfo
	cancel context.CancelFunc
	cmd    *exec.Cmd
	stdout io.Reader
	stderr bytes.Buffer
	path   string
	logger ports.Logger

	mu     sync.Mutex
	free   []*image.RGBA
	frames int64
	eof    bool
	closed bool
}

// Info returns the probed stream parameters.
func (s *Source) Info() ports.SourceInfo {
	return s.info
}

// NextFrame reads the next decoded frame. It returns io.EOF once the decoder
// has no more frames. A truncated final frame is reported as io.EOF.
func (s *Source) NextFrame() (image.Image, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrClosed
	}
	if s.eof {
		return nil, io.EOF
	}

	img := s.buffer()
	if _, err := io.ReadFull(s.stdout, img.Pix); err != nil {
		s.free = append(s.free, img)
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			s.eof = true
			s.logger.Debug("End of %s after %d frames", s.path, s.frames)
			return nil, io.EOF
		}
		return nil, fmt.Errorf("read frame %d of %s: %w", s.frames, s.path, err)
	}
	s.frames++
	return img, nil
}

// Recycle returns a frame previously handed out by NextFrame for reuse.
func (s *Source) Recycle(img image.Image) {
	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Rect.Dx() != s.info.Width || rgba.Rect.Dy() != s.info.Height {
		return
	}
	s.mu.Lock()
	s.free = append(s.free, rgba)
	s.mu.Unlock()
}

func (s *Source) buffer() *image.RGBA {
	if n := len(s.free); n > 0 {
		img := s.free[n-1]
		s.free = s.free[:n-1]
		return img
	}
	return image.NewRGBA(image.Rect(0, 0, s.info.Width, s.info.Height))
}

// Close stops the decoder. Safe to call more than once.
func (s *Source) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.free = nil

	if !s.eof {
		// Stopped early; the killed process exit status is expected.
		s.cancel()
		_ = s.cmd.Wait()
		return nil
	}

	err := s.cmd.Wait()
	s.cancel()
	if err != nil {
		return fmt.Errorf("ffmpeg decoding %s failed: %w\nstderr: %s", s.path, err, s.stderr.String())
	}
	return nil
}

var (
	_ ports.FrameSource   = (*Source)(nil)
	_ ports.FrameRecycler = (*Source)(nil)
)
