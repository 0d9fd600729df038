// Package ffmpegsink encodes composed canvases by piping raw RGBA frames into
// an ffmpeg process.
package ffmpegsink

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/user/camgrid/pkg/ports"
)

var (
	// ErrClosed is returned when writing to a closed sink.
	ErrClosed = errors.New("ffmpegsink: sink closed")

	// ErrUnsupportedCodec is returned for codecs without an encoder mapping.
	ErrUnsupportedCodec = errors.New("ffmpegsink: unsupported codec")
)

// Encoders lists the ffmpeg encoders usable for each codec, preferred first.
var Encoders = map[ports.Codec][]string{
	ports.CodecH264: {"libx264", "libopenh264"},
	ports.CodecAV1:  {"libsvtav1", "libaom-av1"},
}

// Opener implements ports.SinkOpener.
type Opener struct {
	ffmpegPath string
	preset     string
	encoders   map[ports.Codec]string
	logger     ports.Logger
}

// NewOpener creates an opener using the ffmpeg binary at ffmpegPath.
func NewOpener(ffmpegPath string, logger ports.Logger) *Opener {
	return &Opener{
		ffmpegPath: ffmpegPath,
		preset:     "fast",
		encoders:   make(map[ports.Codec]string),
		logger:     logger.WithComponent("ffmpegsink"),
	}
}

// UseEncoder makes the opener encode codec with the named ffmpeg encoder
// instead of the preferred one.
func (o *Opener) UseEncoder(codec ports.Codec, encoder string) *Opener {
	o.encoders[codec] = encoder
	return o
}

// Args builds the ffmpeg command line for an output at path. An empty
// encoder selects the preferred encoder of opts.Codec.
func Args(path string, opts ports.SinkOptions, encoder, preset string) ([]string, error) {
	candidates, ok := Encoders[opts.Codec]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedCodec, opts.Codec)
	}
	if encoder == "" {
		encoder = candidates[0]
	}

	args := []string{
		"-y",
		"-v", "error",
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"-s", fmt.Sprintf("%dx%d", opts.Width, opts.Height),
		"-r", strconv.FormatFloat(opts.FrameRate, 'f', -1, 64),
		"-i", "pipe:0",
		// yuv420p needs even dimensions.
		"-vf", "pad=ceil(iw/2)*2:ceil(ih/2)*2",
		"-c:v", encoder,
		"-pix_fmt", "yuv420p",
	}

	switch encoder {
	case "libx264":
		if preset != "" {
			args = append(args, "-preset", preset)
		}
	case "libsvtav1":
		args = append(args, "-preset", "8")
	case "libaom-av1":
		args = append(args, "-cpu-used", "6", "-row-mt", "1")
	}

	switch {
	case opts.BitRate > 0:
		args = append(args, "-b:v", strconv.FormatInt(opts.BitRate, 10))
	case encoder == "libx264":
		args = append(args, "-crf", "23")
	case encoder == "libaom-av1":
		// Constant quality mode needs an explicit zero bit rate.
		args = append(args, "-crf", "30", "-b:v", "0")
	}

	if !opts.Audio {
		args = append(args, "-an")
	}
	return append(args, path), nil
}

// Open starts an encoder writing to a temporary file next to path. The file
// is renamed to path when the sink is closed successfully.
func (o *Opener) Open(path string, opts ports.SinkOptions) (ports.FrameSink, error) {
	if opts.Width <= 0 || opts.Height <= 0 || opts.FrameRate <= 0 {
		return nil, fmt.Errorf("invalid output %dx%d at %v fps", opts.Width, opts.Height, opts.FrameRate)
	}

	tempPath := TempPath(path)
	encoder := o.encoders[opts.Codec]
	args, err := Args(tempPath, opts, encoder, o.preset)
	if err != nil {
		return nil, err
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}

	s := &Sink{
		path:     path,
		tempPath: tempPath,
		opts:     opts,
		logger:   o.logger,
	}
	s.cmd = exec.Command(o.ffmpegPath, args...)
	s.cmd.Stderr = &s.stderr

	stdin, err := s.cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to get stdin pipe: %w", err)
	}
	s.stdin = stdin

	if err := s.cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start ffmpeg: %w", err)
	}

	o.logger.Debug("Encoding %s with %s: %dx%d at %.3f fps, %d bps",
		path, args[slices.Index(args, "-c:v")+1], opts.Width, opts.Height, opts.FrameRate, opts.BitRate)
	return s, nil
}

// TempPath returns the in-progress name used while path is being encoded.
// The extension is kept so ffmpeg still picks the right container.
func TempPath(path string) string {
	dir, base := filepath.Split(path)
	ext := filepath.Ext(base)
	return filepath.Join(dir, "."+strings.TrimSuffix(base, ext)+".partial"+ext)
}

var _ ports.SinkOpener = (*Opener)(nil)

// Sink is one running ffmpeg encoder.
type Sink struct {
	path     string
	tempPath string
	opts     ports.SinkOptions
	logger   ports.Logger

	mu      sync.Mutex
	cmd     *exec.Cmd
	stdin   io.WriteCloser
	stderr  lockedBuffer
	scratch *image.RGBA
	frames  int64
	failed  bool
	closed  bool
}

// WriteFrame writes one canvas. Images of another size are cropped or
// padded to the output size.
func (s *Sink) WriteFrame(img image.Image) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	if _, err := s.stdin.Write(s.pixels(img)); err != nil {
		s.failed = true
		return fmt.Errorf("failed to write frame %d: %w: %s", s.frames, err, strings.TrimSpace(s.stderr.String()))
	}
	s.frames++
	return nil
}

func (s *Sink) pixels(img image.Image) []byte {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) &&
		rgba.Rect.Dx() == s.opts.Width && rgba.Rect.Dy() == s.opts.Height && rgba.Stride == s.opts.Width*4 {
		return rgba.Pix
	}
	if s.scratch == nil {
		s.scratch = image.NewRGBA(image.Rect(0, 0, s.opts.Width, s.opts.Height))
	}
	draw.Draw(s.scratch, s.scratch.Bounds(), img, img.Bounds().Min, draw.Src)
	return s.scratch.Pix
}

// lockedBuffer collects ffmpeg's stderr. exec copies into it from its own
// goroutine while a failed WriteFrame may read it.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// Close finishes encoding and moves the output into place. When nothing was
// written or encoding failed, the partial file is removed.
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	s.stdin.Close()
	err := s.cmd.Wait()

	if err != nil || s.failed || s.frames == 0 {
		os.Remove(s.tempPath)
		if err != nil {
			return fmt.Errorf("ffmpeg encoding failed: %w\nstderr: %s", err, s.stderr.String())
		}
		return nil
	}

	if err := os.Rename(s.tempPath, s.path); err != nil {
		os.Remove(s.tempPath)
		return fmt.Errorf("failed to move output into place: %w", err)
	}
	s.logger.Debug("Wrote %d frames to %s", s.frames, s.path)
	return nil
}

var _ ports.FrameSink = (*Sink)(nil)

// EncoderAvailable reports whether the ffmpeg build at ffmpegPath ships the
// named encoder.
func EncoderAvailable(ctx context.Context, ffmpegPath, encoder string) bool {
	encoders, err := ListEncoders(ctx, ffmpegPath)
	return err == nil && encoders[encoder]
}
