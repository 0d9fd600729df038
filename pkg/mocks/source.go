package mocks

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"io"
	"sync"

	"github.com/user/camgrid/pkg/ports"
)

// FrameSource is a mock implementation of ports.FrameSource.
// It yields Info.FrameCount solid-colour frames, then io.EOF.
type FrameSource struct {
	SourceInfo ports.SourceInfo

	// Fill returns the colour of frame i (0-based). Defaults to FrameColor.
	Fill func(i int) color.Color
	// Errors makes the pull with the given 0-based call index fail.
	Errors map[int]error

	// Recorded calls for verification
	NextFrameCalls int
	Delivered      int
	Recycled       []image.Image
	Closed         bool
}

// NewFrameSource creates a mock source with the given geometry and length.
func NewFrameSource(width, height int, fps float64, frames int64) *FrameSource {
	return &FrameSource{
		SourceInfo: ports.SourceInfo{
			Width:      width,
			Height:     height,
			FrameRate:  fps,
			FrameCount: frames,
			BitRate:    1_000_000,
		},
	}
}

// FrameColor is the default colour of frame i: the frame number is encoded
// in the red and green channels so tests can tell frames apart.
func FrameColor(i int) color.Color {
	return color.RGBA{R: uint8(i % 256), G: uint8(i / 256), B: 200, A: 255}
}

func (m *FrameSource) Info() ports.SourceInfo {
	return m.SourceInfo
}

func (m *FrameSource) NextFrame() (image.Image, error) {
	call := m.NextFrameCalls
	m.NextFrameCalls++
	if err, ok := m.Errors[call]; ok {
		return nil, err
	}
	if int64(m.Delivered) >= m.SourceInfo.FrameCount {
		return nil, io.EOF
	}

	fill := m.Fill
	if fill == nil {
		fill = FrameColor
	}
	img := image.NewRGBA(image.Rect(0, 0, m.SourceInfo.Width, m.SourceInfo.Height))
	c := fill(m.Delivered)
	for y := 0; y < m.SourceInfo.Height; y++ {
		for x := 0; x < m.SourceInfo.Width; x++ {
			img.Set(x, y, c)
		}
	}
	m.Delivered++
	return img, nil
}

func (m *FrameSource) Recycle(img image.Image) {
	m.Recycled = append(m.Recycled, img)
}

func (m *FrameSource) Close() error {
	m.Closed = true
	return nil
}

var _ ports.FrameSource = (*FrameSource)(nil)
var _ ports.FrameRecycler = (*FrameSource)(nil)

// SourceOpener is a mock implementation of ports.SourceOpener backed by a
// map of prepared sources. Paths listed in Failures fail to open.
type SourceOpener struct {
	mu       sync.Mutex
	Sources  map[string]*FrameSource
	Failures map[string]error

	Opened []string
}

// NewSourceOpener creates an empty mock opener.
func NewSourceOpener() *SourceOpener {
	return &SourceOpener{
		Sources:  make(map[string]*FrameSource),
		Failures: make(map[string]error),
	}
}

func (m *SourceOpener) Open(ctx context.Context, path string) (ports.FrameSource, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Opened = append(m.Opened, path)
	if err, ok := m.Failures[path]; ok {
		return nil, err
	}
	src, ok := m.Sources[path]
	if !ok {
		return nil, fmt.Errorf("no such source: %s", path)
	}
	return src, nil
}

var _ ports.SourceOpener = (*SourceOpener)(nil)

// TimecodeReader is a mock implementation of ports.TimecodeReader.
type TimecodeReader struct {
	mu    sync.Mutex
	Tags  map[string]ports.TimecodeTag
	Err   error
	Reads []string
}

// NewTimecodeReader creates a reader with no tags.
func NewTimecodeReader() *TimecodeReader {
	return &TimecodeReader{Tags: make(map[string]ports.TimecodeTag)}
}

func (m *TimecodeReader) ReadTimecode(ctx context.Context, path string) (ports.TimecodeTag, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Reads = append(m.Reads, path)
	if m.Err != nil {
		return ports.TimecodeTag{}, m.Err
	}
	return m.Tags[path], nil
}

var _ ports.TimecodeReader = (*TimecodeReader)(nil)

// MediaProber is a mock implementation of ports.MediaProber.
type MediaProber struct {
	mu     sync.Mutex
	Infos  map[string]ports.SourceInfo
	Err    error
	Probes []string
}

// NewMediaProber creates a prober that knows no files.
func NewMediaProber() *MediaProber {
	return &MediaProber{Infos: make(map[string]ports.SourceInfo)}
}

func (m *MediaProber) Probe(ctx context.Context, path string) (ports.SourceInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Probes = append(m.Probes, path)
	if m.Err != nil {
		return ports.SourceInfo{}, m.Err
	}
	info, ok := m.Infos[path]
	if !ok {
		return ports.SourceInfo{}, fmt.Errorf("no such file: %s", path)
	}
	return info, nil
}

var _ ports.MediaProber = (*MediaProber)(nil)
