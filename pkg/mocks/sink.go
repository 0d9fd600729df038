package mocks

import (
	"image"
	"image/draw"
	"sync"

	"github.com/user/camgrid/pkg/ports"
)

// FrameSink is a mock implementation of ports.FrameSink.
type FrameSink struct {
	WriteFrameFunc func(img image.Image) error

	// KeepFrames stores a copy of every written frame in Frames.
	KeepFrames bool
	Frames     []*image.RGBA
	Writes     int
	Closed     bool
}

func (m *FrameSink) WriteFrame(img image.Image) error {
	m.Writes++
	if m.WriteFrameFunc != nil {
		if err := m.WriteFrameFunc(img); err != nil {
			return err
		}
	}
	if m.KeepFrames {
		b := img.Bounds()
		cp := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(cp, cp.Bounds(), img, b.Min, draw.Src)
		m.Frames = append(m.Frames, cp)
	}
	return nil
}

func (m *FrameSink) Close() error {
	m.Closed = true
	return nil
}

var _ ports.FrameSink = (*FrameSink)(nil)

// SinkOpener is a mock implementation of ports.SinkOpener.
type SinkOpener struct {
	mu       sync.Mutex
	OpenFunc func(path string, opts ports.SinkOptions) (ports.FrameSink, error)

	// Sink is returned when OpenFunc is nil. A fresh one is created if nil.
	Sink    *FrameSink
	Paths   []string
	Options []ports.SinkOptions
}

func (m *SinkOpener) Open(path string, opts ports.SinkOptions) (ports.FrameSink, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Paths = append(m.Paths, path)
	m.Options = append(m.Options, opts)
	if m.OpenFunc != nil {
		return m.OpenFunc(path, opts)
	}
	if m.Sink == nil {
		m.Sink = &FrameSink{}
	}
	return m.Sink, nil
}

var _ ports.SinkOpener = (*SinkOpener)(nil)

// DebugSink is a mock implementation of ports.DebugSink.
type DebugSink struct {
	mu sync.RWMutex

	enabled bool

	JobJSON        map[string][]byte
	ComposedFrames map[int]image.Image
}

// NewDebugSink creates a new mock DebugSink.
func NewDebugSink(enabled bool) *DebugSink {
	return &DebugSink{
		enabled:        enabled,
		JobJSON:        make(map[string][]byte),
		ComposedFrames: make(map[int]image.Image),
	}
}

func (m *DebugSink) Enabled() bool {
	return m.enabled
}

func (m *DebugSink) SaveJobJSON(jobID string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.JobJSON[jobID] = data
	return nil
}

func (m *DebugSink) SaveComposedFrame(jobID string, tick int, img image.Image) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ComposedFrames[tick] = img
	return nil
}

var _ ports.DebugSink = (*DebugSink)(nil)

// NullSink is a no-op implementation of ports.DebugSink.
type NullSink struct{}

func (m *NullSink) Enabled() bool                                           { return false }
func (m *NullSink) SaveJobJSON(jobID string, data []byte) error             { return nil }
func (m *NullSink) SaveComposedFrame(jobID string, tick int, img image.Image) error { return nil }

var _ ports.DebugSink = (*NullSink)(nil)
