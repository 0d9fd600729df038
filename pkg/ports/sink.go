package ports

import (
	"image"
)

// Codec names an output video codec.
type Codec string

const (
	CodecH264 Codec = "h264"
	CodecAV1  Codec = "av1"
)

// SinkOptions configures an output frame sink.
type SinkOptions struct {
	Width     int
	Height    int
	FrameRate float64
	BitRate   int64 // Bits per second, 0 = encoder default
	Codec     Codec
	Audio     bool // Always false for merged output
}

// FrameSink receives composed canvases and encodes them to an output file.
type FrameSink interface {
	// WriteFrame encodes one frame. The image may be reused by the caller
	// after the call returns.
	WriteFrame(img image.Image) error

	// Close flushes the encoder and finalizes the output file.
	Close() error
}

// SinkOpener creates frame sinks for output paths.
type SinkOpener interface {
	Open(path string, opts SinkOptions) (FrameSink, error)
}

// DebugSink abstracts debug output for intermediate results.
type DebugSink interface {
	// Enabled returns true if debug output is enabled.
	Enabled() bool

	// SaveJobJSON saves the job description (sources, grid, clock seed) as JSON.
	SaveJobJSON(jobID string, data []byte) error

	// SaveComposedFrame saves a composed canvas for the given tick.
	SaveComposedFrame(jobID string, tick int, img image.Image) error
}
