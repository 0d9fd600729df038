// Package ports defines interfaces for the collaborators of the merge engine:
// decoders, encoders, metadata readers, drawing and logging.
package ports

import (
	"context"
	"image"
)

// SourceInfo holds the static stream facts reported when a source is opened.
type SourceInfo struct {
	Width      int
	Height     int
	FrameRate  float64 // Native frames per second
	FrameCount int64   // Total decodable frames (may be approximate)
	BitRate    int64   // Bits per second, informational
	Codec      string  // Codec name such as "h264"; empty when unknown
}

// FrameSource is an opened, decoding video stream.
// Implementations return io.EOF from NextFrame once the stream is exhausted.
type FrameSource interface {
	// Info returns the stream facts captured at open time.
	Info() SourceInfo

	// NextFrame decodes and returns the next frame in presentation order.
	NextFrame() (image.Image, error)

	// Close releases the decoder and any process or file it holds.
	Close() error
}

// SourceOpener opens decoded-frame sources by path.
type SourceOpener interface {
	Open(ctx context.Context, path string) (FrameSource, error)
}

// MediaProber reads stream facts from a media file without decoding it.
type MediaProber interface {
	Probe(ctx context.Context, path string) (SourceInfo, error)
}

// TimecodeTag holds the raw embedded timecode tags of a media file.
// Empty strings mean the tag is absent.
type TimecodeTag struct {
	Timecode  string // "HH:MM:SS:FF"
	Frequency string // e.g. "25" or "30000/1001"
}

// TimecodeReader extracts embedded timecode tags from a media file.
type TimecodeReader interface {
	ReadTimecode(ctx context.Context, path string) (TimecodeTag, error)
}

// FrameRecycler is implemented by sources that reuse pixel buffers.
// Recycle hands a frame previously returned by NextFrame back to the source;
// the caller must not touch the frame afterwards.
type FrameRecycler interface {
	Recycle(img image.Image)
}
