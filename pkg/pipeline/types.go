package pipeline

import (
	"fmt"
	"image/color"
)

// =============================================================================
// Common Types
// =============================================================================

// Dimension represents width and height.
type Dimension struct {
	Width  int
	Height int
}

// Point is a pixel position on the output canvas.
type Point struct {
	X int
	Y int
}

// =============================================================================
// Source Types
// =============================================================================

// DefaultTimecodeFrequency is used when a source carries no frequency tag.
const DefaultTimecodeFrequency = 30.0

// Timecode is an embedded start timecode.
type Timecode struct {
	Hour   int
	Minute int
	Second int
	Frame  int
}

// String formats the timecode as HH:MM:SS:FF.
func (t Timecode) String() string {
	return fmt.Sprintf("%02d:%02d:%02d:%02d", t.Hour, t.Minute, t.Second, t.Frame)
}

// SourceDescriptor holds the static facts of one opened input stream.
// It is built once when the source is opened and never mutated.
type SourceDescriptor struct {
	Path       string
	Width      int
	Height     int
	FrameRate  float64
	FrameCount int64
	BitRate    int64
	Codec      string

	// Timecode is nil when the source has no parseable embedded timecode.
	Timecode *Timecode
	// TimecodeFrequency is the subframe count per second of Timecode.
	TimecodeFrequency float64
}

// =============================================================================
// Layout Types
// =============================================================================

// GridPlan is the number of grid cells per row and the number of rows.
type GridPlan struct {
	Columns int
	Rows    int
}

// Cells returns the number of cells in the grid.
func (g GridPlan) Cells() int {
	return g.Columns * g.Rows
}

// =============================================================================
// Overlay Types
// =============================================================================

// OverlayPosition selects where the timecode is drawn.
type OverlayPosition string

const (
	OverlayTopLeft OverlayPosition = "top-left"
	OverlayCenter  OverlayPosition = "center"
)

// OverlayStyle defines the timecode overlay appearance.
type OverlayStyle struct {
	Position        OverlayPosition
	FontSize        float64
	FontPath        string
	Margin          int // Offset from the top-left corner for OverlayTopLeft
	Padding         int // Space between text and background edge
	TextColor       color.Color
	BackgroundColor color.Color
}

// DefaultOverlayStyle returns the default overlay style.
func DefaultOverlayStyle() OverlayStyle {
	return OverlayStyle{
		Position:        OverlayTopLeft,
		FontSize:        60,
		Margin:          10,
		Padding:         6,
		TextColor:       color.White,
		BackgroundColor: color.RGBA{R: 0, G: 0, B: 0, A: 255},
	}
}

// =============================================================================
// Merge Job Types
// =============================================================================

// MergeInput describes one merge job: a logical recording and its cameras.
type MergeInput struct {
	Name       string   // Logical recording name used in log lines
	OutputPath string   // Destination of the merged video
	Sources    []string // Ordered camera file paths
}

// MergeResult reports the outcome of one merge job.
type MergeResult struct {
	JobID          string
	OutputPath     string
	FramesWritten  int64
	Sources        []SourceDescriptor
	DroppedSources []string
	Grid           GridPlan
	Canvas         Dimension
	FrameRate      float64
	BitRate        int64
	StartTimecode  string
	EndTimecode    string
}
