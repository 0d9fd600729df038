// Package composite arranges per-source frames on the output canvas and
// burns in the timecode overlay.
package composite

import (
	"image"
	"image/color"

	"github.com/user/camgrid/pkg/pipeline"
	"github.com/user/camgrid/pkg/ports"
	"github.com/user/camgrid/pkg/stages/layout"
)

// Options configures a Compositor.
type Options struct {
	Overlay    pipeline.OverlayStyle
	Background color.Color
	// ClearEachTick repaints the background before every tick. By default the
	// canvas persists across ticks and only cells with a present frame change.
	ClearEachTick bool
}

// DefaultOptions returns the default compositor options.
func DefaultOptions() Options {
	return Options{
		Overlay:    pipeline.DefaultOverlayStyle(),
		Background: color.Black,
	}
}

// Compositor owns the job's output canvas. The canvas is allocated once and
// reused for every tick.
type Compositor struct {
	canvas  ports.Canvas
	origins []pipeline.Point
	size    pipeline.Dimension
	opts    Options
	logger  ports.Logger
}

// New creates a compositor for the given sources and grid. The canvas is
// sized to one cell of the largest source resolution per grid position.
func New(renderer ports.Renderer, sources []pipeline.SourceDescriptor, plan pipeline.GridPlan, opts Options, logger ports.Logger) *Compositor {
	if opts.Background == nil {
		opts.Background = color.Black
	}
	size := layout.CanvasSize(sources, plan)
	c := &Compositor{
		canvas:  renderer.CreateCanvas(size.Width, size.Height, opts.Background),
		origins: CellOrigins(sources, plan),
		size:    size,
		opts:    opts,
		logger:  logger.WithComponent("composite"),
	}
	c.logger.Debug("Canvas %dx%d for %d sources in %dx%d grid", size.Width, size.Height, len(sources), plan.Columns, plan.Rows)
	return c
}

// CellOrigins walks the sources in list order and returns the top-left
// corner each one is drawn at. The cursor advances by each source's width and
// starts a new row, moving down by the height of the source that closed the
// row, after every plan.Columns sources.
func CellOrigins(sources []pipeline.SourceDescriptor, plan pipeline.GridPlan) []pipeline.Point {
	origins := make([]pipeline.Point, len(sources))
	columns := max(plan.Columns, 1)

	x, y := 0, 0
	for i, s := range sources {
		origins[i] = pipeline.Point{X: x, Y: y}
		x += s.Width
		if (i+1)%columns == 0 {
			x = 0
			y += s.Height
		}
	}
	return origins
}

// Compose draws the current frame set and the overlay text and returns the
// canvas image. frames[i] belongs to source i; nil frames leave their cell as
// it was after the previous tick. The returned image aliases the canvas and is
// only valid until the next call.
func (c *Compositor) Compose(frames []image.Image, text string) image.Image {
	if c.opts.ClearEachTick {
		c.canvas.Clear(c.opts.Background)
	}

	for i, origin := range c.origins {
		if i >= len(frames) || frames[i] == nil {
			continue
		}
		c.canvas.DrawImage(frames[i], origin.X, origin.Y)
	}

	if text != "" {
		c.drawOverlay(text)
	}
	return c.canvas.ToImage()
}

// drawOverlay draws a solid box sized to the measured text, then the text.
func (c *Compositor) drawOverlay(text string) {
	o := c.opts.Overlay
	style := ports.TextStyle{
		FontSize: o.FontSize,
		FontPath: o.FontPath,
		Color:    o.TextColor,
		Align:    ports.AlignLeft,
	}

	tw, th := c.canvas.MeasureText(text, style)
	boxW := int(tw+0.5) + 2*o.Padding
	boxH := int(th+0.5) + 2*o.Padding

	var boxX, boxY int
	switch o.Position {
	case pipeline.OverlayCenter:
		boxX = (c.size.Width - boxW) / 2
		boxY = (c.size.Height - boxH) / 2
	default:
		boxX = o.Margin
		boxY = o.Margin
	}

	box := o.BackgroundColor
	if box == nil {
		box = color.Black
	}
	c.canvas.DrawRect(boxX, boxY, boxW, boxH, box)
	c.canvas.DrawText(text, boxX+o.Padding, boxY+o.Padding, style)
}

// Size returns the canvas dimensions.
func (c *Compositor) Size() pipeline.Dimension {
	return c.size
}

// Origins returns the cell origins in source order.
func (c *Compositor) Origins() []pipeline.Point {
	return c.origins
}
