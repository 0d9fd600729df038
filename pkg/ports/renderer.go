package ports

import (
	"image"
	"image/color"
)

// Renderer creates drawing canvases and encodes snapshots.
type Renderer interface {
	// CreateCanvas creates a new canvas filled with the background color.
	CreateCanvas(width, height int, bg color.Color) Canvas

	// EncodePNG encodes an image as PNG.
	EncodePNG(img image.Image) ([]byte, error)
}

// Canvas is a fixed-size drawing surface that persists between draw calls.
type Canvas interface {
	// Size returns the canvas dimensions in pixels.
	Size() (width, height int)

	// Clear fills the whole canvas with a color.
	Clear(c color.Color)

	// DrawImage copies an image unscaled with its top-left corner at (x, y).
	DrawImage(img image.Image, x, y int)

	// DrawRect draws a filled rectangle.
	DrawRect(x, y, w, h int, c color.Color)

	// DrawText draws text with its top edge at y. x is interpreted per style.Align.
	DrawText(text string, x, y int, style TextStyle)

	// MeasureText returns the width and height of the rendered text.
	MeasureText(text string, style TextStyle) (width, height float64)

	// ToImage returns the canvas backing image. The image aliases the canvas.
	ToImage() image.Image
}

// TextStyle defines text rendering properties.
type TextStyle struct {
	FontSize float64
	FontPath string // Optional TrueType file; empty uses the built-in face
	Color    color.Color
	Align    TextAlign
}

// TextAlign specifies horizontal text alignment relative to x.
type TextAlign int

const (
	AlignLeft TextAlign = iota
	AlignCenter
	AlignRight
)
