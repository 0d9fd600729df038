// Package ggrenderer provides a renderer implementation using the gg library.
package ggrenderer

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"

	"github.com/user/camgrid/pkg/ports"
)

var (
	builtinOnce sync.Once
	builtinFont *truetype.Font
	builtinErr  error
)

// builtin returns the embedded Go Bold face used when no font file is given.
func builtin() (*truetype.Font, error) {
	builtinOnce.Do(func() {
		builtinFont, builtinErr = truetype.Parse(gobold.TTF)
	})
	return builtinFont, builtinErr
}

// Renderer implements ports.Renderer using the gg library.
type Renderer struct{}

// New creates a new Renderer.
func New() *Renderer {
	return &Renderer{}
}

// CreateCanvas creates a new drawing canvas.
func (r *Renderer) CreateCanvas(width, height int, bg color.Color) ports.Canvas {
	dc := gg.NewContext(width, height)
	dc.SetColor(bg)
	dc.Clear()
	return &Canvas{dc: dc, faces: make(map[faceKey]font.Face)}
}

// EncodePNG encodes an image as PNG.
func (r *Renderer) EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode PNG: %w", err)
	}
	return buf.Bytes(), nil
}

// Ensure Renderer implements ports.Renderer
var _ ports.Renderer = (*Renderer)(nil)

type faceKey struct {
	path string
	size float64
}

// Canvas implements ports.Canvas using gg.Context.
type Canvas struct {
	dc    *gg.Context
	faces map[faceKey]font.Face
}

// Size returns the canvas dimensions.
func (c *Canvas) Size() (int, int) {
	return c.dc.Width(), c.dc.Height()
}

// Clear fills the canvas with a color.
func (c *Canvas) Clear(col color.Color) {
	c.dc.SetColor(col)
	c.dc.Clear()
}

// DrawImage copies an image unscaled at the specified position, replacing
// the pixels underneath.
func (c *Canvas) DrawImage(img image.Image, x, y int) {
	dst, ok := c.dc.Image().(*image.RGBA)
	if !ok {
		c.dc.DrawImage(img, x, y)
		return
	}
	b := img.Bounds()
	r := image.Rect(x, y, x+b.Dx(), y+b.Dy())
	draw.Draw(dst, r, img, b.Min, draw.Src)
}

// DrawRect draws a filled rectangle.
func (c *Canvas) DrawRect(x, y, w, h int, col color.Color) {
	c.dc.SetColor(col)
	c.dc.DrawRectangle(float64(x), float64(y), float64(w), float64(h))
	c.dc.Fill()
}

// DrawText draws text with its top edge at y.
func (c *Canvas) DrawText(text string, x, y int, style ports.TextStyle) {
	c.useFace(style)
	c.dc.SetColor(style.Color)

	ax := 0.0
	switch style.Align {
	case ports.AlignCenter:
		ax = 0.5
	case ports.AlignRight:
		ax = 1.0
	}

	c.dc.DrawStringAnchored(text, float64(x), float64(y), ax, 1)
}

// MeasureText returns the width and height of the text.
func (c *Canvas) MeasureText(text string, style ports.TextStyle) (float64, float64) {
	c.useFace(style)
	return c.dc.MeasureString(text)
}

// ToImage returns the canvas as an image.Image.
func (c *Canvas) ToImage() image.Image {
	return c.dc.Image()
}

// useFace selects the font face for a style, loading it on first use.
// A font file that fails to load falls back to the built-in face.
func (c *Canvas) useFace(style ports.TextStyle) {
	size := style.FontSize
	if size <= 0 {
		size = 12
	}
	key := faceKey{path: style.FontPath, size: size}
	if face, ok := c.faces[key]; ok {
		c.dc.SetFontFace(face)
		return
	}

	var face font.Face
	if style.FontPath != "" {
		if f, err := gg.LoadFontFace(style.FontPath, size); err == nil {
			face = f
		}
	}
	if face == nil {
		f, err := builtin()
		if err != nil {
			return
		}
		face = truetype.NewFace(f, &truetype.Options{Size: size})
	}

	c.faces[key] = face
	c.dc.SetFontFace(face)
}

// Ensure Canvas implements ports.Canvas
var _ ports.Canvas = (*Canvas)(nil)
