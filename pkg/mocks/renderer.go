package mocks

import (
	"image"
	"image/color"

	"github.com/user/camgrid/pkg/ports"
)

// Renderer is a mock implementation of ports.Renderer.
type Renderer struct {
	CreateCanvasFunc func(width, height int, bg color.Color) ports.Canvas
	EncodePNGFunc    func(img image.Image) ([]byte, error)

	// Canvases records every canvas created.
	Canvases []*Canvas
}

func (m *Renderer) CreateCanvas(width, height int, bg color.Color) ports.Canvas {
	if m.CreateCanvasFunc != nil {
		return m.CreateCanvasFunc(width, height, bg)
	}
	c := &Canvas{Width: width, Height: height}
	m.Canvases = append(m.Canvases, c)
	return c
}

func (m *Renderer) EncodePNG(img image.Image) ([]byte, error) {
	if m.EncodePNGFunc != nil {
		return m.EncodePNGFunc(img)
	}
	return []byte{0x89, 'P', 'N', 'G'}, nil
}

var _ ports.Renderer = (*Renderer)(nil)

// DrawImageCall records a call to DrawImage.
type DrawImageCall struct {
	Image image.Image
	X     int
	Y     int
}

// DrawRectCall records a call to DrawRect.
type DrawRectCall struct {
	X, Y, W, H int
	Color      color.Color
}

// DrawTextCall records a call to DrawText.
type DrawTextCall struct {
	Text  string
	X     int
	Y     int
	Style ports.TextStyle
}

// Canvas is a recording mock implementation of ports.Canvas.
// MeasureText reports 0.6 * FontSize per rune wide and FontSize high.
type Canvas struct {
	Width  int
	Height int

	Clears     int
	DrawImages []DrawImageCall
	DrawRects  []DrawRectCall
	DrawTexts  []DrawTextCall
}

func (m *Canvas) Size() (int, int) {
	return m.Width, m.Height
}

func (m *Canvas) Clear(c color.Color) {
	m.Clears++
}

func (m *Canvas) DrawImage(img image.Image, x, y int) {
	m.DrawImages = append(m.DrawImages, DrawImageCall{Image: img, X: x, Y: y})
}

func (m *Canvas) DrawRect(x, y, w, h int, c color.Color) {
	m.DrawRects = append(m.DrawRects, DrawRectCall{X: x, Y: y, W: w, H: h, Color: c})
}

func (m *Canvas) DrawText(text string, x, y int, style ports.TextStyle) {
	m.DrawTexts = append(m.DrawTexts, DrawTextCall{Text: text, X: x, Y: y, Style: style})
}

func (m *Canvas) MeasureText(text string, style ports.TextStyle) (float64, float64) {
	return float64(len([]rune(text))) * style.FontSize * 0.6, style.FontSize
}

func (m *Canvas) ToImage() image.Image {
	return image.NewRGBA(image.Rect(0, 0, m.Width, m.Height))
}

// Reset forgets all recorded calls.
func (m *Canvas) Reset() {
	m.Clears = 0
	m.DrawImages = nil
	m.DrawRects = nil
	m.DrawTexts = nil
}

var _ ports.Canvas = (*Canvas)(nil)
