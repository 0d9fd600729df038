package ggrenderer

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/user/camgrid/pkg/ports"
)

func TestRenderer_CreateCanvas(t *testing.T) {
	r := New()

	canvas := r.CreateCanvas(100, 60, color.White)
	if canvas == nil {
		t.Fatal("expected canvas to be created")
	}

	w, h := canvas.Size()
	if w != 100 || h != 60 {
		t.Errorf("expected 100x60, got %dx%d", w, h)
	}

	img := canvas.ToImage()
	if got := color.RGBAModel.Convert(img.At(50, 30)).(color.RGBA); got != (color.RGBA{255, 255, 255, 255}) {
		t.Errorf("expected white background, got %v", got)
	}
}

func TestCanvas_DrawImageReplacesPixels(t *testing.T) {
	r := New()
	canvas := r.CreateCanvas(20, 20, color.Black)

	src := image.NewRGBA(image.Rect(0, 0, 5, 5))
	red := color.RGBA{R: 255, A: 255}
	for y := 0; y < 5; y++ {
		for x := 0; x < 5; x++ {
			src.Set(x, y, red)
		}
	}
	canvas.DrawImage(src, 10, 10)

	img := canvas.ToImage()
	if got := color.RGBAModel.Convert(img.At(12, 12)).(color.RGBA); got != red {
		t.Errorf("expected red inside blit, got %v", got)
	}
	if got := color.RGBAModel.Convert(img.At(9, 9)).(color.RGBA); got != (color.RGBA{0, 0, 0, 255}) {
		t.Errorf("expected black outside blit, got %v", got)
	}
	if got := color.RGBAModel.Convert(img.At(15, 15)).(color.RGBA); got != (color.RGBA{0, 0, 0, 255}) {
		t.Errorf("expected black past blit edge, got %v", got)
	}
}

func TestCanvas_DrawImageNonZeroBounds(t *testing.T) {
	r := New()
	canvas := r.CreateCanvas(10, 10, color.Black)

	full := image.NewRGBA(image.Rect(0, 0, 8, 8))
	green := color.RGBA{G: 255, A: 255}
	full.Set(4, 4, green)
	sub := full.SubImage(image.Rect(4, 4, 8, 8))

	canvas.DrawImage(sub, 0, 0)
	if got := color.RGBAModel.Convert(canvas.ToImage().At(0, 0)).(color.RGBA); got != green {
		t.Errorf("expected sub-image origin at canvas origin, got %v", got)
	}
}

func TestCanvas_MeasureAndDrawText(t *testing.T) {
	r := New()
	canvas := r.CreateCanvas(400, 100, color.Black)
	style := ports.TextStyle{FontSize: 40, Color: color.White}

	w, h := canvas.MeasureText("12:34:56", style)
	if w <= 0 || h <= 0 {
		t.Fatalf("expected positive text size, got %vx%v", w, h)
	}

	bigW, _ := canvas.MeasureText("12:34:56", ports.TextStyle{FontSize: 80, Color: color.White})
	if bigW <= w {
		t.Errorf("expected larger font to measure wider: %v <= %v", bigW, w)
	}

	canvas.DrawText("12:34:56", 10, 10, style)

	img := canvas.ToImage()
	lit := 0
	for y := 10; y < 10+int(h); y++ {
		for x := 10; x < 10+int(w); x++ {
			if c := color.RGBAModel.Convert(img.At(x, y)).(color.RGBA); c.R > 128 {
				lit++
			}
		}
	}
	if lit == 0 {
		t.Error("expected text pixels inside the measured box")
	}
}

func TestCanvas_MissingFontFallsBack(t *testing.T) {
	r := New()
	canvas := r.CreateCanvas(100, 50, color.Black)

	w, _ := canvas.MeasureText("00", ports.TextStyle{FontSize: 20, FontPath: "/nonexistent/font.ttf"})
	if w <= 0 {
		t.Errorf("expected built-in face to be used, got width %v", w)
	}
}

func TestRenderer_EncodePNG(t *testing.T) {
	r := New()

	data, err := r.EncodePNG(image.NewRGBA(image.Rect(0, 0, 30, 20)))
	if err != nil {
		t.Fatalf("EncodePNG failed: %v", err)
	}

	decoded, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if b := decoded.Bounds(); b.Dx() != 30 || b.Dy() != 20 {
		t.Errorf("expected 30x20, got %dx%d", b.Dx(), b.Dy())
	}
}
