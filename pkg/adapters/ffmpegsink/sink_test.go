package ffmpegsink

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/user/camgrid/pkg/adapters/ffmpegbin"
	"github.com/user/camgrid/pkg/adapters/ffmpegsource"
	"github.com/user/camgrid/pkg/adapters/ffprobe"
	"github.com/user/camgrid/pkg/adapters/logger"
	"github.com/user/camgrid/pkg/ports"
)

func TestArgs_H264(t *testing.T) {
	args, err := Args("out.avi", ports.SinkOptions{
		Width: 1920, Height: 1080, FrameRate: 29.97, BitRate: 4_000_000, Codec: ports.CodecH264,
	}, "", "fast")
	if err != nil {
		t.Fatalf("Args failed: %v", err)
	}

	for _, pair := range [][2]string{
		{"-s", "1920x1080"},
		{"-r", "29.97"},
		{"-c:v", "libx264"},
		{"-b:v", "4000000"},
		{"-preset", "fast"},
	} {
		i := slices.Index(args, pair[0])
		if i < 0 || i+1 >= len(args) || args[i+1] != pair[1] {
			t.Errorf("expected %s %s in %v", pair[0], pair[1], args)
		}
	}
	if !slices.Contains(args, "-an") {
		t.Error("expected audio to be disabled")
	}
	if slices.Contains(args, "-crf") {
		t.Error("expected no CRF when a bit rate is given")
	}
	if args[len(args)-1] != "out.avi" {
		t.Errorf("expected output path last, got %s", args[len(args)-1])
	}
}

func TestArgs_AV1WithoutBitRate(t *testing.T) {
	args, err := Args("out.mkv", ports.SinkOptions{Width: 64, Height: 48, FrameRate: 25, Codec: ports.CodecAV1}, "", "fast")
	if err != nil {
		t.Fatalf("Args failed: %v", err)
	}
	i := slices.Index(args, "-c:v")
	if args[i+1] != "libsvtav1" {
		t.Errorf("expected libsvtav1, got %s", args[i+1])
	}
	if slices.Contains(args, "-b:v") {
		t.Error("expected no bit rate")
	}
}

func TestArgs_UnsupportedCodec(t *testing.T) {
	_, err := Args("out.avi", ports.SinkOptions{Codec: "vp9"}, "", "")
	if !errors.Is(err, ErrUnsupportedCodec) {
		t.Errorf("expected ErrUnsupportedCodec, got %v", err)
	}
}

func TestArgs_AomConstantQuality(t *testing.T) {
	args, err := Args("out.mkv", ports.SinkOptions{Width: 64, Height: 48, FrameRate: 25, Codec: ports.CodecAV1}, "libaom-av1", "fast")
	if err != nil {
		t.Fatalf("Args failed: %v", err)
	}
	i := slices.Index(args, "-c:v")
	if args[i+1] != "libaom-av1" {
		t.Errorf("expected libaom-av1, got %s", args[i+1])
	}
	i = slices.Index(args, "-b:v")
	if i < 0 || args[i+1] != "0" {
		t.Errorf("expected -b:v 0 in %v", args)
	}
	if slices.Contains(args, "-preset") {
		t.Error("libaom-av1 takes no -preset")
	}
}

func TestLockedBuffer_ConcurrentWriteAndRead(t *testing.T) {
	var buf lockedBuffer
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 1000; i++ {
			fmt.Fprintf(&buf, "line %d\n", i)
		}
	}()
	for i := 0; i < 100; i++ {
		_ = buf.String()
	}
	<-done

	if got := strings.Count(buf.String(), "\n"); got != 1000 {
		t.Errorf("expected 1000 lines, got %d", got)
	}
}

func TestTempPath(t *testing.T) {
	got := TempPath(filepath.Join("data", "take1.avi"))
	if got != filepath.Join("data", ".take1.partial.avi") {
		t.Errorf("unexpected temp path %s", got)
	}
}

func TestOpen_InvalidOptions(t *testing.T) {
	o := NewOpener("ffmpeg", logger.NewNoop())
	if _, err := o.Open("out.avi", ports.SinkOptions{}); err == nil {
		t.Error("expected error for empty output size")
	}
}

// TestRoundTrip encodes a short clip and decodes it again.
func TestRoundTrip(t *testing.T) {
	ffmpeg, err := ffmpegbin.Find(ffmpegbin.FFmpeg, "")
	if err != nil {
		t.Skip("ffmpeg not available")
	}
	probe, err := ffmpegbin.FindSibling(ffmpegbin.FFprobe, "", ffmpeg)
	if err != nil {
		t.Skip("ffprobe not available")
	}
	if !EncoderAvailable(context.Background(), ffmpeg, "libx264") {
		t.Skip("libx264 not available")
	}

	out := filepath.Join(t.TempDir(), "merged.mp4")
	sink, err := NewOpener(ffmpeg, logger.NewNoop()).Open(out, ports.SinkOptions{
		Width: 64, Height: 48, FrameRate: 25, Codec: ports.CodecH264,
	})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	img := image.NewRGBA(image.Rect(0, 0, 64, 48))
	for i := 0; i < 10; i++ {
		for p := 0; p < len(img.Pix); p += 4 {
			img.Pix[p], img.Pix[p+1], img.Pix[p+2], img.Pix[p+3] = uint8(i*20), 100, 50, 255
		}
		if err := sink.WriteFrame(img); err != nil {
			t.Fatalf("WriteFrame %d failed: %v", i, err)
		}
	}
	if err := sink.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if _, err := os.Stat(TempPath(out)); !os.IsNotExist(err) {
		t.Error("expected partial file to be gone")
	}

	opener := ffmpegsource.NewOpener(ffmpeg, ffprobe.New(probe), logger.NewNoop())
	src, err := opener.Open(context.Background(), out)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer src.Close()

	info := src.Info()
	if info.Width != 64 || info.Height != 48 || info.FrameRate != 25 {
		t.Errorf("unexpected stream %+v", info)
	}

	frames := 0
	for {
		frame, err := src.NextFrame()
		if err != nil {
			break
		}
		if frames == 0 {
			c := color.RGBAModel.Convert(frame.At(32, 24)).(color.RGBA)
			if c.G < 80 || c.G > 120 {
				t.Errorf("unexpected decoded colour %v", c)
			}
		}
		frames++
	}
	if frames != 10 {
		t.Errorf("expected 10 frames, got %d", frames)
	}
}

func TestClose_NoFramesRemovesPartial(t *testing.T) {
	ffmpeg, err := ffmpegbin.Find(ffmpegbin.FFmpeg, "")
	if err != nil {
		t.Skip("ffmpeg not available")
	}
	if !EncoderAvailable(context.Background(), ffmpeg, "libx264") {
		t.Skip("libx264 not available")
	}

	out := filepath.Join(t.TempDir(), "empty.mp4")
	sink, err := NewOpener(ffmpeg, logger.NewNoop()).Open(out, ports.SinkOptions{
		Width: 64, Height: 48, FrameRate: 25, Codec: ports.CodecH264,
	})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	_ = sink.Close()

	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Error("expected no output for an empty job")
	}
	if err := sink.WriteFrame(image.NewRGBA(image.Rect(0, 0, 64, 48))); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
}
