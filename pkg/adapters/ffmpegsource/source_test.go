package ffmpegsource

import (
	"context"
	"errors"
	"image"
	"io"
	"os/exec"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/user/camgrid/pkg/adapters/ffmpegbin"
	"github.com/user/camgrid/pkg/adapters/ffprobe"
	"github.com/user/camgrid/pkg/adapters/logger"
	"github.com/user/camgrid/pkg/mocks"
	"github.com/user/camgrid/pkg/ports"
)

func TestOpen_ProbeFailure(t *testing.T) {
	prober := mocks.NewMediaProber()
	prober.Err = errors.New("unreadable")

	_, err := NewOpener("ffmpeg", prober, logger.NewNoop()).Open(context.Background(), "cam.avi")
	if err == nil {
		t.Fatal("expected probe error")
	}
}

func TestOpen_InvalidSize(t *testing.T) {
	prober := mocks.NewMediaProber()
	prober.Infos["cam.avi"] = ports.SourceInfo{Width: 0, Height: 480, FrameRate: 30}

	if _, err := NewOpener("ffmpeg", prober, logger.NewNoop()).Open(context.Background(), "cam.avi"); err == nil {
		t.Fatal("expected error for invalid frame size")
	}
}

// makeClip renders a short test pattern with an encoder every ffmpeg build has.
func makeClip(t *testing.T, ffmpeg string, frames int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "take_Miqus_1.avi")
	cmd := exec.Command(ffmpeg, "-v", "error", "-f", "lavfi", "-i", "testsrc=size=32x24:rate=10",
		"-frames:v", strconv.Itoa(frames), "-c:v", "mpeg4", path)
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Skipf("cannot render test clip: %v: %s", err, out)
	}
	return path
}

func TestSource_Decode(t *testing.T) {
	ffmpeg, err := ffmpegbin.Find(ffmpegbin.FFmpeg, "")
	if err != nil {
		t.Skip("ffmpeg not available")
	}
	probe, err := ffmpegbin.FindSibling(ffmpegbin.FFprobe, "", ffmpeg)
	if err != nil {
		t.Skip("ffprobe not available")
	}
	path := makeClip(t, ffmpeg, 5)

	src, err := NewOpener(ffmpeg, ffprobe.New(probe), logger.NewNoop()).Open(context.Background(), path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	info := src.Info()
	if info.Width != 32 || info.Height != 24 || info.FrameRate != 10 {
		t.Errorf("unexpected info %+v", info)
	}

	recycler := src.(ports.FrameRecycler)
	var previous image.Image
	count := 0
	for {
		frame, err := src.NextFrame()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("NextFrame failed: %v", err)
		}
		if b := frame.Bounds(); b.Dx() != 32 || b.Dy() != 24 {
			t.Errorf("unexpected frame size %v", b)
		}
		if previous != nil && frame != previous {
			t.Error("expected recycled buffer to be reused")
		}
		recycler.Recycle(frame)
		previous = frame
		count++
	}
	if count != 5 {
		t.Errorf("expected 5 frames, got %d", count)
	}
	if _, err := src.NextFrame(); !errors.Is(err, io.EOF) {
		t.Errorf("expected io.EOF after end, got %v", err)
	}
	if err := src.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
	if _, err := src.NextFrame(); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
}

func TestSource_CloseEarly(t *testing.T) {
	ffmpeg, err := ffmpegbin.Find(ffmpegbin.FFmpeg, "")
	if err != nil {
		t.Skip("ffmpeg not available")
	}
	probe, err := ffmpegbin.FindSibling(ffmpegbin.FFprobe, "", ffmpeg)
	if err != nil {
		t.Skip("ffprobe not available")
	}
	path := makeClip(t, ffmpeg, 5)

	src, err := NewOpener(ffmpeg, ffprobe.New(probe), logger.NewNoop()).Open(context.Background(), path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if _, err := src.NextFrame(); err != nil {
		t.Fatalf("NextFrame failed: %v", err)
	}
	if err := src.Close(); err != nil {
		t.Errorf("expected early close to succeed, got %v", err)
	}
	if err := src.Close(); err != nil {
		t.Errorf("expected second close to be a no-op, got %v", err)
	}
}
