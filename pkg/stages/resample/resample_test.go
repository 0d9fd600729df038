package resample

import (
	"errors"
	"image"
	"testing"

	"github.com/user/camgrid/pkg/adapters/logger"
	"github.com/user/camgrid/pkg/mocks"
)

func TestResampler_EqualRatePullsEveryTick(t *testing.T) {
	src := mocks.NewFrameSource(4, 4, 30, 100)
	r := New(src, "cam1", 30, 30, logger.NewNoop())

	var prev image.Image
	for tick := 1; tick <= 50; tick++ {
		img := r.Next()
		if img == nil {
			t.Fatalf("tick %d: expected frame, got nil", tick)
		}
		if img == prev {
			t.Fatalf("tick %d: frame repeated at equal rate", tick)
		}
		if src.NextFrameCalls != tick {
			t.Fatalf("tick %d: expected %d pulls, got %d", tick, tick, src.NextFrameCalls)
		}
		prev = img
	}
}

func TestResampler_HalfRateRepeatsAlternately(t *testing.T) {
	src := mocks.NewFrameSource(4, 4, 15, 1000)
	r := New(src, "cam1", 15, 30, logger.NewNoop())

	// Tick 1 bootstraps (acc=0.5, nothing held); tick 2 crosses 1.
	frames := make([]image.Image, 0, 20)
	for i := 0; i < 20; i++ {
		frames = append(frames, r.Next())
	}

	for i := 0; i+1 < len(frames); i++ {
		same := frames[i] == frames[i+1]
		// Pulls happen on even ticks (1-based), so frames[i] (tick i+1) is
		// repeated at tick i+2 exactly when i+2 is odd.
		wantSame := (i+2)%2 == 1
		if same != wantSame {
			t.Errorf("ticks %d/%d: repeated=%v, expected %v", i+1, i+2, same, wantSame)
		}
	}
}

func TestResampler_HalfRateNoDrift(t *testing.T) {
	for _, k := range []int{1, 10, 500, 5000} {
		src := mocks.NewFrameSource(2, 2, 12.5, int64(10*k))
		r := New(src, "cam1", 12.5, 25, logger.NewNoop())

		for tick := 0; tick < 2*k; tick++ {
			r.Next()
		}

		// k accumulator crossings, plus the single bootstrap pull on tick 1.
		if got := r.Stats().Pulls; got != int64(k)+1 {
			t.Errorf("k=%d: expected %d pulls, got %d", k, k+1, got)
		}
	}
}

func TestResampler_NonIntegralRatio(t *testing.T) {
	src := mocks.NewFrameSource(2, 2, 25, 10000)
	r := New(src, "cam1", 25, 30, logger.NewNoop())

	const ticks = 2999
	for i := 0; i < ticks; i++ {
		r.Next()
	}

	// floor(2999 * 25/30) crossings + bootstrap
	if got := r.Stats().Pulls; got != 2500 {
		t.Errorf("expected 2500 pulls, got %d", got)
	}
}

func TestResampler_AccumulatorBounded(t *testing.T) {
	rates := []struct{ native, output float64 }{
		{30, 30}, {25, 30}, {29.97, 30}, {15, 60}, {59.94, 60},
	}
	for _, rate := range rates {
		src := mocks.NewFrameSource(2, 2, rate.native, 100000)
		r := New(src, "cam", rate.native, rate.output, logger.NewNoop())
		step := rate.native / rate.output

		for tick := 0; tick < 5000; tick++ {
			before := r.Accumulator()
			if before < 0 || before >= 1 {
				t.Fatalf("%v: accumulator %f out of [0,1) at tick start", rate, before)
			}
			pullsBefore := r.Stats().Pulls
			r.Next()
			after := r.Accumulator()
			if r.Stats().Pulls > pullsBefore && before+step >= 1 {
				if after >= before+step-1+1e-9 || after < -1e-9 {
					t.Fatalf("%v: accumulator %f after pull from %f", rate, after, before)
				}
			}
		}
	}
}

func TestResampler_ExhaustionYieldsNil(t *testing.T) {
	src := mocks.NewFrameSource(2, 2, 30, 3)
	r := New(src, "cam1", 30, 30, logger.NewNoop())

	for i := 0; i < 3; i++ {
		if r.Next() == nil {
			t.Fatalf("tick %d: expected frame", i+1)
		}
	}
	for i := 0; i < 5; i++ {
		if img := r.Next(); img != nil {
			t.Fatalf("tick %d: expected nil after exhaustion", i+4)
		}
	}

	stats := r.Stats()
	if !stats.Exhausted {
		t.Error("expected source to be marked exhausted")
	}
	if stats.Decoded != 3 {
		t.Errorf("expected 3 decoded frames, got %d", stats.Decoded)
	}
	// NextFrame is not called again after io.EOF.
	if src.NextFrameCalls != 4 {
		t.Errorf("expected 4 NextFrame calls, got %d", src.NextFrameCalls)
	}
}

func TestResampler_PullFailureIsAbsentFrame(t *testing.T) {
	src := mocks.NewFrameSource(2, 2, 30, 10)
	src.Errors = map[int]error{1: errors.New("corrupt packet")}
	r := New(src, "cam1", 30, 30, logger.NewNoop())

	if r.Next() == nil {
		t.Fatal("tick 1: expected frame")
	}
	if img := r.Next(); img != nil {
		t.Fatal("tick 2: expected nil on pull failure")
	}
	if r.Next() == nil {
		t.Fatal("tick 3: expected decoding to continue after a failure")
	}
	if got := r.Stats().Failures; got != 1 {
		t.Errorf("expected 1 failure, got %d", got)
	}
}

func TestResampler_BootstrapKeepsAbsentResult(t *testing.T) {
	src := mocks.NewFrameSource(2, 2, 10, 0)
	r := New(src, "cam1", 10, 30, logger.NewNoop())

	if img := r.Next(); img != nil {
		t.Fatal("expected nil from empty source")
	}
	if src.NextFrameCalls != 1 {
		t.Errorf("expected one bootstrap pull, got %d", src.NextFrameCalls)
	}
}

func TestResampler_RecyclesReplacedFrames(t *testing.T) {
	src := mocks.NewFrameSource(2, 2, 30, 5)
	r := New(src, "cam1", 30, 30, logger.NewNoop())

	first := r.Next()
	r.Next()
	if len(src.Recycled) != 1 || src.Recycled[0] != first {
		t.Fatalf("expected first frame to be recycled when replaced, got %d recycled", len(src.Recycled))
	}

	r.Release()
	if r.Held() != nil {
		t.Error("expected no held frame after Release")
	}
	if len(src.Recycled) != 2 {
		t.Errorf("expected 2 recycled frames, got %d", len(src.Recycled))
	}
}
