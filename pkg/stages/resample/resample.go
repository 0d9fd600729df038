// Package resample converts a source's native frame cadence to the job's
// output cadence.
package resample

import (
	"errors"
	"image"
	"io"

	"github.com/user/camgrid/pkg/ports"
)

// Stats counts what a resampler did over a job.
type Stats struct {
	Ticks     int64 // Output ticks served
	Pulls     int64 // NextFrame calls made
	Decoded   int64 // Pulls that produced a frame
	Failures  int64 // Pulls that failed with an error other than io.EOF
	Exhausted bool  // The source reported io.EOF
}

// Resampler decides, per output tick, whether to pull a fresh frame from its
// source or repeat the frame it holds. It uses a fractional accumulator so the
// schedule stays phase-locked to the output cadence over the whole job.
type Resampler struct {
	source ports.FrameSource
	name   string
	step   float64
	acc    float64
	held   image.Image
	stats  Stats
	logger ports.Logger
}

// New creates a resampler for a source decoding at nativeRate frames per
// second into an output running at outputRate.
func New(source ports.FrameSource, name string, nativeRate, outputRate float64, logger ports.Logger) *Resampler {
	step := 1.0
	if outputRate > 0 {
		step = nativeRate / outputRate
	}
	return &Resampler{
		source: source,
		name:   name,
		step:   step,
		logger: logger.WithComponent("resample"),
	}
}

// Next advances one output tick and returns the frame to show for it.
// A nil result means the source has nothing to show.
func (r *Resampler) Next() image.Image {
	r.stats.Ticks++
	r.acc += r.step

	if r.acc >= 1 {
		r.release()
		r.held = r.pull()
		// Keep the fractional remainder; resetting to 0 would drift.
		r.acc -= 1
		return r.held
	}

	if r.held == nil {
		r.held = r.pull()
	}
	return r.held
}

// Held returns the frame currently held without advancing.
func (r *Resampler) Held() image.Image {
	return r.held
}

// Accumulator returns the current fractional accumulator.
func (r *Resampler) Accumulator() float64 {
	return r.acc
}

// Stats returns the counters gathered so far.
func (r *Resampler) Stats() Stats {
	return r.stats
}

// Release gives the held frame back to its source. The resampler can keep
// running afterwards; the next tick pulls again as if nothing was held.
func (r *Resampler) Release() {
	r.release()
}

func (r *Resampler) release() {
	if r.held == nil {
		return
	}
	if recycler, ok := r.source.(ports.FrameRecycler); ok {
		recycler.Recycle(r.held)
	}
	r.held = nil
}

// pull reads one frame. End of stream and decode failures both yield nil.
func (r *Resampler) pull() image.Image {
	r.stats.Pulls++
	if r.stats.Exhausted {
		return nil
	}

	img, err := r.source.NextFrame()
	if err != nil {
		if errors.Is(err, io.EOF) {
			r.stats.Exhausted = true
			r.logger.Debug("Source %s exhausted after %d frames", r.name, r.stats.Decoded)
		} else {
			r.stats.Failures++
			r.logger.Debug("Frame pull failed for %s: %v", r.name, err)
		}
		return nil
	}
	if img == nil {
		return nil
	}

	r.stats.Decoded++
	return img
}
