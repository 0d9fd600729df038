// Package orchestrator runs one merge job: it opens the cameras of a
// recording, drives the resamplers, the timecode clock and the compositor once
// per output tick, and streams the canvases into the output sink.
package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/user/camgrid/pkg/pipeline"
	"github.com/user/camgrid/pkg/ports"
	"github.com/user/camgrid/pkg/stages/composite"
	"github.com/user/camgrid/pkg/stages/layout"
	"github.com/user/camgrid/pkg/stages/resample"
	"github.com/user/camgrid/pkg/stages/timecode"
)

// Config contains all configuration for the orchestrator.
type Config struct {
	// Overlay
	Overlay       pipeline.OverlayStyle
	Background    color.Color
	ClearEachTick bool

	// Encoding
	Codec ports.Codec

	// MidnightFallback starts a job without embedded timecode at 00:00:00
	// instead of the current time of day.
	MidnightFallback bool

	// ProgressEvery logs progress every n ticks. 0 disables progress lines.
	ProgressEvery int
	// DebugEvery saves every n-th composed canvas to the debug sink.
	DebugEvery int

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		Overlay:       pipeline.DefaultOverlayStyle(),
		Background:    color.Black,
		Codec:         ports.CodecH264,
		ProgressEvery: 100,
		DebugEvery:    30,
	}
}

// Orchestrator merges the cameras of one recording into a grid video.
// An Orchestrator holds no per-job state and can run jobs concurrently.
type Orchestrator struct {
	opener    ports.SourceOpener
	timecodes ports.TimecodeReader
	sinks     ports.SinkOpener
	renderer  ports.Renderer
	debug     ports.DebugSink
	config    Config
	logger    ports.Logger
}

// New creates a new Orchestrator. timecodes may be nil, in which case every
// job uses a synthesized clock.
func New(
	opener ports.SourceOpener,
	timecodes ports.TimecodeReader,
	sinks ports.SinkOpener,
	renderer ports.Renderer,
	debug ports.DebugSink,
	config Config,
	logger ports.Logger,
) *Orchestrator {
	if config.Now == nil {
		config.Now = time.Now
	}
	if config.Background == nil {
		config.Background = color.Black
	}
	if config.Codec == "" {
		config.Codec = ports.CodecH264
	}
	return &Orchestrator{
		opener:    opener,
		timecodes: timecodes,
		sinks:     sinks,
		renderer:  renderer,
		debug:     debug,
		config:    config,
		logger:    logger,
	}
}

var _ pipeline.Stage[pipeline.MergeInput, pipeline.MergeResult] = (*Orchestrator)(nil)

// openedSource is a camera that survived initialization.
type openedSource struct {
	desc      pipeline.SourceDescriptor
	source    ports.FrameSource
	resampler *resample.Resampler
}

// job is the state of a single merge run.
type job struct {
	id        string
	input     pipeline.MergeInput
	sources   []*openedSource
	dropped   []string
	plan      pipeline.GridPlan
	rate      float64
	bitRate   int64
	length    int64
	seed      timecode.Seed
	clock     *timecode.Clock
	composer  *composite.Compositor
	sink      ports.FrameSink
	frames    []image.Image
	written   int64
	startText string
	endText   string
}

// Execute runs one merge job to completion. Sources that fail to open are
// dropped; the job fails only when none remain, none has a frame, the output
// cannot be opened or written, or ctx is cancelled. Every opened source and
// the sink are closed before Execute returns. The result is filled in as far
// as the job got, also on failure.
func (o *Orchestrator) Execute(ctx context.Context, input pipeline.MergeInput) (result pipeline.MergeResult, err error) {
	j := &job{id: uuid.NewString(), input: input}
	log := o.logger

	log.Info("Merging %s: %d cameras -> %s", input.Name, len(input.Sources), input.OutputPath)

	defer func() {
		if drainErr := o.drain(j); drainErr != nil && err == nil {
			err = drainErr
		}
		result = o.result(j)
	}()

	if err := o.open(ctx, j); err != nil {
		return result, err
	}
	if err := o.prepare(j); err != nil {
		return result, err
	}

	for tick := int64(1); tick <= j.length; tick++ {
		if err := ctx.Err(); err != nil {
			log.Warn("Merge of %s interrupted at frame %d", input.Name, tick)
			return result, fmt.Errorf("merge %s: %w", input.Name, err)
		}
		if err := o.tick(j, tick); err != nil {
			log.Error("Failed to write frame %d of %s: %v", tick, input.Name, err)
			return result, err
		}
	}

	log.Info("Merged %s: %d frames, %s to %s", input.Name, j.written, j.startText, j.endText)
	return result, nil
}

// open opens every input and reads embedded timecode until the reference
// source is found.
func (o *Orchestrator) open(ctx context.Context, j *job) error {
	reference := false

	for _, path := range j.input.Sources {
		src, err := o.opener.Open(ctx, path)
		if err != nil {
			o.logger.Warn("Skipping camera %s: %v", path, err)
			j.dropped = append(j.dropped, path)
			continue
		}

		info := src.Info()
		if info.Width <= 0 || info.Height <= 0 || info.FrameRate <= 0 {
			o.logger.Warn("Skipping camera %s: %v", path, fmt.Errorf("%w: %dx%d at %.3f fps", ErrInvalidSource, info.Width, info.Height, info.FrameRate))
			_ = src.Close()
			j.dropped = append(j.dropped, path)
			continue
		}

		desc := pipeline.SourceDescriptor{
			Path:              path,
			Width:             info.Width,
			Height:            info.Height,
			FrameRate:         info.FrameRate,
			FrameCount:        info.FrameCount,
			BitRate:           info.BitRate,
			Codec:             info.Codec,
			TimecodeFrequency: pipeline.DefaultTimecodeFrequency,
		}
		if !reference {
			reference = o.readTimecode(ctx, &desc)
		}

		o.logger.Debug("Opened %s: %s %dx%d, %.3f fps, %d frames", path, info.Codec, info.Width, info.Height, info.FrameRate, info.FrameCount)
		j.sources = append(j.sources, &openedSource{desc: desc, source: src})
	}

	if len(j.sources) == 0 {
		o.logger.Error("No usable cameras for %s", j.input.Name)
		return fmt.Errorf("merge %s: %w", j.input.Name, ErrNoSources)
	}
	return nil
}

// readTimecode fills desc with the embedded timecode of its file. Unreadable
// or malformed tags leave the source without a timecode.
func (o *Orchestrator) readTimecode(ctx context.Context, desc *pipeline.SourceDescriptor) bool {
	if o.timecodes == nil {
		return false
	}

	tag, err := o.timecodes.ReadTimecode(ctx, desc.Path)
	if err != nil {
		o.logger.Debug("No timecode in %s: %v", desc.Path, err)
		return false
	}
	if tag.Timecode == "" {
		return false
	}

	tc, err := timecode.Parse(tag.Timecode)
	if err != nil {
		o.logger.Debug("Ignoring timecode %q in %s: %v", tag.Timecode, desc.Path, err)
		return false
	}
	if tag.Frequency != "" {
		if freq, err := timecode.ParseFrequency(tag.Frequency); err == nil {
			desc.TimecodeFrequency = freq
		} else {
			o.logger.Debug("Ignoring timecode frequency %q in %s: %v", tag.Frequency, desc.Path, err)
		}
	}

	desc.Timecode = &tc
	o.logger.Info("Reference timecode %s at %.0f Hz from %s", tc, desc.TimecodeFrequency, desc.Path)
	return true
}

// prepare derives the job-wide parameters from the surviving sources and
// opens the sink.
func (o *Orchestrator) prepare(j *job) error {
	descs := make([]pipeline.SourceDescriptor, len(j.sources))
	for i, s := range j.sources {
		descs[i] = s.desc
	}

	j.plan = layout.Plan(len(descs))
	j.bitRate = math.MaxInt64
	for _, d := range descs {
		j.rate = max(j.rate, d.FrameRate)
		j.length = max(j.length, d.FrameCount)
		if d.BitRate > 0 {
			j.bitRate = min(j.bitRate, d.BitRate)
		}
	}
	if j.bitRate == math.MaxInt64 {
		j.bitRate = 0
	}
	if j.length == 0 {
		o.logger.Error("No camera of %s has a frame to merge", j.input.Name)
		return fmt.Errorf("%w: %s", ErrNoFrames, j.input.Name)
	}

	for _, s := range j.sources {
		s.resampler = resample.New(s.source, s.desc.Path, s.desc.FrameRate, j.rate, o.logger)
	}
	j.frames = make([]image.Image, len(j.sources))

	now := o.config.Now()
	base := now
	if o.config.MidnightFallback {
		base = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	}
	j.seed = timecode.SeedFrom(descs, j.rate, now, base)
	j.clock = timecode.NewClock(j.seed, j.rate)

	j.composer = composite.New(o.renderer, descs, j.plan, composite.Options{
		Overlay:       o.config.Overlay,
		Background:    o.config.Background,
		ClearEachTick: o.config.ClearEachTick,
	}, o.logger)
	size := j.composer.Size()

	o.logger.Info("Grid %dx%d, canvas %dx%d, %.3f fps, %d frames",
		j.plan.Columns, j.plan.Rows, size.Width, size.Height, j.rate, j.length)

	o.saveJobJSON(j, descs)

	sink, err := o.sinks.Open(j.input.OutputPath, ports.SinkOptions{
		Width:     size.Width,
		Height:    size.Height,
		FrameRate: j.rate,
		BitRate:   j.bitRate,
		Codec:     o.config.Codec,
		Audio:     false,
	})
	if err != nil {
		o.logger.Error("Failed to open output %s: %v", j.input.OutputPath, err)
		return fmt.Errorf("%w: %s: %v", ErrSinkOpen, j.input.OutputPath, err)
	}
	j.sink = sink
	return nil
}

// tick produces and writes one output frame.
func (o *Orchestrator) tick(j *job, tick int64) error {
	for i, s := range j.sources {
		j.frames[i] = s.resampler.Next()
	}

	text := j.clock.String()
	if tick == 1 {
		j.startText = text
	}
	j.endText = text

	img := j.composer.Compose(j.frames, text)
	j.clock.Advance()

	if o.debug.Enabled() && o.config.DebugEvery > 0 && (tick-1)%int64(o.config.DebugEvery) == 0 {
		if err := o.debug.SaveComposedFrame(j.id, int(tick), img); err != nil {
			o.logger.Debug("Failed to save debug frame %d: %v", tick, err)
		}
	}

	if err := j.sink.WriteFrame(img); err != nil {
		return fmt.Errorf("%w: frame %d: %v", ErrSinkWrite, tick, err)
	}
	j.written++

	if every := int64(o.config.ProgressEvery); every > 0 && (tick%every == 0 || tick == j.length) {
		o.logger.Info("Merged %d/%d frames of %s", tick, j.length, j.input.Name)
	}
	return nil
}

// drain releases every resource the job acquired, in reverse order of
// acquisition.
func (o *Orchestrator) drain(j *job) error {
	var sinkErr error
	if j.sink != nil {
		if err := j.sink.Close(); err != nil {
			o.logger.Error("Failed to finalize output %s: %v", j.input.OutputPath, err)
			sinkErr = fmt.Errorf("close output %s: %w", j.input.OutputPath, err)
		}
	}

	for _, s := range j.sources {
		if s.resampler != nil {
			stats := s.resampler.Stats()
			o.logger.Debug("%s: %d ticks, %d decoded, %d failed", s.desc.Path, stats.Ticks, stats.Decoded, stats.Failures)
			s.resampler.Release()
		}
		if err := s.source.Close(); err != nil {
			o.logger.Debug("Failed to close %s: %v", s.desc.Path, err)
		}
	}
	return sinkErr
}

func (o *Orchestrator) result(j *job) pipeline.MergeResult {
	descs := make([]pipeline.SourceDescriptor, len(j.sources))
	for i, s := range j.sources {
		descs[i] = s.desc
	}
	var canvas pipeline.Dimension
	if j.composer != nil {
		canvas = j.composer.Size()
	}
	return pipeline.MergeResult{
		JobID:          j.id,
		OutputPath:     j.input.OutputPath,
		FramesWritten:  j.written,
		Sources:        descs,
		DroppedSources: j.dropped,
		Grid:           j.plan,
		Canvas:         canvas,
		FrameRate:      j.rate,
		BitRate:        j.bitRate,
		StartTimecode:  j.startText,
		EndTimecode:    j.endText,
	}
}

// jobDescription is the debug view of a prepared job.
type jobDescription struct {
	JobID     string                      `json:"jobId"`
	Name      string                      `json:"name"`
	Output    string                      `json:"output"`
	Sources   []pipeline.SourceDescriptor `json:"sources"`
	Dropped   []string                    `json:"dropped,omitempty"`
	Grid      pipeline.GridPlan           `json:"grid"`
	FrameRate float64                     `json:"frameRate"`
	BitRate   int64                       `json:"bitRate"`
	Frames    int64                       `json:"frames"`
	Clock     clockDescription            `json:"clock"`
}

type clockDescription struct {
	Start     string  `json:"start"`
	Frequency float64 `json:"frequency"`
	Reference bool    `json:"reference"`
	Source    int     `json:"source"`
}

func (o *Orchestrator) saveJobJSON(j *job, descs []pipeline.SourceDescriptor) {
	if !o.debug.Enabled() {
		return
	}
	desc := jobDescription{
		JobID:     j.id,
		Name:      j.input.Name,
		Output:    j.input.OutputPath,
		Sources:   descs,
		Dropped:   j.dropped,
		Grid:      j.plan,
		FrameRate: j.rate,
		BitRate:   j.bitRate,
		Frames:    j.length,
		Clock: clockDescription{
			Start:     j.clock.String(),
			Frequency: j.seed.Frequency,
			Reference: j.seed.Reference,
			Source:    j.seed.Source,
		},
	}
	data, err := json.MarshalIndent(desc, "", "  ")
	if err != nil {
		return
	}
	if err := o.debug.SaveJobJSON(j.id, data); err != nil {
		o.logger.Debug("Failed to save job description: %v", err)
	}
}
