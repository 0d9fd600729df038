package orchestrator

import "errors"

var (
	// ErrNoSources is returned when no camera of a job could be opened.
	ErrNoSources = errors.New("no usable sources")

	// ErrNoFrames is returned when every usable source reports zero frames.
	// The output is never opened, so no empty file is left behind.
	ErrNoFrames = errors.New("no frames to merge")

	// ErrInvalidSource marks a source whose stream geometry or rate is unusable.
	ErrInvalidSource = errors.New("invalid source stream")

	// ErrSinkOpen is returned when the output video cannot be created.
	ErrSinkOpen = errors.New("failed to open output")

	// ErrSinkWrite is returned when a composed frame cannot be written.
	// The job is aborted; sources and sink are still closed.
	ErrSinkWrite = errors.New("failed to write output frame")
)
