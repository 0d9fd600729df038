// Package summarizer reports the outcome of a batch run.
package summarizer

import (
	"time"

	"github.com/user/camgrid/pkg/pipeline"
)

// Status is the outcome of one recording.
type Status string

const (
	StatusMerged    Status = "merged"
	StatusSkipped   Status = "skipped"
	StatusNoCameras Status = "no cameras"
	StatusFailed    Status = "failed"
)

// Summary contains the results of a batch run.
type Summary struct {
	GeneratedAt time.Time
	Root        string
	Workers     int
	Elapsed     time.Duration
	Jobs        []JobSummary
}

// JobSummary describes one recording.
type JobSummary struct {
	Name       string
	OutputPath string
	Status     Status
	Cameras    int
	Dropped    int
	Frames     int64
	Grid       pipeline.GridPlan
	Canvas     pipeline.Dimension
	FrameRate  float64
	BitRate    int64
	FileSize   int64
	Start      string
	End        string
	Elapsed    time.Duration
	Err        string
}

// Count returns the number of jobs with the given status.
func (s *Summary) Count(status Status) int {
	n := 0
	for _, j := range s.Jobs {
		if j.Status == status {
			n++
		}
	}
	return n
}

// NewSummary creates a new Summary with the current timestamp.
func NewSummary() *Summary {
	return &Summary{
		GeneratedAt: time.Now(),
	}
}

// Builder provides a fluent interface for building a Summary.
type Builder struct {
	summary *Summary
}

// NewBuilder creates a new Builder.
func NewBuilder() *Builder {
	return &Builder{
		summary: NewSummary(),
	}
}

// WithRun sets the batch root, worker count and wall time.
func (b *Builder) WithRun(root string, workers int, elapsed time.Duration) *Builder {
	b.summary.Root = root
	b.summary.Workers = workers
	b.summary.Elapsed = elapsed
	return b
}

// WithMerged adds a successfully merged recording.
func (b *Builder) WithMerged(name string, result pipeline.MergeResult, fileSize int64, elapsed time.Duration) *Builder {
	b.summary.Jobs = append(b.summary.Jobs, JobSummary{
		Name:       name,
		OutputPath: result.OutputPath,
		Status:     StatusMerged,
		Cameras:    len(result.Sources),
		Dropped:    len(result.DroppedSources),
		Frames:     result.FramesWritten,
		Grid:       result.Grid,
		Canvas:     result.Canvas,
		FrameRate:  result.FrameRate,
		BitRate:    result.BitRate,
		FileSize:   fileSize,
		Start:      result.StartTimecode,
		End:        result.EndTimecode,
		Elapsed:    elapsed,
	})
	return b
}

// WithFailed adds a recording whose merge was attempted and failed. The
// camera counts of result are kept so dropped cameras stay visible.
func (b *Builder) WithFailed(name, outputPath string, result pipeline.MergeResult, err error, elapsed time.Duration) *Builder {
	job := JobSummary{
		Name:       name,
		OutputPath: outputPath,
		Status:     StatusFailed,
		Cameras:    len(result.Sources),
		Dropped:    len(result.DroppedSources),
		Frames:     result.FramesWritten,
		Elapsed:    elapsed,
	}
	if err != nil {
		job.Err = err.Error()
	}
	b.summary.Jobs = append(b.summary.Jobs, job)
	return b
}

// WithJob adds a recording that was not merged.
func (b *Builder) WithJob(name, outputPath string, status Status, err error) *Builder {
	job := JobSummary{Name: name, OutputPath: outputPath, Status: status}
	if err != nil {
		job.Err = err.Error()
	}
	b.summary.Jobs = append(b.summary.Jobs, job)
	return b
}

// Build returns the constructed Summary.
func (b *Builder) Build() *Summary {
	return b.summary
}
