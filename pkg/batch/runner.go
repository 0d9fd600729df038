package batch

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/user/camgrid/pkg/pipeline"
	"github.com/user/camgrid/pkg/ports"
	"github.com/user/camgrid/pkg/summarizer"
)

// Runner merges every pending recording below a root.
type Runner struct {
	fs     ports.FileSystem
	merger pipeline.Stage[pipeline.MergeInput, pipeline.MergeResult]
	opts   Options
	logger ports.Logger
}

// NewRunner creates a runner. merger runs one job per recording and must be
// safe for concurrent use when opts.Workers > 1.
func NewRunner(fs ports.FileSystem, merger pipeline.Stage[pipeline.MergeInput, pipeline.MergeResult], opts Options, logger ports.Logger) *Runner {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &Runner{
		fs:     fs,
		merger: merger,
		opts:   opts,
		logger: logger,
	}
}

// outcome is the result of one recording.
type outcome struct {
	index   int
	status  summarizer.Status
	result  pipeline.MergeResult
	err     error
	elapsed time.Duration
}

// Run discovers the recordings and merges the pending ones. Job failures are
// recorded in the summary; Run itself fails only when the root cannot be
// used or ctx is cancelled.
func (r *Runner) Run(ctx context.Context) (*summarizer.Summary, error) {
	started := time.Now()

	ok, err := r.fs.Exists(r.opts.Root)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", r.opts.Root, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRootNotFound, r.opts.Root)
	}

	if r.opts.LockFile != "" {
		lock := flock.New(filepath.Join(r.opts.Root, r.opts.LockFile))
		locked, err := lock.TryLock()
		if err != nil {
			return nil, fmt.Errorf("acquire lock: %w", err)
		}
		if !locked {
			return nil, fmt.Errorf("%w: %s", ErrLocked, lock.Path())
		}
		defer func() {
			if err := lock.Unlock(); err != nil {
				r.logger.Warn("Failed to release lock %s: %v", lock.Path(), err)
			}
		}()
	}

	recordings, err := Discover(r.fs, r.opts)
	if err != nil {
		return nil, err
	}
	r.logger.Info("Found %d recordings under %s", len(recordings), r.opts.Root)

	outcomes := make([]outcome, len(recordings))
	var pending []int
	for i, rec := range recordings {
		outcomes[i] = outcome{index: i, status: r.classify(rec)}
		if outcomes[i].status == "" {
			pending = append(pending, i)
		}
	}

	r.merge(ctx, recordings, pending, outcomes)

	builder := summarizer.NewBuilder().WithRun(r.opts.Root, r.opts.Workers, time.Since(started))
	for i, o := range outcomes {
		rec := recordings[i]
		switch o.status {
		case summarizer.StatusMerged:
			size, _ := r.fs.Size(rec.Output)
			builder.WithMerged(rec.Name, o.result, size, o.elapsed)
		case summarizer.StatusFailed:
			builder.WithFailed(rec.Name, rec.Output, o.result, o.err, o.elapsed)
		default:
			builder.WithJob(rec.Name, rec.Output, o.status, o.err)
		}
	}
	summary := builder.Build()

	if err := ctx.Err(); err != nil {
		return summary, fmt.Errorf("batch interrupted: %w", err)
	}
	return summary, nil
}

// classify returns the final status of a recording that needs no merge, or
// "" when it is pending.
func (r *Runner) classify(rec Recording) summarizer.Status {
	if len(rec.Cameras) == 0 {
		r.logger.Info("Skipping %s: no cameras match %s", rec.Name, r.opts.CameraPattern)
		return summarizer.StatusNoCameras
	}
	exists, err := r.fs.Exists(rec.Output)
	if err != nil {
		r.logger.Warn("Cannot check %s: %v", rec.Output, err)
	}
	if exists {
		r.logger.Info("Skipping %s: %s already exists", rec.Name, rec.Output)
		return summarizer.StatusSkipped
	}
	return ""
}

// merge runs the pending recordings on a bounded worker pool and stores each
// outcome at its recording's index.
func (r *Runner) merge(ctx context.Context, recordings []Recording, pending []int, outcomes []outcome) {
	if len(pending) == 0 {
		return
	}
	numWorkers := min(r.opts.Workers, len(pending))
	r.logger.Info("Merging %d recordings with %d workers", len(pending), numWorkers)

	jobs := make(chan int, len(pending))
	results := make(chan outcome, len(pending))

	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go r.worker(ctx, &wg, recordings, jobs, results)
	}

	for _, idx := range pending {
		jobs <- idx
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	for o := range results {
		outcomes[o.index] = o
	}
}

// worker merges recordings from the jobs channel.
func (r *Runner) worker(
	ctx context.Context,
	wg *sync.WaitGroup,
	recordings []Recording,
	jobs <-chan int,
	results chan<- outcome,
) {
	defer wg.Done()

	for idx := range jobs {
		rec := recordings[idx]
		if err := ctx.Err(); err != nil {
			results <- outcome{index: idx, status: summarizer.StatusFailed, err: err}
			continue
		}

		started := time.Now()
		result, err := r.merger.Execute(ctx, pipeline.MergeInput{
			Name:       rec.Name,
			OutputPath: rec.Output,
			Sources:    rec.Cameras,
		})
		elapsed := time.Since(started)

		if err != nil {
			r.logger.Error("Failed to merge %s: %v", rec.Name, err)
			results <- outcome{index: idx, status: summarizer.StatusFailed, result: result, err: err, elapsed: elapsed}
			continue
		}
		r.logger.Info("Merged %s in %s", rec.Name, elapsed.Round(time.Millisecond))
		results <- outcome{index: idx, status: summarizer.StatusMerged, result: result, elapsed: elapsed}
	}
}
