package worker

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

type fileResult struct {
	Path       string
	Transcript string
	Err        *FileError
	done       bool
}

// processConcurrent processes files with bounded parallelism and rate
// limiting. A failed file is recorded in its result slot and does not
// cancel the others; only context cancellation aborts the batch.
func processConcurrent(ctx context.Context, files []string, opts Options) ([]fileResult, error) {
	slog.Info("starting concurrent processing",
		"files", len(files),
		"max_concurrent", opts.Config.MaxConcurrentFiles,
		"rate_limit_rpm", opts.Config.APIRateLimitPerMin)

	// Tokens per second = RPM / 60.
	limiter := rate.NewLimiter(rate.Limit(float64(opts.Config.APIRateLimitPerMin)/60.0), 1)

	// Each goroutine owns exactly one slot.
	results := make([]fileResult, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Config.MaxConcurrentFiles)

	for i, file := range files {
		results[i].Path = file
		g.Go(func() error {
			if err := limiter.Wait(gctx); err != nil {
				return fmt.Errorf("rate limiter: %w", err)
			}

			slog.Info("processing file", "file", filepath.Base(file), "progress", fmt.Sprintf("%d/%d", i+1, len(files)))
			transcript, ferr := processFile(gctx, file, opts)
			results[i].done = true
			results[i].Transcript = transcript
			if ferr != nil {
				slog.Error("file failed", "file", filepath.Base(file), "stage", ferr.Stage, "err", ferr.Err)
				results[i].Err = ferr
				return nil
			}
			slog.Info("file completed", "file", filepath.Base(file))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return completed(results), err
	}
	return results, nil
}

// completed drops the slots of files that never started.
func completed(results []fileResult) []fileResult {
	out := results[:0:0]
	for _, r := range results {
		if r.done {
			out = append(out, r)
		}
	}
	return out
}
