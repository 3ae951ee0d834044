package worker

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
)

// processSequential processes files one at a time.
func processSequential(ctx context.Context, files []string, opts Options) ([]fileResult, error) {
	var results []fileResult

	for i, file := range files {
		select {
		case <-ctx.Done():
			return results, ctx.Err()
		default:
		}

		slog.Info("processing file",
			"file", filepath.Base(file),
			"progress", fmt.Sprintf("%d/%d", i+1, len(files)))

		transcript, ferr := processFile(ctx, file, opts)
		r := fileResult{Path: file, Transcript: transcript, done: true}
		if ferr != nil {
			slog.Error("file failed", "file", filepath.Base(file), "stage", ferr.Stage, "err", ferr.Err)
			r.Err = ferr
		} else {
			slog.Info("file completed", "file", filepath.Base(file))
		}
		results = append(results, r)
	}

	return results, nil
}
