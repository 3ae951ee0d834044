package worker

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"transit/internal/config"
	"transit/internal/corrections"
	"transit/internal/pipeline"
	"transit/internal/workspace"
)

// RenderOptions configures re-rendering of one transcript.
type RenderOptions struct {
	TranscriptPath string
	Config         *config.Config
	// Corrector, when set, also writes corrected copies of both documents.
	Corrector *corrections.Corrector
}

// RenderResult lists what Render produced.
type RenderResult struct {
	Paths     workspace.Paths
	Result    *pipeline.Result
	Corrected []string
}

// Render regenerates the subtitle and screenplay files from a raw or
// relabeled transcript. A transcript without words yields empty documents.
func Render(ctx context.Context, opts RenderOptions) (*RenderResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if opts.Config == nil {
		opts.Config = config.Default()
	}

	t, err := LoadTranscript(opts.TranscriptPath)
	if err != nil {
		return nil, err
	}
	if len(t.Words) == 0 {
		slog.Warn("transcript has no words, writing empty documents", "file", filepath.Base(opts.TranscriptPath))
	}

	paths := workspace.PathsForTranscript(opts.TranscriptPath)
	res, err := writeOutputs(paths, t.Words, opts.Config)
	if err != nil {
		return nil, err
	}
	slog.Info("rendered", "srt", paths.SRT, "screenplay", paths.Screenplay, "segments", res.Segments, "turns", res.Turns)

	out := &RenderResult{Paths: paths, Result: res}
	if opts.Corrector == nil {
		return out, nil
	}
	for _, p := range []string{paths.SRT, paths.Screenplay} {
		corrected, err := opts.Corrector.ApplyFile(p)
		if err != nil {
			return nil, fmt.Errorf("apply corrections: %w", err)
		}
		out.Corrected = append(out.Corrected, corrected)
	}
	slog.Info("applied corrections", "rules", opts.Corrector.Len(), "files", len(out.Corrected))
	return out, nil
}
