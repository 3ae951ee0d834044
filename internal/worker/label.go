package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"transit/internal/config"
	"transit/internal/pipeline"
	"transit/internal/prompt"
	"transit/internal/workspace"
)

// ErrNoWords is returned when a transcript has no speakers to label.
var ErrNoWords = errors.New("transcript has no words")

// LabelOptions configures speaker relabeling of one transcript.
type LabelOptions struct {
	TranscriptPath string
	Resolver       prompt.NameResolver
	Config         *config.Config
}

// Label asks the resolver for a name per speaker, then writes the relabeled
// transcript and re-renders the subtitle and screenplay files next to it.
// The raw transcript is never modified. It returns the applied mapping.
func Label(ctx context.Context, opts LabelOptions) (map[string]string, error) {
	if opts.Config == nil {
		opts.Config = config.Default()
	}

	raw, err := LoadTranscript(opts.TranscriptPath)
	if err != nil {
		return nil, err
	}
	if len(raw.Words) == 0 {
		return nil, fmt.Errorf("%s: %w", filepath.Base(opts.TranscriptPath), ErrNoWords)
	}

	mapping, err := prompt.BuildMapping(ctx, opts.Resolver, raw.Words, &opts.Config.Subtitles)
	if err != nil {
		return nil, err
	}

	relabeled := raw.Clone()
	pipeline.Relabel(relabeled.Words, mapping)

	paths := workspace.PathsForTranscript(opts.TranscriptPath)
	if err := SaveTranscript(paths.Relabeled, relabeled); err != nil {
		return nil, fmt.Errorf("save relabeled transcript: %w", err)
	}
	slog.Info("saved relabeled transcript", "path", paths.Relabeled)

	if _, err := writeOutputs(paths, relabeled.Words, opts.Config); err != nil {
		return nil, err
	}
	slog.Info("generated output files", "srt", paths.SRT, "screenplay", paths.Screenplay)

	for id, name := range mapping {
		if id != name {
			slog.Info("relabeled speaker", "from", id, "to", name)
		}
	}
	return mapping, nil
}
