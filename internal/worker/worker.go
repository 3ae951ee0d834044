package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"transit/internal/config"
	"transit/internal/ffmpeg"
	"transit/internal/pipeline"
	"transit/internal/prompt"
	"transit/internal/workspace"
)

// Transcriber turns a local audio file into a speaker-labelled transcript.
type Transcriber interface {
	Transcribe(ctx context.Context, path string) (*pipeline.Transcript, error)
}

// ExtractFunc converts a media file to an uploadable audio file.
type ExtractFunc func(ctx context.Context, in, out string) error

// Stages reported in FileError.
const (
	StageInput      = "input"
	StageExtract    = "extract"
	StageTranscribe = "transcribe"
	StageSave       = "save"
	StageRender     = "render"
	StageOrganize   = "organize"
	StageLabel      = "label"
)

// FileError records why one input file could not be processed.
type FileError struct {
	Path  string
	Stage string
	Err   error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s: %s: %v", filepath.Base(e.Path), e.Stage, e.Err)
}

func (e *FileError) Unwrap() error { return e.Err }

// Summary is the outcome of a batch run.
type Summary struct {
	Succeeded []string
	Failed    []*FileError
	// Transcripts maps each succeeded input to its saved raw transcript.
	Transcripts map[string]string
}

// Total is the number of files attempted.
func (s *Summary) Total() int {
	return len(s.Succeeded) + len(s.Failed)
}

// Err joins all file errors, or returns nil when every file succeeded.
func (s *Summary) Err() error {
	if len(s.Failed) == 0 {
		return nil
	}
	errs := make([]error, len(s.Failed))
	for i, fe := range s.Failed {
		errs[i] = fe
	}
	return fmt.Errorf("%d of %d files failed: %w", len(s.Failed), s.Total(), errors.Join(errs...))
}

// Options configures a batch run.
type Options struct {
	// Inputs are explicit media files. When empty, the layout's input
	// directory is scanned for unprocessed media.
	Inputs      []string
	Layout      workspace.Layout
	Config      *config.Config
	Transcriber Transcriber
	NoAsync     bool
	// Extract defaults to ffmpeg.ExtractAudio.
	Extract ExtractFunc
	// Resolver, when set, names the speakers of every transcribed file
	// once the batch is done.
	Resolver prompt.NameResolver
}

// Run transcribes and renders every input, then organizes each file's
// artifacts. A failing file is recorded in the summary and never stops the
// others; the returned error is reserved for problems that prevent the
// batch from starting.
func Run(ctx context.Context, opts Options) (*Summary, error) {
	if opts.Transcriber == nil {
		return nil, errors.New("no transcriber configured")
	}
	if opts.Config == nil {
		opts.Config = config.Default()
	}

	summary := &Summary{Transcripts: make(map[string]string)}

	inputs, err := resolveInputs(opts, summary)
	if err != nil {
		return nil, err
	}
	if len(inputs) == 0 {
		slog.Info("no unprocessed media files found")
		return summary, nil
	}
	slog.Info("found unprocessed media files", "count", len(inputs))

	var ready []string
	for _, in := range inputs {
		audio, err := prepare(ctx, in, opts)
		if err != nil {
			summary.Failed = append(summary.Failed, &FileError{Path: in, Stage: StageExtract, Err: err})
			continue
		}
		ready = append(ready, audio)
	}

	var results []fileResult
	if !opts.NoAsync && len(ready) > 1 && opts.Config.MaxConcurrentFiles > 1 {
		results, err = processConcurrent(ctx, ready, opts)
	} else {
		results, err = processSequential(ctx, ready, opts)
	}
	for _, r := range results {
		if r.Err != nil {
			summary.Failed = append(summary.Failed, r.Err)
		} else {
			summary.Succeeded = append(summary.Succeeded, r.Path)
			summary.Transcripts[r.Path] = r.Transcript
		}
	}
	if err != nil {
		return summary, err
	}

	if opts.Resolver != nil {
		if err := labelAll(ctx, summary, opts); err != nil {
			return summary, err
		}
	}

	slog.Info("processing summary",
		"successful", len(summary.Succeeded),
		"failed", len(summary.Failed),
		"total", summary.Total())
	return summary, nil
}

// resolveInputs returns the files to process. Explicit inputs that are
// missing or unsupported are recorded as failures; already processed ones
// are skipped.
func resolveInputs(opts Options, summary *Summary) ([]string, error) {
	if len(opts.Inputs) == 0 {
		return opts.Layout.FindUnprocessed()
	}

	var files []string
	for _, in := range opts.Inputs {
		info, err := os.Stat(in)
		if err != nil {
			summary.Failed = append(summary.Failed, &FileError{Path: in, Stage: StageInput, Err: err})
			continue
		}
		if info.IsDir() || !ffmpeg.IsMediaExtension(filepath.Ext(in)) {
			summary.Failed = append(summary.Failed, &FileError{Path: in, Stage: StageInput, Err: errors.New("unsupported file type")})
			continue
		}
		base := workspace.BaseName(in)
		if opts.Layout.IsProcessed(base) || fileExists(workspace.PathsFor(filepath.Dir(in), base).JSON) {
			slog.Info("skipping already processed file", "file", filepath.Base(in))
			continue
		}
		files = append(files, in)
	}
	return files, nil
}

// prepare returns the path to upload for in, extracting audio first when
// the file is a video or exceeds the upload limit.
func prepare(ctx context.Context, in string, opts Options) (string, error) {
	info, err := os.Stat(in)
	if err != nil {
		return "", err
	}
	if _, err := ffmpeg.LogMediaInfo(ctx, in); errors.Is(err, ffmpeg.ErrNoAudio) {
		return "", err
	}

	limit := opts.Config.MaxUploadBytes()
	if !ffmpeg.NeedsExtraction(in, info.Size(), limit) {
		if limit > 0 && info.Size() > limit {
			slog.Warn("file exceeds upload limit", "file", filepath.Base(in), "size_mb", info.Size()/(1024*1024))
		}
		return in, nil
	}

	out := ffmpeg.AudioPathFor(in)
	if fileExists(out) {
		slog.Info("using previously extracted audio", "file", filepath.Base(out))
		return out, nil
	}

	extract := opts.Extract
	if extract == nil {
		if !ffmpeg.Available() {
			return "", errors.New("ffmpeg not found on PATH")
		}
		extract = ffmpeg.ExtractAudio
	}
	if err := extract(ctx, in, out); err != nil {
		return "", err
	}

	if st, err := os.Stat(out); err == nil && limit > 0 && st.Size() > limit {
		slog.Warn("extracted audio is still above the upload limit",
			"file", filepath.Base(out), "size_mb", st.Size()/(1024*1024))
	}
	return out, nil
}

// labelAll relabels the transcript of every succeeded file in order. A file
// whose labeling fails moves from Succeeded to Failed; transcripts without
// words are skipped.
func labelAll(ctx context.Context, summary *Summary, opts Options) error {
	var kept []string
	for i, path := range summary.Succeeded {
		if err := ctx.Err(); err != nil {
			summary.Succeeded = append(kept, summary.Succeeded[i:]...)
			return err
		}
		_, err := Label(ctx, LabelOptions{
			TranscriptPath: summary.Transcripts[path],
			Resolver:       opts.Resolver,
			Config:         opts.Config,
		})
		switch {
		case err == nil:
			kept = append(kept, path)
		case errors.Is(err, ErrNoWords):
			slog.Warn("nothing to label", "file", filepath.Base(path))
			kept = append(kept, path)
		default:
			summary.Failed = append(summary.Failed, &FileError{Path: path, Stage: StageLabel, Err: err})
			delete(summary.Transcripts, path)
		}
	}
	summary.Succeeded = kept
	return nil
}

// processFile runs the transcription pipeline for one audio file and returns
// where the raw transcript ended up.
func processFile(ctx context.Context, audio string, opts Options) (string, *FileError) {
	fail := func(stage string, err error) (string, *FileError) {
		return "", &FileError{Path: audio, Stage: stage, Err: err}
	}

	slog.Info("starting transcription", "file", filepath.Base(audio))
	transcript, err := opts.Transcriber.Transcribe(ctx, audio)
	if err != nil {
		return fail(StageTranscribe, err)
	}

	dir := filepath.Dir(audio)
	base := workspace.BaseName(audio)
	paths := workspace.PathsFor(dir, base)

	if err := SaveTranscript(paths.JSON, transcript); err != nil {
		return fail(StageSave, err)
	}
	if err := SaveTranscript(paths.Relabeled, transcript); err != nil {
		return fail(StageSave, err)
	}

	if len(transcript.Words) == 0 {
		slog.Warn("no words with speaker data found, writing empty documents", "file", filepath.Base(audio))
	}
	res, err := writeOutputs(paths, transcript.Words, opts.Config)
	if err != nil {
		return fail(StageRender, err)
	}
	slog.Info("generated output files",
		"file", filepath.Base(audio),
		"speakers", res.Speakers,
		"segments", res.Segments,
		"turns", res.Turns)

	moved, err := opts.Layout.Organize(dir, base)
	if err != nil {
		return fail(StageOrganize, err)
	}
	saved := paths.JSON
	if organized := workspace.PathsFor(opts.Layout.OutputDir(base), base).JSON; slices.Contains(moved, organized) {
		saved = organized
	}
	return saved, nil
}

// writeOutputs renders the subtitle and screenplay documents for words.
func writeOutputs(paths workspace.Paths, words []pipeline.Word, cfg *config.Config) (*pipeline.Result, error) {
	res := pipeline.Process(words, cfg)
	if err := os.WriteFile(paths.SRT, []byte(res.SRT), 0644); err != nil {
		return nil, fmt.Errorf("write SRT file: %w", err)
	}
	if err := os.WriteFile(paths.Screenplay, []byte(res.Screenplay), 0644); err != nil {
		return nil, fmt.Errorf("write screenplay file: %w", err)
	}
	return res, nil
}

// SaveTranscript writes t as indented JSON.
func SaveTranscript(path string, t *pipeline.Transcript) error {
	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// LoadTranscript reads and validates a transcript document.
func LoadTranscript(path string) (*pipeline.Transcript, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	t, err := pipeline.DecodeTranscript(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return t, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// LogUploadProgress reports upload progress at debug level.
func LogUploadProgress(read, total int64) {
	pct := 0.0
	if total > 0 {
		pct = min(float64(read)/float64(total)*100, 100)
	}
	slog.Debug("upload progress", "percent", fmt.Sprintf("%.1f%%", pct))
}
