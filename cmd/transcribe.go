package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"transit/internal/api"
	"transit/internal/config"
	"transit/internal/prompt"
	"transit/internal/worker"

	"github.com/spf13/cobra"
)

var transcribeCmd = &cobra.Command{
	Use:   "transcribe [media-file...]",
	Short: "Transcribe recordings and render subtitles and screenplays",
	Long: `Transcribe the given audio or video files, or every unprocessed file in
the input directory when none are given. Videos are converted to MP3 with
ffmpeg first. For each recording the raw transcript, a working copy, the SRT
subtitles and the screenplay are written and moved into the recording's
output folder. A failing file does not stop the rest of the batch. With
--label, speakers of every transcribed file are named interactively once
the batch is done.`,
	RunE: runTranscribe,
}

var (
	noAsync       bool
	maxConcurrent int
	rateLimit     int
	speechModel   string
	labelAfter    bool
	maxGapMs      int64
	maxWords      int
	lineWidth     int
	maxTurnMs     int64
)

func init() {
	defaults := config.Default()

	transcribeCmd.Flags().BoolVar(&noAsync, "no-async", false, "process files one at a time")
	transcribeCmd.Flags().IntVarP(&maxConcurrent, "max-concurrent", "j", defaults.MaxConcurrentFiles, "max files transcribed at once")
	transcribeCmd.Flags().IntVar(&rateLimit, "rate-limit", defaults.APIRateLimitPerMin, "transcription jobs started per minute")
	transcribeCmd.Flags().StringVar(&speechModel, "speech-model", defaults.AssemblyAI.SpeechModel, "AssemblyAI speech model")
	transcribeCmd.Flags().BoolVar(&labelAfter, "label", false, "name speakers after transcription")

	addSegmentFlags(transcribeCmd)

	rootCmd.AddCommand(transcribeCmd)
}

// addSegmentFlags registers the segmentation tuning flags on cmd.
func addSegmentFlags(cmd *cobra.Command) {
	defaults := config.Default()
	cmd.Flags().Int64Var(&maxGapMs, "max-gap-ms", defaults.Subtitles.MaxGapMs, "silence in ms that starts a new subtitle")
	cmd.Flags().IntVar(&maxWords, "max-words", defaults.Subtitles.MaxWordsPerSegment, "maximum words per subtitle")
	cmd.Flags().IntVar(&lineWidth, "line-width", defaults.Subtitles.LineWidth, "subtitle line wrap width")
	cmd.Flags().Int64Var(&maxTurnMs, "max-turn-ms", defaults.Screenplay.MaxTurnMs, "screenplay turn length before splitting at a sentence end")
}

// applySegmentFlags overlays explicitly set flags on the loaded config.
func applySegmentFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("max-gap-ms") {
		cfg.Subtitles.MaxGapMs = maxGapMs
	}
	if flags.Changed("max-words") {
		cfg.Subtitles.MaxWordsPerSegment = maxWords
	}
	if flags.Changed("line-width") {
		cfg.Subtitles.LineWidth = lineWidth
	}
	if flags.Changed("max-turn-ms") {
		cfg.Screenplay.MaxTurnMs = maxTurnMs
	}
	return cfg.Validate()
}

func runTranscribe(cmd *cobra.Command, args []string) error {
	cfg := appConfig
	flags := cmd.Flags()
	if flags.Changed("max-concurrent") {
		cfg.MaxConcurrentFiles = maxConcurrent
	}
	if flags.Changed("rate-limit") {
		cfg.APIRateLimitPerMin = rateLimit
	}
	if flags.Changed("speech-model") {
		cfg.AssemblyAI.SpeechModel = speechModel
	}
	if err := applySegmentFlags(cmd, cfg); err != nil {
		return err
	}

	layout, err := resolveLayout()
	if err != nil {
		return err
	}

	inputs := make([]string, 0, len(args))
	for _, a := range args {
		abs, err := filepath.Abs(a)
		if err != nil {
			return fmt.Errorf("resolve path: %w", err)
		}
		inputs = append(inputs, abs)
	}

	term := prompt.NewTerminal(os.Stdin, os.Stderr)
	key, err := resolveAPIKey(term)
	if err != nil {
		return err
	}
	cfg.AssemblyAI.APIKey = key

	client, err := api.NewClient(cfg.AssemblyAI)
	if err != nil {
		return err
	}
	client.Progress = worker.LogUploadProgress

	opts := worker.Options{
		Inputs:      inputs,
		Layout:      layout,
		Config:      cfg,
		Transcriber: client,
		NoAsync:     noAsync,
	}
	if labelAfter {
		if !isInteractive() {
			return errors.New("--label needs an interactive terminal; use the label command with --speaker instead")
		}
		opts.Resolver = term
	}

	ctx, stop := commandContext()
	defer stop()

	summary, err := worker.Run(ctx, opts)
	if err != nil {
		return err
	}

	for _, fe := range summary.Failed {
		slog.Error("failed", "file", filepath.Base(fe.Path), "stage", fe.Stage, "err", fe.Err)
	}
	if summary.Total() > 0 && !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "Successful: %d\nFailed: %d\nTotal processed: %d\n",
			len(summary.Succeeded), len(summary.Failed), summary.Total())
	}
	return summary.Err()
}

// resolveAPIKey reads the key from the environment, asking on the terminal
// when it is unset and stdin is interactive.
func resolveAPIKey(term *prompt.Terminal) (string, error) {
	if key := config.APIKeyFromEnv(); key != "" {
		return key, nil
	}
	if !isInteractive() {
		return "", fmt.Errorf("%w: set %s", api.ErrMissingAPIKey, config.APIKeyEnv)
	}
	return term.Secret("AssemblyAI API key")
}

// isInteractive is replaced in tests.
var isInteractive = stdinIsTerminal

func stdinIsTerminal() bool {
	info, err := os.Stdin.Stat()
	return err == nil && info.Mode()&os.ModeCharDevice != 0
}
