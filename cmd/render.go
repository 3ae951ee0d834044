package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"transit/internal/clipboard"
	"transit/internal/corrections"
	"transit/internal/prompt"
	"transit/internal/worker"

	"github.com/spf13/cobra"
)

var renderCmd = &cobra.Command{
	Use:   "render [transcript.json]",
	Short: "Regenerate subtitles and screenplay from a saved transcript",
	Long: `Render the SRT subtitles and the screenplay again from a raw or relabeled
transcript, for example after changing segmentation settings. With
--corrections, corrected copies of both documents are written as well.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRender,
}

var (
	correctionsPath string
	copyScreenplay  bool
)

func init() {
	renderCmd.Flags().StringVar(&correctionsPath, "corrections", "", "YAML correction rules applied to the rendered files")
	renderCmd.Flags().BoolVar(&copyScreenplay, "copy", false, "copy the screenplay to the clipboard")
	renderCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "do not ask before rendering the latest transcript")
	addSegmentFlags(renderCmd)

	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, args []string) error {
	if err := applySegmentFlags(cmd, appConfig); err != nil {
		return err
	}

	term := prompt.NewTerminal(os.Stdin, cmd.OutOrStdout())
	path, err := transcriptArg(args, term, "Render this transcript?")
	if err != nil {
		return err
	}
	if path == "" {
		fmt.Fprintln(cmd.OutOrStdout(), "Cancelled")
		return nil
	}

	rulesPath := correctionsPath
	if rulesPath == "" {
		rulesPath = appConfig.CorrectionsFile
	}
	var corrector *corrections.Corrector
	if rulesPath != "" {
		corrector, err = corrections.Load(rulesPath)
		if err != nil {
			return err
		}
	}

	ctx, stop := commandContext()
	defer stop()

	out, err := worker.Render(ctx, worker.RenderOptions{
		TranscriptPath: path,
		Config:         appConfig,
		Corrector:      corrector,
	})
	if err != nil {
		return err
	}

	if copyScreenplay {
		target := out.Paths.Screenplay
		if len(out.Corrected) == 2 {
			target = out.Corrected[1]
		}
		data, err := os.ReadFile(target)
		if err != nil {
			return err
		}
		err = clipboard.Copy(string(data))
		switch {
		case errors.Is(err, clipboard.ErrUnverified):
			slog.Warn("screenplay sent to clipboard but could not be read back", "file", target)
		case err != nil:
			return fmt.Errorf("copy screenplay: %w", err)
		default:
			slog.Info("screenplay copied to clipboard", "file", target)
		}
	}
	return nil
}
