package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"transit/internal/prompt"
	"transit/internal/worker"
	"transit/internal/workspace"

	"github.com/spf13/cobra"
)

var labelCmd = &cobra.Command{
	Use:   "label [transcript.json]",
	Short: "Rename speakers and re-render subtitles and screenplay",
	Long: `Show statistics and sample excerpts for each speaker of a transcript and
ask for a name, then write the relabeled transcript and regenerate the
subtitle and screenplay files. Without an argument the most recently
modified transcript is used after confirmation. Names can also be given
non-interactively with --speaker A=Alice.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLabel,
}

var (
	speakerNames []string
	assumeYes    bool
)

func init() {
	labelCmd.Flags().StringArrayVarP(&speakerNames, "speaker", "s", nil, "speaker assignment ID=Name (repeatable)")
	labelCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "do not ask before relabeling the latest transcript")
	addSegmentFlags(labelCmd)

	rootCmd.AddCommand(labelCmd)
}

func runLabel(cmd *cobra.Command, args []string) error {
	if err := applySegmentFlags(cmd, appConfig); err != nil {
		return err
	}

	term := prompt.NewTerminal(os.Stdin, cmd.OutOrStdout())

	path, err := transcriptArg(args, term, "Do you want to reprocess this file for speaker labeling?")
	if err != nil {
		return err
	}
	if path == "" {
		fmt.Fprintln(cmd.OutOrStdout(), "Cancelled")
		return nil
	}

	var resolver prompt.NameResolver = term
	if len(speakerNames) > 0 {
		static, err := prompt.ParseAssignments(speakerNames)
		if err != nil {
			return err
		}
		resolver = static
	}

	ctx, stop := commandContext()
	defer stop()

	mapping, err := worker.Label(ctx, worker.LabelOptions{
		TranscriptPath: path,
		Resolver:       resolver,
		Config:         appConfig,
	})
	if err != nil {
		return err
	}

	ids := make([]string, 0, len(mapping))
	for id := range mapping {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if mapping[id] != id {
			fmt.Fprintf(cmd.OutOrStdout(), "  %s -> %s\n", id, mapping[id])
		}
	}
	return nil
}

// transcriptArg returns the transcript named in args, or the latest one in
// the workspace once the user confirms. An empty path means the user
// declined.
func transcriptArg(args []string, term *prompt.Terminal, question string) (string, error) {
	if len(args) == 1 {
		if _, err := os.Stat(args[0]); err != nil {
			return "", fmt.Errorf("transcript: %w", err)
		}
		return args[0], nil
	}

	layout, err := resolveLayout()
	if err != nil {
		return "", err
	}
	path, err := layout.FindLatestTranscript()
	if errors.Is(err, workspace.ErrNoTranscript) {
		return "", fmt.Errorf("%w in %s; pass a transcript file explicitly", err, layout.OutputRoot())
	}
	if err != nil {
		return "", err
	}

	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(".", path)
	if err != nil {
		rel = path
	}
	fmt.Fprintf(os.Stderr, "Found: %s\n   Modified: %s\n", rel, info.ModTime().Format("2006-01-02 15:04:05"))

	if assumeYes {
		return path, nil
	}
	ok, err := term.Confirm(question)
	if err != nil || !ok {
		return "", err
	}
	return path, nil
}
