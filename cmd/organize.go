package cmd

import (
	"fmt"
	"path/filepath"

	"transit/internal/workspace"

	"github.com/spf13/cobra"
)

var organizeCmd = &cobra.Command{
	Use:   "organize [media-file...]",
	Short: "Move each recording's files into its own folder",
	Long: `Move a recording and every artifact named after it into the recording's
output folder. Without arguments all media files in the input directory are
organized. Files already present in a destination folder are never
overwritten.`,
	RunE: runOrganize,
}

func init() {
	rootCmd.AddCommand(organizeCmd)
}

func runOrganize(cmd *cobra.Command, args []string) error {
	layout, err := resolveLayout()
	if err != nil {
		return err
	}

	if len(args) == 0 {
		n, err := layout.OrganizeAll()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Organized %d recordings\n", n)
		return nil
	}

	for _, a := range args {
		abs, err := filepath.Abs(a)
		if err != nil {
			return err
		}
		moved, err := layout.Organize(filepath.Dir(abs), workspace.BaseName(abs))
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: moved %d files\n", filepath.Base(abs), len(moved))
	}
	return nil
}
