package cmd

import (
	"errors"
	"fmt"

	"transit/internal/corrections"

	"github.com/spf13/cobra"
)

var correctCmd = &cobra.Command{
	Use:   "correct <file...>",
	Short: "Apply correction rules to rendered text files",
	Long: `Apply regular-expression correction rules from a YAML file to subtitle or
screenplay files. Each input is left untouched and the result is written
next to it with a _corrected suffix.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCorrect,
}

var rulesFile string

func init() {
	correctCmd.Flags().StringVarP(&rulesFile, "rules", "r", "", "YAML correction rules (default: corrections_file from config)")
	rootCmd.AddCommand(correctCmd)
}

func runCorrect(cmd *cobra.Command, args []string) error {
	path := rulesFile
	if path == "" {
		path = appConfig.CorrectionsFile
	}
	if path == "" {
		return errors.New("no correction rules given; use --rules or set corrections_file")
	}

	c, err := corrections.Load(path)
	if err != nil {
		return err
	}

	for _, in := range args {
		out, err := c.ApplyFile(in)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s\n", in, out)
	}
	return nil
}
