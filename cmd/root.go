package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"transit/internal/config"
	"transit/internal/workspace"

	"github.com/spf13/cobra"
)

// envFileVar names an extra .env file to load.
const envFileVar = "TRANSIT_ENV"

var (
	verbose      bool
	quiet        bool
	configPath   string
	workbenchDir string

	appConfig *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "transit",
	Short: "Turn recordings into speaker-labelled subtitles and screenplays",
	Long: `Transit sends audio and video recordings to AssemblyAI, stores the
speaker-labelled word transcript, and renders it as SRT subtitles and a
speaker-turn screenplay. Speakers can be renamed afterwards and the
documents re-rendered without another transcription.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupLogging()

		if err := config.LoadEnv(".env", os.Getenv(envFileVar)); err != nil {
			return err
		}
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		appConfig = cfg
		return nil
	},
}

func setupLogging() {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	if quiet {
		level = slog.LevelError
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))
}

// commandContext is cancelled on SIGINT or SIGTERM.
func commandContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

// resolveLayout picks the working layout: the --workbench flag, then the
// configured workbench when it has an input directory, then the current
// directory.
func resolveLayout() (workspace.Layout, error) {
	root := workbenchDir
	if root == "" {
		root = "."
		if dir := appConfig.WorkbenchDir; dir != "" {
			if l := workspace.Detect(dir); l.Workbench {
				root = dir
			}
		}
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return workspace.Layout{}, fmt.Errorf("resolve workbench: %w", err)
	}
	l := workspace.Detect(abs)
	if l.Workbench {
		slog.Info("using workbench mode", "input", l.InputDir(), "output", l.OutputRoot())
	} else {
		slog.Debug("using current directory mode", "dir", abs)
	}
	return l, nil
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress non-error output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default: ./"+config.DefaultConfigFile+" if present)")
	rootCmd.PersistentFlags().StringVarP(&workbenchDir, "workbench", "w", "", "workbench directory containing input/ and output/")
}
