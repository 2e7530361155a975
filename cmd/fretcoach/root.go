package main

import (
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fretcoach/fretcoach/internal/dotenv"
)

func newRootCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "fretcoach",
		Short: "Voice-guided guitar practice sessions",
		Long: "fretcoach runs turn-based practice sessions against a lesson backend:\n" +
			"it plays voice prompts, records your playing, and uploads each attempt\n" +
			"for analysis until the lesson is complete.",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if err := dotenv.Load(); err != nil {
				slog.Warn("load .env", "error", err)
			}
			level := slog.LevelInfo
			if verbose || strings.EqualFold(os.Getenv("FRETCOACH_LOG"), "debug") {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	cmd.AddCommand(newPracticeCmd())
	cmd.AddCommand(newLessonsCmd())
	cmd.AddCommand(newVersionCmd())
	return cmd
}
