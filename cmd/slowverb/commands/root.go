package commands

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
)

// NewRootCommand builds the command tree. Every call returns fresh flag
// state.
func NewRootCommand() *cobra.Command {
	var logLevel string

	root := &cobra.Command{
		Use:   "slowverb",
		Short: "Slowed + reverb audio transform",
		Long: `slowverb - stretch audio to a slower tempo and add a decaying echo tail.

The input tempo is estimated (a fixed 120 BPM unless the source tempo is
known), the audio is resampled by targetBPM/originalBPM with linear or
Hermite interpolation, and every sample receives a 2 second exponential
reverb tail.

Examples:
  # Render 5 seconds of a 120 BPM click track at 85 BPM
  slowverb render

  # Write the default configuration, edit it, render with it
  slowverb config > slowverb.yaml
  slowverb render --config slowverb.yaml`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			logger, err := newLogger(cmd.ErrOrStderr(), logLevel)
			if err != nil {
				return err
			}
			slog.SetDefault(logger)
			return nil
		},
	}

	root.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	root.AddCommand(newRenderCommand())
	root.AddCommand(newConfigCommand())
	return root
}

// Execute runs the root command.
func Execute() error {
	return NewRootCommand().Execute()
}

func newLogger(w io.Writer, level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid --log-level %q: %w", level, err)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})), nil
}
