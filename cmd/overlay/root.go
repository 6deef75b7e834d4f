package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"overlaytv/internal/logging"
)

type commandContext struct {
	logLevel  string
	logFormat string
	remote    string
	shareBase string

	logger *slog.Logger
}

func (c *commandContext) log() *slog.Logger {
	if c.logger == nil {
		return logging.NewNop()
	}
	return c.logger
}

func newRootCommand() *cobra.Command {
	ctx := &commandContext{}

	rootCmd := &cobra.Command{
		Use:           "overlay",
		Short:         "Render, share and inspect video overlay projects",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger, err := logging.New(logging.Options{
				Level:  ctx.logLevel,
				Format: ctx.logFormat,
				Writer: cmd.ErrOrStderr(),
			})
			if err != nil {
				return err
			}
			ctx.logger = logger
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&ctx.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	flags.StringVar(&ctx.logFormat, "log-format", "auto", "Log format (auto, text, json)")
	flags.StringVar(&ctx.remote, "remote", "", "Document service URL; tokens become project ids")
	flags.StringVar(&ctx.shareBase, "share-base", "https://overlay.tv/view", "Viewer page share links point to")

	rootCmd.AddCommand(newRenderCommand(ctx))
	rootCmd.AddCommand(newShareCommand(ctx))
	rootCmd.AddCommand(newInspectCommand(ctx))
	rootCmd.AddCommand(newReplayCommand(ctx))

	return rootCmd
}
