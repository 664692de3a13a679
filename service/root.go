package service

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"postboard/app/config"

	"github.com/spf13/cobra"
)

// Version is reported by the version command.
const Version = "1.0.0"

var osExit = os.Exit

// NewRootCommand builds the postboard command tree.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "postboard",
		Short: "Postboard - blog posts API",
		Long: `Postboard serves a JSON API for blog posts with owner-only editing,
visibility filtering and image uploads.

Examples:
  postboard serve --port 5001
  postboard db backup
  postboard users put --id 42 --name Ada --email ada@example.com`,
		SilenceUsage: true,
	}

	root.AddCommand(newServeCommand())
	root.AddCommand(newVersionCommand())
	root.AddCommand(newDBCommand())
	root.AddCommand(newUsersCommand())
	return root
}

// Execute runs the root command
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		osExit(1)
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "postboard version %s\n", Version)
		},
	}
}

// newLogger builds the process logger from the log settings.
func newLogger(cfg config.Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.Level()}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
