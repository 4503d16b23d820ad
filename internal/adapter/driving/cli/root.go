// Package cli implements the reviewcerberus command tree.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// version is overridden at build time with -ldflags "-X .../cli.version=...".
var version = "dev"

const logLevelEnv = "REVIEWCERBERUS_LOG_LEVEL"

type rootOptions struct {
	logFormat string
	logLevel  string
}

// NewRootCommand builds the command tree. Command output goes to out; logs go to errOut.
func NewRootCommand(out, errOut io.Writer) *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "reviewcerberus",
		Short: "Deliver ReviewCerberus findings to a GitHub pull request",
		Long: "reviewcerberus posts an analysis result to a pull request as one summary comment " +
			"and one inline comment per issue, resolving the threads left by earlier runs.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			logger, err := newLogger(errOut, opts.logFormat, opts.logLevel)
			if err != nil {
				return err
			}
			slog.SetDefault(logger)
			return nil
		},
	}

	root.SetOut(out)
	root.SetErr(errOut)
	root.PersistentFlags().StringVar(&opts.logFormat, "log-format", "text", "Log format (text, json)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error); defaults to $"+logLevelEnv+" or info")

	root.AddCommand(
		newRunCommand(),
		newRenderCommand(),
		newHistoryCommand(),
		newVersionCommand(),
	)

	return root
}

// Execute runs the command tree with args.
func Execute(ctx context.Context, args []string, out, errOut io.Writer) error {
	root := NewRootCommand(out, errOut)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

// newLogger builds the slog logger selected by the log flags.
func newLogger(w io.Writer, format, level string) (*slog.Logger, error) {
	if level == "" {
		level = os.Getenv(logLevelEnv)
	}
	if level == "" {
		level = "info"
	}

	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	handlerOpts := &slog.HandlerOptions{Level: lvl}
	switch strings.ToLower(format) {
	case "", "text":
		return slog.New(slog.NewTextHandler(w, handlerOpts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, handlerOpts)), nil
	default:
		return nil, fmt.Errorf("invalid log format %q (want text or json)", format)
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print reviewcerberus version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "reviewcerberus version %s\n", version)
		},
	}
}
