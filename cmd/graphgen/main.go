package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"graphgen/internal/domain"
	"graphgen/internal/infra"
)

type rootOptions struct {
	jsonOutput bool
	output     string
	verbose    bool
	locale     string
	backendURL string
	useMock    bool
	timeout    time.Duration
}

// shownError marks an error whose message has already been printed as part of
// the command output; main only turns it into an exit code.
type shownError struct{ err error }

func (e *shownError) Error() string { return e.err.Error() }
func (e *shownError) Unwrap() error { return e.err }

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "graphgen <command>",
		Short:         "Request random graphs from the graph generation service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVar(&opts.jsonOutput, "json", false, "output as JSON (same as --output json)")
	root.PersistentFlags().StringVarP(&opts.output, "output", "o", formatText, "output format: text, json or yaml")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log to stderr")
	root.PersistentFlags().StringVar(&opts.locale, "locale", "en", "message locale (en or id)")
	root.PersistentFlags().StringVar(&opts.backendURL, "backend", "", "graph service base URL")

	root.AddCommand(newGenerateCmd(opts))
	root.AddCommand(newFetchCmd(opts))
	root.AddCommand(newProfileCmd(opts))
	return root
}

func (o *rootOptions) logger() *infra.Logger {
	if !o.verbose {
		return infra.NopLogger()
	}
	l := infra.NewStderrLogger("development", os.Getenv("LOG_LEVEL"))
	return &l
}

// exitCode maps command errors onto process exit statuses.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, domain.ErrInvalidBound):
		return 2
	case errors.Is(err, domain.ErrNotConfigured):
		return 3
	case errors.Is(err, domain.ErrRequestInProgress):
		return 4
	default:
		return 1
	}
}

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		var shown *shownError
		if !errors.As(err, &shown) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(exitCode(err))
	}
}
