package main

import (
	"github.com/spf13/cobra"

	"graphgen/internal/generation"
	"graphgen/internal/view"
)

func newGenerateCmd(opts *rootOptions) *cobra.Command {
	var maxVertices string

	cmd := &cobra.Command{
		Use:   "generate --max-vertices N",
		Short: "Generate a random graph with at most N vertices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := opts.format()
			if err != nil {
				return err
			}
			s, err := resolveSettings(cmd, opts)
			if err != nil {
				return err
			}
			logger := opts.logger()
			ctrlOpts := generation.Options{
				Service: s.service(logger),
				Timeout: s.Timeout,
				Logger:  logger,
			}
			if format == formatText && stderrIsTerminal() {
				ctrlOpts.Publisher = newPendingNotice(cmd.ErrOrStderr(), s.Locale)
			}
			ctrl, err := generation.NewController(ctrlOpts)
			if err != nil {
				return err
			}

			st, genErr := ctrl.SubmitInput(cmd.Context(), maxVertices)

			if err := printDisplay(cmd.OutOrStdout(), view.Render(st, s.Locale), format); err != nil {
				return err
			}
			if genErr != nil {
				return &shownError{err: genErr}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&maxVertices, "max-vertices", "n", "", "maximum number of vertices in the generated graph")
	cmd.Flags().BoolVar(&opts.useMock, "mock", false, "simulate the graph service instead of calling it")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", defaultTimeout, "request timeout (0 disables)")
	_ = cmd.MarkFlagRequired("max-vertices")
	return cmd
}
