package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newInitCommand(deps commandDeps) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the question and category files if missing and report their contents",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 0 {
				return usageErrorf("init does not accept positional arguments")
			}
			return withSession(cmd.Context(), deps, func(_ context.Context, s *session) error {
				state := "loaded"
				if s.report.Created {
					state = "created"
				}
				_, err := fmt.Fprintf(deps.out, "%s %s: %d questions, %d skipped rows, %d categories\n",
					state, s.bank.Backend().Location(), s.report.Records, len(s.report.Skipped), len(s.categories.List()))
				return err
			})
		},
	}
}
