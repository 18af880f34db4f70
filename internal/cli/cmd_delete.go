package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"quizbank/pkg/domain"
)

// idStabilityNote warns that ids only hold within one invocation.
const idStabilityNote = "Ids are assigned by row order each time the bank is loaded, so deleting\n" +
	"a question renumbers every later one. Run list again before the next\n" +
	"edit or delete, or use 'quizbank shell' where ids stay fixed until save."

func newDeleteCommand(deps commandDeps) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>...",
		Aliases: []string{"rm"},
		Short:   "Delete questions by id and save",
		Long: "Delete removes the named questions and saves the bank.\n\n" +
			idStabilityNote,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := make([]domain.RecordID, 0, len(args))
			for _, arg := range args {
				id, err := parseRecordID(arg)
				if err != nil {
					return err
				}
				ids = append(ids, id)
			}
			return withSession(cmd.Context(), deps, func(ctx context.Context, s *session) error {
				for _, id := range ids {
					if err := s.bank.Delete(id); err != nil {
						return err
					}
				}
				if err := s.bank.Save(ctx); err != nil {
					return err
				}
				_, err := fmt.Fprintf(deps.out, "deleted %d questions\n", len(ids))
				return err
			})
		},
	}
}
