package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"quizbank/pkg/domain"
)

func newEditCommand(deps commandDeps) *cobra.Command {
	var (
		sets        []string
		newCategory bool
	)
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change fields of a question and save",
		Long: "Edit changes one question and saves the bank.\n\n" +
			idStabilityNote,
		Example: "  quizbank edit 3 --set answer=4 --set category=Math",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseRecordID(args[0])
			if err != nil {
				return err
			}
			fields, err := parseAssignments("--set", sets)
			if err != nil {
				return err
			}
			if len(fields) == 0 {
				return usageErrorf("edit requires at least one --set field=value")
			}
			return withSession(cmd.Context(), deps, func(ctx context.Context, s *session) error {
				if err := applyEdit(s, id, fields, newCategory); err != nil {
					return err
				}
				if err := s.bank.Save(ctx); err != nil {
					return err
				}
				_, err := fmt.Fprintf(deps.out, "updated question %d\n", id)
				return err
			})
		},
	}
	cmd.Flags().StringArrayVar(&sets, "set", nil, "Field assignment as field=value (repeatable)")
	cmd.Flags().BoolVar(&newCategory, "new-category", false, "Register a new category set with --set category=...")
	return cmd
}

// applyEdit updates id in memory. Unknown fields are rejected before a
// new category reaches disk.
func applyEdit(s *session, id domain.RecordID, fields map[string]string, newCategory bool) error {
	if _, err := domain.RecordFromMap(fields); err != nil {
		return err
	}
	for name, value := range fields {
		if f, ok := domain.ParseField(name); ok && f == domain.FieldCategory {
			if err := ensureCategory(s.categories, value, newCategory); err != nil {
				return err
			}
		}
	}
	_, err := s.bank.Update(id, fields)
	return err
}
