package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newCategoryCommand(deps commandDeps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "category",
		Short: "Category labels",
	}
	cmd.AddCommand(newCategoryListCommand(deps), newCategoryAddCommand(deps))
	return cmd
}

func newCategoryListCommand(deps commandDeps) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List category labels",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cmd.Context(), deps, func(_ context.Context, s *session) error {
				labels := s.categories.List()
				if asJSON {
					return printJSON(deps.out, labels)
				}
				for _, label := range labels {
					if _, err := fmt.Fprintln(deps.out, label); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print labels as JSON")
	return cmd
}

func newCategoryAddCommand(deps commandDeps) *cobra.Command {
	return &cobra.Command{
		Use:   "add <label>",
		Short: "Register a category label",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd.Context(), deps, func(_ context.Context, s *session) error {
				if err := s.categories.Append(args[0]); err != nil {
					return err
				}
				_, err := fmt.Fprintf(deps.out, "added category %q\n", args[0])
				return err
			})
		},
	}
}
