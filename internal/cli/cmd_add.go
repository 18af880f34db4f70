package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"quizbank/internal/category"
	"quizbank/pkg/domain"
)

func newAddCommand(deps commandDeps) *cobra.Command {
	var (
		rec         domain.Record
		newCategory bool
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a question and save",
		Example: "  quizbank add --question 'What is 2+2?' --answer 4 --option1 3 --option2 4 --option3 5 --category Math\n" +
			"  quizbank add --question 'Capital of Iran?' --answer Tehran --category Geography --new-category",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 0 {
				return usageErrorf("add does not accept positional arguments")
			}
			if strings.TrimSpace(rec.Question) == "" {
				return usageErrorf("add requires --question")
			}
			return withSession(cmd.Context(), deps, func(ctx context.Context, s *session) error {
				if err := ensureCategory(s.categories, rec.Category, newCategory); err != nil {
					return err
				}
				id := s.bank.AddRecord(rec)
				if err := s.bank.Save(ctx); err != nil {
					return err
				}
				_, err := fmt.Fprintf(deps.out, "added question %d\n", id)
				return err
			})
		},
	}
	cmd.Flags().StringVar(&rec.Question, "question", "", "Question text")
	cmd.Flags().StringVar(&rec.Answer, "answer", "", "Correct answer")
	cmd.Flags().StringVar(&rec.Option1, "option1", "", "Option A")
	cmd.Flags().StringVar(&rec.Option2, "option2", "", "Option B")
	cmd.Flags().StringVar(&rec.Option3, "option3", "", "Option C")
	cmd.Flags().StringVar(&rec.Category, "category", "", "Category label")
	cmd.Flags().StringVar(&rec.Source, "source", "", "Where the question comes from")
	cmd.Flags().BoolVar(&newCategory, "new-category", false, "Register --category if it is not known yet")
	return cmd
}

// ensureCategory accepts an empty or known label, registering unknown ones
// only when allowed.
func ensureCategory(store *category.Store, label string, register bool) error {
	if label == "" || store.Contains(label) {
		return nil
	}
	if !register {
		return &domain.ValidationError{Field: string(domain.FieldCategory), Reason: fmt.Sprintf("unknown category %q (use --new-category)", label)}
	}
	if err := store.Append(label); err != nil && !errors.Is(err, category.ErrDuplicateCategory) {
		return err
	}
	return nil
}

func parseRecordID(arg string) (domain.RecordID, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
	if err != nil || n <= 0 {
		return 0, usageErrorf("invalid question id %q", arg)
	}
	return domain.RecordID(n), nil
}
