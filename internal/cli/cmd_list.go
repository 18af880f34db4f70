package cli

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"quizbank/internal/core"
	"quizbank/pkg/domain"
)

// viewFlags builds a view from --filter and --search.
type viewFlags struct {
	filters []string
	search  string
}

func (f *viewFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringArrayVar(&f.filters, "filter", nil, "Keep records whose field contains a pattern, as field=pattern (repeatable, all must match)")
	cmd.Flags().StringVar(&f.search, "search", "", "Keep records where any field contains the text")
}

func (f *viewFlags) active() bool {
	return len(f.filters) > 0 || f.search != ""
}

func (f *viewFlags) view(bank *core.Bank) (domain.View, error) {
	criteria, err := parseAssignments("--filter", f.filters)
	if err != nil {
		return nil, err
	}
	view := bank.Filter(criteria)
	if f.search == "" {
		return view, nil
	}
	hits := bank.Search(f.search).IDs()
	return slices.DeleteFunc(view, func(e domain.Entry) bool {
		return !slices.Contains(hits, e.ID)
	}), nil
}

// parseAssignments splits name=value arguments.
func parseAssignments(flag string, args []string) (map[string]string, error) {
	out := make(map[string]string, len(args))
	for _, arg := range args {
		name, value, ok := strings.Cut(arg, "=")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, usageErrorf("%s expects field=value, got %q", flag, arg)
		}
		out[strings.TrimSpace(name)] = value
	}
	return out, nil
}

type listedEntry struct {
	Position int             `json:"position"`
	ID       domain.RecordID `json:"id"`
	domain.Record
}

// writeView prints view with the positions --positions refers to.
func writeView(w io.Writer, view domain.View, asJSON bool) error {
	rows := make([]listedEntry, len(view))
	for i, e := range view {
		rows[i] = listedEntry{Position: i, ID: e.ID, Record: e.Record}
	}
	if asJSON {
		return printJSON(w, rows)
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "POS\tID\tCATEGORY\tQUESTION\tANSWER")
	for _, r := range rows {
		fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%s\n", r.Position, r.ID, r.Category, r.Question, r.Answer)
	}
	return tw.Flush()
}

func newListCommand(deps commandDeps) *cobra.Command {
	var (
		vf     viewFlags
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List questions, optionally filtered",
		Example: "  quizbank list\n" +
			"  quizbank list --filter category=math --filter source=book\n" +
			"  quizbank list --search capital --json",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 0 {
				return usageErrorf("list does not accept positional arguments")
			}
			return withSession(cmd.Context(), deps, func(_ context.Context, s *session) error {
				view, err := vf.view(s.bank)
				if err != nil {
					return err
				}
				return writeView(deps.out, view, asJSON)
			})
		},
	}
	vf.register(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the view as JSON")
	return cmd
}
