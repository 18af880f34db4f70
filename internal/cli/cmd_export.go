package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"quizbank/internal/export"
	"quizbank/pkg/domain"
)

func newExportCommand(deps commandDeps) *cobra.Command {
	var (
		formatName string
		out        string
		ids        []int64
		positions  []int
		random     int
		preview    bool
		vf         viewFlags
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Print a question sheet to PDF or DOCX",
		Long: "Export writes the selected questions, or every question when nothing is selected.\n" +
			"Select by id with --ids, by position in the filtered list with --positions,\n" +
			"or draw a random sample with --random.",
		Example: "  quizbank export --format pdf --out sheet\n" +
			"  quizbank export --format docx --out sheet.docx --ids 4,2,9\n" +
			"  quizbank export --out sheet.pdf --filter category=math --positions 0,3\n" +
			"  quizbank export --out quiz.pdf --random 10",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 0 {
				return usageErrorf("export does not accept positional arguments")
			}
			format, err := export.ParseFormat(formatName)
			if err != nil {
				return usageErrorf("%v", err)
			}
			if !preview && strings.TrimSpace(out) == "" {
				return usageErrorf("export requires --out")
			}
			if vf.active() && !cmd.Flags().Changed("positions") {
				return usageErrorf("--filter and --search only apply with --positions")
			}
			return withSession(cmd.Context(), deps, func(ctx context.Context, s *session) error {
				switch {
				case cmd.Flags().Changed("ids"):
					sel := make([]domain.RecordID, len(ids))
					for i, id := range ids {
						sel[i] = domain.RecordID(id)
					}
					if _, err := s.bank.SelectIDs(sel); err != nil {
						return err
					}
				case cmd.Flags().Changed("positions"):
					view, err := vf.view(s.bank)
					if err != nil {
						return err
					}
					if _, err := s.bank.SelectPositions(view, positions); err != nil {
						return err
					}
				case cmd.Flags().Changed("random"):
					if _, err := s.bank.SelectRandom(random); err != nil {
						return err
					}
				}

				if preview {
					return export.WriteText(deps.out, export.Layout(s.bank.ExportSource().Records()))
				}
				res, err := s.bank.Export(ctx, format, withExtension(out, format))
				if err != nil {
					return err
				}
				if _, err := fmt.Fprintf(deps.out, "wrote %d questions to %s\n", res.Items, res.Target); err != nil {
					return err
				}
				if res.Artifact != nil {
					_, err = fmt.Fprintf(deps.out, "archived as %s\n", res.Artifact.Key)
				}
				return err
			})
		},
	}
	cmd.Flags().StringVar(&formatName, "format", string(export.FormatPDF), "Document format: pdf or docx")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Target file; the format extension is added when missing")
	cmd.Flags().Int64SliceVar(&ids, "ids", nil, "Question ids to export, in order")
	cmd.Flags().IntSliceVar(&positions, "positions", nil, "Zero-based positions in the filtered list, in order")
	cmd.Flags().IntVar(&random, "random", 0, "Export this many randomly drawn questions")
	cmd.Flags().BoolVar(&preview, "preview", false, "Print the sheet as text instead of writing a file")
	vf.register(cmd)
	cmd.MarkFlagsMutuallyExclusive("ids", "positions", "random")
	return cmd
}

// withExtension appends the format extension unless target already ends
// with it.
func withExtension(target string, format export.Format) string {
	ext := "." + string(format)
	if strings.EqualFold(filepath.Ext(target), ext) {
		return target
	}
	return target + ext
}
