package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-shellwords"
	"github.com/spf13/cobra"

	"quizbank/internal/core"
	"quizbank/internal/export"
	"quizbank/pkg/domain"
)

const shellPrompt = "quizbank> "

var errShellExit = errors.New("exit shell")

func newShellCommand(deps commandDeps) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Work on the bank interactively with stable ids",
		Long: "Shell loads the bank once and reads commands from stdin, one per line.\n" +
			"Edits, deletions and the selection stay in memory until save, and ids\n" +
			"keep their meaning for the whole session. reset discards unsaved edits\n" +
			"and deletions. Words are split like a POSIX shell, so quote text that\n" +
			"contains spaces or any of ; & | < >.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cmd.Context(), deps, func(ctx context.Context, s *session) error {
				sh := &shell{s: s, out: deps.out}
				return sh.run(ctx, cmd.InOrStdin())
			})
		},
	}
}

// shell holds one interactive session over a loaded bank.
type shell struct {
	s   *session
	out io.Writer
	// added is set by add, which the bank keeps in its baseline, so Dirty
	// alone would not report it as unsaved.
	added bool
}

func (sh *shell) run(ctx context.Context, in io.Reader) error {
	fmt.Fprintf(sh.out, "%d questions loaded, %d skipped rows\n", sh.s.report.Records, len(sh.s.report.Skipped))
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(sh.out, shellPrompt)
		if !scanner.Scan() {
			break
		}
		args, err := shellwords.Parse(scanner.Text())
		if err != nil {
			fmt.Fprintf(sh.out, "error: %v\n", err)
			continue
		}
		if len(args) == 0 {
			continue
		}
		err = sh.exec(ctx, args)
		if errors.Is(err, errShellExit) {
			return nil
		}
		if err != nil {
			fmt.Fprintf(sh.out, "error: %v\n", mapCommandError(err))
		}
	}
	fmt.Fprintln(sh.out)
	if err := scanner.Err(); err != nil {
		return &domain.IOError{Op: "read", Path: "stdin", Err: err}
	}
	if sh.unsaved() {
		sh.s.logger.Warn("shell input ended with unsaved changes")
		fmt.Fprintln(sh.out, "unsaved changes discarded")
	}
	return nil
}

func (sh *shell) unsaved() bool {
	return sh.added || sh.s.bank.Dirty()
}

// exec runs one line against a fresh command tree so flags never leak
// between lines.
func (sh *shell) exec(ctx context.Context, args []string) error {
	root := &cobra.Command{
		Use:           "quizbank>",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.SetOut(sh.out)
	root.SetErr(sh.out)
	root.AddCommand(
		sh.listCommand(),
		sh.addCommand(),
		sh.editCommand(),
		sh.deleteCommand(),
		sh.selectCommand(),
		sh.previewCommand(),
		sh.exportCommand(),
		sh.saveCommand(),
		sh.resetCommand(),
		sh.statusCommand(),
		sh.exitCommand(),
	)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

func (sh *shell) listCommand() *cobra.Command {
	var (
		vf     viewFlags
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List questions, optionally filtered",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			view, err := vf.view(sh.s.bank)
			if err != nil {
				return err
			}
			return writeView(sh.out, view, asJSON)
		},
	}
	vf.register(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the view as JSON")
	return cmd
}

func (sh *shell) addCommand() *cobra.Command {
	var newCategory bool
	cmd := &cobra.Command{
		Use:     "add field=value...",
		Short:   "Add a question",
		Example: `  add question="What is 2+2?" answer=4 option1=3 option2=4 option3=5 category=Math`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			fields, err := parseAssignments("add", args)
			if err != nil {
				return err
			}
			rec, err := domain.RecordFromMap(fields)
			if err != nil {
				return err
			}
			if strings.TrimSpace(rec.Question) == "" {
				return usageErrorf("add requires question=...")
			}
			if err := ensureCategory(sh.s.categories, rec.Category, newCategory); err != nil {
				return err
			}
			id := sh.s.bank.AddRecord(rec)
			sh.added = true
			_, err = fmt.Fprintf(sh.out, "added question %d\n", id)
			return err
		},
	}
	cmd.Flags().BoolVar(&newCategory, "new-category", false, "Register the category if it is not known yet")
	return cmd
}

func (sh *shell) editCommand() *cobra.Command {
	var newCategory bool
	cmd := &cobra.Command{
		Use:     "edit <id> field=value...",
		Short:   "Change fields of a question",
		Example: "  edit 3 answer=4 category=Math",
		Args:    cobra.MinimumNArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			id, err := parseRecordID(args[0])
			if err != nil {
				return err
			}
			fields, err := parseAssignments("edit", args[1:])
			if err != nil {
				return err
			}
			if err := applyEdit(sh.s, id, fields, newCategory); err != nil {
				return err
			}
			_, err = fmt.Fprintf(sh.out, "updated question %d\n", id)
			return err
		},
	}
	cmd.Flags().BoolVar(&newCategory, "new-category", false, "Register a new category set with category=...")
	return cmd
}

func (sh *shell) deleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>...",
		Aliases: []string{"rm"},
		Short:   "Delete questions by id",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			for _, arg := range args {
				id, err := parseRecordID(arg)
				if err != nil {
					return err
				}
				if err := sh.s.bank.Delete(id); err != nil {
					return err
				}
			}
			_, err := fmt.Fprintf(sh.out, "deleted %d questions\n", len(args))
			return err
		},
	}
}

func (sh *shell) selectCommand() *cobra.Command {
	var (
		ids       []int64
		positions []int
		random    int
		clearSel  bool
		vf        viewFlags
	)
	cmd := &cobra.Command{
		Use:   "select",
		Short: "Choose which questions preview and export print",
		Example: "  select --ids 4,2,9\n" +
			"  select --filter category=math --positions 0,3\n" +
			"  select --random 10\n" +
			"  select --clear",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if vf.active() && !cmd.Flags().Changed("positions") {
				return usageErrorf("--filter and --search only apply with --positions")
			}
			bank := sh.s.bank
			var (
				res core.SelectResult
				err error
			)
			switch {
			case clearSel:
				bank.ClearSelection()
				_, err = fmt.Fprintln(sh.out, "selection cleared")
				return err
			case cmd.Flags().Changed("ids"):
				sel := make([]domain.RecordID, len(ids))
				for i, id := range ids {
					sel[i] = domain.RecordID(id)
				}
				res, err = bank.SelectIDs(sel)
			case cmd.Flags().Changed("positions"):
				view, verr := vf.view(bank)
				if verr != nil {
					return verr
				}
				res, err = bank.SelectPositions(view, positions)
			case cmd.Flags().Changed("random"):
				res, err = bank.SelectRandom(random)
			default:
				return usageErrorf("select requires --ids, --positions, --random or --clear")
			}
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(sh.out, "selected %d questions (%d dropped)\n", res.Selected, res.Dropped)
			return err
		},
	}
	cmd.Flags().Int64SliceVar(&ids, "ids", nil, "Question ids, in order")
	cmd.Flags().IntSliceVar(&positions, "positions", nil, "Zero-based positions in the filtered list, in order")
	cmd.Flags().IntVar(&random, "random", 0, "Draw this many questions at random")
	cmd.Flags().BoolVar(&clearSel, "clear", false, "Clear the selection")
	vf.register(cmd)
	cmd.MarkFlagsMutuallyExclusive("ids", "positions", "random", "clear")
	return cmd
}

func (sh *shell) previewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "preview",
		Short: "Print the sheet export would write, as text",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			return export.WriteText(sh.out, export.Layout(sh.s.bank.ExportSource().Records()))
		},
	}
}

func (sh *shell) exportCommand() *cobra.Command {
	var formatName, out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the selection, or every question, to PDF or DOCX",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := export.ParseFormat(formatName)
			if err != nil {
				return usageErrorf("%v", err)
			}
			if strings.TrimSpace(out) == "" {
				return usageErrorf("export requires --out")
			}
			res, err := sh.s.bank.Export(cmd.Context(), format, withExtension(out, format))
			if err != nil {
				return err
			}
			if _, err := fmt.Fprintf(sh.out, "wrote %d questions to %s\n", res.Items, res.Target); err != nil {
				return err
			}
			if res.Artifact != nil {
				_, err = fmt.Fprintf(sh.out, "archived as %s\n", res.Artifact.Key)
			}
			return err
		},
	}
	cmd.Flags().StringVar(&formatName, "format", string(export.FormatPDF), "Document format: pdf or docx")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Target file; the format extension is added when missing")
	return cmd
}

func (sh *shell) saveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "save",
		Short: "Write the bank to storage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := sh.s.bank.Save(cmd.Context()); err != nil {
				return err
			}
			sh.added = false
			_, err := fmt.Fprintf(sh.out, "saved %d questions\n", sh.s.bank.Len())
			return err
		},
	}
}

func (sh *shell) resetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Discard unsaved edits and deletions and clear the selection",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			sh.s.bank.Reset()
			_, err := fmt.Fprintf(sh.out, "restored %d questions\n", sh.s.bank.Len())
			return err
		},
	}
}

func (sh *shell) statusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show counts, the selection and whether there are unsaved changes",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			_, err := fmt.Fprintf(sh.out, "questions: %d\nselection: %v\nunsaved: %t\n",
				sh.s.bank.Len(), sh.s.bank.Selection(), sh.unsaved())
			return err
		},
	}
}

func (sh *shell) exitCommand() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:     "exit",
		Aliases: []string{"quit"},
		Short:   "Leave the shell",
		Args:    cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			if sh.unsaved() && !force {
				return usageErrorf("unsaved changes; run save, or exit --force to discard them")
			}
			return errShellExit
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Exit even with unsaved changes")
	return cmd
}
