package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"quizbank/internal/blob"
	"quizbank/pkg/domain"
)

const defaultArchivePrefix = "exports/"

func newArchiveCommand(deps commandDeps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "archive",
		Short: "Browse question sheets published to the export archive",
	}
	cmd.AddCommand(
		newArchiveListCommand(deps),
		newArchiveGetCommand(deps),
		newArchiveDeleteCommand(deps),
	)
	return cmd
}

func newArchiveListCommand(deps commandDeps) *cobra.Command {
	var (
		prefix string
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List archived sheets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withArchive(cmd.Context(), deps, func(ctx context.Context, store blob.Store) error {
				infos, err := store.List(ctx, prefix)
				if err != nil {
					return err
				}
				if asJSON {
					if infos == nil {
						infos = []blob.Info{}
					}
					return printJSON(deps.out, infos)
				}
				tw := tabwriter.NewWriter(deps.out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "KEY\tSIZE\tFORMAT\tITEMS\tCREATED")
				for _, info := range infos {
					fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\n", info.Key, info.Size,
						info.Metadata["format"], info.Metadata["items"], info.Metadata["created_at"])
				}
				return tw.Flush()
			})
		},
	}
	cmd.Flags().StringVar(&prefix, "prefix", defaultArchivePrefix, "Only list keys starting with this prefix")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print entries as JSON")
	return cmd
}

func newArchiveGetCommand(deps commandDeps) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:     "get <key>",
		Short:   "Copy an archived sheet to a local file, or to stdout without --out",
		Example: "  quizbank archive get exports/4f2c.../sheet.pdf --out sheet.pdf",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withArchive(cmd.Context(), deps, func(ctx context.Context, store blob.Store) error {
				info, rc, err := store.Get(ctx, args[0])
				if err != nil {
					return err
				}
				defer func() { _ = rc.Close() }()
				if out == "" {
					_, err = io.Copy(deps.out, rc)
					return err
				}
				n, err := copyToFile(out, rc)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(deps.out, "wrote %d bytes of %s to %s\n", n, info.Key, out)
				return err
			})
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "Target file")
	return cmd
}

func newArchiveDeleteCommand(deps commandDeps) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <key>",
		Aliases: []string{"rm"},
		Short:   "Remove an archived sheet",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withArchive(cmd.Context(), deps, func(ctx context.Context, store blob.Store) error {
				existed, err := store.Delete(ctx, args[0])
				if err != nil {
					return err
				}
				if !existed {
					return fmt.Errorf("archive %s: %w", args[0], blob.ErrNotFound)
				}
				_, err = fmt.Fprintf(deps.out, "deleted %s\n", args[0])
				return err
			})
		},
	}
}

func copyToFile(path string, r io.Reader) (int64, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return 0, &domain.IOError{Op: "create dir", Path: dir, Err: err}
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return 0, &domain.IOError{Op: "create", Path: path, Err: err}
	}
	n, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return n, &domain.IOError{Op: "write", Path: path, Err: err}
	}
	return n, nil
}
