// Package cli implements the quizbank command line.
package cli

import (
	"io"

	"github.com/spf13/cobra"
)

// BuildInfo is stamped at link time.
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"build_time"`
}

type globalOptions struct {
	ConfigPath string
	Verbose    bool
}

type commandDeps struct {
	out     io.Writer
	globals *globalOptions
	build   BuildInfo
}

// NewRootCommand assembles the command tree writing to out.
func NewRootCommand(out io.Writer, build BuildInfo) *cobra.Command {
	globals := &globalOptions{}
	deps := commandDeps{out: out, globals: globals, build: build}

	cmd := &cobra.Command{
		Use:           "quizbank",
		Short:         "Maintain a bank of quiz questions and print question sheets",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.PersistentFlags().StringVar(&globals.ConfigPath, "config", "", "Path to a YAML config file")
	cmd.PersistentFlags().BoolVarP(&globals.Verbose, "verbose", "v", false, "Log at debug level")

	cmd.AddCommand(
		newInitCommand(deps),
		newListCommand(deps),
		newAddCommand(deps),
		newEditCommand(deps),
		newDeleteCommand(deps),
		newExportCommand(deps),
		newCategoryCommand(deps),
		newArchiveCommand(deps),
		newShellCommand(deps),
		newVersionCommand(deps),
	)
	return cmd
}
