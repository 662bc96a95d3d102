// Package cobra provides the Cobra-based CLI command tree for tracecheck.
package cobra

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/NielsdaWheelz/tracecheck/internal/errors"
	"github.com/NielsdaWheelz/tracecheck/internal/tty"
	"github.com/NielsdaWheelz/tracecheck/internal/version"
)

// RecordDirEnv supplies the default --record directory.
const RecordDirEnv = "TRACECHECK_RECORD_DIR"

// GlobalOpts holds global options parsed before subcommand dispatch.
type GlobalOpts struct {
	Verbose bool
}

// globalOpts stores the parsed global options for access by subcommands.
var globalOpts GlobalOpts

// GetGlobalOpts returns the parsed global options.
func GetGlobalOpts() GlobalOpts {
	return globalOpts
}

// NewRootCmd creates the root cobra command for tracecheck.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "tracecheck",
		Short: "Verify userspace trace sections in captured ftrace logs",
		Long: `tracecheck - verify userspace trace sections in captured ftrace logs

tracecheck parses the text dump of an atrace/ftrace capture and checks that a
subject process emitted a required list of begin-section markers, in order,
from a single process. Results can be recorded as JSON evidence for later
inspection.`,
		Version:       version.FullVersion(),
		SilenceErrors: true, // We handle error printing in main.go
		SilenceUsage:  true, // We handle usage printing manually
	}

	// Global flags
	rootCmd.PersistentFlags().BoolVar(&globalOpts.Verbose, "verbose", false, "show detailed error context and unparsed lines")

	// Disable Cobra's default completion command (we register our own)
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(
		newVerifyCmd(),
		newParseCmd(),
		newCategoriesCmd(),
		newHeaderCmd(),
		newRunsCmd(),
		newShowCmd(),
		newCompletionCmd(),
		newVersionCmd(),
	)

	return rootCmd
}

// Execute runs the root command with the given output writers.
// This is the main entry point from main.go.
func Execute(stdout, stderr io.Writer) error {
	rootCmd := NewRootCmd()
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	return rootCmd.Execute()
}

// addRecordFlag registers --record, defaulting to $TRACECHECK_RECORD_DIR.
func addRecordFlag(cmd *cobra.Command, dst *string, usage string) {
	cmd.Flags().StringVar(dst, "record", os.Getenv(RecordDirEnv), usage+" (default $"+RecordDirEnv+")")
}

// rejectTerminalStdin fails when an argument is "-" but stdin is an
// interactive terminal, where no capture will ever arrive.
func rejectTerminalStdin(cmd *cobra.Command, args []string) error {
	for _, a := range args {
		if a == "-" && tty.IsTerminalReader(cmd.InOrStdin()) {
			return errors.New(errors.EUsage, "refusing to read from a terminal; pipe a capture in or pass a file")
		}
	}
	return nil
}
