package cobra

import (
	"github.com/spf13/cobra"

	"github.com/NielsdaWheelz/tracecheck/internal/commands"
	"github.com/NielsdaWheelz/tracecheck/internal/fs"
)

func newParseCmd() *cobra.Command {
	var opts commands.ParseOpts

	cmd := &cobra.Command{
		Use:   "parse <log>",
		Short: "Print the events parsed from a log",
		Long: `Print every trace event in a log as a table, or as JSON lines with --json.

Arguments:
  log    atrace output file; "-" reads stdin

With --verbose, lines that are not trace records are reported on stderr.`,
		Args:    cobra.ExactArgs(1),
		PreRunE: rejectTerminalStdin,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Log = args[0]
			opts.Verbose = GetGlobalOpts().Verbose
			return commands.Parse(fs.NewRealFS(), cmd.InOrStdin(), opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().BoolVar(&opts.Raw, "raw", false, "input is bare trace data without the atrace preamble")
	cmd.Flags().BoolVar(&opts.JSON, "json", false, "output one JSON object per event")
	cmd.Flags().BoolVar(&opts.StripANSI, "strip-ansi", false, "strip terminal escape sequences from each line")

	return cmd
}
