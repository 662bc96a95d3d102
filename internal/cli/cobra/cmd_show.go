package cobra

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/NielsdaWheelz/tracecheck/internal/commands"
	"github.com/NielsdaWheelz/tracecheck/internal/fs"
)

func newShowCmd() *cobra.Command {
	var opts commands.ShowOpts

	cmd := &cobra.Command{
		Use:   "show <run_id>",
		Short: "Show a recorded verification",
		Long: `Show the verify record of a single run.

Arguments:
  run_id    run identifier printed by "tracecheck runs", or any unique prefix of it`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.RunID = args[0]
			return commands.Show(fs.NewRealFS(), opts, cmd.OutOrStdout())
		},
	}

	addRecordFlag(cmd, &opts.RecordDir, "directory verify records were written to")
	cmd.Flags().BoolVar(&opts.JSON, "json", false, "output the raw verify_record.json")

	return cmd
}

func newRunsCmd() *cobra.Command {
	var opts commands.RunsOpts

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recorded verifications",
		Long:  "List the verify runs recorded in the --record directory, oldest first.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return commands.Runs(opts, time.Now(), cmd.OutOrStdout())
		},
	}

	addRecordFlag(cmd, &opts.RecordDir, "directory verify records were written to")

	return cmd
}
