package cobra

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/NielsdaWheelz/tracecheck/internal/commands"
	"github.com/NielsdaWheelz/tracecheck/internal/fs"
)

func newVerifyCmd() *cobra.Command {
	var opts commands.VerifyOpts

	cmd := &cobra.Command{
		Use:   "verify <log>...",
		Short: "Check that required trace sections appear in order",
		Long: `Verify one or more captured logs against a profile.

Arguments:
  log    atrace output file; "-" reads stdin

Behavior:
  - only the subject's marker events count; everything else is ignored
  - required sections must begin in order, from a single process
  - without --raw, trace data starts after the "TRACE:" line
  - several logs are verified concurrently (see --jobs)
  - with --record, writes runs/<run_id>/verify_record.json and events.jsonl`,
		Args:    cobra.MinimumNArgs(1),
		PreRunE: rejectTerminalStdin,
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			stderr := cmd.ErrOrStderr()

			// Set up cancellation context for user SIGINT
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			opts.Logs = args
			opts.Verbose = GetGlobalOpts().Verbose

			return commands.Verify(ctx, fs.NewRealFS(), cmd.InOrStdin(), opts, stdout, stderr)
		},
	}

	cmd.Flags().StringVar(&opts.ProfilePath, "profile", "", "YAML verification profile (default: built-in app-launch profile)")
	cmd.Flags().StringVar(&opts.Subject, "subject", "", "override the profile's subject process name")
	cmd.Flags().StringArrayVar(&opts.Sections, "section", nil, "required section, repeatable; replaces the profile's list")
	cmd.Flags().StringVar(&opts.Match, "match", "", "subject matching: suffix or truncated")
	cmd.Flags().BoolVar(&opts.Raw, "raw", false, "input is bare trace data without the atrace preamble")
	cmd.Flags().BoolVar(&opts.StripANSI, "strip-ansi", false, "strip terminal escape sequences from each line")
	addRecordFlag(cmd, &opts.RecordDir, "directory to write verify records to")
	cmd.Flags().StringVar(&opts.EventsPath, "events", "", "append events for every log to this JSONL file")
	cmd.Flags().IntVar(&opts.Jobs, "jobs", commands.DefaultJobs, "logs to verify concurrently")

	return cmd
}
