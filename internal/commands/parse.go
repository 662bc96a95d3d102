package commands

import (
	"fmt"
	"io"

	"github.com/NielsdaWheelz/tracecheck/internal/capture"
	"github.com/NielsdaWheelz/tracecheck/internal/errors"
	"github.com/NielsdaWheelz/tracecheck/internal/fs"
	"github.com/NielsdaWheelz/tracecheck/internal/ftrace"
	"github.com/NielsdaWheelz/tracecheck/internal/render"
)

// ParseOpts holds options for the parse command.
type ParseOpts struct {
	Log       string
	Raw       bool
	JSON      bool
	StripANSI bool
	Verbose   bool
}

// Parse dumps the events of a log: an aligned table, or one JSON object per
// line with --json. With --verbose, unparsed lines and a count summary go to
// stderr.
func Parse(fsys fs.FS, stdin io.Reader, opts ParseOpts, stdout, stderr io.Writer) error {
	in, closeIn, err := openInput(fsys, opts.Log, stdin)
	if err != nil {
		return err
	}
	defer closeIn()

	trace := in
	if !opts.Raw {
		trace, err = capture.NewTraceReader(in)
		if err != nil {
			return withLog(err, opts.Log)
		}
	}

	streamOpts := ftrace.StreamOptions{}
	if opts.Verbose {
		streamOpts.Diag = stderr
	}
	if opts.StripANSI {
		streamOpts.Clean = capture.StripANSI
	}

	var rows []render.EventHumanRow
	h := ftrace.HandlerFuncs{
		Event: func(ev ftrace.Event) error {
			if opts.JSON {
				return render.WriteEventJSON(stdout, ev)
			}
			rows = append(rows, render.FormatEventRow(ev))
			return nil
		},
	}

	st, err := ftrace.ParseStream(trace, h, streamOpts)
	if err != nil {
		return errors.WrapWithDetails(errors.EReadFailed, "failed to read log", err, map[string]string{"log": opts.Log})
	}

	if !opts.JSON {
		if err := render.WriteEventsHuman(stdout, rows); err != nil {
			return err
		}
	}
	if opts.Verbose {
		_, _ = fmt.Fprintf(stderr, "%d lines, %d events, %d unparsed\n", st.Lines, st.Events, st.Unparsed)
	}
	return nil
}

// withLog adds the log detail to a trace error that lacks one.
func withLog(err error, logPath string) error {
	te, ok := errors.AsTraceError(err)
	if !ok || te.Details["log"] != "" {
		return err
	}
	details := map[string]string{"log": logPath}
	for k, v := range te.Details {
		details[k] = v
	}
	return errors.WrapWithDetails(te.Code, te.Msg, te.Cause, details)
}
