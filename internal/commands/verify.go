// Package commands implements tracecheck CLI commands.
package commands

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/NielsdaWheelz/tracecheck/internal/config"
	"github.com/NielsdaWheelz/tracecheck/internal/errors"
	"github.com/NielsdaWheelz/tracecheck/internal/events"
	"github.com/NielsdaWheelz/tracecheck/internal/fs"
	"github.com/NielsdaWheelz/tracecheck/internal/store"
	"github.com/NielsdaWheelz/tracecheck/internal/verify"
)

// DefaultJobs bounds how many logs are verified at once.
const DefaultJobs = 4

// VerifyOpts holds options for the verify command.
type VerifyOpts struct {
	// Logs are the logs to verify (required). "-" reads stdin, at most once.
	Logs []string

	// ProfilePath is a YAML profile. Empty uses the built-in app-launch profile.
	ProfilePath string

	// Subject, Sections and Match override the profile when set.
	Subject  string
	Sections []string
	Match    string

	Raw       bool
	StripANSI bool

	// RecordDir receives runs/<run_id>/verify_record.json and events.jsonl.
	RecordDir string

	// EventsPath, if set, receives the events of every log instead of the run dirs.
	EventsPath string

	// Jobs bounds concurrent verifications. Zero means DefaultJobs.
	Jobs int

	// Verbose reports unparsed lines on stderr.
	Verbose bool
}

// outcome is one log's verification result.
type outcome struct {
	res *verify.Result
	err error
}

// Verify checks each log against the resolved profile and records results.
//
// Output contract:
//   - success: stdout "ok verify <log> matched=<n>/<m> pid=<pid> record=<path>"
//   - failure: stderr "fail verify <log>: <E_CODE> <summary> record=<path>"
//
// The returned error is that of the first failing log, in argument order.
func Verify(ctx context.Context, fsys fs.FS, stdin io.Reader, opts VerifyOpts, stdout, stderr io.Writer) error {
	if len(opts.Logs) == 0 {
		return errors.New(errors.EUsage, "at least one log is required")
	}
	stdinUses := 0
	for _, l := range opts.Logs {
		if l == verify.Stdin {
			stdinUses++
		}
	}
	if stdinUses > 1 {
		return errors.New(errors.EUsage, "stdin (\"-\") can be verified only once per invocation")
	}
	jobs := opts.Jobs
	if jobs == 0 {
		jobs = DefaultJobs
	}
	if jobs < 0 {
		return errors.New(errors.EUsage, fmt.Sprintf("--jobs must be positive, got %d", jobs))
	}

	profile, err := ResolveProfile(fsys, opts.ProfilePath, opts.Subject, opts.Sections, opts.Match)
	if err != nil {
		return err
	}

	var st *store.Store
	if opts.RecordDir != "" {
		st = store.NewStore(fsys, opts.RecordDir)
	}
	var shared *events.Log
	if opts.EventsPath != "" {
		shared = &events.Log{Path: opts.EventsPath}
	}

	var diagMu sync.Mutex
	outcomes := make([]outcome, len(opts.Logs))

	g := new(errgroup.Group)
	g.SetLimit(jobs)
	for i, logPath := range opts.Logs {
		if err := ctx.Err(); err != nil {
			outcomes[i] = outcome{err: errors.Wrap(errors.EInternal, "verify interrupted", err)}
			continue
		}

		cfg := verify.RunConfig{
			RunID:     uuid.NewString(),
			LogPath:   logPath,
			Profile:   profile,
			Raw:       opts.Raw,
			StripANSI: opts.StripANSI,
			Store:     st,
			Events:    shared,
		}
		if logPath == verify.Stdin {
			cfg.Input = stdin
		}
		if opts.Verbose {
			cfg.Diag = &lineWriter{mu: &diagMu, w: stderr, prefix: logPath + ": "}
		}
		if cfg.Events == nil && st != nil {
			cfg.Events = &events.Log{Path: st.EventsPath(cfg.RunID)}
		}

		g.Go(func() error {
			res, err := verify.Run(fsys, cfg)
			outcomes[i] = outcome{res: res, err: err}
			return nil
		})
	}
	_ = g.Wait()

	var first error
	for i, o := range outcomes {
		writeVerifyOutcome(opts.Logs[i], o, stdout, stderr)
		if o.err != nil && first == nil {
			first = o.err
		}
	}
	return first
}

// writeVerifyOutcome prints the one-line result for a log.
func writeVerifyOutcome(logPath string, o outcome, stdout, stderr io.Writer) {
	recordPath := "none"
	if o.res != nil && o.res.RecordPath != "" {
		recordPath = o.res.RecordPath
	}

	if o.err == nil {
		rec := o.res.Record
		pid := "-"
		if rec.PID != nil {
			pid = fmt.Sprint(*rec.PID)
		}
		_, _ = fmt.Fprintf(stdout, "ok verify %s matched=%d/%d pid=%s record=%s\n",
			logPath, rec.Matched, len(rec.Required), pid, recordPath)
		return
	}

	summary := o.err.Error()
	if o.res != nil {
		summary = string(errors.GetCode(o.err)) + " " + o.res.Record.Summary
	}
	_, _ = fmt.Fprintf(stderr, "fail verify %s: %s record=%s\n", logPath, summary, recordPath)
}

// ResolveProfile loads the profile at path, or the built-in one, and applies
// command-line overrides.
func ResolveProfile(fsys fs.FS, path, subject string, sections []string, match string) (config.Profile, error) {
	p := config.DefaultProfile()
	if path != "" {
		var err error
		p, err = config.LoadProfile(fsys, path)
		if err != nil {
			return config.Profile{}, err
		}
	}

	overridden := false
	if subject != "" {
		p.Subject = subject
		overridden = true
	}
	if len(sections) > 0 {
		p.RequiredSections = append([]string(nil), sections...)
		overridden = true
	}
	if match != "" {
		p.SubjectMatch = match
		overridden = true
	}
	if overridden {
		if err := config.ValidateProfile(p); err != nil {
			te, _ := errors.AsTraceError(err)
			return config.Profile{}, errors.New(errors.EUsage, "invalid override: "+te.Msg)
		}
	}
	return p, nil
}

// lineWriter serializes whole-line writes from concurrent verifications onto
// one writer, prefixing each with the log it came from.
type lineWriter struct {
	mu     *sync.Mutex
	w      io.Writer
	prefix string
}

func (l *lineWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, err := io.WriteString(l.w, l.prefix); err != nil {
		return 0, err
	}
	return l.w.Write(p)
}
