// Package verify runs one verification end to end: it streams a captured log
// through the section verifier and writes the evidence record and events.
package verify

import (
	"io"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/NielsdaWheelz/tracecheck/internal/capture"
	"github.com/NielsdaWheelz/tracecheck/internal/config"
	"github.com/NielsdaWheelz/tracecheck/internal/errors"
	"github.com/NielsdaWheelz/tracecheck/internal/events"
	"github.com/NielsdaWheelz/tracecheck/internal/fs"
	"github.com/NielsdaWheelz/tracecheck/internal/ftrace"
	"github.com/NielsdaWheelz/tracecheck/internal/sections"
	"github.com/NielsdaWheelz/tracecheck/internal/store"
)

// Stdin is the log path that means "read Input".
const Stdin = "-"

// RunConfig holds the configuration for a verify run.
type RunConfig struct {
	// RunID identifies the run. A random UUID is generated if empty.
	RunID string

	// LogPath is the log to verify. Stdin reads Input instead.
	LogPath string
	Input   io.Reader

	Profile config.Profile

	// Raw means the log is bare trace data with no atrace preamble.
	Raw bool

	// StripANSI removes terminal escapes from every line before parsing.
	StripANSI bool

	// Diag receives unparsed-line diagnostics. Nil discards them.
	Diag io.Writer

	// Store receives verify_record.json. Nil skips the record.
	Store *store.Store

	// Events receives run events. Nil skips them.
	Events *events.Log

	// Now is the clock. Defaults to time.Now.
	Now func() time.Time
}

// Result is what a completed run produced.
type Result struct {
	Record     store.VerifyRecord
	RecordPath string // "" when no Store was configured
	Verdict    sections.Verdict
	Stats      ftrace.Stats
}

// Run verifies one log and writes its record.
//
// A failed verification returns a populated Result together with the verdict's
// error (E_NO_TRACE_DATA, E_NO_RELEVANT_EVENTS, E_SECTIONS_MISSING,
// E_PID_MISMATCH, E_INVALID_EVENT). Infrastructure failures (the log cannot be
// read, the record cannot be written) return a nil Result.
//
// A log that cannot be opened leaves no trace in Events. Once verify_started
// is written, verify_finished always follows, carrying the failure code.
func Run(fsys fs.FS, cfg RunConfig) (res *Result, err error) {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	runID := cfg.RunID
	if runID == "" {
		runID = uuid.NewString()
	}
	p := cfg.Profile

	in, closeIn, err := openLog(fsys, cfg)
	if err != nil {
		return nil, err
	}
	defer closeIn()

	started := now()
	appendEvent(cfg, now, runID, events.VerifyStarted,
		events.VerifyStartedData(cfg.LogPath, p.Name, p.Subject, len(p.RequiredSections)))
	defer func() {
		if res == nil && err != nil {
			appendEvent(cfg, now, runID, events.VerifyFinished,
				events.VerifyFinishedData(false, string(errors.GetCode(err)), 0, len(p.RequiredSections),
					now().Sub(started).Milliseconds(), ""))
		}
	}()

	var (
		verdict sections.Verdict
		st      ftrace.Stats
	)

	trace := in
	if !cfg.Raw {
		trace, err = capture.NewTraceReader(in)
	}
	switch {
	case err == nil:
		verdict, st, err = check(trace, cfg)
		if err != nil {
			return nil, err
		}
	case errors.GetCode(err) == errors.ENoTraceData:
		te, _ := errors.AsTraceError(err)
		verdict = sections.Verdict{
			Code:     errors.ENoTraceData,
			Reason:   te.Msg,
			Subject:  p.Subject,
			Required: len(p.RequiredSections),
			PID:      ftrace.NoPID,
		}
	default:
		return nil, withDetails(err, map[string]string{"log": cfg.LogPath})
	}

	finished := now()
	result := &Result{
		Record:  NewRecord(runID, cfg.LogPath, p, verdict, st, started, finished),
		Verdict: verdict,
		Stats:   st,
	}

	if cfg.Store != nil {
		path, werr := cfg.Store.WriteVerifyRecord(result.Record)
		if werr != nil {
			return nil, errors.WrapWithDetails(errors.EPersistFailed, "failed to write verify_record.json", werr,
				map[string]string{"log": cfg.LogPath, "record": path})
		}
		result.RecordPath = path
	}

	verr := verdict.Err()
	if verdict.Code == errors.EPIDMismatch {
		te, _ := errors.AsTraceError(verr)
		appendEvent(cfg, now, runID, events.PIDMismatch,
			events.PIDMismatchData(te.Details["expected_pid"], te.Details["observed_pid"], te.Details["thread"]))
	}
	errorCode := ""
	if !verdict.OK {
		errorCode = string(verdict.Code)
	}
	appendEvent(cfg, now, runID, events.VerifyFinished,
		events.VerifyFinishedData(verdict.OK, errorCode, verdict.Matched, verdict.Required, result.Record.DurationMS, result.RecordPath))

	if verr != nil {
		details := map[string]string{
			"log":      cfg.LogPath,
			"run_id":   runID,
			"lines":    strconv.Itoa(st.Lines),
			"unparsed": strconv.Itoa(st.Unparsed),
		}
		if p.Name != "" {
			details["profile"] = p.Name
		}
		if result.RecordPath != "" {
			details["record"] = result.RecordPath
		}
		return result, withDetails(verr, details)
	}
	return result, nil
}

// check streams trace through a fresh verifier. Only read failures are
// returned as errors; verification failures are in the verdict.
func check(trace io.Reader, cfg RunConfig) (sections.Verdict, ftrace.Stats, error) {
	v := sections.New(cfg.Profile.SectionsConfig())
	opts := ftrace.StreamOptions{Diag: cfg.Diag}
	if cfg.StripANSI {
		opts.Clean = capture.StripANSI
	}

	st, err := ftrace.ParseStream(trace, v, opts)
	if err != nil {
		if _, ok := errors.AsTraceError(err); !ok {
			return sections.Verdict{}, st, errors.WrapWithDetails(errors.EReadFailed, "failed to read log", err,
				map[string]string{"log": cfg.LogPath, "line": strconv.Itoa(st.Lines + 1)})
		}
	}
	return v.Finalize(), st, nil
}

func openLog(fsys fs.FS, cfg RunConfig) (io.Reader, func(), error) {
	if cfg.LogPath == Stdin {
		if cfg.Input == nil {
			return nil, nil, errors.New(errors.EUsage, "no input to read for log \"-\"")
		}
		return cfg.Input, func() {}, nil
	}
	f, err := fsys.Open(cfg.LogPath)
	if err != nil {
		return nil, nil, errors.WrapWithDetails(errors.EReadFailed, "failed to open log", err,
			map[string]string{"log": cfg.LogPath})
	}
	return f, func() { _ = f.Close() }, nil
}

// appendEvent is best-effort: a broken events file never fails a verification.
func appendEvent(cfg RunConfig, now func() time.Time, runID, name string, data map[string]any) {
	_ = cfg.Events.Append(events.Event{
		SchemaVersion: store.SchemaVersion,
		Timestamp:     now().UTC().Format(time.RFC3339),
		RunID:         runID,
		Event:         name,
		Data:          data,
	})
}

// withDetails returns err with extra details merged in. Existing keys win.
func withDetails(err error, extra map[string]string) error {
	te, ok := errors.AsTraceError(err)
	if !ok {
		return err
	}
	details := make(map[string]string, len(te.Details)+len(extra))
	for k, v := range extra {
		details[k] = v
	}
	for k, v := range te.Details {
		details[k] = v
	}
	return errors.WrapWithDetails(te.Code, te.Msg, te.Cause, details)
}
