// Package sections verifies that a traced process emitted a required list of
// userspace trace sections, in order.
//
// Sections are opened by atrace marker writes whose detail reads
// "B|<pid>|<name>". The required names must appear as a subsequence of the
// subject's begin markers: other sections may interleave, but a name seen
// before its turn does not count and is never revisited.
package sections

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/NielsdaWheelz/tracecheck/internal/errors"
	"github.com/NielsdaWheelz/tracecheck/internal/ftrace"
)

// DefaultMarkerEvent is the ftrace event atrace userspace markers are written as.
const DefaultMarkerEvent = "tracing_mark_write"

// beginPrefix starts the detail of a section begin marker.
const beginPrefix = "B|"

// SubjectMatch selects how an event's thread name is compared with Config.Subject.
type SubjectMatch string

const (
	// MatchSuffix accepts thread names that end with the subject.
	MatchSuffix SubjectMatch = "suffix"

	// MatchTruncated accepts thread names that the subject ends with, i.e.
	// the kernel's width-truncated tail of the full process name.
	MatchTruncated SubjectMatch = "truncated"
)

// ParseSubjectMatch parses a match mode name. Empty means MatchSuffix.
func ParseSubjectMatch(s string) (SubjectMatch, error) {
	switch SubjectMatch(s) {
	case "", MatchSuffix:
		return MatchSuffix, nil
	case MatchTruncated:
		return MatchTruncated, nil
	}
	return "", fmt.Errorf("unknown subject match %q (want %q or %q)", s, MatchSuffix, MatchTruncated)
}

// Config describes one verification.
type Config struct {
	// Subject identifies the traced process by thread name.
	Subject string

	// Match defaults to MatchSuffix.
	Match SubjectMatch

	// MarkerEvent defaults to DefaultMarkerEvent.
	MarkerEvent string

	// Required lists section names in the order they must begin.
	Required []string
}

// State is a snapshot of a Verifier.
type State struct {
	Matches   int
	Next      int
	PID       int
	Finalized bool
}

// Verifier accumulates one log's events and produces a Verdict.
// It is single-use and not safe for concurrent use.
type Verifier struct {
	cfg Config

	matches int
	next    int
	pid     int

	// failure holds the first hard failure seen by Apply.
	failure *errors.TraceError

	finalized bool
	verdict   Verdict
}

// New returns a Verifier for cfg.
func New(cfg Config) *Verifier {
	if cfg.Match == "" {
		cfg.Match = MatchSuffix
	}
	if cfg.MarkerEvent == "" {
		cfg.MarkerEvent = DefaultMarkerEvent
	}
	cfg.Required = append([]string(nil), cfg.Required...)
	return &Verifier{cfg: cfg, pid: ftrace.NoPID}
}

// Config returns the effective configuration.
func (v *Verifier) Config() Config {
	cfg := v.cfg
	cfg.Required = append([]string(nil), v.cfg.Required...)
	return cfg
}

// State returns the current counters.
func (v *Verifier) State() State {
	return State{Matches: v.matches, Next: v.next, PID: v.pid, Finalized: v.finalized}
}

func (v *Verifier) isSubject(threadName string) bool {
	if threadName == "" {
		return false
	}
	switch v.cfg.Match {
	case MatchTruncated:
		return strings.HasSuffix(v.cfg.Subject, threadName)
	default:
		return strings.HasSuffix(threadName, v.cfg.Subject)
	}
}

// Apply feeds one event. Events that are not the subject's marker writes are
// ignored. It returns an error for hard failures (an invalid thread id or a
// second process id for the subject); the failure also decides the verdict.
func (v *Verifier) Apply(ev ftrace.Event) error {
	if v.finalized {
		return errors.New(errors.EInternal, "event applied after verification finished")
	}
	if v.failure != nil {
		return v.failure
	}
	if ev.EventType != v.cfg.MarkerEvent {
		return nil
	}
	if !v.isSubject(ev.ThreadName) {
		return nil
	}

	v.matches++

	if ev.TID <= 0 {
		return v.fail(errors.EInvalidEvent, fmt.Sprintf("subject marker with invalid thread id %d", ev.TID), map[string]string{
			"tid":    strconv.Itoa(ev.TID),
			"thread": ev.ThreadName,
		})
	}

	if ev.PID != ftrace.NoPID {
		if v.pid == ftrace.NoPID {
			v.pid = ev.PID
		} else if ev.PID != v.pid {
			return v.fail(errors.EPIDMismatch, fmt.Sprintf("subject traced under pid %d, then pid %d", v.pid, ev.PID), map[string]string{
				"expected_pid": strconv.Itoa(v.pid),
				"observed_pid": strconv.Itoa(ev.PID),
				"tid":          strconv.Itoa(ev.TID),
				"thread":       ev.ThreadName,
			})
		}
	}

	if v.next < len(v.cfg.Required) && isBegin(ev.Detail, v.cfg.Required[v.next]) {
		v.next++
	}
	return nil
}

// isBegin reports whether detail opens the section called name.
func isBegin(detail, name string) bool {
	return strings.HasPrefix(detail, beginPrefix) && strings.HasSuffix(detail, "|"+name)
}

func (v *Verifier) fail(code errors.Code, msg string, details map[string]string) error {
	details["subject"] = v.cfg.Subject
	v.failure = &errors.TraceError{Code: code, Msg: msg, Details: details}
	return v.failure
}

// OnEvent implements ftrace.Handler.
func (v *Verifier) OnEvent(ev ftrace.Event) error {
	return v.Apply(ev)
}

// OnFinished implements ftrace.Handler.
func (v *Verifier) OnFinished() {
	v.Finalize()
}

// Finalize ends the verification and returns the verdict. Later calls return
// the same verdict.
func (v *Verifier) Finalize() Verdict {
	if v.finalized {
		return v.verdict
	}
	v.finalized = true

	vd := Verdict{
		Subject:  v.cfg.Subject,
		Matches:  v.matches,
		Matched:  v.next,
		Required: len(v.cfg.Required),
		PID:      v.pid,
	}

	switch {
	case v.failure != nil:
		vd.Code = v.failure.Code
		vd.Reason = v.failure.Msg
		vd.details = v.failure.Details
	case v.matches == 0:
		vd.Code = errors.ENoRelevantEvents
		vd.Reason = fmt.Sprintf("no %s events from subject %q; was it traced at all?", v.cfg.MarkerEvent, v.cfg.Subject)
	case v.next < len(v.cfg.Required):
		vd.Code = errors.ESectionsMissing
		vd.Missing = v.cfg.Required[v.next]
		vd.Reason = fmt.Sprintf("required sections not seen in order: matched %d of %d, missing %q",
			v.next, len(v.cfg.Required), vd.Missing)
	default:
		vd.OK = true
	}

	v.verdict = vd
	return vd
}
