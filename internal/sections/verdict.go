package sections

import (
	"strconv"

	"github.com/NielsdaWheelz/tracecheck/internal/errors"
	"github.com/NielsdaWheelz/tracecheck/internal/ftrace"
)

// Verdict is the outcome of one verification.
type Verdict struct {
	OK bool

	// Code and Reason are set when OK is false.
	Code   errors.Code
	Reason string

	Subject string

	// Matches counts the subject's marker events.
	Matches int

	// Matched is how many required sections were seen in order, out of Required.
	Matched  int
	Required int

	// Missing is the first required section not seen, if any.
	Missing string

	// PID is the subject's process id, or ftrace.NoPID if no event carried one.
	PID int

	details map[string]string
}

// Err returns nil for a passing verdict, otherwise a *errors.TraceError
// carrying the verdict's counters as details.
func (v Verdict) Err() error {
	if v.OK {
		return nil
	}
	details := map[string]string{
		"subject":  v.Subject,
		"matches":  strconv.Itoa(v.Matches),
		"matched":  strconv.Itoa(v.Matched),
		"required": strconv.Itoa(v.Required),
	}
	if v.Missing != "" {
		details["missing_section"] = v.Missing
	}
	if v.PID != ftrace.NoPID {
		details["pid"] = strconv.Itoa(v.PID)
	}
	for k, val := range v.details {
		details[k] = val
	}
	return errors.NewWithDetails(v.Code, v.Reason, details)
}
