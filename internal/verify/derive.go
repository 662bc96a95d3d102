package verify

import (
	"fmt"

	"github.com/NielsdaWheelz/tracecheck/internal/errors"
	"github.com/NielsdaWheelz/tracecheck/internal/sections"
)

// DeriveSummary computes the human-readable summary for a verdict.
//
// Summary rules:
//   - OK with no required sections => "subject traced (N marker events)"
//   - OK => "all N required sections seen in order"
//   - E_SECTIONS_MISSING => "matched M of N required sections; missing "X""
//   - E_NO_RELEVANT_EVENTS => "no marker events from subject"
//   - anything else => the verdict's reason
func DeriveSummary(v sections.Verdict) string {
	if v.OK {
		if v.Required == 0 {
			return fmt.Sprintf("subject traced (%d marker events)", v.Matches)
		}
		return fmt.Sprintf("all %d required sections seen in order", v.Required)
	}

	switch v.Code {
	case errors.ESectionsMissing:
		return fmt.Sprintf("matched %d of %d required sections; missing %q", v.Matched, v.Required, v.Missing)
	case errors.ENoRelevantEvents:
		return "no marker events from subject"
	}

	if v.Reason != "" {
		return v.Reason
	}
	return "verify failed (" + string(v.Code) + ")"
}
