package verify

import (
	"time"

	"github.com/NielsdaWheelz/tracecheck/internal/config"
	"github.com/NielsdaWheelz/tracecheck/internal/ftrace"
	"github.com/NielsdaWheelz/tracecheck/internal/sections"
	"github.com/NielsdaWheelz/tracecheck/internal/store"
)

// NewRecord builds the evidence record for one verified log.
func NewRecord(runID, logPath string, p config.Profile, v sections.Verdict, st ftrace.Stats, started, finished time.Time) store.VerifyRecord {
	rec := store.VerifyRecord{
		SchemaVersion: store.SchemaVersion,
		RunID:         runID,
		LogPath:       logPath,
		Profile:       p.Name,
		Subject:       p.Subject,
		OK:            v.OK,
		Summary:       DeriveSummary(v),
		Matches:       v.Matches,
		Matched:       v.Matched,
		Required:      append([]string{}, p.RequiredSections...),
		Lines:         st.Lines,
		Events:        st.Events,
		Unparsed:      st.Unparsed,
		StartedAt:     started.UTC().Format(time.RFC3339Nano),
		FinishedAt:    finished.UTC().Format(time.RFC3339Nano),
		DurationMS:    finished.Sub(started).Milliseconds(),
	}
	if !v.OK {
		code := string(v.Code)
		rec.ErrorCode = &code
	}
	if v.Missing != "" {
		missing := v.Missing
		rec.MissingSection = &missing
	}
	if v.PID != ftrace.NoPID {
		pid := v.PID
		rec.PID = &pid
	}
	return rec
}
