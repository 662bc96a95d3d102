package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/NielsdaWheelz/tracecheck/internal/store"
)

// WriteRecordHuman writes a verify record as plain key/value lines in a fixed order.
func WriteRecordHuman(w io.Writer, rec store.VerifyRecord, recordPath string) error {
	status := "ok"
	if !rec.OK {
		status = "failed"
	}

	lines := []struct {
		key   string
		value string
	}{
		{"run", rec.RunID},
		{"log", rec.LogPath},
		{"profile", orNone(rec.Profile)},
		{"subject", rec.Subject},
		{"status", status},
		{"error_code", orNone(deref(rec.ErrorCode))},
		{"summary", rec.Summary},
		{"matched", fmt.Sprintf("%d/%d", rec.Matched, len(rec.Required))},
		{"missing_section", orNone(deref(rec.MissingSection))},
		{"pid", pidDisplay(rec.PID)},
		{"marker_events", strconv.Itoa(rec.Matches)},
		{"lines", fmt.Sprintf("%d (%d events, %d unparsed)", rec.Lines, rec.Events, rec.Unparsed)},
		{"started_at", orNone(rec.StartedAt)},
		{"duration_ms", strconv.FormatInt(rec.DurationMS, 10)},
		{"record", recordPath},
	}

	for _, line := range lines {
		if _, err := fmt.Fprintf(w, "%s: %s\n", line.key, line.value); err != nil {
			return err
		}
	}

	if len(rec.Required) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(w, "\nrequired:"); err != nil {
		return err
	}
	for i, name := range rec.Required {
		mark := "[x]"
		if i >= rec.Matched {
			mark = "[ ]"
		}
		if _, err := fmt.Fprintf(w, "  %s %s\n", mark, name); err != nil {
			return err
		}
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "none"
	}
	return s
}

func pidDisplay(pid *int) string {
	if pid == nil {
		return "-"
	}
	return strconv.Itoa(*pid)
}
