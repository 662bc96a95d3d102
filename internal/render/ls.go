package render

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/NielsdaWheelz/tracecheck/internal/store"
)

// Constants for human output formatting.
const (
	// LogMaxLen is the maximum display length for a log path in human output.
	LogMaxLen = 50

	// StatusBroken is displayed for runs whose record cannot be read.
	StatusBroken = "<broken>"
)

// RunHumanRow holds the fields for a single `tracecheck runs` row.
type RunHumanRow struct {
	RunID   string
	Status  string
	Subject string
	Matched string
	Started string
	Log     string
}

// WriteRunsHuman writes the runs output in human-readable format.
// Fields are separated by whitespace columns for easy scanning.
func WriteRunsHuman(w io.Writer, rows []RunHumanRow) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "no runs found")
		return err
	}

	widths := columnWidths(rows)

	header := formatRow(RunHumanRow{
		RunID:   "RUN_ID",
		Status:  "STATUS",
		Subject: "SUBJECT",
		Matched: "MATCHED",
		Started: "STARTED",
		Log:     "LOG",
	}, widths)
	if _, err := fmt.Fprintln(w, header); err != nil {
		return err
	}

	for _, row := range rows {
		if _, err := fmt.Fprintln(w, formatRow(row, widths)); err != nil {
			return err
		}
	}

	return nil
}

// colWidths holds the calculated column widths.
type colWidths struct {
	runID   int
	status  int
	subject int
	matched int
	started int
}

// columnWidths calculates the maximum width for each column.
func columnWidths(rows []RunHumanRow) colWidths {
	widths := colWidths{
		runID:   len("RUN_ID"),
		status:  len("STATUS"),
		subject: len("SUBJECT"),
		matched: len("MATCHED"),
		started: len("STARTED"),
	}

	for _, row := range rows {
		widths.runID = max(widths.runID, len(row.RunID))
		widths.status = max(widths.status, len(row.Status))
		widths.subject = max(widths.subject, len(row.Subject))
		widths.matched = max(widths.matched, len(row.Matched))
		widths.started = max(widths.started, len(row.Started))
	}

	return widths
}

func formatRow(r RunHumanRow, w colWidths) string {
	return fmt.Sprintf("%-*s  %-*s  %-*s  %-*s  %-*s  %s",
		w.runID, r.RunID,
		w.status, r.Status,
		w.subject, r.Subject,
		w.matched, r.Matched,
		w.started, r.Started,
		r.Log,
	)
}

// FormatRunRow converts a scanned run to a display row.
func FormatRunRow(run store.RunEntry, now time.Time) RunHumanRow {
	row := RunHumanRow{RunID: run.RunID}
	if run.Broken || run.Record == nil {
		row.Status = StatusBroken
		return row
	}

	rec := run.Record
	row.Status = "ok"
	if !rec.OK {
		row.Status = "failed"
		if rec.ErrorCode != nil {
			row.Status = *rec.ErrorCode
		}
	}
	row.Subject = rec.Subject
	row.Matched = fmt.Sprintf("%d/%d", rec.Matched, len(rec.Required))
	if t, err := time.Parse(time.RFC3339Nano, rec.StartedAt); err == nil {
		row.Started = formatRelativeTime(t, now)
	}
	row.Log = TruncateForDisplay(rec.LogPath, LogMaxLen)
	return row
}

// FormatRunRows converts a slice of scanned runs to display rows.
func FormatRunRows(runs []store.RunEntry, now time.Time) []RunHumanRow {
	rows := make([]RunHumanRow, len(runs))
	for i, r := range runs {
		rows[i] = FormatRunRow(r, now)
	}
	return rows
}

// formatRelativeTime formats a time as a human-friendly relative string.
func formatRelativeTime(t time.Time, now time.Time) string {
	diff := now.Sub(t)
	if diff < 0 {
		diff = -diff
	}

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		mins := int(diff.Minutes())
		if mins == 1 {
			return "1 min ago"
		}
		return fmt.Sprintf("%d mins ago", mins)
	case diff < 24*time.Hour:
		hours := int(diff.Hours())
		if hours == 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", hours)
	case diff < 7*24*time.Hour:
		days := int(diff.Hours() / 24)
		if days == 1 {
			return "1 day ago"
		}
		return fmt.Sprintf("%d days ago", days)
	default:
		return t.Format("2006-01-02")
	}
}

// TruncateForDisplay truncates s to maxLen runes, ending in an ellipsis when cut.
func TruncateForDisplay(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-1]) + "…"
}

// JoinStrings joins non-empty strings with the given separator.
func JoinStrings(sep string, strs ...string) string {
	var parts []string
	for _, s := range strs {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, sep)
}
