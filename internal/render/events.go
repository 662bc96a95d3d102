package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/NielsdaWheelz/tracecheck/internal/ftrace"
)

// DetailMaxLen is the maximum display length for an event's detail in human output.
const DetailMaxLen = 80

// EventHumanRow holds the fields for a single event row.
type EventHumanRow struct {
	Task      string
	PID       string
	TID       string
	CPU       string
	Timestamp string
	Event     string
	Detail    string
}

// FormatEventRow converts an event to a display row. A missing pid shows as "-".
func FormatEventRow(ev ftrace.Event) EventHumanRow {
	pid := "-"
	if ev.PID != ftrace.NoPID {
		pid = strconv.Itoa(ev.PID)
	}
	return EventHumanRow{
		Task:      ev.ThreadName,
		PID:       pid,
		TID:       strconv.Itoa(ev.TID),
		CPU:       strconv.Itoa(ev.CPU),
		Timestamp: ev.Timestamp,
		Event:     ev.EventType,
		Detail:    TruncateForDisplay(ev.Detail, DetailMaxLen),
	}
}

// WriteEventsHuman writes parsed events as an aligned table.
func WriteEventsHuman(w io.Writer, rows []EventHumanRow) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "no trace events found")
		return err
	}

	widths := eventWidths{
		task: len("TASK"), pid: len("PID"), tid: len("TID"), cpu: len("CPU"),
		timestamp: len("TIMESTAMP"), event: len("EVENT"),
	}
	for _, r := range rows {
		widths.task = max(widths.task, len(r.Task))
		widths.pid = max(widths.pid, len(r.PID))
		widths.tid = max(widths.tid, len(r.TID))
		widths.cpu = max(widths.cpu, len(r.CPU))
		widths.timestamp = max(widths.timestamp, len(r.Timestamp))
		widths.event = max(widths.event, len(r.Event))
	}

	header := EventHumanRow{"TASK", "PID", "TID", "CPU", "TIMESTAMP", "EVENT", "DETAIL"}
	if _, err := fmt.Fprintln(w, formatEventRow(header, widths)); err != nil {
		return err
	}
	for _, r := range rows {
		if _, err := fmt.Fprintln(w, formatEventRow(r, widths)); err != nil {
			return err
		}
	}
	return nil
}

type eventWidths struct {
	task, pid, tid, cpu, timestamp, event int
}

// formatEventRow left-aligns text columns and right-aligns numbers.
func formatEventRow(r EventHumanRow, w eventWidths) string {
	return fmt.Sprintf("%-*s  %*s  %*s  %*s  %*s  %-*s  %s",
		w.task, r.Task,
		w.pid, r.PID,
		w.tid, r.TID,
		w.cpu, r.CPU,
		w.timestamp, r.Timestamp,
		w.event, r.Event,
		r.Detail,
	)
}

// WriteEventJSON writes one event as a JSON line.
func WriteEventJSON(w io.Writer, ev ftrace.Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}
