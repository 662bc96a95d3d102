package render

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/NielsdaWheelz/tracecheck/internal/ftrace"
	"github.com/NielsdaWheelz/tracecheck/internal/store"
)

func TestWriteEventsHuman(t *testing.T) {
	rows := []EventHumanRow{
		FormatEventRow(ftrace.Event{ThreadName: "<idle>", PID: ftrace.NoPID, TID: 0, CPU: 1, Timestamp: "1.234", EventType: "sched_switch", Detail: "prev=x"}),
		FormatEventRow(ftrace.Event{ThreadName: "app", PID: 1000, TID: 2000, CPU: 0, Timestamp: "1.235", EventType: "tracing_mark_write", Detail: "B|1000|draw"}),
	}

	var buf bytes.Buffer
	if err := WriteEventsHuman(&buf, rows); err != nil {
		t.Fatal(err)
	}
	want := "" +
		"TASK     PID   TID  CPU  TIMESTAMP  EVENT               DETAIL\n" +
		"<idle>     -     0    1      1.234  sched_switch        prev=x\n" +
		"app     1000  2000    0      1.235  tracing_mark_write  B|1000|draw\n"
	if buf.String() != want {
		t.Errorf("output:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestWriteEventsHuman_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteEventsHuman(&buf, nil); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "no trace events found\n" {
		t.Errorf("output = %q", buf.String())
	}
}

func TestWriteEventJSON(t *testing.T) {
	var buf bytes.Buffer
	ev := ftrace.Event{ThreadName: "app", PID: ftrace.NoPID, TID: 7, EventType: "e", Detail: "x", Grammar: ftrace.GrammarIRQInfo}
	if err := WriteEventJSON(&buf, ev); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.HasSuffix(out, "}\n") || strings.Count(out, "\n") != 1 {
		t.Errorf("not a single JSON line: %q", out)
	}
	if !strings.Contains(out, `"pid":-1`) {
		t.Errorf("missing pid sentinel: %s", out)
	}
}

func TestFormatRunRow(t *testing.T) {
	now := time.Date(2026, 1, 10, 14, 0, 0, 0, time.UTC)
	code := "E_SECTIONS_MISSING"

	tests := []struct {
		name string
		run  store.RunEntry
		want RunHumanRow
	}{
		{
			name: "broken",
			run:  store.RunEntry{RunID: "r1", Broken: true},
			want: RunHumanRow{RunID: "r1", Status: StatusBroken},
		},
		{
			name: "failed",
			run: store.RunEntry{RunID: "r2", Record: &store.VerifyRecord{
				RunID: "r2", ErrorCode: &code, Subject: "app", Matched: 1,
				Required: []string{"a", "b"}, StartedAt: "2026-01-10T12:00:00Z", LogPath: "trace.txt",
			}},
			want: RunHumanRow{RunID: "r2", Status: code, Subject: "app", Matched: "1/2", Started: "2 hours ago", Log: "trace.txt"},
		},
		{
			name: "ok",
			run: store.RunEntry{RunID: "r3", Record: &store.VerifyRecord{
				RunID: "r3", OK: true, Subject: "app", StartedAt: "2026-01-10T13:59:30Z", LogPath: "-",
			}},
			want: RunHumanRow{RunID: "r3", Status: "ok", Subject: "app", Matched: "0/0", Started: "just now", Log: "-"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatRunRow(tt.run, now); got != tt.want {
				t.Errorf("FormatRunRow() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestWriteRecordHuman(t *testing.T) {
	missing := "draw"
	pid := 42
	rec := store.VerifyRecord{
		RunID: "r1", LogPath: "trace.txt", Subject: "app", Summary: "s",
		Matched: 1, Required: []string{"inflate", "draw"}, MissingSection: &missing, PID: &pid,
	}

	var buf bytes.Buffer
	if err := WriteRecordHuman(&buf, rec, "/d/runs/r1/verify_record.json"); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{
		"run: r1\n",
		"profile: none\n",
		"status: failed\n",
		"missing_section: draw\n",
		"pid: 42\n",
		"record: /d/runs/r1/verify_record.json\n",
		"  [x] inflate\n  [ ] draw\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
