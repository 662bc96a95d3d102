package store

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/NielsdaWheelz/tracecheck/internal/fs"
)

func TestStorePaths(t *testing.T) {
	s := NewStore(fs.NewRealFS(), "/data")

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"runs", s.RunsDir(), "/data/runs"},
		{"run", s.RunDir("r1"), "/data/runs/r1"},
		{"record", s.VerifyRecordPath("r1"), "/data/runs/r1/verify_record.json"},
		{"events", s.EventsPath("r1"), "/data/runs/r1/events.jsonl"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s path = %q, want %q", tt.name, tt.got, tt.want)
		}
	}
}

func TestWriteReadVerifyRecord(t *testing.T) {
	s := NewStore(fs.NewRealFS(), t.TempDir())

	code := "E_SECTIONS_MISSING"
	missing := "draw"
	pid := 4242
	rec := VerifyRecord{
		SchemaVersion:  SchemaVersion,
		RunID:          "6f1c2a4e-0000-4000-8000-000000000001",
		LogPath:        "trace.txt",
		Profile:        "app-launch",
		Subject:        "com.example.app",
		ErrorCode:      &code,
		Summary:        "matched 1 of 2 required sections; missing \"draw\"",
		Matches:        3,
		Matched:        1,
		Required:       []string{"inflate", "draw"},
		MissingSection: &missing,
		PID:            &pid,
		Lines:          10,
		Events:         8,
		Unparsed:       2,
	}

	path, err := s.WriteVerifyRecord(rec)
	if err != nil {
		t.Fatalf("WriteVerifyRecord() error = %v", err)
	}
	if path != s.VerifyRecordPath(rec.RunID) {
		t.Errorf("path = %q, want %q", path, s.VerifyRecordPath(rec.RunID))
	}

	got, err := s.ReadVerifyRecord(rec.RunID)
	if err != nil {
		t.Fatalf("ReadVerifyRecord() error = %v", err)
	}
	if diff := cmp.Diff(rec, *got); diff != "" {
		t.Errorf("record mismatch (-want +got):\n%s", diff)
	}
}
