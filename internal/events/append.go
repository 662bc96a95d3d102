// Package events provides per-run event logging for tracecheck.
// Events are stored in append-only JSONL files.
package events

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
)

// Event represents a single event in events.jsonl.
// This is the public contract for the events file format.
type Event struct {
	SchemaVersion string         `json:"schema_version"`
	Timestamp     string         `json:"timestamp"` // RFC3339
	RunID         string         `json:"run_id"`
	Event         string         `json:"event"` // "verify_started", "verify_finished", "pid_mismatch"
	Data          map[string]any `json:"data,omitempty"`
}

// Event names.
const (
	VerifyStarted  = "verify_started"
	VerifyFinished = "verify_finished"
	PIDMismatch    = "pid_mismatch"
)

// AppendEvent appends a single event to the events.jsonl file.
// The file is created lazily if it doesn't exist.
// Each event is written as a single JSON line followed by newline.
//
// Best-effort: errors are returned but callers should typically ignore them
// and continue with the main operation.
func AppendEvent(path string, e Event) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	data, err := json.Marshal(e)
	if err != nil {
		return err
	}

	data = append(data, '\n')
	_, err = f.Write(data)
	return err
}

// Log is an events file shared by concurrent verifications.
// A nil Log, or one with an empty Path, discards events.
type Log struct {
	Path string

	mu sync.Mutex
}

// Append appends e under the log's lock.
func (l *Log) Append(e Event) error {
	if l == nil || l.Path == "" {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return AppendEvent(l.Path, e)
}

// VerifyStartedData returns the data map for a verify_started event.
func VerifyStartedData(logPath, profile, subject string, required int) map[string]any {
	return map[string]any{
		"log_path": logPath,
		"profile":  profile,
		"subject":  subject,
		"required": required,
	}
}

// VerifyFinishedData returns the data map for a verify_finished event.
// errorCode should be "" or an E_* string; recordPath is "" when no record was written.
func VerifyFinishedData(ok bool, errorCode string, matched, required int, durationMS int64, recordPath string) map[string]any {
	data := map[string]any{
		"ok":          ok,
		"matched":     matched,
		"required":    required,
		"duration_ms": durationMS,
	}
	if errorCode != "" {
		data["error_code"] = errorCode
	}
	if recordPath != "" {
		data["verify_record_path"] = recordPath
	}
	return data
}

// PIDMismatchData returns the data map for a pid_mismatch event.
func PIDMismatchData(expectedPID, observedPID string, thread string) map[string]any {
	return map[string]any{
		"expected_pid": expectedPID,
		"observed_pid": observedPID,
		"thread":       thread,
	}
}
