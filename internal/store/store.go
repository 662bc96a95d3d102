// Package store lays out the evidence directory: one directory per verify run
// holding its verify_record.json and events.jsonl.
// Records are written atomically via temp file + rename.
package store

import (
	"encoding/json"
	"path/filepath"

	"github.com/NielsdaWheelz/tracecheck/internal/fs"
)

// Store handles persistence of verify records.
type Store struct {
	FS      fs.FS  // filesystem interface for stubbing
	DataDir string // the --record directory
}

// NewStore creates a new Store with the given dependencies.
func NewStore(filesystem fs.FS, dataDir string) *Store {
	return &Store{
		FS:      filesystem,
		DataDir: dataDir,
	}
}

// RunsDir returns the runs directory.
// Format: <data_dir>/runs/
func (s *Store) RunsDir() string {
	return filepath.Join(s.DataDir, "runs")
}

// RunDir returns the directory for a specific run.
// Format: <data_dir>/runs/<run_id>/
func (s *Store) RunDir(runID string) string {
	return filepath.Join(s.RunsDir(), runID)
}

// VerifyRecordPath returns the path to a run's verify_record.json.
// Format: <data_dir>/runs/<run_id>/verify_record.json
func (s *Store) VerifyRecordPath(runID string) string {
	return filepath.Join(s.RunDir(runID), "verify_record.json")
}

// EventsPath returns the path to a run's events.jsonl.
// Format: <data_dir>/runs/<run_id>/events.jsonl
func (s *Store) EventsPath(runID string) string {
	return filepath.Join(s.RunDir(runID), "events.jsonl")
}

// WriteVerifyRecord writes rec to its run directory and returns the path.
func (s *Store) WriteVerifyRecord(rec VerifyRecord) (string, error) {
	path := s.VerifyRecordPath(rec.RunID)
	if err := fs.WriteJSONAtomicFS(s.FS, path, rec, 0o644); err != nil {
		return path, err
	}
	return path, nil
}

// ReadVerifyRecord loads a run's verify_record.json.
func (s *Store) ReadVerifyRecord(runID string) (*VerifyRecord, error) {
	data, err := s.FS.ReadFile(s.VerifyRecordPath(runID))
	if err != nil {
		return nil, err
	}
	var rec VerifyRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}
