package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// RunEntry is a discovered run directory.
type RunEntry struct {
	// RunID is the directory name (canonical identity).
	RunID string

	// Broken indicates verify_record.json is missing, unreadable or invalid.
	// When true, Record is nil.
	Broken bool

	Record *VerifyRecord

	RunDir string
}

// ScanRuns discovers verify runs under dataDir.
// Returns entries sorted by StartedAt asc, then RunID asc; broken entries sort first.
// A missing runs directory yields an empty slice, not an error.
func ScanRuns(dataDir string) ([]RunEntry, error) {
	runsDir := filepath.Join(dataDir, "runs")

	entries, err := os.ReadDir(runsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var runs []RunEntry
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		run := RunEntry{
			RunID:  entry.Name(),
			RunDir: filepath.Join(runsDir, entry.Name()),
		}

		data, err := os.ReadFile(filepath.Join(run.RunDir, "verify_record.json"))
		if err != nil {
			run.Broken = true
			runs = append(runs, run)
			continue
		}

		var rec VerifyRecord
		if err := json.Unmarshal(data, &rec); err != nil || rec.SchemaVersion == "" || rec.RunID != run.RunID {
			run.Broken = true
			runs = append(runs, run)
			continue
		}

		run.Record = &rec
		runs = append(runs, run)
	}

	sort.SliceStable(runs, func(i, j int) bool {
		ti, tj := startedAt(runs[i]), startedAt(runs[j])
		if !ti.Equal(tj) {
			return ti.Before(tj)
		}
		return runs[i].RunID < runs[j].RunID
	})

	return runs, nil
}

// startedAt is the zero time for broken runs and unparseable timestamps.
func startedAt(r RunEntry) time.Time {
	if r.Record == nil {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, r.Record.StartedAt)
	if err != nil {
		return time.Time{}
	}
	return t
}
