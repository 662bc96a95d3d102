package store

// SchemaVersion is the verify_record.json and events.jsonl schema version.
const SchemaVersion = "1.0"

// VerifyRecord is the canonical evidence record for one verified log.
// Written to <data_dir>/runs/<run_id>/verify_record.json.
type VerifyRecord struct {
	// SchemaVersion is always "1.0" for v1.
	SchemaVersion string `json:"schema_version"`

	// RunID is a random UUID identifying this verification.
	RunID string `json:"run_id"`

	// LogPath is the verified log as given on the command line; "-" is stdin.
	LogPath string `json:"log_path"`

	// Profile is the profile name.
	Profile string `json:"profile"`

	Subject string `json:"subject"`

	// OK is the verdict.
	OK bool `json:"ok"`

	// ErrorCode is the E_* code of a failed verdict. null when OK.
	ErrorCode *string `json:"error_code"`

	Summary string `json:"summary"`

	// Matches is the number of subject marker events seen.
	Matches int `json:"matches"`

	// Matched is how many of Required were seen in order.
	Matched  int      `json:"matched"`
	Required []string `json:"required"`

	// MissingSection is the first required section not seen. null when all matched.
	MissingSection *string `json:"missing_section"`

	// PID is the subject's process id. null if no subject event carried one.
	PID *int `json:"pid"`

	// Lines, Events and Unparsed count the trace data.
	Lines    int `json:"lines"`
	Events   int `json:"events"`
	Unparsed int `json:"unparsed"`

	// StartedAt is the RFC3339Nano UTC timestamp when verify started.
	StartedAt string `json:"started_at,omitempty"`

	// FinishedAt is the RFC3339Nano UTC timestamp when verify finished.
	FinishedAt string `json:"finished_at,omitempty"`

	DurationMS int64 `json:"duration_ms"`
}
