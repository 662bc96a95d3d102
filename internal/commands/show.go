package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/NielsdaWheelz/tracecheck/internal/errors"
	"github.com/NielsdaWheelz/tracecheck/internal/fs"
	"github.com/NielsdaWheelz/tracecheck/internal/ids"
	"github.com/NielsdaWheelz/tracecheck/internal/render"
	"github.com/NielsdaWheelz/tracecheck/internal/store"
)

// ShowOpts holds options for the show command.
type ShowOpts struct {
	RecordDir string
	RunID     string
	JSON      bool
}

// Show prints one verify record. RunID may be any unique prefix of a
// recorded run id.
func Show(fsys fs.FS, opts ShowOpts, stdout io.Writer) error {
	if opts.RecordDir == "" {
		return errors.New(errors.EUsage, "--record is required")
	}
	st := store.NewStore(fsys, opts.RecordDir)

	runID, err := resolveRun(opts.RecordDir, opts.RunID)
	if err != nil {
		return err
	}
	recordPath := st.VerifyRecordPath(runID)

	rec, err := st.ReadVerifyRecord(runID)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.NewWithDetails(errors.ERunNotFound, fmt.Sprintf("no verify record for run %s", runID),
				map[string]string{"record": recordPath})
		}
		return errors.WrapWithDetails(errors.EReadFailed, "failed to read verify record", err,
			map[string]string{"record": recordPath})
	}

	if opts.JSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rec)
	}
	return render.WriteRecordHuman(stdout, *rec, recordPath)
}

// resolveRun maps a user-typed run id to a run directory name under recordDir.
// Broken runs still resolve so that show reports why their record is unusable.
func resolveRun(recordDir, input string) (string, error) {
	runs, err := store.ScanRuns(recordDir)
	if err != nil {
		return "", errors.WrapWithDetails(errors.EReadFailed, "failed to scan runs", err,
			map[string]string{"record": recordDir})
	}
	runIDs := make([]string, 0, len(runs))
	for _, r := range runs {
		runIDs = append(runIDs, r.RunID)
	}

	runID, err := ids.ResolveRunID(input, runIDs)
	switch e := err.(type) {
	case nil:
		return runID, nil
	case *ids.ErrAmbiguous:
		return "", errors.NewWithDetails(errors.ERunAmbiguous, e.Error(),
			map[string]string{"candidates": strings.Join(e.Candidates, " ")})
	default:
		return "", errors.NewWithDetails(errors.ERunNotFound, fmt.Sprintf("no verify record for run %s", input),
			map[string]string{"record": recordDir})
	}
}

// RunsOpts holds options for the runs command.
type RunsOpts struct {
	RecordDir string
}

// Runs lists the verify runs recorded under RecordDir, oldest first.
func Runs(opts RunsOpts, now time.Time, stdout io.Writer) error {
	if opts.RecordDir == "" {
		return errors.New(errors.EUsage, "--record is required")
	}
	runs, err := store.ScanRuns(opts.RecordDir)
	if err != nil {
		return errors.WrapWithDetails(errors.EReadFailed, "failed to scan runs", err,
			map[string]string{"record": opts.RecordDir})
	}
	return render.WriteRunsHuman(stdout, render.FormatRunRows(runs, now))
}
