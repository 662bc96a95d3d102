package commands

import (
	"fmt"
	"io"

	"github.com/NielsdaWheelz/tracecheck/internal/capture"
	"github.com/NielsdaWheelz/tracecheck/internal/fs"
)

// Header checks the banner of a bare `atrace` run.
func Header(fsys fs.FS, stdin io.Reader, file string, stdout io.Writer) error {
	output, err := readInput(fsys, file, stdin)
	if err != nil {
		return err
	}
	if err := capture.CheckSimpleRun(output); err != nil {
		return withLog(err, file)
	}
	_, _ = fmt.Fprintf(stdout, "ok header %s\n", file)
	return nil
}
