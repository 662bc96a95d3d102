package commands

import (
	"io"

	"github.com/NielsdaWheelz/tracecheck/internal/errors"
	"github.com/NielsdaWheelz/tracecheck/internal/fs"
)

// stdinPath names standard input on the command line.
const stdinPath = "-"

// openInput opens path, or returns stdin for "-". The caller must call close.
func openInput(fsys fs.FS, path string, stdin io.Reader) (r io.Reader, close func(), err error) {
	if path == stdinPath {
		return stdin, func() {}, nil
	}
	f, err := fsys.Open(path)
	if err != nil {
		return nil, nil, errors.WrapWithDetails(errors.EReadFailed, "failed to open "+path, err,
			map[string]string{"log": path})
	}
	return f, func() { _ = f.Close() }, nil
}

// readInput reads all of path, or stdin for "-".
func readInput(fsys fs.FS, path string, stdin io.Reader) (string, error) {
	if path != stdinPath {
		data, err := fsys.ReadFile(path)
		if err != nil {
			return "", errors.WrapWithDetails(errors.EReadFailed, "failed to read "+path, err,
				map[string]string{"log": path})
		}
		return string(data), nil
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", errors.Wrap(errors.EReadFailed, "failed to read stdin", err)
	}
	return string(data), nil
}
