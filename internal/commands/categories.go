package commands

import (
	"fmt"
	"io"

	"github.com/NielsdaWheelz/tracecheck/internal/capture"
	"github.com/NielsdaWheelz/tracecheck/internal/fs"
)

// CategoriesOpts holds options for the categories command.
type CategoriesOpts struct {
	// File holds `atrace --list_categories` output; "-" reads stdin.
	File string

	// ProfilePath supplies required_categories. Empty uses the built-in profile.
	ProfilePath string

	// List prints every parsed category.
	List bool
}

// Categories checks that every required category is listed.
func Categories(fsys fs.FS, stdin io.Reader, opts CategoriesOpts, stdout io.Writer) error {
	profile, err := ResolveProfile(fsys, opts.ProfilePath, "", nil, "")
	if err != nil {
		return err
	}

	output, err := readInput(fsys, opts.File, stdin)
	if err != nil {
		return err
	}

	cats, err := capture.CheckCategories(output, profile.RequiredCategories)
	if err != nil {
		return withLog(err, opts.File)
	}

	if opts.List {
		for _, c := range cats {
			_, _ = fmt.Fprintf(stdout, "%s\t%s\n", c.Name, c.Description)
		}
	}
	_, _ = fmt.Fprintf(stdout, "ok categories %s listed=%d required=%d\n",
		opts.File, len(cats), len(profile.RequiredCategories))
	return nil
}
