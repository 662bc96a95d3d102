// Package capture interprets the text that the atrace command line tool prints:
// the trace dump of a capture, the banner of a bare run, and the category list.
package capture

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/NielsdaWheelz/tracecheck/internal/errors"
)

// TraceMarker precedes the trace data in atrace output.
const TraceMarker = "TRACE:"

// simpleRunHeader is what a bare `atrace` run prints first.
var simpleRunHeader = []string{
	"capturing trace... done",
	TraceMarker,
	"# tracer: nop",
}

var lineBreak = regexp.MustCompile(`\r?\n`)

// SplitLines splits s on LF or CRLF.
func SplitLines(s string) []string {
	return lineBreak.Split(s, -1)
}

// ExtractTraceData returns the text after the first TraceMarker.
func ExtractTraceData(output string) (string, error) {
	idx := strings.Index(output, TraceMarker)
	if idx < 0 {
		return "", errors.New(errors.ENoTraceData, "atrace output has no "+TraceMarker+" marker; was the capture stopped cleanly?")
	}
	return output[idx+len(TraceMarker):], nil
}

// NewTraceReader consumes r up to and including the first TraceMarker and
// returns a reader over everything after it. Only the preamble is buffered;
// the trace itself is streamed from r.
func NewTraceReader(r io.Reader) (io.Reader, error) {
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		if idx := strings.Index(line, TraceMarker); idx >= 0 {
			return io.MultiReader(strings.NewReader(line[idx+len(TraceMarker):]), br), nil
		}
		if err == io.EOF {
			return nil, errors.New(errors.ENoTraceData, "atrace output has no "+TraceMarker+" marker; was the capture stopped cleanly?")
		}
		if err != nil {
			return nil, errors.Wrap(errors.EReadFailed, "failed to read atrace output", err)
		}
	}
}

// CheckSimpleRun checks the banner printed by `atrace` with no arguments.
func CheckSimpleRun(output string) error {
	lines := SplitLines(output)
	for i, want := range simpleRunHeader {
		got := ""
		if i < len(lines) {
			got = lines[i]
		}
		if got != want {
			return errors.NewWithDetails(errors.EUnexpectedOutput,
				fmt.Sprintf("unexpected atrace output at line %d", i+1),
				map[string]string{
					"line":     strconv.Itoa(i + 1),
					"expected": want,
					"actual":   got,
				})
		}
	}
	return nil
}

// Category is one entry of `atrace --list_categories`.
type Category struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ParseCategories parses `atrace --list_categories` output. Each non-blank
// line reads "<name> - <description>", with the name indented.
func ParseCategories(output string) ([]Category, error) {
	var cats []Category
	for i, line := range SplitLines(output) {
		if strings.TrimSpace(line) == "" {
			continue
		}
		dash := strings.Index(line, "-")
		if dash <= 1 {
			return nil, errors.NewWithDetails(errors.EUnexpectedOutput,
				fmt.Sprintf("malformed category line %d", i+1),
				map[string]string{
					"line":     strconv.Itoa(i + 1),
					"expected": "<name> - <description>",
					"actual":   line,
				})
		}
		cats = append(cats, Category{
			Name:        strings.TrimSpace(line[:dash]),
			Description: strings.TrimSpace(line[dash+1:]),
		})
	}
	return cats, nil
}

// MissingCategories returns the required names absent from have, sorted.
func MissingCategories(have []Category, required []string) []string {
	present := make(map[string]bool, len(have))
	for _, c := range have {
		present[c.Name] = true
	}
	var missing []string
	seen := make(map[string]bool, len(required))
	for _, name := range required {
		if present[name] || seen[name] {
			continue
		}
		seen[name] = true
		missing = append(missing, name)
	}
	sort.Strings(missing)
	return missing
}

// CheckCategories parses output and fails if any required category is absent.
func CheckCategories(output string, required []string) ([]Category, error) {
	cats, err := ParseCategories(output)
	if err != nil {
		return nil, err
	}
	if missing := MissingCategories(cats, required); len(missing) > 0 {
		return cats, errors.NewWithDetails(errors.ECategoriesMissing,
			fmt.Sprintf("%d required atrace categories missing", len(missing)),
			map[string]string{"missing": strings.Join(missing, ",")})
	}
	return cats, nil
}
