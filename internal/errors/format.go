// Package errors provides error formatting for tracecheck CLI output.
package errors

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

// PrintOptions controls error output formatting.
type PrintOptions struct {
	// Verbose enables detailed error output with more context keys and longer tails.
	Verbose bool

	// Tailer provides the last lines of the trace log for verification failures.
	// If nil, PrintWithOptions reads the log directly (bounded I/O).
	Tailer func(logPath string, maxLines int) ([]string, error)
}

// Context key whitelist (default mode, in order)
var defaultContextKeys = []string{
	"op",
	"log",
	"profile",
	"subject",
	"matched",
	"required",
	"missing_section",
	"matches",
	"expected_pid",
	"observed_pid",
	"line",
	"expected",
	"actual",
	"missing",
	"candidates",
	"record",
}

// Additional context keys for verbose mode
var verboseContextKeys = []string{
	"op",
	"run_id",
	"log",
	"profile",
	"subject",
	"match",
	"marker_event",
	"matched",
	"required",
	"missing_section",
	"matches",
	"expected_pid",
	"observed_pid",
	"pid",
	"tid",
	"thread",
	"line",
	"expected",
	"actual",
	"missing",
	"lines",
	"unparsed",
	"candidates",
	"record",
	"hint",
}

const (
	defaultMaxLines = 20
	defaultMaxChars = 8 * 1024 // 8 KB
	verboseMaxLines = 100
	verboseMaxChars = 64 * 1024 // 64 KB

	maxValueLen      = 256 // Max chars for single-line context values
	maxExtraValueLen = 128 // Max chars for extra section values
	maxOutputLineLen = 512 // Max chars per line in output blocks
)

// Format formats an error for display without I/O.
// Returns the formatted string ready for printing.
func Format(err error, opts PrintOptions) string {
	if err == nil {
		return ""
	}

	var sb strings.Builder

	te, ok := AsTraceError(err)
	if !ok {
		sb.WriteString(err.Error())
		sb.WriteString("\n")
		return sb.String()
	}

	sb.WriteString("error_code: ")
	sb.WriteString(string(te.Code))
	sb.WriteString("\n")

	sb.WriteString(te.Msg)
	sb.WriteString("\n")

	sb.WriteString("\n")

	contextKeys := defaultContextKeys
	if opts.Verbose {
		contextKeys = verboseContextKeys
	}

	printedKeys := make(map[string]bool)

	for _, key := range contextKeys {
		if te.Details == nil {
			continue
		}
		val, ok := te.Details[key]
		if !ok || val == "" {
			continue
		}
		// hint is printed last
		if key == "hint" {
			continue
		}
		printedKeys[key] = true
		sb.WriteString(key)
		sb.WriteString(": ")
		sb.WriteString(sanitizeValue(val, maxValueLen))
		sb.WriteString("\n")
	}

	if opts.Verbose && te.Details != nil {
		var extraKeys []string
		for key := range te.Details {
			if !printedKeys[key] && key != "hint" {
				extraKeys = append(extraKeys, key)
			}
		}
		if len(extraKeys) > 0 {
			sort.Strings(extraKeys)
			sb.WriteString("\nextra:\n")
			for _, key := range extraKeys {
				val := te.Details[key]
				if val == "" {
					continue
				}
				sb.WriteString("  ")
				sb.WriteString(key)
				sb.WriteString(": ")
				sb.WriteString(sanitizeValue(val, maxExtraValueLen))
				sb.WriteString("\n")
			}
		}
	}

	if te.Details != nil {
		if hint, ok := te.Details["hint"]; ok && hint != "" {
			sb.WriteString("\nhint: ")
			sb.WriteString(hint)
			sb.WriteString("\n")
		}
	}

	for _, try := range deriveTryLines(te) {
		sb.WriteString("try: ")
		sb.WriteString(try)
		sb.WriteString("\n")
	}

	return sb.String()
}

// PrintWithOptions writes a formatted error to w with the given options.
// May perform bounded I/O to read the tail of the trace log for verification failures.
func PrintWithOptions(w io.Writer, err error, opts PrintOptions) {
	if err == nil {
		return
	}

	output := Format(err, opts)

	te, ok := AsTraceError(err)
	if ok && isVerificationFailure(te) {
		logPath := te.Details["log"]
		maxLines := defaultMaxLines
		maxChars := defaultMaxChars
		if opts.Verbose {
			maxLines = verboseMaxLines
			maxChars = verboseMaxChars
		}

		var lines []string
		var tailErr error
		if opts.Tailer != nil {
			lines, tailErr = opts.Tailer(logPath, maxLines)
		} else {
			lines, tailErr = readTail(logPath, maxLines, maxChars)
		}

		if tailErr == nil && len(lines) > 0 {
			output = insertOutputBlock(output, lines, maxLines)
		}
	}

	_, _ = io.WriteString(w, output)
}

// sanitizeValue sanitizes a value for single-line context output.
// - Trims trailing whitespace first
// - Normalizes CRLF to LF
// - Replaces newlines with literal \n
// - Truncates to maxLen chars
func sanitizeValue(val string, maxLen int) string {
	val = strings.TrimRight(val, " \t\r\n")
	val = strings.ReplaceAll(val, "\r\n", "\n")
	val = strings.ReplaceAll(val, "\n", "\\n")

	if len(val) > maxLen {
		return val[:maxLen] + "…"
	}

	return val
}

// isVerificationFailure reports whether the error is a verdict over a log file
// on disk, which is when the tail of that log helps diagnosis.
// Stdin ("-") has nothing left to re-read.
func isVerificationFailure(te *TraceError) bool {
	switch te.Code {
	case ENoRelevantEvents, ESectionsMissing, ENoTraceData:
	default:
		return false
	}
	if te.Details == nil {
		return false
	}
	logPath := te.Details["log"]
	return logPath != "" && logPath != "-"
}

// readTail reads the last maxLines lines from a file, up to maxChars total.
// Returns the lines (without trailing newlines) and any error.
func readTail(path string, maxLines, maxChars int) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	stat, err := f.Stat()
	if err != nil {
		return nil, err
	}

	size := stat.Size()
	if size == 0 {
		return nil, nil
	}

	readSize := int64(maxChars)
	if readSize > size {
		readSize = size
	}

	_, err = f.Seek(size-readSize, 0)
	if err != nil {
		return nil, err
	}

	var allLines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if len(line) > maxOutputLineLen {
			line = line[:maxOutputLineLen] + "…"
		}
		line = strings.TrimRight(line, " \t\r")
		allLines = append(allLines, line)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if len(allLines) > maxLines {
		return allLines[len(allLines)-maxLines:], nil
	}

	return allLines, nil
}

// insertOutputBlock inserts the log tail block before the hint line in the formatted output.
func insertOutputBlock(output string, lines []string, maxLines int) string {
	var block strings.Builder
	if len(lines) >= maxLines {
		block.WriteString(fmt.Sprintf("\nlog (last %d lines):\n", len(lines)))
	} else {
		block.WriteString(fmt.Sprintf("\nlog (%d lines):\n", len(lines)))
	}
	for _, line := range lines {
		block.WriteString("  ")
		block.WriteString(line)
		block.WriteString("\n")
	}

	hintIdx := strings.Index(output, "\nhint: ")
	if hintIdx >= 0 {
		return output[:hintIdx] + block.String() + output[hintIdx:]
	}

	tryIdx := strings.Index(output, "\ntry: ")
	if tryIdx >= 0 {
		return output[:tryIdx] + block.String() + output[tryIdx:]
	}

	return output + block.String()
}

// deriveTryLines returns actionable suggestions based on error code.
func deriveTryLines(te *TraceError) []string {
	if te == nil {
		return nil
	}

	logPath := ""
	if te.Details != nil {
		logPath = te.Details["log"]
	}

	var lines []string

	switch te.Code {
	case ENoTraceData:
		if logPath != "" {
			lines = append(lines, fmt.Sprintf("tracecheck verify --raw %s", logPath))
		}
	case ENoRelevantEvents:
		if logPath != "" {
			lines = append(lines, fmt.Sprintf("tracecheck parse --verbose %s", logPath))
		}
	case ESectionsMissing, EPIDMismatch:
		if logPath != "" {
			lines = append(lines, fmt.Sprintf("tracecheck parse --json %s", logPath))
		}
	}

	return lines
}

// FormatHint formats a hint for output.
// If hint already starts with "hint:", returns as-is.
// Otherwise prepends "hint: ".
func FormatHint(hint string) string {
	if hint == "" {
		return ""
	}
	if strings.HasPrefix(hint, "hint:") {
		return hint
	}
	return "hint: " + hint
}

// GetHint extracts the hint from an error's details, if present.
func GetHint(err error) string {
	te, ok := AsTraceError(err)
	if !ok || te.Details == nil {
		return ""
	}
	return te.Details["hint"]
}
