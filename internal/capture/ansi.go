package capture

import "regexp"

// ansiEscapeRegex matches terminal escape sequences that show up when atrace
// output is captured through an interactive shell:
// - CSI sequences: ESC [ ... (parameters) ... (intermediate bytes) ... final byte
// - OSC sequences: ESC ] ... ST (where ST is ESC \ or BEL)
// - DCS, PM, APC sequences
// - Any other ESC + character, and a lone trailing ESC
var ansiEscapeRegex = regexp.MustCompile(
	`\x1b\[[0-9;:<=>?]*[ -/]*[@-~]` +
		`|\x1b\][^\x07\x1b]*(?:\x07|\x1b\\)?` +
		`|\x1b[PX^_][^\x1b]*\x1b\\` +
		`|\x1b[@-_]` +
		`|\x1b.` +
		`|\x1b\[?$`,
)

// StripANSI removes ANSI escape sequences from s.
func StripANSI(s string) string {
	if s == "" {
		return s
	}
	return ansiEscapeRegex.ReplaceAllString(s, "")
}
