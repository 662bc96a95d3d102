// Package ftrace parses the text output of the kernel ftrace buffer into events.
//
// Three line grammars are recognized, tried from richest to oldest:
//
//	<name>-<tid> (<tgid>|----) [<cpu>] <flags> <ts>: <event>: <detail>   (print-tgid)
//	<name>-<tid> [<cpu>] <flags> <ts>: <event>: <detail>                 (irq-info, 3.2+)
//	<name>-<tid> [<cpu>] <ts>: <event>: <detail>                         (legacy, pre-3.2)
//
// The patterns are kept in sync with the catapult ftrace importer.
package ftrace

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// NoPID is the PID of an event whose line grammar carries no process id.
const NoPID = -1

// Grammar identifies which line grammar produced an event.
type Grammar int

const (
	// GrammarTGID is the print-tgid record with a parenthesized process id.
	GrammarTGID Grammar = iota + 1
	// GrammarIRQInfo is the default record since kernel 3.2.
	GrammarIRQInfo
	// GrammarLegacy is the default record before kernel 3.2.
	GrammarLegacy
)

func (g Grammar) String() string {
	switch g {
	case GrammarTGID:
		return "tgid"
	case GrammarIRQInfo:
		return "irq-info"
	case GrammarLegacy:
		return "legacy"
	}
	return "unknown"
}

func (g Grammar) MarshalText() ([]byte, error) {
	return []byte(g.String()), nil
}

func (g *Grammar) UnmarshalText(b []byte) error {
	for _, k := range []Grammar{GrammarTGID, GrammarIRQInfo, GrammarLegacy} {
		if k.String() == string(b) {
			*g = k
			return nil
		}
	}
	return fmt.Errorf("unknown ftrace grammar %q", b)
}

// Event is one parsed trace record.
type Event struct {
	// ThreadName is the comm field. The kernel truncates it to a fixed width,
	// so it is neither complete nor unique.
	ThreadName string `json:"thread_name"`

	// PID is the thread group id, or NoPID when the grammar has none or the
	// tgid slot is a dash run.
	PID int `json:"pid"`

	TID int `json:"tid"`
	CPU int `json:"cpu"`

	// Flags is the 4-character irq-info block; empty for the legacy grammar.
	Flags string `json:"flags,omitempty"`

	// Timestamp is kept as text (seconds.micros) so it round-trips exactly.
	Timestamp string `json:"timestamp"`

	EventType string `json:"event"`
	Detail    string `json:"detail,omitempty"`

	Grammar Grammar `json:"grammar"`
}

// flagsPattern matches the irq-info block: irqs-off, need-resched, hardirq/softirq, preempt-depth.
const flagsPattern = `[dX.][N.][Hhs.][0-9a-f.]`

var (
	// <idle>-0     (-----) [001] d..1  1.23: sched_switch: ...
	tgidPattern = regexp.MustCompile(
		`^\s*(.+)-(\d+)\s+\(\s*(\d+|-+)\)\s\[(\d+)\]` +
			`\s+(` + flagsPattern + `)` +
			`\s+(\d+\.\d+):\s+(\S+):\s(.*)$`)

	// <idle>-0     [001] d..1  1.23: sched_switch: ...
	irqInfoPattern = regexp.MustCompile(
		`^\s*(.+)-(\d+)\s+\[(\d+)\]` +
			`\s+(` + flagsPattern + `)` +
			`\s+(\d+\.\d+):\s+(\S+):\s(.*)$`)

	// <idle>-0     [001]  1.23: sched_switch: ...
	legacyPattern = regexp.MustCompile(
		`^\s*(.+)-(\d+)\s+\[(\d+)\]\s*(\d+\.\d+):\s+(\S+):\s(.*)$`)
)

// grammar pairs a line pattern with the extractor for its submatches.
type grammar struct {
	kind    Grammar
	pattern *regexp.Regexp
	extract func(m []string) (Event, bool)
}

// grammars is ordered from most to least specific. A line is parsed by the
// first entry whose pattern matches the whole line.
var grammars = []grammar{
	{GrammarTGID, tgidPattern, extractTGID},
	{GrammarIRQInfo, irqInfoPattern, extractIRQInfo},
	{GrammarLegacy, legacyPattern, extractLegacy},
}

func extractTGID(m []string) (Event, bool) {
	tid, ok := atoi(m[2])
	if !ok {
		return Event{}, false
	}
	pid := NoPID
	if !strings.HasPrefix(m[3], "-") {
		if pid, ok = atoi(m[3]); !ok {
			return Event{}, false
		}
	}
	cpu, ok := atoi(m[4])
	if !ok {
		return Event{}, false
	}
	return Event{
		ThreadName: m[1],
		PID:        pid,
		TID:        tid,
		CPU:        cpu,
		Flags:      m[5],
		Timestamp:  m[6],
		EventType:  m[7],
		Detail:     m[8],
	}, true
}

func extractIRQInfo(m []string) (Event, bool) {
	tid, ok := atoi(m[2])
	if !ok {
		return Event{}, false
	}
	cpu, ok := atoi(m[3])
	if !ok {
		return Event{}, false
	}
	return Event{
		ThreadName: m[1],
		PID:        NoPID,
		TID:        tid,
		CPU:        cpu,
		Flags:      m[4],
		Timestamp:  m[5],
		EventType:  m[6],
		Detail:     m[7],
	}, true
}

func extractLegacy(m []string) (Event, bool) {
	tid, ok := atoi(m[2])
	if !ok {
		return Event{}, false
	}
	cpu, ok := atoi(m[3])
	if !ok {
		return Event{}, false
	}
	return Event{
		ThreadName: m[1],
		PID:        NoPID,
		TID:        tid,
		CPU:        cpu,
		Timestamp:  m[4],
		EventType:  m[5],
		Detail:     m[6],
	}, true
}

// atoi parses a base-10 digit run. Overflow counts as a parse failure.
func atoi(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

// ParseLine parses one line of ftrace text.
// It returns false for lines that are not trace records (headers, comments,
// blank lines); that is not an error.
func ParseLine(line string) (Event, bool) {
	line = strings.TrimSuffix(line, "\r")
	for _, g := range grammars {
		m := g.pattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		ev, ok := g.extract(m)
		if !ok {
			continue
		}
		ev.Grammar = g.kind
		return ev, true
	}
	return Event{}, false
}
