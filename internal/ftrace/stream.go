package ftrace

import (
	"bufio"
	"fmt"
	"io"
	"iter"
)

// maxLineSize bounds a single trace line. Longer lines are skipped as unparsed.
const maxLineSize = 1024 * 1024

// Handler receives the events of one stream in order.
type Handler interface {
	// OnEvent is called for every parsed line. A non-nil error stops the stream.
	OnEvent(ev Event) error

	// OnFinished is called exactly once after the last event, on every exit path.
	OnFinished()
}

// HandlerFuncs adapts plain functions to Handler. Nil fields are no-ops.
type HandlerFuncs struct {
	Event    func(Event) error
	Finished func()
}

func (h HandlerFuncs) OnEvent(ev Event) error {
	if h.Event == nil {
		return nil
	}
	return h.Event(ev)
}

func (h HandlerFuncs) OnFinished() {
	if h.Finished != nil {
		h.Finished()
	}
}

// StreamOptions configures ParseStream and ParseLines.
type StreamOptions struct {
	// Diag receives one "line doesn't match" diagnostic per unparsed line.
	// Nil discards them.
	Diag io.Writer

	// Clean, if set, rewrites each raw line before parsing (e.g. to strip
	// terminal escapes from an interactive capture).
	Clean func(line string) string
}

// Stats counts what a stream contained.
type Stats struct {
	Lines    int `json:"lines"`
	Events   int `json:"events"`
	Unparsed int `json:"unparsed"`
}

// feed parses one line and hands the event, if any, to h. A line cut short
// at maxLineSize is counted as unparsed without being matched.
func (s *Stats) feed(line string, tooLong bool, h Handler, opts StreamOptions) error {
	s.Lines++
	if tooLong {
		s.Unparsed++
		if opts.Diag != nil {
			_, _ = fmt.Fprintf(opts.Diag, "line %d longer than %d bytes, skipped\n", s.Lines, maxLineSize)
		}
		return nil
	}
	if opts.Clean != nil {
		line = opts.Clean(line)
	}
	ev, ok := ParseLine(line)
	if !ok {
		s.Unparsed++
		if opts.Diag != nil {
			_, _ = fmt.Fprintf(opts.Diag, "line doesn't match: %s\n", line)
		}
		return nil
	}
	s.Events++
	return h.OnEvent(ev)
}

// ParseStream reads r line by line, exactly once, and passes every parsed
// event to h in file order. Lines that are not trace records are counted and
// reported to opts.Diag. If h.OnEvent fails, reading stops and that error is
// returned. h.OnFinished runs exactly once however the call returns.
func ParseStream(r io.Reader, h Handler, opts StreamOptions) (st Stats, err error) {
	defer h.OnFinished()

	lr := newLineReader(r)
	for lr.Scan() {
		if err := st.feed(lr.Text(), lr.TooLong(), h, opts); err != nil {
			return st, err
		}
	}
	if err := lr.Err(); err != nil {
		return st, fmt.Errorf("read trace line %d: %w", st.Lines+1, err)
	}
	return st, nil
}

// ParseLines is ParseStream over lines already in memory.
func ParseLines(lines []string, h Handler, opts StreamOptions) (st Stats, err error) {
	defer h.OnFinished()

	for _, line := range lines {
		if err := st.feed(line, false, h, opts); err != nil {
			return st, err
		}
	}
	return st, nil
}

// Events returns the parsed events of r as a single-pass sequence.
// Unparsed and over-long lines are skipped silently. A read error is yielded
// once, last.
// Breaking out of the loop early is fine; the rest of r is left unread.
func Events(r io.Reader) iter.Seq2[Event, error] {
	return func(yield func(Event, error) bool) {
		lr := newLineReader(r)
		for lr.Scan() {
			if lr.TooLong() {
				continue
			}
			ev, ok := ParseLine(lr.Text())
			if !ok {
				continue
			}
			if !yield(ev, nil) {
				return
			}
		}
		if err := lr.Err(); err != nil {
			yield(Event{}, err)
		}
	}
}

// lineReader splits r into lines like bufio.Scanner with ScanLines, but a
// line longer than maxLineSize does not end the stream: its first
// maxLineSize bytes are kept, TooLong reports it, and the rest is discarded.
type lineReader struct {
	br      *bufio.Reader
	line    []byte
	tooLong bool
	done    bool
	err     error
}

func newLineReader(r io.Reader) *lineReader {
	return &lineReader{br: bufio.NewReaderSize(r, 64*1024)}
}

// Scan advances to the next line. It returns false at EOF or on a read error;
// a read error drops the partial line.
func (lr *lineReader) Scan() bool {
	if lr.done {
		return false
	}
	lr.line = lr.line[:0]
	lr.tooLong = false
	started := false
	for {
		frag, isPrefix, err := lr.br.ReadLine()
		if err != nil {
			lr.done = true
			if err != io.EOF {
				lr.err = err
				return false
			}
			return started
		}
		started = true
		if !lr.tooLong {
			if len(lr.line)+len(frag) > maxLineSize {
				lr.line = append(lr.line, frag[:maxLineSize-len(lr.line)]...)
				lr.tooLong = true
			} else {
				lr.line = append(lr.line, frag...)
			}
		}
		if !isPrefix {
			return true
		}
	}
}

func (lr *lineReader) Text() string { return string(lr.line) }

func (lr *lineReader) TooLong() bool { return lr.tooLong }

func (lr *lineReader) Err() error { return lr.err }
