package stringsconv

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"
)

const DefaultUnsortedMarker = "/* Unsorted */"

// Observer is notified about lines the merger skips and keys it appends unsorted.
// Calls happen synchronously, in master file order.
type Observer interface {
	OnMalformedLine(line int, text string)
	OnMissingKey(line int, key string)
	OnUnsortedKey(key string)
}

// Merger rebuilds a target .strings table using a master file's layout.
type Merger struct {
	cfg Config
}

func NewMerger(cfg Config) *Merger {
	if strings.TrimSpace(cfg.UnsortedMarker) == "" {
		cfg.UnsortedMarker = DefaultUnsortedMarker
	}
	if cfg.NowFn == nil {
		cfg.NowFn = time.Now
	}
	return &Merger{cfg: cfg}
}

type lineKind int

const (
	lineDirective lineKind = iota
	lineEntry
	lineMalformed
)

// classifyLine decides how a master line is handled. The first non-whitespace
// character decides: anything but a double quote is a directive (comment or blank).
// For entries the key is returned.
func classifyLine(line string) (lineKind, string) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || trimmed[0] != '"' {
		return lineDirective, ""
	}
	// Escaped backslashes and quotes would confuse the split; the master value is never used.
	cleaned := strings.ReplaceAll(trimmed, `\\`, "")
	cleaned = strings.ReplaceAll(cleaned, `\"`, "")

	// "KEY" = "VALUE";  ->  ["", KEY, " = ", VALUE, ";"]
	fields := strings.Split(cleaned, `"`)
	if len(fields) != 5 {
		return lineMalformed, ""
	}
	return lineEntry, fields[1]
}

type mergeRun struct {
	cfg       Config
	remaining Table
	report    Report
}

func (m *Merger) newRun(target Table) *mergeRun {
	remaining := make(Table, len(target))
	for k, v := range target {
		remaining[k] = v
	}
	return &mergeRun{
		cfg:       m.cfg,
		remaining: remaining,
		report:    Report{StartedAt: m.cfg.NowFn()},
	}
}

func safeObserverCall(fn func()) {
	defer func() {
		_ = recover()
	}()
	fn()
}

func (r *mergeRun) onMalformedLine(lineNo int, text string) {
	r.report.MalformedLines = append(r.report.MalformedLines, lineNo)
	r.report.Issues = append(r.report.Issues, newLineError(ErrMalformedLine, lineNo, "", text))
	if r.cfg.Observer != nil {
		safeObserverCall(func() {
			r.cfg.Observer.OnMalformedLine(lineNo, text)
		})
	}
}

func (r *mergeRun) onMissingKey(lineNo int, key string) {
	r.report.MissingKeys = append(r.report.MissingKeys, key)
	r.report.Issues = append(r.report.Issues, newLineError(ErrMissingKey, lineNo, key, ""))
	if r.cfg.Observer != nil {
		safeObserverCall(func() {
			r.cfg.Observer.OnMissingKey(lineNo, key)
		})
	}
}

// line handles one master line and returns the text to emit, if any.
func (r *mergeRun) line(lineNo int, line string) (string, bool) {
	kind, key := classifyLine(line)
	switch kind {
	case lineDirective:
		return line, true
	case lineMalformed:
		r.onMalformedLine(lineNo, strings.TrimSpace(line))
		return "", false
	}

	value, found := r.remaining[key]
	if !found {
		r.onMissingKey(lineNo, key)
		return "", false
	}
	delete(r.remaining, key)
	r.report.Merged++
	return FormatLine(key, value), true
}

// trailer renders the keys no master line consumed, sorted by key.
func (r *mergeRun) trailer() []string {
	if len(r.remaining) == 0 {
		return nil
	}
	keys := make([]string, 0, len(r.remaining))
	for k := range r.remaining {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]string, 0, len(keys)+3)
	out = append(out, "\n", "\n", r.cfg.UnsortedMarker+"\n")
	for _, k := range keys {
		out = append(out, FormatLine(k, r.remaining[k]))
		if r.cfg.Observer != nil {
			key := k
			safeObserverCall(func() {
				r.cfg.Observer.OnUnsortedKey(key)
			})
		}
	}
	r.report.Unsorted = keys
	return out
}

func (r *mergeRun) finish() Report {
	r.report.Duration = r.cfg.NowFn().Sub(r.report.StartedAt)
	return r.report
}

// MergeLines merges target into the layout of master. Each master line must keep
// its terminator. The target table is not modified.
func (m *Merger) MergeLines(master []string, target Table) ([]string, Report) {
	run := m.newRun(target)
	out := make([]string, 0, len(master))
	for i, line := range master {
		if text, ok := run.line(i+1, line); ok {
			out = append(out, text)
		}
	}
	out = append(out, run.trailer()...)
	return out, run.finish()
}

// Merge is the streaming form of MergeLines. Only read and write failures are
// returned as errors; skipped lines end up in the report.
func (m *Merger) Merge(master io.Reader, target Table, w io.Writer) (Report, error) {
	run := m.newRun(target)
	br := bufio.NewReader(master)
	bw := bufio.NewWriter(w)

	lineNo := 0
	for {
		line, err := br.ReadString('\n')
		if len(line) > 0 {
			lineNo++
			if text, ok := run.line(lineNo, line); ok {
				if _, werr := bw.WriteString(text); werr != nil {
					return run.finish(), fmt.Errorf("write output: %w", werr)
				}
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return run.finish(), fmt.Errorf("read master: %w", err)
		}
	}

	for _, text := range run.trailer() {
		if _, err := bw.WriteString(text); err != nil {
			return run.finish(), fmt.Errorf("write output: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return run.finish(), fmt.Errorf("write output: %w", err)
	}
	return run.finish(), nil
}

// SplitLines splits text after every newline, keeping terminators.
func SplitLines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.SplitAfter(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
