// Package differ produces line-level diffs between two canonical JSON texts.
package differ

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// Kind tags a diff segment.
type Kind string

const (
	Unchanged Kind = "unchanged"
	Removed   Kind = "removed"
	Added     Kind = "added"
)

// Segment is a contiguous run of lines sharing one Kind. Text keeps the
// original line terminators, so concatenating segments restores the input.
type Segment struct {
	Kind  Kind   `json:"kind"`
	Text  string `json:"text"`
	Lines int    `json:"lines"`
}

// Side selects which input Reconstruct rebuilds.
type Side int

const (
	Left Side = iota
	Right
)

// Lines diffs left against right line by line. Within a replaced block the
// removed lines come before the added ones. Adjacent segments of the same
// kind are merged.
func Lines(left, right string) []Segment {
	a, b := SplitLines(left), SplitLines(right)
	m := difflib.NewMatcherWithJunk(a, b, false, nil)

	var segs []Segment
	emit := func(kind Kind, lines []string) {
		if len(lines) == 0 {
			return
		}
		text := strings.Join(lines, "")
		if n := len(segs); n > 0 && segs[n-1].Kind == kind {
			segs[n-1].Text += text
			segs[n-1].Lines += len(lines)
			return
		}
		segs = append(segs, Segment{Kind: kind, Text: text, Lines: len(lines)})
	}

	for _, op := range m.GetOpCodes() {
		switch op.Tag {
		case 'e':
			emit(Unchanged, a[op.I1:op.I2])
		case 'd':
			emit(Removed, a[op.I1:op.I2])
		case 'i':
			emit(Added, b[op.J1:op.J2])
		case 'r':
			emit(Removed, a[op.I1:op.I2])
			emit(Added, b[op.J1:op.J2])
		}
	}
	return segs
}

// SplitLines splits s after every newline. A final line without a
// terminator is kept as is; an empty string yields no lines.
func SplitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.SplitAfter(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// Reconstruct concatenates the segments belonging to one side: unchanged
// and removed for Left, unchanged and added for Right.
func Reconstruct(segs []Segment, side Side) string {
	skip := Added
	if side == Right {
		skip = Removed
	}
	var b strings.Builder
	for _, s := range segs {
		if s.Kind != skip {
			b.WriteString(s.Text)
		}
	}
	return b.String()
}

// Stats summarizes a diff.
type Stats struct {
	Added     int  `json:"added"`
	Removed   int  `json:"removed"`
	Unchanged int  `json:"unchanged"`
	Identical bool `json:"identical"`
}

// Summarize counts lines per kind.
func Summarize(segs []Segment) Stats {
	var st Stats
	for _, s := range segs {
		switch s.Kind {
		case Added:
			st.Added += s.Lines
		case Removed:
			st.Removed += s.Lines
		default:
			st.Unchanged += s.Lines
		}
	}
	st.Identical = st.Added == 0 && st.Removed == 0
	return st
}
