// Package export renders a comparison as a downloadable report: a PNG
// raster of the diff panel, a single-page PDF built around it, or a
// standalone HTML page.
package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/oakwood-commons/jsondiff/internal/differ"
)

// DefaultTitle is used when a report has no title.
const DefaultTitle = "JSON Comparison Report"

// Report is the content shared by every export format.
type Report struct {
	Title     string
	Generated time.Time
	Segments  []differ.Segment
}

// Line is one rendered diff line. Note lines stand in for lines that were
// folded or cut and carry no diff marker.
type Line struct {
	Kind differ.Kind
	Text string
	Note bool
}

// Raster limits. Past maxRasterLines unchanged runs are folded down to
// foldContext lines around each change, and whatever still does not fit is
// cut with a note.
const (
	maxRasterLines = 800
	foldContext    = 3
)

func (r Report) title() string {
	if strings.TrimSpace(r.Title) == "" {
		return DefaultTitle
	}
	return r.Title
}

func (r Report) timestamp() string {
	t := r.Generated
	if t.IsZero() {
		t = time.Now()
	}
	return "Generated " + t.Format("2006-01-02 15:04:05 MST")
}

// Lines splits the segments into display lines, dropping line terminators.
func (r Report) Lines() []Line {
	var out []Line
	for _, s := range r.Segments {
		for _, l := range differ.SplitLines(s.Text) {
			out = append(out, Line{Kind: s.Kind, Text: strings.TrimRight(l, "\r\n")})
		}
	}
	return out
}

// Prefix is the unified-diff marker for a line kind.
func Prefix(k differ.Kind) string {
	switch k {
	case differ.Added:
		return "+ "
	case differ.Removed:
		return "- "
	default:
		return "  "
	}
}

// rasterLines returns the lines drawn into the image, at most
// maxRasterLines of them.
func (r Report) rasterLines() []Line {
	lines := r.Lines()
	if len(lines) <= maxRasterLines {
		return lines
	}
	lines = foldUnchanged(lines, foldContext)
	if len(lines) <= maxRasterLines {
		return lines
	}
	shown := lines[:maxRasterLines-1]
	rest := 0
	for _, l := range lines[maxRasterLines-1:] {
		if !l.Note {
			rest++
		}
	}
	return append(shown, Line{Kind: differ.Unchanged, Text: fmt.Sprintf("... output truncated, %d more lines not shown", rest), Note: true})
}

// foldUnchanged keeps context unchanged lines on each side of every change
// and replaces longer unchanged runs with a single note line.
func foldUnchanged(lines []Line, context int) []Line {
	keep := make([]bool, len(lines))
	for i, l := range lines {
		if l.Kind == differ.Unchanged {
			continue
		}
		for j := max(i-context, 0); j <= min(i+context, len(lines)-1); j++ {
			keep[j] = true
		}
	}
	var out []Line
	for i := 0; i < len(lines); {
		if keep[i] {
			out = append(out, lines[i])
			i++
			continue
		}
		j := i
		for j < len(lines) && !keep[j] {
			j++
		}
		out = append(out, Line{Kind: differ.Unchanged, Text: fmt.Sprintf("... %d unchanged lines", j-i), Note: true})
		i = j
	}
	return out
}
