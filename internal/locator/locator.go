// Package locator finds where a field's key sits in JSON source text so a
// text view can select it and scroll it into the middle of the viewport.
package locator

import (
	"math"
	"regexp"
	"strings"
	"unicode/utf16"

	"github.com/oakwood-commons/jsondiff/internal/jsontree"
	"github.com/oakwood-commons/jsondiff/internal/navigator"
)

// Span brackets a quoted key and the colon after it, as byte offsets into
// the source. End is exclusive.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Locate returns the span of the key named by the last segment of path.
// Keys are matched by their parsed position, so braces or quotes inside
// string values cannot shift the result. The root path, a path ending in an
// array index, a path that does not exist, and invalid JSON all report false.
func Locate(source string, path jsontree.Path) (Span, bool) {
	if len(path) == 0 {
		return Span{}, false
	}
	doc, err := jsontree.ParseDocument(source)
	if err != nil {
		return Span{}, false
	}
	path = navigator.Normalize(doc.Root, path)
	if last, _ := path.Last(); last.IsIndex {
		return Span{}, false
	}
	ks, ok := doc.Find(path)
	if !ok {
		return Span{}, false
	}
	return Span{Start: ks.Start, End: ks.End}, true
}

// LocateString parses a dotted path and calls Locate.
func LocateString(source, path string) (Span, bool) {
	return Locate(source, jsontree.ParsePath(path))
}

// HeuristicLocate scans for `"key"` followed by a colon and accepts the first
// occurrence whose unmatched '{' count equals len(steps). Braces inside string
// values and array nesting both throw the count off; Locate does not have
// those problems.
func HeuristicLocate(source string, steps []string) (Span, bool) {
	if len(steps) == 0 {
		return Span{}, false
	}
	key := steps[len(steps)-1]
	quoted := jsontree.Format(key)
	re, err := regexp.Compile(regexp.QuoteMeta(quoted) + `\s*:`)
	if err != nil {
		return Span{}, false
	}
	for _, m := range re.FindAllStringIndex(source, -1) {
		before := source[:m[0]]
		depth := strings.Count(before, "{") - strings.Count(before, "}")
		if depth == len(steps) {
			return Span{Start: m[0], End: m[1]}, true
		}
	}
	return Span{}, false
}

// Line returns the 0-based line holding the span's start.
func (s Span) Line(source string) int {
	start := min(max(s.Start, 0), len(source))
	return strings.Count(source[:start], "\n")
}

// ScrollTarget returns the scroll offset, in the same unit as lineHeight,
// that vertically centers the span's line in a viewport showing
// visibleLines lines. The result is never negative.
func ScrollTarget(source string, span Span, lineHeight float64, visibleLines int) float64 {
	if visibleLines <= 0 {
		visibleLines = 1
	}
	line := float64(span.Line(source))
	top := (line-float64(visibleLines)/2)*lineHeight + lineHeight/2
	return math.Max(0, top)
}

// UTF16 converts byte offsets to UTF-16 code unit offsets, the unit browser
// text controls use for selection ranges.
func (s Span) UTF16(source string) Span {
	return Span{Start: utf16Offset(source, s.Start), End: utf16Offset(source, s.End)}
}

func utf16Offset(source string, byteOff int) int {
	byteOff = min(max(byteOff, 0), len(source))
	n := 0
	for _, r := range source[:byteOff] {
		n += utf16.RuneLen(r)
	}
	return n
}
