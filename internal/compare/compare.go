// Package compare runs a full comparison: parse both documents, apply the
// ignore rules, re-serialize canonically and diff the result line by line.
package compare

import (
	"errors"
	"fmt"
	"strings"

	"github.com/oakwood-commons/jsondiff/internal/differ"
	"github.com/oakwood-commons/jsondiff/internal/filter"
	"github.com/oakwood-commons/jsondiff/internal/jsontree"
)

// Side names the document a ParseError belongs to.
type Side string

const (
	SideLeft  Side = "left"
	SideRight Side = "right"
)

// ParseError reports input that could not be decoded. Line and Column are
// zero when the decoder gave no position.
type ParseError struct {
	Side   Side
	Line   int
	Column int
	Err    error
}

func (e *ParseError) Error() string {
	prefix := "JSON parse error"
	if e.Side != "" {
		prefix += " (" + string(e.Side) + ")"
	}
	return prefix + ": " + e.Err.Error()
}

func (e *ParseError) Unwrap() error { return e.Err }

// Request is one comparison. Empty documents are read as {}.
type Request struct {
	Left   string
	Right  string
	Ignore filter.Options
	Format jsontree.InputFormat
}

// Result holds the canonical text of both sides and their diff.
type Result struct {
	Left     string           `json:"left"`
	Right    string           `json:"right"`
	Segments []differ.Segment `json:"segments"`
	Stats    differ.Stats     `json:"stats"`
}

// Run compares two JSON documents with the given ignore rules.
func Run(left, right string, opts filter.Options) (*Result, error) {
	return Request{Left: left, Right: right, Ignore: opts}.Run()
}

// Run executes the request. Invalid ignore options are reported before
// either document is parsed; a parse failure yields a *ParseError and no
// result.
func (r Request) Run() (*Result, error) {
	f, err := filter.Compile(r.Ignore)
	if err != nil {
		return nil, fmt.Errorf("ignore options: %w", err)
	}
	format := r.Format
	if format == "" {
		format = jsontree.FormatJSON
	}

	lv, err := load(r.Left, format, SideLeft)
	if err != nil {
		return nil, err
	}
	rv, err := load(r.Right, format, SideRight)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Left:  jsontree.Format(f.Apply(lv)),
		Right: jsontree.Format(f.Apply(rv)),
	}
	res.Segments = differ.Lines(res.Left, res.Right)
	res.Stats = differ.Summarize(res.Segments)
	return res, nil
}

// Format returns text in canonical form. On a parse error the error is a
// *ParseError with no side and the caller keeps its original text.
func Format(text string) (string, error) {
	v, err := load(text, jsontree.FormatJSON, "")
	if err != nil {
		return "", err
	}
	return jsontree.Format(v), nil
}

// Parse decodes one document the way Run does, with empty text read as {}.
func Parse(text string, format jsontree.InputFormat, side Side) (jsontree.Value, error) {
	return load(text, format, side)
}

func load(text string, format jsontree.InputFormat, side Side) (jsontree.Value, error) {
	if strings.TrimSpace(text) == "" {
		return jsontree.NewObject(0), nil
	}
	v, err := jsontree.Load(text, format)
	if err != nil {
		pe := &ParseError{Side: side, Err: err}
		var se *jsontree.SyntaxError
		if errors.As(err, &se) {
			pe.Line, pe.Column = se.Line, se.Column
		}
		return nil, pe
	}
	return v, nil
}
