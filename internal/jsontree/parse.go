package jsontree

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// SyntaxError describes malformed JSON input.
type SyntaxError struct {
	Msg    string
	Offset int64 // byte offset where the error was detected
	Line   int   // 1-based
	Column int   // 1-based, in bytes
}

func (e *SyntaxError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s (line %d, column %d)", e.Msg, e.Line, e.Column)
	}
	return e.Msg
}

// KeySpan records where an object key sits in the source text. Start is the
// offset of the opening quote, End the offset just past the colon that
// follows the key.
type KeySpan struct {
	Path  Path
	Start int
	End   int
}

// Document is a parsed value together with the source position of every
// object key, in document order.
type Document struct {
	Root Value
	Keys []KeySpan
}

// Find returns the span of the key addressed by path.
func (d *Document) Find(path Path) (KeySpan, bool) {
	for _, ks := range d.Keys {
		if ks.Path.Equal(path) {
			return ks, true
		}
	}
	return KeySpan{}, false
}

// Parse decodes a single JSON document, keeping object key order.
func Parse(text string) (Value, error) {
	doc, err := parse(text, false)
	if err != nil {
		return nil, err
	}
	return doc.Root, nil
}

// ParseDocument decodes text and also records key positions.
func ParseDocument(text string) (*Document, error) {
	return parse(text, true)
}

type parser struct {
	src   string
	dec   *json.Decoder
	spans bool
	keys  []KeySpan
}

func parse(text string, spans bool) (*Document, error) {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()
	p := &parser{src: text, dec: dec, spans: spans}

	root, err := p.value(nil)
	if err != nil {
		return nil, p.wrap(err)
	}
	if tok, err := dec.Token(); err != io.EOF {
		if err != nil {
			return nil, p.wrap(err)
		}
		return nil, p.errorAt(dec.InputOffset(), fmt.Sprintf("unexpected %v after top-level value", tok))
	}
	return &Document{Root: root, Keys: p.keys}, nil
}

func (p *parser) value(path Path) (Value, error) {
	tok, err := p.dec.Token()
	if err != nil {
		return nil, err
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return p.object(path)
		case '[':
			return p.array(path)
		default:
			return nil, p.errorAt(p.dec.InputOffset(), fmt.Sprintf("unexpected %q", string(t)))
		}
	default:
		return t, nil
	}
}

func (p *parser) object(path Path) (Value, error) {
	obj := NewObject(4)
	for p.dec.More() {
		before := p.dec.InputOffset()
		tok, err := p.dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, p.errorAt(p.dec.InputOffset(), fmt.Sprintf("expected object key, got %v", tok))
		}
		child := path.Append(Key(key))
		if p.spans {
			p.recordKey(child, int(before), int(p.dec.InputOffset()))
		}
		v, err := p.value(child)
		if err != nil {
			return nil, err
		}
		obj.Set(key, v)
	}
	if _, err := p.dec.Token(); err != nil { // '}'
		return nil, err
	}
	return obj, nil
}

func (p *parser) array(path Path) (Value, error) {
	arr := make([]Value, 0, 4)
	for p.dec.More() {
		v, err := p.value(path.Append(Index(len(arr))))
		if err != nil {
			return nil, err
		}
		arr = append(arr, v)
	}
	if _, err := p.dec.Token(); err != nil { // ']'
		return nil, err
	}
	return arr, nil
}

// recordKey locates the quoted key between the end of the previous token
// and the end of the key token. Only whitespace and a comma can precede the
// opening quote there.
func (p *parser) recordKey(path Path, from, keyEnd int) {
	start := strings.IndexByte(p.src[from:keyEnd], '"')
	if start < 0 {
		return
	}
	start += from
	end := keyEnd
	if colon := strings.IndexByte(p.src[keyEnd:], ':'); colon >= 0 {
		end = keyEnd + colon + 1
	}
	p.keys = append(p.keys, KeySpan{Path: path, Start: start, End: end})
}

func (p *parser) wrap(err error) error {
	var se *SyntaxError
	if errors.As(err, &se) {
		return se
	}
	var jse *json.SyntaxError
	if errors.As(err, &jse) {
		return p.errorAt(jse.Offset, jse.Error())
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return p.errorAt(int64(len(p.src)), "unexpected end of JSON input")
	}
	return err
}

func (p *parser) errorAt(offset int64, msg string) *SyntaxError {
	line, col := LineColumn(p.src, int(offset))
	return &SyntaxError{Msg: msg, Offset: offset, Line: line, Column: col}
}

// LineColumn converts a byte offset into a 1-based line and column.
func LineColumn(src string, offset int) (int, int) {
	if offset > len(src) {
		offset = len(src)
	}
	if offset < 0 {
		offset = 0
	}
	prefix := src[:offset]
	line := strings.Count(prefix, "\n") + 1
	col := offset - strings.LastIndexByte(prefix, '\n')
	return line, col
}
