package jsontree

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

// DefaultIndent is the canonical indentation used for line diffs.
const DefaultIndent = "  "

// Format renders v in canonical form: two-space indentation, one member or
// element per line, empty containers as {} and [], numbers in shortest
// round-trip form. Members keep insertion order, integer-like keys included,
// with JSON.stringify(v, null, 2) spacing.
func Format(v Value) string {
	return FormatIndent(v, DefaultIndent)
}

// FormatIndent is Format with a caller-chosen indent unit.
func FormatIndent(v Value, indent string) string {
	var b strings.Builder
	writeValue(&b, v, indent, 0)
	return b.String()
}

// Canonical parses text and re-renders it with Format.
func Canonical(text string) (string, error) {
	v, err := Parse(text)
	if err != nil {
		return "", err
	}
	return Format(v), nil
}

func writeValue(b *strings.Builder, v Value, indent string, depth int) {
	switch t := v.(type) {
	case nil:
		b.WriteString("null")
	case bool:
		if t {
			b.WriteString("true")
		} else {
			b.WriteString("false")
		}
	case json.Number:
		b.WriteString(FormatNumber(t))
	case string:
		writeString(b, t)
	case []Value:
		if len(t) == 0 {
			b.WriteString("[]")
			return
		}
		b.WriteString("[\n")
		for i, e := range t {
			writeIndent(b, indent, depth+1)
			writeValue(b, e, indent, depth+1)
			if i < len(t)-1 {
				b.WriteByte(',')
			}
			b.WriteByte('\n')
		}
		writeIndent(b, indent, depth)
		b.WriteByte(']')
	case *Object:
		if t.Len() == 0 {
			b.WriteString("{}")
			return
		}
		b.WriteString("{\n")
		for i, m := range t.members {
			writeIndent(b, indent, depth+1)
			writeString(b, m.Key)
			b.WriteString(": ")
			writeValue(b, m.Value, indent, depth+1)
			if i < len(t.members)-1 {
				b.WriteByte(',')
			}
			b.WriteByte('\n')
		}
		writeIndent(b, indent, depth)
		b.WriteByte('}')
	default:
		// a Value built by hand with a non-JSON Go type
		b.WriteString("null")
	}
}

func writeIndent(b *strings.Builder, indent string, depth int) {
	for i := 0; i < depth; i++ {
		b.WriteString(indent)
	}
}

const hexDigits = "0123456789abcdef"

// writeString quotes s the way JSON.stringify does: only quote, backslash
// and control characters are escaped; everything else is emitted verbatim.
func writeString(b *strings.Builder, s string) {
	b.WriteByte('"')
	for i := 0; i < len(s); {
		c := s[i]
		if c >= utf8.RuneSelf {
			r, size := utf8.DecodeRuneInString(s[i:])
			if r == utf8.RuneError && size == 1 {
				b.WriteString(`�`)
			} else {
				b.WriteString(s[i : i+size])
			}
			i += size
			continue
		}
		switch c {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\b':
			b.WriteString(`\b`)
		case '\f':
			b.WriteString(`\f`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			if c < 0x20 {
				b.WriteString(`\u00`)
				b.WriteByte(hexDigits[c>>4])
				b.WriteByte(hexDigits[c&0xf])
			} else {
				b.WriteByte(c)
			}
		}
		i++
	}
	b.WriteByte('"')
}

// FormatNumber renders a JSON number literal in ECMAScript Number#toString
// form: 1.0 -> 1, 1E2 -> 100, 1e21 -> 1e+21, 0.0000001 -> 1e-7.
// Values that overflow float64 render as null, as JSON.stringify does for
// Infinity.
func FormatNumber(n json.Number) string {
	f, err := strconv.ParseFloat(string(n), 64)
	if err != nil && !math.IsInf(f, 0) {
		return string(n)
	}
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return "null"
	}
	if f == 0 {
		return "0"
	}
	abs := math.Abs(f)
	if abs >= 1e21 || abs < 1e-6 {
		s := strconv.FormatFloat(f, 'e', -1, 64)
		mant, exp, _ := strings.Cut(s, "e")
		sign := exp[:1]
		digits := strings.TrimLeft(exp[1:], "0")
		if digits == "" {
			digits = "0"
		}
		return mant + "e" + sign + digits
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
