package jsontree

import (
	"strconv"
	"strings"
)

// Segment is one step of a Path: an object key or an array index.
type Segment struct {
	Key     string
	Index   int
	IsIndex bool
}

// Key returns an object-key segment.
func Key(k string) Segment { return Segment{Key: k} }

// Index returns an array-index segment.
func Index(i int) Segment { return Segment{Index: i, IsIndex: true} }

// String renders the segment the way it appears inside a dotted path. Keys
// that a bare dotted segment cannot carry are bracket-quoted: ["a.b"].
func (s Segment) String() string {
	if s.IsIndex {
		return "[" + strconv.Itoa(s.Index) + "]"
	}
	if needsQuote(s.Key) {
		return "[" + strconv.Quote(s.Key) + "]"
	}
	return s.Key
}

func (s Segment) bracketed() bool {
	return s.IsIndex || needsQuote(s.Key)
}

// needsQuote reports whether key would not survive ParsePath as a bare
// segment.
func needsQuote(key string) bool {
	return key == "" || strings.ContainsAny(key, ".[]\"")
}

// JoinKey appends one object key to a rendered path, quoting it when needed.
// JoinKey("a", "b.c") is `a["b.c"]`.
func JoinKey(prefix, key string) string {
	seg := Key(key)
	if prefix == "" || seg.bracketed() {
		return prefix + seg.String()
	}
	return prefix + "." + seg.String()
}

// Path locates a value inside a JSON tree.
type Path []Segment

// Append returns a new path with seg added. The receiver is never modified,
// so sibling paths built from the same parent do not alias.
func (p Path) Append(seg Segment) Path {
	out := make(Path, len(p), len(p)+1)
	copy(out, p)
	return append(out, seg)
}

// Last returns the final segment, or false for the root path.
func (p Path) Last() (Segment, bool) {
	if len(p) == 0 {
		return Segment{}, false
	}
	return p[len(p)-1], true
}

// Equal reports whether two paths have identical segments.
func (p Path) Equal(o Path) bool {
	if len(p) != len(o) {
		return false
	}
	for i := range p {
		if p[i] != o[i] {
			return false
		}
	}
	return true
}

// String renders the dotted form: keys joined with '.', indices as [i].
// The result always parses back to p with ParsePath.
func (p Path) String() string {
	var b strings.Builder
	for i, seg := range p {
		if !seg.bracketed() && i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(seg.String())
	}
	return b.String()
}

// ParsePath splits a dotted/bracketed path into segments.
//
//	"items.0"           -> items, "0"
//	"items[0].tags"     -> items, [0], tags
//	`meta["a.b"].c`     -> meta, "a.b", c
//
// Bracketed numbers become index segments. Bare dotted numbers stay keys;
// callers walking a tree treat a numeric key on an array as an index.
func ParsePath(path string) Path {
	var (
		parts   Path
		current strings.Builder
	)
	flush := func() {
		if current.Len() > 0 {
			parts = append(parts, Key(current.String()))
			current.Reset()
		}
	}

	for i := 0; i < len(path); i++ {
		ch := path[i]
		switch ch {
		case '.':
			flush()
		case '[':
			flush()
			j := i + 1
			for j < len(path) && path[j] != ']' {
				if path[j] == '"' {
					// skip to the closing quote so brackets inside keys survive
					j++
					for j < len(path) && path[j] != '"' {
						if path[j] == '\\' {
							j++
						}
						j++
					}
				}
				j++
			}
			if j > len(path) {
				j = len(path)
			}
			inside := path[i+1 : j]
			parts = append(parts, bracketSegment(inside))
			i = j
		default:
			current.WriteByte(ch)
		}
	}
	flush()
	return parts
}

func bracketSegment(inside string) Segment {
	trimmed := strings.TrimSpace(inside)
	if n, err := strconv.Atoi(trimmed); err == nil && n >= 0 {
		return Index(n)
	}
	if len(trimmed) >= 2 && (trimmed[0] == '"' || trimmed[0] == '\'') && trimmed[len(trimmed)-1] == trimmed[0] {
		if trimmed[0] == '"' {
			if unq, err := strconv.Unquote(trimmed); err == nil {
				return Key(unq)
			}
		}
		return Key(trimmed[1 : len(trimmed)-1])
	}
	return Key(trimmed)
}
