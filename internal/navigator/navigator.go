// Package navigator walks parsed JSON trees: it resolves dotted paths,
// enumerates every reachable path for autocomplete, and lists the child
// keys shown by the interactive field navigator.
package navigator

import (
	"fmt"
	"strconv"

	"github.com/oakwood-commons/jsondiff/internal/jsontree"
)

// Resolve walks path through root. Object keys and array indices are both
// accepted; a key segment holding a number is treated as an index when the
// current node is an array, so "items.0" and "items[0]" are equivalent.
func Resolve(root jsontree.Value, path jsontree.Path) (jsontree.Value, error) {
	cur := root
	for i, seg := range path {
		next, err := step(cur, seg)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path[:i+1].String(), err)
		}
		cur = next
	}
	return cur, nil
}

// ResolveString parses a dotted/bracketed path and resolves it.
func ResolveString(root jsontree.Value, path string) (jsontree.Value, error) {
	return Resolve(root, jsontree.ParsePath(path))
}

// step navigates a single segment.
func step(cur jsontree.Value, seg jsontree.Segment) (jsontree.Value, error) {
	switch t := cur.(type) {
	case *jsontree.Object:
		if seg.IsIndex {
			return nil, fmt.Errorf("cannot index object with [%d]", seg.Index)
		}
		v, ok := t.Get(seg.Key)
		if !ok {
			return nil, fmt.Errorf("key '%s' not found", seg.Key)
		}
		return v, nil
	case []jsontree.Value:
		idx := seg.Index
		if !seg.IsIndex {
			n, err := strconv.Atoi(seg.Key)
			if err != nil {
				return nil, fmt.Errorf("expected numeric index into array but got '%s'", seg.Key)
			}
			idx = n
		}
		if idx < 0 || idx >= len(t) {
			return nil, fmt.Errorf("index %d out of range", idx)
		}
		return t[idx], nil
	default:
		return nil, fmt.Errorf("cannot descend into %s", jsontree.KindOf(cur))
	}
}

// Normalize rewrites numeric key segments that address array elements into
// index segments, so a breadcrumb like ["items", "0", "id"] becomes
// items[0].id. Segments past an unresolvable point are kept as given.
func Normalize(root jsontree.Value, path jsontree.Path) jsontree.Path {
	out := make(jsontree.Path, 0, len(path))
	cur := root
	for _, seg := range path {
		if _, ok := cur.([]jsontree.Value); ok && !seg.IsIndex {
			if n, err := strconv.Atoi(seg.Key); err == nil {
				seg = jsontree.Index(n)
			}
		}
		out = append(out, seg)
		if cur != nil {
			next, err := step(cur, seg)
			if err != nil {
				cur = nil
				continue
			}
			cur = next
		}
	}
	return out
}
