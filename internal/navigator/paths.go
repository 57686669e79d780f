package navigator

import (
	"github.com/oakwood-commons/jsondiff/internal/jsontree"
)

// ExtractPaths lists every reachable path in root, depth first, a parent
// before its children. Array elements contribute parent[i]; keys that a
// dotted segment cannot carry are bracket-quoted. The root itself is not
// listed.
func ExtractPaths(root jsontree.Value) []string {
	var out []string
	var walk func(v jsontree.Value, prefix string)
	walk = func(v jsontree.Value, prefix string) {
		switch t := v.(type) {
		case *jsontree.Object:
			for _, m := range t.Members() {
				p := jsontree.JoinKey(prefix, m.Key)
				out = append(out, p)
				walk(m.Value, p)
			}
		case []jsontree.Value:
			for i, e := range t {
				p := prefix + "[" + itoa(i) + "]"
				out = append(out, p)
				walk(e, p)
			}
		}
	}
	walk(root, "")
	return out
}

// Unique returns paths with duplicates removed, keeping first occurrences.
func Unique(paths []string) []string {
	seen := make(map[string]struct{}, len(paths))
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}
