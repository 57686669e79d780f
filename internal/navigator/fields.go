package navigator

import (
	"strconv"

	"github.com/oakwood-commons/jsondiff/internal/jsontree"
)

// MaxVisibleFields is how many child keys the navigator shows before
// collapsing the rest behind a "show all" toggle.
const MaxVisibleFields = 5

func itoa(i int) string { return strconv.Itoa(i) }

// ChildKeys returns the keys directly below the node at steps: object keys
// in insertion order, or element indices as strings for arrays. A scalar
// destination or an unresolvable path yields no keys.
func ChildKeys(root jsontree.Value, steps []string) []string {
	cur := root
	for _, s := range steps {
		next, err := step(cur, jsontree.Key(s))
		if err != nil {
			return nil
		}
		cur = next
	}
	switch t := cur.(type) {
	case *jsontree.Object:
		return t.Keys()
	case []jsontree.Value:
		keys := make([]string, len(t))
		for i := range t {
			keys[i] = itoa(i)
		}
		return keys
	default:
		return nil
	}
}

// StepsToPath converts breadcrumb steps into a typed path against root.
func StepsToPath(root jsontree.Value, steps []string) jsontree.Path {
	p := make(jsontree.Path, len(steps))
	for i, s := range steps {
		p[i] = jsontree.Key(s)
	}
	return Normalize(root, p)
}

// Breadcrumbs is the navigator's current location. All methods return a new
// value; the receiver is never modified.
type Breadcrumbs struct {
	steps []string
}

// NewBreadcrumbs starts at the given steps.
func NewBreadcrumbs(steps ...string) Breadcrumbs {
	return Breadcrumbs{steps: append([]string(nil), steps...)}
}

// Enter descends into key.
func (b Breadcrumbs) Enter(key string) Breadcrumbs {
	out := make([]string, len(b.steps), len(b.steps)+1)
	copy(out, b.steps)
	return Breadcrumbs{steps: append(out, key)}
}

// JumpTo keeps the crumbs up to and including index i. A negative index
// resets to the root; an index past the end leaves the path unchanged.
func (b Breadcrumbs) JumpTo(i int) Breadcrumbs {
	if i < 0 {
		return b.Reset()
	}
	if i >= len(b.steps) {
		return b
	}
	return NewBreadcrumbs(b.steps[:i+1]...)
}

// Up moves to the parent; at the root it is a no-op.
func (b Breadcrumbs) Up() Breadcrumbs {
	return b.JumpTo(len(b.steps) - 2)
}

// Reset returns to the root.
func (b Breadcrumbs) Reset() Breadcrumbs { return Breadcrumbs{} }

// Steps returns a copy of the crumbs.
func (b Breadcrumbs) Steps() []string { return append([]string(nil), b.steps...) }

// Len is the depth below the root.
func (b Breadcrumbs) Len() int { return len(b.steps) }

// VisibleFields applies the collapse threshold. hidden is the number of
// keys left out when not expanded.
func VisibleFields(keys []string, expanded bool) (visible []string, hidden int) {
	if expanded || len(keys) <= MaxVisibleFields {
		return keys, 0
	}
	return keys[:MaxVisibleFields], len(keys) - MaxVisibleFields
}
