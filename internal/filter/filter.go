package filter

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/oakwood-commons/jsondiff/internal/jsontree"
)

// Filter is a compiled set of Options. It is safe for concurrent use.
type Filter struct {
	prefixes []string
	re       *regexp.Regexp
	dynamic  bool
	types    map[Type]bool
	expr     *exprRule
}

// Compile validates opts and prepares the regex and CEL rules.
func Compile(opts Options) (*Filter, error) {
	f := &Filter{
		prefixes: ParseFieldPaths(strings.Join(opts.FieldPaths, ",")),
		dynamic:  opts.IgnoreDynamic,
	}
	if pattern := strings.TrimSpace(opts.Regex); pattern != "" {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid ignore regex %q: %w", pattern, err)
		}
		f.re = re
	}
	if len(opts.IgnoreTypes) > 0 {
		f.types = make(map[Type]bool, len(opts.IgnoreTypes))
		for _, t := range opts.IgnoreTypes {
			pt, err := ParseType(string(t))
			if err != nil {
				return nil, err
			}
			f.types[pt] = true
		}
	}
	if expr := strings.TrimSpace(opts.Expr); expr != "" {
		rule, err := compileExpr(expr)
		if err != nil {
			return nil, err
		}
		f.expr = rule
	}
	return f, nil
}

// Apply compiles opts and filters v in one step.
func Apply(v jsontree.Value, opts Options) (jsontree.Value, error) {
	f, err := Compile(opts)
	if err != nil {
		return nil, err
	}
	return f.Apply(v), nil
}

// Apply returns a filtered copy of v. The input is never modified. Only
// object members are removed; array elements keep their positions and are
// filtered recursively.
func (f *Filter) Apply(v jsontree.Value) jsontree.Value {
	if f == nil {
		return v
	}
	var natives nativeCache
	if f.expr != nil && f.expr.usesValue {
		natives = nativeCache{}
	}
	return f.walk(v, "", natives)
}

func (f *Filter) walk(v jsontree.Value, path string, natives nativeCache) jsontree.Value {
	switch t := v.(type) {
	case []jsontree.Value:
		out := make([]jsontree.Value, len(t))
		for i, e := range t {
			out[i] = f.walk(e, fmt.Sprintf("%s[%d]", path, i), natives)
		}
		return out
	case *jsontree.Object:
		out := jsontree.NewObject(t.Len())
		for _, m := range t.Members() {
			childPath := jsontree.JoinKey(path, m.Key)
			if f.drops(childPath, m.Key, m.Value, natives) {
				continue
			}
			out.Set(m.Key, f.walk(m.Value, childPath, natives))
		}
		return out
	default:
		return v
	}
}

// drops reports whether the member at path should be removed.
func (f *Filter) drops(path, key string, v jsontree.Value, natives nativeCache) bool {
	if f.dynamic {
		if s, ok := v.(string); ok && IsDynamic(s) {
			return true
		}
	}
	for _, prefix := range f.prefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	if f.re != nil && f.re.MatchString(path) {
		return true
	}
	if f.types != nil {
		if t := typeOf(v); t != "" && f.types[t] {
			return true
		}
	}
	if f.expr != nil && f.expr.matches(path, key, v, natives) {
		return true
	}
	return false
}
