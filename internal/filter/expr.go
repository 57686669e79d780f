package filter

import (
	"fmt"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	celext "github.com/google/cel-go/ext"

	"github.com/oakwood-commons/jsondiff/internal/jsontree"
)

// exprRule drops members for which a boolean CEL expression holds. The
// expression sees three variables:
//
//	path  string  full dotted path, e.g. "data.items[0].id"
//	key   string  the member key
//	value dyn     the member value (maps, lists, int/double, string, bool, null)
type exprRule struct {
	source    string
	prg       cel.Program
	usesValue bool
}

func newExprEnv() (*cel.Env, error) {
	return cel.NewEnv(
		cel.Variable("path", cel.StringType),
		cel.Variable("key", cel.StringType),
		cel.Variable("value", cel.DynType),
		celext.Strings(),
		celext.Lists(),
		celext.Math(),
	)
}

func compileExpr(expr string) (*exprRule, error) {
	env, err := newExprEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}
	checked, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("invalid ignore expression %q: %w", expr, issues.Err())
	}
	if out := checked.OutputType(); !out.IsExactType(cel.BoolType) && !out.IsExactType(cel.DynType) {
		return nil, fmt.Errorf("ignore expression %q must return bool, got %s", expr, out)
	}
	prg, err := env.Program(checked)
	if err != nil {
		return nil, fmt.Errorf("ignore expression %q: program error: %w", expr, err)
	}
	return &exprRule{source: expr, prg: prg, usesValue: referencesVar(checked, "value")}, nil
}

func referencesVar(checked *cel.Ast, name string) bool {
	for _, ref := range checked.NativeRep().ReferenceMap() {
		if ref.Name == name {
			return true
		}
	}
	return false
}

// nativeCache holds the plain-Go form of objects already converted during
// one Apply, so a subtree is converted once rather than at every depth.
type nativeCache map[*jsontree.Object]any

func (c nativeCache) convert(v jsontree.Value) any {
	switch t := v.(type) {
	case *jsontree.Object:
		if c == nil {
			return jsontree.Native(v)
		}
		if n, ok := c[t]; ok {
			return n
		}
		m := make(map[string]any, t.Len())
		for _, mem := range t.Members() {
			m[mem.Key] = c.convert(mem.Value)
		}
		c[t] = m
		return m
	case []jsontree.Value:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = c.convert(e)
		}
		return out
	default:
		return jsontree.Native(v)
	}
}

// matches evaluates the rule. Evaluation errors (for example comparing a
// string with a number) count as "keep". value is only converted when the
// expression reads it.
func (r *exprRule) matches(path, key string, v jsontree.Value, natives nativeCache) bool {
	var value any
	if r.usesValue {
		value = natives.convert(v)
	}
	out, _, err := r.prg.Eval(map[string]any{
		"path":  path,
		"key":   key,
		"value": value,
	})
	if err != nil {
		return false
	}
	b, ok := out.(types.Bool)
	return ok && bool(b)
}
