// Package filter prunes object keys from a JSON tree before comparison.
package filter

import (
	"fmt"
	"strings"

	"github.com/oakwood-commons/jsondiff/internal/jsontree"
)

// Type is a primitive JSON type that can be ignored wholesale.
type Type string

const (
	TypeString  Type = "string"
	TypeNumber  Type = "number"
	TypeBoolean Type = "boolean"
	TypeNull    Type = "null"
)

// ParseType validates a type name.
func ParseType(s string) (Type, error) {
	switch t := Type(strings.ToLower(strings.TrimSpace(s))); t {
	case TypeString, TypeNumber, TypeBoolean, TypeNull:
		return t, nil
	case "bool":
		return TypeBoolean, nil
	default:
		return "", fmt.Errorf("unknown type %q (expected string, number, boolean or null)", s)
	}
}

// ParseTypes parses a comma-separated list of type names.
func ParseTypes(s string) ([]Type, error) {
	var out []Type
	for _, part := range strings.Split(s, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		t, err := ParseType(part)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// typeOf maps a leaf value to its Type. Containers have no Type.
func typeOf(v jsontree.Value) Type {
	switch jsontree.KindOf(v) {
	case jsontree.KindString:
		return TypeString
	case jsontree.KindNumber:
		return TypeNumber
	case jsontree.KindBoolean:
		return TypeBoolean
	case jsontree.KindNull:
		return TypeNull
	default:
		return ""
	}
}

// Options selects which keys to drop. Every active rule is checked on its
// own; a key is dropped when any of them matches.
type Options struct {
	// FieldPaths are dotted path prefixes, e.g. "data.items[0].id".
	FieldPaths []string `json:"fieldPaths,omitempty" yaml:"fieldPaths,omitempty"`
	// Regex is searched (not anchored) in each key's full dotted path.
	Regex string `json:"regexPattern,omitempty" yaml:"regex,omitempty"`
	// IgnoreDynamic drops string values that look like timestamps or UUIDs.
	IgnoreDynamic bool `json:"ignoreDynamicValues,omitempty" yaml:"ignoreDynamicValues,omitempty"`
	// IgnoreTypes drops keys whose value is a leaf of one of these types.
	IgnoreTypes []Type `json:"ignoreTypes,omitempty" yaml:"ignoreTypes,omitempty"`
	// Expr is a CEL predicate over path, key and value.
	Expr string `json:"expr,omitempty" yaml:"expr,omitempty"`
}

// IsZero reports whether no rule is active.
func (o Options) IsZero() bool {
	return len(ParseFieldPaths(strings.Join(o.FieldPaths, ","))) == 0 &&
		strings.TrimSpace(o.Regex) == "" &&
		!o.IgnoreDynamic &&
		len(o.IgnoreTypes) == 0 &&
		strings.TrimSpace(o.Expr) == ""
}

// ParseFieldPaths splits a comma-separated list of path prefixes, trimming
// whitespace and dropping empty entries.
func ParseFieldPaths(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
