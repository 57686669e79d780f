// Package jsontree holds the ordered JSON value model shared by the filter,
// navigator, locator and differ packages.
//
// A Value is one of:
//
//	nil          JSON null
//	bool         JSON true / false
//	json.Number  JSON number (source literal kept)
//	string       JSON string
//	[]Value      JSON array
//	*Object      JSON object, members in insertion order
//
// Maps are never used for objects: key order is significant for canonical
// formatting and therefore for line diffs.
package jsontree

import (
	"encoding/json"
	"strconv"
)

// Value is a parsed JSON value. See the package documentation for the
// concrete types it may hold.
type Value = any

// Member is one key/value pair of an Object.
type Member struct {
	Key   string
	Value Value
}

// Object is a JSON object that remembers key insertion order.
type Object struct {
	members []Member
	index   map[string]int
}

// NewObject returns an empty object with room for n members.
func NewObject(n int) *Object {
	return &Object{
		members: make([]Member, 0, n),
		index:   make(map[string]int, n),
	}
}

// Set adds key or replaces its value. A replaced key keeps its original
// position, matching JSON.parse behaviour for duplicate keys.
func (o *Object) Set(key string, v Value) {
	if i, ok := o.index[key]; ok {
		o.members[i].Value = v
		return
	}
	o.index[key] = len(o.members)
	o.members = append(o.members, Member{Key: key, Value: v})
}

// Get returns the value stored under key.
func (o *Object) Get(key string) (Value, bool) {
	if o == nil {
		return nil, false
	}
	i, ok := o.index[key]
	if !ok {
		return nil, false
	}
	return o.members[i].Value, true
}

// Len returns the number of members.
func (o *Object) Len() int {
	if o == nil {
		return 0
	}
	return len(o.members)
}

// Keys returns member keys in insertion order.
func (o *Object) Keys() []string {
	if o == nil {
		return nil
	}
	keys := make([]string, len(o.members))
	for i, m := range o.members {
		keys[i] = m.Key
	}
	return keys
}

// Members returns the members in insertion order. The slice is shared with
// the object; callers must not modify it.
func (o *Object) Members() []Member {
	if o == nil {
		return nil
	}
	return o.members
}

// Kind names the JSON type of a value.
type Kind string

const (
	KindNull    Kind = "null"
	KindBoolean Kind = "boolean"
	KindNumber  Kind = "number"
	KindString  Kind = "string"
	KindArray   Kind = "array"
	KindObject  Kind = "object"
)

// KindOf reports the JSON kind of v. Unknown Go types report "".
func KindOf(v Value) Kind {
	switch v.(type) {
	case nil:
		return KindNull
	case bool:
		return KindBoolean
	case json.Number:
		return KindNumber
	case string:
		return KindString
	case []Value:
		return KindArray
	case *Object:
		return KindObject
	default:
		return ""
	}
}

// IsContainer reports whether v is an array or an object.
func IsContainer(v Value) bool {
	k := KindOf(v)
	return k == KindArray || k == KindObject
}

// Native converts v into plain Go types (map[string]any, []any, float64 or
// int64) for consumers such as CEL that do not understand *Object.
func Native(v Value) any {
	switch t := v.(type) {
	case *Object:
		m := make(map[string]any, t.Len())
		for _, mem := range t.members {
			m[mem.Key] = Native(mem.Value)
		}
		return m
	case []Value:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = Native(e)
		}
		return out
	case json.Number:
		if i, err := strconv.ParseInt(string(t), 10, 64); err == nil {
			return i
		}
		f, _ := strconv.ParseFloat(string(t), 64)
		return f
	default:
		return v
	}
}
